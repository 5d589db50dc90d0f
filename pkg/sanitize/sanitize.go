// Package sanitize removes traces of activity from the command history and
// the message history.
//
// Each kind of trace is an Item. Items remove the entries that fall in a
// Timespan and, when a host is given, only those that reference the host or
// one of its subdomains.
package sanitize

import (
	"fmt"
	"time"

	"src.exline.sh/pkg/eval"
	"src.exline.sh/pkg/logutil"
	"src.exline.sh/pkg/messages"
	"src.exline.sh/pkg/store/storedefs"
)

var logger = logutil.GetLogger("[sanitize] ")

// CmdHistory is the command history being sanitized. It is satisfied by
// *histutil.HybridStore.
type CmdHistory interface {
	AllCmds() ([]storedefs.Cmd, error)
	Filter(keep func(storedefs.Cmd) bool) (int, error)
}

// Item is a kind of trace that can be sanitized.
type Item struct {
	Name        string
	Description string
	// Action removes the entries in span that reference host, or all entries
	// in span when host is empty. It returns the number of entries removed.
	Action func(span Timespan, host string) (int, error)
}

// Sanitizer holds the items known to :sanitize.
type Sanitizer struct {
	ev      *eval.Evaler
	history CmdHistory
	items   []Item
	now     func() time.Time
}

// New creates a Sanitizer with the built-in items:
//
//	commandline  command history entries
//	history      command history entries marked with PrivateData, and
//	             messages that reference domains
//	messages     the message history
//
// history may be nil, in which case no command is ever removed.
func New(ev *eval.Evaler, history CmdHistory) *Sanitizer {
	s := &Sanitizer{ev: ev, history: history, now: time.Now}
	s.Add(Item{"commandline", "Command-line history", s.sanitizeCommandLine})
	s.Add(Item{"history", "Private command-line entries and messages about visited domains", s.sanitizeHistory})
	s.Add(Item{"messages", "Saved messages", s.sanitizeMessages})
	return s
}

// Add adds an item, replacing any item with the same name.
func (s *Sanitizer) Add(it Item) {
	for i := range s.items {
		if s.items[i].Name == it.Name {
			s.items[i] = it
			return
		}
	}
	s.items = append(s.items, it)
}

// Items returns the items in the order they were added.
func (s *Sanitizer) Items() []Item {
	return append([]Item(nil), s.items...)
}

func (s *Sanitizer) item(name string) (Item, bool) {
	for _, it := range s.items {
		if it.Name == name {
			return it, true
		}
	}
	return Item{}, false
}

// Sanitize runs the named items and returns the total number of entries
// removed. Unknown names are rejected before any item runs.
func (s *Sanitizer) Sanitize(names []string, span Timespan, host string) (int, error) {
	items := make([]Item, len(names))
	for i, name := range names {
		it, ok := s.item(name)
		if !ok {
			return 0, fmt.Errorf("E475: Invalid argument: %s", name)
		}
		items[i] = it
	}
	total := 0
	for _, it := range items {
		n, err := it.Action(span, host)
		total += n
		if err != nil {
			return total, fmt.Errorf("sanitizing %s: %w", it.Name, err)
		}
		logger.Printf("%s: removed %d entries", it.Name, n)
	}
	return total, nil
}

func (s *Sanitizer) filterCmds(remove func(storedefs.Cmd) bool) (int, error) {
	if s.history == nil {
		return 0, nil
	}
	return s.history.Filter(func(cmd storedefs.Cmd) bool { return !remove(cmd) })
}

func (s *Sanitizer) filterMessages(remove func(messages.Message) bool) int {
	if s.ev.Echoer == nil {
		return 0
	}
	return s.ev.Echoer.History().Filter(func(m messages.Message) bool { return !remove(m) })
}

func (s *Sanitizer) sanitizeCommandLine(span Timespan, host string) (int, error) {
	return s.filterCmds(func(cmd storedefs.Cmd) bool {
		return span.Contains(cmd.Time) && (host == "" || s.ev.HasDomain(cmd.Text, host))
	})
}

func (s *Sanitizer) sanitizeHistory(span Timespan, host string) (int, error) {
	n, err := s.filterCmds(func(cmd storedefs.Cmd) bool {
		if !span.Contains(cmd.Time) {
			return false
		}
		if host != "" {
			return s.ev.HasDomain(cmd.Text, host)
		}
		return cmd.PrivateData
	})
	n += s.filterMessages(func(m messages.Message) bool {
		if !span.Contains(m.Timestamp) || len(m.Domains) == 0 && !m.PrivateData {
			return false
		}
		return host == "" || hasDomain(m.Domains, host)
	})
	return n, err
}

func (s *Sanitizer) sanitizeMessages(span Timespan, host string) (int, error) {
	return s.filterMessages(func(m messages.Message) bool {
		return span.Contains(m.Timestamp) && (host == "" || hasDomain(m.Domains, host))
	}), nil
}

func hasDomain(domains []string, host string) bool {
	for _, d := range domains {
		if eval.IsSubdomain(d, host) {
			return true
		}
	}
	return false
}
