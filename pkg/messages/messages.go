// Package messages implements echoing of messages and the message history.
package messages

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/ef-ds/deque"
)

// Highlight is the highlight group of a message.
type Highlight string

// Highlight groups.
const (
	Normal     Highlight = "Normal"
	ErrorMsg   Highlight = "ErrorMsg"
	WarningMsg Highlight = "WarningMsg"
	InfoMsg    Highlight = "InfoMsg"
)

// Message is an echoed message.
type Message struct {
	Text      string
	Highlight Highlight
	Timestamp time.Time
	// Domains referenced by the message, used when sanitizing.
	Domains     []string
	PrivateData bool
}

// DefaultMaxMessages is the default capacity of a History.
const DefaultMaxMessages = 100

// History is a bounded FIFO of messages. It is safe for concurrent use.
type History struct {
	mu  sync.Mutex
	max int
	q   *deque.Deque
}

// NewHistory creates a History holding at most max messages.
func NewHistory(max int) *History {
	return &History{max: max, q: deque.New()}
}

// Add appends a message, dropping the oldest ones when the history is full.
func (h *History) Add(m Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.q.PushBack(m)
	h.truncate()
}

// SetMax changes the capacity, dropping the oldest messages if needed.
func (h *History) SetMax(max int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.max = max
	h.truncate()
}

func (h *History) truncate() {
	for h.q.Len() > 0 && h.q.Len() > h.max {
		h.q.PopFront()
	}
}

// Len returns the number of messages.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.q.Len()
}

// Messages returns all messages, oldest first.
func (h *History) Messages() []Message {
	h.mu.Lock()
	defer h.mu.Unlock()
	ms := make([]Message, 0, h.q.Len())
	for i := 0; i < h.q.Len(); i++ {
		m, _ := h.q.PopFront()
		ms = append(ms, m.(Message))
		h.q.PushBack(m)
	}
	return ms
}

// Clear removes all messages.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.q.Init()
}

// Filter keeps only the messages for which keep returns true, and returns the
// number of messages removed.
func (h *History) Filter(keep func(Message) bool) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := h.q.Len()
	removed := 0
	for i := 0; i < n; i++ {
		v, _ := h.q.PopFront()
		if keep(v.(Message)) {
			h.q.PushBack(v)
		} else {
			removed++
		}
	}
	return removed
}

// Echoer shows messages and records them in a History.
//
// Messages are written to an io.Writer, one per line, unless a listener is
// set with Listen, in which case the listener receives them instead.
type Echoer struct {
	mu       sync.Mutex
	w        io.Writer
	color    bool
	history  *History
	listener func(Message)
	quiet    int
	now      func() time.Time
}

// NewEchoer creates an Echoer writing to w. When color is true, error and
// warning messages are colored with SGR sequences.
func NewEchoer(w io.Writer, color bool, history *History) *Echoer {
	if history == nil {
		history = NewHistory(DefaultMaxMessages)
	}
	return &Echoer{w: w, color: color, history: history, now: time.Now}
}

// History returns the message history.
func (e *Echoer) History() *History { return e.history }

// Listen makes f receive all shown messages instead of the writer. A nil f
// restores the writer.
func (e *Echoer) Listen(f func(Message)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listener = f
}

// Quietly calls f with normal messages suppressed. Error messages are still
// shown, and all saved messages are still added to the history.
func (e *Echoer) Quietly(f func()) {
	e.mu.Lock()
	e.quiet++
	e.mu.Unlock()
	defer func() {
		e.mu.Lock()
		e.quiet--
		e.mu.Unlock()
	}()
	f()
}

// Echo shows a message without saving it.
func (e *Echoer) Echo(text string) {
	e.Show(Message{Text: text, Highlight: Normal}, false)
}

// EchoMsg shows a message and saves it in the history.
func (e *Echoer) EchoMsg(text string) {
	e.Show(Message{Text: text, Highlight: Normal}, true)
}

// EchoErr shows an error message and saves it in the history.
func (e *Echoer) EchoErr(text string) {
	e.Show(Message{Text: text, Highlight: ErrorMsg}, true)
}

// Show shows a message, and adds it to the history if save is true. A zero
// Timestamp is filled in with the current time.
func (e *Echoer) Show(m Message, save bool) {
	if m.Timestamp.IsZero() {
		m.Timestamp = e.now()
	}
	if m.Highlight == "" {
		m.Highlight = Normal
	}
	if save {
		e.history.Add(m)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.quiet > 0 && m.Highlight != ErrorMsg {
		return
	}
	if e.listener != nil {
		e.listener(m)
		return
	}
	if e.w == nil {
		return
	}
	if e.color && m.Highlight != Normal {
		fmt.Fprintf(e.w, "\033[%sm%s\033[m\n", sgr[m.Highlight], m.Text)
	} else {
		fmt.Fprintln(e.w, m.Text)
	}
}

var sgr = map[Highlight]string{
	ErrorMsg:   "31",
	WarningMsg: "33",
	InfoMsg:    "1",
}
