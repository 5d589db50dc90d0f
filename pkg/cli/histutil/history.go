package histutil

import (
	"strings"
	"time"

	"src.exline.sh/pkg/errutil"
	"src.exline.sh/pkg/store/storedefs"
)

// History is the history of one input field: it recalls earlier entries with
// Select and saves new ones with Save.
type History struct {
	store Store
	// Max, when not nil, returns the number of entries to keep. It is only
	// honored by stores implementing Truncater.
	Max func() int

	now          func() time.Time
	cursor       Cursor
	original     string
	matchCurrent bool
}

// NewHistory creates a History backed by s.
func NewHistory(s Store) *History {
	return &History{store: s, now: time.Now}
}

// Reset ends the current walk. The next Select starts again from the newest
// entry and takes the text it is given as the original text.
func (h *History) Reset() {
	h.cursor = nil
}

// Select moves one entry backward or forward from the current position and
// returns the text of the entry. Moving forward past the newest entry
// returns the original text, the text of the field when the walk started.
// With matchCurrent, only entries starting with the original text are
// visited. The second return value is false when there is no entry to move
// to, in which case current is returned unchanged.
func (h *History) Select(current string, backward, matchCurrent bool) (string, bool) {
	if h.cursor == nil {
		h.original = current
	}
	if h.cursor == nil || h.matchCurrent != matchCurrent {
		prefix := ""
		if matchCurrent {
			prefix = h.original
		}
		h.cursor = NewDedupCursor(h.store.Cursor(prefix))
		h.matchCurrent = matchCurrent
	}

	c := h.cursor
	if backward {
		c.Prev()
		if _, err := c.Get(); err == ErrEndOfHistory {
			c.Next()
			return current, false
		}
	} else {
		if _, err := c.Get(); err == ErrEndOfHistory {
			return current, false
		}
		c.Next()
	}
	cmd, err := c.Get()
	switch {
	case err == ErrEndOfHistory:
		return h.original, true
	case err != nil:
		return current, false
	}
	return cmd.Text, true
}

// Save adds text as the newest entry. Blank text is ignored. Earlier entries
// with the same text are removed when the store implements Filterer, and the
// store is truncated to Max when it implements Truncater.
func (h *History) Save(text string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	h.Reset()
	var errs []error
	if f, ok := h.store.(Filterer); ok {
		_, err := f.Filter(func(cmd storedefs.Cmd) bool { return cmd.Text != text })
		errs = append(errs, err)
	}
	_, err := h.store.AddCmd(storedefs.Cmd{Text: text, Seq: -1, Time: h.now()})
	errs = append(errs, err)
	if t, ok := h.store.(Truncater); ok && h.Max != nil {
		_, err := t.Truncate(h.Max())
		errs = append(errs, err)
	}
	return errutil.Multi(errs...)
}
