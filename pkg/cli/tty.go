package cli

import (
	"fmt"
	"os"
	"os/signal"
	"sync"

	"src.exline.sh/pkg/cli/term"
	"src.exline.sh/pkg/sys"
)

// TTY is the type the terminal dependency of the App needs to satisfy.
type TTY interface {
	// Setup sets up the terminal for the App. It returns a function that
	// undoes the setup. Only errors that make the terminal unusable are
	// returned.
	Setup() (restore func(), err error)

	// ReadEvent reads a terminal event.
	ReadEvent() (term.Event, error)
	// CloseReader releases resources allocated for reading terminal events and
	// aborts an outstanding ReadEvent call.
	CloseReader()

	// NotifySignals starts relaying signals and returns a channel on which
	// signals are delivered.
	NotifySignals() <-chan os.Signal
	// StopSignals stops the relaying of signals and closes the channel
	// returned by NotifySignals.
	StopSignals()

	// Size returns the height and width of the terminal.
	Size() (h, w int)
	// Beep rings the bell, or flashes the screen when visual is true.
	Beep(visual bool)

	// UpdateBuffer draws the notes and the buffer to the terminal.
	UpdateBuffer(notes []string, buf *term.Buffer, full bool) error
	// ResetBuffer forgets the last drawn buffer without drawing anything, so
	// that the next buffer is drawn below it.
	ResetBuffer()
}

// NewTTY returns a new TTY from input and output terminal files.
func NewTTY(in, out *os.File) TTY {
	return &aTTY{in: in, out: out, w: term.NewWriter(out)}
}

type aTTY struct {
	in, out *os.File
	w       term.Writer

	rMutex sync.Mutex
	r      term.Reader

	sigCh chan os.Signal
}

func (t *aTTY) Setup() (func(), error) {
	restore, err := term.Setup(t.in, t.out)
	if err != nil {
		return nil, err
	}
	return func() {
		if err := restore(); err != nil {
			fmt.Fprintln(t.out, "failed to restore terminal properties:", err)
		}
	}, nil
}

func (t *aTTY) Size() (h, w int) {
	return sys.WinSize(t.out)
}

func (t *aTTY) ReadEvent() (term.Event, error) {
	t.rMutex.Lock()
	if t.r == nil {
		r, err := term.NewReader(t.in)
		if err != nil {
			t.rMutex.Unlock()
			return nil, err
		}
		t.r = r
	}
	r := t.r
	t.rMutex.Unlock()
	return r.ReadEvent()
}

func (t *aTTY) CloseReader() {
	t.rMutex.Lock()
	defer t.rMutex.Unlock()
	if t.r != nil {
		t.r.Close()
	}
	t.r = nil
}

func (t *aTTY) NotifySignals() <-chan os.Signal {
	t.sigCh = sys.NotifySignals()
	return t.sigCh
}

func (t *aTTY) StopSignals() {
	signal.Stop(t.sigCh)
	close(t.sigCh)
	t.sigCh = nil
}

func (t *aTTY) Beep(visual bool) {
	if visual {
		t.out.WriteString("\033[?5h\033[?5l")
	} else {
		t.out.WriteString("\a")
	}
}

func (t *aTTY) UpdateBuffer(notes []string, buf *term.Buffer, full bool) error {
	return t.w.UpdateBuffer(notes, buf, full)
}

func (t *aTTY) ResetBuffer() {
	t.w.ResetBuffer()
}
