// Package cli implements the interactive command line: the Ex and prompt
// modes, completion with its list and preview, history recall, and the
// terminal front end that runs them.
package cli

import (
	"errors"
	"io"
	"os"
	"sync"
	"syscall"

	"src.exline.sh/pkg/cli/histutil"
	"src.exline.sh/pkg/cli/term"
	"src.exline.sh/pkg/complete"
	"src.exline.sh/pkg/sys"
)

// ErrCanceled is returned by ReadInput when the prompt is left without
// accepting.
var ErrCanceled = errors.New("canceled")

// AppSpec specifies the configuration of an App.
type AppSpec struct {
	TTY     TTY
	Options Options
	// History, when not nil, is the history of Ex commands.
	History histutil.Store
	// Complete populates the completion context of the Ex command line.
	Complete func(c *complete.Context)
	// ExPrompt is the prompt of the Ex command line; the default is ":".
	ExPrompt string
}

// App reads Ex commands and prompt answers from a terminal. Each read runs an
// event loop until the command line is accepted.
type App struct {
	loop *loop
	tty  TTY
	spec AppSpec
	cl   *CommandLine

	reqRead chan struct{}
	// The line left on the terminal when a read finishes.
	final string

	notesMutex sync.Mutex
	notes      []string
}

// NewApp creates a new App from spec.
func NewApp(spec AppSpec) *App {
	if spec.TTY == nil {
		spec.TTY = NewTTY(os.Stdin, os.Stderr)
	}
	if spec.ExPrompt == "" {
		spec.ExPrompt = ":"
	}
	lp := newLoop()
	a := &App{loop: lp, tty: spec.TTY, spec: spec}
	a.cl = NewCommandLine(Config{
		Options: spec.Options,
		Post:    lp.Post,
		History: spec.History,
		Beep:    func() { a.tty.Beep(spec.Options.Bool("visualbell")) },
		Height: func() int {
			h, _ := a.tty.Size()
			return h
		},
	})
	a.cl.RegisterCallbacks(ModeEx, Callbacks{
		Submit: func(text string) {
			a.final = spec.ExPrompt + text
			lp.Return(text, nil)
		},
		Complete: spec.Complete,
	})
	lp.HandleCb(a.handle)
	lp.RedrawCb(a.redraw)
	return a
}

// CommandLine returns the command line of the App. It must only be used from
// functions run by the event loop, such as callbacks and posted functions.
func (a *App) CommandLine() *CommandLine { return a.cl }

// Post arranges for f to be called on the event loop.
func (a *App) Post(f func()) { a.loop.Post(f) }

// Notify adds a note that is shown above the command line on the next redraw.
func (a *App) Notify(note string) {
	a.notesMutex.Lock()
	a.notes = append(a.notes, note)
	a.notesMutex.Unlock()
	a.loop.Redraw(false)
}

// ReadCommand opens the Ex command line and returns the accepted text. It
// returns io.EOF when Ctrl-D is pressed on an empty line. Canceling the line
// opens a new one.
func (a *App) ReadCommand() (string, error) {
	return a.read(func() error { return a.cl.Open(a.spec.ExPrompt, "", ModeEx) })
}

// ReadInput opens the command line in prompt mode and returns the accepted
// text, or ErrCanceled.
func (a *App) ReadInput(prompt string, opts PromptOpts) (string, error) {
	cancel := opts.Cancel
	opts.Cancel = func(text string) {
		if cancel != nil {
			cancel(text)
		}
		a.final = prompt + text
		a.loop.Return("", ErrCanceled)
	}
	submit := func(text string) {
		a.final = prompt + text
		a.loop.Return(text, nil)
	}
	return a.read(func() error { return a.cl.Input(prompt, submit, opts) })
}

func (a *App) read(open func() error) (string, error) {
	restore, err := a.tty.Setup()
	if err != nil {
		return "", err
	}
	defer restore()
	if err := open(); err != nil {
		return "", err
	}
	defer a.cl.Leave()
	a.final = ""

	var wg sync.WaitGroup
	defer wg.Wait()

	// Relay input events, one per handled event.
	a.reqRead = make(chan struct{}, 1)
	a.reqRead <- struct{}{}
	defer close(a.reqRead)
	defer a.tty.CloseReader()
	wg.Add(1)
	go func() {
		defer wg.Done()
		for range a.reqRead {
			event, err := a.tty.ReadEvent()
			switch {
			case err == nil:
				a.loop.Input(event)
			case err == term.ErrStopped:
				return
			case term.IsReadErrorRecoverable(err):
				a.loop.Input(nonfatalError{err})
			default:
				a.loop.Input(fatalError{err})
				return
			}
		}
	}()

	sigCh := a.tty.NotifySignals()
	defer a.tty.StopSignals()
	wg.Add(1)
	go func() {
		defer wg.Done()
		for sig := range sigCh {
			a.loop.Input(sig)
		}
	}()

	a.loop.Redraw(true)
	return a.loop.Run()
}

type nonfatalError struct{ err error }

type fatalError struct{ err error }

func (a *App) handle(e event) {
	switch e := e.(type) {
	case os.Signal:
		switch e {
		case syscall.SIGHUP:
			a.final = a.cl.Prompt() + a.cl.Text()
			a.loop.Return("", io.EOF)
		case syscall.SIGINT:
			a.cl.Leave()
			a.reopen()
		case sys.SIGWINCH:
			a.loop.Redraw(true)
		}
		return
	case nonfatalError:
		a.Notify("error reading terminal: " + e.err.Error())
	case fatalError:
		a.final = a.cl.Prompt() + a.cl.Text()
		a.loop.Return("", e.err)
		return
	case term.Key:
		a.handleKey(e)
	}
	if !a.loop.HasReturned() {
		// An event left over from the previous read finds the request of
		// this read already pending.
		select {
		case a.reqRead <- struct{}{}:
		default:
		}
	}
}

func (a *App) handleKey(k term.Key) {
	if k == term.K('D', term.Ctrl) && a.cl.Text() == "" && a.cl.Mode() == ModeEx {
		a.final = a.cl.Prompt()
		a.loop.Return("", io.EOF)
		return
	}
	a.cl.Key(k)
	if k.Rune == term.Tab {
		a.cl.KeyUp(k)
	}
	a.reopen()
}

// Opens a new Ex command line when the current one was canceled.
func (a *App) reopen() {
	if a.cl.Mode() == ModeNone && !a.loop.HasReturned() {
		a.cl.Open(a.spec.ExPrompt, "", ModeEx)
	}
}

func (a *App) redraw(flag redrawFlag) {
	height, width := a.tty.Size()
	if width <= 0 {
		width, height = 80, 24
	}
	a.notesMutex.Lock()
	notes := a.notes
	a.notes = nil
	a.notesMutex.Unlock()

	if flag&finalRedraw != 0 {
		buf := renderFinal(a.final, width)
		a.tty.UpdateBuffer(notes, buf, flag&fullRedraw != 0)
		a.tty.ResetBuffer()
		return
	}
	buf := renderCommandLine(a.cl, width, height)
	a.tty.UpdateBuffer(notes, buf, flag&fullRedraw != 0)
}
