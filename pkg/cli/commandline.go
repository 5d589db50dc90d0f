package cli

import (
	"errors"
	"fmt"
	"time"
	"unicode"
	"unicode/utf8"

	"src.exline.sh/pkg/cli/histutil"
	"src.exline.sh/pkg/cli/term"
	"src.exline.sh/pkg/complete"
	"src.exline.sh/pkg/logutil"
)

var logger = logutil.GetLogger("[cli] ")

// Mode is the mode of the command line.
type Mode int

// Possible values of Mode.
const (
	// ModeNone is the mode of a closed command line.
	ModeNone Mode = iota
	// ModeEx reads Ex commands.
	ModeEx
	// ModePrompt reads the answer to a prompt started with Input.
	ModePrompt
	numModes
)

// Callbacks are called on the events of one mode.
type Callbacks struct {
	// Submit is called with the text when it is accepted.
	Submit func(text string)
	// Change is called when the text changes. fromHistory is true when the
	// text comes from history recall.
	Change func(text string, fromHistory bool)
	// Complete populates the root completion context of a completion pass.
	Complete func(c *complete.Context)
	// Cancel is called with the text when the command line is left without
	// accepting.
	Cancel func(text string)
}

// PromptOpts are the options of Input.
type PromptOpts struct {
	// Default is the initial text.
	Default string
	// Completer, when not nil, populates the "input" completion context.
	Completer complete.Completer
	Change    func(text string)
	Cancel    func(text string)
}

// Options is the option table consulted by the command line. It is satisfied
// by *options.Table.
type Options interface {
	complete.Settings
	Bool(name string) bool
	Int(name string) int
	Text(name string) string
	List(name string) []string
}

// Config is the configuration of a CommandLine.
type Config struct {
	Options Options
	// Post arranges for its argument to be called on the goroutine that calls
	// the methods of the CommandLine. It must not be nil.
	Post func(func())
	// History, when not nil, is the history of Ex commands.
	History histutil.Store
	// Beep is called when a key has no effect.
	Beep func()
	// Height, when not nil, returns the height of the terminal.
	Height func() int
	// FeedingKeys reports whether the keys come from a script rather than
	// from the user. Autocompletion and history saving are skipped then.
	FeedingKeys func() bool
}

// ErrAlreadyOpen is returned when opening a command line that is open.
var ErrAlreadyOpen = errors.New("command line already open")

// CommandLine is the state machine of the command line: the mode, the text
// and caret, the completion session and the history walk. All methods must be
// called from one goroutine, the one running the functions passed to
// Config.Post.
type CommandLine struct {
	cfg       Config
	callbacks [numModes]Callbacks
	list      *ItemList

	mode   Mode
	prompt string
	text   string
	caret  int
	status string

	history     *histutil.History
	completions *Completions
	input       promptInput

	accepted      bool
	acceptPending bool
	tab           tabKey

	autocompleteTimer *Timer
	statusTimer       *Timer
	tabTimer          *Timer
}

type promptInput struct {
	submit   func(string)
	change   func(string)
	complete complete.Completer
	cancel   func(string)
}

type tabKey struct{ shift, alt bool }

// NewCommandLine creates a closed CommandLine.
func NewCommandLine(cfg Config) *CommandLine {
	cl := &CommandLine{cfg: cfg}
	cl.list = NewItemList(func() int { return cfg.Options.Int("maxitems") }, cfg.Height)
	cl.autocompleteTimer = NewTimer(200*time.Millisecond, 500*time.Millisecond, cfg.Post, cl.autocomplete)
	cl.statusTimer = NewTimer(5*time.Millisecond, 100*time.Millisecond, cfg.Post, cl.updateStatus)
	cl.tabTimer = NewTimer(0, 0, cfg.Post, cl.runTab)

	cl.callbacks[ModePrompt] = Callbacks{
		Submit: func(text string) {
			submit := cl.input.submit
			cl.input = promptInput{}
			if submit != nil {
				submit(text)
			}
		},
		Change: func(text string, _ bool) {
			if cl.input.change != nil {
				cl.input.change(text)
			}
		},
		Complete: func(c *complete.Context) {
			if cl.input.complete != nil {
				c.Fork("input", 0, cl.input.complete)
			}
		},
		Cancel: func(text string) {
			cancel := cl.input.cancel
			cl.input = promptInput{}
			if cancel != nil {
				cancel(text)
			}
		},
	}
	return cl
}

// RegisterCallbacks sets the callbacks of a mode.
func (cl *CommandLine) RegisterCallbacks(mode Mode, cb Callbacks) {
	cl.callbacks[mode] = cb
}

func (cl *CommandLine) Mode() Mode     { return cl.mode }
func (cl *CommandLine) Prompt() string { return cl.prompt }
func (cl *CommandLine) Text() string   { return cl.text }
func (cl *CommandLine) Caret() int     { return cl.caret }

// Status returns the position of the selected completion, such as
// "match 2 of 5", or "".
func (cl *CommandLine) Status() string { return cl.status }

// List returns the completion list.
func (cl *CommandLine) List() *ItemList { return cl.list }

// Completions returns the completion session, or nil when closed.
func (cl *CommandLine) Completions() *Completions { return cl.completions }

// Preview returns the completion preview shown after the caret.
func (cl *CommandLine) Preview() string {
	if cl.completions == nil {
		return ""
	}
	return cl.completions.Preview()
}

// Open opens the command line in the given mode with the given text. A
// non-empty text triggers a change, which may start autocompletion.
func (cl *CommandLine) Open(prompt, text string, mode Mode) error {
	if cl.mode != ModeNone {
		return ErrAlreadyOpen
	}
	if mode <= ModeNone || mode >= numModes {
		return fmt.Errorf("invalid mode %d", mode)
	}
	cl.open(prompt, text, mode)
	if mode == ModeEx && cl.cfg.History != nil {
		cl.history = histutil.NewHistory(cl.cfg.History)
		cl.history.Max = func() int { return cl.cfg.Options.Int("history") }
	}
	if text != "" {
		cl.changed(false)
	}
	return nil
}

// Input opens the command line in prompt mode. The submit function is called
// with the text when it is accepted.
func (cl *CommandLine) Input(prompt string, submit func(string), opts PromptOpts) error {
	if cl.mode != ModeNone {
		return ErrAlreadyOpen
	}
	cl.input = promptInput{submit, opts.Change, opts.Completer, opts.Cancel}
	cl.open(prompt, opts.Default, ModePrompt)
	return nil
}

func (cl *CommandLine) open(prompt, text string, mode Mode) {
	cl.mode, cl.prompt = mode, prompt
	cl.text, cl.caret = text, len(text)
	cl.status = ""
	cl.accepted, cl.acceptPending = false, false
	cl.history = nil
	cl.completions = newCompletions(cl)
	logger.Printf("open mode %d with %q", mode, text)
}

// SetText replaces the text as if typed by the user. It drops the completion
// state and the history walk.
func (cl *CommandLine) SetText(text string, caret int) {
	if cl.mode == ModeNone {
		return
	}
	cl.setText(text, caret)
	cl.resetCompletions()
	cl.changed(false)
}

func (cl *CommandLine) setText(text string, caret int) {
	if caret < 0 || caret > len(text) {
		caret = len(text)
	}
	cl.text, cl.caret = text, caret
}

func (cl *CommandLine) canComplete() bool {
	if cl.mode == ModePrompt {
		return cl.input.complete != nil
	}
	return cl.callbacks[cl.mode].Complete != nil
}

func (cl *CommandLine) changed(fromHistory bool) {
	if !fromHistory && cl.canComplete() {
		cl.autocompleteTimer.Tell()
	}
	if f := cl.callbacks[cl.mode].Change; f != nil {
		f(cl.text, fromHistory)
	}
}

func (cl *CommandLine) runComplete(c *complete.Context) {
	if f := cl.callbacks[cl.mode].Complete; f != nil {
		f(c)
	}
}

func (cl *CommandLine) resetCompletions() {
	if c := cl.completions; c != nil {
		c.context.CancelAll()
		c.wildIndex = -1
		c.waiting, c.tabs, c.resume = false, nil, nil
		c.clearPreview()
	}
	cl.acceptPending = false
	if cl.history != nil {
		cl.history.Reset()
	}
}

func (cl *CommandLine) feedingKeys() bool {
	return cl.cfg.FeedingKeys != nil && cl.cfg.FeedingKeys()
}

func (cl *CommandLine) beep() {
	if cl.cfg.Beep != nil {
		cl.cfg.Beep()
	}
}

func (cl *CommandLine) autocomplete() {
	if cl.feedingKeys() || cl.completions == nil || cl.cfg.Options.Text("autocomplete") == "" {
		return
	}
	cl.completions.complete(true, false)
	cl.list.Show()
}

func (cl *CommandLine) updateStatus() {
	c := cl.completions
	if c == nil {
		return
	}
	if c.selected < 0 {
		cl.status = ""
	} else {
		cl.status = fmt.Sprintf("match %d of %d", c.selected+1, len(c.Items()))
	}
}

func (cl *CommandLine) runTab() {
	if cl.completions == nil {
		return
	}
	wildtypes := cl.cfg.Options.List("wildmode")
	if cl.tab.alt {
		wildtypes = cl.cfg.Options.List("altwildmode")
	}
	cl.completions.Tab(cl.tab.shift, wildtypes)
}

// Called when a selection that waited for results has been made.
func (cl *CommandLine) idle() {
	if cl.acceptPending {
		cl.acceptPending = false
		cl.accept()
	}
}

// Key handles a key press.
func (cl *CommandLine) Key(k term.Key) {
	if cl.mode == ModeNone {
		return
	}
	if cl.completions != nil {
		cl.completions.clearPreview()
	}

	switch {
	case k.IsAccept():
		cl.accept()
	case isHistoryKey(k):
		cl.selectHistory(k)
	case isTabKey(k):
		cl.tab = tabKey{k.Mod&term.Shift != 0, k.Mod&term.Alt != 0}
		cl.tabTimer.Tell()
	case k == term.K(term.Backspace) || k == term.K('H', term.Ctrl):
		if cl.text == "" {
			cl.Leave()
			return
		}
		if cl.caret > 0 {
			_, size := utf8.DecodeLastRuneInString(cl.text[:cl.caret])
			cl.edit(cl.text[:cl.caret-size]+cl.text[cl.caret:], cl.caret-size)
		}
	case k.IsCancel():
		cl.Leave()
	case k == term.K(term.Delete) || k == term.K('D', term.Ctrl):
		if cl.caret < len(cl.text) {
			_, size := utf8.DecodeRuneInString(cl.text[cl.caret:])
			cl.edit(cl.text[:cl.caret]+cl.text[cl.caret+size:], cl.caret)
		}
	case k == term.K(term.Left) || k == term.K('B', term.Ctrl):
		if cl.caret > 0 {
			_, size := utf8.DecodeLastRuneInString(cl.text[:cl.caret])
			cl.caret -= size
		}
	case k == term.K(term.Right) || k == term.K('F', term.Ctrl):
		if cl.caret < len(cl.text) {
			_, size := utf8.DecodeRuneInString(cl.text[cl.caret:])
			cl.caret += size
		}
	case k == term.K(term.Home) || k == term.K('A', term.Ctrl):
		cl.caret = 0
	case k == term.K(term.End) || k == term.K('E', term.Ctrl):
		cl.caret = len(cl.text)
	case k == term.K('U', term.Ctrl):
		cl.edit(cl.text[cl.caret:], 0)
	case k == term.K('W', term.Ctrl):
		i := cl.caret
		for i > 0 && cl.text[i-1] == ' ' {
			i--
		}
		for i > 0 && cl.text[i-1] != ' ' {
			i--
		}
		cl.edit(cl.text[:i]+cl.text[cl.caret:], i)
	case k.Mod == 0 && k.Rune >= 0 && unicode.IsPrint(k.Rune):
		r := string(k.Rune)
		cl.edit(cl.text[:cl.caret]+r+cl.text[cl.caret:], cl.caret+len(r))
	default:
		logger.Printf("unhandled key %v", k)
	}
}

// KeyUp handles the release of a key. Terminals do not report releases; the
// front end calls KeyUp right after Key for Tab keys.
func (cl *CommandLine) KeyUp(k term.Key) {
	if isTabKey(k) {
		cl.tabTimer.Flush()
	}
}

func (cl *CommandLine) edit(text string, caret int) {
	cl.SetText(text, caret)
}

func isTabKey(k term.Key) bool {
	return k.Rune == term.Tab && k.Mod&term.Ctrl == 0
}

func isHistoryKey(k term.Key) bool {
	switch k {
	case term.K(term.Up), term.K(term.Down), term.K(term.Up, term.Shift),
		term.K(term.Down, term.Shift), term.K(term.PageUp), term.K(term.PageDown):
		return true
	}
	return false
}

func (cl *CommandLine) selectHistory(k term.Key) {
	if cl.history == nil {
		cl.beep()
		return
	}
	if cl.completions != nil {
		cl.completions.reset(false)
	}
	backward := k.Rune == term.Up || k.Rune == term.PageUp
	matchCurrent := k.Mod&term.Shift == 0 && k.Rune != term.PageUp && k.Rune != term.PageDown
	text, ok := cl.history.Select(cl.text, backward, matchCurrent)
	if !ok {
		cl.beep()
		return
	}
	cl.setText(text, len(text))
	cl.changed(true)
}

// Accept submits the text, as if Enter was pressed.
func (cl *CommandLine) Accept() {
	if cl.mode != ModeNone {
		cl.accept()
	}
}

func (cl *CommandLine) accept() {
	if cl.completions != nil && cl.completions.waiting {
		// Submit once the pending selection is made.
		cl.acceptPending = true
		return
	}
	mode, text := cl.mode, cl.text
	cl.accepted = true
	cl.Leave()
	if f := cl.callbacks[mode].Submit; f != nil {
		f(text)
	}
}

// Leave closes the command line. Unless the text has been accepted, the
// cancel callback of the mode is called. Ex commands are saved to the
// history.
func (cl *CommandLine) Leave() {
	if cl.mode == ModeNone {
		return
	}
	mode, text := cl.mode, cl.text
	if !cl.accepted {
		if f := cl.callbacks[mode].Cancel; f != nil {
			f(text)
		}
	}

	for _, t := range []*Timer{cl.autocompleteTimer, cl.statusTimer, cl.tabTimer} {
		t.Reset()
	}
	if cl.completions != nil {
		cl.completions.clearPreview()
	}
	if cl.history != nil && !cl.feedingKeys() {
		if err := cl.history.Save(text); err != nil {
			logger.Printf("saving history: %v", err)
		}
	}
	cl.resetCompletions()
	cl.list.Hide()

	cl.mode, cl.prompt = ModeNone, ""
	cl.text, cl.caret, cl.status = "", 0, ""
	cl.completions, cl.history = nil, nil
	cl.acceptPending = false
	logger.Printf("leave mode %d with %q", mode, text)
}
