// Package eval executes Ex commands and scripts.
//
// An Evaler owns a Registry of commands. Scripts are executed line by line;
// each line may hold several commands chained with "|". Errors are isolated
// per command: they are reported through the message subsystem and execution
// continues with the next command.
package eval

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"src.exline.sh/pkg/errutil"
	"src.exline.sh/pkg/logutil"
	"src.exline.sh/pkg/messages"
	"src.exline.sh/pkg/parse"
)

var logger = logutil.GetLogger("[eval] ")

// Evaler executes Ex commands. It embeds the Registry holding them.
type Evaler struct {
	*Registry

	// Echoer receives the output of commands and reported errors.
	Echoer *messages.Echoer
	// Registers are written by :yank.
	Registers Registers

	// ReadFile reads the files sourced by :source.
	ReadFile func(name string) ([]byte, error)

	mu         sync.Mutex
	completers map[string]Completer
}

// NewEvaler creates an Evaler with all built-in commands. A nil echoer
// discards all output.
func NewEvaler(echoer *messages.Echoer) *Evaler {
	if echoer == nil {
		echoer = messages.NewEchoer(io.Discard, false, nil)
	}
	ev := &Evaler{
		Registry:   NewRegistry(),
		Echoer:     echoer,
		Registers:  NewMemRegisters(),
		ReadFile:   readFile,
		completers: make(map[string]Completer),
	}
	for _, install := range builtinInstallers {
		install(ev)
	}
	return ev
}

var builtinInstallers []func(*Evaler)

// Called from init functions of the files defining built-in commands.
func addBuiltinInstaller(f func(*Evaler)) {
	builtinInstallers = append(builtinInstallers, f)
}

// Adds a built-in command, panicking on name collisions.
func (ev *Evaler) mustAdd(specs []string, description string, action Action, extra Extra) {
	if _, err := ev.Add(specs, description, action, extra); err != nil {
		panic(err)
	}
}

// Source is a piece of Ex code.
type Source struct {
	// Name is used in error messages; it is empty for the interactive command
	// line.
	Name   string
	Code   string
	IsFile bool
}

// Silent is the error reporting mode of Execute.
type Silent int

// Possible values of Silent.
const (
	// Report echoes each error, prefixed by the source name and line.
	Report Silent = iota
	// Quiet only logs errors.
	Quiet
	// Loud echoes a header once, then the line number and message of each
	// error. It is used when sourcing files.
	Loud
)

// ExecCfg keeps configuration for the (*Evaler).Execute method.
type ExecCfg struct {
	// Tokens, when not nil, are replaced in the code with parse.ReplaceTokens
	// before execution.
	Tokens map[string]any
	Silent Silent
}

// ScriptError is an error of one command of a script.
type ScriptError struct {
	Name string
	Line int
	Err  error
}

func (e *ScriptError) Error() string {
	if e.Name == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s:%d: %s", e.Name, e.Line, e.Err)
}

func (e *ScriptError) Unwrap() error { return e.Err }

// Execute executes a script. Errors are reported according to cfg.Silent;
// all of them are also returned, combined with errutil.Multi.
func (ev *Evaler) Execute(src Source, cfg ExecCfg) error {
	code := src.Code
	if cfg.Tokens != nil {
		code = parse.ReplaceTokens(code, cfg.Tokens)
	}
	fm := ev.newFrame(src, code, cfg.Silent)
	fm.run()
	return errutil.Multi(fm.state.errs...)
}

// ExecuteLine executes a single command line, as typed on the command line.
func (ev *Evaler) ExecuteLine(line string) error {
	return ev.Execute(Source{Code: line}, ExecCfg{})
}

// Splits code into physical lines on any line ending convention.
func splitLines(code string) []string {
	code = strings.ReplaceAll(code, "\r\n", "\n")
	code = strings.ReplaceAll(code, "\r", "\n")
	return strings.Split(code, "\n")
}

// RegisterCompleter makes a completer available under a name, for use with
// the -complete option of :command.
func (ev *Evaler) RegisterCompleter(name string, c Completer) {
	ev.mu.Lock()
	defer ev.mu.Unlock()
	ev.completers[name] = c
}

// Completer returns the completer registered under name, or nil.
func (ev *Evaler) Completer(name string) Completer {
	ev.mu.Lock()
	defer ev.mu.Unlock()
	return ev.completers[name]
}

// CompleterNames returns the names of all registered completers.
func (ev *Evaler) CompleterNames() []string {
	ev.mu.Lock()
	defer ev.mu.Unlock()
	names := make([]string, 0, len(ev.completers))
	for name := range ev.completers {
		names = append(names, name)
	}
	return names
}
