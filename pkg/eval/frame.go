package eval

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"src.exline.sh/pkg/errutil"
	"src.exline.sh/pkg/getopt"
	"src.exline.sh/pkg/parse"
)

// Frame is the state of one execution of a script. Commands that execute
// other command lines, such as user commands and :silent, do so on the same
// Frame.
type Frame struct {
	*Evaler

	Src Source
	// Line is the 1-based number of the line being executed.
	Line int

	silent  Silent
	swallow int

	lines []string
	next  int
	state *execState
}

type execState struct {
	conds     []*cond
	errs      []error
	headerset bool
}

func (ev *Evaler) newFrame(src Source, code string, silent Silent) *Frame {
	return &Frame{
		Evaler: ev,
		Src:    src,
		silent: silent,
		lines:  splitLines(code),
		state:  &execState{},
	}
}

// Executes all lines of the frame.
func (fm *Frame) run() {
	for {
		line, ok := fm.nextLine()
		if !ok {
			break
		}
		fm.ExecuteLine(line)
	}
	if len(fm.state.conds) > 0 {
		fm.state.conds = nil
		fm.report(errors.New("E171: Missing :endif"))
	}
}

// Returns the next logical line, joining the continuation lines that follow
// it, and sets Line to its number.
func (fm *Frame) nextLine() (string, bool) {
	if fm.next >= len(fm.lines) {
		return "", false
	}
	fm.Line = fm.next + 1
	line := fm.lines[fm.next]
	fm.next++
	for fm.next < len(fm.lines) {
		rest := strings.TrimLeft(fm.lines[fm.next], " \t")
		if !strings.HasPrefix(rest, `\`) {
			break
		}
		line += "\n" + rest[1:]
		fm.next++
	}
	return line, true
}

// Reads a here document from the lines following the current one, up to a
// line equal to marker.
func (fm *Frame) readHeredoc(marker string) (string, error) {
	var body []string
	for fm.next < len(fm.lines) {
		line := fm.lines[fm.next]
		fm.next++
		if line == marker {
			return strings.Join(body, "\n"), nil
		}
		body = append(body, line)
	}
	return "", fmt.Errorf("Unexpected end of file waiting for %s", marker)
}

var blankOrComment = regexp.MustCompile(`^\s*("|$)`)

// Call is one resolved and parsed command of a command line.
type Call struct {
	Command *Command
	Args    *getopt.Args
	// Text is the command line the call was parsed from, including commands
	// chained after it.
	Text string

	skip bool
}

// Resolves and parses the first command of line. It returns nil for blank
// lines and comments.
func (fm *Frame) parseCall(line string) (*Call, error) {
	if blankOrComment.MatchString(line) {
		return nil, nil
	}
	inv, ok := parse.ParseCommand(line)
	var cmd *Command
	if ok {
		cmd = fm.Get(inv.Name)
	}
	skipping := fm.noExecute()
	if cmd == nil {
		if skipping {
			return nil, nil
		}
		name := inv.Name
		if !ok {
			name = strings.TrimLeft(line, ": \t")
			if i := strings.IndexAny(name, " \t|"); i >= 0 {
				name = name[:i]
			}
		}
		return nil, fmt.Errorf("E492: Not a command: %s", name)
	}
	if skipping && cmd.Always == nil {
		// Parsed only to find the end of the command.
		args, _ := cmd.ParseArgs(inv.Args, inv.Count, inv.Bang, fm.readHeredoc)
		return &Call{Command: cmd, Args: args, Text: line, skip: true}, nil
	}
	if !skipping {
		if inv.Count != parse.CountNone && !cmd.Count {
			return nil, errors.New("E481: No range allowed")
		}
		if inv.Bang && !cmd.Bang {
			return nil, errors.New("E477: No ! allowed")
		}
	}
	args, err := cmd.ParseArgs(inv.Args, inv.Count, inv.Bang, fm.readHeredoc)
	if err != nil {
		return nil, err
	}
	return &Call{Command: cmd, Args: args, Text: line}, nil
}

func (fm *Frame) call(c *Call) error {
	if c.skip {
		return nil
	}
	action := c.Command.Action
	if fm.noExecute() {
		action = c.Command.Always
	}
	if action == nil {
		return nil
	}
	return action(fm, c.Args)
}

// ExecuteLine executes a logical line, which may hold several commands
// chained with "|". The error of each command is reported; execution goes on
// with the next command unless the line could not be parsed. The returned
// error combines all errors.
func (fm *Frame) ExecuteLine(line string) error {
	var errs []error
	for {
		c, err := fm.parseCall(line)
		if err != nil {
			errs = append(errs, fm.report(err))
			break
		}
		if c == nil {
			break
		}
		if err := fm.call(c); err != nil {
			errs = append(errs, fm.report(err))
		}
		if !c.Args.HasTrailing {
			break
		}
		line = c.Args.Trailing
	}
	return errutil.Multi(errs...)
}

// Executes a command line on behalf of another command. Errors have been
// reported when it returns.
func (fm *Frame) executeNested(line string) {
	fm.ExecuteLine(line)
}

// Reports the error of a command according to the silent mode of the frame.
func (fm *Frame) report(err error) error {
	serr := &ScriptError{Name: fm.Src.Name, Line: fm.Line, Err: err}
	logger.Println(serr)
	if fm.swallow > 0 {
		return serr
	}
	fm.state.errs = append(fm.state.errs, serr)
	switch fm.silent {
	case Report:
		fm.Echoer.EchoErr(serr.Error())
	case Loud:
		if !fm.state.headerset {
			fm.state.headerset = true
			fm.Echoer.EchoErr("Error detected while processing " + fm.Src.Name + ":")
		}
		fm.Echoer.EchoMsg(fmt.Sprintf("line %d:", fm.Line))
		fm.Echoer.EchoErr(err.Error())
	}
	return serr
}

// ParseCommands resolves and parses the commands of a |-chain without
// executing them, calling f with each one until f returns false. It stops at
// the first command that cannot be parsed and returns its error.
func (ev *Evaler) ParseCommands(line string, f func(*Call) bool) error {
	fm := ev.newFrame(Source{}, line, Quiet)
	fm.next = len(fm.lines)
	for {
		c, err := fm.parseCall(line)
		if err != nil {
			return err
		}
		if c == nil || !f(c) || !c.Args.HasTrailing {
			return nil
		}
		line = c.Args.Trailing
	}
}
