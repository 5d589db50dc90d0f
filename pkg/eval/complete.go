package eval

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"src.exline.sh/pkg/complete"
	"src.exline.sh/pkg/getopt"
	"src.exline.sh/pkg/parse"
)

func init() {
	addBuiltinInstaller(func(ev *Evaler) {
		ev.RegisterCompleter("command", func(c *complete.Context, _ *getopt.Args) error {
			return ev.CompleteCommand(c)
		})
		ev.RegisterCompleter("usercommand", ev.CompleteUserCommand)
		ev.RegisterCompleter("file", CompleteFile)
		ev.RegisterCompleter("ex", func(c *complete.Context, _ *getopt.Args) error {
			c.Quote = nil
			return ev.CompleteEx(c)
		})
	})
}

var exPrefix = regexp.MustCompile(`^([:\s]*(?:\d+|%)?)(\w*)(.?)`)

// CompleteEx completes the Ex command line in the filter of c. While the
// command name is being typed, the "command" sub-context is populated with
// command names. Afterwards the "args" sub-context is populated with options
// and option values, and a sub-context named after the command with the
// items of its completer. Completion continues after "|" with the next
// command of the chain.
func (ev *Evaler) CompleteEx(c *complete.Context) error {
	m := exPrefix.FindStringSubmatch(c.Filter())
	c.Advance(len(m[1]))
	if m[3] == "" {
		c.Fork("command", 0, ev.CompleteCommand)
		return nil
	}

	filter := c.Filter()
	inv, ok := parse.ParseCommand(filter)
	var cmd *Command
	if ok {
		cmd = ev.Get(inv.Name)
	}
	if cmd == nil {
		c.Highlight(0, len(m[2]), complete.HighlightSpellCheck)
		return nil
	}

	if pre, _ := cmd.ParseArgs(inv.Args, inv.Count, inv.Bang, nil); pre.HasTrailing {
		c.Advance(len(filter) - len(pre.Trailing))
		return ev.CompleteEx(c)
	}

	cmdCtx := c.Fork(cmd.Name, inv.ArgsOffset, nil)
	argCtx := c.Fork("args", inv.ArgsOffset, nil)
	args := getopt.ParseComplete(argCtx.Filter(), cmd.Spec(nil), argCtx)
	args.Command, args.Count, args.Bang = cmd.Name, inv.Count, inv.Bang
	if cmdCtx.WaitingForTab() || args.CompleteOpt != nil || cmd.Completer == nil {
		return nil
	}

	cmdCtx.Advance(args.CompleteStart)
	if cmd.HasLiteral && args.HasLiteral && args.CompleteArg >= cmd.Literal {
		cmdCtx.Quote = nil
	} else {
		q := args.Quote
		cmdCtx.Quote = &q
	}
	cmdCtx.SetFilter(args.CompleteFilter)
	if err := cmd.Completer(cmdCtx, args); err != nil {
		logger.Printf("completer for %s: %v", cmd.Name, err)
		cmdCtx.SetMessage(err.Error())
	}
	return nil
}

// CompleteCommand populates c with the names of all commands. The first long
// name of a command matching the filter is used.
func (ev *Evaler) CompleteCommand(c *complete.Context) error {
	c.Title = "Command"
	cmds := ev.Commands()
	items := make([]complete.Item, 0, len(cmds))
	for _, cmd := range cmds {
		name := cmd.Name
		for _, long := range cmd.LongNames {
			if c.Match(long) {
				name = long
				break
			}
		}
		items = append(items, complete.Item{Text: name, Description: cmd.Description})
	}
	c.SetCompletions(items)
	return nil
}

// CompleteUserCommand populates c with the names of user commands, described
// by their replacement text.
func (ev *Evaler) CompleteUserCommand(c *complete.Context, _ *getopt.Args) error {
	c.Title = "User Command"
	var items []complete.Item
	for _, cmd := range ev.UserCommands() {
		items = append(items, complete.Item{Text: cmd.Name, Description: cmd.ReplacementText})
	}
	c.SetCompletions(items)
	return nil
}

// CompleteFile populates c with the entries of the directory named by the
// filter up to its last slash. Directory names end in a slash. Hidden files
// are only offered when the filter names one.
func CompleteFile(c *complete.Context, _ *getopt.Args) error {
	dir, base := filepath.Split(c.Filter())
	c.Advance(len(dir))
	c.Title = "File"
	readDir := dir
	if readDir == "" {
		readDir = "."
	}
	entries, err := os.ReadDir(ExpandHome(readDir))
	if err != nil {
		return err
	}
	items := make([]complete.Item, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") && !strings.HasPrefix(base, ".") {
			continue
		}
		if e.IsDir() {
			name += "/"
		}
		items = append(items, complete.Item{Text: name})
	}
	c.SetCompletions(items)
	return nil
}
