package eval

// Builtin commands that manage user commands.

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"text/tabwriter"

	"src.exline.sh/pkg/complete"
	"src.exline.sh/pkg/errutil"
	"src.exline.sh/pkg/getopt"
	"src.exline.sh/pkg/parse"
)

var (
	invalidNameChar = regexp.MustCompile(`\W`)
	nargsPattern    = regexp.MustCompile(`^[01*?+]$`)
	customComplete  = regexp.MustCompile(`^custom,\w+$`)
)

const defaultUserDescription = "User-defined command"

func init() {
	addBuiltinInstaller(func(ev *Evaler) {
		ev.mustAdd([]string{"com[mand]"}, "List and define commands", ev.cmdCommand, Extra{
			Bang:       true,
			Literal:    1,
			HasLiteral: true,
			Completer:  ev.completeCommandArgs,
			Options: []*getopt.OptionSpec{
				{Names: []string{"-bang"}, Description: "Command may be followed by a !"},
				{Names: []string{"-count"}, Description: "Command may be preceded by a count"},
				{
					Names:       []string{"-description"},
					Type:        getopt.String,
					Description: "A user-visible description of the command",
				},
				{
					Names:       []string{"-complete"},
					Type:        getopt.String,
					Description: "The argument completion function",
					Validator:   func(v any) bool { return ev.validCompleteName(v.(string)) },
					Completer: func(c *complete.Context, _ *getopt.Args) error {
						names := ev.CompleterNames()
						sort.Strings(names)
						c.SetCompletions(complete.Texts(names...))
						return nil
					},
				},
				{
					Names:       []string{"-nargs"},
					Type:        getopt.String,
					Description: "The allowed number of arguments",
					Validator:   func(v any) bool { return nargsPattern.MatchString(v.(string)) },
					Values: []complete.Item{
						{Text: "0", Description: "No arguments are allowed (default)"},
						{Text: "1", Description: "One argument is allowed"},
						{Text: "*", Description: "Zero or more arguments are allowed"},
						{Text: "?", Description: "Zero or one argument is allowed"},
						{Text: "+", Description: "One or more arguments are allowed"},
					},
				},
			},
		})

		ev.mustAdd([]string{"comc[lear]"}, "Delete all user-defined commands", cmdComClear,
			Extra{ArgCount: "0", PrivateData: NoPrivateData})
		ev.mustAdd([]string{"delc[ommand]"}, "Delete the specified user-defined command", cmdDelCommand,
			Extra{ArgCount: "1", Completer: ev.CompleteUserCommand, PrivateData: NoPrivateData})
	})
}

func (ev *Evaler) validCompleteName(name string) bool {
	return ev.Completer(name) != nil || customComplete.MatchString(name)
}

func (ev *Evaler) cmdCommand(fm *Frame, args *getopt.Args) error {
	name := args.Arg(0)
	if invalidNameChar.MatchString(name) {
		return errors.New("E182: Invalid command name")
	}
	if !args.HasLiteral || args.Literal == "" {
		listUserCommands(fm, name)
		return nil
	}

	nargs := args.GetString("-nargs")
	if nargs == "" {
		nargs = "0"
	}
	extra := Extra{
		ArgCount:        nargs,
		Bang:            args.Has("-bang"),
		Count:           args.Has("-count"),
		CompleteName:    args.GetString("-complete"),
		ReplacementText: args.Literal,
	}
	if extra.CompleteName != "" {
		extra.Completer = ev.userCompleter(extra.CompleteName)
	}
	extra.PrivateData = func(a *getopt.Args) bool {
		return ev.HasPrivateData(expandUserCommand(extra, a))
	}
	action := func(fm *Frame, a *getopt.Args) error {
		fm.executeNested(expandUserCommand(extra, a))
		return nil
	}
	_, err := ev.AddUserCommand([]string{name}, args.GetString("-description"), action, extra, args.Bang)
	if errors.Is(err, ErrCommandExists) {
		return errors.New("E174: Command already exists: add ! to replace it")
	}
	return err
}

// Returns the command line a user command runs for the given arguments.
func expandUserCommand(extra Extra, args *getopt.Args) string {
	tokens := map[string]any{"args": "", "bang": "", "count": ""}
	if extra.ArgCount != "0" {
		tokens["args"] = args.Raw()
	}
	if extra.Bang && args.Bang {
		tokens["bang"] = "!"
	}
	if extra.Count && args.Count >= 0 {
		tokens["count"] = args.Count
	}
	return parse.ReplaceTokens(extra.ReplacementText, tokens)
}

func (ev *Evaler) userCompleter(name string) Completer {
	if strings.HasPrefix(name, "custom,") {
		fn := strings.TrimPrefix(name, "custom,")
		return func(c *complete.Context, args *getopt.Args) error {
			completer := ev.Completer(fn)
			if completer == nil {
				return fmt.Errorf("E117: Unknown function: %s", fn)
			}
			return completer(c, args)
		}
	}
	return ev.Completer(name)
}

func listUserCommands(fm *Frame, prefix string) {
	var cmds []*Command
	for _, cmd := range fm.UserCommands() {
		if strings.HasPrefix(cmd.Name, prefix) {
			cmds = append(cmds, cmd)
		}
	}
	if len(cmds) == 0 {
		fm.Echoer.EchoMsg("No user-defined commands found")
		return
	}
	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "  Name\tArgs\tRange\tComplete\tDefinition")
	for _, cmd := range cmds {
		bang, count := " ", ""
		if cmd.Bang {
			bang = "!"
		}
		if cmd.Count {
			count = "0c"
		}
		fmt.Fprintf(w, "%s %s\t%s\t%s\t%s\t%s\n",
			bang, cmd.Name, cmd.ArgCount, count, cmd.CompleteName, cmd.ReplacementText)
	}
	w.Flush()
	fm.Echoer.Echo(strings.TrimSuffix(sb.String(), "\n"))
}

// Definition returns the :command line that defines a user command.
func (c *Command) Definition() string {
	args := getopt.NewArgs("command", nil)
	args.Bang = true
	if c.ArgCount != "" && c.ArgCount != "0" {
		args.SetOption("-nargs", c.ArgCount)
	}
	if c.Bang {
		args.SetOption("-bang", nil)
	}
	if c.Count {
		args.SetOption("-count", nil)
	}
	if c.Description != defaultUserDescription {
		args.SetOption("-description", c.Description)
	}
	if c.CompleteName != "" {
		args.SetOption("-complete", c.CompleteName)
	}
	args.Positional = []string{c.Name, c.ReplacementText}
	args.Literal, args.HasLiteral = c.ReplacementText, true
	return args.Format()
}

func cmdComClear(fm *Frame, args *getopt.Args) error {
	var errs []error
	for _, cmd := range fm.UserCommands() {
		if err := fm.RemoveUserCommand(cmd.Name); err != nil {
			errs = append(errs, err)
		}
	}
	return errutil.Multi(errs...)
}

func cmdDelCommand(fm *Frame, args *getopt.Args) error {
	name := args.Arg(0)
	if fm.Get(name) == nil {
		return fmt.Errorf("E184: No such user-defined command: %s", name)
	}
	return fm.RemoveUserCommand(name)
}

func (ev *Evaler) completeCommandArgs(c *complete.Context, args *getopt.Args) error {
	if args.CompleteArg == 0 {
		return ev.CompleteUserCommand(c, args)
	}
	return ev.CompleteEx(c)
}
