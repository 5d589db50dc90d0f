package eval

// Builtin commands for messages and registers.

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"src.exline.sh/pkg/complete"
	"src.exline.sh/pkg/getopt"
	"src.exline.sh/pkg/messages"
)

func init() {
	addBuiltinInstaller(func(ev *Evaler) {
		echoExtra := Extra{ArgCount: "*", Domains: argDomains}
		ev.mustAdd([]string{"ec[ho]"}, "Echo the arguments", cmdEcho, echoExtra)
		ev.mustAdd([]string{"echoe[rr]"}, "Echo the arguments as an error message", cmdEchoErr, echoExtra)
		ev.mustAdd([]string{"echom[sg]"}, "Echo the arguments as an informational message", cmdEchoMsg, echoExtra)

		ev.mustAdd([]string{"mes[sages]"}, "Display previously shown messages", cmdMessages,
			Extra{ArgCount: "0", PrivateData: NoPrivateData})
		ev.mustAdd([]string{"messc[lear]"}, "Clear the message history", cmdMessClear,
			Extra{ArgCount: "0", PrivateData: NoPrivateData})

		ev.mustAdd([]string{"sil[ent]"}, "Run a command silently", cmdSilent, Extra{
			ArgCount:      "+",
			Bang:          true,
			Literal:       0,
			HasLiteral:    true,
			SubCommand:    0,
			HasSubCommand: true,
			PrivateData:   NoPrivateData,
			Completer:     func(c *complete.Context, _ *getopt.Args) error { return ev.CompleteEx(c) },
		})

		ev.mustAdd([]string{"y[ank]"}, "Yank text into the unnamed register", cmdYank, Extra{
			ArgCount:   "*",
			Bang:       true,
			Literal:    0,
			HasLiteral: true,
			HereDoc:    true,
			Domains:    argDomains,
		})
	})
}

func cmdEcho(fm *Frame, args *getopt.Args) error {
	fm.Echoer.Show(echoMessage(args, messages.Normal), false)
	return nil
}

func cmdEchoErr(fm *Frame, args *getopt.Args) error {
	fm.Echoer.Show(echoMessage(args, messages.ErrorMsg), true)
	return nil
}

func cmdEchoMsg(fm *Frame, args *getopt.Args) error {
	fm.Echoer.Show(echoMessage(args, messages.Normal), true)
	return nil
}

func echoMessage(args *getopt.Args, hl messages.Highlight) messages.Message {
	domains := argDomains(args)
	return messages.Message{
		Text:        strings.Join(args.Positional, " "),
		Highlight:   hl,
		Domains:     domains,
		PrivateData: len(domains) > 0,
	}
}

func cmdMessages(fm *Frame, args *getopt.Args) error {
	for _, m := range fm.Echoer.History().Messages() {
		fm.Echoer.Show(m, false)
	}
	return nil
}

func cmdMessClear(fm *Frame, args *getopt.Args) error {
	fm.Echoer.History().Clear()
	return nil
}

func cmdSilent(fm *Frame, args *getopt.Args) error {
	if args.Bang {
		fm.swallow++
		defer func() { fm.swallow-- }()
	}
	fm.Echoer.Quietly(func() { fm.executeNested(args.Literal) })
	return nil
}

func cmdYank(fm *Frame, args *getopt.Args) error {
	text := args.Literal
	if args.Bang {
		old, _ := fm.Registers.Get(UnnamedRegister)
		text = old + text
	}
	fm.Registers.Set(UnnamedRegister, text)
	fm.Echoer.Echo(fmt.Sprintf("Yanked %d characters", utf8.RuneCountInString(args.Literal)))
	return nil
}

// Returns the hosts of the arguments that are URLs.
func argDomains(args *getopt.Args) []string {
	var domains []string
	for _, arg := range args.Positional {
		for _, field := range strings.Fields(arg) {
			if !strings.Contains(field, "://") {
				continue
			}
			if u, err := url.Parse(field); err == nil && u.Hostname() != "" {
				domains = append(domains, u.Hostname())
			}
		}
	}
	return domains
}
