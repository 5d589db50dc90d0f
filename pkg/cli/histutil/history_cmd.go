package histutil

import (
	"errors"
	"fmt"
	"strings"

	"src.exline.sh/pkg/complete"
	"src.exline.sh/pkg/eval"
	"src.exline.sh/pkg/getopt"
)

// DefaultHistoryMax is the number of entries :history lists by default.
const DefaultHistoryMax = 20

// InstallCommands adds the :history command and the "history" completer to
// ev. Both read the entries of s.
//
// :his[tory] [-max=N] [pattern] lists the entries fuzzily matching pattern,
// best matches last. With a bang, the best match is executed instead.
func InstallCommands(ev *eval.Evaler, s Store) error {
	completer := func(c *complete.Context, _ *getopt.Args) error {
		c.Title = "History"
		c.Filters = nil
		c.Sort = false
		c.Generate(complete.FuzzyGenerator(func() ([]complete.Item, error) {
			return historyItems(s)
		}))
		return nil
	}
	ev.RegisterCompleter("history", completer)

	_, err := ev.Add([]string{"his[tory]"}, "Show or execute entries of the command history",
		func(fm *eval.Frame, args *getopt.Args) error {
			return cmdHistory(fm, args, s)
		},
		eval.Extra{
			ArgCount:    "*",
			Bang:        true,
			Completer:   completer,
			PrivateData: eval.NoPrivateData,
			Options: []*getopt.OptionSpec{{
				Names:       []string{"-max", "-m"},
				Type:        getopt.Int,
				Description: "The maximum number of entries to list",
				Validator:   func(v any) bool { return v.(int) > 0 },
			}},
		})
	return err
}

// Returns the distinct entries of s, most recent first.
func historyItems(s Store) ([]complete.Item, error) {
	cmds, err := s.AllCmds()
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var items []complete.Item
	for i := len(cmds) - 1; i >= 0; i-- {
		text := cmds[i].Text
		if seen[text] {
			continue
		}
		seen[text] = true
		desc := ""
		if !cmds[i].Time.IsZero() {
			desc = cmds[i].Time.Format("2006-01-02 15:04")
		}
		items = append(items, complete.Item{Text: text, Description: desc})
	}
	return items, nil
}

func cmdHistory(fm *eval.Frame, args *getopt.Args, s Store) error {
	items, err := historyItems(s)
	if err != nil {
		return err
	}
	matches := complete.MatchFuzzy(strings.Join(args.Positional, " "), items)
	if len(matches) == 0 {
		return errors.New("No matching history entries")
	}
	if args.Bang {
		fm.ExecuteLine(matches[0].Text)
		return nil
	}
	max := DefaultHistoryMax
	if args.Has("-max") {
		max = args.GetInt("-max")
	}
	if len(matches) > max {
		matches = matches[:max]
	}
	var sb strings.Builder
	for i := len(matches) - 1; i >= 0; i-- {
		fmt.Fprintf(&sb, "%3d  %s", i+1, matches[i].Text)
		if i > 0 {
			sb.WriteByte('\n')
		}
	}
	fm.Echoer.Echo(sb.String())
	return nil
}
