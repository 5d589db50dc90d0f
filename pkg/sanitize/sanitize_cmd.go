package sanitize

import (
	"errors"
	"fmt"
	"sort"

	"src.exline.sh/pkg/complete"
	"src.exline.sh/pkg/eval"
	"src.exline.sh/pkg/getopt"
	"src.exline.sh/pkg/options"
)

// InstallCommands adds the sanitizeitems and sanitizetimespan options to t,
// and the :sanitize command to ev.
//
// :sa[nitize] [-timespan=T] [-host=H] item... sanitizes the given items.
// :sanitize! sanitizes the items of the sanitizeitems option. The timespan
// defaults to the sanitizetimespan option.
func InstallCommands(ev *eval.Evaler, s *Sanitizer, t *options.Table) error {
	err := t.Add(&options.Option{
		Names:       []string{"sanitizeitems", "si"},
		Description: "The default list of private items to sanitize",
		Type:        options.StringList,
		Default:     "commandline,history,messages",
		Validator:   s.validItems,
		Values:      s.itemValues(),
	})
	if err != nil {
		return err
	}
	err = t.Add(&options.Option{
		Names:       []string{"sanitizetimespan", "sts"},
		Description: "The default timespan for :sanitize",
		Type:        options.String,
		Default:     "0",
		Validator:   s.validTimespan,
		Values:      timespanCodes,
	})
	if err != nil {
		return err
	}

	_, err = ev.Add([]string{"sa[nitize]"}, "Clear private data",
		func(fm *eval.Frame, args *getopt.Args) error {
			return s.cmdSanitize(fm, args, t)
		},
		eval.Extra{
			ArgCount:  "*",
			Bang:      true,
			Completer: s.completeItems,
			Domains: func(args *getopt.Args) []string {
				if host := args.GetString("-host"); host != "" {
					return []string{host}
				}
				return nil
			},
			Options: []*getopt.OptionSpec{
				{
					Names:       []string{"-timespan", "-t"},
					Type:        getopt.String,
					Description: "Timespan for which to sanitize items",
					Validator:   s.validTimespan,
					Values:      timespanCodes,
				},
				{
					Names:       []string{"-host", "-h"},
					Type:        getopt.String,
					Description: "Only sanitize items referring to this host or its subdomains",
					Completer:   s.completeHosts,
				},
			},
		})
	return err
}

var errArgumentRequired = errors.New("E471: Argument required")

func (s *Sanitizer) cmdSanitize(fm *eval.Frame, args *getopt.Args, t *options.Table) error {
	names := args.Positional
	if args.Bang {
		if len(names) > 0 {
			return errors.New("E488: Trailing characters")
		}
		names = t.List("sanitizeitems")
	} else if len(names) == 0 {
		return errArgumentRequired
	}

	spanText := t.Text("sanitizetimespan")
	if args.Has("-timespan") {
		spanText = args.GetString("-timespan")
	}
	span, err := ParseTimespan(spanText, s.now())
	if err != nil {
		return err
	}
	n, err := s.Sanitize(names, span, args.GetString("-host"))
	if err != nil {
		return err
	}
	if n == 1 {
		fm.Echoer.Echo("Removed 1 entry")
	} else {
		fm.Echoer.Echo(fmt.Sprintf("Removed %d entries", n))
	}
	return nil
}

func (s *Sanitizer) validItems(v any) bool {
	for _, name := range v.([]string) {
		if _, ok := s.item(name); !ok {
			return false
		}
	}
	return true
}

func (s *Sanitizer) validTimespan(v any) bool {
	_, err := ParseTimespan(v.(string), s.now())
	return err == nil
}

func (s *Sanitizer) itemValues() []complete.Item {
	items := make([]complete.Item, len(s.items))
	for i, it := range s.items {
		items[i] = complete.Item{Text: it.Name, Description: it.Description}
	}
	return items
}

func (s *Sanitizer) completeItems(c *complete.Context, args *getopt.Args) error {
	c.Title = "Sanitize Item"
	given := make(map[string]bool)
	for i, arg := range args.Positional {
		if i != args.CompleteArg {
			given[arg] = true
		}
	}
	var items []complete.Item
	for _, it := range s.itemValues() {
		if !given[it.Text] {
			items = append(items, it)
		}
	}
	c.SetCompletions(items)
	return nil
}

// Completes the domains referenced by the command history and the message
// history.
func (s *Sanitizer) completeHosts(c *complete.Context, _ *getopt.Args) error {
	c.Title = "Host"
	seen := make(map[string]bool)
	if s.history != nil {
		cmds, err := s.history.AllCmds()
		if err != nil {
			logger.Printf("reading command history: %v", err)
		}
		for _, cmd := range cmds {
			s.ev.SubCommands(cmd.Text, func(cmd *eval.Command, args *getopt.Args) bool {
				if cmd.Domains != nil {
					for _, d := range cmd.Domains(args) {
						seen[d] = true
					}
				}
				return true
			})
		}
	}
	if s.ev.Echoer != nil {
		for _, m := range s.ev.Echoer.History().Messages() {
			for _, d := range m.Domains {
				seen[d] = true
			}
		}
	}
	hosts := make([]string, 0, len(seen))
	for d := range seen {
		hosts = append(hosts, d)
	}
	sort.Strings(hosts)
	items := make([]complete.Item, len(hosts))
	for i, h := range hosts {
		items[i] = complete.Item{Text: h}
	}
	c.SetCompletions(items)
	return nil
}
