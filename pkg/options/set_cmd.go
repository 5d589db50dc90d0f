package options

import (
	"fmt"
	"regexp"
	"strings"

	"src.exline.sh/pkg/complete"
	"src.exline.sh/pkg/eval"
	"src.exline.sh/pkg/getopt"
)

// An argument of :set: prefix, name, postfix, then an optional operator and
// value.
var setPattern = regexp.MustCompile(`^\s*(no|inv)?([a-z_]*)([?&!])?\s*(([-+^]?)=(.*))?\s*$`)

// InstallCommands adds :set and the "option" completer to ev.
//
// :se[t] takes any number of arguments, each one of
//
//	opt          show a non-boolean option, or switch a boolean one on
//	noopt        switch a boolean option off
//	invopt opt!  toggle a boolean option
//	opt?         show an option
//	opt&         reset an option to its default
//	opt=val      set an option; += -= and ^= add, remove and prepend
//	all  all&    show or reset every option
//
// Without arguments, :set shows the options that differ from their defaults.
func InstallCommands(ev *eval.Evaler, t *Table) error {
	ev.RegisterCompleter("option", func(c *complete.Context, _ *getopt.Args) error {
		t.completeNames(c, "")
		return nil
	})
	_, err := ev.Add([]string{"se[t]"}, "Set an option",
		func(fm *eval.Frame, args *getopt.Args) error {
			if args.Len() == 0 {
				fm.Echoer.Echo(t.listing(true))
				return nil
			}
			for _, arg := range args.Positional {
				if err := t.setArg(fm, arg); err != nil {
					return err
				}
			}
			return nil
		},
		eval.Extra{
			ArgCount:    "*",
			Completer:   t.completeSet,
			PrivateData: eval.NoPrivateData,
		})
	return err
}

func (t *Table) setArg(fm *eval.Frame, arg string) error {
	m := setPattern.FindStringSubmatch(arg)
	if m == nil {
		return fmt.Errorf("Error parsing :set command: %s", arg)
	}
	prefix, name, postfix := m[1], m[2], m[3]
	valueGiven, op, value := m[4] != "", m[5], m[6]

	if name == "all" {
		if postfix == "&" {
			for _, o := range t.All() {
				t.Reset(o.Name())
			}
		} else {
			fm.Echoer.Echo(t.listing(false))
		}
		return nil
	}
	o := t.Get(name)
	if o == nil {
		return unknownOption(name)
	}
	invert := prefix == "inv" || postfix == "!"

	switch {
	case postfix == "&":
		return t.Reset(o.Name())
	case postfix == "?" || o.Type != Boolean && !valueGiven:
		fm.Echoer.Echo(showOption(o))
		return nil
	case o.Type == Boolean:
		if valueGiven {
			return errInvalid(arg)
		}
		if invert {
			return t.SetBool(o.Name(), !o.value.(bool))
		}
		return t.SetBool(o.Name(), prefix != "no")
	case prefix == "no":
		return errInvalid(arg)
	}
	if op == "" {
		op = "="
	}
	return t.Apply(o.Name(), op, value, invert)
}

func showOption(o *Option) string {
	if o.Type == Boolean {
		if o.value.(bool) {
			return "  " + o.Name()
		}
		return "no" + o.Name()
	}
	return "  " + o.Name() + "=" + o.Text()
}

func (t *Table) listing(onlyNonDefault bool) string {
	var sb strings.Builder
	sb.WriteString("--- Options ---")
	for _, o := range t.All() {
		if onlyNonDefault && o.IsDefault() {
			continue
		}
		sb.WriteString("\n" + showOption(o))
	}
	return sb.String()
}

// Completes option names. A non-empty prefix ("no" or "inv") restricts the
// names to those of boolean options.
func (t *Table) completeNames(c *complete.Context, prefix string) {
	c.Title = "Option"
	c.Filters = []complete.Filter{func(c *complete.Context, it complete.Item) bool {
		o := t.Get(it.Text)
		if o == nil || prefix != "" && o.Type != Boolean {
			return false
		}
		for _, name := range o.Names {
			if c.Match(name) {
				return true
			}
		}
		return false
	}}
	var items []complete.Item
	for _, o := range t.All() {
		items = append(items, complete.Item{Text: o.Name(), Description: o.Description})
	}
	c.SetCompletions(items)
}

func (t *Table) completeSet(c *complete.Context, _ *getopt.Args) error {
	filter := c.Filter()
	m := setPattern.FindStringSubmatch(filter)
	prefix := ""
	if m != nil {
		prefix = m[1]
	}
	eq := strings.IndexByte(filter, '=')
	if eq < 0 {
		c.Advance(len(prefix))
		t.completeNames(c, prefix)
		return nil
	}
	if m == nil || prefix == "no" {
		return nil
	}
	name, postfix, op, value := m[2], m[3], m[5], m[6]

	c.Advance(len(prefix))
	o := t.Get(name)
	if o == nil {
		c.Highlight(0, len(name), complete.HighlightSpellCheck)
		c.Advance(eq + 1 - len(prefix))
		c.SetMessage("No such option: " + name)
		return nil
	}
	c.Advance(eq + 1 - len(prefix))
	if postfix != "" || prefix != "" {
		return nil
	}

	if value == "" {
		c.Fork("default", 0, func(c *complete.Context) error {
			c.Title = "Extra Completions"
			var items []complete.Item
			if cur := o.Text(); cur != "" {
				items = append(items, complete.Item{Text: cur, Description: "Current value"})
			}
			if o.Default != "" {
				items = append(items, complete.Item{Text: o.Default, Description: "Default value"})
			}
			c.SetCompletions(items)
			return nil
		})
	}
	if len(o.Values) == 0 {
		return nil
	}
	c.Fork("values", 0, func(c *complete.Context) error {
		c.Title = "Option Value"
		var given, current []string
		if o.Type.IsList() {
			given = splitList(value)
			last := ""
			if len(given) > 0 {
				last = given[len(given)-1]
				given = given[:len(given)-1]
			}
			skip := len(value) - len(last)
			if o.Type == RegexpMap {
				skip += strings.IndexByte(last, '=') + 1
			}
			c.Advance(skip)
			current = splitList(o.Text())
		}
		var items []complete.Item
		for _, it := range o.Values {
			if contains(given, it.Text) ||
				op == "+" && contains(current, it.Text) ||
				op == "-" && !contains(current, it.Text) {
				continue
			}
			items = append(items, it)
		}
		c.SetCompletions(items)
		return nil
	})
	return nil
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}
