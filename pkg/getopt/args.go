package getopt

import (
	"fmt"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map"

	"src.exline.sh/pkg/diag"
	"src.exline.sh/pkg/parse"
)

// Args is the result of parsing an argument string.
type Args struct {
	// Command is the canonical name of the command, used by Format.
	Command string
	// Source is the argument string that was parsed.
	Source string
	// Positional arguments. When the literal argument was reached, it is the
	// last element.
	Positional []string
	// Literal is the literal argument, valid when HasLiteral is true.
	Literal    string
	HasLiteral bool
	Bang       bool
	Count      int
	// Trailing is the text after a "|" that ended parsing, valid when
	// HasTrailing is true.
	Trailing    string
	HasTrailing bool

	// Completion metadata, only set by ParseComplete. CompleteStart is the
	// offset in Source of the argument under the cursor, CompleteArg its
	// positional index and CompleteOpt the option whose value it is, if any.
	CompleteStart  int
	CompleteArg    int
	CompleteOpt    *OptionSpec
	CompleteFilter string
	Quote          parse.Quoting

	// Problems found while parsing, in order.
	Diagnostics []Diagnostic

	spec    *Spec
	options *orderedmap.OrderedMap
}

// Diagnostic is a problem found by the parser, with the range of the
// offending text in Args.Source.
type Diagnostic struct {
	Message string
	diag.Ranging
}

// ErrorType is the type of the *diag.Error values returned by Parse.
const ErrorType = "parse error"

func newArgs(str string, spec *Spec) *Args {
	return &Args{
		Source:  str,
		Count:   parse.CountNone,
		spec:    spec,
		options: orderedmap.New(),
	}
}

// NewArgs creates an empty Args for the given command and spec, to be filled
// with SetOption and positional arguments before calling Format.
func NewArgs(command string, spec *Spec) *Args {
	args := newArgs("", spec)
	args.Command = command
	return args
}

// Len returns the number of positional arguments.
func (a *Args) Len() int { return len(a.Positional) }

// Arg returns the i-th positional argument, or "" if there are not that many.
func (a *Args) Arg(i int) string {
	if i < 0 || i >= len(a.Positional) {
		return ""
	}
	return a.Positional[i]
}

// Raw returns the argument string up to the "|" that ended parsing, with
// surrounding whitespace removed.
func (a *Args) Raw() string {
	s := a.Source
	if a.HasTrailing {
		s = s[:len(s)-len(a.Trailing)-1]
	}
	return strings.TrimSpace(s)
}

// Has reports whether the option was given. The name may be any name of the
// option.
func (a *Args) Has(name string) bool {
	_, ok := a.options.Get(a.canonical(name))
	return ok
}

// Get returns the value of the option, or its default if it was not given.
// The second return value is false if there is neither.
func (a *Args) Get(name string) (any, bool) {
	name = a.canonical(name)
	if v, ok := a.options.Get(name); ok {
		return v, true
	}
	if a.spec != nil {
		if opt := a.spec.Option(name); opt != nil && opt.Default != nil {
			return opt.Default, true
		}
	}
	return nil, false
}

// GetString returns the value of a string option, or "".
func (a *Args) GetString(name string) string {
	v, _ := a.Get(name)
	s, _ := v.(string)
	return s
}

// GetBool returns the value of a boolean or argument-less option.
func (a *Args) GetBool(name string) bool {
	v, _ := a.Get(name)
	b, _ := v.(bool)
	return b
}

// GetInt returns the value of an int option, or 0.
func (a *Args) GetInt(name string) int {
	v, _ := a.Get(name)
	n, _ := v.(int)
	return n
}

// GetList returns the value of a list option.
func (a *Args) GetList(name string) []string {
	v, _ := a.Get(name)
	l, _ := v.([]string)
	return l
}

// SetOption sets the value of an option, replacing any previous value while
// keeping its position.
func (a *Args) SetOption(name string, value any) {
	a.options.Set(a.canonical(name), value)
}

// DeleteOption removes an option.
func (a *Args) DeleteOption(name string) {
	a.options.Delete(a.canonical(name))
}

// OptionNames returns the canonical names of the given options, in the order
// they first appeared.
func (a *Args) OptionNames() []string {
	var names []string
	for pair := a.options.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key.(string))
	}
	return names
}

func (a *Args) addOption(opt *OptionSpec, value any) {
	name := opt.Name()
	if !opt.Multiple {
		a.options.Set(name, value)
		return
	}
	var values []any
	if old, ok := a.options.Get(name); ok {
		values = old.([]any)
	}
	a.options.Set(name, append(values, value))
}

func (a *Args) canonical(name string) string {
	if a.spec != nil {
		if opt := a.spec.Option(name); opt != nil {
			return opt.Name()
		}
	}
	return name
}

// Verify checks the number of positional arguments against the argument count
// policy of the Spec the arguments were parsed with.
func (a *Args) Verify() error {
	if a.spec == nil {
		return nil
	}
	argCount := a.spec.argCount()
	n := len(a.Positional)
	switch {
	case n == 0 && (argCount == "1" || argCount == "+"),
		a.spec.Literal != NoLiteral && strings.ContainsAny(argCount, "1+") &&
			strings.TrimSpace(a.Literal) == "":
		return a.error("E471: Argument required", diag.PointRanging(len(a.Source)))
	case n == 1 && argCount == "0",
		n > 1 && strings.Contains("01?", argCount):
		return a.error("E488: Trailing characters", diag.Ranging{From: 0, To: len(a.Source)})
	}
	return nil
}

func (a *Args) error(msg string, r diag.Ranging) error {
	return &diag.Error{
		Type:    ErrorType,
		Message: msg,
		Context: *diag.NewContext("", a.Source, r),
	}
}

// Format returns an Ex command line that parses back to an equivalent Args.
func (a *Args) Format() string {
	var sb strings.Builder
	switch {
	case a.Count == parse.CountAll:
		sb.WriteString("%")
	case a.Count >= 0:
		fmt.Fprint(&sb, a.Count)
	}
	sb.WriteString(a.Command)
	if a.Bang {
		sb.WriteString("!")
	}
	write := func(s string) {
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(s)
	}

	for pair := a.options.Oldest(); pair != nil; pair = pair.Next() {
		name := pair.Key.(string)
		sep := "="
		if len(name) == 2 && name[0] == '-' {
			sep = " "
		}
		values := []any{pair.Value}
		if multi, ok := pair.Value.([]any); ok {
			values = multi
		}
		bare := false
		if a.spec != nil {
			if opt := a.spec.Option(name); opt != nil && opt.Type == NoArg {
				bare = true
			}
		}
		for _, v := range values {
			if bare || v == nil {
				write(name)
			} else {
				write(name + sep + parse.QuoteAuto(formatValue(v)))
			}
		}
	}

	positional := a.Positional
	if a.HasLiteral && len(positional) > 0 {
		positional = positional[:len(positional)-1]
	}
	if a.needsDoubleDash(positional) {
		write("--")
	}
	for _, arg := range positional {
		write(parse.QuoteAuto(arg))
	}

	if a.HasLiteral && a.Literal != "" {
		if strings.Contains(a.Literal, "\n") {
			write("<<EOF\n" + strings.TrimSuffix(a.Literal, "\n") + "\nEOF")
		} else {
			write(a.Literal)
		}
	}
	return sb.String()
}

func (a *Args) needsDoubleDash(positional []string) bool {
	if a.spec == nil || a.spec.AllowUnknownOptions || len(a.spec.Options) == 0 {
		return false
	}
	for _, arg := range positional {
		if strings.HasPrefix(arg, "-") {
			return true
		}
	}
	return false
}

func formatValue(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case []string:
		return strings.Join(v, ",")
	default:
		return fmt.Sprint(v)
	}
}
