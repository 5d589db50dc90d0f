package getopt

import (
	"errors"
	"regexp"
	"testing"

	"github.com/google/go-cmp/cmp"
	"src.exline.sh/pkg/complete"
	"src.exline.sh/pkg/diag"
)

var nargsPattern = regexp.MustCompile(`^[01*?+]$`)

var commandSpec = &Spec{
	Options: []*OptionSpec{
		{Names: []string{"-bang"}, Description: "Command may be followed by a !"},
		{Names: []string{"-count"}, Description: "Command may be preceded by a count"},
		{Names: []string{"-description"}, Type: String},
		{Names: []string{"-nargs"}, Type: String,
			Validator: func(v any) bool { return nargsPattern.MatchString(v.(string)) },
			Values:    complete.Texts("0", "1", "*", "?", "+")},
	},
	Literal: 1,
}

var typedSpec = &Spec{
	Options: []*OptionSpec{
		{Names: []string{"-n", "-num"}, Type: Int},
		{Names: []string{"-f"}, Type: Float},
		{Names: []string{"-b"}, Type: Bool},
		{Names: []string{"-l"}, Type: List},
		{Names: []string{"-t", "-tag"}, Type: String, Multiple: true},
		{Names: []string{"-a"}, Type: Any},
		{Names: []string{"-mode"}, Type: String, Default: "fast"},
	},
	Literal: NoLiteral,
}

func plainSpec(argCount string) *Spec {
	return &Spec{ArgCount: argCount, Literal: NoLiteral}
}

func options(a *Args) map[string]any {
	m := map[string]any{}
	for _, name := range a.OptionNames() {
		m[name], _ = a.Get(name)
	}
	return m
}

func TestParse(t *testing.T) {
	tests := []struct {
		name       string
		str        string
		spec       *Spec
		positional []string
		options    map[string]any
		literal    string
		trailing   string
	}{
		{
			name:       "command with literal",
			str:        "-nargs=1 Foo echo <args>",
			spec:       commandSpec,
			positional: []string{"Foo", "echo <args>"},
			options:    map[string]any{"-nargs": "1"},
			literal:    "echo <args>",
		},
		{
			name:       "option value after whitespace",
			str:        `-description "My command" -bang Foo x  y`,
			spec:       commandSpec,
			positional: []string{"Foo", "x  y"},
			options:    map[string]any{"-description": "My command", "-bang": true},
			literal:    "x  y",
		},
		{
			name:       "typed options",
			str:        `-num=12 -f 1.5 -b=on -l="a, b,c" -t=x -tag y -a`,
			spec:       typedSpec,
			positional: nil,
			options: map[string]any{
				"-n": 12, "-f": 1.5, "-b": true, "-l": []string{"a", "b", "c"},
				"-t": []any{"x", "y"}, "-a": nil},
		},
		{
			name:       "quoted positionals",
			str:        `"a\tb" 'it''s' c\ d`,
			spec:       plainSpec("*"),
			positional: []string{"a\tb", "it's", "c d"},
			options:    map[string]any{},
		},
		{
			name:       "double dash",
			str:        "-n=1 -- -n=2",
			spec:       typedSpec,
			positional: []string{"-n=2"},
			options:    map[string]any{"-n": 1},
		},
		{
			name:       "unknown options allowed",
			str:        "-x y",
			spec:       &Spec{Options: typedSpec.Options, AllowUnknownOptions: true, Literal: NoLiteral},
			positional: []string{"-x", "y"},
			options:    map[string]any{},
		},
		{
			name:       "no options",
			str:        "-- -x",
			spec:       plainSpec("*"),
			positional: []string{"--", "-x"},
			options:    map[string]any{},
		},
		{
			name:       "trailing command",
			str:        "a b | echo 2",
			spec:       plainSpec("*"),
			positional: []string{"a", "b"},
			options:    map[string]any{},
			trailing:   " echo 2",
		},
		{
			name:       "pipe ends a bare token",
			str:        "a|b",
			spec:       plainSpec("*"),
			positional: []string{"a"},
			options:    map[string]any{},
			trailing:   "b",
		},
		{
			name:       "pipe in literal",
			str:        "Foo echo 1 | echo 2",
			spec:       commandSpec,
			positional: []string{"Foo", "echo 1 | echo 2"},
			options:    map[string]any{},
			literal:    "echo 1 | echo 2",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			args, err := Parse(test.str, test.spec)
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", test.str, err)
			}
			if diff := cmp.Diff(test.positional, args.Positional); diff != "" {
				t.Errorf("positional (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(test.options, options(args)); diff != "" {
				t.Errorf("options (-want +got):\n%s", diff)
			}
			if args.Literal != test.literal {
				t.Errorf("literal -> %q, want %q", args.Literal, test.literal)
			}
			if args.Trailing != test.trailing || args.HasTrailing != (test.trailing != "") {
				t.Errorf("trailing -> %q (%v), want %q", args.Trailing, args.HasTrailing, test.trailing)
			}
		})
	}
}

func TestParse_UnicodeSpaces(t *testing.T) {
	tests := []struct {
		str        string
		spec       *Spec
		positional []string
	}{
		{"a\u00a0b c", plainSpec("*"), []string{"a", "b", "c"}},
		{"\u3000a\u2003", plainSpec("*"), []string{"a"}},
		{"-description\u00a0x Foo", commandSpec, []string{"Foo"}},
	}
	for _, test := range tests {
		args, err := Parse(test.str, test.spec)
		if err != nil {
			t.Errorf("Parse(%q) error: %v", test.str, err)
			continue
		}
		if diff := cmp.Diff(test.positional, args.Positional); diff != "" {
			t.Errorf("Parse(%q) positional (-want +got):\n%s", test.str, diff)
		}
	}
	args, _ := Parse("-description\u00a0x Foo", commandSpec)
	if got := args.GetString("-description"); got != "x" {
		t.Errorf("-description -> %q, want %q", got, "x")
	}
}

func TestParse_OptionOrder(t *testing.T) {
	args, _ := Parse("-count -description=x -bang Foo bar", commandSpec)
	want := []string{"-count", "-description", "-bang"}
	if diff := cmp.Diff(want, args.OptionNames()); diff != "" {
		t.Errorf("OptionNames() (-want +got):\n%s", diff)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		str  string
		spec *Spec
		msg  string
		r    diag.Ranging
	}{
		{"-nargs=2 Foo x", commandSpec, "Invalid argument for option: -nargs", diag.Ranging{From: 7, To: 8}},
		{"-bogus Foo", commandSpec, "Invalid option: -bogus", diag.Ranging{From: 0, To: 6}},
		{"-bangx Foo", commandSpec, "Invalid option: -bangx", diag.Ranging{From: 0, To: 6}},
		{`"Foo`, commandSpec, `E114: Missing quote: "`, diag.Ranging{From: 0, To: 4}},
		{`-description='x`, commandSpec, `E114: Missing quote: '`, diag.Ranging{From: 13, To: 15}},
		{`Foo\`, commandSpec, `Trailing \`, diag.Ranging{From: 3, To: 4}},
		{"-description", commandSpec, "Invalid argument for string option: -description", diag.Ranging{From: 12, To: 12}},
		{"-bang=x Foo", commandSpec, "Invalid argument for no arg option: -bang", diag.Ranging{From: 6, To: 7}},
		{"-n=x", typedSpec, "Invalid argument for int option: -n", diag.Ranging{From: 3, To: 4}},
		{"-b=maybe", typedSpec, "Invalid argument for boolean option: -b", diag.Ranging{From: 3, To: 8}},
		{"", plainSpec("1"), "E471: Argument required", diag.Ranging{From: 0, To: 0}},
		{"", plainSpec("+"), "E471: Argument required", diag.Ranging{From: 0, To: 0}},
		{"Foo", commandSpec2("1"), "E471: Argument required", diag.Ranging{From: 3, To: 3}},
		{"x", plainSpec("0"), "E488: Trailing characters", diag.Ranging{From: 0, To: 1}},
		{"a b", plainSpec("?"), "E488: Trailing characters", diag.Ranging{From: 0, To: 3}},
		{"a b", plainSpec("1"), "E488: Trailing characters", diag.Ranging{From: 0, To: 3}},
	}
	for _, test := range tests {
		_, err := Parse(test.str, test.spec)
		var e *diag.Error
		if !errors.As(err, &e) {
			t.Errorf("Parse(%q) -> error %v, want *diag.Error", test.str, err)
			continue
		}
		if e.Message != test.msg || e.Range() != test.r || e.Type != ErrorType {
			t.Errorf("Parse(%q) -> %q at %v, want %q at %v",
				test.str, e.Message, e.Range(), test.msg, test.r)
		}
		if err.Error() != test.msg {
			t.Errorf("Parse(%q).Error() -> %q, want %q", test.str, err.Error(), test.msg)
		}
	}
}

// A spec like commandSpec, but with an argument count policy.
func commandSpec2(argCount string) *Spec {
	spec := *commandSpec
	spec.ArgCount = argCount
	return &spec
}

func TestParse_ArgCount(t *testing.T) {
	ok := []struct {
		argCount string
		str      string
	}{
		{"0", ""}, {"1", "a"}, {"?", ""}, {"?", "a"}, {"*", ""}, {"*", "a b c"},
		{"+", "a"}, {"+", "a b"}, {"", "a b"},
	}
	for _, test := range ok {
		if _, err := Parse(test.str, plainSpec(test.argCount)); err != nil {
			t.Errorf("Parse(%q) with argCount %q -> %v", test.str, test.argCount, err)
		}
	}
}

func TestParse_HereDoc(t *testing.T) {
	var markers []string
	spec := &Spec{
		Literal: 0,
		HereDoc: true,
		ReadHeredoc: func(marker string) (string, error) {
			markers = append(markers, marker)
			if marker == "BAD" {
				return "", errors.New("Unexpected end of file waiting for BAD")
			}
			return "line 1\nline 2", nil
		},
	}
	args, err := Parse("<<EOF", spec)
	if err != nil || args.Literal != "line 1\nline 2" {
		t.Errorf("Parse(<<EOF) -> %q, %v", args.Literal, err)
	}
	args, _ = Parse("head <<  END", spec)
	if args.Literal != "head \nline 1\nline 2" {
		t.Errorf("Parse(head <<  END) -> %q", args.Literal)
	}
	_, err = Parse("<<BAD", spec)
	if err == nil || err.Error() != "Unexpected end of file waiting for BAD" {
		t.Errorf("Parse(<<BAD) -> %v", err)
	}
	if diff := cmp.Diff([]string{"EOF", "END", "BAD"}, markers); diff != "" {
		t.Errorf("markers (-want +got):\n%s", diff)
	}
}

func TestArgs_Accessors(t *testing.T) {
	args, err := Parse("-num=3 -b=false -l=x,y -tag=a x", typedSpec)
	if err != nil {
		t.Fatal(err)
	}
	if args.GetInt("-n") != 3 || args.GetInt("-num") != 3 {
		t.Errorf("GetInt -> %d", args.GetInt("-n"))
	}
	if args.GetBool("-b") || !args.Has("-b") {
		t.Errorf("GetBool or Has wrong for -b")
	}
	if diff := cmp.Diff([]string{"x", "y"}, args.GetList("-l")); diff != "" {
		t.Errorf("GetList (-want +got):\n%s", diff)
	}
	if args.Has("-mode") || args.GetString("-mode") != "fast" {
		t.Errorf("default of -mode not returned by accessors")
	}
	if args.Arg(0) != "x" || args.Arg(1) != "" || args.Len() != 1 {
		t.Errorf("positional accessors wrong")
	}
	args.SetOption("-mode", "slow")
	args.DeleteOption("-num")
	if args.GetString("-mode") != "slow" || args.Has("-n") {
		t.Errorf("SetOption or DeleteOption had no effect")
	}
}

func TestFormat(t *testing.T) {
	args, err := Parse(`-description "a b" -bang -nargs=? Foo echo "hi"`, commandSpec)
	if err != nil {
		t.Fatal(err)
	}
	args.Command = "command"
	args.Bang = true
	want := `command! -description="a b" -bang -nargs=? Foo echo "hi"`
	if got := args.Format(); got != want {
		t.Errorf("Format() -> %q, want %q", got, want)
	}

	built := NewArgs("command", commandSpec)
	built.Positional = []string{"Foo", "a\nb"}
	built.Literal, built.HasLiteral = "a\nb", true
	if got, want := built.Format(), "command Foo <<EOF\na\nb\nEOF"; got != want {
		t.Errorf("Format() -> %q, want %q", got, want)
	}

	counted := NewArgs("yank", nil)
	counted.Count = 3
	counted.Positional = []string{""}
	if got, want := counted.Format(), `3yank ""`; got != want {
		t.Errorf("Format() -> %q, want %q", got, want)
	}
}

func TestFormat_RoundTrip(t *testing.T) {
	tests := []struct {
		str  string
		spec *Spec
	}{
		{`-description "a b" -count Foo echo <args>`, commandSpec},
		{`-num=3 -f=2.5 -b=off -l=x,y -t=a -t="b c" -a=raw -a`, typedSpec},
		{`-n=1 -- -x "-y z" "" 'q"uote' back\\slash`, typedSpec},
		{`"tab\there" new\ line "pipe|x"`, plainSpec("*")},
		{`Foo`, commandSpec},
	}
	for _, test := range tests {
		first, err := Parse(test.str, test.spec)
		if err != nil {
			t.Errorf("Parse(%q) error: %v", test.str, err)
			continue
		}
		formatted := first.Format()
		second, err := Parse(formatted, test.spec)
		if err != nil {
			t.Errorf("Parse(%q) (formatted from %q) error: %v", formatted, test.str, err)
			continue
		}
		if diff := cmp.Diff(first.Positional, second.Positional); diff != "" {
			t.Errorf("positional differ after round trip through %q (-first +second):\n%s", formatted, diff)
		}
		if diff := cmp.Diff(options(first), options(second)); diff != "" {
			t.Errorf("options differ after round trip through %q (-first +second):\n%s", formatted, diff)
		}
	}
}

func completeArgs(str string, spec *Spec) (*Args, *complete.Context, *complete.Context) {
	root := complete.New(str)
	c := root.Fork("args", 0, nil)
	return ParseComplete(c.Filter(), spec, c), root, c
}

func itemTexts(items []complete.Item) []string {
	var texts []string
	for _, it := range items {
		texts = append(texts, it.Text)
	}
	return texts
}

func TestParseComplete_OptionName(t *testing.T) {
	args, _, c := completeArgs("-de", commandSpec)
	if args.CompleteStart != 0 || args.CompleteFilter != "-de" || args.CompleteOpt != nil {
		t.Errorf("got start %d, filter %q, opt %v", args.CompleteStart, args.CompleteFilter, args.CompleteOpt)
	}
	if diff := cmp.Diff([]string{"-description"}, itemTexts(c.Items())); diff != "" {
		t.Errorf("option items (-want +got):\n%s", diff)
	}
	if c.Title != "Options" {
		t.Errorf("Title -> %q", c.Title)
	}
}

func TestParseComplete_GivenOptionsNotOffered(t *testing.T) {
	_, _, c := completeArgs("-bang -", commandSpec)
	want := []string{"-count", "-description", "-nargs"}
	if diff := cmp.Diff(want, itemTexts(c.Items())); diff != "" {
		t.Errorf("option items (-want +got):\n%s", diff)
	}
}

func TestParseComplete_OptionValue(t *testing.T) {
	args, root, c := completeArgs("-nargs=", commandSpec)
	if args.CompleteOpt == nil || args.CompleteOpt.Name() != "-nargs" || args.CompleteStart != 7 {
		t.Fatalf("got opt %v, start %d", args.CompleteOpt, args.CompleteStart)
	}
	if len(args.Diagnostics) != 0 {
		t.Errorf("unexpected diagnostics %v", args.Diagnostics)
	}
	sub := root.Lookup("/args/-nargs")
	if sub == nil {
		t.Fatalf("option context not forked")
	}
	if diff := cmp.Diff([]string{"*", "+", "0", "1", "?"}, itemTexts(sub.Items())); diff != "" {
		t.Errorf("value items (-want +got):\n%s", diff)
	}
	if c.Offset() != 7 || len(c.Items()) != 0 {
		t.Errorf("argument context at %d with %d items", c.Offset(), len(c.Items()))
	}
}

func TestParseComplete_OptionValueAfterSpace(t *testing.T) {
	args, _, _ := completeArgs("-description ", commandSpec)
	if args.CompleteOpt == nil || args.CompleteStart != 13 || args.CompleteFilter != "" {
		t.Errorf("got opt %v, start %d, filter %q", args.CompleteOpt, args.CompleteStart, args.CompleteFilter)
	}
}

func TestParseComplete_Positional(t *testing.T) {
	args, _, c := completeArgs("-bang Fo", commandSpec)
	if args.CompleteArg != 0 || args.CompleteStart != 6 || args.CompleteFilter != "Fo" {
		t.Errorf("got arg %d, start %d, filter %q", args.CompleteArg, args.CompleteStart, args.CompleteFilter)
	}
	if c.Filter() != "Fo" {
		t.Errorf("context filter -> %q", c.Filter())
	}

	args, _, _ = completeArgs("Foo ec", commandSpec)
	if args.CompleteArg != 1 || !args.HasLiteral || args.Literal != "ec" || args.CompleteStart != 4 {
		t.Errorf("got arg %d, literal %q, start %d", args.CompleteArg, args.Literal, args.CompleteStart)
	}
}

func TestParseComplete_OpenQuote(t *testing.T) {
	args, _, _ := completeArgs(`"Fo`, commandSpec)
	if args.CompleteFilter != "Fo" || args.Quote.Open != `"` || len(args.Diagnostics) != 0 {
		t.Errorf("got filter %q, quote %+v, diagnostics %v", args.CompleteFilter, args.Quote, args.Diagnostics)
	}
}

func TestParseComplete_Invalid(t *testing.T) {
	args, root, c := completeArgs("-nargs=x Foo", commandSpec)
	want := []Diagnostic{{"Invalid argument for option: -nargs", diag.Ranging{From: 7, To: 8}}}
	if diff := cmp.Diff(want, args.Diagnostics); diff != "" {
		t.Errorf("diagnostics (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]complete.Highlight{{From: 7, To: 8, Type: complete.HighlightSpellCheck}}, root.Highlights()); diff != "" {
		t.Errorf("highlights (-want +got):\n%s", diff)
	}
	if c.Message() != "Invalid argument for option: -nargs" {
		t.Errorf("Message() -> %q", c.Message())
	}

	_, root, _ = completeArgs("a b", plainSpec("0"))
	if len(root.Highlights()) == 0 {
		t.Errorf("extra argument not highlighted")
	}
}
