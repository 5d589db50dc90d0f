package options

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"src.exline.sh/pkg/complete"
	"src.exline.sh/pkg/eval"
	"src.exline.sh/pkg/messages"
	"src.exline.sh/pkg/store"
	"src.exline.sh/pkg/tt"
)

func setup(t *testing.T) (*Table, *eval.Evaler, *[]string) {
	t.Helper()
	var out []string
	echoer := messages.NewEchoer(nil, false, nil)
	echoer.Listen(func(m messages.Message) { out = append(out, m.Text) })
	ev := eval.NewEvaler(echoer)
	table := NewTable()
	if err := InstallCommands(ev, table); err != nil {
		t.Fatal(err)
	}
	return table, ev, &out
}

func execLines(ev *eval.Evaler, lines ...string) {
	for _, line := range lines {
		ev.ExecuteLine(line)
	}
}

func TestTable_Defaults(t *testing.T) {
	table := NewTable()
	if table.Int("history") != 500 || table.Int("maxitems") != 20 || table.Int("msgs") != 100 {
		t.Errorf("got history %d, maxitems %d, messages %d",
			table.Int("history"), table.Int("maxitems"), table.Int("msgs"))
	}
	if diff := cmp.Diff([]string{"list:full"}, table.List("wildmode")); diff != "" {
		t.Errorf("wildmode (-want +got):\n%s", diff)
	}
	if table.Bool("visualbell") {
		t.Errorf("visualbell on by default")
	}
	for _, o := range table.All() {
		if !o.IsDefault() {
			t.Errorf("option %s not at its default", o.Name())
		}
	}
}

func TestTable_Has(t *testing.T) {
	table := NewTable()
	tt.Test(t, tt.Fn("Has", table.Has), tt.Table{
		tt.Args("wildmode", "list").Rets(true),
		tt.Args("wildmode", "full").Rets(true),
		tt.Args("wildmode", "longest").Rets(false),
		tt.Args("altwildmode", "longest").Rets(true),
	})
}

func TestTable_Settings(t *testing.T) {
	table := NewTable()
	if !table.AutoComplete("/command") || !table.WildSort("/args") {
		t.Errorf("default settings do not autocomplete and sort")
	}
	if mode := table.WildCase("/command"); mode != complete.CaseSmart {
		t.Errorf("WildCase -> %v", mode)
	}

	must(t, table.Set("wildcase", "^/command=match,ignore"))
	must(t, table.Set("autocomplete", "!^/args,.*"))
	must(t, table.Set("wildsort", ""))
	tt.Test(t, tt.Fn("WildCase", table.WildCase), tt.Table{
		tt.Args("/command").Rets(complete.CaseMatch),
		tt.Args("/args").Rets(complete.CaseIgnore),
	})
	tt.Test(t, tt.Fn("AutoComplete", table.AutoComplete), tt.Table{
		tt.Args("/args/-nargs").Rets(false),
		tt.Args("/command").Rets(true),
	})
	if table.WildSort("/command") {
		t.Errorf("empty wildsort still sorts")
	}
	if got := table.Text("wildcase"); got != "^/command=match,.?=ignore" {
		t.Errorf("wildcase = %q", got)
	}
}

func TestTable_OnChange(t *testing.T) {
	table := NewTable()
	var changed []string
	table.OnChange(func(o *Option) { changed = append(changed, o.Name()+"="+o.Text()) })
	must(t, table.Set("msgs", "5"))
	must(t, table.Reset("messages"))
	if err := table.Set("messages", "-1"); err == nil {
		t.Errorf("negative messages accepted")
	}
	if diff := cmp.Diff([]string{"messages=5", "messages=100"}, changed); diff != "" {
		t.Errorf("changes (-want +got):\n%s", diff)
	}
}

func TestSet(t *testing.T) {
	table, ev, out := setup(t)
	execLines(ev,
		"set wim=full",
		"set wim+=longest",
		"set wim^=list",
		"set wim-=full",
		"set wim?",
		"set wim!=list,full",
		"set wildmode",
		"set hi=10 maxitems+=5 msgs^=2",
		"set vb",
		"set vb?",
		"set novb",
		"set vb?",
		"set invvb",
		"set vb!",
		"set vb?",
		"set hi&",
	)
	want := []string{
		"  wildmode=list,longest",
		"  wildmode=full,longest",
		"  visualbell",
		"novisualbell",
		"novisualbell",
	}
	if diff := cmp.Diff(want, *out); diff != "" {
		t.Errorf("output (-want +got):\n%s", diff)
	}
	if table.Int("history") != 500 || table.Int("maxitems") != 25 || table.Int("messages") != 200 {
		t.Errorf("got history %d, maxitems %d, messages %d",
			table.Int("history"), table.Int("maxitems"), table.Int("messages"))
	}
}

func TestSet_Errors(t *testing.T) {
	_, ev, out := setup(t)
	execLines(ev,
		"set nope",
		"set hi=x",
		"set maxitems=0",
		"set vb=1",
		"set wim=bogus",
		"set wic=bogus",
		"set nowim=full",
		"set hi+=y",
	)
	want := []string{
		"E518: Unknown option: nope",
		"E521: Number required after =: history=x",
		"E474: Invalid argument: maxitems=0",
		"E474: Invalid argument: vb=1",
		"E474: Invalid argument: wildmode=bogus",
		"E474: Invalid argument: wildcase=bogus",
		"E474: Invalid argument: nowim=full",
		"E521: Number required after =: history=y",
	}
	if diff := cmp.Diff(want, *out); diff != "" {
		t.Errorf("output (-want +got):\n%s", diff)
	}
}

func TestSet_Listing(t *testing.T) {
	_, ev, out := setup(t)
	execLines(ev, "set", "set hi=7 vb", "set", "set all&", "set")
	want := []string{
		"--- Options ---",
		"--- Options ---\n  history=7\n  visualbell",
		"--- Options ---",
	}
	if diff := cmp.Diff(want, *out); diff != "" {
		t.Errorf("output (-want +got):\n%s", diff)
	}

	*out = nil
	ev.ExecuteLine("set all")
	if len(*out) != 1 || !strings.Contains((*out)[0], "\n  maxitems=20\n") {
		t.Errorf("got %q", *out)
	}
}

func TestLoadYAML(t *testing.T) {
	table := NewTable()
	err := table.LoadYAML(strings.NewReader(
		"history: 42\nwildmode: [longest, full]\nvisualbell: true\nnope: 1\n"))
	if err == nil || !strings.Contains(err.Error(), "line 4: E518: Unknown option: nope") {
		t.Errorf("LoadYAML -> %v", err)
	}
	if table.Int("history") != 42 || !table.Bool("visualbell") {
		t.Errorf("got history %d, visualbell %v", table.Int("history"), table.Bool("visualbell"))
	}
	if diff := cmp.Diff([]string{"longest", "full"}, table.List("wildmode")); diff != "" {
		t.Errorf("wildmode (-want +got):\n%s", diff)
	}

	var buf bytes.Buffer
	must(t, table.DumpYAML(&buf))
	if strings.Contains(buf.String(), "maxitems") {
		t.Errorf("DumpYAML wrote a default value: %q", buf.String())
	}
	reloaded := NewTable()
	must(t, reloaded.LoadYAML(&buf))
	for _, o := range table.All() {
		if got := reloaded.Text(o.Name()); got != o.Text() {
			t.Errorf("reloaded %s = %q, want %q", o.Name(), got, o.Text())
		}
	}

	if err := NewTable().LoadYAML(strings.NewReader("")); err != nil {
		t.Errorf("empty input -> %v", err)
	}
}

func TestSetStore(t *testing.T) {
	st, cleanup := store.MustGetTempStore()
	defer cleanup()
	must(t, st.SetOption("history", "7"))
	must(t, st.SetOption("unknown", "x"))
	must(t, st.SetOption("maxitems", "-3"))

	table := NewTable()
	must(t, table.SetStore(st))
	if table.Int("history") != 7 || table.Int("maxitems") != 20 {
		t.Errorf("got history %d, maxitems %d", table.Int("history"), table.Int("maxitems"))
	}

	must(t, table.Set("messages", "5"))
	must(t, table.Reset("history"))
	saved, err := st.Options()
	must(t, err)
	want := map[string]string{"messages": "5", "unknown": "x", "maxitems": "-3"}
	if diff := cmp.Diff(want, saved); diff != "" {
		t.Errorf("saved (-want +got):\n%s", diff)
	}
}

func completeEx(ev *eval.Evaler, line string) *complete.Context {
	c := complete.New(line)
	ev.CompleteEx(c)
	return c
}

func itemTexts(c *complete.Context) []string {
	if c == nil {
		return nil
	}
	var texts []string
	for _, it := range c.Items() {
		texts = append(texts, it.Text)
	}
	return texts
}

func TestCompleteSet(t *testing.T) {
	_, ev, _ := setup(t)
	tests := []struct {
		line       string
		context    string
		wantItems  []string
		wantOffset int
	}{
		{"set wi", "/set", []string{"wildcase", "wildmode", "wildsort"}, 4},
		{"set awim", "/set", []string{"altwildmode"}, 4},
		{"set novi", "/set", []string{"visualbell"}, 6},
		{"set hi=1 vb wim=l", "/set/values", []string{"list", "list:full", "list:longest"}, 16},
		{"set wim=full,l", "/set/values", []string{"list", "list:full", "list:longest"}, 13},
		{"set wic=^/x=i", "/set/values", []string{"ignore"}, 12},
		{"set wim-=f", "/set/values", nil, 9},
	}
	for _, test := range tests {
		c := completeEx(ev, test.line).Lookup(test.context)
		if c == nil {
			t.Errorf("%q: no context %s", test.line, test.context)
			continue
		}
		if diff := cmp.Diff(test.wantItems, itemTexts(c)); diff != "" {
			t.Errorf("%q: items (-want +got):\n%s", test.line, diff)
		}
		if c.Offset() != test.wantOffset {
			t.Errorf("%q: offset %d, want %d", test.line, c.Offset(), test.wantOffset)
		}
	}
}

func TestCompleteSet_DefaultValues(t *testing.T) {
	_, ev, _ := setup(t)
	ev.ExecuteLine("set hi=7")
	c := completeEx(ev, "set hi=").Lookup("/set/default")
	if diff := cmp.Diff([]string{"500", "7"}, itemTexts(c)); diff != "" {
		t.Errorf("items (-want +got):\n%s", diff)
	}
}

func TestCompleteSet_UnknownOption(t *testing.T) {
	_, ev, _ := setup(t)
	c := completeEx(ev, "set xyz=a")
	if msg := c.Lookup("/set").Message(); msg != "No such option: xyz" {
		t.Errorf("message %q", msg)
	}
	want := []complete.Highlight{{From: 4, To: 7, Type: complete.HighlightSpellCheck}}
	if diff := cmp.Diff(want, c.Highlights()); diff != "" {
		t.Errorf("highlights (-want +got):\n%s", diff)
	}
}

func TestOptionCompleter(t *testing.T) {
	_, ev, _ := setup(t)
	ev.ExecuteLine("command -nargs=1 -complete=option Show set <args>?")
	c := completeEx(ev, "Show max")
	if diff := cmp.Diff([]string{"maxitems"}, itemTexts(c.Lookup("/Show"))); diff != "" {
		t.Errorf("items (-want +got):\n%s", diff)
	}
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}
