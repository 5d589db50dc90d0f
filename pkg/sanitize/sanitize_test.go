package sanitize

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"src.exline.sh/pkg/cli/histutil"
	"src.exline.sh/pkg/complete"
	"src.exline.sh/pkg/eval"
	"src.exline.sh/pkg/messages"
	"src.exline.sh/pkg/options"
	"src.exline.sh/pkg/store/storedefs"
	"src.exline.sh/pkg/tt"
)

var now = time.Date(2024, 5, 10, 15, 30, 0, 0, time.UTC)

func TestParseTimespan(t *testing.T) {
	parse := func(s string) (Timespan, bool) {
		ts, err := ParseTimespan(s, now)
		return ts, err == nil
	}
	tt.Test(t, tt.Fn("ParseTimespan", parse), tt.Table{
		tt.Args("0").Rets(Timespan{}, true),
		tt.Args("1").Rets(Timespan{From: now.Add(-time.Hour)}, true),
		tt.Args("2").Rets(Timespan{From: now.Add(-2 * time.Hour)}, true),
		tt.Args("3").Rets(Timespan{From: now.Add(-4 * time.Hour)}, true),
		tt.Args("4").Rets(Timespan{From: time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)}, true),
		tt.Args("90m").Rets(Timespan{From: now.Add(-90 * time.Minute)}, true),
		tt.Args("2024-05-01..2024-05-03").Rets(Timespan{
			From: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
			To:   time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC),
		}, true),
		tt.Args("..2024-05-03").Rets(Timespan{To: time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC)}, true),
		tt.Args("2024-05-01").Rets(Timespan{From: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)}, true),

		tt.Args("-1h").Rets(Timespan{}, false),
		tt.Args("2024-05-03..2024-05-01").Rets(Timespan{}, false),
		tt.Args("bogus").Rets(Timespan{}, false),
	})
}

func TestTimespan_Contains(t *testing.T) {
	lastHour := Timespan{From: now.Add(-time.Hour)}
	tt.Test(t, tt.Fn("Contains", lastHour.Contains), tt.Table{
		tt.Args(now).Rets(true),
		tt.Args(now.Add(-time.Hour)).Rets(true),
		tt.Args(now.Add(-2 * time.Hour)).Rets(false),
		tt.Args(time.Time{}).Rets(false),
	})
	if !(Timespan{}).Contains(time.Time{}) {
		t.Errorf("the zero Timespan does not contain the zero time")
	}
}

type fixture struct {
	ev      *eval.Evaler
	history *histutil.HybridStore
	out     *[]string
}

func setup(t *testing.T) fixture {
	t.Helper()
	var out []string
	echoer := messages.NewEchoer(nil, false, nil)
	echoer.Listen(func(m messages.Message) { out = append(out, m.Text) })
	ev := eval.NewEvaler(echoer)
	table := options.NewTable()
	must(t, options.InstallCommands(ev, table))

	history, _ := histutil.NewHybridStore(nil, ev.HasPrivateData)
	for _, cmd := range []storedefs.Cmd{
		{Text: "echo http://example.com/a", Time: now.Add(-3 * time.Hour)},
		{Text: "echo http://www.example.com/b", Time: now.Add(-30 * time.Minute)},
		{Text: "set hi=5", Time: now.Add(-30 * time.Minute)},
		{Text: "echo http://other.org", Time: now.Add(-10 * time.Minute)},
	} {
		history.AddCmd(cmd)
	}
	for _, m := range []messages.Message{
		{Text: "old", Timestamp: now.Add(-3 * time.Hour)},
		{Text: "visited", Domains: []string{"example.com"}, PrivateData: true, Timestamp: now.Add(-20 * time.Minute)},
		{Text: "plain", Timestamp: now.Add(-5 * time.Minute)},
	} {
		echoer.History().Add(m)
	}

	s := New(ev, history)
	s.now = func() time.Time { return now }
	must(t, InstallCommands(ev, s, table))
	return fixture{ev, history, &out}
}

func cmdTexts(t *testing.T, h *histutil.HybridStore) []string {
	t.Helper()
	cmds, err := h.AllCmds()
	must(t, err)
	var texts []string
	for _, cmd := range cmds {
		texts = append(texts, cmd.Text)
	}
	return texts
}

func messageTexts(ev *eval.Evaler) []string {
	var texts []string
	for _, m := range ev.Echoer.History().Messages() {
		texts = append(texts, m.Text)
	}
	return texts
}

func TestSanitize(t *testing.T) {
	f := setup(t)

	f.ev.ExecuteLine("sanitize -t=1 -host=example.com commandline")
	wantCmds := []string{"echo http://example.com/a", "set hi=5", "echo http://other.org"}
	if diff := cmp.Diff(wantCmds, cmdTexts(t, f.history)); diff != "" {
		t.Errorf("commands after sanitizing commandline (-want +got):\n%s", diff)
	}

	f.ev.ExecuteLine("sanitize -timespan=2 history")
	wantCmds = []string{"echo http://example.com/a", "set hi=5"}
	if diff := cmp.Diff(wantCmds, cmdTexts(t, f.history)); diff != "" {
		t.Errorf("commands after sanitizing history (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"old", "plain"}, messageTexts(f.ev)); diff != "" {
		t.Errorf("messages after sanitizing history (-want +got):\n%s", diff)
	}

	f.ev.ExecuteLine("sanitize messages")
	if texts := messageTexts(f.ev); len(texts) != 0 {
		t.Errorf("messages left: %q", texts)
	}

	f.ev.ExecuteLine("set sanitizeitems=commandline")
	f.ev.ExecuteLine("sanitize!")
	if texts := cmdTexts(t, f.history); len(texts) != 0 {
		t.Errorf("commands left: %q", texts)
	}

	want := []string{"Removed 1 entry", "Removed 2 entries", "Removed 2 entries", "Removed 2 entries"}
	if diff := cmp.Diff(want, *f.out); diff != "" {
		t.Errorf("output (-want +got):\n%s", diff)
	}
}

func TestSanitize_Errors(t *testing.T) {
	f := setup(t)
	for _, line := range []string{
		"sanitize",
		"sanitize! commandline",
		"sanitize bogus",
		"sanitize commandline bogus",
		"set sanitizeitems=bogus",
		"set sanitizetimespan=bogus",
	} {
		f.ev.ExecuteLine(line)
	}
	want := []string{
		"E471: Argument required",
		"E488: Trailing characters",
		"E475: Invalid argument: bogus",
		"E475: Invalid argument: bogus",
		"E474: Invalid argument: sanitizeitems=bogus",
		"E474: Invalid argument: sanitizetimespan=bogus",
	}
	if diff := cmp.Diff(want, *f.out); diff != "" {
		t.Errorf("output (-want +got):\n%s", diff)
	}
	if len(cmdTexts(t, f.history)) != 4 {
		t.Errorf("commands removed by a failed :sanitize")
	}
}

func TestSanitize_HistoryUsesStoredFlag(t *testing.T) {
	ev := eval.NewEvaler(nil)
	history, _ := histutil.NewHybridStore(nil, nil)
	history.AddCmd(storedefs.Cmd{Text: "echo http://example.com", Time: now})
	history.AddCmd(storedefs.Cmd{Text: "set hi=3", Time: now, PrivateData: true})
	s := New(ev, history)
	s.now = func() time.Time { return now }

	n, err := s.Sanitize([]string{"history"}, Timespan{}, "")
	if n != 1 || err != nil {
		t.Errorf("Sanitize -> %d, %v, want 1, nil", n, err)
	}
	if diff := cmp.Diff([]string{"echo http://example.com"}, cmdTexts(t, history)); diff != "" {
		t.Errorf("commands (-want +got):\n%s", diff)
	}
}

func TestSanitize_TimespanOption(t *testing.T) {
	f := setup(t)
	f.ev.ExecuteLine("set sts=1")
	f.ev.ExecuteLine("sanitize messages")
	if diff := cmp.Diff([]string{"old"}, messageTexts(f.ev)); diff != "" {
		t.Errorf("messages (-want +got):\n%s", diff)
	}
}

func TestSanitizer_Add(t *testing.T) {
	s := New(eval.NewEvaler(nil), nil)
	calls := 0
	s.Add(Item{Name: "messages", Action: func(Timespan, string) (int, error) {
		calls++
		return 3, nil
	}})
	if len(s.Items()) != 3 {
		t.Errorf("got %d items, want 3", len(s.Items()))
	}
	n, err := s.Sanitize([]string{"messages", "commandline"}, Timespan{}, "")
	if n != 3 || err != nil || calls != 1 {
		t.Errorf("Sanitize -> %d, %v after %d calls", n, err, calls)
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

func TestCompleteSanitize(t *testing.T) {
	f := setup(t)
	c := completeEx(f.ev, "sanitize messages ")
	if diff := cmp.Diff([]string{"commandline", "history"}, itemTexts(c.Lookup("/sanitize"))); diff != "" {
		t.Errorf("items (-want +got):\n%s", diff)
	}

	c = completeEx(f.ev, "sanitize -host=")
	want := []string{"example.com", "other.org", "www.example.com"}
	if diff := cmp.Diff(want, itemTexts(c.Lookup("/args/-host"))); diff != "" {
		t.Errorf("hosts (-want +got):\n%s", diff)
	}
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}
