package eval

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"src.exline.sh/pkg/complete"
	"src.exline.sh/pkg/getopt"
	"src.exline.sh/pkg/testutil"
)

func completeEx(ev *Evaler, line string) *complete.Context {
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

func TestCompleteEx_CommandName(t *testing.T) {
	ev, _ := setup()
	c := completeEx(ev, ":ech")
	sub := c.Lookup("/command")
	if sub == nil {
		t.Fatal("no command context")
	}
	if diff := cmp.Diff([]string{"echo", "echoerr", "echomsg"}, itemTexts(sub)); diff != "" {
		t.Errorf("items (-want +got):\n%s", diff)
	}
	if sub.Offset() != 1 || sub.Title != "Command" {
		t.Errorf("got offset %d, title %q", sub.Offset(), sub.Title)
	}
}

func TestCompleteEx_PicksMatchingLongName(t *testing.T) {
	ev, _ := setup()
	c := completeEx(ev, "eli")
	if diff := cmp.Diff([]string{"elif"}, itemTexts(c.Lookup("/command"))); diff != "" {
		t.Errorf("items (-want +got):\n%s", diff)
	}
}

func TestCompleteEx_UnknownCommand(t *testing.T) {
	ev, _ := setup()
	c := completeEx(ev, "nope x")
	want := []complete.Highlight{{From: 0, To: 4, Type: complete.HighlightSpellCheck}}
	if diff := cmp.Diff(want, c.Highlights()); diff != "" {
		t.Errorf("highlights (-want +got):\n%s", diff)
	}
}

func TestCompleteEx_Options(t *testing.T) {
	ev, _ := setup()
	c := completeEx(ev, "command -na")
	args := c.Lookup("/args")
	if diff := cmp.Diff([]string{"-nargs"}, itemTexts(args)); diff != "" {
		t.Errorf("items (-want +got):\n%s", diff)
	}

	c = completeEx(ev, "command -nargs=")
	values := c.Lookup("/args/-nargs")
	if diff := cmp.Diff([]string{"*", "+", "0", "1", "?"}, itemTexts(values)); diff != "" {
		t.Errorf("values (-want +got):\n%s", diff)
	}
}

func TestCompleteEx_CommandCompleter(t *testing.T) {
	ev, _ := setup()
	execLines(ev, "command Foo echo foo", "command Bar echo bar")
	c := completeEx(ev, "delcommand F")
	sub := c.Lookup("/delcommand")
	if diff := cmp.Diff([]string{"Foo"}, itemTexts(sub)); diff != "" {
		t.Errorf("items (-want +got):\n%s", diff)
	}
	if sub.Offset() != 11 || sub.Title != "User Command" {
		t.Errorf("got offset %d, title %q", sub.Offset(), sub.Title)
	}
}

func TestCompleteEx_Chain(t *testing.T) {
	ev, _ := setup()
	c := completeEx(ev, "echo a | mes")
	if diff := cmp.Diff([]string{"messages", "messclear"}, itemTexts(c.Lookup("/command"))); diff != "" {
		t.Errorf("items (-want +got):\n%s", diff)
	}
}

func TestCompleteEx_SubCommand(t *testing.T) {
	ev, _ := setup()
	c := completeEx(ev, "silent mes")
	sub := c.Lookup("/silent/command")
	if diff := cmp.Diff([]string{"messages", "messclear"}, itemTexts(sub)); diff != "" {
		t.Errorf("items (-want +got):\n%s", diff)
	}
	if sub.Offset() != 7 {
		t.Errorf("offset %d", sub.Offset())
	}
}

func TestCompleteEx_CustomCompleter(t *testing.T) {
	ev, _ := setup()
	execLines(ev, "command -nargs=1 -complete=custom,colors Paint echo <args>")
	c := completeEx(ev, "Paint ")
	if msg := c.Lookup("/Paint").Message(); msg != "E117: Unknown function: colors" {
		t.Errorf("message %q", msg)
	}

	ev.RegisterCompleter("colors", func(c *complete.Context, _ *getopt.Args) error {
		c.SetCompletions(complete.Texts("red", "green"))
		return nil
	})
	c = completeEx(ev, "Paint r")
	if diff := cmp.Diff([]string{"red"}, itemTexts(c.Lookup("/Paint"))); diff != "" {
		t.Errorf("items (-want +got):\n%s", diff)
	}
}

func TestCompleteFile(t *testing.T) {
	dir := testutil.TempDir(t)
	testutil.MustWriteFile(filepath.Join(dir, "a.txt"), "")
	testutil.MustWriteFile(filepath.Join(dir, ".hidden"), "")
	testutil.Must(os.Mkdir(filepath.Join(dir, "sub"), 0700))

	ev, _ := setup()
	c := completeEx(ev, "source "+dir+"/")
	if diff := cmp.Diff([]string{"a.txt", "sub/"}, itemTexts(c.Lookup("/source"))); diff != "" {
		t.Errorf("items (-want +got):\n%s", diff)
	}
	c = completeEx(ev, "source "+dir+"/.")
	if diff := cmp.Diff([]string{".hidden"}, itemTexts(c.Lookup("/source"))); diff != "" {
		t.Errorf("items (-want +got):\n%s", diff)
	}
}
