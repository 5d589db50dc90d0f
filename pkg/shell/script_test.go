package shell

import (
	"path/filepath"
	"testing"

	. "src.exline.sh/pkg/prog/progtest"
)

func TestScript(t *testing.T) {
	home := setupHome(t)
	good := filepath.Join(home, "good.ex")
	writeFile(t, good, "echo a\n\" comment\necho b\n")
	bad := filepath.Join(home, "bad.ex")
	writeFile(t, bad, "echo a\nNope x\n")
	notUTF8 := filepath.Join(home, "latin1.ex")
	writeFile(t, notUTF8, "echo \xe9\n")

	Test(t, &Program{},
		ThatExline(good).WritesStdout("a\nb\n"),
		ThatExline(bad).
			ExitsWith(2).
			WritesStdout("a\n").
			WritesStderr(bad+":2: E492: Not a command: Nope\n"),
		ThatExline(filepath.Join(home, "nope.ex")).
			ExitsWith(2).WritesStderrContaining("cannot read script"),
		ThatExline(notUTF8).
			ExitsWith(2).WritesStderrContaining("source is not UTF-8"),
	)
}

func TestScript_CompileOnly(t *testing.T) {
	home := setupHome(t)
	good := filepath.Join(home, "good.ex")
	writeFile(t, good, "echo a\n")
	bad := filepath.Join(home, "bad.ex")
	writeFile(t, bad, "echo a\nNope x\n")

	Test(t, &Program{},
		ThatExline("-compileonly", good).DoesNothing(),
		ThatExline("-compileonly", "-json", good).WritesStdout("[]\n"),
		ThatExline("-compileonly", bad).
			ExitsWith(2).WritesStderrContaining("E492: Not a command: Nope"),
		ThatExline("-compileonly", "-json", bad).
			ExitsWith(2).
			WritesStdout(`[{"fileName":"` + bad + `","start":7,"end":13,"message":"E492: Not a command: Nope"}]` + "\n"),
		ThatExline("-compileonly", "-c", "Nope").
			ExitsWith(2).WritesStderrContaining("code from -c"),
	)
}
