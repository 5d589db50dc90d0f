package shell

import (
	"os"
	"path/filepath"
	"testing"

	. "src.exline.sh/pkg/prog/progtest"
	"src.exline.sh/pkg/testutil"
)

// Points all default paths into a temporary directory, and returns it.
func setupHome(t *testing.T) string {
	home := testutil.TempDir(t)
	testutil.Setenv(t, envHome, home)
	testutil.Setenv(t, envXDGConfigHome, "")
	testutil.Setenv(t, envXDGStateHome, "")
	return home
}

func writeFile(t *testing.T, name, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(name), 0700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(name, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
}

func TestShell_Usage(t *testing.T) {
	setupHome(t)
	Test(t, &Program{},
		ThatExline("-c").
			ExitsWith(2).WritesStderrContaining("-c requires an argument"),
		ThatExline("-compileonly").
			ExitsWith(2).WritesStderrContaining("-compileonly requires a script"),
		ThatExline("a.ex", "b").
			ExitsWith(2).WritesStderrContaining("arguments after the script are not supported"),
	)
}

func TestShell_Code(t *testing.T) {
	setupHome(t)
	Test(t, &Program{},
		ThatExline("-c", "echo hello").WritesStdout("hello\n"),
		ThatExline("-c", "echo a | echoerr b").
			WritesStdout("a\n").WritesStderr("b\n"),
		ThatExline("-c", "delcommand Nope | echo after").
			ExitsWith(2).
			WritesStdout("after\n").
			WritesStderr("code from -c:1: E184: No such user-defined command: Nope\n"),
	)
}

func TestShell_ConfigSetsOptions(t *testing.T) {
	home := setupHome(t)
	writeFile(t, filepath.Join(home, ".config", "exline", "options.yaml"), "history: 7\n")
	other := filepath.Join(home, "other.yaml")
	writeFile(t, other, "history: 9\n")

	Test(t, &Program{},
		ThatExline("-c", "set history?").WritesStdout("  history=7\n"),
		ThatExline("-config", other, "-c", "set history?").WritesStdout("  history=9\n"),
	)
}

func TestShell_BadConfigWarns(t *testing.T) {
	home := setupHome(t)
	bad := filepath.Join(home, "bad.yaml")
	writeFile(t, bad, "nosuchoption: 1\n")

	Test(t, &Program{},
		ThatExline("-config", bad, "-c", "echo ok").
			WritesStdout("ok\n").WritesStderrContaining("Warning: "+bad),
	)
}
