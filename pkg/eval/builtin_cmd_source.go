package eval

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"src.exline.sh/pkg/getopt"
)

var readFile = os.ReadFile

func init() {
	addBuiltinInstaller(func(ev *Evaler) {
		ev.mustAdd([]string{"so[urce]"}, "Read Ex commands from a file", cmdSource, Extra{
			ArgCount:    "1",
			Bang:        true,
			Completer:   CompleteFile,
			PrivateData: NoPrivateData,
		})
	})
}

func cmdSource(fm *Frame, args *getopt.Args) error {
	name := ExpandHome(args.Arg(0))
	code, err := fm.ReadFile(name)
	if err != nil {
		if args.Bang {
			return nil
		}
		return fmt.Errorf("E484: Can't open file %s", args.Arg(0))
	}
	fm.sourceCode(name, code, args.Bang)
	return nil
}

// Source executes the Ex script in a file. Errors in the script are reported
// with the Loud mode, or only logged if silent is true, and returned.
func (ev *Evaler) Source(name string, silent bool) error {
	code, err := ev.ReadFile(name)
	if err != nil {
		return fmt.Errorf("E484: Can't open file %s", name)
	}
	return ev.sourceCode(name, code, silent)
}

func (ev *Evaler) sourceCode(name string, code []byte, silent bool) error {
	mode := Loud
	if silent {
		mode = Quiet
	}
	logger.Println("sourcing", name)
	return ev.Execute(Source{Name: name, Code: string(code), IsFile: true}, ExecCfg{Silent: mode})
}

// ExpandHome replaces a leading "~" in a path with the home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
