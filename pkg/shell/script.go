package shell

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"src.exline.sh/pkg/diag"
	"src.exline.sh/pkg/eval"
	"src.exline.sh/pkg/messages"
)

// Configuration for the script mode.
type scriptCfg struct {
	Cmd         bool
	CompileOnly bool
	JSON        bool
	Config      string
}

// Executes an Ex script. Messages go to stdout, error messages to stderr.
func script(fds [3]*os.File, arg0 string, cfg *scriptCfg) int {
	echoer := messages.NewEchoer(nil, false, nil)
	echoer.Listen(func(m messages.Message) {
		if m.Highlight == messages.ErrorMsg {
			fmt.Fprintln(fds[2], m.Text)
		} else {
			fmt.Fprintln(fds[1], m.Text)
		}
	})
	s, cleanup := newSession(echoer, fds[2], sessionCfg{Config: cfg.Config})
	defer cleanup()

	var name, code string
	if cfg.Cmd {
		name = "code from -c"
		code = arg0
	} else {
		var err error
		name, err = filepath.Abs(arg0)
		if err != nil {
			fmt.Fprintf(fds[2],
				"cannot get full path of script %q: %v\n", arg0, err)
			return 2
		}
		code, err = readFileUTF8(name)
		if err != nil {
			fmt.Fprintf(fds[2], "cannot read script %q: %v\n", name, err)
			return 2
		}
	}

	if cfg.CompileOnly {
		errs := s.Evaler.Check(name, code)
		if cfg.JSON {
			fmt.Fprintf(fds[1], "%s\n", errorsToJSON(errs))
		} else {
			for _, err := range errs {
				diag.ShowError(fds[2], err)
			}
		}
		if len(errs) > 0 {
			return 2
		}
		return 0
	}

	// Errors have already been reported through the echoer.
	err := s.Evaler.Execute(eval.Source{Name: name, Code: code, IsFile: !cfg.Cmd},
		eval.ExecCfg{Silent: eval.Report})
	if err != nil {
		return 2
	}
	return 0
}

var errSourceNotUTF8 = errors.New("source is not UTF-8")

func readFileUTF8(fname string) (string, error) {
	bytes, err := os.ReadFile(fname)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(bytes) {
		return "", errSourceNotUTF8
	}
	return string(bytes), nil
}

// An auxiliary struct for converting errors with diagnostics information to JSON.
type errorInJSON struct {
	FileName string `json:"fileName"`
	Start    int    `json:"start"`
	End      int    `json:"end"`
	Message  string `json:"message"`
}

// Converts check errors into JSON. No errors are converted to an empty list.
func errorsToJSON(errs []*diag.Error) []byte {
	converted := []errorInJSON{}
	for _, e := range errs {
		converted = append(converted,
			errorInJSON{e.Context.Name, e.Context.From, e.Context.To, e.Message})
	}

	jsonError, errMarshal := json.Marshal(converted)
	if errMarshal != nil {
		return []byte(`[{"message":"Unable to convert the errors to JSON"}]`)
	}
	return jsonError
}
