package term

import (
	"os"

	"golang.org/x/term"

	"src.exline.sh/pkg/errutil"
)

const (
	enableBracketedPaste  = "\033[?2004h"
	disableBracketedPaste = "\033[?2004l"
	disableAutoWrap       = "\033[?7l"
	enableAutoWrap        = "\033[?7h"
)

// Setup sets up the terminal for reading keys one at a time: it puts the
// input into raw mode, enables bracketed paste and disables line wrapping,
// which the writer does on its own. The returned function restores the
// previous state.
func Setup(in, out *os.File) (func() error, error) {
	state, err := term.MakeRaw(int(in.Fd()))
	if err != nil {
		return nil, err
	}
	_, err = out.WriteString(enableBracketedPaste + disableAutoWrap)
	return func() error {
		_, errWrite := out.WriteString(disableBracketedPaste + enableAutoWrap)
		return errutil.Multi(errWrite, term.Restore(int(in.Fd()), state))
	}, err
}

// IsTerminal reports whether the file is a terminal that Setup can work with.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
