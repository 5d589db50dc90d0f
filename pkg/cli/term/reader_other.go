//go:build windows || plan9

package term

import (
	"errors"
	"os"
)

func newReader(f *os.File) (Reader, error) {
	return nil, errors.New("terminal input is not supported on this platform")
}
