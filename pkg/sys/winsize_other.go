//go:build windows || plan9

package sys

import (
	"os"

	"golang.org/x/term"
)

var sigWINCH os.Signal

func winSize(file *os.File) (row, col int) {
	col, row, err := term.GetSize(int(file.Fd()))
	if err != nil {
		return -1, -1
	}
	return row, col
}
