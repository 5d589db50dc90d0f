package shell

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// The interface that reads commands in interactive mode; it is implemented
// by *cli.App and by minEditor.
type editor interface {
	ReadCommand() (string, error)
}

// Reads commands line by line without any terminal handling. It is used
// when stdin is not a terminal.
type minEditor struct {
	in  *bufio.Reader
	out io.Writer
}

func newMinEditor(in io.Reader, out io.Writer) *minEditor {
	return &minEditor{bufio.NewReader(in), out}
}

// ReadCommand returns the next line without its line ending. A last line
// without a line ending is returned with a nil error; io.EOF is only
// returned when there is nothing left.
func (ed *minEditor) ReadCommand() (string, error) {
	fmt.Fprint(ed.out, ":")
	line, err := ed.in.ReadString('\n')
	if err == io.EOF && line != "" {
		err = nil
	}
	return strings.TrimRight(line, "\r\n"), err
}
