package diag

import (
	"fmt"
	"strings"
)

// Error represents a user-facing error with a Context that can be shown.
type Error struct {
	Type    string
	Message string
	Context Context
}

// Error returns the message, prefixed by the position when the context has a
// name. The message itself is what users see on the command line.
func (e *Error) Error() string {
	if e.Context.Name == "" || e.Context.checkPosition() != nil {
		return e.Message
	}
	line, col := e.Context.Position()
	return fmt.Sprintf("%s:%d:%d: %s", e.Context.Name, line, col, e.Message)
}

// Range returns the range of the error.
func (e *Error) Range() Ranging {
	return e.Context.Range()
}

// Variables controlling the style of the message.
var (
	messageStart = "\033[31;1m"
	messageEnd   = "\033[m"
)

// Show shows the error.
func (e *Error) Show(indent string) string {
	header := fmt.Sprintf("%s: %s%s%s\n", title(e.Type), messageStart, e.Message, messageEnd)
	return header + indent + "  " + e.Context.Show(indent+"  ")
}

func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
