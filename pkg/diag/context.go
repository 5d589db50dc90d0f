package diag

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Context is a range of text in a source. It is used for errors that can be
// associated with a part of an Ex script or a single command line.
type Context struct {
	Name   string
	Source string
	Ranging
}

// NewContext creates a new Context.
func NewContext(name, source string, r Ranger) *Context {
	return &Context{name, source, r.Range()}
}

// Variables controlling the style of the culprit.
var (
	culpritStart       = "\033[1;4m"
	culpritEnd         = "\033[m"
	culpritPlaceHolder = "^"
)

// Position returns the 1-based line and column of the start of the range.
// Columns count codepoints.
func (c *Context) Position() (line, col int) {
	before := c.Source[:c.From]
	head := lastLine(before)
	return strings.Count(before, "\n") + 1, utf8.RuneCountInString(head) + 1
}

// Show shows the Context, starting with its position and followed by the
// relevant part of the source with the culprit marked. Lines after the first
// one are prefixed with indent.
func (c *Context) Show(indent string) string {
	if err := c.checkPosition(); err != nil {
		return err.Error()
	}
	line, col := c.Position()
	desc := fmt.Sprintf("%s:%d:%d: ", c.Name, line, col)
	return desc + c.relevantSource(indent+strings.Repeat(" ", len(desc)))
}

func (c *Context) checkPosition() error {
	if c.From == -1 {
		return fmt.Errorf("%s, unknown position", c.Name)
	} else if c.From < 0 || c.To > len(c.Source) || c.From > c.To {
		return fmt.Errorf("%s, invalid position %d-%d", c.Name, c.From, c.To)
	}
	return nil
}

func (c *Context) relevantSource(indent string) string {
	head := lastLine(c.Source[:c.From])
	culprit := strings.TrimSuffix(c.Source[c.From:c.To], "\n")
	var tail string
	if !strings.HasSuffix(c.Source[c.From:c.To], "\n") {
		tail = firstLine(c.Source[c.To:])
	}

	var sb strings.Builder
	sb.WriteString(head)
	if culprit == "" {
		culprit = culpritPlaceHolder
	}
	for i, line := range strings.Split(culprit, "\n") {
		if i > 0 {
			sb.WriteByte('\n')
			sb.WriteString(indent)
		}
		sb.WriteString(culpritStart)
		sb.WriteString(line)
		sb.WriteString(culpritEnd)
	}
	sb.WriteString(tail)
	return sb.String()
}

func firstLine(s string) string {
	i := strings.IndexByte(s, '\n')
	if i == -1 {
		return s
	}
	return s[:i]
}

func lastLine(s string) string {
	// When s does not contain '\n', LastIndexByte returns -1, which happens to
	// be what we want.
	return s[strings.LastIndexByte(s, '\n')+1:]
}
