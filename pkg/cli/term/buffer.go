package term

import (
	"fmt"
	"strings"

	"src.exline.sh/pkg/wcwidth"
)

// Cell is an indivisible unit on the screen. It is not necessarily 1 column
// wide.
type Cell struct {
	Text  string
	Style string
}

// Pos is a line/column position.
type Pos struct {
	Line, Col int
}

// Returns the total width of a Cell slice.
func cellsWidth(cs []Cell) int {
	w := 0
	for _, c := range cs {
		w += wcwidth.Of(c.Text)
	}
	return w
}

// Returns whether two Cell slices are equal, and when they are not, the first
// index at which they differ.
func compareCells(r1, r2 []Cell) (bool, int) {
	for i, c := range r1 {
		if i >= len(r2) || c != r2[i] {
			return false, i
		}
	}
	if len(r1) < len(r2) {
		return false, len(r1)
	}
	return true, 0
}

// Buffer reflects a rectangle area in the terminal, along with a cursor (called
// a "dot" here).
//
// The terminal offers no practical way of reading back its content, so the
// writer keeps the last Buffer it wrote and only sends the difference.
type Buffer struct {
	Width int
	// Lines the content of the buffer.
	Lines [][]Cell
	// Dot is what the user perceives as the cursor.
	Dot Pos
}

// Returns the position of the cursor after writing the entire buffer.
func endPos(b *Buffer) Pos {
	if len(b.Lines) == 0 {
		return Pos{}
	}
	return Pos{len(b.Lines) - 1, cellsWidth(b.Lines[len(b.Lines)-1])}
}

// TrimToLines trims a buffer to the lines [low, high).
func (b *Buffer) TrimToLines(low, high int) {
	if low < 0 {
		low = 0
	}
	if high > len(b.Lines) {
		high = len(b.Lines)
	}
	if low > high {
		low = high
	}
	b.Lines = b.Lines[low:high]
	b.Dot.Line -= low
	if b.Dot.Line < 0 {
		b.Dot.Line = 0
	}
}

// TTYString returns a text representation of the buffer for tests, framed by
// box drawing characters. Styled cells are enclosed in SGR sequences and the
// dot is marked with a '|'.
func (b *Buffer) TTYString() string {
	if b == nil {
		return "nil"
	}
	sb := new(strings.Builder)
	fmt.Fprintf(sb, "Width = %d, Dot = (%d, %d)\n", b.Width, b.Dot.Line, b.Dot.Col)
	sb.WriteString("┌" + strings.Repeat("─", b.Width) + "┐\n")
	for _, line := range b.Lines {
		sb.WriteRune('│')
		lastStyle := ""
		usedWidth := 0
		for _, cell := range line {
			if cell.Style != lastStyle {
				sb.WriteString("\033[;" + cell.Style + "m")
				lastStyle = cell.Style
			}
			sb.WriteString(cell.Text)
			usedWidth += wcwidth.Of(cell.Text)
		}
		if lastStyle != "" {
			sb.WriteString("\033[m")
		}
		if usedWidth < b.Width {
			sb.WriteString("$" + strings.Repeat(" ", b.Width-usedWidth-1))
		}
		sb.WriteString("│\n")
	}
	sb.WriteString("└" + strings.Repeat("─", b.Width) + "┘\n")
	return sb.String()
}

// BufferBuilder supports building a Buffer line by line. Text wraps at the
// width of the buffer.
type BufferBuilder struct {
	width int
	col   int
	lines [][]Cell
	dot   Pos
}

// NewBufferBuilder makes a new BufferBuilder with the given width.
func NewBufferBuilder(width int) *BufferBuilder {
	return &BufferBuilder{width: width, lines: [][]Cell{nil}}
}

// Cursor returns the current position of the builder.
func (bb *BufferBuilder) Cursor() Pos {
	return Pos{len(bb.lines) - 1, bb.col}
}

// SetDotHere sets the dot of the buffer to the current position.
func (bb *BufferBuilder) SetDotHere() *BufferBuilder {
	bb.dot = bb.Cursor()
	return bb
}

// Newline starts a new line.
func (bb *BufferBuilder) Newline() *BufferBuilder {
	bb.lines = append(bb.lines, nil)
	bb.col = 0
	return bb
}

// Write writes text with the given SGR style. Control characters are shown
// in caret notation, as in "^A".
func (bb *BufferBuilder) Write(text string, style ...string) *BufferBuilder {
	st := strings.Join(style, ";")
	for _, r := range text {
		switch {
		case r == '\n':
			bb.Newline()
		case r < 0x20 || r == 0x7f:
			bb.writeCell(Cell{"^" + string(r^0x40), st})
		default:
			bb.writeCell(Cell{string(r), st})
		}
	}
	return bb
}

func (bb *BufferBuilder) writeCell(c Cell) {
	w := wcwidth.Of(c.Text)
	if bb.col+w > bb.width && bb.col > 0 {
		bb.Newline()
	}
	last := len(bb.lines) - 1
	bb.lines[last] = append(bb.lines[last], c)
	bb.col += w
}

// Buffer returns the Buffer built by the builder.
func (bb *BufferBuilder) Buffer() *Buffer {
	return &Buffer{Width: bb.width, Lines: bb.lines, Dot: bb.dot}
}
