package cli

import (
	"src.exline.sh/pkg/cli/term"
	"src.exline.sh/pkg/wcwidth"
)

// SGR styles of the rendered command line.
const (
	styleTitle       = "1;4"
	styleMessage     = "3"
	styleSelected    = "7"
	styleDescription = "2"
	stylePreview     = "2"
	styleStatus      = "2"
)

// Renders the completion list above the command line, keeping the last height
// lines when it does not fit. The dot is put at the caret.
func renderCommandLine(cl *CommandLine, width, height int) *term.Buffer {
	bb := term.NewBufferBuilder(width)
	if cl.list.Visible() {
		for _, row := range cl.list.Rows() {
			renderRow(bb, row, width)
			bb.Newline()
		}
	}
	renderInput(bb, cl)
	buf := bb.Buffer()
	if height > 0 && len(buf.Lines) > height {
		buf.TrimToLines(len(buf.Lines)-height, len(buf.Lines))
	}
	return buf
}

// Renders only the input line, as left behind after the command line closes.
func renderFinal(line string, width int) *term.Buffer {
	bb := term.NewBufferBuilder(width)
	bb.Write(line).Newline().SetDotHere()
	return bb.Buffer()
}

func renderInput(bb *term.BufferBuilder, cl *CommandLine) {
	text, caret := cl.Text(), cl.Caret()
	bb.Write(cl.Prompt())
	bb.Write(text[:caret]).SetDotHere()
	if caret == len(text) {
		if preview := cl.Preview(); preview != "" {
			bb.Write(preview, stylePreview)
		}
	}
	bb.Write(text[caret:])
	if status := cl.Status(); status != "" {
		bb.Write("  "+status, styleStatus)
	}
}

func renderRow(bb *term.BufferBuilder, row Row, width int) {
	switch row.Type {
	case RowTitle:
		bb.Write(wcwidth.Trim(row.Text, width), styleTitle)
	case RowMessage:
		bb.Write(wcwidth.Trim(row.Text, width), styleMessage)
	case RowWaiting:
		bb.Write(wcwidth.Trim(row.Text, width), styleMessage)
	case RowMore:
		bb.Write("...", styleDescription)
	case RowItem:
		textWidth := width / 2
		if row.Description == "" {
			textWidth = width
		}
		text := wcwidth.Force("  "+row.Text, textWidth)
		if row.Selected {
			bb.Write(text, styleSelected)
		} else {
			bb.Write(text)
		}
		if row.Description != "" {
			bb.Write(wcwidth.Trim(row.Description, width-textWidth), styleDescription)
		}
	}
}
