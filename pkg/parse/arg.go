// Package parse implements the lexical layer of Ex command lines: splitting
// arguments with the three quoting dialects, quoting values back, recognizing
// the command part of a line and replacing <tokens> in user command bodies.
package parse

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Separator reports whether r ends an argument when it appears outside
// quotes. A nil Separator means unicode.IsSpace.
type Separator func(r rune) bool

// Open quote markers returned by ParseArg.
const (
	NoQuote           = ""
	OpenDouble        = `"`
	OpenSingle        = `'`
	TrailingBackslash = `\`
)

// ParseArg parses one argument at the start of s. Within an argument, runs of
// three dialects may be concatenated:
//
//   - Bare text, where \X stands for X.
//   - Double-quoted text, where C-like escapes such as \n, \t, \" and \uXXXX
//     are interpreted.
//   - Single-quoted text, where only '' is special and stands for '.
//
// It returns the number of bytes consumed, the value of the argument and the
// quote that was still open when s ended: OpenDouble, OpenSingle,
// TrailingBackslash or NoQuote. When keepQuotes is true, the returned value is
// the raw text of the argument instead.
func ParseArg(s string, sep Separator, keepQuotes bool) (n int, value string, open string) {
	if sep == nil {
		sep = unicode.IsSpace
	}
	var sb strings.Builder
	i := 0
	for i < len(s) {
		r, _ := utf8.DecodeRuneInString(s[i:])
		if sep(r) {
			break
		}
		var consumed int
		switch r {
		case '"':
			consumed, open = parseDoubleQuoted(s[i:], &sb)
		case '\'':
			consumed, open = parseSingleQuoted(s[i:], &sb)
		default:
			consumed, open = parseBare(s[i:], sep, &sb)
		}
		i += consumed
		if open != NoQuote {
			break
		}
	}
	if keepQuotes {
		return i, s[:i], open
	}
	return i, sb.String(), open
}

func parseBare(s string, sep Separator, sb *strings.Builder) (int, string) {
	i := 0
	for i < len(s) {
		r, w := utf8.DecodeRuneInString(s[i:])
		switch {
		case r == '"' || r == '\'' || sep(r):
			return i, NoQuote
		case r == '\\':
			if i+w == len(s) {
				return len(s), TrailingBackslash
			}
			r2, w2 := utf8.DecodeRuneInString(s[i+w:])
			sb.WriteRune(r2)
			i += w + w2
		default:
			sb.WriteRune(r)
			i += w
		}
	}
	return i, NoQuote
}

func parseSingleQuoted(s string, sb *strings.Builder) (int, string) {
	i := 1
	for i < len(s) {
		if s[i] == '\'' {
			if i+1 < len(s) && s[i+1] == '\'' {
				sb.WriteByte('\'')
				i += 2
				continue
			}
			return i + 1, NoQuote
		}
		sb.WriteByte(s[i])
		i++
	}
	return i, OpenSingle
}

func parseDoubleQuoted(s string, sb *strings.Builder) (int, string) {
	i := 1
	for i < len(s) {
		switch s[i] {
		case '"':
			return i + 1, NoQuote
		case '\\':
			if i+1 == len(s) {
				// The quote is still open; the dangling backslash has no
				// meaning yet.
				return len(s), OpenDouble
			}
			i += 1 + unescape(s[i+1:], sb)
		default:
			sb.WriteByte(s[i])
			i++
		}
	}
	return i, OpenDouble
}

// unescape interprets the escape sequence at the start of s (after the
// backslash), writes the result to sb, and returns the number of bytes used.
func unescape(s string, sb *strings.Builder) int {
	switch s[0] {
	case 'n':
		sb.WriteByte('\n')
	case 't':
		sb.WriteByte('\t')
	case 'r':
		sb.WriteByte('\r')
	case 'b':
		sb.WriteByte('\b')
	case 'f':
		sb.WriteByte('\f')
	case 'v':
		sb.WriteByte('\v')
	case '0':
		sb.WriteByte(0)
	case 'x':
		if r, ok := hexRune(s[1:], 2); ok {
			sb.WriteRune(r)
			return 3
		}
		sb.WriteByte('x')
	case 'u':
		if r, ok := hexRune(s[1:], 4); ok {
			sb.WriteRune(r)
			return 5
		}
		sb.WriteByte('u')
	default:
		r, w := utf8.DecodeRuneInString(s)
		sb.WriteRune(r)
		return w
	}
	return 1
}

func hexRune(s string, n int) (rune, bool) {
	if len(s) < n {
		return 0, false
	}
	v, err := strconv.ParseUint(s[:n], 16, 32)
	if err != nil {
		return 0, false
	}
	return rune(v), true
}
