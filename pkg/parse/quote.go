package parse

import (
	"strings"
	"unicode"
)

// Quoting describes how text is quoted when inserted into a command line by
// completion. Open and Close surround the escaped text; either may be empty,
// which is the case after a context has advanced past the opening quote.
type Quoting struct {
	Open  string
	Close string
	// Dialect is one of NoQuote, OpenDouble or OpenSingle and selects the
	// escaping rules.
	Dialect string
}

// QuotingFor returns the completion quoting for an argument whose open quote
// (as returned by ParseArg) is open. Unknown markers get bare quoting.
func QuotingFor(open string) Quoting {
	switch open {
	case OpenDouble:
		return Quoting{Open: `"`, Close: `"`, Dialect: OpenDouble}
	case OpenSingle:
		return Quoting{Open: `'`, Close: `'`, Dialect: OpenSingle}
	default:
		return Quoting{}
	}
}

// Escape escapes s according to the dialect, without adding quotes.
func (q Quoting) Escape(s string) string {
	switch q.Dialect {
	case OpenDouble:
		return escapeDouble(s)
	case OpenSingle:
		return strings.ReplaceAll(s, "'", "''")
	default:
		return escapeBare(s)
	}
}

// Quote escapes s and surrounds it with the open and close quotes.
func (q Quoting) Quote(s string) string {
	return q.Open + q.Escape(s) + q.Close
}

// QuoteDouble quotes s with double quotes.
func QuoteDouble(s string) string { return `"` + escapeDouble(s) + `"` }

// QuoteSingle quotes s with single quotes.
func QuoteSingle(s string) string { return "'" + strings.ReplaceAll(s, "'", "''") + "'" }

// QuoteBare escapes s so that it is parsed back as one bare argument.
func QuoteBare(s string) string { return escapeBare(s) }

// QuoteAuto returns s as is when it can be parsed back as a bare argument
// without escaping, and double-quoted otherwise.
func QuoteAuto(s string) string {
	if s == "" || strings.IndexFunc(s, needsQuoting) != -1 {
		return QuoteDouble(s)
	}
	return s
}

func needsQuoting(r rune) bool {
	return unicode.IsSpace(r) || r == '"' || r == '\'' || r == '\\' || r == '|'
}

func escapeDouble(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch r {
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		case '"', '\\':
			sb.WriteByte('\\')
			sb.WriteRune(r)
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

func escapeBare(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if needsQuoting(r) {
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
