package parse

import (
	"testing"

	"src.exline.sh/pkg/tt"
)

func comma(r rune) bool { return r == ',' }

func TestParseArg(t *testing.T) {
	tt.Test(t, tt.Fn("ParseArg", ParseArg), tt.Table{
		tt.Args("", nil, false).Rets(0, "", NoQuote),
		tt.Args("foo bar", nil, false).Rets(3, "foo", NoQuote),
		tt.Args(`"a b" c`, nil, false).Rets(5, "a b", NoQuote),
		tt.Args(`"a\tb"`, nil, false).Rets(6, "a\tb", NoQuote),
		tt.Args(`'it''s' x`, nil, false).Rets(7, "it's", NoQuote),
		tt.Args(`'a\b'`, nil, false).Rets(5, `a\b`, NoQuote),
		tt.Args(`a\ b c`, nil, false).Rets(4, "a b", NoQuote),
		tt.Args(`foo"bar baz"'qux' rest`, nil, false).Rets(17, "foobar bazqux", NoQuote),
		tt.Args(`"é\x41"`, nil, false).Rets(8, "éA", NoQuote),
		tt.Args(`"a\qb"`, nil, false).Rets(6, "aqb", NoQuote),

		// Unterminated input.
		tt.Args(`"abc`, nil, false).Rets(4, "abc", OpenDouble),
		tt.Args(`'abc`, nil, false).Rets(4, "abc", OpenSingle),
		tt.Args(`abc\`, nil, false).Rets(4, "abc", TrailingBackslash),
		tt.Args(`\`, nil, false).Rets(1, "", TrailingBackslash),
		tt.Args(`x"a b`, nil, false).Rets(5, "xa b", OpenDouble),

		// keepQuotes returns the raw text.
		tt.Args(`"a b" c`, nil, true).Rets(5, `"a b"`, NoQuote),
		tt.Args(`a\ b c`, nil, true).Rets(4, `a\ b`, NoQuote),

		// Custom separator.
		tt.Args("a b,c", Separator(comma), false).Rets(3, "a b", NoQuote),
		tt.Args(`"x,y",z`, Separator(comma), false).Rets(5, "x,y", NoQuote),
	})
}

var roundTripValues = []string{
	"", "plain", "a b", `q"uote`, "it's", `back\slash`, "tab\tnew\nline", "pipe|x", "ünïcode",
}

func TestQuote_RoundTrip(t *testing.T) {
	quoters := map[string]func(string) string{
		"QuoteDouble": QuoteDouble,
		"QuoteSingle": QuoteSingle,
		"QuoteBare":   QuoteBare,
		"QuoteAuto":   QuoteAuto,
	}
	for name, quote := range quoters {
		for _, v := range roundTripValues {
			quoted := quote(v)
			n, value, open := ParseArg(quoted, nil, false)
			if n != len(quoted) || value != v || open != NoQuote {
				t.Errorf("ParseArg(%s(%q) = %q) -> (%d, %q, %q), want (%d, %q, %q)",
					name, v, quoted, n, value, open, len(quoted), v, NoQuote)
			}
		}
	}
}

func TestQuoteAuto(t *testing.T) {
	tt.Test(t, tt.Fn("QuoteAuto", QuoteAuto), tt.Table{
		tt.Args("plain").Rets("plain"),
		tt.Args("").Rets(`""`),
		tt.Args("a b").Rets(`"a b"`),
		tt.Args("a\nb").Rets(`"a\nb"`),
	})
}

func TestQuoting(t *testing.T) {
	tt.Test(t, tt.Fn("Quoting.Quote", func(open, s string) string {
		return QuotingFor(open).Quote(s)
	}), tt.Table{
		tt.Args(NoQuote, "a b").Rets(`a\ b`),
		tt.Args(OpenDouble, `say "hi"`).Rets(`"say \"hi\""`),
		tt.Args(OpenSingle, "it's").Rets(`'it''s'`),
		tt.Args(TrailingBackslash, "x y").Rets(`x\ y`),
	})
	q := Quoting{Dialect: OpenDouble}
	if got := q.Quote("a\tb"); got != `a\tb` {
		t.Errorf("Quote with empty delimiters -> %q, want %q", got, `a\tb`)
	}
}
