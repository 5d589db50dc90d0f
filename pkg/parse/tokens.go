package parse

import (
	"fmt"
	"regexp"
)

var tokenPattern = regexp.MustCompile(`<(q-)?([a-zA-Z]+)>`)

// ReplaceTokens replaces each <key> in s with the value of tokens[key].
// <q-key> inserts the value double-quoted, unless it is an int. <lt> and
// <q-lt> stand for a literal "<". Keys missing from tokens are left as they
// are.
func ReplaceTokens(s string, tokens map[string]any) string {
	return tokenPattern.ReplaceAllStringFunc(s, func(match string) string {
		sub := tokenPattern.FindStringSubmatch(match)
		quote, key := sub[1] != "", sub[2]
		if key == "lt" {
			return "<"
		}
		value, ok := tokens[key]
		if !ok {
			return match
		}
		switch value := value.(type) {
		case int:
			return fmt.Sprint(value)
		case string:
			if quote {
				return QuoteDouble(value)
			}
			return value
		default:
			if quote {
				return QuoteDouble(fmt.Sprint(value))
			}
			return fmt.Sprint(value)
		}
	})
}
