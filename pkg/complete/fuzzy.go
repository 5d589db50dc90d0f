package complete

import (
	"context"

	"github.com/sahilm/fuzzy"
)

type itemSource []Item

func (s itemSource) String(i int) string { return s[i].Text }
func (s itemSource) Len() int            { return len(s) }

// MatchFuzzy returns the items whose text fuzzily matches pattern, best
// matches first. An empty pattern matches every item, in the original order.
func MatchFuzzy(pattern string, items []Item) []Item {
	if pattern == "" {
		return items
	}
	matches := fuzzy.FindFrom(pattern, itemSource(items))
	result := make([]Item, len(matches))
	for i, m := range matches {
		result[i] = items[m.Index]
	}
	return result
}

// FuzzyGenerator returns a generator that fuzzily filters the result of
// source by the filter. Contexts using it should have no filters and no
// sorting, as the order is by match quality.
func FuzzyGenerator(source func() ([]Item, error)) Generator {
	return func(ctx context.Context, filter string) ([]Item, error) {
		items, err := source()
		if err != nil {
			return nil, err
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return MatchFuzzy(filter, items), nil
	}
}
