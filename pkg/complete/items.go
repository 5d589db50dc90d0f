package complete

import (
	"context"
	"sort"
	"strings"
)

// Item is a completion candidate.
type Item struct {
	Text        string
	Description string
	// Unquoted is the text before the quote of the context was applied. It is
	// empty when the context has no quote.
	Unquoted string
}

// Filter is a predicate on the items of a context.
type Filter func(c *Context, it Item) bool

// FilterText keeps items whose text matches the filter.
func FilterText(c *Context, it Item) bool { return c.Match(it.Text) }

// FilterTextDescription keeps items whose text or description matches the
// filter.
func FilterTextDescription(c *Context, it Item) bool {
	return c.Match(it.Text) || c.Match(it.Description)
}

// CompareText orders items by their text.
func CompareText(a, b Item) bool { return a.Text < b.Text }

// Texts builds items from plain strings.
func Texts(texts ...string) []Item {
	items := make([]Item, len(texts))
	for i, text := range texts {
		items[i] = Item{Text: text}
	}
	return items
}

// Completions returns the unfiltered candidates of the context.
func (c *Context) Completions() []Item { return c.completions }

// SetCompletions replaces the unfiltered candidates of the context.
func (c *Context) SetCompletions(items []Item) {
	c.completions = items
	c.hasItems = len(items) > 0
	c.invalidate()
	c.notifyUpdate()
}

// HasItems reports whether the context has been given any candidates.
func (c *Context) HasItems() bool { return c.hasItems }

func (c *Context) invalidate() {
	c.filtered = nil
	c.filteredFor = nil
	c.substrings = nil
}

// Generator produces candidates for a filter. Long-running generators should
// stop when ctx is done.
type Generator func(ctx context.Context, filter string) ([]Item, error)

// Generate populates the context with the result of gen. When the tree has a
// poster, gen runs on its own goroutine and the context stays incomplete
// until the result is posted back; a result belonging to a canceled or
// superseded pass is dropped.
func (c *Context) Generate(gen Generator) {
	c.Stream(func(ctx context.Context, filter string, emit func([]Item)) error {
		items, err := gen(ctx, filter)
		if err == nil {
			emit(items)
		}
		return err
	})
}

// Stream is like Generate, but the producer may emit several batches of
// candidates, each appended to the context as it arrives.
func (c *Context) Stream(produce func(ctx context.Context, filter string, emit func([]Item)) error) {
	c.cancelGeneration()
	c.hasItems = true
	filter := c.Filter()
	post := c.root.post
	if post == nil {
		c.completions = nil
		err := produce(context.Background(), filter, func(items []Item) {
			c.SetCompletions(append(c.completions, items...))
		})
		if err != nil {
			c.message = err.Error()
		}
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.completions = nil
	c.incomplete = true
	lock, generation := c.lock, c.root.generation
	current := func() bool {
		return c.lock == lock && c.root.generation == generation && ctx.Err() == nil
	}
	go func() {
		err := produce(ctx, filter, func(items []Item) {
			post(func() {
				if current() {
					c.SetCompletions(append(c.completions, items...))
				}
			})
		})
		post(func() {
			if !current() {
				return
			}
			c.incomplete = false
			c.cancel = nil
			cancel()
			if err != nil {
				logger.Printf("generator for %s: %v", c.name, err)
				c.message = err.Error()
			}
			c.hasItems = len(c.completions) > 0
			c.notifyUpdate()
		})
	}()
}

// Items returns the candidates that pass the filters, limited, sorted and
// quoted according to the context.
func (c *Context) Items() []Item {
	if !c.hasItems {
		return nil
	}
	filter := c.Filter()
	if c.filteredFor != nil && *c.filteredFor == filter {
		return c.filtered
	}
	var filtered []Item
	for _, it := range c.completions {
		if c.keep(it) {
			filtered = append(filtered, it)
		}
	}
	if limit := c.root.maxItems; limit > 0 && len(filtered) > limit {
		filtered = filtered[:limit]
	}
	if c.Sort && c.Compare != nil {
		sort.SliceStable(filtered, func(i, j int) bool {
			return c.Compare(filtered[i], filtered[j])
		})
	}
	if c.Quote != nil {
		for i := range filtered {
			filtered[i].Unquoted = filtered[i].Text
			filtered[i].Text = c.Quote.Quote(filtered[i].Text)
		}
	}
	c.filtered, c.filteredFor = filtered, &filter
	return filtered
}

func (c *Context) keep(it Item) bool {
	for _, f := range c.Filters {
		if !f(c, it) {
			return false
		}
	}
	return true
}

func unquoted(it Item) string {
	if it.Unquoted != "" {
		return it.Unquoted
	}
	return it.Text
}

// Substrings returns the strings that extend the filter and that every item
// of the context matches, quoted with the open quote and escaping of the
// context.
func (c *Context) Substrings() []string {
	items := c.Items()
	if len(items) == 0 {
		return nil
	}
	if c.substrings != nil {
		return c.substrings
	}
	fixCase := func(s string) string { return s }
	if c.IgnoreCase() {
		fixCase = strings.ToLower
	}
	text := fixCase(unquoted(items[0]))
	filter := fixCase(c.Filter())

	var substrings []string
	var matches func(text, s string) bool
	if c.Anchored {
		matches = strings.HasPrefix
		for end := len(filter); end <= len(text); end++ {
			substrings = append(substrings, text[:end])
		}
	} else {
		matches = strings.Contains
		for start := 0; start < len(text); {
			idx := strings.Index(text[start:], filter)
			if idx < 0 {
				break
			}
			idx += start
			for end := idx + len(filter); end <= len(text); end++ {
				substrings = append(substrings, text[idx:end])
			}
			start = idx + 1
		}
	}
	for _, it := range items[1:] {
		s := fixCase(unquoted(it))
		kept := substrings[:0]
		for _, sub := range substrings {
			if matches(s, sub) {
				kept = append(kept, sub)
			}
		}
		substrings = kept
	}
	if c.Quote != nil {
		for i, sub := range substrings {
			substrings[i] = c.Quote.Open + c.Quote.Escape(sub)
		}
	}
	c.substrings = substrings
	return substrings
}

// AllResult is the flat view of all active contexts.
type AllResult struct {
	// Start is the smallest offset of any context with items. The text of
	// each item replaces Value from Start to the caret.
	Start int
	Items []Item
	// LongestSubstring is the longest string shared by the items of all
	// contexts.
	LongestSubstring string
}

func (c *Context) withItems() []*Context {
	var contexts []*Context
	for _, sub := range c.root.list {
		if sub.hasItems && len(sub.Items()) > 0 {
			contexts = append(contexts, sub)
		}
	}
	return contexts
}

func minOffset(contexts []*Context) int {
	if len(contexts) == 0 {
		return 0
	}
	start := contexts[0].offset
	for _, sub := range contexts[1:] {
		if sub.offset < start {
			start = sub.offset
		}
	}
	return start
}

func (c *Context) between(from, to int) string {
	v := c.root.value
	if to > len(v) {
		to = len(v)
	}
	if from >= to {
		return ""
	}
	return v[from:to]
}

// AllItems returns the items of all active contexts as one list, in context
// order. Items of contexts starting after Start are prefixed with the text
// between Start and their offset.
func (c *Context) AllItems() AllResult {
	contexts := c.withItems()
	start := minOffset(contexts)
	var items []Item
	for _, sub := range contexts {
		prefix := c.between(start, sub.offset)
		for _, it := range sub.Items() {
			it.Text = prefix + it.Text
			items = append(items, it)
		}
	}
	return AllResult{start, items, c.LongestAllSubstring()}
}

// AllSubstrings returns the substrings shared by all contexts with items,
// relative to the smallest offset.
func (c *Context) AllSubstrings() []string {
	contexts := c.withItems()
	if len(contexts) == 0 {
		return nil
	}
	start := minOffset(contexts)
	lists := make([][]string, len(contexts))
	for i, sub := range contexts {
		prefix := c.between(start, sub.offset)
		for _, s := range sub.Substrings() {
			lists[i] = append(lists[i], prefix+s)
		}
	}
	substrings := lists[len(lists)-1]
	for _, list := range lists[:len(lists)-1] {
		var kept []string
		for _, str := range substrings {
			for _, s := range list {
				if strings.HasPrefix(s, str) {
					kept = append(kept, str)
					break
				}
			}
		}
		substrings = kept
	}
	seen := make(map[string]bool)
	var uniq []string
	for _, s := range substrings {
		if !seen[s] {
			seen[s] = true
			uniq = append(uniq, s)
		}
	}
	return uniq
}

// LongestAllSubstring returns the longest of AllSubstrings.
func (c *Context) LongestAllSubstring() string {
	longest := ""
	for _, s := range c.AllSubstrings() {
		if len(s) > len(longest) {
			longest = s
		}
	}
	return longest
}
