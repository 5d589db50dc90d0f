// Package complete implements completion contexts: hierarchical containers of
// completion candidates for one position of a command line.
//
// A root context is created for the text being completed. Completers fork
// named sub-contexts from it, each covering the text from its own offset to
// the caret and holding its own candidates. Sub-contexts may be populated
// asynchronously; their results are delivered through a poster so that all
// mutations happen on the goroutine that owns the root.
//
// Contexts are not safe for concurrent use.
package complete

import (
	"context"
	"strings"
	"unicode"

	"src.exline.sh/pkg/logutil"
	"src.exline.sh/pkg/parse"
)

var logger = logutil.GetLogger("[complete] ")

// Completer populates a context. A returned error becomes the message of the
// context.
type Completer func(c *Context) error

// Highlight marks a span of the completed text, for example an invalid
// option value.
type Highlight struct {
	From, To int
	Type     string
}

// Highlight types.
const (
	HighlightSpellCheck = "SPELLCHECK"
)

// MessageWaitingForTab is the message of a context that is waiting for the
// user to press Tab.
const MessageWaitingForTab = "Waiting for <Tab>"

// State shared by all contexts of one tree.
type root struct {
	value string
	caret int

	contexts    map[string]*Context
	list        []*Context
	tabPressed  bool
	updateAsync bool
	onUpdate    func()
	post        func(func())
	settings    Settings
	maxItems    int
	highlights  []Highlight
	generation  int
}

// Context is a completion context.
type Context struct {
	root   *root
	parent *Context
	name   string
	offset int

	filter     string
	filterSet  bool
	ignoreCase *bool

	// Title is shown above the items of this context.
	Title string
	// Anchored requires candidates to start with the filter. When false, they
	// only need to contain it.
	Anchored bool
	// Quote, when not nil, is applied to the text of every item.
	Quote *parse.Quoting
	// Compare orders the items when sorting is enabled for this context.
	Compare func(a, b Item) bool
	// Filters are predicates an item must all satisfy to be kept.
	Filters []Filter
	// AutoComplete and Sort are looked up from the settings by context name.
	AutoComplete bool
	Sort         bool
	Case         CaseMode

	message       string
	incomplete    bool
	waitingForTab bool

	completions []Item
	hasItems    bool
	filtered    []Item
	filteredFor *string
	substrings  []string

	cancel context.CancelFunc
	lock   int
}

// New creates a root context for the given text, with the caret at its end.
func New(value string) *Context {
	c := &Context{
		root: &root{
			value:    value,
			caret:    len(value),
			settings: DefaultSettings{},
		},
		Anchored: true,
		Compare:  CompareText,
		Filters:  []Filter{FilterText},
	}
	c.root.contexts = map[string]*Context{"": c}
	c.Reset(value, len(value))
	return c
}

// Name returns the full name of the context, such as "/ex/args".
func (c *Context) Name() string { return c.name }

// Parent returns the parent context, or nil for the root.
func (c *Context) Parent() *Context { return c.parent }

// Top returns the root context.
func (c *Context) Top() *Context { return c.root.contexts[""] }

// Value returns the full text being completed.
func (c *Context) Value() string { return c.root.value }

// Offset returns the offset of the context within Value.
func (c *Context) Offset() int { return c.offset }

// Caret returns the caret position relative to the offset of the context.
func (c *Context) Caret() int { return c.root.caret - c.offset }

// Filter returns the text the candidates of this context are matched
// against: the text between the offset and the caret, unless set explicitly.
func (c *Context) Filter() string {
	if c.filterSet {
		return c.filter
	}
	v := c.root.value
	from, to := c.offset, c.root.caret
	if from > len(v) {
		return ""
	}
	if to > len(v) {
		to = len(v)
	}
	if to < from {
		return ""
	}
	return v[from:to]
}

// SetFilter sets the filter explicitly.
func (c *Context) SetFilter(s string) {
	c.filter, c.filterSet = s, true
	c.ignoreCase = nil
	c.invalidate()
}

// IgnoreCase reports whether matching ignores case.
func (c *Context) IgnoreCase() bool {
	if c.ignoreCase != nil {
		return *c.ignoreCase
	}
	switch c.Case {
	case CaseMatch:
		return false
	case CaseIgnore:
		return true
	default:
		return strings.IndexFunc(c.Filter(), unicode.IsUpper) == -1
	}
}

// SetIgnoreCase overrides the case mode of the context.
func (c *Context) SetIgnoreCase(b bool) { c.ignoreCase = &b }

// Message returns the message shown with the context.
func (c *Context) Message() string {
	if c.message == "" && c.WaitingForTab() {
		return MessageWaitingForTab
	}
	return c.message
}

// SetMessage sets the message shown with the context.
func (c *Context) SetMessage(msg string) { c.message = msg }

// Incomplete reports whether the context is still generating results. For the
// root context, it reports whether any context is.
func (c *Context) Incomplete() bool {
	if c.parent != nil {
		return c.incomplete
	}
	for _, sub := range c.root.list {
		if sub.incomplete {
			return true
		}
	}
	return false
}

// SetIncomplete marks the context as still generating results. It has no
// effect on the root.
func (c *Context) SetIncomplete(b bool) {
	if c.parent != nil {
		c.incomplete = b
	}
}

// WaitingForTab reports whether the context only produces results once Tab
// is pressed. For the root context, it reports whether any context does.
func (c *Context) WaitingForTab() bool {
	if c.parent != nil {
		return c.waitingForTab
	}
	for _, sub := range c.root.list {
		if sub.waitingForTab {
			return true
		}
	}
	return false
}

// Reset starts a new completion pass over the given text. All outstanding
// asynchronous work is canceled and the sub-contexts are dropped. It must be
// called on the root.
func (c *Context) Reset(value string, caret int) {
	if c.parent != nil {
		panic("complete: Reset called on a sub-context")
	}
	c.CancelAll()
	r := c.root
	r.value = value
	if caret < 0 || caret > len(value) {
		caret = len(value)
	}
	r.caret = caret
	r.list = nil
	r.contexts = map[string]*Context{"": c}
	r.tabPressed = false
	r.updateAsync = false
	r.highlights = nil
	r.generation++
	c.offset = 0
	c.filter, c.filterSet = "", false
	c.Quote = nil
	c.Title = "Completions"
	c.message = ""
	c.hasItems = false
	c.completions = nil
	c.invalidate()
}

// Generation returns a counter that is incremented by every Reset.
func (c *Context) Generation() int { return c.root.generation }

// SetPoster sets the function used to deliver asynchronous results. The
// function must arrange for its argument to be called on the goroutine that
// owns the context tree. Without a poster, generators run synchronously.
func (c *Context) SetPoster(post func(func())) { c.root.post = post }

// SetSettings sets the source of per-context settings.
func (c *Context) SetSettings(s Settings) {
	if s == nil {
		s = DefaultSettings{}
	}
	c.root.settings = s
}

// SetMaxItems limits the number of items of each context. Zero means no limit.
func (c *Context) SetMaxItems(n int) { c.root.maxItems = n }

// MaxItems returns the limit set by SetMaxItems.
func (c *Context) MaxItems() int { return c.root.maxItems }

// TabPressed reports whether the current pass was started with Tab.
func (c *Context) TabPressed() bool { return c.root.tabPressed }

// SetTabPressed records whether the current pass was started with Tab.
func (c *Context) SetTabPressed(b bool) { c.root.tabPressed = b }

// SetUpdateAsync enables or disables calls of the update callback.
func (c *Context) SetUpdateAsync(b bool) { c.root.updateAsync = b }

// SetOnUpdate sets the function called when the items of any context change
// while asynchronous updates are enabled.
func (c *Context) SetOnUpdate(f func()) { c.root.onUpdate = f }

// ContextList returns the active sub-contexts in creation order.
func (c *Context) ContextList() []*Context {
	return append([]*Context(nil), c.root.list...)
}

// Lookup returns the active context with the given full name, or nil.
func (c *Context) Lookup(name string) *Context { return c.root.contexts[name] }

// Fork creates a named sub-context starting offset bytes after the offset of
// c, and runs completer on it. The completer is not run when the context is
// not configured to autocomplete and the current pass was not started by Tab;
// the context is marked as waiting for Tab instead.
func (c *Context) Fork(name string, offset int, completer Completer) *Context {
	r := c.root
	full := c.name + "/" + name
	sub := &Context{
		root:      r,
		parent:    c,
		name:      full,
		offset:    c.offset,
		filter:    c.filter,
		filterSet: c.filterSet,
		Title:     c.Title,
		Anchored:  c.Anchored,
		Compare:   c.Compare,
		Filters:   append([]Filter(nil), c.Filters...),

		AutoComplete: r.settings.AutoComplete(full),
		Sort:         r.settings.WildSort(full),
		Case:         r.settings.WildCase(full),
	}
	if c.Quote != nil {
		q := *c.Quote
		sub.Quote = &q
	}
	sub.Advance(offset)
	r.contexts[full] = sub
	r.list = append(r.list, sub)

	if !sub.AutoComplete && !r.tabPressed {
		sub.waitingForTab = true
	} else if completer != nil {
		if err := completer(sub); err != nil {
			logger.Printf("completer for %s: %v", full, err)
			sub.message = err.Error()
		}
	}
	return sub
}

// Advance moves the offset of the context forward by n bytes of its filter.
// When the context has a quote, n is measured in unquoted text and converted
// to the quoted length, and the open and close quotes are dropped.
func (c *Context) Advance(n int) {
	c.ignoreCase = nil
	filter := c.Filter()
	if n > len(filter) && c.filterSet {
		n = len(filter)
	}
	advance := n
	if c.Quote != nil {
		head := filter
		if n < len(head) {
			head = head[:n]
		}
		advance = len(c.Quote.Open) + len(c.Quote.Escape(head))
		c.Quote.Open, c.Quote.Close = "", ""
	}
	c.offset += advance
	if c.filterSet {
		c.filter = c.filter[n:]
	}
	c.invalidate()
}

// Highlight marks length bytes starting at start, relative to the offset of
// the context. A zero length is ignored.
func (c *Context) Highlight(start, length int, typ string) {
	if length <= 0 {
		return
	}
	from := c.offset + start
	c.root.highlights = append(c.root.highlights, Highlight{from, from + length, typ})
}

// Highlights returns all spans marked in the current pass, relative to Value.
func (c *Context) Highlights() []Highlight {
	return append([]Highlight(nil), c.root.highlights...)
}

// Match reports whether str matches the filter of the context.
func (c *Context) Match(str string) bool {
	return c.match(c.Filter(), str)
}

func (c *Context) match(filter, str string) bool {
	if c.IgnoreCase() {
		filter, str = strings.ToLower(filter), strings.ToLower(str)
	}
	if c.Anchored {
		return strings.HasPrefix(str, filter)
	}
	return strings.Contains(str, filter)
}

// CancelAll cancels asynchronous generation in all active contexts. Results
// that arrive afterwards are dropped.
func (c *Context) CancelAll() {
	for _, sub := range c.root.list {
		sub.cancelGeneration()
	}
}

func (c *Context) cancelGeneration() {
	c.lock++
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

func (c *Context) notifyUpdate() {
	if c.root.updateAsync && c.root.onUpdate != nil {
		c.root.onUpdate()
	}
}
