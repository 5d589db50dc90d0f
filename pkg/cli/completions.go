package cli

import (
	"strings"

	"src.exline.sh/pkg/complete"
	"src.exline.sh/pkg/options"
)

// Selectors for Completions.Select, besides item indices.
const (
	// SelectReset deselects and restores the text that was completed.
	SelectReset = -1 - iota
	// SelectUp selects the previous item, wrapping to the completed text.
	SelectUp
	// SelectDown selects the next item, wrapping to the completed text.
	SelectDown
)

// Flat index meaning "the last item", used when SelectUp starts from no
// selection.
const lastItem = -2

type tabStep struct {
	reverse   bool
	wildtypes []string
}

// Completions is the completion session of one open command line. It splits
// the text into the prefix before the completed region, the completed value
// and the suffix after the caret, and replaces the value with the selected
// item.
type Completions struct {
	cl      *CommandLine
	context *complete.Context
	list    *ItemList

	selected  int
	wildIndex int
	wildtypes []string

	prefix, value, suffix string
	caret                 int

	tabs       []tabStep
	waiting    bool
	pendingIdx int
	resume     func()

	preview       string
	lastSubstring string
	showGen       int
}

func newCompletions(cl *CommandLine) *Completions {
	ctx := complete.New("")
	ctx.SetPoster(cl.cfg.Post)
	ctx.SetSettings(cl.cfg.Options)
	c := &Completions{
		cl:        cl,
		context:   ctx,
		list:      cl.list,
		selected:  -1,
		wildIndex: -1,
		wildtypes: cl.cfg.Options.List("wildmode"),
		caret:     -1,
	}
	c.list.SetContext(ctx)
	return c
}

// Context returns the root completion context.
func (c *Completions) Context() *complete.Context { return c.context }

// Selected returns the flat index of the selected item, or -1.
func (c *Completions) Selected() int { return c.selected }

// Items returns the items of all contexts.
func (c *Completions) Items() []complete.Item { return c.context.AllItems().Items }

// Waiting reports whether a selection is waiting for results.
func (c *Completions) Waiting() bool { return c.waiting }

func (c *Completions) start() int { return c.context.AllItems().Start }

func (c *Completions) substring() string { return c.context.LongestAllSubstring() }

func (c *Completions) wildtype() string {
	if c.wildIndex >= 0 && c.wildIndex < len(c.wildtypes) {
		return c.wildtypes[c.wildIndex]
	}
	return ""
}

// The wildtype without the "list:" part.
func (c *Completions) baseWildtype() string {
	t := c.wildtype()
	if i := strings.LastIndexByte(t, ':'); i >= 0 {
		return t[i+1:]
	}
	return t
}

func (c *Completions) completion() string {
	text := c.cl.text
	from, to := len(c.prefix), len(text)-len(c.suffix)
	if from > to {
		return ""
	}
	return text[from:to]
}

func (c *Completions) setCompletion(s string) {
	c.clearPreview()
	c.cl.setText(c.prefix+s+c.suffix, len(c.prefix)+len(s))
	c.caret = c.cl.caret
}

// Starts a new completion pass over the current text.
func (c *Completions) complete(show, tabPressed bool) {
	c.showGen++
	gen := c.showGen
	c.context.Reset(c.cl.text, c.cl.caret)
	c.context.SetTabPressed(tabPressed)
	c.context.SetOnUpdate(func() {
		if gen == c.showGen {
			c.update()
		}
	})
	c.cl.runComplete(c.context)
	c.context.SetUpdateAsync(true)
	c.reset(show)
	c.wildIndex = 0
}

func (c *Completions) split() {
	text := c.cl.text
	start, caret := c.start(), c.cl.caret
	if caret > len(text) {
		caret = len(text)
	}
	if start > caret {
		start = caret
	}
	c.prefix, c.value, c.suffix = text[:start], text[start:caret], text[caret:]
}

func (c *Completions) reset(show bool) {
	c.wildIndex = -1
	c.split()
	if show {
		c.list.Reset()
		c.selected = -1
		c.wildIndex = 0
	}
	c.showPreview()
}

// Called when the items of a context change asynchronously.
func (c *Completions) update() {
	if c.selected < 0 {
		c.split()
	}
	c.list.Reset()
	c.list.Select(c.selected)
	c.showPreview()

	if c.waiting && c.trySelect(c.pendingIdx) {
		c.waiting = false
		resume := c.resume
		c.resume = nil
		if resume != nil {
			resume()
		}
		c.cl.idle()
	}
}

// Preview returns the text shown after the caret as a hint of what Tab would
// insert.
func (c *Completions) Preview() string { return c.preview }

func (c *Completions) showPreview() {
	c.clearPreview()
	items := c.Items()
	if c.wildIndex < 0 || c.suffix != "" || len(items) == 0 {
		return
	}

	substring := ""
	switch c.baseWildtype() {
	case "":
		substring = items[0].Text
	case "longest":
		if len(items) > 1 {
			substring = c.substring()
			break
		}
		fallthrough
	case "full":
		if i := c.selected + 1; i < len(items) {
			substring = items[i].Text
		}
	}

	// One-character previews only appear when backing over a longer one.
	if len(substring) < 2 && (c.lastSubstring == "" || !strings.HasPrefix(c.lastSubstring, substring)) {
		return
	}
	c.lastSubstring = substring

	value := c.completion()
	if len(substring) < len(value) || !strings.EqualFold(value, substring[:len(value)]) {
		return
	}
	c.preview = substring[len(value):]
}

func (c *Completions) clearPreview() { c.preview = "" }

// Select selects an item by its flat index, or moves the selection with
// SelectUp, SelectDown and SelectReset. When the item is not known yet because
// contexts are still generating results, the selection happens once they
// have produced enough items.
func (c *Completions) Select(sel int) {
	c.selectThen(sel, nil)
}

// Resolves sel to a flat index and selects it, calling then afterwards. It
// returns false if the selection waits for results.
func (c *Completions) selectThen(sel int, then func()) bool {
	var idx int
	switch sel {
	case SelectUp:
		if c.selected < 0 {
			idx = lastItem
		} else {
			idx = c.selected - 1
		}
	case SelectDown:
		if c.selected < 0 {
			idx = 0
		} else {
			idx = c.selected + 1
		}
	case SelectReset:
		idx = -1
	default:
		idx = sel
		if idx < 0 {
			idx = 0
		}
		if n := len(c.Items()); idx > n-1 {
			idx = n - 1
		}
	}

	if !c.trySelect(idx) {
		c.waiting = true
		c.pendingIdx = idx
		c.resume = then
		return false
	}
	if then != nil {
		then()
	}
	return true
}

func (c *Completions) trySelect(idx int) bool {
	items := c.Items()
	if idx == -1 || len(items) > 0 && idx >= len(items) && !c.context.Incomplete() {
		// Wrapped.
		c.selected = -1
		c.setCompletion(c.value)
		c.list.Select(-1)
		return true
	}
	if !c.ready(idx) {
		return false
	}
	items = c.Items()
	if idx == lastItem {
		idx = len(items) - 1
	}
	if len(items) == 0 {
		return true
	}
	if idx >= len(items) {
		c.selected = -1
		c.setCompletion(c.value)
		c.list.Select(-1)
		return true
	}
	c.selected = idx
	c.setCompletion(items[idx].Text)
	c.list.Select(idx)
	return true
}

// Reports whether the contexts up to the one holding idx have finished
// generating.
func (c *Completions) ready(idx int) bool {
	list := c.context.ContextList()
	if idx == lastItem {
		for i, j := 0, len(list)-1; i < j; i, j = i+1, j-1 {
			list[i], list[j] = list[j], list[i]
		}
	}
	n := 0
	for _, ctx := range list {
		length := len(ctx.Items())
		done := !(idx >= n+length || idx == lastItem && length == 0)
		if done {
			return true
		}
		if ctx.Incomplete() {
			return false
		}
		n += length
	}
	return true
}

// Tab performs one completion step with the given wildmode elements, or the
// wildmode option when wildtypes is nil. Steps requested while a selection
// waits for results are queued.
func (c *Completions) Tab(reverse bool, wildtypes []string) {
	c.cl.autocompleteTimer.Flush()
	if c.caret != c.cl.caret {
		c.reset(false)
	}
	c.caret = c.cl.caret

	if c.context.WaitingForTab() || c.wildIndex == -1 {
		c.complete(true, true)
	}

	if wildtypes == nil {
		wildtypes = c.cl.cfg.Options.List("wildmode")
	}
	c.tabs = append(c.tabs, tabStep{reverse, wildtypes})
	if c.waiting {
		return
	}
	c.runTabs()
}

func (c *Completions) runTabs() {
	for len(c.tabs) > 0 {
		step := c.tabs[0]
		c.tabs = c.tabs[1:]
		c.wildtypes = step.wildtypes
		if c.wildIndex > len(c.wildtypes)-1 {
			c.wildIndex = len(c.wildtypes) - 1
		}

		finish := func() {
			if options.WildmodeHas(c.wildtype(), "list") {
				c.list.Show()
			}
			c.wildIndex++
			c.showPreview()
			c.cl.statusTimer.Tell()
		}

		sel, doSelect := SelectDown, true
		if step.reverse {
			sel = SelectUp
		}
		switch c.baseWildtype() {
		case "":
			sel = 0
		case "longest":
			if len(c.Items()) > 1 {
				if sub := c.substring(); sub != "" && sub != c.completion() {
					c.setCompletion(sub)
				}
				doSelect = false
			}
		case "full":
		default:
			doSelect = false
		}
		if doSelect && !c.selectThen(sel, nil) {
			c.resume = func() {
				finish()
				c.runTabs()
			}
			return
		}
		finish()
	}

	if len(c.Items()) == 0 {
		c.cl.beep()
	}
}
