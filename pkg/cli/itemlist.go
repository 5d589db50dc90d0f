package cli

import "src.exline.sh/pkg/complete"

// WaitingMessage is shown below the items of a context that is still
// generating results.
const WaitingMessage = "Generating results..."

// RowType is the type of a row of an ItemList.
type RowType int

// Possible values of RowType.
const (
	RowTitle RowType = iota
	RowMessage
	RowItem
	RowWaiting
	// RowMore marks a context with items outside of the window.
	RowMore
)

// Row is a line of the rendered item list.
type Row struct {
	Type        RowType
	Text        string
	Description string
	Selected    bool
}

// ItemList is the pager over the items of a completion context tree. It shows
// a window of at most maxitems items, grouped by context, that follows the
// selected item.
type ItemList struct {
	context  *complete.Context
	maxItems func() int
	height   func() int

	visible  bool
	start    int
	end      int
	selected int
}

// NewItemList creates an ItemList. The maxItems function returns the size of
// the window; height, when not nil, returns the height of the terminal, which
// further limits the window.
func NewItemList(maxItems, height func() int) *ItemList {
	return &ItemList{maxItems: maxItems, height: height, start: -1, end: -1, selected: -1}
}

// SetContext sets the context tree whose items are listed.
func (l *ItemList) SetContext(c *complete.Context) {
	l.context = c
	l.start, l.end, l.selected = -1, -1, -1
}

func (l *ItemList) Show()         { l.visible = true }
func (l *ItemList) Hide()         { l.visible = false }
func (l *ItemList) Visible() bool { return l.visible }

// Selected returns the flat index of the selected item, or -1.
func (l *ItemList) Selected() int { return l.selected }

// Window returns the flat indices of the first shown item and of the one
// after the last shown item.
func (l *ItemList) Window() (start, end int) { return l.start, l.end }

// Reset deselects the item and moves the window back to the top.
func (l *ItemList) Reset() {
	l.start, l.end, l.selected = -1, -1, -1
	l.Select(-1)
}

func (l *ItemList) windowSize() int {
	n := 20
	if l.maxItems != nil {
		n = l.maxItems()
	}
	if l.height != nil {
		// Leave room for the command line and the title of a group.
		if h := l.height() - 2; h > 0 && h < n {
			n = h
		}
	}
	if n < 1 {
		n = 1
	}
	return n
}

func (l *ItemList) count() int {
	if l.context == nil {
		return 0
	}
	return len(l.context.AllItems().Items)
}

// Select selects the item with the given flat index and scrolls the window so
// that a few items around it stay visible. A negative index, or an index
// equal to the number of items, deselects.
func (l *ItemList) Select(index int) {
	n := l.count()
	maxItems := l.windowSize()
	contextLines := (maxItems - 1) / 2
	if contextLines > 3 {
		contextLines = 3
	}

	offset := l.start
	if index < 0 || index == n {
		if l.selected < 0 {
			offset = 0
		}
		l.selected = -1
	} else {
		if index <= l.start+contextLines {
			offset = index - contextLines
		}
		if index >= l.end-contextLines {
			offset = index + contextLines - maxItems + 1
		}
		if offset > n-maxItems {
			offset = n - maxItems
		}
		if offset < 0 {
			offset = 0
		}
		l.selected = index
	}
	l.fill(offset, n, maxItems)
}

func (l *ItemList) fill(offset, n, maxItems int) {
	if offset < 0 {
		return
	}
	l.start = offset
	l.end = offset + maxItems
	if l.end > n {
		l.end = n
	}
}

// Rows renders the window. Every context that has items, a message or is
// still generating results gets a title row.
func (l *ItemList) Rows() []Row {
	if l.context == nil {
		return nil
	}
	start := l.start
	if start < 0 {
		start = 0
	}
	end := start + l.windowSize()

	var rows []Row
	off := 0
	for _, ctx := range l.context.ContextList() {
		items := ctx.Items()
		msg := ctx.Message()
		incomplete := ctx.Incomplete()
		if len(items) == 0 && msg == "" && !incomplete {
			continue
		}
		rows = append(rows, Row{Type: RowTitle, Text: ctx.Title})
		if msg != "" {
			rows = append(rows, Row{Type: RowMessage, Text: msg})
			end--
		}
		if incomplete {
			end--
		}
		first := off
		off += len(items)
		s, e := clamp(start-first, 0, len(items)), clamp(end-first, 0, len(items))
		for i := s; i < e; i++ {
			rows = append(rows, Row{Type: RowItem, Text: items[i].Text,
				Description: items[i].Description, Selected: first+i == l.selected})
		}
		if incomplete && off-1 < end {
			rows = append(rows, Row{Type: RowWaiting, Text: WaitingMessage})
		}
		if s != e && (s > 0 || e < len(items)) {
			rows = append(rows, Row{Type: RowMore})
		}
	}
	if len(rows) == 0 {
		rows = append(rows, Row{Type: RowTitle, Text: "No Completions"})
	}
	return rows
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
