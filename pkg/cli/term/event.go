package term

// Event represents an event that can be read from the terminal.
type Event interface {
	isEvent()
}

// CursorPosition represents a cursor position report, sent in response to a
// query.
type CursorPosition struct {
	Row int
	Col int
}

// PasteSetting indicates the start or finish of pasted text.
type PasteSetting bool

func (Key) isEvent()            {}
func (CursorPosition) isEvent() {}
func (PasteSetting) isEvent()   {}
