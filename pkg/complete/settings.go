package complete

import "fmt"

// CaseMode determines how case is treated when matching candidates.
type CaseMode int

// Possible values of CaseMode.
const (
	// Case is significant only when the filter contains an upper case letter.
	CaseSmart CaseMode = iota
	// Case is always significant.
	CaseMatch
	// Case is never significant.
	CaseIgnore
)

var caseModeNames = []string{"smart", "match", "ignore"}

func (m CaseMode) String() string {
	if m < 0 || int(m) >= len(caseModeNames) {
		return fmt.Sprintf("CaseMode(%d)", int(m))
	}
	return caseModeNames[m]
}

// ParseCaseMode parses the name of a case mode.
func ParseCaseMode(s string) (CaseMode, error) {
	for i, name := range caseModeNames {
		if s == name {
			return CaseMode(i), nil
		}
	}
	return CaseSmart, fmt.Errorf("invalid case mode: %q", s)
}

// Settings supplies per-context settings, looked up by the full context name.
type Settings interface {
	// AutoComplete reports whether the context produces results while
	// typing, or only once Tab is pressed.
	AutoComplete(name string) bool
	// WildCase returns the case mode of the context.
	WildCase(name string) CaseMode
	// WildSort reports whether the items of the context are sorted.
	WildSort(name string) bool
}

// DefaultSettings autocompletes and sorts every context, with smart case.
type DefaultSettings struct{}

func (DefaultSettings) AutoComplete(string) bool { return true }
func (DefaultSettings) WildCase(string) CaseMode { return CaseSmart }
func (DefaultSettings) WildSort(string) bool     { return true }
