package parse

import (
	"regexp"
	"strconv"
)

// Special values of Invocation.Count.
const (
	// CountNone means that no count was given.
	CountNone = -1
	// CountAll means that "%" (the whole range) was given.
	CountAll = -2
)

// Invocation is the result of splitting a command line into its count, name,
// bang and raw argument string.
type Invocation struct {
	Count int
	Name  string
	Bang  bool
	Args  string
	// ArgsOffset is the byte offset of Args within the line.
	ArgsOffset int
}

var commandPattern = regexp.MustCompile(
	`(?s)^([:\s]*)(\d+|%)?([a-zA-Z][a-zA-Z0-9]*|!)(!?)(\s*)(.*)$`)

// ParseCommand splits an Ex command line. It returns false when the line does
// not start with something shaped like a command name, or when the name runs
// directly into other text (as in "echo-x"), which is ambiguous.
func ParseCommand(line string) (Invocation, bool) {
	m := commandPattern.FindStringSubmatchIndex(line)
	if m == nil {
		return Invocation{}, false
	}
	group := func(i int) string {
		if m[2*i] < 0 {
			return ""
		}
		return line[m[2*i]:m[2*i+1]]
	}
	count, name, bang, space, args := group(2), group(3), group(4), group(5), group(6)
	if name != "!" && space == "" && bang == "" && args != "" && args[0] != '|' {
		return Invocation{}, false
	}

	inv := Invocation{Count: CountNone, Name: name, Bang: bang != "", Args: args, ArgsOffset: m[12]}
	switch count {
	case "":
	case "%":
		inv.Count = CountAll
	default:
		n, err := strconv.Atoi(count)
		if err != nil {
			return Invocation{}, false
		}
		inv.Count = n
	}
	return inv, true
}
