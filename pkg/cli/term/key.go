package term

import (
	"fmt"
	"strings"
)

// Key represents a single keyboard input, typically assembled from an escape
// sequence.
type Key struct {
	Rune rune
	Mod  Mod
}

// K constructs a new Key.
func K(r rune, mods ...Mod) Key {
	var mod Mod
	for _, m := range mods {
		mod |= m
	}
	return Key{r, mod}
}

// Mod represents a modifier key.
type Mod byte

// Values for Mod.
const (
	// Shift is the shift modifier. It is only applied to special keys (e.g.
	// Shift-Tab). For instance 'A' and '@' which are typically entered with
	// the shift key pressed, are not considered to be shift-modified.
	Shift Mod = 1 << iota
	// Alt is the alt modifier, traditionally known as the meta modifier.
	Alt
	Ctrl
)

// Special negative runes to represent function keys, used in the Rune field of
// the Key struct.
const (
	F1 rune = -iota - 1
	F2
	F3
	F4
	F5
	F6
	F7
	F8
	F9
	F10
	F11
	F12

	Up
	Down
	Right
	Left

	Home
	Insert
	Delete
	End
	PageUp
	PageDown

	// Some key names are just aliases for their ASCII representation.

	Tab       = '\t'
	Enter     = '\n'
	Return    = '\r'
	Escape    = 0x1b
	Space     = ' '
	Backspace = 0x7f
)

var functionKeyNames = [...]string{
	"(Invalid)",
	"F1", "F2", "F3", "F4", "F5", "F6", "F7", "F8", "F9", "F10", "F11", "F12",
	"Up", "Down", "Right", "Left",
	"Home", "Insert", "Del", "End", "PageUp", "PageDown",
}

var keyNames = map[rune]string{
	Tab: "Tab", Enter: "NL", Return: "Return", Escape: "Esc",
	Space: "Space", Backspace: "BS", '<': "lt",
}

// String returns the key in the notation of Ex key names, such as "a",
// "<Tab>", "<S-Tab>" or "<C-c>".
func (k Key) String() string {
	var name string
	if k.Rune < 0 {
		i := int(-k.Rune)
		if i >= len(functionKeyNames) {
			return fmt.Sprintf("<(bad function key %d)>", i)
		}
		name = functionKeyNames[i]
	} else if n, ok := keyNames[k.Rune]; ok {
		name = n
	} else if k.Mod == 0 {
		return string(k.Rune)
	} else {
		name = string(k.Rune)
	}

	var sb strings.Builder
	sb.WriteByte('<')
	if k.Mod&Ctrl != 0 {
		sb.WriteString("C-")
	}
	if k.Mod&Alt != 0 {
		sb.WriteString("A-")
	}
	if k.Mod&Shift != 0 {
		sb.WriteString("S-")
	}
	sb.WriteString(name)
	sb.WriteByte('>')
	return sb.String()
}

var modifierByName = map[string]Mod{
	"s": Shift, "a": Alt, "m": Alt, "c": Ctrl,
}

// ParseKey parses a key in the notation produced by String. Modifier and key
// names are case-insensitive.
func ParseKey(s string) (Key, error) {
	if !strings.HasPrefix(s, "<") || !strings.HasSuffix(s, ">") || len(s) < 3 {
		if r := []rune(s); len(r) == 1 {
			return Key{Rune: r[0]}, nil
		}
		return Key{}, fmt.Errorf("bad key: %q", s)
	}
	body := s[1 : len(s)-1]
	var k Key
	for len(body) > 2 && body[1] == '-' {
		mod, ok := modifierByName[strings.ToLower(body[:1])]
		if !ok {
			return Key{}, fmt.Errorf("bad modifier: %q", body[:1])
		}
		k.Mod |= mod
		body = body[2:]
	}

	if r := []rune(body); len(r) == 1 {
		k.Rune = r[0]
		return k, nil
	}
	for r, name := range keyNames {
		if strings.EqualFold(body, name) {
			k.Rune = r
			return k, nil
		}
	}
	for i, name := range functionKeyNames[1:] {
		if strings.EqualFold(body, name) {
			k.Rune = rune(-i - 1)
			return k, nil
		}
	}
	switch strings.ToLower(body) {
	case "cr", "enter":
		k.Rune = Return
		return k, nil
	case "delete":
		k.Rune = Delete
		return k, nil
	}
	return Key{}, fmt.Errorf("bad key: %q", s)
}

// IsAccept reports whether the key submits a command line.
func (k Key) IsAccept() bool {
	return k.Mod == 0 && (k.Rune == Enter || k.Rune == Return)
}

// IsCancel reports whether the key cancels a command line. A lone Escape may
// also be decoded as Ctrl-[.
func (k Key) IsCancel() bool {
	return k == Key{Rune: Escape} || k == Key{'[', Ctrl} || k == Key{'c', Ctrl}
}
