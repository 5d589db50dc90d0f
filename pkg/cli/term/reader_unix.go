//go:build !windows && !plan9

package term

import (
	"os"
	"time"
)

// reader reads terminal escape sequences and decodes them into events.
type reader struct {
	fr fileReader
}

func newReader(f *os.File) (Reader, error) {
	fr, err := newFileReader(f)
	if err != nil {
		return nil, err
	}
	return &reader{fr}, nil
}

func (rd *reader) ReadEvent() (Event, error) {
	return readEvent(rd.fr)
}

func (rd *reader) ReadRawEvent() (Event, error) {
	r, err := readRune(rd.fr, -1)
	return K(r), err
}

func (rd *reader) Close() {
	rd.fr.Stop()
	rd.fr.Close()
}

// Returned by the sequence-reading closure in readEvent to signal the end of
// the current sequence.
const runeEndOfSeq rune = -1

// Timeout for bytes in escape sequences. Modern terminal emulators send escape
// sequences very fast, so 10ms is more than sufficient. SSH connections on a
// slow link might be problematic though.
var keySeqTimeout = 10 * time.Millisecond

func readEvent(rd byteReaderWithTimeout) (event Event, err error) {
	var r rune
	r, err = readRune(rd, -1)
	if err != nil {
		return
	}

	currentSeq := string(r)
	// Attempts to read a rune within a timeout of keySeqTimeout. It returns
	// runeEndOfSeq if there is any error; the caller should terminate the
	// current sequence when it sees that value.
	readRune :=
		func() rune {
			r, e := readRune(rd, keySeqTimeout)
			if e != nil {
				return runeEndOfSeq
			}
			currentSeq += string(r)
			return r
		}
	badSeq := func(msg string) {
		err = seqError{msg, currentSeq}
	}

	switch r {
	case 0x1b: // ^[ Escape
		r2 := readRune()
		// rxvt and derivatives signal Alt by another ESC before a CSI-style
		// or G3-style sequence.
		hasTwoLeadingESC := false
		if r2 == 0x1b {
			hasTwoLeadingESC = true
			r2 = readRune()
		}
		if r2 == runeEndOfSeq {
			// Nothing follows; a lone Escape.
			event = K(Escape)
			break
		}
		switch r2 {
		case '[':
			// A '[' follows. CSI style function key sequence.
			r = readRune()
			if r == runeEndOfSeq {
				event = Key{'[', Alt}
				return
			}

			nums := make([]int, 0, 2)
		CSISeq:
			for {
				switch {
				case r == ';':
					nums = append(nums, 0)
				case '0' <= r && r <= '9':
					if len(nums) == 0 {
						nums = append(nums, 0)
					}
					cur := len(nums) - 1
					nums[cur] = nums[cur]*10 + int(r-'0')
				case r == runeEndOfSeq:
					// Incomplete CSI.
					badSeq("incomplete CSI")
					return
				default: // Treat as a terminator.
					break CSISeq
				}

				r = readRune()
			}
			if r == 'R' {
				// Cursor position report.
				if len(nums) != 2 {
					badSeq("bad CPR")
					return
				}
				event = CursorPosition{nums[0], nums[1]}
			} else if r == '~' && len(nums) == 1 && (nums[0] == 200 || nums[0] == 201) {
				b := nums[0] == 200
				event = PasteSetting(b)
			} else {
				k := parseCSI(nums, r)
				if k == (Key{}) {
					badSeq("bad CSI")
				} else {
					if hasTwoLeadingESC {
						k.Mod |= Alt
					}
					event = k
				}
			}
		case 'O':
			// An 'O' follows. G3 style function key sequence: read one rune.
			r = readRune()
			if r == runeEndOfSeq {
				// Nothing follows after 'O'. Taken as Alt-O.
				event = Key{'O', Alt}
				return
			}
			k, ok := g3Seq[r]
			if ok {
				if hasTwoLeadingESC {
					k.Mod |= Alt
				}
				event = k
			} else {
				badSeq("bad G3")
			}
		default:
			// Something other than '[' or 'O' follows. Taken as an
			// Alt-modified key, possibly also modified by Ctrl.
			k := ctrlModify(r2)
			k.Mod |= Alt
			event = k
		}
	default:
		event = ctrlModify(r)
	}
	return
}

// Determines whether a rune corresponds to a Ctrl-modified key and returns the
// Key the rune represents.
func ctrlModify(r rune) Key {
	switch r {
	case 0x0:
		return K('`', Ctrl) // ^@
	case 0x1e:
		return K('6', Ctrl) // ^^
	case 0x1f:
		return K('/', Ctrl) // ^_
	case Tab, Enter, Return, Backspace: // ^I ^J ^M ^?
		// Ambiguous Ctrl keys; the plain key is far more likely.
		return K(r)
	default:
		// Regular Ctrl sequences.
		if 0x1 <= r && r <= 0x1d {
			return K(r+0x40, Ctrl)
		}
	}
	return K(r)
}

// G3-style key sequences: \eO followed by exactly one rune, as in \eOP for F1.
// The only modifier they carry is Alt, as a second leading \e.
var g3Seq = map[rune]Key{
	'A': K(Up), 'B': K(Down), 'C': K(Right), 'D': K(Left),
	'H': K(Home), 'F': K(End), 'M': K(Insert),
	// urxvt
	'a': K(Up, Ctrl), 'b': K(Down, Ctrl),
	'c': K(Right, Ctrl), 'd': K(Left, Ctrl),
	'P': K(F1), 'Q': K(F2), 'R': K(F3), 'S': K(F4),
}

// CSI-style key sequences identified by the last rune, as in \e[A for Up.
// Modified keys carry two arguments, 1 and the xterm modifier: \e[1;5A is
// Ctrl-Up.
var csiSeqByLast = map[rune]Key{
	'A': K(Up), 'B': K(Down), 'C': K(Right), 'D': K(Left),
	// urxvt
	'a': K(Up, Shift), 'b': K(Down, Shift),
	'c': K(Right, Shift), 'd': K(Left, Shift),
	'H': K(Home), 'F': K(End),
	'Z': K(Tab, Shift),
}

// CSI-style key sequences ending with '~', identified by the first argument,
// as in \e[3~ for Delete. An optional second argument is the xterm modifier.
// urxvt instead replaces '~' with '$' for Shift, '^' for Ctrl and '@' for
// both.
var csiSeqTilde = map[int]rune{
	1: Home, 2: Insert, 3: Delete, 4: End, 5: PageUp, 6: PageDown,
	7: Home, 8: End,
	11: F1, 12: F2, 13: F3, 14: F4,
	15: F5, 17: F6, 18: F7, 19: F8,
	20: F9, 21: F10, 23: F11, 24: F12,
}

// CSI-style key sequences of the form \e[27;<modifier>;<key>~, where key is
// a character code; \e[27;5;9~ is Ctrl-Tab.
var csiSeqTilde27 = map[int]rune{
	9: '\t', 13: '\r',
	33: '!', 35: '#', 39: '\'', 40: '(', 41: ')', 43: '+', 44: ',', 45: '-',
	46: '.',
	48: '0', 49: '1', 50: '2', 51: '3', 52: '4', 53: '5', 54: '6', 55: '7',
	56: '8', 57: '9',
	58: ':', 59: ';', 60: '<', 61: '=', 62: '>', 63: ';',
}

// Decodes a CSI-style key sequence of any of the forms above. It returns the
// zero Key when the sequence is not a known key.
func parseCSI(nums []int, last rune) Key {
	if k, ok := csiSeqByLast[last]; ok {
		switch {
		case len(nums) == 0:
			return k
		case len(nums) == 2 && nums[0] == 1:
			return xtermModify(k, nums[1])
		}
		return Key{}
	}

	switch last {
	case '~':
		switch {
		case len(nums) == 1 || len(nums) == 2:
			r, ok := csiSeqTilde[nums[0]]
			if !ok {
				break
			}
			if len(nums) == 1 {
				return K(r)
			}
			return xtermModify(K(r), nums[1])
		case len(nums) == 3 && nums[0] == 27:
			if r, ok := csiSeqTilde27[nums[2]]; ok {
				return xtermModify(K(r), nums[1])
			}
		}
	case '$', '^', '@':
		if len(nums) != 1 {
			break
		}
		if r, ok := csiSeqTilde[nums[0]]; ok {
			return K(r, urxvtMods[last])
		}
	}
	return Key{}
}

var urxvtMods = map[rune]Mod{'$': Shift, '^': Ctrl, '@': Shift | Ctrl}

// Applies an xterm modifier argument, which is 1 plus a bit set of Shift (1),
// Alt (2), Ctrl (4) and Meta (8). Meta is treated as Alt.
func xtermModify(k Key, mod int) Key {
	if mod < 0 || mod > 16 {
		return Key{}
	}
	if mod == 0 {
		return k
	}
	bits := mod - 1
	if bits&0x1 != 0 {
		k.Mod |= Shift
	}
	if bits&0xa != 0 {
		k.Mod |= Alt
	}
	if bits&0x4 != 0 {
		k.Mod |= Ctrl
	}
	return k
}
