// Package keymap implements the bidirectional US-QWERTY mapping between
// output characters and (keycode, shift) keystrokes, the typeable-alphabet
// predicate, and the QWERTY-neighbor lookup used for typo injection.
//
// This is grounded on the teacher's internal/stealth/keyboard.go
// generateTypo neighbor table, generalized to a full keystroke map and
// cross-checked char-for-char against the original Rust implementation's
// keyboard.rs so the keycode/shift assignment matches exactly.
package keymap

import "math/rand"

// Stroke is a single keystroke: a keycode plus whether Shift must be held.
type Stroke struct {
	Keycode uint32
	Shift   bool
}

// TypedCharForOutputChar maps an output character to the ASCII (or newline)
// character that is actually typed to produce it. Smart quotes map to their
// ASCII keystroke on the assumption the editor auto-substitutes; tab and
// carriage return are unsupported.
func TypedCharForOutputChar(c rune) (rune, bool) {
	switch c {
	case '\n':
		return '\n', true
	case '\t', '\r':
		return 0, false
	case '’', '‘':
		return '\'', true
	case '”', '“':
		return '"', true
	}
	if c == ' ' || (c >= 0x21 && c <= 0x7E) {
		return c, true
	}
	return 0, false
}

// KeystrokeForOutputChar returns the (keycode, shift) pair needed to type
// the given output character, or false if it is unsupported.
func KeystrokeForOutputChar(c rune) (Stroke, bool) {
	typed, ok := TypedCharForOutputChar(c)
	if !ok {
		return Stroke{}, false
	}
	return charToKeystroke(typed)
}

// IsSupportedFinalText reports whether every character in text is typeable.
func IsSupportedFinalText(text string) bool {
	for _, c := range text {
		if _, ok := KeystrokeForOutputChar(c); !ok {
			return false
		}
	}
	return true
}

// FindFirstUnsupportedChar returns the byte index and rune of the first
// character in text that is not typeable, or ok=false if every character is
// supported.
func FindFirstUnsupportedChar(text string) (idx int, r rune, ok bool) {
	for i, c := range text {
		if _, supported := KeystrokeForOutputChar(c); !supported {
			return i, c, true
		}
	}
	return 0, 0, false
}

// BuildKeystrokeMap returns the reverse mapping from (keycode, shift) back
// to the output character it types, covering newline, space, and printable
// ASCII. Used by plan replay and trace generation to decode Key actions.
func BuildKeystrokeMap() map[Stroke]rune {
	out := make(map[Stroke]rune, 96)
	candidates := make([]rune, 0, 96)
	candidates = append(candidates, '\n', ' ')
	for b := rune(33); b <= 126; b++ {
		candidates = append(candidates, b)
	}
	for _, c := range candidates {
		if stroke, ok := KeystrokeForOutputChar(c); ok {
			out[stroke] = c
		}
	}
	return out
}

func charToKeystroke(c rune) (Stroke, bool) {
	switch {
	case c >= 'a' && c <= 'z':
		return Stroke{Keycode: letterKeycode(c), Shift: false}, true
	case c >= 'A' && c <= 'Z':
		return Stroke{Keycode: letterKeycode(c - 'A' + 'a'), Shift: true}, true
	}

	switch c {
	case '1':
		return Stroke{Key1, false}, true
	case '2':
		return Stroke{Key2, false}, true
	case '3':
		return Stroke{Key3, false}, true
	case '4':
		return Stroke{Key4, false}, true
	case '5':
		return Stroke{Key5, false}, true
	case '6':
		return Stroke{Key6, false}, true
	case '7':
		return Stroke{Key7, false}, true
	case '8':
		return Stroke{Key8, false}, true
	case '9':
		return Stroke{Key9, false}, true
	case '0':
		return Stroke{Key0, false}, true
	case '!':
		return Stroke{Key1, true}, true
	case '@':
		return Stroke{Key2, true}, true
	case '#':
		return Stroke{Key3, true}, true
	case '$':
		return Stroke{Key4, true}, true
	case '%':
		return Stroke{Key5, true}, true
	case '^':
		return Stroke{Key6, true}, true
	case '&':
		return Stroke{Key7, true}, true
	case '*':
		return Stroke{Key8, true}, true
	case '(':
		return Stroke{Key9, true}, true
	case ')':
		return Stroke{Key0, true}, true
	case '-':
		return Stroke{KeyMinus, false}, true
	case '_':
		return Stroke{KeyMinus, true}, true
	case '=':
		return Stroke{KeyEqual, false}, true
	case '+':
		return Stroke{KeyEqual, true}, true
	case '[':
		return Stroke{KeyLeftBrace, false}, true
	case '{':
		return Stroke{KeyLeftBrace, true}, true
	case ']':
		return Stroke{KeyRightBrace, false}, true
	case '}':
		return Stroke{KeyRightBrace, true}, true
	case '\\':
		return Stroke{KeyBackslash, false}, true
	case '|':
		return Stroke{KeyBackslash, true}, true
	case ';':
		return Stroke{KeySemicolon, false}, true
	case ':':
		return Stroke{KeySemicolon, true}, true
	case '\'':
		return Stroke{KeyApostrophe, false}, true
	case '"':
		return Stroke{KeyApostrophe, true}, true
	case '`':
		return Stroke{KeyGrave, false}, true
	case '~':
		return Stroke{KeyGrave, true}, true
	case ',':
		return Stroke{KeyComma, false}, true
	case '<':
		return Stroke{KeyComma, true}, true
	case '.':
		return Stroke{KeyDot, false}, true
	case '>':
		return Stroke{KeyDot, true}, true
	case '/':
		return Stroke{KeySlash, false}, true
	case '?':
		return Stroke{KeySlash, true}, true
	case ' ':
		return Stroke{KeySpace, false}, true
	case '\n':
		return Stroke{KeyEnter, false}, true
	}

	return Stroke{}, false
}

func letterKeycode(lower rune) uint32 {
	switch lower {
	case 'a':
		return KeyA
	case 'b':
		return KeyB
	case 'c':
		return KeyC
	case 'd':
		return KeyD
	case 'e':
		return KeyE
	case 'f':
		return KeyF
	case 'g':
		return KeyG
	case 'h':
		return KeyH
	case 'i':
		return KeyI
	case 'j':
		return KeyJ
	case 'k':
		return KeyK
	case 'l':
		return KeyL
	case 'm':
		return KeyM
	case 'n':
		return KeyN
	case 'o':
		return KeyO
	case 'p':
		return KeyP
	case 'q':
		return KeyQ
	case 'r':
		return KeyR
	case 's':
		return KeyS
	case 't':
		return KeyT
	case 'u':
		return KeyU
	case 'v':
		return KeyV
	case 'w':
		return KeyW
	case 'x':
		return KeyX
	case 'y':
		return KeyY
	case 'z':
		return KeyZ
	}
	return 0
}

// qwertyNeighbors mirrors the teacher's generateTypo adjacency table
// (internal/stealth/keyboard.go), corrected against the reference
// qwerty_adjacent_char table for letters, plus the teacher's digit-neighbor
// fallback.
var qwertyNeighbors = map[rune][]rune{
	'a': {'q', 'w', 's', 'z', 'x'},
	'b': {'v', 'g', 'h', 'n'},
	'c': {'x', 'd', 'f', 'v'},
	'd': {'s', 'e', 'r', 'f', 'c', 'x'},
	'e': {'w', 's', 'd', 'r'},
	'f': {'d', 'r', 't', 'g', 'v', 'c'},
	'g': {'f', 't', 'y', 'h', 'b', 'v'},
	'h': {'g', 'y', 'u', 'j', 'n', 'b'},
	'i': {'u', 'j', 'k', 'o'},
	'j': {'h', 'u', 'i', 'k', 'm', 'n'},
	'k': {'j', 'i', 'o', 'l', ',', 'm'},
	'l': {'k', 'o', 'p', ';', '.'},
	'm': {'n', 'j', 'k', ','},
	'n': {'b', 'h', 'j', 'm'},
	'o': {'i', 'k', 'l', 'p'},
	'p': {'o', 'l', '['},
	'q': {'w', 'a'},
	'r': {'e', 'd', 'f', 't'},
	's': {'a', 'w', 'e', 'd', 'x', 'z'},
	't': {'r', 'f', 'g', 'y'},
	'u': {'y', 'h', 'j', 'i'},
	'v': {'c', 'f', 'g', 'b'},
	'w': {'q', 'a', 's', 'e'},
	'x': {'z', 's', 'd', 'c'},
	'y': {'t', 'g', 'h', 'u'},
	'z': {'a', 's', 'x'},
	'1': {'2', 'q'},
	'2': {'1', '3', 'q', 'w'},
	'3': {'2', '4', 'w', 'e'},
	'4': {'3', '5', 'e', 'r'},
	'5': {'4', '6', 'r', 't'},
	'6': {'5', '7', 't', 'y'},
	'7': {'6', '8', 'y', 'u'},
	'8': {'7', '9', 'u', 'i'},
	'9': {'8', '0', 'i', 'o'},
	'0': {'9', 'o', 'p'},
}

// QwertyAdjacentChar returns a QWERTY-adjacent key for typo generation.
// Only letters and digits have neighbors; everything else returns ok=false.
func QwertyAdjacentChar(c rune, rng *rand.Rand) (rune, bool) {
	base := c
	upper := false
	if c >= 'A' && c <= 'Z' {
		base = c - 'A' + 'a'
		upper = true
	}

	neighbors, ok := qwertyNeighbors[base]
	if !ok || len(neighbors) == 0 {
		return 0, false
	}

	chosen := neighbors[rng.Intn(len(neighbors))]
	if upper && chosen >= 'a' && chosen <= 'z' {
		chosen = chosen - 'a' + 'A'
	}
	return chosen, true
}
