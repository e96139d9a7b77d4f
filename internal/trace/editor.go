// Package trace turns a Plan's raw Key actions back into human-readable
// console lines ("Typing \"...\"...", "Replace \"...\" with \"...\"...") for
// operators watching a run, without replaying the plan itself.
//
// Grounded on the original implementation's trace.rs, which defines two
// parallel state machines over the same decode logic: PlaybackTracer
// (streaming, used while actions are being replayed live) and TracePlanner
// (batch, used to precompute every line's action index up front so a
// console UI can print a line just before the actions it describes start).
package trace

import (
	"typeplan/internal/keymap"
	"typeplan/internal/wordnav"
)

// isWordChar is trace's own word-character predicate: ASCII alphanumeric
// plus apostrophe, deliberately narrower than wordnav.IsWordChar (no smart
// quote) to match the original implementation's trace-local definition.
func isWordChar(c rune) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '\''
}

type editorState struct {
	buf    []rune
	cursor int
}

func (s *editorState) insertChar(c rune) {
	s.buf = append(s.buf, 0)
	copy(s.buf[s.cursor+1:], s.buf[s.cursor:])
	s.buf[s.cursor] = c
	s.cursor++
}

// backspace deletes the character before the cursor and returns it, or
// ok=false if the cursor was already at the start.
func (s *editorState) backspace() (c rune, ok bool) {
	if s.cursor == 0 {
		return 0, false
	}
	s.cursor--
	c = s.buf[s.cursor]
	copy(s.buf[s.cursor:], s.buf[s.cursor+1:])
	s.buf = s.buf[:len(s.buf)-1]
	return c, true
}

// delete deletes the character at the cursor and returns it, or ok=false if
// the cursor was already at the end.
func (s *editorState) delete() (c rune, ok bool) {
	if s.cursor >= len(s.buf) {
		return 0, false
	}
	c = s.buf[s.cursor]
	copy(s.buf[s.cursor:], s.buf[s.cursor+1:])
	s.buf = s.buf[:len(s.buf)-1]
	return c, true
}

func (s *editorState) moveLeft() {
	if s.cursor > 0 {
		s.cursor--
	}
}

func (s *editorState) moveRight() {
	if s.cursor < len(s.buf) {
		s.cursor++
	}
}

func (s *editorState) moveWordLeft() {
	s.cursor = wordnav.CtrlLeft(s.buf, s.cursor, isWordChar)
}

func (s *editorState) moveWordRight() {
	s.cursor = wordnav.CtrlRight(s.buf, s.cursor, isWordChar)
}

func (s *editorState) home() { s.cursor = 0 }
func (s *editorState) end()  { s.cursor = len(s.buf) }

func (s *editorState) atEnd() bool { return s.cursor == len(s.buf) }

func escapeForLog(s string) string {
	out := make([]rune, 0, len(s))
	for _, c := range s {
		switch c {
		case '\\':
			out = append(out, '\\', '\\')
		case '"':
			out = append(out, '\\', '"')
		case '\n':
			out = append(out, '\\', 'n')
		case '\r':
			out = append(out, '\\', 'r')
		case '\t':
			out = append(out, '\\', 't')
		default:
			out = append(out, c)
		}
	}
	return string(out)
}

func isEditKey(keycode uint32) bool {
	switch keycode {
	case keymap.KeyLeft, keymap.KeyRight, keymap.KeyUp, keymap.KeyDown,
		keymap.KeyHome, keymap.KeyEnd, keymap.KeyBackspace, keymap.KeyDelete:
		return true
	}
	return false
}
