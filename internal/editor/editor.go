// Package editor implements the SimulatedEditor: an in-memory text buffer
// and cursor the planner mutates as it decides what to type, so the planner
// always knows the true document state without re-deriving it from emitted
// actions.
//
// Grounded on the original implementation's EditorState (planner.rs). Plan
// replay verification (planner.Simulate) does not use this type; it keeps
// its own buffer/cursor type inside the planner package, as the original's
// SimEditorState (sim.rs) does.
package editor

import "typeplan/internal/wordnav"

// State is a mutable rune buffer with a cursor, supporting the primitive
// edits and navigation moves the planner issues actions for.
type State struct {
	buf    []rune
	cursor int
	Profile wordnav.Profile
}

// New returns an empty editor using the given word-navigation profile.
func New(profile wordnav.Profile) *State {
	return &State{Profile: profile}
}

// Cursor returns the current cursor position in runes.
func (s *State) Cursor() int { return s.cursor }

// Len returns the buffer length in runes.
func (s *State) Len() int { return len(s.buf) }

// String returns the buffer contents.
func (s *State) String() string { return string(s.buf) }

// Runes returns a copy of the buffer contents.
func (s *State) Runes() []rune {
	out := make([]rune, len(s.buf))
	copy(out, s.buf)
	return out
}

// Buf returns the live buffer slice for read-only inspection. Callers must
// not mutate it; it is exposed uncopied so navigation-planning code can
// inspect spans without an allocation per step.
func (s *State) Buf() []rune {
	return s.buf
}

// InsertChar inserts c at the cursor and advances the cursor past it.
func (s *State) InsertChar(c rune) {
	s.buf = append(s.buf, 0)
	copy(s.buf[s.cursor+1:], s.buf[s.cursor:])
	s.buf[s.cursor] = c
	s.cursor++
}

// Backspace deletes the character immediately before the cursor, if any.
func (s *State) Backspace() {
	if s.cursor == 0 {
		return
	}
	copy(s.buf[s.cursor-1:], s.buf[s.cursor:])
	s.buf = s.buf[:len(s.buf)-1]
	s.cursor--
}

// DeleteForward deletes the character at the cursor, if any.
func (s *State) DeleteForward() {
	if s.cursor >= len(s.buf) {
		return
	}
	copy(s.buf[s.cursor:], s.buf[s.cursor+1:])
	s.buf = s.buf[:len(s.buf)-1]
}

// MoveLeft moves the cursor one position left, clamped at 0.
func (s *State) MoveLeft() {
	if s.cursor > 0 {
		s.cursor--
	}
}

// MoveRight moves the cursor one position right, clamped at the buffer end.
func (s *State) MoveRight() {
	if s.cursor < len(s.buf) {
		s.cursor++
	}
}

// MoveTo sets the cursor to an absolute position, clamped to the buffer.
func (s *State) MoveTo(pos int) {
	if pos < 0 {
		pos = 0
	}
	if pos > len(s.buf) {
		pos = len(s.buf)
	}
	s.cursor = pos
}

// MoveWordLeft moves the cursor to the Ctrl+Left word-navigation target.
func (s *State) MoveWordLeft() {
	s.cursor = wordnav.CtrlLeft(s.buf, s.cursor, wordnav.IsWordChar)
}

// MoveWordRight moves the cursor to the Ctrl+Right word-navigation target.
func (s *State) MoveWordRight() {
	s.cursor = wordnav.CtrlRight(s.buf, s.cursor, wordnav.IsWordChar)
}
