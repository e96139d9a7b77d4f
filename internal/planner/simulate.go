package planner

import (
	"fmt"

	"typeplan/internal/keymap"
	"typeplan/internal/model"
	"typeplan/internal/wordnav"
)

// Stats summarizes a Plan's action stream: counts and aggregate wait time.
// Grounded on the original implementation's PlanStats/stats in sim.rs.
type Stats struct {
	Actions         int
	KeyEvents       int
	ModifierUpdates int
	TotalWaitMs     uint64
}

// ComputeStats tallies a Plan's action stream.
func ComputeStats(plan *model.Plan) Stats {
	out := Stats{Actions: len(plan.Actions)}
	for _, a := range plan.Actions {
		switch a.Kind {
		case model.ActionWait:
			out.TotalWaitMs += a.Ms
		case model.ActionModifiers:
			out.ModifierUpdates++
		case model.ActionKey:
			out.KeyEvents++
		}
	}
	return out
}

// simIsWordChar is the word-navigation predicate used only for plan replay;
// unlike the planner's own word-token scanning it does not special-case the
// smart right single quote, matching the original replay simulator exactly.
func simIsWordChar(c rune) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '\''
}

type simEditorState struct {
	buf    []rune
	cursor int
}

func (s *simEditorState) insertChar(c rune) {
	s.buf = append(s.buf, 0)
	copy(s.buf[s.cursor+1:], s.buf[s.cursor:])
	s.buf[s.cursor] = c
	s.cursor++
}

func (s *simEditorState) backspace() {
	if s.cursor == 0 {
		return
	}
	s.cursor--
	copy(s.buf[s.cursor:], s.buf[s.cursor+1:])
	s.buf = s.buf[:len(s.buf)-1]
}

func (s *simEditorState) delete() {
	if s.cursor >= len(s.buf) {
		return
	}
	copy(s.buf[s.cursor:], s.buf[s.cursor+1:])
	s.buf = s.buf[:len(s.buf)-1]
}

func (s *simEditorState) moveLeft() {
	if s.cursor > 0 {
		s.cursor--
	}
}

func (s *simEditorState) moveRight() {
	if s.cursor < len(s.buf) {
		s.cursor++
	}
}

func (s *simEditorState) moveWordLeft() {
	s.cursor = wordnav.CtrlLeft(s.buf, s.cursor, simIsWordChar)
}

func (s *simEditorState) moveWordRight() {
	s.cursor = wordnav.CtrlRight(s.buf, s.cursor, simIsWordChar)
}

// Simulate replays a Plan's Key actions against a from-scratch editor buffer
// and returns the resulting text, for fidelity self-checks against the text
// the planner was asked to produce. It does not model editor-specific
// behaviors such as smart-quote auto-substitution, and it rejects any
// Ctrl+keycode combination it does not itself know how to interpret.
//
// Grounded on the original implementation's simulate_typed_text (sim.rs).
func Simulate(plan *model.Plan) (string, error) {
	ed := &simEditorState{}
	shiftDown := false
	ctrlDown := false
	keystrokes := keymap.BuildKeystrokeMap()

	for _, a := range plan.Actions {
		if a.Kind != model.ActionKey {
			continue
		}

		switch {
		case (a.Keycode == keymap.KeyLeftShift || a.Keycode == keymap.KeyRightShift) && a.State == model.KeyPressed:
			shiftDown = true
			continue
		case (a.Keycode == keymap.KeyLeftShift || a.Keycode == keymap.KeyRightShift) && a.State == model.KeyReleased:
			shiftDown = false
			continue
		case a.Keycode == keymap.KeyLeftCtrl && a.State == model.KeyPressed:
			ctrlDown = true
			continue
		case a.Keycode == keymap.KeyLeftCtrl && a.State == model.KeyReleased:
			ctrlDown = false
			continue
		case a.State == model.KeyReleased:
			continue
		}

		switch a.Keycode {
		case keymap.KeyLeft:
			if ctrlDown {
				ed.moveWordLeft()
			} else {
				ed.moveLeft()
			}
		case keymap.KeyRight:
			if ctrlDown {
				ed.moveWordRight()
			} else {
				ed.moveRight()
			}
		case keymap.KeyBackspace:
			ed.backspace()
		case keymap.KeyDelete:
			ed.delete()
		default:
			if ctrlDown {
				return "", fmt.Errorf("planner: simulate does not support Ctrl+keycode %d", a.Keycode)
			}
			c, ok := keystrokes[keymap.Stroke{Keycode: a.Keycode, Shift: shiftDown}]
			if !ok {
				return "", fmt.Errorf("planner: simulate does not support keycode %d (shift=%v)", a.Keycode, shiftDown)
			}
			ed.insertChar(c)
		}
	}

	return string(ed.buf), nil
}
