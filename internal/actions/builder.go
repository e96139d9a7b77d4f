// Package actions implements the Builder: the only component that turns a
// planner decision ("type this character", "press Ctrl+Left") into the raw
// Wait/Modifiers/Key action triples a playback sink actually replays.
//
// Grounded on the original implementation's ActionBuilder (planner.rs),
// ported field-for-field including its randomized settle-time ranges, which
// the spec's TESTABLE PROPERTIES section depends on for realistic timing.
package actions

import (
	"math/rand"

	"typeplan/internal/keymap"
	"typeplan/internal/model"
)

// Builder accumulates an action stream while tracking which modifiers are
// currently held down, so it only emits Modifiers updates on actual changes.
type Builder struct {
	actions   []model.Action
	shiftDown bool
	ctrlDown  bool
	shiftMask uint32
	ctrlMask  uint32
}

// NewBuilder constructs an empty Builder for the given modifier bitmasks.
func NewBuilder(shiftMask, ctrlMask uint32) *Builder {
	return &Builder{shiftMask: shiftMask, ctrlMask: ctrlMask}
}

// Actions returns the accumulated action stream.
func (b *Builder) Actions() []model.Action {
	return b.actions
}

// Wait appends a Wait action. A zero-length wait is dropped.
func (b *Builder) Wait(ms uint64) {
	if ms == 0 {
		return
	}
	b.actions = append(b.actions, model.Wait(ms))
}

// Key appends a raw Key action.
func (b *Builder) Key(keycode uint32, state model.KeyState) {
	b.actions = append(b.actions, model.Key(keycode, state))
}

func (b *Builder) setModifiers() {
	var depressed uint32
	if b.shiftDown {
		depressed |= b.shiftMask
	}
	if b.ctrlDown {
		depressed |= b.ctrlMask
	}
	b.actions = append(b.actions, model.Modifiers(depressed, 0, 0, 0))
}

// SetShift presses or releases left Shift, settling with randomized pauses
// before and after the Modifiers update. A no-op if already in that state.
func (b *Builder) SetShift(down bool, rng *rand.Rand) {
	if b.shiftDown == down {
		return
	}
	state := model.KeyReleased
	if down {
		state = model.KeyPressed
	}
	b.Key(keymap.KeyLeftShift, state)
	b.Wait(uint64(5 + rng.Intn(16)))
	b.shiftDown = down
	b.setModifiers()
	b.Wait(uint64(rng.Intn(13)))
}

// SetCtrl presses or releases left Ctrl, mirroring SetShift.
func (b *Builder) SetCtrl(down bool, rng *rand.Rand) {
	if b.ctrlDown == down {
		return
	}
	state := model.KeyReleased
	if down {
		state = model.KeyPressed
	}
	b.Key(keymap.KeyLeftCtrl, state)
	b.Wait(uint64(5 + rng.Intn(16)))
	b.ctrlDown = down
	b.setModifiers()
	b.Wait(uint64(rng.Intn(13)))
}

// PressKey presses keycode, holds for a randomized dwell, then releases.
func (b *Builder) PressKey(keycode uint32, rng *rand.Rand) {
	holdMs := uint64(18 + rng.Intn(53))
	b.Key(keycode, model.KeyPressed)
	b.Wait(holdMs)
	b.Key(keycode, model.KeyReleased)
}

// TypeChar releases Ctrl, sets Shift per the stroke, and presses the key.
func (b *Builder) TypeChar(stroke keymap.Stroke, rng *rand.Rand) {
	b.SetCtrl(false, rng)
	b.SetShift(stroke.Shift, rng)
	b.PressKey(stroke.Keycode, rng)
}

// NavLeft presses plain Left (no modifiers).
func (b *Builder) NavLeft(rng *rand.Rand) {
	b.SetCtrl(false, rng)
	b.SetShift(false, rng)
	b.PressKey(keymap.KeyLeft, rng)
}

// NavRight presses plain Right (no modifiers).
func (b *Builder) NavRight(rng *rand.Rand) {
	b.SetCtrl(false, rng)
	b.SetShift(false, rng)
	b.PressKey(keymap.KeyRight, rng)
}

// NavWordLeft presses Ctrl+Left.
func (b *Builder) NavWordLeft(rng *rand.Rand) {
	b.SetCtrl(true, rng)
	b.SetShift(false, rng)
	b.PressKey(keymap.KeyLeft, rng)
}

// NavWordRight presses Ctrl+Right.
func (b *Builder) NavWordRight(rng *rand.Rand) {
	b.SetCtrl(true, rng)
	b.SetShift(false, rng)
	b.PressKey(keymap.KeyRight, rng)
}

// Backspace presses plain Backspace (no modifiers).
func (b *Builder) Backspace(rng *rand.Rand) {
	b.SetCtrl(false, rng)
	b.SetShift(false, rng)
	b.PressKey(keymap.KeyBackspace, rng)
}
