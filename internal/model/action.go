// Package model holds the wire-level data types shared by the planner,
// the trace generator, and any playback sink: actions, plans, and the
// plan's carried-through config blob.
package model

// KeyState is the pressed/released state of a raw key event.
type KeyState int

const (
	KeyReleased KeyState = iota
	KeyPressed
)

func (s KeyState) String() string {
	if s == KeyPressed {
		return "pressed"
	}
	return "released"
}

// ActionKind discriminates the Action union for serialization.
type ActionKind int

const (
	ActionWait ActionKind = iota
	ActionModifiers
	ActionKey
)

// Action is a tagged variant: Wait, Modifiers, or Key. Exactly one of the
// Wait/Modifiers/Key accessor groups is meaningful, selected by Kind.
//
// A struct-with-kind-tag is used instead of an interface so that
// internal/planfile's JSON marshaling can switch on a single field without
// type assertions. The fields are exported, so the Wait/Modifiers/Key
// constructors are a convenience rather than the only way to build one.
type Action struct {
	Kind ActionKind

	// Wait
	Ms uint64

	// Modifiers
	ModsDepressed uint32
	ModsLatched   uint32
	ModsLocked    uint32
	Group         uint32

	// Key
	Keycode uint32
	State   KeyState
}

func Wait(ms uint64) Action {
	return Action{Kind: ActionWait, Ms: ms}
}

func Modifiers(depressed, latched, locked, group uint32) Action {
	return Action{
		Kind:          ActionModifiers,
		ModsDepressed: depressed,
		ModsLatched:   latched,
		ModsLocked:    locked,
		Group:         group,
	}
}

func Key(keycode uint32, state KeyState) Action {
	return Action{Kind: ActionKey, Keycode: keycode, State: state}
}

// PlanConfig is carried verbatim through to the playback engine.
type PlanConfig struct {
	Layout       string  `json:"layout"`
	KeymapFormat uint32  `json:"keymap_format"`
	Keymap       string  `json:"keymap"`
	WPMTarget    float64 `json:"wpm_target"`
}

// Plan is the planner's total output: a totally ordered action stream plus
// the config needed to replay it.
type Plan struct {
	Version uint32
	Config  PlanConfig
	Actions []Action
}
