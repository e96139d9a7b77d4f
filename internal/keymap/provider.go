package keymap

import "fmt"

// KeymapFormatXKBV1 mirrors the wl_keyboard/virtual-keyboard keymap format
// tag for a textual XKB v1 keymap.
const KeymapFormatXKBV1 = 1

// Info is what a keymap provider hands back to the planner: the layout
// name, the keymap blob and its format tag, and the single-bit modifier
// masks the provider's Shift/Ctrl indices correspond to.
type Info struct {
	Layout       string
	KeymapFormat uint32
	Keymap       string
	ShiftMask    uint32
	CtrlMask     uint32
}

// Provider is the external collaborator that produces a keymap description
// plus modifier bitmasks. The planner treats it as a pure function call; it
// never mutates planner state.
type Provider interface {
	Keymap() (Info, error)
}

// usQWERTYKeymapBlob is a minimal textual XKB v1 keymap for "us"/"pc105"
// sufficient to satisfy consumers that only need the keymap rule/model
// fields and the Shift/Control modifier assignment. No xkbcommon binding is
// available in this module's dependency set (see DESIGN.md); emitting a
// fixed blob mirrors the teacher's viper.SetDefault-style fixed-default
// pattern for fields that would otherwise need an external service call.
const usQWERTYKeymapBlob = `xkb_keymap {
	xkb_keycodes  { include "evdev+aliases(qwerty)" };
	xkb_types     { include "complete" };
	xkb_compat    { include "complete" };
	xkb_symbols   { include "pc+us+inet(evdev)" };
	xkb_geometry  { include "pc(pc105)" };
};
`

// shiftModIndex and ctrlModIndex are the conventional XKB modifier bit
// indices for Shift and Control on an evdev/pc105/us keymap.
const (
	shiftModIndex = 0
	ctrlModIndex  = 2
)

// USQWERTYProvider is the default Provider: a fixed US-QWERTY/pc105 keymap.
type USQWERTYProvider struct{}

// NewUSQWERTYProvider constructs the default keymap provider.
func NewUSQWERTYProvider() USQWERTYProvider {
	return USQWERTYProvider{}
}

// Keymap returns the fixed US-QWERTY keymap description.
func (USQWERTYProvider) Keymap() (Info, error) {
	shiftMask, err := bitMask(shiftModIndex)
	if err != nil {
		return Info{}, fmt.Errorf("keymap: shift modifier index out of range: %w", err)
	}
	ctrlMask, err := bitMask(ctrlModIndex)
	if err != nil {
		return Info{}, fmt.Errorf("keymap: control modifier index out of range: %w", err)
	}

	return Info{
		Layout:       "us",
		KeymapFormat: KeymapFormatXKBV1,
		Keymap:       usQWERTYKeymapBlob,
		ShiftMask:    shiftMask,
		CtrlMask:     ctrlMask,
	}, nil
}

func bitMask(index uint) (uint32, error) {
	if index >= 32 {
		return 0, fmt.Errorf("modifier index %d out of range", index)
	}
	return uint32(1) << index, nil
}
