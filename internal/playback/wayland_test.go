package playback

import (
	"context"
	"os"
	"testing"

	"typeplan/internal/keymap"
	"typeplan/internal/model"
)

type recordingKeyboard struct {
	keymapCalls int
	keymapSize  uint32
	keys        []model.Action
	mods        []model.Action
}

func (k *recordingKeyboard) Keymap(format uint32, fd *os.File, size uint32) error {
	k.keymapCalls++
	k.keymapSize = size
	return nil
}

func (k *recordingKeyboard) Key(time uint32, key uint32, state uint32) error {
	k.keys = append(k.keys, model.Key(key, model.KeyState(state)))
	return nil
}

func (k *recordingKeyboard) Modifiers(modsDepressed, modsLatched, modsLocked, group uint32) error {
	k.mods = append(k.mods, model.Modifiers(modsDepressed, modsLatched, modsLocked, group))
	return nil
}

func TestWaylandSinkUploadsKeymapBeforeReplayingKeys(t *testing.T) {
	kb := &recordingKeyboard{}
	sink := NewWaylandSink(kb)

	plan := &model.Plan{
		Config: model.PlanConfig{KeymapFormat: 1, Keymap: "fake-xkb-blob"},
		Actions: []model.Action{
			model.Key(keymap.KeyA, model.KeyPressed),
			model.Wait(10),
			model.Key(keymap.KeyA, model.KeyReleased),
		},
	}

	if err := sink.Apply(context.Background(), plan); err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}

	if kb.keymapCalls != 1 {
		t.Fatalf("expected exactly one Keymap call, got %d", kb.keymapCalls)
	}
	if kb.keymapSize != uint32(len("fake-xkb-blob")) {
		t.Errorf("keymap size = %d, want %d", kb.keymapSize, len("fake-xkb-blob"))
	}
	if len(kb.keys) != 2 {
		t.Fatalf("expected 2 key events, got %d", len(kb.keys))
	}
	if kb.keys[0].State != model.KeyPressed || kb.keys[1].State != model.KeyReleased {
		t.Errorf("unexpected key states: %+v", kb.keys)
	}
}

func TestWaylandSinkForwardsModifiersActions(t *testing.T) {
	kb := &recordingKeyboard{}
	sink := NewWaylandSink(kb)

	plan := &model.Plan{
		Config: model.PlanConfig{KeymapFormat: 1, Keymap: "x"},
		Actions: []model.Action{
			model.Modifiers(1, 0, 0, 0),
			model.Modifiers(0, 0, 0, 0),
		},
	}

	if err := sink.Apply(context.Background(), plan); err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if len(kb.mods) != 2 {
		t.Fatalf("expected 2 modifiers events, got %d", len(kb.mods))
	}
	if kb.mods[0].ModsDepressed != 1 {
		t.Errorf("expected first modifiers event depressed=1, got %d", kb.mods[0].ModsDepressed)
	}
}

func TestWaylandSinkRejectsNilKeyboard(t *testing.T) {
	sink := NewWaylandSink(nil)
	plan := &model.Plan{Config: model.PlanConfig{Keymap: "x"}}
	if err := sink.Apply(context.Background(), plan); err == nil {
		t.Fatal("expected an error when no virtual keyboard is configured")
	}
}
