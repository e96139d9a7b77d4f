// Package planfile implements the plan file wire format: the JSON
// document a generated model.Plan serializes to and deserializes from,
// so a plan can be written once and replayed later without regenerating it.
//
// Grounded on the original implementation's serde-derived Plan/Action
// (model.rs, `#[serde(tag = "type", rename_all = "snake_case")]`) and the
// `plan`/`play` subcommands (main.rs) that write and read it; Go has no
// serde equivalent, so Marshal/Unmarshal hand-roll the same tagged-variant
// encoding encoding/json's struct tags alone can't express.
package planfile

import (
	"encoding/json"
	"fmt"

	"typeplan/internal/model"
)

type configWire struct {
	Layout       string  `json:"layout"`
	KeymapFormat uint32  `json:"keymap_format"`
	Keymap       string  `json:"keymap"`
	WPMTarget    float64 `json:"wpm_target"`
}

type planWire struct {
	Version uint32            `json:"version"`
	Config  configWire        `json:"config"`
	Actions []json.RawMessage `json:"actions"`
}

type waitWire struct {
	Type string `json:"type"`
	Ms   uint64 `json:"ms"`
}

type modifiersWire struct {
	Type          string `json:"type"`
	ModsDepressed uint32 `json:"mods_depressed"`
	ModsLatched   uint32 `json:"mods_latched"`
	ModsLocked    uint32 `json:"mods_locked"`
	Group         uint32 `json:"group"`
}

type keyWire struct {
	Type    string `json:"type"`
	Keycode uint32 `json:"keycode"`
	State   string `json:"state"`
}

type typeTag struct {
	Type string `json:"type"`
}

// Marshal renders plan as the §6 plan-file JSON document: a `version`/
// `config`/`actions` object whose actions each carry a lowercase-snake
// `type` discriminator (`wait`, `modifiers`, or `key`).
func Marshal(plan *model.Plan) ([]byte, error) {
	wire := planWire{
		Version: plan.Version,
		Config: configWire{
			Layout:       plan.Config.Layout,
			KeymapFormat: plan.Config.KeymapFormat,
			Keymap:       plan.Config.Keymap,
			WPMTarget:    plan.Config.WPMTarget,
		},
		Actions: make([]json.RawMessage, len(plan.Actions)),
	}

	for i, a := range plan.Actions {
		raw, err := marshalAction(a)
		if err != nil {
			return nil, fmt.Errorf("marshaling action %d: %w", i, err)
		}
		wire.Actions[i] = raw
	}

	return json.MarshalIndent(wire, "", "  ")
}

func marshalAction(a model.Action) (json.RawMessage, error) {
	switch a.Kind {
	case model.ActionWait:
		return json.Marshal(waitWire{Type: "wait", Ms: a.Ms})
	case model.ActionModifiers:
		return json.Marshal(modifiersWire{
			Type:          "modifiers",
			ModsDepressed: a.ModsDepressed,
			ModsLatched:   a.ModsLatched,
			ModsLocked:    a.ModsLocked,
			Group:         a.Group,
		})
	case model.ActionKey:
		return json.Marshal(keyWire{Type: "key", Keycode: a.Keycode, State: a.State.String()})
	default:
		return nil, fmt.Errorf("unknown action kind %d", a.Kind)
	}
}

// Unmarshal parses a §6 plan-file JSON document back into a model.Plan.
func Unmarshal(data []byte) (*model.Plan, error) {
	var wire planWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("parsing plan JSON: %w", err)
	}

	plan := &model.Plan{
		Version: wire.Version,
		Config: model.PlanConfig{
			Layout:       wire.Config.Layout,
			KeymapFormat: wire.Config.KeymapFormat,
			Keymap:       wire.Config.Keymap,
			WPMTarget:    wire.Config.WPMTarget,
		},
		Actions: make([]model.Action, len(wire.Actions)),
	}

	for i, raw := range wire.Actions {
		action, err := unmarshalAction(raw)
		if err != nil {
			return nil, fmt.Errorf("parsing action %d: %w", i, err)
		}
		plan.Actions[i] = action
	}

	return plan, nil
}

func unmarshalAction(raw json.RawMessage) (model.Action, error) {
	var tag typeTag
	if err := json.Unmarshal(raw, &tag); err != nil {
		return model.Action{}, fmt.Errorf("reading type discriminator: %w", err)
	}

	switch tag.Type {
	case "wait":
		var w waitWire
		if err := json.Unmarshal(raw, &w); err != nil {
			return model.Action{}, err
		}
		return model.Wait(w.Ms), nil
	case "modifiers":
		var m modifiersWire
		if err := json.Unmarshal(raw, &m); err != nil {
			return model.Action{}, err
		}
		return model.Modifiers(m.ModsDepressed, m.ModsLatched, m.ModsLocked, m.Group), nil
	case "key":
		var k keyWire
		if err := json.Unmarshal(raw, &k); err != nil {
			return model.Action{}, err
		}
		state, err := parseKeyState(k.State)
		if err != nil {
			return model.Action{}, err
		}
		return model.Key(k.Keycode, state), nil
	default:
		return model.Action{}, fmt.Errorf("unknown action type %q", tag.Type)
	}
}

func parseKeyState(s string) (model.KeyState, error) {
	switch s {
	case "pressed":
		return model.KeyPressed, nil
	case "released":
		return model.KeyReleased, nil
	default:
		return 0, fmt.Errorf("unknown key state %q", s)
	}
}
