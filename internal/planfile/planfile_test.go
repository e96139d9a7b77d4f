package planfile

import (
	"encoding/json"
	"math/rand"
	"testing"

	"typeplan/internal/keymap"
	"typeplan/internal/planner"
)

func TestMarshalProducesSnakeCaseTypeDiscriminators(t *testing.T) {
	cfg := planner.DefaultConfig()
	rng := rand.New(rand.NewSource(1))
	plan, err := planner.Generate("hi there", cfg, keymap.NewUSQWERTYProvider(), rng)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := Marshal(plan)
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	for _, key := range []string{"version", "config", "actions"} {
		if _, ok := doc[key]; !ok {
			t.Errorf("expected top-level key %q", key)
		}
	}

	actions, ok := doc["actions"].([]any)
	if !ok || len(actions) == 0 {
		t.Fatalf("expected a non-empty actions array, got %v", doc["actions"])
	}
	for i, a := range actions {
		m, ok := a.(map[string]any)
		if !ok {
			t.Fatalf("action %d is not an object", i)
		}
		typ, ok := m["type"].(string)
		if !ok {
			t.Fatalf("action %d has no string type discriminator", i)
		}
		switch typ {
		case "wait", "modifiers", "key":
		default:
			t.Errorf("action %d has unexpected type %q", i, typ)
		}
	}
}

func TestUnmarshalRoundTripsThroughMarshal(t *testing.T) {
	cfg := planner.DefaultConfig()
	rng := rand.New(rand.NewSource(2))
	text := "Round-trip this plan.\n\nAcross two paragraphs."
	plan, err := planner.Generate(text, cfg, keymap.NewUSQWERTYProvider(), rng)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := Marshal(plan)
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}

	got, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal returned error: %v", err)
	}

	if got.Version != plan.Version {
		t.Errorf("version mismatch: got %d, want %d", got.Version, plan.Version)
	}
	if got.Config != plan.Config {
		t.Errorf("config mismatch: got %+v, want %+v", got.Config, plan.Config)
	}
	if len(got.Actions) != len(plan.Actions) {
		t.Fatalf("action count mismatch: got %d, want %d", len(got.Actions), len(plan.Actions))
	}
	for i := range plan.Actions {
		if got.Actions[i] != plan.Actions[i] {
			t.Errorf("action %d differs: got %+v, want %+v", i, got.Actions[i], plan.Actions[i])
		}
	}

	simulated, err := planner.Simulate(got)
	if err != nil {
		t.Fatalf("simulate error: %v", err)
	}
	if simulated != text {
		t.Errorf("round-tripped plan does not simulate back to the source text, got %q", simulated)
	}
}

func TestUnmarshalRejectsUnknownActionType(t *testing.T) {
	_, err := Unmarshal([]byte(`{"version":1,"config":{"layout":"us","keymap_format":1,"keymap":"","wpm_target":50},"actions":[{"type":"scroll"}]}`))
	if err == nil {
		t.Fatal("expected an error for an unknown action type")
	}
}

func TestUnmarshalRejectsUnknownKeyState(t *testing.T) {
	_, err := Unmarshal([]byte(`{"version":1,"config":{"layout":"us","keymap_format":1,"keymap":"","wpm_target":50},"actions":[{"type":"key","keycode":30,"state":"held"}]}`))
	if err == nil {
		t.Fatal("expected an error for an unknown key state")
	}
}
