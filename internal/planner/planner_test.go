package planner

import (
	"math/rand"
	"testing"

	"typeplan/internal/keymap"
	"typeplan/internal/model"
	"typeplan/internal/phrase"
	"typeplan/internal/wordnav"
)

func testProvider() keymap.Provider {
	return keymap.NewUSQWERTYProvider()
}

func TestGenerateRoundTripsThroughSimulate(t *testing.T) {
	cfg := DefaultConfig()
	rng := rand.New(rand.NewSource(1))

	text := "The quick brown fox jumps over the lazy dog.\n\nIt runs away."
	plan, err := Generate(text, cfg, testProvider(), rng)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := Simulate(plan)
	if err != nil {
		t.Fatalf("simulate error: %v", err)
	}
	if got != text {
		t.Errorf("simulated text mismatch:\n got:  %q\n want: %q", got, text)
	}
}

func TestGenerateIsDeterministicForAGivenSeed(t *testing.T) {
	cfg := DefaultConfig()
	text := "Determinism matters for reproducible plans."

	rng1 := rand.New(rand.NewSource(42))
	plan1, err := Generate(text, cfg, testProvider(), rng1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rng2 := rand.New(rand.NewSource(42))
	plan2, err := Generate(text, cfg, testProvider(), rng2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(plan1.Actions) != len(plan2.Actions) {
		t.Fatalf("expected matching action counts, got %d vs %d", len(plan1.Actions), len(plan2.Actions))
	}
	for i := range plan1.Actions {
		if plan1.Actions[i] != plan2.Actions[i] {
			t.Fatalf("action %d differs: %+v vs %+v", i, plan1.Actions[i], plan2.Actions[i])
		}
	}
}

func TestGenerateNoRevisionNeverCorrects(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NoRevision = true
	cfg.ErrorRatePerWord = 1.0
	rng := rand.New(rand.NewSource(9))

	text := "Straight through typing only."
	plan, err := Generate(text, cfg, testProvider(), rng)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := Simulate(plan)
	if err != nil {
		t.Fatalf("simulate error: %v", err)
	}
	if got != text {
		t.Errorf("no-revision plan must type the text verbatim, got %q", got)
	}
	for i, a := range plan.Actions {
		if a.Kind != model.ActionKey {
			continue
		}
		switch a.Keycode {
		case keymap.KeyBackspace, keymap.KeyLeft, keymap.KeyRight:
			t.Fatalf("no-revision plan has correction key %d at action %d", a.Keycode, i)
		}
	}
}

func TestGenerateRejectsUnsupportedCharacters(t *testing.T) {
	cfg := DefaultConfig()
	rng := rand.New(rand.NewSource(1))

	if _, err := Generate("hello\tworld", cfg, testProvider(), rng); err == nil {
		t.Fatal("expected error for tab character")
	}
}

func TestGenerateRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.WPMMin = 100
	cfg.WPMMax = 10
	rng := rand.New(rand.NewSource(1))

	if _, err := Generate("hello", cfg, testProvider(), rng); err == nil {
		t.Fatal("expected error for wpm_min > wpm_max")
	}
}

func TestGenerateWithPhraseAlternativesRevisesThenRestores(t *testing.T) {
	cfg := DefaultConfig()
	cfg.WordNavProfile = wordnav.Chrome
	rng := rand.New(rand.NewSource(123))

	text := "The quick brown fox jumps over the lazy dog."
	alts := [][]phrase.Alternative{
		{{Original: "quick brown fox", Alternative: "fast red fox"}},
	}

	plan, err := GenerateWithPhraseAlternatives(text, cfg, alts, testProvider(), rng)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := Simulate(plan)
	if err != nil {
		t.Fatalf("simulate error: %v", err)
	}
	if got != text {
		t.Errorf("final simulated text must match the target text, got %q", got)
	}
}

// TestGenerateWithHighErrorRateEmitsCorrectionKeys mirrors the original
// implementation's generates_plan_with_edits_and_review_pass scenario: a
// high error rate should force at least one left-arrow and one backspace
// into the action stream.
func TestGenerateWithHighErrorRateEmitsCorrectionKeys(t *testing.T) {
	cfg := DefaultConfig()
	cfg.WPMMin = 55
	cfg.WPMMax = 55
	cfg.ErrorRatePerWord = 0.45
	cfg.ImmediateFixRate = 0.0
	rng := rand.New(rand.NewSource(123))

	text := "Hello world.\n\nThis is a test paragraph with several words, and it should include a couple of errors.\nAnother sentence ends here.\n"
	plan, err := Generate(text, cfg, testProvider(), rng)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.Config.Layout != "us" {
		t.Errorf("expected layout %q, got %q", "us", plan.Config.Layout)
	}
	if len(plan.Actions) == 0 {
		t.Fatal("expected a non-empty action stream")
	}

	var sawLeft, sawBackspace bool
	for _, a := range plan.Actions {
		if a.Kind != model.ActionKey {
			continue
		}
		switch a.Keycode {
		case keymap.KeyLeft:
			sawLeft = true
		case keymap.KeyBackspace:
			sawBackspace = true
		}
	}
	if !sawLeft {
		t.Error("expected at least one cursor move left for corrections")
	}
	if !sawBackspace {
		t.Error("expected at least one backspace for corrections")
	}

	if _, err := Simulate(plan); err != nil {
		t.Fatalf("simulate error: %v", err)
	}
}

// TestGenerateEmitsApostropheKeyForSmartQuote mirrors the original
// implementation's supports_smart_apostrophe_in_final_draft scenario.
func TestGenerateEmitsApostropheKeyForSmartQuote(t *testing.T) {
	cfg := DefaultConfig()
	cfg.WPMMin = 55
	cfg.WPMMax = 55
	cfg.ErrorRatePerWord = 0.0
	cfg.ImmediateFixRate = 0.0
	rng := rand.New(rand.NewSource(42))

	text := "The casino’s catalogue is updated.\n"
	plan, err := Generate(text, cfg, testProvider(), rng)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var sawApostrophe bool
	for _, a := range plan.Actions {
		if a.Kind == model.ActionKey && a.Keycode == keymap.KeyApostrophe {
			sawApostrophe = true
			break
		}
	}
	if !sawApostrophe {
		t.Error("expected an apostrophe key event for smart apostrophe output")
	}
}

// TestGenerateWithPhraseAlternativesEmitsRevisionEditKeys mirrors the
// original implementation's generates_plan_with_llm_phrase_alternative_edits
// scenario: the planner must type the alternative phrase first, then revise
// it back to the final text via cursor-left/backspace corrections.
func TestGenerateWithPhraseAlternativesEmitsRevisionEditKeys(t *testing.T) {
	cfg := DefaultConfig()
	cfg.WPMMin = 55
	cfg.WPMMax = 55
	cfg.ErrorRatePerWord = 0.0
	cfg.ImmediateFixRate = 0.0
	rng := rand.New(rand.NewSource(7))

	text := "HelloWorld"
	alts := [][]phrase.Alternative{
		{{Original: "Hello", Alternative: "zzz"}},
	}

	plan, err := GenerateWithPhraseAlternatives(text, cfg, alts, testProvider(), rng)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := Simulate(plan)
	if err != nil {
		t.Fatalf("simulate error: %v", err)
	}
	if got != text {
		t.Errorf("final simulated text must match the target text, got %q", got)
	}

	var sawZ, sawLeft, sawBackspace bool
	for _, a := range plan.Actions {
		if a.Kind != model.ActionKey {
			continue
		}
		switch a.Keycode {
		case keymap.KeyZ:
			sawZ = true
		case keymap.KeyLeft:
			sawLeft = true
		case keymap.KeyBackspace:
			sawBackspace = true
		}
	}
	if !sawZ {
		t.Error("expected typing to include the alternative phrase")
	}
	if !sawLeft {
		t.Error("expected at least one cursor move left for corrections")
	}
	if !sawBackspace {
		t.Error("expected at least one backspace for corrections")
	}
}

// TestGenerateWithZeroErrorRateSkipsReviewAndCorrections mirrors the original
// implementation's generates_plan_with_no_revision_for_zero_error_rate
// scenario: an error rate of zero means no errors are ever injected, so
// Generate must route to the no-revision path and emit neither the review
// pause nor any cursor-move/backspace correction keys, even when the review
// pause window is configured wide enough to be unmistakable if emitted.
func TestGenerateWithZeroErrorRateSkipsReviewAndCorrections(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ErrorRatePerWord = 0
	cfg.ReviewPauseMsMin = 99999
	cfg.ReviewPauseMsMax = 99999
	rng := rand.New(rand.NewSource(11))

	text := "Hello world. This should type cleanly.\n"
	plan, err := Generate(text, cfg, testProvider(), rng)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := Simulate(plan)
	if err != nil {
		t.Fatalf("simulate error: %v", err)
	}
	if got != text {
		t.Errorf("simulated text mismatch:\n got:  %q\n want: %q", got, text)
	}

	for _, a := range plan.Actions {
		if a.Kind == model.ActionWait && a.Ms == 99999 {
			t.Error("expected no review-pause wait when error rate is zero")
		}
		if a.Kind == model.ActionKey {
			switch a.Keycode {
			case keymap.KeyLeft, keymap.KeyRight, keymap.KeyBackspace:
				t.Errorf("expected no correction key events, saw keycode %d", a.Keycode)
			}
		}
	}
}

func keyPressesForText(t *testing.T, text string) []model.Action {
	t.Helper()
	var out []model.Action
	for _, c := range text {
		stroke, ok := keymap.KeystrokeForOutputChar(c)
		if !ok {
			t.Fatalf("test text must be typable, got unsupported char %q", c)
		}
		out = append(out, model.Key(stroke.Keycode, model.KeyPressed))
	}
	return out
}

func dummyPlan(actions []model.Action) *model.Plan {
	return &model.Plan{
		Version: 1,
		Config:  model.PlanConfig{Layout: "us", KeymapFormat: 1},
		Actions: actions,
	}
}

// TestSimulateSupportsCtrlLeftWordNav mirrors the original implementation's
// simulate_supports_ctrl_left_word_nav scenario: Ctrl+Left should jump the
// cursor to the start of the previous word, so a following backspace
// deletes the space rather than a letter.
func TestSimulateSupportsCtrlLeftWordNav(t *testing.T) {
	actions := keyPressesForText(t, "hello world")
	actions = append(actions,
		model.Key(keymap.KeyLeftCtrl, model.KeyPressed),
		model.Key(keymap.KeyLeft, model.KeyPressed),
		model.Key(keymap.KeyLeftCtrl, model.KeyReleased),
		model.Key(keymap.KeyBackspace, model.KeyPressed),
	)

	out, err := Simulate(dummyPlan(actions))
	if err != nil {
		t.Fatalf("simulate error: %v", err)
	}
	if out != "helloworld" {
		t.Errorf("expected %q, got %q", "helloworld", out)
	}
}

// TestSimulateSupportsCtrlRightWordNav mirrors the original implementation's
// simulate_supports_ctrl_right_word_nav scenario.
func TestSimulateSupportsCtrlRightWordNav(t *testing.T) {
	actions := keyPressesForText(t, "hello world")
	actions = append(actions,
		model.Key(keymap.KeyLeftCtrl, model.KeyPressed),
		model.Key(keymap.KeyLeft, model.KeyPressed),
		model.Key(keymap.KeyRight, model.KeyPressed),
		model.Key(keymap.KeyLeftCtrl, model.KeyReleased),
		model.Key(keymap.KeyBackspace, model.KeyPressed),
	)

	out, err := Simulate(dummyPlan(actions))
	if err != nil {
		t.Fatalf("simulate error: %v", err)
	}
	if out != "hello worl" {
		t.Errorf("expected %q, got %q", "hello worl", out)
	}
}

func TestComputeStatsCountsActionKinds(t *testing.T) {
	cfg := DefaultConfig()
	rng := rand.New(rand.NewSource(5))
	plan, err := Generate("hi there", cfg, testProvider(), rng)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stats := ComputeStats(plan)
	if stats.Actions != len(plan.Actions) {
		t.Errorf("expected Actions = %d, got %d", len(plan.Actions), stats.Actions)
	}
	if stats.KeyEvents == 0 {
		t.Error("expected at least one key event")
	}
	if stats.ModifierUpdates == 0 {
		t.Error("expected at least one modifier update")
	}
}
