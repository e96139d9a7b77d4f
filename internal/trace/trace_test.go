package trace

import (
	"math/rand"
	"strings"
	"testing"

	"typeplan/internal/actions"
	"typeplan/internal/keymap"
	"typeplan/internal/model"
)

func typedActionsSimple(t *testing.T, s string) []model.Action {
	t.Helper()
	rng := rand.New(rand.NewSource(1))
	b := actions.NewBuilder(1, 4)
	for _, c := range s {
		stroke, ok := keymap.KeystrokeForOutputChar(c)
		if !ok {
			t.Fatalf("unsupported char %q", c)
		}
		b.TypeChar(stroke, rng)
	}
	return b.Actions()
}

// TestPlaybackTracerEmitsTypingLineAtEndOfRun: the typing run ends, and its
// line is emitted, when an edit key (here a cursor-left press) follows it.
func TestPlaybackTracerEmitsTypingLineAtEndOfRun(t *testing.T) {
	tracer := NewPlaybackTracer()
	acts := append(typedActionsSimple(t, "hi"), model.Key(keymap.KeyLeft, model.KeyPressed))
	for _, a := range acts {
		tracer.ObserveAction(a)
	}
	lines := tracer.Finish()
	if len(lines) != 1 || !strings.Contains(lines[0], `Typing "hi"`) {
		t.Fatalf("expected one Typing line, got %v", lines)
	}
}

// TestPlanConsoleTraceAnchorsLineAtRunStartIndex mirrors the original
// implementation's logs_typing_run_before_it_starts scenario: a typing run
// only becomes a console event once it is followed by an edit key (here, a
// trailing cursor-left press), anchored at the index the run itself began.
func TestPlanConsoleTraceAnchorsLineAtRunStartIndex(t *testing.T) {
	acts := typedActionsSimple(t, "a\nb")
	acts = append(acts, model.Key(keymap.KeyLeft, model.KeyPressed))

	events := PlanConsoleTrace(acts)
	if len(events) != 1 {
		t.Fatalf("expected one event, got %d", len(events))
	}
	if events[0].ActionIndex != 0 {
		t.Errorf("expected event anchored at action 0, got %d", events[0].ActionIndex)
	}
	if !strings.Contains(events[0].Line, `Typing "a\nb"`) {
		t.Errorf("expected Typing line, got %q", events[0].Line)
	}
}

// TestPlanConsoleTraceOmitsTypingRunAtEndOfPlan mirrors the original
// implementation's does_not_log_typing_run_at_end_of_plan scenario: a typing
// run that runs all the way to the end of the plan, with no trailing edit
// key, never gets flushed into a console event.
func TestPlanConsoleTraceOmitsTypingRunAtEndOfPlan(t *testing.T) {
	acts := typedActionsSimple(t, "abc")
	events := PlanConsoleTrace(acts)
	if len(events) != 0 {
		t.Fatalf("expected no events, got %v", events)
	}
}

func TestPlaybackTracerEmitsReplaceLineForBackspaceThenRetype(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	b := actions.NewBuilder(1, 4)
	for _, c := range "helo" {
		stroke, _ := keymap.KeystrokeForOutputChar(c)
		b.TypeChar(stroke, rng)
	}
	b.Backspace(rng)
	b.Backspace(rng)
	for _, c := range "lo" {
		stroke, _ := keymap.KeystrokeForOutputChar(c)
		b.TypeChar(stroke, rng)
	}

	tracer := NewPlaybackTracer()
	for _, a := range b.Actions() {
		tracer.ObserveAction(a)
	}
	lines := tracer.Finish()

	foundReplace := false
	for _, l := range lines {
		if strings.HasPrefix(l, "Replace ") {
			foundReplace = true
		}
	}
	if !foundReplace {
		t.Fatalf("expected a Replace line, got %v", lines)
	}
}

func TestEscapeForLogEscapesSpecialCharacters(t *testing.T) {
	got := escapeForLog("a\"b\\c\nd\te")
	want := `a\"b\\c\nd\te`
	if got != want {
		t.Errorf("escapeForLog = %q, want %q", got, want)
	}
}
