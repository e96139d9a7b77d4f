package trace

import (
	"fmt"

	"typeplan/internal/keymap"
	"typeplan/internal/model"
)

type correctionState struct {
	deletedBackspace []rune
	deletedDelete    []rune
	inserted         []rune
	startedAtEnd     bool
}

func (c *correctionState) deletedString() string {
	out := make([]rune, 0, len(c.deletedBackspace)+len(c.deletedDelete))
	for i := len(c.deletedBackspace) - 1; i >= 0; i-- {
		out = append(out, c.deletedBackspace[i])
	}
	out = append(out, c.deletedDelete...)
	return string(out)
}

func (c *correctionState) hasReplace() bool {
	return (len(c.deletedBackspace) > 0 || len(c.deletedDelete) > 0) && len(c.inserted) > 0
}

// PlaybackTracer consumes a plan's Key actions one at a time, as a playback
// sink would replay them, and accumulates human-readable lines describing
// runs of typing and replace-in-place corrections.
type PlaybackTracer struct {
	keystrokes map[keymap.Stroke]rune
	editor     editorState

	shiftDown bool
	ctrlDown  bool

	typingRun  []rune
	correction *correctionState

	pendingLines []string
}

// NewPlaybackTracer constructs an empty streaming tracer.
func NewPlaybackTracer() *PlaybackTracer {
	return &PlaybackTracer{keystrokes: keymap.BuildKeystrokeMap()}
}

// ObserveAction feeds one plan action to the tracer. Non-Key actions are
// ignored: waits and modifier updates carry no console-line information.
func (t *PlaybackTracer) ObserveAction(a model.Action) {
	if a.Kind != model.ActionKey {
		return
	}
	if a.State == model.KeyPressed {
		t.handleKeyPressed(a.Keycode)
	} else {
		t.handleKeyReleased(a.Keycode)
	}
}

// DrainLines returns and clears every line accumulated so far.
func (t *PlaybackTracer) DrainLines() []string {
	lines := t.pendingLines
	t.pendingLines = nil
	return lines
}

// Finish flushes any still-open correction and returns the final lines.
func (t *PlaybackTracer) Finish() []string {
	t.finishCorrection()
	return t.DrainLines()
}

func (t *PlaybackTracer) decodeChar(keycode uint32) (rune, bool) {
	c, ok := t.keystrokes[keymap.Stroke{Keycode: keycode, Shift: t.shiftDown}]
	return c, ok
}

func (t *PlaybackTracer) ensureCorrection() *correctionState {
	if t.correction == nil {
		t.correction = &correctionState{startedAtEnd: t.editor.atEnd()}
	}
	return t.correction
}

func (t *PlaybackTracer) finishCorrection() {
	if t.correction == nil {
		return
	}
	correction := t.correction
	t.correction = nil
	if !correction.hasReplace() {
		return
	}

	wrong := correction.deletedString()
	correct := string(correction.inserted)
	t.pendingLines = append(t.pendingLines, fmt.Sprintf("Replace \"%s\" with \"%s\"...", escapeForLog(wrong), escapeForLog(correct)))
}

func (t *PlaybackTracer) flushTypingRunOnEdit() {
	if len(t.typingRun) == 0 {
		return
	}
	t.pendingLines = append(t.pendingLines, fmt.Sprintf("Typing \"%s\"...", escapeForLog(string(t.typingRun))))
	t.typingRun = nil
}

func (t *PlaybackTracer) maybeFinishCorrectionBeforeKey(keycode uint32, decodedChar rune, hasDecodedChar bool) {
	correction := t.correction
	if correction == nil || !correction.hasReplace() {
		return
	}

	if isEditKey(keycode) {
		t.finishCorrection()
		return
	}

	if correction.startedAtEnd && hasDecodedChar && !isWordChar(decodedChar) {
		t.finishCorrection()
	}
}

func (t *PlaybackTracer) handleKeyPressed(keycode uint32) {
	if keycode == keymap.KeyLeftShift || keycode == keymap.KeyRightShift {
		t.shiftDown = true
		return
	}
	if keycode == keymap.KeyLeftCtrl {
		t.ctrlDown = true
		return
	}

	var decodedChar rune
	var hasDecodedChar bool
	if !t.ctrlDown {
		decodedChar, hasDecodedChar = t.decodeChar(keycode)
	}

	t.maybeFinishCorrectionBeforeKey(keycode, decodedChar, hasDecodedChar)

	if isEditKey(keycode) {
		t.flushTypingRunOnEdit()

		switch keycode {
		case keymap.KeyLeft:
			if t.ctrlDown {
				t.editor.moveWordLeft()
			} else {
				t.editor.moveLeft()
			}
		case keymap.KeyRight:
			if t.ctrlDown {
				t.editor.moveWordRight()
			} else {
				t.editor.moveRight()
			}
		case keymap.KeyHome:
			t.editor.home()
		case keymap.KeyEnd:
			t.editor.end()
		case keymap.KeyUp, keymap.KeyDown:
		case keymap.KeyBackspace:
			if c, ok := t.editor.backspace(); ok {
				cor := t.ensureCorrection()
				cor.deletedBackspace = append(cor.deletedBackspace, c)
			}
		case keymap.KeyDelete:
			if c, ok := t.editor.delete(); ok {
				cor := t.ensureCorrection()
				cor.deletedDelete = append(cor.deletedDelete, c)
			}
		}

		return
	}

	if !hasDecodedChar {
		return
	}

	t.editor.insertChar(decodedChar)

	if t.correction != nil {
		t.correction.inserted = append(t.correction.inserted, decodedChar)
		return
	}

	if t.editor.atEnd() {
		t.typingRun = append(t.typingRun, decodedChar)
	}
}

func (t *PlaybackTracer) handleKeyReleased(keycode uint32) {
	if keycode == keymap.KeyLeftShift || keycode == keymap.KeyRightShift {
		t.shiftDown = false
	}
	if keycode == keymap.KeyLeftCtrl {
		t.ctrlDown = false
	}
}
