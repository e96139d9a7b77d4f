package trace

import (
	"fmt"
	"sort"

	"typeplan/internal/keymap"
	"typeplan/internal/model"
)

// Event is one precomputed console line, anchored to the plan action index
// its described typing/correction sequence starts at, so a console UI can
// print it just before playback reaches that action.
type Event struct {
	ActionIndex int
	Line        string
}

type scheduledCorrection struct {
	startActionIndex int
	deletedBackspace []rune
	deletedDelete    []rune
	inserted         []rune
	leftEnd          bool
}

func (c *scheduledCorrection) deletedString() string {
	out := make([]rune, 0, len(c.deletedBackspace)+len(c.deletedDelete))
	for i := len(c.deletedBackspace) - 1; i >= 0; i-- {
		out = append(out, c.deletedBackspace[i])
	}
	out = append(out, c.deletedDelete...)
	return string(out)
}

func (c *scheduledCorrection) hasReplace() bool {
	return (len(c.deletedBackspace) > 0 || len(c.deletedDelete) > 0) && len(c.inserted) > 0
}

type tracePlanner struct {
	keystrokes map[keymap.Stroke]rune
	editor     editorState

	shiftDown bool
	ctrlDown  bool

	typingRunStartAction int
	hasTypingRunStart    bool
	typingRun            []rune

	correction *scheduledCorrection
	events     []Event
}

func newTracePlanner() *tracePlanner {
	return &tracePlanner{keystrokes: keymap.BuildKeystrokeMap()}
}

// PlanConsoleTrace precomputes every console line a full plan replay would
// produce, each anchored to the action index its sequence starts at, sorted
// into the order those indices occur in the action stream.
//
// Grounded on the original implementation's plan_console_trace/TracePlanner
// (trace.rs), which exists so a console UI can print "Typing ..." before
// the typing it describes actually starts, rather than after the fact as
// PlaybackTracer does.
func PlanConsoleTrace(actions []model.Action) []Event {
	p := newTracePlanner()
	for i, a := range actions {
		p.observeAction(i, a)
	}
	p.finish()

	sort.SliceStable(p.events, func(i, j int) bool { return p.events[i].ActionIndex < p.events[j].ActionIndex })
	return p.events
}

func (p *tracePlanner) observeAction(actionIndex int, a model.Action) {
	if a.Kind != model.ActionKey {
		return
	}
	if a.State == model.KeyPressed {
		p.handleKeyPressed(actionIndex, a.Keycode)
	} else {
		p.handleKeyReleased(a.Keycode)
	}
}

func (p *tracePlanner) finish() {
	p.finishCorrection()
}

func (p *tracePlanner) decodeChar(keycode uint32) (rune, bool) {
	c, ok := p.keystrokes[keymap.Stroke{Keycode: keycode, Shift: p.shiftDown}]
	return c, ok
}

func (p *tracePlanner) finishCorrection() {
	if p.correction == nil {
		return
	}
	correction := p.correction
	p.correction = nil
	if !correction.hasReplace() {
		return
	}

	wrong := correction.deletedString()
	correct := string(correction.inserted)
	p.events = append(p.events, Event{
		ActionIndex: correction.startActionIndex,
		Line:        fmt.Sprintf("Replace \"%s\" with \"%s\"...", escapeForLog(wrong), escapeForLog(correct)),
	})
}

func (p *tracePlanner) maybeFinishCorrectionBeforeKey(keycode uint32, decodedChar rune, hasDecodedChar bool) {
	correction := p.correction
	if correction == nil {
		return
	}

	atEnd := p.editor.atEnd()

	var shouldFinish bool
	switch {
	case correction.leftEnd:
		shouldFinish = atEnd && (isEditKey(keycode) || hasDecodedChar)
	case correction.hasReplace():
		if isEditKey(keycode) {
			shouldFinish = true
		} else if hasDecodedChar {
			shouldFinish = !isWordChar(decodedChar)
		}
	}

	if shouldFinish {
		p.finishCorrection()
	}
}

func (p *tracePlanner) flushTypingRunOnEdit() {
	if !p.hasTypingRunStart {
		p.typingRun = nil
		return
	}
	if len(p.typingRun) == 0 {
		p.hasTypingRunStart = false
		return
	}

	p.events = append(p.events, Event{
		ActionIndex: p.typingRunStartAction,
		Line:        fmt.Sprintf("Typing \"%s\"...", escapeForLog(string(p.typingRun))),
	})
	p.typingRun = nil
	p.hasTypingRunStart = false
}

func (p *tracePlanner) handleKeyPressed(actionIndex int, keycode uint32) {
	if keycode == keymap.KeyLeftShift || keycode == keymap.KeyRightShift {
		p.shiftDown = true
		return
	}
	if keycode == keymap.KeyLeftCtrl {
		p.ctrlDown = true
		return
	}

	var decodedChar rune
	var hasDecodedChar bool
	if !p.ctrlDown {
		decodedChar, hasDecodedChar = p.decodeChar(keycode)
	}

	p.maybeFinishCorrectionBeforeKey(keycode, decodedChar, hasDecodedChar)

	if isEditKey(keycode) {
		p.flushTypingRunOnEdit()

		if p.correction == nil {
			p.correction = &scheduledCorrection{
				startActionIndex: actionIndex,
				leftEnd:          !p.editor.atEnd(),
			}
		}

		switch keycode {
		case keymap.KeyLeft:
			if p.ctrlDown {
				p.editor.moveWordLeft()
			} else {
				p.editor.moveLeft()
			}
		case keymap.KeyRight:
			if p.ctrlDown {
				p.editor.moveWordRight()
			} else {
				p.editor.moveRight()
			}
		case keymap.KeyHome:
			p.editor.home()
		case keymap.KeyEnd:
			p.editor.end()
		case keymap.KeyUp, keymap.KeyDown:
		case keymap.KeyBackspace:
			if c, ok := p.editor.backspace(); ok && p.correction != nil {
				p.correction.deletedBackspace = append(p.correction.deletedBackspace, c)
			}
		case keymap.KeyDelete:
			if c, ok := p.editor.delete(); ok && p.correction != nil {
				p.correction.deletedDelete = append(p.correction.deletedDelete, c)
			}
		}

		if p.correction != nil {
			p.correction.leftEnd = p.correction.leftEnd || !p.editor.atEnd()
		}

		return
	}

	if !hasDecodedChar {
		return
	}

	p.editor.insertChar(decodedChar)

	if p.correction != nil {
		p.correction.inserted = append(p.correction.inserted, decodedChar)
		p.correction.leftEnd = p.correction.leftEnd || !p.editor.atEnd()
		return
	}

	if p.editor.atEnd() {
		if len(p.typingRun) == 0 {
			p.typingRunStartAction = actionIndex
			p.hasTypingRunStart = true
		}
		p.typingRun = append(p.typingRun, decodedChar)
	}
}

func (p *tracePlanner) handleKeyReleased(keycode uint32) {
	if keycode == keymap.KeyLeftShift || keycode == keymap.KeyRightShift {
		p.shiftDown = false
	}
	if keycode == keymap.KeyLeftCtrl {
		p.ctrlDown = false
	}
}
