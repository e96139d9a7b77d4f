package playback

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"

	"typeplan/internal/keymap"
	"typeplan/internal/model"
)

var browserEditKeys = map[uint32]input.Key{
	keymap.KeyLeft:      input.ArrowLeft,
	keymap.KeyRight:     input.ArrowRight,
	keymap.KeyHome:      input.Home,
	keymap.KeyEnd:       input.End,
	keymap.KeyBackspace: input.Backspace,
	keymap.KeyDelete:    input.Delete,
}

// BrowserSink replays a Plan's actions into a live rod.Page by decoding the
// same Key action stream the Wayland sink consumes, but expressing it
// through go-rod's element input calls instead of a wire protocol.
//
// Grounded on the teacher's internal/browser.Instance.HumanType, which types
// decoded characters with Element.MustInput and drives Backspace the same
// way; navigation keys (arrows/home/end/delete, optionally held with Ctrl
// for word jumps) are dispatched with Element.Type(input.Key), the same
// call the pack's typing controller uses for input.Backspace.
type BrowserSink struct {
	Page     *rod.Page
	Selector string

	keystrokes map[keymap.Stroke]rune
}

// NewBrowserSink builds a sink that types into the element matching selector
// on page.
func NewBrowserSink(page *rod.Page, selector string) *BrowserSink {
	return &BrowserSink{
		Page:       page,
		Selector:   selector,
		keystrokes: keymap.BuildKeystrokeMap(),
	}
}

// Apply focuses the target element, then replays plan's actions onto it:
// printable characters go through Element.Input, edit keys go through
// Element.Type (optionally composed with a held Ctrl for word jumps), and
// Wait actions become real sleeps so typing speed matches the plan.
func (s *BrowserSink) Apply(ctx context.Context, plan *model.Plan) error {
	if s.Page == nil {
		return fmt.Errorf("playback: browser sink has no page configured")
	}

	elem, err := s.Page.Context(ctx).Timeout(10 * time.Second).Element(s.Selector)
	if err != nil {
		return fmt.Errorf("playback: element not found: %s: %w", s.Selector, err)
	}
	if err := elem.Focus(); err != nil {
		return fmt.Errorf("playback: focusing element: %w", err)
	}

	var shiftDown, ctrlDown bool

	for _, a := range plan.Actions {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		switch a.Kind {
		case model.ActionWait:
			if a.Ms == 0 {
				continue
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(a.Ms) * time.Millisecond):
			}

		case model.ActionModifiers:
			// Modifier bitmask actions exist for wire-protocol sinks; the
			// browser sink derives shift/ctrl state from the Key actions
			// themselves instead, since rod's element input already
			// applies casing when a decoded character is passed to Input.

		case model.ActionKey:
			if err := s.applyKey(elem, a, &shiftDown, &ctrlDown); err != nil {
				return err
			}
		}
	}

	return nil
}

func (s *BrowserSink) applyKey(elem *rod.Element, a model.Action, shiftDown, ctrlDown *bool) error {
	switch a.Keycode {
	case keymap.KeyLeftShift, keymap.KeyRightShift:
		*shiftDown = a.State == model.KeyPressed
		return nil
	case keymap.KeyLeftCtrl:
		*ctrlDown = a.State == model.KeyPressed
		return nil
	}

	if a.State != model.KeyPressed {
		return nil
	}

	if rk, ok := browserEditKeys[a.Keycode]; ok {
		keys := make([]input.Key, 0, 2)
		if *ctrlDown {
			keys = append(keys, input.ControlLeft)
		}
		keys = append(keys, rk)
		if err := elem.Type(keys...); err != nil {
			return fmt.Errorf("playback: typing edit key %d: %w", a.Keycode, err)
		}
		return nil
	}

	if *ctrlDown {
		return nil
	}

	c, ok := s.keystrokes[keymap.Stroke{Keycode: a.Keycode, Shift: *shiftDown}]
	if !ok {
		return nil
	}
	if err := elem.Input(string(c)); err != nil {
		return fmt.Errorf("playback: typing character %q: %w", c, err)
	}
	return nil
}
