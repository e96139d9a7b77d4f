package playback

import (
	"context"
	"fmt"
	"os"
	"time"

	"typeplan/internal/model"
)

// VirtualKeyboard is the subset of the zwp_virtual_keyboard_v1 protocol
// WaylandSink needs: upload a keymap once, then stream Key/Modifiers
// updates. Grounded on bnema/libwldevices-go's VirtualKeyboard interface;
// a concrete client binding to an actual Wayland compositor connection is
// out of scope for this module (no such binding is among this module's
// dependencies), so callers supply their own implementation satisfying
// this port.
type VirtualKeyboard interface {
	Keymap(format uint32, fd *os.File, size uint32) error
	Key(time uint32, key uint32, state uint32) error
	Modifiers(modsDepressed, modsLatched, modsLocked, group uint32) error
}

// WaylandSink replays a Plan's actions onto a VirtualKeyboard, uploading the
// plan's keymap once up front and translating each action's relative Wait
// into a real sleep before the next Key/Modifiers call.
type WaylandSink struct {
	Keyboard VirtualKeyboard
}

// NewWaylandSink constructs a sink that drives kb.
func NewWaylandSink(kb VirtualKeyboard) *WaylandSink {
	return &WaylandSink{Keyboard: kb}
}

// Apply uploads plan.Config's keymap, then replays every action in order.
func (s *WaylandSink) Apply(ctx context.Context, plan *model.Plan) error {
	if s.Keyboard == nil {
		return fmt.Errorf("playback: wayland sink has no virtual keyboard configured")
	}

	if err := s.uploadKeymap(plan); err != nil {
		return err
	}

	var elapsedMs uint32
	for _, a := range plan.Actions {
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
			elapsedMs += uint32(a.Ms)

		case model.ActionModifiers:
			if err := s.Keyboard.Modifiers(a.ModsDepressed, a.ModsLatched, a.ModsLocked, a.Group); err != nil {
				return fmt.Errorf("playback: sending modifiers: %w", err)
			}

		case model.ActionKey:
			if err := s.Keyboard.Key(elapsedMs, a.Keycode, uint32(a.State)); err != nil {
				return fmt.Errorf("playback: sending key %d: %w", a.Keycode, err)
			}
		}
	}

	return nil
}

func (s *WaylandSink) uploadKeymap(plan *model.Plan) error {
	tmp, err := os.CreateTemp("", "typeplan-keymap-*.xkb")
	if err != nil {
		return fmt.Errorf("playback: creating keymap tempfile: %w", err)
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	if _, err := tmp.WriteString(plan.Config.Keymap); err != nil {
		return fmt.Errorf("playback: writing keymap tempfile: %w", err)
	}
	size := uint32(len(plan.Config.Keymap))

	if _, err := tmp.Seek(0, 0); err != nil {
		return fmt.Errorf("playback: rewinding keymap tempfile: %w", err)
	}

	if err := s.Keyboard.Keymap(plan.Config.KeymapFormat, tmp, size); err != nil {
		return fmt.Errorf("playback: uploading keymap: %w", err)
	}
	return nil
}
