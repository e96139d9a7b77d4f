package planner

import (
	"fmt"
	"math/rand"

	"typeplan/internal/actions"
	"typeplan/internal/editor"
	"typeplan/internal/keymap"
	"typeplan/internal/wordnav"
)

func typeString(b *actions.Builder, ed *editor.State, s string, wpm float64, rng *rand.Rand) error {
	for _, c := range s {
		stroke, ok := keymap.KeystrokeForOutputChar(c)
		if !ok {
			return fmt.Errorf("planner: unsupported character for US-QWERTY typing: %q (U+%04X)", c, c)
		}
		b.TypeChar(stroke, rng)
		ed.InsertChar(c)

		delay := interCharDelayMs(wpm, rng)
		delay += punctuationPauseMs(c, rng)
		delay += maybeThinkPauseMs(c, rng)
		b.Wait(delay)
	}
	return nil
}

func replaceAtEnd(b *actions.Builder, ed *editor.State, wrong, correct string, wpm float64, rng *rand.Rand) error {
	b.Wait(uint64(60 + rng.Intn(201)))

	wrongLen := len([]rune(wrong))
	for i := 0; i < wrongLen; i++ {
		b.Backspace(rng)
		ed.Backspace()
		b.Wait(uint64(15 + rng.Intn(41)))
	}

	return typeString(b, ed, correct, wpm, rng)
}

func navigateLeftTo(b *actions.Builder, ed *editor.State, target int, profile wordnav.Profile, rng *rand.Rand) {
	if target > ed.Len() {
		target = ed.Len()
	}

	for ed.Cursor() > target {
		buf := ed.Buf()
		cursor := ed.Cursor()
		ctrlTarget := wordnav.CtrlLeft(buf, cursor, wordnav.IsWordChar)
		ctrlDelta := cursor - ctrlTarget
		remaining := cursor - target

		var jumpIsSafe bool
		if profile == wordnav.Chrome {
			jumpIsSafe = true
			for _, c := range buf[ctrlTarget:cursor] {
				if c == '\n' {
					jumpIsSafe = false
					break
				}
			}
		} else {
			jumpIsSafe = wordnav.CompatibleCtrlJumpIsSafe(buf, cursor, ctrlTarget)
		}

		if ctrlTarget >= target && ctrlDelta >= 4 && remaining >= 12 && jumpIsSafe {
			b.NavWordLeft(rng)
			ed.MoveWordLeft()
		} else {
			b.NavLeft(rng)
			ed.MoveLeft()
		}

		if rng.Float64() < 0.03 {
			b.Wait(uint64(40 + rng.Intn(141)))
		} else {
			b.Wait(uint64(6 + rng.Intn(17)))
		}
	}

	if profile == wordnav.Compatible {
		b.SetCtrl(false, rng)
	}
}

func navigateRightTo(b *actions.Builder, ed *editor.State, target int, profile wordnav.Profile, rng *rand.Rand) {
	if target > ed.Len() {
		target = ed.Len()
	}

	for ed.Cursor() < target {
		buf := ed.Buf()
		cursor := ed.Cursor()
		ctrlTarget := wordnav.CtrlRight(buf, cursor, wordnav.IsWordChar)
		ctrlDelta := ctrlTarget - cursor
		remaining := target - cursor

		var jumpIsSafe bool
		if profile == wordnav.Chrome {
			jumpIsSafe = true
			for _, c := range buf[cursor:ctrlTarget] {
				if c == '\n' {
					jumpIsSafe = false
					break
				}
			}
		} else {
			jumpIsSafe = wordnav.CompatibleCtrlJumpIsSafe(buf, cursor, ctrlTarget)
		}

		if ctrlTarget <= target && ctrlDelta >= 4 && remaining >= 12 && jumpIsSafe {
			b.NavWordRight(rng)
			ed.MoveWordRight()
		} else {
			b.NavRight(rng)
			ed.MoveRight()
		}

		b.Wait(uint64(6 + rng.Intn(17)))
	}

	b.SetCtrl(false, rng)
}

func fixErrorAtPosition(b *actions.Builder, ed *editor.State, oe outstandingError, wpm float64, profile wordnav.Profile, rng *rand.Rand) error {
	wrongLen := len([]rune(oe.wrong))
	targetEnd := oe.start + wrongLen
	if targetEnd > ed.Cursor() {
		return fmt.Errorf("planner: internal error: correction target after cursor")
	}

	navigateLeftTo(b, ed, targetEnd, profile, rng)
	b.Wait(uint64(50 + rng.Intn(171)))

	for i := 0; i < wrongLen; i++ {
		b.Backspace(rng)
		ed.Backspace()
		b.Wait(uint64(15 + rng.Intn(41)))
	}

	if err := typeString(b, ed, oe.correct, wpm, rng); err != nil {
		return err
	}

	navigateRightTo(b, ed, ed.Len(), profile, rng)
	return nil
}
