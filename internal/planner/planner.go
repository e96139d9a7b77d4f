package planner

import (
	"fmt"
	"math/rand"

	"typeplan/internal/actions"
	"typeplan/internal/editor"
	"typeplan/internal/keymap"
	"typeplan/internal/model"
	"typeplan/internal/phrase"
	"typeplan/internal/wordnav"
)

// CorrectionConstraint restricts when an outstanding error may be corrected.
type CorrectionConstraint int

const (
	// ConstraintNone allows correction at any word/punctuation boundary.
	ConstraintNone CorrectionConstraint = iota
	// ConstraintSentenceOrParagraphBoundary only allows correction right
	// after a '.', '!', '?' or newline, used for phrase-alternative
	// revisions so they read as deliberate second-pass edits.
	ConstraintSentenceOrParagraphBoundary
)

type outstandingError struct {
	start         int
	wrong         string
	correct       string
	fixAfterChars int
	constraint    CorrectionConstraint
}

func sentenceOrParagraphBoundary(c rune) bool {
	return c == '.' || c == '!' || c == '?' || c == '\n'
}

func byteIndexToLineCol(text string, byteIdx int) (line, col int) {
	line, col = 1, 1
	for i, c := range text {
		if i >= byteIdx {
			break
		}
		if c == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return
}

func unsupportedCharError(text string) error {
	idx, c, ok := keymap.FindFirstUnsupportedChar(text)
	if !ok {
		return nil
	}
	line, col := byteIndexToLineCol(text, idx)
	return fmt.Errorf("planner: unsupported character %q (U+%04X) at line %d, column %d: supported characters are ASCII, newline, and smart quotes (’ ‘ ” “); tabs are not allowed", c, c, line, col)
}

// Generate builds a Plan for final typing the given text with no phrase
// alternatives, i.e. no phrase-revision phase; typos and synonym word
// variants are still injected and corrected. NoRevision in cfg (or an
// ErrorRatePerWord of zero) selects a straight-through single-pass typing
// mode with no corrections at all.
func Generate(text string, cfg Config, km keymap.Provider, rng *rand.Rand) (*model.Plan, error) {
	if cfg.NoRevision || cfg.ErrorRatePerWord == 0 {
		return generateNoRevision(text, cfg, km, rng)
	}
	return generateImpl(text, cfg, nil, km, rng)
}

// GenerateWithPhraseAlternatives builds a Plan that also revises the
// supplied paragraph phrase alternatives back to their original wording
// partway through, simulating a writer who tries one phrasing and second-
// guesses it.
func GenerateWithPhraseAlternatives(text string, cfg Config, alternativesByParagraph [][]phrase.Alternative, km keymap.Provider, rng *rand.Rand) (*model.Plan, error) {
	if err := unsupportedCharError(text); err != nil {
		return nil, err
	}

	spans, err := phrase.SpansFromParagraphAlternatives(text, alternativesByParagraph)
	if err != nil {
		return nil, err
	}

	return generateImpl(text, cfg, spans, km, rng)
}

func generateNoRevision(text string, cfg Config, km keymap.Provider, rng *rand.Rand) (*model.Plan, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	if err := unsupportedCharError(text); err != nil {
		return nil, err
	}

	info, err := km.Keymap()
	if err != nil {
		return nil, fmt.Errorf("planner: acquiring keymap: %w", err)
	}
	wpmTarget := cfg.WPMMin + rng.Float64()*(cfg.WPMMax-cfg.WPMMin)

	b := actions.NewBuilder(info.ShiftMask, info.CtrlMask)
	ed := editor.New(cfg.WordNavProfile)

	b.Wait(uint64(250 + rng.Intn(351)))

	if err := typeString(b, ed, text, wpmTarget, rng); err != nil {
		return nil, err
	}

	b.SetShift(false, rng)
	b.SetCtrl(false, rng)

	if ed.String() != text {
		return nil, fmt.Errorf("planner: internal error: simulated text does not match final draft")
	}

	return &model.Plan{
		Version: 1,
		Config: model.PlanConfig{
			Layout:       info.Layout,
			KeymapFormat: info.KeymapFormat,
			Keymap:       info.Keymap,
			WPMTarget:    wpmTarget,
		},
		Actions: withModifierResets(b.Actions()),
	}, nil
}

// withModifierResets brackets acts with the all-released Modifiers(0, 0, 0, 0)
// snapshot that every plan opens and closes with.
func withModifierResets(acts []model.Action) []model.Action {
	out := make([]model.Action, 0, len(acts)+2)
	out = append(out, model.Modifiers(0, 0, 0, 0))
	out = append(out, acts...)
	return append(out, model.Modifiers(0, 0, 0, 0))
}

func generateImpl(text string, cfg Config, phraseSpans []phrase.Span, km keymap.Provider, rng *rand.Rand) (*model.Plan, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	if err := unsupportedCharError(text); err != nil {
		return nil, err
	}

	info, err := km.Keymap()
	if err != nil {
		return nil, fmt.Errorf("planner: acquiring keymap: %w", err)
	}
	wpmTarget := cfg.WPMMin + rng.Float64()*(cfg.WPMMax-cfg.WPMMin)

	b := actions.NewBuilder(info.ShiftMask, info.CtrlMask)
	ed := editor.New(cfg.WordNavProfile)
	var outstanding []outstandingError

	b.Wait(uint64(250 + rng.Intn(351)))

	chars := []rune(text)
	i := 0
	phraseIdx := 0
	var lastChar rune

	for i < len(chars) {
		progress := float64(i) / float64(len(chars))

		var nextPhraseStart int
		hasNextPhrase := phraseIdx < len(phraseSpans)
		if hasNextPhrase {
			nextPhraseStart = phraseSpans[phraseIdx].Start
		}

		switch {
		case hasNextPhrase && nextPhraseStart == i:
			span := phraseSpans[phraseIdx]
			var typed string

			if len(outstanding) < cfg.MaxOutstandingErrors {
				startCursor := ed.Cursor()
				typed = span.Alternative
				if err := typeString(b, ed, typed, wpmTarget, rng); err != nil {
					return nil, err
				}
				outstanding = append(outstanding, outstandingError{
					start:         startCursor,
					wrong:         span.Alternative,
					correct:       span.Original,
					fixAfterChars: 90 + rng.Intn(331),
					constraint:    ConstraintSentenceOrParagraphBoundary,
				})
			} else {
				typed = span.Original
				if err := typeString(b, ed, typed, wpmTarget, rng); err != nil {
					return nil, err
				}
			}

			typedRunes := []rune(typed)
			if len(typedRunes) == 0 {
				return nil, fmt.Errorf("planner: phrase alternative must not be empty")
			}
			lastChar = typedRunes[len(typedRunes)-1]

			i += span.OriginalLenRunes
			phraseIdx++

		case wordnav.IsWordChar(chars[i]):
			start := i
			i++
			for i < len(chars) && wordnav.IsWordChar(chars[i]) {
				i++
			}
			wordEnd := i

			if hasNextPhrase && nextPhraseStart > start && nextPhraseStart < wordEnd {
				prefix := string(chars[start:nextPhraseStart])
				if err := typeString(b, ed, prefix, wpmTarget, rng); err != nil {
					return nil, err
				}
				lastChar = chars[nextPhraseStart-1]
				i = nextPhraseStart
				break
			}

			word := string(chars[start:wordEnd])
			injectError := rng.Float64() < cfg.ErrorRatePerWord && len(outstanding) < cfg.MaxOutstandingErrors

			if injectError {
				wantVariant := rng.Float64() < cfg.WordVariantShare
				var wrongWord string
				var haveWrong bool
				if wantVariant {
					wrongWord, haveWrong = wordVariant(word, rng)
					if !haveWrong {
						wrongWord, haveWrong = wordTypo(word, rng)
					}
				} else {
					wrongWord, haveWrong = wordTypo(word, rng)
					if !haveWrong {
						wrongWord, haveWrong = wordVariant(word, rng)
					}
				}

				if haveWrong {
					wordStartCursor := ed.Cursor()
					if err := typeString(b, ed, wrongWord, wpmTarget, rng); err != nil {
						return nil, err
					}

					if rng.Float64() < cfg.ImmediateFixRate {
						if err := replaceAtEnd(b, ed, wrongWord, word, wpmTarget, rng); err != nil {
							return nil, err
						}
					} else {
						outstanding = append(outstanding, outstandingError{
							start:         wordStartCursor,
							wrong:         wrongWord,
							correct:       word,
							fixAfterChars: 25 + rng.Intn(196),
							constraint:    ConstraintNone,
						})
					}
				} else if err := typeString(b, ed, word, wpmTarget, rng); err != nil {
					return nil, err
				}
			} else if err := typeString(b, ed, word, wpmTarget, rng); err != nil {
				return nil, err
			}

			lastChar = chars[wordEnd-1]

		default:
			c := chars[i]
			i++

			if c == ' ' && rng.Float64() < 0.015 && len(outstanding) < cfg.MaxOutstandingErrors {
				startCursor := ed.Cursor()
				if err := typeString(b, ed, "  ", wpmTarget, rng); err != nil {
					return nil, err
				}
				outstanding = append(outstanding, outstandingError{
					start:         startCursor,
					wrong:         "  ",
					correct:       " ",
					fixAfterChars: 40 + rng.Intn(221),
					constraint:    ConstraintNone,
				})
			} else if err := typeString(b, ed, string(c), wpmTarget, rng); err != nil {
				return nil, err
			}

			lastChar = c
		}

		if len(outstanding) > 0 {
			oe := outstanding[len(outstanding)-1]
			wrongLen := len([]rune(oe.wrong))
			age := ed.Cursor() - (oe.start + wrongLen)
			if age < 0 {
				age = 0
			}
			lateStage := progress >= cfg.StopCorrectionsAfterProgress

			forceFix := len(outstanding) >= cfg.MaxOutstandingErrors
			due := age >= oe.fixAfterChars

			var boundaryForRandomFix bool
			switch oe.constraint {
			case ConstraintNone:
				boundaryForRandomFix = lastChar == ' ' || isPauseRune(lastChar)
			case ConstraintSentenceOrParagraphBoundary:
				boundaryForRandomFix = sentenceOrParagraphBoundary(lastChar)
			}

			randomFix := !lateStage && rng.Float64() < 0.12 && boundaryForRandomFix

			var shouldFix bool
			switch oe.constraint {
			case ConstraintNone:
				shouldFix = forceFix || (due && !lateStage) || randomFix
			case ConstraintSentenceOrParagraphBoundary:
				shouldFix = sentenceOrParagraphBoundary(lastChar) && (forceFix || (due && !lateStage) || randomFix)
			}

			if shouldFix {
				outstanding = outstanding[:len(outstanding)-1]
				if err := fixErrorAtPosition(b, ed, oe, wpmTarget, cfg.WordNavProfile, rng); err != nil {
					return nil, err
				}
				b.Wait(uint64(80 + rng.Intn(341)))
			}
		}
	}

	b.Wait(cfg.ReviewPauseMsMin + uint64(rng.Intn(int(cfg.ReviewPauseMsMax-cfg.ReviewPauseMsMin+1))))

	for len(outstanding) > 0 {
		oe := outstanding[len(outstanding)-1]
		outstanding = outstanding[:len(outstanding)-1]
		if err := fixErrorAtPosition(b, ed, oe, wpmTarget, cfg.WordNavProfile, rng); err != nil {
			return nil, err
		}
		b.Wait(uint64(120 + rng.Intn(401)))
	}

	b.SetShift(false, rng)
	b.SetCtrl(false, rng)

	if ed.String() != text {
		return nil, fmt.Errorf("planner: internal error: simulated text does not match final draft")
	}

	return &model.Plan{
		Version: 1,
		Config: model.PlanConfig{
			Layout:       info.Layout,
			KeymapFormat: info.KeymapFormat,
			Keymap:       info.Keymap,
			WPMTarget:    wpmTarget,
		},
		Actions: withModifierResets(b.Actions()),
	}, nil
}

func isPauseRune(c rune) bool {
	switch c {
	case ',', '.', ';', ':', '!', '?', '\n':
		return true
	}
	return false
}
