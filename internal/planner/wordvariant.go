package planner

import (
	"math/rand"
	"strings"

	"typeplan/internal/keymap"
)

// applyCaseStyle reapplies template's capitalization pattern (all-caps,
// capitalized-first-letter, or plain) onto a lowercase replacement word.
func applyCaseStyle(template, lower string) string {
	isAllUpper := true
	for _, c := range template {
		if !(c >= 'A' && c <= 'Z') {
			isAllUpper = false
			break
		}
	}
	if isAllUpper {
		return strings.ToUpper(lower)
	}

	templateRunes := []rune(template)
	firstIsUpper := len(templateRunes) > 0 && templateRunes[0] >= 'A' && templateRunes[0] <= 'Z'
	restAreLower := true
	for _, c := range templateRunes[minInt(1, len(templateRunes)):] {
		if c >= 'A' && c <= 'Z' {
			restAreLower = false
			break
		}
	}

	if firstIsUpper && restAreLower {
		lowerRunes := []rune(lower)
		if len(lowerRunes) > 0 && lowerRunes[0] >= 'a' && lowerRunes[0] <= 'z' {
			lowerRunes[0] = lowerRunes[0] - 'a' + 'A'
		}
		return string(lowerRunes)
	}

	return lower
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// synonymOptions is the fixed synonym table used for word-choice revisions.
func synonymOptions(wordLower string) []string {
	switch wordLower {
	case "important":
		return []string{"crucial", "key", "vital"}
	case "help":
		return []string{"assist", "aid", "support"}
	case "use":
		return []string{"utilize", "employ"}
	case "show":
		return []string{"demonstrate", "display"}
	case "make":
		return []string{"create", "build"}
	case "start":
		return []string{"begin", "kickoff"}
	case "end":
		return []string{"finish", "wrap"}
	case "idea":
		return []string{"concept", "notion"}
	case "quick":
		return []string{"fast", "rapid"}
	case "slow":
		return []string{"sluggish", "gradual"}
	}
	return nil
}

// wordVariant proposes a revision-worthy alternate spelling of word: a
// synonym swap where one exists, else a simple -ed/-ing morphology flip.
func wordVariant(word string, rng *rand.Rand) (string, bool) {
	wordLower := strings.ToLower(word)

	if options := synonymOptions(wordLower); len(options) > 0 {
		option := options[rng.Intn(len(options))]
		if option != wordLower {
			return applyCaseStyle(word, option), true
		}
	}

	if strings.HasSuffix(wordLower, "ed") && len(wordLower) >= 4 {
		stem := wordLower[:len(wordLower)-2]
		return applyCaseStyle(word, stem+"ing"), true
	}
	if strings.HasSuffix(wordLower, "ing") && len(wordLower) >= 5 {
		stem := wordLower[:len(wordLower)-3]
		return applyCaseStyle(word, stem+"ed"), true
	}

	return "", false
}

// wordTypo proposes a typo'd spelling of word: an adjacent-letter swap 25%
// of the time for longer words, otherwise a QWERTY-neighbor substitution.
func wordTypo(word string, rng *rand.Rand) (string, bool) {
	chars := []rune(word)
	if len(chars) < 2 {
		return "", false
	}

	if len(chars) >= 4 && rng.Float64() < 0.25 {
		out := append([]rune(nil), chars...)
		idx := rng.Intn(len(out) - 1)
		out[idx], out[idx+1] = out[idx+1], out[idx]
		if string(out) != word {
			return string(out), true
		}
	}

	idx := rng.Intn(len(chars))
	out := append([]rune(nil), chars...)
	if adj, ok := keymap.QwertyAdjacentChar(out[idx], rng); ok {
		out[idx] = adj
		if string(out) != word {
			return string(out), true
		}
	}

	return "", false
}
