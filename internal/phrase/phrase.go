// Package phrase validates LLM-suggested phrase alternatives against a
// paragraph and converts validated alternatives into global character-index
// spans the planner can schedule substitutions against.
//
// Grounded on the original implementation's validate_phrase_alternatives
// (llm.rs) and phrase_spans_from_paragraph_alternatives/paragraph_byte_spans
// (planner.rs); ported to operate on rune indices throughout since Go
// strings are UTF-8 byte slices and the planner's buffer is rune-addressed.
package phrase

import (
	"fmt"
	"sort"
	"strings"

	"typeplan/internal/keymap"
)

// Alternative is a single LLM-suggested rewrite of a verbatim phrase drawn
// from one paragraph of the final text.
type Alternative struct {
	Original    string
	Alternative string
}

// Span is a validated Alternative anchored to a rune offset in the full
// final text.
type Span struct {
	Start            int
	Original         string
	Alternative      string
	OriginalLenRunes int
}

// IsSupportedText reports whether every character in text is typeable.
func IsSupportedText(text string) bool {
	return keymap.IsSupportedFinalText(text)
}

// ValidateAlternatives checks that items are well-formed alternatives for
// paragraph: non-empty, untrimmed-safe, distinct from their original,
// typeable, each occurring in paragraph exactly once, and with
// non-overlapping original spans.
func ValidateAlternatives(paragraph string, items []Alternative) error {
	if !IsSupportedText(paragraph) {
		return fmt.Errorf("phrase: paragraph contains unsupported characters")
	}

	type byteRange struct{ start, end int }
	ranges := make([]byteRange, 0, len(items))

	for _, item := range items {
		if item.Original == "" {
			return fmt.Errorf("phrase: original must not be empty")
		}
		if strings.TrimSpace(item.Original) != item.Original {
			return fmt.Errorf("phrase: original must not start or end with whitespace")
		}
		if item.Alternative == "" {
			return fmt.Errorf("phrase: alternative must not be empty")
		}
		if strings.TrimSpace(item.Alternative) != item.Alternative {
			return fmt.Errorf("phrase: alternative must not start or end with whitespace")
		}
		if item.Original == item.Alternative {
			return fmt.Errorf("phrase: original and alternative must differ")
		}
		if !IsSupportedText(item.Original) {
			return fmt.Errorf("phrase: original contains unsupported characters")
		}
		if !IsSupportedText(item.Alternative) {
			return fmt.Errorf("phrase: alternative contains unsupported characters")
		}

		occurrences := strings.Count(paragraph, item.Original)
		if occurrences != 1 {
			return fmt.Errorf("phrase: original %q must occur exactly once in the paragraph, found %d", item.Original, occurrences)
		}

		start := strings.Index(paragraph, item.Original)
		ranges = append(ranges, byteRange{start, start + len(item.Original)})
	}

	sort.Slice(ranges, func(i, j int) bool { return ranges[i].start < ranges[j].start })
	for i := 1; i < len(ranges); i++ {
		if ranges[i-1].end > ranges[i].start {
			return fmt.Errorf("phrase: original spans must be non-overlapping")
		}
	}

	return nil
}

// paragraphByteSpans splits text into paragraphs on runs of one or more
// blank lines, returning each paragraph's [start, end) byte range.
func paragraphByteSpans(text string) [][2]int {
	b := []byte(text)
	length := len(b)
	var spans [][2]int
	idx := 0

	for idx < length {
		for idx < length && b[idx] == '\n' {
			idx++
		}
		if idx >= length {
			break
		}

		start := idx
		for idx < length {
			if b[idx] == '\n' && idx+1 < length && b[idx+1] == '\n' {
				break
			}
			idx++
		}
		end := idx
		spans = append(spans, [2]int{start, end})

		for idx < length && b[idx] == '\n' {
			idx++
		}
	}

	return spans
}

func byteIndexToRuneIndex(text string, byteIdx int) int {
	return len([]rune(text[:byteIdx]))
}

// SpansFromParagraphAlternatives validates each paragraph's alternatives and
// converts them into a globally sorted, non-overlapping list of Spans
// anchored against finalText's rune offsets. alternativesByParagraph must
// have exactly one entry per paragraph in finalText, in paragraph order.
func SpansFromParagraphAlternatives(finalText string, alternativesByParagraph [][]Alternative) ([]Span, error) {
	paragraphSpans := paragraphByteSpans(finalText)
	if len(alternativesByParagraph) != len(paragraphSpans) {
		return nil, fmt.Errorf("phrase: expected %d paragraph alternative lists, got %d", len(paragraphSpans), len(alternativesByParagraph))
	}

	finalTextLenRunes := len([]rune(finalText))
	var spans []Span

	for idx, pspan := range paragraphSpans {
		startByte, endByte := pspan[0], pspan[1]
		paragraph := finalText[startByte:endByte]
		items := alternativesByParagraph[idx]
		if err := ValidateAlternatives(paragraph, items); err != nil {
			return nil, fmt.Errorf("phrase: alternatives failed validation for paragraph %d: %w", idx, err)
		}

		for _, item := range items {
			localStartByte := strings.Index(paragraph, item.Original)
			if localStartByte < 0 {
				return nil, fmt.Errorf("phrase: original not found in paragraph %d", idx)
			}
			globalStartByte := startByte + localStartByte
			start := byteIndexToRuneIndex(finalText, globalStartByte)
			originalLenRunes := len([]rune(item.Original))

			if start+originalLenRunes > finalTextLenRunes {
				return nil, fmt.Errorf("phrase: alternative out of bounds in final text")
			}

			spans = append(spans, Span{
				Start:            start,
				Original:         item.Original,
				Alternative:      item.Alternative,
				OriginalLenRunes: originalLenRunes,
			})
		}
	}

	sort.Slice(spans, func(i, j int) bool { return spans[i].Start < spans[j].Start })
	for i := 1; i < len(spans); i++ {
		prevEnd := spans[i-1].Start + spans[i-1].OriginalLenRunes
		if prevEnd > spans[i].Start {
			return nil, fmt.Errorf("phrase: alternative spans overlap in final text")
		}
	}

	return spans, nil
}
