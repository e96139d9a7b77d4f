// Package suggest calls an LLM to propose paragraph-local alternative
// phrasing that the planner can temporarily type and later revise back,
// and bounds how many of those calls run concurrently.
package suggest

import (
	"strconv"

	"typeplan/internal/phrase"
)

// SystemPrompt instructs the model to propose alternatives the planner can
// type in place of a span and later edit back, without ever changing the
// paragraph's final text.
const SystemPrompt = `You are a helper for a human-like typing simulator.

Goal
- Given a single paragraph of final-draft text, propose a small set of alternative wordings.
- The simulator will temporarily type ` + "`alternative`" + ` in place of ` + "`original`" + `, then later replace ` + "`alternative`" + ` back to ` + "`original`" + `.
- The final text after all edits must match the input paragraph exactly.

Output format (STRICT)
- Output ONLY valid JSON. No markdown, no surrounding prose, no code fences.
- Output MUST be a JSON array (possibly empty).
- Each array element MUST be an object with exactly these keys:
  - "original": string
  - "alternative": string
- No additional keys are allowed.

Hard constraints
- ` + "`original`" + ` MUST be a contiguous substring copied verbatim from the input paragraph.
- ` + "`original`" + ` MUST occur exactly once in the input paragraph (unique match). If not, expand the span to make it unique, or omit it.
- ` + "`original`" + ` MUST NOT start or end with whitespace.
- All ` + "`original`" + ` spans MUST be non-overlapping.
- ` + "`alternative`" + ` MUST be different from ` + "`original`" + `.
- ` + "`alternative`" + ` MUST NOT start or end with whitespace.
- Each suggestion MUST be usable as a direct substring replacement: do not require changing any text outside the span.

Character set (typing safety)
- ONLY use characters that are typeable by a US-QWERTY keyboard with ASCII input:
  - Allowed: ASCII printable characters, space, newline, and smart quotes.
  - Disallowed: tabs, carriage returns, and any other Unicode characters.

Quality guidance
- Prefer replacements that read naturally in context.
- Keep meaning similar unless the user explicitly asks for more dramatic rewrites.
- Return fewer items rather than violating constraints.
`

// JSONSchema constrains SystemPrompt's output for models that support
// structured output / JSON schema response formats.
const JSONSchema = `{
  "type": "array",
  "items": {
    "type": "object",
    "additionalProperties": false,
    "required": ["original", "alternative"],
    "properties": {
      "original": { "type": "string" },
      "alternative": { "type": "string" }
    }
  }
}`

// RewriteStrength controls how far rephrasing suggestions may stray from
// the original wording.
type RewriteStrength int

const (
	Subtle RewriteStrength = iota
	Moderate
	Dramatic
)

func (s RewriteStrength) userPromptHint() string {
	switch s {
	case Moderate:
		return "Allow moderate rewrites, but keep meaning the same."
	case Dramatic:
		return "Make more dramatic rewrites while keeping meaning the same."
	default:
		return "Make small phrasing changes only; keep structure very close."
	}
}

// Options configures a single paragraph rephrase request.
type Options struct {
	MaxSuggestions int
	Strength       RewriteStrength
}

// DefaultOptions matches the original implementation's defaults: a handful
// of subtle suggestions per paragraph.
func DefaultOptions() Options {
	return Options{MaxSuggestions: 4, Strength: Subtle}
}

func buildUserPrompt(paragraph string, opts Options) string {
	return "Input paragraph:\n" + paragraph +
		"\n\nConstraints:\n- Return up to " + strconv.Itoa(opts.MaxSuggestions) + " suggestions.\n- " +
		opts.Strength.userPromptHint() + "\n\nReturn ONLY the JSON array.\n"
}

// toPhraseAlternatives adapts a raw decoded response into phrase.Alternative,
// the type internal/phrase and internal/planner already work with.
func toPhraseAlternatives(items []rawAlternative) []phrase.Alternative {
	out := make([]phrase.Alternative, 0, len(items))
	for _, it := range items {
		out = append(out, phrase.Alternative{Original: it.Original, Alternative: it.Alternative})
	}
	return out
}
