package planner

import (
	"math"
	"math/rand"
)

// interCharDelayMs samples a per-character typing delay from a normal
// distribution centered on the target words-per-minute, approximating 5
// characters per word as the original implementation does.
func interCharDelayMs(wpm float64, rng *rand.Rand) uint64 {
	mean := 12000.0 / wpm
	stddev := mean * 0.35
	if stddev < 1.0 {
		stddev = 1.0
	}

	sample := rng.NormFloat64()*stddev + mean
	if sample < 25.0 {
		sample = 25.0
	}
	if sample > 900.0 {
		sample = 900.0
	}
	return uint64(math.Round(sample))
}

// punctuationPauseMs adds an extra pause after punctuation and line breaks.
func punctuationPauseMs(c rune, rng *rand.Rand) uint64 {
	switch c {
	case ',', ';', ':':
		return uint64(60 + rng.Intn(161))
	case '.', '!', '?':
		return uint64(120 + rng.Intn(401))
	case '\n':
		return uint64(200 + rng.Intn(701))
	}
	return 0
}

// maybeThinkPauseMs occasionally adds a longer "thinking" pause after
// sentence or paragraph boundaries.
func maybeThinkPauseMs(prev rune, rng *rand.Rand) uint64 {
	switch prev {
	case '.', '!', '?':
		if rng.Float64() < 0.12 {
			return uint64(700 + rng.Intn(1701))
		}
	case '\n':
		if rng.Float64() < 0.10 {
			return uint64(600 + rng.Intn(1401))
		}
	}
	return 0
}
