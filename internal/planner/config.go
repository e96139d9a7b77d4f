// Package planner generates a Plan: a deterministic, RNG-driven simulation
// of a human typing a piece of final text, complete with injected then
// corrected mistakes, word-choice revisions, and realistic per-character
// timing.
//
// Grounded entirely on the original implementation's planner.rs, which is
// by far the largest single file in that codebase; the port keeps its
// control flow and constants and swaps Rust's rand/rand_distr crates for
// Go's math/rand (math/rand's NormFloat64 already implements a
// standard-normal ziggurat sampler, so no Gaussian library needed).
package planner

import (
	"fmt"
	"math"

	"typeplan/internal/wordnav"
)

// Config mirrors PlannerConfig: every tunable the generation algorithm reads.
type Config struct {
	WPMMin                       float64
	WPMMax                       float64
	ErrorRatePerWord             float64
	WordVariantShare             float64
	ImmediateFixRate             float64
	WordNavProfile               wordnav.Profile
	MaxOutstandingErrors         int
	StopCorrectionsAfterProgress float64
	ReviewPauseMsMin             uint64
	ReviewPauseMsMax             uint64
	NoRevision                   bool
}

// DefaultConfig returns the planner's default tuning, matched to the
// original implementation's Default impl for PlannerConfig.
func DefaultConfig() Config {
	return Config{
		WPMMin:                       40.0,
		WPMMax:                       60.0,
		ErrorRatePerWord:             0.05,
		WordVariantShare:             0.35,
		ImmediateFixRate:             0.35,
		WordNavProfile:               wordnav.Chrome,
		MaxOutstandingErrors:         4,
		StopCorrectionsAfterProgress: 0.88,
		ReviewPauseMsMin:             1200,
		ReviewPauseMsMax:             2600,
		NoRevision:                   false,
	}
}

func validateConfig(cfg Config) error {
	if math.IsNaN(cfg.WPMMin) || math.IsInf(cfg.WPMMin, 0) {
		return fmt.Errorf("planner: wpm_min must be finite")
	}
	if math.IsNaN(cfg.WPMMax) || math.IsInf(cfg.WPMMax, 0) {
		return fmt.Errorf("planner: wpm_max must be finite")
	}
	if !(cfg.WPMMin > 0.0 && cfg.WPMMax > 0.0) {
		return fmt.Errorf("planner: wpm_min and wpm_max must be > 0")
	}
	if cfg.WPMMin > cfg.WPMMax {
		return fmt.Errorf("planner: wpm_min must be <= wpm_max")
	}
	if !inUnitRange(cfg.ErrorRatePerWord) {
		return fmt.Errorf("planner: error_rate_per_word must be between 0.0 and 1.0")
	}
	if !inUnitRange(cfg.WordVariantShare) {
		return fmt.Errorf("planner: word_variant_share must be between 0.0 and 1.0")
	}
	if !inUnitRange(cfg.ImmediateFixRate) {
		return fmt.Errorf("planner: immediate_fix_rate must be between 0.0 and 1.0")
	}
	if !inUnitRange(cfg.StopCorrectionsAfterProgress) {
		return fmt.Errorf("planner: stop_corrections_after_progress must be between 0.0 and 1.0")
	}
	if cfg.ReviewPauseMsMin > cfg.ReviewPauseMsMax {
		return fmt.Errorf("planner: review_pause_ms_min must be <= review_pause_ms_max")
	}
	return nil
}

func inUnitRange(v float64) bool {
	return v >= 0.0 && v <= 1.0
}
