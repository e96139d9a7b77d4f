// Command typeplan generates a human-like typing action plan for a piece
// of text and replays it against a playback backend.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"go.uber.org/zap"

	"typeplan/internal/browser"
	"typeplan/internal/config"
	"typeplan/internal/keymap"
	"typeplan/internal/model"
	"typeplan/internal/planfile"
	"typeplan/internal/planner"
	"typeplan/internal/playback"
	"typeplan/internal/repository"
	"typeplan/internal/suggest"
	"typeplan/internal/trace"
)

var (
	configPath = flag.String("config", "config/config.yaml", "Path to configuration file")
	textFlag   = flag.String("text", "", "Text to type (required unless -file is given)")
	filePath   = flag.String("file", "", "Read the text to type from this file")
	dryRun     = flag.Bool("dry-run", true, "Replay timing only, without driving a real input backend")
	rephrase   = flag.Bool("rephrase", false, "Ask the configured LLM for paragraph phrase alternatives before planning")
	seed       = flag.Int64("seed", 0, "Deterministic RNG seed (0 picks one from the current time)")
	planOut    = flag.String("plan-out", "", "Write the generated plan as JSON to this path instead of (or in addition to) replaying it")
	planIn     = flag.String("plan-in", "", "Replay a previously written plan JSON file instead of generating one")
)

func main() {
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}
	logger.Info("configuration loaded", zap.String("config_path", *configPath))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("shutdown signal received, cancelling run")
		cancel()
	}()

	repo, err := repository.NewSQLiteRepository(cfg.Database.Path)
	if err != nil {
		logger.Fatal("failed to initialize repository", zap.Error(err))
	}
	defer func() {
		if err := repo.Close(); err != nil {
			logger.Error("failed to close repository", zap.Error(err))
		}
	}()
	logger.Info("repository initialized", zap.String("db_path", cfg.Database.Path))

	plannerCfg, err := cfg.Planner.ToPlannerConfig()
	if err != nil {
		logger.Fatal("invalid planner configuration", zap.Error(err))
	}

	var (
		plan       *model.Plan
		sourceText string
	)

	if *planIn != "" {
		plan, err = loadPlan(*planIn)
		if err != nil {
			logger.Fatal("failed to load plan file", zap.Error(err))
		}
		logger.Info("plan loaded", zap.String("plan_path", *planIn), zap.Int("actions", len(plan.Actions)))
	} else {
		text, err := readInputText()
		if err != nil {
			logger.Fatal("failed to read input text", zap.Error(err))
		}
		sourceText = text

		rngSeed := *seed
		if rngSeed == 0 {
			rngSeed = time.Now().UnixNano()
		}
		rng := rand.New(rand.NewSource(rngSeed))
		logger.Info("planning run", zap.Int64("seed", rngSeed), zap.Int("chars", len(text)))

		provider := keymap.NewUSQWERTYProvider()

		var planErr error
		plan, planErr = generatePlan(ctx, text, plannerCfg, provider, rng, cfg, logger)
		if planErr != nil {
			run := &repository.PlanRun{
				SourceText:     text,
				WordNavProfile: plannerCfg.WordNavProfile.String(),
				Backend:        cfg.Playback.Backend,
				Error:          planErr.Error(),
			}
			_ = repo.RecordRun(ctx, run)
			logger.Fatal("plan generation failed", zap.Error(planErr))
		}
	}

	stats := planner.ComputeStats(plan)
	run := &repository.PlanRun{
		SourceText:     sourceText,
		WordNavProfile: plannerCfg.WordNavProfile.String(),
		Backend:        cfg.Playback.Backend,
		WPMTarget:      plan.Config.WPMTarget,
		ActionCount:    stats.Actions,
		KeyEventCount:  stats.KeyEvents,
		TotalWaitMs:    stats.TotalWaitMs,
	}
	if err := repo.RecordRun(ctx, run); err != nil {
		logger.Error("failed to record plan run", zap.Error(err))
	}

	if *planOut != "" {
		if err := savePlan(*planOut, plan); err != nil {
			logger.Fatal("failed to write plan file", zap.Error(err))
		}
		logger.Info("plan written", zap.String("plan_path", *planOut))
	}

	printTrace(plan)

	if err := replay(ctx, cfg, plan, logger); err != nil {
		logger.Fatal("playback failed", zap.Error(err))
	}

	logger.Info("run completed",
		zap.Int("actions", stats.Actions),
		zap.Int("key_events", stats.KeyEvents),
		zap.String("total_wait", formatDuration(time.Duration(stats.TotalWaitMs)*time.Millisecond)),
	)
}

// formatDuration renders d the way the teacher's pkg/utils.FormatDuration
// does for its cooldown logging, reused here for a plan's total wait time.
func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm %ds", minutes, int(d.Seconds())%60)
}

func readInputText() (string, error) {
	if *filePath != "" {
		data, err := os.ReadFile(*filePath)
		if err != nil {
			return "", fmt.Errorf("reading -file: %w", err)
		}
		return string(data), nil
	}
	if *textFlag == "" {
		return "", fmt.Errorf("one of -text or -file is required")
	}
	return *textFlag, nil
}

// savePlan writes plan to path in the internal/planfile JSON format, so a
// later run can replay it verbatim via -plan-in without regenerating it.
func savePlan(path string, plan *model.Plan) error {
	data, err := planfile.Marshal(plan)
	if err != nil {
		return fmt.Errorf("encoding plan: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func loadPlan(path string) (*model.Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	plan, err := planfile.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return plan, nil
}

func generatePlan(
	ctx context.Context,
	text string,
	plannerCfg planner.Config,
	provider keymap.Provider,
	rng *rand.Rand,
	cfg *config.Config,
	logger *zap.Logger,
) (*model.Plan, error) {
	if !*rephrase || !cfg.LLM.Enabled {
		return planner.Generate(text, plannerCfg, provider, rng)
	}

	client, err := suggest.NewClientFromEnv(logger)
	if err != nil {
		logger.Warn("LLM rephrase requested but unavailable, planning without it", zap.Error(err))
		return planner.Generate(text, plannerCfg, provider, rng)
	}
	client = client.WithModel(cfg.LLM.Model).WithMaxConcurrency(cfg.LLM.MaxConcurrency)

	paragraphs := splitParagraphs(text)
	alternatives, err := client.RephraseParagraphs(ctx, paragraphs, suggest.DefaultOptions())
	if err != nil {
		logger.Warn("LLM rephrase failed, planning without it", zap.Error(err))
		return planner.Generate(text, plannerCfg, provider, rng)
	}

	return planner.GenerateWithPhraseAlternatives(text, plannerCfg, alternatives, provider, rng)
}

func splitParagraphs(text string) []string {
	var out []string
	start := 0
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		if runes[i] == '\n' && i+1 < len(runes) && runes[i+1] == '\n' {
			out = append(out, string(runes[start:i]))
			start = i + 2
			i++
		}
	}
	out = append(out, string(runes[start:]))
	return out
}

func printTrace(plan *model.Plan) {
	events := trace.PlanConsoleTrace(plan.Actions)
	sort.SliceStable(events, func(i, j int) bool { return events[i].ActionIndex < events[j].ActionIndex })
	for _, e := range events {
		fmt.Println(e.Line)
	}
}

func replay(ctx context.Context, cfg *config.Config, plan *model.Plan, logger *zap.Logger) error {
	if *dryRun {
		sink := playback.NullSink{}
		return sink.Apply(ctx, plan)
	}

	if cfg.Playback.Backend == "browser" {
		return replayToBrowser(ctx, cfg, plan, logger)
	}

	requested := playback.BackendAuto
	switch cfg.Playback.Backend {
	case "wayland":
		requested = playback.BackendWayland
	case "x11":
		requested = playback.BackendX11
	}

	backend, err := playback.SelectBackend(requested, false, false)
	if err != nil {
		return fmt.Errorf("selecting playback backend: %w", err)
	}

	logger.Warn("no concrete virtual keyboard is wired into this binary for this backend; falling back to a dry run",
		zap.String("resolved_backend", backend.String()),
	)
	sink := playback.NullSink{}
	return sink.Apply(ctx, plan)
}

// replayToBrowser launches a stealth-patched Chromium page, navigates to
// cfg.Playback.URL, and replays plan's key actions into cfg.Playback.Selector
// via playback.BrowserSink.
func replayToBrowser(ctx context.Context, cfg *config.Config, plan *model.Plan, logger *zap.Logger) error {
	session := browser.NewSession(logger)
	if err := session.Initialize(ctx, browser.DefaultViewportRange()); err != nil {
		return fmt.Errorf("initializing browser session: %w", err)
	}
	defer func() {
		if err := session.Close(); err != nil {
			logger.Error("failed to close browser session", zap.Error(err))
		}
	}()

	if err := session.Navigate(ctx, cfg.Playback.URL); err != nil {
		return fmt.Errorf("navigating to %s: %w", cfg.Playback.URL, err)
	}

	sink := playback.NewBrowserSink(session.Page(), cfg.Playback.Selector)
	return sink.Apply(ctx, plan)
}
