package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/skirmish/skirmish/internal/config"
	"github.com/skirmish/skirmish/internal/hud"
	"github.com/skirmish/skirmish/internal/persist"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const defaultConfigPath = "config/skirmish.toml"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(id string) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m              skirmish  v0.1.0             \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m        terminal arena · ECS core          \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1msession:\033[0m \033[90m%s\033[0m\n\n", id)
}

func printSection(title string) {
	lineLen := 46 - hud.Cells(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, value any) {
	s := fmt.Sprint(value)
	dotsLen := 42 - hud.Cells(label) - hud.Cells(s)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), s)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main game logic ───────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := defaultConfigPath
	envPath := os.Getenv("SKIRMISH_CONFIG")
	if envPath != "" {
		cfgPath = envPath
	}
	cfg, err := config.Load(cfgPath)
	switch {
	case err == nil:
	case envPath == "" && errors.Is(err, os.ErrNotExist):
		cfg = config.Default()
	default:
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	// 3. Assemble the session
	game, cleanup, err := initializeGame(cfg, log)
	if err != nil {
		log.Error("start-up failed", zap.Error(err))
		return err
	}
	defer cleanup()

	printBanner(game.world.ID.String())
	printSection("data")
	printStat("templates", game.templates.Count())
	printStat("largest entity", game.templates.MaxExtent())
	printStat("systems", len(game.world.Runner.Order()))
	printOK("scripts loaded")

	if err := game.Setup(); err != nil {
		return err
	}
	printOK(fmt.Sprintf("arena %vx%v, %d blocks", cfg.Simulation.WorldWidth, cfg.Simulation.WorldHeight, cfg.Simulation.Blocks))
	fmt.Println()

	printSection("loop")
	printReady(fmt.Sprintf("step %s, catch-up %d", cfg.Step(), cfg.Simulation.MaxCatchUp))
	if cfg.Display.Headless {
		printReady("headless, Ctrl-C to stop")
	}
	fmt.Println()

	// 4. Run until quit, game over, time up or signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	outcome, runErr := game.Run(ctx)
	if runErr != nil {
		log.Error("game loop failed", zap.Error(runErr))
	}
	rec := game.Record(outcome)

	printSection("session")
	printStat("outcome", outcome)
	printStat("waves", rec.Waves)
	printStat("kills", rec.Kills)
	printStat("score", rec.Score)
	printStat("sim time", rec.SimTime)
	fmt.Println()

	// 5. Scoreboard
	if cfg.Scoreboard.Enabled {
		if err := saveSession(cfg.Scoreboard, rec, log); err != nil {
			log.Warn("scoreboard not updated", zap.Error(err))
		}
	}
	return runErr
}

func saveSession(cfg config.ScoreboardConfig, rec persist.SessionRecord, log *zap.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := persist.Open(ctx, cfg.DSN)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer pool.Close()

	if err := persist.Migrate(ctx, pool, log.Named("scoreboard")); err != nil {
		return err
	}
	repo := persist.NewSessionRepo(pool)
	if err := repo.Insert(ctx, rec); err != nil {
		return err
	}
	printOK("session saved")

	top, err := repo.Top(ctx, 5)
	if err != nil {
		return fmt.Errorf("high scores: %w", err)
	}
	printSection("high scores")
	for i, r := range top {
		label := fmt.Sprintf("%d. %s", i+1, r.EndedAt.Format("2006-01-02 15:04"))
		if r.ID == rec.ID {
			label += " (this run)"
		}
		printStat(label, r.Score)
	}
	fmt.Println()
	return nil
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	// The screen owns the terminal, so logs go to a file when one is set.
	if cfg.File != "" {
		zapCfg.OutputPaths = []string{cfg.File}
		zapCfg.ErrorOutputPaths = []string{cfg.File}
		if cfg.Format != "json" {
			zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		}
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
