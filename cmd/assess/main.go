package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/DjordjeVuckovic/pref-assess/internal/judgment"
	"github.com/DjordjeVuckovic/pref-assess/internal/storage"
	"github.com/DjordjeVuckovic/pref-assess/internal/storage/factory"
	"github.com/DjordjeVuckovic/pref-assess/internal/storage/pg"
)

func main() {
	cfg := parseFlags()
	if err := cfg.validate(); err != nil {
		slog.Error("Invalid arguments", "error", err)
		os.Exit(1)
	}

	if err := run(context.Background(), cfg); err != nil {
		slog.Error("Run failed", "mode", cfg.Mode, "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg cliConfig) error {
	backend, err := factory.NewBackend(ctx, &factory.StorageConfig{
		Type: storage.PG,
		Pg:   &pg.PoolConfig{ConnStr: cfg.PgConnStr},
	})
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer backend.Release()

	switch cfg.Mode {
	case "import":
		return runImport(ctx, cfg, backend.Store)
	case "export":
		return runExport(ctx, cfg, backend.Store)
	default:
		return fmt.Errorf("unknown mode %q", cfg.Mode)
	}
}

func runImport(ctx context.Context, cfg cliConfig, store storage.AssignmentStorer) error {
	pf, err := judgment.ReadPoolFile(cfg.PoolPath)
	if err != nil {
		return err
	}

	saved, err := judgment.ImportPool(ctx, store, pf)
	if err != nil {
		return err
	}
	slog.Info("Pool imported", "pool", pf.Name, "queries", len(pf.Queries), "saved", saved)
	return nil
}

func runExport(ctx context.Context, cfg cliConfig, src judgment.Source) error {
	jf, err := judgment.Export(ctx, src, time.Now().UTC())
	if err != nil {
		return err
	}
	if err := judgment.WriteJudgmentFile(jf, cfg.Output); err != nil {
		return err
	}
	slog.Info("Judgments exported", "assignments", len(jf.Assignments), "path", cfg.Output)
	return nil
}
