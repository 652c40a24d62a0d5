package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/DjordjeVuckovic/pref-assess/internal/api/router"
	apiserver "github.com/DjordjeVuckovic/pref-assess/internal/api/server"
	"github.com/DjordjeVuckovic/pref-assess/internal/assessment"
	"github.com/DjordjeVuckovic/pref-assess/internal/judgment"
	"github.com/DjordjeVuckovic/pref-assess/internal/storage"
	"github.com/DjordjeVuckovic/pref-assess/internal/storage/factory"
	"github.com/labstack/echo/v4"
)

func main() {
	slog.SetLogLoggerLevel(slog.LevelDebug)

	appSettings := NewAppConfig()
	cfg, err := appSettings.Load()
	if err != nil {
		slog.Error("Failed to load app configuration", "error", err)
		os.Exit(1)
	}

	sCfg, err := apiserver.LoadConfig()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	backend, err := factory.NewBackend(context.Background(), &cfg.StorageConfig)
	if err != nil {
		slog.Error("Failed to create storage", "error", err)
		os.Exit(1)
	}

	s := apiserver.New(sCfg, backend.Health).
		SetupMiddlewares().
		SetupErrorHandler().
		SetupHealthChecks("/health")

	s.Echo.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, "Assessment API is running")
	})

	if cfg.PoolPath != "" {
		if err := seedPool(s.Context(), backend.Store, cfg.PoolPath); err != nil {
			slog.Error("Failed to seed query pool", "path", cfg.PoolPath, "error", err)
			backend.Release()
			os.Exit(1)
		}
	}

	strategy := assessment.NewBubbleSortStrategy(cfg.Strategy, backend.Store)
	svc := assessment.NewService(backend.Store, strategy)
	router.NewAssessmentRouter(s.Echo, svc, cfg.Strategy.DocServerURLPattern).Bind()
	router.NewPoolRouter(s.Echo, backend.Store).Bind()

	slog.Info("Assessment strategy configured",
		"storage", cfg.StorageConfig.Type,
		"max_per_query", cfg.Strategy.MaxAssessmentsPerQuery,
		"max_per_doc", cfg.Strategy.MaxAssessmentsPerDoc,
		"transitivity", cfg.Strategy.AssumeTransitivity)

	go func() {
		<-s.ShutdownSignal()
		slog.Info("Shutdown started, cleaning up resources...")
	}()

	err = s.Start()
	backend.Release()
	if err != nil {
		slog.Error("Failed to start server", "error", err)
		os.Exit(1)
	}
}

func seedPool(ctx context.Context, store storage.AssignmentStorer, path string) error {
	pf, err := judgment.ReadPoolFile(path)
	if err != nil {
		return err
	}
	saved, err := judgment.ImportPool(ctx, store, pf)
	if err != nil {
		return err
	}
	slog.Info("Query pool seeded", "pool", pf.Name, "queries", len(pf.Queries), "saved", saved)
	return nil
}
