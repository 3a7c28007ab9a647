package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/jknoll/agentic-orchestration/internal/http/handlers"
	httpapi "github.com/jknoll/agentic-orchestration/internal/http/httpapi"
	"github.com/jknoll/agentic-orchestration/internal/infra"
	"github.com/jknoll/agentic-orchestration/internal/jobs"
	"github.com/jknoll/agentic-orchestration/internal/pipeline"
	"github.com/jknoll/agentic-orchestration/internal/storage"
)

const shutdownGrace = 15 * time.Second

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	store := jobs.NewMemoryStore(jobs.WithLogger(infra.Component(&logger, "jobs")))
	files, err := storage.NewFileStore(cfg.OutputDir)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to prepare output directory")
	}

	var starter handlers.JobStarter
	var runner *pipeline.Runner
	if cfg.Profile == infra.ProfileFull {
		runner, err = pipeline.NewRunner(pipeline.Options{
			Store:    store,
			Files:    files,
			NewAgent: pipeline.NewAgentFactory(cfg, infra.Component(&logger, "agent")),
			Metrics:  pipeline.NewMetrics(registry),
			Logger:   infra.Component(&logger, "pipeline"),
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to build pipeline")
		}
		starter = runner
	}

	app := handlers.NewApp(store, files, starter, cfg, infra.Component(&logger, "http"))
	app.BaseCtx = ctx

	router := httpapi.NewRouter(app, httpapi.Options{
		CORSOrigins:     cfg.CORSOrigins,
		RateLimitPerMin: cfg.RateLimitPerMin,
		Gatherer:        registry,
		Logger:          &logger,
	})

	logger.Info().
		Str("profile", cfg.Profile).
		Str("output_dir", files.BasePath()).
		Bool("veo3", cfg.EnableVeo3).
		Msg("AdFlow API starting")

	server := infra.NewHTTPServer(cfg, router, &logger)
	if err := server.Run(ctx, shutdownGrace); err != nil {
		logger.Error().Err(err).Msg("http server failed")
	}
	if runner != nil {
		logger.Info().Msg("waiting for running jobs")
		runner.Wait()
	}
	logger.Info().Msg("server stopped")
}
