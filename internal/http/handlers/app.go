// Package handlers implements the AdFlow HTTP API on top of the job store.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/jknoll/agentic-orchestration/internal/infra"
	"github.com/jknoll/agentic-orchestration/internal/jobs"
	"github.com/jknoll/agentic-orchestration/internal/storage"
)

// JobStarter launches background generation for a stored job.
type JobStarter interface {
	Start(ctx context.Context, jobID, productURL string)
}

type App struct {
	Store   jobs.Store
	Files   *storage.FileStore
	Runner  JobStarter
	Profile string
	Logger  *infra.Logger
	// BaseCtx outlives individual requests; background jobs derive from it.
	BaseCtx context.Context
	Now     func() time.Time
}

func NewApp(store jobs.Store, files *storage.FileStore, runner JobStarter, cfg *infra.Config, logger *infra.Logger) *App {
	if logger == nil {
		logger = infra.DiscardLogger()
	}
	return &App{
		Store:   store,
		Files:   files,
		Runner:  runner,
		Profile: cfg.Profile,
		Logger:  logger,
		BaseCtx: context.Background(),
		Now:     func() time.Time { return time.Now().UTC() },
	}
}

func (a *App) demo() bool {
	return a.Profile == infra.ProfileDemo
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, kind, detail string) {
	a.json(w, code, map[string]string{"error": kind, "detail": detail})
}
