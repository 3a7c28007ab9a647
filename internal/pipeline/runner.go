// Package pipeline runs ad generation jobs in the background and mirrors
// their progress into the job store.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jknoll/agentic-orchestration/internal/agent"
	"github.com/jknoll/agentic-orchestration/internal/domain"
	"github.com/jknoll/agentic-orchestration/internal/infra"
	"github.com/jknoll/agentic-orchestration/internal/jobs"
	"github.com/jknoll/agentic-orchestration/internal/storage"
)

type Options struct {
	Store    jobs.Store
	Files    *storage.FileStore
	NewAgent AgentFactory
	Metrics  *Metrics
	Logger   *infra.Logger
	Now      func() time.Time
}

// Runner executes jobs. Start returns immediately; Wait blocks until every
// started job has been finalized.
type Runner struct {
	store    jobs.Store
	files    *storage.FileStore
	newAgent AgentFactory
	metrics  *Metrics
	logger   *infra.Logger
	now      func() time.Time
	wg       sync.WaitGroup
}

func NewRunner(opts Options) (*Runner, error) {
	if opts.Store == nil {
		return nil, errors.New("pipeline: job store is required")
	}
	if opts.Files == nil {
		return nil, errors.New("pipeline: file store is required")
	}
	if opts.NewAgent == nil {
		return nil, errors.New("pipeline: agent factory is required")
	}
	r := &Runner{
		store:    opts.Store,
		files:    opts.Files,
		newAgent: opts.NewAgent,
		metrics:  opts.Metrics,
		logger:   opts.Logger,
		now:      opts.Now,
	}
	if r.logger == nil {
		r.logger = infra.DiscardLogger()
	}
	if r.now == nil {
		r.now = time.Now
	}
	return r, nil
}

// Start runs the job in its own goroutine.
func (r *Runner) Start(ctx context.Context, jobID, productURL string) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		_, _ = r.Run(ctx, jobID, productURL)
	}()
}

// Wait blocks until all started jobs have finished.
func (r *Runner) Wait() {
	r.wg.Wait()
}

// Run executes one job synchronously. The job always ends completed or
// failed, panics included.
func (r *Runner) Run(ctx context.Context, jobID, productURL string) (out *agent.Output, err error) {
	started := r.now()
	r.metrics.jobStarted()
	logger := r.logger.With().Str("job_id", jobID).Logger()
	defer func() {
		if p := recover(); p != nil {
			logger.Error().Interface("panic", p).Msg("pipeline: job panicked")
			out, err = nil, fmt.Errorf("internal error: %v", p)
		}
		outcome := "completed"
		if err != nil {
			outcome = "failed"
			r.fail(jobID, err)
			logger.Warn().Err(err).Msg("pipeline: job failed")
		}
		r.metrics.jobFinished(outcome, r.now().Sub(started))
	}()

	r.store.Update(jobID,
		jobs.WithStage(domain.StageExtractingMetadata),
		jobs.RaiseProgress(progressStarted),
		jobs.WithMessage("Starting generation..."),
		jobs.WithAgents(domain.AgentStatuses{Research: domain.AgentActive, Content: domain.AgentStandby, Video: domain.AgentStandby}),
	)
	r.store.AddLog(jobID, "System", fmt.Sprintf("Starting video generation for: %s", productURL))

	dir, err := r.files.JobDir(jobID)
	if err != nil {
		return nil, err
	}
	observer := agent.Observers{
		&jobObserver{store: r.store, jobID: jobID},
		metricsObserver{m: r.metrics},
	}
	gen, err := r.newAgent(dir, observer)
	if err != nil {
		return nil, err
	}
	out, err = gen.Generate(ctx, productURL)
	if err != nil {
		return nil, err
	}
	primary := out.Outcome.Primary()
	if primary == nil {
		return nil, agent.ErrNoVideos
	}

	for _, w := range out.Outcome.Warnings {
		r.store.AddLog(jobID, "System", "Warning: "+w)
	}
	if err := WriteSummary(ctx, r.files, jobID, out, r.now()); err != nil {
		logger.Warn().Err(err).Msg("pipeline: summary not written")
	}
	r.store.AddLog(jobID, "System", fmt.Sprintf("Video saved: %s", primary.LocalPath))
	r.store.Update(jobID,
		jobs.WithProduct(out.Product),
		jobs.WithPrompt(out.Prompt),
		jobs.WithVideos(primary.LocalPath, out.Outcome.Results),
		jobs.WithWarnings(out.Outcome.Warnings),
		jobs.WithStage(domain.StageCompleted),
		jobs.WithProgress(progressDone),
		jobs.WithMessage("Video generation complete!"),
		jobs.WithAgents(domain.AllAgents(domain.AgentDone)),
	)
	logger.Info().
		Str("provider", primary.Provider).
		Str("video_path", primary.LocalPath).
		Dur("elapsed", r.now().Sub(started)).
		Msg("pipeline: job completed")
	return out, nil
}

func (r *Runner) fail(jobID string, err error) {
	r.store.AddLog(jobID, "System", fmt.Sprintf("Error: %v", err))
	r.store.Update(jobID,
		jobs.WithStage(domain.StageFailed),
		jobs.WithProgress(0),
		jobs.WithMessage("Generation failed"),
		jobs.WithError(err.Error()),
		jobs.WithAgents(domain.AllAgents(domain.AgentFailed)),
	)
}
