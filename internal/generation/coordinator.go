// Package generation fans a single prompt out to every configured video
// provider and aggregates whatever comes back.
package generation

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"golang.org/x/sync/errgroup"

	"github.com/jknoll/agentic-orchestration/internal/domain"
	"github.com/jknoll/agentic-orchestration/internal/infra"
	"github.com/jknoll/agentic-orchestration/internal/providers/video"
)

// LogFunc receives provider progress lines keyed by provider name.
type LogFunc func(source, message string)

// Backend is one provider plus its wait budget.
type Backend struct {
	Client   video.Client
	Prefix   string
	Timeout  time.Duration
	Interval time.Duration
}

func (b Backend) prefix() string {
	if p := slug.Make(b.Prefix); p != "" {
		return p
	}
	return slug.Make(b.Client.Name())
}

type Options struct {
	Backends   []Backend
	OutputDir  string
	HTTPClient *http.Client
	Logger     *infra.Logger
}

type Coordinator struct {
	backends   []Backend
	outputDir  string
	httpClient *http.Client
	logger     *infra.Logger
}

var ErrNoBackends = errors.New("generation: no video providers configured")

func NewCoordinator(opts Options) (*Coordinator, error) {
	if len(opts.Backends) == 0 {
		return nil, ErrNoBackends
	}
	for i, b := range opts.Backends {
		if b.Client == nil {
			return nil, fmt.Errorf("generation: backend %d has no client", i)
		}
		if b.Timeout <= 0 || b.Interval <= 0 {
			return nil, fmt.Errorf("generation: backend %s needs a positive timeout and interval", b.Client.Name())
		}
	}
	outputDir := strings.TrimSpace(opts.OutputDir)
	if outputDir == "" {
		outputDir = "output"
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Minute}
	}
	logger := opts.Logger
	if logger == nil {
		logger = infra.DiscardLogger()
	}
	return &Coordinator{
		backends:   append([]Backend(nil), opts.Backends...),
		outputDir:  outputDir,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// Providers lists the configured provider names in order.
func (c *Coordinator) Providers() []string {
	names := make([]string, 0, len(c.backends))
	for _, b := range c.backends {
		names = append(names, b.Client.Name())
	}
	return names
}

// Generate runs every backend concurrently. A failing backend never cancels
// its siblings; the outcome is decided by Aggregate once all have finished.
func (c *Coordinator) Generate(ctx context.Context, req domain.GenerationRequest, onLog LogFunc) (*Outcome, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, errors.New("generation: prompt is required")
	}
	if onLog == nil {
		onLog = func(string, string) {}
	}
	attempts := make([]Attempt, len(c.backends))
	var g errgroup.Group
	for i, b := range c.backends {
		g.Go(func() error {
			defer func() {
				if p := recover(); p != nil {
					name := b.Client.Name()
					err := fmt.Errorf("panic: %v", p)
					c.logger.Error().Str("provider", name).Interface("panic", p).Msg("generation: provider panicked")
					onLog(name, fmt.Sprintf("Generation failed: %v", err))
					attempts[i] = Attempt{Provider: name, Err: err}
				}
			}()
			attempts[i] = c.run(ctx, b, req, onLog)
			return nil
		})
	}
	_ = g.Wait()
	return Aggregate(attempts)
}

func (c *Coordinator) run(ctx context.Context, b Backend, req domain.GenerationRequest, onLog LogFunc) Attempt {
	name := b.Client.Name()
	started := time.Now()
	fail := func(res *domain.GenerationResult, err error) Attempt {
		onLog(name, fmt.Sprintf("Generation failed: %v", err))
		c.logger.Warn().Err(err).Str("provider", name).Dur("elapsed", time.Since(started)).Msg("generation: provider failed")
		return Attempt{Provider: name, Result: res, Err: err}
	}

	onLog(name, "Submitting video generation request...")
	submitted, err := b.Client.Submit(ctx, req)
	if err != nil {
		return fail(nil, err)
	}
	onLog(name, fmt.Sprintf("Task submitted: %s", submitted.TaskID))

	last := submitted.Status
	res, err := video.Wait(ctx, b.Client, submitted.TaskID, b.Timeout, b.Interval, func(r *domain.GenerationResult) {
		if r.Status != last {
			last = r.Status
			onLog(name, fmt.Sprintf("Status: %s", r.Status))
		}
	})
	if err != nil {
		return fail(res, err)
	}

	onLog(name, "Video ready, downloading...")
	dest := filepath.Join(c.outputDir, c.fileName(b, res.TaskID))
	written, err := video.Download(ctx, c.httpClient, res.VideoURL, dest)
	if err != nil {
		return fail(res, err)
	}
	res.LocalPath = dest
	onLog(name, fmt.Sprintf("Saved to %s", dest))
	c.logger.Info().
		Str("provider", name).
		Str("task_id", res.TaskID).
		Int64("bytes", written).
		Dur("elapsed", time.Since(started)).
		Msg("generation: video saved")
	return Attempt{Provider: name, Result: res}
}

func (c *Coordinator) fileName(b Backend, taskID string) string {
	id := slug.Make(taskID)
	if id == "" {
		id = "task"
	}
	return fmt.Sprintf("%s_%s.mp4", b.prefix(), id)
}
