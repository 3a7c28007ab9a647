package pipeline

import (
	"context"
	"fmt"

	"github.com/jknoll/agentic-orchestration/internal/agent"
	"github.com/jknoll/agentic-orchestration/internal/generation"
	"github.com/jknoll/agentic-orchestration/internal/infra"
	"github.com/jknoll/agentic-orchestration/internal/metadata"
	"github.com/jknoll/agentic-orchestration/internal/providers/agentql"
	"github.com/jknoll/agentic-orchestration/internal/providers/llm"
	"github.com/jknoll/agentic-orchestration/internal/providers/tinyfish"
	"github.com/jknoll/agentic-orchestration/internal/providers/video"
)

// Generator runs one ad generation.
type Generator interface {
	Generate(ctx context.Context, productURL string) (*agent.Output, error)
}

// AgentFactory builds a fresh Generator for one job. Videos land in outputDir.
type AgentFactory func(outputDir string, observer agent.Observer) (Generator, error)

// NewAgentFactory wires provider clients from cfg. Every call builds its own
// clients so jobs share nothing but the job store.
func NewAgentFactory(cfg *infra.Config, logger *infra.Logger) AgentFactory {
	return func(outputDir string, observer agent.Observer) (Generator, error) {
		mode, err := agent.ParseMode(cfg.VideoMode)
		if err != nil {
			return nil, err
		}
		backends, err := buildBackends(cfg, logger)
		if err != nil {
			return nil, err
		}
		coord, err := generation.NewCoordinator(generation.Options{
			Backends:  backends,
			OutputDir: outputDir,
			Logger:    infra.Component(logger, "generation"),
		})
		if err != nil {
			return nil, err
		}

		var ai metadata.Extractor
		if cfg.MinoAPIKey != "" {
			tf, err := tinyfish.NewClient(tinyfish.Options{
				APIKey:  cfg.MinoAPIKey,
				BaseURL: cfg.MinoBaseURL,
				Logger:  infra.Component(logger, "tinyfish"),
			})
			if err != nil {
				return nil, err
			}
			ai = tf
		}
		resolver := metadata.NewResolver(metadata.Options{AI: ai, Logger: infra.Component(logger, "metadata")})

		opts := agent.Options{
			Runtime:   agent.ScriptedRuntime{},
			Metadata:  resolver,
			Generator: coord,
			Observer:  observer,
			Mode:      mode,
			MaxTurns:  cfg.AgentMaxTurns,
			Logger:    infra.Component(logger, "agent"),
		}
		if cfg.AgentQLAPIKey != "" {
			research, err := agentql.NewClient(agentql.Options{
				APIKey:   cfg.AgentQLAPIKey,
				Endpoint: cfg.AgentQLURL,
				Logger:   infra.Component(logger, "agentql"),
			})
			if err != nil {
				return nil, err
			}
			opts.Research = research
		}
		if cfg.LLMAPIKey != "" {
			client, err := llm.NewClient(llm.Options{
				APIKey:  cfg.LLMAPIKey,
				BaseURL: cfg.LLMBaseURL,
				Model:   cfg.LLMModel,
				Logger:  infra.Component(logger, "llm"),
			})
			if err != nil {
				return nil, err
			}
			agentLogger := opts.Logger
			opts.Runtime = agent.NewLLMRuntime(client, agent.LLMOptions{
				Fallback: agent.ScriptedRuntime{},
				OnFallback: func(reason string, err error) {
					agentLogger.Warn().Err(err).Str("reason", reason).Msg("agent: llm unavailable, using scripted workflow")
					observer.OnLog("System", "Language model unavailable, continuing with the built-in workflow")
				},
			})
		}
		a, err := agent.New(opts)
		if err != nil {
			return nil, err
		}
		return a, nil
	}
}

func buildBackends(cfg *infra.Config, logger *infra.Logger) ([]generation.Backend, error) {
	var backends []generation.Backend
	if cfg.FreePikAPIKey != "" {
		fp, err := video.NewFreePik(video.Options{
			APIKey:  cfg.FreePikAPIKey,
			BaseURL: cfg.FreePikBaseURL,
			Logger:  infra.Component(logger, "freepik"),
		})
		if err != nil {
			return nil, err
		}
		backends = append(backends, generation.Backend{
			Client:   fp,
			Prefix:   "freepik",
			Timeout:  cfg.FreePikTimeout,
			Interval: video.FreePikDefaultInterval,
		})
	}
	if cfg.EnableVeo3 {
		kie, err := video.NewKie(video.KieOptions{
			Options: video.Options{
				APIKey:  cfg.KieAPIKey,
				BaseURL: cfg.KieBaseURL,
				Logger:  infra.Component(logger, "kie"),
			},
			Quality: cfg.Veo3Quality,
		})
		if err != nil {
			return nil, err
		}
		backends = append(backends, generation.Backend{
			Client:   kie,
			Prefix:   "veo3",
			Timeout:  cfg.KieTimeout,
			Interval: video.KieDefaultInterval,
		})
	}
	if len(backends) == 0 {
		return nil, fmt.Errorf("pipeline: %w", generation.ErrNoBackends)
	}
	return backends, nil
}
