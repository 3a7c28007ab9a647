// Package agent drives a tool-invoking model through the ad workflow: read
// the product page, write a video prompt, generate the video.
package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jknoll/agentic-orchestration/internal/domain"
	"github.com/jknoll/agentic-orchestration/internal/generation"
	"github.com/jknoll/agentic-orchestration/internal/infra"
	"github.com/jknoll/agentic-orchestration/internal/metadata"
	"github.com/jknoll/agentic-orchestration/internal/providers/agentql"
)

var (
	ErrNoMetadata = errors.New("failed to extract product metadata")
	ErrNoVideos   = errors.New("failed to generate any videos")
)

// MetadataSource resolves product metadata. It never fails.
type MetadataSource interface {
	Resolve(ctx context.Context, url string, onProgress metadata.ProgressFunc) domain.ProductMetadata
}

// VideoGenerator renders a prompt with every configured provider.
type VideoGenerator interface {
	Generate(ctx context.Context, req domain.GenerationRequest, onLog generation.LogFunc) (*generation.Outcome, error)
}

// Researcher runs structured product queries.
type Researcher interface {
	ExtractProduct(ctx context.Context, url string, fields []string) (*agentql.Research, error)
}

type Options struct {
	Runtime   Runtime
	Metadata  MetadataSource
	Generator VideoGenerator
	Research  Researcher
	Observer  Observer
	Mode      Mode
	MaxTurns  int
	Logger    *infra.Logger
	// MetadataSource is the log source for extraction progress lines.
	MetadataSource string
}

type Agent struct {
	runtime        Runtime
	metadata       MetadataSource
	generator      VideoGenerator
	research       Researcher
	observer       Observer
	mode           Mode
	maxTurns       int
	logger         *infra.Logger
	metadataSource string
}

// Output is what a successful run produced.
type Output struct {
	Product  domain.ProductMetadata
	Prompt   string
	Outcome  *generation.Outcome
	Research *agentql.Research
}

func New(opts Options) (*Agent, error) {
	if opts.Metadata == nil {
		return nil, errors.New("agent: metadata source is required")
	}
	if opts.Generator == nil {
		return nil, errors.New("agent: video generator is required")
	}
	a := &Agent{
		runtime:        opts.Runtime,
		metadata:       opts.Metadata,
		generator:      opts.Generator,
		research:       opts.Research,
		observer:       opts.Observer,
		mode:           opts.Mode,
		maxTurns:       opts.MaxTurns,
		logger:         opts.Logger,
		metadataSource: strings.TrimSpace(opts.MetadataSource),
	}
	if a.runtime == nil {
		a.runtime = ScriptedRuntime{}
	}
	if a.observer == nil {
		a.observer = NopObserver{}
	}
	if a.maxTurns <= 0 {
		a.maxTurns = DefaultMaxTurns
	}
	if a.logger == nil {
		a.logger = infra.DiscardLogger()
	}
	if a.metadataSource == "" {
		a.metadataSource = "TinyFish"
	}
	return a, nil
}

// Tools lists the tools offered to the runtime.
func (a *Agent) Tools() []ToolSpec {
	tools := []ToolSpec{metadataTool, videoTool}
	if a.research != nil {
		tools = append(tools, researchTool)
	}
	return tools
}

// Generate runs the agent loop for productURL. After the loop it requires
// metadata and at least one generated video.
func (a *Agent) Generate(ctx context.Context, productURL string) (*Output, error) {
	productURL = strings.TrimSpace(productURL)
	if err := validateURL(productURL); err != nil {
		return nil, fmt.Errorf("agent: %w", err)
	}
	s := &session{agent: a, productURL: productURL}
	conv := &Conversation{
		System:     BuildSystemPrompt(a.mode, a.research != nil),
		User:       BuildUserPrompt(productURL),
		ProductURL: productURL,
		Mode:       a.mode,
		Tools:      a.Tools(),
		MaxTurns:   a.maxTurns,
		Invoke:     s.invoke,
		Done:       func() bool { return s.outcome != nil },
		OnText:     func(text string) { a.observer.OnLog("Agent", text) },
	}

	runErr := a.runtime.Run(ctx, conv)
	if runErr != nil {
		a.logger.Warn().Err(runErr).Str("url", productURL).Msg("agent: runtime stopped with error")
	}
	switch {
	case s.product == nil:
		if runErr != nil {
			return nil, fmt.Errorf("%w: %w", ErrNoMetadata, runErr)
		}
		return nil, ErrNoMetadata
	case s.outcome == nil:
		cause := s.genErr
		if cause == nil {
			cause = runErr
		}
		if cause != nil {
			return nil, fmt.Errorf("%w: %w", ErrNoVideos, cause)
		}
		return nil, ErrNoVideos
	}
	return &Output{
		Product:  *s.product,
		Prompt:   s.prompt,
		Outcome:  s.outcome,
		Research: s.research,
	}, nil
}

// session is the per-run tool state. Runtimes call Invoke sequentially.
type session struct {
	agent      *Agent
	productURL string

	product  *domain.ProductMetadata
	research *agentql.Research
	prompt   string
	outcome  *generation.Outcome
	genErr   error
}

func (s *session) invoke(ctx context.Context, call ToolCall) ToolResult {
	args := argsMap(call.Arguments)
	s.agent.observer.OnToolCall(call.Name, args)
	res := s.execute(ctx, call)
	s.agent.observer.OnToolResult(call.Name, args, res)
	return res
}

func (s *session) execute(ctx context.Context, call ToolCall) (res ToolResult) {
	defer func() {
		if r := recover(); r != nil {
			s.agent.logger.Error().Interface("panic", r).Str("tool", string(call.Name)).Msg("agent: tool panicked")
			res = errorResult("Tool %s crashed: %v", call.Name, r)
		}
	}()
	switch call.Name {
	case ToolProductMetadata:
		return s.productMetadata(ctx, call.Arguments)
	case ToolGenerateVideo:
		return s.generateVideo(ctx, call.Arguments)
	case ToolResearchProduct:
		if s.agent.research != nil {
			return s.researchProduct(ctx, call.Arguments)
		}
	}
	return errorResult("Unknown tool: %s", call.Name)
}

func (s *session) productMetadata(ctx context.Context, raw json.RawMessage) ToolResult {
	args, err := decodeArgs[MetadataArgs](raw)
	if err != nil {
		return errorResult("Invalid arguments for %s: %v", ToolProductMetadata, err)
	}
	url := strings.TrimSpace(args.URL)
	meta := s.agent.metadata.Resolve(ctx, url, func(msg string) {
		s.agent.observer.OnLog(s.agent.metadataSource, msg)
	})
	if ctx.Err() != nil {
		return errorResult("Metadata extraction cancelled: %v", ctx.Err())
	}

	note := ""
	if meta.Title == "" || meta.Title == metadata.UnknownTitle {
		fb := metadata.Fallback(url)
		meta.Title = fb.Title
		if meta.Brand == "" {
			meta.Brand = fb.Brand
		}
		note = fmt.Sprintf("The page did not expose product details. Using fallback data from URL: %s\n", meta.Title)
	}
	if meta.URL == "" {
		meta.URL = url
	}
	s.product = &meta

	body, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return errorResult("Error encoding metadata: %v", err)
	}
	return ToolResult{Text: note + string(body), Data: meta}
}

func (s *session) generateVideo(ctx context.Context, raw json.RawMessage) ToolResult {
	if s.outcome != nil {
		return errorResult("A video was already generated for this product. Summarize the result instead of generating another.")
	}
	args, err := decodeArgs[VideoArgs](raw)
	if err != nil {
		return errorResult("Invalid arguments for %s: %v", ToolGenerateVideo, err)
	}
	prompt := strings.TrimSpace(args.Prompt)
	if n := len([]rune(prompt)); n > maxPromptChars {
		s.agent.logger.Warn().Int("chars", n).Msg("agent: video prompt exceeds recommended length")
	}
	req := domain.DefaultGenerationRequest(prompt)
	switch {
	case args.ShotType != "":
		req.ShotType = domain.ShotType(args.ShotType)
	case s.agent.mode.MultiShot:
		req.ShotType = domain.ShotMulti
	}
	s.prompt = prompt

	outcome, err := s.agent.generator.Generate(ctx, req, func(source, message string) {
		s.agent.observer.OnLog(source, message)
	})
	if err != nil {
		s.genErr = err
		res := errorResult("%s", capitalize(err.Error()))
		res.Data = err
		return res
	}
	s.outcome = outcome
	s.genErr = nil
	return ToolResult{Text: describeOutcome(outcome), Data: outcome}
}

func (s *session) researchProduct(ctx context.Context, raw json.RawMessage) ToolResult {
	args, err := decodeArgs[ResearchArgs](raw)
	if err != nil {
		return errorResult("Invalid arguments for %s: %v", ToolResearchProduct, err)
	}
	research, err := s.agent.research.ExtractProduct(ctx, strings.TrimSpace(args.URL), args.FieldList())
	if err != nil {
		return errorResult("Error researching product: %v", err)
	}
	s.research = research
	body, err := json.MarshalIndent(research, "", "  ")
	if err != nil {
		return errorResult("Error encoding research: %v", err)
	}
	return ToolResult{Text: string(body), Data: research}
}

func describeOutcome(o *generation.Outcome) string {
	var sb strings.Builder
	sb.WriteString("Video generation completed!\n")
	for _, r := range o.Results {
		fmt.Fprintf(&sb, "\n%s:\n  Task ID: %s\n  Status: %s\n  Saved to: %s\n", r.Provider, r.TaskID, r.Status, r.LocalPath)
	}
	if len(o.Warnings) > 0 {
		fmt.Fprintf(&sb, "\nWarnings: %s\n", strings.Join(o.Warnings, "; "))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
