package agent

import (
	"context"
	"fmt"

	"github.com/jknoll/agentic-orchestration/internal/domain"
	"github.com/jknoll/agentic-orchestration/internal/metadata"
)

// DefaultMaxTurns bounds how many model turns one run may take.
const DefaultMaxTurns = 10

// Conversation is everything a Runtime needs to drive one run.
type Conversation struct {
	System     string
	User       string
	ProductURL string
	Mode       Mode
	Tools      []ToolSpec
	MaxTurns   int

	// Invoke executes a tool call. It never panics and never returns an
	// error; failures come back as results with IsError set.
	Invoke func(ctx context.Context, call ToolCall) ToolResult
	// Done reports whether a video has already been generated.
	Done func() bool
	// OnText receives free text the model writes between tool calls.
	OnText func(text string)
}

func (c *Conversation) maxTurns() int {
	if c.MaxTurns <= 0 {
		return DefaultMaxTurns
	}
	return c.MaxTurns
}

func (c *Conversation) text(s string) {
	if c.OnText != nil && s != "" {
		c.OnText(s)
	}
}

// Runtime decides which tools to call and in what order. Returning nil does
// not mean success: the Agent inspects what the tools produced.
type Runtime interface {
	Run(ctx context.Context, conv *Conversation) error
}

// ScriptedRuntime follows the fixed workflow without a model: fetch
// metadata, write a template prompt, generate.
type ScriptedRuntime struct{}

func (ScriptedRuntime) Run(ctx context.Context, conv *Conversation) error {
	res := conv.Invoke(ctx, ToolCall{
		ID:        "scripted-1",
		Name:      ToolProductMetadata,
		Arguments: encodeArgs(MetadataArgs{URL: conv.ProductURL}),
	})
	if err := ctx.Err(); err != nil {
		return err
	}
	meta, ok := res.Data.(domain.ProductMetadata)
	if !ok {
		meta = metadata.Fallback(conv.ProductURL)
	}
	if conv.maxTurns() < 2 {
		return nil
	}

	prompt := BuildAdPrompt(meta, conv.Mode)
	conv.text(fmt.Sprintf("Video prompt: %s", prompt))
	args := VideoArgs{Prompt: prompt, ShotType: string(domain.ShotSingle)}
	if conv.Mode.MultiShot {
		args.ShotType = string(domain.ShotMulti)
	}
	conv.Invoke(ctx, ToolCall{ID: "scripted-2", Name: ToolGenerateVideo, Arguments: encodeArgs(args)})
	return ctx.Err()
}

var _ Runtime = ScriptedRuntime{}
