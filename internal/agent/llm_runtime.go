package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jknoll/agentic-orchestration/internal/providers/llm"
)

// Completer is the chat completions call LLMRuntime depends on.
type Completer interface {
	Complete(ctx context.Context, messages []llm.Message, tools []llm.Tool) (*llm.Completion, error)
}

type LLMOptions struct {
	// Fallback runs when the model cannot be reached before a video exists.
	Fallback   Runtime
	OnFallback func(reason string, err error)
}

// LLMRuntime lets a chat model choose the tool calls.
type LLMRuntime struct {
	client     Completer
	fallback   Runtime
	onFallback func(reason string, err error)
}

func NewLLMRuntime(client Completer, opts LLMOptions) *LLMRuntime {
	return &LLMRuntime{client: client, fallback: opts.Fallback, onFallback: opts.OnFallback}
}

func (r *LLMRuntime) Run(ctx context.Context, conv *Conversation) error {
	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: conv.System},
		{Role: llm.RoleUser, Content: conv.User},
	}
	tools := LLMTools(conv.Tools)

	for turn := 1; turn <= conv.maxTurns(); turn++ {
		comp, err := r.client.Complete(ctx, messages, tools)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return r.useFallback(ctx, conv, fmt.Sprintf("turn_%d", turn), err)
		}
		msg := comp.Message
		msg.Role = llm.RoleAssistant
		conv.text(strings.TrimSpace(msg.Content))
		messages = append(messages, msg)
		if len(msg.ToolCalls) == 0 {
			return nil
		}
		for _, tc := range msg.ToolCalls {
			res := conv.Invoke(ctx, ToolCall{
				ID:        tc.ID,
				Name:      ToolName(tc.Function.Name),
				Arguments: json.RawMessage(tc.Function.Arguments),
			})
			messages = append(messages, llm.Message{
				Role:       llm.RoleTool,
				ToolCallID: tc.ID,
				Content:    toolMessage(res),
			})
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	return nil
}

func (r *LLMRuntime) useFallback(ctx context.Context, conv *Conversation, reason string, cause error) error {
	if conv.Done != nil && conv.Done() {
		return nil
	}
	if r.onFallback != nil {
		r.onFallback(reason, cause)
	}
	if r.fallback == nil {
		return fmt.Errorf("agent: llm %s: %w", reason, cause)
	}
	return r.fallback.Run(ctx, conv)
}

func toolMessage(res ToolResult) string {
	text := strings.TrimSpace(res.Text)
	if text == "" {
		text = "(no output)"
	}
	if res.IsError {
		return "ERROR: " + text
	}
	return text
}

var _ Runtime = (*LLMRuntime)(nil)
