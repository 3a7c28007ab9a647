package pipeline

import (
	"fmt"
	"strings"

	"github.com/jknoll/agentic-orchestration/internal/agent"
	"github.com/jknoll/agentic-orchestration/internal/domain"
	"github.com/jknoll/agentic-orchestration/internal/jobs"
)

// Progress checkpoints reported while a job runs.
const (
	progressStarted   = 5
	progressMetadata  = 10
	progressPrompt    = 35
	progressVideo     = 50
	progressFinishing = 90
	progressDone      = 100
)

// jobObserver mirrors agent activity into the job record.
type jobObserver struct {
	store jobs.Store
	jobID string
}

func setAgents(fn func(a *domain.AgentStatuses)) jobs.UpdateFunc {
	return func(job *domain.Job) { fn(&job.Agents) }
}

func (o *jobObserver) OnToolCall(name agent.ToolName, args map[string]any) {
	switch name {
	case agent.ToolProductMetadata:
		o.store.AddLog(o.jobID, "Agent", "Fetching product metadata...")
		o.store.Update(o.jobID,
			jobs.RaiseProgress(progressMetadata),
			jobs.WithMessage("Extracting product metadata..."),
			setAgents(func(a *domain.AgentStatuses) { a.Research = domain.AgentActive }),
		)
	case agent.ToolGenerateVideo:
		prompt, _ := args["prompt"].(string)
		o.store.AddLog(o.jobID, "Agent", fmt.Sprintf("Video prompt: %s", preview(prompt, 200)))
		o.store.Update(o.jobID,
			jobs.WithStage(domain.StageGeneratingVideo),
			jobs.RaiseProgress(progressVideo),
			jobs.WithMessage("Generating video with AI providers..."),
			jobs.WithPrompt(prompt),
			setAgents(func(a *domain.AgentStatuses) {
				a.Research = domain.AgentDone
				a.Content = domain.AgentDone
				a.Video = domain.AgentActive
			}),
		)
	case agent.ToolResearchProduct:
		o.store.AddLog(o.jobID, "AgentQL", "Researching product details...")
	default:
		o.store.AddLog(o.jobID, "Agent", fmt.Sprintf("Calling tool %s", name))
	}
}

func (o *jobObserver) OnToolResult(name agent.ToolName, args map[string]any, res agent.ToolResult) {
	if res.IsError {
		o.store.AddLog(o.jobID, "System", preview(res.Text, 300))
	}
	switch name {
	case agent.ToolProductMetadata:
		meta, ok := res.Data.(domain.ProductMetadata)
		if !ok {
			return
		}
		o.store.AddLog(o.jobID, "System", fmt.Sprintf("Found product: %s", meta.Title))
		o.store.Update(o.jobID,
			jobs.WithProduct(meta),
			jobs.WithStage(domain.StageGeneratingPrompt),
			jobs.RaiseProgress(progressPrompt),
			jobs.WithMessage("Creating video prompt..."),
			setAgents(func(a *domain.AgentStatuses) {
				a.Research = domain.AgentDone
				a.Content = domain.AgentActive
			}),
		)
	case agent.ToolGenerateVideo:
		if res.IsError {
			return
		}
		o.store.AddLog(o.jobID, "System", "Video generation finished")
		o.store.Update(o.jobID,
			jobs.RaiseProgress(progressFinishing),
			jobs.WithMessage("Finalizing video..."),
		)
	case agent.ToolResearchProduct:
		if !res.IsError {
			o.store.AddLog(o.jobID, "AgentQL", "Product research complete")
		}
	}
}

func (o *jobObserver) OnLog(source, message string) {
	message = strings.TrimSpace(message)
	if message == "" {
		return
	}
	o.store.AddLog(o.jobID, source, preview(message, 500))
}

func preview(s string, limit int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}

var _ agent.Observer = (*jobObserver)(nil)
