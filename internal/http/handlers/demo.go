package handlers

import (
	"time"

	"github.com/jknoll/agentic-orchestration/internal/domain"
	"github.com/jknoll/agentic-orchestration/internal/jobs"
)

const (
	demoMessage = "Demo mode - Full generation requires local server"
	demoError   = "Vercel serverless has timeout limits. Run locally for full video generation."
)

func newDemoID() string {
	return jobs.NewJobID()
}

// demoJob is the placeholder stored by the demo profile. It is terminal from
// the start so pollers stop immediately.
func demoJob(id, productURL string, now time.Time) domain.Job {
	return domain.Job{
		ID:              id,
		ProductURL:      productURL,
		Stage:           domain.StageDemo,
		ProgressPercent: 0,
		Message:         demoMessage,
		Error:           demoError,
		Agents:          domain.NewAgentStatuses(),
		Logs: []domain.LogEntry{
			{Timestamp: now, Source: "System", Message: "Job created (demo mode)"},
			{Timestamp: now, Source: "System", Message: "Full generation requires local server"},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

type inserter interface {
	Insert(job domain.Job)
}

func (a *App) insertDemo(job domain.Job) {
	if s, ok := a.Store.(inserter); ok {
		s.Insert(job)
	}
}
