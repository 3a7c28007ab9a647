package jobs

import "github.com/jknoll/agentic-orchestration/internal/domain"

func WithStage(stage domain.Stage) UpdateFunc {
	return func(job *domain.Job) { job.Stage = stage }
}

// WithProgress clamps pct to 0..100.
func WithProgress(pct int) UpdateFunc {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	return func(job *domain.Job) { job.ProgressPercent = pct }
}

func WithMessage(msg string) UpdateFunc {
	return func(job *domain.Job) { job.Message = msg }
}

func WithError(msg string) UpdateFunc {
	return func(job *domain.Job) { job.Error = msg }
}

func WithAgents(agents domain.AgentStatuses) UpdateFunc {
	return func(job *domain.Job) { job.Agents = agents }
}

// WithProduct attaches a snapshot; later changes to product are not visible.
func WithProduct(product domain.ProductMetadata) UpdateFunc {
	snapshot := product.Clone()
	return func(job *domain.Job) { job.Product = &snapshot }
}

func WithPrompt(prompt string) UpdateFunc {
	return func(job *domain.Job) { job.VideoPrompt = prompt }
}

// WithVideos records every successful provider result and the primary local path.
func WithVideos(primaryPath string, videos []domain.GenerationResult) UpdateFunc {
	cp := append([]domain.GenerationResult(nil), videos...)
	return func(job *domain.Job) {
		job.VideoPath = primaryPath
		job.Videos = cp
	}
}

func WithWarnings(warnings []string) UpdateFunc {
	cp := append([]string(nil), warnings...)
	return func(job *domain.Job) { job.Warnings = cp }
}

// RaiseProgress moves progress forward to pct and never backwards.
func RaiseProgress(pct int) UpdateFunc {
	set := WithProgress(pct)
	return func(job *domain.Job) {
		if pct > job.ProgressPercent {
			set(job)
		}
	}
}
