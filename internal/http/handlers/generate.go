package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/jknoll/agentic-orchestration/internal/domain"
)

type generateRequest struct {
	URL string `json:"url"`
}

type generateResponse struct {
	JobID  string      `json:"job_id"`
	Status string      `json:"status"`
	Job    *domain.Job `json:"job,omitempty"`
}

// Generate queues a job for the submitted product URL and returns at once.
func (a *App) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 64<<10)).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}
	productURL := strings.TrimSpace(req.URL)
	if !validProductURL(productURL) {
		a.error(w, http.StatusBadRequest, "bad_request", "url must be an absolute http or https URL")
		return
	}

	if a.demo() {
		job := demoJob(newDemoID(), productURL, a.Now())
		a.insertDemo(job)
		a.json(w, http.StatusAccepted, generateResponse{JobID: job.ID, Status: string(domain.StageQueued), Job: &job})
		return
	}

	jobID := a.Store.Create(productURL)
	a.Logger.Info().Str("job_id", jobID).Str("url", productURL).Msg("handlers: job queued")
	a.Runner.Start(a.BaseCtx, jobID, productURL)
	a.json(w, http.StatusAccepted, generateResponse{JobID: jobID, Status: string(domain.StageQueued)})
}

func validProductURL(raw string) bool {
	if raw == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
