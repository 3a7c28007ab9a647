package handlers

import (
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"path"

	"github.com/go-chi/chi/v5"

	"github.com/jknoll/agentic-orchestration/internal/domain"
	"github.com/jknoll/agentic-orchestration/pkg/zip"
)

// Bundle streams every artifact of a completed job as one zip archive.
func (a *App) Bundle(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "job_id")
	job, ok := a.Store.Get(jobID)
	if !ok {
		a.error(w, http.StatusNotFound, "not_found", "Job not found")
		return
	}
	if job.Stage != domain.StageCompleted {
		a.error(w, http.StatusConflict, "not_ready", "Job has not completed")
		return
	}
	keys, err := a.Files.List(job.ID)
	if err != nil || len(keys) == 0 {
		a.error(w, http.StatusNotFound, "not_found", "No files for job")
		return
	}

	entries := make([]zip.Entry, 0, len(keys))
	for _, key := range keys {
		entries = append(entries, zip.Entry{
			Name: path.Base(key),
			Open: func() (io.ReadCloser, fs.FileInfo, error) { return a.Files.Open(key) },
		})
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="adflow_%s.zip"`, job.ID))
	if err := zip.Write(w, entries); err != nil {
		// Headers are already sent; the client sees a truncated archive.
		a.Logger.Warn().Err(err).Str("job_id", job.ID).Msg("handlers: bundle")
	}
}
