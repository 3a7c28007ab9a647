package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/jknoll/agentic-orchestration/internal/storage"
)

// Download streams the job's primary video as an attachment.
func (a *App) Download(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "job_id")
	job, ok := a.Store.Get(jobID)
	if !ok {
		a.error(w, http.StatusNotFound, "not_found", "Job not found")
		return
	}
	if job.VideoPath == "" || !a.Files.Contains(job.VideoPath) {
		a.error(w, http.StatusNotFound, "not_found", "Video not available")
		return
	}
	f, err := os.Open(job.VideoPath)
	if err != nil {
		a.error(w, http.StatusNotFound, "not_found", "Video file not found")
		return
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil || !info.Mode().IsRegular() {
		a.error(w, http.StatusNotFound, "not_found", "Video file not found")
		return
	}
	w.Header().Set("Content-Type", "video/mp4")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="adflow_%s.mp4"`, job.ID))
	http.ServeContent(w, r, "", info.ModTime(), f)
}

// Video streams a named file from the job's output directory.
func (a *App) Video(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "job_id")
	filename := chi.URLParam(r, "filename")
	if _, ok := a.Store.Get(jobID); !ok {
		a.error(w, http.StatusNotFound, "not_found", "Job not found")
		return
	}
	if filename == "" || strings.ContainsAny(filename, `/\`) || filename == "." || filename == ".." {
		a.error(w, http.StatusNotFound, "not_found", "File not found")
		return
	}
	f, info, err := a.Files.Open(path.Join(jobID, filename))
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			a.Logger.Warn().Err(err).Str("job_id", jobID).Str("file", filename).Msg("handlers: open video")
		}
		a.error(w, http.StatusNotFound, "not_found", "File not found")
		return
	}
	defer f.Close()
	if strings.EqualFold(path.Ext(filename), ".mp4") {
		w.Header().Set("Content-Type", "video/mp4")
	}
	http.ServeContent(w, r, filename, info.ModTime(), f)
}
