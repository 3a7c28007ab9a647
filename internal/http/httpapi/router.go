package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jknoll/agentic-orchestration/internal/http/handlers"
	"github.com/jknoll/agentic-orchestration/internal/infra"
	"github.com/jknoll/agentic-orchestration/internal/middleware"
)

// Options tunes the router. A nil Gatherer leaves /metrics unmounted.
type Options struct {
	CORSOrigins     []string
	RateLimitPerMin int
	Gatherer        prometheus.Gatherer
	Logger          *infra.Logger
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = infra.DiscardLogger()
	}
	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(*logger),
		middleware.CORS(origins),
	)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", app.Health)
		r.With(middleware.RateLimit(opts.RateLimitPerMin, time.Minute)).Post("/generate", app.Generate)
		r.Get("/status/{job_id}", app.Status)
		r.Get("/jobs", app.ListJobs)
		r.Get("/download/{job_id}", app.Download)
		r.Get("/bundle/{job_id}", app.Bundle)
		r.Get("/video/{job_id}/{filename}", app.Video)
	})

	if opts.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}

	return r
}
