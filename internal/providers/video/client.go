// Package video talks to the hosted text-to-video providers. Each provider is
// an asynchronous job API: Submit returns a task id, Poll reports progress,
// and Wait and Download finish the job the same way for every provider.
package video

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jknoll/agentic-orchestration/internal/domain"
	"github.com/jknoll/agentic-orchestration/internal/infra"
)

// ErrMissingAPIKey indicates that a provider was configured without credentials.
var ErrMissingAPIKey = errors.New("video: api key is required")

// Client is one text-to-video backend.
type Client interface {
	Name() string
	Submit(ctx context.Context, req domain.GenerationRequest) (*domain.GenerationResult, error)
	Poll(ctx context.Context, taskID string) (*domain.GenerationResult, error)
}

// Options holds the settings shared by every provider constructor.
type Options struct {
	APIKey         string
	BaseURL        string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
}

func (o Options) apiKey() string {
	return strings.TrimSpace(o.APIKey)
}

func (o Options) baseURL(fallback string) string {
	base := strings.TrimRight(strings.TrimSpace(o.BaseURL), "/")
	if base == "" {
		return fallback
	}
	return base
}

func (o Options) httpClient(defaultTimeout time.Duration) *http.Client {
	if o.HTTPClient != nil {
		return o.HTTPClient
	}
	timeout := o.RequestTimeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

func (o Options) logger() *infra.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return infra.DiscardLogger()
}

// readBody reads a small JSON response, capped at 1 MiB.
func readBody(r io.Reader) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r, 1<<20))
}
