package video

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/jknoll/agentic-orchestration/internal/domain"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

// scriptedClient replays poll results in order and repeats the last one.
type scriptedClient struct {
	mu    sync.Mutex
	name  string
	polls []pollStep
	calls int
}

type pollStep struct {
	result *domain.GenerationResult
	err    error
}

func (s *scriptedClient) Name() string { return s.name }

func (s *scriptedClient) Submit(ctx context.Context, req domain.GenerationRequest) (*domain.GenerationResult, error) {
	return &domain.GenerationResult{Provider: s.name, TaskID: "task-1", Status: domain.VideoPending}, nil
}

func (s *scriptedClient) Poll(ctx context.Context, taskID string) (*domain.GenerationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.calls
	if idx >= len(s.polls) {
		idx = len(s.polls) - 1
	}
	s.calls++
	step := s.polls[idx]
	if step.result != nil {
		cp := *step.result
		return &cp, step.err
	}
	return nil, step.err
}

func (s *scriptedClient) pollCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func status(st domain.VideoStatus) pollStep {
	return pollStep{result: &domain.GenerationResult{Provider: "fake", TaskID: "task-1", Status: st}}
}
