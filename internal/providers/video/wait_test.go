package video

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/jknoll/agentic-orchestration/internal/domain"
)

func TestWaitReturnsCompletedResult(t *testing.T) {
	t.Parallel()
	done := &domain.GenerationResult{Provider: "fake", TaskID: "task-1", Status: domain.VideoCompleted, VideoURL: "https://cdn.example/v.mp4"}
	client := &scriptedClient{name: "fake", polls: []pollStep{
		status(domain.VideoPending),
		status(domain.VideoProcessing),
		{result: done},
	}}

	var seen []domain.VideoStatus
	res, err := Wait(context.Background(), client, "task-1", time.Second, time.Millisecond, func(r *domain.GenerationResult) {
		seen = append(seen, r.Status)
	})
	if err != nil {
		t.Fatalf("Wait returned error: %v", err)
	}
	if res.VideoURL != done.VideoURL {
		t.Fatalf("video url = %q, want %q", res.VideoURL, done.VideoURL)
	}
	if len(seen) != 3 || seen[2] != domain.VideoCompleted {
		t.Fatalf("poll notifications = %v, want 3 ending in completed", seen)
	}
}

func TestWaitFailedTaskIsGenerationFailed(t *testing.T) {
	t.Parallel()
	client := &scriptedClient{name: "fake", polls: []pollStep{
		{result: &domain.GenerationResult{Status: domain.VideoFailed, Error: "content policy"}},
	}}

	_, err := Wait(context.Background(), client, "task-1", time.Second, time.Millisecond, nil)
	var perr *ProviderError
	if !errors.As(err, &perr) {
		t.Fatalf("error = %v, want *ProviderError", err)
	}
	if perr.Kind != KindGenerationFailed {
		t.Fatalf("kind = %s, want generation_failed", perr.Kind)
	}
	if perr.Message != "content policy" {
		t.Fatalf("message = %q, want provider error text", perr.Message)
	}
}

func TestWaitTimeoutBounds(t *testing.T) {
	t.Parallel()
	const (
		timeout  = 120 * time.Millisecond
		interval = 50 * time.Millisecond
		slack    = 80 * time.Millisecond
	)
	client := &scriptedClient{name: "fake", polls: []pollStep{status(domain.VideoProcessing)}}

	start := time.Now()
	_, err := Wait(context.Background(), client, "task-1", timeout, interval, nil)
	elapsed := time.Since(start)

	var perr *ProviderError
	if !errors.As(err, &perr) || perr.Kind != KindTimeout {
		t.Fatalf("error = %v, want timeout ProviderError", err)
	}
	if elapsed < timeout {
		t.Fatalf("returned after %s, before timeout %s", elapsed, timeout)
	}
	if elapsed > timeout+interval+slack {
		t.Fatalf("returned after %s, later than timeout+interval %s", elapsed, timeout+interval)
	}
	if n := client.pollCount(); n < 3 {
		t.Fatalf("poll count = %d, want at least 3", n)
	}
}

func TestWaitRetriesTransientErrors(t *testing.T) {
	t.Parallel()
	client := &scriptedClient{name: "fake", polls: []pollStep{
		{err: &ProviderError{Provider: "fake", Kind: KindServerError, StatusCode: 502, Message: "bad gateway"}},
		{result: &domain.GenerationResult{Status: domain.VideoCompleted, VideoURL: "https://cdn.example/v.mp4"}},
	}}

	res, err := Wait(context.Background(), client, "task-1", time.Second, time.Millisecond, nil)
	if err != nil {
		t.Fatalf("Wait returned error: %v", err)
	}
	if res.Status != domain.VideoCompleted {
		t.Fatalf("status = %s, want completed", res.Status)
	}
}

func TestWaitStopsOnPermanentPollError(t *testing.T) {
	t.Parallel()
	authErr := &ProviderError{Provider: "fake", Kind: KindAuth, StatusCode: 401, Message: "Invalid API key"}
	client := &scriptedClient{name: "fake", polls: []pollStep{{err: authErr}}}

	_, err := Wait(context.Background(), client, "task-1", time.Second, time.Millisecond, nil)
	if !errors.Is(err, authErr) {
		t.Fatalf("error = %v, want auth error", err)
	}
	if client.pollCount() != 1 {
		t.Fatalf("poll count = %d, want 1", client.pollCount())
	}
}

func TestWaitHonoursContextCancellation(t *testing.T) {
	t.Parallel()
	client := &scriptedClient{name: "fake", polls: []pollStep{status(domain.VideoProcessing)}}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := Wait(ctx, client, "task-1", time.Minute, 10*time.Millisecond, nil)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("error = %v, want context deadline", err)
	}
}

func TestWaitRetriesGatewayTimeoutAndTransportErrors(t *testing.T) {
	t.Parallel()
	cases := map[string]func() (*http.Response, error){
		"gateway timeout": func() (*http.Response, error) {
			return jsonResponse(http.StatusGatewayTimeout, `{"message":"upstream timeout"}`), nil
		},
		"connection reset": func() (*http.Response, error) {
			return nil, errors.New("connection reset by peer")
		},
	}
	for name, first := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			var mu sync.Mutex
			calls := 0
			client, err := NewFreePik(Options{
				APIKey: "fp-key",
				HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
					mu.Lock()
					calls++
					n := calls
					mu.Unlock()
					if n == 1 {
						return first()
					}
					return jsonResponse(http.StatusOK, `{"data":{"status":"COMPLETED","generated":["https://cdn/a.mp4"]}}`), nil
				})},
			})
			if err != nil {
				t.Fatalf("NewFreePik: %v", err)
			}

			res, err := Wait(context.Background(), client, "fp-1", time.Second, time.Millisecond, nil)
			if err != nil {
				t.Fatalf("Wait returned error: %v", err)
			}
			if res.Status != domain.VideoCompleted || res.VideoURL != "https://cdn/a.mp4" {
				t.Fatalf("result = %+v, want completed with url", res)
			}
			mu.Lock()
			defer mu.Unlock()
			if calls != 2 {
				t.Fatalf("poll calls = %d, want 2", calls)
			}
		})
	}
}

func TestTransportErrorClassification(t *testing.T) {
	t.Parallel()
	cause := errors.New("dial tcp: connection refused")
	err := transportError(context.Background(), FreePikName, cause)
	var perr *ProviderError
	if !errors.As(err, &perr) || perr.Kind != KindServerError || !perr.Transient() {
		t.Fatalf("error = %v, want transient server_error", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("error should unwrap to the transport cause")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = transportError(ctx, FreePikName, context.Canceled)
	if errors.As(err, &perr) {
		t.Fatalf("cancelled request must not become a ProviderError: %v", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
}
