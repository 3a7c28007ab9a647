package video

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jknoll/agentic-orchestration/internal/domain"
)

// PollFunc is notified after every status check Wait performs.
type PollFunc func(result *domain.GenerationResult)

// Wait polls c until the task completes, fails, or timeout elapses. It sleeps
// interval between polls, so a timeout is reported no earlier than timeout and
// no later than timeout+interval plus the latency of one poll. Transient poll
// errors (rate limits, 5xx, gateway and transport timeouts, dropped connections)
// are retried on the next tick.
func Wait(ctx context.Context, c Client, taskID string, timeout, interval time.Duration, onPoll PollFunc) (*domain.GenerationResult, error) {
	if interval <= 0 {
		interval = time.Second
	}
	deadline := time.Now().Add(timeout)
	timer := time.NewTimer(interval)
	defer timer.Stop()

	var lastErr error
	for {
		res, err := c.Poll(ctx, taskID)
		switch {
		case err != nil:
			var perr *ProviderError
			if !errors.As(err, &perr) || !perr.Transient() {
				return nil, err
			}
			lastErr = err
		case res.Status == domain.VideoCompleted:
			if onPoll != nil {
				onPoll(res)
			}
			return res, nil
		case res.Status == domain.VideoFailed:
			if onPoll != nil {
				onPoll(res)
			}
			msg := res.Error
			if msg == "" {
				msg = "video generation failed"
			}
			return res, &ProviderError{Provider: c.Name(), Kind: KindGenerationFailed, Message: msg}
		default:
			lastErr = nil
			if onPoll != nil {
				onPoll(res)
			}
		}

		if !time.Now().Before(deadline) {
			msg := fmt.Sprintf("timed out waiting for task %s after %s", taskID, timeout)
			if lastErr != nil {
				msg += ": last error: " + lastErr.Error()
			}
			return nil, &ProviderError{Provider: c.Name(), Kind: KindTimeout, Message: msg}
		}

		timer.Reset(interval)
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%s: wait for task %s: %w", c.Name(), taskID, ctx.Err())
		case <-timer.C:
		}
	}
}
