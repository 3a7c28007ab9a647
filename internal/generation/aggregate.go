package generation

import (
	"fmt"
	"strings"

	"github.com/jknoll/agentic-orchestration/internal/domain"
)

// Attempt is what one provider produced. Err is nil only for a downloaded,
// completed video.
type Attempt struct {
	Provider string
	Result   *domain.GenerationResult
	Err      error
}

// Outcome holds the successful results in provider configuration order.
type Outcome struct {
	Results  []domain.GenerationResult
	Attempts []Attempt
	Warnings []string
}

// Primary returns the first configured provider that succeeded.
func (o *Outcome) Primary() *domain.GenerationResult {
	if o == nil || len(o.Results) == 0 {
		return nil
	}
	res := o.Results[0]
	return &res
}

// GenerationError is returned when no provider produced a video.
type GenerationError struct {
	Failures []Attempt
}

func (e *GenerationError) Error() string {
	if len(e.Failures) == 0 {
		return "all video generations failed: no providers attempted"
	}
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, fmt.Sprintf("%s: %v", f.Provider, f.Err))
	}
	return "all video generations failed: " + strings.Join(parts, "; ")
}

func (e *GenerationError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		if f.Err != nil {
			errs = append(errs, f.Err)
		}
	}
	return errs
}

// Aggregate folds per-provider attempts into an Outcome. Zero successes is a
// *GenerationError; otherwise each failed provider becomes a warning.
func Aggregate(attempts []Attempt) (*Outcome, error) {
	out := &Outcome{Attempts: attempts}
	var failures []Attempt
	for _, a := range attempts {
		if a.Err == nil && a.Result == nil {
			a.Err = fmt.Errorf("%s: no result", a.Provider)
		}
		if a.Err != nil {
			failures = append(failures, a)
			out.Warnings = append(out.Warnings, fmt.Sprintf("%s failed: %v", a.Provider, a.Err))
			continue
		}
		out.Results = append(out.Results, *a.Result)
	}
	if len(out.Results) == 0 {
		return nil, &GenerationError{Failures: failures}
	}
	return out, nil
}
