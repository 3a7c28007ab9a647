package video

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/jknoll/agentic-orchestration/internal/infra"
)

// ErrorKind classifies provider failures independently of the provider's own
// wording.
type ErrorKind string

const (
	KindAuth              ErrorKind = "auth"
	KindQuotaExceeded     ErrorKind = "quota_exceeded"
	KindRateLimited       ErrorKind = "rate_limited"
	KindBadRequest        ErrorKind = "bad_request"
	KindServerError       ErrorKind = "server_error"
	KindTimeout           ErrorKind = "timeout"
	KindGenerationFailed  ErrorKind = "generation_failed"
	KindMalformedResponse ErrorKind = "malformed_response"
)

// ProviderError is returned by every Client method and by Wait.
type ProviderError struct {
	Provider   string
	Kind       ErrorKind
	StatusCode int
	Message    string
	// Err is the underlying transport error, when there is one.
	Err error
}

func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: %s (%d): %s", e.Provider, e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Provider, e.Kind, e.Message)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Transient reports whether retrying the same call later may succeed.
func (e *ProviderError) Transient() bool {
	return e.Kind == KindRateLimited || e.Kind == KindServerError || e.Kind == KindTimeout
}

// transportError wraps a failed round trip so Wait treats it as transient.
// Cancellation of the caller's context is passed through unchanged.
func transportError(ctx context.Context, provider string, err error) error {
	if ctx.Err() != nil {
		return fmt.Errorf("%s: http request: %w", provider, err)
	}
	kind := KindServerError
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		kind = KindTimeout
	}
	return &ProviderError{Provider: provider, Kind: kind, Message: "http request: " + err.Error(), Err: err}
}

// ClassifyStatus maps an HTTP status code to an ErrorKind. The second return
// is false when the code has no specific mapping.
func ClassifyStatus(code int) (ErrorKind, bool) {
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return KindAuth, true
	case code == http.StatusPaymentRequired:
		return KindQuotaExceeded, true
	case code == http.StatusTooManyRequests:
		return KindRateLimited, true
	case code == http.StatusBadRequest || code == http.StatusNotFound || code == http.StatusUnprocessableEntity:
		return KindBadRequest, true
	case code == http.StatusRequestTimeout || code == http.StatusGatewayTimeout:
		return KindTimeout, true
	case code >= 500:
		return KindServerError, true
	case code >= 400:
		return KindBadRequest, false
	}
	return KindMalformedResponse, false
}

var creditPhrases = []string{
	"insufficient",
	"credit",
	"balance",
	"quota",
	"limit exceeded",
	"no remaining",
	"payment",
	"subscription",
	"top up",
	"recharge",
	"out of",
	"run out",
	"exhausted",
}

// IsCreditError reports whether a provider message reads like account credit
// exhaustion. Matching is a case-insensitive substring test.
func IsCreditError(text string) bool {
	if text == "" {
		return false
	}
	lower := strings.ToLower(text)
	for _, phrase := range creditPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

var defaultStatusMessages = map[int]string{
	http.StatusBadRequest:          "Bad request - invalid parameters",
	http.StatusUnauthorized:        "Invalid API key",
	http.StatusPaymentRequired:     "Insufficient credits - please add more credits to your account",
	http.StatusForbidden:           "Access forbidden - check your API key permissions",
	http.StatusNotFound:            "Resource not found",
	http.StatusTooManyRequests:     "Rate limit exceeded - please wait before retrying",
	http.StatusInternalServerError: "Provider server error - please try again later",
	http.StatusBadGateway:          "Provider service temporarily unavailable",
	http.StatusServiceUnavailable:  "Provider service temporarily unavailable",
}

type errorEnvelope struct {
	Error   json.RawMessage `json:"error"`
	Message string          `json:"message"`
	Msg     string          `json:"msg"`
	Detail  string          `json:"detail"`
	Code    json.RawMessage `json:"code"`
}

// extractMessage pulls a human readable message out of the common error body
// shapes: {"error":{"message":..}}, {"error":"..."}, {"message":..}, {"msg":..}.
func extractMessage(raw []byte) string {
	var env errorEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return ""
	}
	if len(env.Error) > 0 {
		var nested struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(env.Error, &nested); err == nil && nested.Message != "" {
			return strings.TrimSpace(nested.Message)
		}
		var plain string
		if err := json.Unmarshal(env.Error, &plain); err == nil && plain != "" {
			return strings.TrimSpace(plain)
		}
	}
	for _, v := range []string{env.Message, env.Msg, env.Detail} {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// httpError turns a non-2xx response into a ProviderError. Bodies that match
// neither a known status nor a credit phrase are logged so the classifier can
// be extended.
func httpError(provider string, status int, raw []byte, logger *infra.Logger) *ProviderError {
	msg := extractMessage(raw)
	kind, known := ClassifyStatus(status)
	if IsCreditError(msg) && kind != KindAuth {
		kind, known = KindQuotaExceeded, true
	}
	if msg == "" {
		if fallback, ok := defaultStatusMessages[status]; ok {
			msg = fallback
		} else if text := strings.TrimSpace(string(raw)); text != "" {
			msg = fmt.Sprintf("API error (%d): %s", status, truncate(text, 200))
		} else {
			msg = fmt.Sprintf("API error (%d)", status)
		}
	}
	if !known && logger != nil {
		logger.Warn().
			Str("provider", provider).
			Int("status", status).
			Str("body", truncate(string(raw), 500)).
			Msg("video: unclassified provider error")
	}
	return &ProviderError{Provider: provider, Kind: kind, StatusCode: status, Message: msg}
}

// rawErrorText renders an error field that may be a string or an object with
// a message.
func rawErrorText(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var obj struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && obj.Message != "" {
		return strings.TrimSpace(obj.Message)
	}
	return strings.TrimSpace(string(raw))
}

func malformed(provider, format string, args ...any) *ProviderError {
	return &ProviderError{Provider: provider, Kind: KindMalformedResponse, Message: fmt.Sprintf(format, args...)}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
