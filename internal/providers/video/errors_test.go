package video

import (
	"bytes"
	"net/http"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestClassifyStatus(t *testing.T) {
	t.Parallel()
	cases := []struct {
		code  int
		kind  ErrorKind
		known bool
	}{
		{http.StatusBadRequest, KindBadRequest, true},
		{http.StatusUnauthorized, KindAuth, true},
		{http.StatusPaymentRequired, KindQuotaExceeded, true},
		{http.StatusForbidden, KindAuth, true},
		{http.StatusNotFound, KindBadRequest, true},
		{http.StatusTooManyRequests, KindRateLimited, true},
		{http.StatusGatewayTimeout, KindTimeout, true},
		{http.StatusInternalServerError, KindServerError, true},
		{http.StatusServiceUnavailable, KindServerError, true},
		{http.StatusTeapot, KindBadRequest, false},
	}
	for _, tc := range cases {
		kind, known := ClassifyStatus(tc.code)
		if kind != tc.kind || known != tc.known {
			t.Fatalf("ClassifyStatus(%d) = (%s, %v), want (%s, %v)", tc.code, kind, known, tc.kind, tc.known)
		}
	}
}

func TestIsCreditError(t *testing.T) {
	t.Parallel()
	cases := map[string]bool{
		"Insufficient balance":                  true,
		"You have RUN OUT of generations":       true,
		"monthly quota reached":                 true,
		"please top up your account":            true,
		"Subscription expired":                  true,
		"invalid aspect ratio":                  false,
		"":                                      false,
		"prompt rejected by content moderation": false,
	}
	for text, want := range cases {
		if got := IsCreditError(text); got != want {
			t.Fatalf("IsCreditError(%q) = %v, want %v", text, got, want)
		}
	}
}

func TestHTTPErrorPrefersBodyMessage(t *testing.T) {
	t.Parallel()
	perr := httpError("FreePik", http.StatusBadRequest, []byte(`{"error":{"code":"x","message":"size not supported"}}`), nil)
	if perr.Kind != KindBadRequest {
		t.Fatalf("kind = %s, want bad_request", perr.Kind)
	}
	if perr.Message != "size not supported" {
		t.Fatalf("message = %q, want body message", perr.Message)
	}
}

func TestHTTPErrorCreditPhraseOverridesStatus(t *testing.T) {
	t.Parallel()
	perr := httpError("FreePik", http.StatusBadRequest, []byte(`{"message":"Not enough credit balance"}`), nil)
	if perr.Kind != KindQuotaExceeded {
		t.Fatalf("kind = %s, want quota_exceeded", perr.Kind)
	}
}

func TestHTTPErrorFallsBackToStatusMessage(t *testing.T) {
	t.Parallel()
	perr := httpError("FreePik", http.StatusTooManyRequests, []byte(`<html>slow down</html>`), nil)
	if perr.Kind != KindRateLimited {
		t.Fatalf("kind = %s, want rate_limited", perr.Kind)
	}
	if !strings.HasPrefix(perr.Message, "Rate limit exceeded") {
		t.Fatalf("message = %q, want default rate limit message", perr.Message)
	}
	if !perr.Transient() {
		t.Fatalf("rate limit should be transient")
	}
	if !httpError("FreePik", http.StatusGatewayTimeout, nil, nil).Transient() {
		t.Fatalf("gateway timeout should be transient")
	}
	if httpError("FreePik", http.StatusUnauthorized, nil, nil).Transient() {
		t.Fatalf("auth failure should not be transient")
	}
}

func TestHTTPErrorLogsUnclassifiedBodies(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	perr := httpError("Kie.ai", http.StatusTeapot, []byte(`short and stout`), &logger)
	if perr.Kind != KindBadRequest {
		t.Fatalf("kind = %s, want bad_request", perr.Kind)
	}
	if !strings.Contains(buf.String(), "unclassified provider error") {
		t.Fatalf("expected warning log, got %q", buf.String())
	}
	if !strings.Contains(perr.Error(), "418") {
		t.Fatalf("error %q should carry the status code", perr.Error())
	}
}

func TestRawErrorText(t *testing.T) {
	t.Parallel()
	cases := map[string]string{
		`"boom"`:                 "boom",
		`{"message":"exploded"}`: "exploded",
		`null`:                   "",
		``:                       "",
	}
	for raw, want := range cases {
		if got := rawErrorText([]byte(raw)); got != want {
			t.Fatalf("rawErrorText(%s) = %q, want %q", raw, got, want)
		}
	}
}
