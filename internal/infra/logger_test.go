package infra

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestNewLoggerProductionEmitsJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger("production", &buf)
	logger.Debug().Msg("hidden")
	logger.Info().Str("job_id", "abc12345").Msg("visible")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	if len(lines) != 1 {
		t.Fatalf("lines = %d, want 1 (debug should be filtered)", len(lines))
	}
	var entry map[string]any
	if err := json.Unmarshal(lines[0], &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["service"] != "adflow" {
		t.Fatalf("service = %v, want adflow", entry["service"])
	}
	if entry["job_id"] != "abc12345" {
		t.Fatalf("job_id = %v, want abc12345", entry["job_id"])
	}
}

func TestComponentTagsChildLogger(t *testing.T) {
	var buf bytes.Buffer
	base := newLogger("production", &buf)
	Component(&base, "pipeline").Info().Msg("hello")

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["component"] != "pipeline" {
		t.Fatalf("component = %v, want pipeline", entry["component"])
	}
}

func TestComponentNilBaseDiscards(t *testing.T) {
	if Component(nil, "x") == nil {
		t.Fatalf("expected non-nil logger")
	}
}
