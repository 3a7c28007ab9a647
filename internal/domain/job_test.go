package domain

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestStageCanTransition(t *testing.T) {
	tests := []struct {
		from, to Stage
		want     bool
	}{
		{StageQueued, StageExtractingMetadata, true},
		{StageQueued, StageGeneratingVideo, true},
		{StageExtractingMetadata, StageExtractingMetadata, true},
		{StageGeneratingVideo, StageGeneratingPrompt, false},
		{StageGeneratingVideo, StageCompleted, true},
		{StageGeneratingPrompt, StageFailed, true},
		{StageCompleted, StageFailed, false},
		{StageFailed, StageCompleted, false},
		{StageFailed, StageFailed, false},
		{StageDemo, StageQueued, false},
	}
	for _, tc := range tests {
		if got := tc.from.CanTransition(tc.to); got != tc.want {
			t.Fatalf("%s -> %s = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestGenerationResultValidate(t *testing.T) {
	ok := []GenerationResult{
		{Provider: "freepik", TaskID: "t1", Status: VideoCompleted, VideoURL: "https://cdn/v.mp4"},
		{Provider: "freepik", TaskID: "t1", Status: VideoFailed, Error: "boom"},
		{Provider: "kie", TaskID: "t2", Status: VideoPending},
	}
	for _, r := range ok {
		if err := r.Validate(); err != nil {
			t.Fatalf("Validate(%+v) returned error: %v", r, err)
		}
	}
	bad := []GenerationResult{
		{Provider: "freepik", TaskID: "t1", Status: VideoCompleted},
		{Provider: "freepik", TaskID: "t1", Status: VideoFailed},
		{Provider: "freepik", TaskID: "t1", Status: "weird"},
	}
	for _, r := range bad {
		if err := r.Validate(); err == nil {
			t.Fatalf("Validate(%+v) expected error", r)
		}
	}
}

func TestJobCloneDoesNotShareSlices(t *testing.T) {
	job := &Job{
		ID:      "ab12cd34",
		Logs:    []LogEntry{{Source: "System", Message: "one"}},
		Product: &ProductMetadata{Title: "Widget", Images: []string{"a"}},
	}
	cp := job.Clone()
	cp.Logs[0].Message = "changed"
	cp.Product.Images[0] = "b"
	if job.Logs[0].Message != "one" {
		t.Fatalf("log mutated through clone: %q", job.Logs[0].Message)
	}
	if job.Product.Images[0] != "a" {
		t.Fatalf("product images mutated through clone: %q", job.Product.Images[0])
	}
}

func TestJobCloneKeepsEmptyLogsAsArray(t *testing.T) {
	job := &Job{ID: "j1", Logs: []LogEntry{}}
	raw, err := json.Marshal(job.Clone())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(raw), `"logs":[]`) {
		t.Fatalf("json = %s, want empty logs array", raw)
	}

	nilLogs := (&Job{ID: "j2"}).Clone()
	if nilLogs.Logs == nil {
		t.Fatalf("clone of nil logs should be an empty slice")
	}
}
