package domain

import (
	"errors"
	"fmt"
)

// Resolution is the target output resolution.
type Resolution string

const (
	ResolutionHD  Resolution = "720p"
	ResolutionFHD Resolution = "1080p"
)

// AspectRatio is the target frame shape.
type AspectRatio string

const (
	AspectLandscape AspectRatio = "16:9"
	AspectPortrait  AspectRatio = "9:16"
	AspectSquare    AspectRatio = "1:1"
)

// ShotType tells providers that support it whether to cut between scenes.
type ShotType string

const (
	ShotSingle ShotType = "single"
	ShotMulti  ShotType = "multi"
)

// GenerationRequest is built fresh for every provider call.
type GenerationRequest struct {
	Prompt         string
	NegativePrompt string
	Resolution     Resolution
	Duration       int
	AspectRatio    AspectRatio
	WithAudio      bool
	ShotType       ShotType
}

// DefaultGenerationRequest mirrors what the ad pipeline asks every provider for.
func DefaultGenerationRequest(prompt string) GenerationRequest {
	return GenerationRequest{
		Prompt:      prompt,
		Resolution:  ResolutionHD,
		Duration:    5,
		AspectRatio: AspectLandscape,
		WithAudio:   true,
		ShotType:    ShotSingle,
	}
}

// VideoStatus is the provider-agnostic task status.
type VideoStatus string

const (
	VideoPending    VideoStatus = "pending"
	VideoProcessing VideoStatus = "processing"
	VideoCompleted  VideoStatus = "completed"
	VideoFailed     VideoStatus = "failed"
)

// GenerationResult is the outcome of a single provider invocation.
type GenerationResult struct {
	Provider  string      `json:"provider"`
	TaskID    string      `json:"task_id"`
	Status    VideoStatus `json:"status"`
	VideoURL  string      `json:"video_url,omitempty"`
	LocalPath string      `json:"local_path,omitempty"`
	Error     string      `json:"error,omitempty"`
}

// Validate enforces that completed results carry a URL and failed ones an error.
func (r GenerationResult) Validate() error {
	switch r.Status {
	case VideoCompleted:
		if r.VideoURL == "" {
			return fmt.Errorf("%s task %s: completed without video url", r.Provider, r.TaskID)
		}
	case VideoFailed:
		if r.Error == "" {
			return fmt.Errorf("%s task %s: failed without error message", r.Provider, r.TaskID)
		}
	case VideoPending, VideoProcessing:
	default:
		return errors.New("unknown video status " + string(r.Status))
	}
	return nil
}
