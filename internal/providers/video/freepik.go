package video

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/jknoll/agentic-orchestration/internal/domain"
	"github.com/jknoll/agentic-orchestration/internal/infra"
)

const (
	FreePikName            = "FreePik"
	FreePikDefaultTimeout  = 300 * time.Second
	FreePikDefaultInterval = 5 * time.Second
)

var freePikSizes = map[domain.Resolution]map[domain.AspectRatio]string{
	domain.ResolutionHD: {
		domain.AspectLandscape: "1280*720",
		domain.AspectPortrait:  "720*1280",
	},
	domain.ResolutionFHD: {
		domain.AspectLandscape: "1920*1080",
		domain.AspectPortrait:  "1080*1920",
	},
}

// FreePik drives the WAN 2.6 text-to-video endpoints.
type FreePik struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *infra.Logger

	// Status checks go to the endpoint of the resolution the task was
	// submitted with.
	mu          sync.Mutex
	resolutions map[string]domain.Resolution
}

type freePikSubmitRequest struct {
	Prompt                string `json:"prompt"`
	NegativePrompt        string `json:"negative_prompt,omitempty"`
	Size                  string `json:"size"`
	Duration              string `json:"duration"`
	EnablePromptExpansion bool   `json:"enable_prompt_expansion"`
	ShotType              string `json:"shot_type"`
	Audio                 bool   `json:"audio"`
}

type freePikSubmitResponse struct {
	Data struct {
		TaskID string `json:"task_id"`
		Status string `json:"status"`
	} `json:"data"`
}

type freePikURLHolder struct {
	URL string `json:"url"`
}

type freePikStatusResponse struct {
	Data struct {
		TaskID    string            `json:"task_id"`
		Status    string            `json:"status"`
		Generated []json.RawMessage `json:"generated"`
		Video     *freePikURLHolder `json:"video"`
		Output    *freePikURLHolder `json:"output"`
		URL       string            `json:"url"`
		Error     json.RawMessage   `json:"error"`
	} `json:"data"`
}

// NewFreePik validates credentials and fills in defaults.
func NewFreePik(opts Options) (*FreePik, error) {
	key := opts.apiKey()
	if key == "" {
		return nil, fmt.Errorf("freepik: %w", ErrMissingAPIKey)
	}
	return &FreePik{
		apiKey:      key,
		baseURL:     opts.baseURL("https://api.freepik.com"),
		httpClient:  opts.httpClient(60 * time.Second),
		logger:      opts.logger(),
		resolutions: make(map[string]domain.Resolution),
	}, nil
}

func (f *FreePik) Name() string { return FreePikName }

func freePikEndpoint(res domain.Resolution) string {
	if res == domain.ResolutionFHD {
		return "/v1/ai/text-to-video/wan-v2-6-1080p"
	}
	return "/v1/ai/text-to-video/wan-v2-6-720p"
}

// snapFreePikDuration rounds up to the nearest supported clip length.
func snapFreePikDuration(seconds int) int {
	switch {
	case seconds <= 5:
		return 5
	case seconds <= 10:
		return 10
	default:
		return 15
	}
}

func freePikSize(res domain.Resolution, aspect domain.AspectRatio) string {
	if byAspect, ok := freePikSizes[res]; ok {
		if size, ok := byAspect[aspect]; ok {
			return size
		}
	}
	return "1280*720"
}

func (f *FreePik) Submit(ctx context.Context, req domain.GenerationRequest) (*domain.GenerationResult, error) {
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return nil, &ProviderError{Provider: FreePikName, Kind: KindBadRequest, Message: "prompt is required"}
	}
	payload := freePikSubmitRequest{
		Prompt:                prompt,
		NegativePrompt:        strings.TrimSpace(req.NegativePrompt),
		Size:                  freePikSize(req.Resolution, req.AspectRatio),
		Duration:              fmt.Sprintf("%d", snapFreePikDuration(req.Duration)),
		EnablePromptExpansion: true,
		ShotType:              string(domain.ShotSingle),
		Audio:                 req.WithAudio,
	}
	if req.ShotType == domain.ShotMulti {
		payload.ShotType = string(domain.ShotMulti)
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("freepik: encode request: %w", err)
	}
	raw, err := f.do(ctx, http.MethodPost, freePikEndpoint(req.Resolution), body)
	if err != nil {
		return nil, err
	}
	var decoded freePikSubmitResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, malformed(FreePikName, "decode submit response: %v", err)
	}
	taskID := strings.TrimSpace(decoded.Data.TaskID)
	if taskID == "" {
		return nil, malformed(FreePikName, "submit response has no task_id")
	}

	f.mu.Lock()
	f.resolutions[taskID] = req.Resolution
	f.mu.Unlock()

	f.logger.Debug().Str("task_id", taskID).Str("size", payload.Size).Msg("freepik: task submitted")
	return &domain.GenerationResult{Provider: FreePikName, TaskID: taskID, Status: domain.VideoPending}, nil
}

func (f *FreePik) Poll(ctx context.Context, taskID string) (*domain.GenerationResult, error) {
	f.mu.Lock()
	res, ok := f.resolutions[taskID]
	f.mu.Unlock()
	if !ok {
		res = domain.ResolutionHD
	}

	raw, err := f.do(ctx, http.MethodGet, freePikEndpoint(res)+"/"+url.PathEscape(taskID), nil)
	if err != nil {
		return nil, err
	}
	var decoded freePikStatusResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, malformed(FreePikName, "decode status response: %v", err)
	}

	result := &domain.GenerationResult{
		Provider: FreePikName,
		TaskID:   taskID,
		Status:   mapFreePikStatus(decoded.Data.Status),
	}
	switch result.Status {
	case domain.VideoCompleted:
		result.VideoURL = freePikVideoURL(decoded)
		if result.VideoURL == "" {
			return nil, malformed(FreePikName, "task %s completed without a video url", taskID)
		}
	case domain.VideoFailed:
		result.Error = rawErrorText(decoded.Data.Error)
		if result.Error == "" {
			result.Error = "Unknown error"
		}
	}
	return result, nil
}

func mapFreePikStatus(status string) domain.VideoStatus {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "created", "pending", "queued":
		return domain.VideoPending
	case "processing", "in_progress":
		return domain.VideoProcessing
	case "completed", "done", "success":
		return domain.VideoCompleted
	default:
		return domain.VideoFailed
	}
}

// freePikVideoURL checks generated[0] (a string or {"url":..}), then
// video.url, output.url and a top-level url.
func freePikVideoURL(resp freePikStatusResponse) string {
	if len(resp.Data.Generated) > 0 {
		first := resp.Data.Generated[0]
		var s string
		if err := json.Unmarshal(first, &s); err == nil && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
		var holder freePikURLHolder
		if err := json.Unmarshal(first, &holder); err == nil && strings.TrimSpace(holder.URL) != "" {
			return strings.TrimSpace(holder.URL)
		}
	}
	for _, holder := range []*freePikURLHolder{resp.Data.Video, resp.Data.Output} {
		if holder != nil && strings.TrimSpace(holder.URL) != "" {
			return strings.TrimSpace(holder.URL)
		}
	}
	return strings.TrimSpace(resp.Data.URL)
}

func (f *FreePik) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, f.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("freepik: build request: %w", err)
	}
	httpReq.Header.Set("x-freepik-api-key", f.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := f.httpClient.Do(httpReq)
	if err != nil {
		return nil, transportError(ctx, FreePikName, err)
	}
	defer resp.Body.Close()

	raw, err := readBody(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("freepik: read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return nil, httpError(FreePikName, resp.StatusCode, raw, f.logger)
	}
	return raw, nil
}

var _ Client = (*FreePik)(nil)
