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
	"time"

	"github.com/jknoll/agentic-orchestration/internal/domain"
	"github.com/jknoll/agentic-orchestration/internal/infra"
)

const (
	KieName            = "Kie.ai"
	KieDefaultTimeout  = 600 * time.Second
	KieDefaultInterval = 10 * time.Second

	kieModelFast    = "veo3_fast"
	kieModelQuality = "veo3"
)

const kieCreditMessage = "Insufficient credits - please add more credits to your Kie.ai account"

// KieOptions extends Options with the Veo 3 model choice.
type KieOptions struct {
	Options
	Quality bool
}

// Kie drives Veo 3 through the Kie.ai task API.
type Kie struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	logger     *infra.Logger
}

type kieSubmitRequest struct {
	Prompt            string `json:"prompt"`
	Model             string `json:"model"`
	GenerationType    string `json:"generationType"`
	AspectRatio       string `json:"aspect_ratio"`
	EnableTranslation bool   `json:"enableTranslation"`
}

// kieEnvelope is shared by every Kie.ai response; the HTTP status is 200 even
// when code reports a failure.
type kieEnvelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

type kieSubmitData struct {
	TaskID string `json:"taskId"`
}

type kieRecordData struct {
	TaskID       string `json:"taskId"`
	SuccessFlag  *int   `json:"successFlag"`
	ErrorMessage string `json:"errorMessage"`
	Response     *struct {
		ResultURLs []string `json:"resultUrls"`
		OriginURLs []string `json:"originUrls"`
	} `json:"response"`
	ResultURLs []string `json:"resultUrls"`
}

// NewKie validates credentials and picks veo3 or veo3_fast.
func NewKie(opts KieOptions) (*Kie, error) {
	key := opts.apiKey()
	if key == "" {
		return nil, fmt.Errorf("kie: %w", ErrMissingAPIKey)
	}
	model := kieModelFast
	if opts.Quality {
		model = kieModelQuality
	}
	return &Kie{
		apiKey:     key,
		baseURL:    opts.baseURL("https://api.kie.ai"),
		model:      model,
		httpClient: opts.httpClient(120 * time.Second),
		logger:     opts.logger(),
	}, nil
}

func (k *Kie) Name() string { return KieName }

// Model returns the Veo 3 variant in use.
func (k *Kie) Model() string { return k.model }

// Submit starts a text-to-video task. Veo 3 renders a fixed-length clip, so
// Duration and Resolution are not sent.
func (k *Kie) Submit(ctx context.Context, req domain.GenerationRequest) (*domain.GenerationResult, error) {
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return nil, &ProviderError{Provider: KieName, Kind: KindBadRequest, Message: "prompt is required"}
	}
	aspect := string(req.AspectRatio)
	if aspect == "" {
		aspect = string(domain.AspectLandscape)
	}
	body, err := json.Marshal(kieSubmitRequest{
		Prompt:            prompt,
		Model:             k.model,
		GenerationType:    "TEXT_2_VIDEO",
		AspectRatio:       aspect,
		EnableTranslation: false,
	})
	if err != nil {
		return nil, fmt.Errorf("kie: encode request: %w", err)
	}
	env, err := k.do(ctx, http.MethodPost, "/api/v1/veo/generate", body)
	if err != nil {
		return nil, err
	}
	var data kieSubmitData
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &data); err != nil {
			return nil, malformed(KieName, "decode submit data: %v", err)
		}
	}
	taskID := strings.TrimSpace(data.TaskID)
	if taskID == "" {
		return nil, malformed(KieName, "submit response has no taskId")
	}
	k.logger.Debug().Str("task_id", taskID).Str("model", k.model).Msg("kie: task submitted")
	return &domain.GenerationResult{Provider: KieName, TaskID: taskID, Status: domain.VideoPending}, nil
}

func (k *Kie) Poll(ctx context.Context, taskID string) (*domain.GenerationResult, error) {
	env, err := k.do(ctx, http.MethodGet, "/api/v1/veo/record-info?taskId="+url.QueryEscape(taskID), nil)
	if err != nil {
		return nil, err
	}
	var data kieRecordData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, malformed(KieName, "decode record data: %v", err)
	}

	result := &domain.GenerationResult{Provider: KieName, TaskID: taskID}
	switch {
	case data.SuccessFlag == nil || *data.SuccessFlag == 0:
		result.Status = domain.VideoProcessing
	case *data.SuccessFlag == 1:
		result.Status = domain.VideoCompleted
		result.VideoURL = kieVideoURL(data)
		if result.VideoURL == "" {
			return nil, malformed(KieName, "task %s completed without a video url", taskID)
		}
	default:
		result.Status = domain.VideoFailed
		result.Error = strings.TrimSpace(data.ErrorMessage)
		if result.Error == "" {
			result.Error = "Video generation failed"
		}
	}
	return result, nil
}

func kieVideoURL(data kieRecordData) string {
	var candidates []string
	if data.Response != nil {
		candidates = append(candidates, data.Response.ResultURLs...)
		candidates = append(candidates, data.Response.OriginURLs...)
	}
	candidates = append(candidates, data.ResultURLs...)
	for _, c := range candidates {
		if c = strings.TrimSpace(c); c != "" {
			return c
		}
	}
	return ""
}

// do performs the request and unwraps the code/msg envelope. A non-200 code
// in a 200 response is still an error; credit phrases in msg turn it into a
// quota error.
func (k *Kie) do(ctx context.Context, method, path string, body []byte) (*kieEnvelope, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, k.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("kie: build request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+k.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := k.httpClient.Do(httpReq)
	if err != nil {
		return nil, transportError(ctx, KieName, err)
	}
	defer resp.Body.Close()

	raw, err := readBody(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("kie: read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		perr := httpError(KieName, resp.StatusCode, raw, k.logger)
		if perr.Kind == KindQuotaExceeded {
			perr.Message = kieCreditMessage
		}
		return nil, perr
	}

	var env kieEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, malformed(KieName, "decode response: %v", err)
	}
	if env.Code == http.StatusOK {
		return &env, nil
	}

	msg := strings.TrimSpace(env.Msg)
	if IsCreditError(msg) || env.Code == http.StatusPaymentRequired {
		return nil, &ProviderError{Provider: KieName, Kind: KindQuotaExceeded, StatusCode: env.Code, Message: kieCreditMessage}
	}
	if msg == "" {
		msg = "Unknown error"
	}
	kind, known := ClassifyStatus(env.Code)
	if !known {
		kind = KindBadRequest
		k.logger.Warn().
			Int("code", env.Code).
			Str("body", truncate(string(raw), 500)).
			Msg("kie: unclassified error envelope")
	}
	return nil, &ProviderError{Provider: KieName, Kind: kind, StatusCode: env.Code, Message: "API error: " + msg}
}

var _ Client = (*Kie)(nil)
