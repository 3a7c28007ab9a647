// Package tinyfish extracts structured product data with the Mino browser
// automation API. Results arrive as a server-sent event stream.
package tinyfish

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jknoll/agentic-orchestration/internal/domain"
	"github.com/jknoll/agentic-orchestration/internal/infra"
)

// ErrMissingAPIKey indicates that the client was configured without credentials.
var ErrMissingAPIKey = errors.New("tinyfish: api key is required")

// ErrNoResult is returned when the stream ends without a COMPLETE event.
var ErrNoResult = errors.New("tinyfish: no result received")

const productGoal = `Extract the product metadata for this single product page. Return a JSON object with these fields:
- title: The product name
- description: Product description (full text)
- price: Price with currency symbol or code (e.g., "$199.99" or "USD 199.99")
- brand: Brand or manufacturer name
- images: List of product image URLs (full URLs, not relative paths)
- features: List of key product features or specifications`

// Options configures the Mino client.
type Options struct {
	APIKey         string
	BaseURL        string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
}

// Client calls the run-sse automation endpoint.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *infra.Logger
}

type runRequest struct {
	BrowserProfile string      `json:"browser_profile"`
	ProxyConfig    proxyConfig `json:"proxy_config"`
	URL            string      `json:"url"`
	Goal           string      `json:"goal"`
}

type proxyConfig struct {
	Enabled     bool   `json:"enabled"`
	CountryCode string `json:"country_code"`
}

type event struct {
	Type         string          `json:"type"`
	Purpose      string          `json:"purpose"`
	ResultJSON   json.RawMessage `json:"resultJson"`
	ErrorMessage string          `json:"errorMessage"`
}

// productPayload tolerates both string and list encodings of the list fields.
type productPayload struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Price       any      `json:"price"`
	Brand       string   `json:"brand"`
	Images      flexList `json:"images"`
	Features    flexList `json:"features"`
}

type flexList []string

func (f *flexList) UnmarshalJSON(raw []byte) error {
	var list []any
	if err := json.Unmarshal(raw, &list); err == nil {
		out := make([]string, 0, len(list))
		for _, item := range list {
			switch v := item.(type) {
			case string:
				out = append(out, v)
			case map[string]any:
				if u, ok := v["url"].(string); ok {
					out = append(out, u)
				}
			}
		}
		*f = out
		return nil
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		if single != "" {
			*f = []string{single}
		}
		return nil
	}
	*f = nil
	return nil
}

// NewClient constructs a client with defaults; it fails fast without a key.
func NewClient(opts Options) (*Client, error) {
	key := strings.TrimSpace(opts.APIKey)
	if key == "" {
		return nil, ErrMissingAPIKey
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 180 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://mino.ai"
	}
	logger := opts.Logger
	if logger == nil {
		logger = infra.DiscardLogger()
	}
	return &Client{apiKey: key, baseURL: baseURL, httpClient: httpClient, logger: logger}, nil
}

// ExtractProduct runs the product extraction goal against url and returns the
// normalized metadata. onProgress receives the purpose of each PROGRESS event
// and may be nil.
func (c *Client) ExtractProduct(ctx context.Context, url string, onProgress func(string)) (domain.ProductMetadata, error) {
	raw, err := c.run(ctx, url, productGoal, onProgress)
	if err != nil {
		return domain.ProductMetadata{URL: url}, err
	}
	return decodeProduct(raw, url)
}

func decodeProduct(raw json.RawMessage, url string) (domain.ProductMetadata, error) {
	// resultJson is sometimes a JSON document encoded as a string.
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		raw = json.RawMessage(asString)
	}
	var payload productPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return domain.ProductMetadata{URL: url}, fmt.Errorf("tinyfish: decode result: %w", err)
	}
	meta := domain.ProductMetadata{
		Title:       strings.TrimSpace(payload.Title),
		Description: strings.TrimSpace(payload.Description),
		Brand:       strings.TrimSpace(payload.Brand),
		Images:      []string(payload.Images),
		Features:    []string(payload.Features),
		URL:         url,
	}
	switch p := payload.Price.(type) {
	case string:
		meta.Price = strings.TrimSpace(p)
	case float64:
		meta.Price = fmt.Sprintf("%.2f", p)
	}
	return meta, nil
}

func (c *Client) run(ctx context.Context, url, goal string, onProgress func(string)) (json.RawMessage, error) {
	body, err := json.Marshal(runRequest{
		BrowserProfile: "stealth",
		ProxyConfig:    proxyConfig{Enabled: true, CountryCode: "US"},
		URL:            url,
		Goal:           goal,
	})
	if err != nil {
		return nil, fmt.Errorf("tinyfish: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/automation/run-sse", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("tinyfish: build request: %w", err)
	}
	req.Header.Set("X-API-Key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tinyfish: http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return nil, fmt.Errorf("tinyfish: %s", errorMessage(resp.StatusCode, raw))
	}
	return c.readStream(resp.Body, onProgress)
}

// readStream consumes "data: {...}" lines until COMPLETE or ERROR. Lines that
// are not valid JSON are skipped.
func (c *Client) readStream(r io.Reader, onProgress func(string)) (json.RawMessage, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64<<10), 4<<20)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		var ev event
		if err := json.Unmarshal([]byte(strings.TrimSpace(strings.TrimPrefix(line, "data:"))), &ev); err != nil {
			c.logger.Debug().Err(err).Msg("tinyfish: skipping malformed event")
			continue
		}
		switch ev.Type {
		case "PROGRESS":
			if onProgress != nil && ev.Purpose != "" {
				onProgress(ev.Purpose)
			}
		case "COMPLETE":
			if onProgress != nil {
				onProgress("Extraction complete")
			}
			if len(ev.ResultJSON) == 0 || string(ev.ResultJSON) == "null" {
				return nil, ErrNoResult
			}
			return ev.ResultJSON, nil
		case "ERROR":
			msg := ev.ErrorMessage
			if msg == "" {
				msg = "Unknown error"
			}
			return nil, fmt.Errorf("tinyfish: extraction failed: %s", msg)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("tinyfish: read stream: %w", err)
	}
	return nil, ErrNoResult
}

var statusMessages = map[int]string{
	http.StatusBadRequest:          "Bad request - invalid parameters",
	http.StatusUnauthorized:        "Invalid API key - check your MINO_API_KEY",
	http.StatusPaymentRequired:     "Insufficient credits - please add more credits to your Mino account",
	http.StatusForbidden:           "Access forbidden - check your API key permissions",
	http.StatusTooManyRequests:     "Rate limit exceeded - please wait before retrying",
	http.StatusInternalServerError: "TinyFish server error - please try again later",
}

func errorMessage(status int, raw []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	if msg, ok := statusMessages[status]; ok {
		return msg
	}
	if text := strings.TrimSpace(string(raw)); text != "" {
		if len(text) > 200 {
			text = text[:200]
		}
		return fmt.Sprintf("API error (%d): %s", status, text)
	}
	return fmt.Sprintf("API error (%d)", status)
}
