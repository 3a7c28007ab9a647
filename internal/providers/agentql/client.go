// Package agentql queries product pages through the AgentQL query-data API.
package agentql

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jknoll/agentic-orchestration/internal/infra"
)

// ErrMissingAPIKey indicates that the client was configured without credentials.
var ErrMissingAPIKey = errors.New("agentql: api key is required")

// DefaultFields is the query used when the caller does not name fields.
var DefaultFields = []string{
	"product_name",
	"price",
	"description",
	"features",
	"specifications",
	"benefits",
	"target_audience",
	"images",
}

var listFields = map[string]bool{
	"features":       true,
	"specifications": true,
	"benefits":       true,
	"images":         true,
}

type Options struct {
	APIKey     string
	Endpoint   string
	HTTPClient *http.Client
	Logger     *infra.Logger
}

type Client struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
	logger     *infra.Logger
}

// Research is the structured product research returned by a query.
type Research struct {
	ProductName    string   `json:"product_name,omitempty"`
	Price          string   `json:"price,omitempty"`
	Description    string   `json:"description,omitempty"`
	Features       []string `json:"features,omitempty"`
	Specifications []string `json:"specifications,omitempty"`
	Benefits       []string `json:"benefits,omitempty"`
	TargetAudience string   `json:"target_audience,omitempty"`
	Images         []string `json:"images,omitempty"`
	URL            string   `json:"url"`
}

type queryRequest struct {
	URL                     string `json:"url"`
	Query                   string `json:"query"`
	IsScrollToBottomEnabled bool   `json:"is_scroll_to_bottom_enabled"`
}

func NewClient(opts Options) (*Client, error) {
	key := strings.TrimSpace(opts.APIKey)
	if key == "" {
		return nil, ErrMissingAPIKey
	}
	endpoint := strings.TrimSpace(opts.Endpoint)
	if endpoint == "" {
		endpoint = "https://api.agentql.com/v1/query-data"
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	logger := opts.Logger
	if logger == nil {
		logger = infra.DiscardLogger()
	}
	return &Client{apiKey: key, endpoint: endpoint, httpClient: httpClient, logger: logger}, nil
}

// BuildQuery renders an AgentQL query; list fields get the [] suffix.
func BuildQuery(fields []string) string {
	if len(fields) == 0 {
		fields = DefaultFields
	}
	var sb strings.Builder
	sb.WriteString("{\n")
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		sb.WriteString("    ")
		sb.WriteString(f)
		if listFields[f] {
			sb.WriteString("[]")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("}")
	return sb.String()
}

// ExtractProduct queries url for fields (DefaultFields when empty).
func (c *Client) ExtractProduct(ctx context.Context, url string, fields []string) (*Research, error) {
	body, err := json.Marshal(queryRequest{URL: url, Query: BuildQuery(fields), IsScrollToBottomEnabled: true})
	if err != nil {
		return nil, fmt.Errorf("agentql: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("agentql: build request: %w", err)
	}
	req.Header.Set("X-API-Key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("agentql: http request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("agentql: read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("agentql: status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("agentql: decode response: %w", err)
	}
	payload := envelope.Data
	if len(payload) == 0 || string(payload) == "null" {
		payload = raw
	}
	var out Research
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, fmt.Errorf("agentql: decode data: %w", err)
	}
	out.URL = url
	c.logger.Debug().Str("url", url).Str("product", out.ProductName).Msg("agentql: research complete")
	return &out, nil
}
