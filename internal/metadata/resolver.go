// Package metadata resolves a product URL into ProductMetadata. It combines a
// structured HTML scrape with an optional AI extraction and never fails: the
// worst case is empty metadata carrying the URL.
package metadata

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jknoll/agentic-orchestration/internal/domain"
	"github.com/jknoll/agentic-orchestration/internal/infra"
)

const defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36"

// ProgressFunc receives progress lines from the AI extractor.
type ProgressFunc func(message string)

// Extractor is an AI-backed source of product metadata.
type Extractor interface {
	ExtractProduct(ctx context.Context, url string, onProgress func(string)) (domain.ProductMetadata, error)
}

// Options configures a Resolver. AI may be nil.
type Options struct {
	HTTPClient *http.Client
	AI         Extractor
	Logger     *infra.Logger
	UserAgent  string
	MaxBody    int64
}

// Resolver runs the HTML and AI strategies concurrently and merges them.
type Resolver struct {
	httpClient *http.Client
	ai         Extractor
	logger     *infra.Logger
	userAgent  string
	maxBody    int64
}

func NewResolver(opts Options) *Resolver {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	logger := opts.Logger
	if logger == nil {
		logger = infra.DiscardLogger()
	}
	ua := strings.TrimSpace(opts.UserAgent)
	if ua == "" {
		ua = defaultUserAgent
	}
	maxBody := opts.MaxBody
	if maxBody <= 0 {
		maxBody = 8 << 20
	}
	return &Resolver{httpClient: httpClient, ai: opts.AI, logger: logger, userAgent: ua, maxBody: maxBody}
}

// Resolve returns the best metadata it can find for url. Strategy failures are
// logged and absorbed.
func (r *Resolver) Resolve(ctx context.Context, url string, onProgress ProgressFunc) domain.ProductMetadata {
	var (
		fromHTML domain.ProductMetadata
		fromAI   *domain.ProductMetadata
	)

	var g errgroup.Group
	g.Go(func() error {
		meta, err := r.scrape(ctx, url)
		if err != nil {
			r.logger.Warn().Err(err).Str("url", url).Msg("metadata: html extraction failed")
			meta = domain.ProductMetadata{URL: url}
		}
		fromHTML = meta
		return nil
	})
	if r.ai != nil {
		g.Go(func() error {
			if onProgress != nil {
				onProgress("Starting AI-powered metadata extraction...")
			}
			meta, err := r.ai.ExtractProduct(ctx, url, onProgress)
			if err != nil {
				r.logger.Warn().Err(err).Str("url", url).Msg("metadata: ai extraction failed")
				if onProgress != nil {
					onProgress(fmt.Sprintf("Extraction failed: %v", err))
				}
				return nil
			}
			fromAI = &meta
			return nil
		})
	}
	_ = g.Wait()

	merged := Merge(fromHTML, fromAI)
	merged.URL = url
	return merged
}

func (r *Resolver) scrape(ctx context.Context, url string) (domain.ProductMetadata, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return domain.ProductMetadata{}, fmt.Errorf("metadata: build request: %w", err)
	}
	req.Header.Set("User-Agent", r.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return domain.ProductMetadata{}, fmt.Errorf("metadata: fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return domain.ProductMetadata{}, fmt.Errorf("metadata: fetch status %d", resp.StatusCode)
	}
	pageURL := url
	if resp.Request != nil && resp.Request.URL != nil {
		pageURL = resp.Request.URL.String()
	}
	return ExtractHTML(io.LimitReader(resp.Body, r.maxBody), pageURL)
}
