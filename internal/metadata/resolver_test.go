package metadata

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jknoll/agentic-orchestration/internal/domain"
)

type fakeExtractor struct {
	meta domain.ProductMetadata
	err  error
}

func (f fakeExtractor) ExtractProduct(ctx context.Context, url string, onProgress func(string)) (domain.ProductMetadata, error) {
	if onProgress != nil {
		onProgress("Reading page")
	}
	return f.meta, f.err
}

func productServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "" {
			t.Errorf("missing user agent")
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(jsonLDPage))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestResolveMergesHTMLAndAI(t *testing.T) {
	srv := productServer(t)
	resolver := NewResolver(Options{
		HTTPClient: srv.Client(),
		AI: fakeExtractor{meta: domain.ProductMetadata{
			Title:    "Aurora Gooseneck Kettle",
			Images:   []string{"https://cdn.example/ai.jpg", "https://cdn.example/k1.jpg"},
			Features: []string{"Temperature hold"},
		}},
	})

	var mu sync.Mutex
	var progress []string
	meta := resolver.Resolve(context.Background(), srv.URL+"/p/kettle", func(msg string) {
		mu.Lock()
		progress = append(progress, msg)
		mu.Unlock()
	})

	assert.Equal(t, "Aurora Gooseneck Kettle", meta.Title)
	assert.Equal(t, "Aurora", meta.Brand)
	assert.Equal(t, "USD 79.5", meta.Price)
	assert.Equal(t, []string{
		"https://cdn.example/ai.jpg",
		"https://cdn.example/k1.jpg",
		"https://cdn.example/k2.jpg",
		"https://cdn.example/k3.jpg",
	}, meta.Images)
	assert.Equal(t, srv.URL+"/p/kettle", meta.URL)
	assert.Contains(t, progress, "Reading page")
}

func TestResolveAbsorbsAIFailure(t *testing.T) {
	srv := productServer(t)
	resolver := NewResolver(Options{HTTPClient: srv.Client(), AI: fakeExtractor{err: errors.New("quota")}})

	meta := resolver.Resolve(context.Background(), srv.URL, nil)
	assert.Equal(t, "Aurora Kettle", meta.Title)
}

func TestResolveFailsSoft(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "blocked", http.StatusForbidden)
	}))
	defer srv.Close()

	meta := NewResolver(Options{HTTPClient: srv.Client()}).Resolve(context.Background(), srv.URL+"/p/x", nil)
	assert.Empty(t, meta.Title)
	assert.True(t, meta.Empty())
	assert.Equal(t, srv.URL+"/p/x", meta.URL)
}
