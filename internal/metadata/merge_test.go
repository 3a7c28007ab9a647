package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jknoll/agentic-orchestration/internal/domain"
)

func TestMergePrefersAIAndUnionsLists(t *testing.T) {
	fromHTML := domain.ProductMetadata{
		Title:    "HTML Title",
		Price:    "USD 10",
		Brand:    "HTML Brand",
		Images:   []string{"https://cdn/b.jpg", "https://cdn/c.jpg"},
		Features: []string{"light"},
		URL:      "https://shop.example/p",
	}
	fromAI := &domain.ProductMetadata{
		Title:    "AI Title",
		Images:   []string{"https://cdn/a.jpg", "https://cdn/b.jpg", ""},
		Features: []string{"waterproof", "light"},
	}

	merged := Merge(fromHTML, fromAI)

	assert.Equal(t, "AI Title", merged.Title)
	assert.Equal(t, "USD 10", merged.Price, "empty AI field falls back to HTML")
	assert.Equal(t, "HTML Brand", merged.Brand)
	assert.Equal(t, []string{"https://cdn/a.jpg", "https://cdn/b.jpg", "https://cdn/c.jpg"}, merged.Images)
	assert.Equal(t, []string{"waterproof", "light"}, merged.Features)
	assert.Equal(t, "https://shop.example/p", merged.URL)
}

func TestMergeUnknownTitleWhenBothEmpty(t *testing.T) {
	merged := Merge(domain.ProductMetadata{}, &domain.ProductMetadata{Description: "only a description"})
	assert.Equal(t, UnknownTitle, merged.Title)
	assert.Equal(t, "only a description", merged.Description)
}

func TestMergeWithoutAIReturnsHTML(t *testing.T) {
	fromHTML := domain.ProductMetadata{Title: "Kettle", Images: []string{"a", "a", "b"}}
	merged := Merge(fromHTML, nil)
	assert.Equal(t, "Kettle", merged.Title)
	assert.Equal(t, []string{"a", "b"}, merged.Images)
	assert.Empty(t, merged.Features)
}

func TestFallback(t *testing.T) {
	cases := []struct {
		url   string
		title string
		brand string
	}{
		{"https://www.acmestore.com/products/trail-runner_2", "Trail Runner 2", "Acmestore"},
		{"https://shop.example/p/ceramic%20mug.html", "Ceramic Mug", "Shop"},
		{"https://brand.example/", UnknownTitle, "Brand"},
		{"https://brand.example/p/organic-cotton-tee/", "Organic Cotton Tee", "Brand"},
	}
	for _, tc := range cases {
		meta := Fallback(tc.url)
		assert.Equal(t, tc.title, meta.Title, tc.url)
		assert.Equal(t, tc.brand, meta.Brand, tc.url)
		assert.Equal(t, tc.url, meta.URL)
	}
}
