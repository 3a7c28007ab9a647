package metadata

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const jsonLDPage = `<!doctype html><html><head>
<title>Buy the Aurora Kettle | Example Store</title>
<meta property="og:title" content="OG Kettle Title">
<script type="application/ld+json">{"@context":"https://schema.org","@type":"BreadcrumbList"}</script>
<script type="application/ld+json">
{"@context":"https://schema.org","@graph":[
  {"@type":"Organization","name":"Example Store"},
  {"@type":["Product","Thing"],"name":"Aurora Kettle","description":"Gooseneck kettle",
   "image":["https://cdn.example/k1.jpg",{"url":"https://cdn.example/k2.jpg"},{"contentUrl":"https://cdn.example/k3.jpg"}],
   "brand":{"@type":"Brand","name":"Aurora"},
   "offers":[{"@type":"Offer","price":79.5,"priceCurrency":"USD"}]}
]}
</script>
</head><body><h1>Kettle</h1></body></html>`

func TestExtractHTMLJSONLDTitleWins(t *testing.T) {
	meta, err := ExtractHTML(strings.NewReader(jsonLDPage), "https://shop.example/p/aurora-kettle")
	require.NoError(t, err)

	assert.Equal(t, "Aurora Kettle", meta.Title)
	assert.Equal(t, "Gooseneck kettle", meta.Description)
	assert.Equal(t, "Aurora", meta.Brand)
	assert.Equal(t, "USD 79.5", meta.Price)
	assert.Equal(t, []string{"https://cdn.example/k1.jpg", "https://cdn.example/k2.jpg", "https://cdn.example/k3.jpg"}, meta.Images)
	assert.Equal(t, "https://shop.example/p/aurora-kettle", meta.URL)
}

func TestExtractHTMLJSONLDSingleObjectStringBrand(t *testing.T) {
	page := `<html><head><script type="application/ld+json">
{"@type":"Product","name":"Desk Lamp","image":"https://cdn.example/lamp.jpg","brand":"Lumen","offers":{"price":"25","priceCurrency":"EUR"}}
</script></head></html>`
	meta, err := ExtractHTML(strings.NewReader(page), "https://shop.example/lamp")
	require.NoError(t, err)

	assert.Equal(t, "Desk Lamp", meta.Title)
	assert.Equal(t, "Lumen", meta.Brand)
	assert.Equal(t, "EUR 25", meta.Price)
	assert.Equal(t, []string{"https://cdn.example/lamp.jpg"}, meta.Images)
}

func TestExtractHTMLOpenGraph(t *testing.T) {
	page := `<html><head>
<script type="application/ld+json">{ not json</script>
<meta property="og:title" content="Trail Shoe">
<meta property="og:description" content="Grippy and light">
<meta property="og:image" content="/img/shoe-1.jpg">
<meta property="og:image" content="https://cdn.example/shoe-2.jpg">
<meta property="product:price:amount" content="120.00">
<meta property="product:price:currency" content="USD">
<meta property="product:brand" content="Ridge">
</head></html>`
	meta, err := ExtractHTML(strings.NewReader(page), "https://shop.example/p/shoe")
	require.NoError(t, err)

	assert.Equal(t, "Trail Shoe", meta.Title)
	assert.Equal(t, "Grippy and light", meta.Description)
	assert.Equal(t, "USD 120.00", meta.Price)
	assert.Equal(t, "Ridge", meta.Brand)
	assert.Equal(t, []string{"https://shop.example/img/shoe-1.jpg", "https://cdn.example/shoe-2.jpg"}, meta.Images)
}

func TestExtractHTMLHeuristics(t *testing.T) {
	page := `<html><head>
<title>Ceramic Mug - Handmade Goods - Free Shipping</title>
<meta name="description" content="A mug for mornings">
</head><body>
<h1>Ceramic Mug</h1>
<img src="/static/logo.png">
<img src="/static/tiny.jpg" width="50">
<img data-src="/images/mug-front.jpg">
<img src="/images/mug-side.jpg" width="800" height="600">
<img src="/images/tracking-pixel.gif">
<img src="/images/a.jpg"><img src="/images/b.jpg"><img src="/images/c.jpg"><img src="/images/d.jpg">
</body></html>`
	meta, err := ExtractHTML(strings.NewReader(page), "https://shop.example/p/mug")
	require.NoError(t, err)

	assert.Equal(t, "Ceramic Mug", meta.Title, "shorter h1 should replace the title tag")
	assert.Equal(t, "A mug for mornings", meta.Description)
	require.Len(t, meta.Images, maxFallbackImages)
	assert.Equal(t, "https://shop.example/images/mug-front.jpg", meta.Images[0])
	assert.Equal(t, "https://shop.example/images/mug-side.jpg", meta.Images[1])
	for _, img := range meta.Images {
		assert.NotContains(t, img, "logo")
		assert.NotContains(t, img, "pixel")
		assert.NotContains(t, img, "tiny")
	}
}

func TestExtractHTMLHeuristicsUsesH1WhenTitleMissing(t *testing.T) {
	meta, err := ExtractHTML(strings.NewReader(`<html><body><h1> Solo  Heading </h1></body></html>`), "https://shop.example")
	require.NoError(t, err)
	assert.Equal(t, "Solo Heading", meta.Title)
}
