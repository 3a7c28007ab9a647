package metadata

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/jknoll/agentic-orchestration/internal/domain"
)

const (
	maxFallbackImages = 5
	minImageDimension = 200
)

var skipImageKeywords = []string{"icon", "logo", "sprite", "pixel"}

// ExtractHTML parses a product page. Strategies run in order of reliability:
// schema.org JSON-LD, Open Graph, then a heuristic scan. The first strategy
// that yields a title wins.
func ExtractHTML(r io.Reader, pageURL string) (domain.ProductMetadata, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return domain.ProductMetadata{URL: pageURL}, fmt.Errorf("metadata: parse html: %w", err)
	}
	base, _ := url.Parse(pageURL)

	if meta, ok := fromJSONLD(doc, pageURL); ok && meta.Title != "" {
		return meta, nil
	}
	if meta, ok := fromOpenGraph(doc, base, pageURL); ok && meta.Title != "" {
		return meta, nil
	}
	return fromHeuristics(doc, base, pageURL), nil
}

func walk(n *html.Node, fn func(*html.Node)) {
	fn(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}

func text(n *html.Node) string {
	var sb strings.Builder
	walk(n, func(c *html.Node) {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
	})
	return strings.Join(strings.Fields(sb.String()), " ")
}

func resolveRef(base *url.URL, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" || base == nil {
		return ref
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return base.ResolveReference(u).String()
}

// JSON-LD

func fromJSONLD(doc *html.Node, pageURL string) (domain.ProductMetadata, bool) {
	var scripts []string
	walk(doc, func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Script &&
			strings.EqualFold(strings.TrimSpace(attr(n, "type")), "application/ld+json") && n.FirstChild != nil {
			scripts = append(scripts, n.FirstChild.Data)
		}
	})
	for _, raw := range scripts {
		var data any
		if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &data); err != nil {
			continue
		}
		if obj, ok := data.(map[string]any); ok {
			if graph, ok := obj["@graph"]; ok {
				data = graph
			}
		}
		switch v := data.(type) {
		case []any:
			for _, item := range v {
				if obj, ok := item.(map[string]any); ok && isProduct(obj) {
					return parseProduct(obj, pageURL), true
				}
			}
		case map[string]any:
			if isProduct(v) {
				return parseProduct(v, pageURL), true
			}
		}
	}
	return domain.ProductMetadata{}, false
}

func isProduct(obj map[string]any) bool {
	switch t := obj["@type"].(type) {
	case string:
		return t == "Product"
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok && s == "Product" {
				return true
			}
		}
	}
	return false
}

func parseProduct(obj map[string]any, pageURL string) domain.ProductMetadata {
	meta := domain.ProductMetadata{
		Title:       strings.TrimSpace(str(obj["name"])),
		Description: strings.TrimSpace(str(obj["description"])),
		Images:      []string{},
		Features:    []string{},
		URL:         pageURL,
	}

	switch img := obj["image"].(type) {
	case string:
		meta.Images = appendNonEmpty(meta.Images, img)
	case []any:
		for _, item := range img {
			meta.Images = appendNonEmpty(meta.Images, imageRef(item))
		}
	case map[string]any:
		meta.Images = appendNonEmpty(meta.Images, imageRef(img))
	}

	var offer map[string]any
	switch o := obj["offers"].(type) {
	case map[string]any:
		offer = o
	case []any:
		if len(o) > 0 {
			offer, _ = o[0].(map[string]any)
		}
	}
	if offer != nil {
		if price := str(offer["price"]); price != "" {
			meta.Price = strings.TrimSpace(str(offer["priceCurrency"]) + " " + price)
		}
	}

	switch b := obj["brand"].(type) {
	case map[string]any:
		meta.Brand = strings.TrimSpace(str(b["name"]))
	case string:
		meta.Brand = strings.TrimSpace(b)
	}
	return meta
}

func imageRef(v any) string {
	switch img := v.(type) {
	case string:
		return img
	case map[string]any:
		if u := str(img["url"]); u != "" {
			return u
		}
		return str(img["contentUrl"])
	}
	return ""
}

// str renders JSON scalars; numbers keep their shortest form.
func str(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case json.Number:
		return s.String()
	}
	return ""
}

func appendNonEmpty(list []string, v string) []string {
	if v = strings.TrimSpace(v); v != "" {
		return append(list, v)
	}
	return list
}

// Open Graph

func fromOpenGraph(doc *html.Node, base *url.URL, pageURL string) (domain.ProductMetadata, bool) {
	props := map[string][]string{}
	walk(doc, func(n *html.Node) {
		if n.Type != html.ElementNode || n.DataAtom != atom.Meta {
			return
		}
		key := attr(n, "property")
		if key == "" {
			return
		}
		props[key] = append(props[key], attr(n, "content"))
	})
	first := func(key string) string {
		if vals := props[key]; len(vals) > 0 {
			return strings.TrimSpace(vals[0])
		}
		return ""
	}

	title := first("og:title")
	if title == "" {
		return domain.ProductMetadata{}, false
	}
	meta := domain.ProductMetadata{
		Title:       title,
		Description: first("og:description"),
		Brand:       first("product:brand"),
		Images:      []string{},
		Features:    []string{},
		URL:         pageURL,
	}
	for _, img := range props["og:image"] {
		meta.Images = appendNonEmpty(meta.Images, resolveRef(base, img))
	}
	if amount := first("product:price:amount"); amount != "" {
		meta.Price = strings.TrimSpace(first("product:price:currency") + " " + amount)
	}
	return meta, true
}

// Heuristics

func fromHeuristics(doc *html.Node, base *url.URL, pageURL string) domain.ProductMetadata {
	meta := domain.ProductMetadata{Images: []string{}, Features: []string{}, URL: pageURL}
	var title, h1 string
	walk(doc, func(n *html.Node) {
		if n.Type != html.ElementNode {
			return
		}
		switch n.DataAtom {
		case atom.Title:
			if title == "" {
				title = text(n)
			}
		case atom.H1:
			if h1 == "" {
				h1 = text(n)
			}
		case atom.Meta:
			if meta.Description == "" && strings.EqualFold(attr(n, "name"), "description") {
				meta.Description = strings.TrimSpace(attr(n, "content"))
			}
		case atom.Img:
			if len(meta.Images) >= maxFallbackImages {
				return
			}
			if src := candidateImage(n); src != "" {
				meta.Images = append(meta.Images, resolveRef(base, src))
			}
		}
	})
	meta.Title = title
	if h1 != "" && (title == "" || len(h1) < len(title)) {
		meta.Title = h1
	}
	return meta
}

func candidateImage(n *html.Node) string {
	src := strings.TrimSpace(attr(n, "src"))
	if src == "" {
		src = strings.TrimSpace(attr(n, "data-src"))
	}
	if src == "" {
		return ""
	}
	lower := strings.ToLower(src)
	for _, kw := range skipImageKeywords {
		if strings.Contains(lower, kw) {
			return ""
		}
	}
	for _, dim := range []string{"width", "height"} {
		if v, err := strconv.Atoi(strings.TrimSpace(attr(n, dim))); err == nil && v < minImageDimension {
			return ""
		}
	}
	return src
}
