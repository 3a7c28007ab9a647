package metadata

import (
	"net/url"
	"path"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jknoll/agentic-orchestration/internal/domain"
)

// UnknownTitle is used when no source produced a title.
const UnknownTitle = "Unknown Product"

// Merge combines HTML-scraped metadata with an optional AI result. AI scalar
// fields win when non-empty; lists are unioned AI first, de-duplicated, in
// first-seen order.
func Merge(fromHTML domain.ProductMetadata, fromAI *domain.ProductMetadata) domain.ProductMetadata {
	if fromAI == nil {
		out := fromHTML.Clone()
		out.Images = union(out.Images)
		out.Features = union(out.Features)
		return out
	}
	out := domain.ProductMetadata{
		Title:       prefer(fromAI.Title, fromHTML.Title),
		Description: prefer(fromAI.Description, fromHTML.Description),
		Price:       prefer(fromAI.Price, fromHTML.Price),
		Brand:       prefer(fromAI.Brand, fromHTML.Brand),
		Images:      union(fromAI.Images, fromHTML.Images),
		Features:    union(fromAI.Features, fromHTML.Features),
		URL:         prefer(fromHTML.URL, fromAI.URL),
	}
	if out.Title == "" {
		out.Title = UnknownTitle
	}
	return out
}

func prefer(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func union(lists ...[]string) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, list := range lists {
		for _, v := range list {
			v = strings.TrimSpace(v)
			if v == "" {
				continue
			}
			if _, dup := seen[v]; dup {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}

// Fallback derives placeholder metadata from the URL alone: the title from
// the last path segment and the brand from the domain.
func Fallback(rawURL string) domain.ProductMetadata {
	meta := domain.ProductMetadata{URL: rawURL, Images: []string{}, Features: []string{}}
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		meta.Title = UnknownTitle
		return meta
	}
	caser := cases.Title(language.Und)

	segment := path.Base(strings.TrimRight(u.Path, "/"))
	if unescaped, err := url.PathUnescape(segment); err == nil {
		segment = unescaped
	}
	switch strings.ToLower(path.Ext(segment)) {
	case ".html", ".htm", ".php", ".aspx":
		segment = strings.TrimSuffix(segment, path.Ext(segment))
	}
	segment = strings.NewReplacer("-", " ", "_", " ").Replace(segment)
	segment = strings.Join(strings.Fields(segment), " ")
	if segment == "" || segment == "." || segment == "/" {
		meta.Title = UnknownTitle
	} else {
		meta.Title = caser.String(segment)
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	if label, _, _ := strings.Cut(host, "."); label != "" {
		meta.Brand = caser.String(label)
	}
	return meta
}
