package views

import (
	"context"
	"encoding/json"
	"io"
	"strconv"
	"time"

	"github.com/a-h/templ"

	"github.com/eringen/spacetraveling"
)

// writer accumulates the first write error so templates can emit markup
// without checking every call.
type writer struct {
	w   io.Writer
	err error
}

func (w *writer) raw(parts ...string) {
	for _, s := range parts {
		if w.err != nil {
			return
		}
		_, w.err = io.WriteString(w.w, s)
	}
}

// text writes s HTML-escaped; it is safe in element content and in quoted
// attribute values.
func (w *writer) text(s string) {
	w.raw(templ.EscapeString(s))
}

// url writes a sanitized, escaped URL attribute value.
func (w *writer) url(s string) {
	w.text(string(templ.URL(s)))
}

// component adapts a write function to templ.Component.
func component(fn func(ctx context.Context, w *writer)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		w := &writer{w: out}
		fn(ctx, w)
		return w.err
	})
}

// WebsiteJsonLD produces a Schema.org WebSite JSON-LD block using cfg values.
func WebsiteJsonLD(cfg spacetraveling.SiteConfig) string {
	data := map[string]interface{}{
		"@context": "https://schema.org",
		"@type":    "WebSite",
		"name":     cfg.Name,
		"url":      spacetraveling.BuildURL(cfg.URL),
	}
	if cfg.Description != "" {
		data["description"] = cfg.Description
	}
	return marshalJsonLD(data)
}

// BlogPostingJsonLD produces a Schema.org BlogPosting JSON-LD block for a post.
func BlogPostingJsonLD(cfg spacetraveling.SiteConfig, post spacetraveling.PostView) string {
	postURL := spacetraveling.BuildURL(cfg.URL, "post", post.UID)
	data := map[string]interface{}{
		"@context":      "https://schema.org",
		"@type":         "BlogPosting",
		"headline":      post.Title,
		"description":   post.Subtitle,
		"datePublished": post.PublishedAt.UTC().Format(time.RFC3339),
		"url":           postURL,
		"timeRequired":  "PT" + strconv.Itoa(post.ReadMinutes) + "M",
		"publisher": map[string]string{
			"@type": "Organization",
			"name":  cfg.Name,
		},
		"mainEntityOfPage": map[string]string{
			"@type": "WebPage",
			"@id":   postURL,
		},
	}
	if post.Author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  post.Author,
		}
	}
	if post.BannerURL != "" {
		data["image"] = post.BannerURL
	}
	return marshalJsonLD(data)
}

// marshalJsonLD relies on encoding/json escaping <, > and & so the result
// cannot close the surrounding script element.
func marshalJsonLD(data map[string]interface{}) string {
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}
