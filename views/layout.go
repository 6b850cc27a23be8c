package views

import "github.com/eringen/spacetraveling"

// layout wraps body in the document shell shared by every full page.
func (v *Views) layout(w *writer, meta spacetraveling.PageMeta, jsonLD string, body func()) {
	w.raw(`<!DOCTYPE html><html lang="`)
	w.text(v.lang)
	w.raw(`"><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1">`)
	w.raw(`<title>`)
	w.text(meta.Title)
	w.raw(`</title>`)
	if meta.Description != "" {
		w.raw(`<meta name="description" content="`)
		w.text(meta.Description)
		w.raw(`">`)
	}
	if meta.Preview || meta.NoIndex {
		w.raw(`<meta name="robots" content="noindex">`)
	} else if meta.URL != "" {
		w.raw(`<link rel="canonical" href="`)
		w.url(meta.URL)
		w.raw(`">`)
	}
	w.raw(`<meta property="og:site_name" content="`)
	w.text(v.cfg.Name)
	w.raw(`"><meta property="og:title" content="`)
	w.text(meta.Title)
	w.raw(`"><meta property="og:type" content="`)
	w.text(meta.OGType)
	w.raw(`">`)
	if meta.URL != "" {
		w.raw(`<meta property="og:url" content="`)
		w.url(meta.URL)
		w.raw(`">`)
	}
	if meta.Image != "" {
		w.raw(`<meta property="og:image" content="`)
		w.url(meta.Image)
		w.raw(`">`)
	}
	w.raw(`<link rel="stylesheet" href="/public/spacetraveling.css">`)
	w.raw(`<link rel="alternate" type="application/rss+xml" title="`)
	w.text(v.cfg.Name)
	w.raw(`" href="/feed.xml">`)
	if jsonLD != "" {
		w.raw(`<script type="application/ld+json">`, jsonLD, `</script>`)
	}
	w.raw(`<script src="/public/loadmore.js" defer></script></head><body>`)

	w.raw(`<header class="site-header"><div class="container"><a class="logo" href="/" aria-label="`)
	w.text(v.cfg.Name)
	w.raw(`">`)
	w.text(v.cfg.Name)
	w.raw(`<span>.</span></a></div></header>`)

	body()

	w.raw(`</body></html>`)
}

func previewExit(w *writer) {
	w.raw(`<aside><a class="preview-exit" href="/api/exit-preview">Sair do modo Preview</a></aside>`)
}
