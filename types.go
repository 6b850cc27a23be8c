package spacetraveling

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
	Image       string // og:image, absolute
	NoIndex     bool
	// Preview is set while the visitor browses draft content.
	Preview bool
}
