package spacetraveling

import (
	"net/url"
	"path"
	"strconv"
	"strings"
)

// Slugify converts a title to a URL-safe slug.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	prev := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prev = false
		default:
			if !prev && b.Len() > 0 {
				b.WriteByte('-')
				prev = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// BuildURL joins a base URL with path segments, ensuring a trailing slash.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if len(pathSegments) > 0 && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

// absoluteURL resolves ref against base. Already absolute URLs and empty
// refs are returned unchanged.
func absoluteURL(base, ref string) string {
	if ref == "" {
		return ""
	}
	r, err := url.Parse(ref)
	if err != nil || r.IsAbs() {
		return ref
	}
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}

// PathEscape escapes a string for use in a URL path.
func PathEscape(s string) string {
	return url.PathEscape(s)
}

// LoadMorePath returns the list URL that renders pages list pages at once.
// It is the load-more target for clients without script.
func LoadMorePath(pages int) string {
	if pages <= 1 {
		return "/"
	}
	return "/?pages=" + strconv.Itoa(min(pages, MaxPages))
}

// MorePostsPath returns the partial endpoint that renders the page at cursor.
// pages is the page count the list will hold once the partial is appended.
func MorePostsPath(cursor string, pages int) string {
	v := url.Values{}
	v.Set("cursor", cursor)
	v.Set("pages", strconv.Itoa(min(pages, MaxPages)))
	return "/posts/more/?" + v.Encode()
}
