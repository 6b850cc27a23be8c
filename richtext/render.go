package richtext

import (
	"context"
	"html"
	"io"
	"net/url"
	"sort"
	"strings"
	"unicode/utf16"

	"github.com/a-h/templ"
)

// Component returns a templ.Component that renders rt as sanitized HTML.
func Component(rt RichText) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, AsHTML(rt))
		return err
	})
}

// AsHTML renders rt as HTML. All text is escaped and link or image targets
// that fail SafeURL are dropped, so the output is safe to embed as-is.
func AsHTML(rt RichText) string {
	var buf strings.Builder
	var list Kind

	flushList := func() {
		switch list {
		case KindListItem:
			buf.WriteString("</ul>")
		case KindOListItem:
			buf.WriteString("</ol>")
		}
		list = ""
	}

	for _, b := range rt {
		if b.Kind == KindListItem || b.Kind == KindOListItem {
			if list != b.Kind {
				flushList()
				if b.Kind == KindListItem {
					buf.WriteString("<ul>")
				} else {
					buf.WriteString("<ol>")
				}
				list = b.Kind
			}
			buf.WriteString("<li>")
			writeInline(&buf, b.Text, b.Spans, true)
			buf.WriteString("</li>")
			continue
		}
		flushList()

		switch b.Kind {
		case KindHeading1, KindHeading2, KindHeading3, KindHeading4, KindHeading5, KindHeading6:
			tag := "h" + string(b.Kind[len(b.Kind)-1])
			buf.WriteString("<" + tag + ">")
			writeInline(&buf, b.Text, b.Spans, true)
			buf.WriteString("</" + tag + ">")
		case KindPreformatted:
			buf.WriteString("<pre>")
			writeInline(&buf, b.Text, b.Spans, false)
			buf.WriteString("</pre>")
		case KindImage:
			src := SafeURL(b.URL)
			if src == "" {
				continue
			}
			buf.WriteString(`<p class="block-img"><img src="` + src + `" alt="` + html.EscapeString(b.Alt) + `" loading="lazy" decoding="async"/></p>`)
		case KindParagraph:
			buf.WriteString("<p>")
			writeInline(&buf, b.Text, b.Spans, true)
			buf.WriteString("</p>")
		default:
			buf.WriteString("<p>")
			writeText(&buf, b.Text, true)
			buf.WriteString("</p>")
		}
	}
	flushList()
	return buf.String()
}

// byteOffsets maps each UTF-16 offset of s (0..n inclusive) to a byte index.
// The second unit of a surrogate pair maps to the start of its rune.
func byteOffsets(s string) []int {
	offs := make([]int, 0, len(s)+1)
	for i, r := range s {
		offs = append(offs, i)
		if utf16.RuneLen(r) == 2 {
			offs = append(offs, i)
		}
	}
	return append(offs, len(s))
}

type inlineSpan struct {
	start, end int
	open       string
	close      string
}

func spanTags(s Span) (string, string) {
	switch s.Kind {
	case SpanStrong:
		return "<strong>", "</strong>"
	case SpanEm:
		return "<em>", "</em>"
	case SpanHyperlink:
		href := SafeURL(s.URL)
		if href == "" {
			return "", ""
		}
		return `<a href="` + href + `">`, "</a>"
	}
	return "", ""
}

func writeInline(buf *strings.Builder, text string, spans []Span, br bool) {
	offs := byteOffsets(text)
	n := len(offs) - 1

	var valid []inlineSpan
	for _, s := range spans {
		start, end := max(s.Start, 0), min(s.End, n)
		if start >= end {
			continue
		}
		openTag, closeTag := spanTags(s)
		if openTag == "" {
			continue
		}
		valid = append(valid, inlineSpan{start: start, end: end, open: openTag, close: closeTag})
	}
	if len(valid) == 0 {
		writeText(buf, text, br)
		return
	}

	points := []int{0, n}
	for _, s := range valid {
		points = append(points, s.start, s.end)
	}
	sort.Ints(points)

	var stack []int
	for i := 0; i < len(points)-1; i++ {
		a, b := points[i], points[i+1]
		if a == b {
			continue
		}
		active := make(map[int]bool)
		for j, s := range valid {
			if s.start <= a && s.end >= b {
				active[j] = true
			}
		}

		// Close everything above the first span that no longer applies.
		cut := len(stack)
		for k, j := range stack {
			if !active[j] {
				cut = k
				break
			}
		}
		for k := len(stack) - 1; k >= cut; k-- {
			buf.WriteString(valid[stack[k]].close)
		}
		stack = stack[:cut]

		var opening []int
		for j := range valid {
			if active[j] && !contains(stack, j) {
				opening = append(opening, j)
			}
		}
		sort.SliceStable(opening, func(x, y int) bool {
			return valid[opening[x]].end > valid[opening[y]].end
		})
		for _, j := range opening {
			buf.WriteString(valid[j].open)
			stack = append(stack, j)
		}

		writeText(buf, text[offs[a]:offs[b]], br)
	}
	for k := len(stack) - 1; k >= 0; k-- {
		buf.WriteString(valid[stack[k]].close)
	}
}

func contains(s []int, v int) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

func writeText(buf *strings.Builder, s string, br bool) {
	escaped := html.EscapeString(s)
	if br {
		escaped = strings.ReplaceAll(escaped, "\n", "<br />")
	}
	buf.WriteString(escaped)
}

// SafeURL validates and sanitizes a URL for use in HTML attributes.
func SafeURL(raw string) string {
	val := strings.TrimSpace(html.UnescapeString(raw))
	if val == "" {
		return ""
	}
	if strings.HasPrefix(val, "/") || strings.HasPrefix(val, "#") {
		return html.EscapeString(val)
	}
	parsed, err := url.Parse(val)
	if err != nil || parsed.Scheme == "" {
		return ""
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https", "mailto", "tel":
		return html.EscapeString(val)
	default:
		return ""
	}
}
