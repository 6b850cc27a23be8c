// Package richtext models span-based structured text as delivered by headless
// content APIs and renders it to plain text or sanitized HTML.
package richtext

import (
	"encoding/json"
	"strings"
)

// Kind is the closed set of block types.
type Kind string

const (
	KindParagraph    Kind = "paragraph"
	KindHeading1     Kind = "heading1"
	KindHeading2     Kind = "heading2"
	KindHeading3     Kind = "heading3"
	KindHeading4     Kind = "heading4"
	KindHeading5     Kind = "heading5"
	KindHeading6     Kind = "heading6"
	KindPreformatted Kind = "preformatted"
	KindListItem     Kind = "list-item"
	KindOListItem    Kind = "o-list-item"
	KindImage        Kind = "image"
	KindUnknown      Kind = "unknown"
)

var knownKinds = map[Kind]struct{}{
	KindParagraph: {}, KindHeading1: {}, KindHeading2: {}, KindHeading3: {},
	KindHeading4: {}, KindHeading5: {}, KindHeading6: {}, KindPreformatted: {},
	KindListItem: {}, KindOListItem: {}, KindImage: {},
}

// ParseKind maps a wire type to a Kind. Unrecognized types yield KindUnknown.
func ParseKind(s string) Kind {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := knownKinds[k]; ok {
		return k
	}
	return KindUnknown
}

// SpanKind is the closed set of inline span types.
type SpanKind string

const (
	SpanStrong    SpanKind = "strong"
	SpanEm        SpanKind = "em"
	SpanHyperlink SpanKind = "hyperlink"
	SpanUnknown   SpanKind = "unknown"
)

// ParseSpanKind maps a wire span type to a SpanKind.
func ParseSpanKind(s string) SpanKind {
	switch k := SpanKind(strings.ToLower(strings.TrimSpace(s))); k {
	case SpanStrong, SpanEm, SpanHyperlink:
		return k
	default:
		return SpanUnknown
	}
}

// Span marks a range of a block's text. Start and End are UTF-16 code unit
// offsets, End exclusive.
type Span struct {
	Start int
	End   int
	Kind  SpanKind
	URL   string // hyperlink target
}

// Block is a single paragraph-level element.
type Block struct {
	Kind  Kind
	Text  string
	Spans []Span
	URL   string // image source
	Alt   string // image alt text
}

// RichText is an ordered sequence of blocks.
type RichText []Block

type wireSpan struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Type  string `json:"type"`
	Data  *struct {
		URL string `json:"url,omitempty"`
	} `json:"data,omitempty"`
}

type wireBlock struct {
	Type  string     `json:"type"`
	Text  string     `json:"text"`
	Spans []wireSpan `json:"spans"`
	URL   string     `json:"url,omitempty"`
	Alt   string     `json:"alt,omitempty"`
}

// UnmarshalJSON decodes the Prismic structured-text block shape.
func (b *Block) UnmarshalJSON(data []byte) error {
	var w wireBlock
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*b = Block{
		Kind: ParseKind(w.Type),
		Text: w.Text,
		URL:  w.URL,
		Alt:  w.Alt,
	}
	for _, ws := range w.Spans {
		s := Span{Start: ws.Start, End: ws.End, Kind: ParseSpanKind(ws.Type)}
		if ws.Data != nil {
			s.URL = ws.Data.URL
		}
		b.Spans = append(b.Spans, s)
	}
	return nil
}

// MarshalJSON encodes b in the same shape UnmarshalJSON accepts.
func (b Block) MarshalJSON() ([]byte, error) {
	w := wireBlock{
		Type:  string(b.Kind),
		Text:  b.Text,
		Spans: make([]wireSpan, 0, len(b.Spans)),
		URL:   b.URL,
		Alt:   b.Alt,
	}
	for _, s := range b.Spans {
		ws := wireSpan{Start: s.Start, End: s.End, Type: string(s.Kind)}
		if s.URL != "" {
			ws.Data = &struct {
				URL string `json:"url,omitempty"`
			}{URL: s.URL}
		}
		w.Spans = append(w.Spans, ws)
	}
	return json.Marshal(w)
}

// AsText returns the plain text of rt, joining blocks with sep.
func AsText(rt RichText, sep string) string {
	parts := make([]string, 0, len(rt))
	for _, b := range rt {
		parts = append(parts, b.Text)
	}
	return strings.Join(parts, sep)
}

// Paragraphs builds a RichText of plain paragraphs, one per string.
func Paragraphs(texts ...string) RichText {
	rt := make(RichText, 0, len(texts))
	for _, t := range texts {
		rt = append(rt, Block{Kind: KindParagraph, Text: t})
	}
	return rt
}
