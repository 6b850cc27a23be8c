package richtext

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestUnmarshalPrismicBlocks(t *testing.T) {
	input := `[
		{"type":"heading2","text":"Title","spans":[]},
		{"type":"paragraph","text":"Go is fun","spans":[{"start":6,"end":9,"type":"strong"},{"start":0,"end":2,"type":"hyperlink","data":{"link_type":"Web","url":"https://go.dev"}}]},
		{"type":"embed","text":"???","spans":[{"start":0,"end":1,"type":"label","data":{"label":"x"}}]},
		{"type":"image","url":"https://images.prismic.io/a.png","alt":"A"}
	]`
	var rt RichText
	if err := json.Unmarshal([]byte(input), &rt); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(rt) != 4 {
		t.Fatalf("len = %d, want 4", len(rt))
	}
	if rt[0].Kind != KindHeading2 {
		t.Errorf("rt[0].Kind = %q, want %q", rt[0].Kind, KindHeading2)
	}
	if got := rt[1].Spans[1]; got.Kind != SpanHyperlink || got.URL != "https://go.dev" {
		t.Errorf("hyperlink span = %+v", got)
	}
	if rt[2].Kind != KindUnknown {
		t.Errorf("rt[2].Kind = %q, want %q", rt[2].Kind, KindUnknown)
	}
	if rt[2].Spans[0].Kind != SpanUnknown {
		t.Errorf("span kind = %q, want %q", rt[2].Spans[0].Kind, SpanUnknown)
	}
	if rt[3].URL != "https://images.prismic.io/a.png" || rt[3].Alt != "A" {
		t.Errorf("image block = %+v", rt[3])
	}
}

func TestMarshalRoundTripKeepsSpans(t *testing.T) {
	in := RichText{{
		Kind:  KindParagraph,
		Text:  "see docs",
		Spans: []Span{{Start: 4, End: 8, Kind: SpanHyperlink, URL: "https://example.com"}},
	}}
	b, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out RichText
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(out) != 1 || len(out[0].Spans) != 1 || out[0].Spans[0].URL != "https://example.com" {
		t.Errorf("round trip = %+v", out)
	}
}

func TestAsText(t *testing.T) {
	rt := Paragraphs("one two", "three")
	if got := AsText(rt, " "); got != "one two three" {
		t.Errorf("AsText = %q, want %q", got, "one two three")
	}
	if got := AsText(nil, " "); got != "" {
		t.Errorf("AsText(nil) = %q, want empty", got)
	}
}

func TestAsHTMLSpans(t *testing.T) {
	tests := []struct {
		name  string
		block Block
		want  string
	}{
		{
			name:  "plain",
			block: Block{Kind: KindParagraph, Text: "hello"},
			want:  "<p>hello</p>",
		},
		{
			name:  "strong",
			block: Block{Kind: KindParagraph, Text: "a bold move", Spans: []Span{{Start: 2, End: 6, Kind: SpanStrong}}},
			want:  "<p>a <strong>bold</strong> move</p>",
		},
		{
			name: "nested",
			block: Block{Kind: KindParagraph, Text: "bold italic", Spans: []Span{
				{Start: 0, End: 11, Kind: SpanStrong},
				{Start: 5, End: 11, Kind: SpanEm},
			}},
			want: "<p><strong>bold <em>italic</em></strong></p>",
		},
		{
			name: "overlapping",
			block: Block{Kind: KindParagraph, Text: "abcdefgh", Spans: []Span{
				{Start: 0, End: 5, Kind: SpanStrong},
				{Start: 3, End: 8, Kind: SpanEm},
			}},
			want: "<p><strong>abc<em>de</em></strong><em>fgh</em></p>",
		},
		{
			name:  "link",
			block: Block{Kind: KindParagraph, Text: "go site", Spans: []Span{{Start: 0, End: 2, Kind: SpanHyperlink, URL: "https://go.dev"}}},
			want:  `<p><a href="https://go.dev">go</a> site</p>`,
		},
		{
			name:  "unsafe link dropped",
			block: Block{Kind: KindParagraph, Text: "click", Spans: []Span{{Start: 0, End: 5, Kind: SpanHyperlink, URL: "javascript:alert(1)"}}},
			want:  "<p>click</p>",
		},
		{
			name:  "out of range span clamped",
			block: Block{Kind: KindParagraph, Text: "abc", Spans: []Span{{Start: 1, End: 99, Kind: SpanEm}}},
			want:  "<p>a<em>bc</em></p>",
		},
		{
			name:  "utf16 offsets",
			block: Block{Kind: KindParagraph, Text: "😀 olá", Spans: []Span{{Start: 3, End: 6, Kind: SpanEm}}},
			want:  "<p>😀 <em>olá</em></p>",
		},
		{
			name:  "heading",
			block: Block{Kind: KindHeading3, Text: "Intro"},
			want:  "<h3>Intro</h3>",
		},
		{
			name:  "line breaks",
			block: Block{Kind: KindParagraph, Text: "a\nb"},
			want:  "<p>a<br />b</p>",
		},
		{
			name:  "preformatted keeps newlines",
			block: Block{Kind: KindPreformatted, Text: "x := 1\ny := 2"},
			want:  "<pre>x := 1\ny := 2</pre>",
		},
		{
			name:  "unknown renders as text",
			block: Block{Kind: KindUnknown, Text: "raw", Spans: []Span{{Start: 0, End: 3, Kind: SpanStrong}}},
			want:  "<p>raw</p>",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AsHTML(RichText{tt.block})
			if got != tt.want {
				t.Errorf("AsHTML = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAsHTMLEscapesText(t *testing.T) {
	got := AsHTML(Paragraphs(`<script>alert("x")</script>`))
	if strings.Contains(got, "<script>") {
		t.Errorf("AsHTML did not escape: %q", got)
	}
	if !strings.Contains(got, "&lt;script&gt;") {
		t.Errorf("AsHTML = %q, want escaped tag", got)
	}
}

func TestAsHTMLGroupsLists(t *testing.T) {
	rt := RichText{
		{Kind: KindListItem, Text: "a"},
		{Kind: KindListItem, Text: "b"},
		{Kind: KindOListItem, Text: "one"},
		{Kind: KindParagraph, Text: "end"},
	}
	want := "<ul><li>a</li><li>b</li></ul><ol><li>one</li></ol><p>end</p>"
	if got := AsHTML(rt); got != want {
		t.Errorf("AsHTML = %q, want %q", got, want)
	}
}

func TestAsHTMLImage(t *testing.T) {
	got := AsHTML(RichText{{Kind: KindImage, URL: "https://images.example.com/a.jpg", Alt: `a "quote"`}})
	if !strings.Contains(got, `src="https://images.example.com/a.jpg"`) {
		t.Errorf("missing src: %q", got)
	}
	if !strings.Contains(got, `alt="a &#34;quote&#34;"`) {
		t.Errorf("alt not escaped: %q", got)
	}
	if got := AsHTML(RichText{{Kind: KindImage, URL: "data:text/html,hi"}}); got != "" {
		t.Errorf("unsafe image = %q, want empty", got)
	}
}

func TestComponentRenders(t *testing.T) {
	var buf bytes.Buffer
	if err := Component(Paragraphs("hi")).Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if buf.String() != "<p>hi</p>" {
		t.Errorf("Component = %q, want %q", buf.String(), "<p>hi</p>")
	}
}

func TestSafeURL(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"https://example.com", "https://example.com"},
		{"/relative/path", "/relative/path"},
		{"#anchor", "#anchor"},
		{"mailto:a@b.c", "mailto:a@b.c"},
		{"javascript:alert(1)", ""},
		{"data:text/html;base64,xx", ""},
		{"noscheme", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := SafeURL(tt.input); got != tt.want {
			t.Errorf("SafeURL(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
