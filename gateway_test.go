package spacetraveling

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/eringen/spacetraveling/content"
	"github.com/eringen/spacetraveling/richtext"
)

const (
	memPreviewToken = "good-token"
	memPreviewRef   = "draft-ref"
)

// memGateway is an in-memory content.Gateway. With pages set it replays
// scripted responses keyed by cursor; otherwise it pages through docs.
type memGateway struct {
	mu      sync.Mutex
	docs    []content.Document
	drafts  []content.Document
	pages   map[string]content.Page
	err     error
	queries []content.Query
	gets    int
}

func (g *memGateway) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.queries)
}

func (g *memGateway) visible(ref string) []content.Document {
	docs := append([]content.Document(nil), g.docs...)
	if ref == memPreviewRef {
		docs = append(docs, g.drafts...)
	}
	return docs
}

func (g *memGateway) Query(ctx context.Context, q content.Query) (content.Page, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.queries = append(g.queries, q)
	if g.err != nil {
		return content.Page{}, g.err
	}
	if g.pages != nil {
		p, ok := g.pages[q.Cursor]
		if !ok {
			return content.Page{}, content.ErrInvalidCursor
		}
		return p, nil
	}

	offset, size := 0, q.PageSize
	if q.Cursor != "" {
		parts := strings.Split(q.Cursor, ":")
		if len(parts) != 3 || parts[0] != "mem" {
			return content.Page{}, content.ErrInvalidCursor
		}
		offset, _ = strconv.Atoi(parts[1])
		size, _ = strconv.Atoi(parts[2])
	}
	if size < 1 {
		size = 20
	}

	docs := g.visible(q.Ref)
	sort.Slice(docs, func(i, j int) bool {
		if q.Order == content.Asc {
			return docs[i].FirstPublicationDate < docs[j].FirstPublicationDate
		}
		return docs[i].FirstPublicationDate > docs[j].FirstPublicationDate
	})
	if q.After != "" {
		for i, d := range docs {
			if d.ID == q.After {
				docs = docs[i+1:]
				break
			}
		}
	}

	page := content.Page{TotalResults: len(docs)}
	end := min(offset+size, len(docs))
	if offset < end {
		page.Results = docs[offset:end]
	}
	if end < len(docs) {
		page.NextPage = fmt.Sprintf("mem:%d:%d", end, size)
	}
	return page, nil
}

func (g *memGateway) GetByUID(ctx context.Context, docType, uid, ref string) (content.Document, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.gets++
	if g.err != nil {
		return content.Document{}, g.err
	}
	for _, d := range g.visible(ref) {
		if d.Type == docType && d.UID == uid {
			return d, nil
		}
	}
	return content.Document{}, content.ErrNotFound
}

func (g *memGateway) GetByID(ctx context.Context, id, ref string) (content.Document, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, d := range g.visible(ref) {
		if d.ID == id {
			return d, nil
		}
	}
	return content.Document{}, content.ErrNotFound
}

func (g *memGateway) PreviewRef(ctx context.Context, token string) (string, error) {
	if token != memPreviewToken {
		return "", content.ErrInvalidPreview
	}
	return memPreviewRef, nil
}

// memPost builds a published post document with a unique ID.
func memPost(uid, date string) content.Document {
	return content.Document{
		ID:                   "id-" + uid,
		UID:                  uid,
		Type:                 content.TypePost,
		FirstPublicationDate: date,
		Data: content.PostData{
			Title:    "Title " + uid,
			Subtitle: "Subtitle " + uid,
			Author:   "Author " + uid,
			Content: []content.Section{
				{Heading: "Heading " + uid, Body: richtext.Paragraphs("Body of " + uid)},
			},
		},
	}
}
