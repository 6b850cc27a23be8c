// Package content defines the records served by a headless content API and
// the Gateway contract that every content source implements.
package content

import (
	"context"
	"errors"

	"github.com/eringen/spacetraveling/richtext"
)

// TypePost is the document type of blog posts.
const TypePost = "post"

var (
	// ErrNotFound is returned when a requested document does not exist.
	ErrNotFound = errors.New("content: document not found")
	// ErrInvalidCursor is returned for a cursor the gateway did not issue.
	ErrInvalidCursor = errors.New("content: invalid cursor")
	// ErrInvalidPreview is returned for a preview token that fails validation.
	ErrInvalidPreview = errors.New("content: invalid preview token")
)

// Order is the ordering of query results by first publication date.
type Order int

const (
	Desc Order = iota
	Asc
)

func (o Order) String() string {
	if o == Asc {
		return "asc"
	}
	return "desc"
}

// Banner is a post's header image.
type Banner struct {
	URL string `json:"url"`
	Alt string `json:"alt,omitempty"`
}

// Section is one heading plus its rich-text body.
type Section struct {
	Heading string            `json:"heading"`
	Body    richtext.RichText `json:"body"`
}

// PostData holds the custom fields of a post document.
type PostData struct {
	Title    string    `json:"title"`
	Subtitle string    `json:"subtitle"`
	Author   string    `json:"author"`
	Banner   Banner    `json:"banner"`
	Content  []Section `json:"content"`
}

// Document is a raw record as returned by the content API. Publication dates
// are kept as the API's string form; formatting is the caller's concern.
type Document struct {
	ID                   string   `json:"id"`
	UID                  string   `json:"uid"`
	Type                 string   `json:"type"`
	FirstPublicationDate string   `json:"first_publication_date"`
	Data                 PostData `json:"data"`
}

// Query selects a page of documents of one type.
type Query struct {
	Type     string
	PageSize int
	// Cursor is an opaque token from a previous Page.NextPage. When set, the
	// paging fields are taken from the cursor and ignored. Ref is not: the
	// cursor is client input and must not choose the content version.
	Cursor string
	// After restricts results to documents strictly after the document with
	// this ID in the requested Order.
	After string
	Order Order
	// Ref selects a content version. Empty means the published version.
	Ref string
}

// Page is one page of query results.
type Page struct {
	Results      []Document
	NextPage     string // empty at the end of the list
	Page         int
	TotalPages   int
	TotalResults int
}

// Gateway is a source of documents. Every method performs at most one
// logical request against the backing store; failures are returned as-is.
type Gateway interface {
	Query(ctx context.Context, q Query) (Page, error)
	GetByUID(ctx context.Context, docType, uid, ref string) (Document, error)
	// GetByID returns the document with the given ID, of any type.
	GetByID(ctx context.Context, id, ref string) (Document, error)
	// PreviewRef validates a preview token and returns the ref under which
	// draft content is visible.
	PreviewRef(ctx context.Context, token string) (string, error)
}
