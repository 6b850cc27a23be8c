package spacetraveling

import (
	"context"
	"fmt"
	"time"

	"github.com/eringen/spacetraveling/content"
)

const (
	// DefaultPageSize is the number of posts fetched per list page.
	DefaultPageSize = 2
	// MaxPages caps how many pages a single list request may accumulate.
	MaxPages = 20
)

// PostSummary is a post as shown on the list page.
type PostSummary struct {
	UID         string
	Title       string
	Subtitle    string
	Author      string
	PublishedAt time.Time
	Date        string // PublishedAt formatted for display
	Link        string
}

// PaginationState is the accumulated list of posts plus the cursor of the
// next page. Posts is append-only in fetch order; duplicates are kept.
type PaginationState struct {
	NextPage string
	Posts    []PostSummary
	// Ref is the content version the list is read under. LoadMore sends it
	// with every cursor; a cursor never selects the version by itself.
	Ref string
}

// HasMore reports whether another page can be loaded.
func (s PaginationState) HasMore() bool {
	return s.NextPage != ""
}

// Action is an event applied to a PaginationState by Reduce.
type Action interface {
	isAction()
}

// PageLoaded appends a fetched page of posts.
type PageLoaded struct {
	Posts    []PostSummary
	NextPage string
}

func (PageLoaded) isAction() {}

// Reduce returns the state that results from applying action to state.
// state is never modified.
func Reduce(state PaginationState, action Action) PaginationState {
	switch a := action.(type) {
	case PageLoaded:
		posts := make([]PostSummary, 0, len(state.Posts)+len(a.Posts))
		posts = append(posts, state.Posts...)
		posts = append(posts, a.Posts...)
		return PaginationState{NextPage: a.NextPage, Posts: posts, Ref: state.Ref}
	default:
		return state
	}
}

// Paginator loads pages of post summaries from a content gateway. Each load
// is exactly one gateway query; callers must serialize loads on one state.
type Paginator struct {
	gateway  content.Gateway
	dates    DateFormat
	pageSize int
}

// NewPaginator creates a Paginator. A pageSize below 1 means DefaultPageSize.
func NewPaginator(gw content.Gateway, dates DateFormat, pageSize int) *Paginator {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	return &Paginator{gateway: gw, dates: dates, pageSize: pageSize}
}

// LoadInitial fetches the newest page of posts under ref.
func (p *Paginator) LoadInitial(ctx context.Context, ref string) (PaginationState, error) {
	page, err := p.gateway.Query(ctx, content.Query{
		Type:     content.TypePost,
		PageSize: p.pageSize,
		Order:    content.Desc,
		Ref:      ref,
	})
	if err != nil {
		return PaginationState{}, fmt.Errorf("load first page: %w", err)
	}
	return p.apply(PaginationState{Ref: ref}, page)
}

// LoadMore fetches the page at state's cursor and appends it. When there is
// no next page it returns state unchanged without querying the gateway.
func (p *Paginator) LoadMore(ctx context.Context, state PaginationState) (PaginationState, error) {
	if !state.HasMore() {
		return state, nil
	}
	page, err := p.gateway.Query(ctx, content.Query{
		Type:     content.TypePost,
		PageSize: p.pageSize,
		Cursor:   state.NextPage,
		Ref:      state.Ref,
	})
	if err != nil {
		return state, fmt.Errorf("load next page: %w", err)
	}
	return p.apply(state, page)
}

// LoadPages loads the first n pages, stopping early at the end of the list.
func (p *Paginator) LoadPages(ctx context.Context, ref string, n int) (PaginationState, error) {
	n = min(max(n, 1), MaxPages)
	state, err := p.LoadInitial(ctx, ref)
	if err != nil {
		return PaginationState{}, err
	}
	for i := 1; i < n && state.HasMore(); i++ {
		if state, err = p.LoadMore(ctx, state); err != nil {
			return PaginationState{}, err
		}
	}
	return state, nil
}

func (p *Paginator) apply(state PaginationState, page content.Page) (PaginationState, error) {
	posts := make([]PostSummary, 0, len(page.Results))
	for _, doc := range page.Results {
		s, err := Summarize(doc, p.dates)
		if err != nil {
			return state, err
		}
		posts = append(posts, s)
	}
	return Reduce(state, PageLoaded{Posts: posts, NextPage: page.NextPage}), nil
}

// Summarize maps a document to its list-page form.
func Summarize(doc content.Document, dates DateFormat) (PostSummary, error) {
	t, err := ParseDate(doc.FirstPublicationDate)
	if err != nil {
		return PostSummary{}, fmt.Errorf("post %q: %w", doc.UID, err)
	}
	return PostSummary{
		UID:         doc.UID,
		Title:       doc.Data.Title,
		Subtitle:    doc.Data.Subtitle,
		Author:      doc.Data.Author,
		PublishedAt: t,
		Date:        dates.Format(t),
		Link:        PostPath(doc.UID),
	}, nil
}

// PostPath returns the site-relative URL of a post.
func PostPath(uid string) string {
	return "/post/" + PathEscape(uid) + "/"
}
