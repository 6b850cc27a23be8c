package spacetraveling

import (
	"context"
	"errors"
	"testing"

	"github.com/eringen/spacetraveling/content"
)

func uids(posts []PostSummary) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.UID
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestLoadInitialQueriesNewestFirst(t *testing.T) {
	gw := &memGateway{docs: []content.Document{
		memPost("old", "2021-01-01T00:00:00Z"),
		memPost("new", "2021-03-25T19:25:28+0000"),
		memPost("mid", "2021-02-01T00:00:00Z"),
	}}
	p := NewPaginator(gw, DefaultDateFormat(), 2)

	state, err := p.LoadInitial(context.Background(), "")
	if err != nil {
		t.Fatalf("LoadInitial: %v", err)
	}
	if got, want := uids(state.Posts), []string{"new", "mid"}; !equalStrings(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	if !state.HasMore() {
		t.Fatal("expected a next page")
	}

	q := gw.queries[0]
	if q.Type != content.TypePost || q.PageSize != 2 || q.Order != content.Desc || q.Cursor != "" {
		t.Errorf("got query %+v", q)
	}

	first := state.Posts[0]
	if first.Date != "25 mar 2021" {
		t.Errorf("got date %q, want 25 mar 2021", first.Date)
	}
	if first.Title != "Title new" || first.Subtitle != "Subtitle new" || first.Author != "Author new" {
		t.Errorf("got summary %+v", first)
	}
	if first.Link != "/post/new/" {
		t.Errorf("got link %q, want /post/new/", first.Link)
	}
}

func TestLoadMoreAppendsInFetchOrder(t *testing.T) {
	gw := &memGateway{pages: map[string]content.Page{
		"":   {Results: []content.Document{memPost("a", "2021-01-06"), memPost("b", "2021-01-05")}, NextPage: "c2"},
		"c2": {Results: []content.Document{memPost("c", "2021-01-04"), memPost("b", "2021-01-05")}, NextPage: "c3"},
		"c3": {Results: []content.Document{memPost("d", "2021-01-01")}},
	}}
	p := NewPaginator(gw, DefaultDateFormat(), 2)
	ctx := context.Background()

	state, err := p.LoadInitial(ctx, "")
	if err != nil {
		t.Fatalf("LoadInitial: %v", err)
	}
	state, err = p.LoadMore(ctx, state)
	if err != nil {
		t.Fatalf("first LoadMore: %v", err)
	}
	state, err = p.LoadMore(ctx, state)
	if err != nil {
		t.Fatalf("second LoadMore: %v", err)
	}

	// Duplicates across pages are kept as delivered.
	want := []string{"a", "b", "c", "b", "d"}
	if got := uids(state.Posts); !equalStrings(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	if state.HasMore() {
		t.Errorf("got cursor %q, want none after the last page", state.NextPage)
	}
	if gw.calls() != 3 {
		t.Errorf("got %d queries, want 3", gw.calls())
	}
	if gw.queries[1].Cursor != "c2" || gw.queries[2].Cursor != "c3" {
		t.Errorf("cursors not threaded: %+v", gw.queries)
	}
}

func TestLoadMoreWithoutCursorIsNoop(t *testing.T) {
	gw := &memGateway{}
	p := NewPaginator(gw, DefaultDateFormat(), 2)
	state := PaginationState{Posts: []PostSummary{{UID: "a"}}}

	got, err := p.LoadMore(context.Background(), state)
	if err != nil {
		t.Fatalf("LoadMore: %v", err)
	}
	if gw.calls() != 0 {
		t.Errorf("got %d queries, want none", gw.calls())
	}
	if !equalStrings(uids(got.Posts), []string{"a"}) || got.NextPage != "" {
		t.Errorf("got %+v, want the state unchanged", got)
	}
}

func TestLoadMoreSendsStateRef(t *testing.T) {
	gw := fiveAndADraft()
	p := NewPaginator(gw, DefaultDateFormat(), 2)
	ctx := context.Background()

	state, err := p.LoadInitial(ctx, memPreviewRef)
	if err != nil {
		t.Fatalf("LoadInitial: %v", err)
	}
	if state.Ref != memPreviewRef {
		t.Fatalf("got ref %q, want %q", state.Ref, memPreviewRef)
	}
	state, err = p.LoadMore(ctx, state)
	if err != nil {
		t.Fatalf("LoadMore: %v", err)
	}
	if gw.queries[1].Ref != memPreviewRef || state.Ref != memPreviewRef {
		t.Errorf("ref not carried to the next page: query %q, state %q", gw.queries[1].Ref, state.Ref)
	}

	// The same cursor without a ref reads the published version.
	published, err := p.LoadMore(ctx, PaginationState{NextPage: gw.queries[1].Cursor})
	if err != nil {
		t.Fatalf("LoadMore: %v", err)
	}
	if got, want := uids(published.Posts), []string{"c", "d"}; !equalStrings(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestLoadInitialEmpty(t *testing.T) {
	p := NewPaginator(&memGateway{}, DefaultDateFormat(), 2)
	state, err := p.LoadInitial(context.Background(), "")
	if err != nil {
		t.Fatalf("LoadInitial: %v", err)
	}
	if state.Posts == nil || len(state.Posts) != 0 {
		t.Errorf("got posts %#v, want an empty non-nil slice", state.Posts)
	}
	if state.HasMore() {
		t.Errorf("got cursor %q, want none", state.NextPage)
	}
}

func TestLoadMoreErrorKeepsState(t *testing.T) {
	boom := errors.New("boom")
	gw := &memGateway{err: boom}
	p := NewPaginator(gw, DefaultDateFormat(), 2)
	state := PaginationState{NextPage: "c2", Posts: []PostSummary{{UID: "a"}}}

	got, err := p.LoadMore(context.Background(), state)
	if !errors.Is(err, boom) {
		t.Fatalf("got %v, want wrapped boom", err)
	}
	if got.NextPage != "c2" || !equalStrings(uids(got.Posts), []string{"a"}) {
		t.Errorf("got %+v, want the state unchanged", got)
	}
}

func TestLoadMoreInvalidCursor(t *testing.T) {
	p := NewPaginator(&memGateway{}, DefaultDateFormat(), 2)
	_, err := p.LoadMore(context.Background(), PaginationState{NextPage: "forged"})
	if !errors.Is(err, content.ErrInvalidCursor) {
		t.Fatalf("got %v, want ErrInvalidCursor", err)
	}
}

func TestLoadPages(t *testing.T) {
	gw := &memGateway{docs: []content.Document{
		memPost("a", "2021-01-05"), memPost("b", "2021-01-04"), memPost("c", "2021-01-03"),
		memPost("d", "2021-01-02"), memPost("e", "2021-01-01"),
	}}
	p := NewPaginator(gw, DefaultDateFormat(), 2)
	ctx := context.Background()

	tests := []struct {
		n       int
		want    []string
		more    bool
		queries int
	}{
		{0, []string{"a", "b"}, true, 1},
		{1, []string{"a", "b"}, true, 1},
		{2, []string{"a", "b", "c", "d"}, true, 2},
		{3, []string{"a", "b", "c", "d", "e"}, false, 3},
		{10, []string{"a", "b", "c", "d", "e"}, false, 3},
	}
	for _, tt := range tests {
		gw.queries = nil
		state, err := p.LoadPages(ctx, "", tt.n)
		if err != nil {
			t.Fatalf("LoadPages(%d): %v", tt.n, err)
		}
		if got := uids(state.Posts); !equalStrings(got, tt.want) {
			t.Errorf("LoadPages(%d) = %v, want %v", tt.n, got, tt.want)
		}
		if state.HasMore() != tt.more {
			t.Errorf("LoadPages(%d) more = %v, want %v", tt.n, state.HasMore(), tt.more)
		}
		if gw.calls() != tt.queries {
			t.Errorf("LoadPages(%d) made %d queries, want %d", tt.n, gw.calls(), tt.queries)
		}
	}
}

func TestReduceDoesNotModifyInput(t *testing.T) {
	posts := make([]PostSummary, 1, 4)
	posts[0] = PostSummary{UID: "a"}
	state := PaginationState{NextPage: "c2", Posts: posts}

	next := Reduce(state, PageLoaded{Posts: []PostSummary{{UID: "b"}}, NextPage: "c3"})
	next.Posts[0].UID = "changed"

	if state.Posts[0].UID != "a" || len(state.Posts) != 1 || state.NextPage != "c2" {
		t.Fatalf("input state modified: %+v", state)
	}
	if !equalStrings(uids(next.Posts), []string{"changed", "b"}) || next.NextPage != "c3" {
		t.Fatalf("got %+v", next)
	}
}

func TestSummarizeRejectsBadDate(t *testing.T) {
	_, err := Summarize(memPost("x", "not a date"), DefaultDateFormat())
	if !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("got %v, want ErrInvalidDate", err)
	}
}

func TestPostPathEscapes(t *testing.T) {
	if got := PostPath("a b/c"); got != "/post/a%20b%2Fc/" {
		t.Errorf("got %q", got)
	}
}
