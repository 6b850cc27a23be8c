package spacetraveling

import (
	"context"
	"fmt"
	"time"

	"github.com/eringen/spacetraveling/content"
	"github.com/eringen/spacetraveling/richtext"
)

// Navigation holds the chronological neighbours of a post. A nil side means
// there is no such post.
type Navigation struct {
	Previous *PostSummary
	Next     *PostSummary
}

// SectionView is a content section ready for display.
type SectionView struct {
	Heading string
	HTML    string // sanitized body markup
}

// PostView is everything the post page renders.
type PostView struct {
	UID         string
	Title       string
	Subtitle    string
	Author      string
	BannerURL   string
	BannerAlt   string
	PublishedAt time.Time
	Date        string
	ReadMinutes int
	Sections    []SectionView
	Link        string
	Navigation  Navigation
}

// BuildPostView maps a post document and its neighbours to a PostView.
func BuildPostView(doc content.Document, nav Navigation, dates DateFormat) (PostView, error) {
	t, err := ParseDate(doc.FirstPublicationDate)
	if err != nil {
		return PostView{}, fmt.Errorf("post %q: %w", doc.UID, err)
	}
	sections := make([]SectionView, 0, len(doc.Data.Content))
	for _, s := range doc.Data.Content {
		sections = append(sections, SectionView{
			Heading: s.Heading,
			HTML:    richtext.AsHTML(s.Body),
		})
	}
	alt := doc.Data.Banner.Alt
	if alt == "" {
		alt = doc.Data.Title
	}
	return PostView{
		UID:         doc.UID,
		Title:       doc.Data.Title,
		Subtitle:    doc.Data.Subtitle,
		Author:      doc.Data.Author,
		BannerURL:   doc.Data.Banner.URL,
		BannerAlt:   alt,
		PublishedAt: t,
		Date:        dates.Format(t),
		ReadMinutes: EstimateReadMinutes(doc.Data.Content),
		Sections:    sections,
		Link:        PostPath(doc.UID),
		Navigation:  nav,
	}, nil
}

// ResolveNavigation finds the posts published immediately before and after
// doc. Each side is one single-result query ordered away from doc.
func ResolveNavigation(ctx context.Context, gw content.Gateway, doc content.Document, ref string, dates DateFormat) (Navigation, error) {
	prev, err := neighbour(ctx, gw, doc, ref, content.Desc, dates)
	if err != nil {
		return Navigation{}, fmt.Errorf("previous post: %w", err)
	}
	next, err := neighbour(ctx, gw, doc, ref, content.Asc, dates)
	if err != nil {
		return Navigation{}, fmt.Errorf("next post: %w", err)
	}
	return Navigation{Previous: prev, Next: next}, nil
}

func neighbour(ctx context.Context, gw content.Gateway, doc content.Document, ref string, order content.Order, dates DateFormat) (*PostSummary, error) {
	docType := doc.Type
	if docType == "" {
		docType = content.TypePost
	}
	page, err := gw.Query(ctx, content.Query{
		Type:     docType,
		PageSize: 1,
		After:    doc.ID,
		Order:    order,
		Ref:      ref,
	})
	if err != nil {
		return nil, err
	}
	if len(page.Results) == 0 {
		return nil, nil
	}
	s, err := Summarize(page.Results[0], dates)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
