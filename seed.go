package spacetraveling

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/eringen/spacetraveling/content"
)

// SeedDocument is one entry of a seed file: a document in the content API's
// JSON shape plus an optional publication flag (default true).
type SeedDocument struct {
	content.Document
	Published *bool `json:"published,omitempty"`
}

// Seeder imports seed files into a Store.
type Seeder struct {
	Store *Store
	// StaticDir receives imported banner images under uploads/.
	StaticDir string
	// Prune deletes stored documents that the seed file no longer lists, so
	// the store mirrors the file.
	Prune bool
}

// SeedReport counts what one import changed.
type SeedReport struct {
	Imported int
	Pruned   int
}

// SeedFile imports the JSON array of documents at path. Relative banner
// paths are resolved against the file's directory.
func (s *Seeder) SeedFile(ctx context.Context, path string) (SeedReport, error) {
	f, err := os.Open(path)
	if err != nil {
		return SeedReport{}, err
	}
	defer f.Close()
	return s.Seed(ctx, f, filepath.Dir(path))
}

// Seed imports documents read from r. A banner URL that names a local file
// is converted into an upload; remote and site-relative URLs are stored as
// given. Pruning only runs once every document has been saved.
func (s *Seeder) Seed(ctx context.Context, r io.Reader, baseDir string) (SeedReport, error) {
	var rep SeedReport
	var docs []SeedDocument
	if err := json.NewDecoder(r).Decode(&docs); err != nil {
		return rep, fmt.Errorf("decode seed file: %w", err)
	}

	keep := make(map[string]bool, len(docs))
	for _, d := range docs {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		doc := d.Document
		if src, ok := localBanner(doc.Data.Banner.URL, baseDir); ok {
			u, err := importBanner(src, s.StaticDir, doc.UID)
			if err != nil {
				return rep, fmt.Errorf("document %q: %w", doc.UID, err)
			}
			doc.Data.Banner.URL = u
		}
		published := d.Published == nil || *d.Published
		if err := s.Store.SaveDocument(ctx, doc, published); err != nil {
			return rep, err
		}
		keep[withDefaultID(doc).ID] = true
		rep.Imported++
	}

	if s.Prune {
		n, err := s.prune(ctx, keep)
		rep.Pruned = n
		if err != nil {
			return rep, fmt.Errorf("prune: %w", err)
		}
	}
	return rep, nil
}

func (s *Seeder) prune(ctx context.Context, keep map[string]bool) (int, error) {
	stored, err := s.Store.ListAllDocuments(ctx)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, d := range stored {
		if keep[d.ID] {
			continue
		}
		if err := s.Store.DeleteDocument(ctx, d.ID); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// localBanner reports whether raw names a file on disk, returning its path.
func localBanner(raw, baseDir string) (string, bool) {
	if raw == "" || strings.HasPrefix(raw, "/public/") {
		return "", false
	}
	if u, err := url.Parse(raw); err == nil && u.Scheme != "" && u.Scheme != "file" {
		return "", false
	}
	p := strings.TrimPrefix(raw, "file://")
	if !filepath.IsAbs(p) {
		p = filepath.Join(baseDir, p)
	}
	return p, true
}
