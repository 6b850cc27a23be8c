package spacetraveling

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"database/sql"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/eringen/spacetraveling/content"
)

const (
	defaultStorePageSize = 20
	maxStorePageSize     = 100
)

// Store is a local content source backed by SQLite. It implements
// content.Gateway with the same paging and ordering semantics as the remote
// content API, so the site can run without one.
type Store struct {
	db            *sql.DB
	previewSecret string
	previewRef    string
}

var _ content.Gateway = (*Store)(nil)

// StoredDocument is a document plus its publication state.
type StoredDocument struct {
	content.Document
	Published bool
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and runs schema migrations. Drafts are only reachable
// through PreviewRef with previewSecret; an empty secret disables previews.
func NewStore(path, previewSecret string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL lets readers proceed during the seed importer's writes.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
		PRAGMA cache_size=-8000;
		PRAGMA mmap_size=268435456;
	`); err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db, previewSecret: previewSecret}
	if previewSecret != "" {
		sum := sha256.Sum256([]byte("preview:" + previewSecret))
		s.previewRef = hex.EncodeToString(sum[:])
	}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS documents (
    id TEXT PRIMARY KEY,
    uid TEXT NOT NULL,
    type TEXT NOT NULL,
    first_publication_date TEXT NOT NULL,
    data TEXT NOT NULL,
    published INTEGER NOT NULL DEFAULT 1,
    UNIQUE (type, uid)
);
CREATE INDEX IF NOT EXISTS idx_documents_type_date ON documents(type, first_publication_date, id);
`)
	return err
}

type storeCursor struct {
	Type   string        `json:"t"`
	Offset int           `json:"o"`
	Size   int           `json:"n"`
	Order  content.Order `json:"d"`
	After  string        `json:"a,omitempty"`
}

func encodeCursor(c storeCursor) string {
	b, _ := json.Marshal(c)
	return base64.RawURLEncoding.EncodeToString(b)
}

func decodeCursor(raw string) (storeCursor, error) {
	var c storeCursor
	b, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return c, content.ErrInvalidCursor
	}
	if err := json.Unmarshal(b, &c); err != nil || c.Offset < 0 || c.Size < 1 || c.Type == "" {
		return c, content.ErrInvalidCursor
	}
	return c, nil
}

// drafts reports whether ref exposes unpublished documents.
func (s *Store) drafts(ref string) (bool, error) {
	if ref == "" {
		return false, nil
	}
	if s.previewRef != "" && subtle.ConstantTimeCompare([]byte(ref), []byte(s.previewRef)) == 1 {
		return true, nil
	}
	return false, fmt.Errorf("%w: unknown ref", content.ErrInvalidPreview)
}

// Query returns one page of documents ordered by first publication date.
func (s *Store) Query(ctx context.Context, q content.Query) (content.Page, error) {
	c := storeCursor{Type: q.Type, Size: q.PageSize, Order: q.Order, After: q.After}
	if q.Cursor != "" {
		var err error
		if c, err = decodeCursor(q.Cursor); err != nil {
			return content.Page{}, err
		}
	}
	if c.Size < 1 {
		c.Size = defaultStorePageSize
	}
	c.Size = min(c.Size, maxStorePageSize)

	drafts, err := s.drafts(q.Ref)
	if err != nil {
		return content.Page{}, err
	}

	where := []string{"type = ?"}
	args := []any{c.Type}
	if !drafts {
		where = append(where, "published = 1")
	}
	if c.After != "" {
		var date string
		err := s.db.QueryRowContext(ctx, `SELECT first_publication_date FROM documents WHERE id = ?`, c.After).Scan(&date)
		if errors.Is(err, sql.ErrNoRows) {
			return content.Page{}, fmt.Errorf("after %q: %w", c.After, content.ErrNotFound)
		}
		if err != nil {
			return content.Page{}, err
		}
		cmp := "<"
		if c.Order == content.Asc {
			cmp = ">"
		}
		where = append(where, "(first_publication_date "+cmp+" ? OR (first_publication_date = ? AND id "+cmp+" ?))")
		args = append(args, date, date, c.After)
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents WHERE `+cond, args...).Scan(&total); err != nil {
		return content.Page{}, err
	}

	dir := "DESC"
	if c.Order == content.Asc {
		dir = "ASC"
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, uid, type, first_publication_date, data, published FROM documents WHERE `+cond+
			` ORDER BY first_publication_date `+dir+`, id `+dir+` LIMIT ? OFFSET ?`,
		append(args, c.Size, c.Offset)...)
	if err != nil {
		return content.Page{}, err
	}
	defer rows.Close()

	docs := make([]content.Document, 0, c.Size)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return content.Page{}, err
		}
		docs = append(docs, d.Document)
	}
	if err := rows.Err(); err != nil {
		return content.Page{}, err
	}

	page := content.Page{
		Results:      docs,
		Page:         c.Offset/c.Size + 1,
		TotalPages:   (total + c.Size - 1) / c.Size,
		TotalResults: total,
	}
	if next := c.Offset + len(docs); len(docs) > 0 && next < total {
		c.Offset = next
		page.NextPage = encodeCursor(c)
	}
	return page, nil
}

// GetByUID returns a single document by type and uid.
func (s *Store) GetByUID(ctx context.Context, docType, uid, ref string) (content.Document, error) {
	drafts, err := s.drafts(ref)
	if err != nil {
		return content.Document{}, err
	}
	query := `SELECT id, uid, type, first_publication_date, data, published FROM documents WHERE type = ? AND uid = ?`
	if !drafts {
		query += ` AND published = 1`
	}
	d, err := scanDocument(s.db.QueryRowContext(ctx, query, docType, uid))
	if errors.Is(err, sql.ErrNoRows) {
		return content.Document{}, content.ErrNotFound
	}
	if err != nil {
		return content.Document{}, err
	}
	return d.Document, nil
}

// GetByID returns a single document by ID.
func (s *Store) GetByID(ctx context.Context, id, ref string) (content.Document, error) {
	drafts, err := s.drafts(ref)
	if err != nil {
		return content.Document{}, err
	}
	query := `SELECT id, uid, type, first_publication_date, data, published FROM documents WHERE id = ?`
	if !drafts {
		query += ` AND published = 1`
	}
	d, err := scanDocument(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return content.Document{}, content.ErrNotFound
	}
	if err != nil {
		return content.Document{}, err
	}
	return d.Document, nil
}

// PreviewRef exchanges the configured preview secret for the draft ref.
func (s *Store) PreviewRef(ctx context.Context, token string) (string, error) {
	if s.previewSecret == "" || subtle.ConstantTimeCompare([]byte(token), []byte(s.previewSecret)) != 1 {
		return "", content.ErrInvalidPreview
	}
	return s.previewRef, nil
}

// SaveDocument upserts a document. A missing ID defaults to type:uid and the
// publication date is normalized to UTC RFC 3339 so it sorts as text.
func (s *Store) SaveDocument(ctx context.Context, doc content.Document, published bool) error {
	if doc.UID == "" {
		return errors.New("spacetraveling: document uid is required")
	}
	doc = withDefaultID(doc)
	t, err := ParseDate(doc.FirstPublicationDate)
	if err != nil {
		return fmt.Errorf("document %q: %w", doc.UID, err)
	}
	data, err := json.Marshal(doc.Data)
	if err != nil {
		return fmt.Errorf("document %q: encode data: %w", doc.UID, err)
	}
	pub := 0
	if published {
		pub = 1
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO documents (id, uid, type, first_publication_date, data, published) VALUES (?, ?, ?, ?, ?, ?)`,
		doc.ID, doc.UID, doc.Type, t.UTC().Format(time.RFC3339), string(data), pub)
	return err
}

// withDefaultID fills in the type and ID SaveDocument stores for doc.
func withDefaultID(doc content.Document) content.Document {
	if doc.Type == "" {
		doc.Type = content.TypePost
	}
	if doc.ID == "" {
		doc.ID = doc.Type + ":" + doc.UID
	}
	return doc
}

// DeleteDocument removes a document by ID.
func (s *Store) DeleteDocument(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	return err
}

// ListAllDocuments returns every document (published and drafts), newest first.
func (s *Store) ListAllDocuments(ctx context.Context) ([]StoredDocument, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, uid, type, first_publication_date, data, published FROM documents ORDER BY first_publication_date DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []StoredDocument
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(r rowScanner) (StoredDocument, error) {
	var d StoredDocument
	var data string
	var published int
	if err := r.Scan(&d.ID, &d.UID, &d.Type, &d.FirstPublicationDate, &data, &published); err != nil {
		return StoredDocument{}, err
	}
	if err := json.Unmarshal([]byte(data), &d.Data); err != nil {
		return StoredDocument{}, fmt.Errorf("document %q: decode data: %w", d.UID, err)
	}
	d.Published = published == 1
	return d, nil
}
