// Package prismic is a content.Gateway backed by the Prismic REST API (v2).
package prismic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/eringen/spacetraveling/content"
)

const (
	defaultRefTTL   = 30 * time.Second
	defaultTimeout  = 10 * time.Second
	maxErrorBodyLen = 512
)

// APIError is a non-200 response from the API.
type APIError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("prismic: %s: status %d: %s", e.Op, e.StatusCode, e.Message)
}

// Client queries a single Prismic repository.
type Client struct {
	endpoint    *url.URL // API root, e.g. https://repo.cdn.prismic.io/api/v2
	searchURL   *url.URL
	accessToken string
	http        *http.Client
	refTTL      time.Duration

	mu         sync.RWMutex
	masterRef  string
	refFetched time.Time
}

var _ content.Gateway = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithRefTTL sets how long the master ref is reused before it is looked up
// again. Zero looks it up on every query.
func WithRefTTL(d time.Duration) Option {
	return func(c *Client) {
		c.refTTL = d
	}
}

// New creates a Client for the API root endpoint.
func New(endpoint, accessToken string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSuffix(endpoint, "/"))
	if err != nil {
		return nil, fmt.Errorf("prismic: parse endpoint: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("prismic: endpoint %q must be an absolute http(s) URL", endpoint)
	}
	search := *u
	search.Path = u.Path + "/documents/search"
	c := &Client{
		endpoint:    u,
		searchURL:   &search,
		accessToken: accessToken,
		http:        &http.Client{Timeout: defaultTimeout},
		refTTL:      defaultRefTTL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type apiRef struct {
	ID          string `json:"id"`
	Ref         string `json:"ref"`
	Label       string `json:"label"`
	IsMasterRef bool   `json:"isMasterRef"`
}

type apiRoot struct {
	Refs []apiRef `json:"refs"`
}

type searchResponse struct {
	Page             int                `json:"page"`
	ResultsPerPage   int                `json:"results_per_page"`
	TotalResultsSize int                `json:"total_results_size"`
	TotalPages       int                `json:"total_pages"`
	NextPage         *string            `json:"next_page"`
	Results          []content.Document `json:"results"`
}

// MasterRef returns the ref of the published content version.
func (c *Client) MasterRef(ctx context.Context) (string, error) {
	c.mu.RLock()
	if c.masterRef != "" && time.Since(c.refFetched) < c.refTTL {
		ref := c.masterRef
		c.mu.RUnlock()
		return ref, nil
	}
	c.mu.RUnlock()

	u := *c.endpoint
	c.withToken(&u)
	var root apiRoot
	if err := c.get(ctx, "ref", &u, &root); err != nil {
		return "", err
	}
	for _, r := range root.Refs {
		if r.IsMasterRef {
			c.mu.Lock()
			c.masterRef = r.Ref
			c.refFetched = time.Now()
			c.mu.Unlock()
			return r.Ref, nil
		}
	}
	return "", errors.New("prismic: repository has no master ref")
}

// Query returns one page of documents of q.Type. With a cursor, one search
// request is made to the cursor URL, with its ref replaced by q.Ref (or the
// master ref) so a cursor cannot reach a version the caller did not ask for.
func (c *Client) Query(ctx context.Context, q content.Query) (content.Page, error) {
	var u *url.URL
	if q.Cursor != "" {
		var err error
		if u, err = c.parseCursor(q.Cursor); err != nil {
			return content.Page{}, err
		}
	}
	ref, err := c.resolveRef(ctx, q.Ref)
	if err != nil {
		return content.Page{}, err
	}
	if u != nil {
		v := u.Query()
		v.Set("ref", ref)
		u.RawQuery = v.Encode()
	} else {
		v := url.Values{}
		v.Set("ref", ref)
		v.Set("q", "[[at(document.type,"+quote(q.Type)+")]]")
		v.Set("orderings", "[document.first_publication_date"+orderSuffix(q.Order)+"]")
		if q.PageSize > 0 {
			v.Set("pageSize", strconv.Itoa(q.PageSize))
		}
		if q.After != "" {
			v.Set("after", q.After)
		}
		u = c.search(v)
	}
	c.withToken(u)

	var res searchResponse
	if err := c.get(ctx, "query", u, &res); err != nil {
		return content.Page{}, refError(err, q.Ref)
	}
	page := content.Page{
		Results:      res.Results,
		Page:         res.Page,
		TotalPages:   res.TotalPages,
		TotalResults: res.TotalResultsSize,
	}
	if res.NextPage != nil {
		page.NextPage = c.stripToken(*res.NextPage)
	}
	return page, nil
}

// GetByUID returns the document of docType with the given uid.
func (c *Client) GetByUID(ctx context.Context, docType, uid, ref string) (content.Document, error) {
	r, err := c.resolveRef(ctx, ref)
	if err != nil {
		return content.Document{}, err
	}
	v := url.Values{}
	v.Set("ref", r)
	v.Set("q", "[[at(my."+docType+".uid,"+quote(uid)+")]]")
	v.Set("pageSize", "1")
	return c.single(ctx, "get_by_uid", v, ref)
}

// GetByID returns the document with the given ID.
func (c *Client) GetByID(ctx context.Context, id, ref string) (content.Document, error) {
	r, err := c.resolveRef(ctx, ref)
	if err != nil {
		return content.Document{}, err
	}
	v := url.Values{}
	v.Set("ref", r)
	v.Set("q", "[[at(document.id,"+quote(id)+")]]")
	v.Set("pageSize", "1")
	return c.single(ctx, "get_by_id", v, ref)
}

// PreviewRef accepts a preview token issued by Prismic for this repository.
// The token itself is the ref of the previewed content.
func (c *Client) PreviewRef(ctx context.Context, token string) (string, error) {
	u, err := url.Parse(token)
	if err != nil || u.Scheme != "https" || u.Host == "" {
		return "", content.ErrInvalidPreview
	}
	host := strings.ToLower(u.Hostname())
	if host != strings.ToLower(c.endpoint.Hostname()) && !strings.HasSuffix(host, ".prismic.io") {
		return "", content.ErrInvalidPreview
	}
	return token, nil
}

func (c *Client) single(ctx context.Context, op string, v url.Values, ref string) (content.Document, error) {
	u := c.search(v)
	c.withToken(u)

	var res searchResponse
	if err := c.get(ctx, op, u, &res); err != nil {
		return content.Document{}, refError(err, ref)
	}
	if len(res.Results) == 0 {
		return content.Document{}, content.ErrNotFound
	}
	return res.Results[0], nil
}

// refError reports a client error for a caller-supplied ref as an invalid
// preview: Prismic answers 4xx once a preview ref has expired.
func refError(err error, ref string) error {
	var apiErr *APIError
	if ref != "" && errors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
		return fmt.Errorf("%w: %w", content.ErrInvalidPreview, err)
	}
	return err
}

func (c *Client) resolveRef(ctx context.Context, ref string) (string, error) {
	if ref != "" {
		return ref, nil
	}
	return c.MasterRef(ctx)
}

// parseCursor accepts only next_page URLs that point at this repository's
// search endpoint, so a client-supplied cursor cannot redirect the request.
func (c *Client) parseCursor(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, content.ErrInvalidCursor
	}
	if u.Scheme != c.searchURL.Scheme || !strings.EqualFold(u.Host, c.searchURL.Host) || u.Path != c.searchURL.Path || u.User != nil {
		return nil, content.ErrInvalidCursor
	}
	if u.Query().Get("ref") == "" {
		return nil, content.ErrInvalidCursor
	}
	return u, nil
}

func (c *Client) search(v url.Values) *url.URL {
	u := *c.searchURL
	u.RawQuery = v.Encode()
	return &u
}

func (c *Client) withToken(u *url.URL) {
	if c.accessToken == "" {
		return
	}
	v := u.Query()
	v.Set("access_token", c.accessToken)
	u.RawQuery = v.Encode()
}

// stripToken removes the access token from URLs handed back to callers,
// since cursors end up in rendered pages.
func (c *Client) stripToken(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	v := u.Query()
	if !v.Has("access_token") {
		return raw
	}
	v.Del("access_token")
	u.RawQuery = v.Encode()
	return u.String()
}

func (c *Client) get(ctx context.Context, op string, u *url.URL, out any) error {
	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("prismic: %s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	requestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		requestsTotal.WithLabelValues(op, "error").Inc()
		return fmt.Errorf("prismic: %s: %w", op, err)
	}
	defer resp.Body.Close()
	requestsTotal.WithLabelValues(op, strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyLen))
		return &APIError{Op: op, StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("prismic: %s: decode response: %w", op, err)
	}
	return nil
}

func quote(s string) string {
	return `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s) + `"`
}

func orderSuffix(o content.Order) string {
	if o == content.Desc {
		return " desc"
	}
	return ""
}
