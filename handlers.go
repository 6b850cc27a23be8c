package spacetraveling

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/eringen/spacetraveling/content"
)

func (a *App) handleHome(c echo.Context) error {
	pages := parsePages(c.QueryParam("pages"))
	ref := previewRef(c)
	ctx := c.Request().Context()

	var state PaginationState
	var err error
	if ref == "" {
		state, err = a.Cache.List(pages, func() (PaginationState, error) {
			return a.Paginator.LoadPages(ctx, "", pages)
		})
	} else {
		state, err = a.Paginator.LoadPages(ctx, ref, pages)
	}
	if err != nil {
		return contentError(err)
	}

	meta := PageMeta{
		Title:       a.Config.Name,
		Description: a.Config.Description,
		URL:         BuildURL(a.Config.URL),
		OGType:      "website",
		Preview:     ref != "",
	}
	return Render(c, a.Views.Home(state, pages, meta))
}

func (a *App) handleMorePosts(c echo.Context) error {
	// The content version comes from the session, never from the cursor.
	state := PaginationState{NextPage: c.QueryParam("cursor"), Ref: previewRef(c)}
	pages := parsePages(c.QueryParam("pages"))
	state, err := a.Paginator.LoadMore(c.Request().Context(), state)
	if err != nil {
		return contentError(err)
	}
	c.Response().Header().Set("Cache-Control", "no-store")
	return Render(c, a.Views.MorePosts(state, pages))
}

func (a *App) handlePost(c echo.Context) error {
	uid := c.Param("uid")
	ref := previewRef(c)
	ctx := c.Request().Context()

	load := func() (PostView, error) {
		return a.loadPost(ctx, uid, ref)
	}
	var post PostView
	var err error
	if ref == "" {
		post, err = a.Cache.Post(uid, load)
	} else {
		post, err = load()
	}
	if errors.Is(err, content.ErrNotFound) {
		return RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
	}
	if err != nil {
		return contentError(err)
	}

	meta := PageMeta{
		Title:       post.Title + " | " + a.Config.Name,
		Description: post.Subtitle,
		URL:         BuildURL(a.Config.URL, "post", post.UID),
		OGType:      "article",
		Image:       absoluteURL(a.Config.URL, post.BannerURL),
		Preview:     ref != "",
	}
	return Render(c, a.Views.Post(post, meta))
}

func (a *App) loadPost(ctx context.Context, uid, ref string) (PostView, error) {
	doc, err := a.Gateway.GetByUID(ctx, content.TypePost, uid, ref)
	if err != nil {
		return PostView{}, err
	}
	nav, err := ResolveNavigation(ctx, a.Gateway, doc, ref, a.Dates)
	if err != nil {
		return PostView{}, err
	}
	return BuildPostView(doc, nav, a.Dates)
}

// handlePreview exchanges a preview token for a draft ref, stores it in the
// session, and redirects to the previewed document when it can be resolved.
func (a *App) handlePreview(c echo.Context) error {
	ip := c.RealIP()
	if !a.previewLimiter.Check(ip) {
		return c.String(http.StatusTooManyRequests, "Too many attempts, try again later")
	}
	ctx := c.Request().Context()

	ref, err := a.Gateway.PreviewRef(ctx, c.QueryParam("token"))
	if errors.Is(err, content.ErrInvalidPreview) {
		a.previewLimiter.Record(ip)
		return c.String(http.StatusUnauthorized, "Invalid preview token")
	}
	if err != nil {
		return err
	}
	if err := setPreviewSession(c, ref); err != nil {
		return err
	}

	target := "/"
	if id := c.QueryParam("documentId"); id != "" {
		doc, err := a.Gateway.GetByID(ctx, id, ref)
		switch {
		case err == nil && doc.Type == content.TypePost:
			target = PostPath(doc.UID)
		case err != nil && !errors.Is(err, content.ErrNotFound):
			c.Logger().Warnf("preview: resolve document %q: %v", id, err)
		}
	}
	return c.Redirect(http.StatusTemporaryRedirect, target)
}

func handleExitPreview(c echo.Context) error {
	if err := clearPreviewSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusTemporaryRedirect, "/")
}

// handleRevalidate drops cached pages so the next request refetches them.
// It is meant for content API webhooks and takes the secret in the
// X-Revalidate-Secret header or the secret query parameter.
func (a *App) handleRevalidate(c echo.Context) error {
	ip := c.RealIP()
	if !a.previewLimiter.Check(ip) {
		return c.String(http.StatusTooManyRequests, "Too many attempts, try again later")
	}
	secret := c.Request().Header.Get("X-Revalidate-Secret")
	if secret == "" {
		secret = c.QueryParam("secret")
	}
	if subtle.ConstantTimeCompare([]byte(secret), []byte(a.Config.RevalidateSecret)) != 1 {
		a.previewLimiter.Record(ip)
		return c.String(http.StatusUnauthorized, "Invalid secret")
	}
	a.Cache.Invalidate()
	c.Logger().Infof("revalidate: page cache cleared")
	return c.JSON(http.StatusOK, map[string]bool{"revalidated": true})
}

const archivePageSize = 100

func (a *App) handleSitemap(c echo.Context) error {
	posts, err := a.allPosts(c.Request().Context())
	if err != nil {
		return contentError(err)
	}
	return a.renderSitemap(c, posts)
}

func (a *App) handleFeed(c echo.Context) error {
	posts, err := a.allPosts(c.Request().Context())
	if err != nil {
		return contentError(err)
	}
	return a.renderRSS(c, posts)
}

// allPosts walks the published post list for the feed and the sitemap.
func (a *App) allPosts(ctx context.Context) ([]PostSummary, error) {
	return a.Cache.Archive(func() ([]PostSummary, error) {
		state, err := NewPaginator(a.Gateway, a.Dates, archivePageSize).LoadPages(ctx, "", MaxPages)
		if err != nil {
			return nil, err
		}
		return state.Posts, nil
	})
}

func (a *App) handleRobots(c echo.Context) error {
	body := fmt.Sprintf("User-agent: *\nDisallow: /api/\nDisallow: /posts/more/\n\nSitemap: %s/sitemap.xml\n", a.Config.URL)
	return c.String(http.StatusOK, body)
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	if ok && he.Code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		c.Logger().Errorf("server error: %v", err)
		_ = RenderStatus(c, code, a.Views.ServerError())
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}

// contentError maps gateway errors caused by bad client input to 400s. Other
// errors pass through to the error handler as 500s.
func contentError(err error) error {
	switch {
	case errors.Is(err, content.ErrInvalidCursor):
		return echo.NewHTTPError(http.StatusBadRequest, "invalid cursor").SetInternal(err)
	case errors.Is(err, content.ErrInvalidPreview):
		return echo.NewHTTPError(http.StatusBadRequest, "preview expired, exit preview and retry").SetInternal(err)
	case errors.Is(err, content.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound).SetInternal(err)
	}
	return err
}

// parsePages reads the pages query parameter, defaulting to 1 and clamping
// to MaxPages.
func parsePages(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 1
	}
	return min(n, MaxPages)
}
