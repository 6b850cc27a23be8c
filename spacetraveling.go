// Package spacetraveling is a server-rendered blog front end built with Go,
// Echo, and templ. It lists and renders posts from a headless content API
// (Prismic) or a local SQLite content store, with paginated loading, draft
// previews, RSS, and a sitemap.
//
// Users provide their own templ templates via the ViewFuncs struct, and
// spacetraveling handles handler logic, middleware, and content access.
package spacetraveling

import (
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/eringen/spacetraveling/content"
	"github.com/eringen/spacetraveling/prismic"
)

// ViewFuncs holds user-provided templ components that the framework calls
// when rendering pages. This is the inversion-of-control mechanism that
// lets users own and customize all templates.
type ViewFuncs struct {
	// Home renders the full list page. pages is the number of list pages
	// state accumulates, used for the no-script load-more link.
	Home func(state PaginationState, pages int, meta PageMeta) templ.Component
	// MorePosts renders only the cards of state plus the next load-more
	// control; it is swapped into the list page by the load-more script.
	MorePosts   func(state PaginationState, pages int) templ.Component
	Post        func(post PostView, meta PageMeta) templ.Component
	NotFound    func() templ.Component
	ServerError func() templ.Component
}

// App is the central spacetraveling application. It wires together the
// content gateway, pagination, cache, handlers, middleware, and
// user-provided templates.
type App struct {
	Config    SiteConfig
	Echo      *echo.Echo
	Gateway   content.Gateway
	Paginator *Paginator
	Cache     *PageCache
	Dates     DateFormat
	Views     ViewFuncs

	store          *Store // set when the app owns a SQLite gateway
	previewLimiter *AttemptLimiter
	metrics        *prometheus.Registry
	customRoutes   []func(*App)
	staticDir      string
}

// New creates a new App with the given configuration and view functions.
func New(cfg SiteConfig, views ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		Views:     views,
		staticDir: "public",
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Init opens the content source and sets up middleware and routes without
// listening. Start calls it; tests use it with Echo.ServeHTTP.
func (a *App) Init() error {
	if a.Config.SessionSecret == "" {
		return fmt.Errorf("spacetraveling: SessionSecret is required")
	}

	a.Echo.HideBanner = true
	a.Echo.Logger.SetLevel(parseLogLevel(a.Config.LogLevel))

	loc, err := time.LoadLocation(a.Config.DateTimezone)
	if err != nil {
		return fmt.Errorf("spacetraveling: date timezone: %w", err)
	}
	dates, err := NewDateFormat(a.Config.DateLocale, a.Config.DateLayout, loc)
	if err != nil {
		return fmt.Errorf("spacetraveling: date format: %w", err)
	}
	a.Dates = dates

	if a.Gateway == nil {
		gw, err := a.openGateway()
		if err != nil {
			return err
		}
		a.Gateway = gw
	}

	a.Paginator = NewPaginator(a.Gateway, a.Dates, a.Config.PageSize)
	a.Cache = NewPageCache(a.Config.Revalidate)
	a.previewLimiter = NewAttemptLimiter(5, time.Minute)
	a.metrics = prometheus.NewRegistry()

	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}
	return nil
}

// Start initializes the app and starts the server.
func (a *App) Start() error {
	if err := a.Init(); err != nil {
		return err
	}
	a.Echo.Logger.Infof("serving %s content on %s", a.Config.ContentSource, a.Config.Addr)
	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (a *App) openGateway() (content.Gateway, error) {
	switch a.Config.ContentSource {
	case SourcePrismic:
		if a.Config.PrismicEndpoint == "" {
			return nil, fmt.Errorf("spacetraveling: PrismicEndpoint is required for the prismic source")
		}
		client, err := prismic.New(a.Config.PrismicEndpoint, a.Config.PrismicAccessToken)
		if err != nil {
			return nil, fmt.Errorf("spacetraveling: init prismic: %w", err)
		}
		return client, nil
	case SourceSQLite:
		store, err := NewStore(a.Config.DatabasePath, a.Config.PreviewSecret)
		if err != nil {
			return nil, fmt.Errorf("spacetraveling: init store: %w", err)
		}
		a.store = store
		return store, nil
	default:
		return nil, fmt.Errorf("spacetraveling: unknown content source %q", a.Config.ContentSource)
	}
}

func (a *App) setupRoutes() {
	e := a.Echo

	// Framework assets are served under /public/ ahead of the user's static dir.
	embeddedFS, _ := fs.Sub(EmbeddedAssets, "embedded")
	embeddedHandler := http.FileServer(http.FS(embeddedFS))
	e.GET("/public/loadmore.js", echo.WrapHandler(http.StripPrefix("/public/", embeddedHandler)))
	e.GET("/public/spacetraveling.css", echo.WrapHandler(http.StripPrefix("/public/", embeddedHandler)))

	e.Static("/public", a.staticDir)
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: prometheus.Gatherers{a.metrics, prometheus.DefaultGatherer},
	}))

	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/", a.handleHome)
	e.GET("/posts/more/", a.handleMorePosts)
	e.GET("/post/:uid/", a.handlePost)

	e.GET("/api/preview", a.handlePreview)
	e.GET("/api/exit-preview", handleExitPreview)
	if a.Config.RevalidateSecret != "" {
		e.POST("/api/revalidate", a.handleRevalidate)
	}
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.store != nil {
		return a.store.Close()
	}
	return nil
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// MustEnv returns the value of the environment variable key, or fatally exits if empty.
func MustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("spacetraveling: required environment variable %s is not set", key)
	}
	return v
}
