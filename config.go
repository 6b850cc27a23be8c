package spacetraveling

import (
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/gommon/log"

	"github.com/eringen/spacetraveling/content"
)

// Content sources selectable with SiteConfig.ContentSource.
const (
	SourcePrismic = "prismic"
	SourceSQLite  = "sqlite"
)

// SiteConfig holds all configuration for a spacetraveling site.
type SiteConfig struct {
	Name        string // Site name (default "SpaceTraveling")
	URL         string // Canonical URL (default "http://localhost:3000")
	Description string // Site description for RSS and meta tags

	Addr string // Listen address (default ":3000")

	ContentSource      string // "prismic" or "sqlite" (default "sqlite")
	PrismicEndpoint    string // API root, e.g. https://repo.cdn.prismic.io/api/v2
	PrismicAccessToken string
	DatabasePath       string // SQLite path (default "data/content.db")

	PageSize     int    // Posts per list page (default 2)
	DateLocale   string // BCP 47 locale of displayed dates (default "pt-BR")
	DateLayout   string // Go time layout (default "02 Jan 2006")
	DateTimezone string // IANA zone of displayed dates (default "UTC")

	Revalidate       time.Duration // Lifetime of cached pages (default 5min)
	RevalidateSecret string        // Enables POST /api/revalidate when set

	SessionSecret string // Required: preview session signing secret
	PreviewSecret string // Preview token for the sqlite source
	CookieSecure  bool   // Set true for HTTPS

	CommentsRepo string // GitHub repo for utterances comments, e.g. "user/repo"
	LogLevel     string // debug, info, warn, error, off (default "info")
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "SpaceTraveling"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	c.URL = strings.TrimSuffix(c.URL, "/")
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.ContentSource == "" {
		c.ContentSource = SourceSQLite
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/content.db"
	}
	if c.PageSize <= 0 {
		c.PageSize = DefaultPageSize
	}
	if c.DateLocale == "" {
		c.DateLocale = DefaultDateLocale
	}
	if c.DateLayout == "" {
		c.DateLayout = DefaultDateLayout
	}
	if c.DateTimezone == "" {
		c.DateTimezone = "UTC"
	}
	if c.Revalidate == 0 {
		c.Revalidate = 5 * time.Minute
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// WithDefaults returns c with unset fields filled in.
func (c SiteConfig) WithDefaults() SiteConfig {
	c.setDefaults()
	return c
}

// LoadConfig reads a .env file if present and builds a SiteConfig from the
// environment. Unset values fall back to the defaults applied by New.
func LoadConfig() SiteConfig {
	_ = godotenv.Load()

	return SiteConfig{
		Name:               EnvOr("SITE_NAME", ""),
		URL:                EnvOr("SITE_URL", ""),
		Description:        EnvOr("SITE_DESCRIPTION", ""),
		Addr:               EnvOr("ADDR", ""),
		ContentSource:      strings.ToLower(EnvOr("CONTENT_SOURCE", "")),
		PrismicEndpoint:    EnvOr("PRISMIC_ENDPOINT", ""),
		PrismicAccessToken: EnvOr("PRISMIC_ACCESS_TOKEN", ""),
		DatabasePath:       EnvOr("DATABASE_PATH", ""),
		PageSize:           envInt("PAGE_SIZE", 0),
		DateLocale:         EnvOr("DATE_LOCALE", ""),
		DateLayout:         EnvOr("DATE_LAYOUT", ""),
		DateTimezone:       EnvOr("DATE_TIMEZONE", ""),
		Revalidate:         envDuration("REVALIDATE", 0),
		RevalidateSecret:   EnvOr("REVALIDATE_SECRET", ""),
		SessionSecret:      EnvOr("SESSION_SECRET", ""),
		PreviewSecret:      EnvOr("PREVIEW_SECRET", ""),
		CookieSecure:       strings.EqualFold(EnvOr("COOKIE_SECURE", ""), "true"),
		CommentsRepo:       EnvOr("COMMENTS_REPO", ""),
		LogLevel:           EnvOr("LOG_LEVEL", ""),
	}
}

func envInt(key string, fallback int) int {
	if v := EnvOr(key, ""); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

// envDuration accepts Go durations ("5m") or whole seconds ("300").
func envDuration(key string, fallback time.Duration) time.Duration {
	v := EnvOr(key, "")
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if i, err := strconv.Atoi(v); err == nil {
		return time.Duration(i) * time.Second
	}
	return fallback
}

func parseLogLevel(s string) log.Lvl {
	switch strings.ToLower(s) {
	case "debug":
		return log.DEBUG
	case "warn", "warning":
		return log.WARN
	case "error":
		return log.ERROR
	case "off":
		return log.OFF
	default:
		return log.INFO
	}
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir sets the directory for user-owned static assets (default "public").
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}

// WithGateway makes the App read content from gw instead of building a
// gateway from ContentSource.
func WithGateway(gw content.Gateway) Option {
	return func(a *App) {
		a.Gateway = gw
	}
}
