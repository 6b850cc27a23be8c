package spacetraveling

import (
	"testing"
	"time"

	"github.com/labstack/gommon/log"
)

func TestSetDefaults(t *testing.T) {
	cfg := SiteConfig{URL: "https://blog.example.com/"}.WithDefaults()

	if cfg.URL != "https://blog.example.com" {
		t.Errorf("got URL %q, want trailing slash trimmed", cfg.URL)
	}
	if cfg.ContentSource != SourceSQLite || cfg.PageSize != DefaultPageSize || cfg.Revalidate != 5*time.Minute {
		t.Errorf("got %+v", cfg)
	}
	if cfg.DateLocale != "pt-BR" || cfg.DateLayout != "02 Jan 2006" || cfg.DateTimezone != "UTC" {
		t.Errorf("got date settings %q %q %q", cfg.DateLocale, cfg.DateLayout, cfg.DateTimezone)
	}
	if cfg.Addr != ":3000" || cfg.Name != "SpaceTraveling" {
		t.Errorf("got addr %q name %q", cfg.Addr, cfg.Name)
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("SITE_NAME", "Viagens")
	t.Setenv("CONTENT_SOURCE", "Prismic")
	t.Setenv("PRISMIC_ENDPOINT", "https://repo.cdn.prismic.io/api/v2")
	t.Setenv("PAGE_SIZE", "5")
	t.Setenv("REVALIDATE", "300")
	t.Setenv("COOKIE_SECURE", "TRUE")
	t.Setenv("COMMENTS_REPO", "user/comments")

	cfg := LoadConfig()
	if cfg.Name != "Viagens" || cfg.ContentSource != SourcePrismic || cfg.PrismicEndpoint == "" {
		t.Errorf("got %+v", cfg)
	}
	if cfg.PageSize != 5 {
		t.Errorf("got page size %d, want 5", cfg.PageSize)
	}
	if cfg.Revalidate != 5*time.Minute {
		t.Errorf("got revalidate %v, want 5m", cfg.Revalidate)
	}
	if !cfg.CookieSecure || cfg.CommentsRepo != "user/comments" {
		t.Errorf("got secure %v comments %q", cfg.CookieSecure, cfg.CommentsRepo)
	}
}

func TestEnvDuration(t *testing.T) {
	tests := []struct {
		val  string
		want time.Duration
	}{
		{"", time.Second},
		{"90s", 90 * time.Second},
		{"10m", 10 * time.Minute},
		{"60", time.Minute},
		{"soon", time.Second},
	}
	for _, tt := range tests {
		t.Setenv("TEST_DURATION", tt.val)
		if got := envDuration("TEST_DURATION", time.Second); got != tt.want {
			t.Errorf("envDuration(%q) = %v, want %v", tt.val, got, tt.want)
		}
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]log.Lvl{
		"debug": log.DEBUG,
		"INFO":  log.INFO,
		"warn":  log.WARN,
		"error": log.ERROR,
		"off":   log.OFF,
		"":      log.INFO,
	}
	for in, want := range tests {
		if got := parseLogLevel(in); got != want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestEnvOr(t *testing.T) {
	t.Setenv("TEST_ENV_OR", "set")
	if got := EnvOr("TEST_ENV_OR", "fallback"); got != "set" {
		t.Errorf("got %q, want set", got)
	}
	if got := EnvOr("TEST_ENV_OR_UNSET", "fallback"); got != "fallback" {
		t.Errorf("got %q, want fallback", got)
	}
}
