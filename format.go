package spacetraveling

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"

	"github.com/eringen/spacetraveling/content"
	"github.com/eringen/spacetraveling/richtext"
)

// ErrInvalidDate is returned when a publication date cannot be parsed.
var ErrInvalidDate = errors.New("spacetraveling: invalid date")

const (
	// DefaultDateLocale and DefaultDateLayout render dates like "25 mar 2021".
	DefaultDateLocale = "pt-BR"
	DefaultDateLayout = "02 Jan 2006"

	// WordsPerMinute is the reading rate used by EstimateReadMinutes.
	WordsPerMinute = 200
)

type monthTable struct {
	long  [12]string
	short [12]string
}

var monthTables = map[language.Tag]monthTable{
	language.BrazilianPortuguese: ptMonths,
	language.EuropeanPortuguese:  ptMonths,
	language.English: {
		long:  [12]string{"January", "February", "March", "April", "May", "June", "July", "August", "September", "October", "November", "December"},
		short: [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"},
	},
	language.Spanish: {
		long:  [12]string{"enero", "febrero", "marzo", "abril", "mayo", "junio", "julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre"},
		short: [12]string{"ene", "feb", "mar", "abr", "may", "jun", "jul", "ago", "sept", "oct", "nov", "dic"},
	},
}

var ptMonths = monthTable{
	long:  [12]string{"janeiro", "fevereiro", "março", "abril", "maio", "junho", "julho", "agosto", "setembro", "outubro", "novembro", "dezembro"},
	short: [12]string{"jan", "fev", "mar", "abr", "mai", "jun", "jul", "ago", "set", "out", "nov", "dez"},
}

var supportedLocales = []language.Tag{
	language.BrazilianPortuguese,
	language.EuropeanPortuguese,
	language.English,
	language.Spanish,
}

var localeMatcher = language.NewMatcher(supportedLocales)

// ParseLocale resolves a BCP 47 identifier to one of the supported date
// locales, e.g. "pt" and "pt-br" both resolve to pt-BR.
func ParseLocale(id string) (language.Tag, error) {
	tag, err := language.Parse(id)
	if err != nil {
		return language.Und, fmt.Errorf("spacetraveling: parse locale %q: %w", id, err)
	}
	_, idx, conf := localeMatcher.Match(tag)
	if conf == language.No {
		return language.Und, fmt.Errorf("spacetraveling: unsupported date locale %q", id)
	}
	return supportedLocales[idx], nil
}

// DateFormat renders publication dates in a fixed locale. Layout is a Go
// time layout; its January and Jan month tokens are localized.
type DateFormat struct {
	Locale   language.Tag
	Layout   string
	Location *time.Location
}

// NewDateFormat builds a DateFormat from a locale identifier and layout.
// A nil loc means UTC.
func NewDateFormat(locale, layout string, loc *time.Location) (DateFormat, error) {
	tag, err := ParseLocale(locale)
	if err != nil {
		return DateFormat{}, err
	}
	if layout == "" {
		layout = DefaultDateLayout
	}
	if loc == nil {
		loc = time.UTC
	}
	return DateFormat{Locale: tag, Layout: layout, Location: loc}, nil
}

// DefaultDateFormat returns the pt-BR "02 Jan 2006" format in UTC.
func DefaultDateFormat() DateFormat {
	return DateFormat{Locale: language.BrazilianPortuguese, Layout: DefaultDateLayout, Location: time.UTC}
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05-0700",
	"2006-01-02",
}

// ParseDate parses the timestamp forms content APIs emit, including the
// Prismic "2021-03-25T19:25:28+0000" form.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, raw)
}

// FormatDate parses raw and renders it with f.
func (f DateFormat) FormatDate(raw string) (string, error) {
	t, err := ParseDate(raw)
	if err != nil {
		return "", err
	}
	return f.Format(t), nil
}

// Format renders t with f.
func (f DateFormat) Format(t time.Time) string {
	if f.Location != nil {
		t = t.In(f.Location)
	}
	layout := f.Layout
	if layout == "" {
		layout = DefaultDateLayout
	}
	names, ok := monthTables[f.Locale]
	if !ok {
		return t.Format(layout)
	}

	var b strings.Builder
	m := t.Month() - 1
	for layout != "" {
		i := strings.Index(layout, "Jan")
		if i < 0 {
			b.WriteString(t.Format(layout))
			break
		}
		b.WriteString(t.Format(layout[:i]))
		if strings.HasPrefix(layout[i:], "January") {
			b.WriteString(names.long[m])
			layout = layout[i+len("January"):]
		} else {
			b.WriteString(names.short[m])
			layout = layout[i+len("Jan"):]
		}
	}
	return b.String()
}

// EstimateReadMinutes counts the words of every heading and body and divides
// by WordsPerMinute, rounding up. No sections means zero minutes.
func EstimateReadMinutes(sections []content.Section) int {
	words := 0
	for _, s := range sections {
		words += len(strings.Fields(s.Heading))
		words += len(strings.Fields(richtext.AsText(s.Body, " ")))
	}
	return (words + WordsPerMinute - 1) / WordsPerMinute
}
