// Package locale translates UI strings and formats numbers for the configured
// language. English is the fallback for anything missing.
package locale

import (
	"embed"
	"fmt"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/jask/biovalue/internal/nav"
	"github.com/jask/biovalue/internal/wizard"
)

//go:embed messages/*.toml
var messageFS embed.FS

var supported = []language.Tag{language.English, language.German}

var (
	bundleOnce sync.Once
	bundle     *i18n.Bundle
	bundleErr  error
)

func loadBundle() (*i18n.Bundle, error) {
	bundleOnce.Do(func() {
		b := i18n.NewBundle(language.English)
		b.RegisterUnmarshalFunc("toml", toml.Unmarshal)
		entries, err := messageFS.ReadDir("messages")
		if err != nil {
			bundleErr = err
			return
		}
		for _, e := range entries {
			if _, err := b.LoadMessageFileFS(messageFS, "messages/"+e.Name()); err != nil {
				bundleErr = fmt.Errorf("load %s: %w", e.Name(), err)
				return
			}
		}
		bundle = b
	})
	return bundle, bundleErr
}

// Languages lists the supported language codes.
func Languages() []string {
	out := make([]string, len(supported))
	for i, t := range supported {
		out[i] = t.String()
	}
	return out
}

// Localizer formats for one language.
type Localizer struct {
	tag      language.Tag
	loc      *i18n.Localizer
	printer  *message.Printer
	currency string
}

// New builds a localizer. Unknown languages match to the closest supported one,
// falling back to English.
func New(lang, currencySymbol string) (*Localizer, error) {
	b, err := loadBundle()
	if err != nil {
		return nil, err
	}
	tag, _, _ := language.NewMatcher(supported).Match(language.Make(strings.TrimSpace(lang)))
	base, _ := tag.Base()
	tag = language.Make(base.String())
	return &Localizer{
		tag:      tag,
		loc:      i18n.NewLocalizer(b, tag.String(), language.English.String()),
		printer:  message.NewPrinter(tag),
		currency: currencySymbol,
	}, nil
}

// Lang is the matched language code, e.g. "de".
func (l *Localizer) Lang() string { return l.tag.String() }

// T translates id, returning id itself when no translation exists.
func (l *Localizer) T(id string) string {
	return l.localize(&i18n.LocalizeConfig{MessageID: id}, id)
}

func (l *Localizer) localize(cfg *i18n.LocalizeConfig, fallback string) string {
	s, err := l.loc.Localize(cfg)
	if err != nil || s == "" {
		return fallback
	}
	return s
}

func (l *Localizer) TabTitle(t nav.Tab) string {
	return l.localize(&i18n.LocalizeConfig{MessageID: "tab_" + t.ID() + "_title"}, t.Info().Title)
}

func (l *Localizer) TabDescription(t nav.Tab) string {
	return l.localize(&i18n.LocalizeConfig{MessageID: "tab_" + t.ID() + "_description"}, t.Info().Description)
}

// Number formats v with exactly scale fraction digits and locale grouping.
func (l *Localizer) Number(v float64, scale int) string {
	return l.printer.Sprint(number.Decimal(v, number.Scale(scale)))
}

// Money formats millions, e.g. "$1,234.5M".
func (l *Localizer) Money(d decimal.Decimal) string {
	f, _ := d.Float64()
	return l.currency + l.Number(f, 1) + "M"
}

// MoneyOrDash is Money for optional amounts.
func (l *Localizer) MoneyOrDash(d decimal.NullDecimal) string {
	if !d.Valid {
		return "-"
	}
	return l.Money(d.Decimal)
}

func (l *Localizer) Runway(r wizard.Runway) string {
	if !r.Available {
		return l.T("runway_unavailable")
	}
	f, _ := r.Months.Round(1).Float64()
	months := l.Number(f, 1)
	return l.localize(&i18n.LocalizeConfig{
		MessageID:    "runway_months",
		TemplateData: map[string]string{"Months": months},
		PluralCount:  r.Months.StringFixed(1),
	}, months+" months")
}

func (l *Localizer) Companies(n int) string {
	return l.localize(&i18n.LocalizeConfig{
		MessageID:    "companies_count",
		TemplateData: map[string]int{"Count": n},
		PluralCount:  n,
	}, fmt.Sprintf("%d companies", n))
}

func (l *Localizer) StepIndicator(s wizard.Step) string {
	return l.localize(&i18n.LocalizeConfig{
		MessageID: "step_indicator",
		TemplateData: map[string]any{
			"Number": s.Number(),
			"Total":  wizard.StepCount,
			"Title":  s.Title(),
		},
	}, fmt.Sprintf("Step %d of %d: %s", s.Number(), wizard.StepCount, s.Title()))
}
