package tui

import (
	"database/sql"
	"fmt"
	"slices"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/shopspring/decimal"

	"github.com/jask/biovalue/internal/database/repository"
	"github.com/jask/biovalue/internal/nav"
	"github.com/jask/biovalue/internal/wizard"
)

type reportRow = repository.Evaluation

func (a *App) View() string {
	t := a.navState.Current
	var body string
	switch t {
	case nav.Evaluation:
		body = a.renderEvaluation()
	case nav.Pillars:
		body = a.renderPillars()
	case nav.Comparables:
		body = a.renderComparables()
	case nav.Valuation:
		body = a.renderValuation()
	case nav.Reports:
		body = a.renderReports()
	case nav.Settings:
		body = a.renderSettings()
	default:
		t = nav.Dashboard
		body = a.renderDashboard()
	}
	section := a.renderSection(t, body)
	if a.navState.InTransition {
		section = dimStyle.Render(section)
	}
	base := a.renderHeader() + "\n" + section
	status, footer := a.renderStatus(), a.renderFooter(a.helpBindings())
	if a.modal != modalNone {
		return a.composeModal(base, status, footer, a.renderModal())
	}
	return a.placeWithFooter(base, status, footer)
}

func cursorMark(on bool) string {
	if on {
		return cursorStyle.Render("▶ ")
	}
	return "  "
}

func (a *App) renderDashboard() string {
	s := a.summary
	var b strings.Builder
	fmt.Fprintf(&b, "%s   Evaluations: %d   Avg score: %s   Active deals: %d\n",
		a.loc.Companies(s.Companies), s.Evaluations, a.loc.Number(s.AvgScore, 1), s.ActiveDeals)
	fmt.Fprintf(&b, "Pipeline value: %s\n\n", okStyle.Render(a.loc.Money(decimal.NewFromFloat(s.PipelineValue))))
	b.WriteString(a.renderPipelineChart())
	if len(a.tabCounts) > 0 {
		b.WriteString("\n" + titleStyle.Render("Most visited"))
		for i, tc := range a.tabCounts {
			if i == 3 {
				break
			}
			title := tc.Tab
			if t, err := nav.ParseTab(tc.Tab); err == nil {
				title = a.loc.TabTitle(t)
			}
			fmt.Fprintf(&b, "\n  %-24s %d", title, tc.Count)
		}
	}
	return b.String()
}

// renderPipelineChart draws the refresher history, one bar per sample.
func (a *App) renderPipelineChart() string {
	width := min(a.contentWidth()-4, 100)
	height := 8
	if a.height > 0 && a.height < 30 {
		height = 5
	}
	history := a.history
	if maxBars := width / 2; len(history) > maxBars {
		history = history[len(history)-maxBars:]
	}

	bc := barchart.New(width, height,
		barchart.WithBarGap(1),
		barchart.WithBarWidth(1),
		barchart.WithNoAxis(),
	)
	for _, s := range history {
		bc.Push(barchart.BarData{
			Label: "",
			Values: []barchart.BarValue{
				{Name: "pipeline", Value: s.PipelineValue, Style: barStyle},
			},
		})
	}
	bc.Draw()
	return boxStyle.Render(bc.View())
}

func (a *App) renderEvaluation() string {
	snap := a.wizSnap
	out := warnStyle.Render(a.loc.StepIndicator(snap.Step)) + "\n\n"

	if snap.FormOpen {
		out += titleStyle.Render("New company") + "\n"
		out += a.renderFields(snap.Form, snap.FormRunway)
		if snap.FormErr != nil {
			out += "\n" + errorStyle.Render(snap.FormErr.Error())
		}
		return out
	}

	switch snap.Step {
	case wizard.Selection:
		if a.query.Focused() || a.query.Value() != "" {
			out += a.query.View() + "\n"
		}
		list := a.selectionList()
		if len(list) == 0 {
			out += dimStyle.Render("  no companies match") + "\n"
		}
		for i, c := range list {
			selected := ""
			if c.ID == snap.SelectedID {
				selected = okStyle.Render(" ✓")
			}
			out += fmt.Sprintf("%s%-28s %-6s %-12s%s\n", cursorMark(i == a.listCursor), truncate(c.Name, 28), c.Ticker, c.Stage, selected)
		}
	case wizard.BasicInfo:
		out += a.renderFields(snap.Draft, snap.Runway)
	case wizard.Scoring:
		out += fmt.Sprintf("%s (%s)\n", snap.Draft.Name, snap.Draft.Ticker)
		for i, p := range wizard.Pillars() {
			v, ok := snap.Scores[p]
			bar := ""
			if ok {
				bar = lipgloss.NewStyle().Foreground(pillarColors[p]).Render(strings.Repeat("■", v)) +
					dimStyle.Render(strings.Repeat("·", wizard.MaxScore-v))
			}
			out += fmt.Sprintf("%s%-20s %-4s %s\n", cursorMark(i == a.scoreCursor), p.Title(), scoreLabel(sql.NullInt64{Int64: int64(v), Valid: ok}), bar)
		}
		if len(snap.Scores) > 0 {
			out += fmt.Sprintf("\nComposite: %.1f", wizard.Composite(snap.Scores))
		}
	}
	if snap.Err != nil {
		out += "\n" + errorStyle.Render(snap.Err.Error())
	}
	return out
}

func (a *App) renderFields(d wizard.Draft, runway wizard.Runway) string {
	var out string
	for i, f := range wizard.Fields() {
		value := d.Get(f)
		if f.Money() {
			if amt, err := wizard.ParseAmount(value); err == nil {
				value = a.loc.MoneyOrDash(amt)
			}
		}
		if a.editing && i == a.fieldCursor {
			value = a.input.View()
		}
		out += fmt.Sprintf("%s%-22s %s\n", cursorMark(i == a.fieldCursor), f.Label(), value)
	}
	out += fmt.Sprintf("  %-22s %s\n", "Runway", a.loc.Runway(runway))
	return out
}

func (a *App) renderPillars() string {
	var out string
	for _, p := range a.sample.Pillars {
		color := colorText
		if wp, ok := wizard.ParsePillar(p.ID); ok {
			color = pillarColors[wp]
		}
		title := lipgloss.NewStyle().Foreground(color).Bold(true).Render(fmt.Sprintf("%-20s", p.Title))
		out += fmt.Sprintf("%s %3.0f%%  %s\n", title, p.Weight*100, p.Description)
	}
	return out
}

func (a *App) renderComparables() string {
	companies := slices.Clone(a.wizSnap.Companies)
	switch a.compSort {
	case sortByCash:
		slices.SortStableFunc(companies, func(x, y wizard.Company) int {
			return -x.CashPosition.Decimal.Cmp(y.CashPosition.Decimal)
		})
	case sortByRunway:
		slices.SortStableFunc(companies, func(x, y wizard.Company) int {
			rx, ry := wizard.DraftFromCompany(x).Runway(), wizard.DraftFromCompany(y).Runway()
			if rx.Available != ry.Available {
				if rx.Available {
					return -1
				}
				return 1
			}
			return -rx.Months.Cmp(ry.Months)
		})
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"Company", "Ticker", "Stage", "Area", "Cash", "Burn/mo", "Runway"})
	for _, c := range companies {
		tw.AppendRow(table.Row{
			c.Name, c.Ticker, c.Stage, c.TherapeuticArea,
			a.loc.MoneyOrDash(c.CashPosition), a.loc.MoneyOrDash(c.BurnRate),
			a.loc.Runway(wizard.DraftFromCompany(c).Runway()),
		})
	}
	return tw.Render() + "\n" + dimStyle.Render("sorted by "+a.compSort.String())
}

func (a *App) renderValuation() string {
	var out string
	weighted := decimal.Zero
	for _, s := range a.sample.Scenarios {
		v, err := decimal.NewFromString(s.Valuation)
		if err != nil {
			continue
		}
		weighted = weighted.Add(v.Mul(decimal.NewFromFloat(s.Probability)))
		peak := s.PeakSales
		if ps, err := decimal.NewFromString(s.PeakSales); err == nil {
			peak = a.loc.Money(ps)
		}
		out += fmt.Sprintf("%-6s %3.0f%%  peak %10s  value %10s  %s\n", s.Name, s.Probability*100, peak, a.loc.Money(v), dimStyle.Render(s.Note))
	}
	out += "\nProbability-weighted: " + okStyle.Render(a.loc.Money(weighted))
	return out
}

func (a *App) renderReports() string {
	if len(a.evaluations) == 0 {
		return dimStyle.Render("No evaluations yet. Complete one on the evaluation tab.")
	}
	var out string
	for i, e := range a.evaluations {
		out += fmt.Sprintf("%s%s  %-28s %-6s %4.1f\n", cursorMark(i == a.reportCursor), e.CreatedAt.Format("2006-01-02"), truncate(e.Name, 28), e.Ticker, e.Composite)
	}
	return out + "\n" + boxStyle.Render(a.reportText(a.evaluations[a.reportCursor]))
}

func (a *App) renderSettings() string {
	labels := map[string]string{
		"language": "Language: " + a.loc.Lang(),
		"import":   "Import companies from CSV",
		"reset":    "Reset database (reloads sample companies)",
	}
	var out string
	for i, item := range settingsItems {
		out += cursorMark(i == a.settingsCursor) + labels[item] + "\n"
	}
	if r := a.lastImport; r != nil {
		out += fmt.Sprintf("\nLast import: %d imported, %d skipped, %d errors", r.Imported, r.Skipped, len(r.Errors))
		if len(r.Errors) > 0 {
			out += "\n" + errorStyle.Render("first error: "+r.Errors[0].Error())
		}
	}
	return out
}

func (a *App) renderModal() string {
	switch a.modal {
	case modalConfirmReset:
		return titleStyle.Render("Reset database?") + "\nThis deletes companies, evaluations and analytics."
	case modalImportPath:
		return titleStyle.Render("Import CSV") + "\n" + dimStyle.Render("columns: name,ticker,stage,area,cash,burn") + "\n" + a.input.View()
	}
	return ""
}

func (a *App) runwayLabel(months decimal.NullDecimal) string {
	if !months.Valid {
		return a.loc.Runway(wizard.Unavailable)
	}
	return a.loc.Runway(wizard.Runway{Months: months.Decimal, Available: true})
}

func pillarScore(e reportRow, p wizard.Pillar) sql.NullInt64 {
	switch p {
	case wizard.Science:
		return e.ScienceScore
	case wizard.Clinical:
		return e.ClinicalScore
	case wizard.Market:
		return e.MarketScore
	case wizard.Team:
		return e.TeamScore
	case wizard.Financials:
		return e.FinancialsScore
	}
	return sql.NullInt64{}
}

func scoreLabel(v sql.NullInt64) string {
	if !v.Valid {
		return "-"
	}
	return fmt.Sprintf("%d", v.Int64)
}
