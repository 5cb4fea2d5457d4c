package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/biovalue/internal/nav"
	"github.com/jask/biovalue/internal/wizard"
)

func (a *App) handleKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.String() == "ctrl+c" {
		return a, tea.Quit
	}
	if a.modal != modalNone {
		return a.handleModalKey(m)
	}
	if a.editing {
		return a.handleEditKey(m)
	}
	if a.query.Focused() {
		return a.handleQueryKey(m)
	}

	k := a.keys
	switch {
	case key.Matches(m, k.Quit):
		return a, tea.Quit
	case key.Matches(m, k.NextTab):
		return a, a.selectTab(nextTab(a.navState.Current, 1), true)
	case key.Matches(m, k.PrevTab):
		return a, a.selectTab(nextTab(a.navState.Current, -1), true)
	case key.Matches(m, k.Back):
		if a.nav.GoBack() {
			return a, a.syncNav()
		}
		a.status = "no previous tab"
		return a, nil
	case key.Matches(m, k.Tabs):
		if t, ok := nav.TabForHotkey(m.Runes[0]); ok {
			return a, a.selectTab(t, true)
		}
	}

	switch a.navState.Current {
	case nav.Evaluation:
		return a.handleEvaluationKey(m)
	case nav.Comparables:
		if key.Matches(m, k.Sort) {
			a.compSort = (a.compSort + 1) % 3
		}
	case nav.Reports:
		return a.handleReportsKey(m)
	case nav.Settings:
		return a.handleSettingsKey(m)
	}
	return a, nil
}

func nextTab(cur nav.Tab, step int) nav.Tab {
	tabs := nav.AllTabs()
	for i, t := range tabs {
		if t == cur {
			return tabs[(i+step+len(tabs))%len(tabs)]
		}
	}
	return nav.DefaultTab
}

func (a *App) selectTab(t nav.Tab, animated bool) tea.Cmd {
	a.nav.SelectTab(t, animated)
	return a.syncNav()
}

// syncNav pulls navigator state after a local mutation. Animated commits arrive
// later as navStateMsg.
func (a *App) syncNav() tea.Cmd {
	prev := a.navState.Current
	a.navState = a.nav.State()
	if a.navState.Current != prev {
		return a.onTabEntered(a.navState.Current)
	}
	return nil
}

func (a *App) syncWizard() {
	a.wizSnap = a.wiz.Snapshot()
	a.clampCursors()
}

func (a *App) handleEvaluationKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	defer a.syncWizard()
	snap := a.wizSnap
	k := a.keys

	if snap.FormOpen {
		switch {
		case key.Matches(m, k.Cancel):
			a.wiz.CancelNewCompany()
			a.fieldCursor = 0
		case key.Matches(m, k.Up):
			a.fieldCursor = max(0, a.fieldCursor-1)
		case key.Matches(m, k.Down):
			a.fieldCursor = min(len(wizard.Fields())-1, a.fieldCursor+1)
		case key.Matches(m, k.Edit):
			return a, a.beginEdit(snap.Form)
		case key.Matches(m, k.SaveForm):
			return a, a.saveNewCompanyCmd()
		}
		return a, nil
	}

	switch snap.Step {
	case wizard.Selection:
		list := a.selectionList()
		switch {
		case key.Matches(m, k.Filter):
			return a, a.query.Focus()
		case key.Matches(m, k.Up):
			a.listCursor = max(0, a.listCursor-1)
		case key.Matches(m, k.Down):
			a.listCursor = min(max(0, len(list)-1), a.listCursor+1)
		case key.Matches(m, k.Select):
			if len(list) == 0 {
				return a, nil
			}
			if err := a.wiz.SelectCompany(list[a.listCursor].ID); err != nil {
				a.status = err.Error()
			}
			a.fieldCursor = 0
		case key.Matches(m, k.NewCompany):
			if err := a.wiz.OpenNewCompany(); err != nil {
				a.status = err.Error()
			}
			a.fieldCursor = 0
		case key.Matches(m, k.NextStep):
			a.next()
		}
	case wizard.BasicInfo:
		switch {
		case key.Matches(m, k.Up):
			a.fieldCursor = max(0, a.fieldCursor-1)
		case key.Matches(m, k.Down):
			a.fieldCursor = min(len(wizard.Fields())-1, a.fieldCursor+1)
		case key.Matches(m, k.Edit):
			return a, a.beginEdit(snap.Draft)
		case key.Matches(m, k.NextStep):
			a.next()
		case key.Matches(m, k.PrevStep):
			a.wiz.Back()
		}
	case wizard.Scoring:
		pillars := wizard.Pillars()
		p := pillars[a.scoreCursor]
		switch {
		case key.Matches(m, k.Up):
			a.scoreCursor = max(0, a.scoreCursor-1)
		case key.Matches(m, k.Down):
			a.scoreCursor = min(len(pillars)-1, a.scoreCursor+1)
		case key.Matches(m, k.Inc):
			a.adjustScore(p, 1)
		case key.Matches(m, k.Dec):
			a.adjustScore(p, -1)
		case key.Matches(m, k.ClearScore):
			a.wiz.ClearScore(p)
		case key.Matches(m, k.PrevStep):
			a.wiz.Back()
		case key.Matches(m, k.Complete):
			return a, a.completeCmd()
		}
	}
	return a, nil
}

func (a *App) next() {
	if err := a.wiz.Next(); err != nil {
		a.status = err.Error()
		return
	}
	a.status = ""
	a.fieldCursor = 0
	a.scoreCursor = 0
}

// adjustScore nudges a pillar; an unscored pillar starts from the middle.
func (a *App) adjustScore(p wizard.Pillar, delta int) {
	cur, ok := a.wizSnap.Scores[p]
	if !ok {
		cur = (wizard.MinScore + wizard.MaxScore) / 2
		delta = 0
	}
	next := min(wizard.MaxScore, max(wizard.MinScore, cur+delta))
	if err := a.wiz.SetScore(p, next); err != nil {
		a.status = err.Error()
	}
}

func (a *App) beginEdit(d wizard.Draft) tea.Cmd {
	f := wizard.Fields()[a.fieldCursor]
	a.editing = true
	a.input.Placeholder = f.Label()
	a.input.SetValue(d.Get(f))
	a.input.CursorEnd()
	return a.input.Focus()
}

func (a *App) handleEditKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(m, a.keys.Cancel):
		a.editing = false
		a.input.Blur()
		return a, nil
	case key.Matches(m, a.keys.Select):
		f := wizard.Fields()[a.fieldCursor]
		var err error
		if a.wizSnap.FormOpen {
			err = a.wiz.SetFormField(f, a.input.Value())
		} else {
			err = a.wiz.SetField(f, a.input.Value())
		}
		if err != nil {
			a.status = err.Error()
			return a, nil
		}
		a.status = ""
		a.editing = false
		a.input.Blur()
		a.syncWizard()
		return a, nil
	}
	var cmd tea.Cmd
	a.input, cmd = a.input.Update(m)
	return a, cmd
}

func (a *App) handleQueryKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(m, a.keys.Cancel):
		a.query.SetValue("")
		a.query.Blur()
		a.listCursor = 0
		return a, nil
	case key.Matches(m, a.keys.Select):
		a.query.Blur()
		return a, nil
	}
	var cmd tea.Cmd
	a.query, cmd = a.query.Update(m)
	a.listCursor = 0
	return a, cmd
}

// selectionList is the company list as filtered by the query box.
func (a *App) selectionList() []wizard.Company {
	return wizard.Rank(a.wizSnap.Companies, a.query.Value())
}

func (a *App) handleReportsKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := a.keys
	switch {
	case key.Matches(m, k.Up):
		a.reportCursor = max(0, a.reportCursor-1)
	case key.Matches(m, k.Down):
		a.reportCursor = min(max(0, len(a.evaluations)-1), a.reportCursor+1)
	case key.Matches(m, k.Reload):
		return a, a.loadEvaluations()
	case key.Matches(m, k.Copy):
		if len(a.evaluations) == 0 {
			a.status = "no evaluations"
			return a, nil
		}
		text := a.reportText(a.evaluations[a.reportCursor])
		if err := a.copyFn(text); err != nil {
			a.status = "clipboard: " + err.Error()
			return a, nil
		}
		a.status = "report copied to clipboard"
	}
	return a, nil
}

var settingsItems = []string{"language", "import", "reset"}

func (a *App) handleSettingsKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := a.keys
	switch {
	case key.Matches(m, k.Up):
		a.settingsCursor = max(0, a.settingsCursor-1)
	case key.Matches(m, k.Down):
		a.settingsCursor = min(len(settingsItems)-1, a.settingsCursor+1)
	case key.Matches(m, k.Select):
		switch settingsItems[a.settingsCursor] {
		case "language":
			return a, a.toggleLanguage()
		case "import":
			a.modal = modalImportPath
			a.input.Placeholder = "companies.csv"
			a.input.SetValue("")
			return a, a.input.Focus()
		case "reset":
			a.modal = modalConfirmReset
		}
	case key.Matches(m, k.Language):
		return a, a.toggleLanguage()
	case key.Matches(m, k.Reset):
		a.modal = modalConfirmReset
	}
	return a, nil
}

func (a *App) handleModalKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch a.modal {
	case modalConfirmReset:
		switch {
		case key.Matches(m, a.keys.Confirm):
			a.modal = modalNone
			a.status = "resetting..."
			return a, a.resetCmd()
		case key.Matches(m, a.keys.Deny):
			a.modal = modalNone
		}
		return a, nil
	case modalImportPath:
		switch {
		case key.Matches(m, a.keys.Cancel):
			a.modal = modalNone
			a.input.Blur()
			return a, nil
		case key.Matches(m, a.keys.Select):
			path := strings.TrimSpace(a.input.Value())
			a.modal = modalNone
			a.input.Blur()
			if path == "" {
				a.status = "import cancelled"
				return a, nil
			}
			return a, a.importCmd(path)
		}
		var cmd tea.Cmd
		a.input, cmd = a.input.Update(m)
		return a, cmd
	}
	a.modal = modalNone
	return a, nil
}

func (a *App) reportText(e reportRow) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s)\n", e.Name, e.Ticker)
	fmt.Fprintf(&b, "Stage: %s  Area: %s\n", e.Stage, e.TherapeuticArea)
	fmt.Fprintf(&b, "Cash: %s  Burn: %s/mo  Runway: %s\n",
		a.loc.MoneyOrDash(e.CashPosition), a.loc.MoneyOrDash(e.BurnRate), a.runwayLabel(e.RunwayMonths))
	for _, p := range wizard.Pillars() {
		fmt.Fprintf(&b, "%-20s %s\n", p.Title()+":", scoreLabel(pillarScore(e, p)))
	}
	fmt.Fprintf(&b, "Composite: %.1f / %d\n", e.Composite, wizard.MaxScore)
	fmt.Fprintf(&b, "Recorded: %s", e.CreatedAt.Format("2006-01-02 15:04"))
	return b.String()
}
