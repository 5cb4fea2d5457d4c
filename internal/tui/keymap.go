package tui

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/jask/biovalue/internal/nav"
	"github.com/jask/biovalue/internal/wizard"
)

// keyMap holds every binding. Scopes decide which ones are live, so a key may
// appear in several bindings as long as their scopes never overlap.
type keyMap struct {
	Quit, NextTab, PrevTab, Back, Tabs key.Binding

	Up, Down, Select, Cancel key.Binding

	// evaluation
	Filter, NewCompany, NextStep, PrevStep, Edit, SaveForm key.Binding

	Inc, Dec, ClearScore, Complete key.Binding

	// comparables, reports, settings
	Sort, Copy, Reload, Language, Reset key.Binding

	// modals
	Confirm, Deny key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		NextTab: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		PrevTab: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev tab")),
		Back:    key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "back")),
		Tabs:    key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6", "7"), key.WithHelp("1-7", "tabs")),

		Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Select: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		Cancel: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),

		Filter:     key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
		NewCompany: key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new company")),
		NextStep:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→", "next step")),
		PrevStep:   key.NewBinding(key.WithKeys("left", "h", "esc"), key.WithHelp("←", "previous step")),
		Edit:       key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "edit field")),
		SaveForm:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "save company")),
		Inc:        key.NewBinding(key.WithKeys("+", "=", "right", "l"), key.WithHelp("+", "score up")),
		Dec:        key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "score down")),
		ClearScore: key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "clear score")),
		Complete:   key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "complete")),

		Sort:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort")),
		Copy:     key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy report")),
		Reload:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Language: key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "language")),
		Reset:    key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "reset data")),

		Confirm: key.NewBinding(key.WithKeys("y", "Y"), key.WithHelp("y", "yes")),
		Deny:    key.NewBinding(key.WithKeys("n", "N", "esc"), key.WithHelp("n", "no")),
	}
}

// helpBindings lists the bindings live in the current context, for the footer.
func (a *App) helpBindings() []key.Binding {
	k := a.keys
	switch {
	case a.modal == modalConfirmReset:
		return []key.Binding{k.Confirm, k.Deny}
	case a.modal == modalImportPath:
		return []key.Binding{k.Select, k.Cancel}
	case a.editing:
		return []key.Binding{withHelp(k.Select, "enter", "apply"), k.Cancel}
	case a.query.Focused():
		return []key.Binding{withHelp(k.Select, "enter", "done"), withHelp(k.Cancel, "esc", "clear")}
	}

	global := []key.Binding{k.Tabs, k.NextTab, k.Back, k.Quit}
	global[2].SetEnabled(a.navState.CanGoBack())

	var local []key.Binding
	switch a.navState.Current {
	case nav.Evaluation:
		local = a.evaluationBindings()
	case nav.Comparables:
		local = []key.Binding{k.Sort}
	case nav.Reports:
		local = []key.Binding{k.Up, k.Down, k.Copy, k.Reload}
	case nav.Settings:
		local = []key.Binding{k.Up, k.Down, withHelp(k.Select, "enter", "choose"), k.Language, k.Reset}
	}
	return append(local, global...)
}

func (a *App) evaluationBindings() []key.Binding {
	k := a.keys
	if a.wizSnap.FormOpen {
		return []key.Binding{k.Up, k.Down, k.Edit, k.SaveForm, k.Cancel}
	}
	switch a.wizSnap.Step {
	case wizard.Selection:
		return []key.Binding{k.Up, k.Down, k.Select, k.Filter, k.NewCompany, k.NextStep}
	case wizard.BasicInfo:
		return []key.Binding{k.Up, k.Down, k.Edit, k.NextStep, k.PrevStep}
	default:
		return []key.Binding{k.Up, k.Down, k.Inc, k.Dec, k.ClearScore, k.Complete, k.PrevStep}
	}
}

func withHelp(b key.Binding, k, desc string) key.Binding {
	b.SetHelp(k, desc)
	return b
}
