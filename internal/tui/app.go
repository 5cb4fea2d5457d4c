package tui

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jask/biovalue/internal/config"
	"github.com/jask/biovalue/internal/database/repository"
	"github.com/jask/biovalue/internal/locale"
	"github.com/jask/biovalue/internal/nav"
	"github.com/jask/biovalue/internal/sample"
	"github.com/jask/biovalue/internal/service"
	"github.com/jask/biovalue/internal/stats"
	"github.com/jask/biovalue/internal/wizard"
)

// App ties together views.
type App struct {
	ctx      context.Context
	cfg      config.Config
	log      *zap.Logger
	services Services
	loc      *locale.Localizer
	sample   sample.Data

	keys    keyMap
	nav     *nav.Navigator
	wiz     *wizard.Wizard
	stats   *stats.Refresher
	events  chan tea.Msg
	copyFn  func(string) error
	saveCfg func(config.Config) error

	navState    nav.State
	wizSnap     wizard.Snapshot
	summary     stats.Summary
	history     []stats.Summary
	evaluations []repository.Evaluation
	tabCounts   []repository.TabCount

	width, height int
	status        string
	modal         modalState

	// evaluation tab
	query       textinput.Model
	input       textinput.Model
	editing     bool
	listCursor  int
	fieldCursor int
	scoreCursor int

	compSort       compSort
	reportCursor   int
	settingsCursor int
	lastImport     *service.ImportResult
}

// Services are the storage-backed collaborators. Any may be nil in tests.
type Services struct {
	Catalog     *service.Catalog
	Recorder    *service.Recorder
	Import      *service.ImportService
	Maintenance *service.MaintenanceService
	Analytics   *service.Analytics
}

// Deps are the stateful controllers the App drives.
type Deps struct {
	Nav    *nav.Navigator
	Wizard *wizard.Wizard
	Stats  *stats.Refresher
}

type modalState string

const (
	modalNone         modalState = ""
	modalConfirmReset modalState = "confirmReset"
	modalImportPath   modalState = "importPath"
)

type compSort int

const (
	sortByName compSort = iota
	sortByCash
	sortByRunway
)

func (s compSort) String() string {
	switch s {
	case sortByCash:
		return "cash"
	case sortByRunway:
		return "runway"
	}
	return "name"
}

// Option configures an App.
type Option func(*App)

func WithLogger(l *zap.Logger) Option { return func(a *App) { a.log = l } }

// WithClipboard replaces the system clipboard writer.
func WithClipboard(fn func(string) error) Option { return func(a *App) { a.copyFn = fn } }

// WithConfigSaver replaces config.Save for the language toggle.
func WithConfigSaver(fn func(config.Config) error) Option { return func(a *App) { a.saveCfg = fn } }

func New(ctx context.Context, cfg config.Config, deps Deps, services Services, opts ...Option) (*App, error) {
	loc, err := locale.New(cfg.UI.Language, cfg.UI.CurrencySymbol)
	if err != nil {
		return nil, fmt.Errorf("locale: %w", err)
	}
	data, err := sample.Load()
	if err != nil {
		return nil, err
	}

	query := textinput.New()
	query.Placeholder = "filter companies"
	query.CharLimit = 64
	query.Width = 40
	input := textinput.New()
	input.CharLimit = 256
	input.Width = 50

	a := &App{
		ctx:      ctx,
		cfg:      cfg,
		log:      zap.NewNop(),
		services: services,
		loc:      loc,
		sample:   data,
		keys:     newKeyMap(),
		nav:      deps.Nav,
		wiz:      deps.Wizard,
		stats:    deps.Stats,
		events:   make(chan tea.Msg, 100),
		copyFn:   clipboard.WriteAll,
		saveCfg:  config.Save,
		query:    query,
		input:    input,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.navState = a.nav.State()
	a.wizSnap = a.wiz.Snapshot()
	if a.stats != nil {
		a.summary = a.stats.Current()
		a.history = a.stats.History()
	}
	return a, nil
}

// Subscribe forwards navigator, wizard and refresher changes into the program
// through a buffered channel. Publishers may run inside Update, so a full
// channel drops the message; handlers re-read current state anyway.
func (a *App) Subscribe() (unsubscribe func()) {
	send := func(m tea.Msg) {
		select {
		case a.events <- m:
		default:
		}
	}
	unsubs := []func(){
		a.nav.Subscribe(func(s nav.State) { send(navStateMsg(s)) }),
		a.wiz.Subscribe(func(s wizard.Snapshot) { send(wizardMsg(s)) }),
	}
	if a.stats != nil {
		unsubs = append(unsubs, a.stats.Subscribe(func(s stats.Summary) { send(statsMsg(s)) }))
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(
		channelReaderCmd(a.events),
		a.loadCompanies(),
		a.loadEvaluations(),
		a.loadTabCounts(),
	)
}

func channelReaderCmd(ch <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return eventMsg{<-ch}
	}
}

func (a *App) loadCompanies() tea.Cmd {
	return func() tea.Msg {
		if err := a.wiz.Load(a.ctx); err != nil {
			return errMsg{err}
		}
		return wizardMsg(a.wiz.Snapshot())
	}
}

func (a *App) loadEvaluations() tea.Cmd {
	return func() tea.Msg {
		if a.services.Recorder == nil {
			return evaluationsMsg(nil)
		}
		list, err := a.services.Recorder.Recent(a.ctx, 50)
		if err != nil {
			return errMsg{err}
		}
		return evaluationsMsg(list)
	}
}

func (a *App) loadTabCounts() tea.Cmd {
	return func() tea.Msg {
		if a.services.Analytics == nil {
			return tabCountsMsg(nil)
		}
		counts, err := a.services.Analytics.Counts(a.ctx)
		if err != nil {
			return errMsg{err}
		}
		return tabCountsMsg(counts)
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case eventMsg:
		model, cmd := a.Update(m.Msg)
		return model, tea.Batch(cmd, channelReaderCmd(a.events))
	case tea.WindowSizeMsg:
		a.width, a.height = m.Width, m.Height
	case tea.KeyMsg:
		return a.handleKey(m)
	case navStateMsg:
		prev := a.navState.Current
		a.navState = a.nav.State()
		if a.navState.Current != prev {
			return a, a.onTabEntered(a.navState.Current)
		}
	case wizardMsg:
		a.wizSnap = a.wiz.Snapshot()
		a.clampCursors()
	case statsMsg:
		if a.stats != nil {
			a.summary = a.stats.Current()
			a.history = a.stats.History()
		}
	case evaluationsMsg:
		a.evaluations = []repository.Evaluation(m)
		if a.reportCursor >= len(a.evaluations) {
			a.reportCursor = 0
		}
	case tabCountsMsg:
		a.tabCounts = []repository.TabCount(m)
	case statusMsg:
		a.status = string(m)
	case errMsg:
		a.status = "error: " + m.Error()
		a.log.Warn("tui error", zap.Error(m.error))
		a.syncWizard()
	case companyAddedMsg:
		a.status = "added " + m.Name
		a.fieldCursor = 0
		a.syncWizard()
		return a, a.reseedStatsCmd()
	case importDoneMsg:
		a.lastImport = &m.Result
		summary := fmt.Sprintf("imported %d, skipped %d", m.Result.Imported, m.Result.Skipped)
		if len(m.Result.Errors) > 0 {
			summary += fmt.Sprintf(", errors %d", len(m.Result.Errors))
		}
		a.status = summary
		return a, tea.Batch(a.loadCompanies(), a.reseedStatsCmd())
	case completedMsg:
		a.status = fmt.Sprintf("evaluation saved: %s %.1f", m.Draft.Name, m.Composite)
		a.scoreCursor = 0
		a.syncWizard()
		return a, tea.Batch(a.loadEvaluations(), a.reseedStatsCmd())
	case resetDoneMsg:
		a.wiz.Reset()
		a.status = "database reset"
		return a, tea.Batch(a.loadCompanies(), a.loadEvaluations(), a.loadTabCounts(), a.reseedStatsCmd())
	}
	return a, nil
}

// onTabEntered refreshes the data a tab shows when it becomes current.
func (a *App) onTabEntered(t nav.Tab) tea.Cmd {
	switch t {
	case nav.Reports:
		return a.loadEvaluations()
	case nav.Dashboard:
		return a.loadTabCounts()
	case nav.Evaluation, nav.Comparables:
		return a.loadCompanies()
	}
	return nil
}

func (a *App) clampCursors() {
	if n := len(a.selectionList()); a.listCursor >= n {
		a.listCursor = max(0, n-1)
	}
}

// commands
func (a *App) saveNewCompanyCmd() tea.Cmd {
	return func() tea.Msg {
		c, err := a.wiz.SaveNewCompany(a.ctx)
		if err != nil {
			return errMsg{err}
		}
		return companyAddedMsg(c)
	}
}

func (a *App) completeCmd() tea.Cmd {
	return func() tea.Msg {
		ev, err := a.wiz.Complete(a.ctx)
		if err != nil {
			return errMsg{err}
		}
		return completedMsg(ev)
	}
}

// reseedStatsCmd reloads the stored counts into the refresher. Companies are
// counted from storage so the result does not depend on a concurrent reload.
func (a *App) reseedStatsCmd() tea.Cmd {
	return func() tea.Msg {
		if a.stats == nil || a.services.Recorder == nil {
			return nil
		}
		n, avg, err := a.services.Recorder.Evaluations.Aggregate(a.ctx)
		if err != nil {
			return errMsg{err}
		}
		companies := len(a.wiz.Snapshot().Companies)
		if a.services.Catalog != nil {
			list, err := a.services.Catalog.List(a.ctx)
			if err != nil {
				return errMsg{err}
			}
			companies = len(list)
		}
		a.stats.Reseed(companies, n, avg)
		return nil
	}
}

func (a *App) resetCmd() tea.Cmd {
	return func() tea.Msg {
		if a.services.Maintenance == nil {
			return errMsg{fmt.Errorf("maintenance not configured")}
		}
		if err := a.services.Maintenance.Reset(a.ctx, true); err != nil {
			return errMsg{err}
		}
		return resetDoneMsg{}
	}
}

func (a *App) importCmd(path string) tea.Cmd {
	abs := path
	if !filepath.IsAbs(path) {
		if p, err := filepath.Abs(path); err == nil {
			abs = p
		}
	}
	a.status = "importing..."
	return func() tea.Msg {
		if a.services.Import == nil {
			return errMsg{fmt.Errorf("import not configured")}
		}
		res, err := a.services.Import.ImportFile(a.ctx, abs)
		if err != nil {
			return errMsg{err}
		}
		return importDoneMsg{Result: res}
	}
}

func (a *App) toggleLanguage() tea.Cmd {
	langs := locale.Languages()
	next := langs[0]
	for i, l := range langs {
		if l == a.loc.Lang() {
			next = langs[(i+1)%len(langs)]
		}
	}
	loc, err := locale.New(next, a.cfg.UI.CurrencySymbol)
	if err != nil {
		return func() tea.Msg { return errMsg{err} }
	}
	a.loc = loc
	a.cfg.UI.Language = next
	cfg := a.cfg
	return func() tea.Msg {
		if err := a.saveCfg(cfg); err != nil {
			return errMsg{err}
		}
		return statusMsg("language: " + next)
	}
}

// messages
type eventMsg struct{ tea.Msg }

type navStateMsg nav.State

type wizardMsg wizard.Snapshot

type statsMsg stats.Summary

type evaluationsMsg []repository.Evaluation

type tabCountsMsg []repository.TabCount

type statusMsg string

type errMsg struct{ error }

type importDoneMsg struct {
	Result service.ImportResult
}

type completedMsg wizard.Evaluation

type companyAddedMsg wizard.Company

type resetDoneMsg struct{}
