package wizard

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/jask/biovalue/internal/observe"
)

// CompanyCollection is the store the wizard selects from and creates into.
type CompanyCollection interface {
	List(ctx context.Context) ([]Company, error)
	Create(ctx context.Context, d Draft) (Company, error)
}

// EvaluationSink receives completed evaluations.
type EvaluationSink interface {
	Record(ctx context.Context, e Evaluation) error
}

// Evaluation is the result of a completed workflow.
type Evaluation struct {
	CompanyID string
	Draft     Draft
	Runway    Runway
	Scores    map[Pillar]int
	Composite float64
}

// Composite is the mean of the scored pillars, 0 when none are scored.
func Composite(scores map[Pillar]int) float64 {
	if len(scores) == 0 {
		return 0
	}
	sum := 0
	for _, s := range scores {
		sum += s
	}
	return float64(sum) / float64(len(scores))
}

// Snapshot is the read model handed to the presentation layer.
type Snapshot struct {
	Step       Step
	Companies  []Company
	SelectedID string
	Draft      Draft
	Runway     Runway
	Scores     map[Pillar]int
	// Err is the validation failure of the last blocked transition, nil once
	// a transition succeeds or the input is corrected.
	Err error

	FormOpen   bool
	Form       Draft
	FormRunway Runway
	FormErr    error

	// Busy is set while Complete or SaveNewCompany waits on storage.
	Busy bool
}

// Selected returns the selected company, if it is still in the list.
func (s Snapshot) Selected() (Company, bool) {
	for _, c := range s.Companies {
		if c.ID == s.SelectedID {
			return c, true
		}
	}
	return Company{}, false
}

// Option configures a Wizard.
type Option func(*Wizard)

func WithSink(s EvaluationSink) Option { return func(w *Wizard) { w.sink = s } }

func WithLogger(l *zap.Logger) Option { return func(w *Wizard) { w.log = l } }

// Wizard is the three-step evaluation workflow with its new-company overlay.
// Methods are synchronous and safe for concurrent use; subscribers are called
// after the lock is released.
type Wizard struct {
	mu sync.Mutex

	companies CompanyCollection
	sink      EvaluationSink
	log       *zap.Logger

	step       Step
	list       []Company
	selectedID string
	draft      Draft
	scores     map[Pillar]int
	err        error

	formOpen bool
	form     Draft
	formErr  error

	// busy blocks every edit while a Complete or SaveNewCompany call is
	// outside the lock. run is bumped by Reset so a finishing call does not
	// clobber a newer run.
	busy bool
	run  uint64

	hub observe.Hub[Snapshot]
}

func New(companies CompanyCollection, opts ...Option) *Wizard {
	w := &Wizard{
		companies: companies,
		log:       zap.NewNop(),
		scores:    map[Pillar]int{},
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Load refreshes the company list from the collection. The selection is kept
// if the company is still present.
func (w *Wizard) Load(ctx context.Context) error {
	list, err := w.companies.List(ctx)
	if err != nil {
		return fmt.Errorf("load companies: %w", err)
	}
	w.update(func() {
		w.list = slices.Clone(list)
		if w.selectedID != "" && w.indexLocked(w.selectedID) < 0 {
			w.log.Debug("selected company disappeared", zap.String("id", w.selectedID))
			if w.step == Selection {
				w.selectedID = ""
			}
		}
	})
	return nil
}

// SelectCompany commits id as the selected company and advances to BasicInfo.
// Picking the company that is already selected keeps the draft; any other
// company replaces it with that company's record.
func (w *Wizard) SelectCompany(id string) error {
	w.mu.Lock()
	if w.step != Selection || w.formOpen || w.busy {
		w.mu.Unlock()
		return ErrWrongStep
	}
	i := w.indexLocked(id)
	if i < 0 {
		w.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownCompany, id)
	}
	if id != w.selectedID {
		w.selectedID = id
		w.draft = DraftFromCompany(w.list[i])
		w.scores = map[Pillar]int{}
	}
	w.err = nil
	w.step = BasicInfo
	w.log.Debug("company selected", zap.String("id", id))
	st := w.snapshotLocked()
	w.mu.Unlock()
	w.hub.Publish(st)
	return nil
}

// Next advances one step if the current step's gate passes. A failed gate
// returns a *ValidationError, keeps the step and draft, and is exposed in the
// snapshot until corrected. Scoring has no next step; use Complete.
func (w *Wizard) Next() error {
	w.mu.Lock()
	if w.formOpen || w.busy {
		w.mu.Unlock()
		return ErrWrongStep
	}
	var err error
	switch w.step {
	case Selection:
		if w.selectedID == "" || w.indexLocked(w.selectedID) < 0 {
			err = invalid("company", ErrNoCompanySelected)
		} else {
			w.step = BasicInfo
		}
	case BasicInfo:
		if err = w.draft.Validate(); err == nil {
			w.step = Scoring
		}
	default:
		w.mu.Unlock()
		return ErrWrongStep
	}
	w.err = err
	st := w.snapshotLocked()
	w.mu.Unlock()
	w.hub.Publish(st)
	return err
}

// Back moves one step toward Selection. It never validates and never drops
// draft data. It reports false on Selection or while the form is open.
func (w *Wizard) Back() bool {
	w.mu.Lock()
	if w.step == Selection || w.formOpen || w.busy {
		w.mu.Unlock()
		return false
	}
	w.step--
	w.err = nil
	st := w.snapshotLocked()
	w.mu.Unlock()
	w.hub.Publish(st)
	return true
}

// SetField edits the evaluation draft on the BasicInfo step.
func (w *Wizard) SetField(f Field, value string) error {
	w.mu.Lock()
	if w.step != BasicInfo || w.formOpen || w.busy {
		w.mu.Unlock()
		return ErrWrongStep
	}
	if err := w.draft.Set(f, value); err != nil {
		w.err = err
		st := w.snapshotLocked()
		w.mu.Unlock()
		w.hub.Publish(st)
		return err
	}
	if w.err != nil && resolved(w.err, f, w.draft) {
		w.err = nil
	}
	st := w.snapshotLocked()
	w.mu.Unlock()
	w.hub.Publish(st)
	return nil
}

// SetScore records a 0-10 score for p on the Scoring step.
func (w *Wizard) SetScore(p Pillar, score int) error {
	w.mu.Lock()
	if w.step != Scoring || w.formOpen || w.busy {
		w.mu.Unlock()
		return ErrWrongStep
	}
	if !p.Valid() {
		w.mu.Unlock()
		return fmt.Errorf("unknown pillar %d", int(p))
	}
	if score < MinScore || score > MaxScore {
		err := invalid(p.ID(), ErrScoreOutOfRange)
		w.err = err
		st := w.snapshotLocked()
		w.mu.Unlock()
		w.hub.Publish(st)
		return err
	}
	w.scores[p] = score
	w.err = nil
	st := w.snapshotLocked()
	w.mu.Unlock()
	w.hub.Publish(st)
	return nil
}

// ClearScore leaves p unscored.
func (w *Wizard) ClearScore(p Pillar) {
	w.mu.Lock()
	if w.step != Scoring || w.busy {
		w.mu.Unlock()
		return
	}
	delete(w.scores, p)
	st := w.snapshotLocked()
	w.mu.Unlock()
	w.hub.Publish(st)
}

// Complete stores the evaluation through the sink and starts over on Selection
// with an empty draft. At least one pillar must be scored. A sink failure is
// returned and leaves the wizard on Scoring. While the sink runs the wizard is
// busy: a second Complete and every edit get ErrWrongStep.
func (w *Wizard) Complete(ctx context.Context) (Evaluation, error) {
	w.mu.Lock()
	if w.step != Scoring || w.formOpen || w.busy {
		w.mu.Unlock()
		return Evaluation{}, ErrWrongStep
	}
	if len(w.scores) == 0 {
		err := invalid("scores", ErrNoScores)
		w.err = err
		st := w.snapshotLocked()
		w.mu.Unlock()
		w.hub.Publish(st)
		return Evaluation{}, err
	}
	ev := Evaluation{
		CompanyID: w.selectedID,
		Draft:     w.draft,
		Runway:    w.draft.Runway(),
		Scores:    maps.Clone(w.scores),
		Composite: Composite(w.scores),
	}
	sink := w.sink
	if sink == nil {
		w.mu.Unlock()
		return Evaluation{}, errors.New("no evaluation sink configured")
	}
	run := w.beginLocked()
	st := w.snapshotLocked()
	w.mu.Unlock()
	w.hub.Publish(st)

	if err := sink.Record(ctx, ev); err != nil {
		w.finish(run, func() {})
		return Evaluation{}, fmt.Errorf("record evaluation: %w", err)
	}
	w.log.Info("evaluation recorded",
		zap.String("company", ev.Draft.Name),
		zap.Float64("composite", ev.Composite),
		zap.Int("pillars", len(ev.Scores)))

	w.finish(run, func() {
		w.step = Selection
		w.selectedID = ""
		w.draft = Draft{}
		w.scores = map[Pillar]int{}
		w.err = nil
	})
	return ev, nil
}

// OpenNewCompany shows the new company form over the Selection step with an
// empty draft.
func (w *Wizard) OpenNewCompany() error {
	w.mu.Lock()
	if w.step != Selection || w.busy {
		w.mu.Unlock()
		return ErrWrongStep
	}
	w.formOpen = true
	w.form = Draft{}
	w.formErr = nil
	st := w.snapshotLocked()
	w.mu.Unlock()
	w.hub.Publish(st)
	return nil
}

// SetFormField edits the new company form.
func (w *Wizard) SetFormField(f Field, value string) error {
	w.mu.Lock()
	if !w.formOpen || w.busy {
		w.mu.Unlock()
		return ErrWrongStep
	}
	err := w.form.Set(f, value)
	switch {
	case err != nil:
		w.formErr = err
	case w.formErr != nil && resolved(w.formErr, f, w.form):
		w.formErr = nil
	}
	st := w.snapshotLocked()
	w.mu.Unlock()
	w.hub.Publish(st)
	return err
}

// SaveNewCompany creates the form's company in the collection, adds it to the
// list and closes the form. The step is unchanged. A missing name is a
// validation error and a collection failure is returned; both keep the form
// open with its input.
func (w *Wizard) SaveNewCompany(ctx context.Context) (Company, error) {
	w.mu.Lock()
	if !w.formOpen || w.busy {
		w.mu.Unlock()
		return Company{}, ErrWrongStep
	}
	form := w.form
	if err := form.Validate(); err != nil {
		w.formErr = err
		st := w.snapshotLocked()
		w.mu.Unlock()
		w.hub.Publish(st)
		return Company{}, err
	}
	run := w.beginLocked()
	st := w.snapshotLocked()
	w.mu.Unlock()
	w.hub.Publish(st)

	c, err := w.companies.Create(ctx, form)
	if err != nil {
		err = fmt.Errorf("create company: %w", err)
		w.finish(run, func() { w.formErr = err })
		return Company{}, err
	}
	w.log.Info("company created", zap.String("id", c.ID), zap.String("name", c.Name))

	w.finish(run, func() {
		w.list = append(w.list, c)
		w.formOpen = false
		w.form = Draft{}
		w.formErr = nil
	})
	return c, nil
}

// CancelNewCompany discards the form.
func (w *Wizard) CancelNewCompany() {
	w.mu.Lock()
	if !w.formOpen || w.busy {
		w.mu.Unlock()
		return
	}
	w.formOpen = false
	w.form = Draft{}
	w.formErr = nil
	st := w.snapshotLocked()
	w.mu.Unlock()
	w.hub.Publish(st)
}

// Reset abandons the current run and returns to Selection. A Complete or
// SaveNewCompany still in flight finishes its storage call but leaves the
// wizard alone.
func (w *Wizard) Reset() {
	w.update(func() {
		w.run++
		w.busy = false
		w.step = Selection
		w.selectedID = ""
		w.draft = Draft{}
		w.scores = map[Pillar]int{}
		w.err = nil
		w.formOpen = false
		w.form = Draft{}
		w.formErr = nil
	})
}

func (w *Wizard) Step() Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step
}

func (w *Wizard) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshotLocked()
}

// Filter ranks the loaded companies against query; see Rank.
func (w *Wizard) Filter(query string) []Company {
	w.mu.Lock()
	list := slices.Clone(w.list)
	w.mu.Unlock()
	return Rank(list, query)
}

// Subscribe registers fn for a snapshot after every state change. As with the
// navigator, snapshots from concurrent calls may arrive out of order; Snapshot
// is the source of truth.
func (w *Wizard) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	return w.hub.Subscribe(fn)
}

func (w *Wizard) beginLocked() uint64 {
	w.busy = true
	return w.run
}

// finish ends a busy call. fn only applies if no Reset happened meanwhile.
func (w *Wizard) finish(run uint64, fn func()) {
	w.mu.Lock()
	if w.run != run {
		w.mu.Unlock()
		return
	}
	w.busy = false
	fn()
	st := w.snapshotLocked()
	w.mu.Unlock()
	w.hub.Publish(st)
}

func (w *Wizard) update(fn func()) {
	w.mu.Lock()
	fn()
	st := w.snapshotLocked()
	w.mu.Unlock()
	w.hub.Publish(st)
}

// resolved reports whether a successful edit of f clears err. A missing name
// stays until the name is filled in; other field errors clear when that field
// is rewritten. Non-validation errors clear on any edit.
func resolved(err error, f Field, d Draft) bool {
	var ve *ValidationError
	if !errors.As(err, &ve) {
		return true
	}
	if errors.Is(err, ErrNameRequired) {
		return d.Validate() == nil
	}
	return ve.Field == f.String()
}

func (w *Wizard) indexLocked(id string) int {
	if id == "" {
		return -1
	}
	return slices.IndexFunc(w.list, func(c Company) bool { return c.ID == id })
}

func (w *Wizard) snapshotLocked() Snapshot {
	return Snapshot{
		Step:       w.step,
		Companies:  slices.Clone(w.list),
		SelectedID: w.selectedID,
		Draft:      w.draft,
		Runway:     w.draft.Runway(),
		Scores:     maps.Clone(w.scores),
		Err:        w.err,
		FormOpen:   w.formOpen,
		Form:       w.form,
		FormRunway: w.form.Runway(),
		FormErr:    w.formErr,
		Busy:       w.busy,
	}
}
