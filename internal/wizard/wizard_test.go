package wizard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeCollection struct {
	companies []Company
	listErr   error
	createErr error
	created   []Draft
}

func (f *fakeCollection) List(context.Context) ([]Company, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.companies, nil
}

func (f *fakeCollection) Create(_ context.Context, d Draft) (Company, error) {
	if f.createErr != nil {
		return Company{}, f.createErr
	}
	f.created = append(f.created, d)
	c := Company{
		ID:           fmt.Sprintf("new-%d", len(f.created)),
		Name:         d.Name,
		Ticker:       d.Ticker,
		CashPosition: d.CashPosition,
		BurnRate:     d.BurnRate,
	}
	f.companies = append(f.companies, c)
	return c, nil
}

type fakeSink struct {
	recorded []Evaluation
	err      error
}

func (s *fakeSink) Record(_ context.Context, e Evaluation) error {
	if s.err != nil {
		return s.err
	}
	s.recorded = append(s.recorded, e)
	return nil
}

// gatedSink blocks Record until release is closed.
type gatedSink struct {
	entered chan struct{}
	release chan struct{}

	mu       sync.Mutex
	recorded int
}

func newGatedSink() *gatedSink {
	return &gatedSink{entered: make(chan struct{}, 4), release: make(chan struct{})}
}

func (s *gatedSink) Record(context.Context, Evaluation) error {
	s.entered <- struct{}{}
	<-s.release
	s.mu.Lock()
	s.recorded++
	s.mu.Unlock()
	return nil
}

// gatedCollection blocks Create until release is closed.
type gatedCollection struct {
	*fakeCollection
	entered chan struct{}
	release chan struct{}
}

func (g *gatedCollection) Create(ctx context.Context, d Draft) (Company, error) {
	g.entered <- struct{}{}
	<-g.release
	return g.fakeCollection.Create(ctx, d)
}

func seedCompanies() []Company {
	return []Company{
		{ID: "c1", Name: "Aurelis Therapeutics", Ticker: "AURL", CashPosition: amount("412.5"), BurnRate: amount("18.2")},
		{ID: "c2", Name: "Covalent Bio", Ticker: "CVLB", CashPosition: amount("138"), BurnRate: amount("9.6")},
		{ID: "c3", Name: "Halcyon Cardio", Ticker: "HLCY", CashPosition: amount("22"), BurnRate: amount("0")},
	}
}

func newLoaded(t *testing.T, opts ...Option) (*Wizard, *fakeCollection) {
	t.Helper()
	coll := &fakeCollection{companies: seedCompanies()}
	w := New(coll, opts...)
	require.NoError(t, w.Load(context.Background()))
	return w, coll
}

func TestNextFromSelectionRequiresCompany(t *testing.T) {
	w, _ := newLoaded(t)

	err := w.Next()
	require.ErrorIs(t, err, ErrNoCompanySelected)
	require.True(t, IsValidation(err))
	require.Equal(t, Selection, w.Step())
	require.ErrorIs(t, w.Snapshot().Err, ErrNoCompanySelected)
}

func TestSelectCompanyAdvancesAndLoadsDraft(t *testing.T) {
	w, _ := newLoaded(t)

	require.NoError(t, w.SelectCompany("c1"))
	snap := w.Snapshot()
	require.Equal(t, BasicInfo, snap.Step)
	require.Equal(t, "c1", snap.SelectedID)
	require.Equal(t, "Aurelis Therapeutics", snap.Draft.Name)
	require.Equal(t, "22.7 months", snap.Runway.String())

	sel, ok := snap.Selected()
	require.True(t, ok)
	require.Equal(t, "AURL", sel.Ticker)
}

func TestSelectUnknownCompany(t *testing.T) {
	w, _ := newLoaded(t)
	require.ErrorIs(t, w.SelectCompany("nope"), ErrUnknownCompany)
	require.ErrorIs(t, w.SelectCompany(""), ErrUnknownCompany)
	require.Equal(t, Selection, w.Step())
}

func TestBasicInfoGateBlocksEmptyName(t *testing.T) {
	w, _ := newLoaded(t)
	require.NoError(t, w.SelectCompany("c2"))
	require.NoError(t, w.SetField(FieldName, "   "))
	require.NoError(t, w.SetField(FieldStage, "Phase 1b"))

	for i := 0; i < 3; i++ {
		err := w.Next()
		require.ErrorIs(t, err, ErrNameRequired, "retry %d re-raises", i)
		require.Equal(t, BasicInfo, w.Step())
	}
	snap := w.Snapshot()
	require.ErrorIs(t, snap.Err, ErrNameRequired)
	require.Equal(t, "Phase 1b", snap.Draft.Stage, "draft kept")

	require.NoError(t, w.SetField(FieldName, "Covalent Bio"))
	require.NoError(t, w.Snapshot().Err, "correction clears the signal")
	require.NoError(t, w.Next())
	require.Equal(t, Scoring, w.Step())
}

func TestBackPreservesDraft(t *testing.T) {
	w, _ := newLoaded(t)
	require.NoError(t, w.SelectCompany("c1"))
	require.NoError(t, w.SetField(FieldDescription, "edited"))
	require.NoError(t, w.SetField(FieldBurnRate, "25"))
	require.NoError(t, w.Next())
	require.NoError(t, w.SetScore(Science, 9))

	require.True(t, w.Back())
	require.Equal(t, BasicInfo, w.Step())
	require.True(t, w.Back())
	require.Equal(t, Selection, w.Step())
	require.False(t, w.Back())

	snap := w.Snapshot()
	require.Equal(t, "edited", snap.Draft.Description)
	require.Equal(t, "16.5 months", snap.Runway.String())
	require.Equal(t, map[Pillar]int{Science: 9}, snap.Scores)

	// Next from Selection with a company already chosen goes forward again.
	require.NoError(t, w.Next())
	require.Equal(t, "edited", w.Snapshot().Draft.Description)
}

func TestReselectingKeepsOrReloadsDraft(t *testing.T) {
	w, _ := newLoaded(t)
	require.NoError(t, w.SelectCompany("c1"))
	require.NoError(t, w.SetField(FieldDescription, "mine"))
	require.True(t, w.Back())

	require.NoError(t, w.SelectCompany("c1"))
	require.Equal(t, "mine", w.Snapshot().Draft.Description)
	require.True(t, w.Back())

	require.NoError(t, w.SelectCompany("c2"))
	snap := w.Snapshot()
	require.Equal(t, "Covalent Bio", snap.Draft.Name)
	require.Empty(t, snap.Draft.Description)
}

func TestSetFieldRejectsBadAmountAndKeepsValue(t *testing.T) {
	w, _ := newLoaded(t)
	require.NoError(t, w.SelectCompany("c1"))

	err := w.SetField(FieldCashPosition, "-1")
	require.ErrorIs(t, err, ErrInvalidAmount)
	snap := w.Snapshot()
	require.Equal(t, "412.5", snap.Draft.Get(FieldCashPosition))
	require.ErrorIs(t, snap.Err, ErrInvalidAmount)

	require.NoError(t, w.SetField(FieldCashPosition, "364"))
	snap = w.Snapshot()
	require.NoError(t, snap.Err)
	require.Equal(t, "20.0 months", snap.Runway.String())
}

func TestZeroBurnRunwayUnavailable(t *testing.T) {
	w, _ := newLoaded(t)
	require.NoError(t, w.SelectCompany("c3"))
	require.Equal(t, Unavailable, w.Snapshot().Runway)
	require.NoError(t, w.Next(), "unavailable runway does not block")
}

func TestOperationsOutsideTheirStep(t *testing.T) {
	w, _ := newLoaded(t)
	require.ErrorIs(t, w.SetField(FieldName, "x"), ErrWrongStep)
	require.ErrorIs(t, w.SetScore(Team, 3), ErrWrongStep)
	_, err := w.Complete(context.Background())
	require.ErrorIs(t, err, ErrWrongStep)
	require.ErrorIs(t, w.SetFormField(FieldName, "x"), ErrWrongStep)
	_, err = w.SaveNewCompany(context.Background())
	require.ErrorIs(t, err, ErrWrongStep)

	require.NoError(t, w.SelectCompany("c1"))
	require.ErrorIs(t, w.OpenNewCompany(), ErrWrongStep)
	require.NoError(t, w.Next())
	require.ErrorIs(t, w.Next(), ErrWrongStep)
}

func TestNewCompanyFormSave(t *testing.T) {
	w, coll := newLoaded(t)

	require.NoError(t, w.OpenNewCompany())
	snap := w.Snapshot()
	require.True(t, snap.FormOpen)
	require.Equal(t, Draft{}, snap.Form)
	require.Equal(t, Selection, snap.Step)

	_, err := w.SaveNewCompany(context.Background())
	require.ErrorIs(t, err, ErrNameRequired)
	require.True(t, w.Snapshot().FormOpen)
	require.Empty(t, coll.created)

	require.NoError(t, w.SetFormField(FieldName, "Zenith Bio"))
	require.NoError(t, w.SetFormField(FieldCashPosition, "90"))
	require.NoError(t, w.SetFormField(FieldBurnRate, "3"))
	require.Equal(t, "30.0 months", w.Snapshot().FormRunway.String())

	c, err := w.SaveNewCompany(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Zenith Bio", c.Name)
	require.Len(t, coll.created, 1)

	snap = w.Snapshot()
	require.False(t, snap.FormOpen)
	require.Equal(t, Selection, snap.Step, "saving does not advance")
	require.Empty(t, snap.SelectedID)
	require.Len(t, snap.Companies, 4)
	require.Equal(t, c.ID, snap.Companies[3].ID)

	require.NoError(t, w.SelectCompany(c.ID))
	require.Equal(t, BasicInfo, w.Step())
}

func TestNewCompanyFormCreateFailureKeepsForm(t *testing.T) {
	w, coll := newLoaded(t)
	coll.createErr = errors.New("disk full")

	require.NoError(t, w.OpenNewCompany())
	require.NoError(t, w.SetFormField(FieldName, "Zenith Bio"))
	_, err := w.SaveNewCompany(context.Background())
	require.ErrorContains(t, err, "disk full")
	require.False(t, IsValidation(err))

	snap := w.Snapshot()
	require.True(t, snap.FormOpen)
	require.Equal(t, "Zenith Bio", snap.Form.Name)
	require.Error(t, snap.FormErr)
	require.Len(t, snap.Companies, 3)
}

func TestNewCompanyFormCancel(t *testing.T) {
	w, coll := newLoaded(t)
	require.NoError(t, w.OpenNewCompany())
	require.NoError(t, w.SetFormField(FieldName, "Discard Me"))
	require.ErrorIs(t, w.SelectCompany("c1"), ErrWrongStep, "overlay blocks the base step")

	w.CancelNewCompany()
	snap := w.Snapshot()
	require.False(t, snap.FormOpen)
	require.Equal(t, Draft{}, snap.Form)
	require.Len(t, snap.Companies, 3)
	require.Empty(t, coll.created)

	require.NoError(t, w.OpenNewCompany())
	require.Empty(t, w.Snapshot().Form.Name, "reopened form starts empty")
}

func TestScoringAndComplete(t *testing.T) {
	sink := &fakeSink{}
	w, _ := newLoaded(t, WithSink(sink))
	ctx := context.Background()

	require.NoError(t, w.SelectCompany("c2"))
	require.NoError(t, w.Next())

	_, err := w.Complete(ctx)
	require.ErrorIs(t, err, ErrNoScores)
	require.Equal(t, Scoring, w.Step())

	err = w.SetScore(Market, 11)
	require.ErrorIs(t, err, ErrScoreOutOfRange)
	require.ErrorIs(t, w.SetScore(Market, -1), ErrScoreOutOfRange)
	require.NoError(t, w.SetScore(Market, 6))
	require.NoError(t, w.SetScore(Team, 9))
	require.NoError(t, w.SetScore(Clinical, 4))
	w.ClearScore(Clinical)

	ev, err := w.Complete(ctx)
	require.NoError(t, err)
	require.Equal(t, "c2", ev.CompanyID)
	require.Equal(t, "Covalent Bio", ev.Draft.Name)
	require.InDelta(t, 7.5, ev.Composite, 1e-9)
	require.Equal(t, map[Pillar]int{Market: 6, Team: 9}, ev.Scores)
	require.True(t, ev.Runway.Available)
	require.Len(t, sink.recorded, 1)

	snap := w.Snapshot()
	require.Equal(t, Selection, snap.Step)
	require.Empty(t, snap.SelectedID)
	require.Equal(t, Draft{}, snap.Draft)
	require.Empty(t, snap.Scores)
}

func TestCompleteSinkFailureStaysOnScoring(t *testing.T) {
	sink := &fakeSink{err: errors.New("locked")}
	w, _ := newLoaded(t, WithSink(sink))

	require.NoError(t, w.SelectCompany("c1"))
	require.NoError(t, w.Next())
	require.NoError(t, w.SetScore(Science, 5))

	_, err := w.Complete(context.Background())
	require.ErrorContains(t, err, "locked")
	snap := w.Snapshot()
	require.Equal(t, Scoring, snap.Step)
	require.Equal(t, map[Pillar]int{Science: 5}, snap.Scores)
}

func TestLoadError(t *testing.T) {
	coll := &fakeCollection{listErr: errors.New("no db")}
	w := New(coll)
	require.ErrorContains(t, w.Load(context.Background()), "no db")
	require.Empty(t, w.Snapshot().Companies)
}

func TestSubscribersSeeEveryChange(t *testing.T) {
	w, _ := newLoaded(t)
	var steps []Step
	unsubscribe := w.Subscribe(func(s Snapshot) { steps = append(steps, s.Step) })

	require.NoError(t, w.SelectCompany("c1"))
	require.NoError(t, w.Next())
	w.Back()
	unsubscribe()
	w.Back()

	require.Equal(t, []Step{BasicInfo, Scoring, BasicInfo}, steps)
}

func TestReset(t *testing.T) {
	w, _ := newLoaded(t)
	require.NoError(t, w.SelectCompany("c1"))
	w.Reset()
	snap := w.Snapshot()
	require.Equal(t, Selection, snap.Step)
	require.Empty(t, snap.SelectedID)
	require.Len(t, snap.Companies, 3)
}

func TestCompleteIsExclusiveWhileRecording(t *testing.T) {
	sink := newGatedSink()
	w, _ := newLoaded(t, WithSink(sink))
	require.NoError(t, w.SelectCompany("c1"))
	require.NoError(t, w.Next())
	require.NoError(t, w.SetScore(Science, 7))

	done := make(chan error, 1)
	go func() {
		_, err := w.Complete(context.Background())
		done <- err
	}()
	<-sink.entered

	require.True(t, w.Snapshot().Busy)
	_, err := w.Complete(context.Background())
	require.ErrorIs(t, err, ErrWrongStep)
	require.False(t, w.Back(), "back is blocked while recording")
	require.ErrorIs(t, w.SetScore(Team, 3), ErrWrongStep)
	w.ClearScore(Science)
	require.Equal(t, map[Pillar]int{Science: 7}, w.Snapshot().Scores)

	close(sink.release)
	require.NoError(t, <-done)
	require.Equal(t, 1, sink.recorded)
	snap := w.Snapshot()
	require.False(t, snap.Busy)
	require.Equal(t, Selection, snap.Step)
}

func TestConcurrentCompletesRecordOnce(t *testing.T) {
	sink := newGatedSink()
	w, _ := newLoaded(t, WithSink(sink))
	require.NoError(t, w.SelectCompany("c2"))
	require.NoError(t, w.Next())
	require.NoError(t, w.SetScore(Market, 4))

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = w.Complete(context.Background())
		}()
	}
	<-sink.entered
	close(sink.release)
	wg.Wait()

	require.Equal(t, 1, sink.recorded)
	var wrong int
	for _, err := range errs {
		if errors.Is(err, ErrWrongStep) {
			wrong++
		} else {
			require.NoError(t, err)
		}
	}
	require.Equal(t, 1, wrong)
}

func TestResetDuringCompleteWins(t *testing.T) {
	sink := newGatedSink()
	w, _ := newLoaded(t, WithSink(sink))
	require.NoError(t, w.SelectCompany("c1"))
	require.NoError(t, w.Next())
	require.NoError(t, w.SetScore(Team, 8))

	done := make(chan error, 1)
	go func() {
		_, err := w.Complete(context.Background())
		done <- err
	}()
	<-sink.entered
	w.Reset()
	require.NoError(t, w.SelectCompany("c2"))

	close(sink.release)
	require.NoError(t, <-done)
	snap := w.Snapshot()
	require.Equal(t, BasicInfo, snap.Step, "a finishing complete leaves the newer run alone")
	require.Equal(t, "c2", snap.SelectedID)
}

func TestSaveNewCompanyIsExclusive(t *testing.T) {
	coll := &gatedCollection{
		fakeCollection: &fakeCollection{companies: seedCompanies()},
		entered:        make(chan struct{}, 2),
		release:        make(chan struct{}),
	}
	w := New(coll)
	require.NoError(t, w.Load(context.Background()))
	require.NoError(t, w.OpenNewCompany())
	require.NoError(t, w.SetFormField(FieldName, "Lumen Bio"))

	done := make(chan error, 1)
	go func() {
		_, err := w.SaveNewCompany(context.Background())
		done <- err
	}()
	<-coll.entered

	_, err := w.SaveNewCompany(context.Background())
	require.ErrorIs(t, err, ErrWrongStep)
	require.ErrorIs(t, w.SetFormField(FieldTicker, "LUMN"), ErrWrongStep)
	w.CancelNewCompany()
	require.True(t, w.Snapshot().FormOpen)

	close(coll.release)
	require.NoError(t, <-done)
	snap := w.Snapshot()
	require.False(t, snap.FormOpen)
	require.Len(t, snap.Companies, 4)
	require.Len(t, coll.created, 1)
}
