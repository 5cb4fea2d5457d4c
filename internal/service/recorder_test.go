package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jask/biovalue/internal/database/repository"
	"github.com/jask/biovalue/internal/wizard"
)

func TestRecorderThroughWizard(t *testing.T) {
	t.Parallel()
	cat, db, ctx := setupCatalog(t)
	rec := &Recorder{Evaluations: repository.NewEvaluationRepo(db)}

	d := wizard.Draft{Name: "Aurelis Therapeutics", Ticker: "AURL"}
	require.NoError(t, d.Set(wizard.FieldCashPosition, "412.5"))
	require.NoError(t, d.Set(wizard.FieldBurnRate, "18.2"))
	c, err := cat.Create(ctx, d)
	require.NoError(t, err)

	w := wizard.New(cat, wizard.WithSink(rec))
	require.NoError(t, w.Load(ctx))
	require.NoError(t, w.SelectCompany(c.ID))
	require.NoError(t, w.Next())
	require.NoError(t, w.SetScore(wizard.Science, 9))
	require.NoError(t, w.SetScore(wizard.Financials, 6))
	_, err = w.Complete(ctx)
	require.NoError(t, err)

	list, err := rec.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	e := list[0]
	require.NotNil(t, e.CompanyID)
	require.Equal(t, c.ID, *e.CompanyID)
	require.Equal(t, "AURL", e.Ticker)
	require.True(t, e.RunwayMonths.Valid)
	require.True(t, e.RunwayMonths.Decimal.Equal(decimal.RequireFromString("22.66")))
	require.Equal(t, int64(9), e.ScienceScore.Int64)
	require.Equal(t, int64(6), e.FinancialsScore.Int64)
	require.False(t, e.TeamScore.Valid)
	require.InDelta(t, 7.5, e.Composite, 1e-9)
}

func TestRecorderUnavailableRunway(t *testing.T) {
	t.Parallel()
	db, ctx := setupDB(t)
	rec := &Recorder{Evaluations: repository.NewEvaluationRepo(db)}

	require.NoError(t, rec.Record(ctx, wizard.Evaluation{
		Draft:     wizard.Draft{Name: "No Burn"},
		Runway:    wizard.Unavailable,
		Scores:    map[wizard.Pillar]int{wizard.Team: 4},
		Composite: 4,
	}))
	list, err := rec.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Nil(t, list[0].CompanyID)
	require.False(t, list[0].RunwayMonths.Valid)
}
