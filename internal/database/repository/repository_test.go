package repository_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jask/biovalue/internal/database"
	"github.com/jask/biovalue/internal/database/repository"
)

func openTestDB(t *testing.T) (*sql.DB, context.Context) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	dbPath := filepath.Join(t.TempDir(), "repo.db")
	require.NoError(t, database.RunMigrations(dbPath))
	db, err := database.Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, ctx
}

func TestCompanyRepoInsertGetList(t *testing.T) {
	t.Parallel()
	db, ctx := openTestDB(t)
	repo := repository.NewCompanyRepo(db)

	require.NoError(t, repo.Insert(ctx, repository.Company{
		ID: "c1", Name: "Zeta Bio", Ticker: "ZETA", Stage: "Phase 1",
		CashPosition: decimal.NewNullDecimal(decimal.RequireFromString("120.5")),
	}))
	require.NoError(t, repo.Insert(ctx, repository.Company{ID: "c2", Name: "alpha gene", Ticker: "ALPH", Stage: "Phase 2"}))

	got, err := repo.Get(ctx, "c1")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "Zeta Bio", got.Name)
	require.True(t, got.CashPosition.Valid)
	require.True(t, got.CashPosition.Decimal.Equal(decimal.RequireFromString("120.5")))
	require.False(t, got.BurnRate.Valid)

	missing, err := repo.Get(ctx, "nope")
	require.NoError(t, err)
	require.Nil(t, missing)

	all, err := repo.List(ctx, repository.CompanyFilters{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, "alpha gene", all[0].Name, "ordered case-insensitively")

	phase2, err := repo.List(ctx, repository.CompanyFilters{Stage: "Phase 2"})
	require.NoError(t, err)
	require.Len(t, phase2, 1)

	search, err := repo.List(ctx, repository.CompanyFilters{Search: "zet"})
	require.NoError(t, err)
	require.Len(t, search, 1)
	require.Equal(t, "c1", search[0].ID)
}

func TestCompanyRepoNameIsUniqueCaseInsensitive(t *testing.T) {
	t.Parallel()
	db, ctx := openTestDB(t)
	repo := repository.NewCompanyRepo(db)

	require.NoError(t, repo.Insert(ctx, repository.Company{ID: "c1", Name: "Helix"}))
	require.Error(t, repo.Insert(ctx, repository.Company{ID: "c2", Name: "HELIX"}))

	byName, err := repo.ByName(ctx, " helix ")
	require.NoError(t, err)
	require.NotNil(t, byName)
	require.Equal(t, "c1", byName.ID)

	require.NoError(t, repo.Delete(ctx, "c1"))
	n, err := repo.Count(ctx)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestEvaluationRepoInsertList(t *testing.T) {
	t.Parallel()
	db, ctx := openTestDB(t)
	companies := repository.NewCompanyRepo(db)
	evals := repository.NewEvaluationRepo(db)

	require.NoError(t, companies.Insert(ctx, repository.Company{ID: "c1", Name: "Helix"}))
	cid := "c1"
	require.NoError(t, evals.Insert(ctx, repository.Evaluation{
		ID: "e1", CompanyID: &cid, Name: "Helix",
		RunwayMonths: decimal.NewNullDecimal(decimal.RequireFromString("22.7")),
		ScienceScore: sql.NullInt64{Int64: 8, Valid: true},
		Composite:    8,
	}))
	require.NoError(t, evals.Insert(ctx, repository.Evaluation{ID: "e2", Name: "Other", Composite: 4.5}))

	list, err := evals.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "e2", list[0].ID, "newest first")
	require.Nil(t, list[0].CompanyID)
	require.Equal(t, int64(8), list[1].ScienceScore.Int64)
	require.False(t, list[1].ClinicalScore.Valid)

	limited, err := evals.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)

	n, avg, err := evals.Aggregate(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.InDelta(t, 6.25, avg, 1e-9)
}

func TestEvaluationRepoAggregateEmpty(t *testing.T) {
	t.Parallel()
	db, ctx := openTestDB(t)
	n, avg, err := repository.NewEvaluationRepo(db).Aggregate(ctx)
	require.NoError(t, err)
	require.Zero(t, n)
	require.Zero(t, avg)
}

func TestNavEventRepoCounts(t *testing.T) {
	t.Parallel()
	db, ctx := openTestDB(t)
	repo := repository.NewNavEventRepo(db)

	for _, tab := range []string{"dashboard", "evaluation", "evaluation", "reports"} {
		require.NoError(t, repo.Insert(ctx, tab))
	}
	counts, err := repo.CountByTab(ctx)
	require.NoError(t, err)
	require.Equal(t, repository.TabCount{Tab: "evaluation", Count: 2}, counts[0])
	require.Len(t, counts, 3)
}
