package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jask/biovalue/internal/database/repository"
	"github.com/jask/biovalue/internal/wizard"
)

func TestCatalogCreateAndList(t *testing.T) {
	t.Parallel()
	cat, _, ctx := setupCatalog(t)

	d := wizard.Draft{Name: "  Zenith Bio ", Ticker: "zntb", Stage: "Phase 1"}
	require.NoError(t, d.Set(wizard.FieldCashPosition, "90"))
	require.NoError(t, d.Set(wizard.FieldBurnRate, "3"))

	c, err := cat.Create(ctx, d)
	require.NoError(t, err)
	require.NotEmpty(t, c.ID)
	require.Equal(t, "Zenith Bio", c.Name)
	require.Equal(t, "ZNTB", c.Ticker)

	list, err := cat.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.True(t, list[0].CashPosition.Decimal.Equal(decimal.NewFromInt(90)))
	require.Equal(t, "30.0 months", wizard.DraftFromCompany(list[0]).Runway().String())

	got, ok, err := cat.Get(ctx, c.ID)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, c.Name, got.Name)

	_, ok, err = cat.Get(ctx, "missing")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCatalogRejectsDuplicates(t *testing.T) {
	t.Parallel()
	cat, _, ctx := setupCatalog(t)

	_, err := cat.Create(ctx, wizard.Draft{Name: "Aurelis Therapeutics"})
	require.NoError(t, err)

	for _, name := range []string{"aurelis therapeutics", "Aurelis Therapeutic", "Aurelis Therapeutix"} {
		_, err := cat.Create(ctx, wizard.Draft{Name: name})
		require.ErrorIs(t, err, ErrDuplicateCompany, name)
	}

	_, err = cat.Create(ctx, wizard.Draft{Name: "Aurelis Oncology"})
	require.NoError(t, err)

	_, err = cat.Create(ctx, wizard.Draft{Name: "Nova"})
	require.NoError(t, err)
	_, err = cat.Create(ctx, wizard.Draft{Name: "Nova2"})
	require.NoError(t, err, "short names need an exact match")
}

func TestCatalogRequiresName(t *testing.T) {
	t.Parallel()
	cat, _, ctx := setupCatalog(t)
	_, err := cat.Create(ctx, wizard.Draft{Name: " "})
	require.ErrorIs(t, err, wizard.ErrNameRequired)
}

func TestCatalogBacksWizard(t *testing.T) {
	t.Parallel()
	cat, _, ctx := setupCatalog(t)

	w := wizard.New(cat)
	require.NoError(t, w.Load(ctx))
	require.NoError(t, w.OpenNewCompany())
	require.NoError(t, w.SetFormField(wizard.FieldName, "Helix Labs"))
	c, err := w.SaveNewCompany(ctx)
	require.NoError(t, err)

	require.NoError(t, w.Load(ctx))
	require.NoError(t, w.SelectCompany(c.ID))
	require.Equal(t, "Helix Labs", w.Snapshot().Draft.Name)
}

func TestIsUniqueViolation(t *testing.T) {
	t.Parallel()
	_, db, ctx := setupCatalog(t)
	repo := repository.NewCompanyRepo(db)

	require.NoError(t, repo.Insert(ctx, repository.Company{ID: "a", Name: "Orbit Bio"}))
	err := repo.Insert(ctx, repository.Company{ID: "b", Name: "ORBIT BIO"})
	require.Error(t, err)
	require.True(t, isUniqueViolation(err))
	require.True(t, isUniqueViolation(fmt.Errorf("insert company: %w", err)), "wrapped errors count")

	require.False(t, isUniqueViolation(context.Canceled))
	require.False(t, isUniqueViolation(errors.New("UNIQUE in the message only")))
	require.False(t, isUniqueViolation(nil))
}
