package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jask/biovalue/internal/database"
	"github.com/jask/biovalue/internal/database/repository"
	"github.com/jask/biovalue/internal/nav"
	"github.com/jask/biovalue/internal/wizard"
)

func TestMaintenanceReset(t *testing.T) {
	t.Parallel()
	cat, db, ctx := setupCatalog(t)
	require.NoError(t, database.SeedDefaults(ctx, db))
	_, err := cat.Create(ctx, wizard.Draft{Name: "User Added Co"})
	require.NoError(t, err)
	an := &Analytics{Events: repository.NewNavEventRepo(db)}
	require.NoError(t, an.Observe(nav.Reports))

	svc := &MaintenanceService{DB: db}
	require.NoError(t, svc.Reset(ctx, false))

	n, err := repository.NewCompanyRepo(db).Count(ctx)
	require.NoError(t, err)
	require.Zero(t, n)
	counts, err := an.Counts(ctx)
	require.NoError(t, err)
	require.Empty(t, counts)

	require.NoError(t, svc.Reset(ctx, true))
	n, err = repository.NewCompanyRepo(db).Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 5, n)
}

func TestMaintenanceWithoutDB(t *testing.T) {
	t.Parallel()
	require.Error(t, (&MaintenanceService{}).Reset(t.Context(), false))
}

func TestMaintenanceResetCancelledKeepsData(t *testing.T) {
	t.Parallel()
	_, db, ctx := setupCatalog(t)
	require.NoError(t, database.SeedDefaults(ctx, db))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	err := (&MaintenanceService{DB: db}).Reset(cancelled, true)
	require.ErrorIs(t, err, context.Canceled)

	n, err := repository.NewCompanyRepo(db).Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 5, n)
}
