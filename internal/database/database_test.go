package database

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jask/biovalue/internal/database/repository"
)

func TestMigrationsAndSeed(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	require.NoError(t, RunMigrations(dbPath))
	// second run is a no-op
	require.NoError(t, RunMigrations(dbPath))

	db, err := Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, SeedDefaults(ctx, db))
	require.NoError(t, SeedDefaults(ctx, db))

	repo := repository.NewCompanyRepo(db)
	n, err := repo.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 5, n)

	c, err := repo.Get(ctx, SeedID("Aurelis Therapeutics"))
	require.NoError(t, err)
	require.NotNil(t, c)
	require.Equal(t, "AURL", c.Ticker)
	require.True(t, c.CashPosition.Valid)
	require.Equal(t, "412.5", c.CashPosition.Decimal.String())
}

func TestWithTxRollsBack(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "tx.db")
	require.NoError(t, RunMigrations(dbPath))
	db, err := Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	boom := context.Canceled
	err = WithTx(context.Background(), db, func(tx *sql.Tx) error {
		_, err := tx.Exec(`INSERT INTO nav_events(tab) VALUES ('dashboard')`)
		require.NoError(t, err)
		return boom
	})
	require.ErrorIs(t, err, boom)

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM nav_events`).Scan(&n))
	require.Zero(t, n)
}

func TestSeedIDStable(t *testing.T) {
	require.Equal(t, SeedID("Covalent Bio"), SeedID("  covalent bio "))
	require.NotEqual(t, SeedID("Covalent Bio"), SeedID("Meridian Neuro"))
}

func TestWithTxHonoursContext(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "tx.db")
	require.NoError(t, RunMigrations(dbPath))
	db, err := Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false
	err = WithTx(ctx, db, func(*sql.Tx) error {
		called = true
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)
	require.False(t, called)

	require.NoError(t, WithTx(context.Background(), db, func(tx *sql.Tx) error {
		_, err := tx.Exec(`INSERT INTO nav_events(tab) VALUES ('reports')`)
		return err
	}))
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM nav_events`).Scan(&n))
	require.Equal(t, 1, n)
}

func TestWithTxRollsBackOnPanic(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "tx.db")
	require.NoError(t, RunMigrations(dbPath))
	db, err := Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.Panics(t, func() {
		_ = WithTx(context.Background(), db, func(tx *sql.Tx) error {
			_, err := tx.Exec(`INSERT INTO nav_events(tab) VALUES ('reports')`)
			require.NoError(t, err)
			panic("half way")
		})
	})
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM nav_events`).Scan(&n))
	require.Zero(t, n)
}
