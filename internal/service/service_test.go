package service

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jask/biovalue/internal/database"
	"github.com/jask/biovalue/internal/database/repository"
)

func setupDB(t *testing.T) (*sql.DB, context.Context) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	dbPath := filepath.Join(t.TempDir(), "test.db")
	require.NoError(t, database.RunMigrations(dbPath))
	db, err := database.Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, ctx
}

func setupCatalog(t *testing.T) (*Catalog, *sql.DB, context.Context) {
	t.Helper()
	db, ctx := setupDB(t)
	return &Catalog{Companies: repository.NewCompanyRepo(db)}, db, ctx
}
