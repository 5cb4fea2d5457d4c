package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/jask/biovalue/internal/database"
)

// userTables are cleared by Reset, children before parents.
var userTables = []string{"nav_events", "evaluations", "companies"}

var errNoDatabase = errors.New("maintenance: database not configured")

// MaintenanceService runs the destructive actions offered on the Settings tab.
type MaintenanceService struct {
	DB  *sql.DB
	Log *zap.Logger
}

// Reset empties every user table in one transaction, leaving the schema in
// place. With reseed the sample companies are loaded again afterwards. A
// cancelled ctx rolls the whole reset back.
func (s *MaintenanceService) Reset(ctx context.Context, reseed bool) error {
	if s.DB == nil {
		return errNoDatabase
	}
	var cleared int64
	err := database.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		for _, table := range userTables {
			res, err := tx.ExecContext(ctx, "DELETE FROM "+table)
			if err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
			if n, err := res.RowsAffected(); err == nil {
				cleared += n
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("reset: %w", err)
	}

	log := s.Log
	if log == nil {
		log = zap.NewNop()
	}
	// reclaiming pages is best effort
	if _, err := s.DB.ExecContext(ctx, "VACUUM"); err != nil {
		log.Debug("vacuum after reset failed", zap.Error(err))
	}
	log.Info("database reset", zap.Int64("rows", cleared), zap.Bool("reseed", reseed))

	if !reseed {
		return nil
	}
	if err := database.SeedDefaults(ctx, s.DB); err != nil {
		return fmt.Errorf("reseed: %w", err)
	}
	return nil
}
