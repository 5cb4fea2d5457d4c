package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jask/biovalue/internal/database/repository"
	"github.com/jask/biovalue/internal/sample"
)

// SeedDefaults loads the bundled sample companies into an empty database.
// It is idempotent and safe to run on every startup.
func SeedDefaults(ctx context.Context, db *sql.DB) error {
	repo := repository.NewCompanyRepo(db)
	n, err := repo.Count(ctx)
	if err != nil {
		return fmt.Errorf("count companies: %w", err)
	}
	if n > 0 {
		return nil
	}
	data, err := sample.Load()
	if err != nil {
		return err
	}
	for _, sc := range data.Companies {
		c := repository.Company{
			ID:              SeedID(sc.Name),
			Name:            sc.Name,
			Ticker:          sc.Ticker,
			Stage:           sc.Stage,
			TherapeuticArea: sc.TherapeuticArea,
			Description:     sc.Description,
		}
		if c.CashPosition, err = nullDecimal(sc.CashPosition); err != nil {
			return fmt.Errorf("seed %s cash: %w", sc.Name, err)
		}
		if c.BurnRate, err = nullDecimal(sc.BurnRate); err != nil {
			return fmt.Errorf("seed %s burn: %w", sc.Name, err)
		}
		if err := repo.Insert(ctx, c); err != nil {
			return fmt.Errorf("seed %s: %w", sc.Name, err)
		}
	}
	return nil
}

// SeedID derives a stable id for a seeded company name.
func SeedID(name string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("company:"+strings.ToLower(strings.TrimSpace(name)))).String()
}

func nullDecimal(s string) (decimal.NullDecimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NewNullDecimal(d), nil
}
