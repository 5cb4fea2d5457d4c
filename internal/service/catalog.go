package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/jask/biovalue/internal/database/repository"
	"github.com/jask/biovalue/internal/wizard"
)

// ErrDuplicateCompany is returned when a new company's name matches or nearly
// matches an existing one.
var ErrDuplicateCompany = errors.New("company already exists")

// Catalog is the company collection behind the evaluation wizard.
type Catalog struct {
	Companies *repository.CompanyRepo
	Log       *zap.Logger
}

func (s *Catalog) List(ctx context.Context) ([]wizard.Company, error) {
	rows, err := s.Companies.List(ctx, repository.CompanyFilters{})
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	out := make([]wizard.Company, 0, len(rows))
	for _, c := range rows {
		out = append(out, toWizardCompany(c))
	}
	return out, nil
}

// Create stores d as a new company. Names are compared case-insensitively and
// with a small edit-distance allowance, so "Aurelis Therapeutic" is refused
// when "Aurelis Therapeutics" exists.
func (s *Catalog) Create(ctx context.Context, d wizard.Draft) (wizard.Company, error) {
	if err := d.Validate(); err != nil {
		return wizard.Company{}, err
	}
	name := strings.TrimSpace(d.Name)
	existing, err := s.Companies.List(ctx, repository.CompanyFilters{})
	if err != nil {
		return wizard.Company{}, fmt.Errorf("list companies: %w", err)
	}
	if match, ok := nearestName(name, existing); ok {
		return wizard.Company{}, fmt.Errorf("%w: %q resembles %q", ErrDuplicateCompany, name, match)
	}

	c := repository.Company{
		ID:              uuid.NewString(),
		Name:            name,
		Ticker:          strings.ToUpper(strings.TrimSpace(d.Ticker)),
		Stage:           strings.TrimSpace(d.Stage),
		TherapeuticArea: strings.TrimSpace(d.TherapeuticArea),
		Description:     strings.TrimSpace(d.Description),
		CashPosition:    d.CashPosition,
		BurnRate:        d.BurnRate,
	}
	if err := s.Companies.Insert(ctx, c); err != nil {
		if isUniqueViolation(err) {
			return wizard.Company{}, fmt.Errorf("%w: %q", ErrDuplicateCompany, name)
		}
		return wizard.Company{}, fmt.Errorf("insert company: %w", err)
	}
	s.logger().Info("company stored", zap.String("id", c.ID), zap.String("name", c.Name))
	return toWizardCompany(c), nil
}

// Get returns the company with id, or false if there is none.
func (s *Catalog) Get(ctx context.Context, id string) (wizard.Company, bool, error) {
	c, err := s.Companies.Get(ctx, id)
	if err != nil || c == nil {
		return wizard.Company{}, false, err
	}
	return toWizardCompany(*c), true, nil
}

func (s *Catalog) Delete(ctx context.Context, id string) error {
	return s.Companies.Delete(ctx, id)
}

// isUniqueViolation reports whether err is sqlite refusing a duplicate key.
func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	return errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintUnique
}

func (s *Catalog) logger() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}

// nameTolerance is the edit distance under which two names count as the same
// company. Short names must match exactly.
func nameTolerance(name string) int {
	switch n := utf8.RuneCountInString(name); {
	case n < 6:
		return 0
	case n < 12:
		return 1
	default:
		return 2
	}
}

func nearestName(name string, existing []repository.Company) (string, bool) {
	lower := strings.ToLower(name)
	tol := nameTolerance(name)
	for _, c := range existing {
		if levenshtein.ComputeDistance(lower, strings.ToLower(c.Name)) <= tol {
			return c.Name, true
		}
	}
	return "", false
}

func toWizardCompany(c repository.Company) wizard.Company {
	return wizard.Company{
		ID:              c.ID,
		Name:            c.Name,
		Ticker:          c.Ticker,
		Stage:           c.Stage,
		TherapeuticArea: c.TherapeuticArea,
		Description:     c.Description,
		CashPosition:    c.CashPosition,
		BurnRate:        c.BurnRate,
	}
}
