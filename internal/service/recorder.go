package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jask/biovalue/internal/database/repository"
	"github.com/jask/biovalue/internal/wizard"
)

// Recorder persists completed evaluations.
type Recorder struct {
	Evaluations *repository.EvaluationRepo
}

func (s *Recorder) Record(ctx context.Context, e wizard.Evaluation) error {
	row := repository.Evaluation{
		ID:              uuid.NewString(),
		Name:            e.Draft.Name,
		Ticker:          e.Draft.Ticker,
		Stage:           e.Draft.Stage,
		TherapeuticArea: e.Draft.TherapeuticArea,
		CashPosition:    e.Draft.CashPosition,
		BurnRate:        e.Draft.BurnRate,
		ScienceScore:    score(e.Scores, wizard.Science),
		ClinicalScore:   score(e.Scores, wizard.Clinical),
		MarketScore:     score(e.Scores, wizard.Market),
		TeamScore:       score(e.Scores, wizard.Team),
		FinancialsScore: score(e.Scores, wizard.Financials),
		Composite:       e.Composite,
	}
	if e.CompanyID != "" {
		id := e.CompanyID
		row.CompanyID = &id
	}
	if e.Runway.Available {
		row.RunwayMonths = decimal.NewNullDecimal(e.Runway.Months.Round(2))
	}
	if err := s.Evaluations.Insert(ctx, row); err != nil {
		return fmt.Errorf("insert evaluation: %w", err)
	}
	return nil
}

// Recent returns the latest evaluations, newest first.
func (s *Recorder) Recent(ctx context.Context, limit int) ([]repository.Evaluation, error) {
	return s.Evaluations.List(ctx, limit)
}

func score(scores map[wizard.Pillar]int, p wizard.Pillar) sql.NullInt64 {
	v, ok := scores[p]
	if !ok {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(v), Valid: true}
}
