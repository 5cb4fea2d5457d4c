package repository

import (
	"context"
	"database/sql"
)

// EvaluationRepo handles completed evaluations.
type EvaluationRepo struct {
	db *sql.DB
}

func NewEvaluationRepo(db *sql.DB) *EvaluationRepo { return &EvaluationRepo{db: db} }

func (r *EvaluationRepo) Insert(ctx context.Context, e Evaluation) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO evaluations(
	 id, company_id, name, ticker, stage, therapeutic_area, cash_position, burn_rate, runway_months,
	 science_score, clinical_score, market_score, team_score, financials_score, composite, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP);
	`,
		e.ID, e.CompanyID, e.Name, e.Ticker, e.Stage, e.TherapeuticArea, e.CashPosition, e.BurnRate, e.RunwayMonths,
		e.ScienceScore, e.ClinicalScore, e.MarketScore, e.TeamScore, e.FinancialsScore, e.Composite)
	return err
}

// List returns evaluations newest first. limit <= 0 means no limit.
func (r *EvaluationRepo) List(ctx context.Context, limit int) ([]Evaluation, error) {
	q := `
	SELECT id, company_id, name, ticker, stage, therapeutic_area, cash_position, burn_rate, runway_months,
	 science_score, clinical_score, market_score, team_score, financials_score, composite, created_at
	FROM evaluations ORDER BY created_at DESC, rowid DESC`
	var args []interface{}
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Evaluation
	for rows.Next() {
		var e Evaluation
		if err := rows.Scan(&e.ID, &e.CompanyID, &e.Name, &e.Ticker, &e.Stage, &e.TherapeuticArea,
			&e.CashPosition, &e.BurnRate, &e.RunwayMonths,
			&e.ScienceScore, &e.ClinicalScore, &e.MarketScore, &e.TeamScore, &e.FinancialsScore,
			&e.Composite, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Aggregate returns the number of evaluations and their mean composite.
func (r *EvaluationRepo) Aggregate(ctx context.Context) (count int, avgComposite float64, err error) {
	var avg sql.NullFloat64
	err = r.db.QueryRowContext(ctx, `SELECT COUNT(*), AVG(composite) FROM evaluations`).Scan(&count, &avg)
	return count, avg.Float64, err
}
