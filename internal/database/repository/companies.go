package repository

import (
	"context"
	"database/sql"
	"strings"
)

// CompanyFilters defines list filters.
type CompanyFilters struct {
	Stage  string
	Search string
}

// CompanyRepo handles companies.
type CompanyRepo struct {
	db *sql.DB
}

func NewCompanyRepo(db *sql.DB) *CompanyRepo { return &CompanyRepo{db: db} }

const companyColumns = `id, name, ticker, stage, therapeutic_area, description, cash_position, burn_rate, created_at, updated_at`

func (r *CompanyRepo) Insert(ctx context.Context, c Company) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO companies(id, name, ticker, stage, therapeutic_area, description, cash_position, burn_rate, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP);
	`, c.ID, c.Name, c.Ticker, c.Stage, c.TherapeuticArea, c.Description, c.CashPosition, c.BurnRate)
	return err
}

func (r *CompanyRepo) Get(ctx context.Context, id string) (*Company, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+companyColumns+` FROM companies WHERE id = ?`, id)
	c, err := scanCompany(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ByName matches case-insensitively, mirroring the unique index.
func (r *CompanyRepo) ByName(ctx context.Context, name string) (*Company, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+companyColumns+` FROM companies WHERE lower(name) = lower(?)`, strings.TrimSpace(name))
	c, err := scanCompany(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CompanyRepo) List(ctx context.Context, f CompanyFilters) ([]Company, error) {
	var where []string
	var args []interface{}
	if f.Stage != "" {
		where = append(where, "stage = ?")
		args = append(args, f.Stage)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		where = append(where, "(lower(name) LIKE ? OR lower(ticker) LIKE ?)")
		like := "%" + strings.ToLower(s) + "%"
		args = append(args, like, like)
	}
	q := `SELECT ` + companyColumns + ` FROM companies`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY name COLLATE NOCASE"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Company
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *CompanyRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM companies`).Scan(&n)
	return n, err
}

func (r *CompanyRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM companies WHERE id = ?`, id)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCompany(s rowScanner) (Company, error) {
	var c Company
	err := s.Scan(&c.ID, &c.Name, &c.Ticker, &c.Stage, &c.TherapeuticArea, &c.Description,
		&c.CashPosition, &c.BurnRate, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}
