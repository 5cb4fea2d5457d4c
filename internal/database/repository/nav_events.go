package repository

import (
	"context"
	"database/sql"
)

// NavEventRepo records committed tab changes for the analytics hook.
type NavEventRepo struct {
	db *sql.DB
}

func NewNavEventRepo(db *sql.DB) *NavEventRepo { return &NavEventRepo{db: db} }

func (r *NavEventRepo) Insert(ctx context.Context, tab string) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO nav_events(tab, created_at) VALUES (?, CURRENT_TIMESTAMP)`, tab)
	return err
}

func (r *NavEventRepo) CountByTab(ctx context.Context) ([]TabCount, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT tab, COUNT(*) FROM nav_events GROUP BY tab ORDER BY COUNT(*) DESC, tab`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []TabCount
	for rows.Next() {
		var tc TabCount
		if err := rows.Scan(&tc.Tab, &tc.Count); err != nil {
			return nil, err
		}
		out = append(out, tc)
	}
	return out, rows.Err()
}
