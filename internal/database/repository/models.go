package repository

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// Company represents a company row. Money columns are millions of the display
// currency, stored as decimal text.
type Company struct {
	ID              string
	Name            string
	Ticker          string
	Stage           string
	TherapeuticArea string
	Description     string
	CashPosition    decimal.NullDecimal
	BurnRate        decimal.NullDecimal
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Evaluation represents a completed wizard run. Pillar scores are nullable
// because a pillar can be left unscored.
type Evaluation struct {
	ID              string
	CompanyID       *string
	Name            string
	Ticker          string
	Stage           string
	TherapeuticArea string
	CashPosition    decimal.NullDecimal
	BurnRate        decimal.NullDecimal
	RunwayMonths    decimal.NullDecimal
	ScienceScore    sql.NullInt64
	ClinicalScore   sql.NullInt64
	MarketScore     sql.NullInt64
	TeamScore       sql.NullInt64
	FinancialsScore sql.NullInt64
	Composite       float64
	CreatedAt       time.Time
}

// NavEvent is one committed tab change.
type NavEvent struct {
	ID        int64
	Tab       string
	CreatedAt time.Time
}

// TabCount aggregates nav events per tab.
type TabCount struct {
	Tab   string
	Count int
}
