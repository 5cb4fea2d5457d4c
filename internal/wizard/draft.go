package wizard

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Company is a record of the company collection.
type Company struct {
	ID              string
	Name            string
	Ticker          string
	Stage           string
	TherapeuticArea string
	Description     string
	CashPosition    decimal.NullDecimal
	BurnRate        decimal.NullDecimal
}

// Draft is the in-progress company record edited by the wizard and by the new
// company form. Money is in millions; burn is per month.
type Draft struct {
	Name            string
	Ticker          string
	Stage           string
	TherapeuticArea string
	Description     string
	CashPosition    decimal.NullDecimal
	BurnRate        decimal.NullDecimal
}

// DraftFromCompany copies a stored company into a fresh draft.
func DraftFromCompany(c Company) Draft {
	return Draft{
		Name:            c.Name,
		Ticker:          c.Ticker,
		Stage:           c.Stage,
		TherapeuticArea: c.TherapeuticArea,
		Description:     c.Description,
		CashPosition:    c.CashPosition,
		BurnRate:        c.BurnRate,
	}
}

// Validate checks the minimum required fields.
func (d Draft) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return invalid(FieldName.String(), ErrNameRequired)
	}
	return nil
}

// Runway derives months of cash left from the current cash and burn.
func (d Draft) Runway() Runway { return ComputeRunway(d.CashPosition, d.BurnRate) }

// Set parses value into field. Money fields accept an optional currency symbol
// and thousands separators; an empty value unsets them. A rejected value leaves
// the draft unchanged.
func (d *Draft) Set(f Field, value string) error {
	switch f {
	case FieldName:
		d.Name = value
	case FieldTicker:
		d.Ticker = strings.ToUpper(strings.TrimSpace(value))
	case FieldStage:
		d.Stage = value
	case FieldTherapeuticArea:
		d.TherapeuticArea = value
	case FieldDescription:
		d.Description = value
	case FieldCashPosition, FieldBurnRate:
		amt, err := ParseAmount(value)
		if err != nil {
			return invalid(f.String(), err)
		}
		if f == FieldCashPosition {
			d.CashPosition = amt
		} else {
			d.BurnRate = amt
		}
	default:
		return fmt.Errorf("unknown field %d", int(f))
	}
	return nil
}

// Get renders field as the text a form would show.
func (d Draft) Get(f Field) string {
	switch f {
	case FieldName:
		return d.Name
	case FieldTicker:
		return d.Ticker
	case FieldStage:
		return d.Stage
	case FieldTherapeuticArea:
		return d.TherapeuticArea
	case FieldDescription:
		return d.Description
	case FieldCashPosition:
		return formatAmount(d.CashPosition)
	case FieldBurnRate:
		return formatAmount(d.BurnRate)
	}
	return ""
}

// ParseAmount parses a non-negative money amount. Blank input is a valid unset
// amount.
func ParseAmount(s string) (decimal.NullDecimal, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if d.IsNegative() {
		return decimal.NullDecimal{}, fmt.Errorf("%w: %s", ErrInvalidAmount, d.String())
	}
	return decimal.NewNullDecimal(d), nil
}

func formatAmount(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.String()
}

// Runway is months of cash at the current burn. The zero value is the
// unavailable sentinel.
type Runway struct {
	Months    decimal.Decimal
	Available bool
}

// Unavailable is the runway of a draft with no burn or a missing input.
var Unavailable = Runway{}

// ComputeRunway returns cash / burn, or Unavailable when either input is unset
// or burn is not positive.
func ComputeRunway(cash, burn decimal.NullDecimal) Runway {
	if !cash.Valid || !burn.Valid || !burn.Decimal.IsPositive() {
		return Unavailable
	}
	return Runway{Months: cash.Decimal.Div(burn.Decimal), Available: true}
}

// String formats the runway with one decimal, e.g. "22.7 months".
func (r Runway) String() string {
	if !r.Available {
		return "unavailable"
	}
	return r.Months.StringFixed(1) + " months"
}
