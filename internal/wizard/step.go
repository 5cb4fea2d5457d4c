package wizard

import (
	"fmt"
	"strings"
)

// Step is a stage of the evaluation workflow. Steps are strictly ordered.
type Step int

const (
	Selection Step = iota
	BasicInfo
	Scoring
)

var stepTitles = [...]string{"Select Company", "Basic Information", "Scoring"}

func (s Step) Valid() bool { return s >= Selection && s <= Scoring }

func (s Step) String() string {
	switch s {
	case Selection:
		return "selection"
	case BasicInfo:
		return "basicInfo"
	case Scoring:
		return "scoring"
	}
	return fmt.Sprintf("Step(%d)", int(s))
}

// Title is the label shown in the step indicator.
func (s Step) Title() string {
	if !s.Valid() {
		return s.String()
	}
	return stepTitles[s]
}

// Number is the 1-based position used by "Step 2 of 3" style indicators.
func (s Step) Number() int { return int(s) + 1 }

// StepCount is the number of steps in the workflow.
const StepCount = 3

// Field names an editable draft field.
type Field int

const (
	FieldName Field = iota
	FieldTicker
	FieldStage
	FieldTherapeuticArea
	FieldDescription
	FieldCashPosition
	FieldBurnRate
)

var fieldIDs = [...]string{"name", "ticker", "stage", "therapeutic_area", "description", "cash_position", "burn_rate"}

var fieldLabels = [...]string{"Company Name", "Ticker", "Stage", "Therapeutic Area", "Description", "Cash Position ($M)", "Burn Rate ($M/month)"}

// Fields lists the draft fields in form order.
func Fields() []Field {
	return []Field{FieldName, FieldTicker, FieldStage, FieldTherapeuticArea, FieldDescription, FieldCashPosition, FieldBurnRate}
}

func (f Field) Valid() bool { return f >= FieldName && f <= FieldBurnRate }

func (f Field) String() string {
	if !f.Valid() {
		return fmt.Sprintf("Field(%d)", int(f))
	}
	return fieldIDs[f]
}

func (f Field) Label() string {
	if !f.Valid() {
		return f.String()
	}
	return fieldLabels[f]
}

// Money reports whether the field holds a decimal amount.
func (f Field) Money() bool { return f == FieldCashPosition || f == FieldBurnRate }

// ParseField resolves a field id such as "burn_rate". Dashes are accepted in
// place of underscores so CLI flag names map directly.
func ParseField(s string) (Field, bool) {
	s = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	for i, id := range fieldIDs {
		if id == s {
			return Field(i), true
		}
	}
	return 0, false
}

// Pillar is a scoring dimension.
type Pillar int

const (
	Science Pillar = iota
	Clinical
	Market
	Team
	Financials
)

const (
	MinScore = 0
	MaxScore = 10
)

var pillarIDs = [...]string{"science", "clinical", "market", "team", "financials"}

var pillarTitles = [...]string{"Science & Platform", "Clinical Evidence", "Market Opportunity", "Management Team", "Financial Health"}

// Pillars lists every pillar in display order.
func Pillars() []Pillar { return []Pillar{Science, Clinical, Market, Team, Financials} }

func (p Pillar) Valid() bool { return p >= Science && p <= Financials }

// ID matches the pillar ids of the bundled sample data.
func (p Pillar) ID() string {
	if !p.Valid() {
		return fmt.Sprintf("Pillar(%d)", int(p))
	}
	return pillarIDs[p]
}

func (p Pillar) String() string { return p.ID() }

func (p Pillar) Title() string {
	if !p.Valid() {
		return p.ID()
	}
	return pillarTitles[p]
}

// ParsePillar resolves a pillar id such as "clinical".
func ParsePillar(s string) (Pillar, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, id := range pillarIDs {
		if id == s {
			return Pillar(i), true
		}
	}
	return 0, false
}
