// Package sample holds the bundled sample data: seed companies, valuation
// scenarios and scoring pillar definitions.
package sample

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed data.yaml
var raw []byte

// Company is a seed company. Money values are in millions, kept as strings so
// callers can parse them into exact decimals.
type Company struct {
	Name            string `yaml:"name"`
	Ticker          string `yaml:"ticker"`
	Stage           string `yaml:"stage"`
	TherapeuticArea string `yaml:"therapeutic_area"`
	Description     string `yaml:"description"`
	CashPosition    string `yaml:"cash_position"`
	BurnRate        string `yaml:"burn_rate"`
}

// Scenario is one row of the valuation screen.
type Scenario struct {
	Name        string  `yaml:"name"`
	Probability float64 `yaml:"probability"`
	PeakSales   string  `yaml:"peak_sales"`
	Valuation   string  `yaml:"valuation"`
	Note        string  `yaml:"note"`
}

// Pillar describes a scoring dimension.
type Pillar struct {
	ID          string  `yaml:"id"`
	Title       string  `yaml:"title"`
	Description string  `yaml:"description"`
	Weight      float64 `yaml:"weight"`
}

// Data is the decoded sample document.
type Data struct {
	Companies []Company  `yaml:"companies"`
	Scenarios []Scenario `yaml:"scenarios"`
	Pillars   []Pillar   `yaml:"pillars"`
}

var (
	once    sync.Once
	decoded Data
	loadErr error
)

// Load decodes the embedded sample document once.
func Load() (Data, error) {
	once.Do(func() {
		decoded, loadErr = Parse(raw)
	})
	return decoded, loadErr
}

// Parse decodes a sample document.
func Parse(b []byte) (Data, error) {
	var d Data
	if err := yaml.Unmarshal(b, &d); err != nil {
		return Data{}, fmt.Errorf("decode sample data: %w", err)
	}
	return d, nil
}

// PillarByID returns the pillar definition with the given id.
func (d Data) PillarByID(id string) (Pillar, bool) {
	for _, p := range d.Pillars {
		if p.ID == id {
			return p, true
		}
	}
	return Pillar{}, false
}
