package sample

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadEmbeddedData(t *testing.T) {
	d, err := Load()
	require.NoError(t, err)
	require.Len(t, d.Companies, 5)
	require.Len(t, d.Scenarios, 3)
	require.Len(t, d.Pillars, 5)

	var total float64
	for _, s := range d.Scenarios {
		total += s.Probability
	}
	require.InDelta(t, 1.0, total, 1e-9)

	var weights float64
	for _, p := range d.Pillars {
		weights += p.Weight
	}
	require.InDelta(t, 1.0, weights, 1e-9)
}

func TestPillarByID(t *testing.T) {
	d, err := Load()
	require.NoError(t, err)

	p, ok := d.PillarByID("clinical")
	require.True(t, ok)
	require.Equal(t, "Clinical", p.Title)

	_, ok = d.PillarByID("astrology")
	require.False(t, ok)
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := Parse([]byte("companies: [oops"))
	require.Error(t, err)
}
