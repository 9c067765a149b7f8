package chl

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gdkrmr/koehler-et-al-prymnesium-bloom/crs"
	"github.com/gdkrmr/koehler-et-al-prymnesium-bloom/discharge"
	"github.com/gdkrmr/koehler-et-al-prymnesium-bloom/rivnet"
)

func TestMatch(t *testing.T) {
	tr, err := crs.LonLatToUTM33()
	require.NoError(t, err)

	// a 2 km straight reach through (14.5E, 52.5N)
	x0, y0, err := tr(14.5, 52.5)
	require.NoError(t, err)
	net, err := rivnet.New([][]rivnet.XY{
		{{X: x0, Y: y0}, {X: x0 + 1000, Y: y0}, {X: x0 + 2000, Y: y0}},
	}, rivnet.XY{X: x0, Y: y0}, 0)
	require.NoError(t, err)

	arc := &discharge.Archive{
		T:    []time.Time{time.Date(2022, 8, 1, 0, 0, 0, 0, time.UTC)},
		Lat:  []float64{52.5},
		Lon:  []float64{14.5},
		X:    []float64{x0 + 500},
		Y:    []float64{y0},
		Q:    [][]float64{{100}},
		Mask: []bool{false},
		Ny:   1, Nx: 1,
	}

	obs := []Obs{
		{T: arc.T[0], Lon: 14.5, Lat: 52.5, Chl: 40},    // on the reach
		{T: arc.T[0], Lon: 16.9, Lat: 50.0, Chl: 11},    // far away, dropped
	}
	matched, dropped, err := Match(obs, net, arc, 1500)
	require.NoError(t, err)
	assert.Equal(t, 1, dropped)
	require.Len(t, matched, 1)

	assert.Equal(t, 0, matched[0].Cell)
	assert.False(t, math.IsNaN(matched[0].Rkm))
	assert.InDelta(t, 0., matched[0].Rkm, 0.01, "sample sits at the mouth vertex")
}
