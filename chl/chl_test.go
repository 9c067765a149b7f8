package chl

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	in := `lat,lon,chl,date
52.5,14.6,12.5,2022-08-12
52.1,14.6,80.0,2022-08-15
53.0,14.3,3.25,2022-07-01
`
	obs, err := Load(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, obs, 3)

	// sorted by date
	assert.Equal(t, time.Date(2022, 7, 1, 0, 0, 0, 0, time.UTC), obs[0].T)
	assert.Equal(t, 3.25, obs[0].Chl)
	assert.Equal(t, 14.6, obs[2].Lon)
	assert.Equal(t, -1, obs[0].Cell)
	assert.True(t, math.IsNaN(obs[0].Rkm))
}

func TestLoadRejectsMissingColumn(t *testing.T) {
	_, err := Load(strings.NewReader("date,lon,lat\n2022-08-01,14,52\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"chl"`)
}

func TestLoadRejectsBadDate(t *testing.T) {
	_, err := Load(strings.NewReader("date,lon,lat,chl\n12/31/2022,14,52,1\n"))
	assert.Error(t, err)
}

func TestWindow(t *testing.T) {
	obs := []Obs{
		{T: time.Date(2022, 7, 30, 0, 0, 0, 0, time.UTC)},
		{T: time.Date(2022, 8, 1, 0, 0, 0, 0, time.UTC)},
		{T: time.Date(2022, 8, 31, 0, 0, 0, 0, time.UTC)},
	}
	w := Window(obs,
		time.Date(2022, 8, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2022, 9, 1, 0, 0, 0, 0, time.UTC))
	require.Len(t, w, 2)
	assert.Equal(t, obs[1].T, w[0].T)
}

func TestProfile(t *testing.T) {
	obs := []Obs{
		{Rkm: 3, Chl: 10},
		{Rkm: 7, Chl: 30},
		{Rkm: 12, Chl: 100},
		{Rkm: 55, Chl: 7},
		{Rkm: math.NaN(), Chl: 999}, // unmatched, ignored
	}
	bins := Profile(obs, 10)
	require.Len(t, bins, 3)

	assert.Equal(t, 0., bins[0].Km0)
	assert.Equal(t, 2, bins[0].N)
	assert.InDelta(t, 20., bins[0].Mean, 1e-9)
	assert.InDelta(t, 30., bins[0].Max, 1e-9)

	assert.Equal(t, 10., bins[1].Km0)
	assert.Equal(t, 1, bins[1].N)
	assert.InDelta(t, 100., bins[1].Median, 1e-9)

	assert.Equal(t, 50., bins[2].Km0)
}
