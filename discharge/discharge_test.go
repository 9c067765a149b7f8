package discharge

import (
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(d) * 24 * time.Hour)
}

// testArchive is a 2x2 grid: cell 0 is a river cell, cell 1 a dry sliver,
// cell 2 has a gap, cell 3 is all-fill.
func testArchive() *Archive {
	a := &Archive{
		T:   []time.Time{day(0), day(1), day(2), day(3)},
		Lat: []float64{52.0, 52.1},
		Lon: []float64{14.0, 14.1},
		X:   []float64{0, 1000, 0, 1000},
		Y:   []float64{0, 0, 1000, 1000},
		Q: [][]float64{
			{100, 110, 120, 130},
			{0.1, 0.2, 0.1, 0.1},
			{50, math.NaN(), math.NaN(), 80},
			{math.NaN(), math.NaN(), math.NaN(), math.NaN()},
		},
		Mask: make([]bool, 4),
		Ny:   2, Nx: 2,
	}
	return a
}

func TestMaskLow(t *testing.T) {
	a := testArchive()
	nm := a.maskLow(5.)
	assert.Equal(t, 2, nm)
	assert.Equal(t, []bool{false, true, false, true}, a.Mask)

	// surviving gappy cell is interpolated
	assert.InDelta(t, 60., a.Q[2][1], 1e-9)
	assert.InDelta(t, 70., a.Q[2][2], 1e-9)
}

func TestCellAtSkipsMasked(t *testing.T) {
	a := testArchive()
	a.maskLow(5.)

	c, ok := a.CellAt(900, 10, 5000)
	require.True(t, ok)
	assert.Equal(t, 0, c, "nearest unmasked cell, not the masked sliver at (1000,0)")

	_, ok = a.CellAt(900, 10, 100)
	assert.False(t, ok, "outside tolerance")
}

func TestDayIndex(t *testing.T) {
	a := testArchive()
	assert.Equal(t, 0, a.DayIndex(day(0)))
	assert.Equal(t, 2, a.DayIndex(day(2).Add(6*time.Hour)))
	assert.Equal(t, -1, a.DayIndex(day(17)))
	assert.Equal(t, -1, a.DayIndex(time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC)))
}

func TestCheckCalendar(t *testing.T) {
	a := testArchive()
	require.NoError(t, a.check())
	a.T[2] = a.T[2].Add(24 * time.Hour)
	assert.Error(t, a.check())
}

func TestCropRange(t *testing.T) {
	desc := []float64{54.5, 54.0, 53.5, 53.0, 52.5}
	i0, n := cropRange(desc, 52.8, 54.2)
	assert.Equal(t, 1, i0)
	assert.Equal(t, 3, n)

	asc := []float64{13.0, 14.0, 15.0, 16.0}
	i0, n = cropRange(asc, 13.5, 20.0)
	assert.Equal(t, 1, i0)
	assert.Equal(t, 3, n)

	_, n = cropRange(asc, 30, 40)
	assert.Equal(t, 0, n)
}

func TestParseTimeUnits(t *testing.T) {
	u, e, err := parseTimeUnits("seconds since 1970-01-01")
	require.NoError(t, err)
	assert.Equal(t, time.Second, u)
	assert.True(t, e.Equal(time.Unix(0, 0)))

	u, e, err = parseTimeUnits("hours since 1900-01-01 00:00:00.0")
	require.NoError(t, err)
	assert.Equal(t, time.Hour, u)
	assert.Equal(t, 1900, e.Year())

	u, e, err = parseTimeUnits("days since 2015-1-1")
	require.NoError(t, err)
	// two days in: Jan 3
	assert.True(t, e.Add(time.Duration(2.*float64(u))).Equal(time.Date(2015, 1, 3, 0, 0, 0, 0, time.UTC)))

	_, _, err = parseTimeUnits("fortnights since 1970-01-01")
	assert.Error(t, err)
	_, _, err = parseTimeUnits("proleptic_gregorian")
	assert.Error(t, err)
	_, _, err = parseTimeUnits("hours since then")
	assert.Error(t, err)
}

func TestGobRoundTrip(t *testing.T) {
	a := testArchive()
	a.maskLow(5.)

	fp := filepath.Join(t.TempDir(), "discharge.gob")
	require.NoError(t, a.SaveGob(fp))
	b, err := LoadGobArchive(fp)
	require.NoError(t, err)

	assert.Equal(t, a.Mask, b.Mask)
	assert.Equal(t, a.Q[0], b.Q[0])
	assert.True(t, a.T[3].Equal(b.T[3]))
}
