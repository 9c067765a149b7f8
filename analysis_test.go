package bloom

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gdkrmr/koehler-et-al-prymnesium-bloom/chl"
	"github.com/gdkrmr/koehler-et-al-prymnesium-bloom/discharge"
)

func day(d int) time.Time { return time.Date(2022, 8, d, 0, 0, 0, 0, time.UTC) }

func testDomain() *Domain {
	nt := 10
	ts := make([]time.Time, nt)
	q := make([]float64, nt)
	for i := 0; i < nt; i++ {
		ts[i] = day(1 + i)
		q[i] = 200. - 10.*float64(i) // receding limb
	}
	arc := &discharge.Archive{
		T: ts, Lat: []float64{52.3}, Lon: []float64{14.5},
		X: []float64{500000.}, Y: []float64{5800000.},
		Q: [][]float64{q}, Mask: []bool{false}, Ny: 1, Nx: 1,
	}
	obs := []chl.Obs{
		{T: day(2), Chl: 10, Rkm: 5, Cell: 0},
		{T: day(5), Chl: 80, Rkm: 120, Cell: 0},
		{T: day(5), Chl: 40, Rkm: 130, Cell: 0},
	}
	return &Domain{
		Cfg: &Config{BloomYear: 2022, BinKM: 100, SnapM: 2000},
		Arc: arc, Obs: obs, NDropped: 1,
	}
}

func TestAnalyze(t *testing.T) {
	d := testDomain()
	a, err := d.Analyze()
	require.NoError(t, err)

	assert.Equal(t, 3, a.NObs)
	assert.Equal(t, 1, a.NDropped)

	// same-day discharge join
	require.Len(t, a.Q, 3)
	assert.Equal(t, 190., a.Q[0]) // Aug 2
	assert.Equal(t, 160., a.Q[1]) // Aug 5
	assert.Equal(t, 160., a.Q[2])

	// peak sample
	assert.Equal(t, 80., a.PeakChl)
	assert.Equal(t, 120., a.PeakRkm)
	assert.Equal(t, day(5), a.PeakDate)

	// discharge falls as chlorophyll rises at the peak bin
	assert.Less(t, a.Pearson, 0.)

	// 100 km bins: [0,100) holds one sample, [100,200) two
	require.Len(t, a.Bins, 2)
	assert.Equal(t, 1, a.Bins[0].N)
	assert.Equal(t, 2, a.Bins[1].N)
	assert.Equal(t, 60., a.Bins[1].Mean)
	assert.Equal(t, 80., a.Bins[1].Max)

	// daily means
	require.Len(t, a.DayT, 2)
	assert.Equal(t, day(2), a.DayT[0])
	assert.Equal(t, 10., a.DayChl[0])
	assert.Equal(t, 60., a.DayChl[1])
}

func TestAnalyzeNoObservations(t *testing.T) {
	d := testDomain()
	d.Obs = nil
	_, err := d.Analyze()
	assert.Error(t, err)
}
