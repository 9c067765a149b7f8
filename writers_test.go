package bloom

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gdkrmr/koehler-et-al-prymnesium-bloom/gauge"
	"github.com/gdkrmr/koehler-et-al-prymnesium-bloom/rivnet"
)

func TestWriteTables(t *testing.T) {
	d := testDomain()
	d.Net = &rivnet.Network{
		V:     []rivnet.XY{{X: 465000, Y: 5930000}, {X: 465000, Y: 5931000}},
		Dist:  []float64{0, 1},
		Mouth: 0,
		Nseg:  1,
	}
	// record starts two days before the archive
	st := &gauge.Station{Name: "frankfurt", Lat: 52.335, Lon: 14.547}
	for i := 0; i < 6; i++ {
		st.T = append(st.T, day(1).Add(time.Duration(i-2)*24*time.Hour))
		st.Q = append(st.Q, 180.+float64(i))
	}
	d.Gauges = append(d.Gauges, st)
	d.Cfg.Gauges = []GaugeDef{{Name: "frankfurt", Lat: 52.335, Lon: 14.547, Cell: 0}}

	a, err := d.Analyze()
	require.NoError(t, err)
	require.Len(t, a.Gauges, 1)
	assert.Equal(t, 0, a.Gauges[0].Cell, "control-file cell override bypasses snapping")

	dir := t.TempDir() + "/"
	require.NoError(t, writeTables(dir, d, a))

	b, err := os.ReadFile(filepath.Join(dir, "frankfurt-hdgrph.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	require.Len(t, lines, 7) // header + 6 station days

	// days before the archive span carry NaN, not a fake zero
	assert.Contains(t, lines[1], "NaN")
	assert.Contains(t, lines[2], "NaN")
	assert.Contains(t, lines[3], "200") // Aug 1
	assert.NotContains(t, lines[3], "NaN")

	nb, err := os.ReadFile(filepath.Join(dir, "network.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(nb), "2,1,")
}
