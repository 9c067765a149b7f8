// Package discharge holds the EFAS-historical river-discharge reanalysis,
// cropped to the Oder window and aggregated to daily means.
package discharge

import (
	"fmt"
	"math"
	"time"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/index/rtree"

	"github.com/gdkrmr/koehler-et-al-prymnesium-bloom/series"
)

// Window is a geographic crop window (degrees).
type Window struct {
	LatMin, LonMin, LatMax, LonMax float64
}

// Oder is the study window of the 2022 bloom, (49N,14E)-(54N,20E).
var Oder = Window{LatMin: 49, LonMin: 14, LatMax: 54, LonMax: 20}

// Archive is the cropped daily discharge record. Cells are stored row-major
// (cell = j*Nx + i); Mask marks cells excluded from matching (low-discharge
// slivers and cells with no valid data).
type Archive struct {
	T        []time.Time // daily, UTC
	Lat, Lon []float64   // cell-center coordinates [Ny], [Nx]
	X, Y     []float64   // cell centers, UTM 33N [Ny*Nx]
	Q        [][]float64 // [Ny*Nx][len(T)] daily mean discharge [m³/s]
	Mask     []bool      // [Ny*Nx]
	Ny, Nx   int

	tree *rtree.Rtree
}

type cell struct {
	p  geom.Point
	id int
}

func (c cell) Bounds() *geom.Bounds { return c.p.Bounds() }

// CellAt returns the nearest unmasked cell to (x,y) [UTM 33N m] within tol.
func (a *Archive) CellAt(x, y, tol float64) (int, bool) {
	if a.tree == nil {
		a.tree = rtree.NewTree(25, 50)
		for i := range a.Q {
			if a.Mask[i] {
				continue
			}
			a.tree.Insert(cell{geom.Point{X: a.X[i], Y: a.Y[i]}, i})
		}
	}
	nn := a.tree.NearestNeighbor(geom.Point{X: x, Y: y})
	if nn == nil {
		return -1, false
	}
	c := nn.(cell)
	if math.Hypot(c.p.X-x, c.p.Y-y) > tol {
		return -1, false
	}
	return c.id, true
}

// Series returns the daily series of one cell.
func (a *Archive) Series(c int) []float64 { return a.Q[c] }

// DayIndex maps a date to its position in T, or -1.
func (a *Archive) DayIndex(t time.Time) int {
	if len(a.T) == 0 {
		return -1
	}
	i := int(t.UTC().Truncate(24*time.Hour).Sub(a.T[0]) / (24 * time.Hour))
	if i < 0 || i >= len(a.T) {
		return -1
	}
	return i
}

// Climatology builds the day-of-year envelope of a cell, excluding the
// event year.
func (a *Archive) Climatology(c, excludeYear int) (*series.Climatology, error) {
	return series.BuildClimatology(a.T, a.Q[c], excludeYear)
}

// maskLow excludes cells whose long-term mean discharge stays under thresh
// [m³/s]: the EFAS river mask bleeds into floodplain slivers that would
// otherwise be matched to observations.
func (a *Archive) maskLow(thresh float64) int {
	nm := 0
	for i, q := range a.Q {
		s, n := 0., 0
		for _, v := range q {
			if !math.IsNaN(v) {
				s += v
				n++
			}
		}
		if n == 0 || s/float64(n) < thresh {
			a.Mask[i] = true
			nm++
			continue
		}
		series.Fill(q)
	}
	return nm
}

func (a *Archive) check() error {
	if len(a.Lat)*len(a.Lon) != len(a.Q) {
		return fmt.Errorf("discharge: grid mismatch %dx%d vs %d cells", len(a.Lat), len(a.Lon), len(a.Q))
	}
	for i := 1; i < len(a.T); i++ {
		if a.T[i].Sub(a.T[i-1]) != 24*time.Hour {
			return fmt.Errorf("discharge: calendar gap at %v", a.T[i])
		}
	}
	return nil
}
