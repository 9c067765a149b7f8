// Package series holds the daily time-series primitives shared by the
// discharge archive and the gauge records: gap filling, day-of-year
// climatologies and the correlation measures used in the analysis.
package series

import (
	"fmt"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Fill replaces NaNs in v in place: interior gaps are linearly interpolated,
// leading/trailing gaps take the nearest valid value. Returns the number of
// values filled. A series with no valid value is left untouched.
func Fill(v []float64) int {
	first, last := -1, -1
	for i, x := range v {
		if !math.IsNaN(x) {
			if first < 0 {
				first = i
			}
			last = i
		}
	}
	if first < 0 {
		return 0
	}

	n := 0
	for i := 0; i < first; i++ {
		v[i] = v[first]
		n++
	}
	for i := last + 1; i < len(v); i++ {
		v[i] = v[last]
		n++
	}
	i := first
	for i < last {
		if !math.IsNaN(v[i]) {
			i++
			continue
		}
		j := i // run of NaNs [i,j]
		for math.IsNaN(v[j+1]) {
			j++
		}
		x0, x1 := v[i-1], v[j+1]
		for k := i; k <= j; k++ {
			f := float64(k-i+1) / float64(j-i+2)
			v[k] = x0 + f*(x1-x0)
			n++
		}
		i = j + 2
	}
	return n
}

// Climatology is a calendar-day envelope. Slots are keyed by the day of
// year in a leap reference year, so a date maps to the same slot whether
// or not its own year carries a Feb 29.
type Climatology struct {
	P10, P50, P90 [366]float64
	N             [366]int
}

func slot(t time.Time) int {
	return time.Date(2000, t.Month(), t.Day(), 0, 0, 0, 0, time.UTC).YearDay() - 1
}

// BuildClimatology computes day-of-year percentiles of v, skipping the
// excluded year (the event year under study) and NaNs.
func BuildClimatology(t []time.Time, v []float64, excludeYear int) (*Climatology, error) {
	if len(t) != len(v) {
		return nil, fmt.Errorf("series: climatology length mismatch %d/%d", len(t), len(v))
	}
	byDOY := make([][]float64, 366)
	for i, tt := range t {
		if tt.Year() == excludeYear || math.IsNaN(v[i]) {
			continue
		}
		d := slot(tt)
		byDOY[d] = append(byDOY[d], v[i])
	}
	c := &Climatology{}
	for d, xs := range byDOY {
		c.N[d] = len(xs)
		if len(xs) == 0 {
			c.P10[d], c.P50[d], c.P90[d] = math.NaN(), math.NaN(), math.NaN()
			continue
		}
		sort.Float64s(xs)
		c.P10[d] = stat.Quantile(.1, stat.Empirical, xs, nil)
		c.P50[d] = stat.Quantile(.5, stat.Empirical, xs, nil)
		c.P90[d] = stat.Quantile(.9, stat.Empirical, xs, nil)
	}
	return c, nil
}

// At returns the (p10,p50,p90) envelope for a date.
func (c *Climatology) At(t time.Time) (p10, p50, p90 float64) {
	d := slot(t)
	return c.P10[d], c.P50[d], c.P90[d]
}

// Pearson is the linear correlation of the paired samples, ignoring pairs
// with a NaN on either side.
func Pearson(x, y []float64) float64 {
	xs, ys := dropNaN(x, y)
	if len(xs) < 3 {
		return math.NaN()
	}
	return stat.Correlation(xs, ys, nil)
}

// Spearman is the rank correlation of the paired samples (average ranks on
// ties), ignoring pairs with a NaN on either side.
func Spearman(x, y []float64) float64 {
	xs, ys := dropNaN(x, y)
	if len(xs) < 3 {
		return math.NaN()
	}
	return stat.Correlation(ranks(xs), ranks(ys), nil)
}

func dropNaN(x, y []float64) ([]float64, []float64) {
	xs, ys := make([]float64, 0, len(x)), make([]float64, 0, len(y))
	for i := range x {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	return xs, ys
}

func ranks(x []float64) []float64 {
	idx := make([]int, len(x))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(i, j int) bool { return x[idx[i]] < x[idx[j]] })
	r := make([]float64, len(x))
	for i := 0; i < len(idx); {
		j := i
		for j+1 < len(idx) && x[idx[j+1]] == x[idx[i]] {
			j++
		}
		avg := float64(i+j)/2. + 1.
		for k := i; k <= j; k++ {
			r[idx[k]] = avg
		}
		i = j + 1
	}
	return r
}
