package bloom

import (
	"fmt"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/gdkrmr/koehler-et-al-prymnesium-bloom/chl"
	"github.com/gdkrmr/koehler-et-al-prymnesium-bloom/crs"
	"github.com/gdkrmr/koehler-et-al-prymnesium-bloom/discharge"
	"github.com/gdkrmr/koehler-et-al-prymnesium-bloom/gauge"
	"github.com/gdkrmr/koehler-et-al-prymnesium-bloom/series"
)

// GaugeResult is the reanalysis validation at one gauge.
type GaugeResult struct {
	Name  string
	Cell  int
	Skill gauge.Skill
	Clim  *series.Climatology
	Anom  float64 // bloom-year mean departure from the day-of-year median [m³/s]

	// bloom-year gauge record, for the hydrograph panel
	T []time.Time
	Q []float64
}

// Analysis is the joined result set feeding the report.
type Analysis struct {
	NObs, NDropped int

	// per-observation join: chlorophyll vs same-day cell discharge
	Q, Chl            []float64
	Pearson, Spearman float64
	PeakChl, PeakRkm  float64
	PeakDate          time.Time

	Bins   []chl.Bin // bloom-window longitudinal profile
	DayT   []time.Time
	DayChl []float64 // daily mean chlorophyll of matched samples

	Gauges []GaugeResult
}

// Analyze joins the matched observations with the discharge record and
// scores the reanalysis at the gauges.
func (d *Domain) Analyze() (*Analysis, error) {
	cfg := d.Cfg
	a := &Analysis{NObs: len(d.Obs), NDropped: d.NDropped}
	if len(d.Obs) == 0 {
		return nil, fmt.Errorf("bloom: no matched observations to analyze")
	}

	// same-day discharge per observation
	a.Q, a.Chl = make([]float64, len(d.Obs)), make([]float64, len(d.Obs))
	for i, o := range d.Obs {
		a.Chl[i] = o.Chl
		if j := d.Arc.DayIndex(o.T); j >= 0 {
			a.Q[i] = d.Arc.Series(o.Cell)[j]
		} else {
			a.Q[i] = math.NaN()
		}
		if o.Chl > a.PeakChl {
			a.PeakChl, a.PeakRkm, a.PeakDate = o.Chl, o.Rkm, o.T
		}
	}
	a.Pearson = series.Pearson(a.Q, a.Chl)
	a.Spearman = series.Spearman(a.Q, a.Chl)

	// longitudinal profile over the bloom window
	from := time.Date(cfg.BloomYear, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(1, 0, 0)
	a.Bins = chl.Profile(chl.Window(d.Obs, from, to), cfg.BinKM)

	// daily mean chlorophyll
	byDay := map[int64][]float64{}
	for _, o := range d.Obs {
		u := o.T.Truncate(24 * time.Hour).Unix()
		byDay[u] = append(byDay[u], o.Chl)
	}
	days := make([]int64, 0, len(byDay))
	for u := range byDay {
		days = append(days, u)
	}
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })
	for _, u := range days {
		a.DayT = append(a.DayT, time.Unix(u, 0).UTC())
		a.DayChl = append(a.DayChl, stat.Mean(byDay[u], nil))
	}

	// gauge validation against the nearest unmasked cell
	for _, st := range d.Gauges {
		gr, err := d.gaugeResult(st)
		if err != nil {
			return nil, err
		}
		a.Gauges = append(a.Gauges, gr)
	}
	return a, nil
}

func (d *Domain) gaugeResult(st *gauge.Station) (GaugeResult, error) {
	cell := -1
	for _, g := range d.Cfg.Gauges {
		if g.Name == st.Name && g.Cell >= 0 {
			cell = g.Cell // control-file override
		}
	}
	if cell < 0 {
		var ok bool
		if cell, ok = cellForGauge(d.Arc, st, d.Cfg.SnapM); !ok {
			return GaugeResult{}, fmt.Errorf("bloom: gauge %s: no discharge cell within %.0f m", st.Name, d.Cfg.SnapM)
		}
	}
	clim, err := d.Arc.Climatology(cell, d.Cfg.BloomYear)
	if err != nil {
		return GaugeResult{}, err
	}
	gr := GaugeResult{
		Name:  st.Name,
		Cell:  cell,
		Skill: st.Skill(d.Arc.T, d.Arc.Series(cell)),
		Clim:  clim,
	}
	s, n := 0., 0
	for i, t := range d.Arc.T {
		q := d.Arc.Series(cell)[i]
		if t.Year() != d.Cfg.BloomYear || math.IsNaN(q) {
			continue
		}
		_, p50, _ := clim.At(t)
		if !math.IsNaN(p50) {
			s += q - p50
			n++
		}
	}
	if n > 0 {
		gr.Anom = s / float64(n)
	}
	for i, t := range st.T {
		if t.Year() == d.Cfg.BloomYear {
			gr.T = append(gr.T, t)
			gr.Q = append(gr.Q, st.Q[i])
		}
	}
	if floats.Count(math.IsNaN, gr.Q) == len(gr.Q) {
		return GaugeResult{}, fmt.Errorf("bloom: gauge %s: no bloom-year record", st.Name)
	}
	return gr, nil
}

func cellForGauge(arc *discharge.Archive, st *gauge.Station, tol float64) (int, bool) {
	tr, err := crs.LonLatToUTM33()
	if err != nil {
		return -1, false
	}
	x, y, err := tr(st.Lon, st.Lat)
	if err != nil {
		return -1, false
	}
	return arc.CellAt(x, y, tol)
}
