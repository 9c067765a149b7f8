// Package gauge reads the fixed gauge-station discharge records and scores
// the EFAS reanalysis against them.
package gauge

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/maseology/objfunc"

	"github.com/gdkrmr/koehler-et-al-prymnesium-bloom/series"
)

// Station is a daily gauge record.
type Station struct {
	Name     string
	Lat, Lon float64
	T        []time.Time
	Q        []float64 // [m³/s]
}

// Load parses a gauge CSV (header date,discharge). Interior gaps are
// interpolated and edge gaps extended from the nearest valid value, the
// same treatment the archive cells get.
func Load(r io.Reader, name string, lat, lon float64) (*Station, error) {
	cr := csv.NewReader(r)
	if _, err := cr.Read(); err != nil { // header
		return nil, fmt.Errorf("gauge %s: %v", name, err)
	}

	type rec struct {
		t time.Time
		q float64
	}
	var recs []rec
	for ln := 2; ; ln++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("gauge %s: line %d: %v", name, ln, err)
		}
		t, err := time.Parse("2006-01-02", strings.TrimSpace(row[0]))
		if err != nil {
			return nil, fmt.Errorf("gauge %s: line %d: %v", name, ln, err)
		}
		q := math.NaN()
		if s := strings.TrimSpace(row[1]); s != "" {
			if q, err = strconv.ParseFloat(s, 64); err != nil {
				return nil, fmt.Errorf("gauge %s: line %d: %v", name, ln, err)
			}
		}
		recs = append(recs, rec{t.UTC(), q})
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("gauge %s: empty record", name)
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].t.Before(recs[j].t) })

	// expand to a continuous daily calendar
	t0, t1 := recs[0].t, recs[len(recs)-1].t
	nd := int(t1.Sub(t0)/(24*time.Hour)) + 1
	st := &Station{Name: name, Lat: lat, Lon: lon,
		T: make([]time.Time, nd), Q: make([]float64, nd)}
	for i := range st.Q {
		st.T[i] = t0.Add(time.Duration(i) * 24 * time.Hour)
		st.Q[i] = math.NaN()
	}
	for _, r := range recs {
		st.Q[int(r.t.Sub(t0)/(24*time.Hour))] = r.q
	}
	if n := series.Fill(st.Q); n > 0 {
		fmt.Printf("  gauge %s: filled %d of %d days\n", name, n, nd)
	}
	return st, nil
}

// LoadFile is Load on a file path.
func LoadFile(fp, name string, lat, lon float64) (*Station, error) {
	f, err := os.Open(fp)
	if err != nil {
		return nil, fmt.Errorf("gauge %s: %v", name, err)
	}
	defer f.Close()
	return Load(f, name, lat, lon)
}

// Skill holds goodness-of-fit of a simulated/reanalysis series against the
// gauge record.
type Skill struct {
	NSE, KGE, RMSE, Bias float64
	N                    int
}

// Skill scores sim (on calendar t) against the station record over the
// overlapping days.
func (s *Station) Skill(t []time.Time, sim []float64) Skill {
	ix := make(map[int64]int, len(s.T))
	for i, tt := range s.T {
		ix[tt.Unix()] = i
	}
	var obs, sm []float64
	for j, tt := range t {
		i, ok := ix[tt.Unix()]
		if !ok || math.IsNaN(s.Q[i]) || math.IsNaN(sim[j]) {
			continue
		}
		obs = append(obs, s.Q[i])
		sm = append(sm, sim[j])
	}
	if len(obs) == 0 {
		return Skill{NSE: math.NaN(), KGE: math.NaN(), RMSE: math.NaN(), Bias: math.NaN()}
	}
	return Skill{
		NSE:  objfunc.NSE(obs, sm),
		KGE:  objfunc.KGE(obs, sm),
		RMSE: objfunc.RMSE(obs, sm),
		Bias: objfunc.Bias(obs, sm),
		N:    len(obs),
	}
}
