// Package chl loads the remote-sensing chlorophyll-a observations and
// matches them to positions along the river network and to discharge grid
// cells. Chlorophyll is the biomass proxy for the Prymnesium bloom.
package chl

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

	"gonum.org/v1/gonum/stat"

	"github.com/gdkrmr/koehler-et-al-prymnesium-bloom/crs"
	"github.com/gdkrmr/koehler-et-al-prymnesium-bloom/discharge"
	"github.com/gdkrmr/koehler-et-al-prymnesium-bloom/rivnet"
)

// Obs is one chlorophyll sample. Rkm and Cell are set by Match; Cell is -1
// until then.
type Obs struct {
	T        time.Time
	Lon, Lat float64
	Chl      float64 // [µg/l]
	Rkm      float64 // distance to mouth [km]
	Cell     int     // discharge archive cell
}

var dateLayouts = []string{"2006-01-02", "2006-01-02 15:04:05", time.RFC3339}

// Load parses a chlorophyll CSV with header columns date, lon, lat, chl
// (any order, case-insensitive).
func Load(r io.Reader) ([]Obs, error) {
	cr := csv.NewReader(r)
	hdr, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("chl: %v", err)
	}
	col := map[string]int{}
	for i, h := range hdr {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, need := range []string{"date", "lon", "lat", "chl"} {
		if _, ok := col[need]; !ok {
			return nil, fmt.Errorf("chl: missing column %q (header %v)", need, hdr)
		}
	}

	var obs []Obs
	for ln := 2; ; ln++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("chl: line %d: %v", ln, err)
		}
		o := Obs{Cell: -1, Rkm: math.NaN()}
		if o.T, err = parseDate(rec[col["date"]]); err != nil {
			return nil, fmt.Errorf("chl: line %d: %v", ln, err)
		}
		if o.Lon, err = strconv.ParseFloat(rec[col["lon"]], 64); err != nil {
			return nil, fmt.Errorf("chl: line %d: lon: %v", ln, err)
		}
		if o.Lat, err = strconv.ParseFloat(rec[col["lat"]], 64); err != nil {
			return nil, fmt.Errorf("chl: line %d: lat: %v", ln, err)
		}
		if o.Chl, err = strconv.ParseFloat(rec[col["chl"]], 64); err != nil {
			return nil, fmt.Errorf("chl: line %d: chl: %v", ln, err)
		}
		obs = append(obs, o)
	}
	sort.Slice(obs, func(i, j int) bool { return obs[i].T.Before(obs[j].T) })
	return obs, nil
}

// LoadFile is Load on a file path.
func LoadFile(fp string) ([]Obs, error) {
	f, err := os.Open(fp)
	if err != nil {
		return nil, fmt.Errorf("chl: %v", err)
	}
	defer f.Close()
	return Load(f)
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, l := range dateLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparsable date %q", s)
}

// Match snaps every observation to its river-km and its nearest unmasked
// discharge cell (both within tol metres). Observations that miss either
// are dropped; the drop count is returned alongside.
func Match(obs []Obs, net *rivnet.Network, arc *discharge.Archive, tol float64) ([]Obs, int, error) {
	tr, err := crs.LonLatToUTM33()
	if err != nil {
		return nil, 0, err
	}
	out, nd := make([]Obs, 0, len(obs)), 0
	for _, o := range obs {
		x, y, err := tr(o.Lon, o.Lat)
		if err != nil {
			return nil, 0, fmt.Errorf("chl: projecting (%f,%f): %v", o.Lon, o.Lat, err)
		}
		vid, _, ok := net.Snap(x, y, tol)
		if !ok {
			nd++
			continue
		}
		c, ok := arc.CellAt(x, y, tol)
		if !ok {
			nd++
			continue
		}
		o.Rkm, o.Cell = net.Rkm(vid), c
		out = append(out, o)
	}
	return out, nd, nil
}

// Window keeps observations within [from,to).
func Window(obs []Obs, from, to time.Time) []Obs {
	var out []Obs
	for _, o := range obs {
		if !o.T.Before(from) && o.T.Before(to) {
			out = append(out, o)
		}
	}
	return out
}

// Bin is one river-km interval of the longitudinal bloom profile.
type Bin struct {
	Km0, Km1          float64
	N                 int
	Mean, Median, Max float64
}

// Profile aggregates matched observations into river-km bins of the given
// width. Empty bins are omitted.
func Profile(obs []Obs, widthKM float64) []Bin {
	byBin := map[int][]float64{}
	for _, o := range obs {
		if math.IsNaN(o.Rkm) {
			continue
		}
		byBin[int(o.Rkm/widthKM)] = append(byBin[int(o.Rkm/widthKM)], o.Chl)
	}
	keys := make([]int, 0, len(byBin))
	for k := range byBin {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	bins := make([]Bin, 0, len(keys))
	for _, k := range keys {
		xs := byBin[k]
		sort.Float64s(xs)
		bins = append(bins, Bin{
			Km0:    float64(k) * widthKM,
			Km1:    float64(k+1) * widthKM,
			N:      len(xs),
			Mean:   stat.Mean(xs, nil),
			Median: stat.Quantile(.5, stat.Empirical, xs, nil),
			Max:    xs[len(xs)-1],
		})
	}
	return bins
}
