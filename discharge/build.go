package discharge

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/fhs/go-netcdf/netcdf"
	"github.com/gosuri/uiprogress"

	"github.com/gdkrmr/koehler-et-al-prymnesium-bloom/crs"
)

// EFAS encodes missing cells with a large fill value.
const fillThresh = 1e19

// discharge variable names across EFAS system versions
var disVars = []string{"dis06", "dis"}

// Build reads the yearly EFAS NetCDF files (year -> path), crops them to w
// and assembles the daily archive. Cells with a long-term mean under
// maskCMS [m³/s] are masked.
func Build(ncfps map[int]string, w Window, maskCMS float64) (*Archive, error) {
	years := make([]int, 0, len(ncfps))
	for y := range ncfps {
		years = append(years, y)
	}
	sort.Ints(years)
	if len(years) == 0 {
		return nil, fmt.Errorf("discharge: no input files")
	}

	a := &Archive{}
	for _, y := range years {
		if err := a.appendYear(y, ncfps[y], w); err != nil {
			return nil, err
		}
	}

	// UTM cell centers for matching
	tr, err := crs.LonLatToUTM33()
	if err != nil {
		return nil, err
	}
	a.X, a.Y = make([]float64, a.Ny*a.Nx), make([]float64, a.Ny*a.Nx)
	for j, lat := range a.Lat {
		for i, lon := range a.Lon {
			x, yy, err := tr(lon, lat)
			if err != nil {
				return nil, fmt.Errorf("discharge: projecting cell (%f,%f): %v", lon, lat, err)
			}
			a.X[j*a.Nx+i], a.Y[j*a.Nx+i] = x, yy
		}
	}

	a.Mask = make([]bool, a.Ny*a.Nx)
	nm := a.maskLow(maskCMS)
	fmt.Printf("  %d of %d cells masked (mean < %.1f cms)\n", nm, a.Ny*a.Nx, maskCMS)

	return a, a.check()
}

func (a *Archive) appendYear(year int, fp string, w Window) error {
	ds, err := netcdf.OpenFile(fp, netcdf.NOWRITE)
	if err != nil {
		return fmt.Errorf("discharge: %v", err)
	}
	defer ds.Close()

	lat, err := readCoord(ds, "latitude")
	if err != nil {
		return fmt.Errorf("discharge: %s: %v", fp, err)
	}
	lon, err := readCoord(ds, "longitude")
	if err != nil {
		return fmt.Errorf("discharge: %s: %v", fp, err)
	}
	j0, nj := cropRange(lat, w.LatMin, w.LatMax)
	i0, ni := cropRange(lon, w.LonMin, w.LonMax)
	if nj == 0 || ni == 0 {
		return fmt.Errorf("discharge: %s: crop window empty", fp)
	}

	var v netcdf.Var
	found := false
	for _, nam := range disVars {
		if v, err = ds.Var(nam); err == nil {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("discharge: %s: no discharge variable (tried %v)", fp, disVars)
	}
	dims, err := v.Dims()
	if err != nil {
		return fmt.Errorf("discharge: %v", err)
	}
	if len(dims) != 3 {
		return fmt.Errorf("discharge: %s: want (time,y,x), got %d dims", fp, len(dims))
	}
	nt64, err := dims[0].Len()
	if err != nil {
		return fmt.Errorf("discharge: %v", err)
	}
	nt := int(nt64)
	if nt == 0 || nt%4 != 0 {
		return fmt.Errorf("discharge: %s: %d steps not 6-hourly complete days", fp, nt)
	}
	nd := nt / 4

	stamps, err := readTime(ds, nt)
	if err != nil {
		return fmt.Errorf("discharge: %s: %v", fp, err)
	}
	if nt > 1 && stamps[1].Sub(stamps[0]) != 6*time.Hour {
		return fmt.Errorf("discharge: %s: time step %v, want 6h", fp, stamps[1].Sub(stamps[0]))
	}
	if stamps[0].Year() != year {
		fmt.Printf("  note: %s starts %s (keyed as %d)\n", fp, stamps[0].Format("2006-01-02"), year)
	}

	if a.Ny == 0 {
		a.Lat, a.Lon = lat[j0:j0+nj], lon[i0:i0+ni]
		a.Ny, a.Nx = nj, ni
		a.Q = make([][]float64, nj*ni)
		for i := range a.Q {
			a.Q[i] = []float64{}
		}
	} else if nj != a.Ny || ni != a.Nx || lat[j0] != a.Lat[0] || lon[i0] != a.Lon[0] {
		return fmt.Errorf("discharge: %s: grid differs from first year", fp)
	}

	uiprogress.Start()
	bar := uiprogress.AddBar(nd).AppendCompleted().PrependElapsed()

	buf := make([]float64, 4*nj*ni)
	for d := 0; d < nd; d++ {
		if err := v.ReadFloat64Slice(buf,
			[]uint64{uint64(4 * d), uint64(j0), uint64(i0)},
			[]uint64{4, uint64(nj), uint64(ni)}); err != nil {
			return fmt.Errorf("discharge: %s day %d: %v", fp, d, err)
		}
		for c := 0; c < nj*ni; c++ {
			s, n := 0., 0
			for k := 0; k < 4; k++ {
				x := buf[k*nj*ni+c]
				if x < fillThresh && !math.IsNaN(x) {
					s += x
					n++
				}
			}
			if n == 0 {
				a.Q[c] = append(a.Q[c], math.NaN())
			} else {
				a.Q[c] = append(a.Q[c], s/float64(n))
			}
		}
		bar.Incr()
	}
	uiprogress.Stop()

	for d := 0; d < nd; d++ {
		a.T = append(a.T, stamps[4*d].Truncate(24*time.Hour))
	}
	return nil
}

// readTime decodes the time coordinate from its CF units attribute
// ("<unit> since <epoch>").
func readTime(ds netcdf.Dataset, n int) ([]time.Time, error) {
	v, err := ds.Var("time")
	if err != nil {
		return nil, fmt.Errorf("coordinate time: %v", err)
	}
	vals := make([]float64, n)
	if err := v.ReadFloat64s(vals); err != nil {
		// EFAS ships the time axis as int32 in some system versions
		iv := make([]int32, n)
		if err2 := v.ReadInt32s(iv); err2 != nil {
			return nil, fmt.Errorf("coordinate time: %v", err)
		}
		for i, x := range iv {
			vals[i] = float64(x)
		}
	}
	a := v.Attr("units")
	l, err := a.Len()
	if err != nil {
		return nil, fmt.Errorf("time units: %v", err)
	}
	b := make([]byte, l)
	if err := a.ReadBytes(b); err != nil {
		return nil, fmt.Errorf("time units: %v", err)
	}
	unit, epoch, err := parseTimeUnits(string(b))
	if err != nil {
		return nil, err
	}
	o := make([]time.Time, n)
	for i, x := range vals {
		o[i] = epoch.Add(time.Duration(x * float64(unit))).UTC()
	}
	return o, nil
}

func parseTimeUnits(s string) (time.Duration, time.Time, error) {
	f := strings.Fields(strings.TrimRight(s, "\x00"))
	if len(f) < 3 || f[1] != "since" {
		return 0, time.Time{}, fmt.Errorf("time units %q not of form <unit> since <epoch>", s)
	}
	var unit time.Duration
	switch f[0] {
	case "seconds":
		unit = time.Second
	case "minutes":
		unit = time.Minute
	case "hours":
		unit = time.Hour
	case "days":
		unit = 24 * time.Hour
	default:
		return 0, time.Time{}, fmt.Errorf("time units %q: unknown unit %s", s, f[0])
	}
	es := f[2]
	if len(f) > 3 {
		es += " " + f[3]
	}
	for _, layout := range []string{"2006-1-2 15:4:5.9", "2006-1-2 15:4:5", "2006-1-2"} {
		if epoch, err := time.ParseInLocation(layout, es, time.UTC); err == nil {
			return unit, epoch, nil
		}
	}
	return 0, time.Time{}, fmt.Errorf("time units %q: unparseable epoch %q", s, es)
}

func readCoord(ds netcdf.Dataset, name string) ([]float64, error) {
	v, err := ds.Var(name)
	if err != nil {
		return nil, fmt.Errorf("coordinate %s: %v", name, err)
	}
	dims, err := v.Dims()
	if err != nil {
		return nil, err
	}
	n, err := dims[0].Len()
	if err != nil {
		return nil, err
	}
	o := make([]float64, n)
	if err := v.ReadFloat64s(o); err != nil {
		return nil, fmt.Errorf("coordinate %s: %v", name, err)
	}
	return o, nil
}

// cropRange returns the offset and length of the index run of coords that
// fall within [lo,hi]. Coordinates may ascend or descend.
func cropRange(coord []float64, lo, hi float64) (int, int) {
	i0, n := -1, 0
	for i, c := range coord {
		if c >= lo && c <= hi {
			if i0 < 0 {
				i0 = i
			}
			n++
		}
	}
	if i0 < 0 {
		return 0, 0
	}
	return i0, n
}
