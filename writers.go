package bloom

import (
	"fmt"
	"math"
	"os"

	"github.com/maseology/mmio"

	"github.com/gdkrmr/koehler-et-al-prymnesium-bloom/crs"
)

func writeTables(outdir string, d *Domain, a *Analysis) error {
	mmio.WriteCsvDateFloats(outdir+"chl-daily.csv", "date,chl", a.DayT, a.DayChl)

	for _, gr := range a.Gauges {
		for _, st := range d.Gauges {
			if st.Name != gr.Name {
				continue
			}
			q := d.Arc.Series(gr.Cell)
			sim := make([]float64, len(st.T))
			for i, t := range st.T {
				if j := d.Arc.DayIndex(t); j >= 0 {
					sim[i] = q[j]
				} else {
					sim[i] = math.NaN() // station day outside the archive span
				}
			}
			mmio.WriteCsvDateFloats(outdir+gr.Name+"-hdgrph.csv", "date,obs,sim", st.T, st.Q, sim)
		}
	}

	if err := writeProfile(outdir+"profile.csv", d, a); err != nil {
		return fmt.Errorf("writeTables: %v", err)
	}
	if err := writeObs(outdir+"observations.csv", d, a); err != nil {
		return fmt.Errorf("writeTables: %v", err)
	}
	if err := writeNetwork(outdir+"network.csv", d); err != nil {
		return fmt.Errorf("writeTables: %v", err)
	}
	return nil
}

func writeProfile(fp string, d *Domain, a *Analysis) error {
	f, err := os.Create(fp)
	if err != nil {
		return err
	}
	fmt.Fprintln(f, "km0,km1,n,mean,median,max")
	for _, b := range a.Bins {
		fmt.Fprintf(f, "%.0f,%.0f,%d,%f,%f,%f\n", b.Km0, b.Km1, b.N, b.Mean, b.Median, b.Max)
	}
	return f.Close()
}

func writeObs(fp string, d *Domain, a *Analysis) error {
	f, err := os.Create(fp)
	if err != nil {
		return err
	}
	fmt.Fprintln(f, "date,lat,lon,rkm,chl,discharge")
	for i, o := range d.Obs {
		fmt.Fprintf(f, "%s,%f,%f,%.1f,%f,%f\n", o.T.Format("2006-01-02"), o.Lat, o.Lon, o.Rkm, o.Chl, a.Q[i])
	}
	return f.Close()
}

// writeNetwork summarizes the built graph; the mouth is reported back in
// geographic coordinates.
func writeNetwork(fp string, d *Domain) error {
	m := d.Net.V[d.Net.Mouth]
	lat, lon, err := crs.ToLatLon(m.X, m.Y)
	if err != nil {
		return err
	}
	f, err := os.Create(fp)
	if err != nil {
		return err
	}
	fmt.Fprintln(f, "vertices,segments,mouth_lat,mouth_lon")
	fmt.Fprintf(f, "%d,%d,%f,%f\n", len(d.Net.V), d.Net.Nseg, lat, lon)
	return f.Close()
}
