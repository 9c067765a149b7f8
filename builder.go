package bloom

import (
	"fmt"

	"github.com/maseology/mmio"

	"github.com/gdkrmr/koehler-et-al-prymnesium-bloom/chl"
	"github.com/gdkrmr/koehler-et-al-prymnesium-bloom/discharge"
	"github.com/gdkrmr/koehler-et-al-prymnesium-bloom/gauge"
	"github.com/gdkrmr/koehler-et-al-prymnesium-bloom/places"
	"github.com/gdkrmr/koehler-et-al-prymnesium-bloom/rivnet"
)

// Build assembles the analysis domain. The network and the discharge
// archive are expensive to construct and are cached as gobs next to the
// model prefix; delete the gobs to force a rebuild.
func (cfg *Config) Build() (*Domain, error) {
	d := &Domain{Cfg: cfg}

	println("load river network..")
	net, err := func(fp string) (*rivnet.Network, error) {
		if _, ok := mmio.FileExists(fp); ok {
			return rivnet.LoadGobNetwork(fp)
		}
		net, err := rivnet.Load(cfg.NetworkShp, cfg.MouthLat, cfg.MouthLon, cfg.Prune)
		if err != nil {
			return nil, err
		}
		if err := net.SaveGob(fp); err != nil {
			return nil, err
		}
		return net, nil
	}(cfg.Prfx + "network.gob")
	if err != nil {
		return nil, err
	}
	d.Net = net
	fmt.Printf("  %d vertices, %d segments; mouth vertex %d\n", len(net.V), net.Nseg, net.Mouth)

	println("load discharge archive..")
	arc, err := func(fp string) (*discharge.Archive, error) {
		if _, ok := mmio.FileExists(fp); ok {
			return discharge.LoadGobArchive(fp)
		}
		arc, err := discharge.Build(cfg.NC, discharge.Oder, cfg.MaskCMS)
		if err != nil {
			return nil, err
		}
		if err := arc.SaveGob(fp); err != nil {
			return nil, err
		}
		return arc, nil
	}(cfg.Prfx + "discharge.gob")
	if err != nil {
		return nil, err
	}
	d.Arc = arc
	fmt.Printf("  %dx%d cells, %d days\n", arc.Ny, arc.Nx, len(arc.T))

	println("match chlorophyll observations..")
	obs, err := chl.LoadFile(cfg.ChlCsv)
	if err != nil {
		return nil, err
	}
	if d.Obs, d.NDropped, err = chl.Match(obs, d.Net, d.Arc, cfg.SnapM); err != nil {
		return nil, err
	}
	fmt.Printf("  %d matched, %d dropped\n", len(d.Obs), d.NDropped)

	for _, g := range cfg.Gauges {
		st, err := gauge.LoadFile(g.Csv, g.Name, g.Lat, g.Lon)
		if err != nil {
			return nil, err
		}
		d.Gauges = append(d.Gauges, st)
	}

	if len(cfg.Places) > 0 {
		towns, err := places.Load(cfg.Places...)
		if err != nil {
			return nil, err
		}
		if d.Towns, err = places.Snap(towns, d.Net, cfg.SnapM); err != nil {
			return nil, err
		}
	}

	return d, nil
}
