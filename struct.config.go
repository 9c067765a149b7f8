package bloom

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/maseology/mmio"
)

// GaugeDef locates one gauge-station record. Cell, when set (>= 0),
// overrides the snapped discharge cell.
type GaugeDef struct {
	Name     string
	Lat, Lon float64
	Csv      string
	Cell     int
}

// Config is the run control, read from a .bloom control file.
type Config struct {
	Prfx       string // model prefix; gobs and outputs hang off it
	NetworkShp string
	ChlCsv     string
	NC         map[int]string // year -> cropped NetCDF path
	Gauges     []GaugeDef
	Places     []string

	MouthLat, MouthLon float64
	BloomYear          int
	Prune              int     // min vertices of a retained network fragment
	SnapM              float64 // max snap distance [m]
	BinKM              float64 // profile bin width [km]
	MaskCMS            float64 // low-discharge cell mask threshold [m³/s]
}

// LoadConfig reads a control file of the form
//
//	prfx       out/oder.
//	networkshp dat/watercourse.shp
//	chlcsv     dat/chl.csv
//	nc         2015;dat/discharge_2015.nc 2016;dat/discharge_2016.nc
//	gauge      frankfurt;52.335;14.547;dat/frankfurt.csv
//	places     dat/towns.geojson
//	mouth      53.654 14.560
//	bloomyear  2022
func LoadConfig(fp string) (*Config, error) {
	ins := mmio.NewInstruct(fp)

	one := func(k string) (string, error) {
		if v, ok := ins.Param[k]; ok && len(v) > 0 {
			return v[0], nil
		}
		return "", fmt.Errorf("config: %s: missing parameter %q", fp, k)
	}

	cfg := &Config{ // defaults
		Prune:     50,
		SnapM:     2000.,
		BinKM:     10.,
		MaskCMS:   5.,
		BloomYear: 2022,
		NC:        map[int]string{},
	}
	var err error
	if cfg.Prfx, err = one("prfx"); err != nil {
		return nil, err
	}
	if cfg.NetworkShp, err = one("networkshp"); err != nil {
		return nil, err
	}
	if cfg.ChlCsv, err = one("chlcsv"); err != nil {
		return nil, err
	}

	m, ok := ins.Param["mouth"]
	if !ok || len(m) < 2 {
		return nil, fmt.Errorf("config: %s: mouth needs lat lon", fp)
	}
	if cfg.MouthLat, err = strconv.ParseFloat(m[0], 64); err != nil {
		return nil, fmt.Errorf("config: mouth: %v", err)
	}
	if cfg.MouthLon, err = strconv.ParseFloat(m[1], 64); err != nil {
		return nil, fmt.Errorf("config: mouth: %v", err)
	}

	for _, v := range ins.Param["nc"] {
		y, p, err := parseNCDef(v)
		if err != nil {
			return nil, fmt.Errorf("config: %v", err)
		}
		cfg.NC[y] = p
	}
	if len(cfg.NC) == 0 {
		return nil, fmt.Errorf("config: %s: no nc entries", fp)
	}
	for _, v := range ins.Param["gauge"] {
		g, err := parseGaugeDef(v)
		if err != nil {
			return nil, fmt.Errorf("config: %v", err)
		}
		cfg.Gauges = append(cfg.Gauges, g)
	}
	cfg.Places = append(cfg.Places, ins.Param["places"]...)

	optInt := func(k string, dst *int) error {
		if v, ok := ins.Param[k]; ok && len(v) > 0 {
			i, err := strconv.Atoi(v[0])
			if err != nil {
				return fmt.Errorf("config: %s: %v", k, err)
			}
			*dst = i
		}
		return nil
	}
	optFloat := func(k string, dst *float64) error {
		if v, ok := ins.Param[k]; ok && len(v) > 0 {
			f, err := strconv.ParseFloat(v[0], 64)
			if err != nil {
				return fmt.Errorf("config: %s: %v", k, err)
			}
			*dst = f
		}
		return nil
	}
	if err := optInt("bloomyear", &cfg.BloomYear); err != nil {
		return nil, err
	}
	if err := optInt("prune", &cfg.Prune); err != nil {
		return nil, err
	}
	if err := optFloat("snapm", &cfg.SnapM); err != nil {
		return nil, err
	}
	if err := optFloat("binkm", &cfg.BinKM); err != nil {
		return nil, err
	}
	if err := optFloat("maskcms", &cfg.MaskCMS); err != nil {
		return nil, err
	}
	return cfg, nil
}

// OutDir is where the rendered report lands.
func (cfg *Config) OutDir() string { return mmio.GetFileDir(cfg.Prfx) + "/report/" }

func parseNCDef(s string) (int, string, error) {
	y, p, ok := strings.Cut(s, ";")
	if !ok {
		return 0, "", fmt.Errorf("nc entry %q not of form year;path", s)
	}
	yi, err := strconv.Atoi(y)
	if err != nil {
		return 0, "", fmt.Errorf("nc entry %q: %v", s, err)
	}
	return yi, p, nil
}

// parseGaugeDef reads name;lat;lon;path with an optional trailing
// cell-index override.
func parseGaugeDef(s string) (GaugeDef, error) {
	f := strings.Split(s, ";")
	if len(f) != 4 && len(f) != 5 {
		return GaugeDef{}, fmt.Errorf("gauge entry %q not of form name;lat;lon;path[;cell]", s)
	}
	lat, err := strconv.ParseFloat(f[1], 64)
	if err != nil {
		return GaugeDef{}, fmt.Errorf("gauge entry %q: %v", s, err)
	}
	lon, err := strconv.ParseFloat(f[2], 64)
	if err != nil {
		return GaugeDef{}, fmt.Errorf("gauge entry %q: %v", s, err)
	}
	g := GaugeDef{Name: f[0], Lat: lat, Lon: lon, Csv: f[3], Cell: -1}
	if len(f) == 5 {
		if g.Cell, err = strconv.Atoi(f[4]); err != nil {
			return GaugeDef{}, fmt.Errorf("gauge entry %q: %v", s, err)
		}
	}
	return g, nil
}
