// Package places loads the GeoJSON city/town layers used to annotate the
// longitudinal profile axis.
package places

import (
	"fmt"
	"os"

	geom "github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/gdkrmr/koehler-et-al-prymnesium-bloom/crs"
	"github.com/gdkrmr/koehler-et-al-prymnesium-bloom/rivnet"
)

// Town is a labelled point; Rkm is set by Snap.
type Town struct {
	Name     string
	Lat, Lon float64
	Rkm      float64
}

// Load reads point features from one or more GeoJSON files. The label is
// taken from the "name" (or "NAME") property; unnamed and non-point
// features are skipped.
func Load(fps ...string) ([]Town, error) {
	var towns []Town
	for _, fp := range fps {
		b, err := os.ReadFile(fp)
		if err != nil {
			return nil, fmt.Errorf("places: %v", err)
		}
		tt, err := Parse(b)
		if err != nil {
			return nil, fmt.Errorf("places: %s: %v", fp, err)
		}
		towns = append(towns, tt...)
	}
	return towns, nil
}

// Parse decodes a GeoJSON feature collection.
func Parse(b []byte) ([]Town, error) {
	var fc geojson.FeatureCollection
	if err := fc.UnmarshalJSON(b); err != nil {
		return nil, err
	}
	var towns []Town
	for _, f := range fc.Features {
		p, ok := f.Geometry.(*geom.Point)
		if !ok {
			continue
		}
		name := property(f.Properties, "name", "NAME")
		if name == "" {
			continue
		}
		towns = append(towns, Town{Name: name, Lon: p.X(), Lat: p.Y()})
	}
	return towns, nil
}

func property(props map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		if v, ok := props[k].(string); ok {
			return v
		}
	}
	return ""
}

// Snap assigns each town its river-km and keeps those within tol metres of
// the network.
func Snap(towns []Town, net *rivnet.Network, tol float64) ([]Town, error) {
	tr, err := crs.LonLatToUTM33()
	if err != nil {
		return nil, err
	}
	var out []Town
	for _, t := range towns {
		x, y, err := tr(t.Lon, t.Lat)
		if err != nil {
			return nil, fmt.Errorf("places: projecting %s: %v", t.Name, err)
		}
		vid, _, ok := net.Snap(x, y, tol)
		if !ok {
			continue
		}
		t.Rkm = net.Rkm(vid)
		out = append(out, t)
	}
	return out, nil
}
