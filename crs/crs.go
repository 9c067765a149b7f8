// Package crs fixes the working coordinate system for the Oder basin. All
// network and matching geometry is computed in UTM zone 33N metres; inputs
// arrive in geographic coordinates (or whatever the shapefile .prj says).
package crs

import (
	"fmt"

	"github.com/ctessum/geom/proj"
	"github.com/im7mortal/UTM"
)

const (
	longlatProj = "+proj=longlat +datum=WGS84 +no_defs"
	utm33Proj   = "+proj=utm +zone=33 +ellps=WGS84 +datum=WGS84 +units=m +no_defs"
)

// LonLatToUTM33 returns a transformer taking (lon,lat) to UTM 33N (x,y) [m].
func LonLatToUTM33() (proj.Transformer, error) {
	src, err := proj.Parse(longlatProj)
	if err != nil {
		return nil, fmt.Errorf("crs: %v", err)
	}
	dst, err := proj.Parse(utm33Proj)
	if err != nil {
		return nil, fmt.Errorf("crs: %v", err)
	}
	t, err := src.NewTransform(dst)
	if err != nil {
		return nil, fmt.Errorf("crs: %v", err)
	}
	return t, nil
}

// ToUTM33 returns a transformer from an arbitrary source reference system
// (typically a shapefile's spatial reference) to UTM 33N.
func ToUTM33(src *proj.SR) (proj.Transformer, error) {
	dst, err := proj.Parse(utm33Proj)
	if err != nil {
		return nil, fmt.Errorf("crs: %v", err)
	}
	t, err := src.NewTransform(dst)
	if err != nil {
		return nil, fmt.Errorf("crs: %v", err)
	}
	return t, nil
}

// ToLatLon inverts UTM 33N coordinates back to geographic, for report tables.
func ToLatLon(x, y float64) (lat, lon float64, err error) {
	lat, lon, err = UTM.ToLatLon(x, y, 33, "", true)
	if err != nil {
		return 0, 0, fmt.Errorf("crs: ToLatLon (%.0f, %.0f): %v", x, y, err)
	}
	return lat, lon, nil
}
