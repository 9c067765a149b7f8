// Package bloom ties the Oder 2022 Prymnesium-bloom analysis together: it
// builds the river network, the discharge archive and the matched
// chlorophyll record, and renders the report.
package bloom

import (
	"github.com/gdkrmr/koehler-et-al-prymnesium-bloom/chl"
	"github.com/gdkrmr/koehler-et-al-prymnesium-bloom/discharge"
	"github.com/gdkrmr/koehler-et-al-prymnesium-bloom/gauge"
	"github.com/gdkrmr/koehler-et-al-prymnesium-bloom/places"
	"github.com/gdkrmr/koehler-et-al-prymnesium-bloom/rivnet"
)

// Domain is everything one analysis run works from.
type Domain struct {
	Cfg *Config

	Net    *rivnet.Network
	Arc    *discharge.Archive
	Obs    []chl.Obs // matched observations
	Gauges []*gauge.Station
	Towns  []places.Town

	NDropped int // observations lost to snapping/masking
}
