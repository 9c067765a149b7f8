package places

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fc = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature",
     "geometry": {"type": "Point", "coordinates": [14.55, 52.35]},
     "properties": {"name": "Frankfurt (Oder)", "population": 57015}},
    {"type": "Feature",
     "geometry": {"type": "Point", "coordinates": [14.64, 52.15]},
     "properties": {"NAME": "Eisenhüttenstadt"}},
    {"type": "Feature",
     "geometry": {"type": "Point", "coordinates": [15.0, 52.0]},
     "properties": {"population": 10}},
    {"type": "Feature",
     "geometry": {"type": "LineString", "coordinates": [[14,52],[15,52]]},
     "properties": {"name": "not a town"}}
  ]
}`

func TestParse(t *testing.T) {
	towns, err := Parse([]byte(fc))
	require.NoError(t, err)
	require.Len(t, towns, 2, "unnamed and non-point features are skipped")

	assert.Equal(t, "Frankfurt (Oder)", towns[0].Name)
	assert.InDelta(t, 14.55, towns[0].Lon, 1e-9)
	assert.InDelta(t, 52.35, towns[0].Lat, 1e-9)
	assert.Equal(t, "Eisenhüttenstadt", towns[1].Name)
}

func TestParseGarbage(t *testing.T) {
	_, err := Parse([]byte("not json"))
	assert.Error(t, err)
}
