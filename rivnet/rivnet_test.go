package rivnet

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// yNetwork is a simple confluence: main stem along the x axis with a
// tributary joining at x=2000.
//
//	(0,0) mouth — (1000,0) — (2000,0) — (3000,0)
//	                             |
//	                         (2000,1000)
func yNetwork() [][]XY {
	return [][]XY{
		{{0, 0}, {1000, 0}, {2000, 0}},
		{{2000, 0}, {3000, 0}},
		{{2000, 1000}, {2000, 0}},
	}
}

func TestNewDistances(t *testing.T) {
	n, err := New(yNetwork(), XY{-5, 3}, 0)
	require.NoError(t, err)

	assert.Equal(t, 4, n.Nseg)
	assert.Equal(t, XY{0, 0}, n.V[n.Mouth])
	assert.InDelta(t, 0., n.Dist[n.Mouth], 1e-9)

	vid, _, ok := n.Snap(3000, 2, 10)
	require.True(t, ok)
	assert.InDelta(t, 3., n.Rkm(vid), 1e-9)

	vid, _, ok = n.Snap(2000, 1000, 10)
	require.True(t, ok)
	assert.InDelta(t, 3., n.Rkm(vid), 1e-9) // 2 km stem + 1 km tributary
}

func TestNewNodesSharedEndpoints(t *testing.T) {
	// endpoints within the quantization lattice are merged
	lines := [][]XY{
		{{0, 0}, {1000, 0}},
		{{1000, 0.3}, {2000, 0}},
	}
	n, err := New(lines, XY{0, 0}, 0)
	require.NoError(t, err)
	assert.Len(t, n.V, 3)

	vid, _, ok := n.Snap(2000, 0, 10)
	require.True(t, ok)
	assert.InDelta(t, 2., n.Rkm(vid), 1e-3)
}

func TestNewDuplicateSegments(t *testing.T) {
	// INSPIRE layers carry the odd doubly-digitized link; a repeated
	// segment must not inflate the segment count
	lines := append(yNetwork(), []XY{{1000, 0}, {2000, 0}})
	n, err := New(lines, XY{-5, 3}, 0)
	require.NoError(t, err)
	assert.Equal(t, 4, n.Nseg)
	assert.Len(t, n.V, 5)
}

func TestNewDisconnected(t *testing.T) {
	lines := [][]XY{
		{{0, 0}, {1000, 0}, {2000, 0}, {3000, 0}},
		{{50000, 50000}, {51000, 50000}}, // distant fragment
	}

	_, err := New(lines, XY{0, 0}, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 components")

	// pruning shrugs off the sliver
	n, err := New(lines, XY{0, 0}, 3)
	require.NoError(t, err)
	vid, _, ok := n.Snap(51000, 50000, 10)
	assert.False(t, ok, "pruned vertex must not be snappable; got %d", vid)
}

func TestSnapTolerance(t *testing.T) {
	n, err := New(yNetwork(), XY{0, 0}, 0)
	require.NoError(t, err)

	_, d, ok := n.Snap(1000, 500, 100)
	assert.False(t, ok)
	assert.InDelta(t, 500., d, 1e-9)

	_, _, ok = n.Snap(1000, 500, 600)
	assert.True(t, ok)
}

func TestGobRoundTrip(t *testing.T) {
	n, err := New(yNetwork(), XY{0, 0}, 0)
	require.NoError(t, err)

	fp := filepath.Join(t.TempDir(), "network.gob")
	require.NoError(t, n.SaveGob(fp))

	n2, err := LoadGobNetwork(fp)
	require.NoError(t, err)
	assert.Equal(t, n.Mouth, n2.Mouth)
	assert.Equal(t, n.V, n2.V)
	for i := range n.Dist {
		if math.IsNaN(n.Dist[i]) {
			assert.True(t, math.IsNaN(n2.Dist[i]))
			continue
		}
		assert.InDelta(t, n.Dist[i], n2.Dist[i], 1e-12)
	}
}
