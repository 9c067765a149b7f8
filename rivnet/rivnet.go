// Package rivnet builds a connected river-network graph from an INSPIRE
// watercourse-link shapefile and computes along-network distance to the
// river mouth for every vertex.
package rivnet

import (
	"fmt"
	"math"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/index/rtree"
	"github.com/ctessum/geom/proj"
)

// XY is a network vertex position in UTM 33N metres.
type XY struct {
	X, Y float64
}

// Network is the noded river graph. Dist holds the along-network distance
// to the mouth [km] per vertex; pruned fragment vertices carry NaN.
type Network struct {
	V     []XY
	Dist  []float64
	Mouth int
	Nseg  int

	tree *rtree.Rtree
}

type vtx struct {
	p  geom.Point
	id int
}

func (v vtx) Bounds() *geom.Bounds { return v.p.Bounds() }

func (v vtx) Similar(g geom.Geom, tolerance float64) bool { return v.p.Similar(g, tolerance) }

func (v vtx) Transform(t proj.Transformer) (geom.Geom, error) { return v.p.Transform(t) }

func (v vtx) Len() int { return v.p.Len() }

func (v vtx) Points() func() geom.Point { return v.p.Points() }

// Snap returns the nearest network vertex within tol metres of (x,y).
func (n *Network) Snap(x, y, tol float64) (int, float64, bool) {
	if n.tree == nil {
		n.tree = rtree.NewTree(25, 50)
		for i, p := range n.V {
			if math.IsNaN(n.Dist[i]) {
				continue
			}
			n.tree.Insert(vtx{geom.Point{X: p.X, Y: p.Y}, i})
		}
	}
	nn := n.tree.NearestNeighbor(geom.Point{X: x, Y: y})
	if nn == nil {
		return -1, math.NaN(), false
	}
	v := nn.(vtx)
	d := math.Hypot(v.p.X-x, v.p.Y-y)
	if d > tol {
		return -1, d, false
	}
	return v.id, d, true
}

// Rkm is the distance to mouth [km] of a snapped vertex.
func (n *Network) Rkm(vid int) float64 { return n.Dist[vid] }

func (n *Network) check() error {
	if n.Mouth < 0 || n.Mouth >= len(n.V) {
		return fmt.Errorf("rivnet: mouth vertex %d out of range", n.Mouth)
	}
	if len(n.Dist) != len(n.V) {
		return fmt.Errorf("rivnet: distance array mismatch %d/%d", len(n.Dist), len(n.V))
	}
	return nil
}
