package rivnet

import (
	"fmt"
	"math"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/shp"

	"github.com/gdkrmr/koehler-et-al-prymnesium-bloom/crs"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// segments are quantized to a 1 m lattice when noding; INSPIRE digitization
// is well below this error.
const quant = 1.

// Load reads a watercourse-link shapefile, re-projects it to UTM 33N and
// builds the noded network. prune drops disconnected fragments with fewer
// vertices (digitization slivers); anything larger that remains disconnected
// from the mouth is an error.
func Load(shpfp string, mouthLat, mouthLon float64, prune int) (*Network, error) {
	dec, err := shp.NewDecoder(shpfp)
	if err != nil {
		return nil, fmt.Errorf("rivnet: %v", err)
	}
	defer dec.Close()

	sr, err := dec.SR()
	if err != nil {
		return nil, fmt.Errorf("rivnet: reading %s spatial reference: %v", shpfp, err)
	}
	trans, err := crs.ToUTM33(sr)
	if err != nil {
		return nil, err
	}

	var lines [][]XY
	for {
		g, _, more := dec.DecodeRowFields()
		if !more {
			break
		}
		gg, err := g.Transform(trans)
		if err != nil {
			return nil, fmt.Errorf("rivnet: %v", err)
		}
		switch t := gg.(type) {
		case geom.LineString:
			lines = append(lines, toXY(t))
		case geom.MultiLineString:
			for _, ls := range t {
				lines = append(lines, toXY(ls))
			}
		default:
			return nil, fmt.Errorf("rivnet: %s: unexpected geometry %T", shpfp, gg)
		}
	}
	if err := dec.Error(); err != nil {
		return nil, fmt.Errorf("rivnet: %v", err)
	}

	tm, err := crs.LonLatToUTM33()
	if err != nil {
		return nil, err
	}
	mx, my, err := tm(mouthLon, mouthLat)
	if err != nil {
		return nil, fmt.Errorf("rivnet: projecting mouth: %v", err)
	}
	return New(lines, XY{mx, my}, prune)
}

func toXY(ls geom.LineString) []XY {
	o := make([]XY, len(ls))
	for i, p := range ls {
		o[i] = XY{p.X, p.Y}
	}
	return o
}

// New nodes the line work into a graph, prunes small disconnected
// fragments, locates the mouth vertex and runs a single-source shortest
// path from it. Coordinates are metres.
func New(lines [][]XY, mouth XY, prune int) (*Network, error) {
	n := &Network{}

	// node coincident endpoints
	vid := map[[2]int64]int{}
	node := func(p XY) int {
		k := [2]int64{int64(math.Round(p.X / quant)), int64(math.Round(p.Y / quant))}
		if i, ok := vid[k]; ok {
			return i
		}
		i := len(n.V)
		vid[k] = i
		n.V = append(n.V, p)
		return i
	}

	g := simple.NewWeightedUndirectedGraph(0, math.Inf(1))
	for _, ln := range lines {
		for i := 1; i < len(ln); i++ {
			u, v := node(ln[i-1]), node(ln[i])
			if u == v {
				continue // collapsed by quantization
			}
			if g.HasEdgeBetween(int64(u), int64(v)) {
				continue // duplicate line work
			}
			w := math.Hypot(ln[i].X-ln[i-1].X, ln[i].Y-ln[i-1].Y)
			g.SetWeightedEdge(simple.WeightedEdge{F: simple.Node(u), T: simple.Node(v), W: w})
			n.Nseg++
		}
	}
	if len(n.V) == 0 {
		return nil, fmt.Errorf("rivnet: no line work")
	}

	// drop digitization slivers
	for _, cc := range topo.ConnectedComponents(g) {
		if len(cc) < prune {
			for _, nd := range cc {
				g.RemoveNode(nd.ID())
			}
		}
	}
	if nc := len(topo.ConnectedComponents(g)); nc != 1 {
		return nil, fmt.Errorf("rivnet: network splits into %d components (prune=%d)", nc, prune)
	}

	// mouth = nearest retained vertex
	imo, dmo := -1, math.Inf(1)
	for i, p := range n.V {
		if g.Node(int64(i)) == nil {
			continue
		}
		if d := math.Hypot(p.X-mouth.X, p.Y-mouth.Y); d < dmo {
			imo, dmo = i, d
		}
	}
	n.Mouth = imo

	pt := path.DijkstraFrom(g.Node(int64(imo)), g)
	n.Dist = make([]float64, len(n.V))
	for i := range n.V {
		if g.Node(int64(i)) == nil {
			n.Dist[i] = math.NaN()
			continue
		}
		n.Dist[i] = pt.WeightTo(int64(i)) / 1000.
	}
	return n, n.check()
}
