package spatialindex

import (
	"github.com/paulmach/orb"
	"github.com/tidwall/rtree"

	"github.com/urbansim/hazardroute/pkg/geo"
)

// NodeRTree r-tree over graph node positions, for snap-radius queries in the
// planar working projection. the snapper inserts synthesized nodes during a
// request, so the index stays in sync with the graph arena.
type NodeRTree struct {
	tr rtree.RTreeG[int]
	// node positions are owned by the graph arena, the index keeps its own
	// copy keyed by id so a search does not need the graph back.
	pos map[int]orb.Point
}

func NewNodeRTree() *NodeRTree {
	return &NodeRTree{pos: make(map[int]orb.Point)}
}

func (rt *NodeRTree) Insert(id int, p orb.Point) {
	rt.pos[id] = p
	rt.tr.Insert([2]float64{p[0], p[1]}, [2]float64{p[0], p[1]}, id)
}

// NearestWithin nearest node within radius of q by euclidean distance.
func (rt *NodeRTree) NearestWithin(q orb.Point, radius float64) (int, float64, bool) {
	min := [2]float64{q[0] - radius, q[1] - radius}
	max := [2]float64{q[0] + radius, q[1] + radius}

	bestID, bestDist, found := -1, radius, false
	rt.tr.Search(min, max, func(_, _ [2]float64, id int) bool {
		if d := geo.Distance(q, rt.pos[id]); d <= bestDist {
			bestID, bestDist, found = id, d, true
		}
		return true
	})
	return bestID, bestDist, found
}

// EdgeRTree r-tree over edge geometries, bounding box per edge.
type EdgeRTree struct {
	tr   rtree.RTreeG[int]
	geom map[int]orb.LineString
}

func NewEdgeRTree() *EdgeRTree {
	return &EdgeRTree{geom: make(map[int]orb.LineString)}
}

func (rt *EdgeRTree) Insert(id int, line orb.LineString) {
	if len(line) < 2 {
		return
	}
	rt.geom[id] = line
	b := line.Bound()
	rt.tr.Insert([2]float64{b.Min[0], b.Min[1]}, [2]float64{b.Max[0], b.Max[1]}, id)
}

// NearestWithin nearest edge within radius of q, by distance from q to the
// edge geometry.
func (rt *EdgeRTree) NearestWithin(q orb.Point, radius float64) (int, float64, bool) {
	min := [2]float64{q[0] - radius, q[1] - radius}
	max := [2]float64{q[0] + radius, q[1] + radius}

	bestID, bestDist, found := -1, radius, false
	rt.tr.Search(min, max, func(_, _ [2]float64, id int) bool {
		if d := geo.DistanceToLine(q, rt.geom[id]); d <= bestDist {
			bestID, bestDist, found = id, d, true
		}
		return true
	})
	return bestID, bestDist, found
}
