package routing

import (
	"github.com/paulmach/orb"

	"github.com/urbansim/hazardroute/pkg/geo"
	"github.com/urbansim/hazardroute/pkg/graph"
)

// joint tolerance when concatenating edge geometries. edge endpoints resolved
// to the same node can still differ by up to the build snap radius.
const jointEps = 1e-9

// StitchPath merge the traversed edge geometries into one continuous
// linestring. each segment is oriented along the travel direction, duplicate
// joint coordinates are dropped. when consecutive segments are not actually
// contiguous (snap-radius slack, collinear-but-disconnected input lines) the
// coordinates are concatenated anyway; rejecting the pair over snap slack
// would fail routes that are geometrically fine.
func StitchPath(g *graph.Graph, nodeSeq, edgeSeq []int) orb.LineString {
	var out orb.LineString
	for i, eid := range edgeSeq {
		e := g.Edge(eid)
		seg := e.Geometry
		if len(seg) < 2 {
			continue
		}
		if e.U != nodeSeq[i] {
			seg = reverseLine(seg)
		}

		if len(out) == 0 {
			out = append(out, seg...)
			continue
		}
		start := 0
		if samePoint(out[len(out)-1], seg[0]) {
			start = 1
		}
		out = append(out, seg[start:]...)
	}
	return out
}

// RepairEndpoints guarantee the assembled route starts/ends exactly at the
// queried points: when an endpoint is farther than tol from the query point a
// short connector coordinate is inserted.
func RepairEndpoints(line orb.LineString, origin, destination orb.Point, tol float64) orb.LineString {
	if len(line) == 0 {
		return line
	}
	if geo.Distance(line[0], origin) > tol {
		line = append(orb.LineString{origin}, line...)
	}
	if geo.Distance(line[len(line)-1], destination) > tol {
		line = append(line, destination)
	}
	return line
}

func samePoint(a, b orb.Point) bool {
	return geo.Distance(a, b) <= jointEps
}

func reverseLine(line orb.LineString) orb.LineString {
	out := make(orb.LineString, len(line))
	for i, c := range line {
		out[len(line)-1-i] = c
	}
	return out
}
