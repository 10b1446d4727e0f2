// Package routing resolves origin/destination pairs over one request-scoped
// network: snap both endpoints, weighted shortest path with a geometric
// length fallback, stitch the traversed geometries into one continuous route.
package routing

import (
	"github.com/paulmach/orb"
	"go.uber.org/zap"
	"golang.org/x/exp/slices"

	"github.com/urbansim/hazardroute/pkg"
	"github.com/urbansim/hazardroute/pkg/graph"
)

// PairStatus per-pair outcome. the two failure modes are deliberately
// distinguishable: a snap failure means the query point never reached the
// graph, no connected path means both points snapped but no route exists
// under either metric.
type PairStatus string

const (
	StatusOK         PairStatus = "ok"
	StatusSnapFailed PairStatus = "snap failed"
	StatusNoPath     PairStatus = "no connected path"
)

// Pair one origin/destination query, correlated by a shared identifier.
type Pair struct {
	ID          int
	Origin      orb.Point
	Destination orb.Point
}

// PairsFromPoints join origins to destinations on the shared correlation id,
// ordered by id so batches are deterministic. unmatched points are dropped.
func PairsFromPoints(origins, destinations map[int]orb.Point) []Pair {
	ids := make([]int, 0, len(origins))
	for id := range origins {
		if _, ok := destinations[id]; ok {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)

	pairs := make([]Pair, 0, len(ids))
	for _, id := range ids {
		pairs = append(pairs, Pair{
			ID:          id,
			Origin:      origins[id],
			Destination: destinations[id],
		})
	}
	return pairs
}

// PairResult outcome of one pair. Geometry is nil unless Status is ok.
type PairResult struct {
	ID       int
	Status   PairStatus
	Geometry orb.LineString
	// Length sum of traversed segment lengths, not the weighted cost.
	Length float64
	// UsedFallback set when the weighted metric found no path and the raw
	// length metric did.
	UsedFallback bool
	// UsedConnector set when either endpoint was attached via a synthesized
	// connector edge.
	UsedConnector bool
}

// BatchMeta aggregate counts of one routing batch.
type BatchMeta struct {
	PairsTotal     int `json:"pairs_total"`
	PairsProcessed int `json:"pairs_processed"`
	OK             int `json:"ok"`
	NoPath         int `json:"no_path"`
}

// Router runs pairs against one exclusively-owned network. pairs are
// independent, a failure never aborts the batch.
type Router struct {
	net *graph.Network
	log *zap.Logger
}

func NewRouter(net *graph.Network, log *zap.Logger) *Router {
	return &Router{net: net, log: log}
}

// RoutePair snap, search, stitch one pair.
func (r *Router) RoutePair(p Pair) PairResult {
	res := PairResult{ID: p.ID, Status: StatusOK}

	u, connO, okO := r.net.SnapPoint(p.Origin)
	if !okO {
		r.log.Debug("origin snap failed", zap.Int("id", p.ID))
		return PairResult{ID: p.ID, Status: StatusSnapFailed}
	}
	v, connD, okD := r.net.SnapPoint(p.Destination)
	if !okD {
		r.log.Debug("destination snap failed", zap.Int("id", p.ID))
		return PairResult{ID: p.ID, Status: StatusSnapFailed}
	}
	res.UsedConnector = connO || connD

	if u == v {
		// both ends collapse onto the same node, there is no traversable
		// route geometry
		return PairResult{ID: p.ID, Status: StatusNoPath}
	}

	dij := NewDijkstra(r.net.Graph)
	nodeSeq, edgeSeq, _, found := dij.ShortestPath(u, v, CostMetric)
	if !found {
		nodeSeq, edgeSeq, _, found = dij.ShortestPath(u, v, LengthMetric)
		res.UsedFallback = found
	}
	if !found {
		return PairResult{ID: p.ID, Status: StatusNoPath}
	}

	for _, eid := range edgeSeq {
		res.Length += r.net.Graph.Edge(eid).Length
	}

	line := StitchPath(r.net.Graph, nodeSeq, edgeSeq)
	if len(line) < 2 {
		return PairResult{ID: p.ID, Status: StatusNoPath}
	}
	res.Geometry = RepairEndpoints(line, p.Origin, p.Destination, pkg.STITCH_TOLERANCE)

	return res
}

// RouteAll process up to maxPairs pairs sequentially. maxPairs <= 0 means no
// cap. the returned results hold one entry per processed pair, failures
// included.
func (r *Router) RouteAll(pairs []Pair, maxPairs int) ([]PairResult, BatchMeta) {
	meta := BatchMeta{PairsTotal: len(pairs)}

	n := len(pairs)
	if maxPairs > 0 && maxPairs < n {
		n = maxPairs
	}
	meta.PairsProcessed = n

	results := make([]PairResult, 0, n)
	for _, p := range pairs[:n] {
		res := r.RoutePair(p)
		if res.Status == StatusOK {
			meta.OK++
		} else {
			meta.NoPath++
		}
		results = append(results, res)
	}
	return results, meta
}
