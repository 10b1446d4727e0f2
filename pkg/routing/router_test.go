package routing

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"go.uber.org/zap"

	"github.com/urbansim/hazardroute/pkg"
	"github.com/urbansim/hazardroute/pkg/geo"
	"github.com/urbansim/hazardroute/pkg/graph"
	"github.com/urbansim/hazardroute/pkg/spatialindex"
)

func newTestNetwork() *graph.Network {
	net := &graph.Network{
		Graph:        graph.New(),
		NodeIndex:    spatialindex.NewNodeRTree(),
		EdgeIndex:    spatialindex.NewEdgeRTree(),
		BlockedNodes: geojson.NewFeatureCollection(),
		BlockedEdges: geojson.NewFeatureCollection(),
	}
	net.SetQuerySnapRadii(pkg.NODE_SNAP_RADIUS_QUERY, pkg.EDGE_SNAP_RADIUS_QUERY)
	return net
}

func addNode(net *graph.Network, x, y float64) int {
	p := orb.Point{x, y}
	id := net.Graph.AddNode(p, false)
	net.NodeIndex.Insert(id, p)
	return id
}

func addEdge(net *graph.Network, u, v int, cost float64) int {
	seg := orb.LineString{net.Graph.Node(u).Point, net.Graph.Node(v).Point}
	length := geo.LineLength(seg)
	id := net.Graph.AddEdge(graph.Edge{
		U:        u,
		V:        v,
		Cost:     cost,
		Length:   length,
		Geometry: seg,
	})
	net.EdgeIndex.Insert(id, seg)
	return id
}

// triangle: the direct A-B edge is long under the weighted metric, the detour
// via C is cheap.
func newTriangleNetwork() *graph.Network {
	net := newTestNetwork()
	a := addNode(net, 0, 0)
	b := addNode(net, 1000, 0)
	c := addNode(net, 500, 400)
	addEdge(net, a, b, 1000)
	addEdge(net, a, c, 10)
	addEdge(net, c, b, 10)
	return net
}

func TestRoutePairPrefersWeightedDetour(t *testing.T) {
	net := newTriangleNetwork()
	r := NewRouter(net, zap.NewNop())

	res := r.RoutePair(Pair{ID: 1, Origin: orb.Point{0, 0}, Destination: orb.Point{1000, 0}})
	if res.Status != StatusOK {
		t.Fatalf("status = %q, want %q", res.Status, StatusOK)
	}
	if res.UsedFallback || res.UsedConnector {
		t.Errorf("unexpected fallback/connector flags: %+v", res)
	}

	// detour via C: two legs of ~640.3m each
	want := 2 * math.Hypot(500, 400)
	if math.Abs(res.Length-want) > 0.1 {
		t.Errorf("length = %v, want ~%v (detour via C)", res.Length, want)
	}

	if d := geo.Distance(res.Geometry[0], orb.Point{0, 0}); d > pkg.STITCH_TOLERANCE {
		t.Errorf("route starts %vm from origin", d)
	}
	if d := geo.Distance(res.Geometry[len(res.Geometry)-1], orb.Point{1000, 0}); d > pkg.STITCH_TOLERANCE {
		t.Errorf("route ends %vm from destination", d)
	}
}

func TestRoutePairFallsBackToLengthMetric(t *testing.T) {
	net := newTestNetwork()
	a := addNode(net, 0, 0)
	b := addNode(net, 1000, 0)
	// untraversable under the weighted metric, fine under raw length
	addEdge(net, a, b, math.Inf(1))

	r := NewRouter(net, zap.NewNop())
	res := r.RoutePair(Pair{ID: 1, Origin: orb.Point{0, 0}, Destination: orb.Point{1000, 0}})

	if res.Status != StatusOK {
		t.Fatalf("status = %q, want %q", res.Status, StatusOK)
	}
	if !res.UsedFallback {
		t.Error("expected the length metric fallback")
	}
	if math.Abs(res.Length-1000) > 1e-9 {
		t.Errorf("length = %v, want 1000", res.Length)
	}
}

func TestRoutePairDisconnectedComponents(t *testing.T) {
	net := newTestNetwork()
	a := addNode(net, 0, 0)
	b := addNode(net, 1000, 0)
	addEdge(net, a, b, 1000)
	c := addNode(net, 10000, 10000)
	d := addNode(net, 11000, 10000)
	addEdge(net, c, d, 1000)

	r := NewRouter(net, zap.NewNop())
	res := r.RoutePair(Pair{ID: 1, Origin: orb.Point{0, 0}, Destination: orb.Point{10000, 10000}})

	if res.Status != StatusNoPath {
		t.Errorf("status = %q, want %q", res.Status, StatusNoPath)
	}
	if res.Geometry != nil {
		t.Error("failed pair must carry no geometry")
	}
}

func TestRoutePairSnapFailure(t *testing.T) {
	net := newTriangleNetwork()
	r := NewRouter(net, zap.NewNop())

	res := r.RoutePair(Pair{ID: 7, Origin: orb.Point{99999, 99999}, Destination: orb.Point{1000, 0}})
	if res.Status != StatusSnapFailed {
		t.Errorf("status = %q, want %q", res.Status, StatusSnapFailed)
	}
}

func TestRoutePairCollapsedEndpoints(t *testing.T) {
	net := newTriangleNetwork()
	r := NewRouter(net, zap.NewNop())

	// both query points snap onto node A
	res := r.RoutePair(Pair{ID: 2, Origin: orb.Point{0, 0}, Destination: orb.Point{5, 5}})
	if res.Status != StatusNoPath {
		t.Errorf("status = %q, want %q", res.Status, StatusNoPath)
	}
}

func TestRoutePairViaConnector(t *testing.T) {
	net := newTriangleNetwork()
	r := NewRouter(net, zap.NewNop())

	// origin is 40m off the A-B edge and >30m from every node
	origin := orb.Point{200, 40}
	res := r.RoutePair(Pair{ID: 3, Origin: origin, Destination: orb.Point{1000, 0}})

	if res.Status != StatusOK {
		t.Fatalf("status = %q, want %q", res.Status, StatusOK)
	}
	if !res.UsedConnector {
		t.Error("expected a connector snap")
	}
	if d := geo.Distance(res.Geometry[0], origin); d > pkg.STITCH_TOLERANCE {
		t.Errorf("route starts %vm from origin", d)
	}
}

func TestRouteAllMeta(t *testing.T) {
	net := newTriangleNetwork()
	r := NewRouter(net, zap.NewNop())

	pairs := []Pair{
		{ID: 1, Origin: orb.Point{0, 0}, Destination: orb.Point{1000, 0}},
		{ID: 2, Origin: orb.Point{99999, 99999}, Destination: orb.Point{1000, 0}},
		{ID: 3, Origin: orb.Point{0, 0}, Destination: orb.Point{500, 400}},
	}

	results, meta := r.RouteAll(pairs, 2)

	if meta.PairsTotal != 3 {
		t.Errorf("pairs_total = %d, want 3", meta.PairsTotal)
	}
	if meta.PairsProcessed != 2 {
		t.Errorf("pairs_processed = %d, want 2", meta.PairsProcessed)
	}
	if meta.OK != 1 || meta.NoPath != 1 {
		t.Errorf("ok/no_path = %d/%d, want 1/1", meta.OK, meta.NoPath)
	}
	if len(results) != 2 {
		t.Errorf("results = %d, want 2", len(results))
	}
}

func TestRouteAllNoCap(t *testing.T) {
	net := newTriangleNetwork()
	r := NewRouter(net, zap.NewNop())

	pairs := []Pair{
		{ID: 1, Origin: orb.Point{0, 0}, Destination: orb.Point{1000, 0}},
	}
	_, meta := r.RouteAll(pairs, 0)
	if meta.PairsProcessed != 1 {
		t.Errorf("pairs_processed = %d, want 1", meta.PairsProcessed)
	}
}

func TestRouteAllEmpty(t *testing.T) {
	net := newTriangleNetwork()
	r := NewRouter(net, zap.NewNop())

	results, meta := r.RouteAll(nil, 10)
	if len(results) != 0 {
		t.Errorf("results = %d, want 0", len(results))
	}
	if meta != (BatchMeta{}) {
		t.Errorf("meta = %+v, want zero", meta)
	}
}

func TestPairsFromPoints(t *testing.T) {
	origins := map[int]orb.Point{
		3: {3, 0},
		1: {1, 0},
		9: {9, 0}, // no matching destination
	}
	destinations := map[int]orb.Point{
		1: {1, 1},
		3: {3, 1},
		5: {5, 1}, // no matching origin
	}

	pairs := PairsFromPoints(origins, destinations)
	if len(pairs) != 2 {
		t.Fatalf("pairs = %d, want 2", len(pairs))
	}
	if pairs[0].ID != 1 || pairs[1].ID != 3 {
		t.Errorf("pair order = [%d %d], want [1 3]", pairs[0].ID, pairs[1].ID)
	}
	if pairs[0].Origin != (orb.Point{1, 0}) || pairs[0].Destination != (orb.Point{1, 1}) {
		t.Errorf("pair 1 = %+v", pairs[0])
	}
}
