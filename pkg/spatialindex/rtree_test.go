package spatialindex

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
)

func TestNodeRTreeNearestWithin(t *testing.T) {
	tr := NewNodeRTree()
	tr.Insert(0, orb.Point{0, 0})
	tr.Insert(1, orb.Point{100, 0})
	tr.Insert(2, orb.Point{50, 50})

	id, dist, found := tr.NearestWithin(orb.Point{52, 48}, 10)
	if !found || id != 2 {
		t.Fatalf("nearest = (%d, %v), want node 2", id, found)
	}
	if want := math.Hypot(2, 2); math.Abs(dist-want) > 1e-9 {
		t.Errorf("distance = %v, want %v", dist, want)
	}

	if _, _, found := tr.NearestWithin(orb.Point{500, 500}, 10); found {
		t.Error("no node within radius, found should be false")
	}

	// candidate inside the search box but outside the radius
	if _, _, found := tr.NearestWithin(orb.Point{8, 8}, 10); found {
		t.Error("node at corner distance ~11.3 must not match radius 10")
	}
}

func TestEdgeRTreeNearestWithin(t *testing.T) {
	tr := NewEdgeRTree()
	tr.Insert(0, orb.LineString{{0, 0}, {100, 0}})
	tr.Insert(1, orb.LineString{{0, 50}, {100, 50}})

	id, dist, found := tr.NearestWithin(orb.Point{50, 10}, 20)
	if !found || id != 0 {
		t.Fatalf("nearest edge = (%d, %v), want edge 0", id, found)
	}
	if math.Abs(dist-10) > 1e-9 {
		t.Errorf("distance = %v, want 10", dist)
	}

	id, _, found = tr.NearestWithin(orb.Point{50, 40}, 20)
	if !found || id != 1 {
		t.Errorf("nearest edge = (%d, %v), want edge 1", id, found)
	}

	if _, _, found := tr.NearestWithin(orb.Point{50, 500}, 20); found {
		t.Error("no edge within radius, found should be false")
	}

	// degenerate geometries are never indexed
	tr.Insert(9, orb.LineString{{5, 5}})
	if id, _, found := tr.NearestWithin(orb.Point{5, 5}, 1); found && id == 9 {
		t.Error("degenerate edge must not be indexed")
	}
}
