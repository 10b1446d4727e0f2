package dataset

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"go.uber.org/zap"

	"github.com/urbansim/hazardroute/pkg/util"
)

func writeFC(t *testing.T, dir, name string, fc *geojson.FeatureCollection) {
	t.Helper()
	raw, err := json.Marshal(fc)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), raw, 0o644); err != nil {
		t.Fatal(err)
	}
}

func pointFC(props map[string]interface{}, points ...orb.Point) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, p := range points {
		f := geojson.NewFeature(p)
		for k, v := range props {
			f.Properties[k] = v
		}
		fc.Append(f)
	}
	return fc
}

func lineFC(lines ...orb.LineString) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, l := range lines {
		fc.Append(geojson.NewFeature(l))
	}
	return fc
}

// planarFixture writes a minimal planar dataset into a temp dir.
func planarFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFC(t, dir, "roads.geojson", lineFC(orb.LineString{{0, 0}, {1000, 0}}))
	writeFC(t, dir, "nodes.geojson", pointFC(nil, orb.Point{0, 0}, orb.Point{1000, 0}))
	writeFC(t, dir, "origins.geojson", pointFC(map[string]interface{}{"Id": 1}, orb.Point{5, 5}))
	writeFC(t, dir, "destinations.geojson", pointFC(map[string]interface{}{"Id": 1}, orb.Point{995, 5}))
	return dir
}

func TestLoadRequiredLayers(t *testing.T) {
	dir := planarFixture(t)

	s, err := Load(dir, zap.NewNop())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(s.Roads.Features) != 1 || len(s.Nodes.Features) != 2 {
		t.Errorf("roads/nodes = %d/%d, want 1/2", len(s.Roads.Features), len(s.Nodes.Features))
	}
	// optional layers default to empty collections
	if s.Vegetation == nil || len(s.Vegetation.Features) != 0 {
		t.Error("vegetation should default to an empty collection")
	}
	if s.Buildings == nil || len(s.Buildings.Features) != 0 {
		t.Error("buildings should default to an empty collection")
	}
	if s.Projected {
		t.Error("planar input must not be projected")
	}
}

func TestLoadMissingRequiredLayerFails(t *testing.T) {
	dir := t.TempDir()
	writeFC(t, dir, "roads.geojson", lineFC(orb.LineString{{0, 0}, {10, 0}}))

	_, err := Load(dir, zap.NewNop())
	if err == nil {
		t.Fatal("load without nodes/origins/destinations must fail")
	}
	if util.Code(err) != util.ErrNotFound {
		t.Errorf("error code = %v, want ErrNotFound", util.Code(err))
	}
}

func TestLoadNodsFallback(t *testing.T) {
	dir := t.TempDir()
	writeFC(t, dir, "roads.geojson", lineFC(orb.LineString{{0, 0}, {1000, 0}}))
	writeFC(t, dir, "nods.geojson", pointFC(nil, orb.Point{0, 0}))
	writeFC(t, dir, "origins.geojson", pointFC(map[string]interface{}{"Id": 1}, orb.Point{5, 5}))
	writeFC(t, dir, "destinations.geojson", pointFC(map[string]interface{}{"Id": 1}, orb.Point{995, 5}))

	s, err := Load(dir, zap.NewNop())
	if err != nil {
		t.Fatalf("load with nods fallback: %v", err)
	}
	if len(s.Nodes.Features) != 1 {
		t.Errorf("nodes = %d, want 1", len(s.Nodes.Features))
	}
}

func TestCorrelationIDsDefaulted(t *testing.T) {
	dir := t.TempDir()
	writeFC(t, dir, "roads.geojson", lineFC(orb.LineString{{0, 0}, {1000, 0}}))
	writeFC(t, dir, "nodes.geojson", pointFC(nil, orb.Point{0, 0}))
	// no Id property anywhere, lowercase variant on destinations
	writeFC(t, dir, "origins.geojson", pointFC(nil, orb.Point{1, 1}, orb.Point{2, 2}))
	writeFC(t, dir, "destinations.geojson", pointFC(map[string]interface{}{"id": 2}, orb.Point{9, 9}))

	s, err := Load(dir, zap.NewNop())
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	origins := s.OriginPoints()
	if len(origins) != 2 {
		t.Fatalf("origins = %d, want 2 (ids defaulted 1..N)", len(origins))
	}
	if _, ok := origins[1]; !ok {
		t.Error("origin id 1 missing")
	}
	if _, ok := origins[2]; !ok {
		t.Error("origin id 2 missing")
	}

	destinations := s.DestinationPoints()
	if _, ok := destinations[2]; !ok {
		t.Error("lowercase id property not normalized")
	}
}

func TestUserPropertyNormalized(t *testing.T) {
	dir := t.TempDir()
	writeFC(t, dir, "roads.geojson", pointFC(map[string]interface{}{"USER": 0}, orb.Point{0, 0}))
	writeFC(t, dir, "nodes.geojson", pointFC(nil, orb.Point{0, 0}))
	writeFC(t, dir, "origins.geojson", pointFC(map[string]interface{}{"Id": 1}, orb.Point{5, 5}))
	writeFC(t, dir, "destinations.geojson", pointFC(map[string]interface{}{"Id": 1}, orb.Point{995, 5}))

	s, err := Load(dir, zap.NewNop())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := s.Roads.Features[0].Properties.MustInt("user", -1); got != 0 {
		t.Errorf("normalized user = %d, want 0", got)
	}
}

func TestGeographicInputProjected(t *testing.T) {
	dir := t.TempDir()
	writeFC(t, dir, "roads.geojson", lineFC(orb.LineString{{110.36, -7.80}, {110.37, -7.80}}))
	writeFC(t, dir, "nodes.geojson", pointFC(nil, orb.Point{110.36, -7.80}))
	writeFC(t, dir, "origins.geojson", pointFC(map[string]interface{}{"Id": 1}, orb.Point{110.36, -7.80}))
	writeFC(t, dir, "destinations.geojson", pointFC(map[string]interface{}{"Id": 1}, orb.Point{110.37, -7.80}))

	s, err := Load(dir, zap.NewNop())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !s.Projected {
		t.Fatal("geographic input must be projected")
	}

	// working coordinates are planar meters now
	road := s.Roads.Features[0].Geometry.(orb.LineString)
	if road[0][0] > -180 && road[0][0] < 180 && road[0][1] > -90 && road[0][1] < 90 {
		t.Errorf("road not projected: %v", road[0])
	}

	// routes convert back to lon/lat on output
	out := s.ToOutputCRS(road).(orb.LineString)
	if dx := out[0][0] - 110.36; dx > 1e-6 || dx < -1e-6 {
		t.Errorf("unprojected x = %v, want 110.36", out[0][0])
	}
}

func TestStringCorrelationIDParsed(t *testing.T) {
	// shapefile-derived and hand-edited layers carry Id as a string. the
	// correlation join must parse it, and must skip junk without aborting.
	dir := t.TempDir()
	writeFC(t, dir, "roads.geojson", lineFC(orb.LineString{{0, 0}, {1000, 0}}))
	writeFC(t, dir, "nodes.geojson", pointFC(nil, orb.Point{0, 0}))
	origins := pointFC(map[string]interface{}{"Id": "7"}, orb.Point{1, 1})
	origins.Append(pointFC(map[string]interface{}{"Id": "not-a-number"}, orb.Point{2, 2}).Features[0])
	writeFC(t, dir, "origins.geojson", origins)
	writeFC(t, dir, "destinations.geojson", pointFC(map[string]interface{}{"Id": "7"}, orb.Point{9, 9}))

	s, err := Load(dir, zap.NewNop())
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	got := s.OriginPoints()
	if len(got) != 1 {
		t.Fatalf("origins = %d, want 1 (junk id skipped)", len(got))
	}
	if got[7] != (orb.Point{1, 1}) {
		t.Errorf("origin 7 = %v, want {1 1}", got[7])
	}
	if _, ok := s.DestinationPoints()[7]; !ok {
		t.Error("destination with string id 7 missing")
	}
}

func TestDuplicateCorrelationIDFirstWins(t *testing.T) {
	dir := t.TempDir()
	writeFC(t, dir, "roads.geojson", lineFC(orb.LineString{{0, 0}, {1000, 0}}))
	writeFC(t, dir, "nodes.geojson", pointFC(nil, orb.Point{0, 0}))
	writeFC(t, dir, "origins.geojson", pointFC(map[string]interface{}{"Id": 7}, orb.Point{1, 1}, orb.Point{2, 2}))
	writeFC(t, dir, "destinations.geojson", pointFC(map[string]interface{}{"Id": 7}, orb.Point{9, 9}))

	s, err := Load(dir, zap.NewNop())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	origins := s.OriginPoints()
	if len(origins) != 1 {
		t.Fatalf("origins = %d, want 1", len(origins))
	}
	if origins[7] != (orb.Point{1, 1}) {
		t.Errorf("origin 7 = %v, want first feature {1 1}", origins[7])
	}
}
