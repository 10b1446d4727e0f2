// Package dataset loads the named base layers of one deployment area: roads,
// nodes, origins, destinations and the optional vegetation/buildings layers.
// layers may be GeoJSON or ESRI shapefiles. geographic inputs are projected
// into planar meters before any graph work.
package dataset

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"go.uber.org/zap"

	"github.com/urbansim/hazardroute/pkg/geo"
	"github.com/urbansim/hazardroute/pkg/util"
)

// Store immutable base layers of one data directory. safe for concurrent
// readers once loaded; per-request graph builds never mutate it.
type Store struct {
	Roads        *geojson.FeatureCollection
	Nodes        *geojson.FeatureCollection
	Origins      *geojson.FeatureCollection
	Destinations *geojson.FeatureCollection
	Vegetation   *geojson.FeatureCollection
	Buildings    *geojson.FeatureCollection

	// Projected set when the input was geographic and got projected into
	// planar meters; route output is unprojected back in that case.
	Projected bool

	log *zap.Logger
}

// Load read all base layers from dir. roads, nodes (with "nods" fallback),
// origins and destinations are required, this is the one hard failure of the
// whole pipeline. vegetation and buildings default to empty collections.
func Load(dir string, log *zap.Logger) (*Store, error) {
	s := &Store{log: log}

	var err error
	if s.Roads, err = readLayer(dir, "roads"); err != nil {
		return nil, util.WrapErrorf(err, util.ErrNotFound, "dataset: required layer roads")
	}
	if s.Nodes, err = readLayer(dir, "nodes"); err != nil {
		// some deployments ship the node layer under "nods"
		if s.Nodes, err = readLayer(dir, "nods"); err != nil {
			return nil, util.WrapErrorf(err, util.ErrNotFound, "dataset: required layer nodes")
		}
	}
	if s.Origins, err = readLayer(dir, "origins"); err != nil {
		return nil, util.WrapErrorf(err, util.ErrNotFound, "dataset: required layer origins")
	}
	if s.Destinations, err = readLayer(dir, "destinations"); err != nil {
		return nil, util.WrapErrorf(err, util.ErrNotFound, "dataset: required layer destinations")
	}

	if s.Vegetation, err = readLayer(dir, "vegetation"); err != nil {
		log.Info("no vegetation layer, shade zone will be empty")
		s.Vegetation = geojson.NewFeatureCollection()
	}
	if s.Buildings, err = readLayer(dir, "buildings"); err != nil {
		log.Info("no buildings layer, building proximity zone will be empty")
		s.Buildings = geojson.NewFeatureCollection()
	}

	normalizeUserProperty(s.Roads)
	normalizeUserProperty(s.Nodes)
	ensureCorrelationIDs(s.Origins)
	ensureCorrelationIDs(s.Destinations)

	s.projectIfGeographic()

	log.Info("dataset loaded",
		zap.String("dir", dir),
		zap.Int("roads", len(s.Roads.Features)),
		zap.Int("nodes", len(s.Nodes.Features)),
		zap.Int("origins", len(s.Origins.Features)),
		zap.Int("destinations", len(s.Destinations.Features)),
		zap.Bool("projected", s.Projected))

	return s, nil
}

// OriginPoints correlation id -> origin point. the first feature wins on a
// duplicated id.
func (s *Store) OriginPoints() map[int]orb.Point {
	return pointsByID(s.Origins)
}

func (s *Store) DestinationPoints() map[int]orb.Point {
	return pointsByID(s.Destinations)
}

// ToOutputCRS convert a geometry in the working projection back to the CRS
// routes are reported in. identity when the inputs were already planar.
func (s *Store) ToOutputCRS(g orb.Geometry) orb.Geometry {
	if !s.Projected {
		return g
	}
	return geo.UnprojectGeometry(g)
}

func pointsByID(fc *geojson.FeatureCollection) map[int]orb.Point {
	out := make(map[int]orb.Point, len(fc.Features))
	for _, f := range fc.Features {
		pt, ok := f.Geometry.(orb.Point)
		if !ok {
			continue
		}
		id, ok := util.IntValue(f.Properties["Id"])
		if !ok || id < 0 {
			continue
		}
		if _, dup := out[id]; dup {
			continue
		}
		out[id] = pt
	}
	return out
}

func readLayer(dir, base string) (*geojson.FeatureCollection, error) {
	for _, name := range []string{base + ".geojson", base + ".json"} {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err != nil {
			continue
		}
		raw, err := os.ReadFile(p)
		if err != nil {
			return nil, err
		}
		return geojson.UnmarshalFeatureCollection(raw)
	}

	p := filepath.Join(dir, base+".shp")
	if _, err := os.Stat(p); err == nil {
		return readShapefile(p)
	}

	return nil, util.WrapErrorf(nil, util.ErrNotFound, "dataset: layer %s not found in %s", base, dir)
}

// normalizeUserProperty rename any case variant of the user class property to
// "user"; absent stays absent (treated as allowed downstream).
func normalizeUserProperty(fc *geojson.FeatureCollection) {
	for _, f := range fc.Features {
		if _, ok := f.Properties["user"]; ok {
			continue
		}
		for k, v := range f.Properties {
			if strings.EqualFold(k, "user") {
				delete(f.Properties, k)
				f.Properties["user"] = v
				break
			}
		}
	}
}

// ensureCorrelationIDs default the Id property to 1..N in feature order, so
// unlabelled origin/destination collections still correlate positionally.
func ensureCorrelationIDs(fc *geojson.FeatureCollection) {
	for i, f := range fc.Features {
		if f.Properties == nil {
			f.Properties = geojson.Properties{}
		}
		if _, ok := f.Properties["Id"]; ok {
			continue
		}
		assigned := false
		for k, v := range f.Properties {
			if strings.EqualFold(k, "id") {
				delete(f.Properties, k)
				f.Properties["Id"] = v
				assigned = true
				break
			}
		}
		if !assigned {
			f.Properties["Id"] = i + 1
		}
	}
}

// projectIfGeographic detect geographic input from the union bound of every
// layer and project all of it into planar meters. per-feature detection would
// misfire on planar datasets near the projection origin.
func (s *Store) projectIfGeographic() {
	collections := []*geojson.FeatureCollection{
		s.Roads, s.Nodes, s.Origins, s.Destinations, s.Vegetation, s.Buildings,
	}

	var union orb.Bound
	seen := false
	for _, fc := range collections {
		for _, f := range fc.Features {
			if f.Geometry == nil {
				continue
			}
			b := f.Geometry.Bound()
			if !seen {
				union = b
				seen = true
			} else {
				union = union.Union(b)
			}
		}
	}
	if !seen || !geo.LooksGeographic(union) {
		return
	}

	s.Projected = true
	for _, fc := range collections {
		for _, f := range fc.Features {
			if f.Geometry != nil {
				f.Geometry = geo.ProjectGeometry(f.Geometry)
			}
		}
	}
}

// parseAttr shapefile attributes arrive as strings, numerics are recovered
// where possible.
func parseAttr(v string) interface{} {
	v = strings.TrimSpace(v)
	if v == "" {
		return v
	}
	if i, err := strconv.Atoi(v); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f
	}
	return v
}
