package dataset

import (
	"github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/urbansim/hazardroute/pkg/util"
)

// readShapefile convert an ESRI shapefile into a feature collection. shapes
// the converter does not understand are skipped, not fatal.
func readShapefile(path string) (*geojson.FeatureCollection, error) {
	r, err := shp.Open(path)
	if err != nil {
		return nil, util.WrapErrorf(err, util.ErrBadParamInput, "dataset: open shapefile %s", path)
	}
	defer r.Close()

	fields := r.Fields()
	fc := geojson.NewFeatureCollection()

	for r.Next() {
		row, shape := r.Shape()

		g := shapeToGeometry(shape)
		if g == nil {
			continue
		}

		f := geojson.NewFeature(g)
		for i, field := range fields {
			f.Properties[field.String()] = parseAttr(r.ReadAttribute(row, i))
		}
		fc.Append(f)
	}

	return fc, nil
}

func shapeToGeometry(shape shp.Shape) orb.Geometry {
	switch s := shape.(type) {
	case *shp.Point:
		return orb.Point{s.X, s.Y}
	case *shp.PointZ:
		return orb.Point{s.X, s.Y}
	case *shp.PolyLine:
		return partsToMultiLine(s.Parts, s.Points)
	case *shp.PolyLineZ:
		return partsToMultiLine(s.Parts, s.Points)
	case *shp.Polygon:
		return partsToPolygon(s.Parts, s.Points)
	case *shp.PolygonZ:
		return partsToPolygon(s.Parts, s.Points)
	}
	return nil
}

func partsToMultiLine(parts []int32, points []shp.Point) orb.Geometry {
	ml := make(orb.MultiLineString, 0, len(parts))
	for _, pts := range splitParts(parts, points) {
		if len(pts) < 2 {
			continue
		}
		ml = append(ml, orb.LineString(pts))
	}
	if len(ml) == 1 {
		return ml[0]
	}
	return ml
}

func partsToPolygon(parts []int32, points []shp.Point) orb.Geometry {
	poly := make(orb.Polygon, 0, len(parts))
	for _, pts := range splitParts(parts, points) {
		if len(pts) < 3 {
			continue
		}
		ring := orb.Ring(pts)
		if !ring.Closed() {
			ring = append(ring, ring[0])
		}
		poly = append(poly, ring)
	}
	return poly
}

func splitParts(parts []int32, points []shp.Point) [][]orb.Point {
	if len(parts) == 0 {
		parts = []int32{0}
	}
	out := make([][]orb.Point, 0, len(parts))
	for i, start := range parts {
		end := len(points)
		if i+1 < len(parts) {
			end = int(parts[i+1])
		}
		pts := make([]orb.Point, 0, end-int(start))
		for _, p := range points[start:end] {
			pts = append(pts, orb.Point{p.X, p.Y})
		}
		out = append(out, pts)
	}
	return out
}
