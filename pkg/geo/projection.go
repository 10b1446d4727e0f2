package geo

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/s2"
	"github.com/paulmach/orb"
)

const (
	// spherical mercator earth radius (EPSG:3857).
	earthRadiusM = 6378137.0
)

// mercator projection scaled to meters, so projected coordinates can be used
// directly for length/buffer computations.
var mercator = s2.NewMercatorProjection(earthRadiusM * math.Pi)

// ProjectPoint project a WGS84 lon/lat point into planar meters.
func ProjectPoint(p orb.Point) orb.Point {
	pt := mercator.FromLatLng(s2.LatLngFromDegrees(p[1], p[0]))
	return orb.Point{pt.X, pt.Y}
}

// UnprojectPoint planar meters back to WGS84 lon/lat.
func UnprojectPoint(p orb.Point) orb.Point {
	ll := mercator.ToLatLng(r2.Point{X: p[0], Y: p[1]})
	return orb.Point{ll.Lng.Degrees(), ll.Lat.Degrees()}
}

// ProjectGeometry project every coordinate of g into planar meters.
func ProjectGeometry(g orb.Geometry) orb.Geometry {
	return mapCoords(g, ProjectPoint)
}

// UnprojectGeometry inverse of ProjectGeometry.
func UnprojectGeometry(g orb.Geometry) orb.Geometry {
	return mapCoords(g, UnprojectPoint)
}

// LooksGeographic heuristically detect unprojected lon/lat input. planar
// meter coordinates of any real extent fall far outside the [-180,180] x
// [-90,90] window.
func LooksGeographic(g orb.Geometry) bool {
	if g == nil {
		return false
	}
	b := g.Bound()
	return b.Min[0] >= -180 && b.Max[0] <= 180 && b.Min[1] >= -90 && b.Max[1] <= 90
}

func mapCoords(g orb.Geometry, fn func(orb.Point) orb.Point) orb.Geometry {
	if g == nil {
		return nil
	}

	switch gt := g.(type) {
	case orb.Point:
		return fn(gt)
	case orb.MultiPoint:
		out := make(orb.MultiPoint, len(gt))
		for i, p := range gt {
			out[i] = fn(p)
		}
		return out
	case orb.LineString:
		out := make(orb.LineString, len(gt))
		for i, p := range gt {
			out[i] = fn(p)
		}
		return out
	case orb.MultiLineString:
		out := make(orb.MultiLineString, len(gt))
		for i, ls := range gt {
			out[i] = mapCoords(ls, fn).(orb.LineString)
		}
		return out
	case orb.Ring:
		out := make(orb.Ring, len(gt))
		for i, p := range gt {
			out[i] = fn(p)
		}
		return out
	case orb.Polygon:
		out := make(orb.Polygon, len(gt))
		for i, r := range gt {
			out[i] = mapCoords(r, fn).(orb.Ring)
		}
		return out
	case orb.MultiPolygon:
		out := make(orb.MultiPolygon, len(gt))
		for i, p := range gt {
			out[i] = mapCoords(p, fn).(orb.Polygon)
		}
		return out
	case orb.Collection:
		out := make(orb.Collection, len(gt))
		for i, sub := range gt {
			out[i] = mapCoords(sub, fn)
		}
		return out
	case orb.Bound:
		return orb.Bound{Min: fn(gt.Min), Max: fn(gt.Max)}
	}
	return g
}
