package geo

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Distance euclidean distance between two planar points, in the unit of the
// working projection (meter).
func Distance(a, b orb.Point) float64 {
	return planar.Distance(a, b)
}

// LineLength geometric length of a planar linestring.
func LineLength(line orb.LineString) float64 {
	return planar.Length(line)
}

// DistanceToLine distance from a planar point to the closest point on line.
func DistanceToLine(p orb.Point, line orb.LineString) float64 {
	return planar.DistanceFrom(line, p)
}

// ExplodeLines explode a geometry into its simple linestring parts. parts
// that collapse to fewer than 2 coordinates are skipped.
func ExplodeLines(g orb.Geometry) []orb.LineString {
	if g == nil {
		return nil
	}

	var parts []orb.LineString
	switch gt := g.(type) {
	case orb.LineString:
		if len(gt) >= 2 {
			parts = append(parts, gt)
		}
	case orb.MultiLineString:
		for _, part := range gt {
			if len(part) >= 2 {
				parts = append(parts, part)
			}
		}
	case orb.Collection:
		for _, sub := range gt {
			parts = append(parts, ExplodeLines(sub)...)
		}
	}
	return parts
}

// PointAlong point at fraction t in [0,1] along the segment a->b.
func PointAlong(a, b orb.Point, t float64) orb.Point {
	return orb.Point{
		a[0] + (b[0]-a[0])*t,
		a[1] + (b[1]-a[1])*t,
	}
}
