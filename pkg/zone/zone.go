// Package zone holds the buffered environmental influence zones (vegetation
// shade, building proximity) and the per-segment coverage probe used for edge
// weighting.
package zone

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/tidwall/rtree"

	"github.com/urbansim/hazardroute/pkg/geo"
	"github.com/urbansim/hazardroute/pkg/util"
)

// Zone one unioned influence zone: the set of points within buffer distance
// of any of the source geometries. the union is kept implicit, membership is
// a distance test against the primitives behind an r-tree over their
// buffer-expanded bounds, so a probe sample only touches nearby ones.
type Zone struct {
	prims   []orb.Geometry
	tr      rtree.RTreeG[int]
	buffer  float64
	skipped int
}

// NewZone build a zone from raw source geometries. nil or empty geometries
// are skipped and counted, never fatal.
func NewZone(geoms []orb.Geometry, buffer float64) *Zone {
	z := &Zone{buffer: buffer}
	for _, g := range geoms {
		if g == nil || isEmptyGeometry(g) {
			z.skipped++
			continue
		}
		b := g.Bound()
		z.tr.Insert(
			[2]float64{b.Min[0] - buffer, b.Min[1] - buffer},
			[2]float64{b.Max[0] + buffer, b.Max[1] + buffer},
			len(z.prims))
		z.prims = append(z.prims, g)
	}
	return z
}

func (z *Zone) IsEmpty() bool {
	return z == nil || len(z.prims) == 0
}

// Skipped number of source geometries dropped as degenerate.
func (z *Zone) Skipped() int {
	if z == nil {
		return 0
	}
	return z.skipped
}

// Covers report whether p lies inside the buffered zone.
func (z *Zone) Covers(p orb.Point) bool {
	if z.IsEmpty() {
		return false
	}
	covered := false
	q := [2]float64{p[0], p[1]}
	z.tr.Search(q, q, func(_, _ [2]float64, i int) bool {
		if geometryCovers(z.prims[i], p, z.buffer) {
			covered = true
			return false
		}
		return true
	})
	return covered
}

func geometryCovers(g orb.Geometry, p orb.Point, buffer float64) bool {
	switch gt := g.(type) {
	case orb.Polygon:
		if planar.PolygonContains(gt, p) {
			return true
		}
		return planar.DistanceFrom(gt, p) <= buffer
	case orb.MultiPolygon:
		if planar.MultiPolygonContains(gt, p) {
			return true
		}
		return planar.DistanceFrom(gt, p) <= buffer
	case orb.Collection:
		for _, sub := range gt {
			if geometryCovers(sub, p, buffer) {
				return true
			}
		}
		return false
	default:
		return planar.DistanceFrom(g, p) <= buffer
	}
}

func isEmptyGeometry(g orb.Geometry) bool {
	switch gt := g.(type) {
	case orb.Point:
		return false
	case orb.MultiPoint:
		return len(gt) == 0
	case orb.LineString:
		return len(gt) == 0
	case orb.MultiLineString:
		return len(gt) == 0
	case orb.Ring:
		return len(gt) == 0
	case orb.Polygon:
		return len(gt) == 0
	case orb.MultiPolygon:
		return len(gt) == 0
	case orb.Collection:
		return len(gt) == 0
	}
	return false
}

// substep when sampling a segment against the zones. small relative to the
// snap radii, so short urban edges still get a few samples.
const defaultSampleStep = 0.5

// Ratios coverage result for a single segment. Degraded marks a segment the
// probe could not measure (zero length, too few coordinates), reported with
// zero overlap instead of failing the build.
type Ratios struct {
	Shade    float64
	Building float64
	Degraded bool
}

// Probe measure, for a road segment, the fraction of its length inside the
// shade zone and inside the building proximity zone.
type Probe struct {
	shade    *Zone
	building *Zone
	step     float64
}

func NewProbe(shade, building *Zone) *Probe {
	return &Probe{
		shade:    shade,
		building: building,
		step:     defaultSampleStep,
	}
}

// RatiosForLine sample the segment at a fixed step and report covered length
// fractions, both clamped to [0,1]. absent zones contribute ratio 0.
func (pr *Probe) RatiosForLine(line orb.LineString) Ratios {
	total := geo.LineLength(line)
	if len(line) < 2 || total <= 0 {
		return Ratios{Degraded: true}
	}

	if pr.shade.IsEmpty() && pr.building.IsEmpty() {
		return Ratios{}
	}

	var shadeLen, buildingLen float64
	for i := 0; i+1 < len(line); i++ {
		a, b := line[i], line[i+1]
		segLen := geo.Distance(a, b)
		if segLen <= 0 {
			continue
		}

		n := int(math.Ceil(segLen / pr.step))
		if n < 1 {
			n = 1
		}
		sub := segLen / float64(n)
		for k := 0; k < n; k++ {
			mid := geo.PointAlong(a, b, (float64(k)+0.5)/float64(n))
			if pr.shade.Covers(mid) {
				shadeLen += sub
			}
			if pr.building.Covers(mid) {
				buildingLen += sub
			}
		}
	}

	return Ratios{
		Shade:    util.Clamp(shadeLen/total, 0, 1),
		Building: util.Clamp(buildingLen/total, 0, 1),
	}
}
