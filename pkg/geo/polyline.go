package geo

import (
	"github.com/paulmach/orb"
	gopolyline "github.com/twpayne/go-polyline"
)

// PolylineFromLine encode a WGS84 route geometry as a google encoded
// polyline, lat/lon order.
func PolylineFromLine(line orb.LineString) string {
	coords := make([][]float64, len(line))
	for i, c := range line {
		coords[i] = []float64{c[1], c[0]}
	}
	return string(gopolyline.EncodeCoords(coords))
}
