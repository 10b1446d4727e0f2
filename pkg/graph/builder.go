package graph

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"go.uber.org/zap"

	"github.com/urbansim/hazardroute/pkg"
	"github.com/urbansim/hazardroute/pkg/geo"
	"github.com/urbansim/hazardroute/pkg/spatialindex"
	"github.com/urbansim/hazardroute/pkg/util"
	"github.com/urbansim/hazardroute/pkg/zone"
)

// EdgeWeighter converts segment length and zone overlap ratios into one
// routing cost. implemented by costfunction.AgentCostFunction.
type EdgeWeighter interface {
	Weight(length, shadeRatio, buildingRatio float64) float64
}

// Builder produces a navigable Network from the base layer collections.
type Builder struct {
	log      *zap.Logger
	weighter EdgeWeighter

	// endpoint -> existing node snap radius during build.
	snapRadius float64
}

func NewBuilder(log *zap.Logger, weighter EdgeWeighter) *Builder {
	return &Builder{
		log:        log,
		weighter:   weighter,
		snapRadius: pkg.NODE_SNAP_RADIUS_BUILD,
	}
}

// SetSnapRadius override the endpoint snap radius (working projection units).
func (b *Builder) SetSnapRadius(r float64) {
	b.snapRadius = r
}

// Build construct the weighted graph plus the display-only blocked views.
// only user class 1 segments/nodes participate in the navigable graph, class
// 0 features are retained untouched for visualization. malformed individual
// geometries are skipped, an entirely empty road input yields an empty graph.
func (b *Builder) Build(roads, nodes, buildings, vegetation *geojson.FeatureCollection) *Network {
	shadeZone := zone.NewZone(featureGeometries(vegetation), pkg.SHADE_BUFFER)
	buildingZone := zone.NewZone(featureGeometries(buildings), pkg.BUILDING_BUFFER)
	if skipped := shadeZone.Skipped() + buildingZone.Skipped(); skipped > 0 {
		b.log.Warn("degenerate influence zone geometries skipped", zap.Int("count", skipped))
	}
	probe := zone.NewProbe(shadeZone, buildingZone)

	net := &Network{
		Graph:          New(),
		NodeIndex:      spatialindex.NewNodeRTree(),
		EdgeIndex:      spatialindex.NewEdgeRTree(),
		BlockedNodes:   geojson.NewFeatureCollection(),
		BlockedEdges:   geojson.NewFeatureCollection(),
		nodeSnapRadius: pkg.NODE_SNAP_RADIUS_QUERY,
		edgeSnapRadius: pkg.EDGE_SNAP_RADIUS_QUERY,
	}

	// register allowed input nodes first, so the arena keeps input nodes in
	// front of every synthesized one.
	if nodes != nil {
		for _, f := range nodes.Features {
			switch userClass(f) {
			case pkg.ALLOWED_USER_CLASS:
				pt, ok := f.Geometry.(orb.Point)
				if !ok {
					continue
				}
				id := net.Graph.AddNode(pt, false)
				net.NodeIndex.Insert(id, pt)
			case pkg.BLOCKED_USER_CLASS:
				net.BlockedNodes.Append(f)
			}
		}
	}

	degraded := 0
	if roads != nil {
		for _, f := range roads.Features {
			switch userClass(f) {
			case pkg.BLOCKED_USER_CLASS:
				net.BlockedEdges.Append(f)
				continue
			case pkg.ALLOWED_USER_CLASS:
			default:
				continue
			}

			for _, part := range geo.ExplodeLines(f.Geometry) {
				length := geo.LineLength(part)
				if length <= 0 {
					continue
				}

				u := b.resolveEndpoint(net, part[0])
				v := b.resolveEndpoint(net, part[len(part)-1])
				if u == v {
					// self-loop after endpoint snapping, useless for routing
					continue
				}

				ratios := probe.RatiosForLine(part)
				if ratios.Degraded {
					degraded++
				}

				eid := net.Graph.AddEdge(Edge{
					U:             u,
					V:             v,
					Cost:          b.weighter.Weight(length, ratios.Shade, ratios.Building),
					Length:        length,
					ShadeRatio:    ratios.Shade,
					BuildingRatio: ratios.Building,
					Geometry:      part,
				})
				net.EdgeIndex.Insert(eid, part)
			}
		}
	}

	if degraded > 0 {
		b.log.Warn("segments probed with degraded overlap ratios", zap.Int("count", degraded))
	}
	b.log.Info("graph built",
		zap.Int("nodes", net.Graph.NumNodes()),
		zap.Int("edges", net.Graph.NumEdges()),
		zap.Int("blocked_nodes", len(net.BlockedNodes.Features)),
		zap.Int("blocked_edges", len(net.BlockedEdges.Features)))

	return net
}

// resolveEndpoint map a road endpoint onto an existing node within the snap
// radius, or synthesize a node at the endpoint.
func (b *Builder) resolveEndpoint(net *Network, p orb.Point) int {
	if id, _, ok := net.NodeIndex.NearestWithin(p, b.snapRadius); ok {
		return id
	}
	id := net.Graph.AddNode(p, true)
	net.NodeIndex.Insert(id, p)
	return id
}

// userClass the user class tag of a feature, defaulting to allowed when the
// property is absent or malformed.
func userClass(f *geojson.Feature) int {
	if f == nil {
		return pkg.ALLOWED_USER_CLASS
	}
	v, ok := f.Properties["user"]
	if !ok {
		return pkg.ALLOWED_USER_CLASS
	}
	if class, ok := util.IntValue(v); ok {
		return class
	}
	return pkg.ALLOWED_USER_CLASS
}

func featureGeometries(fc *geojson.FeatureCollection) []orb.Geometry {
	if fc == nil {
		return nil
	}
	geoms := make([]orb.Geometry, 0, len(fc.Features))
	for _, f := range fc.Features {
		geoms = append(geoms, f.Geometry)
	}
	return geoms
}
