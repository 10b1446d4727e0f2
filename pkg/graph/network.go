package graph

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/urbansim/hazardroute/pkg"
	"github.com/urbansim/hazardroute/pkg/geo"
	"github.com/urbansim/hazardroute/pkg/spatialindex"
)

// Network one navigable graph instance plus its spatial indexes and the
// display-only blocked views. snapping mutates the graph (synthesized nodes,
// connector edges), so a Network must be owned exclusively by one request
// batch and never reused.
type Network struct {
	Graph     *Graph
	NodeIndex *spatialindex.NodeRTree
	EdgeIndex *spatialindex.EdgeRTree

	BlockedNodes *geojson.FeatureCollection
	BlockedEdges *geojson.FeatureCollection

	nodeSnapRadius float64
	edgeSnapRadius float64
}

// SetQuerySnapRadii override the node-first/edge-second snap radii.
func (net *Network) SetQuerySnapRadii(nodeRadius, edgeRadius float64) {
	net.nodeSnapRadius = nodeRadius
	net.edgeSnapRadius = edgeRadius
}

// SnapPoint resolve an arbitrary query point to a graph node id.
//
// node-first: the nearest existing node within the node snap radius, without
// mutating the graph. edge-second: synthesize a node at the query point and
// attach it with a connector edge to the geometrically closer endpoint of the
// nearest edge within the edge snap radius. if neither succeeds the point is
// unreachable, reported via ok=false and never as an error.
func (net *Network) SnapPoint(p orb.Point) (nodeID int, usedConnector bool, ok bool) {
	if id, _, found := net.NodeIndex.NearestWithin(p, net.nodeSnapRadius); found {
		return id, false, true
	}

	eid, _, found := net.EdgeIndex.NearestWithin(p, net.edgeSnapRadius)
	if !found {
		return -1, false, false
	}

	e := net.Graph.Edge(eid)
	target := e.U
	if geo.Distance(p, net.Graph.Node(e.V).Point) < geo.Distance(p, net.Graph.Node(e.U).Point) {
		target = e.V
	}

	id := net.Graph.AddNode(p, true)
	net.NodeIndex.Insert(id, p)

	seg := orb.LineString{p, net.Graph.Node(target).Point}
	length := geo.LineLength(seg)
	connID := net.Graph.AddEdge(Edge{
		U:         id,
		V:         target,
		Cost:      length,
		Length:    length,
		Geometry:  seg,
		Connector: true,
	})
	net.EdgeIndex.Insert(connID, seg)

	return id, true, true
}

// AllowedNodeLayer the allowed node view, input nodes plus every synthesized
// one, as a feature collection in the working projection.
func (net *Network) AllowedNodeLayer() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	net.Graph.ForNodes(func(n Node) {
		f := geojson.NewFeature(n.Point)
		f.Properties["id"] = n.ID
		f.Properties["user"] = pkg.ALLOWED_USER_CLASS
		f.Properties["synthetic"] = n.Synthetic
		fc.Append(f)
	})
	return fc
}

// AllowedEdgeLayer the allowed edge view with diagnostic overlap ratios.
func (net *Network) AllowedEdgeLayer() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	net.Graph.ForEdges(func(e *Edge) {
		f := geojson.NewFeature(e.Geometry)
		f.Properties["u"] = e.U
		f.Properties["v"] = e.V
		f.Properties["user"] = pkg.ALLOWED_USER_CLASS
		f.Properties["length"] = e.Length
		f.Properties["shade_ratio"] = e.ShadeRatio
		f.Properties["near_b_ratio"] = e.BuildingRatio
		f.Properties["connector"] = e.Connector
		fc.Append(f)
	})
	return fc
}
