package usecases

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"go.uber.org/zap"

	"github.com/urbansim/hazardroute/pkg"
	"github.com/urbansim/hazardroute/pkg/costfunction"
	"github.com/urbansim/hazardroute/pkg/dataset"
	"github.com/urbansim/hazardroute/pkg/geo"
	"github.com/urbansim/hazardroute/pkg/graph"
	"github.com/urbansim/hazardroute/pkg/routing"
	"github.com/urbansim/hazardroute/pkg/util"
	"github.com/urbansim/hazardroute/pkg/weather"
)

type RoutingService struct {
	log     *zap.Logger
	store   *dataset.Store
	weather weather.Provider
}

func NewRoutingService(log *zap.Logger, store *dataset.Store, weather weather.Provider) *RoutingService {
	return &RoutingService{
		log:     log,
		store:   store,
		weather: weather,
	}
}

// PairFailure one origin/destination pair that produced no route, with the
// reason it failed.
type PairFailure struct {
	ID     int    `json:"Id"`
	Status string `json:"status"`
}

// ScenarioMeta batch counters plus the inputs the batch was weighted with.
type ScenarioMeta struct {
	routing.BatchMeta
	TempC  float64                     `json:"temp_c"`
	Risk   string                      `json:"risk"`
	Params costfunction.ScenarioParams `json:"params"`
}

type ScenarioResult struct {
	Routes   *geojson.FeatureCollection `json:"routes_final"`
	Failures []PairFailure              `json:"failures"`
	Meta     ScenarioMeta               `json:"meta"`
}

type GraphLayersResult struct {
	NodesAllowed *geojson.FeatureCollection `json:"graph_nodes_allowed"`
	EdgesAllowed *geojson.FeatureCollection `json:"graph_edges_allowed"`
	NodesBlocked *geojson.FeatureCollection `json:"graph_nodes_blocked"`
	EdgesBlocked *geojson.FeatureCollection `json:"graph_edges_blocked"`
}

// ComputeScenario build a freshly weighted network for one risk scenario and
// route every correlated origin/destination pair over it. override replaces
// the scenario default alphas when non-nil, clamped into [0, MAX_ALPHA_LIMIT].
func (rs *RoutingService) ComputeScenario(risk pkg.RiskScenario, maxPairs int,
	override *costfunction.ScenarioParams) (*ScenarioResult, error) {
	res, _, err := rs.routeScenario(risk, maxPairs, override)
	return res, err
}

// SimulateScenario like ComputeScenario, but also reports the graph views of
// the routed network, synthesized snap nodes and connector edges included.
func (rs *RoutingService) SimulateScenario(risk pkg.RiskScenario, maxPairs int,
	override *costfunction.ScenarioParams) (*ScenarioResult, *GraphLayersResult, error) {
	res, net, err := rs.routeScenario(risk, maxPairs, override)
	if err != nil {
		return nil, nil, err
	}
	return res, rs.layersOf(net), nil
}

func (rs *RoutingService) routeScenario(risk pkg.RiskScenario, maxPairs int,
	override *costfunction.ScenarioParams) (*ScenarioResult, *graph.Network, error) {
	if maxPairs <= 0 || maxPairs > pkg.MAX_PAIRS_LIMIT {
		maxPairs = pkg.MAX_PAIRS_LIMIT
	}

	params := costfunction.ScenarioDefaults(risk)
	if override != nil {
		params.BuildingBase = util.Clamp(override.BuildingBase, 0, pkg.MAX_ALPHA_LIMIT)
		params.BuildingHeatCoeff = util.Clamp(override.BuildingHeatCoeff, 0, pkg.MAX_ALPHA_LIMIT)
	}

	tempC := rs.weather.TemperatureC()
	cf := costfunction.NewAgentCostFunction(params, tempC)
	net := rs.buildNetwork(cf)

	pairs := routing.PairsFromPoints(rs.store.OriginPoints(), rs.store.DestinationPoints())
	results, batch := routing.NewRouter(net, rs.log).RouteAll(pairs, maxPairs)

	out := &ScenarioResult{
		Routes:   geojson.NewFeatureCollection(),
		Failures: make([]PairFailure, 0),
		Meta: ScenarioMeta{
			BatchMeta: batch,
			TempC:     tempC,
			Risk:      risk.String(),
			Params:    params,
		},
	}

	for _, res := range results {
		if res.Status != routing.StatusOK {
			out.Failures = append(out.Failures, PairFailure{ID: res.ID, Status: string(res.Status)})
			continue
		}
		geom := rs.store.ToOutputCRS(res.Geometry)
		f := geojson.NewFeature(geom)
		f.Properties["Id"] = res.ID
		f.Properties["length_m"] = util.RoundFloat(res.Length, 2)
		f.Properties["temp_c"] = tempC
		f.Properties["risk"] = risk.String()
		f.Properties["used_fallback"] = res.UsedFallback
		f.Properties["used_connector"] = res.UsedConnector
		if line, ok := geom.(orb.LineString); ok {
			f.Properties["polyline"] = geo.PolylineFromLine(line)
		}
		out.Routes.Append(f)
	}

	rs.log.Info("scenario computed",
		zap.String("risk", risk.String()),
		zap.Float64("temp_c", tempC),
		zap.Int("pairs_total", batch.PairsTotal),
		zap.Int("ok", batch.OK),
		zap.Int("no_path", batch.NoPath))

	return out, net, nil
}

// GraphLayers build the scenario network without routing anything and report
// its allowed/blocked node and edge views.
func (rs *RoutingService) GraphLayers(risk pkg.RiskScenario) (*GraphLayersResult, error) {
	cf := costfunction.NewAgentCostFunction(costfunction.ScenarioDefaults(risk), rs.weather.TemperatureC())
	return rs.layersOf(rs.buildNetwork(cf)), nil
}

func (rs *RoutingService) layersOf(net *graph.Network) *GraphLayersResult {
	return &GraphLayersResult{
		NodesAllowed: rs.toOutputCRS(net.AllowedNodeLayer()),
		EdgesAllowed: rs.toOutputCRS(net.AllowedEdgeLayer()),
		NodesBlocked: rs.toOutputCRS(net.BlockedNodes),
		EdgesBlocked: rs.toOutputCRS(net.BlockedEdges),
	}
}

func (rs *RoutingService) buildNetwork(cf *costfunction.AgentCostFunction) *graph.Network {
	b := graph.NewBuilder(rs.log, cf)
	net := b.Build(rs.store.Roads, rs.store.Nodes, rs.store.Buildings, rs.store.Vegetation)
	net.SetQuerySnapRadii(pkg.NODE_SNAP_RADIUS_QUERY, pkg.EDGE_SNAP_RADIUS_QUERY)
	return net
}

func (rs *RoutingService) toOutputCRS(fc *geojson.FeatureCollection) *geojson.FeatureCollection {
	if fc == nil {
		return geojson.NewFeatureCollection()
	}
	out := geojson.NewFeatureCollection()
	for _, f := range fc.Features {
		nf := geojson.NewFeature(rs.store.ToOutputCRS(f.Geometry))
		for k, v := range f.Properties {
			nf.Properties[k] = v
		}
		out.Append(nf)
	}
	return out
}
