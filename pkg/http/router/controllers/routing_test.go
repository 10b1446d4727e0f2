package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/urbansim/hazardroute/pkg"
	"github.com/urbansim/hazardroute/pkg/costfunction"
	helper "github.com/urbansim/hazardroute/pkg/http/router/routerhelper"
	"github.com/urbansim/hazardroute/pkg/http/usecases"
	"github.com/urbansim/hazardroute/pkg/routing"
)

type stubRoutingService struct {
	lastRisk     pkg.RiskScenario
	lastMaxPairs int
	lastOverride *costfunction.ScenarioParams
}

func (s *stubRoutingService) ComputeScenario(risk pkg.RiskScenario, maxPairs int,
	override *costfunction.ScenarioParams) (*usecases.ScenarioResult, error) {
	s.lastRisk = risk
	s.lastMaxPairs = maxPairs
	s.lastOverride = override
	return &usecases.ScenarioResult{
		Routes:   geojson.NewFeatureCollection(),
		Failures: []usecases.PairFailure{},
		Meta: usecases.ScenarioMeta{
			BatchMeta: routing.BatchMeta{PairsTotal: 1, PairsProcessed: 1, OK: 1},
			TempC:     25,
			Risk:      risk.String(),
		},
	}, nil
}

func (s *stubRoutingService) GraphLayers(risk pkg.RiskScenario) (*usecases.GraphLayersResult, error) {
	s.lastRisk = risk
	empty := geojson.NewFeatureCollection()
	return &usecases.GraphLayersResult{
		NodesAllowed: empty, EdgesAllowed: empty,
		NodesBlocked: empty, EdgesBlocked: empty,
	}, nil
}

func newTestRouter(stub *stubRoutingService) http.Handler {
	router := httprouter.New()
	group := helper.NewRouteGroup(router, "/api")
	New(stub, zap.NewNop()).Routes(group)
	return router
}

func TestComputeScenarioEndpoint(t *testing.T) {
	stub := &stubRoutingService{}
	srv := newTestRouter(stub)

	req := httptest.NewRequest(http.MethodGet, "/api/transport/compute/heat?max_pairs=10", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, pkg.RISK_HEAT, stub.lastRisk)
	assert.Equal(t, 10, stub.lastMaxPairs)
	assert.Nil(t, stub.lastOverride)

	var body struct {
		Data struct {
			Meta usecases.ScenarioMeta `json:"meta"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Data.Meta.OK)
	assert.Equal(t, "heat", body.Data.Meta.Risk)
}

func TestComputeScenarioAlphaOverride(t *testing.T) {
	stub := &stubRoutingService{}
	srv := newTestRouter(stub)

	req := httptest.NewRequest(http.MethodGet,
		"/api/transport/compute/flood?alpha_build_base=0.2&alpha_build_heat_coeff=0.05", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, stub.lastOverride)
	assert.Equal(t, 0.2, stub.lastOverride.BuildingBase)
	assert.Equal(t, 0.05, stub.lastOverride.BuildingHeatCoeff)
}

func TestComputeScenarioRejectsUnknownRisk(t *testing.T) {
	srv := newTestRouter(&stubRoutingService{})

	req := httptest.NewRequest(http.MethodGet, "/api/transport/compute/tsunami", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestComputeScenarioValidatesParams(t *testing.T) {
	srv := newTestRouter(&stubRoutingService{})

	cases := []string{
		"/api/transport/compute/heat?max_pairs=abc",
		"/api/transport/compute/heat?max_pairs=100", // above the cap
		"/api/transport/compute/heat?alpha_build_base=1.5",
		"/api/transport/compute/heat?alpha_build_heat_coeff=-0.1",
	}
	for _, url := range cases {
		req := httptest.NewRequest(http.MethodGet, url, nil)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, url)
	}
}

func TestGraphLayersEndpoint(t *testing.T) {
	stub := &stubRoutingService{}
	srv := newTestRouter(stub)

	req := httptest.NewRequest(http.MethodGet, "/api/transport/graph/quake", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, pkg.RISK_QUAKE, stub.lastRisk)

	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Contains(t, body, "data")
}
