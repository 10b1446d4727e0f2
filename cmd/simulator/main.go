package main

import (
	"encoding/json"
	"flag"
	"os"
	"path/filepath"

	"github.com/paulmach/orb/geojson"
	"go.uber.org/zap"

	"github.com/urbansim/hazardroute/pkg"
	"github.com/urbansim/hazardroute/pkg/concurrent"
	"github.com/urbansim/hazardroute/pkg/dataset"
	"github.com/urbansim/hazardroute/pkg/http/usecases"
	"github.com/urbansim/hazardroute/pkg/logger"
	"github.com/urbansim/hazardroute/pkg/weather"
)

var (
	dataDir  = flag.String("data", "./data", "directory holding the base layers")
	outDir   = flag.String("out", "./out", "output directory, one subdirectory per risk scenario")
	riskName = flag.String("risk", "merge", "risk scenario (flood/heat/fire/quake/merge) or all")
	tempC    = flag.Float64("temp", -1, "ambient temperature override in celsius, negative reads weather_now.json")
	maxPairs = flag.Int("max_pairs", pkg.MAX_PAIRS_LIMIT, "max origin/destination pairs to route per scenario")
)

type scenarioOutcome struct {
	risk pkg.RiskScenario
	err  error
}

func main() {
	flag.Parse()
	log, err := logger.New()
	if err != nil {
		panic(err)
	}

	store, err := dataset.Load(*dataDir, log)
	if err != nil {
		log.Fatal("load dataset", zap.Error(err))
	}

	var provider weather.Provider = weather.NewFileProvider(filepath.Join(*dataDir, "weather_now.json"), log)
	if *tempC >= 0 {
		provider = weather.Static(*tempC)
	}

	service := usecases.NewRoutingService(log, store, provider)

	risks := make([]pkg.RiskScenario, 0, 5)
	if *riskName == "all" {
		risks = append(risks, pkg.RISK_FLOOD, pkg.RISK_HEAT, pkg.RISK_FIRE, pkg.RISK_QUAKE, pkg.RISK_MERGE)
	} else {
		risk, ok := pkg.ParseRiskScenario(*riskName)
		if !ok {
			log.Fatal("unknown risk scenario", zap.String("risk", *riskName))
		}
		risks = append(risks, risk)
	}

	// every scenario builds and owns its own network, so batches can run in
	// parallel over the shared read-only store.
	pool := concurrent.NewWorkerPool[pkg.RiskScenario, scenarioOutcome](len(risks), len(risks))
	pool.Start(func(risk pkg.RiskScenario) scenarioOutcome {
		return scenarioOutcome{risk: risk, err: runScenario(service, risk, log)}
	})
	for _, risk := range risks {
		pool.AddJob(risk)
	}
	pool.Close()

	failed := 0
	for _, outcome := range pool.Collect() {
		if outcome.err != nil {
			log.Error("scenario failed", zap.String("risk", outcome.risk.String()), zap.Error(outcome.err))
			failed++
		}
	}
	if failed > 0 {
		os.Exit(1)
	}
}

func runScenario(service *usecases.RoutingService, risk pkg.RiskScenario, log *zap.Logger) error {
	result, layers, err := service.SimulateScenario(risk, *maxPairs, nil)
	if err != nil {
		return err
	}

	dir := filepath.Join(*outDir, risk.String())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	files := map[string]*geojson.FeatureCollection{
		"routes_final.geojson":        result.Routes,
		"graph_nodes_allowed.geojson": layers.NodesAllowed,
		"graph_edges_allowed.geojson": layers.EdgesAllowed,
		"graph_nodes_blocked.geojson": layers.NodesBlocked,
		"graph_edges_blocked.geojson": layers.EdgesBlocked,
	}
	for name, fc := range files {
		if err := writeJSONFile(filepath.Join(dir, name), fc); err != nil {
			return err
		}
	}

	meta := struct {
		Meta     usecases.ScenarioMeta  `json:"meta"`
		Failures []usecases.PairFailure `json:"failures"`
	}{Meta: result.Meta, Failures: result.Failures}
	if err := writeJSONFile(filepath.Join(dir, "meta.json"), meta); err != nil {
		return err
	}

	log.Info("scenario written",
		zap.String("risk", risk.String()),
		zap.String("dir", dir),
		zap.Int("routes", len(result.Routes.Features)),
		zap.Int("failures", len(result.Failures)))
	return nil
}

func writeJSONFile(path string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}
