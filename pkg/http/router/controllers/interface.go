package controllers

import (
	"github.com/urbansim/hazardroute/pkg"
	"github.com/urbansim/hazardroute/pkg/costfunction"
	"github.com/urbansim/hazardroute/pkg/http/usecases"
)

type RoutingService interface {
	ComputeScenario(risk pkg.RiskScenario, maxPairs int,
		override *costfunction.ScenarioParams) (*usecases.ScenarioResult, error)
	GraphLayers(risk pkg.RiskScenario) (*usecases.GraphLayersResult, error)
}
