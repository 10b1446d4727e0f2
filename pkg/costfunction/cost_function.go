package costfunction

import (
	"github.com/urbansim/hazardroute/pkg"
	"github.com/urbansim/hazardroute/pkg/util"
)

// ScenarioParams building proximity weighting of one hazard scenario. base
// applies at the lower temperature bound, the heat coefficient scales with
// normalized temperature.
type ScenarioParams struct {
	BuildingBase      float64 `json:"alpha_build_base"`
	BuildingHeatCoeff float64 `json:"alpha_build_heat_coeff"`
}

// DefaultParams the plain agent model: fixed building effect, no heat
// response.
func DefaultParams() ScenarioParams {
	return ScenarioParams{BuildingBase: 0.10, BuildingHeatCoeff: 0}
}

// ScenarioDefaults per-hazard defaults. building proximity matters most in
// heat scenarios and least in quake scenarios.
func ScenarioDefaults(risk pkg.RiskScenario) ScenarioParams {
	switch risk {
	case pkg.RISK_FLOOD:
		return ScenarioParams{BuildingBase: 0.05, BuildingHeatCoeff: 0.02}
	case pkg.RISK_HEAT:
		return ScenarioParams{BuildingBase: 0.06, BuildingHeatCoeff: 0.03}
	case pkg.RISK_FIRE:
		return ScenarioParams{BuildingBase: 0.04, BuildingHeatCoeff: 0.02}
	case pkg.RISK_QUAKE:
		return ScenarioParams{BuildingBase: 0.03, BuildingHeatCoeff: 0.01}
	default:
		return ScenarioParams{BuildingBase: 0.05, BuildingHeatCoeff: 0.02}
	}
}

const (
	defaultShadeBase  = 0.25
	defaultShadeRange = 0.25
)

// AgentCostFunction converts segment length and zone overlap ratios into one
// scalar routing cost. shade matters more the hotter it is. deterministic and
// pure, the only error handling is defensive clamping.
type AgentCostFunction struct {
	shadeBase  float64
	shadeRange float64
	params     ScenarioParams

	tempC    float64
	minTempC float64
	maxTempC float64
}

func NewAgentCostFunction(params ScenarioParams, tempC float64) *AgentCostFunction {
	return &AgentCostFunction{
		shadeBase:  defaultShadeBase,
		shadeRange: defaultShadeRange,
		params:     params,
		tempC:      tempC,
		minTempC:   pkg.MIN_TEMPERATURE_C,
		maxTempC:   pkg.MAX_TEMPERATURE_C,
	}
}

func (cf *AgentCostFunction) Params() ScenarioParams {
	return cf.params
}

func (cf *AgentCostFunction) Temperature() float64 {
	return cf.tempC
}

// NormalizedTemperature ambient temperature scaled into [0,1] against the
// fixed bounds, out-of-range values clamp.
func (cf *AgentCostFunction) NormalizedTemperature() float64 {
	return util.Clamp((cf.tempC-cf.minTempC)/(cf.maxTempC-cf.minTempC), 0, 1)
}

// ShadeCoefficient in [shadeBase, shadeBase+shadeRange], monotonically
// non-decreasing in temperature.
func (cf *AgentCostFunction) ShadeCoefficient() float64 {
	return cf.shadeBase + cf.shadeRange*cf.NormalizedTemperature()
}

func (cf *AgentCostFunction) BuildingCoefficient() float64 {
	c := cf.params.BuildingBase + cf.params.BuildingHeatCoeff*cf.NormalizedTemperature()
	if c < 0 {
		return 0
	}
	return c
}

// Weight routing cost of one segment. multiplicative discounts for shade and
// building proximity, floored at EDGE_COST_FLOOR*length so no edge ever
// becomes free.
func (cf *AgentCostFunction) Weight(length, shadeRatio, buildingRatio float64) float64 {
	shadeRatio = util.Clamp(shadeRatio, 0, 1)
	buildingRatio = util.Clamp(buildingRatio, 0, 1)

	w := length * (1.0 - cf.ShadeCoefficient()*shadeRatio) * (1.0 - cf.BuildingCoefficient()*buildingRatio)
	if floor := pkg.EDGE_COST_FLOOR * length; w < floor {
		return floor
	}
	return w
}
