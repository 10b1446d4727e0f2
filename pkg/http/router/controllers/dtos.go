package controllers

type computeScenarioRequest struct {
	MaxPairs           int      `json:"max_pairs" validate:"omitempty,min=1,max=50"`
	AlphaBuildBase     *float64 `json:"alpha_build_base" validate:"omitempty,min=0,max=1"`
	AlphaBuildHeatCoef *float64 `json:"alpha_build_heat_coeff" validate:"omitempty,min=0,max=1"`
}
