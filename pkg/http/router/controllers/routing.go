package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"

	"github.com/urbansim/hazardroute/pkg"
	"github.com/urbansim/hazardroute/pkg/costfunction"
	helper "github.com/urbansim/hazardroute/pkg/http/router/routerhelper"
)

type routingAPI struct {
	routingService RoutingService
	log            *zap.Logger
}

func New(routingService RoutingService, log *zap.Logger) *routingAPI {
	return &routingAPI{
		routingService: routingService,
		log:            log,
	}
}

func (api *routingAPI) Routes(group *helper.RouteGroup) {
	group.GET("/transport/compute/:risk", api.computeScenario)
	group.GET("/transport/graph/:risk", api.graphLayers)
}

func (api *routingAPI) computeScenario(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	risk, ok := pkg.ParseRiskScenario(p.ByName("risk"))
	if !ok {
		api.BadRequestResponse(w, r, fmt.Errorf("unknown risk scenario %q", p.ByName("risk")))
		return
	}

	var (
		request computeScenarioRequest
		err     error
	)
	query := r.URL.Query()

	if raw := query.Get("max_pairs"); raw != "" {
		request.MaxPairs, err = strconv.Atoi(raw)
		if err != nil {
			api.BadRequestResponse(w, r, errors.New("max_pairs must be a valid int"))
			return
		}
	}
	if raw := query.Get("alpha_build_base"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			api.BadRequestResponse(w, r, errors.New("alpha_build_base must be a valid float"))
			return
		}
		request.AlphaBuildBase = &v
	}
	if raw := query.Get("alpha_build_heat_coeff"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			api.BadRequestResponse(w, r, errors.New("alpha_build_heat_coeff must be a valid float"))
			return
		}
		request.AlphaBuildHeatCoef = &v
	}

	validate := validator.New()
	if err := validate.Struct(request); err != nil {
		english := en.New()
		uni := ut.New(english, english)
		trans, _ := uni.GetTranslator("en")
		_ = enTranslations.RegisterDefaultTranslations(validate, trans)
		vv := translateError(err, trans)
		vvString := []string{}
		for _, v := range vv {
			vvString = append(vvString, v.Error())
		}
		api.BadRequestResponse(w, r, fmt.Errorf("validation error: %v", vvString))
		return
	}

	var override *costfunction.ScenarioParams
	if request.AlphaBuildBase != nil || request.AlphaBuildHeatCoef != nil {
		params := costfunction.ScenarioDefaults(risk)
		if request.AlphaBuildBase != nil {
			params.BuildingBase = *request.AlphaBuildBase
		}
		if request.AlphaBuildHeatCoef != nil {
			params.BuildingHeatCoeff = *request.AlphaBuildHeatCoef
		}
		override = &params
	}

	result, err := api.routingService.ComputeScenario(risk, request.MaxPairs, override)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	headers := make(http.Header)

	if err := api.writeJSON(w, http.StatusOK, envelope{"data": result}, headers); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
}

func (api *routingAPI) graphLayers(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	risk, ok := pkg.ParseRiskScenario(p.ByName("risk"))
	if !ok {
		api.BadRequestResponse(w, r, fmt.Errorf("unknown risk scenario %q", p.ByName("risk")))
		return
	}

	layers, err := api.routingService.GraphLayers(risk)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	headers := make(http.Header)

	if err := api.writeJSON(w, http.StatusOK, envelope{"data": layers}, headers); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
}
