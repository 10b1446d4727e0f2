package main

import (
	"context"
	"flag"
	"path/filepath"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/urbansim/hazardroute/pkg/dataset"
	"github.com/urbansim/hazardroute/pkg/http"
	"github.com/urbansim/hazardroute/pkg/http/usecases"
	"github.com/urbansim/hazardroute/pkg/logger"
	"github.com/urbansim/hazardroute/pkg/util"
	"github.com/urbansim/hazardroute/pkg/weather"
)

var (
	dataDir      = flag.String("data", "./data", "directory holding the base layers (roads/nodes/origins/destinations, optional vegetation/buildings, weather_now.json)")
	useRateLimit = flag.Bool("rate_limit", true, "per-client rate limiting on the compute endpoints")
)

func main() {
	flag.Parse()
	log, err := logger.New()
	if err != nil {
		panic(err)
	}

	if err := util.ReadConfig(); err != nil {
		log.Info("no config file, using defaults", zap.Error(err))
	}
	if viper.GetString("DATA_DIR") != "" {
		*dataDir = viper.GetString("DATA_DIR")
	}

	store, err := dataset.Load(*dataDir, log)
	if err != nil {
		log.Fatal("load dataset", zap.Error(err))
	}

	weatherProvider := weather.NewFileProvider(filepath.Join(*dataDir, "weather_now.json"), log)

	api := http.NewServer(log)
	routingService := usecases.NewRoutingService(log, store, weatherProvider)

	ctx, cancel := context.WithCancel(context.Background())

	if _, err := api.Use(ctx, log, *useRateLimit, routingService); err != nil {
		log.Fatal("start api", zap.Error(err))
	}

	sig := http.GracefulShutdown()
	log.Info("hazardroute server stopped", zap.String("signal", sig.String()))
	cancel()
}
