// Package weather provides the ambient temperature for edge weighting. the
// upstream weather fetch/cache is outside this service, routing only sees a
// snapshot file dropped next to the base layers.
package weather

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/urbansim/hazardroute/pkg"
)

// Provider yields the current ambient temperature in celsius.
type Provider interface {
	TemperatureC() float64
}

// FileProvider reads weather_now.json. any failure (missing file, bad json,
// unknown keys) falls back to the documented 25 C default, never errors.
type FileProvider struct {
	path string
	log  *zap.Logger
}

func NewFileProvider(path string, log *zap.Logger) *FileProvider {
	return &FileProvider{path: path, log: log}
}

func (p *FileProvider) TemperatureC() float64 {
	raw, err := os.ReadFile(p.path)
	if err != nil {
		p.log.Debug("weather snapshot unavailable, using default temperature",
			zap.String("path", p.path))
		return pkg.DEFAULT_TEMPERATURE_C
	}

	var doc map[string]interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		p.log.Warn("weather snapshot malformed, using default temperature", zap.Error(err))
		return pkg.DEFAULT_TEMPERATURE_C
	}

	for _, key := range []string{"temp_c", "temperature", "temp"} {
		v, ok := doc[key]
		if !ok {
			continue
		}
		switch t := v.(type) {
		case float64:
			return t
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
				return f
			}
		}
	}
	return pkg.DEFAULT_TEMPERATURE_C
}

// Static fixed temperature provider, for tests and the batch simulator.
type Static float64

func (s Static) TemperatureC() float64 {
	return float64(s)
}
