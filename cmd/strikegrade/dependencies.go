package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/common/expfmt"

	"github.com/FACorreiaa/transcript-strike/internal/domain/transcript/service"
	"github.com/FACorreiaa/transcript-strike/internal/domain/transcript/weights"
	"github.com/FACorreiaa/transcript-strike/pkg/config"
)

// Dependencies holds everything a command needs
type Dependencies struct {
	Config *config.Config
	Logger *slog.Logger

	Weights  *weights.Table
	Registry *prometheus.Registry
	Metrics  *service.Metrics
	Service  *service.Service
}

// InitDependencies initializes all command dependencies
func InitDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	if err := deps.initWeights(); err != nil {
		return nil, fmt.Errorf("failed to init weights: %w", err)
	}

	deps.initMetrics()
	deps.initServices()

	logger.Debug("all dependencies initialized successfully")

	return deps, nil
}

// initWeights loads the weight table file on top of the built-in table
func (d *Dependencies) initWeights() error {
	d.Weights = weights.Default()
	path := d.Config.Transcript.WeightsFile
	if path == "" {
		return nil
	}

	loaded, err := weights.LoadFile(path)
	if err != nil {
		return err
	}
	d.Weights = d.Weights.Merge(loaded)

	d.Logger.Debug("weight table loaded", "path", path, "entries", loaded.Len())
	return nil
}

// initMetrics creates a private registry so a single run can dump its metrics
func (d *Dependencies) initMetrics() {
	if !d.Config.Observability.MetricsEnabled {
		return
	}
	d.Registry = prometheus.NewRegistry()
	d.Registry.MustRegister(collectors.NewGoCollector())
	d.Metrics = service.NewMetrics(d.Registry)
}

func (d *Dependencies) initServices() {
	d.Service = service.NewService(service.ConfigFrom(d.Config, d.Weights), d.Metrics, d.Logger)
}

// DumpMetrics writes the gathered metrics in the text exposition format.
func (d *Dependencies) DumpMetrics(w io.Writer) error {
	if d.Registry == nil {
		return nil
	}

	families, err := d.Registry.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}

	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("failed to encode metrics: %w", err)
		}
	}
	return nil
}
