package enrich

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"garagehub/pkg/queue"
	"garagehub/pkg/registry"
	"garagehub/pkg/store"
)

// Searcher is the slice of the registry client the worker needs.
type Searcher interface {
	Search(ctx context.Context, resourceID string, filters map[string]string, limit int) ([]registry.Record, error)
}

// Config wires the worker's dependencies.
type Config struct {
	Registry          Searcher
	Cars              store.CarStore
	VehicleResourceID string
	ModelResourceID   string
}

// Enricher resolves a car's plate against the government registry in
// two stages and writes the merged record back onto the car.
type Enricher struct {
	registry        Searcher
	cars            store.CarStore
	vehicleResource string
	modelResource   string
}

func New(cfg Config) (*Enricher, error) {
	if cfg.Registry == nil {
		return nil, errors.New("registry client required")
	}
	if cfg.Cars == nil {
		return nil, errors.New("car store required")
	}
	if strings.TrimSpace(cfg.VehicleResourceID) == "" {
		return nil, errors.New("vehicle resource id required")
	}
	if strings.TrimSpace(cfg.ModelResourceID) == "" {
		return nil, errors.New("model resource id required")
	}
	return &Enricher{
		registry:        cfg.Registry,
		cars:            cfg.Cars,
		vehicleResource: cfg.VehicleResourceID,
		modelResource:   cfg.ModelResourceID,
	}, nil
}

// Handle processes one enrichment job. A plate absent from the registry
// is a successful no-op; only transport failures fail the job.
func (e *Enricher) Handle(ctx context.Context, job queue.Job) error {
	logger := slog.Default().With("car_id", job.CarID, "plate", job.Plate)

	vehicles, err := e.registry.Search(ctx, e.vehicleResource, map[string]string{
		"mispar_rechev": job.Plate,
	}, 2)
	if err != nil {
		return fmt.Errorf("vehicle lookup: %w", err)
	}
	if len(vehicles) == 0 {
		logger.Info("plate not found in registry")
		return nil
	}
	vehicle := vehicles[0]

	filters, ok := modelFilters(vehicle)
	if !ok {
		logger.Info("vehicle record missing model keys")
		return nil
	}
	models, err := e.registry.Search(ctx, e.modelResource, filters, 2)
	if err != nil {
		return fmt.Errorf("model lookup: %w", err)
	}
	if len(models) == 0 {
		logger.Info("model not found in registry")
		return nil
	}

	merged := make(map[string]any, len(vehicle)+len(models[0]))
	for k, v := range vehicle {
		merged[k] = v
	}
	for k, v := range models[0] {
		merged[k] = v
	}

	updated, err := e.cars.SetGovernmentData(ctx, job.CarID, merged)
	if err != nil {
		return fmt.Errorf("write government data: %w", err)
	}
	if !updated {
		logger.Info("car deleted before enrichment completed")
	}
	return nil
}

// modelFilters derives the stage-two filters from a vehicle record:
// manufacturer and model codes zero-padded to four digits, model year
// as a plain decimal.
func modelFilters(vehicle registry.Record) (map[string]string, bool) {
	tozeret, ok := intValue(vehicle["tozeret_cd"])
	if !ok {
		return nil, false
	}
	degem, ok := intValue(vehicle["degem_cd"])
	if !ok {
		return nil, false
	}
	year, ok := intValue(vehicle["shnat_yitzur"])
	if !ok {
		return nil, false
	}
	return map[string]string{
		"tozeret_cd":   fmt.Sprintf("%04d", tozeret),
		"degem_cd":     fmt.Sprintf("%04d", degem),
		"shnat_yitzur": strconv.Itoa(year),
	}, true
}

// intValue extracts an integer from a registry field, which arrives as
// a JSON number or a numeric string depending on the dataset.
func intValue(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}
