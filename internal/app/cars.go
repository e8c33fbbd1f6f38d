package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"garagehub/internal/util"
	"garagehub/pkg/domain"
	"garagehub/pkg/store"
)

var carPatchKeys = []string{"code", "government_data"}

const (
	enqueueTimeout   = 3 * time.Second
	bulkEnrichFanout = 4
)

// ListCars returns all cars.
func (a *App) ListCars(ctx context.Context) ([]domain.Car, error) {
	return a.store.Cars().List(ctx)
}

// GetCar retrieves a car by plate.
func (a *App) GetCar(ctx context.Context, plate string) (domain.Car, error) {
	car, ok, err := a.store.Cars().GetByPlate(ctx, plate)
	if err != nil {
		return domain.Car{}, err
	}
	if !ok {
		return domain.Car{}, ErrNotFound
	}
	return car, nil
}

// CreateCar inserts a bare car and enqueues registry enrichment. The
// enqueue is fire-and-forget: failure is logged, never surfaced, since
// the car is already persisted.
func (a *App) CreateCar(ctx context.Context, car domain.Car) (domain.Car, error) {
	car.LicensePlateNumber = strings.TrimSpace(car.LicensePlateNumber)
	if car.LicensePlateNumber == "" {
		return domain.Car{}, fmt.Errorf("%w: license_plate_number required", ErrBadRequest)
	}
	// Registry plates are numeric. This also keeps plates clear of the
	// literal /cars/types and /cars/enrich route segments.
	for _, r := range car.LicensePlateNumber {
		if r < '0' || r > '9' {
			return domain.Car{}, fmt.Errorf("%w: license_plate_number must be numeric", ErrBadRequest)
		}
	}
	car.ID = uuid.NewString()
	car.GovernmentData = nil
	if err := a.store.Cars().Insert(ctx, car); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return domain.Car{}, fmt.Errorf("%w: license number already exists", ErrConflict)
		}
		return domain.Car{}, err
	}
	a.enqueueEnrichment(ctx, car.ID, car.LicensePlateNumber)
	return car, nil
}

// UpdateCar applies a sparse patch to the car addressed by plate. The
// plate itself and the surrogate id are immutable.
func (a *App) UpdateCar(ctx context.Context, plate string, patch store.Patch) (domain.Car, error) {
	filtered := filterPatch(patch, carPatchKeys)
	if len(filtered) == 0 {
		return domain.Car{}, fmt.Errorf("%w: empty update", ErrBadRequest)
	}
	car, ok, err := a.store.Cars().UpdateByPlate(ctx, plate, filtered)
	if err != nil {
		return domain.Car{}, err
	}
	if !ok {
		return domain.Car{}, ErrNotFound
	}
	return car, nil
}

// DeleteCar removes the car addressed by plate.
func (a *App) DeleteCar(ctx context.Context, plate string) error {
	return translateDeleteErr(a.store.Cars().DeleteByPlate(ctx, plate))
}

// EnrichCar re-enqueues enrichment for one existing car. Unlike the
// enqueue on create, failure here is surfaced: the caller asked for it
// explicitly.
func (a *App) EnrichCar(ctx context.Context, plate string) error {
	car, err := a.GetCar(ctx, plate)
	if err != nil {
		return err
	}
	if _, err := a.queue.Enqueue(ctx, car.ID, car.LicensePlateNumber); err != nil {
		return fmt.Errorf("enqueue enrichment: %w", err)
	}
	return nil
}

// EnrichMissing enqueues enrichment for every car with no registry data
// yet, with bounded fan-out. Returns the number of cars enqueued.
func (a *App) EnrichMissing(ctx context.Context) (int, error) {
	cars, err := a.store.Cars().ListMissingGovernmentData(ctx)
	if err != nil {
		return 0, err
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(bulkEnrichFanout)
	for _, car := range cars {
		car := car
		g.Go(func() error {
			_, err := a.queue.Enqueue(gctx, car.ID, car.LicensePlateNumber)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return 0, fmt.Errorf("enqueue enrichment: %w", err)
	}
	return len(cars), nil
}

// ListCarKinds returns the distinct (name, degem, shana) kinds across
// all enriched cars.
func (a *App) ListCarKinds(ctx context.Context) ([]domain.CarKind, error) {
	cars, err := a.store.Cars().List(ctx)
	if err != nil {
		return nil, err
	}
	seen := map[domain.CarKind]struct{}{}
	kinds := make([]domain.CarKind, 0)
	for _, car := range cars {
		kind, ok := kindFromGovernmentData(car.GovernmentData)
		if !ok {
			continue
		}
		if _, dup := seen[kind]; dup {
			continue
		}
		seen[kind] = struct{}{}
		kinds = append(kinds, kind)
	}
	return kinds, nil
}

// GetCarKind returns the kind of one car. A car with no registry data
// has no kind.
func (a *App) GetCarKind(ctx context.Context, plate string) (domain.CarKind, error) {
	car, err := a.GetCar(ctx, plate)
	if err != nil {
		return domain.CarKind{}, err
	}
	kind, ok := kindFromGovernmentData(car.GovernmentData)
	if !ok {
		return domain.CarKind{}, ErrNotFound
	}
	return kind, nil
}

func (a *App) enqueueEnrichment(ctx context.Context, carID, plate string) {
	logger := util.LoggerFromContext(ctx)
	enqCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), enqueueTimeout)
	defer cancel()
	if _, err := a.queue.Enqueue(enqCtx, carID, plate); err != nil {
		logger.Error("enqueue enrichment failed", "car_id", carID, "plate", plate, "error", err)
	}
}

func kindFromGovernmentData(data domain.Document) (domain.CarKind, bool) {
	if len(data) == 0 {
		return domain.CarKind{}, false
	}
	kind := domain.CarKind{
		Name:  stringField(data, "kinuy_mishari"),
		Degem: stringField(data, "degem_nm"),
		Shana: stringField(data, "shnat_yitzur"),
	}
	if kind.Name == "" && kind.Degem == "" && kind.Shana == "" {
		return domain.CarKind{}, false
	}
	return kind, true
}

func stringField(data domain.Document, key string) string {
	switch v := data[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	default:
		return ""
	}
}
