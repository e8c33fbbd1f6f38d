package app

import (
	"context"
	"errors"
	"testing"

	"garagehub/pkg/domain"
	"garagehub/pkg/queue"
	"garagehub/pkg/store"
)

type stubQueue struct {
	jobs []queue.Job
	err  error
}

func (s *stubQueue) Enqueue(_ context.Context, carID, plate string) (queue.Job, error) {
	if s.err != nil {
		return queue.Job{}, s.err
	}
	job := queue.Job{ID: "job", CarID: carID, Plate: plate}
	s.jobs = append(s.jobs, job)
	return job, nil
}

func newTestApp(t *testing.T) (*App, *stubQueue) {
	t.Helper()
	q := &stubQueue{}
	a, err := New(Config{Store: store.NewMemoryStore(), Queue: q})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	return a, q
}

func TestCreateCarEnqueuesEnrichment(t *testing.T) {
	a, q := newTestApp(t)
	ctx := context.Background()

	car, err := a.CreateCar(ctx, domain.Car{LicensePlateNumber: "1234567"})
	if err != nil {
		t.Fatalf("create car: %v", err)
	}
	if car.ID == "" {
		t.Fatal("expected assigned id")
	}
	if len(q.jobs) != 1 || q.jobs[0].CarID != car.ID || q.jobs[0].Plate != "1234567" {
		t.Fatalf("unexpected enqueued jobs: %+v", q.jobs)
	}
}

func TestCreateCarRejectsNonNumericPlate(t *testing.T) {
	a, q := newTestApp(t)
	ctx := context.Background()

	for _, plate := range []string{"enrich", "types", "12a4567", "123-45-678"} {
		if _, err := a.CreateCar(ctx, domain.Car{LicensePlateNumber: plate}); !errors.Is(err, ErrBadRequest) {
			t.Fatalf("plate %q: expected bad request, got %v", plate, err)
		}
	}
	if len(q.jobs) != 0 {
		t.Fatalf("rejected cars must not enqueue enrichment: %+v", q.jobs)
	}
}

func TestCreateCarDuplicatePlateConflicts(t *testing.T) {
	a, _ := newTestApp(t)
	ctx := context.Background()

	if _, err := a.CreateCar(ctx, domain.Car{LicensePlateNumber: "1234567"}); err != nil {
		t.Fatalf("create car: %v", err)
	}
	_, err := a.CreateCar(ctx, domain.Car{LicensePlateNumber: "1234567"})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestCreateCarEnqueueFailureDoesNotSurface(t *testing.T) {
	q := &stubQueue{err: errors.New("redis down")}
	a, err := New(Config{Store: store.NewMemoryStore(), Queue: q})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}

	if _, err := a.CreateCar(context.Background(), domain.Car{LicensePlateNumber: "1234567"}); err != nil {
		t.Fatalf("create must succeed even when enqueue fails: %v", err)
	}
}

func TestUpdateCarRejectsEmptyPatch(t *testing.T) {
	a, _ := newTestApp(t)
	ctx := context.Background()
	if _, err := a.CreateCar(ctx, domain.Car{LicensePlateNumber: "1234567"}); err != nil {
		t.Fatalf("create car: %v", err)
	}

	if _, err := a.UpdateCar(ctx, "1234567", store.Patch{}); !errors.Is(err, ErrBadRequest) {
		t.Fatalf("expected bad request for empty patch, got %v", err)
	}
	// Unknown keys are discarded, leaving the patch effectively empty.
	if _, err := a.UpdateCar(ctx, "1234567", store.Patch{"license_plate_number": "7654321"}); !errors.Is(err, ErrBadRequest) {
		t.Fatalf("expected bad request for immutable-key patch, got %v", err)
	}
}

func TestCustomerPlateExclusivity(t *testing.T) {
	a, _ := newTestApp(t)
	ctx := context.Background()

	first, err := a.CreateCustomer(ctx, domain.Customer{Name: "First", Cars: []string{"1111111"}})
	if err != nil {
		t.Fatalf("create customer: %v", err)
	}
	if _, err := a.CreateCustomer(ctx, domain.Customer{Name: "Second", Cars: []string{"1111111"}}); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected conflict on shared plate, got %v", err)
	}

	second, err := a.CreateCustomer(ctx, domain.Customer{Name: "Second", Cars: []string{"2222222"}})
	if err != nil {
		t.Fatalf("create customer: %v", err)
	}
	if err := a.AddCustomerCar(ctx, second.ID, "1111111"); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected conflict adding another customer's plate, got %v", err)
	}
	if _, err := a.UpdateCustomer(ctx, second.ID, store.Patch{"cars": []any{"1111111"}}); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected conflict patching in another customer's plate, got %v", err)
	}

	// The holder may keep its own plate through an update.
	if _, err := a.UpdateCustomer(ctx, first.ID, store.Patch{"cars": []any{"1111111", "3333333"}}); err != nil {
		t.Fatalf("holder should keep its own plate: %v", err)
	}
}

func TestAddCustomerCarTwiceConflicts(t *testing.T) {
	a, _ := newTestApp(t)
	ctx := context.Background()

	customer, err := a.CreateCustomer(ctx, domain.Customer{Name: "C"})
	if err != nil {
		t.Fatalf("create customer: %v", err)
	}
	if err := a.AddCustomerCar(ctx, customer.ID, "1234567"); err != nil {
		t.Fatalf("add car: %v", err)
	}
	if err := a.AddCustomerCar(ctx, customer.ID, "1234567"); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected conflict on duplicate add, got %v", err)
	}
}

func TestRemoveCustomerCarAbsentIsNotFound(t *testing.T) {
	a, _ := newTestApp(t)
	ctx := context.Background()

	customer, err := a.CreateCustomer(ctx, domain.Customer{Name: "C"})
	if err != nil {
		t.Fatalf("create customer: %v", err)
	}
	if err := a.RemoveCustomerCar(ctx, customer.ID, "1234567"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found on absent remove, got %v", err)
	}
	if err := a.RemoveCustomerCar(ctx, "missing-customer", "1234567"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found for missing customer, got %v", err)
	}
}

func TestStorageItemQuantityValidation(t *testing.T) {
	a, _ := newTestApp(t)
	ctx := context.Background()

	if _, err := a.CreateStorageItem(ctx, domain.StorageItem{Name: "Oil", Category: "fluids", AmountInStock: -1}); !errors.Is(err, ErrBadRequest) {
		t.Fatalf("expected bad request for negative stock, got %v", err)
	}

	item, err := a.CreateStorageItem(ctx, domain.StorageItem{Name: "Oil", Category: "fluids", AmountInStock: 3, PriceSell: 40})
	if err != nil {
		t.Fatalf("create storage item: %v", err)
	}
	if _, err := a.UpdateStorageItem(ctx, item.ID, store.Patch{"price_sell": float64(-5)}); !errors.Is(err, ErrBadRequest) {
		t.Fatalf("expected bad request for negative price patch, got %v", err)
	}
}

func TestErrorCodeLowercasedAndLookup(t *testing.T) {
	a, _ := newTestApp(t)
	ctx := context.Background()

	created, err := a.CreateErrorCode(ctx, domain.ErrorCode{Code: "P0300", Definition: "random misfire"})
	if err != nil {
		t.Fatalf("create error code: %v", err)
	}
	if created.Code != "p0300" {
		t.Fatalf("code should be lowercased, got %q", created.Code)
	}

	found, err := a.LookupErrorCode(ctx, "p0300")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if found.ID != created.ID {
		t.Fatalf("lookup returned wrong document: %+v", found)
	}
	if _, err := a.LookupErrorCode(ctx, "P9999"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCarKindsDerivedFromGovernmentData(t *testing.T) {
	a, _ := newTestApp(t)
	ctx := context.Background()

	car, err := a.CreateCar(ctx, domain.Car{LicensePlateNumber: "1234567"})
	if err != nil {
		t.Fatalf("create car: %v", err)
	}
	if _, err := a.CreateCar(ctx, domain.Car{LicensePlateNumber: "7654321"}); err != nil {
		t.Fatalf("create car: %v", err)
	}

	data := domain.Document{"kinuy_mishari": "COROLLA", "degem_nm": "ZRE172", "shnat_yitzur": float64(2019)}
	if _, err := a.store.Cars().SetGovernmentData(ctx, car.ID, data); err != nil {
		t.Fatalf("set government data: %v", err)
	}

	kinds, err := a.ListCarKinds(ctx)
	if err != nil {
		t.Fatalf("list kinds: %v", err)
	}
	if len(kinds) != 1 {
		t.Fatalf("expected one kind, got %+v", kinds)
	}
	if kinds[0].Name != "COROLLA" || kinds[0].Degem != "ZRE172" || kinds[0].Shana != "2019" {
		t.Fatalf("unexpected kind: %+v", kinds[0])
	}

	kind, err := a.GetCarKind(ctx, "1234567")
	if err != nil {
		t.Fatalf("get kind: %v", err)
	}
	if kind != kinds[0] {
		t.Fatalf("kind mismatch: %+v vs %+v", kind, kinds[0])
	}
	if _, err := a.GetCarKind(ctx, "7654321"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unenriched car has no kind, got %v", err)
	}
}

func TestEnrichMissingEnqueuesOnlyUnenrichedCars(t *testing.T) {
	a, q := newTestApp(t)
	ctx := context.Background()

	enriched, err := a.CreateCar(ctx, domain.Car{LicensePlateNumber: "1111111"})
	if err != nil {
		t.Fatalf("create car: %v", err)
	}
	if _, err := a.CreateCar(ctx, domain.Car{LicensePlateNumber: "2222222"}); err != nil {
		t.Fatalf("create car: %v", err)
	}
	if _, err := a.store.Cars().SetGovernmentData(ctx, enriched.ID, domain.Document{"degem_nm": "X"}); err != nil {
		t.Fatalf("set government data: %v", err)
	}
	q.jobs = nil

	count, err := a.EnrichMissing(ctx)
	if err != nil {
		t.Fatalf("enrich missing: %v", err)
	}
	if count != 1 {
		t.Fatalf("count = %d, want 1", count)
	}
	if len(q.jobs) != 1 || q.jobs[0].Plate != "2222222" {
		t.Fatalf("unexpected jobs: %+v", q.jobs)
	}
}

func TestFinishRepairMovesDocument(t *testing.T) {
	a, _ := newTestApp(t)
	ctx := context.Background()

	repair, err := a.CreateRepair(ctx, domain.Repair{LicensePlateNumber: "1234567", Note: "brakes"})
	if err != nil {
		t.Fatalf("create repair: %v", err)
	}

	fin, err := a.FinishRepair(ctx, repair.ID, domain.RepairFinish{Total: 850, Kilometer: 120000})
	if err != nil {
		t.Fatalf("finish repair: %v", err)
	}
	if fin.LicensePlateNumber != "1234567" || fin.Note != "brakes" {
		t.Fatalf("finish should inherit repair fields: %+v", fin)
	}
	if fin.TimeStampEnd == "" {
		t.Fatal("expected end timestamp")
	}

	if _, err := a.GetRepair(ctx, repair.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("open repair should be gone, got %v", err)
	}
	finishes, err := a.RepairFinishes.List(ctx)
	if err != nil {
		t.Fatalf("list finishes: %v", err)
	}
	if len(finishes) != 1 || finishes[0].ID != fin.ID {
		t.Fatalf("unexpected finishes: %+v", finishes)
	}
}

func TestDeleteCarSemantics(t *testing.T) {
	a, _ := newTestApp(t)
	ctx := context.Background()

	if _, err := a.CreateCar(ctx, domain.Car{LicensePlateNumber: "1234567"}); err != nil {
		t.Fatalf("create car: %v", err)
	}
	if err := a.DeleteCar(ctx, "1234567"); err != nil {
		t.Fatalf("delete car: %v", err)
	}
	if err := a.DeleteCar(ctx, "1234567"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}
