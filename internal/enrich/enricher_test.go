package enrich

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"garagehub/pkg/domain"
	"garagehub/pkg/queue"
	"garagehub/pkg/registry"
	"garagehub/pkg/store"
)

const (
	vehicleResource = "vehicle-res"
	modelResource   = "model-res"
)

type searchCall struct {
	ResourceID string            `json:"resource_id"`
	Filters    map[string]string `json:"filters"`
	Limit      int               `json:"limit"`
}

// fakeRegistry serves canned records per resource id and records the
// filters each call carried.
func fakeRegistry(t *testing.T, vehicles, models []map[string]any, calls *[]searchCall) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var call searchCall
		if err := json.NewDecoder(r.Body).Decode(&call); err != nil {
			t.Fatalf("decode search request: %v", err)
		}
		*calls = append(*calls, call)
		records := vehicles
		if call.ResourceID == modelResource {
			records = models
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"result":  map[string]any{"records": records},
		})
	}))
}

func newEnricher(t *testing.T, baseURL string, cars store.CarStore) *Enricher {
	t.Helper()
	e, err := New(Config{
		Registry:          registry.NewClient(baseURL, time.Second),
		Cars:              cars,
		VehicleResourceID: vehicleResource,
		ModelResourceID:   modelResource,
	})
	if err != nil {
		t.Fatalf("new enricher: %v", err)
	}
	return e
}

func insertCar(t *testing.T, s store.CarStore, id, plate string) {
	t.Helper()
	if err := s.Insert(context.Background(), domain.Car{ID: id, LicensePlateNumber: plate}); err != nil {
		t.Fatalf("insert car: %v", err)
	}
}

func TestHandleMergesBothStages(t *testing.T) {
	var calls []searchCall
	srv := fakeRegistry(t,
		[]map[string]any{{
			"mispar_rechev": "1234567",
			"tozeret_cd":    float64(7),
			"degem_cd":      float64(12),
			"shnat_yitzur":  float64(2010),
			"kinuy_mishari": "stage one",
			"tzeva_rechev":  "white",
		}},
		[]map[string]any{{
			"kinuy_mishari": "stage two",
			"degem_nm":      "ABC123",
		}},
		&calls)
	defer srv.Close()

	mem := store.NewMemoryStore()
	insertCar(t, mem.Cars(), "car-1", "1234567")
	e := newEnricher(t, srv.URL, mem.Cars())

	if err := e.Handle(context.Background(), queue.Job{CarID: "car-1", Plate: "1234567"}); err != nil {
		t.Fatalf("handle: %v", err)
	}

	if len(calls) != 2 {
		t.Fatalf("expected two registry calls, got %d", len(calls))
	}
	if calls[0].Filters["mispar_rechev"] != "1234567" {
		t.Fatalf("stage one filters = %v", calls[0].Filters)
	}
	second := calls[1].Filters
	if second["tozeret_cd"] != "0007" || second["degem_cd"] != "0012" || second["shnat_yitzur"] != "2010" {
		t.Fatalf("stage two filters = %v", second)
	}
	if calls[1].Limit != 2 {
		t.Fatalf("stage two limit = %d, want 2", calls[1].Limit)
	}

	car, ok, err := mem.Cars().GetByPlate(context.Background(), "1234567")
	if err != nil || !ok {
		t.Fatalf("get car: ok=%v err=%v", ok, err)
	}
	if car.GovernmentData["kinuy_mishari"] != "stage two" {
		t.Fatalf("stage two should win collisions, got %v", car.GovernmentData["kinuy_mishari"])
	}
	if car.GovernmentData["tzeva_rechev"] != "white" {
		t.Fatalf("stage one fields should survive the merge, got %v", car.GovernmentData)
	}
	if car.GovernmentData["degem_nm"] != "ABC123" {
		t.Fatalf("stage two fields missing, got %v", car.GovernmentData)
	}
}

func TestHandlePlateNotFoundIsSuccess(t *testing.T) {
	var calls []searchCall
	srv := fakeRegistry(t, []map[string]any{}, nil, &calls)
	defer srv.Close()

	mem := store.NewMemoryStore()
	insertCar(t, mem.Cars(), "car-1", "1234567")
	e := newEnricher(t, srv.URL, mem.Cars())

	if err := e.Handle(context.Background(), queue.Job{CarID: "car-1", Plate: "1234567"}); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(calls) != 1 {
		t.Fatalf("expected a single registry call, got %d", len(calls))
	}

	car, _, _ := mem.Cars().GetByPlate(context.Background(), "1234567")
	if car.GovernmentData != nil {
		t.Fatalf("government_data should stay unset, got %v", car.GovernmentData)
	}
}

func TestHandleModelNotFoundPersistsNothing(t *testing.T) {
	var calls []searchCall
	srv := fakeRegistry(t,
		[]map[string]any{{
			"mispar_rechev": "1234567",
			"tozeret_cd":    float64(7),
			"degem_cd":      float64(12),
			"shnat_yitzur":  float64(2010),
		}},
		[]map[string]any{},
		&calls)
	defer srv.Close()

	mem := store.NewMemoryStore()
	insertCar(t, mem.Cars(), "car-1", "1234567")
	e := newEnricher(t, srv.URL, mem.Cars())

	if err := e.Handle(context.Background(), queue.Job{CarID: "car-1", Plate: "1234567"}); err != nil {
		t.Fatalf("handle: %v", err)
	}
	car, _, _ := mem.Cars().GetByPlate(context.Background(), "1234567")
	if car.GovernmentData != nil {
		t.Fatalf("government_data should stay unset on model miss, got %v", car.GovernmentData)
	}
}

func TestHandleTransportFailureFailsJob(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	mem := store.NewMemoryStore()
	insertCar(t, mem.Cars(), "car-1", "1234567")
	e := newEnricher(t, srv.URL, mem.Cars())

	if err := e.Handle(context.Background(), queue.Job{CarID: "car-1", Plate: "1234567"}); err == nil {
		t.Fatal("expected transport failure to fail the job")
	}
}

func TestHandleCarDeletedMeanwhileIsNoOp(t *testing.T) {
	var calls []searchCall
	srv := fakeRegistry(t,
		[]map[string]any{{
			"mispar_rechev": "1234567",
			"tozeret_cd":    "7",
			"degem_cd":      "12",
			"shnat_yitzur":  "2010",
		}},
		[]map[string]any{{"degem_nm": "ABC123"}},
		&calls)
	defer srv.Close()

	mem := store.NewMemoryStore()
	e := newEnricher(t, srv.URL, mem.Cars())

	if err := e.Handle(context.Background(), queue.Job{CarID: "gone", Plate: "1234567"}); err != nil {
		t.Fatalf("handle should tolerate a deleted car: %v", err)
	}
}

func TestModelFiltersNumericStrings(t *testing.T) {
	filters, ok := modelFilters(registry.Record{
		"tozeret_cd":   "7",
		"degem_cd":     "12",
		"shnat_yitzur": "2010",
	})
	if !ok {
		t.Fatal("expected filters from numeric strings")
	}
	if filters["tozeret_cd"] != "0007" || filters["degem_cd"] != "0012" || filters["shnat_yitzur"] != "2010" {
		t.Fatalf("unexpected filters: %v", filters)
	}

	if _, ok := modelFilters(registry.Record{"tozeret_cd": "7"}); ok {
		t.Fatal("expected missing keys to yield no filters")
	}
}
