package registry

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClientSearchSendsFiltersAndLimit(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/3/action/datastore_search" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"result": map[string]any{
				"records": []map[string]any{{"mispar_rechev": "1234567"}},
			},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	records, err := c.Search(context.Background(), "res-1", map[string]string{"mispar_rechev": "1234567"}, 2)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected one record, got %d", len(records))
	}
	if gotBody["resource_id"] != "res-1" {
		t.Fatalf("resource_id = %v", gotBody["resource_id"])
	}
	if gotBody["limit"] != float64(2) {
		t.Fatalf("limit = %v", gotBody["limit"])
	}
	filters, _ := gotBody["filters"].(map[string]any)
	if filters["mispar_rechev"] != "1234567" {
		t.Fatalf("filters = %v", gotBody["filters"])
	}
}

func TestClientSearchEmptyResultIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"result":  map[string]any{"records": []map[string]any{}},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	records, err := c.Search(context.Background(), "res-1", nil, 2)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected no records, got %d", len(records))
	}
}

func TestClientSearchSurfacesAPIErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "upstream down"},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	if _, err := c.Search(context.Background(), "res-1", nil, 2); err == nil {
		t.Fatal("expected error for non-2xx response")
	}
}

func TestClientSearchUnsuccessfulResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"success": false})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	if _, err := c.Search(context.Background(), "res-1", nil, 2); err == nil {
		t.Fatal("expected error for unsuccessful search")
	}
}
