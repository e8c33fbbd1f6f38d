package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"garagehub/internal/app"
	"garagehub/internal/util"
	"garagehub/pkg/store"
)

const maxBodyBytes = 1 << 20

// Config wires required dependencies for the HTTP server.
type Config struct {
	App *app.App
}

// Server exposes the workshop HTTP API.
type Server struct {
	app *app.App
	mux *http.ServeMux
}

// New constructs the server with routes configured.
func New(cfg Config) (*Server, error) {
	s := &Server{
		app: cfg.App,
		mux: http.NewServeMux(),
	}
	s.routes()
	return s, nil
}

// Router returns the configured handler.
func (s *Server) Router() http.Handler {
	return util.WithRequestID(util.WithRequestLog("garagehub", util.WithSecurityHeaders(util.WithCORS(s.mux))))
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", s.handleHealth)

	s.mux.HandleFunc("/cars", s.handleCars)
	s.mux.HandleFunc("/cars/", s.handleCarByPlate)

	s.mux.HandleFunc("/customers", s.handleCustomers)
	s.mux.HandleFunc("/customers/", s.handleCustomerByID)
	s.mux.HandleFunc("/customersbycar/", s.handleCustomersByCar)

	s.mux.HandleFunc("/storage", s.handleStorageItems)
	s.mux.HandleFunc("/storage/", s.handleStorageItemByID)
	s.mux.HandleFunc("/storagebycategory/", s.handleStorageByCategory)
	s.mux.HandleFunc("/storagebarcode/", s.handleStorageByBarcode)

	s.mux.HandleFunc("/repairs", s.handleRepairs)
	s.mux.HandleFunc("/repairs/", s.handleRepairByID)

	s.mux.HandleFunc("/errorcodes", s.handleErrorCodes)
	s.mux.HandleFunc("/errorcodes/", s.handleErrorCodeByID)
	s.mux.HandleFunc("/errorcode/", s.handleErrorCodeLookup)

	registerCRUD(s.mux, "/used", resourceCRUD(s.app.UsedItems))
	registerCRUD(s.mux, "/tools", resourceCRUD(s.app.Tools))
	registerCRUD(s.mux, "/suppliers", resourceCRUD(s.app.Suppliers))
	registerCRUD(s.mux, "/repairsfinish", resourceCRUD(s.app.RepairFinishes))
	registerCRUD(s.mux, "/tipulim", resourceCRUD(s.app.Tipulim))
	registerCRUD(s.mux, "/tipulgroups", resourceCRUD(s.app.TipulGroups))
	registerCRUD(s.mux, "/areas", resourceCRUD(s.app.Areas))
	registerCRUD(s.mux, "/cameras", resourceCRUD(s.app.Cameras))
	registerCRUD(s.mux, "/storagecategories", resourceCRUD(s.app.StorageCategories))
	registerCRUD(s.mux, "/toolcategories", resourceCRUD(s.app.ToolCategories))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// pathRest splits the path after prefix into its non-empty segments.
func pathRest(r *http.Request, prefix string) []string {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, prefix), "/")
	if rest == "" {
		return nil
	}
	return strings.Split(rest, "/")
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func decodePatch(w http.ResponseWriter, r *http.Request) (store.Patch, bool) {
	var patch store.Patch
	if !decodeBody(w, r, &patch) {
		return nil, false
	}
	return patch, true
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func notFound(w http.ResponseWriter, msg string) {
	writeError(w, http.StatusNotFound, msg)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"requestId,omitempty"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{
		Error:     msg,
		Code:      errorCodeFor(status),
		RequestID: strings.TrimSpace(w.Header().Get("X-Request-Id")),
	})
}

// writeAppError maps app sentinel errors to HTTP statuses.
func writeAppError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, app.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, app.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, app.ErrBadRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func errorCodeFor(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "GARAGE_INVALID_REQUEST"
	case http.StatusNotFound:
		return "GARAGE_NOT_FOUND"
	case http.StatusConflict:
		return "GARAGE_CONFLICT"
	case http.StatusMethodNotAllowed:
		return "SYSTEM_METHOD_NOT_ALLOWED"
	default:
		if status >= http.StatusInternalServerError {
			return "SYSTEM_INTERNAL_ERROR"
		}
		return "REQUEST_ERROR"
	}
}
