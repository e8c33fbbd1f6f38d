package server

import (
	"net/http"

	"garagehub/pkg/domain"
)

func (s *Server) handleCustomers(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		customers, err := s.app.ListCustomers(r.Context())
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": customers, "count": len(customers)})
	case http.MethodPost:
		var customer domain.Customer
		if !decodeBody(w, r, &customer) {
			return
		}
		created, err := s.app.CreateCustomer(r.Context(), customer)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	default:
		methodNotAllowed(w)
	}
}

// /customers/{id}, /customers/{id}/cars, /customers/{id}/cars/{plate}
func (s *Server) handleCustomerByID(w http.ResponseWriter, r *http.Request) {
	parts := pathRest(r, "/customers")
	switch {
	case len(parts) == 1:
		s.handleCustomerDoc(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "cars":
		s.handleCustomerCars(w, r, parts[0])
	case len(parts) == 3 && parts[1] == "cars":
		s.handleCustomerCar(w, r, parts[0], parts[2])
	default:
		notFound(w, "not found")
	}
}

func (s *Server) handleCustomerDoc(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodGet:
		customer, err := s.app.GetCustomer(r.Context(), id)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, customer)
	case http.MethodPut:
		patch, ok := decodePatch(w, r)
		if !ok {
			return
		}
		customer, err := s.app.UpdateCustomer(r.Context(), id, patch)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, customer)
	case http.MethodDelete:
		if err := s.app.DeleteCustomer(r.Context(), id); err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleCustomerCars(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	plates, err := s.app.ListCustomerCars(r.Context(), id)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": plates, "count": len(plates)})
}

func (s *Server) handleCustomerCar(w http.ResponseWriter, r *http.Request, id, plate string) {
	switch r.Method {
	case http.MethodPost:
		if err := s.app.AddCustomerCar(r.Context(), id, plate); err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "added"})
	case http.MethodDelete:
		if err := s.app.RemoveCustomerCar(r.Context(), id, plate); err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleCustomersByCar(w http.ResponseWriter, r *http.Request) {
	parts := pathRest(r, "/customersbycar")
	if r.Method != http.MethodGet || len(parts) != 1 {
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		notFound(w, "not found")
		return
	}
	customers, err := s.app.ListCustomersByCar(r.Context(), parts[0])
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": customers, "count": len(customers)})
}
