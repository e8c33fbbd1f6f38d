package server

import (
	"net/http"

	"garagehub/pkg/domain"
)

func (s *Server) handleCars(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		cars, err := s.app.ListCars(r.Context())
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": cars, "count": len(cars)})
	case http.MethodPost:
		var car domain.Car
		if !decodeBody(w, r, &car) {
			return
		}
		created, err := s.app.CreateCar(r.Context(), car)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	default:
		methodNotAllowed(w)
	}
}

// /cars/types[/{plate}], /cars/enrich, /cars/{plate}[/enrich]
// Literal segments win over plate dispatch; plates are numeric
// (CreateCar enforces it) so they never collide.
func (s *Server) handleCarByPlate(w http.ResponseWriter, r *http.Request) {
	parts := pathRest(r, "/cars")
	if len(parts) == 0 || len(parts) > 2 {
		notFound(w, "not found")
		return
	}

	if parts[0] == "types" {
		s.handleCarKinds(w, r, parts[1:])
		return
	}
	if parts[0] == "enrich" && len(parts) == 1 {
		s.handleBulkEnrich(w, r)
		return
	}
	if len(parts) == 2 {
		if parts[1] != "enrich" {
			notFound(w, "not found")
			return
		}
		s.handleEnrichCar(w, r, parts[0])
		return
	}

	plate := parts[0]
	switch r.Method {
	case http.MethodGet:
		car, err := s.app.GetCar(r.Context(), plate)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, car)
	case http.MethodPut:
		patch, ok := decodePatch(w, r)
		if !ok {
			return
		}
		car, err := s.app.UpdateCar(r.Context(), plate, patch)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, car)
	case http.MethodDelete:
		if err := s.app.DeleteCar(r.Context(), plate); err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleCarKinds(w http.ResponseWriter, r *http.Request, rest []string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	if len(rest) == 1 {
		kind, err := s.app.GetCarKind(r.Context(), rest[0])
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, kind)
		return
	}
	kinds, err := s.app.ListCarKinds(r.Context())
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": kinds, "count": len(kinds)})
}

func (s *Server) handleEnrichCar(w http.ResponseWriter, r *http.Request, plate string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if err := s.app.EnrichCar(r.Context(), plate); err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

func (s *Server) handleBulkEnrich(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	count, err := s.app.EnrichMissing(r.Context())
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"status": "queued", "count": count})
}
