package server

import (
	"net/http"

	"garagehub/pkg/domain"
)

func (s *Server) handleErrorCodes(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		codes, err := s.app.ListErrorCodes(r.Context())
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": codes, "count": len(codes)})
	case http.MethodPost:
		var ec domain.ErrorCode
		if !decodeBody(w, r, &ec) {
			return
		}
		created, err := s.app.CreateErrorCode(r.Context(), ec)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleErrorCodeByID(w http.ResponseWriter, r *http.Request) {
	parts := pathRest(r, "/errorcodes")
	if len(parts) != 1 {
		notFound(w, "not found")
		return
	}
	id := parts[0]
	switch r.Method {
	case http.MethodGet:
		ec, err := s.app.GetErrorCode(r.Context(), id)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, ec)
	case http.MethodPut:
		patch, ok := decodePatch(w, r)
		if !ok {
			return
		}
		ec, err := s.app.UpdateErrorCode(r.Context(), id, patch)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, ec)
	case http.MethodDelete:
		if err := s.app.DeleteErrorCode(r.Context(), id); err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	default:
		methodNotAllowed(w)
	}
}

// /errorcode/{code} resolves an OBD code case-insensitively.
func (s *Server) handleErrorCodeLookup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	parts := pathRest(r, "/errorcode")
	if len(parts) != 1 {
		notFound(w, "not found")
		return
	}
	ec, err := s.app.LookupErrorCode(r.Context(), parts[0])
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ec)
}
