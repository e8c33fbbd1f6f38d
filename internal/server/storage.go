package server

import (
	"net/http"

	"garagehub/pkg/domain"
)

func (s *Server) handleStorageItems(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		items, err := s.app.ListStorageItems(r.Context())
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": items, "count": len(items)})
	case http.MethodPost:
		var item domain.StorageItem
		if !decodeBody(w, r, &item) {
			return
		}
		created, err := s.app.CreateStorageItem(r.Context(), item)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleStorageItemByID(w http.ResponseWriter, r *http.Request) {
	parts := pathRest(r, "/storage")
	if len(parts) != 1 {
		notFound(w, "not found")
		return
	}
	id := parts[0]
	switch r.Method {
	case http.MethodGet:
		item, err := s.app.GetStorageItem(r.Context(), id)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, item)
	case http.MethodPut:
		patch, ok := decodePatch(w, r)
		if !ok {
			return
		}
		item, err := s.app.UpdateStorageItem(r.Context(), id, patch)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, item)
	case http.MethodDelete:
		if err := s.app.DeleteStorageItem(r.Context(), id); err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleStorageByCategory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	parts := pathRest(r, "/storagebycategory")
	if len(parts) != 1 {
		notFound(w, "not found")
		return
	}
	items, err := s.app.ListStorageItemsByCategory(r.Context(), parts[0])
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "count": len(items)})
}

func (s *Server) handleStorageByBarcode(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	parts := pathRest(r, "/storagebarcode")
	if len(parts) != 1 {
		notFound(w, "not found")
		return
	}
	item, err := s.app.GetStorageItemByBarcode(r.Context(), parts[0])
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}
