package server

import (
	"context"
	"net/http"

	"garagehub/internal/app"
	"garagehub/pkg/domain"
	"garagehub/pkg/store"
)

// crud bundles the handlers for one uniformly-served entity.
type crud[T domain.Entity] struct {
	list   func(context.Context) ([]T, error)
	get    func(context.Context, string) (T, error)
	create func(context.Context, T) (T, error)
	update func(context.Context, string, store.Patch) (T, error)
	remove func(context.Context, string) error
}

func resourceCRUD[T domain.Entity](res *app.Resource[T]) crud[T] {
	return crud[T]{
		list:   res.List,
		get:    res.Get,
		create: res.Create,
		update: res.Update,
		remove: res.Delete,
	}
}

// registerCRUD serves GET/POST on base and GET/PUT/DELETE on base/{id}.
func registerCRUD[T domain.Entity](mux *http.ServeMux, base string, ops crud[T]) {
	mux.HandleFunc(base, func(w http.ResponseWriter, r *http.Request) {
		handleCollection(w, r, ops)
	})
	mux.HandleFunc(base+"/", func(w http.ResponseWriter, r *http.Request) {
		parts := pathRest(r, base)
		if len(parts) != 1 {
			notFound(w, "not found")
			return
		}
		handleDocument(w, r, ops, parts[0])
	})
}

func handleCollection[T domain.Entity](w http.ResponseWriter, r *http.Request, ops crud[T]) {
	switch r.Method {
	case http.MethodGet:
		items, err := ops.list(r.Context())
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": items, "count": len(items)})
	case http.MethodPost:
		var doc T
		if !decodeBody(w, r, &doc) {
			return
		}
		created, err := ops.create(r.Context(), doc)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	default:
		methodNotAllowed(w)
	}
}

func handleDocument[T domain.Entity](w http.ResponseWriter, r *http.Request, ops crud[T], id string) {
	switch r.Method {
	case http.MethodGet:
		doc, err := ops.get(r.Context(), id)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, doc)
	case http.MethodPut:
		patch, ok := decodePatch(w, r)
		if !ok {
			return
		}
		doc, err := ops.update(r.Context(), id, patch)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, doc)
	case http.MethodDelete:
		if err := ops.remove(r.Context(), id); err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	default:
		methodNotAllowed(w)
	}
}
