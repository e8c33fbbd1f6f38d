package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"garagehub/pkg/domain"
	"garagehub/pkg/store"
)

// Resource wraps one entity collection with the behavior every entity
// shares: id assignment on create, patch whitelisting on update, and
// translation of store errors into app errors.
type Resource[T domain.Entity] struct {
	coll      store.Collection[T]
	patchKeys []string
	// assignID writes the surrogate id into the document before insert.
	assignID func(*T, string)
	// prepare optionally validates and normalizes the document before
	// insert. May be nil.
	prepare func(*T) error
	// preparePatch optionally validates and normalizes the whitelisted
	// patch before it is applied. May be nil.
	preparePatch func(store.Patch) error
}

func newResource[T domain.Entity](coll store.Collection[T], patchKeys []string, assignID func(*T, string)) *Resource[T] {
	return &Resource[T]{coll: coll, patchKeys: patchKeys, assignID: assignID}
}

func (r *Resource[T]) List(ctx context.Context) ([]T, error) {
	return r.coll.List(ctx)
}

func (r *Resource[T]) Get(ctx context.Context, id string) (T, error) {
	doc, ok, err := r.coll.Get(ctx, id)
	if err != nil {
		return doc, err
	}
	if !ok {
		return doc, ErrNotFound
	}
	return doc, nil
}

// Create assigns a fresh id, validates, and inserts the document.
func (r *Resource[T]) Create(ctx context.Context, doc T) (T, error) {
	r.assignID(&doc, uuid.NewString())
	if r.prepare != nil {
		if err := r.prepare(&doc); err != nil {
			var zero T
			return zero, err
		}
	}
	if err := r.coll.Insert(ctx, doc); err != nil {
		var zero T
		if errors.Is(err, store.ErrDuplicate) {
			return zero, fmt.Errorf("%w: duplicate key", ErrConflict)
		}
		return zero, err
	}
	return doc, nil
}

// Update applies a sparse patch. Unknown keys are discarded; a patch
// left empty after whitelisting is rejected before any store call.
func (r *Resource[T]) Update(ctx context.Context, id string, patch store.Patch) (T, error) {
	var zero T
	filtered := filterPatch(patch, r.patchKeys)
	if len(filtered) == 0 {
		return zero, fmt.Errorf("%w: empty update", ErrBadRequest)
	}
	if r.preparePatch != nil {
		if err := r.preparePatch(filtered); err != nil {
			return zero, err
		}
	}
	doc, ok, err := r.coll.Update(ctx, id, filtered)
	if err != nil {
		return zero, err
	}
	if !ok {
		return zero, ErrNotFound
	}
	return doc, nil
}

func (r *Resource[T]) Delete(ctx context.Context, id string) error {
	return translateDeleteErr(r.coll.Delete(ctx, id))
}

func translateDeleteErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, store.ErrMultiDelete):
		return fmt.Errorf("%w: delete matched more than one document", ErrInternal)
	default:
		return err
	}
}

func filterPatch(patch store.Patch, allowed []string) store.Patch {
	filtered := store.Patch{}
	for _, key := range allowed {
		if v, ok := patch[key]; ok {
			filtered[key] = v
		}
	}
	return filtered
}

// nonNegativePatch rejects negative numeric values for the given keys.
// JSON numbers decode as float64; ints appear on direct struct patches.
func nonNegativePatch(patch store.Patch, keys ...string) error {
	for _, key := range keys {
		v, ok := patch[key]
		if !ok {
			continue
		}
		switch n := v.(type) {
		case float64:
			if n < 0 {
				return fmt.Errorf("%w: %s must be >= 0", ErrBadRequest, key)
			}
		case int:
			if n < 0 {
				return fmt.Errorf("%w: %s must be >= 0", ErrBadRequest, key)
			}
		}
	}
	return nil
}

// stringSlice converts a JSON-decoded array value into []string.
func stringSlice(v any) ([]string, bool) {
	switch vals := v.(type) {
	case []string:
		return vals, true
	case []any:
		out := make([]string, 0, len(vals))
		for _, item := range vals {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	default:
		return nil, false
	}
}
