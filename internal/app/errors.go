package app

import "errors"

var (
	// ErrNotFound indicates the addressed document does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict indicates a uniqueness or set-membership violation.
	ErrConflict = errors.New("conflict")
	// ErrBadRequest indicates the request payload cannot be applied.
	ErrBadRequest = errors.New("bad request")
	// ErrInternal indicates a persistence anomaly, such as a delete that
	// matched more than one document.
	ErrInternal = errors.New("internal error")
)
