package app

import (
	"context"
	"strings"

	"garagehub/pkg/domain"
	"garagehub/pkg/store"
)

// ListErrorCodes returns all OBD error codes.
func (a *App) ListErrorCodes(ctx context.Context) ([]domain.ErrorCode, error) {
	return a.errorCodes.List(ctx)
}

// GetErrorCode retrieves an error code by id.
func (a *App) GetErrorCode(ctx context.Context, id string) (domain.ErrorCode, error) {
	return a.errorCodes.Get(ctx, id)
}

// CreateErrorCode lowercases the code and inserts.
func (a *App) CreateErrorCode(ctx context.Context, ec domain.ErrorCode) (domain.ErrorCode, error) {
	return a.errorCodes.Create(ctx, ec)
}

// UpdateErrorCode applies a sparse patch; a patched code is lowercased.
func (a *App) UpdateErrorCode(ctx context.Context, id string, patch store.Patch) (domain.ErrorCode, error) {
	return a.errorCodes.Update(ctx, id, patch)
}

// DeleteErrorCode removes an error code.
func (a *App) DeleteErrorCode(ctx context.Context, id string) error {
	return a.errorCodes.Delete(ctx, id)
}

// LookupErrorCode resolves a code case-insensitively.
func (a *App) LookupErrorCode(ctx context.Context, code string) (domain.ErrorCode, error) {
	ec, ok, err := a.store.ErrorCodes().GetByCode(ctx, strings.ToLower(strings.TrimSpace(code)))
	if err != nil {
		return domain.ErrorCode{}, err
	}
	if !ok {
		return domain.ErrorCode{}, ErrNotFound
	}
	return ec, nil
}
