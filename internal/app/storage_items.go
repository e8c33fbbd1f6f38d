package app

import (
	"context"

	"garagehub/pkg/domain"
	"garagehub/pkg/store"
)

// ListStorageItems returns all storage items.
func (a *App) ListStorageItems(ctx context.Context) ([]domain.StorageItem, error) {
	return a.storageItems.List(ctx)
}

// GetStorageItem retrieves a storage item by id.
func (a *App) GetStorageItem(ctx context.Context, id string) (domain.StorageItem, error) {
	return a.storageItems.Get(ctx, id)
}

// CreateStorageItem validates quantities and prices and inserts.
func (a *App) CreateStorageItem(ctx context.Context, item domain.StorageItem) (domain.StorageItem, error) {
	return a.storageItems.Create(ctx, item)
}

// UpdateStorageItem applies a sparse patch.
func (a *App) UpdateStorageItem(ctx context.Context, id string, patch store.Patch) (domain.StorageItem, error) {
	return a.storageItems.Update(ctx, id, patch)
}

// DeleteStorageItem removes a storage item.
func (a *App) DeleteStorageItem(ctx context.Context, id string) error {
	return a.storageItems.Delete(ctx, id)
}

// ListStorageItemsByCategory returns items in one category.
func (a *App) ListStorageItemsByCategory(ctx context.Context, category string) ([]domain.StorageItem, error) {
	return a.store.StorageItems().ListByCategory(ctx, category)
}

// GetStorageItemByBarcode retrieves an item by its barcode.
func (a *App) GetStorageItemByBarcode(ctx context.Context, barcode string) (domain.StorageItem, error) {
	item, ok, err := a.store.StorageItems().GetByBarcode(ctx, barcode)
	if err != nil {
		return domain.StorageItem{}, err
	}
	if !ok {
		return domain.StorageItem{}, ErrNotFound
	}
	return item, nil
}
