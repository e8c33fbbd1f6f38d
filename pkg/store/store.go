package store

import (
	"context"
	"errors"

	"garagehub/pkg/domain"
)

var (
	// ErrNotFound indicates no document matched the key.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate indicates a unique-key violation on insert.
	ErrDuplicate = errors.New("duplicate key")
	// ErrMultiDelete indicates a delete matched more than one document
	// for a key presumed unique.
	ErrMultiDelete = errors.New("delete matched more than one document")
)

// Patch is a sparse set of field updates: only the supplied keys are
// merged into the stored document.
type Patch map[string]any

// Collection is the uniform persistence contract every entity
// collection provides.
type Collection[T domain.Entity] interface {
	List(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id string) (T, bool, error)
	Insert(ctx context.Context, doc T) error
	// Update merges the patch into the document and returns the stored
	// form. The second return is false when the key does not exist.
	Update(ctx context.Context, id string, patch Patch) (T, bool, error)
	// Delete removes the document; ErrNotFound when nothing matched,
	// ErrMultiDelete when more than one document matched.
	Delete(ctx context.Context, id string) error
}

// CarStore adds the plate-keyed operations cars are looked up by.
type CarStore interface {
	Collection[domain.Car]
	GetByPlate(ctx context.Context, plate string) (domain.Car, bool, error)
	UpdateByPlate(ctx context.Context, plate string, patch Patch) (domain.Car, bool, error)
	DeleteByPlate(ctx context.Context, plate string) error
	// SetGovernmentData writes enrichment data keyed by surrogate id.
	// Returns false without error when the car no longer exists.
	SetGovernmentData(ctx context.Context, id string, data domain.Document) (bool, error)
	ListMissingGovernmentData(ctx context.Context) ([]domain.Car, error)
}

// CustomerStore adds the plate-exclusivity query and the atomic car-set
// mutations.
type CustomerStore interface {
	Collection[domain.Customer]
	// FindWithAnyPlate returns a customer (other than excludeID, when
	// non-empty) whose car set intersects plates.
	FindWithAnyPlate(ctx context.Context, plates []string, excludeID string) (domain.Customer, bool, error)
	ListByPlate(ctx context.Context, plate string) ([]domain.Customer, error)
	// AddCar performs an atomic set-add. modified is false when the
	// plate was already present; ErrNotFound when the customer is missing.
	AddCar(ctx context.Context, id, plate string) (modified bool, err error)
	// RemoveCar performs an atomic set-remove. modified is false when
	// the plate was absent; ErrNotFound when the customer is missing.
	RemoveCar(ctx context.Context, id, plate string) (modified bool, err error)
}

// StorageItemStore adds the alternate-key lookups for storage items.
type StorageItemStore interface {
	Collection[domain.StorageItem]
	ListByCategory(ctx context.Context, category string) ([]domain.StorageItem, error)
	GetByBarcode(ctx context.Context, barcode string) (domain.StorageItem, bool, error)
}

// RepairStore adds attachment tracking for open repairs.
type RepairStore interface {
	Collection[domain.Repair]
	AddAttachment(ctx context.Context, id, key string) error
}

// ErrorCodeStore adds the code-keyed lookup. Callers lowercase codes.
type ErrorCodeStore interface {
	Collection[domain.ErrorCode]
	GetByCode(ctx context.Context, code string) (domain.ErrorCode, bool, error)
}

// Store aggregates all entity collections.
type Store interface {
	Cars() CarStore
	Customers() CustomerStore
	StorageItems() StorageItemStore
	UsedItems() Collection[domain.UsedItem]
	Tools() Collection[domain.Tool]
	Suppliers() Collection[domain.Supplier]
	Repairs() RepairStore
	RepairFinishes() Collection[domain.RepairFinish]
	Tipulim() Collection[domain.Tipul]
	TipulGroups() Collection[domain.TipulGroup]
	Areas() Collection[domain.Area]
	Cameras() Collection[domain.Camera]
	StorageCategories() Collection[domain.StorageCategory]
	ToolCategories() Collection[domain.ToolCategory]
	ErrorCodes() ErrorCodeStore
}
