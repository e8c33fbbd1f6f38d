package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"garagehub/pkg/domain"
	"garagehub/pkg/queue"
	"garagehub/pkg/storage"
	"garagehub/pkg/store"
)

// Enqueuer registers enrichment jobs. Satisfied by queue.RedisJobQueue
// and by the synchronous stub used in tests.
type Enqueuer interface {
	Enqueue(ctx context.Context, carID, plate string) (queue.Job, error)
}

// Config holds runtime configuration for the core application.
type Config struct {
	Store         store.Store
	Queue         Enqueuer
	Objects       storage.ObjectStore
	PresignExpiry time.Duration
}

// App is the core application service wiring together storage, the
// enrichment queue and domain logic.
type App struct {
	store         store.Store
	queue         Enqueuer
	objects       storage.ObjectStore
	presignExpiry time.Duration

	UsedItems         *Resource[domain.UsedItem]
	Tools             *Resource[domain.Tool]
	Suppliers         *Resource[domain.Supplier]
	RepairFinishes    *Resource[domain.RepairFinish]
	Tipulim           *Resource[domain.Tipul]
	TipulGroups       *Resource[domain.TipulGroup]
	Areas             *Resource[domain.Area]
	Cameras           *Resource[domain.Camera]
	StorageCategories *Resource[domain.StorageCategory]
	ToolCategories    *Resource[domain.ToolCategory]

	storageItems *Resource[domain.StorageItem]
	repairs      *Resource[domain.Repair]
	errorCodes   *Resource[domain.ErrorCode]
	customers    *Resource[domain.Customer]
}

// New constructs the application. Store and Queue are required; Objects
// may be nil when attachment storage is not configured.
func New(cfg Config) (*App, error) {
	if cfg.Store == nil {
		return nil, errors.New("store required")
	}
	if cfg.Queue == nil {
		return nil, errors.New("queue required")
	}
	presignExpiry := cfg.PresignExpiry
	if presignExpiry <= 0 {
		presignExpiry = 15 * time.Minute
	}
	a := &App{
		store:         cfg.Store,
		queue:         cfg.Queue,
		objects:       cfg.Objects,
		presignExpiry: presignExpiry,
	}

	s := cfg.Store
	a.UsedItems = newResource(s.UsedItems(),
		[]string{"name", "category", "sub", "notes", "amount_in_stock", "car_types", "location"},
		func(d *domain.UsedItem, id string) { d.ID = id })
	a.UsedItems.prepare = func(d *domain.UsedItem) error {
		if d.AmountInStock < 0 {
			return fmt.Errorf("%w: amount_in_stock must be >= 0", ErrBadRequest)
		}
		return nil
	}
	a.UsedItems.preparePatch = func(p store.Patch) error {
		return nonNegativePatch(p, "amount_in_stock")
	}

	a.Tools = newResource(s.Tools(),
		[]string{"name", "category", "sub", "notes", "car_types", "location"},
		func(d *domain.Tool, id string) { d.ID = id })

	a.Suppliers = newResource(s.Suppliers(),
		[]string{"name", "phone_number", "email", "address", "note", "payment", "phone_book", "storage_types"},
		func(d *domain.Supplier, id string) { d.ID = id })

	a.RepairFinishes = newResource(s.RepairFinishes(),
		[]string{"license_plate_number", "area", "tipul", "time_stamp_start", "time_stamp_end", "note", "rows", "products", "car", "customer", "total", "kilometer"},
		func(d *domain.RepairFinish, id string) { d.ID = id })

	a.Tipulim = newResource(s.Tipulim(),
		[]string{"name", "storage_types", "check_list"},
		func(d *domain.Tipul, id string) { d.ID = id })

	a.TipulGroups = newResource(s.TipulGroups(),
		[]string{"name", "tipulim", "check_list", "price"},
		func(d *domain.TipulGroup, id string) { d.ID = id })
	a.TipulGroups.preparePatch = func(p store.Patch) error {
		return nonNegativePatch(p, "price")
	}

	a.Areas = newResource(s.Areas(),
		[]string{"name", "number", "multi"},
		func(d *domain.Area, id string) { d.ID = id })

	a.Cameras = newResource(s.Cameras(),
		[]string{"license_plate_number", "time_stamp"},
		func(d *domain.Camera, id string) { d.ID = id })

	a.StorageCategories = newResource(s.StorageCategories(),
		[]string{"name", "number"},
		func(d *domain.StorageCategory, id string) { d.ID = id })

	a.ToolCategories = newResource(s.ToolCategories(),
		[]string{"name", "number"},
		func(d *domain.ToolCategory, id string) { d.ID = id })

	a.storageItems = newResource[domain.StorageItem](s.StorageItems(),
		[]string{"barcode", "name", "category", "sub", "supplier", "notes", "amount_in_stock", "max_amount_in_stock", "car_types", "location", "price_cost", "price_sell"},
		func(d *domain.StorageItem, id string) { d.ID = id })
	a.storageItems.prepare = func(d *domain.StorageItem) error {
		return validateStorageItem(*d)
	}
	a.storageItems.preparePatch = func(p store.Patch) error {
		return nonNegativePatch(p, "amount_in_stock", "max_amount_in_stock", "price_cost", "price_sell")
	}

	a.repairs = newResource[domain.Repair](s.Repairs(),
		[]string{"license_plate_number", "area_id", "tipul", "time_stamp_start", "time_stamp_end", "note", "rows"},
		func(d *domain.Repair, id string) { d.ID = id })
	a.repairs.prepare = func(d *domain.Repair) error {
		if strings.TrimSpace(d.LicensePlateNumber) == "" {
			return fmt.Errorf("%w: license_plate_number required", ErrBadRequest)
		}
		return nil
	}

	a.errorCodes = newResource[domain.ErrorCode](s.ErrorCodes(),
		[]string{"code", "definition", "cause"},
		func(d *domain.ErrorCode, id string) { d.ID = id })
	a.errorCodes.prepare = func(d *domain.ErrorCode) error {
		d.Code = strings.ToLower(strings.TrimSpace(d.Code))
		if d.Code == "" {
			return fmt.Errorf("%w: code required", ErrBadRequest)
		}
		return nil
	}
	a.errorCodes.preparePatch = func(p store.Patch) error {
		if v, ok := p["code"]; ok {
			s, ok := v.(string)
			if !ok || strings.TrimSpace(s) == "" {
				return fmt.Errorf("%w: code must be a non-empty string", ErrBadRequest)
			}
			p["code"] = strings.ToLower(strings.TrimSpace(s))
		}
		return nil
	}

	a.customers = newResource[domain.Customer](s.Customers(),
		[]string{"cars", "name", "phone_number", "email", "address", "note", "phone_book"},
		func(d *domain.Customer, id string) { d.ID = id })

	return a, nil
}

func validateStorageItem(item domain.StorageItem) error {
	if item.AmountInStock < 0 || item.MaxAmountInStock < 0 {
		return fmt.Errorf("%w: stock amounts must be >= 0", ErrBadRequest)
	}
	if item.PriceCost < 0 || item.PriceSell < 0 {
		return fmt.Errorf("%w: prices must be >= 0", ErrBadRequest)
	}
	return nil
}
