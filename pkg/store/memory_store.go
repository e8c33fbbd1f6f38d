package store

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	"garagehub/pkg/domain"
)

// MemoryStore keeps every collection in-process. It backs handler and
// app tests; semantics mirror the mongo store, including the unique
// plate constraint on cars.
type MemoryStore struct {
	cars              memCars
	customers         memCustomers
	storageItems      memStorageItems
	usedItems         memColl[domain.UsedItem]
	tools             memColl[domain.Tool]
	suppliers         memColl[domain.Supplier]
	repairs           memRepairs
	repairFinishes    memColl[domain.RepairFinish]
	tipulim           memColl[domain.Tipul]
	tipulGroups       memColl[domain.TipulGroup]
	areas             memColl[domain.Area]
	cameras           memColl[domain.Camera]
	storageCategories memColl[domain.StorageCategory]
	toolCategories    memColl[domain.ToolCategory]
	errorCodes        memErrorCodes
}

// NewMemoryStore initializes empty collections.
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{}
	s.cars.init()
	s.customers.init()
	s.storageItems.init()
	s.usedItems.init()
	s.tools.init()
	s.suppliers.init()
	s.repairs.init()
	s.repairFinishes.init()
	s.tipulim.init()
	s.tipulGroups.init()
	s.areas.init()
	s.cameras.init()
	s.storageCategories.init()
	s.toolCategories.init()
	s.errorCodes.init()
	return s
}

func (s *MemoryStore) Cars() CarStore                                        { return &s.cars }
func (s *MemoryStore) Customers() CustomerStore                              { return &s.customers }
func (s *MemoryStore) StorageItems() StorageItemStore                        { return &s.storageItems }
func (s *MemoryStore) UsedItems() Collection[domain.UsedItem]                { return &s.usedItems }
func (s *MemoryStore) Tools() Collection[domain.Tool]                        { return &s.tools }
func (s *MemoryStore) Suppliers() Collection[domain.Supplier]                { return &s.suppliers }
func (s *MemoryStore) Repairs() RepairStore                                  { return &s.repairs }
func (s *MemoryStore) RepairFinishes() Collection[domain.RepairFinish]       { return &s.repairFinishes }
func (s *MemoryStore) Tipulim() Collection[domain.Tipul]                     { return &s.tipulim }
func (s *MemoryStore) TipulGroups() Collection[domain.TipulGroup]            { return &s.tipulGroups }
func (s *MemoryStore) Areas() Collection[domain.Area]                        { return &s.areas }
func (s *MemoryStore) Cameras() Collection[domain.Camera]                    { return &s.cameras }
func (s *MemoryStore) StorageCategories() Collection[domain.StorageCategory] { return &s.storageCategories }
func (s *MemoryStore) ToolCategories() Collection[domain.ToolCategory]       { return &s.toolCategories }
func (s *MemoryStore) ErrorCodes() ErrorCodeStore                            { return &s.errorCodes }

// memColl stores documents in insertion order (best-effort, matching
// the natural order an unindexed find returns).
type memColl[T domain.Entity] struct {
	mu    sync.RWMutex
	docs  map[string]T
	order []string
}

func (m *memColl[T]) init() {
	m.docs = make(map[string]T)
}

func (m *memColl[T]) List(ctx context.Context) ([]T, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]T, 0, len(m.order))
	for _, id := range m.order {
		if doc, ok := m.docs[id]; ok {
			out = append(out, doc)
		}
	}
	return out, nil
}

func (m *memColl[T]) Get(ctx context.Context, id string) (T, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.docs[id]
	return doc, ok, nil
}

func (m *memColl[T]) Insert(ctx context.Context, doc T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := doc.EntityID()
	if _, exists := m.docs[id]; exists {
		return ErrDuplicate
	}
	m.docs[id] = doc
	m.order = append(m.order, id)
	return nil
}

func (m *memColl[T]) Update(ctx context.Context, id string, patch Patch) (T, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[id]
	if !ok {
		var zero T
		return zero, false, nil
	}
	merged, err := applyPatch(doc, patch)
	if err != nil {
		var zero T
		return zero, false, err
	}
	m.docs[id] = merged
	return merged, true, nil
}

func (m *memColl[T]) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[id]; !ok {
		return ErrNotFound
	}
	delete(m.docs, id)
	m.order = slices.DeleteFunc(m.order, func(s string) bool { return s == id })
	return nil
}

// applyPatch merges the patch through a JSON round-trip so field names
// line up with the wire/bson names.
func applyPatch[T any](doc T, patch Patch) (T, error) {
	var zero T
	raw, err := json.Marshal(doc)
	if err != nil {
		return zero, fmt.Errorf("encode document: %w", err)
	}
	var asMap map[string]any
	if err := json.Unmarshal(raw, &asMap); err != nil {
		return zero, fmt.Errorf("decode document: %w", err)
	}
	for k, v := range patch {
		asMap[k] = v
	}
	merged, err := json.Marshal(asMap)
	if err != nil {
		return zero, fmt.Errorf("encode merged document: %w", err)
	}
	var out T
	if err := json.Unmarshal(merged, &out); err != nil {
		return zero, fmt.Errorf("decode merged document: %w", err)
	}
	return out, nil
}

type memCars struct {
	memColl[domain.Car]
}

func (m *memCars) Insert(ctx context.Context, car domain.Car) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.docs {
		if existing.LicensePlateNumber == car.LicensePlateNumber {
			return ErrDuplicate
		}
	}
	if _, exists := m.docs[car.ID]; exists {
		return ErrDuplicate
	}
	m.docs[car.ID] = car
	m.order = append(m.order, car.ID)
	return nil
}

func (m *memCars) GetByPlate(ctx context.Context, plate string) (domain.Car, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, id := range m.order {
		if car, ok := m.docs[id]; ok && car.LicensePlateNumber == plate {
			return car, true, nil
		}
	}
	return domain.Car{}, false, nil
}

func (m *memCars) UpdateByPlate(ctx context.Context, plate string, patch Patch) (domain.Car, bool, error) {
	car, ok, err := m.GetByPlate(ctx, plate)
	if err != nil || !ok {
		return domain.Car{}, false, err
	}
	return m.Update(ctx, car.ID, patch)
}

func (m *memCars) DeleteByPlate(ctx context.Context, plate string) error {
	car, ok, err := m.GetByPlate(ctx, plate)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return m.Delete(ctx, car.ID)
}

func (m *memCars) SetGovernmentData(ctx context.Context, id string, data domain.Document) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	car, ok := m.docs[id]
	if !ok {
		return false, nil
	}
	car.GovernmentData = data
	m.docs[id] = car
	return true, nil
}

func (m *memCars) ListMissingGovernmentData(ctx context.Context) ([]domain.Car, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []domain.Car{}
	for _, id := range m.order {
		if car, ok := m.docs[id]; ok && car.GovernmentData == nil {
			out = append(out, car)
		}
	}
	return out, nil
}

type memCustomers struct {
	memColl[domain.Customer]
}

func (m *memCustomers) FindWithAnyPlate(ctx context.Context, plates []string, excludeID string) (domain.Customer, bool, error) {
	if len(plates) == 0 {
		return domain.Customer{}, false, nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, id := range m.order {
		cust, ok := m.docs[id]
		if !ok || cust.ID == excludeID {
			continue
		}
		for _, plate := range plates {
			if slices.Contains(cust.Cars, plate) {
				return cust, true, nil
			}
		}
	}
	return domain.Customer{}, false, nil
}

func (m *memCustomers) ListByPlate(ctx context.Context, plate string) ([]domain.Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []domain.Customer{}
	for _, id := range m.order {
		if cust, ok := m.docs[id]; ok && slices.Contains(cust.Cars, plate) {
			out = append(out, cust)
		}
	}
	return out, nil
}

func (m *memCustomers) AddCar(ctx context.Context, id, plate string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cust, ok := m.docs[id]
	if !ok {
		return false, ErrNotFound
	}
	if slices.Contains(cust.Cars, plate) {
		return false, nil
	}
	cust.Cars = append(cust.Cars, plate)
	m.docs[id] = cust
	return true, nil
}

func (m *memCustomers) RemoveCar(ctx context.Context, id, plate string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cust, ok := m.docs[id]
	if !ok {
		return false, ErrNotFound
	}
	if !slices.Contains(cust.Cars, plate) {
		return false, nil
	}
	cust.Cars = slices.DeleteFunc(slices.Clone(cust.Cars), func(s string) bool { return s == plate })
	m.docs[id] = cust
	return true, nil
}

type memStorageItems struct {
	memColl[domain.StorageItem]
}

func (m *memStorageItems) ListByCategory(ctx context.Context, category string) ([]domain.StorageItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []domain.StorageItem{}
	for _, id := range m.order {
		if item, ok := m.docs[id]; ok && item.Category == category {
			out = append(out, item)
		}
	}
	return out, nil
}

func (m *memStorageItems) GetByBarcode(ctx context.Context, barcode string) (domain.StorageItem, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, id := range m.order {
		if item, ok := m.docs[id]; ok && item.Barcode == barcode {
			return item, true, nil
		}
	}
	return domain.StorageItem{}, false, nil
}

type memRepairs struct {
	memColl[domain.Repair]
}

func (m *memRepairs) AddAttachment(ctx context.Context, id, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rep, ok := m.docs[id]
	if !ok {
		return ErrNotFound
	}
	if !slices.Contains(rep.Attachments, key) {
		rep.Attachments = append(rep.Attachments, key)
		m.docs[id] = rep
	}
	return nil
}

type memErrorCodes struct {
	memColl[domain.ErrorCode]
}

func (m *memErrorCodes) GetByCode(ctx context.Context, code string) (domain.ErrorCode, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, id := range m.order {
		if ec, ok := m.docs[id]; ok && ec.Code == code {
			return ec, true, nil
		}
	}
	return domain.ErrorCode{}, false, nil
}
