package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"garagehub/pkg/domain"
	"garagehub/pkg/store"
)

// ListCustomers returns all customers.
func (a *App) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	return a.customers.List(ctx)
}

// GetCustomer retrieves a customer by id.
func (a *App) GetCustomer(ctx context.Context, id string) (domain.Customer, error) {
	return a.customers.Get(ctx, id)
}

// CreateCustomer inserts a customer after checking that none of its
// plates is already assigned to another customer.
func (a *App) CreateCustomer(ctx context.Context, customer domain.Customer) (domain.Customer, error) {
	if strings.TrimSpace(customer.Name) == "" {
		return domain.Customer{}, fmt.Errorf("%w: name required", ErrBadRequest)
	}
	if customer.Cars == nil {
		customer.Cars = []string{}
	}
	if err := a.ensurePlatesUnassigned(ctx, customer.Cars, ""); err != nil {
		return domain.Customer{}, err
	}
	return a.customers.Create(ctx, customer)
}

// UpdateCustomer applies a sparse patch. A patch replacing the car set
// is checked for plate exclusivity against every other customer.
func (a *App) UpdateCustomer(ctx context.Context, id string, patch store.Patch) (domain.Customer, error) {
	if v, ok := patch["cars"]; ok {
		plates, valid := stringSlice(v)
		if !valid {
			return domain.Customer{}, fmt.Errorf("%w: cars must be a string array", ErrBadRequest)
		}
		if err := a.ensurePlatesUnassigned(ctx, plates, id); err != nil {
			return domain.Customer{}, err
		}
	}
	return a.customers.Update(ctx, id, patch)
}

// DeleteCustomer removes a customer.
func (a *App) DeleteCustomer(ctx context.Context, id string) error {
	return a.customers.Delete(ctx, id)
}

// ListCustomerCars returns the plate set of one customer.
func (a *App) ListCustomerCars(ctx context.Context, id string) ([]string, error) {
	customer, err := a.customers.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if customer.Cars == nil {
		return []string{}, nil
	}
	return customer.Cars, nil
}

// AddCustomerCar atomically adds a plate to the customer's car set.
// A plate already present, or held by another customer, is a conflict.
func (a *App) AddCustomerCar(ctx context.Context, id, plate string) error {
	plate = strings.TrimSpace(plate)
	if plate == "" {
		return fmt.Errorf("%w: plate required", ErrBadRequest)
	}
	if err := a.ensurePlatesUnassigned(ctx, []string{plate}, id); err != nil {
		return err
	}
	modified, err := a.store.Customers().AddCar(ctx, id, plate)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	if !modified {
		return fmt.Errorf("%w: license number already exists", ErrConflict)
	}
	return nil
}

// RemoveCustomerCar atomically removes a plate from the customer's car
// set. A plate not present is treated as missing.
func (a *App) RemoveCustomerCar(ctx context.Context, id, plate string) error {
	plate = strings.TrimSpace(plate)
	if plate == "" {
		return fmt.Errorf("%w: plate required", ErrBadRequest)
	}
	modified, err := a.store.Customers().RemoveCar(ctx, id, plate)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	if !modified {
		return fmt.Errorf("%w: plate not assigned to customer", ErrNotFound)
	}
	return nil
}

// ListCustomersByCar returns the customers whose car set contains the
// plate.
func (a *App) ListCustomersByCar(ctx context.Context, plate string) ([]domain.Customer, error) {
	return a.store.Customers().ListByPlate(ctx, plate)
}

func (a *App) ensurePlatesUnassigned(ctx context.Context, plates []string, allowedID string) error {
	if len(plates) == 0 {
		return nil
	}
	_, found, err := a.store.Customers().FindWithAnyPlate(ctx, plates, allowedID)
	if err != nil {
		return err
	}
	if found {
		return fmt.Errorf("%w: license number already exists", ErrConflict)
	}
	return nil
}
