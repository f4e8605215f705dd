// Package customers manages customer records and their delivery coordinates.
package customers

import (
	"context"
	"strings"

	"github.com/bod9dzys/order-api-mvp/internal/app/domain/customer"
	"github.com/bod9dzys/order-api-mvp/internal/app/storage"
	apperrors "github.com/bod9dzys/order-api-mvp/internal/errors"
	"github.com/bod9dzys/order-api-mvp/pkg/logger"
)

// Service manages customer records.
type Service struct {
	store storage.CustomerStore
	log   *logger.Logger
}

// New constructs a customer service.
func New(store storage.CustomerStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("customers")
	}
	return &Service{store: store, log: log}
}

// Create registers a new customer.
func (s *Service) Create(ctx context.Context, fullName, email string, lat, lon float64) (customer.Customer, error) {
	fullName = strings.TrimSpace(fullName)
	email = strings.TrimSpace(email)
	if fullName == "" {
		return customer.Customer{}, apperrors.BadRequest("full_name is required")
	}
	if email == "" || !strings.Contains(email, "@") {
		return customer.Customer{}, apperrors.BadRequest("a valid email is required")
	}
	if err := validateCoordinates(lat, lon); err != nil {
		return customer.Customer{}, err
	}

	created, err := s.store.CreateCustomer(ctx, customer.Customer{
		FullName:  fullName,
		Email:     email,
		Latitude:  lat,
		Longitude: lon,
	})
	if err != nil {
		return customer.Customer{}, err
	}
	s.log.WithField("customer_id", created.ID).Info("customer created")
	return created, nil
}

// Replace overwrites every mutable field of a customer.
func (s *Service) Replace(ctx context.Context, id, fullName, email string, lat, lon float64) (customer.Customer, error) {
	existing, err := s.store.GetCustomer(ctx, id)
	if err != nil {
		return customer.Customer{}, err
	}
	fullName = strings.TrimSpace(fullName)
	email = strings.TrimSpace(email)
	if fullName == "" || email == "" {
		return customer.Customer{}, apperrors.BadRequest("full_name and email are required")
	}
	if err := validateCoordinates(lat, lon); err != nil {
		return customer.Customer{}, err
	}

	existing.FullName = fullName
	existing.Email = email
	existing.Latitude = lat
	existing.Longitude = lon
	return s.store.UpdateCustomer(ctx, existing)
}

// Update applies a partial update; nil fields are left untouched.
func (s *Service) Update(ctx context.Context, id string, fullName, email *string, lat, lon *float64) (customer.Customer, error) {
	existing, err := s.store.GetCustomer(ctx, id)
	if err != nil {
		return customer.Customer{}, err
	}

	if fullName != nil {
		if trimmed := strings.TrimSpace(*fullName); trimmed != "" {
			existing.FullName = trimmed
		} else {
			return customer.Customer{}, apperrors.BadRequest("full_name cannot be empty")
		}
	}
	if email != nil {
		if trimmed := strings.TrimSpace(*email); trimmed != "" && strings.Contains(trimmed, "@") {
			existing.Email = trimmed
		} else {
			return customer.Customer{}, apperrors.BadRequest("a valid email is required")
		}
	}
	if lat != nil {
		existing.Latitude = *lat
	}
	if lon != nil {
		existing.Longitude = *lon
	}
	if err := validateCoordinates(existing.Latitude, existing.Longitude); err != nil {
		return customer.Customer{}, err
	}

	return s.store.UpdateCustomer(ctx, existing)
}

// Relocate moves a customer to new coordinates.
func (s *Service) Relocate(ctx context.Context, id string, lat, lon float64) (customer.Customer, error) {
	if err := validateCoordinates(lat, lon); err != nil {
		return customer.Customer{}, err
	}
	existing, err := s.store.GetCustomer(ctx, id)
	if err != nil {
		return customer.Customer{}, err
	}
	existing.Latitude = lat
	existing.Longitude = lon
	return s.store.UpdateCustomer(ctx, existing)
}

// Get returns a customer by ID.
func (s *Service) Get(ctx context.Context, id string) (customer.Customer, error) {
	return s.store.GetCustomer(ctx, id)
}

// List returns customers with offset pagination.
func (s *Service) List(ctx context.Context, skip, limit int) ([]customer.Customer, error) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = 100
	}
	if limit > 1000 {
		limit = 1000
	}
	return s.store.ListCustomers(ctx, skip, limit)
}

// Delete removes a customer and, by cascade, their orders.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteCustomer(ctx, id); err != nil {
		return err
	}
	s.log.WithField("customer_id", id).Info("customer deleted")
	return nil
}

func validateCoordinates(lat, lon float64) error {
	if lat < -90 || lat > 90 {
		return apperrors.BadRequest("lat must be between -90 and 90")
	}
	if lon < -180 || lon > 180 {
		return apperrors.BadRequest("lon must be between -180 and 180")
	}
	return nil
}
