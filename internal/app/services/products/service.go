// Package products manages the product catalog.
package products

import (
	"context"
	"strings"

	"github.com/bod9dzys/order-api-mvp/internal/app/domain/product"
	"github.com/bod9dzys/order-api-mvp/internal/app/storage"
	apperrors "github.com/bod9dzys/order-api-mvp/internal/errors"
	"github.com/bod9dzys/order-api-mvp/pkg/logger"
)

// Service manages products.
type Service struct {
	store storage.ProductStore
	log   *logger.Logger
}

// New constructs a product service.
func New(store storage.ProductStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("products")
	}
	return &Service{store: store, log: log}
}

// Create adds a product with a unique SKU.
func (s *Service) Create(ctx context.Context, name, sku string, price float64) (product.Product, error) {
	name = strings.TrimSpace(name)
	sku = strings.TrimSpace(sku)
	if name == "" || sku == "" {
		return product.Product{}, apperrors.BadRequest("name and sku are required")
	}
	if price < 0 {
		return product.Product{}, apperrors.BadRequest("price cannot be negative")
	}

	created, err := s.store.CreateProduct(ctx, product.Product{Name: name, SKU: sku, Price: price})
	if err != nil {
		return product.Product{}, err
	}
	s.log.WithField("product_id", created.ID).WithField("sku", created.SKU).Info("product created")
	return created, nil
}

// Replace overwrites every mutable field of a product.
func (s *Service) Replace(ctx context.Context, id, name, sku string, price float64) (product.Product, error) {
	existing, err := s.store.GetProduct(ctx, id)
	if err != nil {
		return product.Product{}, err
	}
	name = strings.TrimSpace(name)
	sku = strings.TrimSpace(sku)
	if name == "" || sku == "" {
		return product.Product{}, apperrors.BadRequest("name and sku are required")
	}
	if price < 0 {
		return product.Product{}, apperrors.BadRequest("price cannot be negative")
	}

	existing.Name = name
	existing.SKU = sku
	existing.Price = price
	return s.store.UpdateProduct(ctx, existing)
}

// Update applies a partial update; nil fields are left untouched.
func (s *Service) Update(ctx context.Context, id string, name, sku *string, price *float64) (product.Product, error) {
	existing, err := s.store.GetProduct(ctx, id)
	if err != nil {
		return product.Product{}, err
	}

	if name != nil {
		if trimmed := strings.TrimSpace(*name); trimmed != "" {
			existing.Name = trimmed
		} else {
			return product.Product{}, apperrors.BadRequest("name cannot be empty")
		}
	}
	if sku != nil {
		if trimmed := strings.TrimSpace(*sku); trimmed != "" {
			existing.SKU = trimmed
		} else {
			return product.Product{}, apperrors.BadRequest("sku cannot be empty")
		}
	}
	if price != nil {
		if *price < 0 {
			return product.Product{}, apperrors.BadRequest("price cannot be negative")
		}
		existing.Price = *price
	}

	return s.store.UpdateProduct(ctx, existing)
}

// Get returns a product by ID.
func (s *Service) Get(ctx context.Context, id string) (product.Product, error) {
	return s.store.GetProduct(ctx, id)
}

// List returns one cursor page of products and the token for the next page.
// An unparseable cursor is treated as the first page.
func (s *Service) List(ctx context.Context, limit int, cursor string) ([]product.Product, string, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	var after *storage.Cursor
	if c, ok := storage.DecodeCursor(cursor); ok {
		after = &c
	}

	// One extra row decides whether another page exists.
	items, err := s.store.ListProducts(ctx, limit+1, after)
	if err != nil {
		return nil, "", err
	}

	next := ""
	if len(items) > limit {
		items = items[:limit]
		last := items[len(items)-1]
		next = storage.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}.Encode()
	}
	return items, next, nil
}

// Delete removes a product.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteProduct(ctx, id); err != nil {
		return err
	}
	s.log.WithField("product_id", id).Info("product deleted")
	return nil
}
