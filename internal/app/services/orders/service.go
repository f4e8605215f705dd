// Package orders manages the order lifecycle: creation with item lines,
// cursor-paginated listing, status transitions and deletion.
package orders

import (
	"context"
	"fmt"

	"github.com/bod9dzys/order-api-mvp/internal/app/domain/order"
	"github.com/bod9dzys/order-api-mvp/internal/app/storage"
	apperrors "github.com/bod9dzys/order-api-mvp/internal/errors"
	"github.com/bod9dzys/order-api-mvp/pkg/logger"
)

// ItemInput describes one requested order line.
type ItemInput struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// Service manages orders.
type Service struct {
	store storage.OrderStore
	log   *logger.Logger
}

// New constructs an order service.
func New(store storage.OrderStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("orders")
	}
	return &Service{store: store, log: log}
}

// Create places a new order for a customer.
func (s *Service) Create(ctx context.Context, customerID string, items []ItemInput) (order.Order, error) {
	if customerID == "" {
		return order.Order{}, apperrors.BadRequest("customer_id is required")
	}
	if len(items) == 0 {
		return order.Order{}, apperrors.BadRequest("at least one item is required")
	}

	created, err := s.store.CreateOrder(ctx, order.Order{
		CustomerID: customerID,
		Status:     order.StatusNew,
		Items:      toItems(items),
	})
	if err != nil {
		return order.Order{}, err
	}
	s.log.WithField("order_id", created.ID).
		WithField("customer_id", customerID).
		WithField("items", len(created.Items)).
		Info("order created")
	return created, nil
}

// Replace overwrites the customer reference and item lines of an order.
func (s *Service) Replace(ctx context.Context, id, customerID string, items []ItemInput) (order.Order, error) {
	if customerID == "" {
		return order.Order{}, apperrors.BadRequest("customer_id is required")
	}
	if len(items) == 0 {
		return order.Order{}, apperrors.BadRequest("at least one item is required")
	}
	return s.store.ReplaceOrder(ctx, id, customerID, toItems(items))
}

// UpdateStatus moves an order to a new lifecycle state.
func (s *Service) UpdateStatus(ctx context.Context, id string, status order.Status) (order.Order, error) {
	if !status.Valid() {
		return order.Order{}, apperrors.BadRequest(fmt.Sprintf("unknown status %q", status))
	}
	updated, err := s.store.UpdateOrderStatus(ctx, id, status)
	if err != nil {
		return order.Order{}, err
	}
	s.log.WithField("order_id", id).WithField("status", status).Info("order status updated")
	return updated, nil
}

// Cancel sets the order status to cancelled.
func (s *Service) Cancel(ctx context.Context, id string) (order.Order, error) {
	return s.UpdateStatus(ctx, id, order.StatusCancelled)
}

// Get returns a full order including customer and items.
func (s *Service) Get(ctx context.Context, id string) (order.Order, error) {
	return s.store.GetOrder(ctx, id)
}

// List returns one cursor page of orders and the token for the next page.
func (s *Service) List(ctx context.Context, limit int, cursor string) ([]order.Order, string, error) {
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

	items, err := s.store.ListOrders(ctx, limit+1, after)
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

// Delete removes an order and its items.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteOrder(ctx, id); err != nil {
		return err
	}
	s.log.WithField("order_id", id).Info("order deleted")
	return nil
}

func toItems(in []ItemInput) []order.Item {
	items := make([]order.Item, len(in))
	for i, it := range in {
		qty := it.Quantity
		if qty <= 0 {
			qty = 1
		}
		items[i] = order.Item{ProductID: it.ProductID, Quantity: qty}
	}
	return items
}
