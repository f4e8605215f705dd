package order

import (
	"time"

	"github.com/bod9dzys/order-api-mvp/internal/app/domain/customer"
)

// Status constrains the order lifecycle states.
type Status string

const (
	StatusNew       Status = "new"
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusShipped   Status = "shipped"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Valid reports whether s is a known lifecycle state.
func (s Status) Valid() bool {
	switch s {
	case StatusNew, StatusPending, StatusPaid, StatusShipped, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Item is one product line within an order.
type Item struct {
	ID        string `json:"id"`
	OrderID   string `json:"-"`
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// Order represents a customer purchase with its item lines.
type Order struct {
	ID         string            `json:"id"`
	CustomerID string            `json:"-"`
	Customer   customer.Customer `json:"customer"`
	Status     Status            `json:"status"`
	Items      []Item            `json:"items"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// ETA summarises the delivery estimate for an order.
type ETA struct {
	OrderID            string  `json:"order_id"`
	DistanceKM         float64 `json:"distance_km"`
	ETAMinutes         float64 `json:"eta_minutes"`
	CO2Grams           float64 `json:"co2_grams"`
	SuggestedMergeWith *string `json:"suggested_merge_with"`
}
