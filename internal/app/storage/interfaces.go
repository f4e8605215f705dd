package storage

import (
	"context"
	"errors"

	"github.com/bod9dzys/order-api-mvp/internal/app/domain/customer"
	"github.com/bod9dzys/order-api-mvp/internal/app/domain/order"
	"github.com/bod9dzys/order-api-mvp/internal/app/domain/product"
	"github.com/bod9dzys/order-api-mvp/internal/app/domain/user"
)

// ErrDuplicate reports a unique constraint violation (email, sku).
var ErrDuplicate = errors.New("duplicate value for unique column")

// ErrForeignKey reports a reference to a row that does not exist.
var ErrForeignKey = errors.New("referenced row does not exist")

// UserStore persists user accounts.
type UserStore interface {
	CreateUser(ctx context.Context, u user.User) (user.User, error)
	GetUser(ctx context.Context, id string) (user.User, error)
	GetUserByEmail(ctx context.Context, email string) (user.User, error)
}

// CustomerStore persists customer records.
type CustomerStore interface {
	CreateCustomer(ctx context.Context, c customer.Customer) (customer.Customer, error)
	UpdateCustomer(ctx context.Context, c customer.Customer) (customer.Customer, error)
	GetCustomer(ctx context.Context, id string) (customer.Customer, error)
	ListCustomers(ctx context.Context, skip, limit int) ([]customer.Customer, error)
	DeleteCustomer(ctx context.Context, id string) error
}

// ProductStore persists the product catalog.
type ProductStore interface {
	CreateProduct(ctx context.Context, p product.Product) (product.Product, error)
	UpdateProduct(ctx context.Context, p product.Product) (product.Product, error)
	GetProduct(ctx context.Context, id string) (product.Product, error)
	ListProducts(ctx context.Context, limit int, after *Cursor) ([]product.Product, error)
	DeleteProduct(ctx context.Context, id string) error
}

// OrderStore persists orders together with their item lines.
type OrderStore interface {
	CreateOrder(ctx context.Context, o order.Order) (order.Order, error)
	ReplaceOrder(ctx context.Context, id, customerID string, items []order.Item) (order.Order, error)
	UpdateOrderStatus(ctx context.Context, id string, status order.Status) (order.Order, error)
	GetOrder(ctx context.Context, id string) (order.Order, error)
	ListOrders(ctx context.Context, limit int, after *Cursor) ([]order.Order, error)
	ListOrdersByStatus(ctx context.Context, status order.Status) ([]order.Order, error)
	DeleteOrder(ctx context.Context, id string) error
}
