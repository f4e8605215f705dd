package app

import (
	"context"
	"fmt"

	"github.com/bod9dzys/order-api-mvp/internal/app/services/customers"
	"github.com/bod9dzys/order-api-mvp/internal/app/services/eta"
	"github.com/bod9dzys/order-api-mvp/internal/app/services/orders"
	"github.com/bod9dzys/order-api-mvp/internal/app/services/products"
	"github.com/bod9dzys/order-api-mvp/internal/app/services/users"
	"github.com/bod9dzys/order-api-mvp/internal/app/storage"
	"github.com/bod9dzys/order-api-mvp/internal/app/storage/memory"
	"github.com/bod9dzys/order-api-mvp/internal/app/system"
	"github.com/bod9dzys/order-api-mvp/pkg/logger"
)

// Stores encapsulates persistence dependencies. Nil stores default to the
// in-memory implementation.
type Stores struct {
	Users     storage.UserStore
	Customers storage.CustomerStore
	Products  storage.ProductStore
	Orders    storage.OrderStore
}

// Application ties domain services together and manages their lifecycle.
type Application struct {
	manager *system.Manager
	log     *logger.Logger

	Users     *users.Service
	Customers *customers.Service
	Products  *products.Service
	Orders    *orders.Service
	ETA       *eta.Service
}

// New builds a fully initialised application with the provided stores.
func New(stores Stores, log *logger.Logger) (*Application, error) {
	if log == nil {
		log = logger.NewDefault("app")
	}

	mem := memory.New()
	if stores.Users == nil {
		stores.Users = mem
	}
	if stores.Customers == nil {
		stores.Customers = mem
	}
	if stores.Products == nil {
		stores.Products = mem
	}
	if stores.Orders == nil {
		stores.Orders = mem
	}

	manager := system.NewManager()

	userService := users.New(stores.Users, log)
	customerService := customers.New(stores.Customers, log)
	productService := products.New(stores.Products, log)
	orderService := orders.New(stores.Orders, log)
	etaService := eta.New(stores.Orders, log)

	for _, name := range []string{"users", "customers", "products", "orders"} {
		if err := manager.Register(system.NoopService{ServiceName: name}); err != nil {
			return nil, fmt.Errorf("register %s service: %w", name, err)
		}
	}

	return &Application{
		manager:   manager,
		log:       log,
		Users:     userService,
		Customers: customerService,
		Products:  productService,
		Orders:    orderService,
		ETA:       etaService,
	}, nil
}

// Attach registers an additional lifecycle-managed service. Call before Start.
func (a *Application) Attach(service system.Service) error {
	return a.manager.Register(service)
}

// Start begins all registered services.
func (a *Application) Start(ctx context.Context) error {
	return a.manager.Start(ctx)
}

// Stop stops all services.
func (a *Application) Stop(ctx context.Context) error {
	return a.manager.Stop(ctx)
}
