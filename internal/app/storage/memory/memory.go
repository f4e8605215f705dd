package memory

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bod9dzys/order-api-mvp/internal/app/domain/customer"
	"github.com/bod9dzys/order-api-mvp/internal/app/domain/order"
	"github.com/bod9dzys/order-api-mvp/internal/app/domain/product"
	"github.com/bod9dzys/order-api-mvp/internal/app/domain/user"
	"github.com/bod9dzys/order-api-mvp/internal/app/storage"
)

// Store is an in-memory implementation of the storage interfaces. It is safe
// for concurrent use and is primarily intended for tests and local development.
type Store struct {
	mu           sync.RWMutex
	clock        int64
	users        map[string]user.User
	usersByEmail map[string]string
	customers    map[string]customer.Customer
	products     map[string]product.Product
	orders       map[string]order.Order
}

var _ storage.UserStore = (*Store)(nil)
var _ storage.CustomerStore = (*Store)(nil)
var _ storage.ProductStore = (*Store)(nil)
var _ storage.OrderStore = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		users:        make(map[string]user.User),
		usersByEmail: make(map[string]string),
		customers:    make(map[string]customer.Customer),
		products:     make(map[string]product.Product),
		orders:       make(map[string]order.Order),
	}
}

// nowLocked returns a strictly increasing timestamp so keyset pagination has
// a total order even within one test run.
func (s *Store) nowLocked() time.Time {
	s.clock++
	return time.Now().UTC().Add(time.Duration(s.clock) * time.Microsecond)
}

// UserStore implementation ----------------------------------------------------

func (s *Store) CreateUser(_ context.Context, u user.User) (user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(u.Email)
	if _, exists := s.usersByEmail[key]; exists {
		return user.User{}, storage.ErrDuplicate
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := s.nowLocked()
	u.CreatedAt = now
	u.UpdatedAt = now

	s.users[u.ID] = u
	s.usersByEmail[key] = u.ID
	return u, nil
}

func (s *Store) GetUser(_ context.Context, id string) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return user.User{}, sql.ErrNoRows
	}
	return u, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.usersByEmail[strings.ToLower(email)]
	if !ok {
		return user.User{}, sql.ErrNoRows
	}
	return s.users[id], nil
}

// CustomerStore implementation ------------------------------------------------

func (s *Store) CreateCustomer(_ context.Context, c customer.Customer) (customer.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.customers {
		if strings.EqualFold(existing.Email, c.Email) {
			return customer.Customer{}, storage.ErrDuplicate
		}
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := s.nowLocked()
	c.CreatedAt = now
	c.UpdatedAt = now

	s.customers[c.ID] = c
	return c, nil
}

func (s *Store) UpdateCustomer(_ context.Context, c customer.Customer) (customer.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.customers[c.ID]
	if !ok {
		return customer.Customer{}, sql.ErrNoRows
	}
	for id, other := range s.customers {
		if id != c.ID && strings.EqualFold(other.Email, c.Email) {
			return customer.Customer{}, storage.ErrDuplicate
		}
	}

	c.CreatedAt = existing.CreatedAt
	c.UpdatedAt = s.nowLocked()
	s.customers[c.ID] = c
	return c, nil
}

func (s *Store) GetCustomer(_ context.Context, id string) (customer.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.customers[id]
	if !ok {
		return customer.Customer{}, sql.ErrNoRows
	}
	return c, nil
}

func (s *Store) ListCustomers(_ context.Context, skip, limit int) ([]customer.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]customer.Customer, 0, len(s.customers))
	for _, c := range s.customers {
		all = append(all, c)
	}
	sortByCreation(all, func(c customer.Customer) (time.Time, string) { return c.CreatedAt, c.ID })

	if skip >= len(all) {
		return nil, nil
	}
	all = all[skip:]
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	out := make([]customer.Customer, len(all))
	copy(out, all)
	return out, nil
}

func (s *Store) DeleteCustomer(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.customers[id]; !ok {
		return sql.ErrNoRows
	}
	delete(s.customers, id)
	// Orders cascade with their customer.
	for orderID, o := range s.orders {
		if o.CustomerID == id {
			delete(s.orders, orderID)
		}
	}
	return nil
}

// ProductStore implementation -------------------------------------------------

func (s *Store) CreateProduct(_ context.Context, p product.Product) (product.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.products {
		if strings.EqualFold(existing.SKU, p.SKU) {
			return product.Product{}, storage.ErrDuplicate
		}
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := s.nowLocked()
	p.CreatedAt = now
	p.UpdatedAt = now

	s.products[p.ID] = p
	return p, nil
}

func (s *Store) UpdateProduct(_ context.Context, p product.Product) (product.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.products[p.ID]
	if !ok {
		return product.Product{}, sql.ErrNoRows
	}
	for id, other := range s.products {
		if id != p.ID && strings.EqualFold(other.SKU, p.SKU) {
			return product.Product{}, storage.ErrDuplicate
		}
	}

	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = s.nowLocked()
	s.products[p.ID] = p
	return p, nil
}

func (s *Store) GetProduct(_ context.Context, id string) (product.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return product.Product{}, sql.ErrNoRows
	}
	return p, nil
}

func (s *Store) ListProducts(_ context.Context, limit int, after *storage.Cursor) ([]product.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]product.Product, 0, len(s.products))
	for _, p := range s.products {
		all = append(all, p)
	}
	sortByCreation(all, func(p product.Product) (time.Time, string) { return p.CreatedAt, p.ID })

	return page(all, limit, after, func(p product.Product) (time.Time, string) { return p.CreatedAt, p.ID }), nil
}

func (s *Store) DeleteProduct(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[id]; !ok {
		return sql.ErrNoRows
	}
	delete(s.products, id)
	return nil
}

// OrderStore implementation ---------------------------------------------------

func (s *Store) CreateOrder(_ context.Context, o order.Order) (order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cust, ok := s.customers[o.CustomerID]
	if !ok {
		return order.Order{}, storage.ErrForeignKey
	}
	for _, it := range o.Items {
		if _, ok := s.products[it.ProductID]; !ok {
			return order.Order{}, storage.ErrForeignKey
		}
	}

	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	now := s.nowLocked()
	o.CreatedAt = now
	o.UpdatedAt = now
	if o.Status == "" {
		o.Status = order.StatusNew
	}
	o.Items = cloneItems(o.ID, o.Items)
	o.Customer = cust

	s.orders[o.ID] = o
	return o, nil
}

func (s *Store) ReplaceOrder(_ context.Context, id, customerID string, items []order.Item) (order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.orders[id]
	if !ok {
		return order.Order{}, sql.ErrNoRows
	}
	cust, ok := s.customers[customerID]
	if !ok {
		return order.Order{}, storage.ErrForeignKey
	}
	for _, it := range items {
		if _, ok := s.products[it.ProductID]; !ok {
			return order.Order{}, storage.ErrForeignKey
		}
	}

	existing.CustomerID = customerID
	existing.Customer = cust
	existing.Items = cloneItems(id, items)
	existing.UpdatedAt = s.nowLocked()
	s.orders[id] = existing
	return existing, nil
}

func (s *Store) UpdateOrderStatus(_ context.Context, id string, status order.Status) (order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.orders[id]
	if !ok {
		return order.Order{}, sql.ErrNoRows
	}
	existing.Status = status
	existing.UpdatedAt = s.nowLocked()
	s.orders[id] = existing
	return s.hydrateLocked(existing), nil
}

func (s *Store) GetOrder(_ context.Context, id string) (order.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[id]
	if !ok {
		return order.Order{}, sql.ErrNoRows
	}
	return s.hydrateLocked(o), nil
}

func (s *Store) ListOrders(_ context.Context, limit int, after *storage.Cursor) ([]order.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.sortedOrdersLocked()
	return page(all, limit, after, func(o order.Order) (time.Time, string) { return o.CreatedAt, o.ID }), nil
}

func (s *Store) ListOrdersByStatus(_ context.Context, status order.Status) ([]order.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []order.Order
	for _, o := range s.sortedOrdersLocked() {
		if o.Status == status {
			result = append(result, o)
		}
	}
	return result, nil
}

func (s *Store) DeleteOrder(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orders[id]; !ok {
		return sql.ErrNoRows
	}
	delete(s.orders, id)
	return nil
}

func (s *Store) sortedOrdersLocked() []order.Order {
	all := make([]order.Order, 0, len(s.orders))
	for _, o := range s.orders {
		all = append(all, s.hydrateLocked(o))
	}
	sortByCreation(all, func(o order.Order) (time.Time, string) { return o.CreatedAt, o.ID })
	return all
}

func (s *Store) hydrateLocked(o order.Order) order.Order {
	if cust, ok := s.customers[o.CustomerID]; ok {
		o.Customer = cust
	}
	items := make([]order.Item, len(o.Items))
	copy(items, o.Items)
	o.Items = items
	return o
}

// helpers ----------------------------------------------------------------------

func cloneItems(orderID string, items []order.Item) []order.Item {
	out := make([]order.Item, len(items))
	for i, it := range items {
		if it.ID == "" {
			it.ID = uuid.NewString()
		}
		it.OrderID = orderID
		if it.Quantity <= 0 {
			it.Quantity = 1
		}
		out[i] = it
	}
	return out
}

func sortByCreation[T any](items []T, key func(T) (time.Time, string)) {
	sort.Slice(items, func(i, j int) bool {
		ti, idi := key(items[i])
		tj, idj := key(items[j])
		if ti.Equal(tj) {
			return idi < idj
		}
		return ti.Before(tj)
	})
}

func page[T any](sorted []T, limit int, after *storage.Cursor, key func(T) (time.Time, string)) []T {
	start := 0
	if after != nil {
		start = len(sorted)
		for i, item := range sorted {
			t, id := key(item)
			if t.After(after.CreatedAt) || (t.Equal(after.CreatedAt) && id > after.ID) {
				start = i
				break
			}
		}
	}
	if start >= len(sorted) {
		return nil
	}
	out := sorted[start:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	result := make([]T, len(out))
	copy(result, out)
	return result
}
