package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/bod9dzys/order-api-mvp/internal/app/domain/customer"
	"github.com/bod9dzys/order-api-mvp/internal/app/domain/order"
	"github.com/bod9dzys/order-api-mvp/internal/app/domain/product"
	"github.com/bod9dzys/order-api-mvp/internal/app/domain/user"
	"github.com/bod9dzys/order-api-mvp/internal/app/storage"
)

// Store implements the storage interfaces backed by PostgreSQL.
type Store struct {
	db *sql.DB
}

var _ storage.UserStore = (*Store)(nil)
var _ storage.CustomerStore = (*Store)(nil)
var _ storage.ProductStore = (*Store)(nil)
var _ storage.OrderStore = (*Store)(nil)

// New creates a Store using the provided database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// mapError translates driver-level constraint failures into storage sentinels.
func mapError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505":
			return storage.ErrDuplicate
		case "23503":
			return storage.ErrForeignKey
		}
	}
	return err
}

// --- UserStore --------------------------------------------------------------

func (s *Store) CreateUser(ctx context.Context, u user.User) (user.User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Role == "" {
		u.Role = user.RoleClient
	}
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, email, hashed_password, role, created_at, updated_at)
		VALUES ($1, lower($2), $3, $4, $5, $6)
	`, u.ID, u.Email, u.HashedPassword, u.Role, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		return user.User{}, mapError(err)
	}
	return u, nil
}

func (s *Store) GetUser(ctx context.Context, id string) (user.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, `
		SELECT id, email, hashed_password, role, created_at, updated_at
		FROM users
		WHERE id = $1
	`, id))
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, `
		SELECT id, email, hashed_password, role, created_at, updated_at
		FROM users
		WHERE email = lower($1)
	`, email))
}

func (s *Store) scanUser(row *sql.Row) (user.User, error) {
	var u user.User
	if err := row.Scan(&u.ID, &u.Email, &u.HashedPassword, &u.Role, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return user.User{}, err
	}
	return u, nil
}

// --- CustomerStore ----------------------------------------------------------

func (s *Store) CreateCustomer(ctx context.Context, c customer.Customer) (customer.Customer, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO customers (id, full_name, email, latitude, longitude, created_at, updated_at)
		VALUES ($1, $2, lower($3), $4, $5, $6, $7)
	`, c.ID, c.FullName, c.Email, c.Latitude, c.Longitude, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return customer.Customer{}, mapError(err)
	}
	return c, nil
}

func (s *Store) UpdateCustomer(ctx context.Context, c customer.Customer) (customer.Customer, error) {
	existing, err := s.GetCustomer(ctx, c.ID)
	if err != nil {
		return customer.Customer{}, err
	}

	c.CreatedAt = existing.CreatedAt
	c.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE customers
		SET full_name = $2, email = lower($3), latitude = $4, longitude = $5, updated_at = $6
		WHERE id = $1
	`, c.ID, c.FullName, c.Email, c.Latitude, c.Longitude, c.UpdatedAt)
	if err != nil {
		return customer.Customer{}, mapError(err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return customer.Customer{}, sql.ErrNoRows
	}
	return c, nil
}

func (s *Store) GetCustomer(ctx context.Context, id string) (customer.Customer, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, full_name, email, latitude, longitude, created_at, updated_at
		FROM customers
		WHERE id = $1
	`, id)

	var c customer.Customer
	if err := row.Scan(&c.ID, &c.FullName, &c.Email, &c.Latitude, &c.Longitude, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return customer.Customer{}, err
	}
	return c, nil
}

func (s *Store) ListCustomers(ctx context.Context, skip, limit int) ([]customer.Customer, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, full_name, email, latitude, longitude, created_at, updated_at
		FROM customers
		ORDER BY created_at, id
		OFFSET $1 LIMIT $2
	`, skip, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []customer.Customer
	for rows.Next() {
		var c customer.Customer
		if err := rows.Scan(&c.ID, &c.FullName, &c.Email, &c.Latitude, &c.Longitude, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

func (s *Store) DeleteCustomer(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM customers WHERE id = $1
	`, id)
	if err != nil {
		return mapError(err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// --- ProductStore -----------------------------------------------------------

func (s *Store) CreateProduct(ctx context.Context, p product.Product) (product.Product, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO products (id, name, sku, price, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, p.ID, p.Name, p.SKU, p.Price, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return product.Product{}, mapError(err)
	}
	return p, nil
}

func (s *Store) UpdateProduct(ctx context.Context, p product.Product) (product.Product, error) {
	existing, err := s.GetProduct(ctx, p.ID)
	if err != nil {
		return product.Product{}, err
	}

	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE products
		SET name = $2, sku = $3, price = $4, updated_at = $5
		WHERE id = $1
	`, p.ID, p.Name, p.SKU, p.Price, p.UpdatedAt)
	if err != nil {
		return product.Product{}, mapError(err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return product.Product{}, sql.ErrNoRows
	}
	return p, nil
}

func (s *Store) GetProduct(ctx context.Context, id string) (product.Product, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, sku, price, created_at, updated_at
		FROM products
		WHERE id = $1
	`, id)

	var p product.Product
	if err := row.Scan(&p.ID, &p.Name, &p.SKU, &p.Price, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return product.Product{}, err
	}
	return p, nil
}

func (s *Store) ListProducts(ctx context.Context, limit int, after *storage.Cursor) ([]product.Product, error) {
	query := `
		SELECT id, name, sku, price, created_at, updated_at
		FROM products
	`
	args := []interface{}{limit}
	if after != nil {
		query += ` WHERE (created_at, id) > ($2, $3)`
		args = append(args, after.CreatedAt, after.ID)
	}
	query += ` ORDER BY created_at, id LIMIT $1`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []product.Product
	for rows.Next() {
		var p product.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.SKU, &p.Price, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM products WHERE id = $1
	`, id)
	if err != nil {
		return mapError(err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// --- OrderStore -------------------------------------------------------------

func (s *Store) CreateOrder(ctx context.Context, o order.Order) (order.Order, error) {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	if o.Status == "" {
		o.Status = order.StatusNew
	}
	now := time.Now().UTC()
	o.CreatedAt = now
	o.UpdatedAt = now

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return order.Order{}, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (id, customer_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`, o.ID, o.CustomerID, o.Status, o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return order.Order{}, mapError(err)
	}

	if err := insertItems(ctx, tx, o.ID, o.Items); err != nil {
		return order.Order{}, mapError(err)
	}

	if err := tx.Commit(); err != nil {
		return order.Order{}, err
	}
	return s.GetOrder(ctx, o.ID)
}

func (s *Store) ReplaceOrder(ctx context.Context, id, customerID string, items []order.Item) (order.Order, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return order.Order{}, err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE orders
		SET customer_id = $2, updated_at = $3
		WHERE id = $1
	`, id, customerID, time.Now().UTC())
	if err != nil {
		return order.Order{}, mapError(err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return order.Order{}, sql.ErrNoRows
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM order_items WHERE order_id = $1`, id); err != nil {
		return order.Order{}, err
	}
	if err := insertItems(ctx, tx, id, items); err != nil {
		return order.Order{}, mapError(err)
	}

	if err := tx.Commit(); err != nil {
		return order.Order{}, err
	}
	return s.GetOrder(ctx, id)
}

func (s *Store) UpdateOrderStatus(ctx context.Context, id string, status order.Status) (order.Order, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE orders
		SET status = $2, updated_at = $3
		WHERE id = $1
	`, id, status, time.Now().UTC())
	if err != nil {
		return order.Order{}, mapError(err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return order.Order{}, sql.ErrNoRows
	}
	return s.GetOrder(ctx, id)
}

func (s *Store) GetOrder(ctx context.Context, id string) (order.Order, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT o.id, o.customer_id, o.status, o.created_at, o.updated_at,
		       c.id, c.full_name, c.email, c.latitude, c.longitude, c.created_at, c.updated_at
		FROM orders o
		JOIN customers c ON c.id = o.customer_id
		WHERE o.id = $1
	`, id)

	o, err := scanOrder(row)
	if err != nil {
		return order.Order{}, err
	}

	items, err := s.listItems(ctx, o.ID)
	if err != nil {
		return order.Order{}, err
	}
	o.Items = items
	return o, nil
}

func (s *Store) ListOrders(ctx context.Context, limit int, after *storage.Cursor) ([]order.Order, error) {
	query := `
		SELECT o.id, o.customer_id, o.status, o.created_at, o.updated_at,
		       c.id, c.full_name, c.email, c.latitude, c.longitude, c.created_at, c.updated_at
		FROM orders o
		JOIN customers c ON c.id = o.customer_id
	`
	args := []interface{}{limit}
	if after != nil {
		query += ` WHERE (o.created_at, o.id) > ($2, $3)`
		args = append(args, after.CreatedAt, after.ID)
	}
	query += ` ORDER BY o.created_at, o.id LIMIT $1`

	return s.queryOrders(ctx, query, args...)
}

func (s *Store) ListOrdersByStatus(ctx context.Context, status order.Status) ([]order.Order, error) {
	return s.queryOrders(ctx, `
		SELECT o.id, o.customer_id, o.status, o.created_at, o.updated_at,
		       c.id, c.full_name, c.email, c.latitude, c.longitude, c.created_at, c.updated_at
		FROM orders o
		JOIN customers c ON c.id = o.customer_id
		WHERE o.status = $1
		ORDER BY o.created_at, o.id
	`, status)
}

func (s *Store) DeleteOrder(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM orders WHERE id = $1
	`, id)
	if err != nil {
		return mapError(err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *Store) queryOrders(ctx context.Context, query string, args ...interface{}) ([]order.Order, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []order.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range result {
		items, err := s.listItems(ctx, result[i].ID)
		if err != nil {
			return nil, err
		}
		result[i].Items = items
	}
	return result, nil
}

func (s *Store) listItems(ctx context.Context, orderID string) ([]order.Item, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, order_id, product_id, quantity
		FROM order_items
		WHERE order_id = $1
		ORDER BY id
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []order.Item
	for rows.Next() {
		var it order.Item
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row rowScanner) (order.Order, error) {
	var o order.Order
	if err := row.Scan(
		&o.ID, &o.CustomerID, &o.Status, &o.CreatedAt, &o.UpdatedAt,
		&o.Customer.ID, &o.Customer.FullName, &o.Customer.Email,
		&o.Customer.Latitude, &o.Customer.Longitude,
		&o.Customer.CreatedAt, &o.Customer.UpdatedAt,
	); err != nil {
		return order.Order{}, err
	}
	return o, nil
}

func insertItems(ctx context.Context, tx *sql.Tx, orderID string, items []order.Item) error {
	for _, it := range items {
		if it.ID == "" {
			it.ID = uuid.NewString()
		}
		if it.Quantity <= 0 {
			it.Quantity = 1
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO order_items (id, order_id, product_id, quantity)
			VALUES ($1, $2, $3, $4)
		`, it.ID, orderID, it.ProductID, it.Quantity); err != nil {
			return err
		}
	}
	return nil
}
