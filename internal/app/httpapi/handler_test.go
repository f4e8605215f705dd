package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/bod9dzys/order-api-mvp/internal/app"
	"github.com/bod9dzys/order-api-mvp/internal/app/auth"
	"github.com/bod9dzys/order-api-mvp/internal/app/domain/order"
	"github.com/bod9dzys/order-api-mvp/internal/app/services/eta"
	"github.com/bod9dzys/order-api-mvp/internal/app/storage"
)

func newTestHandler(t *testing.T) (http.Handler, *auth.Manager) {
	t.Helper()
	application, err := app.New(app.Stores{}, nil)
	if err != nil {
		t.Fatalf("app: %v", err)
	}
	tokens := auth.New("test-secret", 5, 1440)
	h, err := NewHandler(Config{App: application, Tokens: tokens})
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	return h, tokens
}

func doJSON(t *testing.T, h http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
}

func detail(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Detail string `json:"detail"`
	}
	decode(t, w, &body)
	return body.Detail
}

// registerAndLogin creates an account and returns a bearer token for it.
func registerAndLogin(t *testing.T, h http.Handler, email string) string {
	t.Helper()
	if w := doJSON(t, h, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email": email, "password": "secret1",
	}); w.Code != http.StatusCreated {
		t.Fatalf("register: %d %s", w.Code, w.Body.String())
	}
	w := doJSON(t, h, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": email, "password": "secret1",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login: %d %s", w.Code, w.Body.String())
	}
	var pair auth.TokenPair
	decode(t, w, &pair)
	return pair.AccessToken
}

func TestHealthEndpointsArePublic(t *testing.T) {
	h, _ := newTestHandler(t)

	for _, path := range []string{"/healthz", "/api/v1/health"} {
		w := doJSON(t, h, http.MethodGet, path, "", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("%s: %d", path, w.Code)
		}
		var body map[string]string
		decode(t, w, &body)
		if body["status"] != "ok" {
			t.Fatalf("%s body: %v", path, body)
		}
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	h, _ := newTestHandler(t)

	w := doJSON(t, h, http.MethodGet, "/api/v1/customers", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("code = %d", w.Code)
	}
	if got := detail(t, w); got != "Not authenticated" {
		t.Fatalf("detail = %q", got)
	}
	if w.Header().Get("WWW-Authenticate") != "Bearer" {
		t.Fatal("missing WWW-Authenticate challenge")
	}
}

func TestAuthFlow(t *testing.T) {
	h, _ := newTestHandler(t)

	w := doJSON(t, h, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email": "Ann@Example.com", "password": "secret1",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register: %d %s", w.Code, w.Body.String())
	}
	var created struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	decode(t, w, &created)
	if created.Email != "ann@example.com" || created.Role != "client" {
		t.Fatalf("unexpected user: %+v", created)
	}
	if strings.Contains(w.Body.String(), "hashed_password") {
		t.Fatal("password hash leaked in response")
	}

	w = doJSON(t, h, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email": "ann@example.com", "password": "secret1",
	})
	if w.Code != http.StatusBadRequest || detail(t, w) != "Email exists" {
		t.Fatalf("duplicate register: %d %q", w.Code, detail(t, w))
	}

	w = doJSON(t, h, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "ann@example.com", "password": "wrong",
	})
	if w.Code != http.StatusUnauthorized || detail(t, w) != "Bad credentials" {
		t.Fatalf("bad login: %d %q", w.Code, detail(t, w))
	}

	w = doJSON(t, h, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "ann@example.com", "password": "secret1",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login: %d %s", w.Code, w.Body.String())
	}
	var pair auth.TokenPair
	decode(t, w, &pair)
	if pair.AccessToken == "" || pair.RefreshToken == "" || pair.TokenType != "bearer" {
		t.Fatalf("unexpected pair: %+v", pair)
	}

	w = doJSON(t, h, http.MethodGet, "/api/v1/auth/me", pair.AccessToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("me: %d %s", w.Code, w.Body.String())
	}
	var me struct {
		Email string `json:"email"`
	}
	decode(t, w, &me)
	if me.Email != "ann@example.com" {
		t.Fatalf("me email = %q", me.Email)
	}

	w = doJSON(t, h, http.MethodPost, "/api/v1/auth/refresh", "", map[string]string{
		"refresh_token": pair.RefreshToken,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("refresh: %d %s", w.Code, w.Body.String())
	}
	var refreshed auth.TokenPair
	decode(t, w, &refreshed)
	if refreshed.AccessToken == "" || refreshed.RefreshToken == "" {
		t.Fatalf("unexpected refreshed pair: %+v", refreshed)
	}

	// An access token is not accepted as a refresh token.
	w = doJSON(t, h, http.MethodPost, "/api/v1/auth/refresh", "", map[string]string{
		"refresh_token": pair.AccessToken,
	})
	if w.Code != http.StatusUnauthorized || detail(t, w) != "Invalid token" {
		t.Fatalf("refresh with access token: %d %q", w.Code, detail(t, w))
	}
}

func TestLoginAcceptsOAuth2Form(t *testing.T) {
	h, _ := newTestHandler(t)
	registerAndLogin(t, h, "form@example.com")

	form := url.Values{}
	form.Set("username", "form@example.com")
	form.Set("password", "secret1")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("form login: %d %s", w.Code, w.Body.String())
	}
	var pair auth.TokenPair
	decode(t, w, &pair)
	if pair.AccessToken == "" {
		t.Fatal("no access token from form login")
	}
}

func TestCustomerProductOrderFlow(t *testing.T) {
	h, _ := newTestHandler(t)
	token := registerAndLogin(t, h, "ops@example.com")

	w := doJSON(t, h, http.MethodPost, "/api/v1/customers", token, map[string]interface{}{
		"full_name": "Ann", "email": "ann@example.com", "lat": 50.45, "lon": 30.52,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create customer: %d %s", w.Code, w.Body.String())
	}
	var cust struct {
		ID string `json:"id"`
	}
	decode(t, w, &cust)

	w = doJSON(t, h, http.MethodPost, "/api/v1/customers", token, map[string]interface{}{
		"full_name": "Dup", "email": "ann@example.com", "lat": 0, "lon": 0,
	})
	if w.Code != http.StatusBadRequest || detail(t, w) != "Customer with this email already exists" {
		t.Fatalf("duplicate customer: %d %q", w.Code, detail(t, w))
	}

	w = doJSON(t, h, http.MethodPost, "/api/v1/products", token, map[string]interface{}{
		"name": "Mug", "sku": "MUG-1", "price": 9.5,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create product: %d %s", w.Code, w.Body.String())
	}
	var prod struct {
		ID string `json:"id"`
	}
	decode(t, w, &prod)

	w = doJSON(t, h, http.MethodPost, "/api/v1/products", token, map[string]interface{}{
		"name": "Copy", "sku": "MUG-1", "price": 1,
	})
	if w.Code != http.StatusBadRequest || detail(t, w) != "Product with this SKU already exists" {
		t.Fatalf("duplicate product: %d %q", w.Code, detail(t, w))
	}

	w = doJSON(t, h, http.MethodPost, "/api/v1/orders", token, map[string]interface{}{
		"customer_id": cust.ID,
		"items":       []map[string]interface{}{{"product_id": prod.ID, "quantity": 2}},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create order: %d %s", w.Code, w.Body.String())
	}
	var ord struct {
		ID       string `json:"id"`
		Status   string `json:"status"`
		Customer struct {
			ID string `json:"id"`
		} `json:"customer"`
	}
	decode(t, w, &ord)
	if ord.Status != "new" || ord.Customer.ID != cust.ID {
		t.Fatalf("unexpected order: %+v", ord)
	}

	w = doJSON(t, h, http.MethodPost, "/api/v1/orders", token, map[string]interface{}{
		"customer_id": "nope",
		"items":       []map[string]interface{}{{"product_id": prod.ID, "quantity": 1}},
	})
	if w.Code != http.StatusBadRequest || detail(t, w) != "Invalid product or customer ID" {
		t.Fatalf("bad refs: %d %q", w.Code, detail(t, w))
	}

	w = doJSON(t, h, http.MethodPatch, "/api/v1/orders/"+ord.ID, token, map[string]string{
		"status": "pending",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("patch status: %d %s", w.Code, w.Body.String())
	}

	w = doJSON(t, h, http.MethodPost, "/api/v1/orders/"+ord.ID+"/cancel", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("cancel: %d %s", w.Code, w.Body.String())
	}
	var cancelled struct {
		Status string `json:"status"`
	}
	decode(t, w, &cancelled)
	if cancelled.Status != "cancelled" {
		t.Fatalf("status = %q", cancelled.Status)
	}

	w = doJSON(t, h, http.MethodGet, "/api/v1/orders/missing", token, nil)
	if w.Code != http.StatusNotFound || detail(t, w) != "Order not found" {
		t.Fatalf("missing order: %d %q", w.Code, detail(t, w))
	}

	w = doJSON(t, h, http.MethodDelete, "/api/v1/orders/"+ord.ID, token, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete order: %d", w.Code)
	}
}

func TestProductListPagination(t *testing.T) {
	h, _ := newTestHandler(t)
	token := registerAndLogin(t, h, "pager@example.com")

	for i := 0; i < 3; i++ {
		w := doJSON(t, h, http.MethodPost, "/api/v1/products", token, map[string]interface{}{
			"name": fmt.Sprintf("p%d", i), "sku": fmt.Sprintf("SKU-%d", i), "price": 1,
		})
		if w.Code != http.StatusCreated {
			t.Fatalf("create %d: %d %s", i, w.Code, w.Body.String())
		}
	}

	w := doJSON(t, h, http.MethodGet, "/api/v1/products?limit=2", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("first page: %d %s", w.Code, w.Body.String())
	}
	var page struct {
		Data       []json.RawMessage `json:"data"`
		NextCursor *string           `json:"next_cursor"`
	}
	decode(t, w, &page)
	if len(page.Data) != 2 || page.NextCursor == nil {
		t.Fatalf("first page: len=%d cursor=%v", len(page.Data), page.NextCursor)
	}

	w = doJSON(t, h, http.MethodGet, "/api/v1/products?limit=2&cursor="+url.QueryEscape(*page.NextCursor), token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("second page: %d %s", w.Code, w.Body.String())
	}
	decode(t, w, &page)
	if len(page.Data) != 1 || page.NextCursor != nil {
		t.Fatalf("second page: len=%d cursor=%v", len(page.Data), page.NextCursor)
	}
}

func TestOrderETAAndAddressUpdate(t *testing.T) {
	h, _ := newTestHandler(t)
	token := registerAndLogin(t, h, "eta@example.com")

	w := doJSON(t, h, http.MethodPost, "/api/v1/customers", token, map[string]interface{}{
		"full_name": "Ann", "email": "ann@example.com",
		"lat": eta.WarehouseLatitude, "lon": eta.WarehouseLongitude,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("customer: %d %s", w.Code, w.Body.String())
	}
	var cust struct {
		ID string `json:"id"`
	}
	decode(t, w, &cust)

	w = doJSON(t, h, http.MethodPost, "/api/v1/products", token, map[string]interface{}{
		"name": "Mug", "sku": "MUG-1", "price": 1,
	})
	var prod struct {
		ID string `json:"id"`
	}
	decode(t, w, &prod)

	w = doJSON(t, h, http.MethodPost, "/api/v1/orders", token, map[string]interface{}{
		"customer_id": cust.ID,
		"items":       []map[string]interface{}{{"product_id": prod.ID, "quantity": 1}},
	})
	var ord struct {
		ID string `json:"id"`
	}
	decode(t, w, &ord)

	w = doJSON(t, h, http.MethodGet, "/api/v1/orders/"+ord.ID+"/eta", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("eta: %d %s", w.Code, w.Body.String())
	}
	var est struct {
		OrderID    string  `json:"order_id"`
		DistanceKM float64 `json:"distance_km"`
		ETAMinutes float64 `json:"eta_minutes"`
		CO2Grams   float64 `json:"co2_grams"`
		MergeWith  *string `json:"suggested_merge_with"`
	}
	decode(t, w, &est)
	if est.OrderID != ord.ID || est.DistanceKM != 0 || est.ETAMinutes != 0 {
		t.Fatalf("unexpected estimate: %+v", est)
	}

	// Moving the drop-off point returns a fresh, non-zero estimate.
	w = doJSON(t, h, http.MethodPatch, "/api/v1/orders/"+ord.ID+"/address?lat=50.5168&lon=30.4982", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("address: %d %s", w.Code, w.Body.String())
	}
	decode(t, w, &est)
	if est.DistanceKM <= 0 || est.ETAMinutes <= 0 || est.CO2Grams <= 0 {
		t.Fatalf("estimate not recalculated: %+v", est)
	}

	w = doJSON(t, h, http.MethodPatch, "/api/v1/orders/"+ord.ID+"/address?lat=50.0", token, nil)
	if w.Code != http.StatusBadRequest || detail(t, w) != "lat and lon query parameters are required" {
		t.Fatalf("missing lon: %d %q", w.Code, detail(t, w))
	}
}

func TestAuditRequiresAdmin(t *testing.T) {
	h, tokens := newTestHandler(t)
	token := registerAndLogin(t, h, "client@example.com")

	// Generate a mutating request to audit.
	doJSON(t, h, http.MethodPost, "/api/v1/customers", token, map[string]interface{}{
		"full_name": "Ann", "email": "ann@example.com", "lat": 1, "lon": 1,
	})

	w := doJSON(t, h, http.MethodGet, "/api/v1/audit", token, nil)
	if w.Code != http.StatusForbidden || detail(t, w) != "admin role required" {
		t.Fatalf("client audit: %d %q", w.Code, detail(t, w))
	}

	adminPair, err := tokens.IssuePair("admin-1", "admin@example.com", "admin")
	if err != nil {
		t.Fatalf("issue admin pair: %v", err)
	}
	w = doJSON(t, h, http.MethodGet, "/api/v1/audit", adminPair.AccessToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("admin audit: %d %s", w.Code, w.Body.String())
	}
	var entries []struct {
		Method string `json:"method"`
		Path   string `json:"path"`
		Status int    `json:"status"`
	}
	decode(t, w, &entries)
	if len(entries) == 0 {
		t.Fatal("no audit entries recorded")
	}
	found := false
	for _, e := range entries {
		if e.Method == http.MethodPost && e.Path == "/api/v1/customers" && e.Status == http.StatusCreated {
			found = true
		}
	}
	if !found {
		t.Fatalf("customer creation not audited: %+v", entries)
	}
}

func TestCustomerRequiresCoordinates(t *testing.T) {
	h, _ := newTestHandler(t)
	token := registerAndLogin(t, h, "coords@example.com")

	w := doJSON(t, h, http.MethodPost, "/api/v1/customers", token, map[string]interface{}{
		"full_name": "No Coords", "email": "nocoords@example.com",
	})
	if w.Code != http.StatusBadRequest || detail(t, w) != "lat and lon are required" {
		t.Fatalf("missing both: %d %q", w.Code, detail(t, w))
	}

	w = doJSON(t, h, http.MethodPost, "/api/v1/customers", token, map[string]interface{}{
		"full_name": "No Lon", "email": "nolon@example.com", "lat": 50.45,
	})
	if w.Code != http.StatusBadRequest || detail(t, w) != "lat and lon are required" {
		t.Fatalf("missing lon: %d %q", w.Code, detail(t, w))
	}

	// An explicit (0, 0) is a valid location, not an omission.
	w = doJSON(t, h, http.MethodPost, "/api/v1/customers", token, map[string]interface{}{
		"full_name": "Null Island", "email": "zero@example.com", "lat": 0, "lon": 0,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("explicit zeros: %d %s", w.Code, w.Body.String())
	}

	w = doJSON(t, h, http.MethodPut, "/api/v1/customers/whatever", token, map[string]interface{}{
		"full_name": "No Coords", "email": "nocoords@example.com",
	})
	if w.Code != http.StatusBadRequest || detail(t, w) != "lat and lon are required" {
		t.Fatalf("replace without coords: %d %q", w.Code, detail(t, w))
	}
}

// brokenOrderStore fails every call the way a lost database connection would.
type brokenOrderStore struct{}

var errConnDown = errors.New("driver: bad connection")

func (brokenOrderStore) CreateOrder(context.Context, order.Order) (order.Order, error) {
	return order.Order{}, errConnDown
}

func (brokenOrderStore) ReplaceOrder(context.Context, string, string, []order.Item) (order.Order, error) {
	return order.Order{}, errConnDown
}

func (brokenOrderStore) UpdateOrderStatus(context.Context, string, order.Status) (order.Order, error) {
	return order.Order{}, errConnDown
}

func (brokenOrderStore) GetOrder(context.Context, string) (order.Order, error) {
	return order.Order{}, errConnDown
}

func (brokenOrderStore) ListOrders(context.Context, int, *storage.Cursor) ([]order.Order, error) {
	return nil, errConnDown
}

func (brokenOrderStore) ListOrdersByStatus(context.Context, order.Status) ([]order.Order, error) {
	return nil, errConnDown
}

func (brokenOrderStore) DeleteOrder(context.Context, string) error {
	return errConnDown
}

func TestStoreFailureIsServerError(t *testing.T) {
	application, err := app.New(app.Stores{Orders: brokenOrderStore{}}, nil)
	if err != nil {
		t.Fatalf("app: %v", err)
	}
	tokens := auth.New("test-secret", 5, 1440)
	h, err := NewHandler(Config{App: application, Tokens: tokens})
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	token := registerAndLogin(t, h, "outage@example.com")

	w := doJSON(t, h, http.MethodGet, "/api/v1/orders", token, nil)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("code = %d, want 500", w.Code)
	}
	if got := detail(t, w); got != "Internal server error" {
		t.Fatalf("detail = %q", got)
	}
	if strings.Contains(w.Body.String(), "bad connection") {
		t.Fatalf("driver detail leaked: %s", w.Body.String())
	}
}

func TestValidationFailureStaysBadRequest(t *testing.T) {
	h, _ := newTestHandler(t)
	token := registerAndLogin(t, h, "validator@example.com")

	w := doJSON(t, h, http.MethodPost, "/api/v1/orders", token, map[string]interface{}{
		"customer_id": "c-1",
		"items":       []map[string]interface{}{},
	})
	if w.Code != http.StatusBadRequest || detail(t, w) != "at least one item is required" {
		t.Fatalf("empty items: %d %q", w.Code, detail(t, w))
	}
}
