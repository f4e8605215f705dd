// Package httpapi exposes the order management REST API.
package httpapi

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/bod9dzys/order-api-mvp/internal/app"
	"github.com/bod9dzys/order-api-mvp/internal/app/auth"
	"github.com/bod9dzys/order-api-mvp/internal/app/storage"
	apperrors "github.com/bod9dzys/order-api-mvp/internal/errors"
	"github.com/bod9dzys/order-api-mvp/internal/httputil"
	"github.com/bod9dzys/order-api-mvp/internal/logging"
	"github.com/bod9dzys/order-api-mvp/internal/metrics"
	"github.com/bod9dzys/order-api-mvp/internal/middleware"
)

const apiPrefix = "/api/v1"

// Config bundles the handler's dependencies.
type Config struct {
	App     *app.Application
	Tokens  *auth.Manager
	Metrics *metrics.Metrics
	Log     *logging.Logger

	// AuditLogPath, when set, appends audit entries as JSONL to the file.
	AuditLogPath string
	// AuditMax bounds the number of in-memory audit entries kept for the
	// admin listing endpoint.
	AuditMax int
}

// handler bundles HTTP endpoints for the application services.
type handler struct {
	app    *app.Application
	tokens *auth.Manager
	m      *metrics.Metrics
	log    *logging.Logger
	audit  *auditLog
}

// publicPaths are reachable without a bearer token.
func publicPaths() []string {
	return []string{
		"/healthz",
		"/metrics",
		apiPrefix + "/health",
		apiPrefix + "/auth/register",
		apiPrefix + "/auth/login",
		apiPrefix + "/auth/refresh",
	}
}

// NewHandler returns the fully assembled API router.
func NewHandler(cfg Config) (http.Handler, error) {
	if cfg.App == nil {
		return nil, fmt.Errorf("application is required")
	}
	if cfg.Tokens == nil {
		return nil, fmt.Errorf("token manager is required")
	}
	if cfg.Log == nil {
		cfg.Log = logging.NewLogger(nil)
	}

	sink, err := newFileAuditSink(cfg.AuditLogPath)
	if err != nil {
		return nil, fmt.Errorf("open audit log: %w", err)
	}

	h := &handler{
		app:    cfg.App,
		tokens: cfg.Tokens,
		m:      cfg.Metrics,
		log:    cfg.Log,
		audit:  newAuditLog(cfg.AuditMax, sink),
	}

	r := mux.NewRouter()
	r.Use(middleware.LoggingMiddleware(cfg.Log))
	if cfg.Metrics != nil {
		r.Use(middleware.MetricsMiddleware("order-api", cfg.Metrics))
	}
	authmw := middleware.NewAuthMiddleware(cfg.Tokens, cfg.Log, publicPaths())
	r.Use(authmw.Handler)
	r.Use(h.auditMiddleware)

	r.HandleFunc("/healthz", h.health).Methods(http.MethodGet)
	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics.Handler()).Methods(http.MethodGet)
	}

	api := r.PathPrefix(apiPrefix).Subrouter()
	api.HandleFunc("/health", h.health).Methods(http.MethodGet)

	api.HandleFunc("/auth/register", h.register).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", h.login).Methods(http.MethodPost)
	api.HandleFunc("/auth/refresh", h.refresh).Methods(http.MethodPost)
	api.HandleFunc("/auth/me", h.me).Methods(http.MethodGet)

	api.HandleFunc("/customers", h.createCustomer).Methods(http.MethodPost)
	api.HandleFunc("/customers", h.listCustomers).Methods(http.MethodGet)
	api.HandleFunc("/customers/{id}", h.getCustomer).Methods(http.MethodGet)
	api.HandleFunc("/customers/{id}", h.replaceCustomer).Methods(http.MethodPut)
	api.HandleFunc("/customers/{id}", h.patchCustomer).Methods(http.MethodPatch)
	api.HandleFunc("/customers/{id}", h.deleteCustomer).Methods(http.MethodDelete)

	api.HandleFunc("/products", h.createProduct).Methods(http.MethodPost)
	api.HandleFunc("/products", h.listProducts).Methods(http.MethodGet)
	api.HandleFunc("/products/{id}", h.getProduct).Methods(http.MethodGet)
	api.HandleFunc("/products/{id}", h.replaceProduct).Methods(http.MethodPut)
	api.HandleFunc("/products/{id}", h.patchProduct).Methods(http.MethodPatch)
	api.HandleFunc("/products/{id}", h.deleteProduct).Methods(http.MethodDelete)

	api.HandleFunc("/orders", h.createOrder).Methods(http.MethodPost)
	api.HandleFunc("/orders", h.listOrders).Methods(http.MethodGet)
	api.HandleFunc("/orders/{id}", h.getOrder).Methods(http.MethodGet)
	api.HandleFunc("/orders/{id}", h.replaceOrder).Methods(http.MethodPut)
	api.HandleFunc("/orders/{id}", h.updateOrderStatus).Methods(http.MethodPatch)
	api.HandleFunc("/orders/{id}", h.deleteOrder).Methods(http.MethodDelete)
	api.HandleFunc("/orders/{id}/cancel", h.cancelOrder).Methods(http.MethodPost)
	api.HandleFunc("/orders/{id}/address", h.updateOrderAddress).Methods(http.MethodPatch)
	api.HandleFunc("/orders/{id}/eta", h.orderETA).Methods(http.MethodGet)

	api.HandleFunc("/audit", h.listAudit).Methods(http.MethodGet)

	return r, nil
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// errorMessages carries the resource-specific wording of storage failures.
type errorMessages struct {
	notFound  string
	duplicate string
}

// respondError maps service and storage errors onto HTTP responses.
func respondError(w http.ResponseWriter, r *http.Request, err error, msgs errorMessages) {
	var svcErr *apperrors.ServiceError
	if errors.As(err, &svcErr) {
		httputil.WriteErrorResponse(w, r, svcErr.HTTPStatus, string(svcErr.Code), svcErr.Message, svcErr.Details)
		return
	}
	switch {
	case errors.Is(err, sql.ErrNoRows):
		httputil.NotFound(w, msgs.notFound)
	case errors.Is(err, storage.ErrDuplicate):
		httputil.BadRequest(w, msgs.duplicate)
	case errors.Is(err, storage.ErrForeignKey):
		httputil.BadRequest(w, "Invalid product or customer ID")
	default:
		// Anything unclassified is a store or infrastructure failure, not
		// client input; keep the driver detail out of the response body.
		svcErr = apperrors.Internal("Internal server error", err)
		httputil.WriteErrorResponse(w, r, svcErr.HTTPStatus, string(svcErr.Code), svcErr.Message, nil)
	}
}
