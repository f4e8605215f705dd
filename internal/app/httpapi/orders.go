package httpapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/bod9dzys/order-api-mvp/internal/app/domain/order"
	"github.com/bod9dzys/order-api-mvp/internal/app/services/orders"
	"github.com/bod9dzys/order-api-mvp/internal/httputil"
)

var orderErrors = errorMessages{
	notFound: "Order not found",
}

type orderPayload struct {
	CustomerID string             `json:"customer_id"`
	Items      []orders.ItemInput `json:"items"`
}

// orderPage is the cursor-paginated listing response.
type orderPage struct {
	Data       []order.Order `json:"data"`
	NextCursor *string       `json:"next_cursor"`
}

func (h *handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var payload orderPayload
	if !httputil.DecodeJSON(w, r, &payload) {
		return
	}

	o, err := h.app.Orders.Create(r.Context(), payload.CustomerID, payload.Items)
	if err != nil {
		respondError(w, r, err, orderErrors)
		return
	}
	if h.m != nil {
		h.m.OrderCreated()
	}
	httputil.WriteJSON(w, http.StatusCreated, o)
}

func (h *handler) listOrders(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 10)
	cursor := r.URL.Query().Get("cursor")

	items, next, err := h.app.Orders.List(r.Context(), limit, cursor)
	if err != nil {
		respondError(w, r, err, orderErrors)
		return
	}

	page := orderPage{Data: items}
	if items == nil {
		page.Data = []order.Order{}
	}
	if next != "" {
		page.NextCursor = &next
	}
	httputil.WriteJSON(w, http.StatusOK, page)
}

func (h *handler) getOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.app.Orders.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, r, err, orderErrors)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, o)
}

func (h *handler) replaceOrder(w http.ResponseWriter, r *http.Request) {
	var payload orderPayload
	if !httputil.DecodeJSON(w, r, &payload) {
		return
	}

	o, err := h.app.Orders.Replace(r.Context(), mux.Vars(r)["id"], payload.CustomerID, payload.Items)
	if err != nil {
		respondError(w, r, err, orderErrors)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, o)
}

func (h *handler) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Status order.Status `json:"status"`
	}
	if !httputil.DecodeJSON(w, r, &payload) {
		return
	}

	o, err := h.app.Orders.UpdateStatus(r.Context(), mux.Vars(r)["id"], payload.Status)
	if err != nil {
		respondError(w, r, err, orderErrors)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, o)
}

func (h *handler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.app.Orders.Cancel(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, r, err, orderErrors)
		return
	}
	if h.m != nil {
		h.m.OrderCancelled()
	}
	httputil.WriteJSON(w, http.StatusOK, o)
}

// updateOrderAddress moves the order's delivery destination by relocating its
// customer, then returns the recalculated delivery estimate.
func (h *handler) updateOrderAddress(w http.ResponseWriter, r *http.Request) {
	lat, err := queryFloat(r, "lat")
	if err != nil {
		httputil.BadRequest(w, "lat and lon query parameters are required")
		return
	}
	lon, err := queryFloat(r, "lon")
	if err != nil {
		httputil.BadRequest(w, "lat and lon query parameters are required")
		return
	}

	o, err := h.app.Orders.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, r, err, orderErrors)
		return
	}

	if _, err := h.app.Customers.Relocate(r.Context(), o.Customer.ID, lat, lon); err != nil {
		respondError(w, r, err, customerErrors)
		return
	}

	est, err := h.app.ETA.Calculate(r.Context(), o.ID)
	if err != nil {
		respondError(w, r, err, orderErrors)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, est)
}

// queryFloat parses a required float query parameter.
func queryFloat(r *http.Request, name string) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, fmt.Errorf("missing %s", name)
	}
	return strconv.ParseFloat(raw, 64)
}

func (h *handler) orderETA(w http.ResponseWriter, r *http.Request) {
	est, err := h.app.ETA.Calculate(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, r, err, orderErrors)
		return
	}
	if h.m != nil {
		h.m.ETAEstimated()
	}
	httputil.WriteJSON(w, http.StatusOK, est)
}

func (h *handler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	if err := h.app.Orders.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		respondError(w, r, err, orderErrors)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
