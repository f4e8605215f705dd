package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/bod9dzys/order-api-mvp/internal/httputil"
)

var customerErrors = errorMessages{
	notFound:  "Customer not found",
	duplicate: "Customer with this email already exists",
}

type customerPayload struct {
	FullName string   `json:"full_name"`
	Email    string   `json:"email"`
	Lat      *float64 `json:"lat"`
	Lon      *float64 `json:"lon"`
}

// coordinates unwraps the lat/lon fields, which are required on create and
// replace.
func (p customerPayload) coordinates() (float64, float64, bool) {
	if p.Lat == nil || p.Lon == nil {
		return 0, 0, false
	}
	return *p.Lat, *p.Lon, true
}

type customerPatchPayload struct {
	FullName *string  `json:"full_name"`
	Email    *string  `json:"email"`
	Lat      *float64 `json:"lat"`
	Lon      *float64 `json:"lon"`
}

func (h *handler) createCustomer(w http.ResponseWriter, r *http.Request) {
	var payload customerPayload
	if !httputil.DecodeJSON(w, r, &payload) {
		return
	}
	lat, lon, ok := payload.coordinates()
	if !ok {
		httputil.BadRequest(w, "lat and lon are required")
		return
	}

	c, err := h.app.Customers.Create(r.Context(), payload.FullName, payload.Email, lat, lon)
	if err != nil {
		respondError(w, r, err, customerErrors)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, c)
}

func (h *handler) listCustomers(w http.ResponseWriter, r *http.Request) {
	skip := queryInt(r, "skip", 0)
	limit := queryInt(r, "limit", 100)

	list, err := h.app.Customers.List(r.Context(), skip, limit)
	if err != nil {
		respondError(w, r, err, customerErrors)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, list)
}

func (h *handler) getCustomer(w http.ResponseWriter, r *http.Request) {
	c, err := h.app.Customers.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, r, err, customerErrors)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, c)
}

func (h *handler) replaceCustomer(w http.ResponseWriter, r *http.Request) {
	var payload customerPayload
	if !httputil.DecodeJSON(w, r, &payload) {
		return
	}
	lat, lon, ok := payload.coordinates()
	if !ok {
		httputil.BadRequest(w, "lat and lon are required")
		return
	}

	c, err := h.app.Customers.Replace(r.Context(), mux.Vars(r)["id"], payload.FullName, payload.Email, lat, lon)
	if err != nil {
		respondError(w, r, err, customerErrors)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, c)
}

func (h *handler) patchCustomer(w http.ResponseWriter, r *http.Request) {
	var payload customerPatchPayload
	if !httputil.DecodeJSON(w, r, &payload) {
		return
	}

	c, err := h.app.Customers.Update(r.Context(), mux.Vars(r)["id"], payload.FullName, payload.Email, payload.Lat, payload.Lon)
	if err != nil {
		respondError(w, r, err, customerErrors)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, c)
}

func (h *handler) deleteCustomer(w http.ResponseWriter, r *http.Request) {
	if err := h.app.Customers.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		respondError(w, r, err, customerErrors)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// queryInt parses an integer query parameter, falling back to def when the
// parameter is absent or malformed.
func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}
