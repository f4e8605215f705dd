package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/bod9dzys/order-api-mvp/internal/app/domain/product"
	"github.com/bod9dzys/order-api-mvp/internal/httputil"
)

var productErrors = errorMessages{
	notFound:  "Product not found",
	duplicate: "Product with this SKU already exists",
}

type productPayload struct {
	Name  string  `json:"name"`
	SKU   string  `json:"sku"`
	Price float64 `json:"price"`
}

type productPatchPayload struct {
	Name  *string  `json:"name"`
	SKU   *string  `json:"sku"`
	Price *float64 `json:"price"`
}

// productPage is the cursor-paginated listing response.
type productPage struct {
	Data       []product.Product `json:"data"`
	NextCursor *string           `json:"next_cursor"`
}

func (h *handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var payload productPayload
	if !httputil.DecodeJSON(w, r, &payload) {
		return
	}

	p, err := h.app.Products.Create(r.Context(), payload.Name, payload.SKU, payload.Price)
	if err != nil {
		respondError(w, r, err, productErrors)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, p)
}

func (h *handler) listProducts(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 10)
	cursor := r.URL.Query().Get("cursor")

	items, next, err := h.app.Products.List(r.Context(), limit, cursor)
	if err != nil {
		respondError(w, r, err, productErrors)
		return
	}

	page := productPage{Data: items}
	if items == nil {
		page.Data = []product.Product{}
	}
	if next != "" {
		page.NextCursor = &next
	}
	httputil.WriteJSON(w, http.StatusOK, page)
}

func (h *handler) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.app.Products.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, r, err, productErrors)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, p)
}

func (h *handler) replaceProduct(w http.ResponseWriter, r *http.Request) {
	var payload productPayload
	if !httputil.DecodeJSON(w, r, &payload) {
		return
	}

	p, err := h.app.Products.Replace(r.Context(), mux.Vars(r)["id"], payload.Name, payload.SKU, payload.Price)
	if err != nil {
		respondError(w, r, err, productErrors)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, p)
}

func (h *handler) patchProduct(w http.ResponseWriter, r *http.Request) {
	var payload productPatchPayload
	if !httputil.DecodeJSON(w, r, &payload) {
		return
	}

	p, err := h.app.Products.Update(r.Context(), mux.Vars(r)["id"], payload.Name, payload.SKU, payload.Price)
	if err != nil {
		respondError(w, r, err, productErrors)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, p)
}

func (h *handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.app.Products.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		respondError(w, r, err, productErrors)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
