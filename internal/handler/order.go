package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"

	"github.com/jitterlabs/order-api/internal/domain/order"
)

type orderResponse struct {
	ID           string              `json:"id"`
	OrderCode    string              `json:"orderCode"`
	TotalValue   float64             `json:"totalValue"`
	CreationDate time.Time           `json:"creationDate"`
	UserID       string              `json:"userId"`
	Items        []orderItemResponse `json:"items"`
}

type orderItemResponse struct {
	ID        string  `json:"id"`
	ProductID string  `json:"productId"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func toOrderResponse(o *order.Order) orderResponse {
	items := make([]orderItemResponse, len(o.Items))
	for i, it := range o.Items {
		items[i] = orderItemResponse{
			ID:        it.ID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.Price.InexactFloat64(),
		}
	}
	return orderResponse{
		ID:           o.ID,
		OrderCode:    o.Code,
		TotalValue:   o.Total.InexactFloat64(),
		CreationDate: o.CreationDate,
		UserID:       o.UserID,
		Items:        items,
	}
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	u, ok := UserFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req createOrderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	sub, err := req.Submission()
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	o, err := h.orders.Create(r.Context(), sub, u.ID)
	if err != nil {
		h.respondOrderError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, toOrderResponse(o))
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	u, ok := UserFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	out, err := h.orders.List(r.Context(), u.ID)
	if err != nil {
		respondInternal(w, r, err)
		return
	}

	responses := make([]orderResponse, len(out))
	for i := range out {
		responses[i] = toOrderResponse(&out[i])
	}
	respondJSON(w, http.StatusOK, responses)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	u, ok := UserFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	o, err := h.orders.Get(r.Context(), chi.URLParam(r, "code"), u.ID)
	if err != nil {
		h.respondOrderError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toOrderResponse(o))
}

func (h *Handler) updateOrder(w http.ResponseWriter, r *http.Request) {
	u, ok := UserFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req updateOrderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	patch, err := req.Patch()
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	o, err := h.orders.Update(r.Context(), chi.URLParam(r, "code"), patch, u.ID)
	if err != nil {
		h.respondOrderError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toOrderResponse(o))
}

func (h *Handler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	u, ok := UserFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	msg, err := h.orders.Remove(r.Context(), chi.URLParam(r, "code"), u.ID)
	if err != nil {
		h.respondOrderError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, messageResponse{Message: msg})
}

// respondOrderError maps domain failures to status codes: conflicts and
// invalid submissions are 400s, missing orders or products are 404s,
// everything else is a logged 500.
func (h *Handler) respondOrderError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		ceErr  *order.CodeExistsError
		nfErr  *order.NotFoundError
		pnfErr *order.ProductsNotFoundError
		iqErr  *order.InvalidQuantityError
		pmErr  *order.PriceMismatchError
	)
	switch {
	case errors.As(err, &ceErr):
		respondError(w, http.StatusBadRequest, ceErr.Error())
	case errors.As(err, &nfErr):
		respondError(w, http.StatusNotFound, nfErr.Error())
	case errors.As(err, &pnfErr):
		respondError(w, http.StatusNotFound, pnfErr.Error())
	case errors.Is(err, order.ErrEmptyItems):
		respondError(w, http.StatusBadRequest, order.ErrEmptyItems.Error())
	case errors.As(err, &iqErr):
		respondError(w, http.StatusBadRequest, iqErr.Error())
	case errors.As(err, &pmErr):
		respondError(w, http.StatusBadRequest, pmErr.Error())
	default:
		respondInternal(w, r, err)
	}
}
