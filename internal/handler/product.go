package handler

import "net/http"

type productResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		respondInternal(w, r, err)
		return
	}

	out := make([]productResponse, len(products))
	for i, p := range products {
		out[i] = productResponse{ID: p.ID, Name: p.Name}
	}
	respondJSON(w, http.StatusOK, out)
}
