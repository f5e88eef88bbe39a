package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"festival-tickets/internal/checkout"
)

type Handler struct {
	Service *checkout.Service
}

type promoRequest struct {
	Code string `json:"code"`
}

// ValidatePromo prices the cart with the code applied. Invalid codes are a
// 200 with valid=false and a plain-language reason, not an error.
func (h *Handler) ValidatePromo(w http.ResponseWriter, r *http.Request) {
	sid := r.Header.Get("X-Session-ID")
	if sid == "" {
		http.Error(w, "Missing X-Session-ID header", http.StatusBadRequest)
		return
	}

	var req promoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Code == "" {
		http.Error(w, "Promo code cannot be empty", http.StatusBadRequest)
		return
	}

	summary, err := h.Service.Preview(r.Context(), sid, req.Code)
	if err != nil {
		http.Error(w, "Could not validate promo: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(summary)
}

type checkoutRequest struct {
	PromoCode string `json:"promo_code,omitempty"`
}

// Checkout commits the retail checkout for the session's cart.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	sid := r.Header.Get("X-Session-ID")
	if sid == "" {
		http.Error(w, "Missing X-Session-ID header", http.StatusBadRequest)
		return
	}

	var req checkoutRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
			return
		}
	}

	result, err := h.Service.Checkout(r.Context(), sid, req.PromoCode)
	if err != nil {
		if errors.Is(err, checkout.ErrEmptyCart) {
			http.Error(w, "Cart is empty", http.StatusUnprocessableEntity)
			return
		}
		http.Error(w, "Could not complete checkout: "+err.Error(), http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(result)
}
