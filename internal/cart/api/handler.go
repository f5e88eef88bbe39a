package api

import (
	"encoding/json"
	"net/http"

	"festival-tickets/internal/cart"
	"festival-tickets/internal/catalog"
	"festival-tickets/internal/models"
)

// Handler serves the shopper cart endpoints. The session identifier comes
// from the X-Session-ID header; session issuance itself belongs to the auth
// layer, not this engine.
type Handler struct {
	Carts   *cart.Service
	Catalog *catalog.Service
}

type cartResponse struct {
	Lines      []models.CartLine `json:"lines"`
	TotalItems int               `json:"total_items"`
	TotalPrice int64             `json:"total_price"`
}

func sessionID(r *http.Request) string {
	return r.Header.Get("X-Session-ID")
}

// GetCart returns the session's cart with derived totals.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	sid := sessionID(r)
	if sid == "" {
		http.Error(w, "Missing X-Session-ID header", http.StatusBadRequest)
		return
	}

	c := h.Carts.Get(r.Context(), sid)
	writeCart(w, c)
}

type setQuantityRequest struct {
	TicketTypeID string `json:"ticket_type_id"`
	OptionID     string `json:"option_id,omitempty"`
	Quantity     int    `json:"quantity"`
}

// SetQuantity applies one quantity mutation. Out-of-range quantities are
// clamped by the cart, never rejected; the response shows what was stored.
func (h *Handler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	sid := sessionID(r)
	if sid == "" {
		http.Error(w, "Missing X-Session-ID header", http.StatusBadRequest)
		return
	}

	var req setQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	ticketType, err := h.Catalog.GetTicketType(r.Context(), req.TicketTypeID)
	if err != nil {
		http.Error(w, "Unknown ticket type", http.StatusNotFound)
		return
	}

	var option *models.TicketOption
	if req.OptionID != "" {
		option = ticketType.Option(req.OptionID)
		if option == nil {
			http.Error(w, "Unknown option for ticket type", http.StatusNotFound)
			return
		}
	}

	c := h.Carts.SetQuantity(r.Context(), sid, *ticketType, req.Quantity, option)
	writeCart(w, c)
}

// ClearCart empties the session's cart.
func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	sid := sessionID(r)
	if sid == "" {
		http.Error(w, "Missing X-Session-ID header", http.StatusBadRequest)
		return
	}

	h.Carts.Clear(r.Context(), sid)
	w.WriteHeader(http.StatusNoContent)
}

func writeCart(w http.ResponseWriter, c *cart.Cart) {
	resp := cartResponse{
		Lines:      c.Lines,
		TotalItems: c.TotalItems(),
		TotalPrice: c.TotalPrice(),
	}
	if resp.Lines == nil {
		resp.Lines = []models.CartLine{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
