package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"festival-tickets/internal/b2b"
	"festival-tickets/internal/models"
)

// Handler serves the corporate order endpoints. The acting operator arrives
// in the X-Actor header; authentication happens upstream.
type Handler struct {
	Orders *b2b.Service
}

func actor(r *http.Request) string {
	if a := r.Header.Get("X-Actor"); a != "" {
		return a
	}
	return "system"
}

type quoteRequest struct {
	Selections []b2b.SelectionRequest `json:"selections"`
}

// Quote prices a selection set without creating anything. Ineligible
// requests still get their quote back so the UI can show the upsell hint.
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	_, quote, err := h.Orders.QuoteSelections(r.Context(), req.Selections)
	if err != nil {
		http.Error(w, "Could not price selections: "+err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(quote)
}

// CreateOrder submits a corporate order.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req b2b.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.Orders.SubmitOrder(r.Context(), req, actor(r))
	if err != nil {
		if errors.Is(err, b2b.ErrBelowMinimum) {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		http.Error(w, "Could not place order: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(result)
}

// GetOrder returns the order with items and transition history.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")
	order, err := h.Orders.GetOrder(r.Context(), orderID)
	if err != nil {
		http.Error(w, "Order not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(order)
}

// Fulfillment actions. Each one maps guard violations to 409 with the
// offending status so the admin UI can disable the action, and CAS conflicts
// to 409 with a retry hint.

func (h *Handler) GenerateInvoice(w http.ResponseWriter, r *http.Request) {
	h.runAction(w, r, func(orderID, act string) (*models.B2BOrder, error) {
		return h.Orders.GenerateInvoice(r.Context(), orderID, act)
	})
}

func (h *Handler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	note := h.decodeNote(r)
	h.runAction(w, r, func(orderID, act string) (*models.B2BOrder, error) {
		return h.Orders.MarkPaid(r.Context(), orderID, act, note)
	})
}

func (h *Handler) GenerateTickets(w http.ResponseWriter, r *http.Request) {
	h.runAction(w, r, func(orderID, act string) (*models.B2BOrder, error) {
		return h.Orders.GenerateTickets(r.Context(), orderID, act)
	})
}

func (h *Handler) SendTickets(w http.ResponseWriter, r *http.Request) {
	h.runAction(w, r, func(orderID, act string) (*models.B2BOrder, error) {
		return h.Orders.SendTickets(r.Context(), orderID, act)
	})
}

func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	h.runAction(w, r, func(orderID, act string) (*models.B2BOrder, error) {
		return h.Orders.Complete(r.Context(), orderID, act)
	})
}

func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	note := h.decodeNote(r)
	h.runAction(w, r, func(orderID, act string) (*models.B2BOrder, error) {
		return h.Orders.Cancel(r.Context(), orderID, act, note)
	})
}

func (h *Handler) decodeNote(r *http.Request) string {
	if r.ContentLength == 0 {
		return ""
	}
	var body struct {
		Note string `json:"note"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return ""
	}
	return body.Note
}

func (h *Handler) runAction(w http.ResponseWriter, r *http.Request, action func(orderID, actor string) (*models.B2BOrder, error)) {
	orderID := chi.URLParam(r, "orderId")

	order, err := action(orderID, actor(r))
	if err != nil {
		var invalid *b2b.InvalidTransitionError
		switch {
		case errors.Is(err, sql.ErrNoRows):
			http.Error(w, "Order not found", http.StatusNotFound)
		case errors.As(err, &invalid):
			writeActionError(w, http.StatusConflict, map[string]any{
				"error":          "action_not_available",
				"action":         invalid.Action,
				"current_status": invalid.Status,
			})
		case errors.Is(err, b2b.ErrStatusConflict):
			writeActionError(w, http.StatusConflict, map[string]any{
				"error":  "status_conflict",
				"detail": "order was modified concurrently, re-read and retry",
			})
		default:
			http.Error(w, "Action failed: "+err.Error(), http.StatusBadGateway)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(order)
}

func writeActionError(w http.ResponseWriter, status int, body map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
