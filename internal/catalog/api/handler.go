package api

import (
	"encoding/json"
	"net/http"

	"festival-tickets/internal/catalog"
)

type Handler struct {
	Catalog *catalog.Service
}

// GetTicketTypes returns the purchasable catalog with nested options.
func (h *Handler) GetTicketTypes(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.Catalog.Snapshot(r.Context())
	if err != nil {
		http.Error(w, "Could not load catalog: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(snapshot.TicketTypes)
}
