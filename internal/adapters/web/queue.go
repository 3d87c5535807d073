package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"repairdesk/internal/core"
)

// listQueue handles GET /api/companies/{companyID}/queue.
func (h *Handler) listQueue(w http.ResponseWriter, r *http.Request) {
	entries, err := h.svc.ListQueue(r.Context(), chi.URLParam(r, "companyID"))
	if err != nil {
		serviceError(w, r, err)
		return
	}
	if entries == nil {
		entries = []core.RepairQueueEntry{}
	}
	writeJSON(w, entries)
}

// resolveQueueEntry handles POST /api/companies/{companyID}/queue/{entryID}/resolve.
// An action outside the entry's supported set leaves the ledger untouched
// and is reported as 422 rather than silently swallowed.
func (h *Handler) resolveQueueEntry(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Action string `json:"action"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.svc.ResolveQueueEntry(r.Context(),
		chi.URLParam(r, "companyID"), chi.URLParam(r, "entryID"), core.ResolveAction(req.Action))
	if err != nil {
		serviceError(w, r, err)
		return
	}
	if !res.Applied {
		writeError(w, r, "action not supported for this entry", "UNSUPPORTED_ACTION", http.StatusUnprocessableEntity)
		return
	}
	writeJSON(w, map[string]any{
		"applied":         true,
		"inventoryReturn": res.InventoryReturn,
		"event":           res.Event,
	})
}

// listEvents handles GET /api/companies/{companyID}/events.
func (h *Handler) listEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.svc.ListEvents(r.Context(), chi.URLParam(r, "companyID"))
	if err != nil {
		serviceError(w, r, err)
		return
	}
	if events == nil {
		events = []core.PartEvent{}
	}
	writeJSON(w, events)
}
