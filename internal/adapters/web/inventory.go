package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"repairdesk/internal/core"
)

// listInventory handles GET /api/companies/{companyID}/inventory.
func (h *Handler) listInventory(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ListInventory(r.Context(), chi.URLParam(r, "companyID"))
	if err != nil {
		serviceError(w, r, err)
		return
	}
	if items == nil {
		items = []core.InventoryItem{}
	}
	writeJSON(w, items)
}

// saveItem handles POST /api/companies/{companyID}/inventory (create) and
// PUT /api/companies/{companyID}/inventory/{itemID} (update).
func (h *Handler) saveItem(w http.ResponseWriter, r *http.Request) {
	var item core.InventoryItem
	if !decodeJSON(w, r, &item) {
		return
	}
	item.ID = chi.URLParam(r, "itemID")
	saved, err := h.svc.SaveItem(r.Context(), chi.URLParam(r, "companyID"), item)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	if r.Method == http.MethodPost {
		writeJSONStatus(w, http.StatusCreated, saved)
		return
	}
	writeJSON(w, saved)
}

// adjustItem handles POST /api/companies/{companyID}/inventory/{itemID}/adjust.
// The body carries a signed delta; the counter floors at zero.
func (h *Handler) adjustItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Delta int `json:"delta"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	item, err := h.svc.AdjustItemQty(r.Context(), chi.URLParam(r, "companyID"), chi.URLParam(r, "itemID"), req.Delta)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	writeJSON(w, item)
}

// deleteItem handles DELETE /api/companies/{companyID}/inventory/{itemID}.
func (h *Handler) deleteItem(w http.ResponseWriter, r *http.Request) {
	err := h.svc.DeleteItem(r.Context(), chi.URLParam(r, "companyID"), chi.URLParam(r, "itemID"))
	if err != nil {
		serviceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
