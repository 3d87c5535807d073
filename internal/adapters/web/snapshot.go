package web

import (
	"io"
	"net/http"
)

// exportSnapshot handles GET /api/snapshot (local mode). The response is
// the full ledger in the interchange format the importer and the browser-era
// app both understand.
func (h *Handler) exportSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := h.svc.ExportSnapshot(r.Context())
	if err != nil {
		serviceError(w, r, err)
		return
	}
	w.Header().Set("Content-Disposition", "attachment; filename=ledger.json")
	writeJSON(w, snap)
}

// importSnapshot handles POST /api/snapshot (local mode). The body replaces
// the whole ledger after normalization; a rejected body changes nothing.
func (h *Handler) importSnapshot(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, r, "failed to read body", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	if err := h.svc.ImportSnapshot(r.Context(), raw); err != nil {
		serviceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
