package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"repairdesk/internal/core"
)

// listCompanies handles GET /api/companies. In hosted mode the list is
// filtered to the caller's memberships; local mode returns everything.
func (h *Handler) listCompanies(w http.ResponseWriter, r *http.Request) {
	companies, err := h.svc.ListCompanies(r.Context())
	if err != nil {
		serviceError(w, r, err)
		return
	}
	if h.members != nil {
		memberships, err := h.membershipsFor(r)
		if err != nil {
			serviceError(w, r, err)
			return
		}
		visible := companies[:0]
		for _, c := range companies {
			if _, ok := memberships[c.ID]; ok {
				visible = append(visible, c)
			}
		}
		companies = visible
	}
	if companies == nil {
		companies = []core.Company{}
	}
	writeJSON(w, companies)
}

// createCompany handles POST /api/companies.
func (h *Handler) createCompany(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	company, err := h.svc.CreateCompany(r.Context(), req.Name)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, company)
}

// deleteCompany handles DELETE /api/companies/{companyID}.
func (h *Handler) deleteCompany(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteCompany(r.Context(), chi.URLParam(r, "companyID")); err != nil {
		serviceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
