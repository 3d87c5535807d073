package web

import (
	"net/http"

	"repairdesk/internal/core"
)

// adminCreateUser handles POST /api/admin/users. The caller must be an admin
// of the target company; AdminService enforces that.
func (h *Handler) adminCreateUser(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	if claims == nil {
		writeError(w, r, "authentication required", "UNAUTHORIZED", http.StatusUnauthorized)
		return
	}
	var req struct {
		Email     string `json:"email"`
		Password  string `json:"password"`
		CompanyID string `json:"companyId"`
		Role      string `json:"role"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	user, err := h.admin.CreateUser(r.Context(), claims.UserID, req.Email, req.Password, req.CompanyID, core.Role(req.Role))
	if err != nil {
		serviceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, map[string]string{
		"id":    user.ID,
		"email": user.Email,
	})
}

// adminAssignRole handles POST /api/admin/members. Grants or updates an
// existing user's role in a company.
func (h *Handler) adminAssignRole(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	if claims == nil {
		writeError(w, r, "authentication required", "UNAUTHORIZED", http.StatusUnauthorized)
		return
	}
	var req struct {
		Email     string `json:"email"`
		CompanyID string `json:"companyId"`
		Role      string `json:"role"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	user, err := h.admin.AssignRole(r.Context(), claims.UserID, req.Email, req.CompanyID, core.Role(req.Role))
	if err != nil {
		serviceError(w, r, err)
		return
	}
	writeJSON(w, map[string]string{
		"id":    user.ID,
		"email": user.Email,
	})
}
