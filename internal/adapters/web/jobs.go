package web

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"repairdesk/internal/core"
)

// listJobs handles GET /api/companies/{companyID}/jobs?status=&type=&q=.
// q matches order number, serial number and issue text, case-insensitively.
func (h *Handler) listJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.svc.ListJobs(r.Context(), chi.URLParam(r, "companyID"))
	if err != nil {
		serviceError(w, r, err)
		return
	}

	status := r.URL.Query().Get("status")
	jobType := r.URL.Query().Get("type")
	q := strings.ToLower(r.URL.Query().Get("q"))
	filtered := jobs[:0]
	for _, j := range jobs {
		if status != "" && string(j.Status) != status {
			continue
		}
		if jobType != "" && string(j.JobType) != jobType {
			continue
		}
		if q != "" && !matchesJob(j, q) {
			continue
		}
		filtered = append(filtered, j)
	}
	jobs = filtered

	if jobs == nil {
		jobs = []core.Job{}
	}
	writeJSON(w, jobs)
}

func matchesJob(j core.Job, q string) bool {
	for _, field := range []string{j.OrderNumber, j.SerialNumber, j.IssueDesc} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

// getJob handles GET /api/companies/{companyID}/jobs/{jobID}.
func (h *Handler) getJob(w http.ResponseWriter, r *http.Request) {
	job, err := h.svc.GetJob(r.Context(), chi.URLParam(r, "companyID"), chi.URLParam(r, "jobID"))
	if err != nil {
		serviceError(w, r, err)
		return
	}
	writeJSON(w, job)
}

// saveJob handles POST /api/companies/{companyID}/jobs (create) and
// PUT /api/companies/{companyID}/jobs/{jobID} (edit). Neither touches the
// usage list; that goes through applyUsage.
func (h *Handler) saveJob(w http.ResponseWriter, r *http.Request) {
	var job core.Job
	if !decodeJSON(w, r, &job) {
		return
	}
	job.ID = chi.URLParam(r, "jobID")
	saved, err := h.svc.SaveJob(r.Context(), chi.URLParam(r, "companyID"), job)
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

// deleteJob handles DELETE /api/companies/{companyID}/jobs/{jobID}.
func (h *Handler) deleteJob(w http.ResponseWriter, r *http.Request) {
	err := h.svc.DeleteJob(r.Context(), chi.URLParam(r, "companyID"), chi.URLParam(r, "jobID"))
	if err != nil {
		serviceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// applyUsage handles PUT /api/companies/{companyID}/jobs/{jobID}/usage.
// The body is the complete replacement usage list; the server reconciles
// inventory, the repair queue and the event log against the previous list.
func (h *Handler) applyUsage(w http.ResponseWriter, r *http.Request) {
	var usage []core.UsageLine
	if !decodeJSON(w, r, &usage) {
		return
	}
	job, err := h.svc.ApplyUsage(r.Context(), chi.URLParam(r, "companyID"), chi.URLParam(r, "jobID"), usage)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	writeJSON(w, job)
}
