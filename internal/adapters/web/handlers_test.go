package web_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"repairdesk/internal/adapters/web"
	"repairdesk/internal/app"
	"repairdesk/internal/core"
	"repairdesk/internal/store"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	svc, err := app.NewLocalService(store.NewMemoryStore(), false)
	require.NoError(t, err)
	srv := httptest.NewServer(web.NewLocalHandler(svc, zap.NewNop()))
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/health")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	decodeBody(t, resp, &body)
	require.Equal(t, "ok", body["status"])
}

func TestRepairLifecycle(t *testing.T) {
	srv := newTestServer(t)

	var company core.Company
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/companies", map[string]string{"name": "Serwis Centralny"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	decodeBody(t, resp, &company)
	require.NotEmpty(t, company.ID)

	base := srv.URL + "/api/companies/" + company.ID

	var item core.InventoryItem
	resp = doJSON(t, http.MethodPost, base+"/inventory", map[string]any{
		"sku": "KND-100", "name": "Drive unit", "qty": 10, "minQty": 2, "location": "A1",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	decodeBody(t, resp, &item)
	require.Equal(t, 10, item.Qty)

	var job core.Job
	resp = doJSON(t, http.MethodPost, base+"/jobs", map[string]any{
		"orderNumber": "ZL-2026-001", "serialNumber": "SN-9", "issueDesc": "no power",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	decodeBody(t, resp, &job)
	require.Equal(t, core.StatusNew, job.Status)

	// Consume two units for renewal and one to dispose.
	resp = doJSON(t, http.MethodPut, base+"/jobs/"+job.ID+"/usage", []map[string]any{
		{"itemId": item.ID, "sku": item.SKU, "name": item.Name, "qty": 2, "disposition": "renew"},
		{"itemId": item.ID, "sku": item.SKU, "name": item.Name, "qty": 1, "disposition": "dispose"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &job)
	require.Len(t, job.InventoryUsed, 2)

	var items []core.InventoryItem
	resp = doJSON(t, http.MethodGet, base+"/inventory", nil)
	decodeBody(t, resp, &items)
	require.Equal(t, 7, items[0].Qty)

	var entries []core.RepairQueueEntry
	resp = doJSON(t, http.MethodGet, base+"/queue", nil)
	decodeBody(t, resp, &entries)
	require.Len(t, entries, 1)
	require.Equal(t, core.DispositionRenew, entries[0].Disposition)

	var events []core.PartEvent
	resp = doJSON(t, http.MethodGet, base+"/events", nil)
	decodeBody(t, resp, &events)
	require.Len(t, events, 1)
	require.Equal(t, core.EventDispose, events[0].Type)

	// "return" is not a supported action for a renew entry.
	resp = doJSON(t, http.MethodPost, base+"/queue/"+entries[0].ID+"/resolve", map[string]string{"action": "return"})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	var errBody map[string]string
	decodeBody(t, resp, &errBody)
	require.Equal(t, "UNSUPPORTED_ACTION", errBody["code"])

	resp = doJSON(t, http.MethodPost, base+"/queue/"+entries[0].ID+"/resolve", map[string]string{"action": "ok"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var res struct {
		Applied         bool `json:"applied"`
		InventoryReturn int  `json:"inventoryReturn"`
	}
	decodeBody(t, resp, &res)
	require.True(t, res.Applied)
	require.Equal(t, 2, res.InventoryReturn)

	resp = doJSON(t, http.MethodGet, base+"/inventory", nil)
	decodeBody(t, resp, &items)
	require.Equal(t, 9, items[0].Qty)

	resp = doJSON(t, http.MethodGet, base+"/queue", nil)
	decodeBody(t, resp, &entries)
	require.Empty(t, entries)
}

func TestReportEndpoint(t *testing.T) {
	srv := newTestServer(t)

	var company core.Company
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/companies", map[string]string{"name": "Firma"})
	decodeBody(t, resp, &company)
	base := srv.URL + "/api/companies/" + company.ID

	var job core.Job
	resp = doJSON(t, http.MethodPost, base+"/jobs", map[string]any{
		"orderNumber": "ZL-1", "shipIn": "12.50", "shipOut": "8.00",
	})
	decodeBody(t, resp, &job)

	resp = doJSON(t, http.MethodGet, base+"/reports", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var rep core.Report
	decodeBody(t, resp, &rep)
	require.Equal(t, 1, rep.JobCount)
	require.True(t, rep.Shipping.Shipping.Equal(mustDecimal(t, "20.50")))

	// Inverted range is rejected.
	resp = doJSON(t, http.MethodGet, base+"/reports?from=2026-02-01&to=2026-01-01", nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodGet, base+"/reports/export?format=csv", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "text/csv", resp.Header.Get("Content-Type"))
	resp.Body.Close()

	resp = doJSON(t, http.MethodGet, base+"/reports/export", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, resp.Header.Get("Content-Disposition"), ".xlsx")
	resp.Body.Close()
}

func TestNotFoundMapping(t *testing.T) {
	srv := newTestServer(t)

	var company core.Company
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/companies", map[string]string{"name": "Firma"})
	decodeBody(t, resp, &company)
	base := srv.URL + "/api/companies/" + company.ID

	resp = doJSON(t, http.MethodGet, base+"/jobs/no-such-job", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodDelete, srv.URL+"/api/companies/no-such-company", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodPost, base+"/queue/no-such-entry/resolve", map[string]string{"action": "ok"})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestValidationMapping(t *testing.T) {
	srv := newTestServer(t)

	var company core.Company
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/companies", map[string]string{"name": "Firma"})
	decodeBody(t, resp, &company)
	base := srv.URL + "/api/companies/" + company.ID

	// Missing order number.
	resp = doJSON(t, http.MethodPost, base+"/jobs", map[string]any{"serialNumber": "SN-1"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var errBody map[string]string
	decodeBody(t, resp, &errBody)
	require.Equal(t, "VALIDATION", errBody["code"])

	// Unknown fields are rejected outright.
	resp = doJSON(t, http.MethodPost, base+"/jobs", map[string]any{"orderNumber": "ZL-1", "bogus": true})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestSnapshotRoundTrip(t *testing.T) {
	srv := newTestServer(t)

	var company core.Company
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/companies", map[string]string{"name": "Firma"})
	decodeBody(t, resp, &company)

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/snapshot", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, resp.Header.Get("Content-Disposition"), "ledger.json")
	var snap core.Snapshot
	decodeBody(t, resp, &snap)
	require.Len(t, snap.Companies, 1)

	// A legacy-shaped payload imports cleanly and replaces the ledger.
	legacy := map[string]any{
		"companies": []map[string]any{{"id": "c1", "name": "Stara Firma"}},
		"jobs": []map[string]any{{
			"id": "j1", "companyId": "c1", "orderNumber": "ZL-9", "status": "wtrakcie",
		}},
	}
	raw, err := json.Marshal(legacy)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/snapshot", bytes.NewReader(raw))
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	var jobs []core.Job
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/companies/c1/jobs", nil)
	decodeBody(t, resp, &jobs)
	require.Len(t, jobs, 1)
	require.Equal(t, core.StatusInProgress, jobs[0].Status)

	// Garbage is rejected without touching the ledger.
	req, err = http.NewRequest(http.MethodPost, srv.URL+"/api/snapshot", bytes.NewReader([]byte("not json")))
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/companies/c1/jobs", nil)
	decodeBody(t, resp, &jobs)
	require.Len(t, jobs, 1)
}

func TestConsistencyEndpoint(t *testing.T) {
	srv := newTestServer(t)

	var company core.Company
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/companies", map[string]string{"name": "Firma"})
	decodeBody(t, resp, &company)
	base := srv.URL + "/api/companies/" + company.ID

	resp = doJSON(t, http.MethodGet, base+"/consistency", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		Balanced   bool                         `json:"balanced"`
		Violations []core.ConservationViolation `json:"violations"`
	}
	decodeBody(t, resp, &body)
	require.True(t, body.Balanced)
	require.Empty(t, body.Violations)
}

func TestRequestIDEcho(t *testing.T) {
	srv := newTestServer(t)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/health", nil)
	require.NoError(t, err)
	req.Header.Set("X-Request-ID", "test-req-42")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, "test-req-42", resp.Header.Get("X-Request-ID"))
}

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}
