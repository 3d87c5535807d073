package core_test

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"repairdesk/internal/core"
)

func TestNormalize_DefaultsMissingCollections(t *testing.T) {
	s, err := core.Normalize([]byte(`{}`), testNow)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if len(s.Companies)+len(s.Jobs)+len(s.Inventory)+len(s.RepairQueue)+len(s.PartEvents) != 0 {
		t.Errorf("empty input produced rows: %+v", s)
	}
}

func TestNormalize_LegacyFields(t *testing.T) {
	raw := []byte(`{
		"companies": [{"id":"c1","name":"Firma","createdAt":"2025-01-01T00:00:00Z"}],
		"jobs": [{
			"id":"j1","companyId":"c1","orderNumber":"ZL-1",
			"status":"wtrakcie",
			"shipIn":"85.50","shipOut":95,
			"inventoryUsed":[{"itemId":"i1","qty":"3","disposition":"mystery"}]
		}],
		"repairQueue": [{
			"jobId":"j1","inventoryItemId":"i1","qty":2,
			"disposition":"return","addedAt":"2025-02-01T00:00:00Z"
		}],
		"partEvents": [{
			"jobId":"j1","eventType":"return","qty":1,"date":"2025-03-01T00:00:00Z"
		}]
	}`)

	s, err := core.Normalize(raw, testNow)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	j := s.Jobs[0]
	if j.Status != core.StatusInProgress {
		t.Errorf("legacy status = %s, want in_progress", j.Status)
	}
	if j.JobType != core.TypeHub {
		t.Errorf("missing job type = %s, want hub default", j.JobType)
	}
	if !j.ShipIn.Equal(decimal.RequireFromString("85.50")) || !j.ShipOut.Equal(decimal.NewFromInt(95)) {
		t.Errorf("coerced shipping = %s / %s", j.ShipIn, j.ShipOut)
	}
	if u := j.InventoryUsed[0]; u.Qty != 3 || u.Disposition != core.DispositionRenew {
		t.Errorf("usage line = %+v, want qty 3 disposition renew", u)
	}

	q := s.RepairQueue[0]
	if q.CompanyID != "c1" {
		t.Errorf("queue company not resolved via job: %+v", q)
	}
	if q.ItemID != "i1" {
		t.Errorf("inventoryItemId alias ignored: %+v", q)
	}
	if q.ID == "" {
		t.Error("missing queue id not generated")
	}
	if !q.CreatedAt.Equal(time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("addedAt alias ignored: %v", q.CreatedAt)
	}

	e := s.PartEvents[0]
	if e.CompanyID != "c1" {
		t.Errorf("event company not resolved via job: %+v", e)
	}
	if e.Type != core.EventReturn {
		t.Errorf("eventType alias = %s, want return", e.Type)
	}
	if !e.EventDate.Equal(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("date alias ignored: %v", e.EventDate)
	}
}

func TestNormalize_DropsOrphanedRows(t *testing.T) {
	raw := []byte(`{
		"repairQueue": [{"id":"q1","jobId":"ghost","qty":1,"disposition":"renew"}],
		"partEvents": [{"id":"e1","qty":1,"type":"dispose"}]
	}`)
	s, err := core.Normalize(raw, testNow)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if len(s.RepairQueue) != 0 {
		t.Errorf("orphaned queue row survived: %+v", s.RepairQueue)
	}
	if len(s.PartEvents) != 0 {
		t.Errorf("orphaned event survived: %+v", s.PartEvents)
	}
}

func TestNormalize_EnumFallbacks(t *testing.T) {
	raw := []byte(`{
		"jobs": [{"id":"j1","companyId":"c1","orderNumber":"ZL-1"}],
		"partEvents": [
			{"jobId":"j1","qty":1,"type":"renew"},
			{"jobId":"j1","qty":1,"type":"vaporized"}
		]
	}`)
	s, err := core.Normalize(raw, testNow)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if s.PartEvents[0].Type != core.EventRenew {
		t.Errorf("renew is a recognized event type, got %s", s.PartEvents[0].Type)
	}
	if s.PartEvents[1].Type != core.EventDispose {
		t.Errorf("unknown event type = %s, want dispose fallback", s.PartEvents[1].Type)
	}
}

// Round trip: marshaling a normalized snapshot and normalizing again is a
// fixed point.
func TestNormalize_Idempotent(t *testing.T) {
	raw := []byte(`{
		"companies": [{"id":"c1","name":"Firma","createdAt":"2025-01-01T00:00:00Z"}],
		"jobs": [{
			"id":"j1","companyId":"c1","orderNumber":"ZL-1","status":"nowe","jobType":"hub",
			"shipIn":10,"createdAt":"2025-01-02T00:00:00Z","updatedAt":"2025-01-02T00:00:00Z",
			"inventoryUsed":[{"itemId":"i1","sku":"CAP","name":"Capacitor","qty":2,"disposition":"renew"}]
		}],
		"inventory": [{"id":"i1","companyId":"c1","sku":"CAP","name":"Capacitor","qty":5,"minQty":1,"createdAt":"2025-01-01T00:00:00Z"}],
		"repairQueue": [{"id":"q1","companyId":"c1","jobId":"j1","itemId":"i1","sku":"CAP","name":"Capacitor","qty":2,"disposition":"renew","createdAt":"2025-01-02T00:00:00Z"}],
		"partEvents": [{"id":"e1","companyId":"c1","jobId":"j1","itemId":"i1","sku":"CAP","name":"Capacitor","qty":1,"type":"dispose","eventDate":"2025-01-03T00:00:00Z"}]
	}`)

	first, err := core.Normalize(raw, testNow)
	if err != nil {
		t.Fatalf("first Normalize: %v", err)
	}
	saved, err := json.Marshal(first)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	second, err := core.Normalize(saved, testNow.Add(time.Hour))
	if err != nil {
		t.Fatalf("second Normalize: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("normalize is not idempotent:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestNormalize_ClampsNegativeQuantities(t *testing.T) {
	raw := []byte(`{"inventory": [{"id":"i1","companyId":"c1","name":"Part","qty":-4,"minQty":-1}]}`)
	s, err := core.Normalize(raw, testNow)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if it := s.Inventory[0]; it.Qty != 0 || it.MinQty != 0 {
		t.Errorf("negative counters not clamped: %+v", it)
	}
}

func TestNormalize_RejectsMalformedJSON(t *testing.T) {
	if _, err := core.Normalize([]byte(`{"jobs": [`), testNow); err == nil {
		t.Fatal("expected decode error")
	}
}
