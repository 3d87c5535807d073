package core_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"repairdesk/internal/core"
)

func TestAggregate_EmptyInputKeepsShape(t *testing.T) {
	r, err := core.Aggregate(nil, nil, "2025-06-01", "2025-06-30")
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if len(r.ByStatus) != len(core.KnownStatuses()) {
		t.Errorf("status buckets = %d, want %d", len(r.ByStatus), len(core.KnownStatuses()))
	}
	for _, b := range r.ByStatus {
		if b.Count != 0 {
			t.Errorf("bucket %s count = %d, want 0", b.Status, b.Count)
		}
	}
	if len(r.ByType) != len(core.KnownJobTypes()) {
		t.Errorf("type buckets = %d, want %d", len(r.ByType), len(core.KnownJobTypes()))
	}
	if len(r.UsageByDisp) != len(core.KnownDispositions()) {
		t.Errorf("disposition buckets = %d, want %d", len(r.UsageByDisp), len(core.KnownDispositions()))
	}
	if len(r.EventsByType) != len(core.KnownEventTypes()) {
		t.Errorf("event buckets = %d, want %d", len(r.EventsByType), len(core.KnownEventTypes()))
	}
	if !r.Shipping.Shipping.IsZero() || !r.Shipping.Insurance.IsZero() {
		t.Errorf("shipping totals not zero: %+v", r.Shipping)
	}
}

func TestAggregate_DateBoundary(t *testing.T) {
	local := func(y int, m time.Month, d, hh, mm, ss, ns int) time.Time {
		return time.Date(y, m, d, hh, mm, ss, ns, time.Local)
	}
	jobs := []core.Job{
		{ID: "edge", Status: core.StatusNew, JobType: core.TypeHub, CreatedAt: local(2025, 6, 30, 23, 59, 59, 0)},
		{ID: "past", Status: core.StatusNew, JobType: core.TypeHub, CreatedAt: local(2025, 7, 1, 0, 0, 0, 1000)},
		{ID: "start", Status: core.StatusNew, JobType: core.TypeHub, CreatedAt: local(2025, 6, 1, 0, 0, 0, 0)},
	}
	r, err := core.Aggregate(jobs, nil, "2025-06-01", "2025-06-30")
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if r.JobCount != 2 {
		t.Fatalf("job count = %d, want 2 (23:59:59 in, next microsecond out)", r.JobCount)
	}
	for _, b := range r.ByStatus {
		for _, j := range b.Jobs {
			if j.ID == "past" {
				t.Error("job one microsecond past the bound was included")
			}
		}
	}
}

func TestAggregate_UnboundedRange(t *testing.T) {
	jobs := []core.Job{
		{ID: "ancient", Status: core.StatusNew, JobType: core.TypeHub, CreatedAt: time.Date(1999, 1, 1, 0, 0, 0, 0, time.Local)},
		{ID: "recent", Status: core.StatusNew, JobType: core.TypeHub, CreatedAt: time.Date(2025, 6, 10, 0, 0, 0, 0, time.Local)},
	}
	r, err := core.Aggregate(jobs, nil, "", "")
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if r.JobCount != 2 {
		t.Errorf("unbounded range job count = %d, want 2", r.JobCount)
	}
	r, err = core.Aggregate(jobs, nil, "2025-01-01", "")
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if r.JobCount != 1 {
		t.Errorf("from-only range job count = %d, want 1", r.JobCount)
	}
}

func TestAggregate_BucketsAndDrillDown(t *testing.T) {
	created := time.Date(2025, 6, 10, 10, 0, 0, 0, time.Local)
	jobs := []core.Job{
		{
			ID: "j1", OrderNumber: "ZL-1", Status: core.StatusCompleted, JobType: core.TypeHub,
			CreatedAt: created,
			ShipIn:    decimal.NewFromInt(10), ShipOut: decimal.NewFromInt(20),
			InsIn: decimal.NewFromInt(3), InsOut: decimal.NewFromInt(4),
			InventoryUsed: []core.UsageLine{
				{ItemID: "i1", SKU: "CAP", Name: "Capacitor", Qty: 3, Disposition: core.DispositionKeep},
				{ItemID: "i2", SKU: "PSU", Name: "Power supply", Qty: 2, Disposition: core.DispositionRenew},
			},
		},
		{ID: "j2", OrderNumber: "ZL-2", Status: "limbo", JobType: core.TypeOnsite, CreatedAt: created},
	}
	events := []core.PartEvent{
		{ID: "e1", Type: core.EventRenew, Qty: 5, EventDate: created},
		{ID: "e2", Type: core.EventRenew, Qty: 7, EventDate: created},
		{ID: "e3", Type: core.EventDispose, Qty: 4, EventDate: created},
	}

	r, err := core.Aggregate(jobs, events, "2025-06-01", "2025-06-30")
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}

	var completed, other *core.StatusBucket
	for i := range r.ByStatus {
		switch r.ByStatus[i].Status {
		case string(core.StatusCompleted):
			completed = &r.ByStatus[i]
		case core.OtherBucket:
			other = &r.ByStatus[i]
		}
	}
	if completed == nil || completed.Count != 1 || len(completed.Jobs) != 1 || completed.Jobs[0].ID != "j1" {
		t.Errorf("completed bucket = %+v", completed)
	}
	if other == nil || other.Count != 1 || other.Jobs[0].ID != "j2" {
		t.Errorf("unknown status must land in the trailing other bucket, got %+v", other)
	}
	if r.ByStatus[len(r.ByStatus)-1].Status != core.OtherBucket {
		t.Error("other bucket is not last")
	}

	for _, b := range r.UsageByDisp {
		switch b.Disposition {
		case string(core.DispositionKeep):
			if b.Qty != 3 || b.Lines != 1 {
				t.Errorf("keep bucket = %+v", b)
			}
		case string(core.DispositionRenew):
			if b.Qty != 2 || len(b.Rows) != 1 || b.Rows[0].OrderNumber != "ZL-1" {
				t.Errorf("renew bucket drill-down = %+v", b)
			}
		}
	}

	for _, b := range r.EventsByType {
		switch b.Type {
		case string(core.EventRenew):
			// renewals are counted per event, not per piece
			if b.Count != 2 || b.Qty != 0 {
				t.Errorf("renew events = %+v, want count 2 qty 0", b)
			}
		case string(core.EventDispose):
			if b.Count != 1 || b.Qty != 4 {
				t.Errorf("dispose events = %+v", b)
			}
		}
	}

	if !r.Shipping.Shipping.Equal(decimal.NewFromInt(30)) {
		t.Errorf("shipping = %s, want 30", r.Shipping.Shipping)
	}
	if !r.Shipping.Insurance.Equal(decimal.NewFromInt(7)) {
		t.Errorf("insurance = %s, want 7", r.Shipping.Insurance)
	}
	if !r.Shipping.Total.Equal(decimal.NewFromInt(37)) {
		t.Errorf("grand total = %s, want 37", r.Shipping.Total)
	}
}

func TestAggregate_InvalidRange(t *testing.T) {
	if _, err := core.Aggregate(nil, nil, "junk", "2025-06-30"); !core.IsValidation(err) {
		t.Errorf("bad from: err = %v, want validation", err)
	}
	if _, err := core.Aggregate(nil, nil, "2025-06-30", "2025-06-01"); !core.IsValidation(err) {
		t.Errorf("inverted range: err = %v, want validation", err)
	}
}
