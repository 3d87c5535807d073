package core_test

import (
	"testing"

	"repairdesk/internal/core"
)

func queueSnapshot() *core.Snapshot {
	return &core.Snapshot{
		Companies: []core.Company{{ID: "c1", Name: "Firma A", CreatedAt: testNow}},
		Inventory: []core.InventoryItem{
			{ID: "i1", CompanyID: "c1", SKU: "CAP-100", Name: "Capacitor", Qty: 4, CreatedAt: testNow},
		},
		RepairQueue: []core.RepairQueueEntry{
			{ID: "q1", CompanyID: "c1", JobID: "j1", ItemID: "i1", SKU: "CAP-100", Name: "Capacitor", Qty: 2, Disposition: core.DispositionRenew, CreatedAt: testNow},
			{ID: "q2", CompanyID: "c1", JobID: "j1", ItemID: "gone", SKU: "OLD-1", Name: "Removed part", Qty: 1, Disposition: core.DispositionReturn, CreatedAt: testNow},
		},
	}
}

func TestResolveQueueEntry_RenewOK(t *testing.T) {
	s := queueSnapshot()
	out, res, err := s.ResolveQueueEntry("c1", "q1", core.ActionOK, testNow)
	if err != nil {
		t.Fatalf("ResolveQueueEntry: %v", err)
	}
	if !res.Applied {
		t.Fatal("expected the action to apply")
	}
	if got := out.Item("c1", "i1").Qty; got != 6 {
		t.Errorf("stock after renewal ok = %d, want 6", got)
	}
	if len(out.CompanyQueue("c1")) != 1 {
		t.Errorf("queue entry not removed: %+v", out.RepairQueue)
	}
	events := out.CompanyEvents("c1")
	if len(events) != 1 || events[0].Type != core.EventRenew || events[0].Qty != 2 {
		t.Errorf("events = %+v, want one renew qty 2", events)
	}
}

func TestResolveQueueEntry_RenewBad(t *testing.T) {
	s := queueSnapshot()
	out, res, err := s.ResolveQueueEntry("c1", "q1", core.ActionBad, testNow)
	if err != nil {
		t.Fatalf("ResolveQueueEntry: %v", err)
	}
	if !res.Applied {
		t.Fatal("expected the action to apply")
	}
	if got := out.Item("c1", "i1").Qty; got != 4 {
		t.Errorf("failed renewal must not restock: qty = %d, want 4", got)
	}
	events := out.CompanyEvents("c1")
	if len(events) != 1 || events[0].Type != core.EventDispose {
		t.Errorf("events = %+v, want one dispose", events)
	}
}

func TestResolveQueueEntry_StaleItemStillResolves(t *testing.T) {
	s := queueSnapshot()
	out, res, err := s.ResolveQueueEntry("c1", "q2", core.ActionReturn, testNow)
	if err != nil {
		t.Fatalf("ResolveQueueEntry: %v", err)
	}
	if !res.Applied {
		t.Fatal("expected the action to apply despite the stale item")
	}
	for _, q := range out.RepairQueue {
		if q.ID == "q2" {
			t.Error("stale-item entry not removed from the queue")
		}
	}
	events := out.CompanyEvents("c1")
	if len(events) != 1 || events[0].Type != core.EventReturn || events[0].SKU != "OLD-1" {
		t.Errorf("events = %+v, want one return with snapshotted SKU", events)
	}
}

func TestResolveQueueEntry_UnsupportedActionIsNoOp(t *testing.T) {
	tests := []struct {
		name    string
		entryID string
		action  core.ResolveAction
	}{
		{"ok on a return entry", "q2", core.ActionOK},
		{"return on a renew entry", "q1", core.ActionReturn},
		{"unknown action", "q1", core.ResolveAction("shred")},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := queueSnapshot()
			out, res, err := s.ResolveQueueEntry("c1", tc.entryID, tc.action, testNow)
			if err != nil {
				t.Fatalf("unsupported action must not error: %v", err)
			}
			if res.Applied {
				t.Error("unsupported action applied")
			}
			if len(out.RepairQueue) != len(s.RepairQueue) {
				t.Error("no-op still modified the queue")
			}
			if len(out.PartEvents) != 0 {
				t.Errorf("no-op produced events: %+v", out.PartEvents)
			}
		})
	}
}

func TestResolveQueueEntry_NotFound(t *testing.T) {
	s := queueSnapshot()
	if _, _, err := s.ResolveQueueEntry("c1", "missing", core.ActionOK, testNow); err != core.ErrNotFound {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	if _, _, err := s.ResolveQueueEntry("c2", "q1", core.ActionOK, testNow); err != core.ErrNotFound {
		t.Errorf("cross-tenant err = %v, want ErrNotFound", err)
	}
}

func TestSupportedActions(t *testing.T) {
	if got := core.SupportedActions(core.DispositionRenew); len(got) != 2 {
		t.Errorf("renew actions = %v", got)
	}
	if got := core.SupportedActions(core.DispositionReturn); len(got) != 1 || got[0] != core.ActionReturn {
		t.Errorf("return actions = %v", got)
	}
	if got := core.SupportedActions(core.DispositionKeep); got != nil {
		t.Errorf("keep actions = %v, want none", got)
	}
}
