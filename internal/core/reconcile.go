package core

import (
	"time"

	"github.com/google/uuid"
)

// UsagePlan is the full set of side effects implied by replacing a job's
// usage list. It is computed in one pass and applied as one unit, so a
// caller either lands all of it or none of it.
//
// Two consistency strategies coexist here on purpose:
//
//   - InventoryDelta is a signed net diff (previous vs new usage), so
//     re-applying an edit never double-counts stock that an earlier save
//     already moved.
//   - QueueAdds is a full replacement of the job's queue rows, re-derived
//     from the new usage list every time. Queue state for a job is never
//     patched incrementally.
type UsagePlan struct {
	// Lines is the normalized replacement usage list: a copy of the caller's
	// input with unrecognized dispositions resolved to their fallback. This
	// is what gets stored on the job; the caller's slice is never touched.
	Lines []UsageLine

	// InventoryDelta maps item id to net usage change. Positive means more
	// stock leaves inventory, negative means stock comes back.
	InventoryDelta map[string]int

	// QueueAdds replaces every existing repair-queue row for the job.
	QueueAdds []RepairQueueEntry

	// EventAdds are new dispose events. Renew/return events are produced
	// later, when the queue entry is resolved, not here.
	EventAdds []PartEvent
}

// PlanUsage computes the reconciliation between a job's previous and new
// usage lists.
//
// Inventory deltas are keyed by item only: multiple lines for the same item
// (different dispositions) accumulate into a single signed delta, so an edit
// that merely changes a line's disposition nets to zero inventory movement.
func PlanUsage(companyID, jobID string, previous, next []UsageLine, now time.Time) (UsagePlan, error) {
	lines := append([]UsageLine(nil), next...)
	for i, u := range lines {
		if u.ItemID == "" {
			return UsagePlan{}, validationErr("usage line", "missing item reference")
		}
		if u.Qty <= 0 {
			return UsagePlan{}, validationErr("usage line", "quantity must be positive")
		}
		lines[i].Disposition = ParseDisposition(string(u.Disposition))
	}

	plan := UsagePlan{Lines: lines, InventoryDelta: make(map[string]int)}
	for _, u := range previous {
		plan.InventoryDelta[u.ItemID] -= u.Qty
	}
	for _, u := range lines {
		plan.InventoryDelta[u.ItemID] += u.Qty
	}
	// Drop net-zero entries so callers only touch items that actually moved.
	for id, d := range plan.InventoryDelta {
		if d == 0 {
			delete(plan.InventoryDelta, id)
		}
	}

	for _, u := range lines {
		switch u.Disposition {
		case DispositionRenew, DispositionReturn:
			plan.QueueAdds = append(plan.QueueAdds, RepairQueueEntry{
				ID:          uuid.NewString(),
				CompanyID:   companyID,
				JobID:       jobID,
				ItemID:      u.ItemID,
				Name:        u.Name,
				SKU:         u.SKU,
				Qty:         u.Qty,
				Disposition: u.Disposition,
				CreatedAt:   now,
			})
		case DispositionDispose:
			plan.EventAdds = append(plan.EventAdds, PartEvent{
				ID:        uuid.NewString(),
				CompanyID: companyID,
				JobID:     jobID,
				ItemID:    u.ItemID,
				SKU:       u.SKU,
				Name:      u.Name,
				Qty:       u.Qty,
				Type:      EventDispose,
				EventDate: now,
			})
		}
		// DispositionKeep: the part is simply consumed, nothing to track.
	}

	return plan, nil
}

// ApplyUsage replaces the usage list of a job and applies the resulting plan
// to a fresh copy of the snapshot: inventory quantities move by the net
// delta (floored at zero), the job's queue rows are rebuilt, dispose events
// are appended, and the job's UpdatedAt is bumped. The receiver is never
// mutated; on error the returned snapshot is nil and nothing has changed.
func (s *Snapshot) ApplyUsage(companyID, jobID string, next []UsageLine, now time.Time) (*Snapshot, error) {
	job := s.Job(companyID, jobID)
	if job == nil {
		return nil, ErrNotFound
	}

	plan, err := PlanUsage(companyID, jobID, job.InventoryUsed, next, now)
	if err != nil {
		return nil, err
	}

	out := s.Clone()
	for i := range out.Inventory {
		it := &out.Inventory[i]
		if it.CompanyID != companyID {
			continue
		}
		d, ok := plan.InventoryDelta[it.ID]
		if !ok {
			continue
		}
		// Floor at zero: bookkeeping may imply a negative count when stock
		// was adjusted out-of-band, and the count saturates instead. This is
		// a deliberate lossy policy, not a bug.
		it.Qty = max(0, it.Qty-d)
	}

	for i := range out.Jobs {
		if out.Jobs[i].ID == jobID {
			out.Jobs[i].InventoryUsed = plan.Lines
			out.Jobs[i].UpdatedAt = now
		}
	}

	kept := out.RepairQueue[:0]
	for _, r := range out.RepairQueue {
		if r.JobID != jobID {
			kept = append(kept, r)
		}
	}
	out.RepairQueue = append(kept, plan.QueueAdds...)
	out.PartEvents = append(out.PartEvents, plan.EventAdds...)

	return out, nil
}
