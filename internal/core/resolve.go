package core

import (
	"time"

	"github.com/google/uuid"
)

// ResolveAction is an operator decision on a queued part.
type ResolveAction string

const (
	// ActionOK: renewal test passed, the part goes back into stock.
	ActionOK ResolveAction = "ok"
	// ActionBad: renewal test failed, the part is disposed.
	ActionBad ResolveAction = "bad"
	// ActionReturn: the part was physically returned to the manufacturer.
	ActionReturn ResolveAction = "return"
)

// SupportedActions lists the actions valid for a queue entry's disposition.
func SupportedActions(d Disposition) []ResolveAction {
	switch d {
	case DispositionRenew:
		return []ResolveAction{ActionOK, ActionBad}
	case DispositionReturn:
		return []ResolveAction{ActionReturn}
	}
	return nil
}

func actionSupported(d Disposition, action ResolveAction) bool {
	for _, a := range SupportedActions(d) {
		if a == action {
			return true
		}
	}
	return false
}

// Resolution describes the side effects of resolving one queue entry.
// Applied is false when the action is not in the entry's supported set: the
// resolution is then a no-op, and callers decide whether to surface that to
// the user.
type Resolution struct {
	Applied bool

	// InventoryReturn is the quantity to add back to InventoryItem ItemID.
	// Zero except for a successful renewal (action "ok").
	InventoryReturn int
	ItemID          string

	// Event is the audit record to append, nil when Applied is false.
	Event *PartEvent
}

// PlanResolution computes the effects of an action on a queue entry without
// touching any state. Both the snapshot path and the database-backed path
// apply the same plan.
//
// The event is produced even when the entry's item reference has gone stale:
// the quantity, SKU and name on the entry are independently valid, and the
// audit log should record the decision regardless. Only the inventory
// adjustment depends on the item still existing.
func PlanResolution(entry RepairQueueEntry, action ResolveAction, now time.Time) Resolution {
	if !actionSupported(entry.Disposition, action) {
		return Resolution{}
	}

	res := Resolution{Applied: true, ItemID: entry.ItemID}
	var typ EventType
	switch action {
	case ActionOK:
		res.InventoryReturn = entry.Qty
		typ = EventRenew
	case ActionBad:
		typ = EventDispose
	case ActionReturn:
		typ = EventReturn
	}

	res.Event = &PartEvent{
		ID:        uuid.NewString(),
		CompanyID: entry.CompanyID,
		JobID:     entry.JobID,
		ItemID:    entry.ItemID,
		SKU:       entry.SKU,
		Name:      entry.Name,
		Qty:       entry.Qty,
		Type:      typ,
		EventDate: now,
	}
	return res
}

// ResolveQueueEntry applies an operator decision to a fresh copy of the
// snapshot. The queue entry is removed whenever the action is applied;
// resolution is one-shot and destructive, there is no undo. A stale item
// reference skips the stock adjustment but never blocks removal.
//
// An unsupported action returns the original snapshot unchanged with
// Resolution.Applied == false and a nil error.
func (s *Snapshot) ResolveQueueEntry(companyID, entryID string, action ResolveAction, now time.Time) (*Snapshot, Resolution, error) {
	var entry *RepairQueueEntry
	for i := range s.RepairQueue {
		if s.RepairQueue[i].ID == entryID && s.RepairQueue[i].CompanyID == companyID {
			entry = &s.RepairQueue[i]
			break
		}
	}
	if entry == nil {
		return nil, Resolution{}, ErrNotFound
	}

	res := PlanResolution(*entry, action, now)
	if !res.Applied {
		return s, res, nil
	}

	out := s.Clone()
	if res.InventoryReturn > 0 && res.ItemID != "" {
		for i := range out.Inventory {
			it := &out.Inventory[i]
			if it.ID == res.ItemID && it.CompanyID == companyID {
				it.Qty += res.InventoryReturn
			}
		}
	}

	kept := out.RepairQueue[:0]
	for _, r := range out.RepairQueue {
		if r.ID != entryID {
			kept = append(kept, r)
		}
	}
	out.RepairQueue = kept
	out.PartEvents = append(out.PartEvents, *res.Event)

	return out, res, nil
}
