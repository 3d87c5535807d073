package core

import "fmt"

// ConservationViolation reports one job whose usage list and its derived
// queue/event rows no longer balance for some disposition.
type ConservationViolation struct {
	CompanyID   string      `json:"companyId"`
	JobID       string      `json:"jobId"`
	OrderNumber string      `json:"orderNumber"`
	Disposition Disposition `json:"disposition"`
	UsageQty    int         `json:"usageQty"`
	TrackedQty  int         `json:"trackedQty"`
	Detail      string      `json:"detail"`
}

// ConservationViolations audits the whole snapshot against the balance rule:
// per job, the usage quantity under each disposition must equal the quantity
// still in flight for it across queue entries and part events of the
// matching type. Keep has no counterpart and is skipped. An empty result
// means the ledger balances.
func (s *Snapshot) ConservationViolations() []ConservationViolation {
	queueQty := map[string]map[Disposition]int{}
	for _, r := range s.RepairQueue {
		if queueQty[r.JobID] == nil {
			queueQty[r.JobID] = map[Disposition]int{}
		}
		queueQty[r.JobID][r.Disposition] += r.Qty
	}
	eventQty := map[string]map[EventType]int{}
	for _, e := range s.PartEvents {
		if e.JobID == "" {
			continue
		}
		if eventQty[e.JobID] == nil {
			eventQty[e.JobID] = map[EventType]int{}
		}
		eventQty[e.JobID][e.Type] += e.Qty
	}

	eventFor := map[Disposition]EventType{
		DispositionDispose: EventDispose,
		DispositionRenew:   EventRenew,
		DispositionReturn:  EventReturn,
	}

	var out []ConservationViolation
	for _, j := range s.Jobs {
		usage := map[Disposition]int{}
		for _, u := range j.InventoryUsed {
			usage[u.Disposition] += u.Qty
		}

		// A failed renewal test lands as a dispose event, so dispose events
		// in excess of the dispose usage belong to the renew bucket. The
		// attribution is capped at what the renew bucket is actually missing,
		// so surplus dispose events with no renew deficit still get flagged.
		disposeEvents := eventQty[j.ID][EventDispose]
		renewDeficit := usage[DispositionRenew] - queueQty[j.ID][DispositionRenew] - eventQty[j.ID][EventRenew]
		renewBad := min(max(0, disposeEvents-usage[DispositionDispose]), max(0, renewDeficit))

		for d, want := range usage {
			et, ok := eventFor[d]
			if !ok {
				continue
			}
			tracked := eventQty[j.ID][et]
			switch d {
			case DispositionDispose:
				tracked -= renewBad
			case DispositionRenew:
				tracked += queueQty[j.ID][d] + renewBad
			case DispositionReturn:
				tracked += queueQty[j.ID][d]
			}
			if tracked != want {
				out = append(out, ConservationViolation{
					CompanyID:   j.CompanyID,
					JobID:       j.ID,
					OrderNumber: j.OrderNumber,
					Disposition: d,
					UsageQty:    want,
					TrackedQty:  tracked,
					Detail:      fmt.Sprintf("usage %d vs tracked %d for %s", want, tracked, d),
				})
			}
		}
	}
	return out
}
