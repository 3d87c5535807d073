package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// OtherBucket collects rows whose status, type or disposition falls outside
// the known vocabulary. It always appears last so the report shape stays
// stable across data vintages.
const OtherBucket = "other"

// UsageRow is one consumed part line with enough job context to render a
// drill-down list without a second lookup.
type UsageRow struct {
	JobID        string          `json:"jobId"`
	OrderNumber  string          `json:"orderNumber"`
	JobStatus    JobStatus       `json:"jobStatus"`
	JobType      JobType         `json:"jobType"`
	JobCreatedAt time.Time       `json:"jobCreatedAt"`
	ItemID       string          `json:"itemId"`
	SKU          string          `json:"sku"`
	Name         string          `json:"name"`
	Qty          int             `json:"qty"`
	Disposition  Disposition     `json:"disposition"`
}

// StatusBucket counts jobs in one status, with the jobs behind the number.
type StatusBucket struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
	Jobs   []Job  `json:"jobs"`
}

// TypeBucket counts jobs of one type.
type TypeBucket struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
	Jobs  []Job  `json:"jobs"`
}

// DispositionBucket sums part usage for one disposition. Qty is the summed
// piece count; Rows holds the individual lines.
type DispositionBucket struct {
	Disposition string     `json:"disposition"`
	Lines       int        `json:"lines"`
	Qty         int        `json:"qty"`
	Rows        []UsageRow `json:"rows"`
}

// EventBucket sums part events of one type. Renewals are counted per event;
// dispose and return events also carry a summed quantity.
type EventBucket struct {
	Type   string      `json:"type"`
	Count  int         `json:"count"`
	Qty    int         `json:"qty"`
	Events []PartEvent `json:"events"`
}

// ShippingTotals sums the four per-job cost fields over the ranged jobs.
type ShippingTotals struct {
	ShipIn    decimal.Decimal `json:"shipIn"`
	ShipOut   decimal.Decimal `json:"shipOut"`
	InsIn     decimal.Decimal `json:"insIn"`
	InsOut    decimal.Decimal `json:"insOut"`
	Shipping  decimal.Decimal `json:"shipping"`
	Insurance decimal.Decimal `json:"insurance"`
	Total     decimal.Decimal `json:"total"`
}

// Report is the date-ranged aggregate over one company's jobs and events.
// Bucket lists always contain every known status/type/disposition/event
// type, zero-filled, plus a trailing "other" bucket when unknown values
// occur in the data.
type Report struct {
	From           string              `json:"from"`
	To             string              `json:"to"`
	JobCount       int                 `json:"jobCount"`
	ByStatus       []StatusBucket      `json:"byStatus"`
	ByType         []TypeBucket        `json:"byType"`
	UsageByDisp    []DispositionBucket `json:"usageByDisposition"`
	EventsByType   []EventBucket       `json:"eventsByType"`
	Shipping       ShippingTotals      `json:"shipping"`
}

// reportRange parses inclusive day bounds: from at 00:00:00 and to at
// 23:59:59.999999999 local time. An empty bound is unbounded on that side.
func reportRange(from, to string) (start, end time.Time, err error) {
	if from != "" {
		start, err = time.ParseInLocation("2006-01-02", from, time.Local)
		if err != nil {
			return time.Time{}, time.Time{}, validationErr("from", "must be a YYYY-MM-DD date")
		}
	}
	if to != "" {
		endDay, perr := time.ParseInLocation("2006-01-02", to, time.Local)
		if perr != nil {
			return time.Time{}, time.Time{}, validationErr("to", "must be a YYYY-MM-DD date")
		}
		end = endDay.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return time.Time{}, time.Time{}, validationErr("to", "must not precede from")
	}
	return start, end, nil
}

func inRange(t time.Time, start, end time.Time) bool {
	if !start.IsZero() && t.Before(start) {
		return false
	}
	if !end.IsZero() && t.After(end) {
		return false
	}
	return true
}

// Aggregate builds the report for the given inclusive date range. Jobs are
// ranged on CreatedAt, events on EventDate. The inputs are assumed already
// scoped to one company.
func Aggregate(jobs []Job, events []PartEvent, from, to string) (*Report, error) {
	start, end, err := reportRange(from, to)
	if err != nil {
		return nil, err
	}

	var ranged []Job
	for _, j := range jobs {
		if inRange(j.CreatedAt, start, end) {
			ranged = append(ranged, j)
		}
	}

	r := &Report{From: from, To: to, JobCount: len(ranged)}

	statusIdx := map[string]int{}
	for _, st := range KnownStatuses() {
		statusIdx[string(st)] = len(r.ByStatus)
		r.ByStatus = append(r.ByStatus, StatusBucket{Status: string(st)})
	}
	typeIdx := map[string]int{}
	for _, jt := range KnownJobTypes() {
		typeIdx[string(jt)] = len(r.ByType)
		r.ByType = append(r.ByType, TypeBucket{Type: string(jt)})
	}
	dispIdx := map[string]int{}
	for _, d := range KnownDispositions() {
		dispIdx[string(d)] = len(r.UsageByDisp)
		r.UsageByDisp = append(r.UsageByDisp, DispositionBucket{Disposition: string(d)})
	}
	eventIdx := map[string]int{}
	for _, et := range KnownEventTypes() {
		eventIdx[string(et)] = len(r.EventsByType)
		r.EventsByType = append(r.EventsByType, EventBucket{Type: string(et)})
	}

	otherStatus := -1
	otherType := -1
	otherDisp := -1
	otherEvent := -1

	for _, j := range ranged {
		i, ok := statusIdx[string(j.Status)]
		if !ok {
			if otherStatus < 0 {
				otherStatus = len(r.ByStatus)
				r.ByStatus = append(r.ByStatus, StatusBucket{Status: OtherBucket})
			}
			i = otherStatus
		}
		r.ByStatus[i].Count++
		r.ByStatus[i].Jobs = append(r.ByStatus[i].Jobs, j)

		i, ok = typeIdx[string(j.JobType)]
		if !ok {
			if otherType < 0 {
				otherType = len(r.ByType)
				r.ByType = append(r.ByType, TypeBucket{Type: OtherBucket})
			}
			i = otherType
		}
		r.ByType[i].Count++
		r.ByType[i].Jobs = append(r.ByType[i].Jobs, j)

		for _, u := range j.InventoryUsed {
			row := UsageRow{
				JobID:        j.ID,
				OrderNumber:  j.OrderNumber,
				JobStatus:    j.Status,
				JobType:      j.JobType,
				JobCreatedAt: j.CreatedAt,
				ItemID:       u.ItemID,
				SKU:          u.SKU,
				Name:         u.Name,
				Qty:          u.Qty,
				Disposition:  u.Disposition,
			}
			i, ok := dispIdx[string(u.Disposition)]
			if !ok {
				if otherDisp < 0 {
					otherDisp = len(r.UsageByDisp)
					r.UsageByDisp = append(r.UsageByDisp, DispositionBucket{Disposition: OtherBucket})
				}
				i = otherDisp
			}
			r.UsageByDisp[i].Lines++
			r.UsageByDisp[i].Qty += u.Qty
			r.UsageByDisp[i].Rows = append(r.UsageByDisp[i].Rows, row)
		}

		r.Shipping.ShipIn = r.Shipping.ShipIn.Add(j.ShipIn)
		r.Shipping.ShipOut = r.Shipping.ShipOut.Add(j.ShipOut)
		r.Shipping.InsIn = r.Shipping.InsIn.Add(j.InsIn)
		r.Shipping.InsOut = r.Shipping.InsOut.Add(j.InsOut)
	}
	r.Shipping.Shipping = r.Shipping.ShipIn.Add(r.Shipping.ShipOut)
	r.Shipping.Insurance = r.Shipping.InsIn.Add(r.Shipping.InsOut)
	r.Shipping.Total = r.Shipping.Shipping.Add(r.Shipping.Insurance)

	for _, e := range events {
		if !inRange(e.EventDate, start, end) {
			continue
		}
		i, ok := eventIdx[string(e.Type)]
		if !ok {
			if otherEvent < 0 {
				otherEvent = len(r.EventsByType)
				r.EventsByType = append(r.EventsByType, EventBucket{Type: OtherBucket})
			}
			i = otherEvent
		}
		r.EventsByType[i].Count++
		if e.Type != EventRenew {
			r.EventsByType[i].Qty += e.Qty
		}
		r.EventsByType[i].Events = append(r.EventsByType[i].Events, e)
	}

	return r, nil
}
