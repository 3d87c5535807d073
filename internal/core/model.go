package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// JobStatus is the workflow state of a repair job.
type JobStatus string

const (
	StatusNew          JobStatus = "new"
	StatusInProgress   JobStatus = "in_progress"
	StatusWaitingParts JobStatus = "waiting_parts"
	StatusCompleted    JobStatus = "completed"
	StatusShippedBack  JobStatus = "shipped_back"
)

// KnownStatuses returns every defined status in display order. Reports always
// emit a bucket for each of these, even when the count is zero.
func KnownStatuses() []JobStatus {
	return []JobStatus{StatusNew, StatusInProgress, StatusWaitingParts, StatusCompleted, StatusShippedBack}
}

func (s JobStatus) Known() bool {
	for _, k := range KnownStatuses() {
		if s == k {
			return true
		}
	}
	return false
}

// JobType distinguishes where the repair work happens.
type JobType string

const (
	TypeHub     JobType = "hub"
	TypeOnsite  JobType = "onsite"
	TypeUpgrade JobType = "upgrade"
)

func KnownJobTypes() []JobType {
	return []JobType{TypeHub, TypeOnsite, TypeUpgrade}
}

func (t JobType) Known() bool {
	for _, k := range KnownJobTypes() {
		if t == k {
			return true
		}
	}
	return false
}

// Disposition is the intended fate of a part consumed by a job.
type Disposition string

const (
	DispositionKeep    Disposition = "keep"
	DispositionDispose Disposition = "dispose"
	DispositionRenew   Disposition = "renew"
	DispositionReturn  Disposition = "return"
)

func KnownDispositions() []Disposition {
	return []Disposition{DispositionKeep, DispositionDispose, DispositionRenew, DispositionReturn}
}

// ParseDisposition maps a raw value onto a defined disposition. Unrecognized
// values fall back to "renew" rather than erroring: older persisted data used
// free-form disposition strings and must keep loading.
func ParseDisposition(raw string) Disposition {
	switch d := Disposition(raw); d {
	case DispositionKeep, DispositionDispose, DispositionRenew, DispositionReturn:
		return d
	}
	return DispositionRenew
}

// EventType classifies a part event, the terminal record of a part's fate.
type EventType string

const (
	EventDispose EventType = "dispose"
	EventReturn  EventType = "return"
	EventRenew   EventType = "renew"
)

func KnownEventTypes() []EventType {
	return []EventType{EventDispose, EventReturn, EventRenew}
}

// ParseEventType maps a raw value onto a defined event type, defaulting to
// "dispose" for anything unrecognized (same compatibility rule as
// ParseDisposition).
func ParseEventType(raw string) EventType {
	switch t := EventType(raw); t {
	case EventDispose, EventReturn, EventRenew:
		return t
	}
	return EventDispose
}

// Role is a user's permission level within one company.
type Role string

const (
	RoleViewer   Role = "viewer"
	RoleOperator Role = "operator"
	RoleAdmin    Role = "admin"
)

// Known reports whether the role is part of the defined vocabulary.
func (r Role) Known() bool {
	return r == RoleViewer || r == RoleOperator || r == RoleAdmin
}

// CanWrite reports whether the role may mutate company data.
func (r Role) CanWrite() bool {
	return r == RoleOperator || r == RoleAdmin
}

// ParseRole defaults unknown values to viewer, the least privileged role.
func ParseRole(raw string) Role {
	switch r := Role(raw); r {
	case RoleViewer, RoleOperator, RoleAdmin:
		return r
	}
	return RoleViewer
}

// Company is the tenant boundary. Every other entity carries a CompanyID and
// is never visible across companies.
type Company struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// InventoryItem is a spare-part stock counter. Qty never goes below zero.
type InventoryItem struct {
	ID        string    `json:"id"`
	CompanyID string    `json:"companyId"`
	SKU       string    `json:"sku"`
	Name      string    `json:"name"`
	Qty       int       `json:"qty"`
	Location  string    `json:"location"`
	MinQty    int       `json:"minQty"`
	CreatedAt time.Time `json:"createdAt"`
}

// LowStock reports the display-only reorder condition. Nothing enforces it.
func (i InventoryItem) LowStock() bool {
	return i.Qty <= i.MinQty
}

// UsageLine records one part consumption on a job. SKU and Name are
// snapshotted from the inventory item at entry time so history survives
// renames and deletions.
type UsageLine struct {
	ItemID      string      `json:"itemId"`
	SKU         string      `json:"sku"`
	Name        string      `json:"name"`
	Qty         int         `json:"qty"`
	Disposition Disposition `json:"disposition"`
}

// Job is a single repair order. InventoryUsed is the authoritative current
// list of parts consumed; the repair queue for a job is always derived from
// it, never patched incrementally.
type Job struct {
	ID               string          `json:"id"`
	CompanyID        string          `json:"companyId"`
	OrderNumber      string          `json:"orderNumber"`
	SerialNumber     string          `json:"serialNumber"`
	IssueDesc        string          `json:"issueDesc"`
	IncomingTracking string          `json:"incomingTracking"`
	OutgoingTracking string          `json:"outgoingTracking"`
	ActionsDesc      string          `json:"actionsDesc"`
	Status           JobStatus       `json:"status"`
	JobType          JobType         `json:"jobType"`
	DueDate          string          `json:"dueDate,omitempty"`
	ShipIn           decimal.Decimal `json:"shipIn"`
	ShipOut          decimal.Decimal `json:"shipOut"`
	InsIn            decimal.Decimal `json:"insIn"`
	InsOut           decimal.Decimal `json:"insOut"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
	InventoryUsed    []UsageLine     `json:"inventoryUsed"`
}

// ShippingTotal is shipIn+shipOut+insIn+insOut, the per-job cost shown in
// listings and summed by reports.
func (j Job) ShippingTotal() decimal.Decimal {
	return j.ShipIn.Add(j.ShipOut).Add(j.InsIn).Add(j.InsOut)
}

// RepairQueueEntry is a part pulled from a job that still needs a decision:
// a renewal test outcome, or confirmation that it was physically returned.
// Entries are deleted on resolution; the outcome lives on as a PartEvent.
type RepairQueueEntry struct {
	ID          string      `json:"id"`
	CompanyID   string      `json:"companyId"`
	JobID       string      `json:"jobId"`
	ItemID      string      `json:"itemId"`
	Name        string      `json:"name"`
	SKU         string      `json:"sku"`
	Qty         int         `json:"qty"`
	Disposition Disposition `json:"disposition"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// PartEvent is an append-only audit record of a part's terminal disposition.
// It is never updated or deleted, not even when its company is deleted.
type PartEvent struct {
	ID        string    `json:"id"`
	CompanyID string    `json:"companyId"`
	JobID     string    `json:"jobId,omitempty"`
	ItemID    string    `json:"itemId,omitempty"`
	SKU       string    `json:"sku"`
	Name      string    `json:"name"`
	Qty       int       `json:"qty"`
	Type      EventType `json:"type"`
	EventDate time.Time `json:"eventDate"`
}
