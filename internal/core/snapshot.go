package core

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/invopop/jsonschema"
	"github.com/shopspring/decimal"
)

// Snapshot is the whole ledger as one value: all five collections, every
// tenant. Mutations never edit a snapshot in place; they build a complete
// replacement and the caller swaps it in atomically. A reader therefore
// never observes a half-applied operation.
type Snapshot struct {
	Companies   []Company          `json:"companies"`
	Jobs        []Job              `json:"jobs"`
	Inventory   []InventoryItem    `json:"inventory"`
	RepairQueue []RepairQueueEntry `json:"repairQueue"`
	PartEvents  []PartEvent        `json:"partEvents"`
}

// Clone deep-copies the snapshot. Usage line slices are the only nested
// mutable state and are copied per job.
func (s *Snapshot) Clone() *Snapshot {
	out := &Snapshot{
		Companies:   append([]Company(nil), s.Companies...),
		Jobs:        append([]Job(nil), s.Jobs...),
		Inventory:   append([]InventoryItem(nil), s.Inventory...),
		RepairQueue: append([]RepairQueueEntry(nil), s.RepairQueue...),
		PartEvents:  append([]PartEvent(nil), s.PartEvents...),
	}
	for i := range out.Jobs {
		out.Jobs[i].InventoryUsed = append([]UsageLine(nil), out.Jobs[i].InventoryUsed...)
	}
	return out
}

// Job returns the company-scoped job, or nil.
func (s *Snapshot) Job(companyID, jobID string) *Job {
	for i := range s.Jobs {
		if s.Jobs[i].ID == jobID && s.Jobs[i].CompanyID == companyID {
			return &s.Jobs[i]
		}
	}
	return nil
}

// Item returns the company-scoped inventory item, or nil.
func (s *Snapshot) Item(companyID, itemID string) *InventoryItem {
	for i := range s.Inventory {
		if s.Inventory[i].ID == itemID && s.Inventory[i].CompanyID == companyID {
			return &s.Inventory[i]
		}
	}
	return nil
}

// CompanyJobs returns the company's jobs, newest first.
func (s *Snapshot) CompanyJobs(companyID string) []Job {
	var out []Job
	for _, j := range s.Jobs {
		if j.CompanyID == companyID {
			out = append(out, j)
		}
	}
	sort.SliceStable(out, func(i, k int) bool { return out[i].CreatedAt.After(out[k].CreatedAt) })
	return out
}

// CompanyInventory returns the company's inventory items, newest first.
func (s *Snapshot) CompanyInventory(companyID string) []InventoryItem {
	var out []InventoryItem
	for _, it := range s.Inventory {
		if it.CompanyID == companyID {
			out = append(out, it)
		}
	}
	sort.SliceStable(out, func(i, k int) bool { return out[i].CreatedAt.After(out[k].CreatedAt) })
	return out
}

// CompanyQueue returns the company's repair-queue entries, newest first.
func (s *Snapshot) CompanyQueue(companyID string) []RepairQueueEntry {
	var out []RepairQueueEntry
	for _, r := range s.RepairQueue {
		if r.CompanyID == companyID {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, k int) bool { return out[i].CreatedAt.After(out[k].CreatedAt) })
	return out
}

// CompanyEvents returns the company's part events in insertion order.
func (s *Snapshot) CompanyEvents(companyID string) []PartEvent {
	var out []PartEvent
	for _, e := range s.PartEvents {
		if e.CompanyID == companyID {
			out = append(out, e)
		}
	}
	return out
}

// AddCompany appends a new company to a fresh copy of the snapshot.
func (s *Snapshot) AddCompany(name string, now time.Time) (*Snapshot, Company, error) {
	if strings.TrimSpace(name) == "" {
		return nil, Company{}, validationErr("company name", "must not be blank")
	}
	c := Company{ID: uuid.NewString(), Name: strings.TrimSpace(name), CreatedAt: now}
	out := s.Clone()
	out.Companies = append(out.Companies, c)
	return out, c, nil
}

// DeleteCompany removes a company together with its jobs, inventory and
// pending queue entries. Part events are retained: they are the immutable
// audit history and survive their tenant.
func (s *Snapshot) DeleteCompany(companyID string) (*Snapshot, error) {
	found := false
	out := s.Clone()

	companies := out.Companies[:0]
	for _, c := range out.Companies {
		if c.ID == companyID {
			found = true
			continue
		}
		companies = append(companies, c)
	}
	if !found {
		return nil, ErrNotFound
	}
	out.Companies = companies

	jobs := out.Jobs[:0]
	for _, j := range out.Jobs {
		if j.CompanyID != companyID {
			jobs = append(jobs, j)
		}
	}
	out.Jobs = jobs

	inv := out.Inventory[:0]
	for _, it := range out.Inventory {
		if it.CompanyID != companyID {
			inv = append(inv, it)
		}
	}
	out.Inventory = inv

	queue := out.RepairQueue[:0]
	for _, r := range out.RepairQueue {
		if r.CompanyID != companyID {
			queue = append(queue, r)
		}
	}
	out.RepairQueue = queue

	return out, nil
}

// UpsertItem creates or updates an inventory item. Name is required; Qty and
// MinQty are clamped at zero.
func (s *Snapshot) UpsertItem(companyID string, item InventoryItem, now time.Time) (*Snapshot, InventoryItem, error) {
	if strings.TrimSpace(item.Name) == "" {
		return nil, InventoryItem{}, validationErr("item name", "must not be blank")
	}
	item.CompanyID = companyID
	item.Name = strings.TrimSpace(item.Name)
	item.Qty = max(0, item.Qty)
	item.MinQty = max(0, item.MinQty)

	out := s.Clone()
	if item.ID == "" {
		item.ID = uuid.NewString()
		item.CreatedAt = now
		out.Inventory = append(out.Inventory, item)
		return out, item, nil
	}
	for i := range out.Inventory {
		if out.Inventory[i].ID == item.ID && out.Inventory[i].CompanyID == companyID {
			item.CreatedAt = out.Inventory[i].CreatedAt
			out.Inventory[i] = item
			return out, item, nil
		}
	}
	return nil, InventoryItem{}, ErrNotFound
}

// AdjustItemQty moves an item's count by delta, floored at zero. This is the
// direct +1/-1 stock correction, independent of any job.
func (s *Snapshot) AdjustItemQty(companyID, itemID string, delta int) (*Snapshot, InventoryItem, error) {
	out := s.Clone()
	for i := range out.Inventory {
		it := &out.Inventory[i]
		if it.ID == itemID && it.CompanyID == companyID {
			it.Qty = max(0, it.Qty+delta)
			return out, *it, nil
		}
	}
	return nil, InventoryItem{}, ErrNotFound
}

// DeleteItem removes an inventory item. Usage lines, queue entries and
// events that reference it keep their snapshotted SKU/name and simply go
// stale (referential misses are tolerated downstream).
func (s *Snapshot) DeleteItem(companyID, itemID string) (*Snapshot, error) {
	out := s.Clone()
	inv := out.Inventory[:0]
	found := false
	for _, it := range out.Inventory {
		if it.ID == itemID && it.CompanyID == companyID {
			found = true
			continue
		}
		inv = append(inv, it)
	}
	if !found {
		return nil, ErrNotFound
	}
	out.Inventory = inv
	return out, nil
}

// SaveJob creates a job (blank ID) or updates its editable fields. The usage
// list is not touched here; that goes through ApplyUsage.
func (s *Snapshot) SaveJob(companyID string, job Job, now time.Time) (*Snapshot, Job, error) {
	if strings.TrimSpace(job.OrderNumber) == "" {
		return nil, Job{}, validationErr("order number", "must not be blank")
	}
	if job.ShipIn.IsNegative() || job.ShipOut.IsNegative() || job.InsIn.IsNegative() || job.InsOut.IsNegative() {
		return nil, Job{}, validationErr("shipping cost", "must not be negative")
	}
	job.CompanyID = companyID
	job.OrderNumber = strings.TrimSpace(job.OrderNumber)
	if job.Status == "" {
		job.Status = StatusNew
	}
	if job.JobType == "" {
		job.JobType = TypeHub
	}

	out := s.Clone()
	if job.ID == "" {
		job.ID = uuid.NewString()
		job.CreatedAt = now
		job.UpdatedAt = now
		job.InventoryUsed = nil
		out.Jobs = append(out.Jobs, job)
		return out, job, nil
	}
	for i := range out.Jobs {
		if out.Jobs[i].ID == job.ID && out.Jobs[i].CompanyID == companyID {
			job.CreatedAt = out.Jobs[i].CreatedAt
			job.InventoryUsed = out.Jobs[i].InventoryUsed
			job.UpdatedAt = now
			out.Jobs[i] = job
			return out, job, nil
		}
	}
	return nil, Job{}, ErrNotFound
}

// DeleteJob removes a job together with its pending queue entries. Part
// events stay: the audit log outlives the job that produced it.
func (s *Snapshot) DeleteJob(companyID, jobID string) (*Snapshot, error) {
	out := s.Clone()
	jobs := out.Jobs[:0]
	found := false
	for _, j := range out.Jobs {
		if j.ID == jobID && j.CompanyID == companyID {
			found = true
			continue
		}
		jobs = append(jobs, j)
	}
	if !found {
		return nil, ErrNotFound
	}
	out.Jobs = jobs

	queue := out.RepairQueue[:0]
	for _, r := range out.RepairQueue {
		if r.JobID == jobID && r.CompanyID == companyID {
			continue
		}
		queue = append(queue, r)
	}
	out.RepairQueue = queue
	return out, nil
}

// SnapshotSchema returns the JSON Schema of the snapshot interchange format,
// for validating import files outside this process.
func SnapshotSchema() *jsonschema.Schema {
	r := jsonschema.Reflector{ExpandedStruct: true, DoNotReference: false}
	return r.Reflect(&Snapshot{})
}

// DemoSnapshot builds the two-company demo dataset used by fresh local
// installs.
func DemoSnapshot(now time.Time) *Snapshot {
	c1 := Company{ID: uuid.NewString(), Name: "Firma A", CreatedAt: now}
	c2 := Company{ID: uuid.NewString(), Name: "Firma B", CreatedAt: now}
	return &Snapshot{
		Companies: []Company{c1, c2},
		Jobs: []Job{
			{
				ID: uuid.NewString(), CompanyID: c1.ID,
				OrderNumber: "ZL-2025-001", SerialNumber: "SN12345",
				IssueDesc: "Does not power on", IncomingTracking: "DHL-123",
				ActionsDesc: "PSU diagnostics", Status: StatusInProgress, JobType: TypeHub,
				DueDate: now.Format("2006-01-02"),
				ShipIn:  decimal.NewFromInt(85), ShipOut: decimal.NewFromInt(95),
				InsIn: decimal.NewFromInt(12), InsOut: decimal.NewFromInt(15),
				CreatedAt: now, UpdatedAt: now,
			},
			{
				ID: uuid.NewString(), CompanyID: c1.ID,
				OrderNumber: "ZL-2025-002", SerialNumber: "SN55555",
				IssueDesc: "No display output", IncomingTracking: "INPOST-XYZ",
				ActionsDesc: "Capacitor replacement", Status: StatusWaitingParts, JobType: TypeOnsite,
				CreatedAt: now, UpdatedAt: now,
			},
		},
		Inventory: []InventoryItem{
			{ID: uuid.NewString(), CompanyID: c1.ID, SKU: "KND-100", Name: "Capacitor 100uF", Qty: 12, Location: "A1", MinQty: 5, CreatedAt: now},
			{ID: uuid.NewString(), CompanyID: c1.ID, SKU: "PSU-12V", Name: "Power supply 12V", Qty: 3, Location: "B2", MinQty: 2, CreatedAt: now},
		},
	}
}
