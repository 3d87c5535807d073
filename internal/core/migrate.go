package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Normalize upgrades a persisted snapshot of unknown vintage into the
// current schema. It is the only place loose input is tolerated: missing
// collections default to empty, numeric fields are coerced, enum values fall
// back to their documented defaults, legacy field names are honored, and
// queue/event rows whose company cannot be resolved (directly or through
// their job) are dropped. Normalizing already-current data is a no-op.
func Normalize(raw []byte, now time.Time) (*Snapshot, error) {
	var rs rawSnapshot
	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(&rs); err != nil {
		return nil, validationErr("snapshot", fmt.Sprintf("not decodable JSON: %v", err))
	}

	out := &Snapshot{}

	for _, c := range rs.Companies {
		out.Companies = append(out.Companies, Company{
			ID:        orUUID(c.ID),
			Name:      c.Name,
			CreatedAt: c.CreatedAt.or(now),
		})
	}

	jobCompany := map[string]string{}
	for _, j := range rs.Jobs {
		job := Job{
			ID:               orUUID(j.ID),
			CompanyID:        j.CompanyID,
			OrderNumber:      j.OrderNumber,
			SerialNumber:     j.SerialNumber,
			IssueDesc:        j.IssueDesc,
			IncomingTracking: j.IncomingTracking,
			OutgoingTracking: j.OutgoingTracking,
			ActionsDesc:      j.ActionsDesc,
			Status:           normalizeStatus(j.Status),
			JobType:          normalizeJobType(j.JobType),
			DueDate:          j.DueDate,
			ShipIn:           j.ShipIn.val(),
			ShipOut:          j.ShipOut.val(),
			InsIn:            j.InsIn.val(),
			InsOut:           j.InsOut.val(),
			CreatedAt:        j.CreatedAt.or(now),
			UpdatedAt:        j.UpdatedAt.or(now),
		}
		for _, u := range j.InventoryUsed {
			job.InventoryUsed = append(job.InventoryUsed, UsageLine{
				ItemID:      u.ItemID,
				SKU:         u.SKU,
				Name:        u.Name,
				Qty:         max(0, int(u.Qty)),
				Disposition: ParseDisposition(u.Disposition),
			})
		}
		jobCompany[job.ID] = job.CompanyID
		out.Jobs = append(out.Jobs, job)
	}

	for _, it := range rs.Inventory {
		out.Inventory = append(out.Inventory, InventoryItem{
			ID:        orUUID(it.ID),
			CompanyID: it.CompanyID,
			SKU:       it.SKU,
			Name:      it.Name,
			Qty:       max(0, int(it.Qty)),
			Location:  it.Location,
			MinQty:    max(0, int(it.MinQty)),
			CreatedAt: it.CreatedAt.or(now),
		})
	}

	for _, r := range rs.RepairQueue {
		companyID := r.CompanyID
		if companyID == "" {
			companyID = jobCompany[r.JobID]
		}
		if companyID == "" {
			continue
		}
		itemID := r.ItemID
		if itemID == "" {
			itemID = r.InventoryItemID
		}
		createdAt := r.CreatedAt
		if createdAt.IsZero() {
			createdAt = r.AddedAt
		}
		out.RepairQueue = append(out.RepairQueue, RepairQueueEntry{
			ID:          orUUID(r.ID),
			CompanyID:   companyID,
			JobID:       r.JobID,
			ItemID:      itemID,
			Name:        r.Name,
			SKU:         r.SKU,
			Qty:         max(0, int(r.Qty)),
			Disposition: ParseDisposition(r.Disposition),
			CreatedAt:   createdAt.or(now),
		})
	}

	for _, e := range rs.PartEvents {
		companyID := e.CompanyID
		if companyID == "" {
			companyID = jobCompany[e.JobID]
		}
		if companyID == "" {
			continue
		}
		rawType := e.Type
		if rawType == "" {
			rawType = e.EventType
		}
		if rawType == "" {
			rawType = e.Disposition
		}
		date := e.EventDate
		if date.IsZero() {
			date = e.Date
		}
		if date.IsZero() {
			date = e.CreatedAt
		}
		out.PartEvents = append(out.PartEvents, PartEvent{
			ID:        orUUID(e.ID),
			CompanyID: companyID,
			JobID:     e.JobID,
			ItemID:    e.ItemID,
			SKU:       e.SKU,
			Name:      e.Name,
			Qty:       max(0, int(e.Qty)),
			Type:      ParseEventType(rawType),
			EventDate: date.or(now),
		})
	}

	return out, nil
}

// legacyStatuses maps the first-generation status keys onto the current
// vocabulary. Values already current pass through normalizeStatus untouched;
// anything else is preserved as-is and surfaces in the report's "other"
// bucket rather than being guessed at.
var legacyStatuses = map[string]JobStatus{
	"nowe":       StatusNew,
	"wtrakcie":   StatusInProgress,
	"czeka":      StatusWaitingParts,
	"zakonczone": StatusCompleted,
	"odeslane":   StatusShippedBack,
}

func normalizeStatus(raw string) JobStatus {
	if raw == "" {
		return StatusNew
	}
	if st, ok := legacyStatuses[strings.ToLower(raw)]; ok {
		return st
	}
	return JobStatus(raw)
}

func normalizeJobType(raw string) JobType {
	if raw == "" {
		return TypeHub
	}
	return JobType(raw)
}

func orUUID(id string) string {
	if id == "" {
		return uuid.NewString()
	}
	return id
}

// flexInt decodes an integer that may arrive as a JSON number, a numeric
// string, or null.
type flexInt int

func (f *flexInt) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "null" || s == "" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*f = 0
		return nil
	}
	*f = flexInt(int(v))
	return nil
}

// flexDecimal decodes a monetary amount that may arrive as a JSON number, a
// numeric string, or null. Missing or unparseable values coerce to a
// canonical zero so a re-normalized snapshot compares equal to the first
// pass.
type flexDecimal struct {
	d   decimal.Decimal
	set bool
}

func (f *flexDecimal) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "null" || s == "" {
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil
	}
	f.d = d
	f.set = true
	return nil
}

func (f flexDecimal) val() decimal.Decimal {
	if !f.set {
		return decimal.New(0, 0)
	}
	return f.d
}

// flexTime decodes a timestamp that may arrive as RFC 3339, a bare date, or
// null/empty. Unparseable values decode to the zero time and get defaulted
// by the caller.
type flexTime struct {
	t time.Time
}

func (f *flexTime) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "null" || s == "" {
		f.t = time.Time{}
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			f.t = t
			return nil
		}
	}
	f.t = time.Time{}
	return nil
}

func (f flexTime) IsZero() bool { return f.t.IsZero() }

func (f flexTime) or(fallback time.Time) time.Time {
	if f.t.IsZero() {
		return fallback
	}
	return f.t
}

type rawCompany struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	CreatedAt flexTime `json:"createdAt"`
}

type rawUsageLine struct {
	ItemID      string  `json:"itemId"`
	SKU         string  `json:"sku"`
	Name        string  `json:"name"`
	Qty         flexInt `json:"qty"`
	Disposition string  `json:"disposition"`
}

type rawJob struct {
	ID               string         `json:"id"`
	CompanyID        string         `json:"companyId"`
	OrderNumber      string         `json:"orderNumber"`
	SerialNumber     string         `json:"serialNumber"`
	IssueDesc        string         `json:"issueDesc"`
	IncomingTracking string         `json:"incomingTracking"`
	OutgoingTracking string         `json:"outgoingTracking"`
	ActionsDesc      string         `json:"actionsDesc"`
	Status           string         `json:"status"`
	JobType          string         `json:"jobType"`
	DueDate          string         `json:"dueDate"`
	ShipIn           flexDecimal    `json:"shipIn"`
	ShipOut          flexDecimal    `json:"shipOut"`
	InsIn            flexDecimal    `json:"insIn"`
	InsOut           flexDecimal    `json:"insOut"`
	CreatedAt        flexTime       `json:"createdAt"`
	UpdatedAt        flexTime       `json:"updatedAt"`
	InventoryUsed    []rawUsageLine `json:"inventoryUsed"`
}

type rawItem struct {
	ID        string   `json:"id"`
	CompanyID string   `json:"companyId"`
	SKU       string   `json:"sku"`
	Name      string   `json:"name"`
	Qty       flexInt  `json:"qty"`
	Location  string   `json:"location"`
	MinQty    flexInt  `json:"minQty"`
	CreatedAt flexTime `json:"createdAt"`
}

type rawQueueEntry struct {
	ID              string   `json:"id"`
	CompanyID       string   `json:"companyId"`
	JobID           string   `json:"jobId"`
	ItemID          string   `json:"itemId"`
	InventoryItemID string   `json:"inventoryItemId"`
	Name            string   `json:"name"`
	SKU             string   `json:"sku"`
	Qty             flexInt  `json:"qty"`
	Disposition     string   `json:"disposition"`
	CreatedAt       flexTime `json:"createdAt"`
	AddedAt         flexTime `json:"addedAt"`
}

type rawEvent struct {
	ID          string   `json:"id"`
	CompanyID   string   `json:"companyId"`
	JobID       string   `json:"jobId"`
	ItemID      string   `json:"itemId"`
	SKU         string   `json:"sku"`
	Name        string   `json:"name"`
	Qty         flexInt  `json:"qty"`
	Type        string   `json:"type"`
	EventType   string   `json:"eventType"`
	Disposition string   `json:"disposition"`
	EventDate   flexTime `json:"eventDate"`
	Date        flexTime `json:"date"`
	CreatedAt   flexTime `json:"createdAt"`
}

type rawSnapshot struct {
	Companies   []rawCompany    `json:"companies"`
	Jobs        []rawJob        `json:"jobs"`
	Inventory   []rawItem       `json:"inventory"`
	RepairQueue []rawQueueEntry `json:"repairQueue"`
	PartEvents  []rawEvent      `json:"partEvents"`
}
