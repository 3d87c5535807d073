package app

import (
	"context"
	"errors"

	"repairdesk/internal/core"
)

// ErrUnsupported is returned for operations the running variant does not
// provide (for example snapshot import against the hosted backend).
var ErrUnsupported = errors.New("operation not supported by this backend")

// ApplicationService is the single interface every adapter calls. Both the
// local snapshot-file variant and the hosted Postgres variant implement it,
// so the web adapter does not know which one it is serving. Implementations
// contain no presentation logic.
type ApplicationService interface {
	// ListCompanies returns every company visible to the caller.
	ListCompanies(ctx context.Context) ([]core.Company, error)

	// CreateCompany adds a new tenant.
	CreateCompany(ctx context.Context, name string) (core.Company, error)

	// DeleteCompany removes a company and cascades its jobs, inventory and
	// pending queue entries. Part events are retained as audit history.
	DeleteCompany(ctx context.Context, companyID string) error

	// ListInventory returns the company's stock, newest first.
	ListInventory(ctx context.Context, companyID string) ([]core.InventoryItem, error)

	// SaveItem creates (blank ID) or updates an inventory item.
	SaveItem(ctx context.Context, companyID string, item core.InventoryItem) (core.InventoryItem, error)

	// AdjustItemQty moves an item's count by delta, floored at zero.
	AdjustItemQty(ctx context.Context, companyID, itemID string, delta int) (core.InventoryItem, error)

	// DeleteItem removes an inventory item. References from usage lines and
	// events go stale rather than being cleaned up.
	DeleteItem(ctx context.Context, companyID, itemID string) error

	// ListJobs returns the company's repair jobs, newest first.
	ListJobs(ctx context.Context, companyID string) ([]core.Job, error)

	// GetJob returns one job.
	GetJob(ctx context.Context, companyID, jobID string) (core.Job, error)

	// SaveJob creates (blank ID) or updates a job's editable fields. The
	// usage list is only ever changed through ApplyUsage.
	SaveJob(ctx context.Context, companyID string, job core.Job) (core.Job, error)

	// DeleteJob removes a job without reconciling its usage.
	DeleteJob(ctx context.Context, companyID, jobID string) error

	// ApplyUsage replaces a job's parts-consumed list and reconciles the
	// ledger: net inventory deltas, regenerated queue rows, dispose events.
	ApplyUsage(ctx context.Context, companyID, jobID string, usage []core.UsageLine) (core.Job, error)

	// ListQueue returns the company's unresolved repair-queue entries.
	ListQueue(ctx context.Context, companyID string) ([]core.RepairQueueEntry, error)

	// ResolveQueueEntry applies an operator decision to a queue entry.
	// Resolution.Applied is false when the action is not valid for the
	// entry's disposition; the ledger is untouched in that case.
	ResolveQueueEntry(ctx context.Context, companyID, entryID string, action core.ResolveAction) (core.Resolution, error)

	// ListEvents returns the company's part-event audit log.
	ListEvents(ctx context.Context, companyID string) ([]core.PartEvent, error)

	// Report aggregates jobs and events over an inclusive date range. Empty
	// bounds are unbounded.
	Report(ctx context.Context, companyID, from, to string) (*core.Report, error)

	// ConsistencyCheck audits the company's ledger against the usage/queue/
	// event balance rule.
	ConsistencyCheck(ctx context.Context, companyID string) ([]core.ConservationViolation, error)

	// ExportSnapshot returns the full ledger as one snapshot.
	ExportSnapshot(ctx context.Context) (*core.Snapshot, error)

	// ImportSnapshot replaces the full ledger with a normalized snapshot.
	// Hosted deployments return ErrUnsupported.
	ImportSnapshot(ctx context.Context, raw []byte) error
}
