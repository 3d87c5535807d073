package app

import (
	"context"

	"repairdesk/internal/core"
	"repairdesk/internal/remote"
)

// RemoteService adapts the Postgres-backed services to ApplicationService.
// It is a thin delegation layer; all semantics live in internal/remote and
// internal/core.
type RemoteService struct {
	companies remote.CompanyService
	inventory remote.InventoryService
	jobs      remote.JobService
	queue     remote.QueueService
	reports   remote.ReportService
}

func NewRemoteService(
	companies remote.CompanyService,
	inventory remote.InventoryService,
	jobs remote.JobService,
	queue remote.QueueService,
	reports remote.ReportService,
) *RemoteService {
	return &RemoteService{
		companies: companies,
		inventory: inventory,
		jobs:      jobs,
		queue:     queue,
		reports:   reports,
	}
}

func (s *RemoteService) ListCompanies(ctx context.Context) ([]core.Company, error) {
	return s.companies.List(ctx)
}

func (s *RemoteService) CreateCompany(ctx context.Context, name string) (core.Company, error) {
	return s.companies.Create(ctx, name, UserIDFromContext(ctx))
}

func (s *RemoteService) DeleteCompany(ctx context.Context, companyID string) error {
	return s.companies.Delete(ctx, companyID)
}

func (s *RemoteService) ListInventory(ctx context.Context, companyID string) ([]core.InventoryItem, error) {
	return s.inventory.List(ctx, companyID)
}

func (s *RemoteService) SaveItem(ctx context.Context, companyID string, item core.InventoryItem) (core.InventoryItem, error) {
	return s.inventory.Save(ctx, companyID, item)
}

func (s *RemoteService) AdjustItemQty(ctx context.Context, companyID, itemID string, delta int) (core.InventoryItem, error) {
	return s.inventory.AdjustQty(ctx, companyID, itemID, delta)
}

func (s *RemoteService) DeleteItem(ctx context.Context, companyID, itemID string) error {
	return s.inventory.Delete(ctx, companyID, itemID)
}

func (s *RemoteService) ListJobs(ctx context.Context, companyID string) ([]core.Job, error) {
	return s.jobs.List(ctx, companyID)
}

func (s *RemoteService) GetJob(ctx context.Context, companyID, jobID string) (core.Job, error) {
	return s.jobs.Get(ctx, companyID, jobID)
}

func (s *RemoteService) SaveJob(ctx context.Context, companyID string, job core.Job) (core.Job, error) {
	return s.jobs.Save(ctx, companyID, job)
}

func (s *RemoteService) DeleteJob(ctx context.Context, companyID, jobID string) error {
	return s.jobs.Delete(ctx, companyID, jobID)
}

func (s *RemoteService) ApplyUsage(ctx context.Context, companyID, jobID string, usage []core.UsageLine) (core.Job, error) {
	return s.jobs.ApplyUsage(ctx, companyID, jobID, usage)
}

func (s *RemoteService) ListQueue(ctx context.Context, companyID string) ([]core.RepairQueueEntry, error) {
	return s.queue.List(ctx, companyID)
}

func (s *RemoteService) ResolveQueueEntry(ctx context.Context, companyID, entryID string, action core.ResolveAction) (core.Resolution, error) {
	return s.queue.Resolve(ctx, companyID, entryID, action)
}

func (s *RemoteService) ListEvents(ctx context.Context, companyID string) ([]core.PartEvent, error) {
	return s.reports.Events(ctx, companyID)
}

func (s *RemoteService) Report(ctx context.Context, companyID, from, to string) (*core.Report, error) {
	return s.reports.Report(ctx, companyID, from, to)
}

func (s *RemoteService) ConsistencyCheck(ctx context.Context, companyID string) ([]core.ConservationViolation, error) {
	return s.reports.Consistency(ctx, companyID)
}

// ExportSnapshot assembles the full ledger from the database. It reads each
// collection separately, so an export taken during concurrent writes is a
// best-effort view, not a point-in-time one.
func (s *RemoteService) ExportSnapshot(ctx context.Context) (*core.Snapshot, error) {
	snap := &core.Snapshot{}
	companies, err := s.companies.List(ctx)
	if err != nil {
		return nil, err
	}
	snap.Companies = companies
	for _, c := range companies {
		jobs, err := s.jobs.List(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		snap.Jobs = append(snap.Jobs, jobs...)

		items, err := s.inventory.List(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		snap.Inventory = append(snap.Inventory, items...)

		queue, err := s.queue.List(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		snap.RepairQueue = append(snap.RepairQueue, queue...)

		events, err := s.reports.Events(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		snap.PartEvents = append(snap.PartEvents, events...)
	}
	return snap, nil
}

// ImportSnapshot is not offered against the hosted backend; a whole-ledger
// replace across live tenants is an operational action, not an API one.
func (s *RemoteService) ImportSnapshot(ctx context.Context, raw []byte) error {
	return ErrUnsupported
}
