package remote

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"repairdesk/internal/core"
)

// ReportService reads a company's jobs and events and aggregates them with
// the same pure code the local variant uses.
type ReportService interface {
	Events(ctx context.Context, companyID string) ([]core.PartEvent, error)
	Report(ctx context.Context, companyID, from, to string) (*core.Report, error)
	// Consistency rebuilds an in-memory view of the company's ledger and
	// audits it against the usage/queue/event balance rule.
	Consistency(ctx context.Context, companyID string) ([]core.ConservationViolation, error)
}

type reportService struct {
	pool      *pgxpool.Pool
	jobs      JobService
	queue     QueueService
	inventory InventoryService
}

func NewReportService(pool *pgxpool.Pool, jobs JobService, queue QueueService, inventory InventoryService) ReportService {
	return &reportService{pool: pool, jobs: jobs, queue: queue, inventory: inventory}
}

func (s *reportService) Events(ctx context.Context, companyID string) ([]core.PartEvent, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, company_id, job_id, item_id, sku, name, qty, type, event_date
		FROM part_events
		WHERE company_id = $1
		ORDER BY event_date
	`, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query part events: %w", err)
	}
	defer rows.Close()

	var events []core.PartEvent
	for rows.Next() {
		var e core.PartEvent
		if err := rows.Scan(&e.ID, &e.CompanyID, &e.JobID, &e.ItemID, &e.SKU, &e.Name, &e.Qty, &e.Type, &e.EventDate); err != nil {
			return nil, fmt.Errorf("failed to scan part event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (s *reportService) Report(ctx context.Context, companyID, from, to string) (*core.Report, error) {
	if err := resolveCompany(ctx, s.pool, companyID); err != nil {
		return nil, err
	}
	jobs, err := s.jobs.List(ctx, companyID)
	if err != nil {
		return nil, err
	}
	events, err := s.Events(ctx, companyID)
	if err != nil {
		return nil, err
	}
	return core.Aggregate(jobs, events, from, to)
}

func (s *reportService) Consistency(ctx context.Context, companyID string) ([]core.ConservationViolation, error) {
	if err := resolveCompany(ctx, s.pool, companyID); err != nil {
		return nil, err
	}
	jobs, err := s.jobs.List(ctx, companyID)
	if err != nil {
		return nil, err
	}
	queue, err := s.queue.List(ctx, companyID)
	if err != nil {
		return nil, err
	}
	events, err := s.Events(ctx, companyID)
	if err != nil {
		return nil, err
	}
	snap := &core.Snapshot{Jobs: jobs, RepairQueue: queue, PartEvents: events}
	return snap.ConservationViolations(), nil
}
