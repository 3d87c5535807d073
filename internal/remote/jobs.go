package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"repairdesk/internal/core"
)

// JobService manages repair jobs, including the usage reconciliation that
// keeps inventory, the repair queue and the event log in step with a job's
// parts-consumed list.
type JobService interface {
	List(ctx context.Context, companyID string) ([]core.Job, error)
	Get(ctx context.Context, companyID, jobID string) (core.Job, error)
	Save(ctx context.Context, companyID string, job core.Job) (core.Job, error)
	Delete(ctx context.Context, companyID, jobID string) error
	// ApplyUsage replaces the job's usage list and applies the reconciliation
	// plan: net inventory deltas, a full rebuild of the job's queue rows, and
	// dispose events. The writes are separate round trips per collection.
	ApplyUsage(ctx context.Context, companyID, jobID string, usage []core.UsageLine) (core.Job, error)
}

type jobService struct {
	pool *pgxpool.Pool
}

func NewJobService(pool *pgxpool.Pool) JobService {
	return &jobService{pool: pool}
}

const jobColumns = `id, company_id, order_number, serial_number, issue_desc,
	incoming_tracking, outgoing_tracking, actions_desc, status, job_type,
	due_date, ship_in, ship_out, ins_in, ins_out, created_at, updated_at, inventory_used`

func scanJob(row pgx.Row) (core.Job, error) {
	var j core.Job
	var usedJSON []byte
	err := row.Scan(&j.ID, &j.CompanyID, &j.OrderNumber, &j.SerialNumber, &j.IssueDesc,
		&j.IncomingTracking, &j.OutgoingTracking, &j.ActionsDesc, &j.Status, &j.JobType,
		&j.DueDate, &j.ShipIn, &j.ShipOut, &j.InsIn, &j.InsOut, &j.CreatedAt, &j.UpdatedAt, &usedJSON)
	if err != nil {
		return core.Job{}, err
	}
	if len(usedJSON) > 0 {
		if err := json.Unmarshal(usedJSON, &j.InventoryUsed); err != nil {
			return core.Job{}, fmt.Errorf("failed to decode usage list: %w", err)
		}
	}
	return j, nil
}

func (s *jobService) List(ctx context.Context, companyID string) ([]core.Job, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+jobColumns+`
		FROM jobs
		WHERE company_id = $1
		ORDER BY created_at DESC
	`, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query jobs: %w", err)
	}
	defer rows.Close()

	var jobs []core.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

func (s *jobService) Get(ctx context.Context, companyID, jobID string) (core.Job, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+jobColumns+`
		FROM jobs
		WHERE id = $1 AND company_id = $2
	`, jobID, companyID)
	j, err := scanJob(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.Job{}, core.ErrNotFound
	}
	if err != nil {
		return core.Job{}, fmt.Errorf("failed to fetch job: %w", err)
	}
	return j, nil
}

func (s *jobService) Save(ctx context.Context, companyID string, job core.Job) (core.Job, error) {
	job.OrderNumber = strings.TrimSpace(job.OrderNumber)
	if job.OrderNumber == "" {
		return core.Job{}, core.NewValidationError("order number", "must not be blank")
	}
	if job.ShipIn.IsNegative() || job.ShipOut.IsNegative() || job.InsIn.IsNegative() || job.InsOut.IsNegative() {
		return core.Job{}, core.NewValidationError("shipping cost", "must not be negative")
	}
	if job.Status == "" {
		job.Status = core.StatusNew
	}
	if job.JobType == "" {
		job.JobType = core.TypeHub
	}

	if job.ID == "" {
		if err := resolveCompany(ctx, s.pool, companyID); err != nil {
			return core.Job{}, err
		}
		job.ID = uuid.NewString()
		row := s.pool.QueryRow(ctx, `
			INSERT INTO jobs (id, company_id, order_number, serial_number, issue_desc,
				incoming_tracking, outgoing_tracking, actions_desc, status, job_type,
				due_date, ship_in, ship_out, ins_in, ins_out, created_at, updated_at, inventory_used)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, now(), now(), '[]'::jsonb)
			RETURNING `+jobColumns+`
		`, job.ID, companyID, job.OrderNumber, job.SerialNumber, job.IssueDesc,
			job.IncomingTracking, job.OutgoingTracking, job.ActionsDesc, job.Status, job.JobType,
			job.DueDate, job.ShipIn, job.ShipOut, job.InsIn, job.InsOut)
		saved, err := scanJob(row)
		if err != nil {
			return core.Job{}, fmt.Errorf("failed to insert job: %w", err)
		}
		return saved, nil
	}

	// Plain edits never touch inventory_used; that column belongs to
	// ApplyUsage.
	row := s.pool.QueryRow(ctx, `
		UPDATE jobs
		SET order_number = $3, serial_number = $4, issue_desc = $5,
			incoming_tracking = $6, outgoing_tracking = $7, actions_desc = $8,
			status = $9, job_type = $10, due_date = $11,
			ship_in = $12, ship_out = $13, ins_in = $14, ins_out = $15,
			updated_at = now()
		WHERE id = $1 AND company_id = $2
		RETURNING `+jobColumns+`
	`, job.ID, companyID, job.OrderNumber, job.SerialNumber, job.IssueDesc,
		job.IncomingTracking, job.OutgoingTracking, job.ActionsDesc, job.Status, job.JobType,
		job.DueDate, job.ShipIn, job.ShipOut, job.InsIn, job.InsOut)
	saved, err := scanJob(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.Job{}, core.ErrNotFound
	}
	if err != nil {
		return core.Job{}, fmt.Errorf("failed to update job: %w", err)
	}
	return saved, nil
}

func (s *jobService) Delete(ctx context.Context, companyID, jobID string) error {
	tag, err := s.pool.Exec(ctx,
		"DELETE FROM jobs WHERE id = $1 AND company_id = $2", jobID, companyID)
	if err != nil {
		return fmt.Errorf("failed to delete job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (s *jobService) ApplyUsage(ctx context.Context, companyID, jobID string, usage []core.UsageLine) (core.Job, error) {
	job, err := s.Get(ctx, companyID, jobID)
	if err != nil {
		return core.Job{}, err
	}

	now := time.Now()
	plan, err := core.PlanUsage(companyID, jobID, job.InventoryUsed, usage, now)
	if err != nil {
		return core.Job{}, err
	}

	// One round trip per affected collection, no transaction. A crash
	// partway through leaves collections transiently inconsistent; the
	// consistency check surfaces it.
	for itemID, delta := range plan.InventoryDelta {
		if _, err := s.pool.Exec(ctx, `
			UPDATE inventory_items
			SET qty = GREATEST(0, qty - $3)
			WHERE id = $1 AND company_id = $2
		`, itemID, companyID, delta); err != nil {
			return core.Job{}, fmt.Errorf("failed to adjust stock for item %s: %w", itemID, err)
		}
		// zero rows: the item is gone; the usage line keeps its snapshot
	}

	usedJSON, err := json.Marshal(plan.Lines)
	if err != nil {
		return core.Job{}, fmt.Errorf("failed to encode usage list: %w", err)
	}
	row := s.pool.QueryRow(ctx, `
		UPDATE jobs
		SET inventory_used = $3, updated_at = $4
		WHERE id = $1 AND company_id = $2
		RETURNING `+jobColumns+`
	`, jobID, companyID, usedJSON, now)
	saved, err := scanJob(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.Job{}, core.ErrNotFound
	}
	if err != nil {
		return core.Job{}, fmt.Errorf("failed to store usage list: %w", err)
	}

	if _, err := s.pool.Exec(ctx,
		"DELETE FROM repair_queue WHERE job_id = $1 AND company_id = $2", jobID, companyID); err != nil {
		return core.Job{}, fmt.Errorf("failed to clear queue rows: %w", err)
	}
	for _, q := range plan.QueueAdds {
		if _, err := s.pool.Exec(ctx, `
			INSERT INTO repair_queue (id, company_id, job_id, item_id, name, sku, qty, disposition, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, q.ID, q.CompanyID, q.JobID, q.ItemID, q.Name, q.SKU, q.Qty, q.Disposition, q.CreatedAt); err != nil {
			return core.Job{}, fmt.Errorf("failed to insert queue row: %w", err)
		}
	}
	for _, e := range plan.EventAdds {
		if err := insertEvent(ctx, s.pool, e); err != nil {
			return core.Job{}, err
		}
	}

	return saved, nil
}

func insertEvent(ctx context.Context, pool *pgxpool.Pool, e core.PartEvent) error {
	if _, err := pool.Exec(ctx, `
		INSERT INTO part_events (id, company_id, job_id, item_id, sku, name, qty, type, event_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, e.ID, e.CompanyID, e.JobID, e.ItemID, e.SKU, e.Name, e.Qty, e.Type, e.EventDate); err != nil {
		return fmt.Errorf("failed to insert part event: %w", err)
	}
	return nil
}
