package remote

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"repairdesk/internal/core"
)

// QueueService lists and resolves pending repair-queue entries.
type QueueService interface {
	List(ctx context.Context, companyID string) ([]core.RepairQueueEntry, error)
	// Resolve applies an operator decision. Resolution.Applied is false for
	// an action outside the entry's supported set; nothing is written then.
	Resolve(ctx context.Context, companyID, entryID string, action core.ResolveAction) (core.Resolution, error)
}

type queueService struct {
	pool *pgxpool.Pool
}

func NewQueueService(pool *pgxpool.Pool) QueueService {
	return &queueService{pool: pool}
}

const queueColumns = "id, company_id, job_id, item_id, name, sku, qty, disposition, created_at"

func scanQueueEntry(row pgx.Row) (core.RepairQueueEntry, error) {
	var q core.RepairQueueEntry
	err := row.Scan(&q.ID, &q.CompanyID, &q.JobID, &q.ItemID, &q.Name, &q.SKU, &q.Qty, &q.Disposition, &q.CreatedAt)
	return q, err
}

func (s *queueService) List(ctx context.Context, companyID string) ([]core.RepairQueueEntry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+queueColumns+`
		FROM repair_queue
		WHERE company_id = $1
		ORDER BY created_at DESC
	`, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query repair queue: %w", err)
	}
	defer rows.Close()

	var entries []core.RepairQueueEntry
	for rows.Next() {
		q, err := scanQueueEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan queue entry: %w", err)
		}
		entries = append(entries, q)
	}
	return entries, rows.Err()
}

func (s *queueService) Resolve(ctx context.Context, companyID, entryID string, action core.ResolveAction) (core.Resolution, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+queueColumns+`
		FROM repair_queue
		WHERE id = $1 AND company_id = $2
	`, entryID, companyID)
	entry, err := scanQueueEntry(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.Resolution{}, core.ErrNotFound
	}
	if err != nil {
		return core.Resolution{}, fmt.Errorf("failed to fetch queue entry: %w", err)
	}

	res := core.PlanResolution(entry, action, time.Now())
	if !res.Applied {
		return res, nil
	}

	// Separate round trips, no transaction: stock return, entry removal,
	// event append. A stale item reference only skips the stock return.
	if res.InventoryReturn > 0 && res.ItemID != "" {
		if _, err := s.pool.Exec(ctx, `
			UPDATE inventory_items
			SET qty = qty + $3
			WHERE id = $1 AND company_id = $2
		`, res.ItemID, companyID, res.InventoryReturn); err != nil {
			return core.Resolution{}, fmt.Errorf("failed to return stock: %w", err)
		}
	}

	if _, err := s.pool.Exec(ctx,
		"DELETE FROM repair_queue WHERE id = $1 AND company_id = $2", entryID, companyID); err != nil {
		return core.Resolution{}, fmt.Errorf("failed to remove queue entry: %w", err)
	}

	if err := insertEvent(ctx, s.pool, *res.Event); err != nil {
		return core.Resolution{}, err
	}
	return res, nil
}
