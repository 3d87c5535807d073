package remote

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"repairdesk/internal/core"
)

// InventoryService manages per-company stock counters.
type InventoryService interface {
	List(ctx context.Context, companyID string) ([]core.InventoryItem, error)
	Save(ctx context.Context, companyID string, item core.InventoryItem) (core.InventoryItem, error)
	// AdjustQty moves the counter by delta, floored at zero in SQL so
	// concurrent adjustments cannot race below zero.
	AdjustQty(ctx context.Context, companyID, itemID string, delta int) (core.InventoryItem, error)
	Delete(ctx context.Context, companyID, itemID string) error
}

type inventoryService struct {
	pool *pgxpool.Pool
}

func NewInventoryService(pool *pgxpool.Pool) InventoryService {
	return &inventoryService{pool: pool}
}

const itemColumns = "id, company_id, sku, name, qty, location, min_qty, created_at"

func scanItem(row pgx.Row) (core.InventoryItem, error) {
	var it core.InventoryItem
	err := row.Scan(&it.ID, &it.CompanyID, &it.SKU, &it.Name, &it.Qty, &it.Location, &it.MinQty, &it.CreatedAt)
	return it, err
}

func (s *inventoryService) List(ctx context.Context, companyID string) ([]core.InventoryItem, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+itemColumns+`
		FROM inventory_items
		WHERE company_id = $1
		ORDER BY created_at DESC
	`, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query inventory: %w", err)
	}
	defer rows.Close()

	var items []core.InventoryItem
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan inventory item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (s *inventoryService) Save(ctx context.Context, companyID string, item core.InventoryItem) (core.InventoryItem, error) {
	item.Name = strings.TrimSpace(item.Name)
	if item.Name == "" {
		return core.InventoryItem{}, core.NewValidationError("item name", "must not be blank")
	}
	if item.Qty < 0 {
		item.Qty = 0
	}
	if item.MinQty < 0 {
		item.MinQty = 0
	}

	if item.ID == "" {
		if err := resolveCompany(ctx, s.pool, companyID); err != nil {
			return core.InventoryItem{}, err
		}
		item.ID = uuid.NewString()
		row := s.pool.QueryRow(ctx, `
			INSERT INTO inventory_items (id, company_id, sku, name, qty, location, min_qty, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, now())
			RETURNING `+itemColumns+`
		`, item.ID, companyID, item.SKU, item.Name, item.Qty, item.Location, item.MinQty)
		saved, err := scanItem(row)
		if err != nil {
			return core.InventoryItem{}, fmt.Errorf("failed to insert inventory item: %w", err)
		}
		return saved, nil
	}

	row := s.pool.QueryRow(ctx, `
		UPDATE inventory_items
		SET sku = $3, name = $4, qty = $5, location = $6, min_qty = $7
		WHERE id = $1 AND company_id = $2
		RETURNING `+itemColumns+`
	`, item.ID, companyID, item.SKU, item.Name, item.Qty, item.Location, item.MinQty)
	saved, err := scanItem(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.InventoryItem{}, core.ErrNotFound
	}
	if err != nil {
		return core.InventoryItem{}, fmt.Errorf("failed to update inventory item: %w", err)
	}
	return saved, nil
}

func (s *inventoryService) AdjustQty(ctx context.Context, companyID, itemID string, delta int) (core.InventoryItem, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE inventory_items
		SET qty = GREATEST(0, qty + $3)
		WHERE id = $1 AND company_id = $2
		RETURNING `+itemColumns+`
	`, itemID, companyID, delta)
	it, err := scanItem(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.InventoryItem{}, core.ErrNotFound
	}
	if err != nil {
		return core.InventoryItem{}, fmt.Errorf("failed to adjust inventory item: %w", err)
	}
	return it, nil
}

func (s *inventoryService) Delete(ctx context.Context, companyID, itemID string) error {
	tag, err := s.pool.Exec(ctx,
		"DELETE FROM inventory_items WHERE id = $1 AND company_id = $2", itemID, companyID)
	if err != nil {
		return fmt.Errorf("failed to delete inventory item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return core.ErrNotFound
	}
	return nil
}
