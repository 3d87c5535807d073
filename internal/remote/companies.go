// Package remote implements the hosted variant's data access against
// Postgres. Each service speaks pgx directly, one collection per table.
//
// Mutations that touch several collections (usage reconciliation, queue
// resolution) intentionally run as separate statements with no surrounding
// transaction, mirroring the per-collection round-trip model this system
// was built on. A crash between statements can leave the collections
// transiently inconsistent; the consistency endpoint exists to surface
// exactly that, and no compensation is attempted.
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

// CompanyService manages tenants.
type CompanyService interface {
	List(ctx context.Context) ([]core.Company, error)
	// Create adds a tenant. A non-empty ownerUserID is granted the admin
	// role in the new company, so its creator can immediately provision
	// other members.
	Create(ctx context.Context, name, ownerUserID string) (core.Company, error)
	// Delete removes the company and cascades jobs, inventory and queue
	// rows. Part events are kept as audit history.
	Delete(ctx context.Context, companyID string) error
}

type companyService struct {
	pool *pgxpool.Pool
}

func NewCompanyService(pool *pgxpool.Pool) CompanyService {
	return &companyService{pool: pool}
}

func (s *companyService) List(ctx context.Context) ([]core.Company, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, created_at
		FROM companies
		ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query companies: %w", err)
	}
	defer rows.Close()

	var companies []core.Company
	for rows.Next() {
		var c core.Company
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan company: %w", err)
		}
		companies = append(companies, c)
	}
	return companies, rows.Err()
}

func (s *companyService) Create(ctx context.Context, name, ownerUserID string) (core.Company, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return core.Company{}, core.NewValidationError("company name", "must not be blank")
	}
	c := core.Company{ID: uuid.NewString(), Name: name}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO companies (id, name, created_at)
		VALUES ($1, $2, now())
		RETURNING created_at
	`, c.ID, c.Name).Scan(&c.CreatedAt)
	if err != nil {
		return core.Company{}, fmt.Errorf("failed to insert company: %w", err)
	}
	if ownerUserID != "" {
		if _, err := s.pool.Exec(ctx, `
			INSERT INTO memberships (user_id, company_id, role)
			VALUES ($1, $2, $3)
			ON CONFLICT (user_id, company_id) DO UPDATE SET role = EXCLUDED.role
		`, ownerUserID, c.ID, core.RoleAdmin); err != nil {
			return core.Company{}, fmt.Errorf("failed to grant owner membership: %w", err)
		}
	}
	return c, nil
}

func (s *companyService) Delete(ctx context.Context, companyID string) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM companies WHERE id = $1", companyID)
	if err != nil {
		return fmt.Errorf("failed to delete company: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return core.ErrNotFound
	}
	// jobs, inventory_items and repair_queue cascade via FK; part_events
	// carry no FK to companies so the audit log survives.
	return nil
}

func resolveCompany(ctx context.Context, pool *pgxpool.Pool, companyID string) error {
	var one int
	if err := pool.QueryRow(ctx, "SELECT 1 FROM companies WHERE id = $1", companyID).Scan(&one); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return core.ErrNotFound
		}
		return fmt.Errorf("failed to resolve company: %w", err)
	}
	return nil
}
