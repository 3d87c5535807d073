package remote

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"repairdesk/internal/core"
)

// AdminService provisions accounts and company memberships. The caller must
// already hold the admin role in the target company; that is verified with
// the request-path pool before anything runs on the elevated service pool.
type AdminService interface {
	// CreateUser creates an account and its initial membership.
	CreateUser(ctx context.Context, callerID, email, password, companyID string, role core.Role) (User, error)

	// AssignRole finds an existing account by email and grants (or updates)
	// its role in the company.
	AssignRole(ctx context.Context, callerID, email, companyID string, role core.Role) (User, error)
}

type adminService struct {
	pool    *pgxpool.Pool // request-path role, used only for caller checks
	service *pgxpool.Pool // elevated role with access to auth tables
}

func NewAdminService(pool, service *pgxpool.Pool) AdminService {
	return &adminService{pool: pool, service: service}
}

func (s *adminService) requireAdmin(ctx context.Context, callerID, companyID string) error {
	role, err := roleFor(ctx, s.pool, callerID, companyID)
	if err != nil {
		return err
	}
	if role != core.RoleAdmin {
		return ErrForbidden
	}
	return nil
}

func (s *adminService) CreateUser(ctx context.Context, callerID, email, password, companyID string, role core.Role) (User, error) {
	if err := s.requireAdmin(ctx, callerID, companyID); err != nil {
		return User{}, err
	}
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !strings.Contains(email, "@") {
		return User{}, core.NewValidationError("email", "must be a valid address")
	}
	if len(password) < 8 {
		return User{}, core.NewValidationError("password", "must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	u := User{ID: uuid.NewString(), Email: email}
	err = s.service.QueryRow(ctx, `
		INSERT INTO users (id, email, password_hash, created_at)
		VALUES ($1, $2, $3, now())
		RETURNING created_at
	`, u.ID, u.Email, string(hash)).Scan(&u.CreatedAt)
	if err != nil {
		return User{}, fmt.Errorf("failed to insert user: %w", err)
	}

	if err := s.upsertMembership(ctx, u.ID, companyID, role); err != nil {
		return User{}, err
	}
	return u, nil
}

func (s *adminService) AssignRole(ctx context.Context, callerID, email, companyID string, role core.Role) (User, error) {
	if err := s.requireAdmin(ctx, callerID, companyID); err != nil {
		return User{}, err
	}
	u, err := userByEmail(ctx, s.service, email)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, core.ErrNotFound
	}
	if err != nil {
		return User{}, err
	}
	if err := s.upsertMembership(ctx, u.ID, companyID, role); err != nil {
		return User{}, err
	}
	return u, nil
}

func (s *adminService) upsertMembership(ctx context.Context, userID, companyID string, role core.Role) error {
	if !role.Known() {
		return core.NewValidationError("role", "must be viewer, operator or admin")
	}
	if _, err := s.service.Exec(ctx, `
		INSERT INTO memberships (user_id, company_id, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, company_id) DO UPDATE SET role = EXCLUDED.role
	`, userID, companyID, role); err != nil {
		return fmt.Errorf("failed to upsert membership: %w", err)
	}
	return nil
}
