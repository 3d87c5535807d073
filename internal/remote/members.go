package remote

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"repairdesk/internal/core"
)

// ErrInvalidCredentials covers both unknown email and wrong password, so a
// failed login does not reveal which one it was.
var ErrInvalidCredentials = errors.New("invalid email or password")

// ErrForbidden is returned when the caller lacks the role an operation
// requires.
var ErrForbidden = errors.New("forbidden")

// User is an authentication account. Authorization is per company, via
// memberships.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// MemberService authenticates users and answers membership questions for
// the request path.
type MemberService interface {
	Authenticate(ctx context.Context, email, password string) (User, error)
	UserByID(ctx context.Context, userID string) (User, error)
	// Memberships maps company id to the user's role there.
	Memberships(ctx context.Context, userID string) (map[string]core.Role, error)
	// RoleFor returns ErrForbidden when the user has no membership in the
	// company.
	RoleFor(ctx context.Context, userID, companyID string) (core.Role, error)
}

type memberService struct {
	pool *pgxpool.Pool
}

func NewMemberService(pool *pgxpool.Pool) MemberService {
	return &memberService{pool: pool}
}

func (s *memberService) Authenticate(ctx context.Context, email, password string) (User, error) {
	u, err := userByEmail(ctx, s.pool, email)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrInvalidCredentials
	}
	if err != nil {
		return User{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return User{}, ErrInvalidCredentials
	}
	return u, nil
}

func (s *memberService) UserByID(ctx context.Context, userID string) (User, error) {
	var u User
	err := s.pool.QueryRow(ctx, `
		SELECT id, email, password_hash, created_at
		FROM users
		WHERE id = $1
	`, userID).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, core.ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("failed to fetch user: %w", err)
	}
	return u, nil
}

func (s *memberService) Memberships(ctx context.Context, userID string) (map[string]core.Role, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT company_id, role
		FROM memberships
		WHERE user_id = $1
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query memberships: %w", err)
	}
	defer rows.Close()

	out := make(map[string]core.Role)
	for rows.Next() {
		var companyID, role string
		if err := rows.Scan(&companyID, &role); err != nil {
			return nil, fmt.Errorf("failed to scan membership: %w", err)
		}
		out[companyID] = core.ParseRole(role)
	}
	return out, rows.Err()
}

func (s *memberService) RoleFor(ctx context.Context, userID, companyID string) (core.Role, error) {
	role, err := roleFor(ctx, s.pool, userID, companyID)
	if err != nil {
		return "", err
	}
	return role, nil
}

func userByEmail(ctx context.Context, pool *pgxpool.Pool, email string) (User, error) {
	var u User
	err := pool.QueryRow(ctx, `
		SELECT id, email, password_hash, created_at
		FROM users
		WHERE lower(email) = lower($1)
	`, strings.TrimSpace(email)).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, err
		}
		return User{}, fmt.Errorf("failed to fetch user by email: %w", err)
	}
	return u, nil
}

func roleFor(ctx context.Context, pool *pgxpool.Pool, userID, companyID string) (core.Role, error) {
	var role string
	err := pool.QueryRow(ctx, `
		SELECT role
		FROM memberships
		WHERE user_id = $1 AND company_id = $2
	`, userID, companyID).Scan(&role)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrForbidden
	}
	if err != nil {
		return "", fmt.Errorf("failed to fetch role: %w", err)
	}
	return core.ParseRole(role), nil
}
