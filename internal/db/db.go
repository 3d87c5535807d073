package db

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
)

// NewPool connects using DATABASE_URL. This is the request-path pool; it
// runs with the application role.
func NewPool(ctx context.Context) (*pgxpool.Pool, error) {
	connStr := os.Getenv("DATABASE_URL")
	if connStr == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable not set")
	}
	return connect(ctx, connStr)
}

// NewServicePool connects using SERVICE_DATABASE_URL, falling back to
// DATABASE_URL. The service pool is the elevated credential used only by
// admin provisioning (user creation, membership grants); keeping it separate
// lets deployments give the request-path role no access to auth tables.
func NewServicePool(ctx context.Context) (*pgxpool.Pool, error) {
	connStr := os.Getenv("SERVICE_DATABASE_URL")
	if connStr == "" {
		connStr = os.Getenv("DATABASE_URL")
	}
	if connStr == "" {
		return nil, fmt.Errorf("neither SERVICE_DATABASE_URL nor DATABASE_URL is set")
	}
	return connect(ctx, connStr)
}

func connect(ctx context.Context, connStr string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return pool, nil
}
