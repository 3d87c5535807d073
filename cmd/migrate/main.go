package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

// Advisory lock key for the migrator. Arbitrary but must be stable so
// concurrent deploys serialize on it.
const migratorLockKey = 9135027

// migrate applies migrations/*.sql in filename order. Applied files are
// recorded in schema_migrations with a checksum; editing an already-applied
// file is an error rather than a silent re-run.
func main() {
	log.SetFlags(0)
	log.SetPrefix("migrate: ")
	_ = godotenv.Load()

	url := os.Getenv("SERVICE_DATABASE_URL")
	if url == "" {
		url = os.Getenv("DATABASE_URL")
	}
	if url == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		log.Fatalf("pool: %v", err)
	}
	defer pool.Close()

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		log.Fatalf("ping: %v", err)
	}

	// Hold the lock on a dedicated connection for the whole run.
	conn, err := pool.Acquire(ctx)
	if err != nil {
		log.Fatalf("acquire: %v", err)
	}
	defer conn.Release()

	var locked bool
	if err := conn.QueryRow(ctx, "SELECT pg_try_advisory_lock($1)", migratorLockKey).Scan(&locked); err != nil {
		log.Fatalf("advisory lock: %v", err)
	}
	if !locked {
		log.Fatal("another migrator is currently running")
	}

	if _, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			filename TEXT NOT NULL,
			checksum TEXT NOT NULL,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`); err != nil {
		log.Fatalf("schema_migrations: %v", err)
	}

	for _, filename := range pending() {
		apply(ctx, pool, filename)
	}
	log.Println("done")
}

// pending lists migrations/*.sql sorted by filename, rejecting duplicate
// version prefixes.
func pending() []string {
	entries, err := os.ReadDir("migrations")
	if err != nil {
		log.Fatalf("read migrations dir: %v", err)
	}

	seen := make(map[string]bool)
	var filenames []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		v := version(entry.Name())
		if seen[v] {
			log.Fatalf("duplicate migration version %s", v)
		}
		seen[v] = true
		filenames = append(filenames, entry.Name())
	}
	sort.Strings(filenames)
	return filenames
}

// version extracts the NNN prefix from NNN_description.sql.
func version(filename string) string {
	parts := strings.SplitN(filename, "_", 2)
	if len(parts) < 2 {
		log.Fatalf("bad migration filename %q, want NNN_description.sql", filename)
	}
	return parts[0]
}

func apply(ctx context.Context, pool *pgxpool.Pool, filename string) {
	raw, err := os.ReadFile(filepath.Join("migrations", filename))
	if err != nil {
		log.Fatalf("read %s: %v", filename, err)
	}
	sum := sha256.Sum256(raw)
	checksum := hex.EncodeToString(sum[:])
	v := version(filename)

	var existing string
	err = pool.QueryRow(ctx, "SELECT checksum FROM schema_migrations WHERE version = $1", v).Scan(&existing)
	switch {
	case err == nil:
		if existing != checksum {
			log.Fatalf("%s changed after it was applied (checksum %s, recorded %s)", filename, checksum, existing)
		}
		log.Printf("skip %s", filename)
		return
	case err != pgx.ErrNoRows:
		log.Fatalf("query schema_migrations for %s: %v", filename, err)
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		log.Fatalf("begin for %s: %v", filename, err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, string(raw)); err != nil {
		log.Fatalf("exec %s: %v", filename, err)
	}
	if _, err := tx.Exec(ctx,
		"INSERT INTO schema_migrations (version, filename, checksum) VALUES ($1, $2, $3)",
		v, filename, checksum); err != nil {
		log.Fatalf("record %s: %v", filename, err)
	}
	if err := tx.Commit(ctx); err != nil {
		log.Fatalf("commit %s: %v", filename, err)
	}
	log.Printf("applied %s", filename)
}
