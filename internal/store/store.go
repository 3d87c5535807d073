// Package store persists the ledger snapshot as one unit. The core never
// sees a storage backend; it hands a complete snapshot out and gets a
// complete snapshot back.
package store

import (
	"errors"

	"repairdesk/internal/core"
)

// ErrNoSnapshot is returned by Load when the backend holds no data yet.
// Callers typically respond by seeding demo data or starting empty.
var ErrNoSnapshot = errors.New("store: no snapshot")

// SnapshotStore reads and writes the whole ledger atomically.
type SnapshotStore interface {
	Load() (*core.Snapshot, error)
	Save(*core.Snapshot) error
}
