package app

import (
	"context"
	"sync"
	"time"

	"repairdesk/internal/core"
	"repairdesk/internal/store"
)

// LocalService serves the ledger from an in-memory snapshot backed by a
// SnapshotStore. One mutex serializes writers; every mutation computes a
// complete replacement snapshot, persists it, and only then swaps it in.
// A failed save leaves the in-memory state untouched.
type LocalService struct {
	mu    sync.RWMutex
	snap  *core.Snapshot
	store store.SnapshotStore
	now   func() time.Time
}

// NewLocalService loads the persisted snapshot. With nothing persisted yet it
// starts from the demo dataset when seedDemo is set, otherwise empty.
func NewLocalService(st store.SnapshotStore, seedDemo bool) (*LocalService, error) {
	s := &LocalService{store: st, now: time.Now}
	snap, err := st.Load()
	switch {
	case err == store.ErrNoSnapshot:
		if seedDemo {
			snap = core.DemoSnapshot(s.now())
		} else {
			snap = &core.Snapshot{}
		}
		if err := st.Save(snap); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	}
	s.snap = snap
	return s, nil
}

// commit persists the replacement snapshot and swaps it in. Callers hold mu.
func (s *LocalService) commit(next *core.Snapshot) error {
	if err := s.store.Save(next); err != nil {
		return err
	}
	s.snap = next
	return nil
}

func (s *LocalService) ListCompanies(ctx context.Context) ([]core.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Company(nil), s.snap.Companies...), nil
}

func (s *LocalService) CreateCompany(ctx context.Context, name string) (core.Company, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, c, err := s.snap.AddCompany(name, s.now())
	if err != nil {
		return core.Company{}, err
	}
	if err := s.commit(next); err != nil {
		return core.Company{}, err
	}
	return c, nil
}

func (s *LocalService) DeleteCompany(ctx context.Context, companyID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := s.snap.DeleteCompany(companyID)
	if err != nil {
		return err
	}
	return s.commit(next)
}

func (s *LocalService) ListInventory(ctx context.Context, companyID string) ([]core.InventoryItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.CompanyInventory(companyID), nil
}

func (s *LocalService) SaveItem(ctx context.Context, companyID string, item core.InventoryItem) (core.InventoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, saved, err := s.snap.UpsertItem(companyID, item, s.now())
	if err != nil {
		return core.InventoryItem{}, err
	}
	if err := s.commit(next); err != nil {
		return core.InventoryItem{}, err
	}
	return saved, nil
}

func (s *LocalService) AdjustItemQty(ctx context.Context, companyID, itemID string, delta int) (core.InventoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, it, err := s.snap.AdjustItemQty(companyID, itemID, delta)
	if err != nil {
		return core.InventoryItem{}, err
	}
	if err := s.commit(next); err != nil {
		return core.InventoryItem{}, err
	}
	return it, nil
}

func (s *LocalService) DeleteItem(ctx context.Context, companyID, itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := s.snap.DeleteItem(companyID, itemID)
	if err != nil {
		return err
	}
	return s.commit(next)
}

func (s *LocalService) ListJobs(ctx context.Context, companyID string) ([]core.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.CompanyJobs(companyID), nil
}

func (s *LocalService) GetJob(ctx context.Context, companyID, jobID string) (core.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	j := s.snap.Job(companyID, jobID)
	if j == nil {
		return core.Job{}, core.ErrNotFound
	}
	out := *j
	out.InventoryUsed = append([]core.UsageLine(nil), j.InventoryUsed...)
	return out, nil
}

func (s *LocalService) SaveJob(ctx context.Context, companyID string, job core.Job) (core.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, saved, err := s.snap.SaveJob(companyID, job, s.now())
	if err != nil {
		return core.Job{}, err
	}
	if err := s.commit(next); err != nil {
		return core.Job{}, err
	}
	return saved, nil
}

func (s *LocalService) DeleteJob(ctx context.Context, companyID, jobID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := s.snap.DeleteJob(companyID, jobID)
	if err != nil {
		return err
	}
	return s.commit(next)
}

func (s *LocalService) ApplyUsage(ctx context.Context, companyID, jobID string, usage []core.UsageLine) (core.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := s.snap.ApplyUsage(companyID, jobID, usage, s.now())
	if err != nil {
		return core.Job{}, err
	}
	if err := s.commit(next); err != nil {
		return core.Job{}, err
	}
	return *next.Job(companyID, jobID), nil
}

func (s *LocalService) ListQueue(ctx context.Context, companyID string) ([]core.RepairQueueEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.CompanyQueue(companyID), nil
}

func (s *LocalService) ResolveQueueEntry(ctx context.Context, companyID, entryID string, action core.ResolveAction) (core.Resolution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, res, err := s.snap.ResolveQueueEntry(companyID, entryID, action, s.now())
	if err != nil {
		return core.Resolution{}, err
	}
	if !res.Applied {
		return res, nil
	}
	if err := s.commit(next); err != nil {
		return core.Resolution{}, err
	}
	return res, nil
}

func (s *LocalService) ListEvents(ctx context.Context, companyID string) ([]core.PartEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.CompanyEvents(companyID), nil
}

func (s *LocalService) Report(ctx context.Context, companyID, from, to string) (*core.Report, error) {
	s.mu.RLock()
	jobs := s.snap.CompanyJobs(companyID)
	events := s.snap.CompanyEvents(companyID)
	s.mu.RUnlock()
	return core.Aggregate(jobs, events, from, to)
}

func (s *LocalService) ConsistencyCheck(ctx context.Context, companyID string) ([]core.ConservationViolation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []core.ConservationViolation
	for _, v := range s.snap.ConservationViolations() {
		if v.CompanyID == companyID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (s *LocalService) ExportSnapshot(ctx context.Context) (*core.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.Clone(), nil
}

func (s *LocalService) ImportSnapshot(ctx context.Context, raw []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := core.Normalize(raw, s.now())
	if err != nil {
		return err
	}
	return s.commit(next)
}
