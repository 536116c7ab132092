package memory

import (
	"context"
	"sort"
	"sync"

	"braid/internal/domain"
)

// SnapshotStore is a mutex-guarded in-memory implementation of
// domain.SnapshotStore. Not persistent; suitable for local mode and tests.
type SnapshotStore struct {
	mu        sync.RWMutex
	snapshots map[domain.SessionID]*domain.Snapshot
	shared    map[domain.SessionID]*domain.Snapshot
}

func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{
		snapshots: make(map[domain.SessionID]*domain.Snapshot),
		shared:    make(map[domain.SessionID]*domain.Snapshot),
	}
}

func (s *SnapshotStore) PutSnapshot(ctx context.Context, snap *domain.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[snap.ID] = snap
	return nil
}

func (s *SnapshotStore) GetSnapshot(ctx context.Context, id domain.SessionID) (*domain.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.snapshots[id]
	if !ok {
		return nil, domain.ErrSnapshotNotFound
	}
	return snap, nil
}

func (s *SnapshotStore) DeleteSnapshot(ctx context.Context, id domain.SessionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.snapshots[id]; !ok {
		return domain.ErrSnapshotNotFound
	}
	delete(s.snapshots, id)
	return nil
}

func (s *SnapshotStore) ListSnapshots(ctx context.Context, userID domain.UserID, limit int) ([]*domain.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.Snapshot
	for _, snap := range s.snapshots {
		if snap.UserID == userID {
			out = append(out, snap)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *SnapshotStore) PutShared(ctx context.Context, snap *domain.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shared[snap.ID] = snap
	return nil
}

func (s *SnapshotStore) GetShared(ctx context.Context, id domain.SessionID) (*domain.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.shared[id]
	if !ok {
		return nil, domain.ErrSnapshotNotFound
	}
	return snap, nil
}
