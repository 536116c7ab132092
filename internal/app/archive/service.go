package archive

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"braid/internal/domain"
	"braid/internal/observability"

	"github.com/google/uuid"
)

var ErrAuthRequired = errors.New("sign-in required")

// Service persists workspace snapshots through the SnapshotStore port and
// mints shareable read-only forks. A failed save never touches in-memory
// state and is never retried here; the caller decides what to do.
type Service struct {
	store       domain.SnapshotStore
	shareBase   string
	requireAuth bool
	now         func() time.Time
}

// NewService builds the persistence service. shareBase is the URL prefix
// share links are minted under (e.g. "https://braid.example.com"). When
// requireAuth is set, save and share reject anonymous users.
func NewService(store domain.SnapshotStore, shareBase string, requireAuth bool) *Service {
	return &Service{
		store:       store,
		shareBase:   strings.TrimRight(shareBase, "/"),
		requireAuth: requireAuth,
		now:         time.Now,
	}
}

// Save writes a snapshot and returns its session id. A snapshot that
// already carries an id is overwritten in place; otherwise a new id is
// minted.
func (s *Service) Save(ctx context.Context, user domain.User, snap *domain.Snapshot) (domain.SessionID, error) {
	if s.requireAuth && user.Anonymous() {
		return "", ErrAuthRequired
	}
	if err := snap.Validate(); err != nil {
		return "", fmt.Errorf("refusing to save invalid snapshot: %w", err)
	}

	now := s.now()
	if snap.ID == "" {
		snap.ID = domain.SessionID(uuid.NewString())
		snap.CreatedAt = now
	}
	snap.UserID = user.ID
	snap.UpdatedAt = now

	log := observability.LoggerFromContext(ctx).With(
		"session_id", snap.ID,
		"user_id", user.ID,
	)
	if err := s.store.PutSnapshot(ctx, snap); err != nil {
		log.Error("failed to save session", "error", err)
		return "", err
	}
	log.Info("session saved", "threads", len(snap.Threads))
	return snap.ID, nil
}

// Load fetches a saved snapshot and validates it before handing it to the
// caller, so a corrupt document is rejected here rather than after the live
// state was cleared.
func (s *Service) Load(ctx context.Context, id domain.SessionID) (*domain.Snapshot, error) {
	snap, err := s.store.GetSnapshot(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := snap.Validate(); err != nil {
		return nil, fmt.Errorf("stored snapshot %q is corrupt: %w", id, err)
	}
	return snap, nil
}

// Delete removes a saved snapshot and reports whether it existed.
func (s *Service) Delete(ctx context.Context, id domain.SessionID) (bool, error) {
	err := s.store.DeleteSnapshot(ctx, id)
	if errors.Is(err, domain.ErrSnapshotNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// List returns the user's saved sessions, most recently updated first.
func (s *Service) List(ctx context.Context, user domain.User, limit int) ([]*domain.Snapshot, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.store.ListSnapshots(ctx, user.ID, limit)
}

// Share forks a saved snapshot into the public namespace and returns the
// share URL. The fork is immutable: re-sharing mints a fresh copy under a
// fresh id, and later edits to the private session never leak into it.
func (s *Service) Share(ctx context.Context, user domain.User, id domain.SessionID) (string, error) {
	if s.requireAuth && user.Anonymous() {
		return "", ErrAuthRequired
	}

	snap, err := s.Load(ctx, id)
	if err != nil {
		return "", err
	}

	fork := *snap
	fork.ID = domain.SessionID(uuid.NewString())
	fork.UserID = ""
	fork.UpdatedAt = s.now()

	if err := s.store.PutShared(ctx, &fork); err != nil {
		observability.LoggerFromContext(ctx).Error("failed to share session",
			"session_id", id, "error", err)
		return "", err
	}
	return fmt.Sprintf("%s/shared/%s", s.shareBase, fork.ID), nil
}

// LoadShared fetches a publicly shared snapshot.
func (s *Service) LoadShared(ctx context.Context, id domain.SessionID) (*domain.Snapshot, error) {
	snap, err := s.store.GetShared(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := snap.Validate(); err != nil {
		return nil, fmt.Errorf("shared snapshot %q is corrupt: %w", id, err)
	}
	return snap, nil
}
