package domain

import (
	"context"
	"errors"
)

// ErrSnapshotNotFound is returned by SnapshotStore implementations when the
// requested session id does not exist.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// CompletionRequest carries one conversation turn to the model backend.
type CompletionRequest struct {
	Model    string
	System   string
	Messages []*Message
}

// StreamClient defines how the core talks to a hosted model. The backend
// streams text deltas through onDelta until the turn completes; a non-nil
// return from onDelta aborts the stream. Implementations surface errors as
// a single terminal error.
type StreamClient interface {
	StreamCompletion(ctx context.Context, req CompletionRequest, onDelta func(delta string) error) error
}

// SnapshotStore defines workspace snapshot persistence. Saved snapshots are
// private to their owner; the Shared methods address a parallel namespace
// of immutable, publicly readable forks.
type SnapshotStore interface {
	PutSnapshot(ctx context.Context, snap *Snapshot) error
	GetSnapshot(ctx context.Context, id SessionID) (*Snapshot, error)
	DeleteSnapshot(ctx context.Context, id SessionID) error
	ListSnapshots(ctx context.Context, userID UserID, limit int) ([]*Snapshot, error)

	PutShared(ctx context.Context, snap *Snapshot) error
	GetShared(ctx context.Context, id SessionID) (*Snapshot, error)
}

// User is the current identity, or anonymous when ID is empty. Thread and
// layout logic never depends on identity; only save/share operations gate
// on it.
type User struct {
	ID          UserID
	DisplayName string
}

func (u User) Anonymous() bool {
	return u.ID == ""
}
