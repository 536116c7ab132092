package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"braid/internal/domain"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "braid.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func snap(id, user string, updated time.Time) *domain.Snapshot {
	return &domain.Snapshot{
		ID:        domain.SessionID(id),
		Version:   domain.SnapshotVersion,
		UserID:    domain.UserID(user),
		Title:     "title " + id,
		UpdatedAt: updated,
	}
}

func TestPutGetRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	now := time.Now().Truncate(time.Millisecond)
	in := snap("s1", "alice", now)
	in.MainMessages = []*domain.Message{
		{ID: "m1", Role: domain.RoleUser, Content: "hello", CreatedAt: now},
	}
	in.Threads = []*domain.Thread{
		{
			ID:              "t1",
			Title:           "🔍 Details: hello",
			SelectedContext: "hello",
			ActionType:      domain.ActionDetails,
			SourceType:      domain.SourceMain,
			RowID:           0,
			CreatedAt:       now,
		},
	}

	if err := store.PutSnapshot(ctx, in); err != nil {
		t.Fatalf("PutSnapshot failed: %v", err)
	}

	got, err := store.GetSnapshot(ctx, "s1")
	if err != nil {
		t.Fatalf("GetSnapshot failed: %v", err)
	}
	if got.Title != in.Title || got.UserID != in.UserID {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if len(got.Threads) != 1 || got.Threads[0].Title != "🔍 Details: hello" {
		t.Fatalf("threads did not survive: %+v", got.Threads)
	}
	if len(got.MainMessages) != 1 || got.MainMessages[0].Content != "hello" {
		t.Fatalf("main messages did not survive: %+v", got.MainMessages)
	}
}

func TestPutOverwritesExisting(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.PutSnapshot(ctx, snap("s1", "alice", time.Now())); err != nil {
		t.Fatalf("PutSnapshot failed: %v", err)
	}
	updated := snap("s1", "alice", time.Now())
	updated.Title = "renamed"
	if err := store.PutSnapshot(ctx, updated); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}

	got, err := store.GetSnapshot(ctx, "s1")
	if err != nil {
		t.Fatalf("GetSnapshot failed: %v", err)
	}
	if got.Title != "renamed" {
		t.Fatalf("overwrite not applied: %q", got.Title)
	}
}

func TestGetMissingReturnsNotFound(t *testing.T) {
	store := openTestStore(t)

	if _, err := store.GetSnapshot(context.Background(), "ghost"); !errors.Is(err, domain.ErrSnapshotNotFound) {
		t.Fatalf("expected ErrSnapshotNotFound, got %v", err)
	}
	if _, err := store.GetShared(context.Background(), "ghost"); !errors.Is(err, domain.ErrSnapshotNotFound) {
		t.Fatalf("expected ErrSnapshotNotFound for shared, got %v", err)
	}
}

func TestDeleteReportsMissing(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.PutSnapshot(ctx, snap("s1", "alice", time.Now())); err != nil {
		t.Fatalf("PutSnapshot failed: %v", err)
	}
	if err := store.DeleteSnapshot(ctx, "s1"); err != nil {
		t.Fatalf("DeleteSnapshot failed: %v", err)
	}
	if err := store.DeleteSnapshot(ctx, "s1"); !errors.Is(err, domain.ErrSnapshotNotFound) {
		t.Fatalf("second delete: %v", err)
	}
}

func TestListOrderedByRecencyAndScoped(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	base := time.Now()
	for i, tc := range []struct {
		id, user string
		offset   time.Duration
	}{
		{"old", "alice", 0},
		{"new", "alice", time.Minute},
		{"other", "bob", 2 * time.Minute},
	} {
		if err := store.PutSnapshot(ctx, snap(tc.id, tc.user, base.Add(tc.offset))); err != nil {
			t.Fatalf("PutSnapshot %d failed: %v", i, err)
		}
	}

	got, err := store.ListSnapshots(ctx, "alice", 10)
	if err != nil {
		t.Fatalf("ListSnapshots failed: %v", err)
	}
	if len(got) != 2 || got[0].ID != "new" || got[1].ID != "old" {
		t.Fatalf("unexpected listing: %+v", got)
	}

	limited, err := store.ListSnapshots(ctx, "alice", 1)
	if err != nil {
		t.Fatalf("limited ListSnapshots failed: %v", err)
	}
	if len(limited) != 1 || limited[0].ID != "new" {
		t.Fatalf("limit not applied: %+v", limited)
	}
}

func TestSharedForksAreImmutable(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	first := snap("pub1", "", time.Now())
	first.Title = "first"
	if err := store.PutShared(ctx, first); err != nil {
		t.Fatalf("PutShared failed: %v", err)
	}

	second := snap("pub1", "", time.Now())
	second.Title = "second"
	if err := store.PutShared(ctx, second); err != nil {
		t.Fatalf("second PutShared failed: %v", err)
	}

	got, err := store.GetShared(ctx, "pub1")
	if err != nil {
		t.Fatalf("GetShared failed: %v", err)
	}
	if got.Title != "first" {
		t.Fatalf("shared fork was overwritten: %q", got.Title)
	}
}
