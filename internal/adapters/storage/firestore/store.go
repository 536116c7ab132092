package firestore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"braid/internal/domain"
)

// Store implements domain.SnapshotStore on Firestore: the remote document
// backend. Private snapshots live in "sessions", public forks in
// "shared_sessions"; the shared collection is only ever written by Share
// and read anonymously.
type Store struct {
	client *firestore.Client
}

func NewStore(ctx context.Context, projectID string) (*Store, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID is required for Firestore store")
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}

	return &Store{client: client}, nil
}

func (s *Store) sessionsCol() *firestore.CollectionRef {
	return s.client.Collection("sessions")
}

func (s *Store) sharedCol() *firestore.CollectionRef {
	return s.client.Collection("shared_sessions")
}

// snapshotDoc lifts the fields Firestore queries on out of the payload; the
// snapshot itself travels as one JSON document so the schema has a single
// source of truth.
type snapshotDoc struct {
	UserID    string    `firestore:"user_id"`
	Title     string    `firestore:"title"`
	Payload   string    `firestore:"payload"`
	UpdatedAt time.Time `firestore:"updated_at"`
}

func encodeDoc(snap *domain.Snapshot) (snapshotDoc, error) {
	payload, err := json.Marshal(snap)
	if err != nil {
		return snapshotDoc{}, fmt.Errorf("encoding snapshot: %w", err)
	}
	return snapshotDoc{
		UserID:    string(snap.UserID),
		Title:     snap.Title,
		Payload:   string(payload),
		UpdatedAt: snap.UpdatedAt,
	}, nil
}

func decodeDoc(doc snapshotDoc) (*domain.Snapshot, error) {
	var snap domain.Snapshot
	if err := json.Unmarshal([]byte(doc.Payload), &snap); err != nil {
		return nil, fmt.Errorf("decoding snapshot payload: %w", err)
	}
	return &snap, nil
}

func (s *Store) PutSnapshot(ctx context.Context, snap *domain.Snapshot) error {
	doc, err := encodeDoc(snap)
	if err != nil {
		return err
	}
	if _, err := s.sessionsCol().Doc(string(snap.ID)).Set(ctx, doc); err != nil {
		return fmt.Errorf("firestore PutSnapshot: %w", err)
	}
	return nil
}

func (s *Store) GetSnapshot(ctx context.Context, id domain.SessionID) (*domain.Snapshot, error) {
	return s.getFrom(ctx, s.sessionsCol(), id)
}

func (s *Store) DeleteSnapshot(ctx context.Context, id domain.SessionID) error {
	ref := s.sessionsCol().Doc(string(id))
	if _, err := ref.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return domain.ErrSnapshotNotFound
		}
		return fmt.Errorf("firestore DeleteSnapshot: %w", err)
	}
	if _, err := ref.Delete(ctx); err != nil {
		return fmt.Errorf("firestore DeleteSnapshot: %w", err)
	}
	return nil
}

func (s *Store) ListSnapshots(ctx context.Context, userID domain.UserID, limit int) ([]*domain.Snapshot, error) {
	q := s.sessionsCol().
		Where("user_id", "==", string(userID)).
		OrderBy("updated_at", firestore.Desc)
	if limit > 0 {
		q = q.Limit(limit)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	var out []*domain.Snapshot
	for {
		docSnap, err := iter.Next()
		if err != nil {
			if err == iterator.Done {
				break
			}
			return nil, fmt.Errorf("firestore ListSnapshots: %w", err)
		}

		var doc snapshotDoc
		if err := docSnap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode snapshotDoc: %w", err)
		}
		snap, err := decodeDoc(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, snap)
	}
	return out, nil
}

func (s *Store) PutShared(ctx context.Context, snap *domain.Snapshot) error {
	doc, err := encodeDoc(snap)
	if err != nil {
		return err
	}
	// Create, not Set: shared forks are immutable once minted.
	if _, err := s.sharedCol().Doc(string(snap.ID)).Create(ctx, doc); err != nil {
		return fmt.Errorf("firestore PutShared: %w", err)
	}
	return nil
}

func (s *Store) GetShared(ctx context.Context, id domain.SessionID) (*domain.Snapshot, error) {
	return s.getFrom(ctx, s.sharedCol(), id)
}

func (s *Store) getFrom(ctx context.Context, col *firestore.CollectionRef, id domain.SessionID) (*domain.Snapshot, error) {
	docSnap, err := col.Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, domain.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("firestore get snapshot: %w", err)
	}

	var doc snapshotDoc
	if err := docSnap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("decode snapshotDoc: %w", err)
	}
	return decodeDoc(doc)
}
