package threads

import (
	"braid/internal/domain"
)

// Store is the authoritative in-memory list of threads for one open
// workspace. It is a plain container; all creation and closure rules live
// in the Controller. Callers serialize access through the owning workspace.
type Store struct {
	ordered []*domain.Thread
	byID    map[domain.ThreadID]*domain.Thread
	active  domain.ThreadID
}

func NewStore() *Store {
	return &Store{byID: make(map[domain.ThreadID]*domain.Thread)}
}

func (s *Store) Add(t *domain.Thread) {
	s.ordered = append(s.ordered, t)
	s.byID[t.ID] = t
}

// Remove deletes the thread and reports whether it was present. Children of
// the removed thread are untouched; their parent references dangle.
func (s *Store) Remove(id domain.ThreadID) bool {
	if _, ok := s.byID[id]; !ok {
		return false
	}
	delete(s.byID, id)
	for i, t := range s.ordered {
		if t.ID == id {
			s.ordered = append(s.ordered[:i], s.ordered[i+1:]...)
			break
		}
	}
	if s.active == id {
		s.active = ""
	}
	return true
}

func (s *Store) Get(id domain.ThreadID) (*domain.Thread, bool) {
	t, ok := s.byID[id]
	return t, ok
}

// List returns the threads in creation order. The slice is fresh; the
// thread pointers are shared.
func (s *Store) List() []*domain.Thread {
	out := make([]*domain.Thread, len(s.ordered))
	copy(out, s.ordered)
	return out
}

func (s *Store) Len() int {
	return len(s.ordered)
}

// ChildrenOf returns threads whose parent is the given thread, in creation
// order.
func (s *Store) ChildrenOf(parent domain.ThreadID) []*domain.Thread {
	var out []*domain.Thread
	for _, t := range s.ordered {
		if t.ParentThreadID == parent {
			out = append(out, t)
		}
	}
	return out
}

// MainRooted returns threads spawned directly from the main conversation.
func (s *Store) MainRooted() []*domain.Thread {
	var out []*domain.Thread
	for _, t := range s.ordered {
		if t.SourceType == domain.SourceMain {
			out = append(out, t)
		}
	}
	return out
}

// NextMainRow computes the row a new main-rooted thread receives: 0 when no
// main-rooted thread exists yet, otherwise one past the highest main-rooted
// row. Rows freed by closed threads are not reused.
func (s *Store) NextMainRow() int {
	row := -1
	for _, t := range s.ordered {
		if t.SourceType == domain.SourceMain && t.RowID > row {
			row = t.RowID
		}
	}
	return row + 1
}

func (s *Store) SetActive(id domain.ThreadID) {
	s.active = id
}

func (s *Store) Active() domain.ThreadID {
	return s.active
}

// Clear empties the store. Used by restore, which must fully replace state
// rather than merge.
func (s *Store) Clear() {
	s.ordered = nil
	s.byID = make(map[domain.ThreadID]*domain.Thread)
	s.active = ""
}
