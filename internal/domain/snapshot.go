package domain

import (
	"fmt"
	"time"
)

// SnapshotVersion is bumped when the snapshot schema changes in a way old
// readers cannot handle. Loaders accept any version up to the current one.
const SnapshotVersion = 1

// Snapshot is the full serializable state of a workspace: main messages,
// the thread tree with each thread's resolved messages, model choice and UI
// layout. It is the unit of persistence and of sharing.
type Snapshot struct {
	ID      SessionID `json:"id"`
	Version int       `json:"version"`
	UserID  UserID    `json:"user_id,omitempty"`
	Title   string    `json:"title,omitempty"`

	SelectedModel  string     `json:"selected_model"`
	MainMessages   []*Message `json:"main_messages"`
	Threads        []*Thread  `json:"threads"`
	ActiveThreadID ThreadID   `json:"active_thread_id,omitempty"`

	// UIState is nil in snapshots written before layout state was
	// persisted; loaders substitute DefaultLayoutState.
	UIState *LayoutState `json:"ui_state,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks the structural invariants a snapshot must satisfy before
// it may be applied to a live workspace. Restore is all-or-nothing, so
// every violation must be caught here rather than mid-apply.
func (s *Snapshot) Validate() error {
	if s.Version > SnapshotVersion {
		return fmt.Errorf("snapshot version %d is newer than supported version %d", s.Version, SnapshotVersion)
	}

	seen := make(map[ThreadID]bool, len(s.Threads))
	for i, t := range s.Threads {
		if t == nil {
			return fmt.Errorf("thread %d is null", i)
		}
		if t.ID == "" {
			return fmt.Errorf("thread %d has empty id", i)
		}
		if seen[t.ID] {
			return fmt.Errorf("duplicate thread id %q", t.ID)
		}
		if !t.ActionType.Valid() {
			return fmt.Errorf("thread %q has unknown action type %q", t.ID, t.ActionType)
		}
		if !t.SourceType.Valid() {
			return fmt.Errorf("thread %q has unknown source type %q", t.ID, t.SourceType)
		}
		if t.RowID < 0 {
			return fmt.Errorf("thread %q has negative row %d", t.ID, t.RowID)
		}
		switch t.SourceType {
		case SourceMain:
			if t.ParentThreadID != "" {
				return fmt.Errorf("main-rooted thread %q carries parent %q", t.ID, t.ParentThreadID)
			}
		case SourceThread:
			if t.ParentThreadID == "" {
				return fmt.Errorf("thread-rooted thread %q has no parent id", t.ID)
			}
			// Parents are created before their children, so a valid parent
			// reference appears earlier in the list. This also rules out
			// cycles. References left dangling by a closed parent are
			// allowed only when the parent is absent entirely, which this
			// check cannot distinguish from a forward reference; a parent
			// that IS present must precede its child.
			if !seen[t.ParentThreadID] {
				if containsThread(s.Threads[i+1:], t.ParentThreadID) {
					return fmt.Errorf("thread %q references parent %q created after it", t.ID, t.ParentThreadID)
				}
			}
		}
		seen[t.ID] = true
	}

	if s.ActiveThreadID != "" && !seen[s.ActiveThreadID] {
		return fmt.Errorf("active thread %q not present in snapshot", s.ActiveThreadID)
	}
	return nil
}

func containsThread(threads []*Thread, id ThreadID) bool {
	for _, t := range threads {
		if t != nil && t.ID == id {
			return true
		}
	}
	return false
}
