package workspace

import (
	"fmt"

	"braid/internal/domain"
)

// Snapshot captures the full workspace state as one persistable value. Each
// thread's message list is reconciled from its live session first, so a
// snapshot taken mid-conversation carries everything streamed so far rather
// than the store's stale mirror.
func (w *Workspace) Snapshot() *domain.Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	mainMsgs := w.main.Messages()

	list := w.store.List()
	snapThreads := make([]*domain.Thread, 0, len(list))
	for _, t := range list {
		ct := *t
		if conv, ok := w.registry.Get(t.ID); ok {
			ct.Messages = conv.Messages()
		} else {
			ct.Messages = append([]*domain.Message(nil), t.Messages...)
		}
		snapThreads = append(snapThreads, &ct)
	}

	ui := w.layoutState
	return &domain.Snapshot{
		Version:        domain.SnapshotVersion,
		UserID:         w.User.ID,
		Title:          snapshotTitle(mainMsgs),
		SelectedModel:  w.model,
		MainMessages:   mainMsgs,
		Threads:        snapThreads,
		ActiveThreadID: w.store.Active(),
		UIState:        &ui,
	}
}

// Restore replaces the entire workspace state with a snapshot. It is
// all-or-nothing: validation happens before any live state is touched, so a
// rejected snapshot leaves the workspace exactly as it was. Existing
// threads, sessions and layout state are cleared first, never merged.
func (w *Workspace) Restore(snap *domain.Snapshot) error {
	if snap == nil {
		return fmt.Errorf("nil snapshot")
	}
	if err := snap.Validate(); err != nil {
		return fmt.Errorf("invalid snapshot: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.registry.CloseAll()
	w.main.Stop()
	w.store.Clear()
	w.intents.Clear()

	if snap.SelectedModel != "" {
		w.model = snap.SelectedModel
		w.main.SetModel(snap.SelectedModel)
		w.registry.SetModel(snap.SelectedModel)
	}

	w.main.LoadMessages(snap.MainMessages)

	for _, t := range snap.Threads {
		ct := *t
		ct.Messages = append([]*domain.Message(nil), t.Messages...)
		w.store.Add(&ct)
	}
	if snap.ActiveThreadID != "" {
		w.store.SetActive(snap.ActiveThreadID)
	}

	if snap.UIState != nil {
		w.layoutState = *snap.UIState
	} else {
		w.layoutState = domain.DefaultLayoutState()
	}

	w.savedAs = snap.ID
	return nil
}

// SavedAs reports the snapshot id this workspace last saved to or loaded
// from ("" when never saved).
func (w *Workspace) SavedAs() domain.SessionID {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.savedAs
}

func (w *Workspace) MarkSaved(id domain.SessionID) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.savedAs = id
}

// snapshotTitle labels a saved session after the first thing the user said.
func snapshotTitle(mainMsgs []*domain.Message) string {
	for _, m := range mainMsgs {
		if m.Role == domain.RoleUser {
			const max = 60
			runes := []rune(m.Content)
			if len(runes) > max {
				return string(runes[:max]) + "…"
			}
			return m.Content
		}
	}
	return "Untitled session"
}
