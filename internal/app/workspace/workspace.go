package workspace

import (
	"sync"
	"time"

	"braid/internal/app/layout"
	"braid/internal/app/session"
	"braid/internal/app/threads"
	"braid/internal/domain"
)

// SystemPromptFunc builds the system prompt one conversation runs under.
// An empty action means the main conversation.
type SystemPromptFunc func(action domain.ActionType) string

// Workspace is one open session: the main conversation, the thread store
// and its lifecycle controller, the per-thread session registry, the layout
// state, and the selected model. All state transitions go through the
// workspace mutex, matching the single event loop the interaction model
// assumes; only the streaming turns themselves run outside it.
type Workspace struct {
	ID   domain.WorkspaceID
	User domain.User

	mu           sync.Mutex
	model        string
	main         *session.Conversation
	store        *threads.Store
	controller   *threads.Controller
	intents      *threads.Intents
	registry     *session.Registry
	layoutState  domain.LayoutState
	systemPrompt SystemPromptFunc
	client       domain.StreamClient

	// savedAs remembers the snapshot id the workspace was last saved to or
	// loaded from, so re-saving overwrites instead of forking.
	savedAs   domain.SessionID
	CreatedAt time.Time
}

func New(id domain.WorkspaceID, user domain.User, model string, client domain.StreamClient, prompts SystemPromptFunc) *Workspace {
	store := threads.NewStore()
	intents := threads.NewIntents()
	return &Workspace{
		ID:           id,
		User:         user,
		model:        model,
		main:         session.New(domain.MainPanel, model, prompts(""), client),
		store:        store,
		controller:   threads.NewController(store, intents),
		intents:      intents,
		registry:     session.NewRegistry(model, client),
		systemPrompt: prompts,
		client:       client,
		CreatedAt:    time.Now(),
	}
}

// Main returns the main conversation session.
func (w *Workspace) Main() *session.Conversation {
	return w.main
}

func (w *Workspace) Model() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.model
}

func (w *Workspace) SetModel(model string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.model = model
	w.main.SetModel(model)
	w.registry.SetModel(model)
}

// Threads returns the current thread list in creation order.
func (w *Workspace) Threads() []*domain.Thread {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.store.List()
}

func (w *Workspace) Thread(id domain.ThreadID) (*domain.Thread, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.store.Get(id)
}

// CreateThread spawns a thread from a selection. The thread's conversation
// session is not mounted here; the panel mounts it via MountThread, which
// also fires any scheduled first message.
func (w *Workspace) CreateThread(in threads.CreateInput) (*domain.Thread, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.controller.Create(in)
}

// CreateSynthesis spawns a synthesis thread over the explorations branching
// off sourceThreadID (or off main when empty). Nil thread with nil error
// means there was nothing to synthesize.
func (w *Workspace) CreateSynthesis(sourceThreadID domain.ThreadID, originalTopic string) (*domain.Thread, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.controller.CreateSynthesis(sourceThreadID, originalTopic)
}

// CloseThread removes a thread, discards its session and clears any layout
// pointers at it. Children stay; their parent reference dangles.
func (w *Workspace) CloseThread(id domain.ThreadID) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.controller.Close(id) {
		return false
	}
	w.registry.Close(id)
	w.layoutState = layout.DropThread(w.layoutState, id)
	return true
}

// MountThread returns the thread's live session, creating it on first
// mount, together with the auto-send text scheduled at creation, if this
// mount is the one that consumed it. The intent is consumed exactly once
// regardless of how many times the panel mounts; the caller must dispatch
// a returned text into the session.
func (w *Workspace) MountThread(id domain.ThreadID) (*session.Conversation, string, error) {
	w.mu.Lock()
	t, ok := w.store.Get(id)
	if !ok {
		w.mu.Unlock()
		return nil, "", threads.ErrThreadNotFound
	}
	conv, created := w.registry.Mount(id, w.systemPrompt(t.ActionType))
	if created && len(t.Messages) > 0 {
		conv.LoadMessages(t.Messages)
	}
	w.mu.Unlock()

	if text, ok := w.intents.Consume(id); ok {
		return conv, text, nil
	}
	return conv, "", nil
}

// SessionOf returns a thread's live conversation session, if mounted.
func (w *Workspace) SessionOf(id domain.ThreadID) (*session.Conversation, bool) {
	return w.registry.Get(id)
}

// ActiveThread is the most recently created or restored active thread.
func (w *Workspace) ActiveThread() domain.ThreadID {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.store.Active()
}

// ApplyLayout runs a reducer over the layout state under the workspace
// lock. fn must be pure.
func (w *Workspace) ApplyLayout(fn func(domain.LayoutState) domain.LayoutState) domain.LayoutState {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.layoutState = fn(w.layoutState)
	return w.layoutState
}

func (w *Workspace) LayoutState() domain.LayoutState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.layoutState
}

// Layout computes the current panel geometry.
func (w *Workspace) Layout() layout.Layout {
	w.mu.Lock()
	defer w.mu.Unlock()
	return layout.Compute(w.store.List(), w.layoutState)
}
