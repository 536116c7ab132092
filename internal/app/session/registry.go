package session

import (
	"sync"

	"braid/internal/domain"
)

// Registry holds the live per-thread Conversations of one workspace, keyed
// by thread id, with an explicit create/destroy lifecycle. Mounting the
// same thread twice returns the same Conversation, so the pending-intent
// handshake cannot be observed by two instances.
type Registry struct {
	client domain.StreamClient

	mu       sync.Mutex
	model    string
	sessions map[domain.ThreadID]*Conversation
}

func NewRegistry(model string, client domain.StreamClient) *Registry {
	return &Registry{
		client:   client,
		model:    model,
		sessions: make(map[domain.ThreadID]*Conversation),
	}
}

// Mount returns the thread's Conversation, creating it on first mount, and
// reports whether this call created it.
func (r *Registry) Mount(id domain.ThreadID, system string) (*Conversation, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.sessions[id]; ok {
		return c, false
	}
	c := New(string(id), r.model, system, r.client)
	r.sessions[id] = c
	return c, true
}

// Get returns the Conversation for a mounted thread.
func (r *Registry) Get(id domain.ThreadID) (*Conversation, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.sessions[id]
	return c, ok
}

// Close stops any in-flight stream and discards the thread's Conversation.
func (r *Registry) Close(id domain.ThreadID) {
	r.mu.Lock()
	c, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if ok {
		c.Stop()
	}
}

// CloseAll discards every session. Used by restore.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[domain.ThreadID]*Conversation)
	r.mu.Unlock()
	for _, c := range sessions {
		c.Stop()
	}
}

// SetModel switches the model for future turns of all sessions, current and
// newly mounted.
func (r *Registry) SetModel(model string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.model = model
	for _, c := range r.sessions {
		c.SetModel(model)
	}
}
