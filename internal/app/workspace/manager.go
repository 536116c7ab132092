package workspace

import (
	"errors"
	"sync"

	"braid/internal/domain"

	"github.com/google/uuid"
)

var ErrWorkspaceNotFound = errors.New("workspace not found")

// Manager holds the open workspaces of this process, keyed by id.
type Manager struct {
	client       domain.StreamClient
	prompts      SystemPromptFunc
	defaultModel string

	mu   sync.RWMutex
	open map[domain.WorkspaceID]*Workspace
}

func NewManager(defaultModel string, client domain.StreamClient, prompts SystemPromptFunc) *Manager {
	return &Manager{
		client:       client,
		prompts:      prompts,
		defaultModel: defaultModel,
		open:         make(map[domain.WorkspaceID]*Workspace),
	}
}

// Open creates a fresh workspace for user. model may be empty to take the
// configured default.
func (m *Manager) Open(user domain.User, model string) *Workspace {
	if model == "" {
		model = m.defaultModel
	}
	w := New(domain.WorkspaceID(uuid.NewString()), user, model, m.client, m.prompts)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.open[w.ID] = w
	return w
}

func (m *Manager) Get(id domain.WorkspaceID) (*Workspace, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	w, ok := m.open[id]
	if !ok {
		return nil, ErrWorkspaceNotFound
	}
	return w, nil
}

// Close discards an open workspace, stopping any in-flight streams.
func (m *Manager) Close(id domain.WorkspaceID) bool {
	m.mu.Lock()
	w, ok := m.open[id]
	delete(m.open, id)
	m.mu.Unlock()
	if !ok {
		return false
	}
	w.Main().Stop()
	w.registry.CloseAll()
	return true
}
