package threads

import (
	"fmt"
	"sync"

	"braid/internal/domain"
)

// autoMessage builds the first message dispatched automatically into a new
// thread's session, or "" when the action waits for the user to type. The
// ask action never auto-sends.
func autoMessage(context string, action domain.ActionType) string {
	switch action {
	case domain.ActionDetails:
		return fmt.Sprintf("Please provide more details about: %q", context)
	case domain.ActionSimplify:
		return fmt.Sprintf("Please explain this in the simplest terms, as if teaching a complete beginner: %q", context)
	case domain.ActionExamples:
		return fmt.Sprintf("Please provide 3-5 concrete, practical examples of: %q", context)
	case domain.ActionLinks:
		return fmt.Sprintf("Please provide relevant links and resources related to: %q", context)
	case domain.ActionVideos:
		return fmt.Sprintf("Please suggest relevant YouTube videos and channels related to: %q", context)
	case domain.ActionSynthesis:
		// The synthesis context IS the prompt.
		return context
	default:
		return ""
	}
}

// Intents is the fire-once handshake between thread creation and the
// conversation session that mounts later. The controller schedules the
// initial message here; the first session to mount the thread consumes it.
// Consumption is keyed by thread id and destructive, so a remounting
// session can never replay the message.
type Intents struct {
	mu      sync.Mutex
	pending map[domain.ThreadID]string
}

func NewIntents() *Intents {
	return &Intents{pending: make(map[domain.ThreadID]string)}
}

func (in *Intents) Schedule(id domain.ThreadID, text string) {
	if text == "" {
		return
	}
	in.mu.Lock()
	defer in.mu.Unlock()
	in.pending[id] = text
}

// Consume returns the pending initial message for a thread exactly once.
func (in *Intents) Consume(id domain.ThreadID) (string, bool) {
	in.mu.Lock()
	defer in.mu.Unlock()
	text, ok := in.pending[id]
	if ok {
		delete(in.pending, id)
	}
	return text, ok
}

// Drop discards a pending intent, used when a thread closes before any
// session mounted it.
func (in *Intents) Drop(id domain.ThreadID) {
	in.mu.Lock()
	defer in.mu.Unlock()
	delete(in.pending, id)
}

// Clear empties all pending intents. Used by restore.
func (in *Intents) Clear() {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.pending = make(map[domain.ThreadID]string)
}
