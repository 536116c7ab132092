package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"braid/internal/domain"
	"braid/internal/observability"

	"github.com/google/uuid"
)

var ErrBusy = errors.New("session already has a turn in flight")

// Conversation owns one message list and its streaming exchange with the
// model backend. Every open panel (the main conversation plus each thread)
// holds its own Conversation keyed by its own id, so concurrent streams
// never share state and cancelling one leaves the others alone.
type Conversation struct {
	id     string
	client domain.StreamClient

	mu       sync.Mutex
	model    string
	system   string
	messages []*domain.Message
	loading  bool
	cancel   context.CancelFunc

	// gen is bumped by LoadMessages. A turn that started against an
	// earlier generation must not land its reply in the replaced list.
	gen uint64

	now func() time.Time
}

func New(id, model, system string, client domain.StreamClient) *Conversation {
	return &Conversation{
		id:     id,
		client: client,
		model:  model,
		system: system,
		now:    time.Now,
	}
}

func (c *Conversation) ID() string {
	return c.id
}

// Send appends text as a user message, streams the assistant reply from the
// backend, and appends the completed reply. Each delta is forwarded to
// onDelta (which may be nil) as it arrives. Blocking; one turn at a time.
//
// Cancellation via Stop or ctx truncates the reply at whatever content
// already arrived: the partial assistant message is kept and no error is
// returned. A turn cancelled before any content appends nothing and
// returns (nil, nil). Backend failures before any content surface as an
// error and leave the list with only the user message appended.
func (c *Conversation) Send(ctx context.Context, text string, onDelta func(delta string) error) (*domain.Message, error) {
	c.mu.Lock()
	if c.loading {
		c.mu.Unlock()
		return nil, ErrBusy
	}
	c.loading = true

	userMsg := &domain.Message{
		ID:        domain.MessageID(uuid.NewString()),
		Role:      domain.RoleUser,
		Content:   text,
		CreatedAt: c.now(),
	}
	c.messages = append(c.messages, userMsg)
	gen := c.gen

	streamCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	req := domain.CompletionRequest{
		Model:    c.model,
		System:   c.system,
		Messages: append([]*domain.Message(nil), c.messages...),
	}
	c.mu.Unlock()

	defer func() {
		cancel()
		c.mu.Lock()
		c.loading = false
		c.cancel = nil
		c.mu.Unlock()
	}()

	var reply strings.Builder
	err := c.client.StreamCompletion(streamCtx, req, func(delta string) error {
		reply.WriteString(delta)
		if onDelta != nil {
			return onDelta(delta)
		}
		return nil
	})

	if err != nil && !errors.Is(err, context.Canceled) {
		observability.Logger().Error("stream failed",
			"session_id", c.id, "error", err)
		return nil, err
	}

	// A turn cancelled before any content arrived leaves no trace beyond
	// the user message.
	if reply.Len() == 0 && streamCtx.Err() != nil {
		return nil, nil
	}

	assistantMsg := &domain.Message{
		ID:        domain.MessageID(uuid.NewString()),
		Role:      domain.RoleAssistant,
		Content:   reply.String(),
		CreatedAt: c.now(),
	}

	c.mu.Lock()
	// The list may have been wholesale-replaced while the stream was being
	// cancelled; a stale turn must not merge into the new conversation.
	if c.gen == gen {
		c.messages = append(c.messages, assistantMsg)
	}
	c.mu.Unlock()
	return assistantMsg, nil
}

// Stop aborts the in-flight turn, if any. The truncated reply is kept by
// Send. Safe to call at any time.
func (c *Conversation) Stop() {
	c.mu.Lock()
	cancel := c.cancel
	c.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Append inserts a message without contacting the backend. Low-level hook
// used for programmatic inserts that bypass a model turn.
func (c *Conversation) Append(msg *domain.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, msg)
}

// LoadMessages replaces the whole list verbatim. Destructive overwrite, not
// a merge; used on session restore.
func (c *Conversation) LoadMessages(msgs []*domain.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.messages = append([]*domain.Message(nil), msgs...)
}

// Messages returns a copy of the current list.
func (c *Conversation) Messages() []*domain.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*domain.Message(nil), c.messages...)
}

func (c *Conversation) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

func (c *Conversation) SetModel(model string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.model = model
}
