package threads

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"braid/internal/domain"
)

var (
	ErrEmptyContext   = errors.New("thread context is empty")
	ErrUnknownAction  = errors.New("unknown action type")
	ErrParentNotFound = errors.New("parent thread not found")
	ErrThreadNotFound = errors.New("thread not found")
)

// Controller owns thread creation and closure for one workspace: id and
// row assignment, title derivation, and scheduling of auto-sent first
// messages. It mutates only the Store and Intents it was built with.
type Controller struct {
	store   *Store
	intents *Intents
	now     func() time.Time
	rng     *rand.Rand
}

func NewController(store *Store, intents *Intents) *Controller {
	return &Controller{
		store:   store,
		intents: intents,
		now:     time.Now,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

type CreateInput struct {
	// Context is the selected text, or a synthesized prompt. Must be
	// non-empty; any minimum selection length is the caller's policy.
	Context        string
	Action         domain.ActionType
	SourceThreadID domain.ThreadID
}

// Create builds a thread from a selection, assigns its row, appends it to
// the store, marks it active and schedules the action's initial message.
func (c *Controller) Create(in CreateInput) (*domain.Thread, error) {
	if strings.TrimSpace(in.Context) == "" {
		return nil, ErrEmptyContext
	}
	if !in.Action.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, in.Action)
	}

	t := &domain.Thread{
		ID:              c.newThreadID(),
		Title:           deriveTitle(in.Context, in.Action),
		SelectedContext: in.Context,
		ActionType:      in.Action,
		CreatedAt:       c.now(),
	}

	if in.SourceThreadID != "" {
		parent, ok := c.store.Get(in.SourceThreadID)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrParentNotFound, in.SourceThreadID)
		}
		t.SourceType = domain.SourceThread
		t.ParentThreadID = parent.ID
		t.RowID = parent.RowID
	} else {
		t.SourceType = domain.SourceMain
		t.RowID = c.store.NextMainRow()
	}

	c.store.Add(t)
	c.store.SetActive(t.ID)
	c.intents.Schedule(t.ID, autoMessage(in.Context, in.Action))
	return t, nil
}

// Close removes a thread. Children are deliberately not cascaded: they stay
// in the store with their parent reference left dangling, so a closed
// branch does not take exploration below it down too. Reports whether the
// thread existed.
func (c *Controller) Close(id domain.ThreadID) bool {
	if !c.store.Remove(id) {
		return false
	}
	c.intents.Drop(id)
	return true
}

// Thread ids combine creation time with a random suffix so rapid-fire
// creation cannot collide.
func (c *Controller) newThreadID() domain.ThreadID {
	const suffixAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	suffix := make([]byte, 6)
	for i := range suffix {
		suffix[i] = suffixAlphabet[c.rng.Intn(len(suffixAlphabet))]
	}
	return domain.ThreadID(fmt.Sprintf("thread-%d-%s", c.now().UnixMilli(), suffix))
}
