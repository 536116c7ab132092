package llm

import (
	"context"
	"fmt"
	"strings"

	"braid/internal/domain"
)

// MockLLM is a deterministic StreamClient for local mode and tests. It
// echoes the last user message back word by word, so streaming paths see
// more than one delta.
type MockLLM struct{}

func NewMockLLM() *MockLLM {
	return &MockLLM{}
}

func (m *MockLLM) StreamCompletion(
	ctx context.Context,
	req domain.CompletionRequest,
	onDelta func(delta string) error,
) error {
	var last string
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role == domain.RoleUser {
			last = req.Messages[i].Content
			break
		}
	}

	reply := fmt.Sprintf("You said: %q. Tell me more.", last)
	for i, word := range strings.Fields(reply) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if i > 0 {
			word = " " + word
		}
		if err := onDelta(word); err != nil {
			return err
		}
	}
	return nil
}
