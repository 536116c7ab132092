package threads

import (
	"fmt"
	"strings"

	"braid/internal/domain"
)

// CreateSynthesis spawns a thread that asks the model to weave the
// explorations branching off one point back into a single narrative.
// sourceThreadID scopes the synthesis to that thread's children; empty
// means all main-rooted threads. originalTopic is the selection or message
// the siblings grew from.
//
// Returns (nil, nil) when there is nothing to synthesize; that case is
// silent by design of the interaction, not an error.
func (c *Controller) CreateSynthesis(sourceThreadID domain.ThreadID, originalTopic string) (*domain.Thread, error) {
	var related []*domain.Thread
	if sourceThreadID != "" {
		if _, ok := c.store.Get(sourceThreadID); !ok {
			return nil, fmt.Errorf("%w: %q", ErrParentNotFound, sourceThreadID)
		}
		related = c.store.ChildrenOf(sourceThreadID)
	} else {
		for _, t := range c.store.MainRooted() {
			if t.ActionType != domain.ActionSynthesis {
				related = append(related, t)
			}
		}
	}
	if len(related) == 0 {
		return nil, nil
	}

	prompt := buildSynthesisPrompt(originalTopic, related)
	return c.Create(CreateInput{
		Context:        prompt,
		Action:         domain.ActionSynthesis,
		SourceThreadID: sourceThreadID,
	})
}

func buildSynthesisPrompt(originalTopic string, related []*domain.Thread) string {
	var b strings.Builder
	b.WriteString("I explored several aspects of a topic in separate conversations and want them brought back together.\n\n")
	if originalTopic != "" {
		fmt.Fprintf(&b, "%s %q\n\n", originalTopicMarker, originalTopic)
	}
	b.WriteString("Explorations:\n")
	for i, t := range related {
		fmt.Fprintf(&b, "%d. %s — explored from: %q\n", i+1, t.Title, t.SelectedContext)
	}
	b.WriteString("\nPlease integrate these perspectives: identify the common themes, ")
	b.WriteString("note where they complement or tension with each other, and produce ")
	b.WriteString("a unified narrative that connects them back to the original topic.")
	return b.String()
}
