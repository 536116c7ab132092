package threads

import (
	"strings"

	"braid/internal/domain"
)

// Synthesized prompts embed the original selection in quotes after a known
// marker phrase. Title derivation strips the boilerplate back off so the
// tab shows the selection, not the prompt.
var promptMarkers = []string{
	"explain this in the simplest terms",
	"provide 3-5 concrete",
	"provide more details about",
	"provide relevant links and resources related to",
	"suggest relevant youtube videos",
}

const originalTopicMarker = "Original Topic:"

const (
	titleSentenceMax = 50
	titleSnippetMax  = 60
)

func titlePrefix(action domain.ActionType) string {
	switch action {
	case domain.ActionAsk:
		return "Ask about this: "
	case domain.ActionDetails:
		return "🔍 Details: "
	case domain.ActionSimplify:
		return "🎯 Simplify: "
	case domain.ActionExamples:
		return "📝 Examples: "
	case domain.ActionSynthesis:
		return "🔗 Synthesis: "
	default:
		// links and videos threads are titled by their selection alone.
		return ""
	}
}

// deriveTitle builds the human-readable thread label from the creation
// context.
func deriveTitle(context string, action domain.ActionType) string {
	topic := extractTopic(context, action)
	return titlePrefix(action) + topic
}

func extractTopic(context string, action domain.ActionType) string {
	if action == domain.ActionSynthesis {
		if topic, ok := afterMarker(context, originalTopicMarker); ok {
			return snippet(topic, titleSnippetMax)
		}
	}

	lower := strings.ToLower(context)
	for _, marker := range promptMarkers {
		if strings.Contains(lower, marker) {
			if quoted, ok := firstQuoted(context); ok {
				return snippet(quoted, titleSnippetMax)
			}
		}
	}

	if sentence, ok := firstSentence(context); ok && len([]rune(sentence)) <= titleSentenceMax {
		return sentence
	}
	return snippet(context, titleSnippetMax)
}

// afterMarker returns the remainder of the first line following marker.
func afterMarker(s, marker string) (string, bool) {
	idx := strings.Index(s, marker)
	if idx < 0 {
		return "", false
	}
	rest := s[idx+len(marker):]
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		rest = rest[:nl]
	}
	rest = strings.Trim(strings.TrimSpace(rest), `"`)
	if rest == "" {
		return "", false
	}
	return rest, true
}

func firstQuoted(s string) (string, bool) {
	open := strings.IndexByte(s, '"')
	if open < 0 {
		return "", false
	}
	close := strings.IndexByte(s[open+1:], '"')
	if close < 0 {
		return "", false
	}
	quoted := strings.TrimSpace(s[open+1 : open+1+close])
	if quoted == "" {
		return "", false
	}
	return quoted, true
}

func firstSentence(s string) (string, bool) {
	s = strings.TrimSpace(s)
	for i, r := range s {
		if r == '.' || r == '!' || r == '?' {
			sentence := strings.TrimSpace(s[:i])
			if sentence == "" {
				return "", false
			}
			return sentence, true
		}
	}
	if s == "" {
		return "", false
	}
	return s, true
}

// snippet truncates on a rune boundary and ellipsizes.
func snippet(s string, max int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return strings.TrimSpace(string(runes[:max])) + "…"
}
