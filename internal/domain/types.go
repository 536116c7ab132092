package domain

import "time"

type WorkspaceID string
type SessionID string
type ThreadID string
type MessageID string
type UserID string

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ActionType is the closed category of intent behind a thread. It decides
// the thread's title prefix, its auto-sent first message, and which
// instructions the model receives.
type ActionType string

const (
	ActionAsk       ActionType = "ask"
	ActionDetails   ActionType = "details"
	ActionSimplify  ActionType = "simplify"
	ActionExamples  ActionType = "examples"
	ActionLinks     ActionType = "links"
	ActionVideos    ActionType = "videos"
	ActionSynthesis ActionType = "synthesis"
)

func (a ActionType) Valid() bool {
	switch a {
	case ActionAsk, ActionDetails, ActionSimplify, ActionExamples,
		ActionLinks, ActionVideos, ActionSynthesis:
		return true
	}
	return false
}

// SourceType says whether a thread was spawned from the main conversation
// or from inside another thread.
type SourceType string

const (
	SourceMain   SourceType = "main"
	SourceThread SourceType = "thread"
)

func (s SourceType) Valid() bool {
	return s == SourceMain || s == SourceThread
}

// MainPanel is the panel identifier of the main conversation, used wherever
// a field may hold either a thread id or the main conversation.
const MainPanel = "main"

type Timestamp = time.Time
