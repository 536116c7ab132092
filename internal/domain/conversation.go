package domain

// Message is a single entry in a conversation timeline (user or assistant).
// Messages are immutable once created; a conversation's list only grows,
// except for the wholesale replace that happens on session restore.
type Message struct {
	ID        MessageID `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt Timestamp `json:"created_at"`
}

// Thread is an independently-scoped side conversation created from a text
// selection in another conversation (the main one, or another thread).
type Thread struct {
	ID    ThreadID `json:"id"`
	Title string   `json:"title"`

	// SelectedContext is the exact text (or synthesized prompt) the thread
	// was created from. Immutable.
	SelectedContext string     `json:"selected_context"`
	ActionType      ActionType `json:"action_type"`
	SourceType      SourceType `json:"source_type"`

	// ParentThreadID is set iff SourceType == SourceThread. Closing the
	// parent does not clear it; the reference may dangle.
	ParentThreadID ThreadID `json:"parent_thread_id,omitempty"`

	// RowID groups threads into horizontal layout rows. Threads spawned
	// from main each open a new row; threads spawned from a thread stay in
	// the parent's row.
	RowID int `json:"row_id"`

	CreatedAt Timestamp `json:"created_at"`

	// Messages mirrors the thread's live conversation session when the
	// thread is persisted. While the session is open, the session owns the
	// authoritative list.
	Messages []*Message `json:"messages"`
}
