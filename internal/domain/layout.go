package domain

// LayoutState is the ephemeral UI state of an open workspace. It is one
// immutable value transformed by the reducers in internal/app/layout, so
// layout computation stays a pure function of a single input.
type LayoutState struct {
	// ExpandedPanel holds the panel currently granted the dominant width
	// share: a thread id, MainPanel, or empty for none.
	ExpandedPanel string `json:"expanded_panel,omitempty"`

	// FullscreenThread, when set, overrides row/width computation to show
	// only that thread.
	FullscreenThread ThreadID `json:"fullscreen_thread,omitempty"`

	CollapsedRows     map[int]bool      `json:"collapsed_rows,omitempty"`
	CollapsedContexts map[ThreadID]bool `json:"collapsed_contexts,omitempty"`
	ShowAllContexts   bool              `json:"show_all_contexts,omitempty"`

	// ManualMainPercent is the user-dragged override of the main/thread
	// split, in percent. Zero means no override. Cleared whenever a panel
	// is expanded.
	ManualMainPercent int `json:"manual_main_percent,omitempty"`
}

// DefaultLayoutState is what an older snapshot without UI state loads with:
// main expanded, nothing collapsed, no manual width.
func DefaultLayoutState() LayoutState {
	return LayoutState{ExpandedPanel: MainPanel}
}
