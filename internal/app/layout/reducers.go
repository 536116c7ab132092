package layout

import "braid/internal/domain"

// Reducers transform one LayoutState value into the next. Inputs are never
// mutated; callers swap the returned value in atomically.

// ToggleExpand expands the given panel (a thread id or domain.MainPanel),
// or collapses it when it is already expanded. Expanding clears any manual
// width override.
func ToggleExpand(st domain.LayoutState, panel string) domain.LayoutState {
	next := clone(st)
	if st.ExpandedPanel == panel {
		next.ExpandedPanel = ""
		return next
	}
	next.ExpandedPanel = panel
	next.ManualMainPercent = 0
	return next
}

// SetManualWidth commits a drag of the main/thread divider. Only the
// committed value is kept; intermediate drag positions are the caller's
// concern.
func SetManualWidth(st domain.LayoutState, pct int) domain.LayoutState {
	next := clone(st)
	next.ManualMainPercent = ClampMainPercent(pct)
	return next
}

// ClearManualWidth removes the drag override.
func ClearManualWidth(st domain.LayoutState) domain.LayoutState {
	next := clone(st)
	next.ManualMainPercent = 0
	return next
}

// ToggleRowCollapse collapses a row to its summary strip, or restores it.
func ToggleRowCollapse(st domain.LayoutState, row int) domain.LayoutState {
	next := clone(st)
	if next.CollapsedRows == nil {
		next.CollapsedRows = make(map[int]bool)
	}
	if next.CollapsedRows[row] {
		delete(next.CollapsedRows, row)
	} else {
		next.CollapsedRows[row] = true
	}
	return next
}

// ToggleFullscreen puts a thread into fullscreen, or leaves fullscreen when
// that thread already holds it.
func ToggleFullscreen(st domain.LayoutState, id domain.ThreadID) domain.LayoutState {
	next := clone(st)
	if next.FullscreenThread == id {
		next.FullscreenThread = ""
	} else {
		next.FullscreenThread = id
	}
	return next
}

// ToggleContext hides or shows one thread's selected-context excerpt.
func ToggleContext(st domain.LayoutState, id domain.ThreadID) domain.LayoutState {
	next := clone(st)
	if next.CollapsedContexts == nil {
		next.CollapsedContexts = make(map[domain.ThreadID]bool)
	}
	if next.CollapsedContexts[id] {
		delete(next.CollapsedContexts, id)
	} else {
		next.CollapsedContexts[id] = true
	}
	return next
}

// SetShowAllContexts flips the global context visibility and drops any
// per-thread overrides so the global switch wins.
func SetShowAllContexts(st domain.LayoutState, show bool) domain.LayoutState {
	next := clone(st)
	next.ShowAllContexts = show
	next.CollapsedContexts = nil
	return next
}

// DropThread clears any UI pointers referencing a thread that was closed.
func DropThread(st domain.LayoutState, id domain.ThreadID) domain.LayoutState {
	next := clone(st)
	if next.ExpandedPanel == string(id) {
		next.ExpandedPanel = ""
	}
	if next.FullscreenThread == id {
		next.FullscreenThread = ""
	}
	delete(next.CollapsedContexts, id)
	return next
}

func clone(st domain.LayoutState) domain.LayoutState {
	next := st
	if st.CollapsedRows != nil {
		next.CollapsedRows = make(map[int]bool, len(st.CollapsedRows))
		for k, v := range st.CollapsedRows {
			next.CollapsedRows[k] = v
		}
	}
	if st.CollapsedContexts != nil {
		next.CollapsedContexts = make(map[domain.ThreadID]bool, len(st.CollapsedContexts))
		for k, v := range st.CollapsedContexts {
			next.CollapsedContexts[k] = v
		}
	}
	return next
}
