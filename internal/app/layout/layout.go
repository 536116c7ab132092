package layout

import (
	"sort"

	"braid/internal/domain"
)

// Width splits, in percent of the viewport. The main/thread split when
// nothing is expanded or dragged is one product decision encoded here once.
const (
	MinMainPercent = 20
	MaxMainPercent = 80

	// DefaultMainPercent applies as soon as any thread exists and no
	// expansion or manual override is active.
	DefaultMainPercent = 20

	// ExpandedMainPercent applies when the main conversation is expanded.
	ExpandedMainPercent = 75

	// ShrunkMainPercent applies when a specific thread is expanded.
	ShrunkMainPercent = 20
)

// Row is one horizontal group of thread panels.
type Row struct {
	Index     int               `json:"index"`
	Collapsed bool              `json:"collapsed"`
	ThreadIDs []domain.ThreadID `json:"thread_ids"`

	// FlexThreadID is the panel in this row taking the flexible remaining
	// space; empty when the row divides space evenly.
	FlexThreadID domain.ThreadID `json:"flex_thread_id,omitempty"`
}

// Layout is the computed panel geometry for one workspace.
type Layout struct {
	MainPercent   int   `json:"main_percent"`
	ThreadPercent int   `json:"thread_percent"`
	Fullscreen    bool  `json:"fullscreen"`
	Rows          []Row `json:"rows"`
}

// Compute maps the thread set and UI state to panel widths and row
// grouping. Pure: no side effects, no hidden inputs.
func Compute(threads []*domain.Thread, st domain.LayoutState) Layout {
	if len(threads) == 0 {
		return Layout{MainPercent: 100, ThreadPercent: 0}
	}

	main := splitFor(st)
	out := Layout{MainPercent: main, ThreadPercent: 100 - main}

	// Fullscreen overlays whatever split already holds: the split above is
	// kept, and the thread area narrows to just the fullscreen thread.
	if st.FullscreenThread != "" {
		for _, t := range threads {
			if t.ID == st.FullscreenThread {
				out.Fullscreen = true
				out.Rows = []Row{{
					Index:        t.RowID,
					ThreadIDs:    []domain.ThreadID{t.ID},
					FlexThreadID: t.ID,
				}}
				return out
			}
		}
	}

	out.Rows = groupRows(threads, st)
	return out
}

func splitFor(st domain.LayoutState) int {
	switch {
	case st.ManualMainPercent != 0 && st.ExpandedPanel == "":
		return ClampMainPercent(st.ManualMainPercent)
	case st.ExpandedPanel == domain.MainPanel:
		return ExpandedMainPercent
	case st.ExpandedPanel != "":
		return ShrunkMainPercent
	default:
		return DefaultMainPercent
	}
}

// ClampMainPercent bounds a manual drag value to the allowed split range.
func ClampMainPercent(pct int) int {
	if pct < MinMainPercent {
		return MinMainPercent
	}
	if pct > MaxMainPercent {
		return MaxMainPercent
	}
	return pct
}

// groupRows partitions threads by row id, ascending, dropping empty rows.
// Within a visible row the expanded thread (if it lives there) takes the
// flexible remaining space.
func groupRows(threads []*domain.Thread, st domain.LayoutState) []Row {
	byRow := make(map[int][]domain.ThreadID)
	for _, t := range threads {
		byRow[t.RowID] = append(byRow[t.RowID], t.ID)
	}

	indices := make([]int, 0, len(byRow))
	for idx := range byRow {
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	rows := make([]Row, 0, len(indices))
	for _, idx := range indices {
		row := Row{
			Index:     idx,
			Collapsed: st.CollapsedRows[idx],
			ThreadIDs: byRow[idx],
		}
		if !row.Collapsed && st.ExpandedPanel != "" && st.ExpandedPanel != domain.MainPanel {
			for _, id := range row.ThreadIDs {
				if string(id) == st.ExpandedPanel {
					row.FlexThreadID = id
					break
				}
			}
		}
		rows = append(rows, row)
	}
	return rows
}
