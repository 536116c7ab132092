package httpadapter

import (
	"errors"
	"net/http"
	"strings"

	"braid/internal/app/layout"
	"braid/internal/app/session"
	"braid/internal/app/threads"
	"braid/internal/app/workspace"
	"braid/internal/domain"
)

func (s *Server) handleOpenWorkspace(w http.ResponseWriter, r *http.Request) {
	var req openWorkspaceRequest
	if r.ContentLength != 0 && !decodeBody(w, r, &req) {
		return
	}

	ws := s.workspaces.Open(currentUser(r), req.Model)
	writeJSON(w, http.StatusCreated, s.toWorkspaceResponse(ws))
}

func (s *Server) handleCreateThread(w http.ResponseWriter, r *http.Request, ws *workspace.Workspace) {
	var req createThreadRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Context) == "" {
		badRequest(w, "context is required")
		return
	}

	t, err := ws.CreateThread(threads.CreateInput{
		Context:        req.Context,
		Action:         domain.ActionType(req.ActionType),
		SourceThreadID: domain.ThreadID(req.SourceThreadID),
	})
	if err != nil {
		switch {
		case errors.Is(err, threads.ErrUnknownAction), errors.Is(err, threads.ErrEmptyContext):
			badRequest(w, err.Error())
		case errors.Is(err, threads.ErrParentNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		default:
			internalError(w, r, err)
		}
		return
	}

	writeJSON(w, http.StatusCreated, toThreadResponse(t, nil))
}

func (s *Server) handleSynthesis(w http.ResponseWriter, r *http.Request, ws *workspace.Workspace) {
	var req synthesisRequest
	if r.ContentLength != 0 && !decodeBody(w, r, &req) {
		return
	}

	t, err := ws.CreateSynthesis(domain.ThreadID(req.SourceThreadID), req.OriginalTopic)
	if err != nil {
		if errors.Is(err, threads.ErrParentNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
			return
		}
		internalError(w, r, err)
		return
	}
	if t == nil {
		// Nothing to synthesize. Silent no-op.
		w.WriteHeader(http.StatusNoContent)
		return
	}

	writeJSON(w, http.StatusCreated, toThreadResponse(t, nil))
}

// handleMountThread is the panel-mount handshake: it returns the thread's
// session and, when a first message was scheduled at creation, streams that
// exchange. Mounting again is a no-op stream, so a remounting panel can
// never replay the auto-send.
func (s *Server) handleMountThread(w http.ResponseWriter, r *http.Request, ws *workspace.Workspace, id domain.ThreadID) {
	conv, autoText, err := ws.MountThread(id)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if autoText == "" {
		writeJSON(w, http.StatusOK, map[string]any{
			"messages": toMessagesResponse(conv.Messages()),
		})
		return
	}
	s.streamTurn(w, r, conv, autoText)
}

func (s *Server) handleSendMain(w http.ResponseWriter, r *http.Request, ws *workspace.Workspace) {
	var req sendMessageRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		badRequest(w, "text is required")
		return
	}
	s.streamTurn(w, r, ws.Main(), req.Text)
}

func (s *Server) handleSendThread(w http.ResponseWriter, r *http.Request, ws *workspace.Workspace, id domain.ThreadID) {
	var req sendMessageRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		badRequest(w, "text is required")
		return
	}

	// Sending into an unmounted thread mounts it first; any pending
	// auto-send goes ahead of the user's text.
	conv, autoText, err := ws.MountThread(id)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if autoText != "" {
		if _, err := conv.Send(r.Context(), autoText, nil); err != nil {
			internalError(w, r, err)
			return
		}
	}
	s.streamTurn(w, r, conv, req.Text)
}

// streamTurn runs one conversation turn and frames it as SSE. A backend
// failure after the stream opened can only be reported in-band.
func (s *Server) streamTurn(w http.ResponseWriter, r *http.Request, conv *session.Conversation, text string) {
	sse, err := newSSEWriter(w)
	if err != nil {
		internalError(w, r, err)
		return
	}

	reply, err := conv.Send(r.Context(), text, sse.delta)
	if err != nil {
		if errors.Is(err, session.ErrBusy) {
			sse.fail("a turn is already in flight")
			return
		}
		sse.fail(err.Error())
		return
	}
	if reply == nil {
		// Cancelled before any content arrived; nothing to report.
		sse.done(nil)
		return
	}
	sse.done(toMessageResponse(reply))
}

func (s *Server) handleLayoutOp(w http.ResponseWriter, r *http.Request, ws *workspace.Workspace) {
	var req layoutOpRequest
	if !decodeBody(w, r, &req) {
		return
	}

	var fn func(domain.LayoutState) domain.LayoutState
	switch req.Op {
	case "expand":
		fn = func(st domain.LayoutState) domain.LayoutState {
			return layout.ToggleExpand(st, req.Panel)
		}
	case "set_width":
		fn = func(st domain.LayoutState) domain.LayoutState {
			return layout.SetManualWidth(st, req.Percent)
		}
	case "clear_width":
		fn = layout.ClearManualWidth
	case "collapse_row":
		fn = func(st domain.LayoutState) domain.LayoutState {
			return layout.ToggleRowCollapse(st, req.Row)
		}
	case "fullscreen":
		fn = func(st domain.LayoutState) domain.LayoutState {
			return layout.ToggleFullscreen(st, domain.ThreadID(req.ThreadID))
		}
	case "toggle_context":
		fn = func(st domain.LayoutState) domain.LayoutState {
			return layout.ToggleContext(st, domain.ThreadID(req.ThreadID))
		}
	case "show_all_contexts":
		fn = func(st domain.LayoutState) domain.LayoutState {
			return layout.SetShowAllContexts(st, req.Show)
		}
	default:
		badRequest(w, "unknown layout op")
		return
	}

	ws.ApplyLayout(fn)
	writeJSON(w, http.StatusOK, ws.Layout())
}

func (s *Server) handleSetModel(w http.ResponseWriter, r *http.Request, ws *workspace.Workspace) {
	var req setModelRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Model) == "" {
		badRequest(w, "model is required")
		return
	}
	ws.SetModel(req.Model)
	w.WriteHeader(http.StatusNoContent)
}
