package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"braid/internal/app/archive"
	"braid/internal/app/layout"
	"braid/internal/app/workspace"
	"braid/internal/domain"
	"braid/internal/observability"
)

type Server struct {
	workspaces *workspace.Manager
	archive    *archive.Service
}

func NewServer(workspaces *workspace.Manager, archiveSvc *archive.Service) http.Handler {
	s := &Server{workspaces: workspaces, archive: archiveSvc}
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", s.handleHealthz)

	// /workspaces            → POST: open a workspace
	// /workspaces/{id}/...   → everything on one open workspace
	mux.HandleFunc("/workspaces", s.handleWorkspaces)
	mux.HandleFunc("/workspaces/", s.handleWorkspaceWithID)

	// /sessions              → GET: list saved sessions
	// /sessions/{id}         → GET / DELETE
	// /sessions/{id}/share   → POST: mint a public fork
	mux.HandleFunc("/sessions", s.handleSessions)
	mux.HandleFunc("/sessions/", s.handleSessionWithID)

	// /shared/{id}           → GET: read a public fork
	mux.HandleFunc("/shared/", s.handleShared)

	return chainMiddlewares(mux, withIdentity, withCORS, withLogging, withRequestID)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ─────────────────────────────────────────────
// DTOs (request/response)
// ─────────────────────────────────────────────

type openWorkspaceRequest struct {
	Model string `json:"model,omitempty"`
}

type messageResponse struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type threadResponse struct {
	ID              string            `json:"id"`
	Title           string            `json:"title"`
	SelectedContext string            `json:"selected_context"`
	ActionType      string            `json:"action_type"`
	SourceType      string            `json:"source_type"`
	ParentThreadID  string            `json:"parent_thread_id,omitempty"`
	RowID           int               `json:"row_id"`
	CreatedAt       time.Time         `json:"created_at"`
	Messages        []messageResponse `json:"messages"`
}

type workspaceResponse struct {
	ID             string             `json:"id"`
	Model          string             `json:"model"`
	MainMessages   []messageResponse  `json:"main_messages"`
	Threads        []threadResponse   `json:"threads"`
	ActiveThreadID string             `json:"active_thread_id,omitempty"`
	Layout         layout.Layout      `json:"layout"`
	LayoutState    domain.LayoutState `json:"layout_state"`
}

type createThreadRequest struct {
	Context        string `json:"context"`
	ActionType     string `json:"action_type"`
	SourceThreadID string `json:"source_thread_id,omitempty"`
}

type synthesisRequest struct {
	SourceThreadID string `json:"source_thread_id,omitempty"`
	OriginalTopic  string `json:"original_topic,omitempty"`
}

type sendMessageRequest struct {
	Text string `json:"text"`
}

type layoutOpRequest struct {
	// Op is one of: expand, set_width, clear_width, collapse_row,
	// fullscreen, toggle_context, show_all_contexts.
	Op       string `json:"op"`
	Panel    string `json:"panel,omitempty"`
	ThreadID string `json:"thread_id,omitempty"`
	Row      int    `json:"row,omitempty"`
	Percent  int    `json:"percent,omitempty"`
	Show     bool   `json:"show,omitempty"`
}

type setModelRequest struct {
	Model string `json:"model"`
}

type loadRequest struct {
	SessionID string `json:"session_id"`
	Shared    bool   `json:"shared,omitempty"`
}

type sessionSummary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Model     string    `json:"model"`
	Threads   int       `json:"threads"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ─────────────────────────────────────────────
// Basic routing
// ─────────────────────────────────────────────

func (s *Server) handleWorkspaces(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleOpenWorkspace(w, r)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleWorkspaceWithID(w http.ResponseWriter, r *http.Request) {
	parts := splitPath(strings.TrimPrefix(r.URL.Path, "/workspaces/"))
	if len(parts) == 0 {
		http.NotFound(w, r)
		return
	}

	ws, err := s.workspaces.Get(domain.WorkspaceID(parts[0]))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	switch {
	case len(parts) == 1:
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, s.toWorkspaceResponse(ws))
		case http.MethodDelete:
			s.workspaces.Close(ws.ID)
			w.WriteHeader(http.StatusNoContent)
		default:
			methodNotAllowed(w)
		}

	case len(parts) == 2 && parts[1] == "messages":
		requirePost(w, r, func() { s.handleSendMain(w, r, ws) })

	case len(parts) == 2 && parts[1] == "stop":
		requirePost(w, r, func() {
			ws.Main().Stop()
			w.WriteHeader(http.StatusNoContent)
		})

	case len(parts) == 2 && parts[1] == "threads":
		requirePost(w, r, func() { s.handleCreateThread(w, r, ws) })

	case len(parts) == 2 && parts[1] == "synthesis":
		requirePost(w, r, func() { s.handleSynthesis(w, r, ws) })

	case len(parts) == 2 && parts[1] == "layout":
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, ws.Layout())
		case http.MethodPost:
			s.handleLayoutOp(w, r, ws)
		default:
			methodNotAllowed(w)
		}

	case len(parts) == 2 && parts[1] == "model":
		requirePost(w, r, func() { s.handleSetModel(w, r, ws) })

	case len(parts) == 2 && parts[1] == "save":
		requirePost(w, r, func() { s.handleSave(w, r, ws) })

	case len(parts) == 2 && parts[1] == "load":
		requirePost(w, r, func() { s.handleLoad(w, r, ws) })

	case len(parts) >= 3 && parts[1] == "threads":
		s.routeThread(w, r, ws, parts[2:])

	default:
		http.NotFound(w, r)
	}
}

func (s *Server) routeThread(w http.ResponseWriter, r *http.Request, ws *workspace.Workspace, parts []string) {
	threadID := domain.ThreadID(parts[0])
	if _, ok := ws.Thread(threadID); !ok {
		http.NotFound(w, r)
		return
	}

	switch {
	case len(parts) == 1 && r.Method == http.MethodDelete:
		ws.CloseThread(threadID)
		w.WriteHeader(http.StatusNoContent)

	case len(parts) == 2 && parts[1] == "mount":
		requirePost(w, r, func() { s.handleMountThread(w, r, ws, threadID) })

	case len(parts) == 2 && parts[1] == "messages":
		requirePost(w, r, func() { s.handleSendThread(w, r, ws, threadID) })

	case len(parts) == 2 && parts[1] == "stop":
		requirePost(w, r, func() {
			if conv, ok := ws.SessionOf(threadID); ok {
				conv.Stop()
			}
			w.WriteHeader(http.StatusNoContent)
		})

	default:
		http.NotFound(w, r)
	}
}

// ─────────────────────────────────────────────
// Response converters
// ─────────────────────────────────────────────

func (s *Server) toWorkspaceResponse(ws *workspace.Workspace) workspaceResponse {
	threads := ws.Threads()
	out := workspaceResponse{
		ID:             string(ws.ID),
		Model:          ws.Model(),
		MainMessages:   toMessagesResponse(ws.Main().Messages()),
		Threads:        make([]threadResponse, 0, len(threads)),
		ActiveThreadID: string(ws.ActiveThread()),
		Layout:         ws.Layout(),
		LayoutState:    ws.LayoutState(),
	}
	for _, t := range threads {
		msgs := t.Messages
		if conv, ok := ws.SessionOf(t.ID); ok {
			msgs = conv.Messages()
		}
		out.Threads = append(out.Threads, toThreadResponse(t, msgs))
	}
	return out
}

func toThreadResponse(t *domain.Thread, msgs []*domain.Message) threadResponse {
	return threadResponse{
		ID:              string(t.ID),
		Title:           t.Title,
		SelectedContext: t.SelectedContext,
		ActionType:      string(t.ActionType),
		SourceType:      string(t.SourceType),
		ParentThreadID:  string(t.ParentThreadID),
		RowID:           t.RowID,
		CreatedAt:       t.CreatedAt,
		Messages:        toMessagesResponse(msgs),
	}
}

func toMessageResponse(m *domain.Message) messageResponse {
	return messageResponse{
		ID:        string(m.ID),
		Role:      string(m.Role),
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
	}
}

func toMessagesResponse(msgs []*domain.Message) []messageResponse {
	out := make([]messageResponse, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, toMessageResponse(m))
	}
	return out
}

// ─────────────────────────────────────────────
// HTTP helpers
// ─────────────────────────────────────────────

func splitPath(path string) []string {
	var parts []string
	for _, p := range strings.Split(path, "/") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

func requirePost(w http.ResponseWriter, r *http.Request, fn func()) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	fn()
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		badRequest(w, "invalid JSON body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
}

func internalError(w http.ResponseWriter, r *http.Request, err error) {
	observability.LoggerFromContext(r.Context()).Error("request failed",
		"method", r.Method, "path", r.URL.Path, "error", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{
		"error": "internal server error",
	})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, map[string]string{
		"error": "method not allowed",
	})
}
