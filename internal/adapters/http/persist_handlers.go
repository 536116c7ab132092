package httpadapter

import (
	"errors"
	"net/http"
	"strings"

	"braid/internal/app/archive"
	"braid/internal/app/workspace"
	"braid/internal/domain"
)

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request, ws *workspace.Workspace) {
	snap := ws.Snapshot()
	snap.ID = ws.SavedAs()

	id, err := s.archive.Save(r.Context(), currentUser(r), snap)
	if err != nil {
		if errors.Is(err, archive.ErrAuthRequired) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": err.Error()})
			return
		}
		internalError(w, r, err)
		return
	}

	ws.MarkSaved(id)
	writeJSON(w, http.StatusOK, map[string]string{"session_id": string(id)})
}

func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request, ws *workspace.Workspace) {
	var req loadRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.SessionID == "" {
		badRequest(w, "session_id is required")
		return
	}

	var (
		snap *domain.Snapshot
		err  error
	)
	if req.Shared {
		snap, err = s.archive.LoadShared(r.Context(), domain.SessionID(req.SessionID))
	} else {
		snap, err = s.archive.Load(r.Context(), domain.SessionID(req.SessionID))
	}
	if err != nil {
		if errors.Is(err, domain.ErrSnapshotNotFound) {
			http.NotFound(w, r)
			return
		}
		internalError(w, r, err)
		return
	}

	if err := ws.Restore(snap); err != nil {
		badRequest(w, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.toWorkspaceResponse(ws))
}

func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	snaps, err := s.archive.List(r.Context(), currentUser(r), 0)
	if err != nil {
		internalError(w, r, err)
		return
	}

	out := make([]sessionSummary, 0, len(snaps))
	for _, snap := range snaps {
		out = append(out, sessionSummary{
			ID:        string(snap.ID),
			Title:     snap.Title,
			Model:     snap.SelectedModel,
			Threads:   len(snap.Threads),
			UpdatedAt: snap.UpdatedAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSessionWithID(w http.ResponseWriter, r *http.Request) {
	parts := splitPath(strings.TrimPrefix(r.URL.Path, "/sessions/"))
	if len(parts) == 0 {
		http.NotFound(w, r)
		return
	}
	id := domain.SessionID(parts[0])

	switch {
	case len(parts) == 1 && r.Method == http.MethodGet:
		snap, err := s.archive.Load(r.Context(), id)
		if err != nil {
			s.writeLoadError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, snap)

	case len(parts) == 1 && r.Method == http.MethodDelete:
		existed, err := s.archive.Delete(r.Context(), id)
		if err != nil {
			internalError(w, r, err)
			return
		}
		if !existed {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	case len(parts) == 2 && parts[1] == "share" && r.Method == http.MethodPost:
		url, err := s.archive.Share(r.Context(), currentUser(r), id)
		if err != nil {
			switch {
			case errors.Is(err, archive.ErrAuthRequired):
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": err.Error()})
			case errors.Is(err, domain.ErrSnapshotNotFound):
				http.NotFound(w, r)
			default:
				internalError(w, r, err)
			}
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"share_url": url})

	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleShared(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	parts := splitPath(strings.TrimPrefix(r.URL.Path, "/shared/"))
	if len(parts) != 1 {
		http.NotFound(w, r)
		return
	}

	snap, err := s.archive.LoadShared(r.Context(), domain.SessionID(parts[0]))
	if err != nil {
		s.writeLoadError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) writeLoadError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, domain.ErrSnapshotNotFound) {
		http.NotFound(w, r)
		return
	}
	internalError(w, r, err)
}
