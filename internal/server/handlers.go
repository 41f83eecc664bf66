package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vibeframe/vibeframe/internal/session"
	"github.com/vibeframe/vibeframe/internal/storagens"
	"github.com/vibeframe/vibeframe/internal/view"
)

// registerRoutes mounts the session, chat-route and bridge endpoints.
func (s *Server) registerRoutes(r chi.Router) {
	r.Route("/api/sessions", func(r chi.Router) {
		r.Post("/", s.handleCreateSession)
		r.Get("/", s.handleListSessions)
		r.Get("/{id}", s.handleGetSession)
		r.Post("/{id}/generate", s.handleGenerate)
		r.Get("/{id}/state", s.handleState)
		r.Post("/{id}/navigate", s.handleNavigate)
		r.Post("/{id}/back", s.handleBack)
		r.Get("/{id}/code", s.handleCode)
		r.Get("/{id}/manifest", s.handleManifest)
		r.Get("/{id}/databases", s.handleListDatabases)
		r.Get("/{id}/databases/{db}/docs", s.handleListDocs)
		r.Post("/{id}/databases/{db}/docs", s.handlePutDoc)
	})

	// Session routes: an optional /app, /code or /data suffix pins a view.
	r.Get("/chat/{id}/{title}", s.handleChatRoute)
	r.Get("/chat/{id}/{title}/{suffix}", s.handleChatRoute)

	r.Get("/ws/{id}", s.handleWebSocket)
}

func (s *Server) runtimeByID(w http.ResponseWriter, r *http.Request) *Runtime {
	id := chi.URLParam(r, "id")
	sess, err := s.sessions.Get(r.Context(), id)
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return nil
	}
	if sess == nil {
		http.Error(w, `{"error":"session not found"}`, http.StatusNotFound)
		return nil
	}
	return s.runtimeFor(sess)
}

type createSessionRequest struct {
	Title  string `json:"title"`
	Prompt string `json:"prompt"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return
	}
	if req.Title == "" {
		http.Error(w, `{"error":"title is required"}`, http.StatusBadRequest)
		return
	}

	sess, err := s.sessions.Create(r.Context(), req.Title, req.Prompt)
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}
	s.runtimeFor(sess)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(sess)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.sessions.List(r.Context(), 50)
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}
	if sessions == nil {
		sessions = []session.Session{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sessions)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}
	if sess == nil {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sess)
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	rt := s.runtimeByID(w, r)
	if rt == nil {
		return
	}
	if s.client == nil {
		http.Error(w, `{"error":"generation provider not configured"}`, http.StatusServiceUnavailable)
		return
	}

	// Generation outlives the request; lifecycle flags report progress.
	go func() {
		if err := rt.Pipeline.Generate(context.Background(), rt.Session); err != nil {
			log.Printf("server: generating session %s: %v", rt.Session.ID, err)
		}
	}()

	w.WriteHeader(http.StatusAccepted)
	w.Write([]byte(`{"status":"streaming"}`))
}

// stateResponse is the host UI's single source of truth for what to show.
type stateResponse struct {
	DisplayView        view.Kind     `json:"display_view"`
	Controls           view.Controls `json:"controls"`
	Path               string        `json:"path"`
	MobilePreviewShown bool          `json:"mobile_preview_shown"`
	CodeLength         int           `json:"code_length"`
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	rt := s.runtimeByID(w, r)
	if rt == nil {
		return
	}

	snap := rt.Tracker.Current()
	st := rt.Nav.Snapshot()
	resp := stateResponse{
		DisplayView:        rt.DisplayView(),
		Controls:           view.ComputeControls(snap),
		Path:               st.CurrentPath,
		MobilePreviewShown: st.MobilePreviewShown,
		CodeLength:         snap.CodeLength,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

type navigateRequest struct {
	View view.Kind `json:"view"`
}

func (s *Server) handleNavigate(w http.ResponseWriter, r *http.Request) {
	rt := s.runtimeByID(w, r)
	if rt == nil {
		return
	}

	var req navigateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return
	}
	switch req.View {
	case view.Preview, view.Code, view.Data:
	default:
		http.Error(w, `{"error":"unknown view"}`, http.StatusBadRequest)
		return
	}

	// Rejections are silent no-ops: the state response tells the client
	// what actually happened.
	rt.Nav.NavigateToView(req.View)
	s.writeState(w, rt)
}

func (s *Server) handleBack(w http.ResponseWriter, r *http.Request) {
	rt := s.runtimeByID(w, r)
	if rt == nil {
		return
	}
	rt.Nav.HandleBack()
	s.writeState(w, rt)
}

func (s *Server) writeState(w http.ResponseWriter, rt *Runtime) {
	snap := rt.Tracker.Current()
	st := rt.Nav.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stateResponse{
		DisplayView:        rt.DisplayView(),
		Controls:           view.ComputeControls(snap),
		Path:               st.CurrentPath,
		MobilePreviewShown: st.MobilePreviewShown,
		CodeLength:         snap.CodeLength,
	})
}

func (s *Server) handleCode(w http.ResponseWriter, r *http.Request) {
	rt := s.runtimeByID(w, r)
	if rt == nil {
		return
	}
	code := rt.Pipeline.Buffer().String()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"code":   code,
		"length": len(code),
	})
}

func (s *Server) handleManifest(w http.ResponseWriter, r *http.Request) {
	rt := s.runtimeByID(w, r)
	if rt == nil {
		return
	}
	files := rt.Manifest()
	if files == nil {
		files = map[string]string{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"files": files})
}

func (s *Server) handleListDatabases(w http.ResponseWriter, r *http.Request) {
	rt := s.runtimeByID(w, r)
	if rt == nil {
		return
	}

	prefix := storagens.AppPrefix + storagens.Marker + rt.Session.ID + "-"
	names, err := s.docs.ListDatabases(r.Context(), prefix)
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}
	if names == nil {
		names = []string{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(names)
}

func (s *Server) handleListDocs(w http.ResponseWriter, r *http.Request) {
	rt := s.runtimeByID(w, r)
	if rt == nil {
		return
	}

	database, err := rt.OpenDatabase(chi.URLParam(r, "db"))
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusBadRequest)
		return
	}
	docs, err := database.List(r.Context())
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"database":  database.Name(),
		"documents": docs,
	})
}

type putDocRequest struct {
	ID   string          `json:"_id"`
	Body json.RawMessage `json:"body"`
}

func (s *Server) handlePutDoc(w http.ResponseWriter, r *http.Request) {
	rt := s.runtimeByID(w, r)
	if rt == nil {
		return
	}

	var req putDocRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return
	}

	database, err := rt.OpenDatabase(chi.URLParam(r, "db"))
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusBadRequest)
		return
	}
	id, err := database.Put(r.Context(), req.ID, req.Body)
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"_id":      id,
		"database": database.Name(),
	})
}

// handleChatRoute records the client's current route and returns the
// state for it. The suffix is optional: its absence reads as Preview for
// display but still counts as "no explicit view" for auto-navigation.
func (s *Server) handleChatRoute(w http.ResponseWriter, r *http.Request) {
	if suffix := chi.URLParam(r, "suffix"); suffix != "" {
		switch suffix {
		case "app", "code", "data":
		default:
			http.Error(w, `{"error":"unknown view"}`, http.StatusNotFound)
			return
		}
	}

	rt := s.runtimeByID(w, r)
	if rt == nil {
		return
	}

	rt.Nav.SetCurrentPath(r.URL.Path)
	s.writeState(w, rt)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	rt := s.runtimeByID(w, r)
	if rt == nil {
		return
	}
	rt.Bridge.Handle(w, r)
}
