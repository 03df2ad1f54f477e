package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/c360studio/semfibo/dispatch"
	"github.com/c360studio/semfibo/ontology"
	"github.com/c360studio/semfibo/planner"
	"github.com/c360studio/semfibo/query"
)

// AskRequest is the body of POST /api/ask.
type AskRequest struct {
	Question string `json:"question"`
}

// QueryRequest is the body of POST /api/query.
type QueryRequest struct {
	Function  string            `json:"function"`
	Arguments planner.Arguments `json:"arguments"`
}

// ModuleSetInfo describes one module set in GET /api/modules.
type ModuleSetInfo struct {
	ontology.ModuleSet
	Active bool `json:"active"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("Failed to encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, errorResponse{Error: msg})
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	return dec.Decode(v)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	g := s.store.Graph()
	if g == nil {
		s.writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "loading"})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":     "healthy",
		"module_set": s.store.Current().Name,
		"classes":    g.Stats().Classes,
	})
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		s.writeError(w, http.StatusBadRequest, "question is required")
		return
	}
	s.writeJSON(w, http.StatusOK, s.agent.Answer(r.Context(), req.Question))
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Function == "" {
		s.writeError(w, http.StatusBadRequest, "function is required")
		return
	}
	res := s.dispatcher.Execute(r.Context(), planner.Plan{Function: req.Function, Arguments: req.Arguments})
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleTools(w http.ResponseWriter, _ *http.Request) {
	type tool struct {
		Name        string   `json:"name"`
		Params      []string `json:"params"`
		Required    int      `json:"required"`
		Description string   `json:"description"`
	}
	var out []tool
	for _, t := range dispatch.Tools() {
		out = append(out, tool{Name: t.Name, Params: t.Params, Required: t.Required, Description: t.Description})
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"tools": out})
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	g := s.store.Graph()
	if g == nil {
		s.writeError(w, http.StatusServiceUnavailable, "no ontology loaded")
		return
	}
	set := s.store.Current()
	s.writeJSON(w, http.StatusOK, map[string]any{
		"module_set": set,
		"stats":      g.Stats(),
		"modules":    g.Modules(),
	})
}

// handleClasses lists class names, or searches them when q is given.
func (s *Server) handleClasses(w http.ResponseWriter, r *http.Request) {
	g := s.store.Graph()
	if g == nil {
		s.writeError(w, http.StatusServiceUnavailable, "no ontology loaded")
		return
	}

	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		type match struct {
			Class string `json:"class"`
			IRI   string `json:"iri"`
			Type  string `json:"type"`
			Text  string `json:"text"`
		}
		matches := []match{}
		for _, m := range query.New(g).Search(q) {
			matches = append(matches, match{Class: m.Class, IRI: m.IRI, Type: m.Type, Text: m.Text})
		}
		s.writeJSON(w, http.StatusOK, map[string]any{"query": q, "matches": matches, "total": len(matches)})
		return
	}

	names := g.ClassNames()
	s.writeJSON(w, http.StatusOK, map[string]any{"classes": names, "total": len(names)})
}

func (s *Server) handleClass(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	res := s.dispatcher.Execute(r.Context(), planner.Plan{Function: "get_class_info", Arguments: []string{name}})

	status := http.StatusOK
	switch res.Status {
	case dispatch.StatusNotFound:
		status = http.StatusNotFound
	case dispatch.StatusAmbiguous:
		status = http.StatusConflict
	case dispatch.StatusUnavailable:
		status = http.StatusServiceUnavailable
	}
	s.writeJSON(w, status, res)
}

func (s *Server) handleModules(w http.ResponseWriter, _ *http.Request) {
	current := s.store.Current().Name
	sets := []ModuleSetInfo{}
	for _, set := range s.store.Sets() {
		sets = append(sets, ModuleSetInfo{ModuleSet: set, Active: set.Name == current})
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"current": current, "sets": sets})
}

func (s *Server) handleSwitch(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	msg, err := s.store.Switch(r.Context(), name)
	switch {
	case errors.Is(err, ontology.ErrUnknownModuleSet):
		s.writeError(w, http.StatusNotFound, err.Error())
	case err != nil:
		s.logger.Warn("Module set switch failed", "set", name, "error", err)
		s.writeError(w, http.StatusInternalServerError, err.Error())
	default:
		s.writeJSON(w, http.StatusOK, map[string]any{
			"message":    msg,
			"module_set": s.store.Current().Name,
			"stats":      s.store.Graph().Stats(),
		})
	}
}
