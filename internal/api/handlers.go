package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vovakirdan/tetrlang/internal/engine"
	"github.com/vovakirdan/tetrlang/internal/render"
	"github.com/vovakirdan/tetrlang/internal/storage"
	"github.com/vovakirdan/tetrlang/internal/tetrlang"
)

// Error codes of non-compile failures.
const (
	CodeBadRequest    = "BAD_REQUEST"
	CodeLimitExceeded = "LIMIT_EXCEEDED"
	CodeNotFound      = "NOT_FOUND"
	CodeNoStorage     = "NO_STORAGE"
	CodeInternal      = "INTERNAL"
)

type programRequest struct {
	Program string `json:"program"`
	Frames  bool   `json:"frames,omitempty"`
}

type errorBody struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Position *int   `json:"position,omitempty"`
	Char     string `json:"char,omitempty"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

type frameView struct {
	Index   int        `json:"index"`
	Tag     engine.Tag `json:"tag"`
	DelayMS int64      `json:"delay_ms"`
	Text    string     `json:"text"`
}

type simulateResponse struct {
	RunID   int64              `json:"run_id,omitempty"`
	Outcome engine.Outcome     `json:"outcome"`
	Reason  string             `json:"reason,omitempty"`
	Summary engine.Summary     `json:"summary"`
	States  []engine.StateView `json:"states"`
	Frames  []frameView        `json:"frames,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // client went away
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: errorBody{Code: code, Message: message}})
}

// writeProgramError reports a program the server refused to run.
func (s *Server) writeProgramError(w http.ResponseWriter, err error) {
	var cerr *tetrlang.Error
	switch {
	case errors.As(err, &cerr):
		s.metrics.CompileErrors.WithLabelValues(string(cerr.Code)).Inc()
		body := errorBody{Code: string(cerr.Code), Message: cerr.Message}
		if cerr.Pos >= 0 {
			body.Position = &cerr.Pos
			body.Char = string(cerr.Char)
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: body})
	case errors.Is(err, engine.ErrLimitExceeded):
		s.metrics.CompileErrors.WithLabelValues(CodeLimitExceeded).Inc()
		writeError(w, http.StatusBadRequest, CodeLimitExceeded, err.Error())
	default:
		s.logger.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, CodeInternal, "internal error")
	}
}

func decodeProgram(w http.ResponseWriter, r *http.Request) (programRequest, bool) {
	var req programRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid request body: "+err.Error())
		return req, false
	}
	return req, true
}

// cached writes a cached response. It reports whether there was one.
func (s *Server) cached(w http.ResponseWriter, r *http.Request, endpoint, key string) bool {
	if s.cache == nil {
		return false
	}
	payload, ok, err := s.cache.Get(r.Context(), endpoint+"\x00"+key)
	if err != nil {
		s.logger.Warn("cache lookup failed", "error", err)
		return false
	}
	result := "miss"
	if ok {
		result = "hit"
	}
	s.metrics.CacheLookups.WithLabelValues(endpoint, result).Inc()
	if !ok {
		return false
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Cache", "hit")
	w.Write(payload) //nolint:errcheck // client went away
	return true
}

// respond writes v and stores it in the cache.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, endpoint, key string, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		s.writeProgramError(w, err)
		return
	}
	s.remember(r, endpoint, key, payload)
	writePayload(w, payload)
}

// remember stores a response payload in the cache, if there is one.
func (s *Server) remember(r *http.Request, endpoint, key string, payload []byte) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Put(r.Context(), endpoint+"\x00"+key, payload); err != nil {
		s.logger.Warn("cache store failed", "error", err)
	}
}

// writePayload writes a freshly computed JSON response.
func writePayload(w http.ResponseWriter, payload []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Cache", "miss")
	w.Write(payload) //nolint:errcheck // client went away
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) compile(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeProgram(w, r)
	if !ok {
		return
	}
	if s.cached(w, r, "compile", req.Program) {
		return
	}

	if err := s.limits.CheckSource(req.Program); err != nil {
		s.writeProgramError(w, err)
		return
	}
	c, err := tetrlang.Compile(req.Program)
	if err == nil {
		err = s.limits.Check(c)
	}
	if err != nil {
		s.writeProgramError(w, err)
		return
	}
	s.respond(w, r, "compile", req.Program, c)
}

func (s *Server) simulate(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeProgram(w, r)
	if !ok {
		return
	}
	key := req.Program
	if req.Frames {
		key = "frames\x00" + key
	}
	if s.cached(w, r, "simulate", key) {
		return
	}

	start := time.Now()
	res, err := engine.Play(req.Program, s.limits)
	if err != nil {
		s.writeProgramError(w, err)
		return
	}

	resp := simulateResponse{
		Outcome: res.Outcome,
		Reason:  res.Reason,
		Summary: res.Summary,
		States:  make([]engine.StateView, len(res.States)),
	}
	for i, st := range res.States {
		resp.States[i] = st.View()
	}
	if req.Frames {
		frames, err := s.renderer.RenderAll(r.Context(), res.States)
		if err != nil {
			s.writeProgramError(w, err)
			return
		}
		for _, f := range render.Playable(frames) {
			resp.Frames = append(resp.Frames, frameView{
				Index:   f.Index,
				Tag:     f.Tag,
				DelayMS: f.Delay.Milliseconds(),
				Text:    f.String(),
			})
		}
	}

	s.metrics.Duration.Observe(time.Since(start).Seconds())
	s.metrics.States.Observe(float64(len(res.States)))
	s.metrics.Simulations.WithLabelValues(res.Outcome.String()).Inc()
	if res.Outcome == engine.OutcomeGameOver {
		s.logger.Warn("game over", "reason", res.Reason)
	}
	s.logger.Info("simulated", "states", len(res.States), "outcome", res.Outcome)

	if s.store == nil {
		s.respond(w, r, "simulate", key, resp)
		return
	}

	// a cached response belongs to no run
	if payload, err := json.Marshal(resp); err == nil {
		s.remember(r, "simulate", key, payload)
	}
	id, err := s.store.SaveRun(storage.NewRun(req.Program, "api", res))
	if err != nil {
		s.logger.Warn("could not save run", "error", err)
	}
	resp.RunID = id
	payload, err := json.Marshal(resp)
	if err != nil {
		s.writeProgramError(w, err)
		return
	}
	writePayload(w, payload)
}

func (s *Server) listRuns(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, CodeNoStorage, "run history is disabled")
		return
	}
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, CodeBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	runs, err := s.store.RecentRuns(limit)
	if err != nil {
		s.writeProgramError(w, err)
		return
	}
	if runs == nil {
		runs = []storage.Run{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

func (s *Server) getRun(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, CodeNoStorage, "run history is disabled")
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "invalid run id")
		return
	}
	run, err := s.store.RunByID(id)
	if err != nil {
		s.writeProgramError(w, err)
		return
	}
	if run == nil {
		writeError(w, http.StatusNotFound, CodeNotFound, "no such run")
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, CodeNoStorage, "run history is disabled")
		return
	}
	stats, err := s.store.Stats()
	if err != nil {
		s.writeProgramError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
