// Package server exposes the task orchestrator over a small polling HTTP
// API: submit a script, poll the task until it reaches a terminal state,
// then download the episode.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/educast/podcast"
)

// Server wires HTTP handlers to an orchestrator.
type Server struct {
	orch   *podcast.Orchestrator
	logger *log.Logger
	http   *http.Server
}

// New creates a server listening on addr.
func New(addr string, orch *podcast.Orchestrator, logger *log.Logger) *Server {
	s := &Server{
		orch:   orch,
		logger: logger.WithPrefix("server"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/episodes", s.handleSubmit)
	mux.HandleFunc("GET /api/episodes", s.handleList)
	mux.HandleFunc("GET /api/episodes/{id}", s.handleStatus)
	mux.HandleFunc("GET /api/episodes/{id}/audio", s.handleAudio)
	mux.HandleFunc("GET /healthz", s.handleHealth)

	s.http = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// ListenAndServe blocks serving requests until Shutdown is called.
func (s *Server) ListenAndServe() error {
	s.logger.Info("listening", "addr", s.http.Addr)
	err := s.http.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// submitRequest is the POST /api/episodes body.
type submitRequest struct {
	Script     string `json:"script"`
	ScriptPath string `json:"script_path,omitempty"`
}

// submitResponse carries the id the client polls with.
type submitResponse struct {
	TaskID string `json:"task_id"`
}

// taskResponse is the wire form of a task record.
type taskResponse struct {
	TaskID    string                 `json:"task_id"`
	Status    string                 `json:"status"`
	Progress  int                    `json:"progress"`
	Message   string                 `json:"message,omitempty"`
	Result    *podcast.EpisodeResult `json:"result,omitempty"`
	Error     string                 `json:"error,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
}

func toTaskResponse(t podcast.Task) taskResponse {
	return taskResponse{
		TaskID:    t.ID,
		Status:    t.Status.String(),
		Progress:  t.Progress,
		Message:   t.Message,
		Result:    t.Result,
		Error:     t.Err,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	var (
		id  string
		err error
	)
	switch {
	case req.Script != "":
		id, err = s.orch.SubmitText(req.Script, "")
	case req.ScriptPath != "":
		id, err = s.orch.SubmitScript(req.ScriptPath, "")
	default:
		s.writeError(w, http.StatusBadRequest, errors.New("either script or script_path is required"))
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	s.writeJSON(w, http.StatusAccepted, submitResponse{TaskID: id})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	task, err := s.orch.Status(r.PathValue("id"))
	if errors.Is(err, podcast.ErrTaskNotFound) {
		s.writeError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toTaskResponse(task))
}

func (s *Server) handleList(w http.ResponseWriter, _ *http.Request) {
	tasks, err := s.orch.List()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	out := make([]taskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, toTaskResponse(t))
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAudio(w http.ResponseWriter, r *http.Request) {
	task, err := s.orch.Status(r.PathValue("id"))
	if errors.Is(err, podcast.ErrTaskNotFound) {
		s.writeError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	if task.Status != podcast.StatusCompleted || task.Result == nil {
		s.writeError(w, http.StatusConflict,
			fmt.Errorf("task %s is %s, audio is only available for completed tasks", task.ID, task.Status))
		return
	}
	w.Header().Set("Content-Type", "audio/wav")
	http.ServeFile(w, r, task.Result.AudioPath)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("unable to encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.logger.Debug("request failed", "status", status, "error", err)
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}
