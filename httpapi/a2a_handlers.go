package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/agentrelay/agentrelay/errs"
)

type createTaskRequest struct {
	AgentPath string                 `json:"agentPath"`
	Message   string                 `json:"message"`
	ContextID string                 `json:"contextId,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// handleCreateTask creates a task and schedules its background execution,
// returning immediately (spec §4.5, §6).
func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, errs.New(errs.CodeValidationError, "invalid request body: "+err.Error()))
		return
	}
	if req.AgentPath == "" || req.Message == "" {
		writeError(w, r, errs.New(errs.CodeValidationError, "agentPath and message are required"))
		return
	}

	task, err := s.executor.CreateTask(req.AgentPath, req.Message, req.ContextID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"taskId":    task.TaskID,
		"status":    task.Status,
		"createdAt": task.CreatedAt,
	})
}

// handleListTasks lists tasks, optionally filtered by ?agentPath= (spec §4.5).
func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	tasks := s.executor.ListTasks(r.URL.Query().Get("agentPath"))
	writeJSON(w, http.StatusOK, map[string]any{"tasks": tasks})
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	task, err := s.executor.GetTask(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleCancelTask(w http.ResponseWriter, r *http.Request) {
	cancelled, err := s.executor.CancelTask(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"cancelled": cancelled})
}

// handleStreamTask serves the task's event stream as SSE frames of
// a2a.A2aStreamEvent (spec §4.5, §6).
func (s *Server) handleStreamTask(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "id")

	events, err := s.executor.Stream(taskID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, r, errs.New(errs.CodeInternalError, "streaming not supported by this transport"))
		return
	}

	prepareSSE(w)

	for event := range events {
		select {
		case <-r.Context().Done():
			return
		default:
		}
		writeSSE(w, event)
		flusher.Flush()
	}
}
