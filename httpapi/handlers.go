package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/mocksi/webforge/storage"
	"github.com/mocksi/webforge/workflow"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// submitResponse echoes the submitted input alongside the task handle:
// original_text for text pipelines, url for browser-backed ones.
type submitResponse struct {
	TaskID       string             `json:"task_id"`
	Kind         string             `json:"kind"`
	Status       storage.TaskStatus `json:"status"`
	OriginalText string             `json:"original_text,omitempty"`
	URL          string             `json:"url,omitempty"`
}

type reverseRequest struct {
	Text string `json:"text"`
}

type urlRequest struct {
	URL string `json:"url"`
}

// submitText accepts {text} submissions.
func (s *Server) submitText(kind workflow.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req reverseRequest
		if !s.decodeBody(w, r, &req) {
			return
		}
		if strings.TrimSpace(req.Text) == "" {
			writeError(w, http.StatusBadRequest, "invalid_input", "text must not be empty")
			return
		}
		s.submit(w, r, kind, req.Text)
	}
}

// submitURL accepts {url} submissions for the browser-backed pipelines.
func (s *Server) submitURL(kind workflow.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req urlRequest
		if !s.decodeBody(w, r, &req) {
			return
		}
		if strings.TrimSpace(req.URL) == "" {
			writeError(w, http.StatusBadRequest, "invalid_input", "url must not be empty")
			return
		}
		if s.browser == nil || !s.browser.Configured() {
			writeError(w, http.StatusServiceUnavailable, "missing_dependency",
				"browser automation provider is not configured")
			return
		}
		s.submit(w, r, kind, req.URL)
	}
}

func (s *Server) submit(w http.ResponseWriter, r *http.Request, kind workflow.Kind, input string) {
	taskID, err := s.tasks.Submit(r.Context(), kind, input)
	if err != nil {
		s.logger.Error("Pipeline submission failed", "kind", kind, "error", err)
		writeError(w, http.StatusServiceUnavailable, "submission_failed",
			"the execution engine did not accept the submission")
		return
	}

	resp := submitResponse{
		TaskID: taskID,
		Kind:   string(kind),
		Status: storage.TaskStatusRunning,
	}
	if kind == workflow.KindReverse {
		resp.OriginalText = input
	} else {
		resp.URL = input
	}

	writeJSON(w, http.StatusAccepted, resp)
}

// handleStatus serves every GET <pipeline>/{task_id} route.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	task, ok := s.lookupTask(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// handleDownloadCode serves the generated site as a named file map.
func (s *Server) handleDownloadCode(w http.ResponseWriter, r *http.Request) {
	task, ok := s.lookupTask(w, r)
	if !ok {
		return
	}
	if task.Kind != string(workflow.KindWebsite) {
		writeError(w, http.StatusNotFound, "not_found", "task is not a website generation task")
		return
	}

	switch task.Status {
	case storage.TaskStatusRunning:
		writeError(w, http.StatusConflict, "not_ready", "website generation is still running")
		return
	case storage.TaskStatusFailed:
		writeError(w, http.StatusConflict, "generation_failed", task.Error)
		return
	}

	var result workflow.WebsiteOutput
	if err := json.Unmarshal(task.Result, &result); err != nil || result.Frontend == nil {
		s.logger.Error("Stored website result is unreadable", "task_id", task.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "stored result is unreadable")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"task_id": task.ID,
		"files":   result.Frontend.Files(),
	})
}

// healthResponse reports per-dependency status.
type healthResponse struct {
	Status       string            `json:"status"`
	Dependencies map[string]string `json:"dependencies"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	deps := map[string]string{}
	healthy := true

	if s.ready() {
		deps["engine"] = "ok"
	} else {
		deps["engine"] = "unavailable"
		healthy = false
	}

	if s.browser != nil && s.browser.Configured() {
		deps["browser"] = "configured"
	} else {
		deps["browser"] = "not_configured"
	}

	if s.inference != nil && s.inference.Configured() {
		deps["inference"] = "configured"
	} else {
		deps["inference"] = "not_configured"
	}

	status := "ok"
	code := http.StatusOK
	if !healthy {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	writeJSON(w, code, healthResponse{Status: status, Dependencies: deps})
}

// lookupTask resolves the {task_id} path value or writes the error.
func (s *Server) lookupTask(w http.ResponseWriter, r *http.Request) (*storage.Task, bool) {
	id := r.PathValue("task_id")

	task, err := s.tasks.Status(r.Context(), id, statusWait)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "unknown task id")
			return nil, false
		}
		s.logger.Error("Task lookup failed", "task_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "task lookup failed")
		return nil, false
	}
	return task, true
}

// decodeBody parses the JSON request body, bounding its size.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "request body must be valid JSON")
		return false
	}
	return true
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Response is already partially written; nothing to recover.
		return
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: code, Message: message})
}
