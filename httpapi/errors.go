package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/agentrelay/agentrelay/errs"
)

// errorBody is the envelope shape fixed by spec §6.
type errorBody struct {
	Code      errs.Code      `json:"code"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	TraceID   string         `json:"traceId,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

var codeStatus = map[errs.Code]int{
	errs.CodeAgentNotFound:      http.StatusNotFound,
	errs.CodeAgentConfigError:   http.StatusInternalServerError,
	errs.CodeMCPConnectionError: http.StatusServiceUnavailable,
	errs.CodeAgentExecutionErr:  http.StatusInternalServerError,
	errs.CodeValidationError:    http.StatusBadRequest,
	errs.CodeA2ATaskError:       http.StatusInternalServerError,
	errs.CodeInternalError:      http.StatusInternalServerError,
}

// writeError maps err to its documented status code and envelope (spec §6,
// §7). A2A "not found" is the one case where CodeA2ATaskError should read as
// 404 rather than the code's default 500, per §6's task-lookup scenario.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errs.CodeOf(err)
	status, ok := codeStatus[code]
	if !ok {
		status = http.StatusInternalServerError
	}
	if code == errs.CodeA2ATaskError && status == http.StatusInternalServerError {
		status = taskErrorStatus(err, status)
	}

	var details map[string]any
	var se *errs.ServiceError
	if asServiceError(err, &se) {
		details = se.Details
	}

	writeJSON(w, status, map[string]errorBody{
		"error": {
			Code:      code,
			Message:   err.Error(),
			Details:   details,
			TraceID:   middleware.GetReqID(r.Context()),
			Timestamp: time.Now(),
		},
	})
}

// taskErrorStatus special-cases "task not found" to 404; any other
// A2A_TASK_ERROR keeps the default 500 (spec §6: A2A_TASK_ERROR is 500 in
// general, but a missing task id reads as a 404 lookup failure).
func taskErrorStatus(err error, fallback int) int {
	var se *errs.ServiceError
	if asServiceError(err, &se) {
		if _, ok := se.Details["taskId"]; ok {
			return http.StatusNotFound
		}
	}
	return fallback
}

func asServiceError(err error, target **errs.ServiceError) bool {
	for err != nil {
		if se, ok := err.(*errs.ServiceError); ok {
			*target = se
			return true
		}
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = unwrapper.Unwrap()
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
