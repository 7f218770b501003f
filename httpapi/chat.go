package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/agentrelay/agentrelay/agent"
	"github.com/agentrelay/agentrelay/errs"
)

type chatRequest struct {
	Message        string                 `json:"message"`
	ConversationID string                 `json:"conversationId,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}

func (req chatRequest) toChatInput() agent.ChatInput {
	return agent.ChatInput{Message: req.Message, ConversationID: req.ConversationID, Metadata: req.Metadata}
}

func decodeChatRequest(r *http.Request) (chatRequest, error) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return req, errs.New(errs.CodeValidationError, "invalid request body: "+err.Error())
	}
	if req.Message == "" {
		return req, errs.New(errs.CodeValidationError, "message is required")
	}
	return req, nil
}

// handleChat runs one non-streaming turn (spec §6).
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	a, err := s.registry.GetAgent(chi.URLParam(r, "path"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	req, err := decodeChatRequest(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	output, err := a.Execute(r.Context(), req.toChatInput())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    output,
		"traceId": middleware.GetReqID(r.Context()),
	})
}

// handleChatStream runs one streaming turn as a server-sent event stream of
// ChatChunk frames (spec §6).
func (s *Server) handleChatStream(w http.ResponseWriter, r *http.Request) {
	a, err := s.registry.GetAgent(chi.URLParam(r, "path"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	req, err := decodeChatRequest(r)
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
	writeSSE(w, map[string]any{"type": "start", "traceId": middleware.GetReqID(r.Context())})
	flusher.Flush()

	chunks, err := a.ExecuteStreaming(r.Context(), req.toChatInput())
	if err != nil {
		writeSSE(w, map[string]any{"type": "error", "content": err.Error()})
		flusher.Flush()
		return
	}

	for chunk := range chunks {
		if chunk.Type == "error" {
			writeSSE(w, map[string]any{"type": "error", "content": chunk.Error})
			flusher.Flush()
			return
		}
		writeSSE(w, chunk)
		flusher.Flush()
	}

	writeSSE(w, map[string]any{"type": "done"})
	flusher.Flush()
}
