package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleServiceCard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.discovery.ServiceCard())
}

func (s *Server) handleAgentCard(w http.ResponseWriter, r *http.Request) {
	path := chi.URLParam(r, "path")
	card, ok := s.discovery.AgentCard(path)
	if !ok {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, card)
}
