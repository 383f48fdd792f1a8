package handler

import (
	"net/http"

	"github.com/pkordes/notes/spec"
)

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status string `json:"status"`
}

// GetHealth handles GET /healthz.
// It returns HTTP 200 with {"status":"ok"} when the server is running.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, HealthResponse{Status: "ok"})
}

// GetOpenAPI handles GET /openapi.yaml.
func (s *Server) GetOpenAPI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(spec.OpenAPI)
}

// About handles GET /about.
func (s *Server) About(w http.ResponseWriter, r *http.Request) {
	s.staticPage(w, r, "About")
}

// Contact handles GET /contact.
func (s *Server) Contact(w http.ResponseWriter, r *http.Request) {
	s.staticPage(w, r, "Contact")
}

func (s *Server) staticPage(w http.ResponseWriter, r *http.Request, title string) {
	pc, err := s.pageContext(r, title, 0)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, pc)
}
