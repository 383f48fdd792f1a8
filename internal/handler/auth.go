package handler

import (
	"net/http"
	"strings"

	"github.com/pkordes/notes/internal/domain"
	"github.com/pkordes/notes/internal/middleware"
)

type loginPageResponse struct {
	pageContext
	Next string `json:"next"`
}

type loginResponse struct {
	domain.Session
	Next string `json:"next"`
}

// LoginPage handles GET /login, the target of permission redirects.
func (s *Server) LoginPage(w http.ResponseWriter, r *http.Request) {
	pc, err := s.pageContext(r, "Log in", 0)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, loginPageResponse{pageContext: pc, Next: safeNext(r.URL.Query().Get("next"))})
}

// Login handles POST /login with username and password form fields.
// On success the token is returned in the body and set as an HttpOnly cookie.
func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	form, ok := s.parseForm(w, r)
	if !ok {
		return
	}

	sess, err := s.svc.Auth.Login(r.Context(), form.Get("username"), form.Get("password"))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	s.writeJSON(w, r, http.StatusOK, loginResponse{Session: sess, Next: safeNext(form.Get("next"))})
}

// Logout handles POST /logout by expiring the session cookie.
func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// safeNext returns next when it is a local path, otherwise "/".
// Protocol-relative and absolute URLs are refused to avoid open redirects.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}
