// Package web exposes the application as a JSON HTTP API.
package web

import (
	"log/slog"
	"net/http"

	"github.com/mentorai/mentorai/internal/auth"
	"github.com/mentorai/mentorai/internal/interview"
	"github.com/mentorai/mentorai/internal/room"
)

// ServerDeps are the dependencies for the server.
type ServerDeps struct {
	Logger           *slog.Logger
	AuthService      *auth.Service
	SessionTokens    *auth.SessionTokens
	InterviewService *interview.Service
	RoomTokens       *room.TokenMinter
}

type Server struct {
	deps    *ServerDeps
	mux     *http.ServeMux
	handler http.Handler
}

func NewServer(deps *ServerDeps) *Server {
	s := &Server{
		deps: deps,
		mux:  http.NewServeMux(),
	}

	// Account endpoints.
	s.mux.HandleFunc("POST /auth/register", s.register)
	s.mux.HandleFunc("GET /auth/verify/{token}", s.verifyEmail)
	s.mux.HandleFunc("POST /auth/login", s.login)

	// Interview records, always scoped to the authenticated user.
	s.protected("POST /interview/save", s.saveInterview)
	s.protected("GET /interview/my-history", s.interviewHistory)
	s.protected("GET /interview/{id}", s.interviewByID)

	// Live room access.
	s.protected("POST /room/token", s.roomToken)

	// Wrap the mux with global middlewares.
	middlewares := []func(http.Handler) http.Handler{
		s.logRequests,
	}
	s.handler = s.mux
	for i := len(middlewares) - 1; i >= 0; i-- {
		s.handler = middlewares[i](s.handler)
	}

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// protected registers a route behind the session token middleware.
func (s *Server) protected(route string, h http.HandlerFunc) {
	s.mux.Handle(route, s.requireAuth(h))
}

// logRequests logs every request after it has been handled.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w}
		next.ServeHTTP(sw, r)

		s.deps.Logger.Info("request handled",
			"method", r.Method,
			"url", r.URL.String(),
			"status", sw.status(),
		)
	})
}

// statusWriter captures the response status for the request log.
type statusWriter struct {
	http.ResponseWriter
	wroteStatus int
}

func (w *statusWriter) WriteHeader(status int) {
	if w.wroteStatus == 0 {
		w.wroteStatus = status
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.wroteStatus == 0 {
		w.wroteStatus = http.StatusOK
	}
	return w.ResponseWriter.Write(b)
}

func (w *statusWriter) status() int {
	if w.wroteStatus == 0 {
		return http.StatusOK
	}
	return w.wroteStatus
}
