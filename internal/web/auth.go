package web

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/mentorai/mentorai/internal/auth"
	"github.com/mentorai/mentorai/internal/email"
	"github.com/mentorai/mentorai/internal/errorz"
	"github.com/mentorai/mentorai/internal/krypto"
)

// errAuthRequired indicates a protected route was called without a
// session token.
var errAuthRequired = errors.New("authentication required")

type ctxKey int

const sessionKey ctxKey = 0

// requireAuth guards a route with the session token check.
//
// The session is validated purely from the token signature and expiry,
// no store lookup happens on this path.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := bearerToken(r)
		if !ok {
			s.handleError(w, r, errAuthRequired)
			return
		}

		session, err := s.deps.SessionTokens.Validate(raw)
		if err != nil {
			s.handleError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), sessionKey, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")

	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return "", false
	}

	return token, true
}

// sessionFromCtx returns the session requireAuth attached to the context.
func sessionFromCtx(ctx context.Context) (auth.Session, error) {
	session, ok := ctx.Value(sessionKey).(auth.Session)
	if !ok {
		return auth.Session{}, errAuthRequired
	}

	return session, nil
}

type credentialsRequest struct {
	Email    email.Address `json:"email"`
	Password auth.Password `json:"password"`
}

// validate catches fields that were absent from the request body,
// those never pass through UnmarshalText.
func (c credentialsRequest) validate() error {
	var errs errorz.InvalidInput

	if c.Email == "" {
		errs = append(errs, errorz.Keyed{Key: "email", Err: errors.New("email is required")})
	}

	if c.Password.IsZero() {
		errs = append(errs, errorz.Keyed{Key: "password", Err: errors.New("password is required")})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

func (c credentialsRequest) credentials() auth.Credentials {
	return auth.Credentials{
		Email:    c.Email,
		Password: c.Password,
	}
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	req, err := decodeJSON[credentialsRequest](r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	if err := req.validate(); err != nil {
		s.handleError(w, r, err)
		return
	}

	if err := s.deps.AuthService.Register(r.Context(), req.credentials()); err != nil {
		s.handleError(w, r, err)
		return
	}

	s.writeSuccess(w, http.StatusCreated, "Registration successful. Please check your email to verify account.", nil)
}

func (s *Server) verifyEmail(w http.ResponseWriter, r *http.Request) {
	token, err := krypto.ParseToken(r.PathValue("token"))
	if err != nil {
		// Malformed tokens are indistinguishable from unknown ones.
		s.handleError(w, r, auth.ErrTokenInvalid)
		return
	}

	if err := s.deps.AuthService.VerifyEmail(r.Context(), token); err != nil {
		s.handleError(w, r, err)
		return
	}

	s.writeSuccess(w, http.StatusOK, "Email verified successfully", nil)
}

type loginResponse struct {
	User  auth.Public `json:"user"`
	Token string      `json:"token"`
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	req, err := decodeJSON[credentialsRequest](r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	if err := req.validate(); err != nil {
		s.handleError(w, r, err)
		return
	}

	token, user, err := s.deps.AuthService.Login(r.Context(), req.credentials())
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	s.writeSuccess(w, http.StatusOK, "Login successful", loginResponse{
		User:  user,
		Token: token,
	})
}
