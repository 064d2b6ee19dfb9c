package http

import (
	"errors"
	"net/http"
	"time"

	"fintrack/internal/auth"
	"fintrack/internal/core"
	"fintrack/internal/log"
)

type credentials struct {
	email    string
	password string
	confirm  string
}

func readCredentials(r *http.Request) (credentials, error) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		return credentials{}, err
	}
	return credentials{
		email:    p.Get("email"),
		password: p.GetRaw("password"),
		confirm:  p.GetRaw("confirm_password"),
	}, nil
}

// handleSignUp registers a user and starts a session. A confirm_password
// field, when sent, must match.
func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	c, err := readCredentials(r)
	if err != nil {
		BadRequestError("Invalid request format").Write(w)
		return
	}

	var session auth.Session
	if c.confirm != "" {
		session, err = s.auth.SignUpConfirmed(r.Context(), c.email, c.password, c.confirm)
	} else {
		session, err = s.auth.SignUp(r.Context(), c.email, c.password)
	}
	if err != nil {
		s.writeAuthError(w, err)
		return
	}
	s.setSessionCookie(w, session)
	NewJSONResponse().Status(http.StatusCreated).Body(core.Ok(session)).Write(w)
}

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	c, err := readCredentials(r)
	if err != nil {
		BadRequestError("Invalid request format").Write(w)
		return
	}

	session, err := s.auth.SignIn(r.Context(), c.email, c.password)
	if err != nil {
		s.writeAuthError(w, err)
		return
	}
	s.setSessionCookie(w, session)
	NewJSONResponse().Body(core.Ok(session)).Write(w)
}

// handleSignOut revokes the presented token, if any, and clears the cookie.
// Signing out without a session still succeeds.
func (s *Server) handleSignOut(w http.ResponseWriter, r *http.Request) {
	if err := s.auth.SignOut(r.Context(), auth.TokenFromRequest(r)); err != nil {
		s.writeAuthError(w, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	NewJSONResponse().Body(core.Ok(core.Empty{})).Write(w)
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	session, _ := auth.FromContext(r.Context())
	NewJSONResponse().Body(core.Ok(session)).Write(w)
}

func (s *Server) setSessionCookie(w http.ResponseWriter, session auth.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		MaxAge:   int(time.Until(session.ExpiresAt).Seconds()),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) writeAuthError(w http.ResponseWriter, err error) {
	status := authStatus(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("Auth request failed", log.FieldError, err)
	}
	ErrorResponse(status, auth.Message(err)).Write(w)
}

func authStatus(err error) int {
	switch {
	case errors.Is(err, auth.ErrUserExists):
		return http.StatusConflict
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrSessionExpired),
		errors.Is(err, auth.ErrNoSession):
		return http.StatusUnauthorized
	case errors.Is(err, auth.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, auth.ErrWeakPassword),
		errors.Is(err, auth.ErrInvalidEmail),
		errors.Is(err, auth.ErrEmailDomain),
		errors.Is(err, auth.ErrPasswordMismatch):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
