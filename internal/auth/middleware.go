package auth

import (
	"net/http"
	"strings"
)

// CookieName is the cookie that carries the session token for browsers.
const CookieName = "fintrack_token"

// Verifier resolves a token to a session.
type Verifier interface {
	Verify(token string) (Session, error)
}

// TokenFromRequest reads a bearer token, falling back to the session cookie.
func TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if scheme, token, ok := strings.Cut(h, " "); ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
	}
	if c, err := r.Cookie(CookieName); err == nil {
		return c.Value
	}
	return ""
}

// RequireSession rejects requests without a valid session and stores the
// session in the request context otherwise. onFail writes the rejection;
// nil writes a plain 401.
func RequireSession(v Verifier, onFail func(http.ResponseWriter, *http.Request, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, err := v.Verify(TokenFromRequest(r))
			if err != nil {
				if onFail != nil {
					onFail(w, r, err)
					return
				}
				http.Error(w, Message(err), http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
		})
	}
}
