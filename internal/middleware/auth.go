package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkordes/notes/internal/domain"
)

// SessionCookie is the cookie carrying the session token for browser clients.
const SessionCookie = "notes_session"

// Authenticator resolves a session token to an identity.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (domain.Identity, error)
}

type identityKey struct{}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id domain.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom returns the identity attached by NewAuthenticate, if any.
func IdentityFrom(ctx context.Context) (domain.Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(domain.Identity)
	return id, ok
}

// NewAuthenticate returns a middleware that reads a session token from the
// Authorization bearer header, falling back to the session cookie, and puts
// the resolved identity in the request context. Requests without a valid
// token continue anonymously; only NewRequirePermission rejects them.
func NewAuthenticate(authn Authenticator, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			id, err := authn.Authenticate(r.Context(), token)
			if err != nil {
				log.DebugContext(r.Context(), "session rejected", "path", r.URL.Path, "error", err)
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return c.Value
	}
	return ""
}

// NewRequirePermission returns a middleware that lets the request through only
// when the identity in context holds perm. Anyone else is redirected with 302
// to loginURL, with the original path and query in the next parameter.
func NewRequirePermission(perm domain.Permission, loginURL string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if id, ok := IdentityFrom(r.Context()); ok && id.Has(perm) {
				next.ServeHTTP(w, r)
				return
			}
			http.Redirect(w, r, loginRedirect(loginURL, r.URL.RequestURI()), http.StatusFound)
		})
	}
}

func loginRedirect(loginURL, next string) string {
	u, err := url.Parse(loginURL)
	if err != nil {
		return loginURL
	}
	q := u.Query()
	q.Set("next", next)
	u.RawQuery = q.Encode()
	return u.String()
}
