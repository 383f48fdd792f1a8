package middleware_test

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/notes/internal/domain"
	"github.com/pkordes/notes/internal/middleware"
)

// mockAuthenticator is a hand-written test double for middleware.Authenticator.
type mockAuthenticator struct {
	authenticate func(ctx context.Context, token string) (domain.Identity, error)
}

func (m *mockAuthenticator) Authenticate(ctx context.Context, token string) (domain.Identity, error) {
	return m.authenticate(ctx, token)
}

var _ middleware.Authenticator = (*mockAuthenticator)(nil)

func tokenAuthenticator(valid string, id domain.Identity) *mockAuthenticator {
	return &mockAuthenticator{
		authenticate: func(_ context.Context, token string) (domain.Identity, error) {
			if token == valid {
				return id, nil
			}
			return domain.Identity{}, domain.ErrUnauthorized
		},
	}
}

// identityEcho writes the username found in context, or "anonymous".
var identityEcho = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		_, _ = w.Write([]byte("anonymous"))
		return
	}
	_, _ = w.Write([]byte(id.Username))
})

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil))
}

func TestAuthenticate_BearerHeader(t *testing.T) {
	authn := tokenAuthenticator("good", domain.Identity{UserID: 1, Username: "editor"})
	h := middleware.NewAuthenticate(authn, quietLogger())(identityEcho)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "editor", rec.Body.String())
}

func TestAuthenticate_Cookie(t *testing.T) {
	authn := tokenAuthenticator("good", domain.Identity{UserID: 1, Username: "editor"})
	h := middleware.NewAuthenticate(authn, quietLogger())(identityEcho)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: "good"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "editor", rec.Body.String())
}

func TestAuthenticate_InvalidTokenIsAnonymous(t *testing.T) {
	authn := tokenAuthenticator("good", domain.Identity{Username: "editor"})
	h := middleware.NewAuthenticate(authn, quietLogger())(identityEcho)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer forged")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "anonymous", rec.Body.String())
}

func TestAuthenticate_NoTokenSkipsLookup(t *testing.T) {
	authn := &mockAuthenticator{
		authenticate: func(context.Context, string) (domain.Identity, error) {
			t.Fatal("authenticator must not be called without a token")
			return domain.Identity{}, nil
		},
	}
	h := middleware.NewAuthenticate(authn, quietLogger())(identityEcho)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "anonymous", rec.Body.String())
}

func TestRequirePermission(t *testing.T) {
	tests := []struct {
		name     string
		identity *domain.Identity
		wantCode int
	}{
		{"anonymous", nil, http.StatusFound},
		{"lacks permission", &domain.Identity{Permissions: []domain.Permission{domain.PermChangeNote}}, http.StatusFound},
		{"has permission", &domain.Identity{Permissions: []domain.Permission{domain.PermAddNote}}, http.StatusOK},
		{"superuser", &domain.Identity{IsSuperuser: true}, http.StatusOK},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := middleware.NewRequirePermission(domain.PermAddNote, "/login")(trivialHandler)

			req := httptest.NewRequest(http.MethodGet, "/addpage?draft=1", nil)
			if tc.identity != nil {
				req = req.WithContext(middleware.WithIdentity(req.Context(), *tc.identity))
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			require.Equal(t, tc.wantCode, rec.Code)
			if tc.wantCode == http.StatusFound {
				assert.Equal(t, "/login?next=%2Faddpage%3Fdraft%3D1", rec.Header().Get("Location"))
			}
		})
	}
}
