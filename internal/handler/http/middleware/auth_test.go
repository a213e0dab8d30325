package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProtected(t *testing.T) (jwt.Service, http.Handler) {
	t.Helper()
	jwtService, err := jwt.NewJWTService("test-secret", "15m", "24h")
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Use(jwtauth.Verifier(jwtService.JWTAuth()))
	r.Use(AuthRequired(jwtService))
	r.Get("/me", func(w http.ResponseWriter, r *http.Request) {
		p, ok := PrincipalFromContext(r.Context())
		require.True(t, ok)
		_, _ = w.Write([]byte(p.UserID + "|" + p.EmployeeID + "|" + string(p.Role)))
	})
	r.With(AdminOnly).Get("/admin", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	r.With(RequireEmployee).Get("/employee", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return jwtService, r
}

func get(h http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAuthRequired(t *testing.T) {
	jwtService, h := newProtected(t)
	employeeID := "emp-1"

	access, _, err := jwtService.GenerateAccessToken("user-1", "a@b.co", &employeeID, user.RoleEmployee)
	require.NoError(t, err)

	rec := get(h, "/me", access)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1|emp-1|employee", rec.Body.String())

	assert.Equal(t, http.StatusUnauthorized, get(h, "/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, get(h, "/me", "garbage").Code)

	refresh, _, err := jwtService.GenerateRefreshToken("user-1")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, get(h, "/me", refresh).Code)

	jwtService.RevokeToken(access, 0)
	assert.Equal(t, http.StatusUnauthorized, get(h, "/me", access).Code)
}

func TestRoleGuards(t *testing.T) {
	jwtService, h := newProtected(t)

	admin, _, err := jwtService.GenerateAccessToken("user-a", "admin@b.co", nil, user.RoleAdmin)
	require.NoError(t, err)
	employeeID := "emp-1"
	staff, _, err := jwtService.GenerateAccessToken("user-1", "a@b.co", &employeeID, user.RoleEmployee)
	require.NoError(t, err)

	assert.Equal(t, http.StatusNoContent, get(h, "/admin", admin).Code)
	assert.Equal(t, http.StatusForbidden, get(h, "/admin", staff).Code)

	assert.Equal(t, http.StatusNoContent, get(h, "/employee", staff).Code)
	assert.Equal(t, http.StatusForbidden, get(h, "/employee", admin).Code)
}
