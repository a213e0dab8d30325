package oauth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/cmlabs-hris/hrms-backend-go/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func newTestGoogle(t *testing.T, profileStatus int) *GoogleServiceImpl {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.PostForm.Get("code") != "good-code" {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid_grant"})
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "google-access",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer google-access" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if profileStatus != http.StatusOK {
			w.WriteHeader(profileStatus)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id":             "1234567890",
			"email":          "budi@example.com",
			"verified_email": true,
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	svc := NewGoogleService(config.OAuth2GoogleConfig{
		ClientID:     "client",
		ClientSecret: "secret",
		RedirectURL:  "http://localhost:8080/api/v1/auth/google/callback",
		Scopes:       []string{"email"},
	}).(*GoogleServiceImpl)
	svc.config.Endpoint = oauth2.Endpoint{
		AuthURL:   srv.URL + "/auth",
		TokenURL:  srv.URL + "/token",
		AuthStyle: oauth2.AuthStyleInParams,
	}
	svc.userInfoURL = srv.URL + "/userinfo"
	return svc
}

func TestIdentify(t *testing.T) {
	svc := newTestGoogle(t, http.StatusOK)

	identity, err := svc.Identify(context.Background(), "good-code")
	require.NoError(t, err)
	assert.Equal(t, "1234567890", identity.GoogleID)
	assert.Equal(t, "budi@example.com", identity.Email)
	assert.True(t, identity.VerifiedEmail)
}

func TestIdentify_BadCode(t *testing.T) {
	svc := newTestGoogle(t, http.StatusOK)

	_, err := svc.Identify(context.Background(), "bad-code")
	assert.Error(t, err)
}

func TestIdentify_ProfileError(t *testing.T) {
	svc := newTestGoogle(t, http.StatusInternalServerError)

	_, err := svc.Identify(context.Background(), "good-code")
	assert.ErrorContains(t, err, "unexpected status 500")
}

func TestStateAndRedirect(t *testing.T) {
	svc := newTestGoogle(t, http.StatusOK)

	a, err := svc.GenerateState()
	require.NoError(t, err)
	b, err := svc.GenerateState()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)

	redirect, err := url.Parse(svc.RedirectURL(a))
	require.NoError(t, err)
	q := redirect.Query()
	assert.Equal(t, a, q.Get("state"))
	assert.Equal(t, "client", q.Get("client_id"))
	assert.Equal(t, "offline", q.Get("access_type"))
}
