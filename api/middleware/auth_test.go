package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgauth "github.com/ceramicarte/preventivi-backend/pkg/auth"
	"github.com/ceramicarte/preventivi-backend/pkg/config"
)

func authTestConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:   "test-secret",
		Issuer:   "preventivi-admin",
		TokenTTL: time.Hour,
	}
}

func authProbe(t *testing.T, cfg config.JWTConfig, header string) (*httptest.ResponseRecorder, string) {
	t.Helper()

	var subject string
	handler := Auth(cfg, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject = AdminSubjectFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w, subject
}

func TestAuth_AcceptsValidBearerToken(t *testing.T) {
	cfg := authTestConfig()
	token, err := pkgauth.NewAccessToken(cfg, "admin@ceramicarte.it")
	require.NoError(t, err)

	w, subject := authProbe(t, cfg, "Bearer "+token)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "admin@ceramicarte.it", subject)
}

func TestAuth_RejectsMissingHeader(t *testing.T) {
	w, _ := authProbe(t, authTestConfig(), "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_RejectsBadToken(t *testing.T) {
	w, _ := authProbe(t, authTestConfig(), "Bearer garbage")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_RejectsForeignSignature(t *testing.T) {
	other := authTestConfig()
	other.Secret = "someone-else"
	token, err := pkgauth.NewAccessToken(other, "admin@ceramicarte.it")
	require.NoError(t, err)

	w, _ := authProbe(t, authTestConfig(), "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
