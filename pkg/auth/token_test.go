package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ceramicarte/preventivi-backend/pkg/config"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:   "test-secret",
		Issuer:   "preventivi-admin",
		TokenTTL: time.Hour,
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	cfg := testJWTConfig()

	token, err := NewAccessToken(cfg, "admin@ceramicarte.it")
	require.NoError(t, err)

	claims, err := ParseAccessToken(cfg, token)
	require.NoError(t, err)
	assert.Equal(t, "admin@ceramicarte.it", claims.Subject)
	assert.Equal(t, cfg.Issuer, claims.Issuer)
}

func TestParseAccessToken_RejectsWrongSecret(t *testing.T) {
	cfg := testJWTConfig()

	token, err := NewAccessToken(cfg, "admin@ceramicarte.it")
	require.NoError(t, err)

	other := cfg
	other.Secret = "different-secret"
	_, err = ParseAccessToken(other, token)
	require.Error(t, err)
}

func TestParseAccessToken_RejectsWrongIssuer(t *testing.T) {
	cfg := testJWTConfig()
	cfg.Issuer = "someone-else"

	token, err := NewAccessToken(cfg, "admin@ceramicarte.it")
	require.NoError(t, err)

	_, err = ParseAccessToken(testJWTConfig(), token)
	require.Error(t, err)
}

func TestParseAccessToken_RejectsExpired(t *testing.T) {
	cfg := testJWTConfig()
	cfg.TokenTTL = -time.Minute

	token, err := NewAccessToken(cfg, "admin@ceramicarte.it")
	require.NoError(t, err)

	_, err = ParseAccessToken(cfg, token)
	require.Error(t, err)
}

func TestParseAccessToken_RejectsGarbage(t *testing.T) {
	_, err := ParseAccessToken(testJWTConfig(), "not-a-token")
	require.Error(t, err)
}

func TestNewAccessToken_RequiresSecret(t *testing.T) {
	cfg := testJWTConfig()
	cfg.Secret = ""

	_, err := NewAccessToken(cfg, "admin@ceramicarte.it")
	require.Error(t, err)
}
