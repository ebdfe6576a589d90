package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestTokenManager() *TokenManager {
	return NewTokenManager("test-secret-0123456789abcdef0123456789", time.Hour)
}

func TestLogin_Success(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	tokens := newTestTokenManager()
	svc := NewAuthService(string(hash), tokens)

	result, err := svc.Login("s3cret")
	require.NoError(t, err)
	assert.NotEmpty(t, result.AccessToken)
	assert.WithinDuration(t, time.Now().Add(time.Hour), result.ExpiresAt, time.Minute)

	assert.NoError(t, tokens.Parse(result.AccessToken))
}

func TestLogin_WrongPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	svc := NewAuthService(string(hash), newTestTokenManager())

	_, err = svc.Login("другой")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_DevDefaultPassword(t *testing.T) {
	svc := NewAuthService("", newTestTokenManager())

	_, err := svc.Login("admin")
	assert.NoError(t, err)

	_, err = svc.Login("не admin")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestTokenManager_ParseRejectsForeignSignature(t *testing.T) {
	issuer := newTestTokenManager()
	token, _, err := issuer.Issue()
	require.NoError(t, err)

	other := NewTokenManager("совсем-другой-секрет-0123456789", time.Hour)
	assert.Error(t, other.Parse(token))
}

func TestTokenManager_ParseRejectsExpired(t *testing.T) {
	manager := NewTokenManager("test-secret-0123456789abcdef0123456789", -time.Minute)
	token, _, err := manager.Issue()
	require.NoError(t, err)

	assert.Error(t, manager.Parse(token))
}

func TestTokenManager_ParseRejectsGarbage(t *testing.T) {
	assert.Error(t, newTestTokenManager().Parse("not.a.token"))
}
