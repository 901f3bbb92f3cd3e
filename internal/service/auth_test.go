package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, method jwt.SigningMethod, key interface{}, claims jwt.MapClaims) string {
	t.Helper()

	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)

	return token
}

func newTestAuthService(t *testing.T) AuthService {
	t.Helper()

	auth, err := NewAuthService(testSecret, "")
	require.NoError(t, err)

	return auth
}

func TestNewAuthService(t *testing.T) {
	// When: the secret is not configured
	auth, err := NewAuthService("", DefaultIdentityClaim)

	// Then: the service refuses to start
	require.ErrorIs(t, err, ErrMissingSecret)
	assert.Nil(t, auth)
}

func TestAuthService_Verify(t *testing.T) {
	t.Run("Returns identity from a valid token", func(t *testing.T) {
		// Given: a token signed with the configured secret
		auth := newTestAuthService(t)
		token := signToken(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{
			"telegramId": "u1",
			"exp":        time.Now().Add(time.Hour).Unix(),
		})

		// When: verifying it
		identity, err := auth.Verify(token)

		// Then: the identity claim is returned
		require.NoError(t, err)
		assert.Equal(t, "u1", identity)
	})

	t.Run("Accepts numeric identities", func(t *testing.T) {
		auth := newTestAuthService(t)
		token := signToken(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{
			"telegramId": 123456789,
		})

		identity, err := auth.Verify(token)

		require.NoError(t, err)
		assert.Equal(t, "123456789", identity)
	})

	t.Run("Reads the configured claim", func(t *testing.T) {
		auth, err := NewAuthService(testSecret, "sub")
		require.NoError(t, err)

		token := signToken(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"sub": "u7"})

		identity, err := auth.Verify(token)

		require.NoError(t, err)
		assert.Equal(t, "u7", identity)
	})

	t.Run("Fails closed", func(t *testing.T) {
		auth := newTestAuthService(t)

		tests := map[string]string{
			"malformed": "not-a-token",
			"empty":     "",
			"wrong secret": signToken(t, jwt.SigningMethodHS256, []byte("other-secret"), jwt.MapClaims{
				"telegramId": "u1",
			}),
			"expired": signToken(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{
				"telegramId": "u1",
				"exp":        time.Now().Add(-time.Minute).Unix(),
			}),
			"not yet valid": signToken(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{
				"telegramId": "u1",
				"nbf":        time.Now().Add(time.Hour).Unix(),
			}),
			"other algorithm": signToken(t, jwt.SigningMethodHS512, []byte(testSecret), jwt.MapClaims{
				"telegramId": "u1",
			}),
			"missing claim": signToken(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{
				"email": "u1@example.com",
			}),
			"empty claim": signToken(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{
				"telegramId": "",
			}),
			"object claim": signToken(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{
				"telegramId": map[string]string{"id": "u1"},
			}),
		}

		for name, token := range tests {
			t.Run(name, func(t *testing.T) {
				identity, err := auth.Verify(token)

				require.ErrorIs(t, err, apperror.ErrAuthInvalid)
				assert.Empty(t, identity)
			})
		}
	})

	t.Run("Rejects unsigned tokens", func(t *testing.T) {
		auth := newTestAuthService(t)
		token := signToken(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, jwt.MapClaims{
			"telegramId": "u1",
		})

		_, err := auth.Verify(token)

		require.ErrorIs(t, err, apperror.ErrAuthInvalid)
	})
}
