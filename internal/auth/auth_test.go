package auth

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"pixlink/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func newTestAuthenticator(t *testing.T, password string) (*Authenticator, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "session")
	a, err := NewAuthenticator(&config.Config{
		AdminPassword: password,
		JWTSecret:     "test-secret",
		SessionPath:   path,
	})
	require.NoError(t, err)
	return a, path
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)

	assert.NotEqual(t, "s3cret", hash)
	assert.True(t, CheckPasswordHash("s3cret", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))
}

func TestNewAuthenticator_PrefersHash(t *testing.T) {
	hash, err := HashPassword("from-hash")
	require.NoError(t, err)

	a, err := NewAuthenticator(&config.Config{
		AdminPasswordHash: hash,
		AdminPassword:     "from-plain",
		JWTSecret:         "x",
		SessionPath:       filepath.Join(t.TempDir(), "session"),
	})
	require.NoError(t, err)

	_, err = a.Login(context.Background(), "from-plain")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = a.Login(context.Background(), "from-hash")
	assert.NoError(t, err)
}

func TestLogin_Disabled(t *testing.T) {
	a, _ := newTestAuthenticator(t, "")

	assert.False(t, a.Enabled())
	_, err := a.Login(context.Background(), "anything")
	assert.ErrorIs(t, err, ErrLoginDisabled)

	_, err = a.Authorize(context.Background())
	assert.ErrorIs(t, err, ErrLoginDisabled)
}

func TestLogin_MissingSecret(t *testing.T) {
	a, err := NewAuthenticator(&config.Config{
		AdminPassword: "pw",
		SessionPath:   filepath.Join(t.TempDir(), "session"),
	})
	require.NoError(t, err)

	_, err = a.Login(context.Background(), "pw")
	assert.ErrorIs(t, err, ErrJWTSecretNotSet)
}

func TestLoginAuthorizeLogout(t *testing.T) {
	a, path := newTestAuthenticator(t, "pw")
	ctx := context.Background()

	_, err := a.Authorize(ctx)
	assert.ErrorIs(t, err, ErrNotLoggedIn)

	token, err := a.Login(ctx, "pw")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	claims, err := a.Authorize(ctx)
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, claims.Role)
	assert.NotEmpty(t, claims.ID)

	require.NoError(t, a.Logout(ctx))
	_, err = a.Authorize(ctx)
	assert.ErrorIs(t, err, ErrNotLoggedIn)

	// second logout is harmless
	assert.NoError(t, a.Logout(ctx))
}

func TestLogin_WrongPasswordStoresNothing(t *testing.T) {
	a, path := newTestAuthenticator(t, "pw")

	_, err := a.Login(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestLogin_Throttled(t *testing.T) {
	a, _ := newTestAuthenticator(t, "pw")
	a.limiter = rate.NewLimiter(rate.Every(time.Hour), 2)

	for i := 0; i < 2; i++ {
		_, err := a.Login(context.Background(), "nope")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	}

	_, err := a.Login(context.Background(), "pw")
	assert.ErrorIs(t, err, ErrTooManyAttempts)
}

func TestAuthorize_ExpiredToken(t *testing.T) {
	a, _ := newTestAuthenticator(t, "pw")
	start := time.Now()
	a.now = func() time.Time { return start }

	_, err := a.Login(context.Background(), "pw")
	require.NoError(t, err)

	a.now = func() time.Time { return start.Add(TokenTTL + time.Minute) }
	_, err = a.Authorize(context.Background())
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}

func TestAuthorize_ForeignToken(t *testing.T) {
	a, path := newTestAuthenticator(t, "pw")

	claims := Claims{
		Role: RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("other-secret"))
	require.NoError(t, err)
	require.NoError(t, NewTokenFile(path).Save(forged))

	_, err = a.Authorize(context.Background())
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}

func TestAuthorize_WrongRole(t *testing.T) {
	a, path := newTestAuthenticator(t, "pw")

	claims := Claims{
		Role: "payer",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	require.NoError(t, NewTokenFile(path).Save(token))

	_, err = a.Authorize(context.Background())
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}

func TestLogin_LockoutSurvivesNewAuthenticator(t *testing.T) {
	a, path := newTestAuthenticator(t, "pw")
	a.limiter = rate.NewLimiter(rate.Inf, 1)
	start := time.Now()
	a.now = func() time.Time { return start }

	for i := 0; i < maxFailures; i++ {
		_, err := a.Login(context.Background(), "nope")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	}

	next, err := NewAuthenticator(&config.Config{AdminPassword: "pw", JWTSecret: "test-secret", SessionPath: path})
	require.NoError(t, err)
	next.now = func() time.Time { return start.Add(time.Minute) }

	_, err = next.Login(context.Background(), "pw")
	assert.ErrorIs(t, err, ErrTooManyAttempts)

	// the lockout expires
	next.now = func() time.Time { return start.Add(lockoutWindow + time.Second) }
	_, err = next.Login(context.Background(), "pw")
	require.NoError(t, err)

	_, err = os.Stat(path + attemptsSuffix)
	assert.True(t, os.IsNotExist(err))
}

func TestLogin_SuccessResetsFailures(t *testing.T) {
	a, path := newTestAuthenticator(t, "pw")
	a.limiter = rate.NewLimiter(rate.Inf, 1)

	for i := 0; i < maxFailures-1; i++ {
		_, err := a.Login(context.Background(), "nope")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	}
	_, err := a.Login(context.Background(), "pw")
	require.NoError(t, err)

	assert.Equal(t, 0, newAttemptLog(path).load().Failures)
}
