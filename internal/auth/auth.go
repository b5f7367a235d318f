package auth

import (
	"context"
	"errors"
	"time"

	"pixlink/internal/config"
	"pixlink/internal/logger"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"
)

const (
	RoleAdmin = "admin"

	TokenTTL = 24 * time.Hour

	// loginBurst stays below the CLI's prompt count so one run cannot use
	// every prompt at full speed.
	loginLimit = rate.Limit(0.5)
	loginBurst = 2
)

type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Authenticator guards the admin commands. The issued token is kept in a
// file so that separate invocations share one login.
type Authenticator struct {
	hash     string
	secret   []byte
	tokens   *TokenFile
	attempts *attemptLog
	limiter  *rate.Limiter
	now      func() time.Time
}

// NewAuthenticator prefers ADMIN_PASSWORD_HASH; a plaintext ADMIN_PASSWORD is
// hashed once here and never kept.
func NewAuthenticator(cfg *config.Config) (*Authenticator, error) {
	hash := cfg.AdminPasswordHash
	if hash == "" && cfg.AdminPassword != "" {
		h, err := HashPassword(cfg.AdminPassword)
		if err != nil {
			return nil, err
		}
		hash = h
	}

	return &Authenticator{
		hash:    hash,
		secret:  []byte(cfg.JWTSecret),
		tokens:   NewTokenFile(cfg.SessionPath),
		attempts: newAttemptLog(cfg.SessionPath),
		limiter:  rate.NewLimiter(loginLimit, loginBurst),
		now:      time.Now,
	}, nil
}

func (a *Authenticator) Enabled() bool {
	return a.hash != ""
}

// Login checks the password, then issues and persists a token.
func (a *Authenticator) Login(ctx context.Context, password string) (string, error) {
	log := logger.FromCtx(ctx)

	if !a.Enabled() {
		return "", ErrLoginDisabled
	}
	if len(a.secret) == 0 {
		return "", ErrJWTSecretNotSet
	}
	if !a.limiter.Allow() {
		log.Warn("login throttled")
		return "", ErrTooManyAttempts
	}
	if a.attempts.lockedOut(a.now()) {
		log.Warn("login locked out")
		return "", ErrTooManyAttempts
	}

	if !CheckPasswordHash(password, a.hash) {
		log.Warn("login failed")
		if err := a.attempts.recordFailure(a.now()); err != nil {
			return "", err
		}
		return "", ErrInvalidCredentials
	}
	if err := a.attempts.reset(); err != nil {
		return "", err
	}

	token, err := a.issue()
	if err != nil {
		return "", err
	}
	if err := a.tokens.Save(token); err != nil {
		return "", err
	}

	log.Info("admin logged in")
	return token, nil
}

// Authorize validates the stored token.
func (a *Authenticator) Authorize(ctx context.Context) (*Claims, error) {
	if !a.Enabled() {
		return nil, ErrLoginDisabled
	}
	if len(a.secret) == 0 {
		return nil, ErrJWTSecretNotSet
	}

	token, err := a.tokens.Load()
	if err != nil {
		return nil, err
	}

	claims, err := a.parse(token)
	if err != nil {
		logger.FromCtx(ctx).Debug("stored token rejected", zap.Error(err))
		return nil, ErrNotLoggedIn
	}
	return claims, nil
}

func (a *Authenticator) Logout(ctx context.Context) error {
	if err := a.tokens.Clear(); err != nil {
		return err
	}
	logger.FromCtx(ctx).Info("admin logged out")
	return nil
}

func (a *Authenticator) issue() (string, error) {
	now := a.now()
	claims := Claims{
		Role: RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   RoleAdmin,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

func (a *Authenticator) parse(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&Claims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return a.secret, nil
		},
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Role != RoleAdmin {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
