package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	pkgcrypto "github.com/ferdousbhai/echo/internal/crypto"
	"github.com/ferdousbhai/echo/internal/errs"
	"github.com/ferdousbhai/echo/internal/limiter"
	"github.com/ferdousbhai/echo/internal/model"
	"github.com/ferdousbhai/echo/internal/repository"
	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// MinPasswordLen is the shortest password Register accepts.
const MinPasswordLen = 8

// tokenLeeway tolerates clock skew between issuer and verifier.
const tokenLeeway = 30 * time.Second

// AuthService defines authentication operations.
type AuthService interface {
	// Register creates a new user with secure password hashing.
	Register(ctx context.Context, username, password string) (uuid.UUID, error)
	// LoginWithIP applies rate-limiting and authenticates the user.
	LoginWithIP(ctx context.Context, username, password string, ip string) (tokens model.Tokens, user model.User, err error)
	// VerifyToken validates an access token and returns its subject.
	VerifyToken(token string) (uuid.UUID, error)
}

type AuthServiceImpl struct {
	users     repository.UserRepository
	signKey   []byte
	accessTTL time.Duration
	lim       limiter.Limiter
	log       *zap.Logger
	now       func() time.Time
}

// NewAuthService constructs AuthService with required dependencies.
func NewAuthService(users repository.UserRepository, signKey []byte, accessTTL time.Duration, lim limiter.Limiter, log *zap.Logger) *AuthServiceImpl {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthServiceImpl{users: users, signKey: signKey, accessTTL: accessTTL, lim: lim, log: log, now: time.Now}
}

// Register creates a new user record with a per-user salt.
func (s *AuthServiceImpl) Register(ctx context.Context, username, password string) (uuid.UUID, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return uuid.Nil, fmt.Errorf("empty username/password: %w", errs.ErrInvalidArgument)
	}
	if len(password) < MinPasswordLen {
		return uuid.Nil, fmt.Errorf("password shorter than %d: %w", MinPasswordLen, errs.ErrInvalidState)
	}
	hash, salt, err := pkgcrypto.NewPassword([]byte(password))
	if err != nil {
		return uuid.Nil, err
	}
	u := &model.User{
		ID:       newID(),
		Username: username,
		PwdHash:  hash,
		SaltAuth: salt,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return uuid.Nil, fmt.Errorf("register %q: %w", username, err)
	}
	return u.ID, nil
}

// LoginWithIP authenticates with rate limiting by (username, ip).
func (s *AuthServiceImpl) LoginWithIP(ctx context.Context, username, password, ip string) (model.Tokens, model.User, error) {
	ipHash := limiter.HashIP(ip)

	allowed, _, err := s.lim.Allow(ctx, username, ipHash)
	if err != nil {
		return model.Tokens{}, model.User{}, err
	}
	if !allowed {
		return model.Tokens{}, model.User{}, errs.ErrRateLimited
	}

	u, err := s.users.GetByUsername(ctx, username)
	if err != nil && !isNotFound(err) {
		return model.Tokens{}, model.User{}, err
	}
	if err != nil || !pkgcrypto.VerifyPassword([]byte(password), u.SaltAuth, u.PwdHash) {
		blocked, _, ferr := s.lim.Failure(ctx, username, ipHash)
		if ferr != nil {
			s.log.Warn("record login failure", zap.Error(ferr))
		}
		if blocked {
			return model.Tokens{}, model.User{}, errs.ErrRateLimited
		}
		// unknown user and wrong password look the same
		return model.Tokens{}, model.User{}, fmt.Errorf("bad credentials: %w", errs.ErrUnauthenticated)
	}

	if err := s.lim.Success(ctx, username, ipHash); err != nil {
		s.log.Warn("reset login limiter", zap.Error(err))
	}

	access, exp, err := s.issueAccessToken(u.ID)
	if err != nil {
		return model.Tokens{}, model.User{}, err
	}
	return model.Tokens{AccessToken: access, ExpiresAt: exp}, u.Public(), nil
}

// issueAccessToken creates a signed HS256 JWT for the given subject.
func (s *AuthServiceImpl) issueAccessToken(userID uuid.UUID) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(s.accessTTL)
	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(s.signKey)
	return signed, exp, err
}

// VerifyToken checks the HS256 signature and time claims and returns sub as UUID.
func (s *AuthServiceImpl) VerifyToken(token string) (uuid.UUID, error) {
	var claims jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return s.signKey, nil
	}, jwt.WithLeeway(tokenLeeway), jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid {
		return uuid.Nil, fmt.Errorf("invalid token: %w", errs.ErrUnauthenticated)
	}
	id, err := uuid.FromString(claims.Subject)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, fmt.Errorf("bad subject: %w", errs.ErrUnauthenticated)
	}
	return id, nil
}
