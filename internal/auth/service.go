// LEGO Shop Server - Graph-backed catalog, orders and recommendations
// Copyright 2026 Fadikk367
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Fadikk367/lego-shop-server

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Fadikk367/lego-shop-server/internal/graph"
	"github.com/Fadikk367/lego-shop-server/internal/logging"
	"github.com/Fadikk367/lego-shop-server/internal/metrics"
	"github.com/Fadikk367/lego-shop-server/internal/models"
	"github.com/Fadikk367/lego-shop-server/internal/validation"
)

var (
	// ErrInvalidCredentials is returned for an unknown email or a wrong
	// password alike.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrTooManyAttempts is returned when the per-email login limit is hit.
	ErrTooManyAttempts = errors.New("too many login attempts")
)

// Session is the result of a successful login.
type Session struct {
	User      models.User `json:"user"`
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
}

// Service registers and logs in users.
type Service struct {
	users   graph.UserStore
	jwt     *JWTManager
	hasher  *PasswordHasher
	limiter *LoginLimiter
	secLog  *logging.SecurityLogger
	cost    int
}

// Option configures a Service.
type Option func(*Service)

// WithBcryptCost sets the bcrypt cost for new password hashes.
func WithBcryptCost(cost int) Option {
	return func(s *Service) { s.cost = cost }
}

// WithLoginLimiter replaces the default per-email login limiter.
func WithLoginLimiter(l *LoginLimiter) Option {
	return func(s *Service) {
		if l != nil {
			s.limiter = l
		}
	}
}

// WithSecurityLogger replaces the security event logger.
func WithSecurityLogger(l *logging.SecurityLogger) Option {
	return func(s *Service) {
		if l != nil {
			s.secLog = l
		}
	}
}

// NewService creates the identity service.
func NewService(users graph.UserStore, jwt *JWTManager, opts ...Option) (*Service, error) {
	if jwt == nil {
		return nil, fmt.Errorf("auth service requires a JWT manager")
	}
	s := &Service{
		users: users,
		jwt:   jwt,
		cost:  DefaultBcryptCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.limiter == nil {
		s.limiter = DefaultLoginLimiter()
	}
	if s.secLog == nil {
		s.secLog = logging.NewSecurityLogger()
	}

	hasher, err := NewPasswordHasher(s.cost)
	if err != nil {
		return nil, err
	}
	s.hasher = hasher
	return s, nil
}

// Limiter returns the per-email login limiter so its sweep can be started
// and stopped by the owner.
func (s *Service) Limiter() *LoginLimiter {
	return s.limiter
}

// Register creates an account. A duplicate email yields graph.ErrConflict.
func (s *Service) Register(ctx context.Context, in models.RegisterInput, ip string) (models.User, error) {
	in.Normalize()
	if err := validation.ValidateStruct(&in); err != nil {
		metrics.RecordAuthAttempt("register", false)
		return models.User{}, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		metrics.RecordAuthAttempt("register", false)
		return models.User{}, err
	}

	user, err := s.users.CreateUser(ctx, in.Name, in.Email, hash)
	if err != nil {
		metrics.RecordAuthAttempt("register", false)
		return models.User{}, err
	}

	metrics.RecordAuthAttempt("register", true)
	s.secLog.LogRegistered(user.ID, user.Email, ip)
	return user, nil
}

// Login checks the credentials and issues a token. Unknown emails and wrong
// passwords both yield ErrInvalidCredentials after the same bcrypt work.
func (s *Service) Login(ctx context.Context, in models.LoginInput, ip string) (Session, error) {
	in.Email = models.NormalizeEmail(in.Email)
	if err := validation.ValidateStruct(&in); err != nil {
		metrics.RecordAuthAttempt("login", false)
		return Session{}, err
	}

	if !s.limiter.Allow(in.Email) {
		metrics.RecordAuthAttempt("login", false)
		s.secLog.LogLoginFailure(in.Email, ip, "rate_limited")
		return Session{}, ErrTooManyAttempts
	}

	account, err := s.users.UserByEmail(ctx, in.Email)
	switch {
	case errors.Is(err, graph.ErrNotFound):
		s.hasher.burn(in.Password)
		return Session{}, s.loginFailed(in.Email, ip, "unknown_email")
	case err != nil:
		metrics.RecordAuthAttempt("login", false)
		return Session{}, err
	}

	if !s.hasher.Verify(account.PasswordHash, in.Password) {
		return Session{}, s.loginFailed(in.Email, ip, "wrong_password")
	}

	token, expires, err := s.jwt.GenerateToken(account.User)
	if err != nil {
		metrics.RecordAuthAttempt("login", false)
		return Session{}, err
	}

	metrics.RecordAuthAttempt("login", true)
	s.secLog.LogLoginSuccess(account.ID, account.Email, ip)
	return Session{User: account.User, Token: token, ExpiresAt: expires}, nil
}

func (s *Service) loginFailed(email, ip, reason string) error {
	metrics.RecordAuthAttempt("login", false)
	s.secLog.LogLoginFailure(email, ip, reason)
	return ErrInvalidCredentials
}
