// LEGO Shop Server - Graph-backed catalog, orders and recommendations
// Copyright 2026 Fadikk367
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Fadikk367/lego-shop-server

package auth

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/crypto/bcrypt"

	"github.com/Fadikk367/lego-shop-server/internal/graph"
	"github.com/Fadikk367/lego-shop-server/internal/logging"
	"github.com/Fadikk367/lego-shop-server/internal/models"
	"github.com/Fadikk367/lego-shop-server/internal/validation"
)

func newTestService(t *testing.T, opts ...Option) (*Service, *graph.MemoryStore) {
	t.Helper()
	store := graph.NewMemoryStore()
	opts = append([]Option{
		WithBcryptCost(bcrypt.MinCost),
		WithSecurityLogger(logging.NewSecurityLoggerWithLogger(logging.NewTestLogger(io.Discard))),
	}, opts...)
	svc, err := NewService(store, newTestJWTManager(t, time.Hour), opts...)
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	return svc, store
}

func TestNewServiceRequiresJWTManager(t *testing.T) {
	if _, err := NewService(graph.NewMemoryStore(), nil); err == nil {
		t.Error("NewService(nil jwt) succeeded, want error")
	}
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)

	user, err := svc.Register(ctx, models.RegisterInput{
		Name:     "  Ada  ",
		Email:    " Ada@Example.COM ",
		Password: "correct horse",
	}, "10.0.0.1")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	want := models.User{ID: user.ID, Name: "Ada", Email: "ada@example.com"}
	if diff := cmp.Diff(want, user); diff != "" {
		t.Errorf("user mismatch (-want +got):\n%s", diff)
	}

	account, err := store.UserByEmail(ctx, "ada@example.com")
	if err != nil {
		t.Fatalf("UserByEmail() error = %v", err)
	}
	if account.PasswordHash == "correct horse" || bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte("correct horse")) != nil {
		t.Error("stored password is not a bcrypt hash of the input")
	}

	_, err = svc.Register(ctx, models.RegisterInput{Name: "Other", Email: "ADA@example.com", Password: "another pass"}, "")
	if !errors.Is(err, graph.ErrConflict) {
		t.Errorf("duplicate Register() error = %v, want ErrConflict", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newTestService(t)

	tests := []struct {
		name  string
		in    models.RegisterInput
		field string
	}{
		{"blank name", models.RegisterInput{Name: "  ", Email: "a@example.com", Password: "password1"}, "name"},
		{"bad email", models.RegisterInput{Name: "A", Email: "nope", Password: "password1"}, "email"},
		{"short password", models.RegisterInput{Name: "A", Email: "a@example.com", Password: "short"}, "password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.in, "")
			var verr *validation.RequestValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("error = %v, want *RequestValidationError", err)
			}
			if got := verr.Errors()[0].Field(); got != tt.field {
				t.Errorf("field = %q, want %q", got, tt.field)
			}
		})
	}
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	user, err := svc.Register(ctx, models.RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "correct horse"}, "")
	if err != nil {
		t.Fatal(err)
	}

	session, err := svc.Login(ctx, models.LoginInput{Email: "ADA@example.com", Password: "correct horse"}, "")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if diff := cmp.Diff(user, session.User); diff != "" {
		t.Errorf("session user mismatch (-want +got):\n%s", diff)
	}
	claims, err := svc.jwt.ValidateToken(session.Token)
	if err != nil {
		t.Fatalf("issued token does not validate: %v", err)
	}
	if claims.UserID != user.ID {
		t.Errorf("token user id = %d, want %d", claims.UserID, user.ID)
	}

	tests := []struct {
		name string
		in   models.LoginInput
	}{
		{"wrong password", models.LoginInput{Email: "ada@example.com", Password: "wrong horse"}},
		{"unknown email", models.LoginInput{Email: "bob@example.com", Password: "correct horse"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(ctx, tt.in, "")
			if !errors.Is(err, ErrInvalidCredentials) {
				t.Errorf("Login() error = %v, want ErrInvalidCredentials", err)
			}
		})
	}
}

func TestLoginRateLimited(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, WithLoginLimiter(NewLoginLimiter(2, time.Hour)))
	if _, err := svc.Register(ctx, models.RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "correct horse"}, ""); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 2; i++ {
		if _, err := svc.Login(ctx, models.LoginInput{Email: "ada@example.com", Password: "bad password"}, ""); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("attempt %d error = %v, want ErrInvalidCredentials", i+1, err)
		}
	}
	_, err := svc.Login(ctx, models.LoginInput{Email: "ada@example.com", Password: "correct horse"}, "")
	if !errors.Is(err, ErrTooManyAttempts) {
		t.Errorf("third attempt error = %v, want ErrTooManyAttempts", err)
	}
}

func TestLoginStoreFailure(t *testing.T) {
	svc, _ := newTestService(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Login(ctx, models.LoginInput{Email: "ada@example.com", Password: "whatever1"}, "")
	if !errors.Is(err, graph.ErrStoreUnavailable) {
		t.Errorf("Login() error = %v, want ErrStoreUnavailable", err)
	}
}
