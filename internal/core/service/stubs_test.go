package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/usermgmt/admin-console/internal/core/domain"
	"github.com/usermgmt/admin-console/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type stubStore struct {
	mu     sync.Mutex
	values map[string]string
	getErr error
	setErr error
}

func newStubStore() *stubStore {
	return &stubStore{values: make(map[string]string)}
}

func (s *stubStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return "", s.getErr
	}
	v, ok := s.values[key]
	if !ok {
		return "", ports.ErrKeyNotFound
	}
	return v, nil
}

func (s *stubStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.setErr != nil {
		return s.setErr
	}
	s.values[key] = value
	return nil
}

func (s *stubStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

func (s *stubStore) Ping(context.Context) error { return nil }

func (s *stubStore) has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.values[key]
	return ok
}

type stubBackend struct {
	loginFn    func(ctx context.Context, creds domain.Credentials) (ports.LoginResponse, error)
	registerFn func(ctx context.Context, reg domain.Registration) (*domain.User, error)
	listFn     func(ctx context.Context) ([]domain.User, error)
	addFn      func(ctx context.Context, form domain.UserForm) (*domain.User, error)
	updateFn   func(ctx context.Context, form domain.UserForm) (*domain.User, error)
	resetFn    func(ctx context.Context, email string) (domain.Ack, error)
	uploadFn   func(ctx context.Context, form domain.ProfileImageForm, progress ports.ProgressFunc) (*domain.User, error)
	deleteFn   func(ctx context.Context, username string) (domain.Ack, error)
}

func (b *stubBackend) Login(ctx context.Context, creds domain.Credentials) (ports.LoginResponse, error) {
	return b.loginFn(ctx, creds)
}

func (b *stubBackend) Register(ctx context.Context, reg domain.Registration) (*domain.User, error) {
	return b.registerFn(ctx, reg)
}

func (b *stubBackend) ListUsers(ctx context.Context) ([]domain.User, error) {
	return b.listFn(ctx)
}

func (b *stubBackend) AddUser(ctx context.Context, form domain.UserForm) (*domain.User, error) {
	return b.addFn(ctx, form)
}

func (b *stubBackend) UpdateUser(ctx context.Context, form domain.UserForm) (*domain.User, error) {
	return b.updateFn(ctx, form)
}

func (b *stubBackend) ResetPassword(ctx context.Context, email string) (domain.Ack, error) {
	return b.resetFn(ctx, email)
}

func (b *stubBackend) UpdateProfileImage(ctx context.Context, form domain.ProfileImageForm, progress ports.ProgressFunc) (*domain.User, error) {
	return b.uploadFn(ctx, form, progress)
}

func (b *stubBackend) DeleteUser(ctx context.Context, username string) (domain.Ack, error) {
	return b.deleteFn(ctx, username)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

var errStoreDown = errors.New("store down")

func signToken(t *testing.T, subject string, expiresAt time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{
		"iss":         "User Management Portal",
		"iat":         time.Now().Add(-time.Minute).Unix(),
		"authorities": []string{"user:read"},
	}
	if subject != "" {
		claims["sub"] = subject
	}
	if !expiresAt.IsZero() {
		claims["exp"] = expiresAt.Unix()
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func sampleUsers() []domain.User {
	join := domain.NewTimestamp(time.Date(2023, 5, 1, 9, 0, 0, 0, time.UTC))
	return []domain.User{
		{ID: 1, UserID: "u1", FirstName: "Ada", LastName: "Lovelace", Username: "ada", Email: "a@x.com", Role: domain.RoleAdmin, Active: true, NotLocked: true, JoinDate: join, Authorities: []string{"user:read", "user:delete"}},
		{ID: 2, UserID: "u2", FirstName: "Charles", LastName: "Babbage", Username: "cbab", Email: "charles@engine.org", Role: domain.RoleUser, Active: true, JoinDate: join},
		{ID: 3, UserID: "u3", FirstName: "Grace", LastName: "Hopper", Username: "ghopper", Email: "grace@navy.mil", Role: domain.RoleManager},
	}
}
