package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/usermgmt/admin-console/internal/core/domain"
	"github.com/usermgmt/admin-console/internal/core/ports"
	"github.com/usermgmt/admin-console/internal/pkg/validation"
)

// SessionService is the session context shared by the controllers and the
// request authenticator. The session is Authenticated while a well-formed,
// unexpired token with a subject is stored, and Anonymous otherwise.
type SessionService struct {
	backend ports.UserBackend
	cache   *LocalCache
	decoder ports.TokenDecoder
	log     zerolog.Logger
	now     func() time.Time

	mu       sync.Mutex
	token    string
	username string
}

func NewSessionService(backend ports.UserBackend, cache *LocalCache, decoder ports.TokenDecoder, log zerolog.Logger) *SessionService {
	return &SessionService{
		backend: backend,
		cache:   cache,
		decoder: decoder,
		log:     log,
		now:     time.Now,
	}
}

var (
	_ ports.SessionService = (*SessionService)(nil)
	_ ports.TokenSource    = (*SessionService)(nil)
)

// Login posts the credentials and, on success, writes the token and user
// through to the local cache.
func (s *SessionService) Login(ctx context.Context, creds domain.Credentials) (string, *domain.User, error) {
	if err := validation.Struct(creds); err != nil {
		return "", nil, domain.NewValidationError(err.Error())
	}

	resp, err := s.backend.Login(ctx, creds)
	if err != nil {
		return "", nil, fmt.Errorf("login: %w", err)
	}
	if resp.Token == "" {
		return "", nil, fmt.Errorf("login: %w", domain.ErrMissingToken)
	}
	if resp.User == nil {
		return "", nil, fmt.Errorf("login: %w", domain.ErrMissingUser)
	}

	if err := s.SaveToken(ctx, resp.Token); err != nil {
		return "", nil, fmt.Errorf("login: %w", err)
	}
	if err := s.AddUserToCache(ctx, *resp.User); err != nil {
		return "", nil, fmt.Errorf("login: %w", err)
	}

	s.mu.Lock()
	s.username = resp.User.Username
	s.mu.Unlock()

	s.log.Info().Str("username", resp.User.Username).Msg("session started")
	return resp.Token, resp.User, nil
}

// Register creates an account. The returned user is only used to greet the
// new user; the session stays Anonymous.
func (s *SessionService) Register(ctx context.Context, reg domain.Registration) (*domain.User, error) {
	if err := validation.Struct(reg); err != nil {
		return nil, domain.NewValidationError(err.Error())
	}

	user, err := s.backend.Register(ctx, reg)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("register: %w", domain.ErrMissingUser)
	}

	s.log.Info().Str("username", user.Username).Msg("account registered")
	return user, nil
}

// Logout forgets the token and the cached user, token and snapshot. It makes
// no network call and is safe to repeat.
func (s *SessionService) Logout(ctx context.Context) {
	s.mu.Lock()
	s.token = ""
	s.username = ""
	s.mu.Unlock()

	if err := s.cache.Clear(ctx); err != nil {
		s.log.Warn().Err(err).Msg("failed to clear local cache on logout")
	}
}

// IsSessionValid is the navigation guard predicate. It reloads the token and
// checks it locally: a subject must be present and the token unexpired. Any
// other outcome logs the session out. Tampered tokens pass this check and
// are only rejected by the backend.
func (s *SessionService) IsSessionValid(ctx context.Context) bool {
	if err := s.LoadToken(ctx); err != nil {
		s.log.Warn().Err(err).Msg("session check: token unavailable")
		s.Logout(ctx)
		return false
	}

	token := s.Token()
	if token == "" {
		s.Logout(ctx)
		return false
	}

	claims, err := s.decoder.Decode(token)
	if err != nil {
		s.log.Debug().Err(err).Msg("session check: malformed token")
		s.Logout(ctx)
		return false
	}
	if claims.Subject == "" || claims.Expired(s.now()) {
		s.log.Debug().Str("subject", claims.Subject).Time("expires_at", claims.ExpiresAt).Msg("session check: token rejected")
		s.Logout(ctx)
		return false
	}

	s.mu.Lock()
	s.username = claims.Subject
	s.mu.Unlock()
	return true
}

// SaveToken stores token in memory and in the local cache.
func (s *SessionService) SaveToken(ctx context.Context, token string) error {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()

	return s.cache.SetToken(ctx, token)
}

// LoadToken refreshes the in-memory token from the local cache. The store is
// authoritative: an absent entry empties the in-memory token, so a logout by
// another process sharing the store is observed.
func (s *SessionService) LoadToken(ctx context.Context) error {
	token, err := s.cache.Token(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	return nil
}

// Token returns the in-memory token without touching the store.
func (s *SessionService) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// CurrentToken reloads and returns the token; used to authenticate requests.
func (s *SessionService) CurrentToken(ctx context.Context) (string, error) {
	if err := s.LoadToken(ctx); err != nil {
		return "", err
	}
	return s.Token(), nil
}

// LoggedInUsername is the subject of the last validated token.
func (s *SessionService) LoggedInUsername() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.username
}

func (s *SessionService) AddUserToCache(ctx context.Context, user domain.User) error {
	return s.cache.SetUser(ctx, user)
}

// UserFromCache returns the cached logged-in user, or nil.
func (s *SessionService) UserFromCache(ctx context.Context) (*domain.User, error) {
	return s.cache.User(ctx)
}
