package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/usermgmt/admin-console/internal/core/domain"
	"github.com/usermgmt/admin-console/internal/core/ports"
)

// LocalCache is the typed view of the key-value store: the auth token, the
// logged-in user and the user directory snapshot. Values are JSON, except
// the token which is stored raw.
type LocalCache struct {
	store ports.KeyValueStore
}

func NewLocalCache(store ports.KeyValueStore) *LocalCache {
	return &LocalCache{store: store}
}

// Token returns the stored token, or "" when none is stored.
func (c *LocalCache) Token(ctx context.Context) (string, error) {
	token, err := c.store.Get(ctx, domain.KeyToken)
	if errors.Is(err, ports.ErrKeyNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("local cache: read token: %w", err)
	}
	return token, nil
}

func (c *LocalCache) SetToken(ctx context.Context, token string) error {
	if err := c.store.Set(ctx, domain.KeyToken, token); err != nil {
		return fmt.Errorf("local cache: write token: %w", err)
	}
	return nil
}

// User returns the cached logged-in user, or nil when none is cached.
func (c *LocalCache) User(ctx context.Context) (*domain.User, error) {
	var user *domain.User
	found, err := c.getJSON(ctx, domain.KeyUser, &user)
	if err != nil || !found {
		return nil, err
	}
	return user, nil
}

func (c *LocalCache) SetUser(ctx context.Context, user domain.User) error {
	return c.setJSON(ctx, domain.KeyUser, user)
}

// Users returns the directory snapshot, or nil when none is cached.
func (c *LocalCache) Users(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	if _, err := c.getJSON(ctx, domain.KeyUsers, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// SetUsers replaces the snapshot wholesale.
func (c *LocalCache) SetUsers(ctx context.Context, users []domain.User) error {
	return c.setJSON(ctx, domain.KeyUsers, users)
}

// Clear removes the token, the user and the snapshot. Every key is attempted
// even if an earlier removal fails.
func (c *LocalCache) Clear(ctx context.Context) error {
	var errs []error
	for _, key := range []string{domain.KeyUser, domain.KeyToken, domain.KeyUsers} {
		if err := c.store.Remove(ctx, key); err != nil {
			errs = append(errs, fmt.Errorf("local cache: remove %s: %w", key, err))
		}
	}
	return errors.Join(errs...)
}

// Ping checks that the underlying store is reachable.
func (c *LocalCache) Ping(ctx context.Context) error {
	return c.store.Ping(ctx)
}

func (c *LocalCache) getJSON(ctx context.Context, key string, out any) (bool, error) {
	raw, err := c.store.Get(ctx, key)
	if errors.Is(err, ports.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("local cache: read %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return false, fmt.Errorf("local cache: decode %s: %w", key, err)
	}
	return true, nil
}

func (c *LocalCache) setJSON(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("local cache: encode %s: %w", key, err)
	}
	if err := c.store.Set(ctx, key, string(data)); err != nil {
		return fmt.Errorf("local cache: write %s: %w", key, err)
	}
	return nil
}
