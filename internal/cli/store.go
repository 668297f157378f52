package cli

import (
	"context"
	"fmt"

	"github.com/usermgmt/admin-console/internal/core/ports"
	"github.com/usermgmt/admin-console/internal/infrastructure/config"
	mongostore "github.com/usermgmt/admin-console/internal/infrastructure/db/mongo"
	redisstore "github.com/usermgmt/admin-console/internal/infrastructure/db/redis"
	"github.com/usermgmt/admin-console/internal/infrastructure/localstore"
)

// Store is the configured KeyValueStore together with its driver name and
// the function that releases it.
type Store struct {
	ports.KeyValueStore
	Driver string
	close  func(ctx context.Context) error
}

func (s *Store) Close(ctx context.Context) error {
	if s.close == nil {
		return nil
	}
	return s.close(ctx)
}

// OpenStore builds the store selected by STORE_DRIVER.
func OpenStore(ctx context.Context, cfg *config.Config) (*Store, error) {
	switch cfg.Store.Driver {
	case config.StoreMemory:
		return &Store{KeyValueStore: localstore.NewMemory(), Driver: cfg.Store.Driver}, nil

	case config.StoreFile:
		f, err := localstore.NewFile(cfg.Store.Path, localstore.WithSecret(cfg.Store.Secret))
		if err != nil {
			return nil, fmt.Errorf("open file store: %w", err)
		}
		return &Store{KeyValueStore: f, Driver: cfg.Store.Driver}, nil

	case config.StoreRedis:
		client, err := redisstore.Connect(ctx, redisstore.Config{
			Addr: cfg.Redis.Addr,
			DB:   cfg.Redis.DB,
		})
		if err != nil {
			return nil, fmt.Errorf("open redis store: %w", err)
		}
		rs := redisstore.NewStore(client, cfg.Redis.Prefix)
		return &Store{
			KeyValueStore: rs,
			Driver:        cfg.Store.Driver,
			close:         func(context.Context) error { return rs.Close() },
		}, nil

	case config.StoreMongo:
		_, db, err := mongostore.Connect(ctx, mongostore.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
		})
		if err != nil {
			return nil, fmt.Errorf("open mongo store: %w", err)
		}
		ms := mongostore.NewStore(db, cfg.Mongo.Collection)
		return &Store{KeyValueStore: ms, Driver: cfg.Store.Driver, close: ms.Close}, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
}
