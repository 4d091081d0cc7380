package repository

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"sweetshop/internal/config"
	"sweetshop/internal/db"
)

// Store bundles the repositories of one storage backend.
type Store struct {
	Users  UserRepository
	Sweets SweetRepository
	close  func() error
}

// Close releases the backend connection.
func (s *Store) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// OpenStore connects the backend named by cfg.DBDriver and prepares its schema.
func OpenStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Store, error) {
	if cfg.DBDriver == "mongo" {
		mdb, err := db.NewMongo(ctx, cfg.DBDSN, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		if cfg.ResetDB {
			if err := ResetMongo(ctx, mdb); err != nil {
				return nil, err
			}
		}
		if err := EnsureMongoIndexes(ctx, mdb); err != nil {
			return nil, err
		}
		return &Store{
			Users:  NewMongoUserRepository(mdb),
			Sweets: NewMongoSweetRepository(mdb),
			close:  func() error { return mdb.Client().Disconnect(context.Background()) },
		}, nil
	}

	gormDB, err := db.Open(cfg.DBDriver, cfg.DBDSN, log)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(gormDB, cfg.ResetDB); err != nil {
		return nil, err
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("sql handle: %w", err)
	}
	return &Store{
		Users:  NewUserRepository(gormDB),
		Sweets: NewSweetRepository(gormDB),
		close:  sqlDB.Close,
	}, nil
}
