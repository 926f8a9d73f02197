package repository

import (
	"context"

	"devconnector/internal/observability"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"gorm.io/gorm"
)

// Store bundles the repositories backed by one storage driver.
type Store struct {
	Users  UserRepository
	Posts  PostRepository
	Driver string

	ping  func(ctx context.Context) error
	close func(ctx context.Context) error
}

// NewGormStore wires user and post repositories onto a relational database.
func NewGormStore(db *gorm.DB) *Store {
	return &Store{
		Users:  NewUserRepository(db),
		Posts:  NewPostRepository(db),
		Driver: db.Dialector.Name(),
		ping: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
		close: func(context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	}
}

// NewMongoStore wires user and post repositories onto a MongoDB database.
func NewMongoStore(client *mongo.Client, db *mongo.Database) *Store {
	return &Store{
		Users:  NewMongoUserRepository(db),
		Posts:  NewMongoPostRepository(db),
		Driver: "mongodb",
		ping: func(ctx context.Context) error {
			return client.Ping(ctx, readpref.Primary())
		},
		close: client.Disconnect,
	}
}

// Ping checks that the backing store is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if s.ping == nil {
		return nil
	}
	return s.ping(ctx)
}

// Close releases the underlying connection pool.
func (s *Store) Close(ctx context.Context) error {
	if s.close == nil {
		return nil
	}
	return s.close(ctx)
}

// assignID sets *id to a fresh UUID unless the caller already chose one.
func assignID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}

// instrument times a storage call and wraps it in a client span.
// The returned func must be deferred with a pointer to the call's error.
func instrument(ctx context.Context, timer *observability.QueryTimer, system, op, table string) (context.Context, func(*error)) {
	done := timer.Track(op, table)
	ctx, span := observability.StartStoreSpan(ctx, system, op, table)
	return ctx, func(err *error) {
		observability.EndSpan(span, *err)
		done()
	}
}
