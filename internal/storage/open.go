package storage

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const (
	DriverMemory   = "memory"
	DriverRedis    = "redis"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

type Options struct {
	Driver        string
	RedisAddr     string
	RedisPassword string
	SQLitePath    string
	PostgresDSN   string
	MongoURI      string
	MongoDBName   string
}

// Open builds the store selected by opts.Driver and prepares its schema.
func Open(ctx context.Context, opts Options) (KeyValueStore, error) {
	switch opts.Driver {
	case DriverMemory, "":
		return NewMemoryStore(), nil

	case DriverRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     opts.RedisAddr,
			Password: opts.RedisPassword,
			DB:       0,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("redis connection failed: %w", err)
		}
		return NewRedisStore(client), nil

	case DriverSQLite, DriverPostgres:
		var (
			store *SQLStore
			err   error
		)
		if opts.Driver == DriverSQLite {
			store, err = NewSQLiteStore(opts.SQLitePath)
		} else {
			store, err = NewPostgresStore(opts.PostgresDSN)
		}
		if err != nil {
			return nil, err
		}
		if err := store.RunMigrations(); err != nil {
			store.Close()
			return nil, err
		}
		return store, nil

	case DriverMongo:
		db, err := ConnectMongoDB(ctx, opts.MongoURI, opts.MongoDBName)
		if err != nil {
			return nil, err
		}
		store := NewMongoStore(db)
		if err := store.CreateIndexes(ctx); err != nil {
			store.Close()
			return nil, err
		}
		return store, nil
	}

	return nil, fmt.Errorf("unknown storage driver %q", opts.Driver)
}
