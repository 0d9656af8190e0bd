package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"booksvc/internal/book"
	"booksvc/internal/config"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const connectTimeout = 10 * time.Second

// CloseFunc releases the store client.
type CloseFunc func(ctx context.Context) error

// OpenRepository connects to the configured store once and returns the book
// repository backed by it.
func OpenRepository(ctx context.Context, cfg config.Config) (book.Repository, CloseFunc, error) {
	switch cfg.StoreDriver {
	case config.DriverMongo:
		client, err := connectMongo(ctx, cfg.MongoURI)
		if err != nil {
			return nil, nil, err
		}
		coll := client.Database(cfg.MongoDatabase).Collection(cfg.MongoCollection)
		slog.Info("mongo connection OK", "database", cfg.MongoDatabase, "collection", cfg.MongoCollection)
		return book.NewMongoRepo(coll, cfg.StoreTimeout), client.Disconnect, nil
	case config.DriverPostgres:
		pool, err := openPostgres(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("database connection OK", "dsn", redactDSN(cfg.PostgresDSN))
		return book.NewPostgresRepo(pool, cfg.StoreTimeout), func(context.Context) error {
			pool.Close()
			return nil
		}, nil
	case config.DriverMemory:
		slog.Warn("using in-memory store, data is lost on exit")
		return book.NewMemoryRepo(), func(context.Context) error { return nil }, nil
	}
	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

func connectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, nil
}

func openPostgres(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create db pool: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database (%s): %w", redactDSN(dsn), err)
	}
	return pool, nil
}

func redactDSN(dsn string) string {
	const marker = "://"
	start := strings.Index(dsn, marker)
	if start < 0 {
		return dsn
	}
	start += len(marker)
	end := strings.Index(dsn[start:], "@")
	if end < 0 {
		return dsn
	}
	return dsn[:start] + "***" + dsn[start+end:]
}
