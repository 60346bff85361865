package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/gogotex/collections/internal/config"
	"github.com/gogotex/collections/internal/database"
	"github.com/gogotex/collections/pkg/logger"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/afero"
	"go.mongodb.org/mongo-driver/mongo"
)

// Backend is an opened engine plus whatever must be released on shutdown.
type Backend struct {
	Engine *Namespaced
	// Redis is set when the redis engine is selected, so other features can share the client.
	Redis *redis.Client
	close func(context.Context) error
}

func (b *Backend) Close(ctx context.Context) error {
	if b == nil || b.close == nil {
		return nil
	}
	return b.close(ctx)
}

const connectAttempts = 5

// Open builds the engine selected by cfg.Storage.Engine, wrapped in the
// configured namespace. Remote engines are retried with exponential backoff
// to tolerate startup races.
func Open(ctx context.Context, cfg *config.Config) (*Backend, error) {
	b := &Backend{}
	var e Engine
	switch cfg.Storage.Engine {
	case config.EngineMemory, "":
		e = NewMemoryEngine()
	case config.EngineRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		err := retry(ctx, "redis", func() error { return client.Ping(ctx).Err() })
		if err != nil {
			_ = client.Close()
			return nil, err
		}
		e = NewRedisEngine(client)
		b.Redis = client
		b.close = func(context.Context) error { return client.Close() }
	case config.EngineMongo:
		var client *mongo.Client
		err := retry(ctx, "mongo", func() error {
			c, err := database.ConnectMongo(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout)
			client = c
			return err
		})
		if err != nil {
			return nil, err
		}
		e = NewMongoEngine(client.Database(cfg.MongoDB.Database).Collection(cfg.MongoDB.Collection))
		b.close = client.Disconnect
	case config.EngineFile:
		fe, err := NewFileEngine(afero.NewOsFs(), cfg.Storage.Dir)
		if err != nil {
			return nil, err
		}
		e = fe
	case config.EngineMinIO:
		var me *MinIOEngine
		err := retry(ctx, "minio", func() error {
			var err error
			me, err = NewMinIOEngine(ctx, MinIOOptions{
				Endpoint:  cfg.MinIO.Endpoint,
				AccessKey: cfg.MinIO.AccessKey,
				SecretKey: cfg.MinIO.SecretKey,
				UseSSL:    cfg.MinIO.UseSSL,
				Bucket:    cfg.MinIO.Bucket,
			})
			return err
		})
		if err != nil {
			return nil, err
		}
		e = me
	default:
		return nil, fmt.Errorf("unknown storage engine %q", cfg.Storage.Engine)
	}
	b.Engine = WithNamespace(e, cfg.Storage.Namespace)
	logger.Infof("storage engine %s ready (namespace %q)", e.Name(), cfg.Storage.Namespace)
	return b, nil
}

func retry(ctx context.Context, what string, fn func() error) error {
	backoff := time.Second
	var err error
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		logger.Warnf("attempt %d/%d: failed to connect to %s: %v", attempt, connectAttempts, what, err)
		if attempt == connectAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return fmt.Errorf("connect %s after %d attempts: %w", what, connectAttempts, err)
}
