package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/krobus00/symbol-store/internal/entity"
	"github.com/redis/go-redis/v9"
)

const defaultRedisPrefix = "symbol-store"

// Redis keeps each document as a plain string value under prefix:path.
type Redis struct {
	client *redis.Client
	prefix string
}

func NewRedis(client *redis.Client, prefix string) *Redis {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = defaultRedisPrefix
	}

	return &Redis{client: client, prefix: prefix}
}

func (r *Redis) Key(path string) string {
	return r.prefix + ":" + path
}

func (r *Redis) Read(ctx context.Context, path string) ([]byte, error) {
	data, err := r.client.Get(ctx, r.Key(path)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("read %s: %w", path, entity.ErrNotFound)
		}
		return nil, fmt.Errorf("read %s: %w: %w", path, entity.ErrStorage, err)
	}

	return data, nil
}

func (r *Redis) Write(ctx context.Context, path string, data []byte) error {
	if err := r.client.Set(ctx, r.Key(path), data, 0).Err(); err != nil {
		return fmt.Errorf("write %s: %w: %w", path, entity.ErrStorage, err)
	}

	return nil
}

func (r *Redis) Exists(ctx context.Context, path string) (bool, error) {
	count, err := r.client.Exists(ctx, r.Key(path)).Result()
	if err != nil {
		return false, fmt.Errorf("exists %s: %w: %w", path, entity.ErrStorage, err)
	}

	return count > 0, nil
}
