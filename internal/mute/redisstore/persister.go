// Package redisstore keeps the mute registry as one JSON value in redis.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/marslan-786/group-guard/internal/mute"
	"github.com/redis/go-redis/v9"
)

const DefaultKey = "groupguard:muted"

type Persister struct {
	rdb *redis.Client
	key string
}

var _ mute.Persister = (*Persister)(nil)

func New(rdb *redis.Client, key string) *Persister {
	if key == "" {
		key = DefaultKey
	}
	return &Persister{rdb: rdb, key: key}
}

// Dial parses a redis:// URL and checks the server answers.
func Dial(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}

func (p *Persister) Load(ctx context.Context) (mute.Registry, error) {
	val, err := p.rdb.Get(ctx, p.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return mute.Registry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", p.key, err)
	}

	reg := mute.Registry{}
	if err := json.Unmarshal(val, &reg); err != nil {
		return nil, fmt.Errorf("decode %s: %w", p.key, err)
	}
	return reg, nil
}

// Save replaces the stored value. The key never expires.
func (p *Persister) Save(ctx context.Context, reg mute.Registry) error {
	payload, err := json.Marshal(reg)
	if err != nil {
		return fmt.Errorf("encode mute registry: %w", err)
	}
	if err := p.rdb.Set(ctx, p.key, payload, 0).Err(); err != nil {
		return fmt.Errorf("set %s: %w", p.key, err)
	}
	return nil
}
