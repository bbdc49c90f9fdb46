package main

import (
	"context"
	"fmt"

	"github.com/marslan-786/group-guard/internal/config"
	"github.com/marslan-786/group-guard/internal/mute"
	"github.com/marslan-786/group-guard/internal/mute/jsonfile"
	"github.com/marslan-786/group-guard/internal/mute/mongostore"
	"github.com/marslan-786/group-guard/internal/mute/redisstore"
)

// openPersister builds the configured mute backend and a func releasing its
// connection.
func openPersister(ctx context.Context, cfg config.Config) (mute.Persister, func(), error) {
	switch cfg.MuteBackend {
	case config.BackendFile:
		return jsonfile.New(cfg.MuteFile), func() {}, nil

	case config.BackendRedis:
		rdb, err := redisstore.Dial(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return redisstore.New(rdb, cfg.RedisKey), func() { _ = rdb.Close() }, nil

	case config.BackendMongo:
		client, err := mongostore.Connect(ctx, cfg.MongoURI)
		if err != nil {
			return nil, nil, err
		}
		coll := client.Database(cfg.MongoDatabase).Collection(cfg.MongoCollection)
		return mongostore.New(coll), func() { _ = client.Disconnect(context.Background()) }, nil

	case config.BackendMemory:
		return mute.NewMemoryPersister(nil), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown mute backend %q", cfg.MuteBackend)
	}
}
