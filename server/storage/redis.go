package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisGateway stores each record as a JSON string under "table:id"
type redisGateway struct {
	options *redis.Options
	client  *redis.Client
}

func (g *redisGateway) Open() error {
	if g.client != nil {
		g.Close()
	}
	client := redis.NewClient(g.options)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return fmt.Errorf("connecting to redis [%s]: %w", g.options.Addr, err)
	}
	g.client = client
	return nil
}

func (g *redisGateway) Close() {
	if g.client != nil {
		g.client.Close()
		g.client = nil
	}
}

func (g *redisGateway) Put(ctx context.Context, table string, item Record) error {
	if g.client == nil {
		return ErrNotOpen
	}
	id := item.ID()
	if id == "" {
		return ErrNoID
	}
	b, err := item.JSON()
	if err != nil {
		return fmt.Errorf("marshaling %s record %s: %w", table, id, err)
	}
	if err := g.client.Set(ctx, recordKey(table, id), b, 0).Err(); err != nil {
		return fmt.Errorf("error saving %s record %s: %w", table, id, err)
	}
	return nil
}

func (g *redisGateway) Get(ctx context.Context, table string, id string) (Record, error) {
	if g.client == nil {
		return nil, ErrNotOpen
	}
	b, err := g.client.Get(ctx, recordKey(table, id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("error finding %s record %s: %w", table, id, err)
	}
	return NewRecord(b)
}

func NewRedisGateway(addr, password string, db int) Gateway {
	return &redisGateway{
		options: &redis.Options{
			Addr:         addr,
			Password:     password,
			DB:           db,
			PoolSize:     10,
			MinIdleConns: 2,
			MaxRetries:   3,
		},
	}
}
