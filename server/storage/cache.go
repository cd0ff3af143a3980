package storage

import (
	"context"
	"time"

	"github.com/karlseguin/ccache/v3"
)

// cachedGateway keeps recently read records in memory.
// A Put drops the cached copy so the next Get reads the new record.
type cachedGateway struct {
	Gateway
	cache *ccache.Cache[Record]
	ttl   time.Duration
}

func (g *cachedGateway) Close() {
	g.cache.Clear()
	g.Gateway.Close()
}

func (g *cachedGateway) Put(ctx context.Context, table string, item Record) error {
	err := g.Gateway.Put(ctx, table, item)
	g.cache.Delete(recordKey(table, item.ID()))
	return err
}

func (g *cachedGateway) Get(ctx context.Context, table string, id string) (Record, error) {
	key := recordKey(table, id)
	if item := g.cache.Get(key); item != nil && !item.Expired() {
		return item.Value(), nil
	}
	r, err := g.Gateway.Get(ctx, table, id)
	if err != nil {
		return nil, err
	}
	if r != nil {
		g.cache.Set(key, r, g.ttl)
	}
	return r, nil
}

// NewCachedGateway wraps a gateway with a read cache. Absent records are not cached.
func NewCachedGateway(inner Gateway, ttl time.Duration, size int64) Gateway {
	cfg := ccache.Configure[Record]()
	if size > 0 {
		cfg = cfg.MaxSize(size)
	}
	return &cachedGateway{
		Gateway: inner,
		cache:   ccache.New(cfg),
		ttl:     ttl,
	}
}
