package storage

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Gateway is a key-addressed store of JSON-like records grouped into tables.
// Put overwrites any existing record with the same id. Get returns nil, nil when nothing is stored.
type Gateway interface {
	Open() error
	Close()
	Put(ctx context.Context, table string, item Record) error
	Get(ctx context.Context, table string, id string) (Record, error)
}

const (
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
)

var (
	ErrNoID    = errors.New("record has no id")
	ErrNotOpen = errors.New("storage has not been opened")
)

// recordKey addresses a record across tables
func recordKey(table, id string) string {
	return table + ":" + id
}

// Options selects and configures a Gateway implementation
type Options struct {
	Driver     string
	Connection string // sqlite connection string or redis address
	Password   string
	DB         int
	CacheTTL   time.Duration // zero disables the read cache
	CacheSize  int64
}

// New builds an unopened Gateway from options
func New(opts Options) (Gateway, error) {
	var g Gateway
	switch opts.Driver {
	case "", DriverSQLite:
		g = NewSQLiteGateway(opts.Connection)
	case DriverRedis:
		g = NewRedisGateway(opts.Connection, opts.Password, opts.DB)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", opts.Driver)
	}
	if opts.CacheTTL > 0 {
		g = NewCachedGateway(g, opts.CacheTTL, opts.CacheSize)
	}
	return g, nil
}
