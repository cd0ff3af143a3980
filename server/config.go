package server

import (
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/tkrehbiel/activitynode/server/storage"
)

const (
	DefaultTable      = "ActivityPubTable"
	DefaultConnection = "activitynode.db"
	DefaultPort       = 8080
	EnvPrefix         = "ACTIVITYNODE_"
)

type serverConfig struct {
	HostName    string `json:"host" env:"HOST"`
	Certificate string `json:"certificate" env:"CERTIFICATE"`
	PrivateKey  string `json:"privatekey" env:"PRIVATE_KEY"`
	Port        int    `json:"port" env:"PORT"`
	AcceptAll   bool   `json:"accept_all" env:"ACCEPT_ALL"` // for debugging
	Trace       bool   `json:"trace" env:"TRACE"`
}

func (s serverConfig) useTLS() bool {
	return s.Certificate != "" && s.PrivateKey != ""
}

type storageConfig struct {
	Driver     string `json:"driver" env:"DRIVER"`
	Connection string `json:"connection" env:"CONNECTION"`
	Password   string `json:"password" env:"PASSWORD"`
	DB         int    `json:"db" env:"DB"`
	Table      string `json:"table" env:"TABLE"`
	CacheTTL   int    `json:"cache_ttl_seconds" env:"CACHE_TTL_SECONDS"`
	CacheSize  int64  `json:"cache_size" env:"CACHE_SIZE"`
}

type outboxConfig struct {
	Targets []string `json:"targets" env:"TARGETS" envSeparator:","`
}

type userConfig struct {
	Name        string `json:"name"`
	Type        string `json:"type,omitempty"`
	DisplayName string `json:"displayName"`
	SourceURL   string `json:"outboxSource"`
}

type Config struct {
	URL     string        `json:"url" env:"URL"` // public-facing URL
	Server  serverConfig  `json:"server" envPrefix:"SERVER_"`
	Storage storageConfig `json:"storage" envPrefix:"STORAGE_"`
	Outbox  outboxConfig  `json:"outbox" envPrefix:"OUTBOX_"`
	Users   []userConfig  `json:"users"`
}

func (c Config) PublicHost() string {
	u, err := url.Parse(c.URL)
	if err != nil {
		return ""
	}
	return u.Host
}

// Table is the storage table every inbox write goes to
func (c Config) Table() string {
	if c.Storage.Table == "" {
		return DefaultTable
	}
	return c.Storage.Table
}

func (c Config) StorageOptions() storage.Options {
	opts := storage.Options{
		Driver:     c.Storage.Driver,
		Connection: c.Storage.Connection,
		Password:   c.Storage.Password,
		DB:         c.Storage.DB,
		CacheTTL:   time.Duration(c.Storage.CacheTTL) * time.Second,
		CacheSize:  c.Storage.CacheSize,
	}
	if opts.Driver == "" {
		opts.Driver = storage.DriverSQLite
	}
	if opts.Connection == "" && opts.Driver == storage.DriverSQLite {
		opts.Connection = DefaultConnection
	}
	return opts
}

func (c Config) ListenPort() int {
	if c.Server.Port == 0 {
		return DefaultPort
	}
	return c.Server.Port
}

// ReadConfig parses a json config file
func ReadConfig(b []byte) (config Config, err error) {
	if uErr := json.Unmarshal(b, &config); uErr != nil {
		return config, uErr
	}
	return config, nil
}

// ApplyEnv overrides config values with ACTIVITYNODE_* environment variables that are set
func (c *Config) ApplyEnv() error {
	if err := env.ParseWithOptions(c, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
