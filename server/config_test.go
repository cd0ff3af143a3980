package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tkrehbiel/activitynode/server/storage"
)

func TestReadConfig(t *testing.T) {
	b := []byte(`
	{
		"url": "https://testhost",
		"server": {
		  "host": "testhost",
		  "certificate": "testcert",
		  "privatekey": "testkey",
		  "port": 234,
		  "accept_all": true,
		  "trace": true
		},
		"storage": {
		  "driver": "redis",
		  "connection": "localhost:6379",
		  "table": "testtable",
		  "cache_ttl_seconds": 30,
		  "cache_size": 100
		},
		"outbox": {
		  "targets": ["https://remote/inbox"]
		},
		"users": [
		  {
			"name": "testuser",
			"type": "testtype",
			"displayName": "testdisplayname",
			"outboxSource": "testurl"
		  }
		]
	  }`)
	cfg, err := ReadConfig(b)
	require.NoError(t, err)

	expected := Config{
		URL: "https://testhost",
		Server: serverConfig{
			HostName:    "testhost",
			Certificate: "testcert",
			PrivateKey:  "testkey",
			Port:        234,
			AcceptAll:   true,
			Trace:       true,
		},
		Storage: storageConfig{
			Driver:     "redis",
			Connection: "localhost:6379",
			Table:      "testtable",
			CacheTTL:   30,
			CacheSize:  100,
		},
		Outbox: outboxConfig{
			Targets: []string{"https://remote/inbox"},
		},
		Users: []userConfig{
			{
				Name:        "testuser",
				Type:        "testtype",
				DisplayName: "testdisplayname",
				SourceURL:   "testurl",
			},
		},
	}
	assert.Equal(t, expected, cfg)
	assert.Equal(t, "testtable", cfg.Table())
	assert.Equal(t, "testhost", cfg.PublicHost())
	assert.True(t, cfg.Server.useTLS())

	opts := cfg.StorageOptions()
	assert.Equal(t, storage.DriverRedis, opts.Driver)
	assert.Equal(t, 30*time.Second, opts.CacheTTL)
}

func TestReadConfig_Invalid(t *testing.T) {
	_, err := ReadConfig([]byte(`{ nope`))
	assert.Error(t, err)
}

func TestConfig_Defaults(t *testing.T) {
	var cfg Config
	assert.Equal(t, DefaultTable, cfg.Table())
	assert.Equal(t, DefaultPort, cfg.ListenPort())
	opts := cfg.StorageOptions()
	assert.Equal(t, storage.DriverSQLite, opts.Driver)
	assert.Equal(t, DefaultConnection, opts.Connection)
	assert.Zero(t, opts.CacheTTL)
}

func TestConfig_ApplyEnv(t *testing.T) {
	t.Setenv("ACTIVITYNODE_URL", "https://envhost")
	t.Setenv("ACTIVITYNODE_SERVER_PORT", "9000")
	t.Setenv("ACTIVITYNODE_STORAGE_TABLE", "envtable")
	t.Setenv("ACTIVITYNODE_OUTBOX_TARGETS", "https://a/inbox,https://b/inbox")

	cfg, err := ReadConfig([]byte(`{"url": "https://filehost", "server": {"host": "filehost", "port": 1}}`))
	require.NoError(t, err)
	require.NoError(t, cfg.ApplyEnv())

	assert.Equal(t, "https://envhost", cfg.URL)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "filehost", cfg.Server.HostName) // not overridden
	assert.Equal(t, "envtable", cfg.Table())
	assert.Equal(t, []string{"https://a/inbox", "https://b/inbox"}, cfg.Outbox.Targets)
}
