package store

import "time"

// Config selects and configures backends, AppName tags connections
type Config struct {
	AppName string

	PG PGConfig
	CH CHConfig
	KV KVConfig
}

// PGConfig configures the postgres pool
type PGConfig struct {
	Enabled     bool
	URL         string
	MaxConns    int32
	LogSQL      bool
	SlowQueryMs int

	// ConnectRetries and PingTimeout guard boot, zero means the pg package defaults
	ConnectRetries int
	PingTimeout    time.Duration
}

// CHConfig configures clickhouse
type CHConfig struct {
	Enabled bool
	URL     string
	Role    string
}

// KVConfig configures the embedded badger store
type KVConfig struct {
	Enabled  bool
	Path     string
	InMemory bool
}
