package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/kvgate/internal/flagx"
	"github.com/dmitrijs2005/kvgate/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Durations accept
// either "10s" style strings or integer nanoseconds.
type JsonConfig struct {
	EndpointAddrHTTP string         `json:"endpoint_addr_http"`
	EndpointAddrGRPC string         `json:"endpoint_addr_grpc"`
	DatabaseDSN      string         `json:"database_dsn"`
	SecretKey        string         `json:"secret_key"`
	RequestTimeout   timex.Duration `json:"request_timeout"`
	LogLevel         string         `json:"log_level"`
	RunMigrations    bool           `json:"run_migrations"`
}

// parseJson overlays values from the file given with -c/-config. Fields
// missing from the file keep their current value. An unreadable or invalid
// file panics.
func parseJson(config *Config) {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.LogLevel, c.LogLevel)
	if c.RequestTimeout.Duration > 0 {
		config.RequestTimeout = c.RequestTimeout.Duration
	}
	if c.RunMigrations {
		config.RunMigrations = true
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
