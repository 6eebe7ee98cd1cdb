package config

import "time"

// Config holds runtime settings for the kvgate CLI.
//
// Fields:
//   - ServerEndpointAddr: host:port of the gateway's gRPC endpoint.
//   - APIKey: key of the application the client acts for.
//   - RequestTimeout: deadline of each call.
type Config struct {
	ServerEndpointAddr string
	APIKey             string
	RequestTimeout     time.Duration
}

// LoadDefaults populates c with defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.APIKey = ""
	c.RequestTimeout = 10 * time.Second
}

// LoadConfig applies defaults, then the JSON file, then flags. Later sources
// take precedence.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
