package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/kvgate/internal/flagx"
	"github.com/dmitrijs2005/kvgate/internal/timex"
)

// JsonConfig is used only for unmarshalling the config file.
type JsonConfig struct {
	ServerEndpointAddr string         `json:"server_endpoint_addr"`
	APIKey             string         `json:"api_key"`
	RequestTimeout     timex.Duration `json:"request_timeout"`
}

// parseJson overlays Config with the file named by -c/-config. Empty fields
// keep their current value. Read or decode errors panic.
func parseJson(cfg *Config) {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerEndpointAddr != "" {
		cfg.ServerEndpointAddr = jc.ServerEndpointAddr
	}
	if jc.APIKey != "" {
		cfg.APIKey = jc.APIKey
	}
	if jc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
}
