// Package settings reads server-wide switches from the configuration table.
package settings

import "context"

// APIEnabledKey names the global on/off switch of the gateway.
const APIEnabledKey = "api_enabled"

type Repository interface {
	// Get returns the value stored under key; common.ErrorNotFound when absent.
	Get(ctx context.Context, key string) (string, error)
}
