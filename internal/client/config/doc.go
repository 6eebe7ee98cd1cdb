// Package config loads settings for the kvgate CLI client: defaults, then an
// optional JSON file (-c/-config), then command-line flags.
package config
