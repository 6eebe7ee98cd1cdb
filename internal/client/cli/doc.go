// Package cli is the interactive shell of the kvgate client: it logs a user
// in, then saves, reads and deletes values through the gateway.
package cli
