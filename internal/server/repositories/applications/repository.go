// Package applications declares the store contract for registered API
// consumers and its PostgreSQL implementation.
package applications

import (
	"context"

	"github.com/dmitrijs2005/kvgate/internal/server/models"
)

// Repository gives read access to applications plus the request counter.
type Repository interface {
	// FindByAPIKey returns common.ErrorNotFound when no application has the key.
	FindByAPIKey(ctx context.Context, apiKey string) (*models.Application, error)

	// IncrementRequestCount bumps the counter in a single statement.
	IncrementRequestCount(ctx context.Context, apiKey string) error
}
