// Package tokens declares the store contract for issued session tokens.
package tokens

import (
	"context"

	"github.com/dmitrijs2005/kvgate/internal/server/models"
)

// Repository stores and looks up session tokens. Tokens are never updated.
type Repository interface {
	// Create persists token and fills in its ID.
	Create(ctx context.Context, token *models.Token) (*models.Token, error)

	// Find looks a token up by value; common.ErrorNotFound when absent.
	Find(ctx context.Context, token string) (*models.Token, error)
}
