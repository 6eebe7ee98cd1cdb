// Package users declares read access to end-user records.
package users

import (
	"context"

	"github.com/dmitrijs2005/kvgate/internal/server/models"
)

type Repository interface {
	// FindByEmail returns every user registered with the email, possibly none.
	FindByEmail(ctx context.Context, email string) ([]*models.User, error)
}
