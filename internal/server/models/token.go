package models

import "time"

// Token is an issued session token. Expiry is derived from CreatedAt and
// is never stored.
type Token struct {
	ID        int64
	Token     string
	UserID    int64
	CreatedAt time.Time
}
