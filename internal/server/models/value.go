package models

import "time"

// StoredValue is one entry of the per-user key-value store. StorageKey is
// the derived key and already embeds the application and user ids.
type StoredValue struct {
	StorageKey string
	AppID      int64
	UserID     int64
	Value      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
