// Package models defines the records kvgate persists.
package models

// ApplicationStatus is the lifecycle state of a registered application.
// Values other than StatusActive are echoed to callers as response codes.
type ApplicationStatus int

const (
	StatusActive   ApplicationStatus = 1
	StatusDisabled ApplicationStatus = 3
	StatusPending  ApplicationStatus = 4
	StatusRevoked  ApplicationStatus = 5
)

// Application is a registered API consumer, identified by its API key.
type Application struct {
	ID           int64
	APIKey       string
	Status       ApplicationStatus
	RequestCount int64
}

func (a *Application) Active() bool {
	return a.Status == StatusActive
}
