package models

// User is an end user of an application. Password holds the keyed credential
// hash, never the plaintext.
type User struct {
	ID       int64
	Email    string
	Password string
}
