// Package cryptox contains the server's hashing primitives: the keyed
// credential hash stored for users and the storage key derivation that
// namespaces stored values per application and user.
package cryptox

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"

	"golang.org/x/crypto/argon2"
)

// CredentialSchemeV1 prefixes hashes produced by CredentialHash.
const CredentialSchemeV1 = "v1$"

// argon2id parameters
const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32
)

// CredentialHash computes the value stored in a user's password column.
//
// The salt is HMAC-SHA256(secret, email), so the hash depends on the server
// secret as well as on the credentials themselves; the same inputs always
// produce the same output, which lets the stored value be recomputed and
// compared at login.
func CredentialHash(secret []byte, email, password string) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(email))
	salt := mac.Sum(nil)

	key := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)
	return CredentialSchemeV1 + hex.EncodeToString(key)
}

// CredentialMatches reports whether stored equals candidate in constant time.
func CredentialMatches(stored, candidate string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(candidate)) == 1
}
