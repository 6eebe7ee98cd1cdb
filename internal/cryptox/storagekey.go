package cryptox

import (
	"crypto/md5"
	"crypto/sha512"
	"encoding/hex"
	"strconv"
)

// StorageKeyLength is the length of every derived storage key.
const StorageKeyLength = 64

// DeriveStorageKey maps (application id, user id, logical key) to the key a
// value is stored under: the first 64 hex characters of
// sha512(md5(app) || md5(user) || md5(key)), each md5 hex encoded.
//
// Hashing the components separately keeps ("1", "23") and ("12", "3") apart.
func DeriveStorageKey(appID, userID int64, logicalKey string) string {
	parts := md5Hex(strconv.FormatInt(appID, 10)) +
		md5Hex(strconv.FormatInt(userID, 10)) +
		md5Hex(logicalKey)

	sum := sha512.Sum512([]byte(parts))
	return hex.EncodeToString(sum[:])[:StorageKeyLength]
}

func md5Hex(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}
