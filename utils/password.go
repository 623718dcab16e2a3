package utils

import (
	"crypto/rand"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

// PBKDF2 parameters of the stored credential format "salt:hash"
const (
	pbkdf2Iterations = 10000
	pbkdf2KeyLen     = 64
	saltLen          = 16
)

// HashPassword derives a "salt:hash" credential from password
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	saltHex := hex.EncodeToString(salt)
	return saltHex + ":" + derive(password, saltHex), nil
}

// CheckPassword compares password against a stored "salt:hash" credential
func CheckPassword(stored, password string) (bool, error) {
	salt, hash, ok := strings.Cut(stored, ":")
	if !ok || salt == "" || hash == "" {
		return false, errors.New("malformed credential")
	}
	candidate := derive(password, salt)
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(hash)) == 1, nil
}

// derive uses the hex salt string itself as PBKDF2 salt bytes
func derive(password, salt string) string {
	key := pbkdf2.Key([]byte(password), []byte(salt), pbkdf2Iterations, pbkdf2KeyLen, sha512.New)
	return hex.EncodeToString(key)
}
