// Package secrets generates and transforms the credentials easiarr seeds
// into the stack: API keys, web UI passwords, and the qBittorrent
// PBKDF2 password hash.
package secrets

import (
	"crypto/rand"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

// APIKeyLength is the hex character length of generated API keys,
// matching what the *arr applications generate for themselves.
const APIKeyLength = 32

// NewAPIKey returns a random lowercase hex API key.
func NewAPIKey() (string, error) {
	buf := make([]byte, APIKeyLength/2)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate api key: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// passwordAlphabet deliberately omits characters that tend to break
// quoting in .env files and container environment blocks.
const passwordAlphabet = "abcdefghijkmnopqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// NewPassword returns a random password of n characters.
func NewPassword(n int) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("password length must be positive, got %d", n)
	}
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate password: %w", err)
	}
	out := make([]byte, n)
	for i, b := range buf {
		out[i] = passwordAlphabet[int(b)%len(passwordAlphabet)]
	}
	return string(out), nil
}

// Pad extends password to at least min characters. Several services reject
// short passwords at their API layer, so user-chosen passwords are padded
// deterministically before being pushed. The original password is preserved
// as the prefix.
func Pad(password string, min int) string {
	if len(password) >= min {
		return password
	}
	return password + strings.Repeat("0", min-len(password))
}

// PBKDF2 parameters qBittorrent uses for WebUI\Password_PBKDF2 entries.
const (
	qbitSaltLen    = 16
	qbitKeyLen     = 64
	qbitIterations = 100000
)

// QbitPasswordHash derives a qBittorrent WebUI password entry in the
// @ByteArray(salt:derivedKey) form stored in qBittorrent.conf, with both
// parts base64 encoded.
func QbitPasswordHash(password string) (string, error) {
	salt := make([]byte, qbitSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}
	return qbitHashWithSalt(password, salt), nil
}

func qbitHashWithSalt(password string, salt []byte) string {
	dk := pbkdf2.Key([]byte(password), salt, qbitIterations, qbitKeyLen, sha512.New)
	return fmt.Sprintf("@ByteArray(%s:%s)",
		base64.StdEncoding.EncodeToString(salt),
		base64.StdEncoding.EncodeToString(dk))
}

// VerifyQbitPassword reports whether password matches a stored
// @ByteArray(salt:derivedKey) entry.
func VerifyQbitPassword(password, stored string) bool {
	inner, ok := strings.CutPrefix(stored, "@ByteArray(")
	if !ok {
		return false
	}
	inner, ok = strings.CutSuffix(inner, ")")
	if !ok {
		return false
	}
	saltB64, keyB64, ok := strings.Cut(inner, ":")
	if !ok {
		return false
	}
	salt, err := base64.StdEncoding.DecodeString(saltB64)
	if err != nil {
		return false
	}
	want, err := base64.StdEncoding.DecodeString(keyB64)
	if err != nil {
		return false
	}
	got := pbkdf2.Key([]byte(password), salt, qbitIterations, len(want), sha512.New)
	return subtle.ConstantTimeCompare(got, want) == 1
}
