package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// CheckPassword reports whether password matches hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

var absentAccountHash = sync.OnceValue(func() []byte {
	h, err := bcrypt.GenerateFromPassword([]byte("empleos:absent-account"), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return h
})

// CheckAbsentPassword spends one bcrypt comparison at the real cost and
// reports false. Logins for unknown e-mails call it so they take as long
// as a wrong password.
func CheckAbsentPassword(password string) bool {
	_ = bcrypt.CompareHashAndPassword(absentAccountHash(), []byte(password))
	return false
}

// NewOpaqueToken returns a random URL-safe token and the SHA-256 hex digest
// that is stored in its place.
func NewOpaqueToken() (token, digest string, err error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", "", err
	}
	token = base64.RawURLEncoding.EncodeToString(buf)
	return token, DigestToken(token), nil
}

// DigestToken hashes an opaque token for lookup.
func DigestToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
