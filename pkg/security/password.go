package security

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"math/big"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// Iterations is the PBKDF2 work factor applied to every password.
	Iterations = 100_000
	// SaltSize is the byte length of every stored salt.
	SaltSize = 16
	// KeySize is the byte length of every stored digest.
	KeySize = 32
)

var tempPasswordCharset = []rune("ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789")

// NewSalt returns SaltSize bytes from the system CSPRNG.
func NewSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	return salt, nil
}

// Hash derives a KeySize digest from password and salt with PBKDF2-HMAC-SHA256.
func Hash(password string, salt []byte) []byte {
	return pbkdf2.Key([]byte(password), salt, Iterations, KeySize, sha256.New)
}

// HashNew hashes password with a freshly generated salt.
func HashNew(password string) (hash, salt []byte, err error) {
	if password == "" {
		return nil, nil, fmt.Errorf("password cannot be empty")
	}
	salt, err = NewSalt()
	if err != nil {
		return nil, nil, err
	}
	return Hash(password, salt), salt, nil
}

// Verify reports whether candidate matches the stored hash and salt.
// Malformed stored credentials fail closed instead of erroring.
func Verify(hash, salt []byte, candidate string) bool {
	if candidate == "" {
		return false
	}
	if len(hash) != KeySize || len(salt) != SaltSize {
		return false
	}

	computed := Hash(candidate, salt)

	var diff byte
	for i := 0; i < KeySize; i++ {
		diff |= hash[i] ^ computed[i]
	}
	return diff == 0
}

// GenerateTempPassword produces a random string suitable for temporary credentials.
func GenerateTempPassword(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("length must be positive")
	}

	limit := big.NewInt(int64(len(tempPasswordCharset)))
	result := make([]rune, length)
	for i := 0; i < length; i++ {
		idx, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		result[i] = tempPasswordCharset[idx.Int64()]
	}
	return string(result), nil
}
