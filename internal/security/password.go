// Package security holds the password primitives: salted hashing,
// verification, the strength policy and random password generation.
package security

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"unicode"
)

const (
	saltLength        = 16
	delimiter         = ":"
	MinPasswordLength = 6

	PasswordRequirements = "Password must be at least 6 characters long and contain at least one letter and one number."
)

const (
	upperChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	lowerChars = "abcdefghijklmnopqrstuvwxyz"
	digitChars = "0123456789"
	allChars   = upperChars + lowerChars + digitChars
)

var (
	ErrEmptyPassword = errors.New("password cannot be empty")
	ErrWeakPassword  = errors.New(PasswordRequirements)
)

// HashPassword returns base64(salt) + ":" + base64(sha256(salt || password)).
func HashPassword(password string) (string, error) {
	if strings.TrimSpace(password) == "" {
		return "", ErrEmptyPassword
	}
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	digest := digest(salt, password)
	return base64.StdEncoding.EncodeToString(salt) + delimiter + base64.StdEncoding.EncodeToString(digest), nil
}

// VerifyPassword reports whether password matches stored. Malformed stored
// values never match.
func VerifyPassword(password, stored string) bool {
	parts := strings.Split(stored, delimiter)
	if len(parts) != 2 {
		return false
	}
	salt, err := base64.StdEncoding.DecodeString(parts[0])
	if err != nil || len(salt) == 0 {
		return false
	}
	want, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil || len(want) != sha256.Size {
		return false
	}
	return subtle.ConstantTimeCompare(digest(salt, password), want) == 1
}

func digest(salt []byte, password string) []byte {
	h := sha256.New()
	h.Write(salt)
	h.Write([]byte(password))
	return h.Sum(nil)
}

// ValidatePassword enforces the strength policy: at least six characters with
// at least one letter and one digit.
func ValidatePassword(password string) error {
	if len([]rune(password)) < MinPasswordLength {
		return ErrWeakPassword
	}
	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return ErrWeakPassword
	}
	return nil
}

// GeneratePassword returns a random password of the given length (at least
// MinPasswordLength) that always satisfies ValidatePassword.
func GeneratePassword(length int) (string, error) {
	if length < MinPasswordLength {
		length = MinPasswordLength
	}
	buf := make([]byte, 0, length)
	for _, set := range []string{upperChars, lowerChars, digitChars} {
		c, err := pick(set)
		if err != nil {
			return "", err
		}
		buf = append(buf, c)
	}
	for len(buf) < length {
		c, err := pick(allChars)
		if err != nil {
			return "", err
		}
		buf = append(buf, c)
	}
	for i := len(buf) - 1; i > 0; i-- {
		j, err := randInt(i + 1)
		if err != nil {
			return "", err
		}
		buf[i], buf[j] = buf[j], buf[i]
	}
	return string(buf), nil
}

func pick(set string) (byte, error) {
	i, err := randInt(len(set))
	if err != nil {
		return 0, err
	}
	return set[i], nil
}

func randInt(n int) (int, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, fmt.Errorf("read random: %w", err)
	}
	return int(v.Int64()), nil
}
