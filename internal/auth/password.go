// Package auth implements password hashing, password policy, opaque token
// generation, and the session-backed authentication service.
package auth

import (
	"errors"
	"fmt"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

const (
	// MinPasswordLength is the minimum accepted password length.
	MinPasswordLength = 8
	// MaxPasswordLength is the maximum accepted password length. bcrypt
	// ignores input past 72 bytes, so the cap also keeps the whole
	// password significant.
	MaxPasswordLength = 40
)

var (
	// ErrPasswordTooShort is returned for passwords under the minimum
	// length.
	ErrPasswordTooShort = fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	// ErrPasswordTooLong is returned for passwords over the maximum
	// length.
	ErrPasswordTooLong = fmt.Errorf("password must be at most %d characters", MaxPasswordLength)
	// ErrPasswordTooWeak is returned for passwords missing a letter or a
	// digit.
	ErrPasswordTooWeak = errors.New("password must contain at least one letter and one number")
)

// ValidatePassword enforces the password policy: length bounds plus at least
// one letter and one digit.
func ValidatePassword(password string) error {
	runes := []rune(password)
	if len(runes) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if len(runes) > MaxPasswordLength {
		return ErrPasswordTooLong
	}

	var hasLetter, hasDigit bool
	for _, r := range runes {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return ErrPasswordTooWeak
	}
	return nil
}

// HashPassword hashes a plaintext password with bcrypt at the given cost. A
// cost of zero falls back to the bcrypt default.
func HashPassword(password string, cost int) (string, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether the plaintext password matches the stored
// hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// dummyHash keeps the unknown-account login path doing bcrypt work so it
// takes about as long as a real comparison.
var dummyHash = func() string {
	h, err := HashPassword("timing-equalizer-0", bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	return h
}()
