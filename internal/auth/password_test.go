package auth

import (
	"errors"
	"strings"
	"testing"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  error
	}{
		{"valid", "Str0ngpass", nil},
		{"minimum length", "pass1234", nil},
		{"too short", "pw1", ErrPasswordTooShort},
		{"too long", strings.Repeat("a1", 21), ErrPasswordTooLong},
		{"letters only", "passwords", ErrPasswordTooWeak},
		{"digits only", "12345678", ErrPasswordTooWeak},
		{"unicode letters count", "pässwörd1", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidatePassword(%q) = %v, want %v", tt.password, err, tt.wantErr)
			}
		})
	}
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("secret12", 4)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if hash == "secret12" {
		t.Fatal("hash equals the plaintext")
	}

	if !CheckPassword(hash, "secret12") {
		t.Error("CheckPassword() = false for the right password")
	}
	if CheckPassword(hash, "wrong123") {
		t.Error("CheckPassword() = true for the wrong password")
	}
}

func TestNewToken(t *testing.T) {
	a, err := NewToken()
	if err != nil {
		t.Fatalf("NewToken() error = %v", err)
	}
	b, err := NewToken()
	if err != nil {
		t.Fatalf("NewToken() error = %v", err)
	}
	if a == b {
		t.Error("two tokens are identical")
	}
	if len(a) < 40 {
		t.Errorf("token length = %d, want at least 40", len(a))
	}
}
