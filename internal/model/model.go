// Package model defines the persisted domain types and their conversions to
// the generic record shape the table machinery consumes.
package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/mandjevant/noteboard/internal/crud"
)

// UserRole classifies a user's privilege tier.
type UserRole string

const (
	RoleOwner  UserRole = "owner"
	RoleAdmin  UserRole = "admin"
	RoleMember UserRole = "member"
	RoleGuest  UserRole = "guest"
)

// User is an account holder.
type User struct {
	ID             uuid.UUID `json:"id"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"-"`
	FullName       string    `json:"full_name,omitempty"`
	AvatarURL      string    `json:"avatar_url,omitempty"`
	Phone          string    `json:"phone,omitempty"`
	IsActive       bool      `json:"is_active"`
	IsSuperuser    bool      `json:"is_superuser"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Record flattens the user for the generic table layer. The password hash
// never crosses this boundary.
func (u User) Record() crud.Record {
	return crud.Record{
		"id":           u.ID.String(),
		"email":        u.Email,
		"full_name":    u.FullName,
		"avatar_url":   u.AvatarURL,
		"phone":        u.Phone,
		"is_active":    u.IsActive,
		"is_superuser": u.IsSuperuser,
		"created_at":   u.CreatedAt,
		"updated_at":   u.UpdatedAt,
	}
}

// UserCreate carries the fields needed to register a user.
type UserCreate struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	FullName    string `json:"full_name,omitempty"`
	IsActive    bool   `json:"is_active"`
	IsSuperuser bool   `json:"is_superuser"`
}

// UserUpdate carries a partial update. Nil pointers leave the stored value
// untouched. Password must already be hashed by the time it reaches the
// store.
type UserUpdate struct {
	Email       *string `json:"email,omitempty"`
	FullName    *string `json:"full_name,omitempty"`
	AvatarURL   *string `json:"avatar_url,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	Password    *string `json:"password,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
	IsSuperuser *bool   `json:"is_superuser,omitempty"`
}

// Note is a user-owned note.
type Note struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	UserID    uuid.UUID `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Record flattens the note for the generic table layer.
func (n Note) Record() crud.Record {
	return crud.Record{
		"id":         n.ID,
		"title":      n.Title,
		"content":    n.Content,
		"user_id":    n.UserID.String(),
		"created_at": n.CreatedAt,
		"updated_at": n.UpdatedAt,
	}
}

// NoteCreate carries the fields needed to create a note.
type NoteCreate struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// NoteUpdate carries a partial note update.
type NoteUpdate struct {
	Title   *string `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`
}

// Session is a server-side login session keyed by an opaque token.
type Session struct {
	Token     string    `json:"-"`
	UserID    uuid.UUID `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session has passed its expiry.
func (s Session) Expired(now time.Time) bool { return !now.Before(s.ExpiresAt) }

// RecoveryToken is a single-use password recovery token.
type RecoveryToken struct {
	Token     string     `json:"-"`
	UserID    uuid.UUID  `json:"user_id"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt time.Time  `json:"expires_at"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
}

// Usable reports whether the token is unexpired and unused.
func (t RecoveryToken) Usable(now time.Time) bool {
	return t.UsedAt == nil && now.Before(t.ExpiresAt)
}
