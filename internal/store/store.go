// Package store defines the persistence interface for users, notes,
// sessions and password recovery tokens.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/mandjevant/noteboard/internal/model"
)

var (
	// ErrNotFound is returned when the requested row does not exist.
	ErrNotFound = errors.New("store: not found")
	// ErrConflict is returned when a write violates a uniqueness
	// constraint, such as a duplicate email.
	ErrConflict = errors.New("store: conflict")
)

// ListParams selects one page of a collection.
type ListParams struct {
	Offset int
	Limit  int
}

// UserFilter narrows user listings. Zero values match everything.
type UserFilter struct {
	ListParams
	Email string
}

// NoteFilter narrows note listings. A zero OwnerID matches all owners.
type NoteFilter struct {
	ListParams
	OwnerID uuid.UUID
}

// Store defines the persistence interface for the application.
type Store interface {
	// Users
	CreateUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	ListUsers(ctx context.Context, filter UserFilter) ([]*model.User, int, error) // returns users, total count, error
	UpdateUser(ctx context.Context, id uuid.UUID, update model.UserUpdate) (*model.User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
	CountSuperusers(ctx context.Context) (int, error)

	// Notes
	CreateNote(ctx context.Context, note *model.Note) error
	GetNote(ctx context.Context, id int64) (*model.Note, error)
	ListNotes(ctx context.Context, filter NoteFilter) ([]*model.Note, int, error)
	UpdateNote(ctx context.Context, id int64, update model.NoteUpdate) (*model.Note, error)
	DeleteNote(ctx context.Context, id int64) error

	// Sessions
	CreateSession(ctx context.Context, session *model.Session) error
	GetSession(ctx context.Context, token string) (*model.Session, error)
	DeleteSession(ctx context.Context, token string) error
	DeleteUserSessions(ctx context.Context, userID uuid.UUID) error
	PurgeExpiredSessions(ctx context.Context, now time.Time) (int64, error)

	// Recovery tokens
	CreateRecoveryToken(ctx context.Context, token *model.RecoveryToken) error
	GetRecoveryToken(ctx context.Context, token string) (*model.RecoveryToken, error)
	MarkRecoveryTokenUsed(ctx context.Context, token string, usedAt time.Time) error

	// Lifecycle
	Close() error
}
