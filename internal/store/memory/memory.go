// Package memory implements store.Store in process memory. It backs tests
// and local development without a database.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mandjevant/noteboard/internal/model"
	"github.com/mandjevant/noteboard/internal/store"
)

// Store is an in-memory store.Store implementation guarded by a single
// mutex.
type Store struct {
	mu       sync.Mutex
	users    map[uuid.UUID]*model.User
	notes    map[int64]*model.Note
	sessions map[string]*model.Session
	recovery map[string]*model.RecoveryToken
	nextNote int64
}

var _ store.Store = (*Store)(nil)

// New returns an empty in-memory store.
func New() *Store {
	return &Store{
		users:    make(map[uuid.UUID]*model.User),
		notes:    make(map[int64]*model.Note),
		sessions: make(map[string]*model.Session),
		recovery: make(map[string]*model.RecoveryToken),
	}
}

func (s *Store) CreateUser(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(u.Email)
	for _, existing := range s.users {
		if existing.Email == email {
			return store.ErrConflict
		}
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = u.CreatedAt
	u.Email = email

	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *Store) GetUser(_ context.Context, id uuid.UUID) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email = strings.ToLower(email)
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) ListUsers(_ context.Context, filter store.UserFilter) ([]*model.User, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var all []*model.User
	for _, u := range s.users {
		if filter.Email != "" && !strings.Contains(u.Email, strings.ToLower(filter.Email)) {
			continue
		}
		cp := *u
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.Before(all[j].CreatedAt)
		}
		return all[i].ID.String() < all[j].ID.String()
	})

	total := len(all)
	return page(all, filter.Offset, filter.Limit), total, nil
}

func (s *Store) UpdateUser(_ context.Context, id uuid.UUID, update model.UserUpdate) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if update.Email != nil {
		email := strings.ToLower(*update.Email)
		for otherID, other := range s.users {
			if otherID != id && other.Email == email {
				return nil, store.ErrConflict
			}
		}
		u.Email = email
	}
	if update.FullName != nil {
		u.FullName = *update.FullName
	}
	if update.AvatarURL != nil {
		u.AvatarURL = *update.AvatarURL
	}
	if update.Phone != nil {
		u.Phone = *update.Phone
	}
	if update.Password != nil {
		u.HashedPassword = *update.Password
	}
	if update.IsActive != nil {
		u.IsActive = *update.IsActive
	}
	if update.IsSuperuser != nil {
		u.IsSuperuser = *update.IsSuperuser
	}
	u.UpdatedAt = time.Now().UTC()

	cp := *u
	return &cp, nil
}

func (s *Store) DeleteUser(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.users, id)
	for noteID, n := range s.notes {
		if n.UserID == id {
			delete(s.notes, noteID)
		}
	}
	for token, sess := range s.sessions {
		if sess.UserID == id {
			delete(s.sessions, token)
		}
	}
	return nil
}

func (s *Store) CountSuperusers(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, u := range s.users {
		if u.IsSuperuser {
			count++
		}
	}
	return count, nil
}

func (s *Store) CreateNote(_ context.Context, n *model.Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextNote++
	n.ID = s.nextNote
	now := time.Now().UTC()
	if n.CreatedAt.IsZero() {
		n.CreatedAt = now
	}
	n.UpdatedAt = n.CreatedAt

	cp := *n
	s.notes[n.ID] = &cp
	return nil
}

func (s *Store) GetNote(_ context.Context, id int64) (*model.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.notes[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *n
	return &cp, nil
}

func (s *Store) ListNotes(_ context.Context, filter store.NoteFilter) ([]*model.Note, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var all []*model.Note
	for _, n := range s.notes {
		if filter.OwnerID != uuid.Nil && n.UserID != filter.OwnerID {
			continue
		}
		cp := *n
		all = append(all, &cp)
	}
	// Newest first, matching the SQL ordering.
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID > all[j].ID
	})

	total := len(all)
	return page(all, filter.Offset, filter.Limit), total, nil
}

func (s *Store) UpdateNote(_ context.Context, id int64, update model.NoteUpdate) (*model.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.notes[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if update.Title != nil {
		n.Title = *update.Title
	}
	if update.Content != nil {
		n.Content = *update.Content
	}
	n.UpdatedAt = time.Now().UTC()

	cp := *n
	return &cp, nil
}

func (s *Store) DeleteNote(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.notes[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.notes, id)
	return nil
}

func (s *Store) CreateSession(_ context.Context, sess *model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[sess.Token]; ok {
		return store.ErrConflict
	}
	cp := *sess
	s.sessions[sess.Token] = &cp
	return nil
}

func (s *Store) GetSession(_ context.Context, token string) (*model.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[token]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *sess
	return &cp, nil
}

func (s *Store) DeleteSession(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, token)
	return nil
}

func (s *Store) DeleteUserSessions(_ context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for token, sess := range s.sessions {
		if sess.UserID == userID {
			delete(s.sessions, token)
		}
	}
	return nil
}

func (s *Store) PurgeExpiredSessions(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var purged int64
	for token, sess := range s.sessions {
		if sess.Expired(now) {
			delete(s.sessions, token)
			purged++
		}
	}
	return purged, nil
}

func (s *Store) CreateRecoveryToken(_ context.Context, t *model.RecoveryToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.recovery[t.Token]; ok {
		return store.ErrConflict
	}
	cp := *t
	s.recovery[t.Token] = &cp
	return nil
}

func (s *Store) GetRecoveryToken(_ context.Context, token string) (*model.RecoveryToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.recovery[token]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (s *Store) MarkRecoveryTokenUsed(_ context.Context, token string, usedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.recovery[token]
	if !ok || t.UsedAt != nil {
		return store.ErrNotFound
	}
	used := usedAt
	t.UsedAt = &used
	return nil
}

func (s *Store) Close() error { return nil }

// page applies offset/limit to an already sorted slice.
func page[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
