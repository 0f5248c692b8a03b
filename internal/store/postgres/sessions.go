package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/mandjevant/noteboard/internal/model"
	"github.com/mandjevant/noteboard/internal/store"
)

func (s *Store) CreateSession(ctx context.Context, sess *model.Session) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO sessions (token, user_id, created_at, expires_at)
		VALUES ($1, $2, $3, $4)`,
		sess.Token, sess.UserID, sess.CreatedAt, sess.ExpiresAt,
	)
	return mapError(err)
}

func (s *Store) GetSession(ctx context.Context, token string) (*model.Session, error) {
	var sess model.Session
	err := s.pool.QueryRow(ctx, `
		SELECT token, user_id, created_at, expires_at
		FROM sessions WHERE token = $1`, token,
	).Scan(&sess.Token, &sess.UserID, &sess.CreatedAt, &sess.ExpiresAt)
	if err != nil {
		return nil, mapError(err)
	}
	return &sess, nil
}

func (s *Store) DeleteSession(ctx context.Context, token string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE token = $1`, token)
	return mapError(err)
}

func (s *Store) DeleteUserSessions(ctx context.Context, userID uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE user_id = $1`, userID)
	return mapError(err)
}

func (s *Store) PurgeExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, mapError(err)
	}
	return tag.RowsAffected(), nil
}

func (s *Store) CreateRecoveryToken(ctx context.Context, t *model.RecoveryToken) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO recovery_tokens (token, user_id, created_at, expires_at)
		VALUES ($1, $2, $3, $4)`,
		t.Token, t.UserID, t.CreatedAt, t.ExpiresAt,
	)
	return mapError(err)
}

func (s *Store) GetRecoveryToken(ctx context.Context, token string) (*model.RecoveryToken, error) {
	var t model.RecoveryToken
	err := s.pool.QueryRow(ctx, `
		SELECT token, user_id, created_at, expires_at, used_at
		FROM recovery_tokens WHERE token = $1`, token,
	).Scan(&t.Token, &t.UserID, &t.CreatedAt, &t.ExpiresAt, &t.UsedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return &t, nil
}

func (s *Store) MarkRecoveryTokenUsed(ctx context.Context, token string, usedAt time.Time) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE recovery_tokens SET used_at = $2
		WHERE token = $1 AND used_at IS NULL`, token, usedAt,
	)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}
