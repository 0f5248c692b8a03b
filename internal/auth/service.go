package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mandjevant/noteboard/internal/model"
	"github.com/mandjevant/noteboard/internal/store"
)

var (
	// ErrInvalidCredentials is returned when the email or password does
	// not match an account.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	// ErrInactiveUser is returned when the account exists but is
	// deactivated.
	ErrInactiveUser = errors.New("auth: inactive user")
	// ErrEmailTaken is returned when registering with an email that is
	// already in use.
	ErrEmailTaken = errors.New("auth: email already registered")
	// ErrInvalidSession is returned for missing or expired sessions.
	ErrInvalidSession = errors.New("auth: invalid session")
	// ErrInvalidToken is returned for unknown, expired or used recovery
	// tokens.
	ErrInvalidToken = errors.New("auth: invalid recovery token")
	// ErrSamePassword is returned when a password change reuses the
	// current password.
	ErrSamePassword = errors.New("auth: new password matches the current one")
)

// Config holds the authentication service's tunables.
type Config struct {
	BcryptCost  int
	SessionTTL  time.Duration
	RecoveryTTL time.Duration
}

// Service implements registration, login sessions and password recovery on
// top of the store.
type Service struct {
	store store.Store
	log   *slog.Logger
	cfg   Config
}

// NewService builds an authentication service.
func NewService(st store.Store, log *slog.Logger, cfg Config) *Service {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 24 * time.Hour
	}
	if cfg.RecoveryTTL <= 0 {
		cfg.RecoveryTTL = time.Hour
	}
	return &Service{store: st, log: log, cfg: cfg}
}

// Register creates a new account after checking the password policy.
func (s *Service) Register(ctx context.Context, in model.UserCreate) (*model.User, error) {
	if err := ValidatePassword(in.Password); err != nil {
		return nil, err
	}

	hash, err := HashPassword(in.Password, s.cfg.BcryptCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Email:          strings.ToLower(strings.TrimSpace(in.Email)),
		HashedPassword: hash,
		FullName:       in.FullName,
		IsActive:       true,
		IsSuperuser:    in.IsSuperuser,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.InfoContext(ctx, "user registered", "user_id", user.ID, "email", user.Email)
	return user, nil
}

// Authenticate verifies an email/password pair. The bcrypt comparison runs
// even when the account is unknown so both paths take similar time.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.store.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			CheckPassword(dummyHash, password)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if !CheckPassword(user.HashedPassword, password) {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrInactiveUser
	}
	return user, nil
}

// StartSession issues a new session for the user.
func (s *Service) StartSession(ctx context.Context, userID uuid.UUID) (*model.Session, error) {
	token, err := NewToken()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	sess := &model.Session{
		Token:     token,
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.cfg.SessionTTL),
	}
	if err := s.store.CreateSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return sess, nil
}

// ValidateSession resolves a session token to its user. Expired sessions are
// deleted on sight.
func (s *Service) ValidateSession(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, ErrInvalidSession
	}

	sess, err := s.store.GetSession(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidSession
		}
		return nil, fmt.Errorf("lookup session: %w", err)
	}
	if sess.Expired(time.Now().UTC()) {
		if err := s.store.DeleteSession(ctx, token); err != nil {
			s.log.WarnContext(ctx, "delete expired session", "error", err)
		}
		return nil, ErrInvalidSession
	}

	user, err := s.store.GetUser(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidSession
		}
		return nil, fmt.Errorf("lookup session user: %w", err)
	}
	if !user.IsActive {
		return nil, ErrInactiveUser
	}
	return user, nil
}

// EndSession discards a session token. Unknown tokens are a no-op.
func (s *Service) EndSession(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.store.DeleteSession(ctx, token)
}

// StartRecovery issues a password recovery token for the account with the
// given email. Callers must not reveal whether the account exists.
func (s *Service) StartRecovery(ctx context.Context, email string) (*model.RecoveryToken, error) {
	user, err := s.store.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	token, err := NewToken()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	rec := &model.RecoveryToken{
		Token:     token,
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.cfg.RecoveryTTL),
	}
	if err := s.store.CreateRecoveryToken(ctx, rec); err != nil {
		return nil, fmt.Errorf("create recovery token: %w", err)
	}

	s.log.InfoContext(ctx, "recovery token issued", "user_id", user.ID)
	return rec, nil
}

// ResetPassword consumes a recovery token and sets a new password. All of
// the user's sessions are revoked.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	rec, err := s.store.GetRecoveryToken(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidToken
		}
		return fmt.Errorf("lookup recovery token: %w", err)
	}
	if !rec.Usable(time.Now().UTC()) {
		return ErrInvalidToken
	}

	if err := ValidatePassword(newPassword); err != nil {
		return err
	}
	hash, err := HashPassword(newPassword, s.cfg.BcryptCost)
	if err != nil {
		return err
	}

	if err := s.store.MarkRecoveryTokenUsed(ctx, token, time.Now().UTC()); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidToken
		}
		return fmt.Errorf("consume recovery token: %w", err)
	}
	if _, err := s.store.UpdateUser(ctx, rec.UserID, model.UserUpdate{Password: &hash}); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if err := s.store.DeleteUserSessions(ctx, rec.UserID); err != nil {
		s.log.WarnContext(ctx, "revoke sessions after password reset", "error", err)
	}

	s.log.InfoContext(ctx, "password reset", "user_id", rec.UserID)
	return nil
}

// ChangePassword updates a logged-in user's password after checking the
// current one.
func (s *Service) ChangePassword(ctx context.Context, userID uuid.UUID, current, next string) error {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("lookup user: %w", err)
	}
	if !CheckPassword(user.HashedPassword, current) {
		return ErrInvalidCredentials
	}
	if current == next {
		return ErrSamePassword
	}
	if err := ValidatePassword(next); err != nil {
		return err
	}

	hash, err := HashPassword(next, s.cfg.BcryptCost)
	if err != nil {
		return err
	}
	if _, err := s.store.UpdateUser(ctx, userID, model.UserUpdate{Password: &hash}); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// EnsureSuperuser bootstraps the initial superuser when no superuser
// exists yet.
func (s *Service) EnsureSuperuser(ctx context.Context, email, password string) error {
	count, err := s.store.CountSuperusers(ctx)
	if err != nil {
		return fmt.Errorf("count superusers: %w", err)
	}
	if count > 0 {
		return nil
	}

	_, err = s.Register(ctx, model.UserCreate{
		Email:       email,
		Password:    password,
		FullName:    "Administrator",
		IsSuperuser: true,
	})
	if errors.Is(err, ErrEmailTaken) {
		// The account exists but lost its superuser flag; restore it.
		user, lookupErr := s.store.GetUserByEmail(ctx, strings.ToLower(email))
		if lookupErr != nil {
			return fmt.Errorf("lookup superuser: %w", lookupErr)
		}
		isSuper := true
		_, err = s.store.UpdateUser(ctx, user.ID, model.UserUpdate{IsSuperuser: &isSuper})
	}
	if err != nil {
		return fmt.Errorf("bootstrap superuser: %w", err)
	}

	s.log.InfoContext(ctx, "superuser bootstrapped", "email", strings.ToLower(email))
	return nil
}

// PurgeExpiredSessions removes sessions past their expiry.
func (s *Service) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	return s.store.PurgeExpiredSessions(ctx, time.Now().UTC())
}
