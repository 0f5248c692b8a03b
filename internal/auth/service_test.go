package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/mandjevant/noteboard/internal/model"
	"github.com/mandjevant/noteboard/internal/store/memory"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(memory.New(), log, Config{
		BcryptCost:  4,
		SessionTTL:  time.Hour,
		RecoveryTTL: time.Hour,
	})
}

func register(t *testing.T, svc *Service, email, password string) *model.User {
	t.Helper()
	user, err := svc.Register(context.Background(), model.UserCreate{
		Email:    email,
		Password: password,
		FullName: "Test User",
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	return user
}

func TestRegister(t *testing.T) {
	svc := newTestService(t)

	user := register(t, svc, "Alice@Example.com", "secret12")
	if user.Email != "alice@example.com" {
		t.Errorf("email = %q, want lowercased", user.Email)
	}
	if user.HashedPassword == "secret12" {
		t.Error("password stored in plaintext")
	}
	if !user.IsActive {
		t.Error("new user inactive")
	}

	if _, err := svc.Register(context.Background(), model.UserCreate{
		Email:    "alice@example.com",
		Password: "secret12",
	}); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("duplicate Register() error = %v, want ErrEmailTaken", err)
	}

	if _, err := svc.Register(context.Background(), model.UserCreate{
		Email:    "bob@example.com",
		Password: "short",
	}); !errors.Is(err, ErrPasswordTooShort) {
		t.Errorf("weak Register() error = %v, want ErrPasswordTooShort", err)
	}
}

func TestAuthenticate(t *testing.T) {
	svc := newTestService(t)
	register(t, svc, "alice@example.com", "secret12")

	ctx := context.Background()

	user, err := svc.Authenticate(ctx, "ALICE@example.com", "secret12")
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if user.Email != "alice@example.com" {
		t.Errorf("email = %q", user.Email)
	}

	if _, err := svc.Authenticate(ctx, "alice@example.com", "wrong123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("bad password error = %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.Authenticate(ctx, "nobody@example.com", "secret12"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown user error = %v, want ErrInvalidCredentials", err)
	}

	inactive := false
	if _, err := svc.store.UpdateUser(ctx, user.ID, model.UserUpdate{IsActive: &inactive}); err != nil {
		t.Fatalf("UpdateUser() error = %v", err)
	}
	if _, err := svc.Authenticate(ctx, "alice@example.com", "secret12"); !errors.Is(err, ErrInactiveUser) {
		t.Errorf("inactive user error = %v, want ErrInactiveUser", err)
	}
}

func TestSessionLifecycle(t *testing.T) {
	svc := newTestService(t)
	user := register(t, svc, "alice@example.com", "secret12")
	ctx := context.Background()

	sess, err := svc.StartSession(ctx, user.ID)
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}
	if sess.Token == "" {
		t.Fatal("empty session token")
	}

	got, err := svc.ValidateSession(ctx, sess.Token)
	if err != nil {
		t.Fatalf("ValidateSession() error = %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("session user = %v, want %v", got.ID, user.ID)
	}

	if _, err := svc.ValidateSession(ctx, "bogus"); !errors.Is(err, ErrInvalidSession) {
		t.Errorf("bogus token error = %v, want ErrInvalidSession", err)
	}
	if _, err := svc.ValidateSession(ctx, ""); !errors.Is(err, ErrInvalidSession) {
		t.Errorf("empty token error = %v, want ErrInvalidSession", err)
	}

	if err := svc.EndSession(ctx, sess.Token); err != nil {
		t.Fatalf("EndSession() error = %v", err)
	}
	if _, err := svc.ValidateSession(ctx, sess.Token); !errors.Is(err, ErrInvalidSession) {
		t.Errorf("ended session error = %v, want ErrInvalidSession", err)
	}
}

func TestValidateSessionExpired(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewService(memory.New(), log, Config{
		BcryptCost: 4,
		SessionTTL: -time.Minute, // already expired when issued
	})
	user := register(t, svc, "alice@example.com", "secret12")
	ctx := context.Background()

	sess, err := svc.StartSession(ctx, user.ID)
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}
	if _, err := svc.ValidateSession(ctx, sess.Token); !errors.Is(err, ErrInvalidSession) {
		t.Errorf("expired session error = %v, want ErrInvalidSession", err)
	}
}

func TestPasswordRecovery(t *testing.T) {
	svc := newTestService(t)
	user := register(t, svc, "alice@example.com", "secret12")
	ctx := context.Background()

	rec, err := svc.StartRecovery(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("StartRecovery() error = %v", err)
	}

	// Live sessions must not survive a reset.
	sess, err := svc.StartSession(ctx, user.ID)
	if err != nil {
		t.Fatalf("StartSession() error = %v", err)
	}

	if err := svc.ResetPassword(ctx, rec.Token, "newpass99"); err != nil {
		t.Fatalf("ResetPassword() error = %v", err)
	}

	if _, err := svc.Authenticate(ctx, "alice@example.com", "secret12"); !errors.Is(err, ErrInvalidCredentials) {
		t.Error("old password still accepted")
	}
	if _, err := svc.Authenticate(ctx, "alice@example.com", "newpass99"); err != nil {
		t.Errorf("new password rejected: %v", err)
	}
	if _, err := svc.ValidateSession(ctx, sess.Token); !errors.Is(err, ErrInvalidSession) {
		t.Error("session survived password reset")
	}

	// Tokens are single use.
	if err := svc.ResetPassword(ctx, rec.Token, "another99"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("reused token error = %v, want ErrInvalidToken", err)
	}
}

func TestResetPasswordBadToken(t *testing.T) {
	svc := newTestService(t)
	if err := svc.ResetPassword(context.Background(), "bogus", "newpass99"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("error = %v, want ErrInvalidToken", err)
	}
}

func TestChangePassword(t *testing.T) {
	svc := newTestService(t)
	user := register(t, svc, "alice@example.com", "secret12")
	ctx := context.Background()

	if err := svc.ChangePassword(ctx, user.ID, "wrong123", "newpass99"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong current error = %v, want ErrInvalidCredentials", err)
	}
	if err := svc.ChangePassword(ctx, user.ID, "secret12", "secret12"); !errors.Is(err, ErrSamePassword) {
		t.Errorf("same password error = %v, want ErrSamePassword", err)
	}
	if err := svc.ChangePassword(ctx, user.ID, "secret12", "newpass99"); err != nil {
		t.Fatalf("ChangePassword() error = %v", err)
	}
	if _, err := svc.Authenticate(ctx, "alice@example.com", "newpass99"); err != nil {
		t.Errorf("new password rejected: %v", err)
	}
}

func TestEnsureSuperuser(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if err := svc.EnsureSuperuser(ctx, "admin@example.com", "admin123"); err != nil {
		t.Fatalf("EnsureSuperuser() error = %v", err)
	}
	admin, err := svc.store.GetUserByEmail(ctx, "admin@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail() error = %v", err)
	}
	if !admin.IsSuperuser {
		t.Error("bootstrapped user is not a superuser")
	}

	// Second run is a no-op.
	if err := svc.EnsureSuperuser(ctx, "other@example.com", "admin123"); err != nil {
		t.Fatalf("second EnsureSuperuser() error = %v", err)
	}
	if _, err := svc.store.GetUserByEmail(ctx, "other@example.com"); err == nil {
		t.Error("second bootstrap created another superuser")
	}
}
