package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"nectix/internal/domain"
	"nectix/internal/repository"
	"nectix/internal/storage"
)

func setupSessions(t *testing.T, ttl time.Duration) (*SessionService, *storage.Store) {
	t.Helper()
	store, err := storage.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte("segredo123"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	users := repository.NewMemoryUsers(domain.User{ID: "u1", Email: "maria@example.com", PasswordHash: string(hash)})
	return NewSessionService(users, store, "test-secret", ttl, zap.NewNop()), store
}

func TestSignIn_WrongCredentials(t *testing.T) {
	svc, _ := setupSessions(t, time.Hour)
	ctx := context.Background()

	if _, err := svc.SignIn(ctx, "maria@example.com", "errado"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	if _, err := svc.SignIn(ctx, "nobody@example.com", "segredo123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown email must read as invalid credentials, got %v", err)
	}
	if svc.Current() != nil {
		t.Fatalf("no session expected after failed sign-in")
	}
}

func TestSignIn_IssuesAndPersistsSession(t *testing.T) {
	svc, store := setupSessions(t, time.Hour)

	sess, err := svc.SignIn(context.Background(), "maria@example.com", "segredo123")
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if sess.AccessToken == "" || sess.RefreshToken == "" {
		t.Fatalf("tokens missing: %+v", sess)
	}
	if sess.ExpiresAt <= time.Now().Unix() {
		t.Fatalf("expiry in the past")
	}

	// a fresh service over the same store restores the session
	hash, _ := bcrypt.GenerateFromPassword([]byte("x"), bcrypt.MinCost)
	users := repository.NewMemoryUsers(domain.User{ID: "u1", Email: "maria@example.com", PasswordHash: string(hash)})
	restored := NewSessionService(users, store, "test-secret", time.Hour, zap.NewNop())
	cur := restored.Current()
	if cur == nil || cur.UserID != "u1" {
		t.Fatalf("session not restored: %+v", cur)
	}
}

func TestRestore_RejectsForeignToken(t *testing.T) {
	svc, store := setupSessions(t, time.Hour)
	if _, err := svc.SignIn(context.Background(), "maria@example.com", "segredo123"); err != nil {
		t.Fatal(err)
	}

	// a service with a different secret must drop the stored session
	users := repository.NewMemoryUsers()
	other := NewSessionService(users, store, "other-secret", time.Hour, zap.NewNop())
	if other.Current() != nil {
		t.Fatalf("foreign-signed session must not restore")
	}
}

func TestSession_ExpiryTriggersSignOut(t *testing.T) {
	svc, store := setupSessions(t, 30*time.Millisecond)
	if _, err := svc.SignIn(context.Background(), "maria@example.com", "segredo123"); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.StartWatcher(ctx, 10*time.Millisecond)

	deadline := time.Now().Add(2 * time.Second)
	for svc.Current() != nil {
		if time.Now().After(deadline) {
			t.Fatalf("session never expired")
		}
		time.Sleep(10 * time.Millisecond)
	}

	// the slot is cleared by the automatic sign-out
	var sess domain.Session
	if store.Get(SessionSlot, &sess) {
		t.Fatalf("session slot survived expiry")
	}
}

func TestSignOut_Idempotent(t *testing.T) {
	svc, _ := setupSessions(t, time.Hour)
	svc.SignOut()
	svc.SignOut()
	if svc.Current() != nil {
		t.Fatalf("unexpected session")
	}
}
