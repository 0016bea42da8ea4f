package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nestodo/nestodo/internal/models"
	"github.com/nestodo/nestodo/internal/storage"
)

// fakeUserStore is an in-memory UserStore for tests.
type fakeUserStore struct {
	byID       map[uuid.UUID]*models.User
	byUsername map[string]*models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{
		byID:       make(map[uuid.UUID]*models.User),
		byUsername: make(map[string]*models.User),
	}
}

func (f *fakeUserStore) CreateUser(_ context.Context, user *models.User) error {
	if _, ok := f.byUsername[user.Username]; ok {
		return storage.ErrDuplicate
	}
	f.byID[user.ID] = user
	f.byUsername[user.Username] = user
	return nil
}

func (f *fakeUserStore) GetUserByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	user, ok := f.byID[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return user, nil
}

func (f *fakeUserStore) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	user, ok := f.byUsername[username]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return user, nil
}

func newTestService(t *testing.T) (*Service, *fakeUserStore) {
	t.Helper()
	store := newFakeUserStore()
	return New(store, "test-secret-key", time.Hour, zap.NewNop()), store
}

func TestRegister(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("creates user with hashed password", func(t *testing.T) {
		t.Parallel()
		svc, store := newTestService(t)

		user, err := svc.Register(ctx, "alice", "s3cret", nil)
		if err != nil {
			t.Fatalf("Register returned error: %v", err)
		}
		if user.HashedPassword == "s3cret" || user.HashedPassword == "" {
			t.Error("password was not hashed")
		}
		if _, ok := store.byUsername["alice"]; !ok {
			t.Error("user not persisted")
		}
	})

	t.Run("duplicate username", func(t *testing.T) {
		t.Parallel()
		svc, _ := newTestService(t)

		if _, err := svc.Register(ctx, "bob", "pw1", nil); err != nil {
			t.Fatalf("first Register returned error: %v", err)
		}
		_, err := svc.Register(ctx, "bob", "pw2", nil)
		if !errors.Is(err, ErrUsernameTaken) {
			t.Errorf("expected ErrUsernameTaken, got %v", err)
		}
	})
}

func TestLoginAndVerify(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()
		svc, _ := newTestService(t)

		registered, err := svc.Register(ctx, "carol", "hunter2", nil)
		if err != nil {
			t.Fatalf("Register returned error: %v", err)
		}

		token, err := svc.Login(ctx, "carol", "hunter2")
		if err != nil {
			t.Fatalf("Login returned error: %v", err)
		}
		if token == "" {
			t.Fatal("Login returned empty token")
		}

		user, err := svc.VerifyToken(ctx, token)
		if err != nil {
			t.Fatalf("VerifyToken returned error: %v", err)
		}
		if user.ID != registered.ID {
			t.Errorf("token resolved to user %s, want %s", user.ID, registered.ID)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		t.Parallel()
		svc, _ := newTestService(t)

		if _, err := svc.Register(ctx, "dave", "correct", nil); err != nil {
			t.Fatalf("Register returned error: %v", err)
		}
		_, err := svc.Login(ctx, "dave", "wrong")
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("unknown username yields same error as wrong password", func(t *testing.T) {
		t.Parallel()
		svc, _ := newTestService(t)

		_, err := svc.Login(ctx, "nobody", "pw")
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("garbage token", func(t *testing.T) {
		t.Parallel()
		svc, _ := newTestService(t)

		_, err := svc.VerifyToken(ctx, "not.a.token")
		if !errors.Is(err, ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("token signed with different secret", func(t *testing.T) {
		t.Parallel()
		svcA, storeA := newTestService(t)
		svcB := New(storeA, "other-secret", time.Hour, zap.NewNop())

		if _, err := svcA.Register(ctx, "erin", "pw", nil); err != nil {
			t.Fatalf("Register returned error: %v", err)
		}
		token, err := svcA.Login(ctx, "erin", "pw")
		if err != nil {
			t.Fatalf("Login returned error: %v", err)
		}

		_, err = svcB.VerifyToken(ctx, token)
		if !errors.Is(err, ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("expired token", func(t *testing.T) {
		t.Parallel()
		store := newFakeUserStore()
		// Claims are truncated to whole seconds when signed, so the
		// shortest observable lifetime is about one second.
		svc := New(store, "test-secret-key", time.Millisecond, zap.NewNop())

		if _, err := svc.Register(ctx, "frank", "pw", nil); err != nil {
			t.Fatalf("Register returned error: %v", err)
		}
		token, err := svc.Login(ctx, "frank", "pw")
		if err != nil {
			t.Fatalf("Login returned error: %v", err)
		}
		time.Sleep(1100 * time.Millisecond)

		_, err = svc.VerifyToken(ctx, token)
		if !errors.Is(err, ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken for expired token, got %v", err)
		}
	})

	t.Run("token for deleted user", func(t *testing.T) {
		t.Parallel()
		svc, store := newTestService(t)

		user, err := svc.Register(ctx, "grace", "pw", nil)
		if err != nil {
			t.Fatalf("Register returned error: %v", err)
		}
		token, err := svc.Login(ctx, "grace", "pw")
		if err != nil {
			t.Fatalf("Login returned error: %v", err)
		}

		delete(store.byID, user.ID)
		delete(store.byUsername, user.Username)

		_, err = svc.VerifyToken(ctx, token)
		if !errors.Is(err, ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken for deleted user, got %v", err)
		}
	})
}
