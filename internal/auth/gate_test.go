package auth

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestGateStateMachine(t *testing.T) {
	ctx := context.Background()
	authority, err := NewSecretAuthority("hunter2-hunter2")
	if err != nil {
		t.Fatalf("NewSecretAuthority failed: %v", err)
	}
	gate := NewGate(authority)

	if gate.CanMutate() {
		t.Error("New gate should start in view-only mode")
	}

	t.Run("rejected credential keeps view-only mode", func(t *testing.T) {
		if _, err := gate.Authenticate(ctx, "wrong"); !errors.Is(err, ErrRejected) {
			t.Errorf("Authenticate(wrong) = %v, want ErrRejected", err)
		}
		if gate.CanMutate() {
			t.Error("Gate should remain view-only after rejection")
		}
	})

	t.Run("accepted credential enters editor mode", func(t *testing.T) {
		identity, err := gate.Authenticate(ctx, "hunter2-hunter2")
		if err != nil {
			t.Fatalf("Authenticate failed: %v", err)
		}
		if identity != "editor" {
			t.Errorf("Identity = %q, want %q", identity, "editor")
		}
		if !gate.CanMutate() {
			t.Error("Gate should allow mutation after authentication")
		}
		if gate.Identity() != "editor" {
			t.Errorf("Gate identity = %q, want %q", gate.Identity(), "editor")
		}
	})

	t.Run("deauthenticate reverts to view-only", func(t *testing.T) {
		gate.Deauthenticate()
		if gate.CanMutate() {
			t.Error("Gate should be view-only after deauthentication")
		}
		if gate.Identity() != "" {
			t.Errorf("Gate identity = %q, want empty", gate.Identity())
		}
	})
}

func TestSecretAuthority(t *testing.T) {
	ctx := context.Background()

	if _, err := NewSecretAuthority(""); err == nil {
		t.Error("Expected error for empty secret")
	}

	authority, err := NewSecretAuthority("correct horse battery staple")
	if err != nil {
		t.Fatalf("NewSecretAuthority failed: %v", err)
	}

	if _, err := authority.Authenticate(ctx, "correct horse battery staple"); err != nil {
		t.Errorf("Authenticate with the configured secret failed: %v", err)
	}
	if _, err := authority.Authenticate(ctx, "correct horse battery"); !errors.Is(err, ErrRejected) {
		t.Errorf("Authenticate with wrong secret = %v, want ErrRejected", err)
	}
}

// fakeEditorStore records SaveEditors calls for assertions.
type fakeEditorStore struct {
	stored []string
	saves  int
}

func (f *fakeEditorStore) LoadEditors(ctx context.Context) ([]string, error) {
	return f.stored, nil
}

func (f *fakeEditorStore) SaveEditors(ctx context.Context, editors []string) error {
	f.stored = append([]string(nil), editors...)
	f.saves++
	return nil
}

func TestAllowlistAuthority(t *testing.T) {
	ctx := context.Background()

	t.Run("matches identities case-insensitively", func(t *testing.T) {
		a := NewAllowlistAuthority(&fakeEditorStore{}, []string{"Admin@Example.com"})

		identity, err := a.Authenticate(ctx, "admin@example.com")
		if err != nil {
			t.Fatalf("Authenticate failed: %v", err)
		}
		if identity != "admin@example.com" {
			t.Errorf("Identity = %q, want lower-cased", identity)
		}

		if _, err := a.Authenticate(ctx, "other@example.com"); !errors.Is(err, ErrRejected) {
			t.Errorf("Unknown identity = %v, want ErrRejected", err)
		}
	})

	t.Run("add editor persists and is idempotent", func(t *testing.T) {
		store := &fakeEditorStore{}
		a := NewAllowlistAuthority(store, nil)

		if err := a.AddEditor(ctx, "  New@Example.COM "); err != nil {
			t.Fatalf("AddEditor failed: %v", err)
		}
		if store.saves != 1 {
			t.Errorf("Expected 1 save, got %d", store.saves)
		}

		// Duplicates and empty identities are silent no-ops.
		if err := a.AddEditor(ctx, "new@example.com"); err != nil {
			t.Fatalf("AddEditor duplicate failed: %v", err)
		}
		if err := a.AddEditor(ctx, "   "); err != nil {
			t.Fatalf("AddEditor empty failed: %v", err)
		}
		if store.saves != 1 {
			t.Errorf("No-ops should not save; saves = %d", store.saves)
		}

		editors := a.Editors()
		if len(editors) != 1 || editors[0] != "new@example.com" {
			t.Errorf("Editors = %v, want [new@example.com]", editors)
		}
	})

	t.Run("load merges stored identities with seed", func(t *testing.T) {
		store := &fakeEditorStore{stored: []string{"stored@example.com"}}
		a := NewAllowlistAuthority(store, []string{"seed@example.com"})

		if err := a.Load(ctx); err != nil {
			t.Fatalf("Load failed: %v", err)
		}

		for _, identity := range []string{"seed@example.com", "stored@example.com"} {
			if _, err := a.Authenticate(ctx, identity); err != nil {
				t.Errorf("Authenticate(%q) failed after Load: %v", identity, err)
			}
		}
	})
}

func TestJWTManager(t *testing.T) {
	manager := NewJWTManager("test-secret-key-32-bytes-long!!!", time.Hour)

	token, err := manager.Generate("admin@example.com")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	claims, err := manager.Validate(token)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if claims.Identity != "admin@example.com" {
		t.Errorf("Identity = %q, want admin@example.com", claims.Identity)
	}
	if claims.ID == "" {
		t.Error("Expected non-empty token ID")
	}

	t.Run("rejects tampered token", func(t *testing.T) {
		other := NewJWTManager("a-completely-different-secret!!!", time.Hour)
		if _, err := other.Validate(token); err == nil {
			t.Error("Expected validation failure with wrong key")
		}
	})

	t.Run("rejects expired token", func(t *testing.T) {
		expired := NewJWTManager("test-secret-key-32-bytes-long!!!", -time.Minute)
		token, err := expired.Generate("admin@example.com")
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		if _, err := manager.Validate(token); err == nil {
			t.Error("Expected validation failure for expired token")
		}
	})
}
