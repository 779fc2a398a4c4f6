package service

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallyapp/tally/internal/auth"
	"github.com/tallyapp/tally/internal/ledger"
	"github.com/tallyapp/tally/internal/storage/memory"
)

// setupAllowlistServer wires a router whose authority is an identity
// allow-list seeded with one editor.
func setupAllowlistServer(t *testing.T) http.Handler {
	t.Helper()

	store := memory.New()
	l := ledger.New(store)

	allowlist := auth.NewAllowlistAuthority(store, []string{"owner@example.com"})
	gate := auth.NewGate(allowlist)
	jwtManager := auth.NewJWTManager("test-secret-key-32-bytes-long!!!", time.Hour)

	return NewRouter(
		NewLedgerService(l),
		NewSessionService(gate, jwtManager, allowlist),
		jwtManager,
		gate,
	)
}

func TestSessionLifecycle(t *testing.T) {
	handler := setupAllowlistServer(t)

	t.Run("starts in view-only mode", func(t *testing.T) {
		w := doJSON(t, handler, "GET", "/api/v1/session", "", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var session SessionResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &session))
		assert.Equal(t, "view-only", session.State)
		assert.Empty(t, session.Identity)
	})

	t.Run("rejects unknown identity", func(t *testing.T) {
		w := doJSON(t, handler, "POST", "/api/v1/session", "",
			LoginRequest{Credential: "stranger@example.com"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)

		w = doJSON(t, handler, "GET", "/api/v1/session", "", nil)
		var session SessionResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &session))
		assert.Equal(t, "view-only", session.State, "rejection must not change state")
	})

	t.Run("accepts allow-listed identity case-insensitively", func(t *testing.T) {
		w := doJSON(t, handler, "POST", "/api/v1/session", "",
			LoginRequest{Credential: "Owner@Example.COM"})
		require.Equal(t, http.StatusOK, w.Code)

		var session SessionResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &session))
		assert.Equal(t, "editor", session.State)
		assert.Equal(t, "owner@example.com", session.Identity)
		assert.NotEmpty(t, session.Token)
	})

	t.Run("logout reverts to view-only", func(t *testing.T) {
		w := doJSON(t, handler, "DELETE", "/api/v1/session", "", nil)
		require.Equal(t, http.StatusOK, w.Code)

		w = doJSON(t, handler, "GET", "/api/v1/session", "", nil)
		var session SessionResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &session))
		assert.Equal(t, "view-only", session.State)
	})

	t.Run("rejects missing credential", func(t *testing.T) {
		w := doJSON(t, handler, "POST", "/api/v1/session", "", LoginRequest{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestEditorAllowlistEndpoints(t *testing.T) {
	handler := setupAllowlistServer(t)

	w := doJSON(t, handler, "POST", "/api/v1/session", "",
		LoginRequest{Credential: "owner@example.com"})
	require.Equal(t, http.StatusOK, w.Code)
	var session SessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &session))
	token := session.Token

	t.Run("listing is public", func(t *testing.T) {
		w := doJSON(t, handler, "GET", "/api/v1/editors", "", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Editors []string `json:"editors"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, []string{"owner@example.com"}, resp.Editors)
	})

	t.Run("adding requires editor session", func(t *testing.T) {
		w := doJSON(t, handler, "POST", "/api/v1/editors", "",
			AddEditorRequest{Identity: "new@example.com"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("editor can grow the allow-list", func(t *testing.T) {
		w := doJSON(t, handler, "POST", "/api/v1/editors", token,
			AddEditorRequest{Identity: "Second@Example.com"})
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Editors []string `json:"editors"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, []string{"owner@example.com", "second@example.com"}, resp.Editors)

		// The newly listed identity can sign in.
		w = doJSON(t, handler, "POST", "/api/v1/session", "",
			LoginRequest{Credential: "second@example.com"})
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("duplicate add is a no-op", func(t *testing.T) {
		w := doJSON(t, handler, "POST", "/api/v1/editors", token,
			AddEditorRequest{Identity: "owner@example.com"})
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Editors []string `json:"editors"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Len(t, resp.Editors, 2)
	})
}

func TestSessionWithSecretAuthority(t *testing.T) {
	store := memory.New()
	l := ledger.New(store)

	authority, err := auth.NewSecretAuthority(testSecret)
	require.NoError(t, err)
	gate := auth.NewGate(authority)
	jwtManager := auth.NewJWTManager("test-secret-key-32-bytes-long!!!", time.Hour)

	handler := NewRouter(
		NewLedgerService(l),
		NewSessionService(gate, jwtManager, nil),
		jwtManager,
		gate,
	)

	t.Run("editor endpoints absent without allow-list", func(t *testing.T) {
		w := doJSON(t, handler, "GET", "/api/v1/editors", "", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("secret grants the editor identity", func(t *testing.T) {
		w := doJSON(t, handler, "POST", "/api/v1/session", "",
			LoginRequest{Credential: testSecret})
		require.Equal(t, http.StatusOK, w.Code)

		var session SessionResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &session))
		assert.Equal(t, "editor", session.Identity)
	})
}
