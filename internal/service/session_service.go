package service

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/tallyapp/tally/internal/auth"
)

// SessionService exposes the access gate over HTTP: credential sign-in,
// sign-out, session inspection, and allow-list management when the
// allow-list authority is active.
type SessionService struct {
	gate       *auth.Gate
	jwtManager *auth.JWTManager
	allowlist  *auth.AllowlistAuthority // nil in shared-secret mode
	validator  *validator.Validate
}

// NewSessionService creates a new SessionService. allowlist may be nil when
// the configured authority has no editor list to manage.
func NewSessionService(gate *auth.Gate, jwtManager *auth.JWTManager, allowlist *auth.AllowlistAuthority) *SessionService {
	return &SessionService{
		gate:       gate,
		jwtManager: jwtManager,
		allowlist:  allowlist,
		validator:  validator.New(),
	}
}

// LoginRequest is the payload for authenticating as editor.
// The credential is the shared secret or a verified identity, depending on
// the configured authority.
type LoginRequest struct {
	Credential string `json:"credential" validate:"required"`
}

// SessionResponse describes the current access state; Token is present
// only in the login response.
type SessionResponse struct {
	State    string `json:"state"` // "editor" or "view-only"
	Identity string `json:"identity,omitempty"`
	Token    string `json:"token,omitempty"`
}

// AddEditorRequest is the payload for growing the editor allow-list.
type AddEditorRequest struct {
	Identity string `json:"identity" validate:"required"`
}

// Login validates the credential, switches the gate to editor mode, and
// issues a session token for subsequent mutating requests.
func (s *SessionService) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	if err := s.validator.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation failed", err)
		return
	}

	identity, err := s.gate.Authenticate(r.Context(), req.Credential)
	if err != nil {
		if errors.Is(err, auth.ErrRejected) {
			slog.Warn("Login rejected", "remote_addr", r.RemoteAddr)
			writeError(w, http.StatusUnauthorized, "credential rejected", nil)
			return
		}
		slog.Error("Login failed", "error", err)
		writeError(w, http.StatusInternalServerError, "authentication unavailable", nil)
		return
	}

	token, err := s.jwtManager.Generate(identity)
	if err != nil {
		slog.Error("Failed to generate session token", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create session", nil)
		return
	}

	slog.Info("Editor signed in", "identity", identity)
	writeJSON(w, http.StatusOK, SessionResponse{
		State:    "editor",
		Identity: identity,
		Token:    token,
	})
}

// Logout unconditionally returns the gate to view-only mode.
// Session tokens are stateless; discarding them is the client's side of
// sign-out, the gate transition is the server's.
func (s *SessionService) Logout(w http.ResponseWriter, r *http.Request) {
	s.gate.Deauthenticate()
	slog.Info("Editor signed out")
	writeJSON(w, http.StatusOK, SessionResponse{State: "view-only"})
}

// GetSession reports the current access state so a client can render the
// right mode without attempting a mutation.
func (s *SessionService) GetSession(w http.ResponseWriter, r *http.Request) {
	resp := SessionResponse{State: "view-only"}
	if s.gate.CanMutate() {
		resp.State = "editor"
		resp.Identity = s.gate.Identity()
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListEditors returns the authorized-editor identities.
func (s *SessionService) ListEditors(w http.ResponseWriter, r *http.Request) {
	if s.allowlist == nil {
		writeError(w, http.StatusNotFound, "no editor allow-list configured", nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"editors": s.allowlist.Editors()})
}

// AddEditor authorizes a new identity. Duplicates are silent no-ops so the
// endpoint is idempotent.
func (s *SessionService) AddEditor(w http.ResponseWriter, r *http.Request) {
	if s.allowlist == nil {
		writeError(w, http.StatusNotFound, "no editor allow-list configured", nil)
		return
	}

	var req AddEditorRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	if err := s.validator.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation failed", err)
		return
	}

	if err := s.allowlist.AddEditor(r.Context(), req.Identity); err != nil {
		slog.Error("Failed to persist editor allow-list", "error", err)
		writeError(w, http.StatusServiceUnavailable, "failed to persist allow-list", nil)
		return
	}

	slog.Info("Editor authorized", "identity", req.Identity)
	writeJSON(w, http.StatusOK, map[string]any{"editors": s.allowlist.Editors()})
}
