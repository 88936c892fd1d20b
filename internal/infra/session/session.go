// internal/infra/session/session.go
package session

import (
	"encoding/json"
	"fmt"
	"net/http"

	"eara_connect_portal/internal/domain/user"

	"github.com/gorilla/sessions"
)

const (
	CookieName = "eara_session"

	keyUser          = "user"
	keyAuthenticated = "authenticated"
	keyBackend       = "backend_session"

	FlashSuccess = "success"
	FlashError   = "error"
)

var ErrNotAuthenticated = fmt.Errorf("no authenticated user in session")

// NewCookieStore builds the signed and encrypted cookie store for portal sessions.
func NewCookieStore(secret []byte, secure bool) *sessions.CookieStore {
	var encKey []byte
	if len(secret) >= 32 {
		encKey = secret[:32]
	}
	store := sessions.NewCookieStore(secret, encKey)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   8 * 60 * 60,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// Manager owns the session lifecycle: set at login, read per request, cleared at logout.
type Manager struct {
	store sessions.Store
}

func NewManager(store sessions.Store) *Manager {
	return &Manager{store: store}
}

func (m *Manager) get(r *http.Request) *sessions.Session {
	// A cookie that no longer decodes (rotated secret) still yields a fresh, empty session.
	s, _ := m.store.Get(r, CookieName)
	return s
}

// CurrentUser returns the logged-in user, or false when the session carries none.
func (m *Manager) CurrentUser(r *http.Request) (*user.SessionUser, bool) {
	s := m.get(r)
	if ok, _ := s.Values[keyAuthenticated].(bool); !ok {
		return nil, false
	}
	raw, _ := s.Values[keyUser].(string)
	if raw == "" {
		return nil, false
	}
	var u user.SessionUser
	if err := json.Unmarshal([]byte(raw), &u); err != nil || u.ID == 0 {
		return nil, false
	}
	return &u, true
}

// BackendSession is the backend cookie captured at login.
func (m *Manager) BackendSession(r *http.Request) string {
	v, _ := m.get(r).Values[keyBackend].(string)
	return v
}

func (m *Manager) Login(w http.ResponseWriter, r *http.Request, u user.SessionUser, backendCookie string) error {
	raw, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("encode session user: %w", err)
	}
	s := m.get(r)
	s.Values[keyUser] = string(raw)
	s.Values[keyAuthenticated] = true
	if backendCookie != "" {
		s.Values[keyBackend] = backendCookie
	} else {
		delete(s.Values, keyBackend)
	}
	if err := s.Save(r, w); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Logout removes the user record and auth flag and expires the cookie.
func (m *Manager) Logout(w http.ResponseWriter, r *http.Request) error {
	s := m.get(r)
	delete(s.Values, keyUser)
	delete(s.Values, keyAuthenticated)
	delete(s.Values, keyBackend)
	s.Options.MaxAge = -1
	if err := s.Save(r, w); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (m *Manager) AddFlash(w http.ResponseWriter, r *http.Request, kind, message string) error {
	s := m.get(r)
	s.AddFlash(message, kind)
	return s.Save(r, w)
}

// Flashes pops the pending banners of both kinds.
func (m *Manager) Flashes(w http.ResponseWriter, r *http.Request) map[string][]string {
	s := m.get(r)
	out := make(map[string][]string)
	for _, kind := range []string{FlashSuccess, FlashError} {
		for _, f := range s.Flashes(kind) {
			if msg, ok := f.(string); ok {
				out[kind] = append(out[kind], msg)
			}
		}
	}
	if len(out) > 0 {
		_ = s.Save(r, w)
	}
	return out
}
