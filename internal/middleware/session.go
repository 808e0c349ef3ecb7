package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/DEBABRATA1331/eyeq-iop-tracker/internal/crypto"
	"github.com/DEBABRATA1331/eyeq-iop-tracker/internal/session"
)

type contextKey string

const sessionStateKey contextKey = "sessionState"

// SessionCookie is the name of the signed cookie carrying the session id.
const SessionCookie = "eyeq_session"

// SessionManager resolves the session cookie into the server-side session
// record, minting a fresh session when the cookie is absent or invalid.
type SessionManager struct {
	store  *session.Store
	secret string
	ttl    time.Duration
}

// NewSessionManager creates a new SessionManager.
func NewSessionManager(store *session.Store, secret string, ttl time.Duration) *SessionManager {
	return &SessionManager{store: store, secret: secret, ttl: ttl}
}

// LoadSession attaches a session record to every request. The cookie value
// is a signed token holding only the opaque session id; all state stays in
// the server-side store.
func (m *SessionManager) LoadSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var state *session.State

		if cookie, err := r.Cookie(SessionCookie); err == nil {
			if claims, err := crypto.ValidateSessionToken(cookie.Value, m.secret); err == nil {
				if st, ok := m.store.Get(claims.SessionID); ok {
					state = st
				}
			}
		}

		if state == nil {
			id, st := m.store.Create()
			token, err := crypto.GenerateSessionToken(id, m.secret, m.ttl)
			if err != nil {
				writeJSONError(w, http.StatusInternalServerError, "internal server error")
				return
			}
			http.SetCookie(w, &http.Cookie{
				Name:     SessionCookie,
				Value:    token,
				Path:     "/",
				MaxAge:   int(m.ttl.Seconds()),
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
			state = st
		}

		ctx := context.WithValue(r.Context(), sessionStateKey, state)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAuth denies any request whose session has not passed OTP
// verification. Pure guard, no side effects.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		state, ok := SessionFromContext(r.Context())
		if !ok || !state.Authenticated {
			writeJSONError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// SessionFromContext extracts the session record placed by LoadSession.
func SessionFromContext(ctx context.Context) (*session.State, bool) {
	state, ok := ctx.Value(sessionStateKey).(*session.State)
	return state, ok
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
