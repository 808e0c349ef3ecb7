package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DEBABRATA1331/eyeq-iop-tracker/internal/crypto"
	"github.com/DEBABRATA1331/eyeq-iop-tracker/internal/session"
)

const testSecret = "test-secret"

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireAuthDeniesWithoutSession(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard", nil)

	RequireAuth(okHandler()).ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestRequireAuthDeniesUnverifiedSession(t *testing.T) {
	store := session.NewStore(time.Hour)
	mgr := NewSessionManager(store, testSecret, time.Hour)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard", nil)

	mgr.LoadSession(RequireAuth(okHandler())).ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestRequireAuthAllowsVerifiedSession(t *testing.T) {
	store := session.NewStore(time.Hour)
	mgr := NewSessionManager(store, testSecret, time.Hour)

	id, state := store.Create()
	state.Email = "user@example.com"
	state.Authenticated = true

	token, err := crypto.GenerateSessionToken(id, testSecret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateSessionToken() unexpected error: %v", err)
	}

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})

	mgr.LoadSession(RequireAuth(okHandler())).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusOK)
	}
}

func TestLoadSessionMintsCookie(t *testing.T) {
	store := session.NewStore(time.Hour)
	mgr := NewSessionManager(store, testSecret, time.Hour)

	var sawSession bool
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, sawSession = SessionFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)

	mgr.LoadSession(inner).ServeHTTP(rr, req)

	if !sawSession {
		t.Error("handler did not receive a session record")
	}

	var minted bool
	for _, c := range rr.Result().Cookies() {
		if c.Name == SessionCookie && c.Value != "" {
			minted = true
			if !c.HttpOnly {
				t.Error("session cookie should be HttpOnly")
			}
		}
	}
	if !minted {
		t.Error("no session cookie minted for a fresh caller")
	}
}

func TestLoadSessionRejectsForgedCookie(t *testing.T) {
	store := session.NewStore(time.Hour)
	mgr := NewSessionManager(store, testSecret, time.Hour)

	id, state := store.Create()
	state.Authenticated = true

	// Signed with the wrong secret: the session must not be resolved.
	forged, err := crypto.GenerateSessionToken(id, "wrong-secret", time.Hour)
	if err != nil {
		t.Fatalf("GenerateSessionToken() unexpected error: %v", err)
	}

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: forged})

	mgr.LoadSession(RequireAuth(okHandler())).ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}
