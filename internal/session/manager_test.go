package session_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/WasteWatch/WW-Client/internal/api"
	"github.com/WasteWatch/WW-Client/internal/session"
	"github.com/WasteWatch/WW-Client/internal/store"
)

// stubBackend is the slice of the backend the session manager talks to.
type stubBackend struct {
	mu          sync.Mutex
	meFails     bool
	logoutFails bool
	omitUser    bool
	logoutCalls int
}

func (b *stubBackend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		omit := b.omitUser
		b.mu.Unlock()

		resp := map[string]any{"token": "T1"}
		if !omit {
			resp["user"] = map[string]any{"id": 1, "name": "Pat", "email": "pat@example.com", "role": "EMPLOYEE"}
		}
		json.NewEncoder(w).Encode(resp)
	})
	mux.HandleFunc("/api/auth/me", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		fail := b.meFails
		b.mu.Unlock()

		if fail {
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]string{"message": "backend down"})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"id": 1, "name": "Pat", "email": "pat@example.com", "role": "EMPLOYEE"})
	})
	mux.HandleFunc("/api/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.logoutCalls++
		fail := b.logoutFails
		b.mu.Unlock()

		if fail {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"message": "Logout successful"})
	})
	return mux
}

type fixture struct {
	backend *stubBackend
	durable *store.MemoryStore
	tab     *store.MemoryStore
	manager *session.Manager
}

func newFixture(t *testing.T, opts session.Options) *fixture {
	t.Helper()

	backend := &stubBackend{}
	srv := httptest.NewServer(backend.handler())
	t.Cleanup(srv.Close)

	durable := store.NewMemoryStore()
	tab := store.NewMemoryStore()
	client := api.NewClient(srv.URL, session.TokenFrom(durable))
	manager := session.NewManager(client, durable, tab, opts)
	t.Cleanup(manager.Close)

	return &fixture{backend: backend, durable: durable, tab: tab, manager: manager}
}

// TestLoginPersistsDurableAndTabState verifies a successful login stores the
// token, a session id and an absolute expiry durably, plus a tab session id.
func TestLoginPersistsDurableAndTabState(t *testing.T) {
	f := newFixture(t, session.Options{})

	user, err := f.manager.Login(context.Background(), api.Credentials{Email: "pat@example.com", Password: "secret"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if user == nil || user.Email != "pat@example.com" {
		t.Fatalf("unexpected identity: %+v", user)
	}

	if tok, _ := f.durable.Get(session.KeyToken); tok != "T1" {
		t.Errorf("expected durable token T1, got %q", tok)
	}
	if sid, ok := f.durable.Get(session.KeySessionID); !ok || sid == "" {
		t.Error("expected a durable session id")
	}
	raw, ok := f.durable.Get(session.KeyExpiry)
	if !ok {
		t.Fatal("expected a durable expiry")
	}
	sec, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		t.Fatalf("expiry not a unix timestamp: %q", raw)
	}
	if !time.Unix(sec, 0).After(time.Now()) {
		t.Errorf("expiry %v is not in the future", time.Unix(sec, 0))
	}
	if tabID, ok := f.tab.Get(session.KeyTabSess); !ok || tabID == "" {
		t.Error("expected a tab session id")
	}
	if !f.manager.Authenticated() {
		t.Error("expected manager to report authenticated")
	}
}

// TestLoginFallsBackToIdentityEndpoint verifies the identity is fetched from
// /me when the login response omits the user.
func TestLoginFallsBackToIdentityEndpoint(t *testing.T) {
	f := newFixture(t, session.Options{})
	f.backend.omitUser = true

	user, err := f.manager.Login(context.Background(), api.Credentials{Email: "pat@example.com", Password: "secret"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if user == nil || user.Name != "Pat" {
		t.Fatalf("expected identity from /me, got %+v", user)
	}
}

// TestSavedTokenWithoutTabSessionIsAnonymous verifies a fresh process with a
// durable token but no tab session id resolves anonymous and clears the
// leftover state.
func TestSavedTokenWithoutTabSessionIsAnonymous(t *testing.T) {
	f := newFixture(t, session.Options{})

	f.durable.SetAll(map[string]string{
		session.KeyToken:     "stale",
		session.KeySessionID: "S1",
		session.KeyExpiry:    strconv.FormatInt(time.Now().Add(time.Hour).Unix(), 10),
	})

	if user := f.manager.Current(context.Background()); user != nil {
		t.Fatalf("expected anonymous, got %+v", user)
	}
	if _, ok := f.durable.Get(session.KeyToken); ok {
		t.Error("expected stale token to be cleared")
	}
}

// TestExpiredStoredSessionIsCleared verifies a stored session past its
// absolute expiry resolves anonymous without consulting the backend token.
func TestExpiredStoredSessionIsCleared(t *testing.T) {
	f := newFixture(t, session.Options{})

	f.durable.SetAll(map[string]string{
		session.KeyToken:     "T1",
		session.KeySessionID: "S1",
		session.KeyExpiry:    strconv.FormatInt(time.Now().Add(-time.Minute).Unix(), 10),
	})
	f.tab.Set(session.KeyTabSess, "TAB1")

	if user := f.manager.Current(context.Background()); user != nil {
		t.Fatalf("expected anonymous for expired session, got %+v", user)
	}
	if _, ok := f.durable.Get(session.KeyToken); ok {
		t.Error("expected expired token to be cleared")
	}
	if f.manager.Authenticated() {
		t.Error("expected manager to stay anonymous")
	}
}

// TestIdentityCheckFailureDegradesToAnonymous verifies a backend failure
// during the startup identity check silently degrades to anonymous.
func TestIdentityCheckFailureDegradesToAnonymous(t *testing.T) {
	f := newFixture(t, session.Options{})
	f.backend.meFails = true

	f.durable.SetAll(map[string]string{
		session.KeyToken:     "T1",
		session.KeySessionID: "S1",
		session.KeyExpiry:    strconv.FormatInt(time.Now().Add(time.Hour).Unix(), 10),
	})
	f.tab.Set(session.KeyTabSess, "TAB1")

	if user := f.manager.Current(context.Background()); user != nil {
		t.Fatalf("expected anonymous after identity failure, got %+v", user)
	}
	if _, ok := f.durable.Get(session.KeyToken); ok {
		t.Error("expected token to be cleared after identity failure")
	}
}

// TestCurrentRestoresValidSession verifies the happy path: token + tab id +
// unexpired expiry resolves the identity from the backend.
func TestCurrentRestoresValidSession(t *testing.T) {
	f := newFixture(t, session.Options{})

	f.durable.SetAll(map[string]string{
		session.KeyToken:     "T1",
		session.KeySessionID: "S1",
		session.KeyExpiry:    strconv.FormatInt(time.Now().Add(time.Hour).Unix(), 10),
	})
	f.tab.Set(session.KeyTabSess, "TAB1")

	user := f.manager.Current(context.Background())
	if user == nil || user.Name != "Pat" {
		t.Fatalf("expected restored identity, got %+v", user)
	}
	if !f.manager.Authenticated() {
		t.Error("expected manager to report authenticated")
	}
}

// TestLogoutClearsLocalStateDespiteBackendFailure verifies local logout
// always succeeds even when the backend call does not.
func TestLogoutClearsLocalStateDespiteBackendFailure(t *testing.T) {
	f := newFixture(t, session.Options{})

	if _, err := f.manager.Login(context.Background(), api.Credentials{Email: "pat@example.com", Password: "secret"}); err != nil {
		t.Fatalf("Login: %v", err)
	}
	f.backend.logoutFails = true

	f.manager.Logout(context.Background())

	if f.manager.Authenticated() {
		t.Error("expected anonymous after logout")
	}
	if _, ok := f.durable.Get(session.KeyToken); ok {
		t.Error("expected durable token to be cleared")
	}
	if _, ok := f.tab.Get(session.KeyTabSess); ok {
		t.Error("expected tab session id to be cleared")
	}
}

// TestInactivityLogsOutExactlyOnce verifies the inactivity window fires a
// single automatic logout.
func TestInactivityLogsOutExactlyOnce(t *testing.T) {
	var logouts atomic.Int32
	f := newFixture(t, session.Options{
		InactivityWindow: 60 * time.Millisecond,
		OnLogout:         func() { logouts.Add(1) },
	})

	if _, err := f.manager.Login(context.Background(), api.Credentials{Email: "pat@example.com", Password: "secret"}); err != nil {
		t.Fatalf("Login: %v", err)
	}

	time.Sleep(300 * time.Millisecond)

	if n := logouts.Load(); n != 1 {
		t.Fatalf("expected exactly one automatic logout, got %d", n)
	}
	if f.manager.Authenticated() {
		t.Error("expected anonymous after inactivity logout")
	}
	if _, ok := f.durable.Get(session.KeyToken); ok {
		t.Error("expected token cleared by inactivity logout")
	}
}

// TestActivityDefersInactivityLogout verifies qualifying activity keeps the
// session alive past the raw window.
func TestActivityDefersInactivityLogout(t *testing.T) {
	var logouts atomic.Int32
	f := newFixture(t, session.Options{
		InactivityWindow: 100 * time.Millisecond,
		OnLogout:         func() { logouts.Add(1) },
	})

	if _, err := f.manager.Login(context.Background(), api.Credentials{Email: "pat@example.com", Password: "secret"}); err != nil {
		t.Fatalf("Login: %v", err)
	}

	for i := 0; i < 5; i++ {
		time.Sleep(50 * time.Millisecond)
		f.manager.TouchActivity()
	}
	// 250ms elapsed, far past the 100ms window, but activity kept it alive.
	if n := logouts.Load(); n != 0 {
		t.Fatalf("logged out %d times despite activity", n)
	}

	time.Sleep(300 * time.Millisecond)
	if n := logouts.Load(); n != 1 {
		t.Fatalf("expected one logout after activity stopped, got %d", n)
	}
}

// TestSuspendPausesInactivityCountdown verifies a suspended session outlives
// the window and Resume restarts a full window.
func TestSuspendPausesInactivityCountdown(t *testing.T) {
	var logouts atomic.Int32
	f := newFixture(t, session.Options{
		InactivityWindow: 80 * time.Millisecond,
		OnLogout:         func() { logouts.Add(1) },
	})

	if _, err := f.manager.Login(context.Background(), api.Credentials{Email: "pat@example.com", Password: "secret"}); err != nil {
		t.Fatalf("Login: %v", err)
	}

	f.manager.Suspend()
	time.Sleep(250 * time.Millisecond)
	if !f.manager.Authenticated() {
		t.Fatal("suspended session logged out")
	}

	f.manager.Resume()
	time.Sleep(300 * time.Millisecond)
	if n := logouts.Load(); n != 1 {
		t.Fatalf("expected one logout after resume, got %d", n)
	}
}
