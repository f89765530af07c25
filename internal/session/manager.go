package session

import (
	"context"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/WasteWatch/WW-Client/internal/api"
	"github.com/WasteWatch/WW-Client/internal/store"
)

// Storage keys. Token, session id and expiry are durable (survive a client
// restart); the tab session id is ephemeral and is what forces a fresh
// process to re-validate even when a saved token exists.
const (
	KeyToken     = "auth_token"
	KeySessionID = "session_id"
	KeyExpiry    = "session_expiry"
	KeyTabSess   = "tab_session_id"
)

// Options configures a Manager. Zero values fall back to the deployed
// defaults (24h session, 5m inactivity).
type Options struct {
	SessionTTL       time.Duration
	InactivityWindow time.Duration

	// OnLogout is called after local state is cleared, whether the logout was
	// explicit, expiry-driven or inactivity-driven. Optional.
	OnLogout func()
}

// Manager owns the authentication lifecycle for one client process: token
// persistence, startup re-validation, inactivity auto-logout and the
// authenticated-or-not answer the route guard consumes.
type Manager struct {
	api     *api.Client
	durable store.DurableStore
	tab     store.EphemeralStore

	ttl      time.Duration
	onLogout func()
	timer    *InactivityTimer

	mu       sync.Mutex
	identity *api.User

	now func() time.Time
}

// NewManager wires a Manager. The api client should read its bearer token
// from the same durable store (see TokenFrom).
func NewManager(client *api.Client, durable store.DurableStore, tab store.EphemeralStore, opts Options) *Manager {
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 24 * time.Hour
	}
	if opts.InactivityWindow <= 0 {
		opts.InactivityWindow = 5 * time.Minute
	}

	m := &Manager{
		api:      client,
		durable:  durable,
		tab:      tab,
		ttl:      opts.SessionTTL,
		onLogout: opts.OnLogout,
		now:      time.Now,
	}
	m.timer = NewInactivityTimer(opts.InactivityWindow, m.expire)
	return m
}

// TokenFrom adapts a durable store into the api.TokenSource the client needs.
func TokenFrom(durable store.DurableStore) api.TokenSource {
	return func() string {
		tok, _ := durable.Get(KeyToken)
		return tok
	}
}

// Login authenticates and, on success, persists the token, a new session id
// and the absolute expiry in one write, plus a fresh tab session id. If the
// login response carries no identity it is fetched from /me; a failure there
// is ignored, matching the deployed behavior.
func (m *Manager) Login(ctx context.Context, creds api.Credentials) (*api.User, error) {
	resp, err := m.api.Login(ctx, creds)
	if err != nil {
		return nil, err
	}

	if resp.Token != "" {
		expiry := m.now().Add(m.ttl)
		err := m.durable.SetAll(map[string]string{
			KeyToken:     resp.Token,
			KeySessionID: uuid.NewString(),
			KeyExpiry:    strconv.FormatInt(expiry.Unix(), 10),
		})
		if err != nil {
			return nil, err
		}
		if err := m.tab.Set(KeyTabSess, uuid.NewString()); err != nil {
			return nil, err
		}
	}

	ident := resp.User
	if ident == nil {
		ident, err = m.api.Me(ctx)
		if err != nil {
			log.Printf("[session] identity fetch after login failed: %v", err)
			ident = nil
		}
	}

	m.mu.Lock()
	m.identity = ident
	m.mu.Unlock()

	m.timer.Touch()
	return ident, nil
}

// Register forwards a registration. A returned token is persisted for
// immediate use but no session ids are minted; the user still logs in.
func (m *Manager) Register(ctx context.Context, payload api.RegisterPayload) (*api.AuthResponse, error) {
	resp, err := m.api.Register(ctx, payload)
	if err != nil {
		return nil, err
	}
	if resp.Token != "" {
		if err := m.durable.Set(KeyToken, resp.Token); err != nil {
			return nil, err
		}
	}
	return resp, nil
}

// Logout notifies the backend best-effort, then clears all local session
// state unconditionally. Local logout never fails.
func (m *Manager) Logout(ctx context.Context) {
	if err := m.api.Logout(ctx); err != nil {
		log.Printf("[session] backend logout failed (ignored): %v", err)
	}
	m.clearLocal()
}

// Current resolves the identity on startup. It authenticates only when a
// durable token, a tab session id for this process AND an unexpired stored
// expiry all hold; otherwise stored state is cleared and nil (anonymous) is
// returned. Backend failures during the check degrade silently to anonymous.
func (m *Manager) Current(ctx context.Context) *api.User {
	m.mu.Lock()
	if m.identity != nil {
		ident := m.identity
		m.mu.Unlock()
		return ident
	}
	m.mu.Unlock()

	token, haveToken := m.durable.Get(KeyToken)
	_, haveTab := m.tab.Get(KeyTabSess)
	if !haveToken || token == "" || !haveTab {
		// A saved token without a tab session id is deliberately not enough.
		if haveToken {
			m.clearStores()
		}
		return nil
	}

	if raw, ok := m.durable.Get(KeyExpiry); ok {
		sec, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || !m.now().Before(time.Unix(sec, 0)) {
			log.Printf("[session] stored session expired, clearing")
			m.clearStores()
			return nil
		}
	}

	ident, err := m.api.Me(ctx)
	if err != nil {
		log.Printf("[session] startup identity check failed, degrading to anonymous: %v", err)
		m.clearStores()
		return nil
	}

	m.mu.Lock()
	m.identity = ident
	m.mu.Unlock()

	m.timer.Touch()
	return ident
}

// TouchActivity reschedules the inactivity deadline. Call it on every
// qualifying user interaction; calls while anonymous are ignored.
func (m *Manager) TouchActivity() {
	if m.Authenticated() {
		m.timer.Touch()
	}
}

// Suspend pauses the inactivity countdown (client lost visibility).
func (m *Manager) Suspend() {
	m.timer.Suspend()
}

// Resume restarts the countdown fresh from now (client visible again).
func (m *Manager) Resume() {
	if m.Authenticated() {
		m.timer.Resume()
	} else {
		m.timer.Cancel()
	}
}

// Authenticated reports whether an identity is currently established. This is
// the answer the route guard consumes.
func (m *Manager) Authenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.identity != nil
}

// Identity returns the cached identity without touching the backend.
func (m *Manager) Identity() *api.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.identity
}

// Close cancels the pending inactivity timer. Part of application teardown.
func (m *Manager) Close() {
	m.timer.Cancel()
}

// expire is the inactivity deadline firing.
func (m *Manager) expire() {
	log.Printf("[session] inactivity window elapsed, logging out")
	m.Logout(context.Background())
}

// clearLocal resets everything local: stores, timer, cached identity.
func (m *Manager) clearLocal() {
	m.clearStores()
	m.timer.Cancel()

	m.mu.Lock()
	m.identity = nil
	m.mu.Unlock()

	if m.onLogout != nil {
		m.onLogout()
	}
}

func (m *Manager) clearStores() {
	if err := m.durable.Delete(KeyToken, KeySessionID, KeyExpiry); err != nil {
		log.Printf("[session] clearing durable store failed: %v", err)
	}
	if err := m.tab.Delete(KeyTabSess); err != nil {
		log.Printf("[session] clearing tab store failed: %v", err)
	}
}
