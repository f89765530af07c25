package guard

import "sync"

// SessionChecker is the one question the guard asks the session layer.
// *session.Manager satisfies it.
type SessionChecker interface {
	Authenticated() bool
}

// Decision is the guard's answer for a requested path.
type Decision struct {
	Allow bool
	// RedirectTo is set when Allow is false; it is the login path.
	RedirectTo string
}

// Guard gates access to protected views. Explicitly public paths always
// pass; anything else needs an authenticated session. A denied request's
// path is remembered so the post-login flow can return the user to it.
type Guard struct {
	session   SessionChecker
	loginPath string
	public    map[string]struct{}

	mu       sync.Mutex
	intended string
}

// New creates a Guard. loginPath is always treated as public.
func New(session SessionChecker, loginPath string, publicPaths ...string) *Guard {
	g := &Guard{
		session:   session,
		loginPath: loginPath,
		public:    make(map[string]struct{}, len(publicPaths)+1),
	}
	g.public[loginPath] = struct{}{}
	for _, p := range publicPaths {
		g.public[p] = struct{}{}
	}
	return g
}

// Check decides whether the path may be shown right now.
func (g *Guard) Check(path string) Decision {
	if _, ok := g.public[path]; ok {
		return Decision{Allow: true}
	}
	if g.session.Authenticated() {
		return Decision{Allow: true}
	}

	g.mu.Lock()
	g.intended = path
	g.mu.Unlock()

	return Decision{RedirectTo: g.loginPath}
}

// ConsumeIntended returns the path that was blocked before login, clearing
// it. Empty means the user came to login directly.
func (g *Guard) ConsumeIntended() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	p := g.intended
	g.intended = ""
	return p
}
