package store

// DurableStore persists small key/value pairs across client restarts. It is
// the localStorage analogue: the bearer token, session id and expiry live
// here. SetAll writes its entries as one unit so paired fields can never be
// observed half-written.
type DurableStore interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	SetAll(values map[string]string) error
	Delete(keys ...string) error
}

// EphemeralStore holds key/value pairs for the lifetime of one client
// process, the sessionStorage analogue. A fresh process always starts empty,
// which is what forces per-tab re-validation of a saved token.
type EphemeralStore interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	SetAll(values map[string]string) error
	Delete(keys ...string) error
}
