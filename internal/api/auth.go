package api

import "context"

// Credentials is the login payload.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterPayload is the registration payload.
type RegisterPayload struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
}

// AuthResponse is what the auth endpoints return. User may be nil on login;
// callers fall back to Me.
type AuthResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user,omitempty"`
}

// Login exchanges credentials for a bearer token. Any failure, bad
// credentials or an unreachable backend alike, comes back as *AuthError so the
// caller has one message to surface.
func (c *Client) Login(ctx context.Context, creds Credentials) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.postJSON(ctx, "/api/auth/login", creds, &resp); err != nil {
		if ae, ok := err.(*AuthError); ok {
			return nil, ae
		}
		return nil, &AuthError{Message: "login failed: " + err.Error()}
	}
	return &resp, nil
}

// Register creates an account. Validation and duplicate-identity failures
// keep their typed form for field-level display.
func (c *Client) Register(ctx context.Context, payload RegisterPayload) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.postJSON(ctx, "/api/auth/register", payload, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Me fetches the identity behind the current bearer token.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var u User
	if err := c.getJSON(ctx, "/api/auth/me", &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Logout notifies the backend. Callers treat failure as best-effort.
func (c *Client) Logout(ctx context.Context) error {
	return c.postJSON(ctx, "/api/auth/logout", nil, nil)
}
