package auth

import "context"

// CallbackPath is where the provider sends the browser back with a code.
const CallbackPath = "/auth/login/callback"

// User is the identity snapshot taken from the provider at login. It is
// never refreshed; a new login produces a new snapshot.
type User struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
}

// Session is the result of a successful login. Token is the only part
// handed to the browser.
type Session struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// Authenticator runs the provider login protocol and decides whether the
// caller may have a session at all.
type Authenticator interface {
	// StartLogin returns the provider URL the browser is sent to.
	StartLogin() string

	// Login exchanges the callback code and, if the user passes the
	// authorization gate, mints a session.
	Login(ctx context.Context, code string) (Session, error)
}
