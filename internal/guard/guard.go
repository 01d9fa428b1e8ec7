// Package guard gates navigation on the presence of a session token.
//
// The decision is taken fresh on every request and never cached, so a
// session cleared by one request gates the very next one.
package guard

import "net/http"

type Access int

const (
	// Public pages render for everyone.
	Public Access = iota
	// Protected pages need a token; without one the user goes to login.
	Protected
	// GuestOnly pages (login, register) send a signed-in user home.
	GuestOnly
)

type Action int

const (
	Render Action = iota
	Redirect
)

type Decision struct {
	Action   Action
	Location string
}

// Authenticator reports whether a session token is present.
type Authenticator interface {
	Authenticated() bool
}

type Guard struct {
	sessions  Authenticator
	loginPath string
	homePath  string
}

func New(sessions Authenticator, loginPath, homePath string) *Guard {
	if loginPath == "" {
		loginPath = "/login"
	}
	if homePath == "" {
		homePath = "/dashboard"
	}
	return &Guard{sessions: sessions, loginPath: loginPath, homePath: homePath}
}

func (g *Guard) Decide(a Access) Decision {
	switch a {
	case Protected:
		if !g.sessions.Authenticated() {
			return Decision{Action: Redirect, Location: g.loginPath}
		}
	case GuestOnly:
		if g.sessions.Authenticated() {
			return Decision{Action: Redirect, Location: g.homePath}
		}
	}
	return Decision{Action: Render}
}

// Middleware applies Decide to every request. Redirects use 303 so a
// gated POST is followed by a GET.
func (g *Guard) Middleware(a Access) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d := g.Decide(a)
			if d.Action == Redirect {
				http.Redirect(w, r, d.Location, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
