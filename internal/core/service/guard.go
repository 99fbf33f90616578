package service

import (
	"net/url"

	"github.com/carrental/storefront/internal/core/domain"
)

const (
	MsgCheckingAuth = "Checking authentication..."
	MsgAdminOnly    = "You need administrator privileges to access this page."
)

// Requirement declares what a route needs. AdminOnly implies RequireAuth.
type Requirement struct {
	RequireAuth bool
	AdminOnly   bool
}

// Public reports whether the route is open to everyone.
func (r Requirement) Public() bool { return !r.RequireAuth && !r.AdminOnly }

type Outcome string

const (
	OutcomeAllow    Outcome = "allow"
	OutcomeWait     Outcome = "wait"
	OutcomeRedirect Outcome = "redirect"
	OutcomeDeny     Outcome = "deny"
)

// Decision is the guard verdict for one navigation.
type Decision struct {
	Outcome Outcome
	// Location is set for redirects.
	Location string
	// Message is set for wait and deny.
	Message string
	// Username names the signed-in user on deny.
	Username string
}

// Guard decides a navigation to path. It is a pure function of its inputs.
func Guard(req Requirement, st domain.SessionState, path string) Decision {
	if req.Public() {
		return Decision{Outcome: OutcomeAllow}
	}
	if st.Loading {
		return Decision{Outcome: OutcomeWait, Message: MsgCheckingAuth}
	}
	if !st.IsAuthenticated {
		return Decision{Outcome: OutcomeRedirect, Location: LoginLocation(defaultLoginPath, path)}
	}
	if req.AdminOnly && !st.IsAdmin {
		d := Decision{Outcome: OutcomeDeny, Message: MsgAdminOnly}
		if st.Identity != nil {
			d.Username = st.Identity.Username
		}
		return d
	}
	return Decision{Outcome: OutcomeAllow}
}

// LoginLocation builds the login URL carrying the originally requested path.
func LoginLocation(loginPath, from string) string {
	if from == "" {
		return loginPath
	}
	return loginPath + "?" + url.Values{"from": {from}}.Encode()
}
