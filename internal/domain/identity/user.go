package identity

import (
	"context"
	"strings"

	"github.com/ugmart/storefront/internal/domain/shared"
)

// Role is the role claim carried by the access token
type Role string

const (
	RoleUser       Role = "USER"
	RoleSuperAdmin Role = "SUPER_ADMIN"
)

// IsAdmin reports whether the role may use the admin dashboard
func (r Role) IsAdmin() bool {
	return r == RoleSuperAdmin
}

// IsCustomer reports whether the role may use the account pages
func (r Role) IsCustomer() bool {
	return r == RoleUser || r == RoleSuperAdmin
}

// LandingPath is where a signed-in user is sent from the login page
func (r Role) LandingPath() string {
	if r.IsAdmin() {
		return "/dashboard"
	}
	return "/"
}

// User is the account returned by the backend on login or refresh
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// Session is a signed-in user plus the Set-Cookie headers the backend
// issued, which the gateway relays to the browser unchanged.
type Session struct {
	User    User
	Cookies []string
}

// Registration is the signup form
type Registration struct {
	Name     string
	Email    string
	Password string
}

const minPasswordLength = 6

// Validate checks the signup form
func (r *Registration) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
	switch {
	case r.Name == "":
		return shared.InvalidInput("Name is required")
	case !shared.ValidEmail(r.Email):
		return shared.InvalidInput("Please enter a valid email address")
	case len(r.Password) < minPasswordLength:
		return shared.InvalidInput("Password must be at least 6 characters")
	}
	return nil
}

// Credentials is the login form
type Credentials struct {
	Email    string
	Password string
}

// Validate checks the login form
func (c *Credentials) Validate() error {
	c.Email = strings.TrimSpace(c.Email)
	if c.Email == "" || c.Password == "" {
		return shared.InvalidInput("Email and password are required")
	}
	return nil
}

// AuthGateway is the authentication side of the store backend
type AuthGateway interface {
	// Register creates an account and returns its id
	Register(ctx context.Context, reg Registration) (string, error)

	// Login signs a user in
	Login(ctx context.Context, creds Credentials) (*Session, error)

	// Logout ends the backend session and returns cookies that clear it
	Logout(ctx context.Context) ([]string, error)

	// Refresh exchanges the refresh cookie for a new session
	Refresh(ctx context.Context) (*Session, error)
}
