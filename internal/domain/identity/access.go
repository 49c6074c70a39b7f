package identity

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// RouteClass is the access rule a page path falls under
type RouteClass int

const (
	// RoutePassthrough covers assets and API calls the guard never inspects
	RoutePassthrough RouteClass = iota
	RoutePublic
	// RouteAuth is the login and signup pages: public, but signed-in users are sent away
	RouteAuth
	RouteAdmin
	RouteUser
	RouteProtected
)

func (c RouteClass) String() string {
	switch c {
	case RoutePassthrough:
		return "passthrough"
	case RoutePublic:
		return "public"
	case RouteAuth:
		return "auth"
	case RouteAdmin:
		return "admin"
	case RouteUser:
		return "user"
	default:
		return "protected"
	}
}

// IsPublic reports whether anonymous visitors may see the page
func (c RouteClass) IsPublic() bool {
	return c == RoutePublic || c == RouteAuth
}

// Cookie names read and cleared by the guard
const (
	AccessTokenCookie  = "accessToken"
	LegacyTokenCookie  = "token"
	RefreshTokenCookie = "refreshToken"
	LoginPath          = "/auth/login"
)

// SessionCookies are cleared whenever the guard rejects a token
var SessionCookies = []string{AccessTokenCookie, RefreshTokenCookie}

var (
	passthroughPrefixes = []string{"/_next", "/api", "/bff", "/favicon.ico"}
	publicPaths         = map[string]bool{
		"/":                 true,
		"/listing":          true,
		"/cart":             true,
		"/dashboard/public": true,
	}
	authPaths = map[string]bool{
		"/auth/login":  true,
		"/auth/signup": true,
	}
)

// NormalizePath strips trailing slashes and lower-cases the path
func NormalizePath(p string) string {
	p = strings.TrimRight(p, "/")
	if p == "" {
		return "/"
	}
	return strings.ToLower(p)
}

// Classify maps a request path to its access rule
func Classify(path string) RouteClass {
	p := NormalizePath(path)
	for _, prefix := range passthroughPrefixes {
		if strings.HasPrefix(p, prefix) {
			return RoutePassthrough
		}
	}
	if strings.Contains(p, ".") {
		return RoutePassthrough
	}
	if publicPaths[p] || strings.HasPrefix(p, "/products") {
		return RoutePublic
	}
	return classifySignedIn(p)
}

// classifySignedIn is the rule set for visitors holding a token, where the
// public list does not apply
func classifySignedIn(p string) RouteClass {
	switch {
	case authPaths[p]:
		return RouteAuth
	case strings.HasPrefix(p, "/dashboard"), strings.HasPrefix(p, "/super_admin"):
		return RouteAdmin
	case strings.HasPrefix(p, "/user"):
		return RouteUser
	default:
		return RouteProtected
	}
}

// Claims are the decoded token payload
type Claims map[string]any

// ErrSecretMissing is returned by a verifier that has no signing secret
var ErrSecretMissing = errors.New("token secret is not configured")

// TokenVerifier checks a signed access token
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (Claims, error)
}

var upperRole = cases.Upper(language.Und)

// ExtractRole reads role, else roles[0], else user.role
func ExtractRole(claims Claims) Role {
	if r, ok := claims["role"].(string); ok && r != "" {
		return Role(upperRole.String(r))
	}
	if roles, ok := claims["roles"].([]any); ok && len(roles) > 0 {
		if r, ok := roles[0].(string); ok && r != "" {
			return Role(upperRole.String(r))
		}
	}
	if roles, ok := claims["roles"].([]string); ok && len(roles) > 0 && roles[0] != "" {
		return Role(upperRole.String(roles[0]))
	}
	if user, ok := claims["user"].(map[string]any); ok {
		if r, ok := user["role"].(string); ok && r != "" {
			return Role(upperRole.String(r))
		}
	}
	return ""
}

// Decision is the guard outcome for a page request
type Decision struct {
	Allow        bool
	Location     string
	ClearCookies bool
	Class        RouteClass
	Role         Role
	Claims       Claims
}

func allow(class RouteClass) Decision {
	return Decision{Allow: true, Class: class}
}

func redirect(class RouteClass, location string, clear bool) Decision {
	return Decision{Location: location, ClearCookies: clear, Class: class}
}

// Decide applies the page access rules to a request path and the token
// taken from the session cookie
func Decide(ctx context.Context, path, token string, verifier TokenVerifier) Decision {
	class := Classify(path)
	if class == RoutePassthrough {
		return allow(class)
	}
	if token == "" {
		if class.IsPublic() {
			return allow(class)
		}
		return redirect(class, LoginPath, false)
	}

	class = classifySignedIn(NormalizePath(path))
	claims, err := verifier.Verify(ctx, token)
	if err != nil {
		return redirect(class, LoginPath, true)
	}

	role := ExtractRole(claims)
	var d Decision
	switch {
	case class == RouteAuth:
		d = redirect(class, role.LandingPath(), false)
	case class == RouteAdmin && !role.IsAdmin():
		d = redirect(class, "/", false)
	case class == RouteUser && !role.IsCustomer():
		d = redirect(class, "/", false)
	default:
		d = allow(class)
	}
	d.Role = role
	d.Claims = claims
	return d
}
