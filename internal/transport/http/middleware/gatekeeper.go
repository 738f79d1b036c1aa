package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"prompthub/internal/httputil"
)

// Policy configures the gatekeeper: which origins may make cross-origin
// calls, which path prefixes are public or protected, and where
// unauthenticated page requests are sent to sign in.
type Policy struct {
	AllowedOrigins    []string
	PublicPrefixes    []string
	ProtectedPrefixes []string
	LoginPath         string
}

// DefaultPolicy returns the standard policy for the given origins.
// Auth endpoints are public so users can sign in; everything under the
// protected prefixes requires a session.
func DefaultPolicy(allowedOrigins []string) Policy {
	return Policy{
		AllowedOrigins:    allowedOrigins,
		PublicPrefixes:    []string{"/api/auth/"},
		ProtectedPrefixes: []string{"/posts", "/me", "/api/user", "/api/prompts"},
		LoginPath:         "/login",
	}
}

// DecisionKind classifies what the gatekeeper does with a request.
type DecisionKind int

const (
	// DecisionAllow lets the request through to the handlers.
	DecisionAllow DecisionKind = iota
	// DecisionPreflight answers a CORS preflight with an empty 200.
	DecisionPreflight
	// DecisionUnauthorizedJSON rejects an API request with a 401 body.
	DecisionUnauthorizedJSON
	// DecisionRedirect sends a page request to the sign-in page.
	DecisionRedirect
)

// Decision is the gatekeeper's verdict for one request.
type Decision struct {
	Kind        DecisionKind
	RedirectURL string
}

// Decide computes the verdict for a request without touching the
// response. Preflights always pass so the browser can learn the CORS
// policy; the real request is judged on its own. Unauthenticated calls to
// protected paths split by surface: API callers get a machine-readable
// 401, page navigations get a redirect that round-trips the original
// destination.
func (p Policy) Decide(method, path string, authenticated bool) Decision {
	if method == http.MethodOptions {
		return Decision{Kind: DecisionPreflight}
	}

	for _, prefix := range p.PublicPrefixes {
		if strings.HasPrefix(path, prefix) {
			return Decision{Kind: DecisionAllow}
		}
	}

	protected := false
	for _, prefix := range p.ProtectedPrefixes {
		if strings.HasPrefix(path, prefix) {
			protected = true
			break
		}
	}
	if !protected || authenticated {
		return Decision{Kind: DecisionAllow}
	}

	if strings.HasPrefix(path, "/api/") {
		return Decision{Kind: DecisionUnauthorizedJSON}
	}

	query := url.Values{}
	query.Set("callbackUrl", path)
	query.Set("error", "Please sign in to continue")
	return Decision{
		Kind:        DecisionRedirect,
		RedirectURL: p.LoginPath + "?" + query.Encode(),
	}
}

// originAllowed reports whether the Origin header value is in the allowlist.
// An empty allowlist means any origin is allowed.
func (p Policy) originAllowed(origin string) bool {
	if len(p.AllowedOrigins) == 0 {
		return true
	}
	for _, allowed := range p.AllowedOrigins {
		if allowed == origin {
			return true
		}
	}
	return false
}

// applyCORS writes the CORS response headers. Same-origin requests (no
// Origin header) get a wildcard without credentials; allowed origins are
// echoed back with credentials enabled; disallowed origins get no
// Allow-Origin header at all, which makes the browser block the response.
func (p Policy) applyCORS(w http.ResponseWriter, origin string) {
	h := w.Header()
	if origin == "" {
		h.Set("Access-Control-Allow-Origin", "*")
	} else if p.originAllowed(origin) {
		h.Set("Access-Control-Allow-Origin", origin)
		h.Set("Access-Control-Allow-Credentials", "true")
		h.Add("Vary", "Origin")
	}
	h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, PATCH, HEAD")
	h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	h.Set("Access-Control-Max-Age", "86400")
}

// Gatekeeper enforces the policy on every request: CORS headers on all
// responses, short-circuited preflights, and authentication checks on
// protected paths. It reads the identity that SessionMiddleware resolved,
// so it must be mounted after it.
func Gatekeeper(policy Policy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			policy.applyCORS(w, r.Header.Get("Origin"))

			_, authenticated := GetUserIDFromContext(r.Context())
			decision := policy.Decide(r.Method, r.URL.Path, authenticated)

			switch decision.Kind {
			case DecisionPreflight:
				w.WriteHeader(http.StatusOK)
			case DecisionUnauthorizedJSON:
				httputil.WriteUnauthorized(w, "Authentication required")
			case DecisionRedirect:
				http.Redirect(w, r, decision.RedirectURL, http.StatusTemporaryRedirect)
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}
