package middleware

import (
	"net/http"
	"strings"

	"camp_photos/internal/common"
	"camp_photos/internal/domain/model"
)

type requirement int

const (
	allowAnyone requirement = iota
	requireAuthenticated
	requireRole
)

type rule struct {
	method  string // "*" matches any method
	pattern string // "*" segment matches one segment; a trailing "*" matches the rest
	req     requirement
	roles   []string
}

// The access table, evaluated top to bottom, first match wins. Anything not
// matched falls through to "any authenticated identity".
var rules = []rule{
	{"OPTIONS", "/*", allowAnyone, nil},
	{"*", "/api/auth/*", allowAnyone, nil},
	{"GET", "/api/test/health", allowAnyone, nil},
	{"*", "/uploads/*", allowAnyone, nil},
	{"GET", "/api/submissions/public", allowAnyone, nil},
	{"GET", "/api/gallery", allowAnyone, nil},
	{"GET", "/api/challenges", allowAnyone, nil},
	{"GET", "/api/challenges/days", allowAnyone, nil},
	{"POST", "/api/challenges", requireRole, []string{model.RoleAdmin}},
	{"*", "/api/submissions/all", requireRole, []string{model.RoleAdmin}},
	{"POST", "/api/challenges/*/submit", requireRole, []string{model.RoleUser, model.RoleAdmin}},
	{"PUT", "/api/challenges/*/submit", requireRole, []string{model.RoleUser, model.RoleAdmin}},
	{"PUT", "/api/challenges/*", requireRole, []string{model.RoleAdmin}},
	{"DELETE", "/api/challenges/*", requireRole, []string{model.RoleAdmin}},
	{"*", "/api/submissions/my", requireRole, []string{model.RoleUser, model.RoleAdmin}},
}

// Policy enforces the access table against the identity established by the
// Authenticator. Anonymous access to a gated route yields 401; an
// authenticated identity with the wrong role yields 403.
func Policy() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ident := IdentityFromContext(r.Context())

			req := requireAuthenticated
			var roles []string
			for _, rl := range rules {
				if rl.matches(r.Method, r.URL.Path) {
					req = rl.req
					roles = rl.roles
					break
				}
			}

			switch req {
			case allowAnyone:
			case requireAuthenticated:
				if ident.IsAnonymous() {
					common.RespondWithError(w, http.StatusUnauthorized, "authentication required")
					return
				}
			case requireRole:
				if ident.IsAnonymous() {
					common.RespondWithError(w, http.StatusUnauthorized, "authentication required")
					return
				}
				if !ident.HasRole(roles...) {
					common.RespondWithError(w, http.StatusForbidden, "insufficient permissions")
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (rl rule) matches(method, path string) bool {
	if rl.method != "*" && rl.method != method {
		return false
	}
	return matchPath(rl.pattern, path)
}

func matchPath(pattern, path string) bool {
	pSegs := strings.Split(strings.Trim(pattern, "/"), "/")
	segs := strings.Split(strings.Trim(path, "/"), "/")

	for i, ps := range pSegs {
		if ps == "*" && i == len(pSegs)-1 {
			return len(segs) >= i // trailing wildcard swallows the rest
		}
		if i >= len(segs) || (ps != "*" && ps != segs[i]) {
			return false
		}
	}
	return len(segs) == len(pSegs)
}
