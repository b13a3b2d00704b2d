package chi

import (
	"net/http"
	"strings"
)

// Authenticator resolves whether a request carries an editor key. Reads stay
// open to anonymous callers, so this is a lookup rather than a middleware
// that rejects.
type Authenticator struct {
	editorKeys map[string]struct{}
	open       bool
}

// NewAuthenticator creates an authenticator over the configured editor keys.
// With no keys configured, every caller is treated as an editor (local
// development mode).
func NewAuthenticator(editorKeys []string) *Authenticator {
	keys := make(map[string]struct{}, len(editorKeys))
	for _, k := range editorKeys {
		if k != "" {
			keys[k] = struct{}{}
		}
	}
	return &Authenticator{editorKeys: keys, open: len(keys) == 0}
}

// IsEditor reports whether the request's Bearer token is a configured
// editor key.
func (a *Authenticator) IsEditor(r *http.Request) bool {
	if a.open {
		return true
	}

	auth := r.Header.Get("Authorization")
	const bearerPrefix = "Bearer "
	if !strings.HasPrefix(auth, bearerPrefix) {
		return false
	}

	_, ok := a.editorKeys[auth[len(bearerPrefix):]]
	return ok
}
