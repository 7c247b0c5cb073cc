package tally

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// Authenticator validates the shared webhook secret. When no secret is
// configured the check always passes: the endpoint is deliberately open so
// forms can be wired up before a secret is provisioned. This is an accepted
// insecure default, not an oversight.
type Authenticator struct {
	secret string
}

// NewAuthenticator creates an authenticator for the given shared secret.
// An empty secret disables authentication.
func NewAuthenticator(secret string) *Authenticator {
	return &Authenticator{secret: secret}
}

// Authenticate checks the request headers against the configured secret. The
// secret may arrive as "Bearer <secret>" in the Authorization header or
// verbatim in the X-Tally-Signature header. The signature header is only
// consulted when the Authorization header is absent.
func (a *Authenticator) Authenticate(header http.Header) bool {
	if a.secret == "" {
		return true
	}

	provided := strings.TrimPrefix(header.Get("Authorization"), "Bearer ")
	if provided == "" {
		provided = header.Get("X-Tally-Signature")
	}

	return subtle.ConstantTimeCompare([]byte(provided), []byte(a.secret)) == 1
}
