package tally

import (
	"net/http"
	"testing"
)

func TestAuthenticateNoSecretConfigured(t *testing.T) {
	auth := NewAuthenticator("")
	if !auth.Authenticate(http.Header{}) {
		t.Fatal("empty secret must pass every request")
	}
}

func TestAuthenticateBearerToken(t *testing.T) {
	auth := NewAuthenticator("s3cret")

	h := http.Header{}
	h.Set("Authorization", "Bearer s3cret")
	if !auth.Authenticate(h) {
		t.Fatal("bearer token must pass")
	}

	h.Set("Authorization", "Bearer wrong")
	if auth.Authenticate(h) {
		t.Fatal("wrong bearer token must fail")
	}
}

func TestAuthenticateSignatureHeader(t *testing.T) {
	auth := NewAuthenticator("s3cret")

	h := http.Header{}
	h.Set("X-Tally-Signature", "s3cret")
	if !auth.Authenticate(h) {
		t.Fatal("signature header must pass")
	}
}

func TestAuthenticateAuthorizationTakesPrecedence(t *testing.T) {
	auth := NewAuthenticator("s3cret")

	// A wrong Authorization header is not rescued by a correct signature.
	h := http.Header{}
	h.Set("Authorization", "Bearer wrong")
	h.Set("X-Tally-Signature", "s3cret")
	if auth.Authenticate(h) {
		t.Fatal("authorization header must take precedence")
	}
}

func TestAuthenticateMissingCredentials(t *testing.T) {
	auth := NewAuthenticator("s3cret")
	if auth.Authenticate(http.Header{}) {
		t.Fatal("missing credentials must fail")
	}
}
