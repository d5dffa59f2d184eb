package shared

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// GenerateState returns a random URL-safe state token for OAuth flows.
func GenerateState() (string, error) {
	return randomToken(16)
}

// GeneratePKCEVerifier returns a code verifier for the plain PKCE method.
//
// MyAnimeList only supports the plain method, so the verifier doubles as the
// code challenge. 64 random bytes encode to 86 characters, inside the
// RFC 7636 43-128 range.
func GeneratePKCEVerifier() (string, error) {
	return randomToken(64)
}

func randomToken(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
