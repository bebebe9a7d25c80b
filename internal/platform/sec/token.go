// Copyright (c) 2026 Handraise. All rights reserved.

package sec

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

// SessionTokenLength is the byte length of the random opaque session token.
const SessionTokenLength = 32

// GenerateSessionToken produces an unguessable opaque token for a new session.
//
// The raw token is returned to the client exactly once; only its hash is
// persisted (see [HashToken]).
func GenerateSessionToken() (string, error) {
	return GenerateSecureToken(SessionTokenLength)
}

// GenerateSecureToken returns a base64url string built from byteLength bytes
// of CSPRNG output.
func GenerateSecureToken(byteLength int) (string, error) {
	buf := make([]byte, byteLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("sec: failed to generate secure token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// HashToken returns the hex-encoded SHA-256 digest of a token.
//
// # Why SHA-256 and not bcrypt?
//
// Session tokens carry 256 bits of entropy, so a fast hash is sufficient:
// there is nothing to brute-force. A deterministic digest also allows the
// session store to look tokens up by an indexed equality match.
func HashToken(token string) string {
	digest := sha256.Sum256([]byte(token))
	return hex.EncodeToString(digest[:])
}
