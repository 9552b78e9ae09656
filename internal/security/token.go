package security

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
)

// Prefixes for generated identifiers and tokens.
const (
	// instanceIDPrefix marks service instance identifiers.
	instanceIDPrefix = "si_"
	// accessTokenPrefix marks per-grant access tokens.
	accessTokenPrefix = "uit_"
)

// GenerateInstanceID creates a collision-resistant service instance ID.
func GenerateInstanceID() (string, error) {
	raw, err := randomHex(16)
	if err != nil {
		return "", fmt.Errorf("generate instance id: %w", err)
	}
	return instanceIDPrefix + raw, nil
}

// GenerateAccessToken creates a new random per-grant access token.
func GenerateAccessToken() (string, error) {
	raw, err := randomHex(24)
	if err != nil {
		return "", fmt.Errorf("generate access token: %w", err)
	}
	return accessTokenPrefix + raw, nil
}

// GenerateSessionID creates an opaque session identifier.
func GenerateSessionID() (string, error) {
	raw, err := randomHex(32)
	if err != nil {
		return "", fmt.Errorf("generate session id: %w", err)
	}
	return raw, nil
}

// randomHex returns a hex-encoded random string of n bytes.
func randomHex(n int) (string, error) {
	bytes := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
