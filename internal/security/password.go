package security

import "golang.org/x/crypto/bcrypt"

// bcryptCost defines the bcrypt work factor.
const bcryptCost = 12

// decoyHash is a fixed bcrypt hash compared against the supplied password
// when the requested username does not exist, so that login attempts for
// unknown and known usernames take comparable time.
const decoyHash = "$2a$12$K5ZT1ZwVDVJXOOu0pF5lEOBE9488A29aH78bIkCzarrBBdCCCyJLG"

// HashPassword hashes a plaintext password using bcrypt.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword compares a bcrypt hash with a plaintext password.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// BurnPasswordCheck performs a bcrypt comparison against the decoy hash and
// discards the result. Called on login when no user matches the username.
func BurnPasswordCheck(password string) {
	_ = bcrypt.CompareHashAndPassword([]byte(decoyHash), []byte(password))
}
