package auth

import (
	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher wraps bcrypt for password storage and verification.
// Hashing is deliberately CPU-bound; admin login volume is low enough that
// blocking the request goroutine is acceptable.
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher creates a hasher with the given work factor.
// Costs below bcrypt's minimum fall back to the library default.
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	return &PasswordHasher{cost: cost}
}

// Hash returns the bcrypt hash of a plaintext password.
func (h *PasswordHasher) Hash(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify reports whether plaintext matches the stored hash.
// A mismatch is a false return, never an error.
func (h *PasswordHasher) Verify(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

// dummyHash is a valid bcrypt hash of random bytes. Login compares against
// it when the email is unknown so both failure paths cost a hash check.
const dummyHash = "$2a$12$K3JNi5xUQ3o0yyHmCNHsvuqUqXiCk4975tEdauhHFTJAGpJcJ5nC6"

// VerifyDummy burns one bcrypt comparison and always reports false.
func (h *PasswordHasher) VerifyDummy(plaintext string) bool {
	_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(plaintext))
	return false
}
