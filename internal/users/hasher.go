package users

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

const (
	saltLength      = 16
	maxSaltAttempts = 100
)

// SaltChecker is the slice of the store the hasher needs: a combined
// existence check over the student and teacher tables.
type SaltChecker interface {
	ExistsSalt(ctx context.Context, saltHex string) (bool, error)
}

// Hasher creates and verifies salted password digests.
type Hasher struct {
	salts SaltChecker
}

func NewHasher(salts SaltChecker) *Hasher {
	return &Hasher{salts: salts}
}

// Generate draws a random 16-byte salt, re-drawing until the store
// confirms no existing account holds it, and digests the password with
// it. A collision with 128-bit salts is astronomically unlikely, so the
// attempt bound exists only to turn a broken random source or store into
// an error instead of a spin.
func (h *Hasher) Generate(ctx context.Context, password string) (*Credential, error) {
	for i := 0; i < maxSaltAttempts; i++ {
		salt := make([]byte, saltLength)
		if _, err := rand.Read(salt); err != nil {
			return nil, fmt.Errorf("reading random salt: %w", err)
		}
		saltHex := hex.EncodeToString(salt)

		taken, err := h.salts.ExistsSalt(ctx, saltHex)
		if err != nil {
			return nil, fmt.Errorf("checking salt uniqueness: %w", err)
		}
		if taken {
			continue
		}

		return &Credential{Salt: saltHex, Hash: digest(password, salt)}, nil
	}
	return nil, fmt.Errorf("no unique salt found after %d attempts", maxSaltAttempts)
}

// Verify recomputes the digest with the stored salt and compares it to
// the stored hash. A nil or malformed credential never verifies.
func (h *Hasher) Verify(password string, cred *Credential) bool {
	if cred == nil {
		return false
	}
	salt, err := hex.DecodeString(cred.Salt)
	if err != nil {
		return false
	}
	return digest(password, salt) == cred.Hash
}

func digest(password string, salt []byte) string {
	sum := sha256.Sum256(append([]byte(password), salt...))
	return hex.EncodeToString(sum[:])
}
