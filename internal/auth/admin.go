package auth

import (
	"crypto/sha256"
	"crypto/subtle"
)

// AdminValidator checks candidates against the shared admin secret.
//
// Both sides are digested before comparison, so the check takes the same
// time whatever the candidate's length or first differing character.
// Unlike the user-credential path there is no store round-trip here to
// mask timing, hence the care.
type AdminValidator struct {
	digest     [sha256.Size]byte
	configured bool
}

func NewAdminValidator(secret string) *AdminValidator {
	v := &AdminValidator{}
	if secret != "" {
		v.digest = sha256.Sum256([]byte(secret))
		v.configured = true
	}
	return v
}

// IsValid reports whether candidate matches the configured secret. An
// unconfigured secret never validates.
func (v *AdminValidator) IsValid(candidate string) bool {
	if !v.configured {
		return false
	}
	sum := sha256.Sum256([]byte(candidate))
	return subtle.ConstantTimeCompare(sum[:], v.digest[:]) == 1
}
