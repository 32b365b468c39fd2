// Package pin verifies the 6-digit transfer authorization secret. The
// verifier is side-effect-free; retry counting belongs to the authorizer.
package pin

import (
	"context"

	"golang.org/x/crypto/bcrypt"
)

// Verifier checks a submitted secret against the authorized credential.
type Verifier interface {
	Verify(ctx context.Context, secret string) (accepted bool, err error)
}

// BcryptVerifier compares secrets against a bcrypt hash.
type BcryptVerifier struct {
	hash []byte
}

func NewBcryptVerifier(hash string) *BcryptVerifier {
	return &BcryptVerifier{hash: []byte(hash)}
}

func (v *BcryptVerifier) Verify(ctx context.Context, secret string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	err := bcrypt.CompareHashAndPassword(v.hash, []byte(secret))
	switch err {
	case nil:
		return true, nil
	case bcrypt.ErrMismatchedHashAndPassword:
		return false, nil
	default:
		return false, err
	}
}
