package users

import (
	"crypto/subtle"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

const (
	// SecretSchemePlain stores secrets verbatim. This reproduces the wire
	// protocol of the system this API replaces; run it only behind TLS and
	// migrate to bcrypt when the legacy clients are gone.
	SecretSchemePlain = "plain"
	// SecretSchemeBcrypt stores bcrypt hashes.
	SecretSchemeBcrypt = "bcrypt"
)

// PlainTextComparer compares secrets verbatim.
type PlainTextComparer struct{}

var _ SecretComparer = PlainTextComparer{}

func (PlainTextComparer) Hash(secret string) (string, error) {
	return secret, nil
}

func (PlainTextComparer) Compare(secret, stored string) error {
	if subtle.ConstantTimeCompare([]byte(secret), []byte(stored)) != 1 {
		return ErrSecretMismatch
	}
	return nil
}

// BcryptComparer stores and checks bcrypt hashes.
type BcryptComparer struct {
	Cost int
}

var _ SecretComparer = BcryptComparer{}

func (b BcryptComparer) cost() int {
	if b.Cost == 0 {
		return bcrypt.DefaultCost
	}
	return b.Cost
}

func (b BcryptComparer) Hash(secret string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(secret), b.cost())
	return string(h), err
}

func (b BcryptComparer) Compare(secret, stored string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(stored), []byte(secret)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrSecretMismatch
		}
		return err
	}
	return nil
}

// ComparerForScheme maps a configured scheme name to its comparer. Unknown
// schemes fall back to plain so a typo does not lock every account out.
func ComparerForScheme(scheme string) SecretComparer {
	switch scheme {
	case SecretSchemeBcrypt:
		return BcryptComparer{}
	default:
		return PlainTextComparer{}
	}
}
