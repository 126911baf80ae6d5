package cryptox

import (
	"crypto/sha256"

	"golang.org/x/crypto/pbkdf2"

	"github.com/dmitrijs2005/loadlog/internal/common"
)

const (
	// SaltSize is the salt length in bytes. Encoded salts are twice as long.
	SaltSize = 16
	// KeySize selects AES-256.
	KeySize = 32
	// DefaultIterations is the PBKDF2 work factor for new accounts.
	DefaultIterations = 500_000
)

// KDF derives keys from passphrases with PBKDF2-HMAC-SHA256.
type KDF struct {
	Iterations int
}

// DefaultKDF is the production configuration.
var DefaultKDF = KDF{Iterations: DefaultIterations}

// GenerateSalt returns a fresh random salt as 32 lowercase hex characters.
func GenerateSalt() (string, error) {
	return common.MakeRandHexString(SaltSize)
}

// Rounds is the iteration count DeriveKey actually uses.
func (k KDF) Rounds() int {
	if k.Iterations <= 0 {
		return DefaultIterations
	}
	return k.Iterations
}

// DeriveKey stretches passphrase with the hex-encoded salt. The same inputs
// always yield the same key. A non-positive iteration count falls back to
// DefaultIterations.
func (k KDF) DeriveKey(passphrase []byte, saltHex string) (*Key, error) {
	if len(passphrase) == 0 {
		return nil, ErrEmptyPassphrase
	}
	salt, err := decodeSalt(saltHex)
	if err != nil {
		return nil, err
	}

	raw := pbkdf2.Key(passphrase, salt, k.Rounds(), KeySize, sha256.New)
	return newKey(raw), nil
}

// DeriveKey derives with DefaultKDF.
func DeriveKey(passphrase []byte, saltHex string) (*Key, error) {
	return DefaultKDF.DeriveKey(passphrase, saltHex)
}
