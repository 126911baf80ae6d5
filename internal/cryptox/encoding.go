package cryptox

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

// EncodeCiphertext renders ciphertext as standard padded base64, the form it
// takes in the events table and in backups.
func EncodeCiphertext(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

// DecodeCiphertext reverses EncodeCiphertext.
func DecodeCiphertext(s string) ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decode ciphertext: %w", err)
	}
	return b, nil
}

// EncodeNonce renders a nonce as lowercase hex.
func EncodeNonce(b []byte) string {
	return hex.EncodeToString(b)
}

// DecodeNonce reverses EncodeNonce.
func DecodeNonce(s string) ([]byte, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decode nonce: %w", err)
	}
	return b, nil
}

// ValidateSalt reports whether s is a well-formed encoded salt.
func ValidateSalt(s string) error {
	_, err := decodeSalt(s)
	return err
}

func decodeSalt(s string) ([]byte, error) {
	if len(s) != SaltSize*2 {
		return nil, fmt.Errorf("%w: want %d hex chars, got %d", ErrInvalidSaltFormat, SaltSize*2, len(s))
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSaltFormat, err)
	}
	return b, nil
}
