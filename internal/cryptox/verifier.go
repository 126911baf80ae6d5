package cryptox

import (
	"crypto/subtle"
	"encoding/json"
	"fmt"
)

// VerifierToken is the known plaintext sealed into every verifier.
const VerifierToken = "load-log-verifier-token"

// Verifier is VerifierToken encrypted under an account key. Successfully
// opening it proves a candidate key is the account key.
type Verifier struct {
	Ciphertext []byte
	Nonce      []byte
}

// verifierPlaintext is the JSON encoding of the token, quotes included.
func verifierPlaintext() []byte {
	b, _ := json.Marshal(VerifierToken)
	return b
}

// CreateVerifier seals the token under key.
func CreateVerifier(key *Key) (Verifier, error) {
	ct, nonce, err := Encrypt(key, verifierPlaintext())
	if err != nil {
		return Verifier{}, fmt.Errorf("create verifier: %w", err)
	}
	return Verifier{Ciphertext: ct, Nonce: nonce}, nil
}

// CheckVerifier reports whether v opens under key and holds the token. It
// never returns an error: every failure means "wrong passphrase".
func CheckVerifier(key *Key, v Verifier) bool {
	plaintext, err := Decrypt(key, v.Ciphertext, v.Nonce)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare(plaintext, verifierPlaintext()) == 1
}

// Encode returns the storage form: base64 ciphertext and hex nonce.
func (v Verifier) Encode() (ciphertext, nonce string) {
	return EncodeCiphertext(v.Ciphertext), EncodeNonce(v.Nonce)
}

// DecodeVerifier parses the storage form produced by Encode.
func DecodeVerifier(ciphertext, nonce string) (Verifier, error) {
	ct, err := DecodeCiphertext(ciphertext)
	if err != nil {
		return Verifier{}, err
	}
	n, err := DecodeNonce(nonce)
	if err != nil {
		return Verifier{}, err
	}
	return Verifier{Ciphertext: ct, Nonce: n}, nil
}
