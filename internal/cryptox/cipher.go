package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/loadlog/internal/common"
)

// NonceSize is the GCM nonce length in bytes.
const NonceSize = 12

func newGCM(raw []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(raw)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Encrypt seals plaintext under key with a fresh random nonce. The returned
// ciphertext carries the 16-byte authentication tag at its end.
func Encrypt(key *Key, plaintext []byte) (ciphertext, nonce []byte, err error) {
	nonce = common.GenerateRandByteArray(NonceSize)

	err = key.use(func(raw []byte) error {
		aead, err := newGCM(raw)
		if err != nil {
			return err
		}
		ciphertext = aead.Seal(nil, nonce, plaintext, nil)
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("encrypt: %w", err)
	}

	return ciphertext, nonce, nil
}

// Decrypt opens ciphertext sealed by Encrypt. Any failure, including a wrong
// key or a modified byte anywhere in ciphertext or nonce, yields
// ErrDecryptionFailed.
func Decrypt(key *Key, ciphertext, nonce []byte) ([]byte, error) {
	if len(nonce) != NonceSize {
		return nil, ErrDecryptionFailed
	}

	var plaintext []byte
	err := key.use(func(raw []byte) error {
		aead, err := newGCM(raw)
		if err != nil {
			return err
		}
		plaintext, err = aead.Open(nil, nonce, ciphertext, nil)
		return err
	})
	if err != nil {
		return nil, ErrDecryptionFailed
	}

	return plaintext, nil
}

// SealJSON marshals v and encrypts the result. Both outputs are encoded for
// storage: ciphertext as base64, nonce as hex.
func SealJSON(key *Key, v any) (data, iv string, err error) {
	plaintext, err := json.Marshal(v)
	if err != nil {
		return "", "", fmt.Errorf("marshal: %w", err)
	}
	defer common.WipeByteArray(plaintext)

	ct, nonce, err := Encrypt(key, plaintext)
	if err != nil {
		return "", "", err
	}
	return EncodeCiphertext(ct), EncodeNonce(nonce), nil
}

// OpenJSON reverses SealJSON into v. Encoding problems and authentication
// failures both surface as ErrDecryptionFailed; a payload that decrypts but
// does not unmarshal into v is reported separately.
func OpenJSON(key *Key, data, iv string, v any) error {
	plaintext, err := OpenString(key, data, iv)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(plaintext)

	if err := json.Unmarshal(plaintext, v); err != nil {
		return fmt.Errorf("unmarshal decrypted payload: %w", err)
	}
	return nil
}

// OpenString decodes storage-encoded ciphertext and nonce and decrypts them.
func OpenString(key *Key, data, iv string) ([]byte, error) {
	ct, err := DecodeCiphertext(data)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	nonce, err := DecodeNonce(iv)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	return Decrypt(key, ct, nonce)
}
