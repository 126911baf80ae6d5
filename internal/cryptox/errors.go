package cryptox

import "errors"

var (
	// ErrInvalidSaltFormat is returned when a stored salt is not 32 hex
	// characters. It signals corrupted account metadata.
	ErrInvalidSaltFormat = errors.New("invalid salt format")

	// ErrDecryptionFailed covers every authenticated-decryption failure: wrong
	// key, tampered ciphertext or nonce, or a malformed nonce.
	ErrDecryptionFailed = errors.New("decryption failed")

	// ErrEmptyPassphrase rejects zero-length passphrases.
	ErrEmptyPassphrase = errors.New("passphrase must not be empty")

	errNilKey           = errors.New("key is not initialized")
	errKeyNotExportable = errors.New("key material is not exportable")
)
