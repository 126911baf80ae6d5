// Package cryptox implements the journal's cryptography: PBKDF2-HMAC-SHA256
// key derivation, AES-256-GCM sealing of entries and the passphrase verifier.
//
// Derived keys never leave the package as bytes. A *Key keeps its material in
// a memguard enclave and only unseals it for the duration of one cipher call.
package cryptox
