// Package models holds the journal's domain types: the stored record row, the
// decrypted event and its versioned entry payloads, and user settings.
//
// Entry payloads have been through three shapes. DecodeEntry recognises each
// of them and Upgrade converts any of them to the current Entry.
package models
