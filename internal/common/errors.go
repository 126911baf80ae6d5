// Package common defines sentinel errors and small helpers shared by the
// storage, service and CLI layers of loadlog. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Session errors.
	ErrNoActiveKey          = errors.New("no active key: journal is locked")
	ErrNoAccount            = errors.New("no account registered")
	ErrAccountExists        = errors.New("account already registered")
	ErrIncorrectPassphrase  = errors.New("incorrect passphrase")
	ErrRotationAborted      = errors.New("passphrase change aborted")
	ErrMigrationWriteFailed = errors.New("migration write failed")

	// Backup errors.
	ErrInvalidBackup = errors.New("invalid backup")
)
