package cli

import (
	"errors"

	"github.com/dmitrijs2005/loadlog/internal/common"
	"github.com/dmitrijs2005/loadlog/internal/cryptox"
)

var (
	errPassphraseMismatch = errors.New("passphrases do not match")
	errNotConfirmed       = errors.New("not confirmed, nothing was changed")
)

// describe turns well-known errors into short user-facing text.
func describe(err error) string {
	switch {
	case errors.Is(err, common.ErrNoActiveKey):
		return "journal is locked, type 'login' first"
	case errors.Is(err, common.ErrNoAccount):
		return "no journal yet, type 'register' first"
	case errors.Is(err, common.ErrAccountExists):
		return "a journal already exists"
	case errors.Is(err, common.ErrNotFound):
		return "no such event"
	case errors.Is(err, common.ErrIncorrectPassphrase):
		return "incorrect passphrase"
	case errors.Is(err, cryptox.ErrEmptyPassphrase):
		return "passphrase must not be empty"
	default:
		return err.Error()
	}
}
