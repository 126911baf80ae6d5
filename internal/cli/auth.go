package cli

import (
	"context"
	"crypto/subtle"

	"github.com/dmitrijs2005/loadlog/internal/common"
)

// confirmWord must be typed to erase the journal.
const confirmWord = "RESET"

// readNewPassphrase asks twice and returns the passphrase if both answers
// match. The caller wipes the result.
func (a *App) readNewPassphrase(prompt string) ([]byte, error) {
	first, err := getPassword(prompt, a.out)
	if err != nil {
		return nil, err
	}
	second, err := getPassword("Repeat passphrase", a.out)
	if err != nil {
		common.WipeByteArray(first)
		return nil, err
	}
	defer common.WipeByteArray(second)

	if subtle.ConstantTimeCompare(first, second) != 1 {
		common.WipeByteArray(first)
		return nil, errPassphraseMismatch
	}
	return first, nil
}

// Register creates the journal and unlocks it.
func (a *App) Register(ctx context.Context) error {
	password, err := a.readNewPassphrase("Choose a passphrase")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.session.Register(ctx, password); err != nil {
		return err
	}

	a.println("Journal created and unlocked. There is no way to recover a forgotten passphrase.")
	return nil
}

// Login unlocks the journal.
func (a *App) Login(ctx context.Context) error {
	password, err := getPassword("Enter passphrase", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	ok, err := a.session.Login(ctx, password)
	if err != nil {
		return err
	}
	if !ok {
		return common.ErrIncorrectPassphrase
	}

	a.println("Unlocked.")
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	a.session.Logout()
	a.println("Locked.")
	return nil
}

// ChangePassphrase re-encrypts the journal under a new passphrase.
func (a *App) ChangePassphrase(ctx context.Context) error {
	if !a.session.IsUnlocked() {
		return common.ErrNoActiveKey
	}

	oldPass, err := getPassword("Current passphrase", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(oldPass)

	newPass, err := a.readNewPassphrase("New passphrase")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(newPass)

	if err := a.session.ChangePassphrase(ctx, oldPass, newPass); err != nil {
		return err
	}

	a.println("Passphrase changed.")
	return nil
}

// Reset erases the account and all events after the user types confirmWord.
func (a *App) Reset(ctx context.Context) error {
	answer, err := getSimpleText(a.reader, "This erases every event and cannot be undone. Type "+confirmWord+" to continue", a.out)
	if err != nil {
		return err
	}
	if answer != confirmWord {
		return errNotConfirmed
	}

	if err := a.session.ResetAccount(ctx); err != nil {
		return err
	}

	a.println("Journal erased.")
	return nil
}
