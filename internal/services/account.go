package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/loadlog/internal/common"
	"github.com/dmitrijs2005/loadlog/internal/cryptox"
	"github.com/dmitrijs2005/loadlog/internal/repositories/metadata"
)

// Metadata keys of the account record.
const (
	MetaSalt          = "load_log_auth_salt"
	MetaVerifier      = "load_log_auth_verifier"
	MetaVerifierIV    = "load_log_auth_verifier_iv"
	MetaKDFIterations = "load_log_kdf_iterations"
)

// account is the persisted credential material, still in storage encoding.
type account struct {
	salt       string
	verifier   string
	verifierIV string
	iterations int
}

func (a account) kdf() cryptox.KDF {
	return cryptox.KDF{Iterations: a.iterations}
}

func (a account) decodeVerifier() (cryptox.Verifier, error) {
	v, err := cryptox.DecodeVerifier(a.verifier, a.verifierIV)
	if err != nil {
		return cryptox.Verifier{}, fmt.Errorf("stored verifier is corrupted: %w", err)
	}
	return v, nil
}

func newAccount(salt string, v cryptox.Verifier, iterations int) account {
	ct, iv := v.Encode()
	return account{salt: salt, verifier: ct, verifierIV: iv, iterations: iterations}
}

func getOptional(ctx context.Context, repo metadata.Repository, key string) (string, bool, error) {
	v, err := repo.Get(ctx, key)
	if errors.Is(err, common.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// hasAccount reports whether both salt and verifier are stored.
func hasAccount(ctx context.Context, repo metadata.Repository) (bool, error) {
	_, hasSalt, err := getOptional(ctx, repo, MetaSalt)
	if err != nil {
		return false, err
	}
	_, hasVerifier, err := getOptional(ctx, repo, MetaVerifier)
	if err != nil {
		return false, err
	}
	return hasSalt && hasVerifier, nil
}

// loadAccount reads the account. A missing salt, verifier or verifier nonce
// yields common.ErrNoAccount; a missing iteration count means the default.
func loadAccount(ctx context.Context, repo metadata.Repository) (account, error) {
	var (
		a     account
		found bool
		err   error
	)
	for key, dst := range map[string]*string{
		MetaSalt:       &a.salt,
		MetaVerifier:   &a.verifier,
		MetaVerifierIV: &a.verifierIV,
	} {
		*dst, found, err = getOptional(ctx, repo, key)
		if err != nil {
			return account{}, fmt.Errorf("failed to load account: %w", err)
		}
		if !found {
			return account{}, common.ErrNoAccount
		}
	}

	raw, found, err := getOptional(ctx, repo, MetaKDFIterations)
	if err != nil {
		return account{}, fmt.Errorf("failed to load account: %w", err)
	}
	if found {
		if a.iterations, err = strconv.Atoi(raw); err != nil || a.iterations <= 0 {
			return account{}, fmt.Errorf("stored kdf iteration count %q is invalid", raw)
		}
	}
	return a, nil
}

func saveAccount(ctx context.Context, repo metadata.Repository, a account) error {
	pairs := []struct{ key, value string }{
		{MetaSalt, a.salt},
		{MetaVerifier, a.verifier},
		{MetaVerifierIV, a.verifierIV},
	}
	for _, p := range pairs {
		if err := repo.Set(ctx, p.key, p.value); err != nil {
			return err
		}
	}
	if a.iterations > 0 {
		return repo.Set(ctx, MetaKDFIterations, strconv.Itoa(a.iterations))
	}
	return repo.Delete(ctx, MetaKDFIterations)
}
