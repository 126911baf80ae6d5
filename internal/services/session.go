// Package services holds the journal's application logic: the session that
// owns the derived key, the encrypted record store, settings and backups.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/loadlog/internal/common"
	"github.com/dmitrijs2005/loadlog/internal/cryptox"
	"github.com/dmitrijs2005/loadlog/internal/logging"
	"github.com/dmitrijs2005/loadlog/internal/models"
	"github.com/dmitrijs2005/loadlog/internal/storage"
)

// State is the lifecycle stage of a Session.
type State int

const (
	StateNoAccount State = iota
	StateLocked
	StateUnlocked
)

func (s State) String() string {
	switch s {
	case StateNoAccount:
		return "no-account"
	case StateLocked:
		return "locked"
	case StateUnlocked:
		return "unlocked"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Session owns the account key for as long as the journal is unlocked.
//
// The key is only reachable through WithKey. Logout, inactivity, account
// reset and backup import all drop it, and every callback registered with
// OnLock runs after the key is gone.
type Session struct {
	engine        storage.Engine
	kdf           cryptox.KDF
	log           logging.Logger
	clock         Clock
	autoLockAfter time.Duration
	checkInterval time.Duration

	// lifetime bounds the watchdog goroutines.
	lifetime context.Context

	mu       sync.RWMutex
	state    State
	key      *cryptox.Key
	watchdog *Watchdog

	hooksMu sync.Mutex
	onLock  []func()
}

// SessionOption configures a Session in NewSession.
type SessionOption func(*Session)

// WithKDF sets the key derivation parameters used for new accounts and
// passphrase changes. Existing accounts keep the parameters they were created
// with.
func WithKDF(kdf cryptox.KDF) SessionOption {
	return func(s *Session) { s.kdf = kdf }
}

// WithLogger sets the session logger. The default drops everything.
func WithLogger(l logging.Logger) SessionOption {
	return func(s *Session) { s.log = l }
}

// WithClock replaces the system clock, mainly for tests.
func WithClock(c Clock) SessionOption {
	return func(s *Session) { s.clock = c }
}

// WithAutoLock sets the idle limit and how often it is checked. Non-positive
// values keep the defaults.
func WithAutoLock(after, checkInterval time.Duration) SessionOption {
	return func(s *Session) {
		if after > 0 {
			s.autoLockAfter = after
		}
		if checkInterval > 0 {
			s.checkInterval = checkInterval
		}
	}
}

// NewSession reads the account state from engine. The session starts Locked
// when an account exists and NoAccount otherwise. ctx bounds the session's
// background work.
func NewSession(ctx context.Context, engine storage.Engine, opts ...SessionOption) (*Session, error) {
	s := &Session{
		engine:        engine,
		kdf:           cryptox.DefaultKDF,
		log:           logging.Nop(),
		clock:         SystemClock{},
		autoLockAfter: DefaultAutoLockAfter,
		checkInterval: DefaultAutoLockCheckInterval,
		lifetime:      context.WithoutCancel(ctx),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With("component", "session")

	exists, err := hasAccount(ctx, engine.Repos().Metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to read account state: %w", err)
	}
	if exists {
		s.state = StateLocked
	}

	return s, nil
}

func (s *Session) Engine() storage.Engine { return s.engine }

func (s *Session) Clock() Clock { return s.clock }

func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Session) IsUnlocked() bool {
	return s.State() == StateUnlocked
}

// OnLock registers fn to run every time the key is dropped.
func (s *Session) OnLock(fn func()) {
	s.hooksMu.Lock()
	s.onLock = append(s.onLock, fn)
	s.hooksMu.Unlock()
}

// WithKey runs fn with the active key. It returns common.ErrNoActiveKey when
// the session is not unlocked. The session cannot lock while fn runs; fn must
// not call back into the Session.
func (s *Session) WithKey(fn func(key *cryptox.Key) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.state != StateUnlocked || s.key == nil {
		return common.ErrNoActiveKey
	}
	return fn(s.key)
}

// Touch records user activity, postponing the auto-lock.
func (s *Session) Touch() {
	s.mu.RLock()
	wd := s.watchdog
	s.mu.RUnlock()

	if wd != nil {
		wd.Touch()
	}
}

// AutoLockAfter returns the idle limit of the running watchdog, or the
// configured default when locked.
func (s *Session) AutoLockAfter() time.Duration {
	s.mu.RLock()
	wd := s.watchdog
	s.mu.RUnlock()

	if wd != nil {
		return wd.Threshold()
	}
	return s.autoLockAfter
}

// Register creates the account and unlocks it. It fails with
// common.ErrAccountExists unless no account exists yet.
func (s *Session) Register(ctx context.Context, passphrase []byte) error {
	if len(passphrase) == 0 {
		return cryptox.ErrEmptyPassphrase
	}
	if s.State() != StateNoAccount {
		return common.ErrAccountExists
	}

	salt, err := cryptox.GenerateSalt()
	if err != nil {
		return fmt.Errorf("failed to generate salt: %w", err)
	}
	key, err := s.kdf.DeriveKey(passphrase, salt)
	if err != nil {
		return err
	}
	verifier, err := cryptox.CreateVerifier(key)
	if err != nil {
		return err
	}
	acc := newAccount(salt, verifier, s.kdf.Rounds())

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateNoAccount {
		return common.ErrAccountExists
	}
	err = s.engine.WithinTx(ctx, func(ctx context.Context, repos *storage.Repositories) error {
		return saveAccount(ctx, repos.Metadata, acc)
	})
	if err != nil {
		return fmt.Errorf("failed to save account: %w", err)
	}

	s.activateLocked(key, s.autoLockAfter)
	s.log.Info(ctx, "account registered", "kdf_iterations", acc.iterations)
	return nil
}

// Login derives a key from passphrase and unlocks the session if the key
// opens the stored verifier. A wrong passphrase returns false with a nil
// error and leaves the state unchanged; so does a missing account.
func (s *Session) Login(ctx context.Context, passphrase []byte) (bool, error) {
	acc, err := loadAccount(ctx, s.engine.Repos().Metadata)
	if errors.Is(err, common.ErrNoAccount) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	verifier, err := acc.decodeVerifier()
	if err != nil {
		return false, err
	}

	key, err := acc.kdf().DeriveKey(passphrase, acc.salt)
	if errors.Is(err, cryptox.ErrEmptyPassphrase) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if !cryptox.CheckVerifier(key, verifier) {
		s.log.Warn(ctx, "login rejected")
		return false, nil
	}

	threshold := s.autoLockThreshold(ctx)

	s.mu.Lock()
	s.activateLocked(key, threshold)
	s.mu.Unlock()

	s.log.Info(ctx, "session unlocked", "auto_lock_after", threshold)
	return true, nil
}

// Logout drops the key. It is a no-op unless the session is unlocked.
func (s *Session) Logout() {
	s.mu.RLock()
	unlocked := s.state == StateUnlocked
	s.mu.RUnlock()

	if unlocked {
		s.transition(lockIfUnlocked, "logout")
	}
}

// lockIfUnlocked leaves any state other than StateUnlocked alone, so a logout
// that loses the race to ResetAccount or Reload does not overwrite their result.
func lockIfUnlocked(st State) State {
	if st != StateUnlocked {
		return st
	}
	return StateLocked
}

// ResetAccount erases the account, every record and every setting in one
// transaction. It cannot be undone.
func (s *Session) ResetAccount(ctx context.Context) error {
	err := s.engine.WithinTx(ctx, func(ctx context.Context, repos *storage.Repositories) error {
		if err := repos.Records.Clear(ctx); err != nil {
			return err
		}
		if err := repos.Settings.Clear(ctx); err != nil {
			return err
		}
		return repos.Metadata.Clear(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to reset account: %w", err)
	}

	s.transition(func(State) State { return StateNoAccount }, "account reset")
	return nil
}

// Reload drops the key and re-reads the account state from storage.
func (s *Session) Reload(ctx context.Context) error {
	exists, err := hasAccount(ctx, s.engine.Repos().Metadata)
	if err != nil {
		return fmt.Errorf("failed to read account state: %w", err)
	}

	next := StateNoAccount
	if exists {
		next = StateLocked
	}
	s.transition(func(State) State { return next }, "reload")
	return nil
}

// ChangePassphrase re-keys the account. Every record, legacy plaintext rows
// included, is re-encrypted under the new key and stored together with the
// new salt and verifier in a single transaction. If any record cannot be
// decrypted with the current key the change is aborted and nothing is
// written.
func (s *Session) ChangePassphrase(ctx context.Context, oldPass, newPass []byte) error {
	if len(newPass) == 0 {
		return cryptox.ErrEmptyPassphrase
	}
	if !s.IsUnlocked() {
		return common.ErrNoActiveKey
	}

	acc, err := loadAccount(ctx, s.engine.Repos().Metadata)
	if err != nil {
		return err
	}
	verifier, err := acc.decodeVerifier()
	if err != nil {
		return err
	}
	oldKey, err := acc.kdf().DeriveKey(oldPass, acc.salt)
	if errors.Is(err, cryptox.ErrEmptyPassphrase) {
		return common.ErrIncorrectPassphrase
	}
	if err != nil {
		return err
	}
	if !cryptox.CheckVerifier(oldKey, verifier) {
		return common.ErrIncorrectPassphrase
	}

	salt, err := cryptox.GenerateSalt()
	if err != nil {
		return fmt.Errorf("failed to generate salt: %w", err)
	}
	newKey, err := s.kdf.DeriveKey(newPass, salt)
	if err != nil {
		return err
	}
	newVerifier, err := cryptox.CreateVerifier(newKey)
	if err != nil {
		return err
	}
	next := newAccount(salt, newVerifier, s.kdf.Rounds())

	// Holding the write lock keeps concurrent adds from writing under the
	// old key after the rotation has read the table.
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateUnlocked {
		return common.ErrNoActiveKey
	}

	var rotated int
	err = s.engine.WithinTx(ctx, func(ctx context.Context, repos *storage.Repositories) error {
		rows, err := repos.Records.GetAll(ctx)
		if err != nil {
			return err
		}
		stored, err := repos.Records.Count(ctx)
		if err != nil {
			return err
		}
		if stored != len(rows) {
			return fmt.Errorf("%w: %d stored records cannot be read", common.ErrRotationAborted, stored-len(rows))
		}

		out := make([]models.Record, 0, len(rows))
		for _, r := range rows {
			plaintext, err := openRecord(oldKey, r)
			if err != nil {
				return fmt.Errorf("%w: record %s cannot be decrypted", common.ErrRotationAborted, r.ID)
			}
			sealed, err := sealRecord(newKey, r.ID, r.Date, plaintext)
			common.WipeByteArray(plaintext)
			if err != nil {
				return err
			}
			out = append(out, sealed)
		}

		if err := repos.Records.BulkPut(ctx, out); err != nil {
			return err
		}
		rotated = len(out)
		return saveAccount(ctx, repos.Metadata, next)
	})
	if err != nil {
		s.log.Warn(ctx, "passphrase change aborted", "error", err)
		return err
	}

	s.key = newKey
	if s.watchdog != nil {
		s.watchdog.Touch()
	}
	s.log.Info(ctx, "passphrase changed", "records", rotated)
	return nil
}

// activateLocked installs key and (re)starts the watchdog. s.mu must be held.
func (s *Session) activateLocked(key *cryptox.Key, threshold time.Duration) {
	if s.watchdog != nil {
		s.watchdog.Stop()
	}

	s.key = key
	s.state = StateUnlocked

	var wd *Watchdog
	wd = NewWatchdog(s.clock, s.checkInterval, threshold, func() { s.expire(wd) })
	s.watchdog = wd
	wd.Start(s.lifetime)
}

// expire locks the session on behalf of wd, unless wd has since been
// replaced by a newer login.
func (s *Session) expire(wd *Watchdog) {
	s.mu.RLock()
	current := s.watchdog == wd && s.state == StateUnlocked
	s.mu.RUnlock()

	if current {
		s.transition(func(st State) State {
			if s.watchdog != wd {
				return st
			}
			return StateLocked
		}, "inactivity")
	}
}

// transition drops the key, moves to next(current) and notifies lock
// listeners. It does nothing when next keeps the current state or asks for
// StateUnlocked.
func (s *Session) transition(next func(current State) State, reason string) {
	s.mu.Lock()
	target := next(s.state)
	if target == StateUnlocked || target == s.state {
		s.mu.Unlock()
		return
	}
	s.state = target
	s.key = nil
	wd := s.watchdog
	s.watchdog = nil
	s.mu.Unlock()

	if wd != nil {
		wd.Stop()
	}

	s.hooksMu.Lock()
	hooks := append([]func(){}, s.onLock...)
	s.hooksMu.Unlock()
	for _, h := range hooks {
		h()
	}

	s.log.Info(s.lifetime, "session locked", "reason", reason, "state", target)
}

// applyAutoLock updates the idle limit of the running watchdog.
func (s *Session) applyAutoLock(d time.Duration) {
	s.mu.RLock()
	wd := s.watchdog
	s.mu.RUnlock()

	if wd != nil && d > 0 {
		wd.SetThreshold(d)
	}
}

// autoLockThreshold returns the per-account override from the stored
// settings, falling back to the configured value.
func (s *Session) autoLockThreshold(ctx context.Context) time.Duration {
	settings, err := loadAppSettings(ctx, s.engine.Repos())
	if err != nil {
		s.log.Warn(ctx, "failed to read settings, using default auto-lock", "error", err)
		return s.autoLockAfter
	}
	if settings == nil || settings.AutoLockMinutes <= 0 {
		return s.autoLockAfter
	}
	return time.Duration(settings.AutoLockMinutes) * time.Minute
}
