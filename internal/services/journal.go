package services

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/loadlog/internal/common"
	"github.com/dmitrijs2005/loadlog/internal/cryptox"
	"github.com/dmitrijs2005/loadlog/internal/logging"
	"github.com/dmitrijs2005/loadlog/internal/models"
	"github.com/dmitrijs2005/loadlog/internal/storage"
)

// Journal is the encrypted event store. It encrypts on write, decrypts on
// read and keeps the last listing in memory until the session locks.
//
// Rows written before encryption was introduced are still readable. When such
// a row is read while unlocked it is re-encrypted and written back in the
// background.
type Journal struct {
	session *Session
	engine  storage.Engine
	log     logging.Logger
	clock   Clock
	newID   func() string

	mu     sync.Mutex
	events []models.Event

	bg sync.WaitGroup
}

type JournalOption func(*Journal)

func WithJournalLogger(l logging.Logger) JournalOption {
	return func(j *Journal) { j.log = l }
}

// WithIDGenerator replaces uuid.NewString for new record ids.
func WithIDGenerator(fn func() string) JournalOption {
	return func(j *Journal) { j.newID = fn }
}

func NewJournal(session *Session, opts ...JournalOption) *Journal {
	j := &Journal{
		session: session,
		engine:  session.Engine(),
		log:     logging.Nop(),
		clock:   session.Clock(),
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(j)
	}
	j.log = j.log.With("component", "journal")

	session.OnLock(j.drop)
	return j
}

func (j *Journal) drop() {
	j.mu.Lock()
	j.events = nil
	j.mu.Unlock()
}

// Events returns a copy of the in-memory list from the last ListAll,
// kept up to date by Add, Update and Delete.
func (j *Journal) Events() []models.Event {
	j.mu.Lock()
	defer j.mu.Unlock()
	return slices.Clone(j.events)
}

// Wait blocks until background migration writes have finished.
func (j *Journal) Wait() {
	j.bg.Wait()
}

// Add encrypts entry, stores it with a fresh id and the current time, and
// returns the id.
func (j *Journal) Add(ctx context.Context, entry models.Entry) (string, error) {
	if err := entry.Validate(); err != nil {
		return "", err
	}

	id := j.newID()
	date := j.clock.Now().UnixMilli()

	err := j.session.WithKey(func(key *cryptox.Key) error {
		return j.store(ctx, key, id, date, entry)
	})
	if err != nil {
		return "", err
	}

	j.log.Debug(ctx, "event added", "id", id)
	return id, nil
}

type updateOptions struct {
	date *int64
}

type UpdateOption func(*updateOptions)

// WithDate overrides the stored timestamp (epoch milliseconds).
func WithDate(ms int64) UpdateOption {
	return func(o *updateOptions) { o.date = &ms }
}

// Update replaces the entry stored under id. The original date is kept
// unless WithDate is given; an id that does not exist yet is stored with
// the current time.
func (j *Journal) Update(ctx context.Context, id string, entry models.Entry, opts ...UpdateOption) error {
	if err := entry.Validate(); err != nil {
		return err
	}
	var o updateOptions
	for _, opt := range opts {
		opt(&o)
	}

	return j.session.WithKey(func(key *cryptox.Key) error {
		var date int64
		switch {
		case o.date != nil:
			date = *o.date
		default:
			existing, err := j.engine.Repos().Records.Get(ctx, id)
			switch {
			case errors.Is(err, common.ErrNotFound):
				date = j.clock.Now().UnixMilli()
			case err != nil:
				return fmt.Errorf("failed to load event %s: %w", id, err)
			default:
				date = existing.Date
			}
		}

		if err := j.store(ctx, key, id, date, entry); err != nil {
			return err
		}
		j.log.Debug(ctx, "event updated", "id", id)
		return nil
	})
}

// store seals and persists one entry and mirrors it into the cache.
// The caller holds the key.
func (j *Journal) store(ctx context.Context, key *cryptox.Key, id string, date int64, entry models.Entry) error {
	plaintext, err := models.EncodeEntry(entry)
	if err != nil {
		return fmt.Errorf("failed to encode entry: %w", err)
	}
	rec, err := sealRecord(key, id, date, plaintext)
	common.WipeByteArray(plaintext)
	if err != nil {
		return err
	}

	if err := j.engine.Repos().Records.Put(ctx, &rec); err != nil {
		return fmt.Errorf("failed to save event: %w", err)
	}

	j.upsertCached(models.Event{ID: id, Date: date, Entry: entry})
	return nil
}

// Delete removes the record. A missing id yields common.ErrNotFound.
func (j *Journal) Delete(ctx context.Context, id string) error {
	if err := j.engine.Repos().Records.Delete(ctx, id); err != nil {
		return err
	}

	j.mu.Lock()
	j.events = slices.DeleteFunc(j.events, func(e models.Event) bool { return e.ID == id })
	j.mu.Unlock()

	j.log.Debug(ctx, "event deleted", "id", id)
	return nil
}

// Get decrypts a single record.
func (j *Journal) Get(ctx context.Context, id string) (models.Event, error) {
	rec, err := j.engine.Repos().Records.Get(ctx, id)
	if err != nil {
		return models.Event{}, err
	}

	var ev models.Event
	err = j.session.WithKey(func(key *cryptox.Key) error {
		plaintext, err := openRecord(key, *rec)
		if err != nil {
			return err
		}
		ev, err = decodeEvent(*rec, plaintext)
		return err
	})
	return ev, err
}

// pendingUpgrade is a legacy row and its encrypted replacement.
type pendingUpgrade struct {
	legacyData string
	sealed     models.Record
}

// ListAll decrypts every record, newest first, and replaces the in-memory
// list. Records that fail to decrypt or decode are logged and skipped.
//
// While locked only legacy plaintext rows can be read; they are returned
// as-is and the in-memory list is left empty.
func (j *Journal) ListAll(ctx context.Context) ([]models.Event, error) {
	rows, err := j.engine.Repos().Records.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load events: %w", err)
	}

	events := make([]models.Event, 0, len(rows))
	var upgrades []pendingUpgrade

	err = j.session.WithKey(func(key *cryptox.Key) error {
		for _, r := range rows {
			plaintext, err := openRecord(key, r)
			if err != nil {
				j.log.Warn(ctx, "skipping event that failed to decrypt", "id", r.ID, "error", err)
				continue
			}
			ev, err := decodeEvent(r, plaintext)
			if err != nil {
				j.log.Warn(ctx, "skipping event with unreadable payload", "id", r.ID, "error", err)
				continue
			}
			events = append(events, ev)

			if !r.IsEncrypted {
				sealed, err := sealRecord(key, r.ID, r.Date, plaintext)
				if err != nil {
					j.log.Error(ctx, "failed to encrypt legacy event", "id", r.ID, "error", err)
					continue
				}
				upgrades = append(upgrades, pendingUpgrade{legacyData: r.Data, sealed: sealed})
			}
		}

		sortNewestFirst(events)
		j.mu.Lock()
		j.events = slices.Clone(events)
		j.mu.Unlock()
		return nil
	})

	if errors.Is(err, common.ErrNoActiveKey) {
		events = events[:0]
		for _, r := range rows {
			if r.IsEncrypted {
				continue
			}
			ev, err := decodeEvent(r, []byte(r.Data))
			if err != nil {
				j.log.Warn(ctx, "skipping event with unreadable payload", "id", r.ID, "error", err)
				continue
			}
			events = append(events, ev)
		}
		sortNewestFirst(events)
		return events, nil
	}
	if err != nil {
		return nil, err
	}

	if len(upgrades) > 0 {
		j.migrate(ctx, upgrades)
	}
	return events, nil
}

// migrate writes re-encrypted legacy rows back in the background. Failures
// are logged and not retried; the row stays legacy and is picked up again on
// the next listing.
func (j *Journal) migrate(ctx context.Context, upgrades []pendingUpgrade) {
	ctx = context.WithoutCancel(ctx)

	j.bg.Add(1)
	go func() {
		defer j.bg.Done()
		migrated := 0
		for _, u := range upgrades {
			ok, err := j.persistUpgrade(ctx, u)
			if err != nil {
				j.log.Error(ctx, "legacy event migration failed", "id", u.sealed.ID,
					"error", fmt.Errorf("%w: %w", common.ErrMigrationWriteFailed, err))
				continue
			}
			if ok {
				migrated++
			}
		}
		j.log.Info(ctx, "legacy events migrated", "count", migrated, "pending", len(upgrades))
	}()
}

// persistUpgrade replaces the legacy row only if it is still the row that was
// read. It reports whether it wrote.
func (j *Journal) persistUpgrade(ctx context.Context, u pendingUpgrade) (bool, error) {
	wrote := false
	err := j.engine.WithinTx(ctx, func(ctx context.Context, repos *storage.Repositories) error {
		current, err := repos.Records.Get(ctx, u.sealed.ID)
		if errors.Is(err, common.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if current.IsEncrypted || current.Data != u.legacyData {
			return nil
		}
		rec := u.sealed
		if err := repos.Records.Put(ctx, &rec); err != nil {
			return err
		}
		wrote = true
		return nil
	})
	return wrote, err
}

func (j *Journal) upsertCached(ev models.Event) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if i := slices.IndexFunc(j.events, func(e models.Event) bool { return e.ID == ev.ID }); i >= 0 {
		j.events[i] = ev
	} else {
		j.events = append(j.events, ev)
	}
	sortNewestFirst(j.events)
}

func sortNewestFirst(events []models.Event) {
	slices.SortStableFunc(events, func(a, b models.Event) int {
		if c := cmp.Compare(b.Date, a.Date); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
}
