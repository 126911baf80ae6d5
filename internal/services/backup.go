package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/dmitrijs2005/loadlog/internal/common"
	"github.com/dmitrijs2005/loadlog/internal/cryptox"
	"github.com/dmitrijs2005/loadlog/internal/logging"
	"github.com/dmitrijs2005/loadlog/internal/models"
	"github.com/dmitrijs2005/loadlog/internal/storage"
)

// BackupVersion is the only backup format version understood by Import.
const BackupVersion = 1

// Backup is the export document. Records are exported exactly as stored, so
// a backup is only as readable as the passphrase that sealed it.
type Backup struct {
	Version       int             `json:"version"`
	Timestamp     int64           `json:"timestamp"`
	Salt          string          `json:"salt"`
	Verifier      string          `json:"verifier"`
	VerifierIV    string          `json:"verifierIv"`
	KDFIterations int             `json:"kdfIterations,omitempty"`
	Events        []models.Record `json:"events"`
}

type BackupService struct {
	session *Session
	log     logging.Logger
}

func NewBackupService(session *Session, log logging.Logger) *BackupService {
	if log == nil {
		log = logging.Nop()
	}
	return &BackupService{session: session, log: log.With("component", "backup")}
}

// Export writes a consistent snapshot of the account and all records to w.
func (b *BackupService) Export(ctx context.Context, w io.Writer) error {
	doc := Backup{
		Version:   BackupVersion,
		Timestamp: b.session.Clock().Now().UnixMilli(),
	}

	err := b.session.Engine().WithinTx(ctx, func(ctx context.Context, repos *storage.Repositories) error {
		acc, err := loadAccount(ctx, repos.Metadata)
		if err != nil {
			return err
		}
		rows, err := repos.Records.GetAll(ctx)
		if err != nil {
			return err
		}
		if stored, err := repos.Records.Count(ctx); err == nil && stored != len(rows) {
			b.log.Warn(ctx, "unreadable records left out of backup", "skipped", stored-len(rows))
		}

		doc.Salt = acc.salt
		doc.Verifier = acc.verifier
		doc.VerifierIV = acc.verifierIV
		doc.KDFIterations = acc.iterations
		doc.Events = rows
		if doc.Events == nil {
			doc.Events = []models.Record{}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to export backup: %w", err)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to write backup: %w", err)
	}

	b.log.Info(ctx, "backup exported", "events", len(doc.Events))
	return nil
}

// Import replaces the account and every record with the contents of r. The
// session is locked afterwards and must be unlocked with the passphrase the
// backup was made with. Settings are kept. Invalid input returns
// common.ErrInvalidBackup and leaves storage untouched.
func (b *BackupService) Import(ctx context.Context, r io.Reader) error {
	var doc Backup
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return fmt.Errorf("%w: %v", common.ErrInvalidBackup, err)
	}
	if err := validateBackup(doc); err != nil {
		return err
	}

	acc := account{
		salt:       doc.Salt,
		verifier:   doc.Verifier,
		verifierIV: doc.VerifierIV,
		iterations: doc.KDFIterations,
	}
	err := b.session.Engine().WithinTx(ctx, func(ctx context.Context, repos *storage.Repositories) error {
		if err := repos.Records.Clear(ctx); err != nil {
			return err
		}
		if err := repos.Records.BulkPut(ctx, doc.Events); err != nil {
			return err
		}
		return saveAccount(ctx, repos.Metadata, acc)
	})
	if err != nil {
		return fmt.Errorf("failed to import backup: %w", err)
	}

	b.log.Info(ctx, "backup imported", "events", len(doc.Events))
	return b.session.Reload(ctx)
}

func validateBackup(doc Backup) error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", common.ErrInvalidBackup, fmt.Sprintf(format, args...))
	}

	if doc.Version != BackupVersion {
		return invalid("unsupported version %d", doc.Version)
	}
	if err := cryptox.ValidateSalt(doc.Salt); err != nil {
		return invalid("salt: %v", err)
	}
	if doc.Verifier == "" || doc.VerifierIV == "" {
		return invalid("verifier is missing")
	}
	if _, err := cryptox.DecodeVerifier(doc.Verifier, doc.VerifierIV); err != nil {
		return invalid("verifier: %v", err)
	}
	if doc.KDFIterations < 0 {
		return invalid("negative kdf iteration count")
	}
	if doc.Events == nil {
		return invalid("events are missing")
	}

	seen := make(map[string]struct{}, len(doc.Events))
	for i, e := range doc.Events {
		if e.ID == "" {
			return invalid("event %d has no id", i)
		}
		if _, dup := seen[e.ID]; dup {
			return invalid("duplicate event id %s", e.ID)
		}
		seen[e.ID] = struct{}{}
		if e.IsEncrypted && e.IV == "" {
			return invalid("encrypted event %s has no iv", e.ID)
		}
	}
	return nil
}
