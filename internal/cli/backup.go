package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/loadlog/internal/filex"
)

// Export writes a backup to path, readable only by the current user.
func (a *App) Export(ctx context.Context, path string) error {
	var buf bytes.Buffer
	if err := a.backup.Export(ctx, &buf); err != nil {
		return err
	}
	if err := filex.WritePrivate(path, buf.Bytes()); err != nil {
		return err
	}

	a.log.Info(ctx, "backup written", "path", path)
	a.println("Backup written to", path)
	return nil
}

// Import replaces the journal with the backup at path after confirmation.
func (a *App) Import(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open backup: %w", err)
	}
	defer f.Close()

	answer, err := getSimpleText(a.reader, "Importing replaces every event and the passphrase. Type "+confirmWord+" to continue", a.out)
	if err != nil {
		return err
	}
	if answer != confirmWord {
		return errNotConfirmed
	}

	if err := a.backup.Import(ctx, f); err != nil {
		return err
	}
	a.log.Info(ctx, "backup restored", "path", path)

	a.println("Backup imported. Log in with the passphrase the backup was made with.")
	return nil
}
