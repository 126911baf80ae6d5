package services

import (
	"fmt"

	"github.com/dmitrijs2005/loadlog/internal/cryptox"
	"github.com/dmitrijs2005/loadlog/internal/models"
)

// sealRecord encrypts plaintext into a storable row.
func sealRecord(key *cryptox.Key, id string, date int64, plaintext []byte) (models.Record, error) {
	ct, nonce, err := cryptox.Encrypt(key, plaintext)
	if err != nil {
		return models.Record{}, err
	}
	return models.Record{
		ID:          id,
		Date:        date,
		Data:        cryptox.EncodeCiphertext(ct),
		IV:          cryptox.EncodeNonce(nonce),
		IsEncrypted: true,
	}, nil
}

// openRecord returns the plaintext payload of r. Legacy rows are already
// plaintext and need no key.
func openRecord(key *cryptox.Key, r models.Record) ([]byte, error) {
	if !r.IsEncrypted {
		return []byte(r.Data), nil
	}
	return cryptox.OpenString(key, r.Data, r.IV)
}

// decodeEvent upgrades the payload to the current schema and attaches the
// row's identity.
func decodeEvent(r models.Record, plaintext []byte) (models.Event, error) {
	entry, err := models.ParseEntry(plaintext)
	if err != nil {
		return models.Event{}, fmt.Errorf("record %s: %w", r.ID, err)
	}
	return models.Event{ID: r.ID, Date: r.Date, Entry: entry}, nil
}
