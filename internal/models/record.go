package models

import (
	"encoding/json"
	"time"
)

// Record is an events row as persisted. When IsEncrypted is set Data holds
// base64 AES-GCM ciphertext and IV the hex nonce; otherwise Data is the
// plaintext JSON of an entry and IV is empty.
type Record struct {
	ID          string `json:"id"`
	Date        int64  `json:"date"`
	Data        string `json:"data"`
	IV          string `json:"iv,omitempty"`
	IsEncrypted bool   `json:"isEncrypted"`
}

// Time returns Date, which is stored as epoch milliseconds.
func (r Record) Time() time.Time {
	return time.UnixMilli(r.Date)
}

// UnmarshalJSON accepts rows written before isEncrypted existed. Such rows
// are encrypted exactly when they carry an iv.
func (r *Record) UnmarshalJSON(b []byte) error {
	type plain Record
	var aux struct {
		plain
		IsEncrypted *bool `json:"isEncrypted"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}

	*r = Record(aux.plain)
	if aux.IsEncrypted != nil {
		r.IsEncrypted = *aux.IsEncrypted
	} else {
		r.IsEncrypted = r.IV != ""
	}
	return nil
}
