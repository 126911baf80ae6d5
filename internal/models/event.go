package models

import "time"

// Event is a decrypted journal entry together with its identity and
// timestamp. The entry fields are flattened into the JSON object.
type Event struct {
	ID   string `json:"id"`
	Date int64  `json:"date"`
	Entry
}

func (e Event) Time() time.Time {
	return time.UnixMilli(e.Date)
}
