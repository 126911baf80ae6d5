package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Record
	}{
		{
			name: "explicit flag",
			in:   `{"id":"a","date":5,"data":"Zm9v","iv":"00","isEncrypted":true}`,
			want: Record{ID: "a", Date: 5, Data: "Zm9v", IV: "00", IsEncrypted: true},
		},
		{
			name: "legacy plaintext",
			in:   `{"id":"b","date":6,"data":"{}","isEncrypted":false}`,
			want: Record{ID: "b", Date: 6, Data: "{}"},
		},
		{
			name: "flag missing with iv",
			in:   `{"id":"c","date":7,"data":"Zm9v","iv":"0011"}`,
			want: Record{ID: "c", Date: 7, Data: "Zm9v", IV: "0011", IsEncrypted: true},
		},
		{
			name: "flag missing without iv",
			in:   `{"id":"d","date":8,"data":"{}"}`,
			want: Record{ID: "d", Date: 8, Data: "{}"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Record
			require.NoError(t, json.Unmarshal([]byte(tt.in), &got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRecord_Time(t *testing.T) {
	r := Record{Date: 1_700_000_000_123}
	assert.Equal(t, time.UnixMilli(1_700_000_000_123), r.Time())
}

func TestEvent_JSONFlattensEntry(t *testing.T) {
	ev := Event{ID: "x", Date: 1, Entry: Entry{SourceType: SourceMedia, SoloOrPartner: Solo, Notes: "n"}}
	b, err := json.Marshal(ev)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"x","date":1,"sourceType":"media","soloOrPartner":"solo","notes":"n"}`, string(b))
}
