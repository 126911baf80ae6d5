package models

import (
	"encoding/json"
	"errors"
	"fmt"
)

// SchemaVersion identifies the generation of an entry payload.
type SchemaVersion int

const (
	SchemaV1 SchemaVersion = 1
	SchemaV2 SchemaVersion = 2
	SchemaV3 SchemaVersion = 3

	// CurrentSchema is the version written by EncodeEntry.
	CurrentSchema = SchemaV3
)

var ErrUnknownSchema = errors.New("unknown entry schema")

type SourceType string

const (
	SourcePorn    SourceType = "porn"
	SourceFantasy SourceType = "fantasy"
	SourcePartner SourceType = "partner"
	SourceMemory  SourceType = "memory"
	SourceMedia   SourceType = "media"
	SourceOther   SourceType = "other"
)

type SoloOrPartner string

const (
	Solo      SoloOrPartner = "solo"
	Partnered SoloOrPartner = "partnered"
)

type LoadSize string

const (
	LoadSmall  LoadSize = "small"
	LoadMedium LoadSize = "medium"
	LoadBig    LoadSize = "big"
	LoadMythic LoadSize = "mythic"
)

type Cleanup string

const (
	CleanupQuick     Cleanup = "quick"
	CleanupStandard  Cleanup = "standard"
	CleanupFullReset Cleanup = "full_reset"
)

type PrivacyLevel string

const (
	PrivacyNormal       PrivacyLevel = "normal"
	PrivacyExtraPrivate PrivacyLevel = "extra_private"
)

type Protection string

const (
	ProtectionNone   Protection = "none"
	ProtectionCondom Protection = "condom"
	ProtectionOther  Protection = "other"
)

// Payload is one of EntryV1, EntryV2 or Entry.
type Payload interface {
	Version() SchemaVersion
	payload()
}

// Entry is the current (V3) payload.
type Entry struct {
	SourceType    SourceType    `json:"sourceType"`
	SourceLabel   string        `json:"sourceLabel,omitempty"`
	SoloOrPartner SoloOrPartner `json:"soloOrPartner"`

	Intensity  int      `json:"intensity,omitempty"`
	MoodBefore int      `json:"moodBefore,omitempty"`
	MoodAfter  int      `json:"moodAfter,omitempty"`
	LoadSize   LoadSize `json:"loadSize,omitempty"`

	RefractoryNotes string   `json:"refractoryNotes,omitempty"`
	BodyNotes       string   `json:"bodyNotes,omitempty"`
	Tags            []string `json:"tags,omitempty"`
	Notes           string   `json:"notes,omitempty"`

	ProtectionUsed Protection   `json:"protectionUsed,omitempty"`
	Cleanup        Cleanup      `json:"cleanup,omitempty"`
	PrivacyLevel   PrivacyLevel `json:"privacyLevel,omitempty"`
}

func (Entry) Version() SchemaVersion { return SchemaV3 }
func (Entry) payload()               {}

// EntryV2 is the transitional shape: current field names, untagged, with the
// V1 values parked in _deprecated_* fields.
type EntryV2 struct {
	Entry

	DeprecatedType       string     `json:"_deprecated_type,omitempty"`
	DeprecatedPartners   stringList `json:"_deprecated_partners,omitempty"`
	DeprecatedProtection stringList `json:"_deprecated_protection,omitempty"`
	DeprecatedMood       string     `json:"_deprecated_mood,omitempty"`
	DeprecatedRating     int        `json:"_deprecated_rating,omitempty"`
	DeprecatedLocation   string     `json:"_deprecated_location,omitempty"`
	DeprecatedStartTime  int64      `json:"_deprecated_startTime,omitempty"`
	DeprecatedEndTime    int64      `json:"_deprecated_endTime,omitempty"`
	DeprecatedConsent    *bool      `json:"_deprecated_consent,omitempty"`
	IsSensitive          bool       `json:"isSensitive,omitempty"`
}

func (EntryV2) Version() SchemaVersion { return SchemaV2 }
func (EntryV2) payload()               {}

// EntryV1 is the original general-purpose log shape.
type EntryV1 struct {
	Type        string     `json:"type"`
	Partners    stringList `json:"partners,omitempty"`
	Protection  stringList `json:"protection,omitempty"`
	Mood        string     `json:"mood,omitempty"`
	Rating      int        `json:"rating,omitempty"`
	Location    string     `json:"location,omitempty"`
	StartTime   int64      `json:"startTime,omitempty"`
	EndTime     int64      `json:"endTime,omitempty"`
	Consent     *bool      `json:"consent,omitempty"`
	IsSensitive bool       `json:"isSensitive,omitempty"`
	Notes       string     `json:"notes,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
}

func (EntryV1) Version() SchemaVersion { return SchemaV1 }
func (EntryV1) payload()               {}

// stringList decodes from a JSON array of strings or from a single string.
// Old rows stored partners both ways.
type stringList []string

func (l *stringList) UnmarshalJSON(b []byte) error {
	var one string
	if err := json.Unmarshal(b, &one); err == nil {
		if one == "" {
			*l = nil
		} else {
			*l = stringList{one}
		}
		return nil
	}
	var many []string
	if err := json.Unmarshal(b, &many); err != nil {
		return err
	}
	*l = many
	return nil
}

// EncodeEntry renders e as tagged current-schema JSON.
func EncodeEntry(e Entry) ([]byte, error) {
	return json.Marshal(struct {
		SchemaVersion SchemaVersion `json:"schemaVersion"`
		Entry
	}{SchemaVersion: CurrentSchema, Entry: e})
}

// DecodeEntry parses a payload of any known generation. Tagged payloads are
// taken at their word; untagged ones are V2 when they use the current field
// names and V1 when they carry the old "type" discriminator.
func DecodeEntry(b []byte) (Payload, error) {
	var shape struct {
		SchemaVersion *SchemaVersion `json:"schemaVersion"`
		SourceType    *string        `json:"sourceType"`
		SoloOrPartner *string        `json:"soloOrPartner"`
		Type          *string        `json:"type"`
	}
	if err := json.Unmarshal(b, &shape); err != nil {
		return nil, fmt.Errorf("decode entry: %w", err)
	}

	version := SchemaV2
	switch {
	case shape.SchemaVersion != nil:
		version = *shape.SchemaVersion
	case shape.SourceType != nil || shape.SoloOrPartner != nil:
		version = SchemaV2
	case shape.Type != nil:
		version = SchemaV1
	}

	var (
		p   Payload
		err error
	)
	switch version {
	case SchemaV3:
		var e Entry
		err = json.Unmarshal(b, &e)
		p = e
	case SchemaV2:
		var e EntryV2
		err = json.Unmarshal(b, &e)
		p = e
	case SchemaV1:
		var e EntryV1
		err = json.Unmarshal(b, &e)
		p = e
	default:
		return nil, fmt.Errorf("%w: version %d", ErrUnknownSchema, version)
	}
	if err != nil {
		return nil, fmt.Errorf("decode entry v%d: %w", version, err)
	}
	return p, nil
}

// ParseEntry decodes b and upgrades it to the current schema.
func ParseEntry(b []byte) (Entry, error) {
	p, err := DecodeEntry(b)
	if err != nil {
		return Entry{}, err
	}
	return Upgrade(p)
}
