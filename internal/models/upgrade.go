package models

import (
	"fmt"
	"slices"
	"strings"
)

var moodScores = map[string]int{
	"awful":   1,
	"bad":     2,
	"neutral": 3,
	"good":    4,
	"great":   5,
}

// Upgrade converts any payload generation to the current Entry. It has no
// side effects, and a current Entry is returned unchanged.
func Upgrade(p Payload) (Entry, error) {
	switch v := p.(type) {
	case Entry:
		return v, nil
	case EntryV2:
		return upgradeV2(v), nil
	case EntryV1:
		return upgradeV2(upgradeV1(v)), nil
	default:
		return Entry{}, fmt.Errorf("%w: %T", ErrUnknownSchema, p)
	}
}

func upgradeV1(old EntryV1) EntryV2 {
	out := EntryV2{
		DeprecatedType:       old.Type,
		DeprecatedPartners:   slices.Clone(old.Partners),
		DeprecatedProtection: slices.Clone(old.Protection),
		DeprecatedMood:       old.Mood,
		DeprecatedRating:     old.Rating,
		DeprecatedLocation:   old.Location,
		DeprecatedStartTime:  old.StartTime,
		DeprecatedEndTime:    old.EndTime,
		DeprecatedConsent:    old.Consent,
		IsSensitive:          old.IsSensitive,
	}

	out.Notes = old.Notes
	out.Tags = slices.Clone(old.Tags)

	if old.Type == string(Partnered) {
		out.SoloOrPartner = Partnered
		out.SourceType = SourcePartner
		out.ProtectionUsed = protectionFromList(old.Protection)
	} else {
		out.SoloOrPartner = Solo
		out.SourceType = SourceOther
	}

	return out
}

func upgradeV2(old EntryV2) Entry {
	e := old.Entry
	e.Tags = slices.Clone(e.Tags)

	if e.SoloOrPartner == "" {
		e.SoloOrPartner = Solo
	}
	if e.SourceType == "" {
		e.SourceType = SourceOther
	}
	if e.SourceLabel == "" && len(old.DeprecatedPartners) > 0 {
		e.SourceLabel = strings.Join(old.DeprecatedPartners, ", ")
	}
	if e.MoodAfter == 0 {
		e.MoodAfter = moodScores[strings.ToLower(old.DeprecatedMood)]
	}
	if e.Intensity == 0 && old.DeprecatedRating > 0 {
		e.Intensity = min(max(old.DeprecatedRating, 1), 5)
	}
	if e.ProtectionUsed == "" && e.SoloOrPartner == Partnered {
		e.ProtectionUsed = protectionFromList(old.DeprecatedProtection)
	}
	if old.DeprecatedLocation != "" {
		loc := "Location: " + old.DeprecatedLocation
		if e.Notes == "" {
			e.Notes = loc
		} else if !strings.Contains(e.Notes, loc) {
			e.Notes += "\n" + loc
		}
	}
	if e.PrivacyLevel == "" {
		e.PrivacyLevel = PrivacyNormal
		if old.IsSensitive {
			e.PrivacyLevel = PrivacyExtraPrivate
		}
	}

	return e
}

func protectionFromList(items []string) Protection {
	if len(items) == 0 {
		return ""
	}
	for _, it := range items {
		if strings.EqualFold(it, string(ProtectionCondom)) {
			return ProtectionCondom
		}
	}
	for _, it := range items {
		if !strings.EqualFold(it, string(ProtectionNone)) {
			return ProtectionOther
		}
	}
	return ProtectionNone
}
