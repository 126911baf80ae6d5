package models

import (
	"errors"
	"fmt"
	"slices"
)

var ErrInvalidEntry = errors.New("invalid entry")

var (
	sourceTypes   = []SourceType{SourcePorn, SourceFantasy, SourcePartner, SourceMemory, SourceMedia, SourceOther}
	loadSizes     = []LoadSize{LoadSmall, LoadMedium, LoadBig, LoadMythic}
	cleanups      = []Cleanup{CleanupQuick, CleanupStandard, CleanupFullReset}
	privacyLevels = []PrivacyLevel{PrivacyNormal, PrivacyExtraPrivate}
	protections   = []Protection{ProtectionNone, ProtectionCondom, ProtectionOther}
)

// Validate checks enumerations and the 1-5 scales. Zero values of optional
// fields are accepted.
func (e Entry) Validate() error {
	if !slices.Contains(sourceTypes, e.SourceType) {
		return fmt.Errorf("%w: source type %q", ErrInvalidEntry, e.SourceType)
	}
	if e.SoloOrPartner != Solo && e.SoloOrPartner != Partnered {
		return fmt.Errorf("%w: soloOrPartner %q", ErrInvalidEntry, e.SoloOrPartner)
	}

	for name, v := range map[string]int{
		"intensity":  e.Intensity,
		"moodBefore": e.MoodBefore,
		"moodAfter":  e.MoodAfter,
	} {
		if v < 0 || v > 5 {
			return fmt.Errorf("%w: %s must be between 1 and 5, got %d", ErrInvalidEntry, name, v)
		}
	}

	if e.LoadSize != "" && !slices.Contains(loadSizes, e.LoadSize) {
		return fmt.Errorf("%w: load size %q", ErrInvalidEntry, e.LoadSize)
	}
	if e.Cleanup != "" && !slices.Contains(cleanups, e.Cleanup) {
		return fmt.Errorf("%w: cleanup %q", ErrInvalidEntry, e.Cleanup)
	}
	if e.PrivacyLevel != "" && !slices.Contains(privacyLevels, e.PrivacyLevel) {
		return fmt.Errorf("%w: privacy level %q", ErrInvalidEntry, e.PrivacyLevel)
	}
	if e.ProtectionUsed != "" {
		if !slices.Contains(protections, e.ProtectionUsed) {
			return fmt.Errorf("%w: protection %q", ErrInvalidEntry, e.ProtectionUsed)
		}
		if e.SoloOrPartner != Partnered {
			return fmt.Errorf("%w: protection only applies to partnered entries", ErrInvalidEntry)
		}
	}
	return nil
}
