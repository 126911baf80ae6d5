package models

import (
	"errors"
	"fmt"
)

// AppSettingsKey is the settings key AppSettings is stored under.
const AppSettingsKey = "app_settings"

var ErrInvalidSettings = errors.New("invalid settings")

type SpiceLevel string

const (
	SpiceMild   SpiceLevel = "mild"
	SpiceMedium SpiceLevel = "medium"
	SpiceSpicy  SpiceLevel = "spicy"
)

// AppSettings are the per-account preferences.
type AppSettings struct {
	AutoLockMinutes    int        `json:"autoLockMinutes"`
	MinimalLoggingMode bool       `json:"minimalLoggingMode"`
	SpiceLevel         SpiceLevel `json:"spiceLevel"`
	ShowExtraPrivate   bool       `json:"showExtraPrivate"`
}

func DefaultAppSettings() AppSettings {
	return AppSettings{
		AutoLockMinutes: 5,
		SpiceLevel:      SpiceMedium,
	}
}

// Validate enforces an auto-lock window between 1 minute and 24 hours and a
// known spice level.
func (s AppSettings) Validate() error {
	if s.AutoLockMinutes < 1 || s.AutoLockMinutes > 24*60 {
		return fmt.Errorf("%w: autoLockMinutes must be between 1 and 1440, got %d", ErrInvalidSettings, s.AutoLockMinutes)
	}
	switch s.SpiceLevel {
	case SpiceMild, SpiceMedium, SpiceSpicy:
	default:
		return fmt.Errorf("%w: spice level %q", ErrInvalidSettings, s.SpiceLevel)
	}
	return nil
}
