package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/loadlog/internal/common"
	"github.com/dmitrijs2005/loadlog/internal/models"
	"github.com/dmitrijs2005/loadlog/internal/storage"
)

// SettingsService reads and writes models.AppSettings.
type SettingsService struct {
	session *Session
}

func NewSettingsService(session *Session) *SettingsService {
	return &SettingsService{session: session}
}

// loadAppSettings returns nil when nothing has been saved yet.
func loadAppSettings(ctx context.Context, repos *storage.Repositories) (*models.AppSettings, error) {
	var s models.AppSettings
	err := repos.Settings.Get(ctx, models.AppSettingsKey, &s)
	if errors.Is(err, common.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Load returns the stored settings, or the defaults when none are stored.
// Fields missing from an older stored document take their default values.
func (s *SettingsService) Load(ctx context.Context) (models.AppSettings, error) {
	stored, err := loadAppSettings(ctx, s.session.Engine().Repos())
	if err != nil {
		return models.AppSettings{}, fmt.Errorf("failed to load settings: %w", err)
	}

	out := models.DefaultAppSettings()
	if stored == nil {
		return out, nil
	}
	if stored.AutoLockMinutes > 0 {
		out.AutoLockMinutes = stored.AutoLockMinutes
	}
	if stored.SpiceLevel != "" {
		out.SpiceLevel = stored.SpiceLevel
	}
	out.MinimalLoggingMode = stored.MinimalLoggingMode
	out.ShowExtraPrivate = stored.ShowExtraPrivate
	return out, nil
}

// Save validates and stores settings. A changed auto-lock window applies to
// the running session immediately.
func (s *SettingsService) Save(ctx context.Context, settings models.AppSettings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	if err := s.session.Engine().Repos().Settings.Put(ctx, models.AppSettingsKey, settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	s.session.applyAutoLock(time.Duration(settings.AutoLockMinutes) * time.Minute)
	return nil
}
