package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/loadlog/internal/common"
	"github.com/dmitrijs2005/loadlog/internal/models"
)

// Settings shows the current settings and lets the user change them.
func (a *App) Settings(ctx context.Context) error {
	if !a.session.IsUnlocked() {
		return common.ErrNoActiveKey
	}

	s, err := a.settings.Load(ctx)
	if err != nil {
		return err
	}

	if s.AutoLockMinutes, err = GetNumber(a.reader, "Auto-lock after minutes", s.AutoLockMinutes, a.out); err != nil {
		return err
	}
	level, err := GetOptional(a.reader, "Spice level (mild, medium, spicy)", string(s.SpiceLevel), a.out)
	if err != nil {
		return err
	}
	s.SpiceLevel = models.SpiceLevel(level)
	if s.MinimalLoggingMode, err = GetYesNo(a.reader, "Minimal logging mode", s.MinimalLoggingMode, a.out); err != nil {
		return err
	}
	if s.ShowExtraPrivate, err = GetYesNo(a.reader, "Show extra private events in lists", s.ShowExtraPrivate, a.out); err != nil {
		return err
	}

	if err := a.settings.Save(ctx, s); err != nil {
		return err
	}

	a.println(fmt.Sprintf("Saved. Auto-lock after %d minute(s).", s.AutoLockMinutes))
	return nil
}
