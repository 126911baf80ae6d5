package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/loadlog/internal/common"
	"github.com/dmitrijs2005/loadlog/internal/models"
)

// Add records a new event.
func (a *App) Add(ctx context.Context) error {
	if !a.session.IsUnlocked() {
		return common.ErrNoActiveKey
	}

	settings, err := a.settings.Load(ctx)
	if err != nil {
		return err
	}

	entry, err := a.promptEntry(models.Entry{
		SourceType:    models.SourceOther,
		SoloOrPartner: models.Solo,
	}, settings.MinimalLoggingMode)
	if err != nil {
		return err
	}

	id, err := a.journal.Add(ctx, entry)
	if err != nil {
		return err
	}

	a.println("Saved as", id)
	return nil
}

// List prints every readable event, newest first.
func (a *App) List(ctx context.Context) error {
	events, err := a.journal.ListAll(ctx)
	if err != nil {
		return err
	}

	settings, err := a.settings.Load(ctx)
	if err != nil {
		return err
	}

	if !a.session.IsUnlocked() {
		a.println("Journal is locked; only events stored before encryption are shown.")
	}
	if len(events) == 0 {
		a.println("No events.")
		return nil
	}
	for _, ev := range events {
		a.println(summary(ev, settings.ShowExtraPrivate))
	}
	a.println(fmt.Sprintf("%d event(s)", len(events)))
	return nil
}

func (a *App) Show(ctx context.Context, id string) error {
	ev, err := a.journal.Get(ctx, id)
	if err != nil {
		return err
	}
	for _, line := range details(ev) {
		a.println(line)
	}
	return nil
}

// Edit replaces an event, keeping its date.
func (a *App) Edit(ctx context.Context, id string) error {
	ev, err := a.journal.Get(ctx, id)
	if err != nil {
		return err
	}

	entry, err := a.promptEntry(ev.Entry, false)
	if err != nil {
		return err
	}

	if err := a.journal.Update(ctx, id, entry); err != nil {
		return err
	}
	a.println("Updated.")
	return nil
}

func (a *App) Delete(ctx context.Context, id string) error {
	if err := a.journal.Delete(ctx, id); err != nil {
		return err
	}
	a.println("Deleted.")
	return nil
}
