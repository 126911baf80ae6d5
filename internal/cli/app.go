package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/dmitrijs2005/loadlog/internal/logging"
	"github.com/dmitrijs2005/loadlog/internal/services"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
)

type App struct {
	session  *services.Session
	journal  *services.Journal
	settings *services.SettingsService
	backup   *services.BackupService
	log      logging.Logger

	reader *bufio.Reader
	out    io.Writer
}

func NewApp(
	session *services.Session,
	journal *services.Journal,
	settings *services.SettingsService,
	backup *services.BackupService,
	log logging.Logger,
	in io.Reader,
	out io.Writer,
) *App {
	if log == nil {
		log = logging.Nop()
	}
	return &App{
		session:  session,
		journal:  journal,
		settings: settings,
		backup:   backup,
		log:      log.With("component", "cli"),
		reader:   bufio.NewReader(in),
		out:      out,
	}
}

// Run prints a greeting and serves commands until exit or end of input.
func (a *App) Run(ctx context.Context) {
	fmt.Fprintln(a.out, "Welcome to loadlog (type 'help' for commands)")
	switch a.session.State() {
	case services.StateNoAccount:
		fmt.Fprintln(a.out, "No journal yet. Type 'register' to create one.")
	case services.StateLocked:
		fmt.Fprintln(a.out, "Journal is locked. Type 'login' to unlock.")
	}

	runREPL(ctx, a, a.getStatus, a.reader, a.out)
}

func (a *App) getStatus() string {
	return a.session.State().String()
}

func (a *App) isLoggedIn() bool {
	return a.session.IsUnlocked()
}

// Touch counts a command as user activity.
func (a *App) Touch() {
	a.session.Touch()
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}
