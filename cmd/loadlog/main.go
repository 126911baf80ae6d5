package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/loadlog/internal/buildinfo"
	"github.com/dmitrijs2005/loadlog/internal/cli"
	"github.com/dmitrijs2005/loadlog/internal/config"
	"github.com/dmitrijs2005/loadlog/internal/cryptox"
	"github.com/dmitrijs2005/loadlog/internal/logging"
	"github.com/dmitrijs2005/loadlog/internal/services"
	"github.com/dmitrijs2005/loadlog/internal/storage"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "loadlog:", err)
		os.Exit(1)
	}
}

func run() error {
	buildinfo.PrintBuildData(os.Stdout)

	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		return err
	}

	logger := logging.New(os.Stderr, logging.ParseLevel(cfg.LogLevel))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	engine, err := storage.Open(ctx, cfg.StorageEngine, cfg.DatabasePath, storage.WithLogger(logger))
	if err != nil {
		return err
	}
	defer engine.Close()

	session, err := services.NewSession(ctx, engine,
		services.WithKDF(cryptox.KDF{Iterations: cfg.KDFIterations}),
		services.WithLogger(logger),
		services.WithAutoLock(cfg.AutoLockAfter, cfg.AutoLockCheckInterval),
	)
	if err != nil {
		return err
	}
	journal := services.NewJournal(session, services.WithJournalLogger(logger))

	app := cli.NewApp(
		session,
		journal,
		services.NewSettingsService(session),
		services.NewBackupService(session, logger),
		logger,
		os.Stdin,
		os.Stdout,
	)

	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer signal.Stop(sigs)

	done := make(chan struct{})
	go func() {
		defer close(done)
		app.Run(ctx)
	}()

	select {
	case <-done:
	case sig := <-sigs:
		logger.Info(ctx, "shutting down", "signal", sig.String())
	}

	session.Logout()
	journal.Wait()
	return nil
}
