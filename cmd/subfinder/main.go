package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"syscall"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-subscription-client/api"
	"github.com/jrsteele09/go-subscription-client/console"
	"github.com/jrsteele09/go-subscription-client/internal/config"
	"github.com/jrsteele09/go-subscription-client/internal/logging"
	"github.com/jrsteele09/go-subscription-client/session"
	"github.com/jrsteele09/go-subscription-client/storage"
	"github.com/jrsteele09/go-subscription-client/storage/filestore"
	"github.com/jrsteele09/go-subscription-client/storage/sqlitestore"
	"github.com/jrsteele09/go-subscription-client/storage/storagefake"
	"github.com/jrsteele09/go-subscription-client/token"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c, err := config.Load("")
	if err != nil {
		return err
	}
	logging.Setup(c.GetLogLevel(), c.GetEnv())
	displayAppname(c.GetAppName())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(c)
	if err != nil {
		return err
	}
	defer closeStore()

	client := api.New(c, token.NewStoreSource(store))
	mgr := session.NewManager(session.Dependencies{Store: store, Refresher: client, Config: c})

	activity := make(chan struct{}, 1)
	runDone := make(chan struct{})
	go func() {
		defer close(runDone)
		_ = mgr.Run(ctx, activity)
	}()

	if fs, ok := store.(*filestore.Store); ok {
		go func() {
			if err := fs.Watch(ctx, mgr.Resync); err != nil {
				log.Warn().Err(err).Msg("Not watching session file for changes")
			}
		}()
	}

	prompter := console.NewLinePrompter(historyPath(c))
	returnError = console.New(console.Dependencies{
		API:      client,
		Session:  mgr,
		Prompter: prompter,
		Out:      os.Stdout,
		Activity: activity,
	}).Run(ctx)
	_ = prompter.Close()

	stop()
	<-runDone
	return returnError
}

// openStore returns the configured session store and a func that releases it.
func openStore(c config.StorageConfig) (storage.Store, func(), error) {
	switch driver := c.GetStorageDriver(); driver {
	case config.StorageDriverFile:
		log.Debug().Str("path", c.GetStoragePath()).Bool("encrypted", c.GetStoragePassphrase() != "").Msg("Using file storage")
		return filestore.New(c.GetStoragePath(), c.GetStoragePassphrase()), func() {}, nil
	case config.StorageDriverSQLite:
		s, err := sqlitestore.Open(c.GetStoragePath())
		if err != nil {
			return nil, nil, err
		}
		log.Debug().Str("path", c.GetStoragePath()).Msg("Using sqlite storage")
		return s, func() { _ = s.Close() }, nil
	case config.StorageDriverMemory:
		return storagefake.NewFakeStore(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}

func historyPath(c config.StorageConfig) string {
	if c.GetStorageDriver() == config.StorageDriverMemory {
		return ""
	}
	return filepath.Join(filepath.Dir(c.GetStoragePath()), "history")
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
