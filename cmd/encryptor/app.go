package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"github.com/hfi/message-encryptor/internal/audit"
	"github.com/hfi/message-encryptor/internal/config"
	"github.com/hfi/message-encryptor/internal/logging"
	"github.com/hfi/message-encryptor/internal/storage"
	"github.com/hfi/message-encryptor/internal/vault"
)

// app holds the wiring shared by every command
type app struct {
	cfg       *config.Config
	logger    zerolog.Logger
	logCloser io.Closer
	auditor   *audit.Logger
	store     *storage.CollectionStore
	session   *vault.Session
}

// interactive keeps stdout and stderr free for the terminal UI
func interactive(cfg *config.Config) {
	if cfg.Logging.Output == "" || cfg.Logging.Output == "stdout" || cfg.Logging.Output == "stderr" {
		cfg.Logging.Output = "discard"
	}
	if cfg.Audit.Output == "stdout" || cfg.Audit.Output == "stderr" {
		cfg.Audit.Enabled = false
	}
}

// newApp loads the configuration and opens the store. tweak, if set, may
// adjust the loaded configuration before anything is opened.
func newApp(ctx context.Context, configPath string, tweak func(*config.Config)) (*app, error) {
	cfg, err := config.LoadFrom(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if tweak != nil {
		tweak(cfg)
	}
	cfg.Management.Version = Version

	logger, logCloser, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, err
	}

	auditor, err := audit.NewLogger(&cfg.Audit)
	if err != nil {
		logCloser.Close()
		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}

	store, err := storage.Open(ctx, cfg.Storage, logger)
	if err != nil {
		auditor.Close()
		logCloser.Close()
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	session := vault.New(store, vault.WithAuditor(auditor), vault.WithLogger(logger))
	if err := session.Load(ctx); err != nil {
		store.Close()
		auditor.Close()
		logCloser.Close()
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}

	return &app{
		cfg:       cfg,
		logger:    logger,
		logCloser: logCloser,
		auditor:   auditor,
		store:     store,
		session:   session,
	}, nil
}

func (a *app) Close() error {
	return errors.Join(a.store.Close(), a.auditor.Close(), a.logCloser.Close())
}

// cliContext tags actions started from a one-shot command
func cliContext(ctx context.Context) context.Context {
	return audit.WithRequest(ctx, audit.RequestInfo{Source: "cli"})
}

func joinArgs(args []string) string {
	return strings.Join(args, " ")
}
