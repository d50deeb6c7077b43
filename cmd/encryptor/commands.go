package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/hfi/message-encryptor/internal/server"
	"github.com/hfi/message-encryptor/internal/tui"
	"github.com/hfi/message-encryptor/internal/vault"
	"github.com/hfi/message-encryptor/internal/web"
)

func runTUI(cmd *cobra.Command, configPath string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, configPath, interactive)
	if err != nil {
		return err
	}
	defer a.Close()

	return tui.Run(ctx, a.session, a.cfg.TUI)
}

func runServe(cmd *cobra.Command, configPath string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, configPath, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	api := web.New(a.cfg.Web, a.session, a.logger)

	var mgmt *server.Server
	if a.cfg.Management.Enabled {
		mgmt = server.New(&a.cfg.Management, a.logger)
		mgmt.RegisterHealthCheck("storage", server.PingCheck(a.session))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(api.Start)
	if mgmt != nil {
		g.Go(mgmt.Start)
	}
	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info().Msg("shutting down")

		timeout := a.cfg.Web.ShutdownTimeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		err := api.Stop(shutdownCtx)
		if mgmt != nil {
			err = errors.Join(err, mgmt.Stop(shutdownCtx))
		}
		return err
	})

	return g.Wait()
}

func runEncrypt(cmd *cobra.Command, configPath string, args []string) error {
	ctx := cliContext(cmd.Context())

	a, err := newApp(ctx, configPath, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	code, err := a.session.EncryptText(ctx, joinArgs(args))
	if vault.IsSkipped(err) {
		fmt.Fprintf(cmd.ErrOrStderr(), "nothing to encrypt: %v\n", err)
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), code)
	return nil
}

func runDecrypt(cmd *cobra.Command, configPath, code string) error {
	ctx := cliContext(cmd.Context())

	a, err := newApp(ctx, configPath, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	text, _, err := a.session.DecryptCode(ctx, code)
	if vault.IsSkipped(err) {
		fmt.Fprintf(cmd.ErrOrStderr(), "nothing to look up: %v\n", err)
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), text)
	return nil
}

func runHistory(cmd *cobra.Command, configPath string) error {
	a, err := newApp(cmd.Context(), configPath, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	history := a.session.History()
	if len(history) == 0 {
		fmt.Fprintln(out, "No messages stored yet")
		return nil
	}
	for _, h := range history {
		fmt.Fprintf(out, "%s  %s\n", h.Code, h.Time().Local().Format(a.cfg.TUI.TimeFormat))
	}
	return nil
}
