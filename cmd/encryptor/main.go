package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version information - set at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. Without a subcommand it starts the terminal UI.
func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "encryptor",
		Short: "Turn messages into 4-letter codes and look them up again",
		Long: `encryptor stores each message under a 4-letter code derived from its first
four characters. Looking up a code returns the first message stored under it.

Run without arguments to start the interactive terminal UI.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd, configPath)
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default $CONFIG_PATH or config.yaml)")

	root.AddCommand(
		&cobra.Command{
			Use:   "tui",
			Short: "Start the interactive terminal UI",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runTUI(cmd, configPath)
			},
		},
		&cobra.Command{
			Use:   "serve",
			Short: "Serve the HTTP API and the management endpoints",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runServe(cmd, configPath)
			},
		},
		&cobra.Command{
			Use:   "encrypt <message>",
			Short: "Store a message and print its code",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runEncrypt(cmd, configPath, args)
			},
		},
		&cobra.Command{
			Use:   "decrypt <code>",
			Short: "Print the message stored under a code",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runDecrypt(cmd, configPath, args[0])
			},
		},
		&cobra.Command{
			Use:   "history",
			Short: "List the most recent codes",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runHistory(cmd, configPath)
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, _ []string) {
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Message Encryptor %s\n", Version)
				fmt.Fprintf(out, "Git Commit: %s\n", GitCommit)
				fmt.Fprintf(out, "Build Time: %s\n", BuildTime)
			},
		},
	)
	return root
}
