package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/vlarm/internal/config"
	"github.com/oshokin/vlarm/internal/logger"
	"github.com/oshokin/vlarm/internal/service/client"
	"github.com/oshokin/vlarm/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// serverAddress overrides the server address from config for client commands.
	serverAddress string

	// rootCmd is the vlarm entry point; every feature is a subcommand.
	rootCmd = &cobra.Command{
		Use:   "vlarm",
		Short: "Voice-driven alarm assistant.",
		Long: `vlarm schedules spoken reminders from plain English.

Run "vlarm serve" to start the server that keeps the alarm list, rings alarms and
speaks replies. The other subcommands talk to it over gRPC, except "parse",
which interprets an utterance locally without scheduling anything.`,
		SilenceUsage: true,
	}
)

// Execute runs the vlarm CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	err := rootCmd.Execute()

	logger.Sync()

	if err != nil {
		os.Exit(1)
	}
}

// signalContext is cancelled on SIGTERM or SIGINT.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
}

func clientOptions() *client.Options {
	return &client.Options{
		ConfigPath:    configPath,
		ServerAddress: serverAddress,
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.PersistentFlags().
		StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.PersistentFlags().
		StringVarP(&serverAddress, "server", "s", "", "server address, overrides the configuration file")

	rootCmd.AddCommand(serveCmd, sayCmd, parseCmd, listCmd, editCmd, deleteCmd, snoozeCmd, dismissCmd)
}
