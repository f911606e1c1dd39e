package cmd

import (
	"github.com/spf13/cobra"

	"github.com/oshokin/vlarm/internal/config"
	"github.com/oshokin/vlarm/internal/service/server"
)

var (
	// alarmsFile path where the alarm list is persisted.
	alarmsFile string

	serveCmd = &cobra.Command{
		Use:   "serve [listen-address]",
		Short: "Run the alarm server.",
		Long: `Starts the gRPC server that owns the alarm list, rings due alarms and speaks replies.

Only the port from ServerAddress config is used for listening (e.g., :50051).
Listen address can be provided as argument to override config (e.g., 0.0.0.0:9090).
Alarms are persisted to a JSON file and reloaded on start.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()

			var listenAddress string
			if len(args) > 0 {
				listenAddress = args[0]
			}

			return server.Run(ctx, &server.Options{
				ConfigPath:    configPath,
				ListenAddress: listenAddress,
				AlarmsFile:    alarmsFile,
			})
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	serveCmd.Flags().
		StringVarP(&alarmsFile, "alarms-file", "a", "", "path to persist alarms (default from config, then "+config.DefaultAlarmsFilename+")")
}
