package cmd

import (
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/oshokin/vlarm/internal/service/client"
)

var (
	sayCmd = &cobra.Command{
		Use:   "say <utterance...>",
		Short: "Schedule an alarm from a spoken-style sentence.",
		Long: `Sends the utterance to the server as a final transcript, exactly as if it had been heard.

Examples:
  vlarm say remind me in 20 minutes to finish my homework
  vlarm say "wake me up at 6:30 am"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()

			return client.Say(ctx, clientOptions(), strings.Join(args, " "), cmd.OutOrStdout())
		},
	}

	parseCmd = &cobra.Command{
		Use:   "parse <utterance...>",
		Short: "Interpret an utterance locally without scheduling it.",
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			client.Parse(cmd.OutOrStdout(), strings.Join(args, " "), time.Now())
		},
	}
)
