package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zjrosen/sigtrack/internal/broadcast"
	"github.com/zjrosen/sigtrack/internal/presentation"
)

var (
	intentsLimit int
	intentsJSON  bool
)

var sendCmd = &cobra.Command{
	Use:   "send <name|action>",
	Short: "Fire a configured intent",
	Long: `Fire an intent through the platform broadcast, falling back to its URL.

The argument is a configured action name (case-insensitive) or a raw
intent action.

Examples:
  sigtrack send "ring off"
  sigtrack send com.tasker.SCREEN_OFF`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		action := args[0]
		if a, ok := cfg.Broadcast.Find(action); ok {
			action = a.Action
		}

		svc, err := openServices()
		if err != nil {
			return err
		}
		defer func() { _ = svc.Close() }()

		attempt := svc.dispatch.Send(cmd.Context(), action)
		if !attempt.Success {
			if attempt.Err != nil {
				return fmt.Errorf("could not send %s: %w", action, attempt.Err)
			}
			return fmt.Errorf("could not send %s", action)
		}

		how := "broadcast"
		if attempt.Path == broadcast.PathFallback {
			how = "opened " + attempt.URL
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Sent %s (%s)\n", action, how)
		return err
	},
}

var intentsCmd = &cobra.Command{
	Use:   "intents",
	Short: "List recently sent intents",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		svc, err := openServices()
		if err != nil {
			return err
		}
		defer func() { _ = svc.Close() }()

		attempts, err := svc.db.IntentLog().Recent(cmd.Context(), intentsLimit)
		if err != nil {
			return err
		}

		formatter := presentation.NewFormatter(cmd.OutOrStdout())
		if intentsJSON {
			return formatter.FormatJSON(presentation.FromAttempts(attempts))
		}
		return formatter.FormatIntentTable(presentation.FromAttempts(attempts))
	},
}

func init() {
	intentsCmd.Flags().IntVarP(&intentsLimit, "limit", "n", 20, "Show at most this many attempts")
	intentsCmd.Flags().BoolVar(&intentsJSON, "json", false, "Print JSON instead of text")
	rootCmd.AddCommand(sendCmd, intentsCmd)
}
