package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zjrosen/sigtrack/internal/presentation"
	"github.com/zjrosen/sigtrack/internal/signals"
)

var (
	savedLimit int
	savedJSON  bool
	savedWidth int
)

var savedCmd = &cobra.Command{
	Use:   "saved",
	Short: "List saved signals, newest first",
	Long: `List saved signals, newest first.

The timestamp column is the backdated time for signals saved with an
antidelay, followed by the antidelay itself.

Examples:
  # Last 20 signals
  sigtrack saved --limit 20

  # Everything as JSON
  sigtrack saved --json | jq '.[].text'`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if savedLimit < 0 {
			return fmt.Errorf("--limit must be 0 or more, got %d", savedLimit)
		}
		svc, err := openServices()
		if err != nil {
			return err
		}
		defer func() { _ = svc.Close() }()

		list, err := svc.signals.List(cmd.Context(), savedLimit)
		if err != nil {
			return err
		}

		formatter := presentation.NewFormatter(cmd.OutOrStdout()).WithWidth(savedWidth)
		if savedJSON {
			return formatter.FormatJSON(presentation.FromSignals(list))
		}
		return formatter.FormatSignalTable(presentation.FromSignals(list))
	},
}

var savedShowCmd = &cobra.Command{
	Use:   "show <guid>",
	Short: "Show one saved signal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openServices()
		if err != nil {
			return err
		}
		defer func() { _ = svc.Close() }()

		sig, err := svc.signals.Get(cmd.Context(), args[0])
		if err != nil {
			return notFoundHint(err)
		}

		formatter := presentation.NewFormatter(cmd.OutOrStdout())
		if savedJSON {
			return formatter.FormatJSON(presentation.FromSignal(*sig))
		}
		return formatter.FormatSignal(presentation.FromSignal(*sig))
	},
}

var savedRmCmd = &cobra.Command{
	Use:     "rm <guid>",
	Aliases: []string{"delete"},
	Short:   "Delete a saved signal",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openServices()
		if err != nil {
			return err
		}
		defer func() { _ = svc.Close() }()

		if err := svc.signals.Delete(cmd.Context(), args[0]); err != nil {
			return notFoundHint(err)
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
		return err
	},
}

func notFoundHint(err error) error {
	if signals.IsNotFound(err) {
		return fmt.Errorf("%w (run 'sigtrack saved' to list GUIDs)", err)
	}
	return err
}

func init() {
	savedCmd.PersistentFlags().BoolVar(&savedJSON, "json", false, "Print JSON instead of text")
	savedCmd.Flags().IntVarP(&savedLimit, "limit", "n", 0, "Show at most this many signals (0 = all)")
	savedCmd.Flags().IntVarP(&savedWidth, "width", "w", 100, "Line width for the text listing")
	savedCmd.AddCommand(savedShowCmd, savedRmCmd)
	rootCmd.AddCommand(savedCmd)
}
