package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zjrosen/sigtrack/internal/antidelay"
	"github.com/zjrosen/sigtrack/internal/config"
	"github.com/zjrosen/sigtrack/internal/log"
)

var commitAntidelay string

var commitCmd = &cobra.Command{
	Use:   "commit [text...]",
	Short: "Save a signal without opening the UI",
	Long: `Save a signal without opening the UI.

The text is the arguments joined by spaces, or standard input when the
only argument is "-". With --antidelay the saved timestamp is moved back
by that many seconds and the value becomes the new prompt default.

Examples:
  sigtrack commit 101,202,303
  sigtrack commit --antidelay 5 "ring at the gate"
  termux-clipboard-get | sigtrack commit -`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCommit,
}

func runCommit(cmd *cobra.Command, args []string) error {
	text := strings.Join(args, " ")
	if len(args) == 1 && args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
		text = strings.TrimRight(string(data), "\n")
	}

	var delay *int
	if cmd.Flags().Changed("antidelay") {
		seconds, err := antidelay.ParseDelay(commitAntidelay)
		if err != nil {
			return err
		}
		delay = &seconds
	}

	svc, err := openServices()
	if err != nil {
		return err
	}
	defer func() { _ = svc.Close() }()

	sig, err := svc.signals.Save(cmd.Context(), text, delay)
	if err != nil {
		return err
	}

	if delay != nil {
		if err := config.SaveAntidelay(cfgPath, *delay); err != nil {
			log.Warn(log.CatConfig, "could not remember antidelay", "error", err)
		}
	}

	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Saved %s at %s\n", sig.GUID, sig.Label())
	return err
}

func init() {
	commitCmd.Flags().StringVarP(&commitAntidelay, "antidelay", "a", "",
		"Backdate the signal by this many whole seconds")
	rootCmd.AddCommand(commitCmd)
}
