package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/zjrosen/sigtrack/internal/api"
	"github.com/zjrosen/sigtrack/internal/log"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP automation API",
	Long: `Serve saved signals and intents over HTTP so other tools on the device
can commit and fire without the UI.

Endpoints:
  GET    /signals?limit=N
  POST   /signals            {"text": "...", "antidelay": 5}
  GET    /signals/{guid}
  DELETE /signals/{guid}
  POST   /intents/{action}   -> {"success": true}
  GET    /time
  GET    /health

Example:
  sigtrack serve                      # listen on server.addr from config
  sigtrack serve --addr 127.0.0.1:9000`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Address to listen on (overrides config)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	svc, err := openServices()
	if err != nil {
		return err
	}
	defer func() { _ = svc.Close() }()

	addr := serveAddr
	if addr == "" {
		addr = cfg.Server.Addr
	}

	server, err := api.NewServer(api.ServerConfig{
		Addr: addr,
		Handler: api.HandlerConfig{
			Store:      svc.signals,
			Dispatcher: svc.dispatch,
			Broadcast:  cfg.Broadcast,
			Tracer:     svc.tracer.Tracer(),
		},
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "sigtrack API listening on %s\n", server.Addr())
	_, _ = fmt.Fprintln(out, "Press Ctrl+C to stop")

	select {
	case sig := <-sigCh:
		_, _ = fmt.Fprintf(out, "\nReceived %s, shutting down...\n", sig)
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Stop(shutdownCtx); err != nil {
		log.Error(log.CatAPI, "Error stopping API server", "error", err)
	}
	return nil
}
