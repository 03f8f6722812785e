package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	httpAdapter "github.com/aretw0/canopy/internal/adapters/http"
	"github.com/aretw0/canopy/internal/cli"
	"github.com/aretw0/canopy/internal/presentation/tui"
	"github.com/aretw0/canopy/pkg/observability"
)

var serveCmd = &cobra.Command{
	Use:   "serve [file]",
	Short: "Start the HTTP driver API",
	Long:  `Loads the tree and serves a JSON API to spawn, tick and inspect agents, plus Prometheus metrics.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engineOpts, logger, err := engineOptions(cmd, args)
		if err != nil {
			return err
		}
		port, _ := cmd.Flags().GetString("port")
		agents, _ := cmd.Flags().GetInt("agents")
		interval, _ := cmd.Flags().GetDuration("interval")
		watch, _ := cmd.Flags().GetBool("watch")

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		metrics, err := observability.NewMetrics(reg)
		if err != nil {
			return err
		}
		engineOpts.Hooks = metrics.Hooks()

		engine, err := cli.CreateEngine(engineOpts, logger)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		for i := 1; i <= agents; i++ {
			if _, err := engine.Driver().Spawn(ctx, fmt.Sprintf("agent-%d", i)); err != nil {
				return err
			}
		}
		if interval > 0 {
			go func() {
				if err := engine.Driver().Drive(ctx, interval, nil); err != nil && !errors.Is(err, context.Canceled) {
					logger.Error("driver stopped", "error", err)
				}
			}()
		}
		if watch {
			go func() {
				if err := engine.Follow(ctx, nil); err != nil && !errors.Is(err, context.Canceled) {
					logger.Error("watch stopped", "error", err)
				}
			}()
		}

		srv := &http.Server{
			Addr:              ":" + port,
			Handler:           httpAdapter.NewHandler(engine, httpAdapter.WithLogger(logger), httpAdapter.WithMetrics(reg)),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		out := cmd.OutOrStdout()
		tui.PrintBanner(out, tui.NewStyler(out))
		go func() {
			fmt.Fprintf(out, "Starting Canopy Server on %s\n", srv.Addr)
			fmt.Fprintf(out, "Serving tree from: %s\n", engine.Source())
			serverErrors <- srv.ListenAndServe()
		}()

		// Channel to listen for interrupt or terminate signals.
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(shutdown)

		select {
		case err := <-serverErrors:
			return fmt.Errorf("server error: %w", err)

		case sig := <-shutdown:
			fmt.Fprintf(out, "\nStart shutdown... Signal: %v\n", sig)
			cancel()

			// Give outstanding requests a deadline for completion.
			shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
			defer stop()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				fmt.Fprintf(out, "Graceful shutdown did not complete in %v: %v\n", 5*time.Second, err)
				if err := srv.Close(); err != nil {
					return fmt.Errorf("error killing server: %w", err)
				}
			}
			fmt.Fprintln(out, "Canopy Server stopped gracefully")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	serveCmd.Flags().IntP("agents", "n", 0, "Agents to spawn at startup")
	serveCmd.Flags().Duration("interval", 0, "Tick all agents on this interval (0: only on request)")
	serveCmd.Flags().BoolP("watch", "w", false, "Reload the tree when its source changes")
}
