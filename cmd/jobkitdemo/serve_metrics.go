package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/cuemby/jobkit/pkg/log"
	"github.com/cuemby/jobkit/pkg/metrics"
	"github.com/spf13/cobra"
)

var serveMetricsCmd = &cobra.Command{
	Use:   "serve-metrics",
	Short: "Start an HTTP server exposing jobkit's Prometheus registry and health endpoints",
	Long: `serve-metrics is for operators who embed jobkit in a longer-running
process and want to scrape its arena and scheduler metrics. It does not run
any scenario itself, so /health and /ready report "not registered" for
arena and scheduler until something in the same process constructs one -
pkg/arena and pkg/sched update their own component health as they run.
Use it alongside the other subcommands, or your own integration, for
something to observe.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")

		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		mux.Handle("/health", metrics.HealthHandler())
		mux.Handle("/ready", metrics.ReadyHandler())
		mux.Handle("/live", metrics.LivenessHandler())

		srv := &http.Server{Addr: addr, Handler: mux}
		errCh := make(chan error, 1)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				errCh <- err
			}
		}()

		logger := log.WithComponent("jobkitdemo.serve-metrics").Logger()
		logger.Info().Str("addr", addr).Msg("serving metrics and health endpoints")
		fmt.Printf("Metrics: http://%s/metrics\n", addr)
		fmt.Printf("Health:  http://%s/health\n", addr)
		fmt.Printf("Ready:   http://%s/ready\n", addr)
		fmt.Printf("Live:    http://%s/live\n", addr)
		fmt.Println("Press Ctrl+C to stop.")

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

		select {
		case <-sigCh:
			fmt.Println("\nShutting down...")
		case err := <-errCh:
			return fmt.Errorf("metrics server error: %w", err)
		}
		return srv.Close()
	},
}

func init() {
	serveMetricsCmd.Flags().String("addr", "127.0.0.1:9090", "Address to serve metrics and health endpoints on")
}
