// Command jobkitdemo exercises pkg/arena and pkg/sched end to end. It is a
// demonstration and integration-test harness, not a deliverable library
// surface - the libraries have no CLI or wire protocol of their own.
package main

import (
	"fmt"
	"os"

	"github.com/cuemby/jobkit/pkg/log"
	"github.com/spf13/cobra"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "jobkitdemo",
	Short: "jobkitdemo - scenario runner for the jobkit arena and scheduler",
	Long: `jobkitdemo drives pkg/arena.Allocator and pkg/sched.Scheduler through
the end-to-end scenarios they're built for: fan-out/fan-in job graphs,
dependency and parent cancellation, waiter-list overflow, cooperative
waiting, and marker-based arena reclamation.`,
	Version: Version,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"jobkitdemo version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Output logs in JSON format")

	cobra.OnInitialize(initLogging)

	rootCmd.AddCommand(fanoutCmd)
	rootCmd.AddCommand(cancelDepCmd)
	rootCmd.AddCommand(cancelParentCmd)
	rootCmd.AddCommand(waitersCmd)
	rootCmd.AddCommand(cooperativeWaitCmd)
	rootCmd.AddCommand(arenaCmd)
	rootCmd.AddCommand(serveMetricsCmd)
}

func initLogging() {
	logLevel, _ := rootCmd.PersistentFlags().GetString("log-level")
	logJSON, _ := rootCmd.PersistentFlags().GetBool("log-json")

	log.Init(log.Config{
		Level:      log.Level(logLevel),
		JSONOutput: logJSON,
	})
}
