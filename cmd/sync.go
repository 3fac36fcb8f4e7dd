package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var syncOnce bool

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Record daily price observations for tracked products",
	Long: `sync fetches fresh product data for every tracked product and appends a
price observation, at most one per product per UTC day. Without --once it
keeps running on the configured interval.`,
	Run: runSync,
}

func init() {
	syncCmd.Flags().BoolVar(&syncOnce, "once", false, "run a single sync pass and exit")
	rootCmd.AddCommand(syncCmd)
}

func runSync(_ *cobra.Command, _ []string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logrus.Info("[SYNC] Termination signal received, stopping...")
		cancel()
	}()

	defer StopApp()

	if syncOnce {
		if err := syncService.RunOnce(ctx); err != nil {
			logrus.Fatalf("[SYNC] Pass failed: %v", err)
		}
		return
	}

	if err := syncService.RunForever(ctx, cfg.Sync.Interval); err != nil && err != context.Canceled {
		logrus.Fatalf("[SYNC] Stopped with error: %v", err)
	}
}
