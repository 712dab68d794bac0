package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/floatify/internal/dbus"
)

var controlOpts struct {
	timeout time.Duration
}

var errDaemonNotRunning = errors.New("floatifyd is not running")

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Show the bubble",
	Long: `Ask floatifyd to show the bubble. The bubble stays active across
restarts of the daemon until "floatify stop" is run.

Fails if the compositor does not allow overlay surfaces.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(func(ctx context.Context, c *dbus.Client) error {
			if err := c.Start(ctx); err != nil {
				if dbus.IsPermissionDenied(err) {
					return errors.New("overlay permission denied: the compositor does not support layer-shell overlays")
				}
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Bubble started")
			return nil
		})
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Hide the bubble and menu",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(func(ctx context.Context, c *dbus.Client) error {
			if err := c.Stop(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Bubble stopped")
			return nil
		})
	},
}

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Rescan installed applications",
	Long: `Ask floatifyd to rescan desktop entries, for example after
installing an application.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(func(ctx context.Context, c *dbus.Client) error {
			return c.RefreshApps(ctx)
		})
	},
}

func init() {
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(refreshCmd)

	for _, cmd := range []*cobra.Command{startCmd, stopCmd, refreshCmd, statusCmd} {
		cmd.Flags().DurationVar(&controlOpts.timeout, "timeout", 5*time.Second,
			"How long to wait for floatifyd")
	}
}

// withClient connects to the daemon, failing early when nothing owns the
// control bus name.
func withClient(fn func(ctx context.Context, c *dbus.Client) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), controlOpts.timeout)
	defer cancel()

	client, err := dbus.NewClient()
	if err != nil {
		return err
	}

	running, err := client.Running(ctx)
	if err != nil {
		return err
	}
	if !running {
		return errDaemonNotRunning
	}

	return fn(ctx, client)
}
