package main

import (
	"github.com/spf13/cobra"

	"github.com/jmylchreest/floatify/internal/output"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Manage which applications' notifications are mirrored",
	Long: `Manage the applications whose notifications appear in the bubble's
Notifications tab. Notifications from other applications are ignored.`,
}

var monitorListCmd = &cobra.Command{
	Use:   "list",
	Short: "List mirrored applications",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return listApps(cmd, false, "", func(r output.AppRow) bool { return r.Monitored })
	},
}

var monitorAddCmd = &cobra.Command{
	Use:   "add <app-id>...",
	Short: "Mirror notifications from applications",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSetAdd(cmd, monitorSet, args)
	},
}

var monitorRemoveCmd = &cobra.Command{
	Use:     "remove <app-id>...",
	Aliases: []string{"rm"},
	Short:   "Stop mirroring notifications from applications",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSetRemove(cmd, monitorSet, args)
	},
}

func init() {
	rootCmd.AddCommand(monitorCmd)
	monitorCmd.AddCommand(monitorListCmd)
	monitorCmd.AddCommand(monitorAddCmd)
	monitorCmd.AddCommand(monitorRemoveCmd)
}
