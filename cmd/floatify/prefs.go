package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/floatify/internal/output"
	"github.com/jmylchreest/floatify/internal/store"
)

var prefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "Show the stored preferences",
	Long: `Show the preferences shared with floatifyd: the bubble and mirror
app lists, whether the bubble is active and where it was last placed.`,
	Args: cobra.NoArgs,
	RunE: runPrefsShow,
}

var prefsNotificationsCmd = &cobra.Command{
	Use:   "notifications <on|off>",
	Short: "Show or hide the Notifications tab content",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		show, err := parseToggle(args[0])
		if err != nil {
			return err
		}
		if _, err := store.UpdatePreferences(prefsPath(), func(p *store.Preferences) {
			p.ShowNotifications = show
		}); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Notifications tab: %s\n", onOff(show))
		return nil
	},
}

var prefsResetPositionCmd = &cobra.Command{
	Use:   "reset-position",
	Short: "Forget the saved bubble position",
	Long: `Forget where the bubble was last dropped. The next time floatifyd
shows the bubble it uses the default position from floatifyd.toml.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := store.UpdatePreferences(prefsPath(), func(p *store.Preferences) {
			p.BubbleX = nil
			p.BubbleY = nil
		}); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Bubble position reset")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(prefsCmd)
	prefsCmd.AddCommand(prefsNotificationsCmd)
	prefsCmd.AddCommand(prefsResetPositionCmd)
}

func runPrefsShow(cmd *cobra.Command, args []string) error {
	format, err := outputFormat()
	if err != nil {
		return err
	}

	prefs, err := store.LoadPreferences(prefsPath())
	if err != nil {
		return err
	}

	if format != output.FormatPlain {
		return output.Encode(cmd.OutOrStdout(), format, prefs)
	}
	return writePrefs(cmd.OutOrStdout(), prefs)
}

func writePrefs(w io.Writer, p *store.Preferences) error {
	position := "default"
	if pt, ok := p.Position(); ok {
		position = fmt.Sprintf("%d,%d", pt.X, pt.Y)
	}

	_, err := fmt.Fprintf(w, "bubble active:      %s\nbubble position:    %s\nnotifications tab:  %s\nbubble apps:        %s\nmirrored apps:      %s\n",
		onOff(p.BubbleActive),
		position,
		onOff(p.ShowNotifications),
		listOrNone(p.SelectedApps),
		listOrNone(p.MonitoredApps),
	)
	return err
}

func parseToggle(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "show", "yes":
		return true, nil
	case "off", "hide", "no":
		return false, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid value %q, use on or off", s)
	}
	return b, nil
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func listOrNone(ids []string) string {
	if len(ids) == 0 {
		return "(none)"
	}
	return strings.Join(ids, ", ")
}
