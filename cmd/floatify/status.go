package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize/english"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/floatify/internal/dbus"
	"github.com/jmylchreest/floatify/internal/output"
)

var statusOpts struct {
	raw bool
}

// WaybarStatus represents the Waybar custom module JSON format.
type WaybarStatus struct {
	Text    string `json:"text"`
	Alt     string `json:"alt,omitempty"`
	Tooltip string `json:"tooltip,omitempty"`
	Class   string `json:"class,omitempty"`
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Output Waybar-compatible JSON status",
	Long: `Output the overlay status in Waybar's custom module JSON format.

This is designed to be used with Waybar's custom module:

  "custom/floatify": {
    "exec": "floatify status",
    "interval": 5,
    "return-type": "json",
    "on-click": "floatify start",
    "on-click-right": "floatify stop"
  }

The output includes:
  - text: The bubble badge (mirrored notification count, or the app count
    when nothing is mirrored; empty when hidden)
  - alt: Overlay state (hidden, bubble, menu, stopped)
  - tooltip: Notification and app counts plus feed connectivity
  - class: Same as alt, or "disconnected" when the feed is down

Use --raw to print the daemon status in the configured output format.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().BoolVar(&statusOpts.raw, "raw", false,
		"Print the raw daemon status instead of Waybar JSON")
}

func runStatus(cmd *cobra.Command, args []string) error {
	var st dbus.Status
	err := withClient(func(ctx context.Context, c *dbus.Client) error {
		var err error
		st, err = c.Status(ctx)
		return err
	})

	if statusOpts.raw {
		if err != nil {
			return err
		}
		return outputRawStatus(cmd.OutOrStdout(), st)
	}

	if err != nil {
		if !errors.Is(err, errDaemonNotRunning) {
			logger.Debug("failed to query daemon", "error", err)
		}
		return outputStatus(stoppedStatus(err))
	}
	return outputStatus(waybarStatus(st))
}

// waybarStatus creates a WaybarStatus from the daemon status.
func waybarStatus(st dbus.Status) WaybarStatus {
	class := st.State
	if st.State != "hidden" && !st.Connected {
		class = "disconnected"
	}

	return WaybarStatus{
		Text:    st.Badge,
		Alt:     st.State,
		Tooltip: buildTooltip(st),
		Class:   class,
	}
}

func stoppedStatus(err error) WaybarStatus {
	tooltip := "floatifyd is not running"
	if err != nil && !errors.Is(err, errDaemonNotRunning) {
		tooltip = "floatifyd unreachable: " + err.Error()
	}
	return WaybarStatus{Alt: "stopped", Tooltip: tooltip, Class: "stopped"}
}

// buildTooltip describes the daemon state in a few lines.
func buildTooltip(st dbus.Status) string {
	var lines []string

	switch st.State {
	case "hidden":
		lines = append(lines, "Bubble hidden")
	case "menu":
		lines = append(lines, "Menu open")
	default:
		lines = append(lines, "Bubble shown")
	}

	if st.Notifications == 0 {
		lines = append(lines, "No notifications")
	} else {
		lines = append(lines, english.Plural(int(st.Notifications), "notification", ""))
	}
	lines = append(lines, english.Plural(int(st.Apps), "app", "")+" in bubble")

	if !st.Connected {
		lines = append(lines, "Notification feed disconnected")
	}

	return strings.Join(lines, "\n")
}

// outputStatus writes the status as JSON.
func outputStatus(status WaybarStatus) error {
	encoder := json.NewEncoder(os.Stdout)
	return encoder.Encode(status)
}

func outputRawStatus(w io.Writer, st dbus.Status) error {
	format, err := outputFormat()
	if err != nil {
		return err
	}
	if format != output.FormatPlain {
		return output.Encode(w, format, st)
	}

	_, err = fmt.Fprintf(w, "state:         %s\nbadge:         %s\nnotifications: %d\nconnected:     %t\napps:          %d\n",
		st.State, st.Badge, st.Notifications, st.Connected, st.Apps)
	return err
}
