package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/floatify/internal/store"
	"github.com/jmylchreest/floatify/internal/tui"
)

var pickCmd = &cobra.Command{
	Use:   "pick",
	Short: "Choose bubble and mirrored applications interactively",
	Long: `Launch the interactive app picker.

Key bindings:
  j/k, ↑/↓    Navigate list
  space, x    Toggle the app in the bubble
  m           Toggle mirroring the app's notifications
  n           Toggle the Notifications tab
  a           Show only chosen apps
  /           Search applications
  enter, w    Save
  ?           Show help
  q, esc      Quit (press twice to discard unsaved changes)`,
	Args: cobra.NoArgs,
	RunE: runPick,
}

func init() {
	rootCmd.AddCommand(pickCmd)
}

func runPick(cmd *cobra.Command, args []string) error {
	path := prefsPath()

	prefs, err := store.LoadPreferences(path)
	if err != nil {
		return err
	}

	registry, err := loadRegistry()
	if err != nil {
		return err
	}

	final, err := tui.Run(tui.Options{
		Config:  cfg,
		Apps:    registry.Installed(),
		Choices: tui.ChoicesFrom(prefs),
		Save: func(c tui.Choices) error {
			_, err := store.UpdatePreferences(path, c.Apply)
			return err
		},
	})
	if err != nil {
		return err
	}

	if final.Dirty() {
		fmt.Fprintln(cmd.ErrOrStderr(), "Unsaved changes discarded")
	}
	return nil
}
