package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/floatify/internal/output"
	"github.com/jmylchreest/floatify/internal/theme"
)

var themesCmd = &cobra.Command{
	Use:   "themes",
	Short: "List available overlay themes",
	Long: `List the bundled themes and any CSS themes in
~/.config/floatify/themes. A user theme with a bundled name overrides the
bundled one. Select a theme with [theme] name in floatifyd.toml.`,
	Args: cobra.NoArgs,
	RunE: runThemes,
}

var themesInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the user themes directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := theme.CreateThemesDir(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), theme.ThemesDir())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(themesCmd)
	themesCmd.AddCommand(themesInitCmd)
}

func runThemes(cmd *cobra.Command, args []string) error {
	format, err := outputFormat()
	if err != nil {
		return err
	}

	themes, err := theme.ListAvailableThemes(theme.ThemesDir())
	if err != nil {
		return err
	}

	if format != output.FormatPlain {
		return output.Encode(cmd.OutOrStdout(), format, themes)
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	for _, t := range themes {
		source := "bundled"
		switch {
		case t.IsBundled && t.Path != "":
			source = "bundled, overridden by " + t.Path
		case !t.IsBundled:
			source = t.Path
		}
		name := t.Name
		if t.IsDefault {
			name += " (default)"
		}
		fmt.Fprintf(tw, "%s\t%s\n", name, source)
	}
	return tw.Flush()
}
