package main

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/floatify/internal/apps"
	"github.com/jmylchreest/floatify/internal/core"
	"github.com/jmylchreest/floatify/internal/model"
	"github.com/jmylchreest/floatify/internal/output"
	"github.com/jmylchreest/floatify/internal/store"
)

// appSet names one of the two id lists kept in the preferences file.
type appSet struct {
	noun string // used in messages
	get  func(*store.Preferences) []string
	set  func(*store.Preferences, []string)
}

var (
	bubbleSet = appSet{
		noun: "bubble",
		get:  func(p *store.Preferences) []string { return p.SelectedApps },
		set:  func(p *store.Preferences, ids []string) { p.SelectedApps = ids },
	}
	monitorSet = appSet{
		noun: "mirror",
		get:  func(p *store.Preferences) []string { return p.MonitoredApps },
		set:  func(p *store.Preferences, ids []string) { p.MonitoredApps = ids },
	}
)

var appsOpts struct {
	all      bool
	search   string
	template string
	index    bool
	force    bool
}

var appsCmd = &cobra.Command{
	Use:   "apps",
	Short: "Manage the applications shown in the bubble",
}

var appsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List applications",
	Long: `List the applications in the bubble and the mirror.

With --all every installed application is listed. The first column marks
bubble shortcuts with "b" and mirrored applications with "m".

Custom templates receive .Index and .App (fields ID, Name, Selected,
Monitored, Installed) plus the functions truncate and flags:

  floatify apps list --all --template '{{.App.ID}}'`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return listApps(cmd, appsOpts.all, appsOpts.search, nil)
	},
}

var appsAddCmd = &cobra.Command{
	Use:   "add <app-id>...",
	Short: "Add applications to the bubble",
	Long: `Add applications to the bubble's Apps tab. Ids are desktop entry ids
(for example org.gnome.Nautilus) or application names. A running floatifyd
picks up the change automatically.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSetAdd(cmd, bubbleSet, args)
	},
}

var appsRemoveCmd = &cobra.Command{
	Use:     "remove <app-id>...",
	Aliases: []string{"rm"},
	Short:   "Remove applications from the bubble",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSetRemove(cmd, bubbleSet, args)
	},
}

func init() {
	rootCmd.AddCommand(appsCmd)
	appsCmd.AddCommand(appsListCmd)
	appsCmd.AddCommand(appsAddCmd)
	appsCmd.AddCommand(appsRemoveCmd)

	appsListCmd.Flags().BoolVarP(&appsOpts.all, "all", "a", false,
		"List every installed application")
	appsListCmd.Flags().StringVarP(&appsOpts.search, "search", "s", "",
		"List installed applications whose name or id contains this")
	appsListCmd.Flags().StringVar(&appsOpts.template, "template", "",
		"Go template for plain output")
	appsListCmd.Flags().BoolVar(&appsOpts.index, "index", false,
		"Prefix rows with a 1-based index")

	for _, cmd := range []*cobra.Command{appsAddCmd, monitorAddCmd} {
		cmd.Flags().BoolVarP(&appsOpts.force, "force", "f", false,
			"Add ids that do not match an installed application")
	}
}

// loadRegistry indexes the installed applications.
func loadRegistry() (*apps.Registry, error) {
	registry := apps.NewRegistry(apps.WithLogger(logger))
	if err := registry.Reload(); err != nil {
		return nil, fmt.Errorf("failed to index applications: %w", err)
	}
	return registry, nil
}

// listApps prints the application rows that pass keep (all when nil).
func listApps(cmd *cobra.Command, all bool, search string, keep func(output.AppRow) bool) error {
	format, err := outputFormat()
	if err != nil {
		return err
	}

	prefs, err := store.LoadPreferences(prefsPath())
	if err != nil {
		return err
	}

	registry, err := loadRegistry()
	if err != nil {
		return err
	}

	rows := buildAppRows(registry, prefs, all, search)
	if keep != nil {
		rows = slices.DeleteFunc(rows, func(r output.AppRow) bool { return !keep(r) })
	}

	opts := output.DefaultOptions()
	opts.Template = appsOpts.template
	opts.ShowIndex = appsOpts.index
	return output.NewFormatter(format, opts).Format(cmd.OutOrStdout(), rows)
}

// appResolver is the registry surface the CLI needs.
type appResolver interface {
	Resolve(id string) (model.AppInfo, error)
	Installed() []model.AppInfo
}

// buildAppRows lists the chosen applications in preference order, or with
// all set, every installed application followed by chosen ids that are no
// longer installed. A search term lists only installed applications whose
// name or id matches.
func buildAppRows(registry appResolver, prefs *store.Preferences, all bool, search string) []output.AppRow {
	row := func(info model.AppInfo, installed bool) output.AppRow {
		return output.AppRow{
			ID:        info.ID,
			Name:      info.Name,
			Selected:  slices.Contains(prefs.SelectedApps, info.ID),
			Monitored: slices.Contains(prefs.MonitoredApps, info.ID),
			Installed: installed,
		}
	}

	var rows []output.AppRow
	seen := make(map[string]bool)

	if search != "" {
		for _, info := range core.SearchApps(registry.Installed(), search) {
			rows = append(rows, row(info, true))
		}
		return rows
	}

	if all {
		for _, info := range registry.Installed() {
			rows = append(rows, row(info, true))
			seen[info.ID] = true
		}
	}

	chosen := core.NormalizeIDs(append(slices.Clone(prefs.SelectedApps), prefs.MonitoredApps...))
	for _, id := range chosen {
		if seen[id] {
			continue
		}
		seen[id] = true
		if info, err := registry.Resolve(id); err == nil {
			info.ID = id
			rows = append(rows, row(info, true))
			continue
		}
		rows = append(rows, row(model.Placeholder(id), false))
	}

	return rows
}

// resolveIDs maps user input to registry ids. Unknown ids are an error
// unless force is set, in which case they are kept as given.
func resolveIDs(registry appResolver, args []string, force bool) ([]string, error) {
	ids := make([]string, 0, len(args))
	for _, arg := range args {
		info, err := registry.Resolve(arg)
		if err != nil {
			if !force {
				return nil, fmt.Errorf("%w (use --force to add it anyway)", err)
			}
			ids = append(ids, arg)
			continue
		}
		ids = append(ids, info.ID)
	}
	return core.NormalizeIDs(ids), nil
}

func runSetAdd(cmd *cobra.Command, set appSet, args []string) error {
	registry, err := loadRegistry()
	if err != nil {
		return err
	}

	ids, err := resolveIDs(registry, args, appsOpts.force)
	if err != nil {
		return err
	}

	var added []string
	_, err = store.UpdatePreferences(prefsPath(), func(p *store.Preferences) {
		current := set.get(p)
		for _, id := range ids {
			if !slices.Contains(current, id) {
				current = append(current, id)
				added = append(added, id)
			}
		}
		set.set(p, current)
	})
	if err != nil {
		return err
	}

	reportChange(cmd, "Added", set, added)
	return nil
}

func runSetRemove(cmd *cobra.Command, set appSet, args []string) error {
	var removed []string
	_, err := store.UpdatePreferences(prefsPath(), func(p *store.Preferences) {
		kept := make([]string, 0, len(set.get(p)))
		for _, id := range set.get(p) {
			if slices.Contains(args, id) {
				removed = append(removed, id)
				continue
			}
			kept = append(kept, id)
		}
		set.set(p, kept)
	})
	if err != nil {
		return err
	}

	reportChange(cmd, "Removed", set, removed)
	return nil
}

func reportChange(cmd *cobra.Command, verb string, set appSet, ids []string) {
	out := cmd.OutOrStdout()
	if len(ids) == 0 {
		fmt.Fprintf(out, "No changes to the %s\n", set.noun)
		return
	}
	for _, id := range ids {
		fmt.Fprintf(out, "%s %s (%s)\n", verb, id, set.noun)
	}
}
