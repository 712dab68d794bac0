// Package main is the entry point for the floatifyd overlay daemon.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/diamondburned/gotk4-adwaita/pkg/adw"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/jmylchreest/floatify/internal/apps"
	"github.com/jmylchreest/floatify/internal/bus"
	"github.com/jmylchreest/floatify/internal/config"
	"github.com/jmylchreest/floatify/internal/core"
	"github.com/jmylchreest/floatify/internal/daemon"
	"github.com/jmylchreest/floatify/internal/dbus"
	"github.com/jmylchreest/floatify/internal/display"
	"github.com/jmylchreest/floatify/internal/model"
	"github.com/jmylchreest/floatify/internal/overlay"
	"github.com/jmylchreest/floatify/internal/store"
	"github.com/jmylchreest/floatify/internal/theme"
)

const appID = "io.github.jmylchreest.floatifyd"

var (
	// Build-time variables
	version = "dev"
)

func main() {
	configPath := flag.String("config", "", "Path to the daemon config file (default: $XDG_CONFIG_HOME/floatify/floatifyd.toml)")
	debug := flag.Bool("debug", false, "Enable debug logging")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("floatifyd version", version)
		os.Exit(0)
	}

	cfg, err := config.LoadDaemonConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "floatifyd: %v\n", err)
		os.Exit(1)
	}

	level := new(slog.LevelVar)
	level.Set(cfg.LogLevel())
	if *debug {
		level.Set(slog.LevelDebug)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	os.Exit(run(cfg, *configPath, level, *debug, logger))
}

// components holds everything built on activation so shutdown can release it.
type components struct {
	prefs        *store.Prefs
	prefsWatcher *store.PrefsWatcher
	mirror       *store.Mirror
	feed         *daemon.FeedSupervisor
	poller       *daemon.CapabilityPoller
	themeLoader  *theme.Loader
	config       *daemon.ConfigWatcher
	server       *dbus.ControlServer
	controller   *overlay.Controller
}

// shutdown ends the session without clearing the persisted active flag and
// releases every component. It must run on the GTK main loop.
func (c *components) shutdown(logger *slog.Logger) {
	if c.controller != nil {
		c.controller.Shutdown()
	}
	if c.server != nil {
		if err := c.server.Stop(); err != nil {
			logger.Warn("failed to stop control server", "error", err)
		}
	}
	if c.config != nil {
		c.config.Stop()
	}
	if c.poller != nil {
		c.poller.Stop()
	}
	if c.themeLoader != nil {
		c.themeLoader.StopHotReload()
	}
	if c.prefsWatcher != nil {
		if err := c.prefsWatcher.Stop(); err != nil {
			logger.Warn("failed to stop prefs watcher", "error", err)
		}
	}
	if c.feed != nil {
		if err := c.feed.Close(); err != nil {
			logger.Warn("feed closed with error", "error", err)
		}
	}
	if c.mirror != nil {
		c.mirror.Close()
	}
	if c.prefs != nil {
		if err := c.prefs.Close(); err != nil {
			logger.Warn("failed to flush preferences", "error", err)
		}
	}
}

func run(cfg *config.DaemonConfig, configPath string, level *slog.LevelVar, debugFlag bool, logger *slog.Logger) int {
	logger.Info("starting floatifyd", "version", version)

	app := adw.NewApplication(appID, 0)
	loop := display.Loop{}

	var (
		comp    components
		running atomic.Bool
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received signal, shutting down", "signal", sig)
		cancel()
		loop.Post(func() {
			if running.Load() {
				comp.shutdown(logger)
				running.Store(false)
			}
			app.Quit()
		})
	}()

	app.ConnectActivate(func() {
		if running.Load() {
			logger.Warn("application already running")
			return
		}
		running.Store(true)

		if err := activate(ctx, app, loop, cfg, configPath, level, debugFlag, &comp, logger); err != nil {
			logger.Error("failed to start floatifyd", "error", err)
			comp.shutdown(logger)
			running.Store(false)
			app.Quit()
			return
		}

		// GTK applications quit when their last window closes, and the
		// bubble comes and goes, so hold the application open.
		keepAlive := gtk.NewWindow()
		keepAlive.SetApplication(&app.Application)
		keepAlive.SetDefaultSize(1, 1)
		keepAlive.SetDecorated(false)
		keepAlive.SetVisible(false)
	})

	app.ConnectShutdown(func() {
		logger.Info("application shutting down")
		if running.Load() {
			comp.shutdown(logger)
			running.Store(false)
		}
	})

	status := app.Run(os.Args[:1])
	if status != 0 {
		logger.Error("application exited with error", "status", status)
		return status
	}

	logger.Info("floatifyd stopped")
	return 0
}

// activate builds and wires all components on the GTK main loop.
func activate(
	ctx context.Context,
	app *adw.Application,
	loop display.Loop,
	cfg *config.DaemonConfig,
	configPath string,
	level *slog.LevelVar,
	debugFlag bool,
	comp *components,
	logger *slog.Logger,
) error {
	prefs, err := store.OpenPrefs(store.PrefsPath(), logger)
	if err != nil {
		return fmt.Errorf("failed to open preferences: %w", err)
	}
	comp.prefs = prefs

	registry := apps.NewRegistry(
		apps.WithLaunchCommand(cfg.Apps.LaunchCommand),
		apps.WithLogger(logger),
	)

	events := bus.New(loop, logger)
	mirror := store.NewMirror(
		core.NewPolicy(cfg.Feed.OwnApp, prefs.MonitoredApps()),
		store.WithResolver(registry),
		store.WithPublisher(events),
		store.WithLogger(logger),
	)
	comp.mirror = mirror

	feed := daemon.NewFeedSupervisor(
		func() daemon.FeedMonitor { return dbus.NewMonitor(logger) },
		mirror,
		cfg.Feed.ReconnectMin.Duration(),
		cfg.Feed.ReconnectMax.Duration(),
		logger,
	)
	comp.feed = feed

	caps := daemon.NewCapabilities(display.OverlaySupported(), mirror)

	themeLoader := theme.NewLoader(loop, logger)
	themeLoader.LoadTheme(cfg.Theme.Name)
	if err := themeLoader.Apply(nil); err != nil {
		logger.Warn("failed to apply theme", "error", err)
	}
	if err := themeLoader.StartHotReload(ctx); err != nil {
		logger.Warn("failed to watch theme", "error", err)
	}
	comp.themeLoader = themeLoader

	surface := display.NewSurface(&app.Application, cfg, logger)
	settings := display.NewSettingsOpener(cfg.Feed.SettingsCommand, logger)

	controller := overlay.New(overlay.Options{
		Surface:         surface,
		Prefs:           prefs,
		Registry:        registry,
		Mirror:          mirror,
		Capabilities:    caps,
		Feed:            feed,
		Bus:             events,
		Settings:        settings,
		DefaultPosition: model.Point{X: cfg.Bubble.DefaultX, Y: cfg.Bubble.DefaultY},
		Logger:          logger,
	})
	surface.Bind(controller)
	comp.controller = controller

	notifier := newNotifier(cfg.Feed.OwnApp, logger)

	service := daemon.NewService(loop, controller, registry, mirror, prefs, notifier, logger)
	server := dbus.NewControlServer(service, daemon.ClassifyError, logger)
	if err := server.Start(); err != nil {
		if errors.Is(err, dbus.ErrAlreadyRunning) {
			return fmt.Errorf("another floatifyd owns %s: %w", dbus.ControlBusName, err)
		}
		return fmt.Errorf("failed to start control service: %w", err)
	}
	comp.server = server

	controller.OnStateChange(func(s overlay.State) {
		if err := server.EmitStateChanged(s.String()); err != nil {
			logger.Debug("failed to emit state change", "error", err)
		}
	})
	controller.OnBadgeChange(func(b core.Badge) {
		if err := server.EmitBadgeChanged(b.Text()); err != nil {
			logger.Debug("failed to emit badge change", "error", err)
		}
	})

	poller := daemon.NewCapabilityPoller(caps, loop, display.OverlaySupported, cfg.Capability.PollInterval.Duration(), logger)
	poller.SetRevokedCallback(func() {
		if controller.State() != overlay.Hidden {
			notifier.NotifyOverlayLost()
		}
		controller.PermissionRevoked()
	})
	if err := poller.Start(ctx); err != nil {
		logger.Warn("failed to start capability poller", "error", err)
	}
	comp.poller = poller

	prefsWatcher, err := store.NewPrefsWatcher(prefs, func(p *store.Preferences) {
		loop.Post(func() {
			mirror.SetPolicy(core.NewPolicy(cfg.Feed.OwnApp, p.MonitoredApps))
			controller.RefreshApps()
		})
	}, logger)
	if err != nil {
		logger.Warn("failed to create prefs watcher", "error", err)
	} else if err := prefsWatcher.Start(); err != nil {
		logger.Warn("failed to start prefs watcher", "error", err)
	} else {
		comp.prefsWatcher = prefsWatcher
	}

	configWatcher := daemon.NewConfigWatcher(configPath, logger)
	configWatcher.SetReloadCallback(func(next *config.DaemonConfig) {
		loop.Post(func() {
			if !debugFlag {
				level.Set(next.LogLevel())
			}
			surface.UpdateConfig(next)
			settings.SetCommand(next.Feed.SettingsCommand)
			if next.Feed.OwnApp != cfg.Feed.OwnApp {
				mirror.SetPolicy(core.NewPolicy(next.Feed.OwnApp, prefs.MonitoredApps()))
			}
			if next.Theme.Name != cfg.Theme.Name {
				themeLoader.LoadTheme(next.Theme.Name)
				if err := themeLoader.StartHotReload(ctx); err != nil {
					logger.Warn("failed to watch theme", "error", err)
				}
			}
			cfg = next
		})
	})
	configWatcher.SetErrorCallback(notifier.NotifyConfigError)
	configWatcher.Start(ctx, cfg)
	comp.config = configWatcher

	// Index applications off the main loop; the menu falls back to
	// placeholders until this finishes.
	go func() {
		start := time.Now()
		if err := registry.Reload(); err != nil {
			logger.Warn("failed to index applications", "error", err)
		}
		logger.Debug("applications indexed", "count", len(registry.Installed()), "took", time.Since(start))
		events.NotifyAppsChanged()
	}()

	logger.Info("floatifyd ready", "bus_name", dbus.ControlBusName)

	// Restore the bubble from the last session
	if prefs.Active() {
		if err := controller.Start(); err != nil {
			logger.Warn("failed to restore bubble", "error", err)
			if overlay.IsPermissionDenied(err) {
				notifier.NotifyPermissionDenied()
			} else {
				notifier.NotifyBubbleFailed(err)
			}
		}
	}

	return nil
}

// newNotifier returns a notifier that posts through the session's
// notification server. Notices go out as ownApp, which the mirror filters.
func newNotifier(ownApp string, logger *slog.Logger) *daemon.Notifier {
	client, err := dbus.NewClient()
	if err != nil {
		logger.Warn("self notifications disabled", "error", err)
		n := daemon.NewNotifier(ownApp, nil, logger)
		n.SetEnabled(false)
		return n
	}

	return daemon.NewNotifier(ownApp, func(n *dbus.DBusNotification) error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_, err := client.Notify(ctx, n)
		return err
	}, logger)
}
