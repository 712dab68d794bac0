// Package dbus connects floatify to the session bus. A Monitor observes
// org.freedesktop.Notifications traffic to feed the notification mirror, and
// the ControlServer exposes Start/Stop/RefreshApps/Status to the floatify CLI.
package dbus
