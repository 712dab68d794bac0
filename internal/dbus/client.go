package dbus

import (
	"context"
	"errors"
	"fmt"

	"github.com/godbus/dbus/v5"
)

// Client calls the daemon's control interface.
type Client struct {
	conn *dbus.Conn
	obj  dbus.BusObject
}

// NewClient connects to the session bus.
func NewClient() (*Client, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}
	return &Client{
		conn: conn,
		obj:  conn.Object(ControlBusName, ControlPath),
	}, nil
}

// Running reports whether a daemon owns the control bus name.
func (c *Client) Running(ctx context.Context) (bool, error) {
	var has bool
	err := c.conn.BusObject().CallWithContext(ctx, "org.freedesktop.DBus.NameHasOwner", 0, ControlBusName).Store(&has)
	if err != nil {
		return false, fmt.Errorf("failed to query bus name owner: %w", err)
	}
	return has, nil
}

// Start asks the daemon to show the bubble.
func (c *Client) Start(ctx context.Context) error {
	return c.call(ctx, "Start")
}

// Stop asks the daemon to hide the overlay.
func (c *Client) Stop(ctx context.Context) error {
	return c.call(ctx, "Stop")
}

// RefreshApps asks the daemon to rescan installed applications.
func (c *Client) RefreshApps(ctx context.Context) error {
	return c.call(ctx, "RefreshApps")
}

// Status fetches the daemon state.
func (c *Client) Status(ctx context.Context) (Status, error) {
	var st Status
	err := c.obj.CallWithContext(ctx, ControlInterface+".Status", 0).
		Store(&st.State, &st.Badge, &st.Notifications, &st.Connected, &st.Apps)
	if err != nil {
		return Status{}, fmt.Errorf("failed to get status: %w", err)
	}
	return st, nil
}

// Notify posts a notification to the desktop's notification server and
// returns the id it assigned.
func (c *Client) Notify(ctx context.Context, n *DBusNotification) (uint32, error) {
	actions := n.Actions
	if actions == nil {
		actions = []string{}
	}
	hints := n.Hints
	if hints == nil {
		hints = map[string]dbus.Variant{}
	}

	var id uint32
	obj := c.conn.Object(NotificationsInterface, "/org/freedesktop/Notifications")
	err := obj.CallWithContext(ctx, NotificationsInterface+".Notify", 0,
		n.AppName, n.ReplacesID, n.AppIcon, n.Summary, n.Body, actions, hints, n.ExpireTimeout,
	).Store(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to send notification: %w", err)
	}
	return id, nil
}

func (c *Client) call(ctx context.Context, method string) error {
	if err := c.obj.CallWithContext(ctx, ControlInterface+"."+method, 0).Err; err != nil {
		return fmt.Errorf("failed to call %s: %w", method, err)
	}
	return nil
}

// IsPermissionDenied reports whether err carries the permission-denied D-Bus error.
func IsPermissionDenied(err error) bool {
	var dbusErr dbus.Error
	if errors.As(err, &dbusErr) {
		return dbusErr.Name == ErrorPermissionDenied
	}
	var dbusErrPtr *dbus.Error
	if errors.As(err, &dbusErrPtr) {
		return dbusErrPtr.Name == ErrorPermissionDenied
	}
	return false
}
