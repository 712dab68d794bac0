package dbus

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
)

const (
	// ControlInterface is the floatify control interface name.
	ControlInterface = "io.github.jmylchreest.Floatify"
	// ControlPath is the control object path.
	ControlPath = "/io/github/jmylchreest/Floatify"
	// ControlBusName is the bus name claimed by the daemon.
	ControlBusName = ControlInterface

	// ErrorPermissionDenied is the D-Bus error name returned when the overlay cannot be shown.
	ErrorPermissionDenied = ControlInterface + ".Error.PermissionDenied"
	// ErrorFailed is the D-Bus error name for any other failure.
	ErrorFailed = ControlInterface + ".Error.Failed"
)

// ErrAlreadyRunning is returned when another daemon owns the control bus name.
var ErrAlreadyRunning = errors.New("floatify daemon already running")

// Status is the daemon state reported over the control interface.
type Status struct {
	State         string `json:"state"`
	Badge         string `json:"badge"`
	Notifications uint32 `json:"notifications"`
	Connected     bool   `json:"connected"`
	Apps          uint32 `json:"apps"`
}

// Controls is implemented by the daemon. Calls arrive on D-Bus goroutines.
type Controls interface {
	StartOverlay() error
	StopOverlay() error
	RefreshApps() error
	Status() Status
}

// ErrorClassifier maps a control error to its D-Bus error name.
type ErrorClassifier func(err error) string

// ControlServer exports the floatify control interface on the session bus.
type ControlServer struct {
	conn     *dbus.Conn
	logger   *slog.Logger
	controls Controls
	classify ErrorClassifier

	mu      sync.Mutex
	running bool
}

// NewControlServer creates a new ControlServer.
func NewControlServer(controls Controls, classify ErrorClassifier, logger *slog.Logger) *ControlServer {
	if logger == nil {
		logger = slog.Default()
	}
	if classify == nil {
		classify = func(error) string { return ErrorFailed }
	}
	return &ControlServer{
		logger:   logger,
		controls: controls,
		classify: classify,
	}
}

// Start connects to the session bus and exports the control service.
func (s *ControlServer) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return fmt.Errorf("control server already running")
	}

	conn, err := dbus.SessionBus()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}
	s.conn = conn

	methods := &controlMethods{server: s}
	if err := conn.Export(methods, ControlPath, ControlInterface); err != nil {
		return fmt.Errorf("failed to export object: %w", err)
	}

	node := &introspect.Node{
		Name: ControlPath,
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			{
				Name:    ControlInterface,
				Methods: controlMethodData(),
				Signals: controlSignalData(),
			},
		},
	}
	if err := conn.Export(introspect.NewIntrospectable(node), ControlPath,
		"org.freedesktop.DBus.Introspectable"); err != nil {
		return fmt.Errorf("failed to export introspectable: %w", err)
	}

	reply, err := conn.RequestName(ControlBusName, dbus.NameFlagDoNotQueue)
	if err != nil {
		return fmt.Errorf("failed to request bus name: %w", err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		_ = conn.Export(nil, ControlPath, ControlInterface)
		return ErrAlreadyRunning
	}

	s.running = true
	s.logger.Info("D-Bus control server started", "interface", ControlInterface, "path", ControlPath)
	return nil
}

// Stop releases the bus name and unexports the object.
func (s *ControlServer) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	s.running = false

	if s.conn != nil {
		if _, err := s.conn.ReleaseName(ControlBusName); err != nil {
			s.logger.Warn("failed to release bus name", "error", err)
		}
		_ = s.conn.Export(nil, ControlPath, ControlInterface)
		_ = s.conn.Export(nil, ControlPath, "org.freedesktop.DBus.Introspectable")
		// Don't close the connection as it's shared (SessionBus)
	}

	s.logger.Info("D-Bus control server stopped")
	return nil
}

func (s *ControlServer) toDBusError(op string, err error) *dbus.Error {
	if err == nil {
		return nil
	}
	s.logger.Warn("control call failed", "method", op, "error", err)
	return dbus.NewError(s.classify(err), []interface{}{err.Error()})
}

// controlMethods holds the exported D-Bus methods so their names don't
// collide with the server lifecycle.
type controlMethods struct {
	server *ControlServer
}

// Start shows the bubble.
// D-Bus method: Start() -> nothing
func (c *controlMethods) Start() *dbus.Error {
	c.server.logger.Debug("Start called")
	return c.server.toDBusError("Start", c.server.controls.StartOverlay())
}

// Stop hides the overlay and clears the active flag.
// D-Bus method: Stop() -> nothing
func (c *controlMethods) Stop() *dbus.Error {
	c.server.logger.Debug("Stop called")
	return c.server.toDBusError("Stop", c.server.controls.StopOverlay())
}

// RefreshApps rescans installed applications.
// D-Bus method: RefreshApps() -> nothing
func (c *controlMethods) RefreshApps() *dbus.Error {
	c.server.logger.Debug("RefreshApps called")
	return c.server.toDBusError("RefreshApps", c.server.controls.RefreshApps())
}

// Status reports the overlay state.
// D-Bus method: Status() -> (ssubu)
func (c *controlMethods) Status() (string, string, uint32, bool, uint32, *dbus.Error) {
	st := c.server.controls.Status()
	return st.State, st.Badge, st.Notifications, st.Connected, st.Apps, nil
}

func controlMethodData() []introspect.Method {
	return []introspect.Method{
		{Name: "Start"},
		{Name: "Stop"},
		{Name: "RefreshApps"},
		{
			Name: "Status",
			Args: []introspect.Arg{
				{Name: "state", Type: "s", Direction: "out"},
				{Name: "badge", Type: "s", Direction: "out"},
				{Name: "notifications", Type: "u", Direction: "out"},
				{Name: "connected", Type: "b", Direction: "out"},
				{Name: "apps", Type: "u", Direction: "out"},
			},
		},
	}
}

func controlSignalData() []introspect.Signal {
	return []introspect.Signal{
		{
			Name: "StateChanged",
			Args: []introspect.Arg{
				{Name: "state", Type: "s"},
			},
		},
		{
			Name: "BadgeChanged",
			Args: []introspect.Arg{
				{Name: "badge", Type: "s"},
			},
		},
	}
}
