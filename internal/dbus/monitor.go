package dbus

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/jmylchreest/floatify/internal/model"
)

const (
	// NotificationsInterface is the freedesktop notification interface.
	NotificationsInterface = "org.freedesktop.Notifications"

	// pendingTTL bounds how long a Notify call waits for its reply.
	pendingTTL = 30 * time.Second
)

// ErrFeedDisconnected is reported when the monitor connection drops.
var ErrFeedDisconnected = errors.New("notification feed disconnected")

// PostedHandler is called when a notification is posted or replaced.
type PostedHandler func(n model.Native)

// ClosedHandler is called when the notification server closes a notification.
type ClosedHandler func(key string, reason CloseReason)

// envelope is the subset of a bus message the monitor cares about.
type envelope struct {
	kind        dbus.Type
	sender      string
	destination string
	iface       string
	member      string
	serial      uint32
	replySerial uint32
	body        []interface{}
}

func envelopeOf(msg *dbus.Message) envelope {
	env := envelope{
		kind:   msg.Type,
		serial: msg.Serial(),
		body:   msg.Body,
	}
	if v, ok := msg.Headers[dbus.FieldSender]; ok {
		env.sender, _ = v.Value().(string)
	}
	if v, ok := msg.Headers[dbus.FieldDestination]; ok {
		env.destination, _ = v.Value().(string)
	}
	if v, ok := msg.Headers[dbus.FieldInterface]; ok {
		env.iface, _ = v.Value().(string)
	}
	if v, ok := msg.Headers[dbus.FieldMember]; ok {
		env.member, _ = v.Value().(string)
	}
	if v, ok := msg.Headers[dbus.FieldReplySerial]; ok {
		env.replySerial, _ = v.Value().(uint32)
	}
	return env
}

type callRef struct {
	peer   string
	serial uint32
}

type pendingCall struct {
	notification *DBusNotification
	at           time.Time
}

// Monitor passively observes D-Bus notification traffic without claiming ownership.
// This allows running alongside any notification daemon (mako, dunst, swaync).
//
// The server-assigned id is learned by pairing each Notify call with its
// method_return, so replacements and NotificationClosed signals map onto the
// same key.
type Monitor struct {
	conn   *dbus.Conn
	logger *slog.Logger
	now    func() time.Time

	onPosted PostedHandler
	onClosed ClosedHandler

	mu      sync.Mutex
	pending map[callRef]pendingCall
	active  map[string]model.Native
	done    chan struct{}
	stopped bool
}

// NewMonitor creates a new notification monitor.
func NewMonitor(logger *slog.Logger) *Monitor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Monitor{
		logger:  logger,
		now:     time.Now,
		pending: make(map[callRef]pendingCall),
		active:  make(map[string]model.Native),
		done:    make(chan struct{}),
	}
}

// SetPostedHandler sets the callback for posted notifications.
func (m *Monitor) SetPostedHandler(handler PostedHandler) {
	m.onPosted = handler
}

// SetClosedHandler sets the callback for closed notifications.
func (m *Monitor) SetClosedHandler(handler ClosedHandler) {
	m.onClosed = handler
}

func monitorRules() []string {
	return []string{
		"type='method_call',interface='org.freedesktop.Notifications',member='Notify'",
		"type='method_return'",
		"type='error'",
		"type='signal',interface='org.freedesktop.Notifications',member='NotificationClosed'",
	}
}

// Start connects a private session bus connection and begins monitoring.
// Monitor mode makes the connection unusable for anything else, so it is
// never the shared SessionBus.
func (m *Monitor) Start() error {
	conn, err := dbus.SessionBusPrivate()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}
	if err := conn.Auth(nil); err != nil {
		_ = conn.Close()
		return fmt.Errorf("failed to authenticate on session bus: %w", err)
	}
	if err := conn.Hello(); err != nil {
		_ = conn.Close()
		return fmt.Errorf("failed to register on session bus: %w", err)
	}
	m.conn = conn

	// Eavesdrop before the rules are installed so nothing is lost.
	ch := make(chan *dbus.Message, 100)
	conn.Eavesdrop(ch)

	err = conn.BusObject().Call(
		"org.freedesktop.DBus.Monitoring.BecomeMonitor",
		0,
		monitorRules(),
		uint32(0),
	).Err
	if err != nil {
		m.logger.Warn("BecomeMonitor not available, trying AddMatch", "error", err)
		if err := m.addMatchRules(); err != nil {
			_ = conn.Close()
			return err
		}
		m.logger.Info("started D-Bus monitor using AddMatch with eavesdrop")
	} else {
		m.logger.Info("started D-Bus monitor using BecomeMonitor")
	}

	go m.processMessages(ch)
	return nil
}

// addMatchRules uses the older AddMatch API for eavesdropping.
func (m *Monitor) addMatchRules() error {
	for _, rule := range monitorRules() {
		err := m.conn.BusObject().Call(
			"org.freedesktop.DBus.AddMatch",
			0,
			rule+",eavesdrop='true'",
		).Err
		if err != nil {
			return fmt.Errorf("failed to add match rule (eavesdrop may require permissions): %w", err)
		}
	}
	return nil
}

// processMessages reads messages until the connection is closed.
func (m *Monitor) processMessages(ch <-chan *dbus.Message) {
	defer close(m.done)
	ctx := m.conn.Context()
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			m.dispatch(envelopeOf(msg))
		case <-ctx.Done():
			return
		}
	}
}

// dispatch is the single recovery boundary for bus callbacks; a malformed
// message must never take the daemon down.
func (m *Monitor) dispatch(env envelope) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("panic while handling bus message", "member", env.member, "panic", r)
		}
	}()

	switch env.kind {
	case dbus.TypeMethodCall:
		if env.iface == NotificationsInterface && env.member == "Notify" {
			m.handleNotify(env)
		}
	case dbus.TypeMethodReply:
		m.handleReply(env)
	case dbus.TypeError:
		m.mu.Lock()
		delete(m.pending, callRef{peer: env.destination, serial: env.replySerial})
		m.mu.Unlock()
	case dbus.TypeSignal:
		if env.iface == NotificationsInterface && env.member == "NotificationClosed" {
			m.handleClosed(env)
		}
	}
}

// parseNotify parses Notify(app_name, replaces_id, app_icon, summary, body, actions, hints, expire_timeout).
func parseNotify(body []interface{}) (*DBusNotification, error) {
	if len(body) < 8 {
		return nil, fmt.Errorf("malformed Notify call: %d arguments", len(body))
	}

	n := &DBusNotification{}
	var ok bool
	if n.AppName, ok = body[0].(string); !ok {
		return nil, fmt.Errorf("invalid app_name type %T", body[0])
	}
	if n.ReplacesID, ok = body[1].(uint32); !ok {
		return nil, fmt.Errorf("invalid replaces_id type %T", body[1])
	}
	if n.AppIcon, ok = body[2].(string); !ok {
		return nil, fmt.Errorf("invalid app_icon type %T", body[2])
	}
	if n.Summary, ok = body[3].(string); !ok {
		return nil, fmt.Errorf("invalid summary type %T", body[3])
	}
	if n.Body, ok = body[4].(string); !ok {
		return nil, fmt.Errorf("invalid body type %T", body[4])
	}
	if actions, ok := body[5].([]string); ok {
		n.Actions = actions
	}
	if hints, ok := body[6].(map[string]dbus.Variant); ok {
		n.Hints = hints
	}
	if timeout, ok := body[7].(int32); ok {
		n.ExpireTimeout = timeout
	}
	return n, nil
}

func (m *Monitor) handleNotify(env envelope) {
	n, err := parseNotify(env.body)
	if err != nil {
		m.logger.Warn("ignoring Notify call", "sender", env.sender, "error", err)
		return
	}

	now := m.now()
	m.mu.Lock()
	for ref, call := range m.pending {
		if now.Sub(call.at) > pendingTTL {
			delete(m.pending, ref)
		}
	}
	m.pending[callRef{peer: env.sender, serial: env.serial}] = pendingCall{notification: n, at: now}
	m.mu.Unlock()
}

func (m *Monitor) handleReply(env envelope) {
	ref := callRef{peer: env.destination, serial: env.replySerial}

	m.mu.Lock()
	call, ok := m.pending[ref]
	if ok {
		delete(m.pending, ref)
	}
	m.mu.Unlock()
	if !ok {
		return
	}

	if len(env.body) < 1 {
		return
	}
	id, ok := env.body[0].(uint32)
	if !ok || id == 0 {
		m.logger.Warn("unexpected Notify reply", "body", env.body)
		return
	}

	native := call.notification.Native(id, call.at)

	m.mu.Lock()
	m.active[native.Key] = native
	m.mu.Unlock()

	m.logger.Debug("captured notification",
		"key", native.Key,
		"app", native.SourceApp,
		"summary", native.Title)

	if m.onPosted != nil {
		m.onPosted(native)
	}
}

func (m *Monitor) handleClosed(env envelope) {
	if len(env.body) < 1 {
		return
	}
	id, ok := env.body[0].(uint32)
	if !ok {
		return
	}
	reason := CloseReasonUndefined
	if len(env.body) > 1 {
		if r, ok := env.body[1].(uint32); ok {
			reason = CloseReason(r)
		}
	}

	key := Key(id)
	m.mu.Lock()
	_, known := m.active[key]
	delete(m.active, key)
	m.mu.Unlock()

	m.logger.Debug("notification closed", "key", key, "reason", reason.String(), "known", known)

	if m.onClosed != nil {
		m.onClosed(key, reason)
	}
}

// Active returns the notifications seen since the monitor attached that are still open.
func (m *Monitor) Active() []model.Native {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]model.Native, 0, len(m.active))
	for _, n := range m.active {
		out = append(out, n)
	}
	return out
}

// Done is closed when the message loop exits.
func (m *Monitor) Done() <-chan struct{} {
	return m.done
}

// Err reports ErrFeedDisconnected once the loop has exited without Stop.
func (m *Monitor) Err() error {
	select {
	case <-m.done:
	default:
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stopped {
		return nil
	}
	return ErrFeedDisconnected
}

// Stop stops the monitor and closes its private connection.
func (m *Monitor) Stop() error {
	m.mu.Lock()
	m.stopped = true
	m.mu.Unlock()
	if m.conn != nil {
		return m.conn.Close()
	}
	return nil
}
