// Package daemon wires floatifyd together: the notification feed supervisor,
// capability tracking, the D-Bus control surface and user-facing notices.
package daemon
