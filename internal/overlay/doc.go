// Package overlay implements the bubble session: window lifecycle, tap versus
// drag classification, badge updates, and the Apps/Notifications menu.
//
// All Controller methods must be called on the context that owns the overlay
// surfaces (the GTK main loop in floatifyd). Producers on other goroutines
// reach the controller only through the event bus.
package overlay
