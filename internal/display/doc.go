// Package display renders the floating bubble and its menu as GTK4 layer-shell
// windows. It turns pointer gestures into overlay touch events and patches the
// menu's row list in place instead of rebuilding it.
package display
