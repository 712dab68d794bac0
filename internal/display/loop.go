package display

import (
	"github.com/diamondburned/gotk4/pkg/glib/v2"
)

// Loop posts functions to the GTK main loop.
type Loop struct{}

// Post schedules fn on the GTK main loop. Safe from any goroutine.
func (Loop) Post(fn func()) {
	glib.IdleAdd(func() {
		fn()
	})
}
