package overlay

import (
	"errors"
	"fmt"
)

// ErrPermissionDenied is returned by Start when overlays are not permitted.
// The session ends without retry.
var ErrPermissionDenied = errors.New("overlay permission denied")

// WindowScope identifies which window an operation targeted.
type WindowScope int

const (
	ScopeBubble WindowScope = iota
	ScopeMenu
)

func (s WindowScope) String() string {
	if s == ScopeBubble {
		return "bubble"
	}
	return "menu"
}

// WindowErrorKind classifies window operation failures.
type WindowErrorKind int

const (
	// KindUnknown is an unclassified failure.
	KindUnknown WindowErrorKind = iota
	// KindInvalidToken means the display or output the window needs is gone.
	KindInvalidToken
	// KindSecurityRejection means the compositor refused the surface.
	KindSecurityRejection
)

func (k WindowErrorKind) String() string {
	switch k {
	case KindInvalidToken:
		return "invalid_token"
	case KindSecurityRejection:
		return "security_rejection"
	default:
		return "unknown"
	}
}

// WindowError is a failed window operation.
type WindowError struct {
	Scope WindowScope
	Kind  WindowErrorKind
	Op    string
	Err   error
}

func (e *WindowError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s window %s failed (%s): %v", e.Scope, e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s window %s failed (%s)", e.Scope, e.Op, e.Kind)
}

func (e *WindowError) Unwrap() error {
	return e.Err
}

// NewWindowError creates a WindowError of the given kind. Surfaces use it to
// report classified failures; the scope is filled in by the controller.
func NewWindowError(kind WindowErrorKind, op string, err error) *WindowError {
	return &WindowError{Kind: kind, Op: op, Err: err}
}

// asWindowError converts err into a WindowError for scope and op, keeping the
// kind when the surface already classified it.
func asWindowError(scope WindowScope, op string, err error) *WindowError {
	var we *WindowError
	if errors.As(err, &we) {
		out := *we
		out.Scope = scope
		if out.Op == "" {
			out.Op = op
		}
		return &out
	}
	return &WindowError{Scope: scope, Kind: KindUnknown, Op: op, Err: err}
}
