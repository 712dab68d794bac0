// Package core provides the notification filter policy, ordering, and badge logic.
package core

import (
	"strings"

	"github.com/jmylchreest/floatify/internal/model"
)

// DefaultOwnApp is the app id floatify posts its own notifications under.
const DefaultOwnApp = "floatify"

// RejectReason explains why ShouldProcess refused a notification.
type RejectReason string

const (
	Accepted           RejectReason = ""
	RejectOwnApp       RejectReason = "own_app"
	RejectNotClear     RejectReason = "not_clearable"
	RejectForeground   RejectReason = "foreground_service"
	RejectOngoing      RejectReason = "ongoing"
	RejectNotMonitored RejectReason = "not_monitored"
)

// Policy decides which notifications are mirrored.
// The zero value accepts everything except non-clearable, foreground and ongoing notifications.
type Policy struct {
	OwnApp    string              // host app id; notifications from it are never mirrored
	Monitored map[string]struct{} // allowlist of source apps; empty means all
}

// NewPolicy creates a policy for the given host app id and monitored allowlist.
func NewPolicy(ownApp string, monitored []string) Policy {
	p := Policy{OwnApp: ownApp}
	if len(monitored) > 0 {
		p.Monitored = make(map[string]struct{}, len(monitored))
		for _, m := range monitored {
			p.Monitored[m] = struct{}{}
		}
	}
	return p
}

// ShouldProcess reports whether n should enter the mirror.
func (p Policy) ShouldProcess(n model.Native) bool {
	return p.Check(n) == Accepted
}

// Check applies the filter rules in order and returns the first that rejects n.
func (p Policy) Check(n model.Native) RejectReason {
	if p.isOwnApp(n) {
		return RejectOwnApp
	}
	if !n.Clearable {
		return RejectNotClear
	}
	if n.ForegroundService {
		return RejectForeground
	}
	if n.Ongoing {
		return RejectOngoing
	}
	if len(p.Monitored) > 0 {
		if _, ok := p.Monitored[n.SourceApp]; !ok {
			return RejectNotMonitored
		}
	}
	return Accepted
}

func (p Policy) isOwnApp(n model.Native) bool {
	if p.OwnApp == "" {
		return false
	}
	return strings.EqualFold(n.SourceApp, p.OwnApp) || strings.EqualFold(n.AppName, p.OwnApp)
}
