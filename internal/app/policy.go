package app

import "github.com/dkeye/dronerelay/internal/core"

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	KickMember
)

// Policy decides what happens to a session whose send failed.
type Policy interface {
	OnDeliveryFailure(sid core.SessionID, err error) BackpressureAction
}

// SimplePolicy kicks every session that fails a delivery. Failed
// deliveries are never retried.
type SimplePolicy struct{}

func (SimplePolicy) OnDeliveryFailure(core.SessionID, error) BackpressureAction {
	return KickMember
}
