package core

import "github.com/dkeye/dronerelay/internal/domain"

// SessionID identifies one open client connection. Two tabs of the same
// browser get two IDs.
type SessionID string

// MemberSession binds domain.Client and its transport endpoint.
// This is what the registry stores and fans out to.
type MemberSession interface {
	Meta() *domain.Client
	Conn() ClientConnection
}

// PublishResult reports delivery stats of one broadcast.
type PublishResult struct {
	SendTo  int
	Dropped []SessionID
}
