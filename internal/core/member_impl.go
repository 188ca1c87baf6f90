package core

import "github.com/dkeye/dronerelay/internal/domain"

// memberSession implements MemberSession by pairing meta + transport.
type memberSession struct {
	meta *domain.Client
	conn ClientConnection
}

func NewMemberSession(meta *domain.Client, conn ClientConnection) MemberSession {
	return &memberSession{meta: meta, conn: conn}
}

func (m *memberSession) Meta() *domain.Client   { return m.meta }
func (m *memberSession) Conn() ClientConnection { return m.conn }
