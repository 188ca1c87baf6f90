package core

// Metrics receives relay counters. Implementations must be safe for
// concurrent use.
type Metrics interface {
	SessionsChanged(n int)
	Broadcast(kind MessageKind, delivered, dropped int)
	CommandDispatched(action string)
	ProtocolError()
	VideoFrame()
	VideoReconnect()
	TelemetrySnapshot()
}

// NopMetrics discards everything.
type NopMetrics struct{}

func (NopMetrics) SessionsChanged(int)             {}
func (NopMetrics) Broadcast(MessageKind, int, int) {}
func (NopMetrics) CommandDispatched(string)        {}
func (NopMetrics) ProtocolError()                  {}
func (NopMetrics) VideoFrame()                     {}
func (NopMetrics) VideoReconnect()                 {}
func (NopMetrics) TelemetrySnapshot()              {}
