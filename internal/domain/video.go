package domain

// VideoFrame is one demultiplexed unit of the vehicle's video transport.
// Payload is relayed to clients verbatim; the other fields are for logs
// and metrics only.
type VideoFrame struct {
	Number   uint32
	KeyFrame bool
	Width    uint16
	Height   uint16
	Payload  []byte
}
