package core

// MessageKind selects the websocket frame type a Message is written as.
type MessageKind int

const (
	TextMessage MessageKind = iota
	BinaryMessage
)

func (k MessageKind) String() string {
	if k == BinaryMessage {
		return "binary"
	}
	return "text"
}

// Frame is a raw payload.
type Frame []byte

// Message is one outbound payload plus the frame type to write it as.
type Message struct {
	Kind MessageKind
	Data Frame
}

func NewTextMessage(data []byte) Message   { return Message{Kind: TextMessage, Data: data} }
func NewBinaryMessage(data []byte) Message { return Message{Kind: BinaryMessage, Data: data} }

// ClientConnection abstracts the client messaging transport.
// Owned by the adapter; the adapter must Close() it.
type ClientConnection interface {
	// TrySend queues m without blocking and fails if the connection is
	// closed or its send queue is full.
	TrySend(m Message) error
	Close()
}
