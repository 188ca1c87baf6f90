package pave

import "encoding/binary"

// HeaderSize is the header length written by current firmware.
const HeaderSize = 64

// Header holds the fields Encode writes; the rest stay zero.
type Header struct {
	FrameNumber uint32
	FrameType   FrameType
	Width       uint16
	Height      uint16
}

// Encode wraps payload in a PaVE header. It is used by the video
// simulator and tests.
func Encode(h Header, payload []byte) []byte {
	out := make([]byte, HeaderSize+len(payload))
	copy(out, Signature)
	out[4] = 3 // version
	out[5] = 4 // H.264
	binary.LittleEndian.PutUint16(out[offHeaderSize:], HeaderSize)
	binary.LittleEndian.PutUint32(out[offPayloadSize:], uint32(len(payload)))
	binary.LittleEndian.PutUint16(out[offEncodedWidth:], h.Width)
	binary.LittleEndian.PutUint16(out[offEncodedHeight:], h.Height)
	binary.LittleEndian.PutUint16(out[16:], h.Width)
	binary.LittleEndian.PutUint16(out[18:], h.Height)
	binary.LittleEndian.PutUint32(out[offFrameNumber:], h.FrameNumber)
	out[28] = 1 // total chunks
	out[offFrameType] = byte(h.FrameType)
	copy(out[HeaderSize:], payload)
	return out
}
