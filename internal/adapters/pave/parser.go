// Package pave demultiplexes the AR.Drone 2.0 video transport. Every unit
// on the wire is a little-endian "PaVE" header followed by an encoded
// video payload; the payload is handed out untouched.
package pave

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/dkeye/dronerelay/internal/domain"
)

const Signature = "PaVE"

// Offsets into the header. Only the fields the relay uses are listed.
const (
	offHeaderSize    = 6
	offPayloadSize   = 8
	offEncodedWidth  = 12
	offEncodedHeight = 14
	offFrameNumber   = 20
	offFrameType     = 30

	// fixedHeaderLen covers every field read above.
	fixedHeaderLen = 32

	// DefaultMaxPayload bounds a single payload. Real frames are well
	// under 100 KiB; anything bigger means the stream is desynchronized.
	DefaultMaxPayload = 2 << 20
)

type FrameType uint8

const (
	FrameTypeUnknown FrameType = iota
	FrameTypeIDR
	FrameTypeI
	FrameTypeP
	FrameTypeHeaders
)

var (
	ErrBadSignature  = errors.New("pave: bad signature")
	ErrBadHeader     = errors.New("pave: header too short")
	ErrFrameTooLarge = errors.New("pave: payload too large")
)

// Parser is a streaming PaVE demultiplexer. It is not safe for concurrent
// use; use one parser per transport connection so no partial frame
// survives a reconnect.
type Parser struct {
	buf        []byte
	maxPayload uint32
}

func NewParser() *Parser {
	return &Parser{maxPayload: DefaultMaxPayload}
}

// Buffered returns the number of bytes held for an incomplete frame.
func (p *Parser) Buffered() int { return len(p.buf) }

// Write feeds transport bytes and returns every frame completed by them.
// After an error the parser is unusable and must be replaced.
func (p *Parser) Write(data []byte) ([]domain.VideoFrame, error) {
	p.buf = append(p.buf, data...)

	var frames []domain.VideoFrame
	for {
		n := min(len(p.buf), len(Signature))
		if !bytes.Equal(p.buf[:n], []byte(Signature)[:n]) {
			p.buf = nil
			return frames, ErrBadSignature
		}
		if len(p.buf) < offPayloadSize+4 {
			return frames, nil
		}

		headerSize := binary.LittleEndian.Uint16(p.buf[offHeaderSize:])
		payloadSize := binary.LittleEndian.Uint32(p.buf[offPayloadSize:])
		if headerSize < fixedHeaderLen {
			p.buf = nil
			return frames, fmt.Errorf("%w: %d bytes", ErrBadHeader, headerSize)
		}
		if payloadSize > p.maxPayload {
			p.buf = nil
			return frames, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, payloadSize)
		}

		total := int(headerSize) + int(payloadSize)
		if len(p.buf) < total {
			return frames, nil
		}

		hdr := p.buf[:headerSize]
		ft := FrameType(hdr[offFrameType])
		frame := domain.VideoFrame{
			Number:   binary.LittleEndian.Uint32(hdr[offFrameNumber:]),
			KeyFrame: ft == FrameTypeIDR || ft == FrameTypeI,
			Width:    binary.LittleEndian.Uint16(hdr[offEncodedWidth:]),
			Height:   binary.LittleEndian.Uint16(hdr[offEncodedHeight:]),
			Payload:  bytes.Clone(p.buf[headerSize:total]),
		}
		frames = append(frames, frame)
		p.buf = p.buf[total:]
		if len(p.buf) == 0 {
			p.buf = nil
			return frames, nil
		}
	}
}
