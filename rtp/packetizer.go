package rtp

import (
	"errors"
	"math/rand"

	"github.com/google/uuid"
	"github.com/pion/rtp"
)

// ErrInvalidConfig indicates packetizer parameters that cannot form a
// valid stream.
var ErrInvalidConfig = errors.New("rtp: invalid packetizer configuration")

// DefaultPayloadType is the dynamic payload type used when none is
// configured.
const DefaultPayloadType = 96

// Config configures a Packetizer.
type Config struct {
	// PayloadType is the dynamic RTP payload type (96-127).
	// Zero selects DefaultPayloadType.
	PayloadType uint8

	// SSRC identifies the stream. Zero picks a random value.
	SSRC uint32

	// SamplesPerFrame is the timestamp increment per frame: the frame
	// length in samples at the media clock rate. Required.
	SamplesPerFrame int

	// StreamID names the stream for out-of-band signaling (a CNAME
	// equivalent). Empty generates a fresh UUID.
	StreamID string
}

// Packetizer wraps LC3 frames into RTP packets with advancing sequence
// numbers and timestamps. Not safe for concurrent use.
type Packetizer struct {
	pt       uint8
	ssrc     uint32
	streamID string
	step     uint32

	seq     uint16
	ts      uint32
	started bool
}

// NewPacketizer validates cfg and seeds the sequence number and
// timestamp randomly per RFC 3550.
func NewPacketizer(cfg Config) (*Packetizer, error) {
	if cfg.SamplesPerFrame <= 0 {
		return nil, ErrInvalidConfig
	}
	pt := cfg.PayloadType
	if pt == 0 {
		pt = DefaultPayloadType
	}
	if pt < 96 || pt > 127 {
		return nil, ErrInvalidConfig
	}
	ssrc := cfg.SSRC
	if ssrc == 0 {
		ssrc = rand.Uint32()
	}
	streamID := cfg.StreamID
	if streamID == "" {
		streamID = uuid.New().String()
	}
	return &Packetizer{
		pt:       pt,
		ssrc:     ssrc,
		streamID: streamID,
		step:     uint32(cfg.SamplesPerFrame),
		seq:      uint16(rand.Uint32()),
		ts:       rand.Uint32(),
	}, nil
}

// Packetize wraps one encoded frame. The payload aliases frame; marshal
// or send the packet before reusing the buffer.
func (p *Packetizer) Packetize(frame []byte) *rtp.Packet {
	pkt := &rtp.Packet{
		Header: rtp.Header{
			Version:        2,
			Marker:         !p.started,
			PayloadType:    p.pt,
			SequenceNumber: p.seq,
			Timestamp:      p.ts,
			SSRC:           p.ssrc,
		},
		Payload: frame,
	}
	p.started = true
	p.seq++
	p.ts += p.step
	return pkt
}

// MarshalFrame wraps one encoded frame and returns the serialized
// packet.
func (p *Packetizer) MarshalFrame(frame []byte) ([]byte, error) {
	return p.Packetize(frame).Marshal()
}

// SSRC returns the stream's synchronization source identifier.
func (p *Packetizer) SSRC() uint32 {
	return p.ssrc
}

// StreamID returns the stream identifier.
func (p *Packetizer) StreamID() string {
	return p.streamID
}
