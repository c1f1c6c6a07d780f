package lc3

import (
	"encoding/binary"
	"io"
	"time"
)

const (
	// Magic identifies a .lc3 file.
	Magic = 0xCC1C

	// headerSize is the length of the fixed header this package writes.
	headerSize = 18
)

// Header holds the stream parameters carried by a .lc3 file.
type Header struct {
	// SampleRate in Hz. Must be a multiple of 100.
	SampleRate int

	// Bitrate is the total bitrate across channels in bits per second,
	// stored with 100 bit/s granularity. Informational; the frame blocks
	// carry their own byte counts.
	Bitrate int

	// Channels is the number of audio channels.
	Channels int

	// FrameDuration is the frame interval, 10ms or 7.5ms.
	FrameDuration time.Duration

	// Samples is the total number of samples per channel, or 0 if not
	// known when the header was written.
	Samples uint32
}

// validate checks the header can be represented on the wire.
func (h *Header) validate() error {
	if h.SampleRate <= 0 || h.SampleRate%100 != 0 || h.SampleRate/100 > 0xFFFF {
		return ErrInvalidConfig
	}
	if h.Channels < 1 || h.Channels > 0xFFFF {
		return ErrInvalidConfig
	}
	if h.Bitrate < 0 || h.Bitrate/100 > 0xFFFF {
		return ErrInvalidConfig
	}
	switch h.FrameDuration {
	case 10 * time.Millisecond, 7500 * time.Microsecond:
	default:
		return ErrInvalidConfig
	}
	return nil
}

// encode serializes the fixed 18-byte header.
func (h *Header) encode() []byte {
	buf := make([]byte, headerSize)
	binary.LittleEndian.PutUint16(buf[0:], Magic)
	binary.LittleEndian.PutUint16(buf[2:], headerSize)
	binary.LittleEndian.PutUint16(buf[4:], uint16(h.SampleRate/100))
	binary.LittleEndian.PutUint16(buf[6:], uint16(h.Bitrate/100))
	binary.LittleEndian.PutUint16(buf[8:], uint16(h.Channels))
	binary.LittleEndian.PutUint16(buf[10:], uint16(h.FrameDuration/(10*time.Microsecond)))
	binary.LittleEndian.PutUint16(buf[12:], 0)
	binary.LittleEndian.PutUint32(buf[14:], h.Samples)
	return buf
}

// readHeader parses the header from r, skipping any extension bytes a
// longer header announces.
func readHeader(r io.Reader) (Header, error) {
	var h Header
	buf := make([]byte, headerSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		if err == io.ErrUnexpectedEOF {
			return h, ErrInvalidHeader
		}
		return h, err
	}
	if binary.LittleEndian.Uint16(buf[0:]) != Magic {
		return h, ErrInvalidHeader
	}
	size := int(binary.LittleEndian.Uint16(buf[2:]))
	if size < headerSize {
		return h, ErrInvalidHeader
	}
	h.SampleRate = int(binary.LittleEndian.Uint16(buf[4:])) * 100
	h.Bitrate = int(binary.LittleEndian.Uint16(buf[6:])) * 100
	h.Channels = int(binary.LittleEndian.Uint16(buf[8:]))
	h.FrameDuration = time.Duration(binary.LittleEndian.Uint16(buf[10:])) * 10 * time.Microsecond
	h.Samples = binary.LittleEndian.Uint32(buf[14:])

	if extra := size - headerSize; extra > 0 {
		if _, err := io.CopyN(io.Discard, r, int64(extra)); err != nil {
			return h, ErrInvalidHeader
		}
	}
	return h, nil
}
