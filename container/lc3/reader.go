package lc3

import (
	"encoding/binary"
	"io"
	"time"
)

// Reader reads LC3 frames from a .lc3 file.
type Reader struct {
	r io.Reader

	// Header is the parsed file header, set by NewReader.
	Header Header

	frames uint64
	buf    []byte
	prefix [2]byte
}

// NewReader parses the file header from r.
// Returns ErrInvalidHeader if r does not start with a .lc3 header.
func NewReader(r io.Reader) (*Reader, error) {
	hdr, err := readHeader(r)
	if err != nil {
		return nil, err
	}
	return &Reader{r: r, Header: hdr}, nil
}

// ReadFrame returns the next frame block: the concatenated channel
// frames of one interval.
//
// The returned slice is reused by the next ReadFrame call; copy it to
// retain. Returns io.EOF cleanly at the end of the file and
// ErrUnexpectedEOS if the file stops inside a block.
func (lr *Reader) ReadFrame() ([]byte, error) {
	if _, err := io.ReadFull(lr.r, lr.prefix[:]); err != nil {
		if err == io.ErrUnexpectedEOF {
			return nil, ErrUnexpectedEOS
		}
		return nil, err
	}
	n := int(binary.LittleEndian.Uint16(lr.prefix[:]))
	if n == 0 {
		return nil, ErrFrameSize
	}
	if cap(lr.buf) < n {
		lr.buf = make([]byte, n)
	}
	frame := lr.buf[:n]
	if _, err := io.ReadFull(lr.r, frame); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, ErrUnexpectedEOS
		}
		return nil, err
	}
	lr.frames++
	return frame, nil
}

// FrameCount returns the number of frame blocks read so far.
func (lr *Reader) FrameCount() uint64 {
	return lr.frames
}

// SampleRate returns the sample rate in Hz from the header.
func (lr *Reader) SampleRate() int {
	return lr.Header.SampleRate
}

// Channels returns the channel count from the header.
func (lr *Reader) Channels() int {
	return lr.Header.Channels
}

// FrameDuration returns the frame interval from the header.
func (lr *Reader) FrameDuration() time.Duration {
	return lr.Header.FrameDuration
}
