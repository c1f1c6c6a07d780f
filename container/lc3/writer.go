package lc3

import (
	"encoding/binary"
	"io"
)

// Writer writes LC3 frames to a .lc3 file.
type Writer struct {
	w      io.Writer
	hdr    Header
	frames uint64
	prefix [2]byte
}

// NewWriter validates the header and writes it to w immediately.
//
// When the total sample count is not known up front, leave
// Header.Samples zero.
func NewWriter(w io.Writer, hdr Header) (*Writer, error) {
	if err := hdr.validate(); err != nil {
		return nil, err
	}
	if _, err := w.Write(hdr.encode()); err != nil {
		return nil, err
	}
	return &Writer{w: w, hdr: hdr}, nil
}

// WriteFrame appends one frame block: the concatenated channel frames of
// one interval. The length must fit the 16-bit block prefix.
func (lw *Writer) WriteFrame(frame []byte) error {
	if len(frame) == 0 || len(frame) > 0xFFFF {
		return ErrFrameSize
	}
	binary.LittleEndian.PutUint16(lw.prefix[:], uint16(len(frame)))
	if _, err := lw.w.Write(lw.prefix[:]); err != nil {
		return err
	}
	if _, err := lw.w.Write(frame); err != nil {
		return err
	}
	lw.frames++
	return nil
}

// Header returns the header written at creation.
func (lw *Writer) Header() Header {
	return lw.hdr
}

// FrameCount returns the number of frame blocks written.
func (lw *Writer) FrameCount() uint64 {
	return lw.frames
}
