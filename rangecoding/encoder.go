// Package rangecoding implements the dual-cursor frame coder used by LC3
// per LC3 Specification v1.0, Section 3.3.13. Arithmetic-coded data grows
// forward from the first byte of the frame while side information grows
// backward, bit by bit, from the last byte. The bit budget computed during
// quantization guarantees the two regions never overlap.
package rangecoding

import "math/bits"

// Constants from LC3 Specification Section 3.3.13 (ac_enc_init, ac_shift).
const (
	acRangeInit  = 0x00ffffff // Initial range (full 24-bit window)
	acWindowMask = 0x00ffffff // Keeps low inside the 24-bit window
	acShiftLow   = 0x00ff0000 // Byte-flush threshold for low in ac_shift
	acRenormLow  = 0x10000    // Renormalize while range is below this
	acProbBits   = 10         // Cumulative frequencies sum to 1 << acProbBits
)

// Encoder writes one LC3 frame.
// This is a bit-exact port of the ac_* and write_*_backward procedures in
// LC3 Specification Section 3.3.13.
type Encoder struct {
	buf        []byte // Output frame buffer (exactly the target byte count)
	bp         int    // Forward cursor: next byte for arithmetic data
	bpSide     int    // Backward cursor: current side-information byte
	maskSide   uint8  // Bit mask within buf[bpSide] (LSB first)
	low        uint32 // Arithmetic coder low, 24-bit window
	rng        uint32 // Arithmetic coder range
	cache      int    // Byte awaiting carry resolution (-1 = none yet)
	carry      uint32 // Pending carry out of the 24-bit window
	carryCount int    // Run length of buffered 0xFF bytes
	err        int    // Non-zero once a cursor collision was detected
}

// Init initializes the encoder over the given frame buffer and zeroes it.
// The buffer length is the exact byte count of the frame being written.
func (e *Encoder) Init(buf []byte) {
	for i := range buf {
		buf[i] = 0
	}
	e.buf = buf
	e.bp = 0
	e.bpSide = len(buf) - 1
	e.maskSide = 1
	e.low = 0
	e.rng = acRangeInit
	e.cache = -1 // Sentinel: no byte buffered yet
	e.carry = 0
	e.carryCount = 0
	e.err = 0
}

// WriteBitBackward writes a single side-information bit at the backward
// cursor. Bits fill each byte LSB first, moving toward the front of the
// frame.
func (e *Encoder) WriteBitBackward(bit uint8) {
	if e.bpSide < 0 || e.bpSide < e.bp {
		// The side writer ran into the arithmetic data.
		e.err = -1
		return
	}
	if bit == 0 {
		e.buf[e.bpSide] &^= e.maskSide
	} else {
		e.buf[e.bpSide] |= e.maskSide
	}
	if e.maskSide == 0x80 {
		e.maskSide = 1
		e.bpSide--
	} else {
		e.maskSide <<= 1
	}
}

// WriteUIntBackward writes the low numBits bits of val at the backward
// cursor, least significant bit first.
func (e *Encoder) WriteUIntBackward(val uint32, numBits int) {
	for k := 0; k < numBits; k++ {
		e.WriteBitBackward(uint8(val & 1))
		val >>= 1
	}
}

// Encode narrows the coder interval to the symbol occupying
// [cumFreq, cumFreq+freq) out of a total of 1<<acProbBits.
func (e *Encoder) Encode(cumFreq, freq uint32) {
	r := e.rng >> acProbBits
	e.low += r * cumFreq
	if e.low>>24 != 0 {
		e.carry = 1
		e.low &= acWindowMask
	}
	e.rng = r * freq
	for e.rng < acRenormLow {
		e.rng <<= 8
		e.shift()
	}
}

// shift moves the top byte of low toward the output. Bytes equal to 0xFF
// are buffered in carryCount until a carry can no longer reach them.
func (e *Encoder) shift() {
	if e.low < acShiftLow || e.carry == 1 {
		if e.cache >= 0 {
			e.writeByteForward(byte(uint32(e.cache) + e.carry))
		}
		for ; e.carryCount > 0; e.carryCount-- {
			e.writeByteForward(byte(0xff + e.carry))
		}
		e.cache = int(e.low >> 16)
		e.carry = 0
	} else {
		e.carryCount++
	}
	e.low = (e.low << 8) & acWindowMask
}

// writeByteForward emits one finished arithmetic byte at the forward cursor.
func (e *Encoder) writeByteForward(b byte) {
	if e.bp > e.bpSide || (e.bp == e.bpSide && e.maskSide != 1) {
		// The arithmetic data ran into the side information.
		e.err = -1
		return
	}
	e.buf[e.bp] = b
	e.bp++
}

// writeUIntForward merges the top numBits bits of val into the byte at the
// forward cursor, most significant bit first, leaving the remaining bits of
// that byte untouched. The final arithmetic byte can legally share a byte
// with backward side bits this way.
func (e *Encoder) writeUIntForward(val uint32, numBits int) {
	if e.bp >= len(e.buf) {
		e.err = -1
		return
	}
	mask := uint8(0x80)
	for k := 0; k < numBits; k++ {
		if val&uint32(mask) == 0 {
			e.buf[e.bp] &^= mask
		} else {
			e.buf[e.bp] |= mask
		}
		mask >>= 1
	}
}

// Done flushes the arithmetic coder state and returns the completed frame.
// After Done the buffer passed to Init holds the full frame payload; call
// Error to check that the two cursors never collided.
func (e *Encoder) Done() []byte {
	nbits := 1
	for e.rng>>(24-nbits) == 0 {
		nbits++
	}
	mask := uint32(acWindowMask) >> nbits
	val := e.low + mask
	over1 := val >> 24
	val &= acWindowMask
	high := e.low + e.rng
	over2 := high >> 24
	high &= acWindowMask
	val &= ^mask
	if over1 == over2 {
		if val+mask >= high {
			nbits++
			mask >>= 1
			val = ((e.low + mask) & acWindowMask) &^ mask
		}
		if val < e.low {
			e.carry = 1
		}
	}
	e.low = val
	for ; nbits > 0; nbits -= 8 {
		e.shift()
	}
	nbits += 8
	if e.carryCount > 0 {
		e.writeByteForward(byte(e.cache))
		for ; e.carryCount > 1; e.carryCount-- {
			e.writeByteForward(0xff)
		}
		e.writeUIntForward(0xff>>(8-uint32(nbits)), nbits)
	} else {
		e.writeUIntForward(uint32(e.cache), nbits)
	}
	return e.buf
}

// SideBitsWritten returns the number of side-information bits written so
// far, counted from the end of the frame.
func (e *Encoder) SideBitsWritten() int {
	return 8*len(e.buf) - (8*e.bpSide + 8 - bits.TrailingZeros8(e.maskSide))
}

// ArithBitsForecast returns a conservative estimate of the bits the
// arithmetic payload will occupy if the coder were finalized now, including
// bytes still buffered for carry resolution.
func (e *Encoder) ArithBitsForecast() int {
	n := 8*e.bp + 25 - (bits.Len32(e.rng) - 1)
	if e.cache >= 0 {
		n += 8
	}
	return n + 8*e.carryCount
}

// Range returns the current range value (for debugging).
func (e *Encoder) Range() uint32 {
	return e.rng
}

// Low returns the current low value (for debugging).
func (e *Encoder) Low() uint32 {
	return e.low
}

// Bp returns the forward byte cursor (for debugging).
func (e *Encoder) Bp() int {
	return e.bp
}

// BpSide returns the backward byte cursor (for debugging).
func (e *Encoder) BpSide() int {
	return e.bpSide
}

// Error returns a non-zero value if the forward and backward cursors
// collided at any point while writing the frame.
func (e *Encoder) Error() int {
	return e.err
}
