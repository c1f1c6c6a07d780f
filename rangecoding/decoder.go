package rangecoding

import "math/bits"

// Decoder reads one LC3 frame written by Encoder: arithmetic-coded data
// forward from the first byte, side information backward from the last
// byte. It is the symmetric inverse of the encoder and follows the ac_dec_*
// and read_*_backward procedures in LC3 Specification Section 3.4.2.
type Decoder struct {
	buf      []byte // Input frame buffer
	bp       int    // Forward cursor: next arithmetic byte to read
	bpSide   int    // Backward cursor: current side-information byte
	maskSide uint8  // Bit mask within buf[bpSide] (LSB first)
	low      uint32 // Arithmetic decoder low, 24-bit window
	rng      uint32 // Arithmetic decoder range
	err      int    // Non-zero once a bit error condition was detected
}

// Init initializes the decoder over a received frame. The first three bytes
// seed the arithmetic decoder state.
func (d *Decoder) Init(buf []byte) {
	d.buf = buf
	d.bp = 0
	d.bpSide = len(buf) - 1
	d.maskSide = 1
	d.low = 0
	for k := 0; k < 3; k++ {
		d.low <<= 8
		d.low += uint32(d.readByteForward())
	}
	d.rng = acRangeInit
	d.err = 0
}

// ReadBitBackward reads one side-information bit at the backward cursor.
func (d *Decoder) ReadBitBackward() uint8 {
	if d.bpSide < 0 {
		d.err = -1
		return 0
	}
	var bit uint8
	if d.buf[d.bpSide]&d.maskSide != 0 {
		bit = 1
	}
	if d.maskSide == 0x80 {
		d.maskSide = 1
		d.bpSide--
	} else {
		d.maskSide <<= 1
	}
	return bit
}

// ReadUIntBackward reads numBits side-information bits, least significant
// bit first, and returns the assembled value.
func (d *Decoder) ReadUIntBackward(numBits int) uint32 {
	var val uint32
	for k := 0; k < numBits; k++ {
		val += uint32(d.ReadBitBackward()) << k
	}
	return val
}

// Decode returns the index of the next arithmetic-coded symbol. cumFreqs
// holds the cumulative frequency of each symbol and freqs its frequency;
// the frequencies sum to 1<<acProbBits. A stream that selects no valid
// symbol sets the bit error flag.
func (d *Decoder) Decode(cumFreqs, freqs []uint16) int {
	tmp := d.rng >> acProbBits
	if d.low >= tmp<<acProbBits {
		// No interval can contain this value: the frame is corrupt.
		d.err = -1
	}
	sym := len(cumFreqs) - 1
	for sym > 0 && d.low < tmp*uint32(cumFreqs[sym]) {
		sym--
	}
	d.low -= tmp * uint32(cumFreqs[sym])
	d.rng = tmp * uint32(freqs[sym])
	for d.rng < acRenormLow {
		d.rng <<= 8
		d.low <<= 8
		d.low &= acWindowMask
		d.low += uint32(d.readByteForward())
	}
	return sym
}

// readByteForward returns the next arithmetic byte. Reads past the end of
// the frame return zero: the encoder's final renormalization can leave the
// decoder one or two bytes short of the payload tail.
func (d *Decoder) readByteForward() byte {
	if d.bp >= len(d.buf) {
		return 0
	}
	b := d.buf[d.bp]
	d.bp++
	return b
}

// SideBitsRead returns the number of side-information bits consumed so far.
func (d *Decoder) SideBitsRead() int {
	return 8*len(d.buf) - (8*d.bpSide + 8 - bits.TrailingZeros8(d.maskSide))
}

// Bp returns the forward byte cursor (for debugging).
func (d *Decoder) Bp() int {
	return d.bp
}

// BpSide returns the backward byte cursor (for debugging).
func (d *Decoder) BpSide() int {
	return d.bpSide
}

// Range returns the current range value (for debugging).
func (d *Decoder) Range() uint32 {
	return d.rng
}

// Error returns a non-zero value if a bit error condition was detected or
// the side reader ran off the front of the frame.
func (d *Decoder) Error() int {
	return d.err
}
