// encoder.go implements the public Encoder API for LC3 encoding.

package golc3

import (
	"github.com/thesyncim/golc3/internal/encoder"
	"github.com/thesyncim/golc3/internal/types"
)

// FrameDuration selects the frame interval.
type FrameDuration int

const (
	// FrameDuration10ms is the standard 10 ms frame interval.
	FrameDuration10ms FrameDuration = iota

	// FrameDuration7p5ms selects 7.5 ms frames for lower latency at a
	// small efficiency cost.
	FrameDuration7p5ms
)

// String returns "10ms" or "7.5ms".
func (d FrameDuration) String() string {
	if d == FrameDuration7p5ms {
		return "7.5ms"
	}
	return "10ms"
}

// Milliseconds returns the frame interval in milliseconds.
func (d FrameDuration) Milliseconds() float64 {
	if d == FrameDuration7p5ms {
		return 7.5
	}
	return 10
}

// Encoder encodes PCM audio frames into LC3 frames.
//
// An Encoder instance maintains internal state and is NOT safe for
// concurrent use. Each goroutine should create its own Encoder instance.
//
// Channels are encoded independently and their frames concatenated, so a
// receiver can split a multi-channel frame knowing only the byte budgets.
type Encoder struct {
	cfg      *encoder.Config
	channels []*encoder.Channel
	duration FrameDuration

	// bytesPerChannel is the sizing default used by FrameBytes. Encoding
	// itself always takes the budget from len(out).
	bytesPerChannel int

	scratch [][]float64
	budgets []int
	frames  uint64
}

// NewEncoder creates an LC3 encoder.
//
// sampleRate must be one of: 8000, 16000, 24000, 32000, 44100, 48000.
// channels must be 1 to 8.
//
// Returns an error if the parameters are invalid.
func NewEncoder(sampleRate, channels int, duration FrameDuration) (*Encoder, error) {
	if channels < 1 || channels > 8 {
		return nil, ErrInvalidChannels
	}
	var d types.FrameDuration
	switch duration {
	case FrameDuration10ms:
		d = types.FrameDuration10ms
	case FrameDuration7p5ms:
		d = types.FrameDuration7p5ms
	default:
		return nil, ErrInvalidFrameDuration
	}
	cfg, err := encoder.NewConfig(sampleRate, d)
	if err != nil {
		return nil, ErrInvalidSampleRate
	}

	e := &Encoder{
		cfg:      cfg,
		channels: make([]*encoder.Channel, channels),
		duration: duration,
		scratch:  make([][]float64, channels),
		budgets:  make([]int, channels),
	}
	for ch := range e.channels {
		e.channels[ch] = encoder.NewChannel(cfg)
		e.scratch[ch] = make([]float64, cfg.NF)
	}
	return e, nil
}

// Encode encodes one frame of raw little-endian PCM bytes.
//
// pcm: interleaved samples, FrameSamples() * Channels() of them, each
// occupying bitDepth/8 bytes. bitDepth selects the layout: 16, 24
// (packed 3-byte), or 32.
// out: output buffer; its length is the total byte budget for the frame
// and must split into per-channel budgets of 20 to 400 bytes.
//
// On success exactly len(out) bytes are written.
func (e *Encoder) Encode(pcm []byte, bitDepth int, out []byte) error {
	if err := e.ready(); err != nil {
		return err
	}
	nc := len(e.channels)
	switch bitDepth {
	case 16, 24, 32:
	default:
		return ErrInvalidBitDepth
	}
	if len(pcm) != (bitDepth/8)*e.cfg.NF*nc {
		return ErrInvalidFrameSize
	}
	for ch := 0; ch < nc; ch++ {
		switch bitDepth {
		case 16:
			pcm16BytesToFloat(e.scratch[ch], pcm, ch, nc)
		case 24:
			pcm24ToFloat(e.scratch[ch], pcm, ch, nc)
		case 32:
			pcm32BytesToFloat(e.scratch[ch], pcm, ch, nc)
		}
	}
	return e.encodeScratch(out)
}

// EncodeInt16 encodes one frame of interleaved 16-bit PCM samples.
//
// pcm length must be FrameSamples() * Channels(). See Encode for the
// output contract.
func (e *Encoder) EncodeInt16(pcm []int16, out []byte) error {
	if err := e.ready(); err != nil {
		return err
	}
	nc := len(e.channels)
	if len(pcm) != e.cfg.NF*nc {
		return ErrInvalidFrameSize
	}
	for ch := 0; ch < nc; ch++ {
		pcm16ToFloat(e.scratch[ch], pcm, ch, nc)
	}
	return e.encodeScratch(out)
}

// EncodeInt32 encodes one frame of interleaved 32-bit PCM samples.
func (e *Encoder) EncodeInt32(pcm []int32, out []byte) error {
	if err := e.ready(); err != nil {
		return err
	}
	nc := len(e.channels)
	if len(pcm) != e.cfg.NF*nc {
		return ErrInvalidFrameSize
	}
	for ch := 0; ch < nc; ch++ {
		pcm32ToFloat(e.scratch[ch], pcm, ch, nc)
	}
	return e.encodeScratch(out)
}

// EncodeInt24In32 encodes one frame of interleaved 24-bit samples carried
// in the low 24 bits of int32 values. The top byte is ignored.
func (e *Encoder) EncodeInt24In32(pcm []int32, out []byte) error {
	if err := e.ready(); err != nil {
		return err
	}
	nc := len(e.channels)
	if len(pcm) != e.cfg.NF*nc {
		return ErrInvalidFrameSize
	}
	for ch := 0; ch < nc; ch++ {
		pcm24In32ToFloat(e.scratch[ch], pcm, ch, nc)
	}
	return e.encodeScratch(out)
}

// EncodeFloat32 encodes one frame of interleaved float32 samples in the
// range -1 to 1.
func (e *Encoder) EncodeFloat32(pcm []float32, out []byte) error {
	if err := e.ready(); err != nil {
		return err
	}
	nc := len(e.channels)
	if len(pcm) != e.cfg.NF*nc {
		return ErrInvalidFrameSize
	}
	for ch := 0; ch < nc; ch++ {
		pcmFloat32ToFloat(e.scratch[ch], pcm, ch, nc)
	}
	return e.encodeScratch(out)
}

// EncodePlanar encodes one frame given per-channel sample slices at the
// codec's internal scale of -32768 to 32768. This is the zero-conversion
// entry point for callers that already hold deinterleaved float data.
func (e *Encoder) EncodePlanar(pcm [][]float64, out []byte) error {
	if err := e.ready(); err != nil {
		return err
	}
	if len(pcm) != len(e.channels) {
		return ErrInvalidFrameSize
	}
	for _, x := range pcm {
		if len(x) != e.cfg.NF {
			return ErrInvalidFrameSize
		}
	}
	if err := splitBudget(e.budgets, len(out)); err != nil {
		return err
	}
	off := 0
	for ch, x := range pcm {
		b := e.budgets[ch]
		if err := e.channels[ch].Encode(x, out[off:off+b]); err != nil {
			return err
		}
		off += b
	}
	e.frames++
	return nil
}

// encodeScratch serializes the deinterleaved frame in e.scratch.
func (e *Encoder) encodeScratch(out []byte) error {
	if err := splitBudget(e.budgets, len(out)); err != nil {
		return err
	}
	off := 0
	for ch := range e.channels {
		b := e.budgets[ch]
		if err := e.channels[ch].Encode(e.scratch[ch], out[off:off+b]); err != nil {
			return err
		}
		off += b
	}
	e.frames++
	return nil
}

// ready reports whether the encoder was built by NewEncoder.
func (e *Encoder) ready() error {
	if e.cfg == nil {
		return ErrInvalidConfiguration
	}
	for _, ch := range e.channels {
		if ch == nil {
			return ErrNotInitialized
		}
	}
	return nil
}

// SetBitrate sets the sizing default from a total bitrate in bits per
// second across all channels.
//
// Returns ErrInvalidBitrate if the per-channel byte budget leaves the
// 20 to 400 range. The budget takes effect through FrameBytes; individual
// Encode calls may still choose any valid output length.
func (e *Encoder) SetBitrate(bitrate int) error {
	if e.cfg == nil {
		return ErrInvalidConfiguration
	}
	n := e.cfg.ByteCountFromBitrate(bitrate / len(e.channels))
	if n < encoder.MinFrameBytes || n > encoder.MaxFrameBytes {
		return ErrInvalidBitrate
	}
	e.bytesPerChannel = n
	return nil
}

// Bitrate returns the total bitrate in bits per second implied by the
// current per-channel byte budget, or 0 if none was set.
func (e *Encoder) Bitrate() int {
	if e.cfg == nil || e.bytesPerChannel == 0 {
		return 0
	}
	return e.cfg.BitrateFromByteCount(e.bytesPerChannel) * len(e.channels)
}

// SetBytesPerChannel sets the sizing default directly.
//
// Valid values are 20 to 400. Values well below 40 typically give rather
// poor audio quality.
func (e *Encoder) SetBytesPerChannel(n int) error {
	if n < encoder.MinFrameBytes || n > encoder.MaxFrameBytes {
		return ErrInvalidByteCount
	}
	e.bytesPerChannel = n
	return nil
}

// BytesPerChannel returns the current per-channel sizing default, or 0 if
// none was set.
func (e *Encoder) BytesPerChannel() int {
	return e.bytesPerChannel
}

// FrameBytes returns the total output length implied by the current
// sizing default, or 0 if none was set. Size Encode output buffers with
// it:
//
//	out := make([]byte, enc.FrameBytes())
func (e *Encoder) FrameBytes() int {
	return e.bytesPerChannel * len(e.channels)
}

// FrameSamples returns the number of samples per channel in one frame.
func (e *Encoder) FrameSamples() int {
	if e.cfg == nil {
		return 0
	}
	return e.cfg.NF
}

// SampleRate returns the sample rate in Hz.
func (e *Encoder) SampleRate() int {
	if e.cfg == nil {
		return 0
	}
	return e.cfg.Fs
}

// Channels returns the number of audio channels.
func (e *Encoder) Channels() int {
	return len(e.channels)
}

// Duration returns the frame interval.
func (e *Encoder) Duration() FrameDuration {
	return e.duration
}

// FrameCount returns the number of frames encoded since creation or the
// last Reset.
func (e *Encoder) FrameCount() uint64 {
	return e.frames
}

// Reset clears the encoder state for a new stream without reallocating.
// Call this when starting to encode a new audio stream.
func (e *Encoder) Reset() {
	for _, ch := range e.channels {
		if ch != nil {
			ch.Reset()
		}
	}
	e.frames = 0
}
