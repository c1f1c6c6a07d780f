package encoder

import (
	"errors"
	"math"

	"github.com/thesyncim/golc3/internal/types"
)

// Errors shared by the configuration and the per-channel pipeline.
var (
	// ErrInvalidSampleRate indicates an unsupported sample rate.
	ErrInvalidSampleRate = errors.New("encoder: invalid sample rate (must be 8000, 16000, 24000, 32000, 44100, or 48000)")

	// ErrInvalidFrameDuration indicates an unsupported frame interval.
	ErrInvalidFrameDuration = errors.New("encoder: invalid frame duration (must be 10ms or 7.5ms)")

	// ErrInvalidByteCount indicates a frame byte budget outside [20, 400].
	ErrInvalidByteCount = errors.New("encoder: frame byte count out of range [20, 400]")

	// ErrFrameLength indicates an input slice that does not hold exactly
	// one frame of samples.
	ErrFrameLength = errors.New("encoder: input does not hold one full frame")
)

// Frame byte budget limits, per channel.
const (
	MinFrameBytes = 20
	MaxFrameBytes = 400
)

// Config holds the immutable per-session parameters derived from the sample
// rate and frame duration. Every per-channel buffer is sized from it.
type Config struct {
	Fs       int                 // Sample rate in Hz
	FsInd    int                 // Sample rate index 0..4 (44.1kHz shares index 4)
	Duration types.FrameDuration // Frame interval
	NF       int                 // Samples per frame
	NE       int                 // Spectral coefficients carried to quantization
	Z        int                 // Trailing zeros of the conceptual 2*NF window
	NB       int                 // Number of energy bands
	IFs      []int               // Band edges: NB+1 monotone indices into the spectrum
}

// Frame lengths per sample rate index.
var (
	frameLen10ms = [5]int{80, 160, 240, 320, 480}
	frameLen7p5  = [5]int{60, 120, 180, 240, 360}
)

// NewConfig validates fs and duration and derives the frame geometry.
func NewConfig(fs int, duration types.FrameDuration) (*Config, error) {
	var fsInd int
	switch fs {
	case 8000:
		fsInd = 0
	case 16000:
		fsInd = 1
	case 24000:
		fsInd = 2
	case 32000:
		fsInd = 3
	case 44100, 48000:
		fsInd = 4
	default:
		return nil, ErrInvalidSampleRate
	}

	c := &Config{
		Fs:       fs,
		FsInd:    fsInd,
		Duration: duration,
		NB:       64,
	}

	switch duration {
	case types.FrameDuration10ms:
		c.NF = frameLen10ms[fsInd]
		c.Z = 3 * c.NF / 8
	case types.FrameDuration7p5ms:
		c.NF = frameLen7p5[fsInd]
		c.Z = 7 * c.NF / 30
		if fsInd == 0 {
			// 60 coefficients cannot carry 64 distinct bands.
			c.NB = 60
		}
	default:
		return nil, ErrInvalidFrameDuration
	}

	c.NE = c.NF
	if c.NF == 480 {
		c.NE = 400
	} else if c.NF == 360 {
		c.NE = 300
	}

	c.IFs = bandEdges(fs, c.NF, c.NE, c.NB)
	return c, nil
}

// ByteCountFromBitrate converts a bitrate in bits per second to the frame
// byte budget for one channel. 44.1kHz sessions stretch the effective frame
// interval to the 48kHz grid.
func (c *Config) ByteCountFromBitrate(bitrate int) int {
	return int(math.Floor(float64(bitrate) * c.Duration.Milliseconds() * c.frameScale() / 8000))
}

// BitrateFromByteCount converts a frame byte budget for one channel back to
// the bitrate in bits per second.
func (c *Config) BitrateFromByteCount(nbytes int) int {
	return int(math.Ceil(8000 * float64(nbytes) / (c.Duration.Milliseconds() * c.frameScale())))
}

func (c *Config) frameScale() float64 {
	if c.Fs == 44100 {
		return 48000.0 / 44100.0
	}
	return 1
}

// bark maps a frequency in Hz onto the Bark psychoacoustic scale.
func bark(f float64) float64 {
	return 13*math.Atan(0.00076*f) + 3.5*math.Atan((f/7500)*(f/7500))
}

// invBark inverts bark by bisection; bark is strictly increasing.
func invBark(target float64) float64 {
	lo, hi := 0.0, 24000.0
	for i := 0; i < 40; i++ {
		mid := (lo + hi) / 2
		if bark(mid) < target {
			lo = mid
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2
}

// bandEdges derives the nb+1 band edge indices: equal Bark spacing over the
// coded spectrum, a minimum width of one coefficient, and exact endpoints 0
// and ne. Narrowband configurations degenerate to mostly single-coefficient
// bands, widening toward the top as the Bark scale flattens.
func bandEdges(fs, nf, ne, nb int) []int {
	df := float64(fs) / float64(2*nf)
	top := bark(float64(ne) * df)

	edges := make([]int, nb+1)
	for b := 1; b <= nb; b++ {
		f := invBark(top * float64(b) / float64(nb))
		e := int(math.Round(f / df))
		if e <= edges[b-1] {
			e = edges[b-1] + 1
		}
		edges[b] = e
	}

	// Pin the top edge and restore strict monotonicity below it.
	edges[nb] = ne
	for b := nb - 1; b >= 1; b-- {
		if edges[b] >= edges[b+1] {
			edges[b] = edges[b+1] - 1
		}
	}
	return edges
}
