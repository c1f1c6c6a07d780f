// errors.go defines public error types for the golc3 package.

package golc3

import "errors"

// Public error types for encoding operations.
var (
	// ErrInvalidSampleRate indicates an unsupported sample rate.
	// Valid sample rates are: 8000, 16000, 24000, 32000, 44100, 48000.
	ErrInvalidSampleRate = errors.New("golc3: invalid sample rate (must be 8000, 16000, 24000, 32000, 44100, or 48000)")

	// ErrInvalidChannels indicates an unsupported channel count.
	// Valid channel counts are 1 to 8.
	ErrInvalidChannels = errors.New("golc3: invalid channels (must be 1-8)")

	// ErrInvalidFrameDuration indicates an unsupported frame interval.
	// Valid durations are FrameDuration10ms and FrameDuration7p5ms.
	ErrInvalidFrameDuration = errors.New("golc3: invalid frame duration")

	// ErrInvalidFrameSize indicates the input slice does not hold exactly
	// one frame. The PCM input length must be FrameSamples() * Channels()
	// samples (times the byte width for raw input).
	ErrInvalidFrameSize = errors.New("golc3: invalid frame size")

	// ErrInvalidByteCount indicates a frame byte budget whose per-channel
	// share falls outside 20 to 400 bytes.
	ErrInvalidByteCount = errors.New("golc3: invalid byte count (must be 20-400 per channel)")

	// ErrInvalidBitDepth indicates an unsupported PCM sample width.
	// Valid bit depths are 16, 24 (packed), and 32.
	ErrInvalidBitDepth = errors.New("golc3: invalid bit depth (must be 16, 24, or 32)")

	// ErrInvalidBitrate indicates a bitrate whose per-channel byte budget
	// falls outside 20 to 400 bytes per frame.
	ErrInvalidBitrate = errors.New("golc3: invalid bitrate")

	// ErrInvalidConfiguration indicates the encoder carries no valid
	// session configuration. A zero-value Encoder reports this; construct
	// encoders with NewEncoder.
	ErrInvalidConfiguration = errors.New("golc3: invalid configuration")

	// ErrNotInitialized indicates a channel state is missing.
	ErrNotInitialized = errors.New("golc3: encoder not initialized")
)
