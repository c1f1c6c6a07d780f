// Package types defines shared types used across golc3 packages.
// This package exists to break import cycles between the root golc3 package
// and internal packages.
package types

// Bandwidth represents the detected audio bandwidth of a frame.
type Bandwidth uint8

const (
	BandwidthNarrowband        Bandwidth = iota // 4kHz audio, 8kHz cutoff
	BandwidthWideband                           // 8kHz audio, 16kHz cutoff
	BandwidthSemiSuperwideband                  // 12kHz audio, 24kHz cutoff
	BandwidthSuperwideband                      // 16kHz audio, 32kHz cutoff
	BandwidthFullband                           // 20kHz audio, 48kHz sample rate
)

// String returns the conventional short name of the bandwidth.
func (b Bandwidth) String() string {
	switch b {
	case BandwidthNarrowband:
		return "NB"
	case BandwidthWideband:
		return "WB"
	case BandwidthSemiSuperwideband:
		return "SSWB"
	case BandwidthSuperwideband:
		return "SWB"
	case BandwidthFullband:
		return "FB"
	}
	return "unknown"
}

// FrameDuration represents the frame interval in tenths of a millisecond,
// so both supported intervals stay integral.
type FrameDuration uint16

const (
	FrameDuration7p5ms FrameDuration = 75  // 7.5 ms frames
	FrameDuration10ms  FrameDuration = 100 // 10 ms frames
)

// Milliseconds returns the frame interval in milliseconds.
func (d FrameDuration) Milliseconds() float64 {
	return float64(d) / 10
}

// String returns the frame interval formatted for humans.
func (d FrameDuration) String() string {
	switch d {
	case FrameDuration7p5ms:
		return "7.5ms"
	case FrameDuration10ms:
		return "10ms"
	}
	return "unknown"
}
