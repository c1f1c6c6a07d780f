// Package golc3 implements an LC3 (Low Complexity Communication Codec)
// audio encoder in pure Go.
//
// LC3 is the codec behind Bluetooth LE Audio. It encodes speech and music
// at sampling rates from 8 to 48 kHz in frames of 10 or 7.5 ms, with the
// compressed size of every frame chosen freely between 20 and 400 bytes
// per channel, even from one frame to the next. This implementation
// follows the Bluetooth SIG LC3 specification and requires no cgo
// dependencies.
//
// # Frames
//
// The encoder consumes fixed-length frames. The frame length in samples
// depends on the sample rate and duration and is available from
// Encoder.FrameSamples. Each call produces exactly len(out) bytes; the
// output length is the bit budget. Use Encoder.SetBitrate or
// Encoder.SetBytesPerChannel together with Encoder.FrameBytes to size the
// output for a target rate.
//
// # Channels
//
// Multi-channel audio is encoded as independent single-channel streams
// concatenated per frame, with the byte budget split evenly and any
// remainder going to the leading channels. An Encoder instance maintains
// internal state and is not safe for concurrent use.
package golc3
