package golc3

import (
	"bytes"
	"errors"
	"math"
	"testing"
)

// sineInt16 generates an interleaved 16-bit sine wave test signal.
func sineInt16(sampleRate int, freq float64, samples, channels int) []int16 {
	pcm := make([]int16, samples*channels)
	for i := 0; i < samples; i++ {
		v := int16(9000 * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate)))
		for ch := 0; ch < channels; ch++ {
			pcm[i*channels+ch] = v
		}
	}
	return pcm
}

func TestNewEncoderValidParams(t *testing.T) {
	tests := []struct {
		name        string
		sampleRate  int
		channels    int
		duration    FrameDuration
		wantSamples int
	}{
		{"8kHz_mono_10ms", 8000, 1, FrameDuration10ms, 80},
		{"8kHz_mono_7.5ms", 8000, 1, FrameDuration7p5ms, 60},
		{"16kHz_mono_10ms", 16000, 1, FrameDuration10ms, 160},
		{"24kHz_stereo_10ms", 24000, 2, FrameDuration10ms, 240},
		{"32kHz_mono_7.5ms", 32000, 1, FrameDuration7p5ms, 240},
		{"44.1kHz_stereo_10ms", 44100, 2, FrameDuration10ms, 480},
		{"48kHz_mono_10ms", 48000, 1, FrameDuration10ms, 480},
		{"48kHz_stereo_7.5ms", 48000, 2, FrameDuration7p5ms, 360},
		{"48kHz_8ch_10ms", 48000, 8, FrameDuration10ms, 480},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc, err := NewEncoder(tt.sampleRate, tt.channels, tt.duration)
			if err != nil {
				t.Fatalf("NewEncoder: %v", err)
			}
			if got := enc.FrameSamples(); got != tt.wantSamples {
				t.Errorf("FrameSamples() = %d, want %d", got, tt.wantSamples)
			}
			if got := enc.SampleRate(); got != tt.sampleRate {
				t.Errorf("SampleRate() = %d, want %d", got, tt.sampleRate)
			}
			if got := enc.Channels(); got != tt.channels {
				t.Errorf("Channels() = %d, want %d", got, tt.channels)
			}
			if got := enc.Duration(); got != tt.duration {
				t.Errorf("Duration() = %v, want %v", got, tt.duration)
			}
		})
	}
}

func TestNewEncoderInvalidParams(t *testing.T) {
	tests := []struct {
		name       string
		sampleRate int
		channels   int
		duration   FrameDuration
		wantErr    error
	}{
		{"rate_11025", 11025, 1, FrameDuration10ms, ErrInvalidSampleRate},
		{"rate_12000", 12000, 1, FrameDuration10ms, ErrInvalidSampleRate},
		{"rate_zero", 0, 1, FrameDuration10ms, ErrInvalidSampleRate},
		{"channels_zero", 48000, 0, FrameDuration10ms, ErrInvalidChannels},
		{"channels_nine", 48000, 9, FrameDuration10ms, ErrInvalidChannels},
		{"bad_duration", 48000, 1, FrameDuration(5), ErrInvalidFrameDuration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewEncoder(tt.sampleRate, tt.channels, tt.duration); !errors.Is(err, tt.wantErr) {
				t.Errorf("NewEncoder() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestEncoderZeroValue(t *testing.T) {
	var e Encoder
	if err := e.EncodeInt16(nil, nil); !errors.Is(err, ErrInvalidConfiguration) {
		t.Errorf("Encode on zero value: err = %v, want %v", err, ErrInvalidConfiguration)
	}
	if e.FrameSamples() != 0 || e.SampleRate() != 0 || e.FrameBytes() != 0 {
		t.Error("zero-value accessors returned nonzero")
	}
}

func TestEncodeValidation(t *testing.T) {
	enc, err := NewEncoder(48000, 1, FrameDuration10ms)
	if err != nil {
		t.Fatal(err)
	}
	pcm := sineInt16(48000, 440, enc.FrameSamples(), 1)
	out := make([]byte, 80)

	if err := enc.EncodeInt16(pcm[:len(pcm)-1], out); !errors.Is(err, ErrInvalidFrameSize) {
		t.Errorf("short pcm: err = %v, want %v", err, ErrInvalidFrameSize)
	}
	if err := enc.EncodeInt16(pcm, make([]byte, 19)); !errors.Is(err, ErrInvalidByteCount) {
		t.Errorf("19 bytes: err = %v, want %v", err, ErrInvalidByteCount)
	}
	if err := enc.EncodeInt16(pcm, make([]byte, 401)); !errors.Is(err, ErrInvalidByteCount) {
		t.Errorf("401 bytes: err = %v, want %v", err, ErrInvalidByteCount)
	}
	if err := enc.Encode(make([]byte, 2*len(pcm)), 20, out); !errors.Is(err, ErrInvalidBitDepth) {
		t.Errorf("depth 20: err = %v, want %v", err, ErrInvalidBitDepth)
	}
	if err := enc.Encode(make([]byte, 2*len(pcm)-2), 16, out); !errors.Is(err, ErrInvalidFrameSize) {
		t.Errorf("short raw pcm: err = %v, want %v", err, ErrInvalidFrameSize)
	}

	stereo, err := NewEncoder(48000, 2, FrameDuration10ms)
	if err != nil {
		t.Fatal(err)
	}
	spcm := sineInt16(48000, 440, stereo.FrameSamples(), 2)
	if err := stereo.EncodeInt16(spcm, make([]byte, 39)); !errors.Is(err, ErrInvalidByteCount) {
		t.Errorf("stereo 39 bytes: err = %v, want %v", err, ErrInvalidByteCount)
	}
	if err := stereo.EncodeInt16(spcm, make([]byte, 40)); err != nil {
		t.Errorf("stereo 40 bytes: %v", err)
	}
}

func TestEncodeFrames(t *testing.T) {
	rates := []int{8000, 16000, 24000, 32000, 44100, 48000}
	for _, rate := range rates {
		for _, dur := range []FrameDuration{FrameDuration10ms, FrameDuration7p5ms} {
			enc, err := NewEncoder(rate, 1, dur)
			if err != nil {
				t.Fatalf("%d/%v: %v", rate, dur, err)
			}
			nf := enc.FrameSamples()
			out := make([]byte, 80)
			for frame := 0; frame < 5; frame++ {
				pcm := make([]int16, nf)
				for i := range pcm {
					n := frame*nf + i
					pcm[i] = int16(7000 * math.Sin(2*math.Pi*330*float64(n)/float64(rate)))
				}
				if err := enc.EncodeInt16(pcm, out); err != nil {
					t.Fatalf("%d/%v frame %d: %v", rate, dur, frame, err)
				}
			}
			if got := enc.FrameCount(); got != 5 {
				t.Errorf("%d/%v: FrameCount() = %d, want 5", rate, dur, got)
			}
			nonzero := false
			for _, b := range out {
				if b != 0 {
					nonzero = true
					break
				}
			}
			if !nonzero {
				t.Errorf("%d/%v: frame is all zero bytes", rate, dur)
			}
		}
	}
}

func TestEncodeDeterministic(t *testing.T) {
	pcm := sineInt16(48000, 220, 480, 1)

	run := func() [][]byte {
		enc, err := NewEncoder(48000, 1, FrameDuration10ms)
		if err != nil {
			t.Fatal(err)
		}
		var frames [][]byte
		for i := 0; i < 3; i++ {
			out := make([]byte, 100)
			if err := enc.EncodeInt16(pcm, out); err != nil {
				t.Fatal(err)
			}
			frames = append(frames, out)
		}
		return frames
	}

	a, b := run(), run()
	for i := range a {
		if !bytes.Equal(a[i], b[i]) {
			t.Errorf("frame %d differs between fresh encoders", i)
		}
	}
}

// TestEncodeStereoIndependence feeds both stereo channels the same signal
// and checks each half of the output matches a mono encoder run, for an
// even and an odd total budget.
func TestEncodeStereoIndependence(t *testing.T) {
	for _, total := range []int{160, 161} {
		stereo, err := NewEncoder(48000, 2, FrameDuration10ms)
		if err != nil {
			t.Fatal(err)
		}
		mono0, err := NewEncoder(48000, 1, FrameDuration10ms)
		if err != nil {
			t.Fatal(err)
		}
		mono1, err := NewEncoder(48000, 1, FrameDuration10ms)
		if err != nil {
			t.Fatal(err)
		}

		b0 := total/2 + total%2
		b1 := total / 2
		nf := stereo.FrameSamples()
		spcm := sineInt16(48000, 500, nf, 2)
		mpcm := sineInt16(48000, 500, nf, 1)

		sout := make([]byte, total)
		out0 := make([]byte, b0)
		out1 := make([]byte, b1)
		for frame := 0; frame < 3; frame++ {
			if err := stereo.EncodeInt16(spcm, sout); err != nil {
				t.Fatalf("total %d frame %d: %v", total, frame, err)
			}
			if err := mono0.EncodeInt16(mpcm, out0); err != nil {
				t.Fatal(err)
			}
			if err := mono1.EncodeInt16(mpcm, out1); err != nil {
				t.Fatal(err)
			}
			if !bytes.Equal(sout[:b0], out0) {
				t.Fatalf("total %d frame %d: channel 0 differs from mono", total, frame)
			}
			if !bytes.Equal(sout[b0:], out1) {
				t.Fatalf("total %d frame %d: channel 1 differs from mono", total, frame)
			}
		}
	}
}

func TestSetBitrate(t *testing.T) {
	enc, err := NewEncoder(48000, 1, FrameDuration10ms)
	if err != nil {
		t.Fatal(err)
	}
	if err := enc.SetBitrate(64000); err != nil {
		t.Fatalf("SetBitrate(64000): %v", err)
	}
	if got := enc.BytesPerChannel(); got != 80 {
		t.Errorf("BytesPerChannel() = %d, want 80", got)
	}
	if got := enc.Bitrate(); got != 64000 {
		t.Errorf("Bitrate() = %d, want 64000", got)
	}
	if err := enc.SetBitrate(1000); !errors.Is(err, ErrInvalidBitrate) {
		t.Errorf("SetBitrate(1000): err = %v, want %v", err, ErrInvalidBitrate)
	}
	if err := enc.SetBitrate(1000000); !errors.Is(err, ErrInvalidBitrate) {
		t.Errorf("SetBitrate(1000000): err = %v, want %v", err, ErrInvalidBitrate)
	}

	// 44.1kHz stretches the effective frame to the 48kHz grid.
	enc441, err := NewEncoder(44100, 1, FrameDuration10ms)
	if err != nil {
		t.Fatal(err)
	}
	if err := enc441.SetBitrate(64000); err != nil {
		t.Fatal(err)
	}
	if got := enc441.BytesPerChannel(); got != 87 {
		t.Errorf("44.1kHz BytesPerChannel() = %d, want 87", got)
	}
}

func TestSetBytesPerChannel(t *testing.T) {
	enc, err := NewEncoder(48000, 2, FrameDuration10ms)
	if err != nil {
		t.Fatal(err)
	}
	if err := enc.SetBytesPerChannel(19); !errors.Is(err, ErrInvalidByteCount) {
		t.Errorf("19: err = %v, want %v", err, ErrInvalidByteCount)
	}
	if err := enc.SetBytesPerChannel(401); !errors.Is(err, ErrInvalidByteCount) {
		t.Errorf("401: err = %v, want %v", err, ErrInvalidByteCount)
	}
	if err := enc.SetBytesPerChannel(120); err != nil {
		t.Fatalf("120: %v", err)
	}
	if got := enc.FrameBytes(); got != 240 {
		t.Errorf("FrameBytes() = %d, want 240", got)
	}
}

func TestEncoderReset(t *testing.T) {
	enc, err := NewEncoder(32000, 1, FrameDuration10ms)
	if err != nil {
		t.Fatal(err)
	}
	nf := enc.FrameSamples()
	input := make([][]int16, 4)
	for n := range input {
		input[n] = make([]int16, nf)
		for i := range input[n] {
			s := n*nf + i
			input[n][i] = int16(6000 * math.Sin(2*math.Pi*250*float64(s)/32000))
		}
	}

	first := make([][]byte, len(input))
	for n := range input {
		first[n] = make([]byte, 64)
		if err := enc.EncodeInt16(input[n], first[n]); err != nil {
			t.Fatalf("pass 1 frame %d: %v", n, err)
		}
	}
	enc.Reset()
	if got := enc.FrameCount(); got != 0 {
		t.Errorf("FrameCount() after Reset = %d, want 0", got)
	}
	out := make([]byte, 64)
	for n := range input {
		if err := enc.EncodeInt16(input[n], out); err != nil {
			t.Fatalf("pass 2 frame %d: %v", n, err)
		}
		if !bytes.Equal(out, first[n]) {
			t.Fatalf("frame %d differs after Reset", n)
		}
	}
}

func BenchmarkEncodeInt16(b *testing.B) {
	enc, err := NewEncoder(48000, 1, FrameDuration10ms)
	if err != nil {
		b.Fatal(err)
	}
	pcm := sineInt16(48000, 440, enc.FrameSamples(), 1)
	out := make([]byte, 100)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := enc.EncodeInt16(pcm, out); err != nil {
			b.Fatal(err)
		}
	}
}
