package commands

import (
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/hajimehoshi/go-mp3"
	"github.com/spf13/cobra"
	resampling "github.com/tphakala/go-audio-resampling"

	"github.com/thesyncim/golc3"
	"github.com/thesyncim/golc3/container/lc3"
)

// defaultBitrate is the per-channel bitrate used when neither --bitrate
// nor --frame-bytes is given.
const defaultBitrate = 64000

var (
	flagEncodeOutput     string
	flagEncodeBitrate    int
	flagEncodeFrameBytes int
	flagEncodeDuration   string
	flagEncodeRate       int
	flagEncodeProfile    string
)

var encodeCmd = &cobra.Command{
	Use:   "encode <input.wav|input.mp3>",
	Short: "Encode a WAV or MP3 file to a .lc3 file",
	Long: `Encode a WAV or MP3 file to a .lc3 file.

The bit budget is set with --bitrate (total bits per second across all
channels) or --frame-bytes (bytes per channel per frame, 20-400).
Defaults can also come from a YAML profile:

  bitrate: 96000
  frame_bytes: 0
  duration: 10ms
  sample_rate: 48000

Flags override profile values.`,
	Args: cobra.ExactArgs(1),
	RunE: runEncode,
}

func init() {
	encodeCmd.Flags().StringVarP(&flagEncodeOutput, "output", "o", "", "output file (default: input with .lc3 extension)")
	encodeCmd.Flags().IntVar(&flagEncodeBitrate, "bitrate", 0, "total bitrate in bit/s across channels")
	encodeCmd.Flags().IntVar(&flagEncodeFrameBytes, "frame-bytes", 0, "bytes per channel per frame (20-400, overrides --bitrate)")
	encodeCmd.Flags().StringVar(&flagEncodeDuration, "duration", "10ms", "frame duration (10ms or 7.5ms)")
	encodeCmd.Flags().IntVar(&flagEncodeRate, "rate", 0, "resample input to this rate before encoding")
	encodeCmd.Flags().StringVarP(&flagEncodeProfile, "profile", "f", "", "YAML encode profile")

	rootCmd.AddCommand(encodeCmd)
}

// encodeOptions mirrors the encode flags in a YAML profile.
type encodeOptions struct {
	Bitrate    int    `yaml:"bitrate"`
	FrameBytes int    `yaml:"frame_bytes"`
	Duration   string `yaml:"duration"`
	SampleRate int    `yaml:"sample_rate"`
}

// parseProfile decodes a YAML encode profile.
func parseProfile(data []byte) (*encodeOptions, error) {
	opts := &encodeOptions{}
	if err := yaml.Unmarshal(data, opts); err != nil {
		return nil, fmt.Errorf("parse profile: %w", err)
	}
	return opts, nil
}

// resolveEncodeOptions merges profile values and explicit flags, flags
// winning.
func resolveEncodeOptions(cmd *cobra.Command) (*encodeOptions, error) {
	opts := &encodeOptions{Duration: "10ms"}
	if flagEncodeProfile != "" {
		data, err := os.ReadFile(flagEncodeProfile)
		if err != nil {
			return nil, fmt.Errorf("read profile: %w", err)
		}
		opts, err = parseProfile(data)
		if err != nil {
			return nil, err
		}
		if opts.Duration == "" {
			opts.Duration = "10ms"
		}
	}
	if cmd.Flags().Changed("bitrate") {
		opts.Bitrate = flagEncodeBitrate
	}
	if cmd.Flags().Changed("frame-bytes") {
		opts.FrameBytes = flagEncodeFrameBytes
	}
	if cmd.Flags().Changed("duration") {
		opts.Duration = flagEncodeDuration
	}
	if cmd.Flags().Changed("rate") {
		opts.SampleRate = flagEncodeRate
	}
	return opts, nil
}

func runEncode(cmd *cobra.Command, args []string) error {
	opts, err := resolveEncodeOptions(cmd)
	if err != nil {
		return err
	}
	duration, err := parseFrameDuration(opts.Duration)
	if err != nil {
		return err
	}

	input := args[0]
	audio, err := loadAudio(input)
	if err != nil {
		return err
	}
	slog.Debug("loaded input", "path", input,
		"rate", audio.sampleRate, "channels", audio.channels,
		"samples", len(audio.samples)/audio.channels)

	if opts.SampleRate != 0 {
		if err := resampleAudio(audio, opts.SampleRate); err != nil {
			return err
		}
	}

	enc, err := golc3.NewEncoder(audio.sampleRate, audio.channels, duration)
	if err != nil {
		return fmt.Errorf("create encoder: %w (try --rate 48000)", err)
	}
	if err := applyBudget(enc, opts.Bitrate, opts.FrameBytes); err != nil {
		return err
	}

	output := flagEncodeOutput
	if output == "" {
		output = strings.TrimSuffix(input, filepath.Ext(input)) + ".lc3"
	}
	f, err := os.Create(output)
	if err != nil {
		return err
	}
	defer f.Close()

	total := len(audio.samples) / audio.channels
	w, err := lc3.NewWriter(f, lc3.Header{
		SampleRate:    audio.sampleRate,
		Bitrate:       enc.Bitrate(),
		Channels:      audio.channels,
		FrameDuration: containerDuration(duration),
		Samples:       uint32(total),
	})
	if err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	buf := make([]byte, enc.FrameBytes())
	src := newFrameSource(audio.samples, audio.channels, enc.FrameSamples())
	for {
		frame, ok := src.next()
		if !ok {
			break
		}
		if err := enc.EncodePlanar(frame, buf); err != nil {
			return fmt.Errorf("encode frame %d: %w", enc.FrameCount(), err)
		}
		if err := w.WriteFrame(buf); err != nil {
			return fmt.Errorf("write frame %d: %w", enc.FrameCount(), err)
		}
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", output, err)
	}

	fmt.Printf("Encoded %d samples to %s: %d frames, %d bytes per frame, %d bit/s\n",
		total, output, w.FrameCount(), enc.FrameBytes(), enc.Bitrate())
	return nil
}

// applyBudget configures the encoder byte budget: an explicit per-frame
// byte count wins over a bitrate.
func applyBudget(enc *golc3.Encoder, bitrate, frameBytes int) error {
	if frameBytes > 0 {
		if err := enc.SetBytesPerChannel(frameBytes); err != nil {
			return fmt.Errorf("frame bytes %d: %w", frameBytes, err)
		}
		return nil
	}
	if bitrate == 0 {
		bitrate = defaultBitrate * enc.Channels()
	}
	if err := enc.SetBitrate(bitrate); err != nil {
		return fmt.Errorf("bitrate %d: %w", bitrate, err)
	}
	return nil
}

func parseFrameDuration(s string) (golc3.FrameDuration, error) {
	switch s {
	case "10", "10ms":
		return golc3.FrameDuration10ms, nil
	case "7.5", "7.5ms", "7500us":
		return golc3.FrameDuration7p5ms, nil
	}
	return 0, fmt.Errorf("invalid frame duration %q (want 10ms or 7.5ms)", s)
}

// containerDuration maps an encoder frame duration to the container
// header representation.
func containerDuration(d golc3.FrameDuration) time.Duration {
	if d == golc3.FrameDuration7p5ms {
		return 7500 * time.Microsecond
	}
	return 10 * time.Millisecond
}

// loadAudio decodes a WAV or MP3 file into normalized interleaved PCM.
func loadAudio(path string) (*wavAudio, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".wav":
		a, err := readWav(f)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		return a, nil
	case ".mp3":
		a, err := decodeMP3(f)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		return a, nil
	default:
		return nil, fmt.Errorf("unsupported input format %q (want .wav or .mp3)", ext)
	}
}

// decodeMP3 decodes an entire MP3 stream. go-mp3 emits 16-bit
// little-endian stereo regardless of the source encoding.
func decodeMP3(r io.Reader) (*wavAudio, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("decode mp3: %w", err)
	}
	raw, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("decode mp3: %w", err)
	}

	n := len(raw) / 2
	samples := make([]float64, n)
	for i := 0; i < n; i++ {
		v := int16(binary.LittleEndian.Uint16(raw[i*2:]))
		samples[i] = float64(v) / 32768.0
	}
	return &wavAudio{
		sampleRate: dec.SampleRate(),
		channels:   2,
		bitDepth:   16,
		samples:    samples,
	}, nil
}

// resampleAudio converts a to the given rate in place.
func resampleAudio(a *wavAudio, rate int) error {
	if rate == a.sampleRate {
		return nil
	}
	rs, err := resampling.New(&resampling.Config{
		InputRate:  float64(a.sampleRate),
		OutputRate: float64(rate),
		Channels:   a.channels,
		Quality:    resampling.QualitySpec{Preset: resampling.QualityHigh},
	})
	if err != nil {
		return fmt.Errorf("create resampler: %w", err)
	}
	out, err := rs.Process(a.samples)
	if err != nil {
		return fmt.Errorf("resample %d Hz to %d Hz: %w", a.sampleRate, rate, err)
	}
	slog.Debug("resampled", "from", a.sampleRate, "to", rate,
		"in", len(a.samples)/a.channels, "out", len(out)/a.channels)

	// Keep whole sample frames only.
	a.samples = out[:len(out)/a.channels*a.channels]
	a.sampleRate = rate
	return nil
}

// frameSource cuts interleaved samples into planar frames scaled to the
// encoder's 16-bit float domain. The final frame is zero-padded.
type frameSource struct {
	samples  []float64
	channels int
	nf       int
	pos      int
	planar   [][]float64
}

func newFrameSource(samples []float64, channels, nf int) *frameSource {
	planar := make([][]float64, channels)
	for ch := range planar {
		planar[ch] = make([]float64, nf)
	}
	return &frameSource{samples: samples, channels: channels, nf: nf, planar: planar}
}

// next returns the planar buffers for the next frame, or false when the
// input is exhausted. The buffers are reused across calls.
func (s *frameSource) next() ([][]float64, bool) {
	total := len(s.samples) / s.channels
	if s.pos >= total {
		return nil, false
	}
	n := min(s.nf, total-s.pos)
	for ch := 0; ch < s.channels; ch++ {
		buf := s.planar[ch]
		for i := 0; i < n; i++ {
			buf[i] = s.samples[(s.pos+i)*s.channels+ch] * 32768.0
		}
		for i := n; i < s.nf; i++ {
			buf[i] = 0
		}
	}
	s.pos += n
	return s.planar, true
}

// rewind restarts the source from the first sample.
func (s *frameSource) rewind() {
	s.pos = 0
}
