package commands

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// wavAudio holds PCM decoded from an input file.
type wavAudio struct {
	sampleRate int
	channels   int
	bitDepth   int

	// samples are interleaved, normalized to [-1, 1).
	samples []float64
}

const (
	wavFormatPCM   = 1
	wavFormatFloat = 3
)

// readWav parses a RIFF/WAVE stream. Only uncompressed integer PCM
// (16/24/32-bit) and 32-bit float data are accepted; other chunks are
// skipped.
func readWav(r io.Reader) (*wavAudio, error) {
	var riff [12]byte
	if _, err := io.ReadFull(r, riff[:]); err != nil {
		return nil, fmt.Errorf("read RIFF header: %w", err)
	}
	if string(riff[0:4]) != "RIFF" || string(riff[8:12]) != "WAVE" {
		return nil, fmt.Errorf("not a RIFF/WAVE file")
	}

	var (
		format     uint16
		channels   int
		sampleRate int
		bitDepth   int
		haveFmt    bool
	)

	for {
		var chunk [8]byte
		if _, err := io.ReadFull(r, chunk[:]); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return nil, fmt.Errorf("no data chunk")
			}
			return nil, err
		}
		id := string(chunk[0:4])
		size := int64(binary.LittleEndian.Uint32(chunk[4:8]))

		switch id {
		case "fmt ":
			if size < 16 {
				return nil, fmt.Errorf("fmt chunk too short: %d bytes", size)
			}
			raw := make([]byte, size)
			if _, err := io.ReadFull(r, raw); err != nil {
				return nil, fmt.Errorf("read fmt chunk: %w", err)
			}
			format = binary.LittleEndian.Uint16(raw[0:2])
			channels = int(binary.LittleEndian.Uint16(raw[2:4]))
			sampleRate = int(binary.LittleEndian.Uint32(raw[4:8]))
			bitDepth = int(binary.LittleEndian.Uint16(raw[14:16]))
			haveFmt = true

		case "data":
			if !haveFmt {
				return nil, fmt.Errorf("data chunk before fmt chunk")
			}
			if channels < 1 || sampleRate <= 0 {
				return nil, fmt.Errorf("invalid format: %d channels at %d Hz", channels, sampleRate)
			}
			data := make([]byte, size)
			if _, err := io.ReadFull(r, data); err != nil {
				return nil, fmt.Errorf("read data chunk: %w", err)
			}
			samples, err := decodeWavSamples(data, format, bitDepth)
			if err != nil {
				return nil, err
			}
			return &wavAudio{
				sampleRate: sampleRate,
				channels:   channels,
				bitDepth:   bitDepth,
				samples:    samples,
			}, nil

		default:
			// Chunks are word-aligned.
			if size%2 == 1 {
				size++
			}
			if _, err := io.CopyN(io.Discard, r, size); err != nil {
				return nil, fmt.Errorf("skip %q chunk: %w", id, err)
			}
		}
	}
}

func decodeWavSamples(data []byte, format uint16, bitDepth int) ([]float64, error) {
	switch {
	case format == wavFormatPCM && bitDepth == 16:
		n := len(data) / 2
		out := make([]float64, n)
		for i := 0; i < n; i++ {
			v := int16(binary.LittleEndian.Uint16(data[i*2:]))
			out[i] = float64(v) / 32768.0
		}
		return out, nil

	case format == wavFormatPCM && bitDepth == 24:
		n := len(data) / 3
		out := make([]float64, n)
		for i := 0; i < n; i++ {
			v := int32(uint32(data[i*3])<<8|uint32(data[i*3+1])<<16|uint32(data[i*3+2])<<24) >> 8
			out[i] = float64(v) / 8388608.0
		}
		return out, nil

	case format == wavFormatPCM && bitDepth == 32:
		n := len(data) / 4
		out := make([]float64, n)
		for i := 0; i < n; i++ {
			v := int32(binary.LittleEndian.Uint32(data[i*4:]))
			out[i] = float64(v) / 2147483648.0
		}
		return out, nil

	case format == wavFormatFloat && bitDepth == 32:
		n := len(data) / 4
		out := make([]float64, n)
		for i := 0; i < n; i++ {
			out[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:])))
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported WAV encoding: format %d, %d-bit", format, bitDepth)
}
