package commands

import (
	"bytes"
	"encoding/binary"
	"math"
	"strings"
	"testing"
)

// buildWav assembles a RIFF/WAVE stream from a fmt description and raw
// sample data, with optional extra chunks before data.
func buildWav(format uint16, bitDepth, rate, channels int, data []byte, extra ...[]byte) []byte {
	var fmtChunk bytes.Buffer
	binary.Write(&fmtChunk, binary.LittleEndian, format)
	binary.Write(&fmtChunk, binary.LittleEndian, uint16(channels))
	binary.Write(&fmtChunk, binary.LittleEndian, uint32(rate))
	binary.Write(&fmtChunk, binary.LittleEndian, uint32(rate*channels*bitDepth/8))
	binary.Write(&fmtChunk, binary.LittleEndian, uint16(channels*bitDepth/8))
	binary.Write(&fmtChunk, binary.LittleEndian, uint16(bitDepth))

	var body bytes.Buffer
	body.WriteString("WAVE")
	writeChunk := func(id string, payload []byte) {
		body.WriteString(id)
		binary.Write(&body, binary.LittleEndian, uint32(len(payload)))
		body.Write(payload)
		if len(payload)%2 == 1 {
			body.WriteByte(0)
		}
	}
	writeChunk("fmt ", fmtChunk.Bytes())
	for _, e := range extra {
		writeChunk("LIST", e)
	}
	writeChunk("data", data)

	var out bytes.Buffer
	out.WriteString("RIFF")
	binary.Write(&out, binary.LittleEndian, uint32(body.Len()))
	out.Write(body.Bytes())
	return out.Bytes()
}

func TestReadWav16(t *testing.T) {
	pcm := make([]byte, 8)
	binary.LittleEndian.PutUint16(pcm[0:], uint16(int16(16384)))
	negFull := int16(-32768)
	binary.LittleEndian.PutUint16(pcm[2:], uint16(negFull))
	binary.LittleEndian.PutUint16(pcm[4:], uint16(int16(0)))
	negHalf := int16(-16384)
	binary.LittleEndian.PutUint16(pcm[6:], uint16(negHalf))

	// Odd-sized LIST chunk exercises the word-alignment skip.
	raw := buildWav(wavFormatPCM, 16, 48000, 2, pcm, []byte("INFOxyz"))
	a, err := readWav(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("readWav: %v", err)
	}
	if a.sampleRate != 48000 || a.channels != 2 || a.bitDepth != 16 {
		t.Fatalf("format = %d Hz %dch %d-bit, want 48000 Hz 2ch 16-bit",
			a.sampleRate, a.channels, a.bitDepth)
	}
	want := []float64{0.5, -1.0, 0.0, -0.5}
	if len(a.samples) != len(want) {
		t.Fatalf("len(samples) = %d, want %d", len(a.samples), len(want))
	}
	for i, w := range want {
		if a.samples[i] != w {
			t.Errorf("samples[%d] = %v, want %v", i, a.samples[i], w)
		}
	}
}

func TestReadWav24(t *testing.T) {
	// 0x400000 = +2^22 and 0xFFFFFF = -1 in 24-bit two's complement.
	pcm := []byte{0x00, 0x00, 0x40, 0xFF, 0xFF, 0xFF}
	raw := buildWav(wavFormatPCM, 24, 16000, 1, pcm)
	a, err := readWav(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("readWav: %v", err)
	}
	want := []float64{0.5, -1.0 / 8388608.0}
	for i, w := range want {
		if a.samples[i] != w {
			t.Errorf("samples[%d] = %v, want %v", i, a.samples[i], w)
		}
	}
}

func TestReadWav32(t *testing.T) {
	pcm := make([]byte, 4)
	binary.LittleEndian.PutUint32(pcm, uint32(int32(1<<30)))
	raw := buildWav(wavFormatPCM, 32, 8000, 1, pcm)
	a, err := readWav(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("readWav: %v", err)
	}
	if got := a.samples[0]; got != 0.5 {
		t.Fatalf("samples[0] = %v, want 0.5", got)
	}
}

func TestReadWavFloat(t *testing.T) {
	pcm := make([]byte, 8)
	binary.LittleEndian.PutUint32(pcm[0:], math.Float32bits(0.25))
	binary.LittleEndian.PutUint32(pcm[4:], math.Float32bits(-1.0))
	raw := buildWav(wavFormatFloat, 32, 44100, 1, pcm)
	a, err := readWav(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("readWav: %v", err)
	}
	want := []float64{0.25, -1.0}
	for i, w := range want {
		if a.samples[i] != w {
			t.Errorf("samples[%d] = %v, want %v", i, a.samples[i], w)
		}
	}
}

func TestReadWavErrors(t *testing.T) {
	valid := buildWav(wavFormatPCM, 16, 48000, 1, make([]byte, 4))

	tests := []struct {
		name string
		raw  []byte
	}{
		{"not_riff", []byte("OggS....12345678")},
		{"truncated_header", valid[:8]},
		{"no_data_chunk", valid[:12]},
		{"truncated_data", valid[:len(valid)-2]},
		{"unsupported_8bit", buildWav(wavFormatPCM, 8, 48000, 1, make([]byte, 4))},
		{"unsupported_alaw", buildWav(6, 16, 48000, 1, make([]byte, 4))},
		{"zero_channels", buildWav(wavFormatPCM, 16, 48000, 0, make([]byte, 4))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := readWav(bytes.NewReader(tt.raw)); err == nil {
				t.Fatal("readWav succeeded, want error")
			}
		})
	}
}

func TestReadWavDataBeforeFmt(t *testing.T) {
	var body bytes.Buffer
	body.WriteString("WAVE")
	body.WriteString("data")
	binary.Write(&body, binary.LittleEndian, uint32(4))
	body.Write(make([]byte, 4))

	var raw bytes.Buffer
	raw.WriteString("RIFF")
	binary.Write(&raw, binary.LittleEndian, uint32(body.Len()))
	raw.Write(body.Bytes())

	_, err := readWav(bytes.NewReader(raw.Bytes()))
	if err == nil || !strings.Contains(err.Error(), "before fmt") {
		t.Fatalf("err = %v, want data-before-fmt error", err)
	}
}
