package rangecoding

import (
	"bytes"
	"math/rand"
	"testing"
)

// Round-trip tests verify that a frame written by Encoder decodes to the
// identical symbol and side-bit sequence, including the symbols that only
// become decodable through the finalization tail bits.

// encodeDecodeSymbols writes syms with the given model plus sideVal in
// sideBits backward, then decodes everything back.
func encodeDecodeSymbols(t *testing.T, nbytes int, cum, freq []uint16, syms []int, sideVal uint32, sideBits int) {
	t.Helper()

	buf := make([]byte, nbytes)
	enc := &Encoder{}
	enc.Init(buf)
	enc.WriteUIntBackward(sideVal, sideBits)
	for _, s := range syms {
		enc.Encode(uint32(cum[s]), uint32(freq[s]))
	}
	enc.Done()
	if enc.Error() != 0 {
		t.Fatalf("encoder error %d (side %d bits, forecast %d bits, frame %d bits)",
			enc.Error(), enc.SideBitsWritten(), enc.ArithBitsForecast(), 8*nbytes)
	}

	dec := &Decoder{}
	dec.Init(buf)
	if got := dec.ReadUIntBackward(sideBits); got != sideVal {
		t.Fatalf("side value = %#x, want %#x", got, sideVal)
	}
	for i, want := range syms {
		if got := dec.Decode(cum, freq); got != want {
			t.Fatalf("symbol %d = %d, want %d", i, got, want)
		}
	}
	if dec.Error() != 0 {
		t.Fatalf("decoder error %d", dec.Error())
	}
}

// TestRoundTripUniform tests a two-symbol equiprobable model.
func TestRoundTripUniform(t *testing.T) {
	cum := []uint16{0, 512}
	freq := []uint16{512, 512}

	rng := rand.New(rand.NewSource(1))
	syms := make([]int, 64)
	for i := range syms {
		syms[i] = rng.Intn(2)
	}
	encodeDecodeSymbols(t, 24, cum, freq, syms, 0x155, 10)
}

// TestRoundTripSkewed tests a heavily skewed model, which exercises the
// carry and 0xFF-run paths of the byte flusher.
func TestRoundTripSkewed(t *testing.T) {
	cum := []uint16{0, 1016}
	freq := []uint16{1016, 8}

	syms := make([]int, 200)
	for i := range syms {
		if i%7 == 0 {
			syms[i] = 1
		}
	}
	encodeDecodeSymbols(t, 60, cum, freq, syms, 0, 0)
}

// TestRoundTripSpectralModel tests a 17-symbol model shaped like the
// spectral coding tables: sixteen value symbols plus one escape symbol.
func TestRoundTripSpectralModel(t *testing.T) {
	freq := make([]uint16, 17)
	cum := make([]uint16, 17)
	var total uint16
	for i := 0; i < 16; i++ {
		freq[i] = 37
		cum[i] = total
		total += 37
	}
	freq[16] = 1024 - total
	cum[16] = total

	rng := rand.New(rand.NewSource(7))
	syms := make([]int, 120)
	for i := range syms {
		syms[i] = rng.Intn(17)
	}
	encodeDecodeSymbols(t, 200, cum, freq, syms, 0x3f, 6)
}

// TestRoundTripInterleaved tests side bits written between arithmetic
// symbols, the way sign and LSB bits interleave with spectral coding.
func TestRoundTripInterleaved(t *testing.T) {
	cum := []uint16{0, 256, 640}
	freq := []uint16{256, 384, 384}

	buf := make([]byte, 48)
	enc := &Encoder{}
	enc.Init(buf)

	syms := []int{0, 2, 1, 1, 0, 2, 2, 1, 0, 0, 1, 2}
	signs := []uint8{1, 0, 1, 1, 0, 0, 1, 0, 1, 1, 0, 1}
	for i, s := range syms {
		enc.Encode(uint32(cum[s]), uint32(freq[s]))
		enc.WriteBitBackward(signs[i])
	}
	enc.Done()
	if enc.Error() != 0 {
		t.Fatalf("encoder error %d", enc.Error())
	}

	dec := &Decoder{}
	dec.Init(buf)
	for i, want := range syms {
		if got := dec.Decode(cum, freq); got != want {
			t.Fatalf("symbol %d = %d, want %d", i, got, want)
		}
		if got := dec.ReadBitBackward(); got != signs[i] {
			t.Fatalf("sign %d = %d, want %d", i, got, signs[i])
		}
	}
}

// TestRoundTripDeterministic tests that identical input produces identical
// frames across independent encoder instances.
func TestRoundTripDeterministic(t *testing.T) {
	cum := []uint16{0, 300, 700}
	freq := []uint16{300, 400, 324}

	frame := func() []byte {
		buf := make([]byte, 32)
		enc := &Encoder{}
		enc.Init(buf)
		enc.WriteUIntBackward(0x5a, 7)
		for i := 0; i < 40; i++ {
			enc.Encode(uint32(cum[i%3]), uint32(freq[i%3]))
		}
		return enc.Done()
	}

	a := frame()
	b := frame()
	if !bytes.Equal(a, b) {
		t.Errorf("frames differ:\n a = %x\n b = %x", a, b)
	}
}

// TestRoundTripTightBudget tests a frame sized close to the exact bit cost
// of its contents, so the cursors approach without colliding.
func TestRoundTripTightBudget(t *testing.T) {
	cum := []uint16{0, 512}
	freq := []uint16{512, 512}

	syms := make([]int, 40)
	for i := range syms {
		syms[i] = (i / 3) % 2
	}
	// 40 one-bit symbols plus 16 side bits plus finalization slack.
	encodeDecodeSymbols(t, 10, cum, freq, syms, 0xbeef, 16)
}
