package encoder

import (
	"bytes"
	"math"
	"math/rand"
	"testing"

	"github.com/thesyncim/golc3/internal/types"
)

// frameInputs bundles one frame's crafted stage outputs for writer tests.
type frameInputs struct {
	bw   types.Bandwidth
	sns  snsData
	tns  tnsData
	lt   ltpfData
	qd   quantData
	xq   []int
	fnf  int
	res  []uint8
	nres int
}

func writeTestFrame(t *testing.T, cfg *Config, nbytes int, in *frameInputs) []byte {
	t.Helper()
	w := newFrameWriter(cfg)
	buf := make([]byte, nbytes)
	if err := w.run(cfg, buf, in.bw, &in.sns, &in.tns, in.lt, in.qd, in.xq, in.fnf, in.res, in.nres); err != nil {
		t.Fatalf("write: %v", err)
	}
	return buf
}

// TestWriteFrameRoundTrip serializes a frame built from a real quantizer
// pass plus crafted side values and parses every field back.
func TestWriteFrameRoundTrip(t *testing.T) {
	cfg, err := NewConfig(48000, types.FrameDuration10ms)
	if err != nil {
		t.Fatal(err)
	}
	const nbytes = 80
	nbits := nbytes * 8

	in := &frameInputs{bw: types.BandwidthFullband, fnf: 5}
	in.tns = tnsData{numFilters: 2, lpcWeight: false}
	in.tns.order[0] = 3
	in.tns.rcIdx[0] = [tnsMaxOrder]int{10, 6, 9, 8, 8, 8, 8, 8}
	units := acBitUnit + acTnsOrderBits[0][2] +
		acTnsCoefBits[0][10] + acTnsCoefBits[1][6] + acTnsCoefBits[2][9]
	in.tns.bits = (units+acBitUnit-1)/acBitUnit + 1
	in.lt = ltpfData{pitchPresent: true, active: true, pitchIndex: 300, bits: 11}
	in.sns = snsData{indLF: 11, indHF: 22, shape: 3, gainInd: 5, leadSignA: 1, idxJoint: 9999999}

	rng := rand.New(rand.NewSource(41))
	spectrum := make([]float64, cfg.NE)
	for i := range spectrum {
		spectrum[i] = 3000 * rng.NormFloat64() * math.Exp(-float64(i)/150)
	}
	q := newSpectrumQuantizer(cfg)
	in.xq = make([]int, cfg.NE)
	nbitsSpec := nbits - sideBitBudget(cfg, nbits, in.tns.bits, in.lt.bits)
	in.qd = q.run(spectrum, in.xq, nbits, nbitsSpec)
	if in.qd.lsbMode {
		t.Fatal("lsb mode unexpected at this rate")
	}
	in.res = make([]uint8, cfg.NE)
	in.nres = residualBits(cfg, spectrum, in.xq, in.qd.gg, nbitsSpec, in.qd.nbitsTrunc, in.res)

	buf := writeTestFrame(t, cfg, nbytes, in)
	f := readFrame(cfg, buf)
	if f.err != 0 {
		t.Fatalf("reader error %d", f.err)
	}

	if f.bw != in.bw {
		t.Errorf("bw = %v, want %v", f.bw, in.bw)
	}
	if f.lastnzTrunc != in.qd.lastnzTrunc {
		t.Errorf("lastnzTrunc = %d, want %d", f.lastnzTrunc, in.qd.lastnzTrunc)
	}
	if f.lsbMode {
		t.Error("lsbMode bit set")
	}
	if f.ggInd != in.qd.ggInd {
		t.Errorf("ggInd = %d, want %d", f.ggInd, in.qd.ggInd)
	}
	if !f.tnsActive[0] || f.tnsActive[1] {
		t.Errorf("tnsActive = %v, want filter 0 only", f.tnsActive)
	}
	if !f.pitchPresent || !f.ltpfActive || f.pitchIndex != 300 {
		t.Errorf("ltpf = %v/%v/%d, want true/true/300", f.pitchPresent, f.ltpfActive, f.pitchIndex)
	}
	if f.indLF != 11 || f.indHF != 22 {
		t.Errorf("stage-1 = %d/%d, want 11/22", f.indLF, f.indHF)
	}
	if f.shapeMSB != 1 || f.gainMSBs != 5>>snsGainLSBBits[3] || f.leadSign != 1 {
		t.Errorf("stage-2 side = %d/%d/%d", f.shapeMSB, f.gainMSBs, f.leadSign)
	}
	if f.idxJoint != 9999999 {
		t.Errorf("idxJoint = %d, want 9999999", f.idxJoint)
	}
	if f.noiseFac != 5 {
		t.Errorf("noiseFac = %d, want 5", f.noiseFac)
	}
	if f.tnsOrder[0] != 3 {
		t.Fatalf("tns order = %d, want 3", f.tnsOrder[0])
	}
	for k, want := range []int{10, 6, 9} {
		if f.tnsCoef[0][k] != want {
			t.Errorf("tns coef[%d] = %d, want %d", k, f.tnsCoef[0][k], want)
		}
	}
	for k := range f.xq {
		if f.xq[k] != in.xq[k] {
			t.Fatalf("xq[%d] = %d, want %d", k, f.xq[k], in.xq[k])
		}
	}
	n := min(len(f.resBits), in.nres)
	for k := 0; k < n; k++ {
		if f.resBits[k] != in.res[k] {
			t.Fatalf("res[%d] = %d, want %d", k, f.resBits[k], in.res[k])
		}
	}
}

// TestWriteFrameSparseResidual uses a sparse spectrum with a generous
// budget so the residual bit count is exactly one per nonzero coefficient.
func TestWriteFrameSparseResidual(t *testing.T) {
	cfg, err := NewConfig(32000, types.FrameDuration10ms)
	if err != nil {
		t.Fatal(err)
	}
	const nbytes = 100
	nbits := nbytes * 8

	in := &frameInputs{bw: types.BandwidthWideband, fnf: 7}
	in.tns = tnsData{numFilters: 1, lpcWeight: false, bits: 1}
	in.lt = ltpfData{bits: 1}
	in.sns = snsData{shape: 0, idxJoint: 123}

	spectrum := make([]float64, cfg.NE)
	for k := 30; k < 50; k += 2 {
		spectrum[k] = 900 + 10*float64(k)
	}
	q := newSpectrumQuantizer(cfg)
	in.xq = make([]int, cfg.NE)
	nbitsSpec := nbits - sideBitBudget(cfg, nbits, in.tns.bits, in.lt.bits)
	in.qd = q.run(spectrum, in.xq, nbits, nbitsSpec)
	in.res = make([]uint8, cfg.NE)
	in.nres = residualBits(cfg, spectrum, in.xq, in.qd.gg, nbitsSpec, in.qd.nbitsTrunc, in.res)

	nonzero := 0
	for _, v := range in.xq {
		if v != 0 {
			nonzero++
		}
	}
	if nonzero == 0 || in.nres != nonzero {
		t.Fatalf("setup: nres = %d, nonzero = %d", in.nres, nonzero)
	}

	buf := writeTestFrame(t, cfg, nbytes, in)
	f := readFrame(cfg, buf)
	if f.err != 0 {
		t.Fatalf("reader error %d", f.err)
	}
	if len(f.resBits) != in.nres {
		t.Fatalf("residual count = %d, want %d", len(f.resBits), in.nres)
	}
	if !bytes.Equal(f.resBits, in.res[:in.nres]) {
		t.Errorf("residual bits = %v, want %v", f.resBits, in.res[:in.nres])
	}
	for k := range f.xq {
		if f.xq[k] != in.xq[k] {
			t.Fatalf("xq[%d] = %d, want %d", k, f.xq[k], in.xq[k])
		}
	}
}

// TestWriteFrameSilence checks the minimum-size frame for an empty
// spectrum parses back to the neutral values.
func TestWriteFrameSilence(t *testing.T) {
	cfg, err := NewConfig(48000, types.FrameDuration10ms)
	if err != nil {
		t.Fatal(err)
	}
	const nbytes = MinFrameBytes
	nbits := nbytes * 8

	in := &frameInputs{bw: types.BandwidthFullband, fnf: 7}
	in.tns = tnsData{numFilters: 2, lpcWeight: true, bits: 2}
	in.lt = ltpfData{bits: 1}
	in.sns = snsData{shape: 0, idxJoint: 0}

	q := newSpectrumQuantizer(cfg)
	spectrum := make([]float64, cfg.NE)
	in.xq = make([]int, cfg.NE)
	nbitsSpec := nbits - sideBitBudget(cfg, nbits, in.tns.bits, in.lt.bits)
	in.qd = q.run(spectrum, in.xq, nbits, nbitsSpec)

	buf := writeTestFrame(t, cfg, nbytes, in)
	f := readFrame(cfg, buf)
	if f.err != 0 {
		t.Fatalf("reader error %d", f.err)
	}
	if f.lastnzTrunc != 2 || f.ggInd != 0 || f.pitchPresent || f.tnsActive[0] || f.tnsActive[1] {
		t.Errorf("silence frame parsed as %+v", f)
	}
	if f.noiseFac != 7 {
		t.Errorf("noiseFac = %d, want 7", f.noiseFac)
	}
	for k, v := range f.xq {
		if v != 0 {
			t.Fatalf("xq[%d] = %d, want 0", k, v)
		}
	}
	if len(f.resBits) != 0 {
		t.Errorf("residual count = %d, want 0", len(f.resBits))
	}
}

// TestWriteFrameLSBMode hand-builds a frame in LSB mode and checks the
// held-back bits restore the exact coefficients, including the sign of a
// value the first escape round drops to zero.
func TestWriteFrameLSBMode(t *testing.T) {
	cfg, err := NewConfig(48000, types.FrameDuration10ms)
	if err != nil {
		t.Fatal(err)
	}
	const nbytes = 150 // 1200 bits: high-rate contexts and LSB mode allowed

	xq := make([]int, cfg.NE)
	xq[0], xq[1] = 7, -1
	xq[2], xq[3] = 5, 0
	xq[4], xq[5] = 1, -2
	xq[10], xq[11] = 9, -13

	in := &frameInputs{bw: types.BandwidthFullband, fnf: 3, xq: xq}
	in.tns = tnsData{numFilters: 2, lpcWeight: false, bits: 2}
	in.lt = ltpfData{bits: 1}
	in.sns = snsData{shape: 1, gainInd: 3, idxJoint: 55555}
	in.qd = quantData{ggInd: 100, lastnz: 12, lastnzTrunc: 12, lsbMode: true, rateFlag: 512}

	buf := writeTestFrame(t, cfg, nbytes, in)
	f := readFrame(cfg, buf)
	if f.err != 0 {
		t.Fatalf("reader error %d", f.err)
	}
	if !f.lsbMode {
		t.Fatal("lsbMode bit clear")
	}
	if f.gainMSBs != 3>>snsGainLSBBits[1] {
		t.Errorf("gainMSBs = %d, want %d", f.gainMSBs, 3>>snsGainLSBBits[1])
	}
	for k := range f.xq {
		if f.xq[k] != xq[k] {
			t.Fatalf("xq[%d] = %d, want %d", k, f.xq[k], xq[k])
		}
	}
}

// TestWriteFrameDeterministic checks two fresh writers produce identical
// bytes for identical inputs.
func TestWriteFrameDeterministic(t *testing.T) {
	cfg, err := NewConfig(16000, types.FrameDuration10ms)
	if err != nil {
		t.Fatal(err)
	}
	const nbytes = 60
	nbits := nbytes * 8

	in := &frameInputs{bw: types.BandwidthWideband, fnf: 2}
	in.tns = tnsData{numFilters: 1, lpcWeight: false, bits: 1}
	in.lt = ltpfData{bits: 1}
	in.sns = snsData{indLF: 5, indHF: 9, shape: 2, gainInd: 2, idxJoint: 100000}

	rng := rand.New(rand.NewSource(42))
	spectrum := make([]float64, cfg.NE)
	for i := range spectrum {
		spectrum[i] = 500 * rng.NormFloat64()
	}
	q := newSpectrumQuantizer(cfg)
	in.xq = make([]int, cfg.NE)
	nbitsSpec := nbits - sideBitBudget(cfg, nbits, in.tns.bits, in.lt.bits)
	in.qd = q.run(spectrum, in.xq, nbits, nbitsSpec)
	in.res = make([]uint8, cfg.NE)
	in.nres = residualBits(cfg, spectrum, in.xq, in.qd.gg, nbitsSpec, in.qd.nbitsTrunc, in.res)

	a := writeTestFrame(t, cfg, nbytes, in)
	b := writeTestFrame(t, cfg, nbytes, in)
	if !bytes.Equal(a, b) {
		t.Error("frames differ across writers")
	}
}
