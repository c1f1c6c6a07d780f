package encoder

import (
	"github.com/thesyncim/golc3/internal/mdct"
)

// Channel encodes successive frames of one audio channel. A frame flows
// through MDCT analysis, the bandwidth and attack detectors, spectral and
// temporal noise shaping, pitch analysis, quantization and serialization.
// The stateful stages carry history between frames, so frames must be fed
// in order; a Channel is not safe for concurrent use.
type Channel struct {
	cfg    *Config
	mdct   *mdct.Analyzer
	attack *attackDetector
	ltpf   *ltpfAnalyzer
	quant  *spectrumQuantizer
	writer *frameWriter

	spectrum []float64 // MDCT coefficients, shaped in place
	eb       []float64 // band energies
	xq       []int     // quantized coefficients
	res      []uint8   // residual refinement bits
}

// NewChannel creates an encoder channel for the given session parameters.
func NewChannel(cfg *Config) *Channel {
	return &Channel{
		cfg:      cfg,
		mdct:     mdct.NewAnalyzer(cfg.NF, cfg.Z),
		attack:   newAttackDetector(cfg),
		ltpf:     newLTPFAnalyzer(cfg),
		quant:    newSpectrumQuantizer(cfg),
		writer:   newFrameWriter(cfg),
		spectrum: make([]float64, cfg.NF),
		eb:       make([]float64, cfg.NB),
		xq:       make([]int, cfg.NE),
		res:      make([]uint8, cfg.NE),
	}
}

// Encode analyzes one frame of samples and writes the coded frame into
// out. x must hold exactly cfg.NF samples at 16-bit scale; len(out) sets
// the byte budget of the frame.
func (c *Channel) Encode(x []float64, out []byte) error {
	if len(x) != c.cfg.NF {
		return ErrFrameLength
	}
	nbytes := len(out)
	if nbytes < MinFrameBytes || nbytes > MaxFrameBytes {
		return ErrInvalidByteCount
	}
	nbits := nbytes * 8

	c.mdct.Process(x, c.spectrum)
	bandEnergies(c.cfg, c.spectrum, c.eb)
	nearNyq := nearNyquist(c.cfg, c.eb)
	bw := detectBandwidth(c.cfg, c.eb)
	attack := c.attack.run(x, nbytes)

	scf := snsScaleFactors(c.cfg, c.eb, attack)
	sns := snsQuantize(&scf)
	snsShapeSpectrum(c.cfg, &sns.scfQ, c.spectrum)

	tns := tnsAnalyze(c.cfg, bw, nbits, nearNyq, c.spectrum)
	lt := c.ltpf.run(x, nbits, nearNyq)

	nbitsSpec := nbits - sideBitBudget(c.cfg, nbits, tns.bits, lt.bits)
	qd := c.quant.run(c.spectrum, c.xq, nbits, nbitsSpec)

	nres := residualBits(c.cfg, c.spectrum, c.xq, qd.gg, nbitsSpec, qd.nbitsTrunc, c.res)
	noiseFac := noiseLevel(c.cfg, bw, c.spectrum, c.xq, qd.gg)

	return c.writer.run(c.cfg, out, bw, &sns, &tns, lt, qd, c.xq, noiseFac, c.res, nres)
}

// Reset clears all cross-frame state, as if the channel had just been
// created.
func (c *Channel) Reset() {
	c.mdct.Reset()
	c.attack.reset()
	c.ltpf.reset()
	c.quant.reset()
}

// sideBitBudget is the bit count of everything but the spectrum: detector
// and filter side information plus the coefficient tuple field and the
// arithmetic coder's finalization margin.
func sideBitBudget(cfg *Config, nbits, tnsBits, ltpfBits int) int {
	ari := lastnzBits(cfg.NE) + 3
	if nbits > 2560 {
		ari += 2
	} else if nbits > 1280 {
		ari++
	}
	return bandwidthBits(cfg.FsInd) + tnsBits + ltpfBits + snsSideBits + 8 + 3 + ari
}
