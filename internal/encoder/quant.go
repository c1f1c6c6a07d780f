package encoder

import (
	"math"

	"github.com/thesyncim/golc3/util"
)

// quantData carries the per-frame quantization outcome the serializer and
// the residual coder work from.
type quantData struct {
	ggInd       int     // global gain index, 0..255
	gg          float64 // decoded gain 10^((ggInd+ggOff)/28)
	lastnz      int     // even count of coefficients before truncation
	lastnzTrunc int     // even count that fits the spectral budget
	nbitsEst    int     // estimated cost of the full spectrum, bits
	nbitsTrunc  int     // estimated cost of the truncated spectrum, bits
	lsbMode     bool    // escape LSBs move to the side stream
	rateFlag    int     // 0 or 512, context offset at higher rates
}

// spectrumQuantizer searches the global gain that fits the shaped spectrum
// into the frame's spectral bit budget. The gain index is seeded by a
// bisection over 4-tuple energies against a budget-derived target, limited
// so the quantized values stay within 16-bit range, and corrected by one
// step after counting the real bit demand. A low-passed estimate of the
// counting error feeds forward into the next frame's target.
type spectrumQuantizer struct {
	cfg      *Config
	energies []float64 // NE/4 4-tuple energies in dB

	ggInd        int
	ggOff        int
	ggMin        int
	gg           float64
	lastnz       int
	lastnzTrunc  int
	nbitsSpec    int
	nbitsSpecAdj int
	nbitsEst     int
	nbitsTrunc   int
	lsbCount     int
	rateFlag     int
	modeFlag     bool
	xfMax        float64

	// previous-frame estimation state
	offsetOld float64
	specOld   int
	estOld    int
	resetOld  bool
}

func newSpectrumQuantizer(cfg *Config) *spectrumQuantizer {
	return &spectrumQuantizer{
		cfg:      cfg,
		energies: make([]float64, cfg.NE/4),
	}
}

// run quantizes spectrum into xq and returns the frame outcome. nbits is
// the whole frame budget, nbitsSpec the share left for spectral data.
func (q *spectrumQuantizer) run(spectrum []float64, xq []int, nbits, nbitsSpec int) quantData {
	q.nbitsSpec = nbitsSpec

	q.xfMax = 0
	for _, v := range spectrum[:q.cfg.NE] {
		if a := math.Abs(v); a > q.xfMax {
			q.xfMax = a
		}
	}

	q.updateEstimationTarget(nbits)
	q.computeEnergies(spectrum)
	q.estimateGain()
	resetOffset := q.limitGain()

	q.quantize(spectrum, xq)
	q.countBits(xq, nbits)

	// The feedback state must reflect the pre-adjustment count.
	q.specOld = q.nbitsSpec
	q.estOld = q.nbitsEst
	q.resetOld = resetOffset

	if q.adjustGain() {
		q.quantize(spectrum, xq)
		q.countBits(xq, nbits)
	}

	for k := q.lastnzTrunc; k < q.lastnz; k++ {
		xq[k] = 0
	}

	return quantData{
		ggInd:       q.ggInd,
		gg:          q.gg,
		lastnz:      q.lastnz,
		lastnzTrunc: q.lastnzTrunc,
		nbitsEst:    q.nbitsEst,
		nbitsTrunc:  q.nbitsTrunc,
		lsbMode:     q.modeFlag && q.nbitsEst > q.nbitsSpec,
		rateFlag:    q.rateFlag,
	}
}

// updateEstimationTarget folds the previous frame's estimation error into
// the spectral budget the gain bisection aims for and derives the gain
// index offset from the overall rate.
func (q *spectrumQuantizer) updateEstimationTarget(nbits int) {
	var offset float64
	if !q.resetOld {
		err := util.Clamp(q.offsetOld+float64(q.specOld-q.estOld), -40, 40)
		offset = 0.8*q.offsetOld + 0.2*err
	}
	q.offsetOld = offset
	q.nbitsSpecAdj = int(float64(q.nbitsSpec) + offset + 0.5)
	q.ggOff = -min(115, nbits/(10*(q.cfg.FsInd+1))) - 105 - 5*(q.cfg.FsInd+1)
}

func (q *spectrumQuantizer) computeEnergies(spectrum []float64) {
	for k := range q.energies {
		sum := 0x1p-31
		for _, v := range spectrum[4*k : 4*k+4] {
			sum += v * v
		}
		q.energies[k] = 10 * math.Log10(sum)
	}
}

// estimateGain bisects the gain index so the projected bit demand of the
// 4-tuple envelope lands under 1.4x the adjusted spectral budget.
func (q *spectrumQuantizer) estimateGain() {
	const sc = 28.0 / 20.0
	target := float64(q.nbitsSpecAdj) * 1.4 * sc
	fac := 256
	q.ggInd = 255
	for iter := 0; iter < 8; iter++ {
		fac >>= 1
		q.ggInd -= fac
		gi := float64(q.ggInd + q.ggOff)
		var tmp float64
		iszero := true
		for i := len(q.energies) - 1; i >= 0; i-- {
			e := q.energies[i] * sc
			switch {
			case e < gi:
				if !iszero {
					tmp += 2.7 * sc
				}
			case e <= gi+43*sc:
				tmp += e - gi + 7*sc
				iszero = false
			default:
				tmp += 2*(e-gi) - 36*sc
				iszero = false
			}
		}
		if tmp > target && !iszero {
			q.ggInd += fac
		}
	}
}

// limitGain raises the gain index when needed so no quantized value can
// leave the 16-bit range, and reports whether the estimation feedback must
// restart.
func (q *spectrumQuantizer) limitGain() bool {
	if q.xfMax > 0 {
		q.ggMin = int(math.Ceil(28*math.Log10(q.xfMax/(32768-0.375)))) - q.ggOff
	} else {
		q.ggMin = 0
	}
	if q.ggInd < q.ggMin || q.xfMax == 0 {
		q.ggInd = q.ggMin
		return true
	}
	return false
}

// quantize scales the spectrum by the inverse gain and rounds with the
// 0.375 dead-zone offset. lastnz is the even count covering the last
// nonzero value, at least one pair.
func (q *spectrumQuantizer) quantize(spectrum []float64, xq []int) {
	if q.ggInd > 255 {
		q.ggInd = 255
	}
	q.gg = math.Pow(10, float64(q.ggInd+q.ggOff)/28)
	inv := 1 / q.gg
	last := 0
	for n, v := range spectrum[:q.cfg.NE] {
		switch {
		case v > 0:
			xq[n] = int(v*inv + 0.375)
		case v < 0:
			xq[n] = int(v*inv - 0.375)
		default:
			xq[n] = 0
		}
		if xq[n] != 0 {
			last = n
		}
	}
	last++
	if last&1 == 1 {
		last++
	}
	q.lastnz = last
}

// countBits walks the coefficient pairs through the arithmetic models the
// serializer will use and accumulates the exact demand in 1/2048-bit
// units, tracking the largest even prefix that fits the spectral budget.
// In high-rate mode the first escape's low bits and the signs of values
// it shifts to zero count toward the side stream instead.
func (q *spectrumQuantizer) countBits(xq []int, nbits int) {
	q.rateFlag = 0
	if nbits > 160+160*q.cfg.FsInd {
		q.rateFlag = 512
	}
	q.modeFlag = nbits >= 480+160*q.cfg.FsInd

	estU := 0
	truncU := 0
	lsb := 0
	q.lastnzTrunc = 2
	c := 0
	for n := 0; n < q.lastnz; n += 2 {
		t := c + q.rateFlag
		if n > q.cfg.NE/2 {
			t += 256
		}
		a, b := util.Abs(xq[n]), util.Abs(xq[n+1])
		alsb, blsb := a, b
		lev := 0
		for max(a, b) >= 4 {
			estU += acSpecBits[acSpecModel(lev, t)][16]
			if lev == 0 && q.modeFlag {
				lsb += 2
			} else {
				estU += 2 * acBitUnit
			}
			a >>= 1
			b >>= 1
			lev = min(lev+1, 3)
		}
		estU += acSpecBits[acSpecModel(lev, t)][a+4*b]
		if lev > 0 && q.modeFlag {
			alsb >>= 1
			blsb >>= 1
			if alsb == 0 && xq[n] != 0 {
				lsb++
			}
			if blsb == 0 && xq[n+1] != 0 {
				lsb++
			}
		}
		estU += (min(alsb, 1) + min(blsb, 1)) * acBitUnit
		if (xq[n] != 0 || xq[n+1] != 0) && estU <= q.nbitsSpec*acBitUnit {
			q.lastnzTrunc = n + 2
			truncU = estU
		}
		if lev <= 1 {
			t = 1 + (a+b)*(lev+1)
		} else {
			t = 12 + lev
		}
		c = (c&15)*16 + t
	}
	q.nbitsEst = (estU+acBitUnit-1)/acBitUnit + lsb
	q.nbitsTrunc = (truncU + acBitUnit - 1) / acBitUnit
	q.lsbCount = lsb
}

// adjustGain nudges the gain index by at most two steps based on how far
// the counted demand landed from the spectral budget. Reports whether the
// spectrum must be requantized.
func (q *spectrumQuantizer) adjustGain() bool {
	t1 := [5]int{80, 230, 380, 530, 680}
	t2 := [5]int{500, 1025, 1550, 2075, 2600}
	t3 := [5]int{850, 1700, 2550, 3400, 4250}
	tt1, tt2, tt3 := t1[q.cfg.FsInd], t2[q.cfg.FsInd], t3[q.cfg.FsInd]

	var delta int
	switch {
	case q.nbitsEst < tt1:
		delta = (q.nbitsEst + 56) / 16
	case q.nbitsEst < tt2:
		lo := float64(tt1)/16 + 3
		hi := float64(tt2) / 48
		delta = int(float64(q.nbitsEst-tt1)*(hi-lo)/float64(tt2-tt1) + lo + 0.5)
	case q.nbitsEst < tt3:
		delta = (q.nbitsEst + 24) / 48
	default:
		delta = (tt3 + 24) / 48
	}

	orig := q.ggInd
	if (q.ggInd < 255 && q.nbitsEst > q.nbitsSpec) ||
		(q.ggInd > 0 && q.nbitsEst < q.nbitsSpec-delta-2) {
		switch {
		case q.nbitsEst < q.nbitsSpec-delta-2:
			q.ggInd--
		case q.ggInd == 254 || q.nbitsEst < q.nbitsSpec+delta:
			q.ggInd++
		default:
			q.ggInd += 2
		}
		if q.ggInd < q.ggMin {
			q.ggInd = q.ggMin
		}
	}
	return q.ggInd != orig
}

// reset clears the cross-frame estimation feedback.
func (q *spectrumQuantizer) reset() {
	q.offsetOld = 0
	q.specOld = 0
	q.estOld = 0
	q.resetOld = false
}
