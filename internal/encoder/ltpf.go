package encoder

import (
	"math"

	"github.com/thesyncim/golc3/internal/types"
)

// Pitch lag search range at the 6.4kHz first-stage rate.
const (
	ltpfLagMin = 17
	ltpfLagMax = 114
	ltpfMemLen = 232 // 12.8kHz history kept across frames
)

// ltpfData carries the long term postfilter side information of one frame.
type ltpfData struct {
	pitchPresent bool
	active       bool
	pitchIndex   int
	bits         int // 11 with a pitch lag, 1 without
}

// ltpfAnalyzer estimates the pitch lag the decoder-side postfilter would
// use and decides per frame whether the filter should engage. Analysis runs
// on a 12.8kHz resampled copy of the input: a first lag search on a further
// 2:1 decimated signal, then a refinement with quarter-sample resolution
// around the doubled lag.
type ltpfAnalyzer struct {
	cfg     *Config
	resamp  *resampler12k8
	delay   int // analysis alignment delay at 12.8kHz
	len12k8 int
	len6k4  int

	x12k8 []float64 // ltpfMemLen+delay history plus current frame
	x6k4  []float64 // ltpfLagMax history plus current frame
	hpm0  float64   // highpass state
	hpm1  float64

	prevLag   int     // winning first-stage lag of the previous frame
	memPitch  float64 // quarter-sample pitch of the previous frame
	memActive bool
	memNC     float64 // normalized correlation of the previous frame
	memMemNC  float64 // and of the frame before that
}

func newLTPFAnalyzer(cfg *Config) *ltpfAnalyzer {
	delay, n12, n6 := 24, 128, 64
	if cfg.Duration == types.FrameDuration7p5ms {
		delay, n12, n6 = 44, 96, 48
	}
	return &ltpfAnalyzer{
		cfg:     cfg,
		resamp:  newResampler12k8(cfg),
		delay:   delay,
		len12k8: n12,
		len6k4:  n6,
		x12k8:   make([]float64, ltpfMemLen+delay+n12),
		x6k4:    make([]float64, ltpfLagMax+n6),
		prevLag: ltpfLagMin,
	}
}

// ltpfEnabled reports whether the bit budget leaves room for the decoder
// postfilter gain. Budgets are compared on a 10ms-equivalent scale.
func ltpfEnabled(cfg *Config, nbits int) bool {
	t := nbits
	if cfg.Duration == types.FrameDuration7p5ms {
		t = int(math.Round(float64(nbits) * 10 / 7.5))
	}
	return t < 560+80*cfg.FsInd
}

// run consumes one frame of input samples and returns the frame's pitch
// parameters. When the postfilter cannot engage at the current bit budget
// or the spectrum sits against Nyquist, analysis is skipped entirely and
// the frame signals no pitch.
func (l *ltpfAnalyzer) run(x []float64, nbits int, nearNyquist bool) ltpfData {
	if !ltpfEnabled(l.cfg, nbits) || nearNyquist {
		return ltpfData{bits: 1}
	}

	// Shift the analysis histories by one frame, resample the new input
	// into the top and highpass it in place.
	keep := l.delay + ltpfMemLen
	copy(l.x12k8[:keep], l.x12k8[l.len12k8:])
	copy(l.x6k4[:ltpfLagMax], l.x6k4[l.len6k4:])
	cur := l.x12k8[keep:]
	l.resamp.run(x, cur)
	l.highpass50(cur)

	lag, normcorr := l.detectLag()
	pitchInt, pitchFr := l.refineLag(lag)
	nc, pitch := l.pitchCorrelation(pitchInt, pitchFr)

	active := (!l.memActive && (l.cfg.Duration == types.FrameDuration10ms || l.memMemNC > 0.94) &&
		l.memNC > 0.94 && nc > 0.94) ||
		(l.memActive && nc > 0.9) ||
		(l.memActive && math.Abs(pitch-l.memPitch) < 2 && nc-l.memNC > -0.1 && nc > 0.84)

	out := ltpfData{bits: 1}
	if normcorr > 0.6 {
		out = ltpfData{
			pitchPresent: true,
			active:       active,
			pitchIndex:   ltpfPitchIndex(pitchInt, pitchFr),
			bits:         11,
		}
	}

	l.prevLag = lag
	l.memMemNC = l.memNC
	if out.pitchPresent {
		l.memPitch, l.memActive, l.memNC = pitch, active, nc
	} else {
		l.memPitch, l.memActive, l.memNC = 0, false, 0
	}
	return out
}

func (l *ltpfAnalyzer) highpass50(x []float64) {
	for i, v := range x {
		t := v - ltpfHPA1*l.hpm0 - ltpfHPA2*l.hpm1
		x[i] = ltpfHPB0*t + ltpfHPB1*l.hpm0 + ltpfHPB2*l.hpm1
		l.hpm1 = l.hpm0
		l.hpm0 = t
	}
}

// detectLag decimates the frame to 6.4kHz and picks the first-stage lag:
// the maximum of the lag-weighted autocorrelation, or the unweighted
// maximum near the previous lag when its correlation holds up.
func (l *ltpfAnalyzer) detectLag() (lag int, normcorr float64) {
	for n := 0; n < l.len6k4; n++ {
		var sum float64
		for k, h := range ltpfDown2 {
			sum += l.x12k8[ltpfMemLen+2*n+k-3] * h
		}
		l.x6k4[ltpfLagMax+n] = sum
	}

	var r [ltpfLagMax - ltpfLagMin + 1]float64
	t1 := ltpfLagMin
	var bestW float64
	for k := ltpfLagMin; k <= ltpfLagMax; k++ {
		var sum float64
		for n := 0; n < l.len6k4; n++ {
			sum += l.x6k4[ltpfLagMax+n] * l.x6k4[ltpfLagMax+n-k]
		}
		r[k-ltpfLagMin] = sum
		w := 1 - 0.5*float64(k-ltpfLagMin)/float64(ltpfLagMax-ltpfLagMin)
		if wr := w * sum; k == ltpfLagMin || wr > bestW {
			bestW = wr
			t1 = k
		}
	}

	lo := max(ltpfLagMin, l.prevLag-4)
	hi := min(ltpfLagMax, l.prevLag+4)
	t2 := lo
	bestR := r[lo-ltpfLagMin]
	for k := lo + 1; k <= hi; k++ {
		if r[k-ltpfLagMin] > bestR {
			bestR = r[k-ltpfLagMin]
			t2 = k
		}
	}

	e0 := l.lagEnergy(0)
	var nc1 float64
	if den := math.Sqrt(e0 * l.lagEnergy(t1)); den > 0 {
		nc1 = math.Max(0, r[t1-ltpfLagMin]/den)
	}
	nc2 := nc1
	if t2 != t1 {
		nc2 = 0
		if den := math.Sqrt(e0 * l.lagEnergy(t2)); den > 0 {
			nc2 = math.Max(0, r[t2-ltpfLagMin]/den)
		}
	}
	if nc2 > 0.85*nc1 {
		return t2, nc2
	}
	return t1, nc1
}

// lagEnergy sums squares of the 6.4kHz frame shifted back by lag samples.
func (l *ltpfAnalyzer) lagEnergy(lag int) float64 {
	var sum float64
	for n := 0; n < l.len6k4; n++ {
		v := l.x6k4[ltpfLagMax+n-lag]
		sum += v * v
	}
	return sum
}

// refineLag doubles the first-stage lag onto the 12.8kHz grid, re-searches
// the integer lag in a narrow window and refines it to quarter samples.
func (l *ltpfAnalyzer) refineLag(lag int) (pitchInt, pitchFr int) {
	lo := max(32, 2*lag-4)
	hi := min(228, 2*lag+4)

	// Autocorrelation over the window plus four lags of margin on each
	// side for the interpolator below.
	var r [17]float64
	pitchInt = lo
	var best float64
	for k := lo - 4; k <= hi+4; k++ {
		var sum float64
		for n := 0; n < l.len12k8; n++ {
			sum += l.x12k8[ltpfMemLen+n] * l.x12k8[ltpfMemLen+n-k]
		}
		r[k-(lo-4)] = sum
		if sum > best && k >= lo && k <= hi {
			best = sum
			pitchInt = k
		}
	}

	rel := pitchInt - (lo - 4)
	switch {
	case pitchInt == 32:
		var best float64
		for d := 0; d <= 3; d++ {
			if v := interpLagCorr(r[:], rel, d); v > best {
				best, pitchFr = v, d
			}
		}
	case pitchInt < 127:
		var best float64
		for d := -3; d <= 3; d++ {
			if v := interpLagCorr(r[:], rel, d); v > best {
				best, pitchFr = v, d
			}
		}
	case pitchInt < 157:
		var best float64
		for d := -2; d <= 2; d += 2 {
			if v := interpLagCorr(r[:], rel, d); v > best {
				best, pitchFr = v, d
			}
		}
	}
	if pitchFr < 0 {
		pitchInt--
		pitchFr += 4
	}
	return pitchInt, pitchFr
}

// interpLagCorr evaluates the autocorrelation at lag rel+d/4 by filtering
// the integer-lag values around rel with the quarter-sample kernel.
func interpLagCorr(r []float64, rel, d int) float64 {
	n0 := -16 - d
	for n0 < -15 {
		n0 += 4
	}
	var sum float64
	for n := n0; n < 16; n += 4 {
		sum += r[rel+((n+d)>>2)] * ltpfInterpR[n+15]
	}
	return sum
}

// interpSignal evaluates the delayed 12.8kHz signal at position n-d/4.
func (l *ltpfAnalyzer) interpSignal(n, d int) float64 {
	h0 := -8 - d
	for h0 < -7 {
		h0 += 4
	}
	var sum float64
	for h := h0; h < 8; h += 4 {
		sum += l.x12k8[ltpfMemLen+n-((h+d)>>2)] * ltpfInterpX12k8[h+7]
	}
	return sum
}

// pitchCorrelation measures how well the frame predicts itself one pitch
// period back, both signals interpolated to quarter-sample resolution.
func (l *ltpfAnalyzer) pitchCorrelation(pitchInt, pitchFr int) (nc, pitch float64) {
	var num, e0, e1 float64
	for n := 0; n < l.len12k8; n++ {
		u := l.interpSignal(n, 0)
		v := l.interpSignal(n-pitchInt, pitchFr)
		num += u * v
		e0 += u * u
		e1 += v * v
	}
	if den := math.Sqrt(e0 * e1); den > 0 {
		nc = num / den
	}
	return nc, float64(pitchInt) + float64(pitchFr)/4
}

// ltpfPitchIndex packs the integer and fractional lag into the 9-bit index.
// Resolution drops from quarter to half to whole samples as the lag grows,
// covering lags 32+0/4 through 228 with indices 0 through 511.
func ltpfPitchIndex(pitchInt, pitchFr int) int {
	switch {
	case pitchInt < 127:
		return 4*pitchInt + pitchFr - 128
	case pitchInt < 157:
		return 2*pitchInt + pitchFr/2 + 126
	default:
		return pitchInt + 283
	}
}

// reset clears all analysis history.
func (l *ltpfAnalyzer) reset() {
	l.resamp.reset()
	for i := range l.x12k8 {
		l.x12k8[i] = 0
	}
	for i := range l.x6k4 {
		l.x6k4[i] = 0
	}
	l.hpm0, l.hpm1 = 0, 0
	l.prevLag = ltpfLagMin
	l.memPitch, l.memActive, l.memNC, l.memMemNC = 0, false, 0, 0
}
