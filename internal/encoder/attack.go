package encoder

import (
	"math"

	"github.com/thesyncim/golc3/internal/types"
)

// attackDetector flags frames containing sharp transients so the quantizer
// can pin the global gain. Detection runs on a 16kHz-equivalent downsampled
// envelope and is only active for 32kHz+ input at bitrates where the
// sharper gain handling is worth spending quality on.
type attackDetector struct {
	cfg   *Config
	buf   []float64  // Scratch: two history samples + downsampled frame
	xLast [2]float64 // Last two downsampled samples of the previous frame
	eLast float64    // Previous block energy
	aLast float64    // Previous delayed envelope
	pLast int        // Block index of the previous frame's attack (-1 = none)
}

func newAttackDetector(cfg *Config) *attackDetector {
	mf := 120
	if cfg.Duration == types.FrameDuration10ms {
		mf = 160
	}
	return &attackDetector{
		cfg:   cfg,
		buf:   make([]float64, mf+2),
		pLast: -1,
	}
}

// run consumes one frame of input samples and reports whether the frame
// holds an attack. nbytes is the frame byte budget, which gates activation.
func (d *attackDetector) run(x []float64, nbytes int) bool {
	if d.cfg.Fs < 32000 {
		return false
	}
	tenMS := d.cfg.Duration == types.FrameDuration10ms
	active := (tenMS && d.cfg.Fs == 32000 && nbytes > 80) ||
		(tenMS && d.cfg.Fs >= 44100 && nbytes >= 100) ||
		(!tenMS && d.cfg.Fs == 32000 && nbytes >= 61 && nbytes < 150) ||
		(!tenMS && d.cfg.Fs >= 44100 && nbytes >= 75 && nbytes < 150)
	if !active {
		// Bitrate switching can toggle activation between frames; the
		// states must restart clean when detection resumes.
		d.eLast = 0
		d.aLast = 0
		d.pLast = -1
		return false
	}

	mf := len(d.buf) - 2
	blocks := 3
	tAtt := 1
	if tenMS {
		blocks = 4
		tAtt = 2
	}
	factor := d.cfg.NF / mf

	// Downsample by block sums into buf[2:], keeping two samples of
	// history in front for the highpass taps.
	d.buf[0], d.buf[1] = d.xLast[0], d.xLast[1]
	att := d.buf[2:]
	idx := 0
	for n := 0; n < mf; n++ {
		var sum float64
		for m := 0; m < factor; m++ {
			sum += x[idx+m]
		}
		att[n] = sum
		idx += factor
	}
	d.xLast[0], d.xLast[1] = att[mf-2], att[mf-1]

	// In-place highpass: buf[n] becomes the filtered sample while the
	// two positions ahead still hold the raw history it reads.
	for n := 0; n < mf; n++ {
		d.buf[n] = 0.375*att[n] - 0.5*d.buf[n+1] + 0.125*d.buf[n]
	}

	pAtt := -1
	for b := 0; b < blocks; b++ {
		var eAtt float64
		for l := 40 * b; l < 40*b+40; l++ {
			eAtt += d.buf[l] * d.buf[l]
		}
		aEnv := math.Max(0.25*d.aLast, d.eLast)
		if eAtt > 8.5*aEnv {
			pAtt = b
		}
		d.eLast = eAtt
		d.aLast = aEnv
	}

	detected := pAtt >= 0 || d.pLast >= tAtt
	d.pLast = pAtt
	return detected
}

// reset clears all detector history.
func (d *attackDetector) reset() {
	d.xLast[0], d.xLast[1] = 0, 0
	d.eLast = 0
	d.aLast = 0
	d.pLast = -1
}
