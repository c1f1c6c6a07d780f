package encoder

import (
	"math"

	"github.com/thesyncim/golc3/internal/types"
	"github.com/thesyncim/golc3/util"
)

// Pre-emphasis tilt in dB reached at the top band, per sample rate index.
var snsTilt = [5]float64{14, 18, 22, 26, 30}

// Overlapping 6-tap window used to condense 64 log energies into 16.
var snsDownWin = [6]float64{1.0 / 12, 2.0 / 12, 3.0 / 12, 3.0 / 12, 2.0 / 12, 1.0 / 12}

// snsPadBands spreads nb band energies onto the fixed 64-band grid.
// Sessions short of 64 bands repeat their lowest bands, twice each down to
// 32 bands and four times each below that, so the envelope keeps its
// low-frequency resolution.
func snsPadBands(eb []float64, nb int, e64 *[snsBands]float64) {
	switch {
	case nb >= snsBands:
		copy(e64[:], eb[:snsBands])
	case nb >= 32:
		n2 := snsBands - nb
		for i := 0; i < n2; i++ {
			e64[2*i] = eb[i]
			e64[2*i+1] = eb[i]
		}
		for i := n2; i < nb; i++ {
			e64[n2+i] = eb[i]
		}
	default:
		n4 := 32 - nb
		for i := 0; i < n4; i++ {
			for j := 0; j < 4; j++ {
				e64[4*i+j] = eb[i]
			}
		}
		for i := 0; i < nb-n4; i++ {
			e64[4*n4+2*i] = eb[n4+i]
			e64[4*n4+2*i+1] = eb[n4+i]
		}
	}
}

// snsScaleFactors condenses the band energies into 16 scale factors: the
// padded energies are smoothed across neighbours, pre-emphasized toward the
// high bands, floored 40dB under the frame mean, taken to the log domain
// and downsampled with mean removal. Attack frames additionally flatten
// the result so the envelope cannot ring ahead of a transient.
func snsScaleFactors(cfg *Config, eb []float64, attack bool) [snsScales]float64 {
	var e64 [snsBands]float64
	snsPadBands(eb, cfg.NB, &e64)

	pow10 := math.Pow(10, snsTilt[cfg.FsInd]/630)
	var ep [snsBands]float64
	ep[0] = 0.25 * (3*e64[0] + e64[1])
	tilt := 1.0
	for b := 1; b < snsBands-1; b++ {
		tilt *= pow10
		ep[b] = 0.25 * (e64[b-1] + 2*e64[b] + e64[b+1]) * tilt
	}
	tilt *= pow10
	ep[snsBands-1] = 0.25 * (e64[snsBands-2] + 3*e64[snsBands-1]) * tilt

	var total float64
	for _, e := range ep {
		total += e
	}
	floor := total / snsBands * 1e-4
	if floor < 0x1p-32 {
		floor = 0x1p-32
	}
	var el [snsBands]float64
	for b, e := range ep {
		el[b] = 0.5 * math.Log2(math.Max(floor, e))
	}

	var el4 [snsScales]float64
	var mean float64
	for b2 := 0; b2 < snsScales; b2++ {
		var acc float64
		for k := 0; k < 6; k++ {
			acc += snsDownWin[k] * el[util.Clamp(4*b2+k-1, 0, snsBands-1)]
		}
		el4[b2] = acc
		mean += acc
	}
	mean /= snsScales

	var scf [snsScales]float64
	for b2 := range scf {
		scf[b2] = 0.85 * (el4[b2] - mean)
	}
	if !attack {
		return scf
	}

	var flat [snsScales]float64
	var fmean float64
	for n := range flat {
		lo := util.Clamp(n-2, 0, snsScales-1)
		hi := util.Clamp(n+2, 0, snsScales-1)
		var acc float64
		for k := lo; k <= hi; k++ {
			acc += scf[k]
		}
		flat[n] = acc / float64(hi-lo+1)
		fmean += flat[n]
	}
	fmean /= snsScales

	fAtt := 0.5
	if cfg.Duration == types.FrameDuration7p5ms {
		fAtt = 0.3
	}
	for n := range scf {
		scf[n] = fAtt * (flat[n] - fmean)
	}
	return scf
}

// snsInterpolate expands the 16 quantized scale factors back to the band
// grid. The interior points are linear interpolations at quarter offsets;
// both ends extrapolate the outermost slope. Sessions short of 64 bands
// fold neighbouring points together, mirroring the padding done on the
// analysis side.
func snsInterpolate(scfQ *[snsScales]float64, nb int, scfInt *[snsBands]float64) {
	scfInt[0] = scfQ[0]
	scfInt[1] = scfQ[0]
	for n := 0; n < snsScales-1; n++ {
		d := (scfQ[n+1] - scfQ[n]) / 8
		scfInt[4*n+2] = scfQ[n] + d
		scfInt[4*n+3] = scfQ[n] + 3*d
		scfInt[4*n+4] = scfQ[n] + 5*d
		scfInt[4*n+5] = scfQ[n] + 7*d
	}
	d := (scfQ[snsScales-1] - scfQ[snsScales-2]) / 8
	scfInt[snsBands-2] = scfQ[snsScales-1] + d
	scfInt[snsBands-1] = scfQ[snsScales-1] + 3*d

	switch {
	case nb >= snsBands:
	case nb >= 32:
		n2 := snsBands - nb
		for i := 0; i < n2; i++ {
			scfInt[i] = 0.5 * (scfInt[2*i] + scfInt[2*i+1])
		}
		for i := n2; i < nb; i++ {
			scfInt[i] = scfInt[i+n2]
		}
	default:
		n4 := 32 - nb
		for i := 0; i < n4; i++ {
			scfInt[i] = 0.25 * (scfInt[4*i] + scfInt[4*i+1] + scfInt[4*i+2] + scfInt[4*i+3])
		}
		for i := 0; i < nb-n4; i++ {
			scfInt[n4+i] = 0.5 * (scfInt[4*n4+2*i] + scfInt[4*n4+2*i+1])
		}
	}
}

// snsShapeSpectrum divides the envelope out of the spectrum, scaling every
// band by 2 to the power of its negated interpolated scale factor.
func snsShapeSpectrum(cfg *Config, scfQ *[snsScales]float64, spectrum []float64) {
	var scfInt [snsBands]float64
	snsInterpolate(scfQ, cfg.NB, &scfInt)
	for b := 0; b < cfg.NB; b++ {
		g := math.Exp2(-scfInt[b])
		for k := cfg.IFs[b]; k < cfg.IFs[b+1]; k++ {
			spectrum[k] *= g
		}
	}
}
