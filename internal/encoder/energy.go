package encoder

import "github.com/thesyncim/golc3/internal/types"

// bandEnergies fills eb[b] with the mean squared MDCT coefficient over each
// band of cfg.IFs.
func bandEnergies(cfg *Config, spectrum, eb []float64) {
	for b := 0; b < cfg.NB; b++ {
		lo, hi := cfg.IFs[b], cfg.IFs[b+1]
		var sum float64
		for k := lo; k < hi; k++ {
			sum += spectrum[k] * spectrum[k]
		}
		eb[b] = sum / float64(hi-lo)
	}
}

// nearNyquist reports whether the top bands dominate the frame energy,
// which marks tonal content close to the sampling limit. Only sample rates
// up to 32kHz can place audible tones there; higher rates always report
// false.
func nearNyquist(cfg *Config, eb []float64) bool {
	if cfg.Fs > 32000 {
		return false
	}
	nnIdx := cfg.NB - 2
	if cfg.Duration == types.FrameDuration7p5ms {
		nnIdx = cfg.NB - 4
	}

	var lower, upper float64
	for b := 0; b < cfg.NB; b++ {
		if b < nnIdx {
			lower += eb[b]
		} else {
			upper += eb[b]
		}
	}

	const nnThresh = 30
	return upper > nnThresh*lower
}
