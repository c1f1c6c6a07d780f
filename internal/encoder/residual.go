package encoder

// residualBits collects one refinement bit per surviving nonzero
// coefficient, capped by whatever the spectral budget left unused.
// A set bit means the original coefficient sits at or above its
// dequantized value.
func residualBits(cfg *Config, spectrum []float64, xq []int, gg float64, nbitsSpec, nbitsTrunc int, res []uint8) int {
	maxBits := max(nbitsSpec-nbitsTrunc+4, 0)
	n := 0
	for k := 0; k < cfg.NE && n < maxBits; k++ {
		if xq[k] == 0 {
			continue
		}
		if spectrum[k] >= float64(xq[k])*gg {
			res[n] = 1
		} else {
			res[n] = 0
		}
		n++
	}
	return n
}
