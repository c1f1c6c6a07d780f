package mdct

import "math"

// analysisWindow builds the low-delay analysis window of length 2*nf-z.
// The shape rises over the first nf samples and decays over the remaining
// nf-z, so the last z samples of the conceptual 2*nf window are zero and
// never enter the fold. The sqrt(2/nf) transform normalization is folded
// into the coefficients.
func analysisWindow(nf, z int) []float64 {
	win := make([]float64, 2*nf-z)
	gain := math.Sqrt(2.0 / float64(nf))

	for n := 0; n < nf; n++ {
		win[n] = gain * math.Sin(math.Pi/2*(float64(n)+0.5)/float64(nf))
	}
	fall := nf - z
	for m := 0; m < fall; m++ {
		win[nf+m] = gain * math.Cos(math.Pi/2*(float64(m)+0.5)/float64(fall))
	}
	return win
}
