package mdct

import "math"

// DCT4 computes the type-IV discrete cosine transform
//
//	out[k] = sum_n in[n] * cos(pi/N * (n+1/2) * (k+1/2))
//
// through an N/2-point complex FFT with pre- and post-twiddles. The
// transform is unit gain; callers fold any frame normalization into their
// analysis window.
type DCT4 struct {
	n    int          // Transform length (even)
	fft  *fftState    // Half-length complex FFT plan
	twid []complex128 // exp(-i*pi*(8n+1)/(8N)) pre/post twiddles
	fin  []complex128 // Scratch: FFT input
	fout []complex128 // Scratch: FFT output
}

// NewDCT4 creates a transform of even length n. Lengths whose half does not
// factor into 2, 3 and 5 are unsupported and return nil.
func NewDCT4(n int) *DCT4 {
	if n <= 0 || n%2 != 0 {
		return nil
	}
	half := n / 2
	fft := getFFTState(half)
	if fft == nil {
		return nil
	}
	d := &DCT4{
		n:    n,
		fft:  fft,
		twid: make([]complex128, half),
		fin:  make([]complex128, half),
		fout: make([]complex128, half),
	}
	for k := 0; k < half; k++ {
		phase := -math.Pi * float64(8*k+1) / float64(8*n)
		d.twid[k] = complex(math.Cos(phase), math.Sin(phase))
	}
	return d
}

// Transform computes the DCT-IV of in into out. Both slices must have
// length n; in and out may alias.
func (d *DCT4) Transform(in, out []float64) {
	half := d.n / 2

	// Fold input pairs into the half-length complex domain.
	for k := 0; k < half; k++ {
		d.fin[k] = complex(in[2*k], in[d.n-1-2*k]) * d.twid[k]
	}

	d.fft.forward(d.fout, d.fin)

	for k := 0; k < half; k++ {
		y := d.fout[k] * d.twid[k]
		out[2*k] = real(y)
		out[d.n-1-2*k] = -imag(y)
	}
}
