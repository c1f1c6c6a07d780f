// Package mdct implements the low-delay MDCT analysis stage of the encoder:
// an asymmetric windowed fold over one frame of history followed by a
// type-IV DCT computed through a half-length complex FFT.
package mdct

// Analyzer transforms successive PCM frames of one channel into MDCT
// spectra. It keeps nf-z samples of history, so the first frame after
// creation or Reset is analyzed against silence.
type Analyzer struct {
	nf   int       // Frame length in samples
	z    int       // Delay reduction in samples
	win  []float64 // Analysis window, length 2*nf-z, normalization included
	ola  []float64 // Previous frame tail x[z:nf], length nf-z
	tw   []float64 // Scratch: windowed time buffer, length 2*nf (tail stays zero)
	fold []float64 // Scratch: DCT-IV input, length nf
	dct  *DCT4
}

// NewAnalyzer creates an analyzer for frames of nf samples with delay
// reduction z. Unsupported frame lengths return nil.
func NewAnalyzer(nf, z int) *Analyzer {
	if z <= 0 || z >= nf {
		return nil
	}
	dct := NewDCT4(nf)
	if dct == nil {
		return nil
	}
	return &Analyzer{
		nf:   nf,
		z:    z,
		win:  analysisWindow(nf, z),
		ola:  make([]float64, nf-z),
		tw:   make([]float64, 2*nf),
		fold: make([]float64, nf),
		dct:  dct,
	}
}

// Process analyzes one frame. x holds nf time samples; spectrum receives
// the nf MDCT coefficients.
func (a *Analyzer) Process(x, spectrum []float64) {
	nf, z := a.nf, a.z
	n2 := nf / 2
	n32 := nf + n2

	// Window the time buffer: nf-z samples of history followed by the
	// whole current frame. The final z positions of tw are permanent zeros.
	for n := 0; n < nf-z; n++ {
		a.tw[n] = a.win[n] * a.ola[n]
	}
	for n := nf - z; n < 2*nf-z; n++ {
		a.tw[n] = a.win[n] * x[n-(nf-z)]
	}
	copy(a.ola, x[z:])

	// Fold the 2*nf windowed samples down to one DCT-IV input frame.
	for i := 0; i < n2; i++ {
		a.fold[i] = -a.tw[n32-1-i] - a.tw[n32+i]
	}
	for i := n2; i < nf; i++ {
		a.fold[i] = a.tw[i-n2] - a.tw[n32-1-i]
	}

	a.dct.Transform(a.fold, spectrum)
}

// Reset clears the analysis history, as if the channel had just been
// created.
func (a *Analyzer) Reset() {
	for i := range a.ola {
		a.ola[i] = 0
	}
}

// FrameLength returns the number of samples consumed, and coefficients
// produced, per call to Process.
func (a *Analyzer) FrameLength() int {
	return a.nf
}
