package encoder

// resampler12k8 converts input frames to the fixed 12.8kHz rate the pitch
// analysis runs at. Conceptually the signal is upsampled to a 192kHz grid,
// lowpass filtered and decimated by 15; the loop below only ever touches
// the input samples under the filter taps that land on that grid.
//
// 44.1kHz input runs with the 48kHz factor, so its analysis rate is
// actually 11.76kHz. The pitch lag range scales along with it and the
// bitstream stays unaffected.
type resampler12k8 struct {
	p    int // upsample factor to the 192kHz grid
	p120 int // filter half-width in input samples
	gain float64
	ext  []float64 // 240/p history samples followed by the current frame
}

func newResampler12k8(cfg *Config) *resampler12k8 {
	p := 192000 / cfg.Fs
	if cfg.Fs == 44100 {
		p = 4
	}
	gain := float64(p)
	if cfg.Fs == 8000 {
		gain /= 2
	}
	return &resampler12k8{
		p:    p,
		p120: 120 / p,
		gain: gain,
		ext:  make([]float64, 240/p+cfg.NF),
	}
}

// run consumes one input frame and fills out with one frame at 12.8kHz.
func (r *resampler12k8) run(in, out []float64) {
	hist := len(r.ext) - len(in)
	copy(r.ext[:hist], r.ext[len(in):])
	copy(r.ext[hist:], in)

	for n := range out {
		t := 15 * n
		q, rem := t/r.p, t%r.p
		xi := hist + q - 2*r.p120 + 1
		var sum float64
		for i := r.p - rem - 1; i < len(resampFilter); i += r.p {
			sum += r.ext[xi] * resampFilter[i]
			xi++
		}
		out[n] = sum * r.gain
	}
}

func (r *resampler12k8) reset() {
	for i := range r.ext {
		r.ext[i] = 0
	}
}
