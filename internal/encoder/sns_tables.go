package encoder

import "math"

// Envelope geometry: 64 log-domain bands collapse to 16 scale factors.
const (
	snsBands  = 64
	snsScales = 16
)

// snsD16 is the orthonormal DCT-II basis that rotates stage-2 residuals
// into a decorrelated domain: snsD16[n][j] = sqrt(2/16)*g_j*cos(pi*(2n+1)*j/32)
// with g_0 = 1/sqrt(2). Analysis applies the transpose, synthesis the
// matrix itself.
var snsD16 [snsScales][snsScales]float64

// Stage-1 split codebooks, 32 vectors over 8 bands each. The family spans
// the two dominant components of log-envelope residuals, a tilt level
// crossed with a curvature level on the half-length cosine basis. The
// high-band book repeats the family with a falling bias since envelopes
// decay toward Nyquist far more often than they rise.
var (
	snsLFCB [32][8]float64
	snsHFCB [32][8]float64
)

func init() {
	for n := 0; n < snsScales; n++ {
		for j := 0; j < snsScales; j++ {
			v := math.Sqrt(2.0/16) * math.Cos(math.Pi*(2*float64(n)+1)*float64(j)/32)
			if j == 0 {
				v /= math.Sqrt2
			}
			snsD16[n][j] = v
		}
	}

	for i := 0; i < 32; i++ {
		tilt := -5.25 + 1.5*float64(i&7)
		curve := -2.4 + 1.6*float64(i>>3)
		for n := 0; n < 8; n++ {
			c1 := math.Cos(math.Pi * (2*float64(n) + 1) / 16)
			c2 := math.Cos(math.Pi * (2*float64(n) + 1) * 2 / 16)
			snsLFCB[i][n] = tilt*c1 + curve*c2
			snsHFCB[i][n] = (tilt-0.9)*c1 + curve*c2
		}
	}
}

// Adjustment gain ladders per shape. Shapes with fewer pulses carry wider
// spaced, larger gains.
var (
	snsGainsReg   = [2]float64{1.45, 2.24}
	snsGainsRegLF = [4]float64{1.20, 1.65, 2.25, 3.10}
	snsGainsNear  = [4]float64{1.35, 1.83, 2.49, 3.38}
	snsGainsFar   = [8]float64{1.06, 1.44, 1.96, 2.66, 3.62, 4.92, 6.69, 9.09}
)

// Gain index bit split per shape. The MSBs travel as plain side bits; the
// LSB of shapes 1 and 3 is folded into the joint shape index instead.
var (
	snsGainMSBBits = [4]int{1, 1, 2, 2}
	snsGainLSBBits = [4]int{0, 1, 0, 1}
)
