package encoder

import "math"

// Arithmetic models for the spectrum pairs and the TNS side data. Every
// model's frequencies sum to 1024, matching the coder's probability
// precision. The bits tables carry the per-symbol cost in 1/2048 bit
// units, rounded up so the budget estimates made during quantization never
// fall short of the coded length.

// acBitUnit is one whole bit in the fixed-point cost accounting.
const acBitUnit = 2048

var (
	// Spectrum pair models: 4 escape levels x 16 context states, 16 pair
	// symbols plus the escape. Selected as acSpecModel(lev, c).
	acSpecFreq [64][17]uint16
	acSpecCum  [64][17]uint16
	acSpecBits [64][17]int

	// TNS filter order models, one per weighting mode.
	acTnsOrderFreq [2][8]uint16
	acTnsOrderCum  [2][8]uint16
	acTnsOrderBits [2][8]int

	// TNS reflection coefficient models, one per coefficient position.
	acTnsCoefFreq [8][17]uint16
	acTnsCoefCum  [8][17]uint16
	acTnsCoefBits [8][17]int
)

// acSpecModel selects the spectrum pair model for an escape level and a
// context state.
func acSpecModel(lev, c int) int {
	if lev > 3 {
		lev = 3
	}
	return lev<<4 | c&15
}

func init() {
	// Pair amplitudes cluster near zero; the spread grows with the context
	// activity and with each escape level already consumed.
	raw := make([]float64, 17)
	for lev := 0; lev < 4; lev++ {
		for c := 0; c < 16; c++ {
			s := 0.5 + 0.21*float64(c) + 0.85*float64(lev)
			for sym := 0; sym < 16; sym++ {
				raw[sym] = math.Exp(-float64(sym&3+sym>>2) / s)
			}
			raw[16] = 2 * math.Exp(-7/s)
			m := lev<<4 | c
			installModel(raw, acSpecFreq[m][:], acSpecCum[m][:], acSpecBits[m][:])
		}
	}

	// Short filters dominate, much more so at low rates where the weighted
	// LPC flattens the response.
	rawOrd := make([]float64, 8)
	for w := 0; w < 2; w++ {
		decay := 0.85
		if w == 1 {
			decay = 0.55
		}
		for i := range rawOrd {
			rawOrd[i] = math.Pow(decay, float64(i))
		}
		installModel(rawOrd, acTnsOrderFreq[w][:], acTnsOrderCum[w][:], acTnsOrderBits[w][:])
	}

	// Reflection coefficients concentrate around zero, tighter at higher
	// positions.
	for k := 0; k < 8; k++ {
		sigma := 2.6 - 0.2*float64(k)
		for i := range raw {
			d := float64(i - 8)
			raw[i] = math.Exp(-d * d / (2 * sigma * sigma))
		}
		installModel(raw, acTnsCoefFreq[k][:], acTnsCoefCum[k][:], acTnsCoefBits[k][:])
	}
}

// installModel quantizes raw weights into frequencies summing to 1024 with
// every symbol reachable, and fills the cumulative and cost tables.
func installModel(raw []float64, freq, cum []uint16, bits []int) {
	n := len(raw)
	var sum float64
	for _, v := range raw {
		sum += v
	}
	freqs := make([]int, n)
	rem := make([]float64, n)
	total := 1024 - n
	acc := 0
	for i, v := range raw {
		exact := v / sum * float64(total)
		f := int(exact)
		freqs[i] = 1 + f
		rem[i] = exact - float64(f)
		acc += 1 + f
	}
	for ; acc < 1024; acc++ {
		best := 0
		for i := 1; i < n; i++ {
			if rem[i] > rem[best] {
				best = i
			}
		}
		freqs[best]++
		rem[best] = -1
	}

	c := 0
	for i, f := range freqs {
		freq[i] = uint16(f)
		cum[i] = uint16(c)
		c += f
		bits[i] = int(math.Ceil(acBitUnit * math.Log2(1024/float64(f))))
	}
}
