package encoder

import "math"

// Filters used by the pitch analysis chain. All three kernels are
// Hann-windowed sincs; resampFilter lives on the virtual 192kHz grid and
// the two interpolators work in quarter-sample steps at 12.8kHz.
var (
	resampFilter    [239]float64 // center tap at index 119
	ltpfInterpR     [31]float64  // autocorrelation refinement, center at 15
	ltpfInterpX12k8 [15]float64  // signal interpolation, center at 7
)

// 50Hz highpass at 12.8kHz, direct form II.
const (
	ltpfHPB0 = 0.9827947082978771
	ltpfHPB1 = -1.965589416595754
	ltpfHPB2 = 0.9827947082978771
	ltpfHPA1 = -1.9652933726226904
	ltpfHPA2 = 0.9658854605688177
)

// 2:1 downsampler from 12.8kHz to the 6.4kHz first-stage pitch rate.
var ltpfDown2 = [5]float64{
	0.1236796411180537, 0.2353512128364889, 0.2819382920909148,
	0.2353512128364889, 0.1236796411180537,
}

func init() {
	for i := range resampFilter {
		m := float64(i - 119)
		resampFilter[i] = sinc(m/15) * (0.5 + 0.5*math.Cos(math.Pi*m/120)) / 15
	}
	for i := range ltpfInterpR {
		j := float64(i - 15)
		ltpfInterpR[i] = sinc(j/4) * (0.5 + 0.5*math.Cos(math.Pi*j/16))
	}
	for i := range ltpfInterpX12k8 {
		j := float64(i - 7)
		ltpfInterpX12k8[i] = sinc(j/4) * (0.5 + 0.5*math.Cos(math.Pi*j/8))
	}
}

func sinc(x float64) float64 {
	if x == 0 {
		return 1
	}
	return math.Sin(math.Pi*x) / (math.Pi * x)
}
