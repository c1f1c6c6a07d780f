package encoder

import (
	"math"

	"github.com/thesyncim/golc3/internal/types"
)

var (
	noiseStop10ms  = [5]int{80, 160, 240, 320, 400}
	noiseStop7p5ms = [5]int{60, 120, 180, 240, 300}
)

// noiseLevel measures the mean magnitude, in gain steps, of the bins the
// quantizer zeroed out above the noise floor start, and folds it into the
// 3-bit factor steering noise filling on the other side.
func noiseLevel(cfg *Config, bw types.Bandwidth, spectrum []float64, xq []int, gg float64) int {
	start, width := 24, 3
	stop := noiseStop10ms[bw]
	if cfg.Duration == types.FrameDuration7p5ms {
		start, width = 18, 2
		stop = noiseStop7p5ms[bw]
	}

	var sum float64
	count := 0
	for k := start; k < min(cfg.NE, stop); k++ {
		quiet := true
		for i := k - width; i < min(stop, k+width+1); i++ {
			if xq[i] != 0 {
				quiet = false
				break
			}
		}
		if quiet {
			sum += math.Abs(spectrum[k])
			count++
		}
	}

	level := 0.0
	if count > 0 && gg > 0 {
		level = sum / gg / float64(count)
	}
	diff := 8 - 16*level
	if diff < 0 {
		return 0
	}
	return min(int(diff+0.5), 7)
}
