package encoder

import (
	"math"

	"github.com/thesyncim/golc3/internal/types"
)

// Quiet-region edges for the bandwidth detector. Row nbw-1 lists, for a
// detector with nbw candidate bandwidths, the first and last band of each
// candidate's quiet region: the bands that stay silent when the input
// carries no content above that bandwidth.
var (
	bwStart10ms = [4][4]int{
		{53},
		{47, 59},
		{44, 54, 60},
		{41, 51, 57, 61},
	}
	bwStop10ms = [4][4]int{
		{63},
		{56, 63},
		{52, 59, 63},
		{49, 55, 60, 63},
	}
	bwStart7p5ms = [4][4]int{
		{51},
		{45, 58},
		{42, 53, 60},
		{40, 51, 57, 61},
	}
	bwStop7p5ms = [4][4]int{
		{63},
		{55, 63},
		{51, 58, 63},
		{48, 55, 60, 63},
	}
)

// Detection thresholds and cutoff-edge window lengths, indexed by
// candidate bandwidth.
var (
	bwQuietThresh    = [4]float64{20, 10, 10, 10}
	bwContrastThresh = [4]float64{15, 23, 20, 20}
	bwEdgeLen10ms    = [4]int{4, 4, 3, 1}
	bwEdgeLen7p5ms   = [4]int{4, 4, 3, 2}
)

// bandwidthBits returns the side-information bit width of the bandwidth
// index for a sample rate index.
func bandwidthBits(fsInd int) int {
	return [5]int{0, 1, 2, 2, 3}[fsInd]
}

// detectBandwidth classifies the active audio bandwidth of a frame from
// its band energies. Content recorded at a lower rate and resampled up
// leaves the top bands quiet; the detector picks the highest candidate
// whose quiet region carries energy, then confirms a reduction by the
// energy drop across the cutoff edge. An 8kHz session has a single
// bandwidth and skips detection.
func detectBandwidth(cfg *Config, eb []float64) types.Bandwidth {
	nbw := cfg.FsInd
	if nbw == 0 {
		return types.BandwidthNarrowband
	}

	start := bwStart10ms[nbw-1][:]
	stop := bwStop10ms[nbw-1][:]
	edge := bwEdgeLen10ms[:]
	if cfg.Duration == types.FrameDuration7p5ms {
		start = bwStart7p5ms[nbw-1][:]
		stop = bwStop7p5ms[nbw-1][:]
		edge = bwEdgeLen7p5ms[:]
	}

	// First stage: from the top candidate downward, the first quiet
	// region with average energy at the threshold fixes the bandwidth.
	bw0 := 0
	for k := nbw - 1; k >= 0; k-- {
		var q float64
		for n := start[k]; n <= stop[k]; n++ {
			q += eb[n]
		}
		if q/float64(stop[k]-start[k]+1) >= bwQuietThresh[k] {
			bw0 = k + 1
			break
		}
	}
	if bw0 == nbw {
		return types.Bandwidth(bw0)
	}

	// Second stage: accept the reduction only when the energy drops
	// sharply right at the candidate's cutoff edge. A gradual rolloff is
	// genuine wideband content, not a resampling artifact.
	l := edge[bw0]
	var cmax float64
	for n := start[bw0] - l + 1; n <= start[bw0]+1; n++ {
		c := 10 * math.Log10(eb[n-l]/eb[n])
		if c > cmax {
			cmax = c
		}
	}
	if cmax > bwContrastThresh[bw0] {
		return types.Bandwidth(bw0)
	}
	return types.Bandwidth(nbw)
}
