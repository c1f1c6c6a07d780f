package encoder

import (
	"math"

	"github.com/thesyncim/golc3/internal/types"
	"github.com/thesyncim/golc3/util"
)

const tnsMaxOrder = 8

// Subdivision edges per bandwidth: three autocorrelation regions per
// filter. Rows with a nonzero seventh entry run a second filter starting at
// entry 3; the filtered range of a filter spans its first to its last edge.
var (
	tnsSub10ms = [5][7]int{
		{12, 34, 57, 80, 0, 0, 0},
		{12, 61, 110, 160, 0, 0, 0},
		{12, 88, 164, 240, 0, 0, 0},
		{12, 61, 110, 160, 213, 266, 320},
		{12, 74, 137, 200, 266, 333, 400},
	}
	tnsSub7p5ms = [5][7]int{
		{9, 26, 43, 60, 0, 0, 0},
		{9, 46, 83, 120, 0, 0, 0},
		{9, 66, 123, 180, 0, 0, 0},
		{9, 46, 82, 120, 159, 200, 240},
		{9, 56, 103, 150, 200, 250, 300},
	}
)

// Lag window flattening the autocorrelation before LPC analysis.
var tnsLagWindow [tnsMaxOrder + 1]float64

func init() {
	for k := range tnsLagWindow {
		x := 0.02 * math.Pi * float64(k)
		tnsLagWindow[k] = math.Exp(-0.5 * x * x)
	}
}

// tnsData carries one frame's filter decisions for the serializer.
type tnsData struct {
	numFilters int
	lpcWeight  bool
	order      [2]int              // filter order, 0 disables the filter
	rcIdx      [2][tnsMaxOrder]int // quantized reflection indices 0..16
	bits       int                 // side cost in whole bits
}

// tnsAnalyze measures temporal flatness over each filter range, derives a
// quantized lattice filter where prediction pays, and applies it to the
// spectrum in place. Filters stay off near Nyquist and whenever the
// prediction gain is too small to cover their side cost.
func tnsAnalyze(cfg *Config, bw types.Bandwidth, nbits int, nearNyq bool, spectrum []float64) tnsData {
	var d tnsData
	tbl := &tnsSub10ms[bw]
	lpcwLimit := 480
	if cfg.Duration == types.FrameDuration7p5ms {
		tbl = &tnsSub7p5ms[bw]
		lpcwLimit = 360
	}
	d.numFilters = 1
	if tbl[6] != 0 {
		d.numFilters = 2
	}
	d.lpcWeight = nbits < lpcwLimit

	var rcQ [2][tnsMaxOrder]float64
	for f := 0; f < d.numFilters; f++ {
		sub := tbl[3*f : 3*f+4]

		// Autocorrelation normalized per subdivision, so one loud region
		// cannot dominate the fit.
		var r [tnsMaxOrder + 1]float64
		r[0] = 3
		var inv [3]float64
		live := true
		for s := 0; s < 3; s++ {
			var es float64
			for n := sub[s]; n < sub[s+1]; n++ {
				es += spectrum[n] * spectrum[n]
			}
			if es == 0 {
				live = false
				break
			}
			inv[s] = 1 / es
		}
		if live {
			for k := 1; k <= tnsMaxOrder; k++ {
				var rk float64
				for s := 0; s < 3; s++ {
					var ac float64
					for n := sub[s]; n < sub[s+1]-k; n++ {
						ac += spectrum[n] * spectrum[n+k]
					}
					rk += ac * inv[s]
				}
				r[k] = rk * tnsLagWindow[k]
			}
		}

		var a, prev [tnsMaxOrder + 1]float64
		a[0] = 1
		e := r[0]
		for k := 1; k <= tnsMaxOrder; k++ {
			prev = a
			var rc float64
			for n := 0; n < k; n++ {
				rc -= prev[n] * r[k-n]
			}
			if e == 0 {
				e = 1
			}
			rc /= e
			for n := 1; n < k; n++ {
				a[n] = prev[n] + rc*prev[k-n]
			}
			a[k] = rc
			e *= 1 - rc*rc
		}
		predGain := r[0] / e
		if predGain <= 1.5 || nearNyq {
			continue
		}

		gamma := 1.0
		if d.lpcWeight && predGain < 2 {
			gamma = 1 - 0.3*(2-predGain)
		}
		gk := 1.0
		for k := 0; k <= tnsMaxOrder; k++ {
			a[k] *= gk
			gk *= gamma
		}

		// Weighted LPC back to reflection coefficients.
		var rcf [tnsMaxOrder]float64
		for k := tnsMaxOrder; k > 0; k-- {
			rck := a[k]
			rcf[k-1] = rck
			den := 1 - rck*rck
			prev = a
			for n := 1; n < k; n++ {
				a[n] = (prev[n] - rck*prev[k-n]) / den
			}
		}

		// Arcsine-domain quantization with step pi/17. The filter order is
		// the last position still carrying a nonzero coefficient.
		order := 0
		for k := 0; k < tnsMaxOrder; k++ {
			idx := int(math.Round(math.Asin(util.Clamp(rcf[k], -1, 1)) / (math.Pi / 17)))
			idx = util.Clamp(idx, -8, 8)
			if idx != 0 {
				order = k + 1
			}
			d.rcIdx[f][k] = idx + 8
			rcQ[f][k] = math.Sin(float64(idx) * math.Pi / 17)
		}
		d.order[f] = order
	}

	// One signalling bit per filter plus the arithmetic cost of order and
	// coefficients, rounded up to whole bits per filter.
	lpcw := 0
	if d.lpcWeight {
		lpcw = 1
	}
	for f := 0; f < d.numFilters; f++ {
		units := acBitUnit
		if d.order[f] > 0 {
			units += acTnsOrderBits[lpcw][d.order[f]-1]
			for k := 0; k < d.order[f]; k++ {
				units += acTnsCoefBits[k][d.rcIdx[f][k]]
			}
		}
		d.bits += (units + acBitUnit - 1) / acBitUnit
	}

	// Lattice filtering over each active range. The state spans both
	// ranges without a reset in between.
	var st [tnsMaxOrder]float64
	for f := 0; f < d.numFilters; f++ {
		if d.order[f] == 0 {
			continue
		}
		last := d.order[f] - 1
		rc := &rcQ[f]
		for n := tbl[3*f]; n < tbl[3*f+3]; n++ {
			t := spectrum[n]
			save := t
			for k := 0; k < last; k++ {
				tmp := rc[k]*t + st[k]
				t += rc[k] * st[k]
				st[k] = save
				save = tmp
			}
			t += rc[last] * st[last]
			st[last] = save
			spectrum[n] = t
		}
	}
	return d
}
