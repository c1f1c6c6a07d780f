package encoder

import "math"

// snsData carries one frame's quantized envelope and the side codes the
// serializer needs to reproduce it.
type snsData struct {
	indLF, indHF int    // stage-1 codebook indices, 5 bits each
	shape        int    // pyramid shape 0..3
	gainInd      int    // adjustment gain index within the shape's ladder
	leadSignA    int    // leading sign of the primary pulse set
	idxJoint     uint32 // joint shape index, 25 or 24 bits wide
	scfQ         [snsScales]float64
}

// The envelope side information always occupies 38 bits: two 5-bit stage-1
// indices, the submode MSB, the gain MSBs, the leading sign, and the joint
// index whose width shrinks as the gain field grows.
const snsSideBits = 38

// snsJointBits is the width of the joint shape index per shape.
var snsJointBits = [4]int{25, 25, 24, 24}

// pulseState tracks a pulse configuration during the greedy search: total
// pulses, correlation against the target magnitudes, and vector energy.
type pulseState struct {
	k      int
	corr   float64
	energy float64
}

// snsAddPulses places pulses one at a time until y carries k in total. Each
// pulse goes to the position maximizing the normalized correlation with the
// target, compared cross-multiplied to stay division free.
func snsAddPulses(absX []float64, y []int, k int, st *pulseState) {
	for st.k < k {
		best := 0
		bestCorr := st.corr + absX[0]
		bestCorrSq := bestCorr * bestCorr
		bestEn := st.energy + 2*float64(y[0]) + 1
		for c := 1; c < len(y); c++ {
			cs := st.corr + absX[c]
			cs *= cs
			en := st.energy + 2*float64(y[c]) + 1
			if cs*bestEn > bestCorrSq*en {
				best, bestCorrSq, bestEn = c, cs, en
			}
		}
		st.corr += absX[best]
		st.energy += 2*float64(y[best]) + 1
		y[best]++
		st.k++
	}
}

// snsQuantize maps the scale factors onto the two-stage codebook. Stage 1
// picks one vector per half from the split codebooks. The residual is
// rotated and matched against four pyramid shapes sharing one greedy pulse
// search, then the shape and gain minimizing the rotated-domain error win.
// The chosen pulse vectors are enumerated into a joint index that also
// absorbs the submode LSB and, for two shapes, the gain LSB.
func snsQuantize(scf *[snsScales]float64) snsData {
	var d snsData

	bestLF := math.MaxFloat64
	bestHF := math.MaxFloat64
	for i := 0; i < 32; i++ {
		var eLF, eHF float64
		for n := 0; n < 8; n++ {
			dl := scf[n] - snsLFCB[i][n]
			eLF += dl * dl
			dh := scf[8+n] - snsHFCB[i][n]
			eHF += dh * dh
		}
		if eLF < bestLF {
			bestLF, d.indLF = eLF, i
		}
		if eHF < bestHF {
			bestHF, d.indHF = eHF, i
		}
	}

	var stage1, r1 [snsScales]float64
	for n := 0; n < 8; n++ {
		stage1[n] = snsLFCB[d.indLF][n]
		stage1[8+n] = snsHFCB[d.indHF][n]
	}
	for n := range r1 {
		r1[n] = scf[n] - stage1[n]
	}

	var t2 [snsScales]float64
	for j := 0; j < snsScales; j++ {
		var acc float64
		for n := 0; n < snsScales; n++ {
			acc += r1[n] * snsD16[n][j]
		}
		t2[j] = acc
	}

	var absX [snsScales]float64
	var sum float64
	for n, v := range t2 {
		absX[n] = math.Abs(v)
		sum += absX[n]
	}

	// Seed below the 6-pulse pyramid, then grow 6 -> 8 -> 10 pulses,
	// capturing a candidate at each stop.
	var y3 [snsScales]int
	var ps pulseState
	if sum > 0 {
		fac := 5 / sum
		for n, a := range absX {
			if p := int(a * fac); p != 0 {
				y3[n] = p
				ps.k += p
				ps.corr += a * float64(p)
				ps.energy += float64(p * p)
			}
		}
	}
	snsAddPulses(absX[:], y3[:], 6, &ps)

	y2 := y3
	snsAddPulses(absX[:], y2[:], 8, &ps)

	var y1 [10]int
	copy(y1[:], y2[:10])
	ps1 := ps
	for n := 10; n < snsScales; n++ {
		if y2[n] != 0 {
			ps1.k -= y2[n]
			ps1.corr -= absX[n] * float64(y2[n])
			ps1.energy -= float64(y2[n] * y2[n])
		}
	}
	snsAddPulses(absX[:10], y1[:], 10, &ps1)

	// The fourth candidate reuses the 10-pulse set and spends one extra
	// pulse on the strongest upper coordinate.
	top := 10
	for n := 11; n < snsScales; n++ {
		if absX[n] > absX[top] {
			top = n
		}
	}

	for n := 0; n < snsScales; n++ {
		if t2[n] < 0 {
			y3[n] = -y3[n]
			y2[n] = -y2[n]
			if n < 10 {
				y1[n] = -y1[n]
			}
		}
	}
	var y0 [snsScales]int
	copy(y0[:10], y1[:])
	if t2[top] < 0 {
		y0[top] = -1
	} else {
		y0[top] = 1
	}

	var xq [4][snsScales]float64
	normalize(y0[:], &xq[0])
	normalize(y1[:], &xq[1])
	normalize(y2[:], &xq[2])
	normalize(y3[:], &xq[3])

	gains := [4][]float64{snsGainsReg[:], snsGainsRegLF[:], snsGainsNear[:], snsGainsFar[:]}
	bestMSE := math.MaxFloat64
	for j := 0; j < 4; j++ {
		for gi, g := range gains[j] {
			var mse float64
			for n := 0; n < snsScales; n++ {
				diff := t2[n] - g*xq[j][n]
				mse += diff * diff
			}
			if mse < bestMSE {
				bestMSE = mse
				d.shape, d.gainInd = j, gi
			}
		}
	}
	g := gains[d.shape][d.gainInd]

	switch d.shape {
	case 0:
		idxA, lsA := mpvqEnum(y0[:10])
		idxB, lsB := mpvqEnum(y0[10:])
		d.leadSignA = lsA
		d.idxJoint = (2*idxB+uint32(lsB)+2)*mpvqSize10x10 + idxA
	case 1:
		idxA, lsA := mpvqEnum(y1[:])
		d.leadSignA = lsA
		d.idxJoint = uint32(d.gainInd&1)*mpvqSize10x10 + idxA
	case 2:
		idxA, lsA := mpvqEnum(y2[:])
		d.leadSignA = lsA
		d.idxJoint = idxA
	case 3:
		idxA, lsA := mpvqEnum(y3[:])
		d.leadSignA = lsA
		d.idxJoint = mpvqSize16x8 + uint32(d.gainInd&1) + 2*idxA
	}

	for n := 0; n < snsScales; n++ {
		var acc float64
		for j := 0; j < snsScales; j++ {
			acc += xq[d.shape][j] * snsD16[n][j]
		}
		d.scfQ[n] = stage1[n] + g*acc
	}
	return d
}

// normalize scales the pulse vector to unit Euclidean norm, zero padding
// when it is shorter than the rotated domain.
func normalize(y []int, out *[snsScales]float64) {
	var en float64
	for i, p := range y {
		out[i] = float64(p)
		en += out[i] * out[i]
	}
	s := 1 / math.Sqrt(en)
	for i := range y {
		out[i] *= s
	}
}
