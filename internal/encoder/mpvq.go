package encoder

import "github.com/thesyncim/golc3/util"

// mpvqOffsets[n][k] counts the pyramid vectors of dimension n with total
// pulse magnitude less than k whose leading element is nonzero, folded for
// sign symmetry. Row n, column k obeys
//
//	A(n,k) = A(n-1,k-1) + A(n-1,k) + A(n,k-1)
//
// with A(n,0) = 0 and A(0,k) = 1 for k > 0. The enumeration below walks
// the vector tail-first and accumulates these offsets into a unique index.
var mpvqOffsets [16][11]uint32

func init() {
	for k := 1; k < 11; k++ {
		mpvqOffsets[0][k] = 1
	}
	for n := 1; n < 16; n++ {
		for k := 1; k < 11; k++ {
			mpvqOffsets[n][k] = mpvqOffsets[n-1][k-1] + mpvqOffsets[n-1][k] + mpvqOffsets[n][k-1]
		}
	}
}

// Codepoint counts for the pyramid shapes in use, each half the signed
// pyramid size since the leading sign is lifted out of the index.
const (
	mpvqSize10x10 = 2390004
	mpvqSize16x8  = 15158272
	mpvqSize16x6  = 774912
)

// mpvqEnum maps a pulse vector to its pyramid index and leading sign. The
// sign of each nonzero element is deferred by one position: it doubles the
// index built from the elements after it, so the sign of the first nonzero
// element ends up returned separately rather than encoded. leadSign is 0
// for positive, 1 for negative, and 0 when the vector is all zero.
func mpvqEnum(vec []int) (index uint32, leadSign int) {
	sign := -1
	var kacc int
	h := mpvqOffsets[0][0]
	n := 0
	for pos := len(vec) - 1; pos >= 0; pos-- {
		v := vec[pos]
		if sign >= 0 && v != 0 {
			index = 2*index + uint32(sign)
		}
		if v < 0 {
			sign = 1
		} else if v > 0 {
			sign = 0
		}
		index += h
		kacc += util.Abs(v)
		if pos != 0 {
			n++
			h = mpvqOffsets[n][kacc]
		}
	}
	if sign < 0 {
		sign = 0
	}
	return index, sign
}

// mpvqDeenum rebuilds the pulse vector of k pulses from its pyramid index
// and leading sign, inverting mpvqEnum. Each position peels off the largest
// offset layer the index still covers; once the index reaches zero, every
// remaining pulse lands on the current position with the pending sign.
func mpvqDeenum(index uint32, leadSign, k int, vec []int) {
	for i := range vec {
		vec[i] = 0
	}
	neg := leadSign != 0
	for pos := 0; pos < len(vec); pos++ {
		if index == 0 {
			if neg {
				vec[pos] = -k
			} else {
				vec[pos] = k
			}
			return
		}
		n := len(vec) - 1 - pos
		kacc := k
		for index < mpvqOffsets[n][kacc] {
			kacc--
		}
		index -= mpvqOffsets[n][kacc]
		if delta := k - kacc; delta != 0 {
			if neg {
				vec[pos] = -delta
			} else {
				vec[pos] = delta
			}
			neg = index&1 == 1
			index >>= 1
			k = kacc
		}
	}
}
