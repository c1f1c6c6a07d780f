package encoder

import (
	"math/bits"

	"github.com/thesyncim/golc3/internal/types"
	"github.com/thesyncim/golc3/rangecoding"
)

// decodedFrame holds every field parsed back out of a serialized frame.
type decodedFrame struct {
	bw           types.Bandwidth
	lastnzTrunc  int
	lsbMode      bool
	ggInd        int
	numFilters   int
	tnsActive    [2]bool
	pitchPresent bool
	indLF, indHF int
	shapeMSB     int
	gainMSBs     int
	leadSign     int
	idxJoint     uint32
	ltpfActive   bool
	pitchIndex   int
	noiseFac     int
	tnsOrder     [2]int
	tnsCoef      [2][tnsMaxOrder]int
	xq           []int
	resBits      []uint8
	err          int
}

// readFrame parses one frame the way a decoder would: side information
// backward from the last byte, arithmetic data forward from the first,
// then residual or LSB bits from whatever budget remains. Everything the
// parse needs beyond cfg is derived from the frame itself.
func readFrame(cfg *Config, buf []byte) *decodedFrame {
	var d rangecoding.Decoder
	d.Init(buf)
	f := &decodedFrame{xq: make([]int, cfg.NE)}
	nbits := 8 * len(buf)

	if n := bandwidthBits(cfg.FsInd); n > 0 {
		f.bw = types.Bandwidth(d.ReadUIntBackward(n))
	}
	f.lastnzTrunc = 2 * (int(d.ReadUIntBackward(lastnzBits(cfg.NE))) + 1)
	f.lsbMode = d.ReadBitBackward() == 1
	f.ggInd = int(d.ReadUIntBackward(8))

	f.numFilters = 1
	tbl := &tnsSub10ms[f.bw]
	if cfg.Duration == types.FrameDuration7p5ms {
		tbl = &tnsSub7p5ms[f.bw]
	}
	if tbl[6] != 0 {
		f.numFilters = 2
	}
	for i := 0; i < f.numFilters; i++ {
		f.tnsActive[i] = d.ReadBitBackward() == 1
	}
	f.pitchPresent = d.ReadBitBackward() == 1

	f.indLF = int(d.ReadUIntBackward(5))
	f.indHF = int(d.ReadUIntBackward(5))
	f.shapeMSB = int(d.ReadBitBackward())
	f.gainMSBs = int(d.ReadUIntBackward(snsGainMSBBits[f.shapeMSB*2]))
	f.leadSign = int(d.ReadBitBackward())
	f.idxJoint = d.ReadUIntBackward(snsJointBits[f.shapeMSB*2])

	if f.pitchPresent {
		f.ltpfActive = d.ReadBitBackward() == 1
		f.pitchIndex = int(d.ReadUIntBackward(9))
	}
	f.noiseFac = int(d.ReadUIntBackward(3))

	lpcw := 0
	lpcwLimit := 480
	if cfg.Duration == types.FrameDuration7p5ms {
		lpcwLimit = 360
	}
	if nbits < lpcwLimit {
		lpcw = 1
	}
	for i := 0; i < f.numFilters; i++ {
		if !f.tnsActive[i] {
			continue
		}
		f.tnsOrder[i] = d.Decode(acTnsOrderCum[lpcw][:], acTnsOrderFreq[lpcw][:]) + 1
		for k := 0; k < f.tnsOrder[i]; k++ {
			f.tnsCoef[i][k] = d.Decode(acTnsCoefCum[k][:], acTnsCoefFreq[k][:])
		}
	}

	rateFlag := 0
	if nbits > 160+160*cfg.FsInd {
		rateFlag = 512
	}

	// Spectrum: pair escapes and their backward bits first, then the final
	// symbol, then the sign of each value whose decoded magnitude is
	// nonzero. Under LSB mode the first escape round sheds no backward
	// bits; those arrive with the leftover budget below.
	var escaped []int
	c := 0
	for k := 0; k < f.lastnzTrunc; k += 2 {
		t := c + rateFlag
		if k > cfg.NE>>1 {
			t += 256
		}
		a, b := 0, 0
		shift := 0
		var af, bf, lev int
		for {
			m := acSpecModel(min(shift, 3), t)
			sym := d.Decode(acSpecCum[m][:], acSpecFreq[m][:])
			if sym < 16 {
				af, bf = sym&3, sym>>2
				a += af << shift
				b += bf << shift
				lev = min(shift, 3)
				break
			}
			if shift > 0 || !f.lsbMode {
				a += int(d.ReadBitBackward()) << shift
				b += int(d.ReadBitBackward()) << shift
			}
			shift++
		}
		if shift > 0 {
			escaped = append(escaped, k)
		}

		if lev > 1 {
			t = 12 + lev
		} else {
			t = 1 + (af+bf)*(lev+1)
		}
		c = (c&15)<<4 + t

		if a > 0 && d.ReadBitBackward() == 1 {
			a = -a
		}
		if b > 0 && d.ReadBitBackward() == 1 {
			b = -b
		}
		f.xq[k], f.xq[k+1] = a, b
	}

	nbitsAri := 8*(d.Bp()-3) + 25 - (bits.Len32(d.Range()) - 1)
	budget := nbits - d.SideBitsRead() - nbitsAri
	if budget < 0 {
		budget = 0
	}

	if f.lsbMode {
		left := budget
	patch:
		for _, k := range escaped {
			for _, i := range [2]int{k, k + 1} {
				if left == 0 {
					break patch
				}
				left--
				if d.ReadBitBackward() == 0 {
					continue
				}
				switch {
				case f.xq[i] > 0:
					f.xq[i]++
				case f.xq[i] < 0:
					f.xq[i]--
				default:
					if left == 0 {
						break patch
					}
					left--
					if d.ReadBitBackward() == 1 {
						f.xq[i] = -1
					} else {
						f.xq[i] = 1
					}
				}
			}
		}
	} else {
		nonzero := 0
		for _, v := range f.xq {
			if v != 0 {
				nonzero++
			}
		}
		n := min(budget, nonzero)
		f.resBits = make([]uint8, n)
		for k := 0; k < n; k++ {
			f.resBits[k] = d.ReadBitBackward()
		}
	}

	f.err = d.Error()
	return f
}
