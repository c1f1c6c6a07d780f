package encoder

import (
	"errors"
	"math/bits"

	"github.com/thesyncim/golc3/internal/types"
	"github.com/thesyncim/golc3/rangecoding"
	"github.com/thesyncim/golc3/util"
)

var errFrameOverflow = errors.New("encoder: frame buffer overflow")

// lastnzBits is the width of the last-nonzero-tuple field.
func lastnzBits(ne int) int {
	return bits.Len(uint(ne>>1 - 1))
}

func boolBit(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

// frameWriter serializes one frame: side information walks backward from
// the last byte while arithmetic-coded data walks forward from the first,
// with the spectrum's sign and escape bits interleaved between the two.
type frameWriter struct {
	enc  rangecoding.Encoder
	lsbs []uint8
}

func newFrameWriter(cfg *Config) *frameWriter {
	return &frameWriter{lsbs: make([]uint8, 2*cfg.NE)}
}

func (w *frameWriter) run(cfg *Config, buf []byte, bw types.Bandwidth,
	sns *snsData, tns *tnsData, lt ltpfData, qd quantData,
	xq []int, noiseFac int, res []uint8, nres int) error {

	e := &w.enc
	e.Init(buf)

	if n := bandwidthBits(cfg.FsInd); n > 0 {
		e.WriteUIntBackward(uint32(bw), n)
	}
	e.WriteUIntBackward(uint32(qd.lastnzTrunc>>1)-1, lastnzBits(cfg.NE))
	e.WriteBitBackward(boolBit(qd.lsbMode))
	e.WriteUIntBackward(uint32(qd.ggInd), 8)
	for f := 0; f < tns.numFilters; f++ {
		e.WriteBitBackward(boolBit(tns.order[f] > 0))
	}
	e.WriteBitBackward(boolBit(lt.pitchPresent))

	e.WriteUIntBackward(uint32(sns.indLF), 5)
	e.WriteUIntBackward(uint32(sns.indHF), 5)
	e.WriteBitBackward(uint8(sns.shape >> 1))
	e.WriteUIntBackward(uint32(sns.gainInd>>snsGainLSBBits[sns.shape]), snsGainMSBBits[sns.shape])
	e.WriteBitBackward(uint8(sns.leadSignA))
	e.WriteUIntBackward(sns.idxJoint, snsJointBits[sns.shape])

	if lt.pitchPresent {
		e.WriteBitBackward(boolBit(lt.active))
		e.WriteUIntBackward(uint32(lt.pitchIndex), 9)
	}
	e.WriteUIntBackward(uint32(noiseFac), 3)

	lpcw := 0
	if tns.lpcWeight {
		lpcw = 1
	}
	for f := 0; f < tns.numFilters; f++ {
		order := tns.order[f]
		if order == 0 {
			continue
		}
		e.Encode(uint32(acTnsOrderCum[lpcw][order-1]), uint32(acTnsOrderFreq[lpcw][order-1]))
		for k := 0; k < order; k++ {
			e.Encode(uint32(acTnsCoefCum[k][tns.rcIdx[f][k]]), uint32(acTnsCoefFreq[k][tns.rcIdx[f][k]]))
		}
	}

	nlsb := w.spectrum(cfg, qd, xq)

	budget := 8*len(buf) - e.SideBitsWritten() - e.ArithBitsForecast()
	if budget < 0 {
		budget = 0
	}
	if qd.lsbMode {
		for k := 0; k < min(budget, nlsb); k++ {
			e.WriteBitBackward(w.lsbs[k])
		}
	} else {
		for k := 0; k < min(budget, nres); k++ {
			e.WriteBitBackward(res[k])
		}
	}

	e.Done()
	if e.Error() != 0 {
		return errFrameOverflow
	}
	return nil
}

// spectrum arithmetic-codes the coefficient pairs. Escape rounds shed one
// bit per value into the backward stream, except the first round under LSB
// mode, whose bits (and the signs of values that round drops to zero) are
// held back for the leftover budget. Signs of surviving values go backward
// after each pair. Returns the number of held-back bits.
func (w *frameWriter) spectrum(cfg *Config, qd quantData, xq []int) int {
	e := &w.enc
	nlsb := 0
	c := 0
	for k := 0; k < qd.lastnzTrunc; k += 2 {
		t := c + qd.rateFlag
		if k > cfg.NE>>1 {
			t += 256
		}
		a := util.Abs(xq[k])
		b := util.Abs(xq[k+1])
		aLSB, bLSB := a, b
		signA := boolBit(xq[k] < 0)
		signB := boolBit(xq[k+1] < 0)

		lev := 0
		if a >= 4 || b >= 4 {
			m := acSpecModel(lev, t)
			e.Encode(uint32(acSpecCum[m][16]), uint32(acSpecFreq[m][16]))
			if qd.lsbMode {
				w.lsbs[nlsb] = uint8(a & 1)
				nlsb++
				if aLSB == 1 {
					w.lsbs[nlsb] = signA
					nlsb++
				}
				w.lsbs[nlsb] = uint8(b & 1)
				nlsb++
				if bLSB == 1 {
					w.lsbs[nlsb] = signB
					nlsb++
				}
				aLSB >>= 1
				bLSB >>= 1
			} else {
				e.WriteBitBackward(uint8(a & 1))
				e.WriteBitBackward(uint8(b & 1))
			}
			a >>= 1
			b >>= 1
			lev = 1
			for a >= 4 || b >= 4 {
				m = acSpecModel(lev, t)
				e.Encode(uint32(acSpecCum[m][16]), uint32(acSpecFreq[m][16]))
				e.WriteBitBackward(uint8(a & 1))
				e.WriteBitBackward(uint8(b & 1))
				a >>= 1
				b >>= 1
				lev = min(lev+1, 3)
			}
		}
		m := acSpecModel(lev, t)
		sym := a + 4*b
		e.Encode(uint32(acSpecCum[m][sym]), uint32(acSpecFreq[m][sym]))

		if lev > 1 {
			t = 12 + lev
		} else {
			t = 1 + (a+b)*(lev+1)
		}
		c = (c&15)<<4 + t

		if aLSB > 0 {
			e.WriteBitBackward(signA)
		}
		if bLSB > 0 {
			e.WriteBitBackward(signB)
		}
	}
	return nlsb
}
