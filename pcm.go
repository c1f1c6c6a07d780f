// pcm.go converts caller PCM layouts into the codec's internal sample
// domain: float64 at 16-bit scale, one slice per channel.

package golc3

import "encoding/binary"

// splitBudget distributes a total frame byte budget over the channels,
// base share each and the remainder to the leading channels. Every share
// must stay inside the per-channel 20..400 range.
func splitBudget(budgets []int, total int) error {
	nc := len(budgets)
	base := total / nc
	rem := total % nc
	for ch := range budgets {
		b := base
		if ch < rem {
			b++
		}
		if b < 20 || b > 400 {
			return ErrInvalidByteCount
		}
		budgets[ch] = b
	}
	return nil
}

func pcm16ToFloat(dst []float64, src []int16, ch, nc int) {
	for i := range dst {
		dst[i] = float64(src[i*nc+ch])
	}
}

func pcm16BytesToFloat(dst []float64, src []byte, ch, nc int) {
	for i := range dst {
		j := 2 * (i*nc + ch)
		dst[i] = float64(int16(binary.LittleEndian.Uint16(src[j:])))
	}
}

// pcm24ToFloat reads packed little-endian 3-byte samples. The sample is
// placed in the top 24 bits of an int32 for sign extension, leaving the
// value scaled by 256; the 1/65536 factor then lands it on 16-bit scale.
func pcm24ToFloat(dst []float64, src []byte, ch, nc int) {
	for i := range dst {
		j := 3 * (i*nc + ch)
		v := int32(uint32(src[j])<<8 | uint32(src[j+1])<<16 | uint32(src[j+2])<<24)
		dst[i] = float64(v) * (1.0 / 65536.0)
	}
}

func pcm24In32ToFloat(dst []float64, src []int32, ch, nc int) {
	for i := range dst {
		v := src[i*nc+ch] << 8
		dst[i] = float64(v) * (1.0 / 65536.0)
	}
}

func pcm32ToFloat(dst []float64, src []int32, ch, nc int) {
	for i := range dst {
		dst[i] = float64(src[i*nc+ch]) * (1.0 / 65536.0)
	}
}

func pcm32BytesToFloat(dst []float64, src []byte, ch, nc int) {
	for i := range dst {
		j := 4 * (i*nc + ch)
		v := int32(binary.LittleEndian.Uint32(src[j:]))
		dst[i] = float64(v) * (1.0 / 65536.0)
	}
}

func pcmFloat32ToFloat(dst []float64, src []float32, ch, nc int) {
	for i := range dst {
		dst[i] = float64(src[i*nc+ch]) * 32768.0
	}
}
