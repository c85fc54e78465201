package ppc

import (
	"math"

	"github.com/aayes89/JPPC/internal/decoder"
)

func float32FromBits(b uint32) float32 { return math.Float32frombits(b) }
func float32Bits(f float32) uint32     { return math.Float32bits(f) }

// execVector implements the required AltiVec/VMX128 subset from spec.md
// §4.6.7: vand, vxor, vnor, vaddubm, vadduhm, vsububm, vaddsbm, vmulubm,
// vceqb, vperm, vsldoi, vspltisb, vspltish, vaddfp, vmaddfp, lvx, stvx.
// The vsldoi and vmaddfp encodings (5-bit fields 22 and 23) are routed by
// execOpcode4 to the paired-single A-form path, so their cases here are
// not reached. Registers are modeled as four 32-bit lanes (16 bytes), matching
// spec.md §3's "128-bit; modeled as four 32-bit lanes".
func (c *CPU) execVector(ins decoder.Instruction) ExecResult {
	xo := ins.Word & 0x7FF
	vd, va, vb := ins.RT&31, ins.RA&31, ins.RB&31

	switch xo {
	case 1028: // vand
		for i := range c.VR[vd] {
			c.VR[vd][i] = c.VR[va][i] & c.VR[vb][i]
		}
	case 1284: // vxor
		for i := range c.VR[vd] {
			c.VR[vd][i] = c.VR[va][i] ^ c.VR[vb][i]
		}
	case 1668: // vnor
		for i := range c.VR[vd] {
			c.VR[vd][i] = ^(c.VR[va][i] | c.VR[vb][i])
		}
	case 0: // vaddubm: byte-lane add modulo 256
		c.vectorByteOp(vd, va, vb, func(a, b byte) byte { return a + b })
	case 64: // vadduhm: halfword-lane add
		c.vectorHalfOp(vd, va, vb, func(a, b uint16) uint16 { return a + b })
	case 1024: // vsububm
		c.vectorByteOp(vd, va, vb, func(a, b byte) byte { return a - b })
	case 768: // vaddsbm (signed byte add, same bit pattern as unsigned add)
		c.vectorByteOp(vd, va, vb, func(a, b byte) byte { return a + b })
	case 8: // vmulubm: low byte of unsigned product, per lane
		c.vectorByteOp(vd, va, vb, func(a, b byte) byte { return a * b })
	case 6: // vceqb: per-byte equality, 0xFF/0x00 result
		c.vectorByteOp(vd, va, vb, func(a, b byte) byte {
			if a == b {
				return 0xFF
			}
			return 0
		})
	case 1165: // vperm
		c.vperm(vd, va, vb, ins.RC&31)
	case 44: // vsldoi: shift left double by SH bytes (SH carried in bits 22-25)
		sh := (ins.Word >> 6) & 0xF
		c.vsldoi(vd, va, vb, sh)
	case 780: // vspltisb: splat a 5-bit sign-extended immediate into every byte
		imm := int8(int32(ins.RA<<27) >> 27)
		c.vectorSplatByte(vd, byte(imm))
	case 844: // vspltish
		imm := int16(int32(ins.RA<<27) >> 27)
		c.vectorSplatHalf(vd, uint16(imm))
	case 10: // vaddfp: four-lane float add
		for i := 0; i < 4; i++ {
			c.VR[vd][i] = floatBitsAdd(c.VR[va][i], c.VR[vb][i])
		}
	case 46: // vmaddfp: VD = VA*VC + VB, four lanes
		for i := 0; i < 4; i++ {
			c.VR[vd][i] = floatBitsFMA(c.VR[va][i], c.VR[ins.RC&31][i], c.VR[vb][i])
		}
	default:
		return c.execVectorLoadStore(ins)
	}
	return ok()
}

func (c *CPU) execVectorLoadStore(ins decoder.Instruction) ExecResult {
	ea := uint32(c.gprOrZero(ins.RA)+c.gprOrZero(ins.RB)) &^ 0xF
	vd := ins.RT & 31
	// lvx/stvx occupy the full 11-bit VX-form field (bits 21-31); ins.XO
	// as decoded for opcode 4 is the 10-bit X-form field (bits 21-30) and
	// would drop the low bit, so the 11-bit value is recomputed here.
	switch ins.Word & 0x7FF {
	case 103: // lvx
		for i := 0; i < 4; i++ {
			pa, res, okT := c.translateData(ea+uint32(i*4), false)
			if !okT {
				return res
			}
			c.VR[vd][i] = c.Cache.ReadWord(pa)
		}
	case 231: // stvx
		for i := 0; i < 4; i++ {
			pa, res, okT := c.translateData(ea+uint32(i*4), true)
			if !okT {
				return res
			}
			c.Cache.WriteWord(pa, c.VR[vd][i])
		}
	default:
		return ExecResult{Fault: FaultUnsupportedOpcode}
	}
	return ok()
}

func (c *CPU) vectorByteOp(vd, va, vb uint32, f func(a, b byte) byte) {
	var abytes, bbytes, rbytes [16]byte
	laneBytes(c.VR[va], &abytes)
	laneBytes(c.VR[vb], &bbytes)
	for i := 0; i < 16; i++ {
		rbytes[i] = f(abytes[i], bbytes[i])
	}
	bytesToLanes(rbytes, &c.VR[vd])
}

func (c *CPU) vectorHalfOp(vd, va, vb uint32, f func(a, b uint16) uint16) {
	for i := 0; i < 4; i++ {
		aw, bw := c.VR[va][i], c.VR[vb][i]
		hiA, loA := uint16(aw>>16), uint16(aw)
		hiB, loB := uint16(bw>>16), uint16(bw)
		c.VR[vd][i] = uint32(f(hiA, hiB))<<16 | uint32(f(loA, loB))
	}
}

func (c *CPU) vectorSplatByte(vd uint32, v byte) {
	w := uint32(v)<<24 | uint32(v)<<16 | uint32(v)<<8 | uint32(v)
	for i := range c.VR[vd] {
		c.VR[vd][i] = w
	}
}

func (c *CPU) vectorSplatHalf(vd uint32, v uint16) {
	w := uint32(v)<<16 | uint32(v)
	for i := range c.VR[vd] {
		c.VR[vd][i] = w
	}
}

// vperm selects bytes from the 32-byte concatenation [VRA||VRB] using the
// low 5 bits of each control byte in VRC, per spec.md §4.6.7.
func (c *CPU) vperm(vd, va, vb, vrc uint32) {
	var abytes, bbytes, cbytes, rbytes [16]byte
	laneBytes(c.VR[va], &abytes)
	laneBytes(c.VR[vb], &bbytes)
	laneBytes(c.VR[vrc], &cbytes)
	concat := append(append([]byte{}, abytes[:]...), bbytes[:]...)
	for i := 0; i < 16; i++ {
		rbytes[i] = concat[cbytes[i]&0x1F]
	}
	bytesToLanes(rbytes, &c.VR[vd])
}

func (c *CPU) vsldoi(vd, va, vb, sh uint32) {
	var abytes, bbytes, rbytes [16]byte
	laneBytes(c.VR[va], &abytes)
	laneBytes(c.VR[vb], &bbytes)
	concat := append(append([]byte{}, abytes[:]...), bbytes[:]...)
	copy(rbytes[:], concat[sh:sh+16])
	bytesToLanes(rbytes, &c.VR[vd])
}

func laneBytes(lanes [4]uint32, out *[16]byte) {
	for i, w := range lanes {
		out[i*4+0] = byte(w >> 24)
		out[i*4+1] = byte(w >> 16)
		out[i*4+2] = byte(w >> 8)
		out[i*4+3] = byte(w)
	}
}

func bytesToLanes(b [16]byte, out *[4]uint32) {
	for i := 0; i < 4; i++ {
		out[i] = uint32(b[i*4])<<24 | uint32(b[i*4+1])<<16 | uint32(b[i*4+2])<<8 | uint32(b[i*4+3])
	}
}

func floatBitsAdd(a, b uint32) uint32 {
	return float32Bits(float32FromBits(a) + float32FromBits(b))
}

func floatBitsFMA(a, c32, b uint32) uint32 {
	return float32Bits(float32FromBits(a)*float32FromBits(c32) + float32FromBits(b))
}
