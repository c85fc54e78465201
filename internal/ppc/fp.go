package ppc

import (
	"math"

	"github.com/aayes89/JPPC/internal/decoder"
)

func f64(bits uint64) float64 { return math.Float64frombits(bits) }
func bits64(v float64) uint64 { return math.Float64bits(v) }

// setFPResult stores a double-precision result into FPR[r] and raises
// the FPSCR flags spec.md §4.6.6 requires: VX/VXSNAN for NaN operands or
// results from a disallowed op.
func (c *CPU) setFPResult(r uint32, v float64, snanOperand bool) {
	c.FPR[r&31] = bits64(v)
	c.FPSCR |= fpscrFX
	if snanOperand {
		c.FPSCR |= fpscrVXSNAN
	}
	if math.IsNaN(v) {
		c.FPSCR |= fpscrVXSNAN
	}
}

func isSNaN(v float64) bool {
	if !math.IsNaN(v) {
		return false
	}
	bitsv := bits64(v)
	return bitsv&(1<<51) == 0
}

// execFPMemD implements the D-form floating-point loads/stores (primary
// 48-55): lfs(u), lfd(u), stfs(u), stfd(u), per spec.md §4.6.6.
func (c *CPU) execFPMemD(ins decoder.Instruction) ExecResult {
	if c.MSR&msrFP == 0 {
		return ExecResult{Fault: FaultUnsupportedOpcode} // FP unavailable surfaces as Program here; vector table still has 0x800 for future use
	}
	base := c.gprOrZero(ins.RA)
	ea := uint32(base) + uint32(ins.SI)
	isUpdate := ins.Op == 49 || ins.Op == 51 || ins.Op == 53 || ins.Op == 55
	if isUpdate && ins.RA == 0 {
		return ExecResult{Fault: FaultInvalidUpdate}
	}

	switch ins.Op {
	case 48, 49: // lfs, lfsu: single-precision load, widened to double
		pa, res, okT := c.translateData(ea, false)
		if !okT {
			return res
		}
		bits32 := c.Cache.ReadWord(pa)
		c.FPR[ins.RT&31] = bits64(float64(math.Float32frombits(bits32)))
	case 52, 53: // stfs, stfsu
		pa, res, okT := c.translateData(ea, true)
		if !okT {
			return res
		}
		f32 := math.Float32frombits(uint32(math.Float32bits(float32(f64(c.FPR[ins.RS&31])))))
		c.Cache.WriteWord(pa, math.Float32bits(f32))
	case 50, 51: // lfd, lfdu: double-precision load
		if !c.checkAlign(ea, 8) {
			return ExecResult{Fault: FaultAlignment}
		}
		hi, res, okT := c.translateData(ea, false)
		if !okT {
			return res
		}
		lo, res2, okT2 := c.translateData(ea+4, false)
		if !okT2 {
			return res2
		}
		c.FPR[ins.RT&31] = uint64(c.Cache.ReadWord(hi))<<32 | uint64(c.Cache.ReadWord(lo))
	case 54, 55: // stfd, stfdu
		if !c.checkAlign(ea, 8) {
			return ExecResult{Fault: FaultAlignment}
		}
		hi, res, okT := c.translateData(ea, true)
		if !okT {
			return res
		}
		lo, res2, okT2 := c.translateData(ea+4, true)
		if !okT2 {
			return res2
		}
		v := c.FPR[ins.RS&31]
		c.Cache.WriteWord(hi, uint32(v>>32))
		c.Cache.WriteWord(lo, uint32(v))
	default:
		return ExecResult{Fault: FaultUnsupportedOpcode}
	}

	if isUpdate {
		c.GPR[ins.RA&31] = uint64(ea)
	}
	return ok()
}

// execFPMemIndexed implements the supplemented indexed FP memory forms
// (SPEC_FULL §9): lfdx, lfsx, stfdx, stfsx, since the base spec only
// names the D-form pairs and D-form-only FP addressing would leave
// indexed addressing untested for the FP class unlike every other class.
func (c *CPU) execFPMemIndexed(ins decoder.Instruction) ExecResult {
	ea := uint32(c.gprOrZero(ins.RA) + c.gprOrZero(ins.RB))
	switch ins.XO {
	case 535: // lfsx
		pa, res, okT := c.translateData(ea, false)
		if !okT {
			return res
		}
		c.FPR[ins.RT&31] = bits64(float64(math.Float32frombits(c.Cache.ReadWord(pa))))
	case 663: // stfsx
		pa, res, okT := c.translateData(ea, true)
		if !okT {
			return res
		}
		c.Cache.WriteWord(pa, math.Float32bits(float32(f64(c.FPR[ins.RS&31]))))
	case 599: // lfdx
		hi, res, okT := c.translateData(ea, false)
		if !okT {
			return res
		}
		lo, res2, okT2 := c.translateData(ea+4, false)
		if !okT2 {
			return res2
		}
		c.FPR[ins.RT&31] = uint64(c.Cache.ReadWord(hi))<<32 | uint64(c.Cache.ReadWord(lo))
	case 727: // stfdx
		hi, res, okT := c.translateData(ea, true)
		if !okT {
			return res
		}
		lo, res2, okT2 := c.translateData(ea+4, true)
		if !okT2 {
			return res2
		}
		v := c.FPR[ins.RS&31]
		c.Cache.WriteWord(hi, uint32(v>>32))
		c.Cache.WriteWord(lo, uint32(v))
	default:
		return ExecResult{Fault: FaultUnsupportedOpcode}
	}
	return ok()
}

// execFPPairMem implements the Xenon paired-double memory forms (primary
// 60/61): lfdp, lfdpx, stfdp, stfdpx. FRT must be even; two consecutive
// doubles transfer at an 8-byte-aligned EA, per spec.md §4.6.6. The
// 2-bit field decoder.go extracts into ins.XO for these opcodes
// distinguishes the immediate form (0: lfdp/stfdp) from the indexed form
// (1: lfdpx/stfdpx), mirroring ld/ldu's DS-form split.
func (c *CPU) execFPPairMem(ins decoder.Instruction) ExecResult {
	base := c.gprOrZero(ins.RA)
	var ea uint32
	if ins.XO == 1 {
		ea = uint32(base) + uint32(c.gprOrZero(ins.RB))
	} else {
		ea = uint32(base) + uint32(ins.SI)
	}
	if !c.checkAlign(ea, 8) {
		return ExecResult{Fault: FaultAlignment}
	}
	frt := ins.RT &^ 1
	isStore := ins.Op == 61

	addr0hi, res, okT := c.translateData(ea, isStore)
	if !okT {
		return res
	}
	addr0lo, res, okT := c.translateData(ea+4, isStore)
	if !okT {
		return res
	}
	addr1hi, res, okT := c.translateData(ea+8, isStore)
	if !okT {
		return res
	}
	addr1lo, res, okT := c.translateData(ea+12, isStore)
	if !okT {
		return res
	}

	if isStore {
		v0 := c.FPR[frt&31]
		v1 := c.FPR[(frt+1)&31]
		c.Cache.WriteWord(addr0hi, uint32(v0>>32))
		c.Cache.WriteWord(addr0lo, uint32(v0))
		c.Cache.WriteWord(addr1hi, uint32(v1>>32))
		c.Cache.WriteWord(addr1lo, uint32(v1))
		return ok()
	}
	c.FPR[frt&31] = uint64(c.Cache.ReadWord(addr0hi))<<32 | uint64(c.Cache.ReadWord(addr0lo))
	c.FPR[(frt+1)&31] = uint64(c.Cache.ReadWord(addr1hi))<<32 | uint64(c.Cache.ReadWord(addr1lo))
	return ok()
}

// execFPArith implements the A-form and X-form floating-point arithmetic
// instructions under primary 59 (single-precision) and 63 (double), per
// spec.md §4.6.6.
func (c *CPU) execFPArith(ins decoder.Instruction) ExecResult {
	single := ins.Op == 59
	a := f64(c.FPR[ins.RA&31])
	b := f64(c.FPR[ins.RB&31])
	frc := f64(c.FPR[ins.RC&31])
	snan := isSNaN(a) || isSNaN(b) || isSNaN(frc)

	var result float64
	switch ins.Format {
	case decoder.FormatA:
		switch ins.XO {
		case 21: // fadd(s)
			result = a + b
		case 20: // fsub(s)
			result = a - b
		case 25: // fmul(s)
			result = a * frc
		case 18: // fdiv(s)
			result = c.fpDivide(a, b)
		case 22: // fsqrt(s)
			if a < 0 {
				c.FPSCR |= fpscrVXSQRT
			}
			result = math.Sqrt(a)
		case 29: // fmadd(s)
			result = a*frc + b
		case 28: // fmsub(s)
			result = a*frc - b
		case 31: // fnmadd(s)
			result = -(a*frc + b)
		case 30: // fnmsub(s)
			result = -(a*frc - b)
		case 23: // fsel
			if a >= 0 {
				result = frc
			} else {
				result = b
			}
		case 24: // fres(s): reciprocal estimate
			result = 1 / b
		case 26: // frsqrte(s): reciprocal square root estimate
			if b < 0 {
				c.FPSCR |= fpscrVXSQRT
			}
			result = 1 / math.Sqrt(b)
		default:
			return ExecResult{Fault: FaultUnsupportedOpcode}
		}
	case decoder.FormatX:
		switch ins.XO {
		case 0: // fcmpu
			c.fpCompare(a, b, false)
			return ok()
		case 32: // fcmpo
			faulted := c.fpCompare(a, b, true)
			if faulted {
				return ExecResult{Fault: FaultUnsupportedOpcode} // routed to Program/FP exception by caller
			}
			return ok()
		case 72: // fmr
			result = a
		case 40: // fneg
			result = -a
		case 264: // fabs
			result = math.Abs(a)
		case 136: // fnabs
			result = -math.Abs(a)
		case 583: // mffs: straight copy of FPSCR's low 32 bits (Open Question #4)
			c.FPR[ins.RT&31] = uint64(c.FPSCR)
			return ok()
		case 711: // mtfsf
			c.FPSCR = uint32(c.FPR[ins.RB&31])
			return ok()
		case 38: // mtfsb1
			c.FPSCR |= 1 << (31 - ins.BF)
			return ok()
		case 70: // mtfsb0
			c.FPSCR &^= 1 << (31 - ins.BF)
			return ok()
		case 134: // mtfsfi: set 4-bit FPSCR field BF to immediate IMM (bits [16:19])
			imm := (ins.RB >> 1) & 0xF
			shift := uint(28 - 4*ins.BF)
			c.FPSCR = (c.FPSCR &^ (0xF << shift)) | (imm << shift)
			return ok()
		case 14: // fctiw: round-to-nearest double->int32, stored in FRT's low word
			iv := int32(math.RoundToEven(b))
			c.FPR[ins.RT&31] = uint64(uint32(iv))
			return ok()
		case 15: // fctiwz: round-toward-zero double->int32
			iv := int32(math.Trunc(b))
			c.FPR[ins.RT&31] = uint64(uint32(iv))
			return ok()
		case 814: // fctid: round-to-nearest double->int64 bit pattern
			iv := int64(math.RoundToEven(b))
			c.FPR[ins.RT&31] = uint64(iv)
			return ok()
		case 815: // fctidz: round-toward-zero double->int64 bit pattern
			iv := int64(math.Trunc(b))
			c.FPR[ins.RT&31] = uint64(iv)
			return ok()
		case 846: // fcfid: int64 bit pattern (FRB, raw) -> double
			result = float64(int64(c.FPR[ins.RB&31]))
		default:
			return ExecResult{Fault: FaultUnsupportedOpcode}
		}
	default:
		return ExecResult{Fault: FaultUnsupportedOpcode}
	}

	if single {
		result = float64(float32(result))
	}
	c.setFPResult(ins.RT, result, snan)
	if ins.Rc {
		c.updateCR1()
	}
	return ok()
}

// fpDivide implements spec.md §4.6.6's division contract: ZX on x/0,
// VXZDZ on 0/0, producing IEEE infinities/NaN via the host math package.
func (c *CPU) fpDivide(a, b float64) float64 {
	if b == 0 {
		if a == 0 {
			c.FPSCR |= fpscrVXZDZ
			return math.NaN()
		}
		c.FPSCR |= fpscrZX
	}
	return a / b
}

// fpCompare sets the FP condition field from a three-way signed compare
// (LT/GT/EQ/UN), per spec.md §4.6.6; fcmpo additionally raises on NaN.
func (c *CPU) fpCompare(a, b float64, ordered bool) (faulted bool) {
	var field uint32
	switch {
	case math.IsNaN(a) || math.IsNaN(b):
		field = crSO // unordered reuses the SO bit position as "?" per the 4-bit FP condition field layout
		if ordered {
			c.FPSCR |= fpscrVXSNAN
			faulted = true
		}
	case a < b:
		field = crLT
	case a > b:
		field = crGT
	default:
		field = crEQ
	}
	c.setCRField(1, field)
	return faulted
}
