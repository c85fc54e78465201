package ppc

import (
	"math"

	"github.com/aayes89/JPPC/internal/decoder"
)

// psPair unpacks an FPR's 64-bit bit pattern into its two packed
// 32-bit floats, per spec.md §4.6.9: "high in the upper 32 bits, low in
// the lower 32 bits".
func psPair(bitsv uint64) (hi, lo float32) {
	return math.Float32frombits(uint32(bitsv >> 32)), math.Float32frombits(uint32(bitsv))
}

func psPack(hi, lo float32) uint64 {
	return uint64(math.Float32bits(hi))<<32 | uint64(math.Float32bits(lo))
}

// execPairedSingleA implements the required paired-single subset from
// spec.md §4.6.9, under primary opcode 4 with XO < 512 (A-form).
//
// Division-by-zero diverges from the source on purpose (Open Question
// resolution #3, SPEC_FULL §9): x/0 sets ZX and yields signed infinity;
// 0/0 sets VXZDZ and yields a quiet NaN, replacing the source's blanket
// VXISI.
func (c *CPU) execPairedSingleA(ins decoder.Instruction) ExecResult {
	aHi, aLo := psPair(c.FPR[ins.RA&31])
	bHi, bLo := psPair(c.FPR[ins.RB&31])
	cHi, cLo := psPair(c.FPR[ins.RC&31])
	xo := (ins.Word >> 1) & 0x1F

	// Tested on the float32 bit pattern: widening to float64 quiets a
	// signalling NaN on common hosts.
	isSNaN32 := func(f float32) bool {
		b := math.Float32bits(f)
		return b&0x7F800000 == 0x7F800000 && b&0x003FFFFF != 0 && b&0x00400000 == 0
	}
	snan := isSNaN32(aHi) || isSNaN32(aLo) || isSNaN32(bHi) || isSNaN32(bLo)
	if snan {
		c.FPSCR |= fpscrVXSNAN | fpscrFX
	}

	var rHi, rLo float32
	switch xo {
	case 21: // ps_add
		rHi, rLo = aHi+bHi, aLo+bLo
	case 20: // ps_sub
		rHi, rLo = aHi-bHi, aLo-bLo
	case 25: // ps_mul
		rHi, rLo = aHi*cHi, aLo*cLo
	case 18: // ps_div
		rHi = c.psDivide32(aHi, bHi)
		rLo = c.psDivide32(aLo, bLo)
	case 29: // ps_madd
		rHi, rLo = aHi*cHi+bHi, aLo*cLo+bLo
	case 28: // ps_msub
		rHi, rLo = aHi*cHi-bHi, aLo*cLo-bLo
	case 31: // ps_nmadd
		rHi, rLo = -(aHi*cHi + bHi), -(aLo*cLo + bLo)
	case 30: // ps_nmsub
		rHi, rLo = -(aHi*cHi - bHi), -(aLo*cLo - bLo)
	case 23: // ps_sel
		rHi = selectPS(aHi, cHi, bHi)
		rLo = selectPS(aLo, cLo, bLo)
	case 14: // ps_res: reciprocal estimate
		rHi, rLo = 1/aHi, 1/aLo
	case 26: // ps_rsqrte: reciprocal sqrt estimate
		rHi, rLo = float32(1/math.Sqrt(float64(aHi))), float32(1/math.Sqrt(float64(aLo)))
	case 10: // ps_sum0: {fA+fB, fC.low}
		rHi, rLo = aHi+bLo, cLo
	case 11: // ps_sum1: {fC.high, fA+fB}
		rHi, rLo = cHi, aHi+bLo
	case 12: // ps_muls0: both lanes by FRC.high
		rHi, rLo = aHi*cHi, aLo*cHi
	case 13: // ps_muls1
		rHi, rLo = aHi*cLo, aLo*cLo
	case 15: // ps_madds0
		rHi, rLo = aHi*cHi+bHi, aLo*cHi+bLo
	case 24: // ps_madds1: mirrors ps_madds0, scaled by FRC.low instead of FRC.high
		rHi, rLo = aHi*cLo+bHi, aLo*cLo+bLo
	default:
		return c.execPairedSingleMisc(ins)
	}

	c.FPR[ins.RT&31] = psPack(rHi, rLo)
	if ins.Rc {
		c.updateCR1()
	}
	return ok()
}

func selectPS(test, ifGE, ifLT float32) float32 {
	if test >= 0 {
		return ifGE
	}
	return ifLT
}

// psDivide32 applies the corrected (non-source) division semantics.
func (c *CPU) psDivide32(a, b float32) float32 {
	if b == 0 {
		if a == 0 {
			c.FPSCR |= fpscrVXZDZ
			return float32(math.NaN())
		}
		c.FPSCR |= fpscrZX
	}
	return a / b
}

// execPairedSingleMisc implements the remaining X-form paired-single
// instructions that don't share the A-form's FRC operand: ps_neg, ps_mr,
// ps_nabs, ps_merge00/01/10/11, ps_cmpu0/o0/u1/o1.
func (c *CPU) execPairedSingleMisc(ins decoder.Instruction) ExecResult {
	aHi, aLo := psPair(c.FPR[ins.RA&31])
	bHi, bLo := psPair(c.FPR[ins.RB&31])
	xo10 := (ins.Word >> 1) & 0x3FF

	var rHi, rLo float32
	switch xo10 {
	case 40: // ps_neg
		rHi, rLo = -aHi, -aLo
	case 72: // ps_mr
		rHi, rLo = aHi, aLo
	case 136: // ps_nabs
		rHi, rLo = -float32(math.Abs(float64(aHi))), -float32(math.Abs(float64(aLo)))
	case 528: // ps_merge00
		rHi, rLo = aHi, bHi
	case 560: // ps_merge01
		rHi, rLo = aHi, bLo
	case 592: // ps_merge10
		rHi, rLo = aLo, bHi
	case 624: // ps_merge11
		rHi, rLo = aLo, bLo
	case 0: // ps_cmpu0
		c.psCompare(aHi, bHi, 0, false)
		return ok()
	case 32: // ps_cmpo0
		c.psCompare(aHi, bHi, 0, true)
		return ok()
	case 64: // ps_cmpu1
		c.psCompare(aLo, bLo, 0, false)
		return ok()
	case 96: // ps_cmpo1
		c.psCompare(aLo, bLo, 0, true)
		return ok()
	default:
		return ExecResult{Fault: FaultUnsupportedOpcode}
	}

	c.FPR[ins.RT&31] = psPack(rHi, rLo)
	if ins.Rc {
		c.updateCR1()
	}
	return ok()
}

func (c *CPU) psCompare(a, b float32, field uint32, ordered bool) {
	var f uint32
	switch {
	case math.IsNaN(float64(a)) || math.IsNaN(float64(b)):
		f = crSO
		if ordered {
			c.FPSCR |= fpscrVXSNAN
		}
	case a < b:
		f = crLT
	case a > b:
		f = crGT
	default:
		f = crEQ
	}
	c.setCRField(field, f)
}
