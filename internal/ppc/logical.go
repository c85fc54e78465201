package ppc

import "github.com/aayes89/JPPC/internal/decoder"

// execLogicalD implements the D-form bitwise immediates (primary 24-29):
// ori, oris, xori, xoris, andi., andis. All of andi./andis. unconditionally
// update CR0, per spec.md §4.6.2; the others never touch CR.
func (c *CPU) execLogicalD(ins decoder.Instruction) ExecResult {
	ra := gpr32(c.GPR[ins.RS&31])
	var result uint32
	switch ins.Op {
	case 24: // ori
		result = ra | ins.UI
	case 25: // oris
		result = ra | (ins.UI << 16)
	case 26: // xori
		result = ra ^ ins.UI
	case 27: // xoris
		result = ra ^ (ins.UI << 16)
	case 28: // andi.
		result = ra & ins.UI
		c.setGPR32ZeroExt(ins.RA, result)
		c.updateCR0(result)
		return ok()
	case 29: // andis.
		result = ra & (ins.UI << 16)
		c.setGPR32ZeroExt(ins.RA, result)
		c.updateCR0(result)
		return ok()
	default:
		return ExecResult{Fault: FaultInvalidFormat}
	}
	c.setGPR32ZeroExt(ins.RA, result)
	return ok()
}

// execLogicalX implements the X-form register-register logical and
// shift family under primary opcode 31: and, andc, or, orc, xor, eqv,
// nand, nor, slw, srw, sraw, srawi, extsb, extsh, extsw, cntlzw.
func (c *CPU) execLogicalX(ins decoder.Instruction) ExecResult {
	rs := gpr32(c.GPR[ins.RS&31])
	rb := gpr32(c.gprOrZero(ins.RB))
	var result uint32
	caOut, hasCA := false, false

	switch ins.XO {
	case 28: // and
		result = rs & rb
	case 60: // andc
		result = rs &^ rb
	case 444: // or
		result = rs | rb
	case 412: // orc
		result = rs | ^rb
	case 316: // xor
		result = rs ^ rb
	case 284: // eqv
		result = ^(rs ^ rb)
	case 476: // nand
		result = ^(rs & rb)
	case 124: // nor
		result = ^(rs | rb)
	case 24: // slw
		sh := rb & 0x3F
		if sh >= 32 {
			result = 0
		} else {
			result = rs << sh
		}
	case 536: // srw
		sh := rb & 0x3F
		if sh >= 32 {
			result = 0
		} else {
			result = rs >> sh
		}
	case 792: // sraw
		sh := rb & 0x3F
		signed := int32(rs)
		if sh >= 32 {
			if signed < 0 {
				result = 0xFFFFFFFF
				caOut = true
			} else {
				result = 0
			}
		} else {
			result = uint32(signed >> sh)
			caOut = signed < 0 && (rs&((1<<sh)-1)) != 0
		}
		hasCA = true
	case 824: // srawi
		sh := ins.RB // SH field reuses the RB position in this format
		signed := int32(rs)
		result = uint32(signed >> sh)
		caOut = signed < 0 && (rs&((1<<sh)-1)) != 0
		hasCA = true
	case 954: // extsb
		result = uint32(int32(int8(rs)))
	case 922: // extsh
		result = uint32(int32(int16(rs)))
	case 986: // extsw: 64-bit sign-extend, result kept wide below
		c.GPR[ins.RA&31] = uint64(int64(int32(c.GPR[ins.RS&31])))
		if ins.Rc {
			c.updateCR0(uint32(c.GPR[ins.RA&31]))
		}
		return ok()
	case 26: // cntlzw
		result = countLeadingZeros32(rs)
	default:
		return ExecResult{Fault: FaultUnsupportedOpcode}
	}

	c.setGPR32ZeroExt(ins.RA, result)
	if hasCA {
		c.setXERCA(caOut)
	}
	if ins.Rc {
		c.updateCR0(result)
	}
	return ok()
}
