package ppc

import "github.com/aayes89/JPPC/internal/decoder"

// execBranchI implements the I-form unconditional branch (primary 18):
// b, bl, ba, bla, per spec.md §4.6.4.
func (c *CPU) execBranchI(ins decoder.Instruction, pc uint32, nextPC *uint64) ExecResult {
	var target uint64
	if ins.AA {
		target = uint64(int64(ins.LI))
	} else {
		target = uint64(int64(pc) + int64(ins.LI))
	}
	if ins.LK {
		c.LR = uint64(pc) + 4
	}
	*nextPC = target
	return ok()
}

// evalBranchCondition implements the BO/BI decode table from spec.md
// §4.6.4: BO selects whether to decrement CTR, whether to test CTR==0 or
// CTR!=0, whether to test CR[BI], and the polarity of that test.
func (c *CPU) evalBranchCondition(bo, bi uint32) bool {
	decrementCTR := bo&0b00100 == 0
	if decrementCTR {
		c.CTR--
	}

	ctrOK := true
	if bo&0b00100 == 0 {
		if bo&0b00010 != 0 {
			ctrOK = c.CTR == 0
		} else {
			ctrOK = c.CTR != 0
		}
	}

	crOK := true
	if bo&0b10000 == 0 {
		bit := c.getCRBit(bi)
		if bo&0b01000 != 0 {
			crOK = bit
		} else {
			crOK = !bit
		}
	}

	return ctrOK && crOK
}

// execBranchB implements the B-form conditional branch (primary 16):
// bc, bcl, bca, bcla.
func (c *CPU) execBranchB(ins decoder.Instruction, pc uint32, nextPC *uint64) ExecResult {
	taken := c.evalBranchCondition(ins.BO, ins.BI)
	if ins.LK {
		c.LR = uint64(pc) + 4
	}
	if !taken {
		return ok()
	}
	if ins.AA {
		*nextPC = uint64(int64(ins.BD))
	} else {
		*nextPC = uint64(int64(pc) + int64(ins.BD))
	}
	return ok()
}

// execBranchXL implements the XL-form branch-register instructions
// (primary 19): bclr(l), bcctr(l), plus the CR-logical ops (mcrf, crand,
// cror, crxor, ...), rfi/rfid, isync, sc handled elsewhere.
func (c *CPU) execBranchXL(ins decoder.Instruction, pc uint32, nextPC *uint64) ExecResult {
	switch ins.XO {
	case 16: // bclr(l)
		taken := c.evalBranchCondition(ins.BO, ins.BI)
		target := c.LR &^ 3
		if ins.LK {
			c.LR = uint64(pc) + 4
		}
		if taken {
			*nextPC = target
		}
		return ok()
	case 528: // bcctr(l)
		taken := c.evalBranchCondition(ins.BO|0b00100, ins.BI) // bcctr never tests CTR
		if ins.LK {
			c.LR = uint64(pc) + 4
		}
		if taken {
			*nextPC = c.CTR &^ 3
		}
		return ok()
	case 0: // mcrf
		val := c.getCRField(ins.BFA)
		c.setCRField(ins.BF, val)
	case 257: // crand
		c.crLogical(ins, func(a, b bool) bool { return a && b })
	case 449: // cror
		c.crLogical(ins, func(a, b bool) bool { return a || b })
	case 193: // crxor
		c.crLogical(ins, func(a, b bool) bool { return a != b })
	case 225: // crnand
		c.crLogical(ins, func(a, b bool) bool { return !(a && b) })
	case 33: // crnor
		c.crLogical(ins, func(a, b bool) bool { return !(a || b) })
	case 129: // crandc
		c.crLogical(ins, func(a, b bool) bool { return a && !b })
	case 417: // crorc
		c.crLogical(ins, func(a, b bool) bool { return a || !b })
	case 289: // creqv
		c.crLogical(ins, func(a, b bool) bool { return a == b })
	case 150: // isync: no-op semantic, per spec.md §4.6.4
	case 18: // rfi
		c.rfi()
		*nextPC = c.PC
	case 19: // rfid: 64-bit rfi variant, supplemented per SPEC_FULL §9
		c.rfi()
		*nextPC = c.PC
	default:
		return ExecResult{Fault: FaultUnsupportedOpcode}
	}
	return ok()
}

// crLogical applies a two-input boolean op to CR bits BA and BB, storing
// the result into CR bit BT. The XL-form reuses RT/RA/RB as BT/BA/BB.
func (c *CPU) crLogical(ins decoder.Instruction, op func(a, b bool) bool) {
	a := c.getCRBit(ins.RA)
	b := c.getCRBit(ins.RB)
	c.setCRBit(ins.RT, op(a, b))
}

// execCompareD implements cmpi/cmpli (primary 10/11).
func (c *CPU) execCompareD(ins decoder.Instruction) ExecResult {
	ra := c.gprOrZero(ins.RA)
	var field uint32
	if ins.Op == 10 { // cmpli: unsigned, UI already zero-extended
		a32 := uint32(ra)
		b32 := ins.UI
		field = compareFieldUnsigned(a32, b32)
	} else { // cmpi: signed
		a32 := int32(uint32(ra))
		field = compareFieldSigned(a32, ins.SI)
	}
	if c.XER&xerSO != 0 {
		field |= crSO
	}
	c.setCRField(ins.BF, field)
	return ok()
}

// execCompareX implements cmp/cmpl (primary 31, XO 0/32).
func (c *CPU) execCompareX(ins decoder.Instruction) ExecResult {
	a := uint32(c.gprOrZero(ins.RA))
	b := uint32(c.gprOrZero(ins.RB))
	var field uint32
	if ins.XO == 32 { // cmpl
		field = compareFieldUnsigned(a, b)
	} else {
		field = compareFieldSigned(int32(a), int32(b))
	}
	if c.XER&xerSO != 0 {
		field |= crSO
	}
	c.setCRField(ins.BF, field)
	return ok()
}

func compareFieldSigned(a, b int32) uint32 {
	switch {
	case a < b:
		return crLT
	case a > b:
		return crGT
	default:
		return crEQ
	}
}

func compareFieldUnsigned(a, b uint32) uint32 {
	switch {
	case a < b:
		return crLT
	case a > b:
		return crGT
	default:
		return crEQ
	}
}

// execTrapD/X implement twi/tdi/tw: raise Program (0x700) when the masked
// comparison between RA and the operand matches the TO condition mask.
// tdi (primary opcode 2) is tw's 64-bit sibling: the full doubleword is
// compared instead of the 32-bit narrowing twi/tw use.
func (c *CPU) execTrapD(ins decoder.Instruction) ExecResult {
	if ins.Op == 2 { // tdi
		a := int64(c.gprOrZero(ins.RA))
		if trapConditionMet64(ins.RT, a, int64(ins.SI)) {
			return ExecResult{Fault: FaultTrap}
		}
		return ok()
	}
	a := int32(c.gprOrZero(ins.RA))
	if trapConditionMet(ins.RT, a, ins.SI) {
		return ExecResult{Fault: FaultTrap}
	}
	return ok()
}

func (c *CPU) execTrapX(ins decoder.Instruction) ExecResult {
	if ins.XO == 68 { // td: 64-bit register-form trap
		a := int64(c.gprOrZero(ins.RA))
		b := int64(c.gprOrZero(ins.RB))
		if trapConditionMet64(ins.TO, a, b) {
			return ExecResult{Fault: FaultTrap}
		}
		return ok()
	}
	a := int32(c.gprOrZero(ins.RA))
	b := int32(c.gprOrZero(ins.RB))
	if trapConditionMet(ins.TO, a, b) {
		return ExecResult{Fault: FaultTrap}
	}
	return ok()
}

func trapConditionMet(to uint32, a, b int32) bool {
	if to&0x10 != 0 && a < b {
		return true
	}
	if to&0x08 != 0 && a > b {
		return true
	}
	if to&0x04 != 0 && a == b {
		return true
	}
	if to&0x02 != 0 && uint32(a) < uint32(b) {
		return true
	}
	if to&0x01 != 0 && uint32(a) > uint32(b) {
		return true
	}
	return false
}

func trapConditionMet64(to uint32, a, b int64) bool {
	if to&0x10 != 0 && a < b {
		return true
	}
	if to&0x08 != 0 && a > b {
		return true
	}
	if to&0x04 != 0 && a == b {
		return true
	}
	if to&0x02 != 0 && uint64(a) < uint64(b) {
		return true
	}
	if to&0x01 != 0 && uint64(a) > uint64(b) {
		return true
	}
	return false
}
