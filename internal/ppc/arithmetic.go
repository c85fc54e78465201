package ppc

import "github.com/aayes89/JPPC/internal/decoder"

// execArithmeticD implements the D-form integer arithmetic immediates
// (primary 7, 8, 12-15): mulli, subfic, addic, addic., addi, addis.
// Grounded on spec.md §4.6.1's contract list, generalized from
// cpu_ie32.go's single-accumulator ADD/SUB opcodes to PowerPC's
// three-operand register-plus-immediate form.
func (c *CPU) execArithmeticD(ins decoder.Instruction) ExecResult {
	ra := int32(c.gprOrZero(ins.RA))
	switch ins.Op {
	case 14: // addi: RA==0 means literal zero
		c.setGPR32SignExt(ins.RT, uint32(ra+ins.SI))
	case 15: // addis
		c.setGPR32SignExt(ins.RT, uint32(ra+(ins.SI<<16)))
	case 13: // addic.
		sum := ra + ins.SI
		c.setGPR32SignExt(ins.RT, uint32(sum))
		c.setXERCA(addCarryOut(uint32(ra), uint32(ins.SI), 0))
		c.updateCR0(uint32(sum))
	case 12: // addic
		sum := ra + ins.SI
		c.setGPR32SignExt(ins.RT, uint32(sum))
		c.setXERCA(addCarryOut(uint32(ra), uint32(ins.SI), 0))
	case 8: // subfic: RT = ~RA + SI + 1
		diff := -ra + ins.SI
		c.setGPR32SignExt(ins.RT, uint32(diff))
		c.setXERCA(addCarryOut(^uint32(ra), uint32(ins.SI), 1))
	case 7: // mulli
		product := ra * ins.SI
		c.setGPR32SignExt(ins.RT, uint32(product))
	default:
		return ExecResult{Fault: FaultInvalidFormat}
	}
	return ok()
}

// execArithmeticXO implements the XO-form register-register arithmetic
// family, per spec.md §4.6.1's contracts for overflow (OE) and carry
// (CA), and Rc updating CR0 from the 32-bit result.
func (c *CPU) execArithmeticXO(ins decoder.Instruction) ExecResult {
	a := int32(c.gprOrZero(ins.RA))
	b := int32(c.gprOrZero(ins.RB))
	var result int32
	var hasCA, carry bool

	switch ins.XO {
	case 266: // add
		result = a + b
		c.setOverflowAdd(ins.OE, a, b, result)
	case 10: // addc
		result = a + b
		hasCA = true
		carry = addCarryOut(uint32(a), uint32(b), 0)
		c.setOverflowAdd(ins.OE, a, b, result)
	case 138: // adde
		cin := uint32(0)
		if c.XER&xerCA != 0 {
			cin = 1
		}
		result = a + b + int32(cin)
		hasCA = true
		carry = addCarryOut(uint32(a), uint32(b), cin)
		c.setOverflowAdd(ins.OE, a, b, result)
	case 234: // addme: RT = RA + CA - 1
		cin := uint32(0)
		if c.XER&xerCA != 0 {
			cin = 1
		}
		result = a - 1 + int32(cin)
		hasCA = true
		carry = addCarryOut(uint32(a), 0xFFFFFFFF, cin)
		c.setOverflowAdd(ins.OE, a, -1, result)
	case 202: // addze: RT = RA + CA
		cin := uint32(0)
		if c.XER&xerCA != 0 {
			cin = 1
		}
		result = a + int32(cin)
		hasCA = true
		carry = addCarryOut(uint32(a), 0, cin)
		c.setOverflowAdd(ins.OE, a, 0, result)
	case 104: // neg
		result = -a
		c.setOverflowSub(ins.OE, 0, a, result)
	case 40: // subf: RT = ~RA + RB + 1
		result = b - a
		c.setOverflowSub(ins.OE, b, a, result)
	case 8: // subfc
		result = b - a
		hasCA = true
		carry = addCarryOut(^uint32(a), uint32(b), 1)
		c.setOverflowSub(ins.OE, b, a, result)
	case 136: // subfe
		cin := uint32(0)
		if c.XER&xerCA != 0 {
			cin = 1
		}
		result = b + int32(^uint32(a)) + int32(cin)
		hasCA = true
		carry = addCarryOut(^uint32(a), uint32(b), cin)
		c.setOverflowSub(ins.OE, b, a, result)
	case 232: // subfme: RT = ~RA + CA - 1
		cin := uint32(0)
		if c.XER&xerCA != 0 {
			cin = 1
		}
		result = int32(^uint32(a)) - 1 + int32(cin)
		hasCA = true
		carry = addCarryOut(^uint32(a), 0xFFFFFFFF, cin)
	case 200: // subfze: RT = ~RA + CA
		cin := uint32(0)
		if c.XER&xerCA != 0 {
			cin = 1
		}
		result = int32(^uint32(a)) + int32(cin)
		hasCA = true
		carry = addCarryOut(^uint32(a), 0, cin)
	case 75: // mulhw
		wide := int64(a) * int64(b)
		result = int32(wide >> 32)
	case 11: // mulhwu
		wide := uint64(uint32(a)) * uint64(uint32(b))
		result = int32(uint32(wide >> 32))
	case 235: // mullw
		wide := int64(a) * int64(b)
		result = int32(wide)
		overflow := wide != int64(int32(wide))
		if ins.OE {
			c.setXEROV(overflow)
		}
	case 491: // divw: undefined RT + OV on divide-by-zero or INT_MIN/-1
		if b == 0 || (a == -0x80000000 && b == -1) {
			if ins.OE {
				c.setXEROV(true)
			}
			result = 0
		} else {
			result = a / b
			if ins.OE {
				c.setXEROV(false)
			}
		}
	case 459: // divwu
		if b == 0 {
			if ins.OE {
				c.setXEROV(true)
			}
			result = 0
		} else {
			result = int32(uint32(a) / uint32(b))
			if ins.OE {
				c.setXEROV(false)
			}
		}
	default:
		return ExecResult{Fault: FaultUnsupportedOpcode}
	}

	c.setGPR32SignExt(ins.RT, uint32(result))
	if hasCA {
		c.setXERCA(carry)
	}
	if ins.Rc {
		c.updateCR0(uint32(result))
	}
	return ok()
}
