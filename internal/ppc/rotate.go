package ppc

import "github.com/aayes89/JPPC/internal/decoder"

func rotl32(v uint32, sh uint32) uint32 {
	sh &= 31
	return (v << sh) | (v >> (32 - sh))
}

// maskFromTo builds a 32-bit mask covering bits [mb..me] (IBM numbering,
// bit 0 = MSB), wrapping when mb > me, per spec.md §4.6.3.
func maskFromTo(mb, me uint32) uint32 {
	mb &= 31
	me &= 31
	var m uint32
	for i := uint32(0); i < 32; i++ {
		bit := uint32(1) << (31 - i)
		inRange := mb <= me && i >= mb && i <= me
		wrapped := mb > me && (i >= mb || i <= me)
		if inRange || wrapped {
			m |= bit
		}
	}
	return m
}

// execRotateM implements the M-form rotate family (primary 20-23):
// rlwimi, rlwinm, rlwnm, per spec.md §4.6.3's round-trip invariant
// `rlwinm(v, SH, MB, ME) = rotate-left(v, SH) masked to [MB..ME]`.
func (c *CPU) execRotateM(ins decoder.Instruction) ExecResult {
	rs := gpr32(c.GPR[ins.RS&31])
	mask := maskFromTo(ins.MB, ins.ME)

	var sh uint32
	switch ins.Op {
	case 20, 21: // rlwimi, rlwinm: immediate shift
		sh = ins.SH
	case 22: // rlmi (Xenon): register shift, insert like rlwimi
		sh = gpr32(c.gprOrZero(ins.RB)) & 31
	case 23: // rlwnm: register shift, low 5 bits
		sh = gpr32(c.gprOrZero(ins.RB)) & 31
	default:
		return ExecResult{Fault: FaultUnsupportedOpcode}
	}

	rotated := rotl32(rs, sh) & mask

	var result uint32
	if ins.Op == 20 || ins.Op == 22 { // rlwimi/rlmi insert into RA, preserving unmasked bits
		ra := gpr32(c.gprOrZero(ins.RA))
		result = (ra &^ mask) | rotated
	} else {
		result = rotated
	}

	c.setGPR32ZeroExt(ins.RA, result)
	if ins.Rc {
		c.updateCR0(result)
	}
	return ok()
}

// execRotateMD implements the 64-bit MD/MDS-form rotates under primary
// opcode 30: rldicl, rldicr, rldic, rldimi, rldcl, rldcr, distinguished
// by XO per spec.md §4.6.3.
func (c *CPU) execRotateMD(ins decoder.Instruction) ExecResult {
	rs := c.GPR[ins.RS&31]
	sh := uint(ins.SH & 63)
	rotated := (rs << sh) | (rs >> (64 - sh))
	mb := uint64(ins.MB & 63)

	maskFrom := func(mb, me uint64) uint64 {
		var m uint64
		for i := uint64(0); i < 64; i++ {
			bit := uint64(1) << (63 - i)
			inRange := mb <= me && i >= mb && i <= me
			wrapped := mb > me && (i >= mb || i <= me)
			if inRange || wrapped {
				m |= bit
			}
		}
		return m
	}

	var result uint64
	switch ins.Format {
	case decoder.FormatMDS:
		rb := c.gprOrZero(ins.RB)
		sh = uint(rb & 63)
		rotated = (rs << sh) | (rs >> (64 - sh))
		switch ins.XO {
		case 8: // rldcl
			result = rotated & maskFrom(mb, 63)
		case 9: // rldcr
			result = rotated & maskFrom(0, mb)
		default:
			return ExecResult{Fault: FaultUnsupportedOpcode}
		}
	default: // FormatMD
		switch ins.XO {
		case 0: // rldicl
			result = rotated & maskFrom(mb, 63)
		case 1: // rldicr
			result = rotated & maskFrom(0, mb)
		case 2: // rldic
			result = rotated & maskFrom(mb, uint64(63-sh))
		case 3: // rldimi
			ra := c.GPR[ins.RA&31]
			m := maskFrom(mb, uint64(63-sh))
			result = (ra &^ m) | (rotated & m)
		default:
			return ExecResult{Fault: FaultUnsupportedOpcode}
		}
	}

	c.GPR[ins.RA&31] = result
	if ins.Rc {
		c.updateCR0(uint32(result))
	}
	return ok()
}
