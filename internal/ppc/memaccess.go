package ppc

import "github.com/aayes89/JPPC/internal/decoder"

// translateData runs the MMU for a data access and turns a translation
// fault into an ExecResult, per the Design Notes "Exception control flow"
// rule: executors report faults, the fetch loop vectors them.
func (c *CPU) translateData(ea uint32, isWrite bool) (uint32, ExecResult, bool) {
	pa, fault := c.MMU.Translate(ea, c.MSR&msrDR != 0, isWrite, false)
	if fault == 0 {
		return pa, ExecResult{}, true
	}
	c.DAR = uint64(ea)
	c.DSISR = 0x40000000
	return 0, ExecResult{Fault: FaultTranslation, FaultIsISI: false}, false
}

func (c *CPU) checkAlign(ea uint32, size uint32) bool { return ea%size == 0 }

// execMemD implements the D-form and DS-form byte/halfword/word/
// doubleword loads and stores (primary 32-47, 58, 62), including their
// update ('u') forms, per spec.md §4.6.5.
func (c *CPU) execMemD(ins decoder.Instruction, pc uint32) ExecResult {
	base := c.gprOrZero(ins.RA)
	ea := uint32(base) + uint32(ins.SI)
	isUpdate := isUpdateFormOp(ins.Op)
	if isUpdate && ins.RA == 0 {
		return ExecResult{Fault: FaultInvalidUpdate}
	}

	switch ins.Op {
	case 34, 35: // lbz, lbzu
		pa, res, okT := c.translateData(ea, false)
		if !okT {
			return res
		}
		c.setGPR32ZeroExt(ins.RT, uint32(c.Cache.ReadWord(pa&^3)>>((3-pa&3)*8))&0xFF)
	case 38, 39: // stb, stbu
		pa, res, okT := c.translateData(ea, true)
		if !okT {
			return res
		}
		c.storeByte(pa, byte(c.GPR[ins.RS&31]))
	case 40, 41: // lhz, lhzu
		if !c.checkAlign(ea, 2) {
			return ExecResult{Fault: FaultAlignment}
		}
		pa, res, okT := c.translateData(ea, false)
		if !okT {
			return res
		}
		c.setGPR32ZeroExt(ins.RT, uint32(c.loadHalf(pa)))
	case 42, 43: // lha, lhau
		if !c.checkAlign(ea, 2) {
			return ExecResult{Fault: FaultAlignment}
		}
		pa, res, okT := c.translateData(ea, false)
		if !okT {
			return res
		}
		c.setGPR32SignExt(ins.RT, uint32(int32(int16(c.loadHalf(pa)))))
	case 44, 45: // sth, sthu
		if !c.checkAlign(ea, 2) {
			return ExecResult{Fault: FaultAlignment}
		}
		pa, res, okT := c.translateData(ea, true)
		if !okT {
			return res
		}
		c.storeHalf(pa, uint16(c.GPR[ins.RS&31]))
	case 32, 33: // lwz, lwzu
		if !c.checkAlign(ea, 4) {
			return ExecResult{Fault: FaultAlignment}
		}
		pa, res, okT := c.translateData(ea, false)
		if !okT {
			return res
		}
		c.setGPR32ZeroExt(ins.RT, c.Cache.ReadWord(pa))
	case 36, 37: // stw, stwu
		if !c.checkAlign(ea, 4) {
			return ExecResult{Fault: FaultAlignment}
		}
		pa, res, okT := c.translateData(ea, true)
		if !okT {
			return res
		}
		c.Cache.WriteWord(pa, gpr32(c.GPR[ins.RS&31]))
	case 46: // lmw: load multiple words starting at RT through r31
		if !c.checkAlign(ea, 4) {
			return ExecResult{Fault: FaultAlignment}
		}
		for r := ins.RT; r <= 31; r++ {
			pa, res, okT := c.translateData(ea, false)
			if !okT {
				return res
			}
			c.setGPR32ZeroExt(r, c.Cache.ReadWord(pa))
			ea += 4
		}
		return ok()
	case 47: // stmw
		if !c.checkAlign(ea, 4) {
			return ExecResult{Fault: FaultAlignment}
		}
		for r := ins.RS; r <= 31; r++ {
			pa, res, okT := c.translateData(ea, true)
			if !okT {
				return res
			}
			c.Cache.WriteWord(pa, gpr32(c.GPR[r&31]))
			ea += 4
		}
		return ok()
	case 58: // ld/ldu (DS-form): the decoder supplies SI with its low 2 bits (the XO field) cleared
		if ins.XO == 0 || ins.XO == 1 {
			dsEA := uint32(base) + (uint32(ins.SI) &^ 3)
			if !c.checkAlign(dsEA, 8) {
				return ExecResult{Fault: FaultAlignment}
			}
			hi, res, okT := c.translateData(dsEA, false)
			if !okT {
				return res
			}
			lo, res2, okT2 := c.translateData(dsEA+4, false)
			if !okT2 {
				return res2
			}
			v := uint64(c.Cache.ReadWord(hi))<<32 | uint64(c.Cache.ReadWord(lo))
			c.GPR[ins.RT&31] = v
			if ins.XO == 1 && ins.RA != 0 {
				c.GPR[ins.RA&31] = uint64(dsEA)
			}
			return ok()
		}
		return ExecResult{Fault: FaultUnsupportedOpcode}
	case 62: // std/stdu (DS-form)
		dsEA := uint32(base) + (uint32(ins.SI) &^ 3)
		if !c.checkAlign(dsEA, 8) {
			return ExecResult{Fault: FaultAlignment}
		}
		hi, res, okT := c.translateData(dsEA, true)
		if !okT {
			return res
		}
		lo, res2, okT2 := c.translateData(dsEA+4, true)
		if !okT2 {
			return res2
		}
		v := c.GPR[ins.RS&31]
		c.Cache.WriteWord(hi, uint32(v>>32))
		c.Cache.WriteWord(lo, uint32(v))
		if ins.XO == 1 && ins.RA != 0 {
			c.GPR[ins.RA&31] = uint64(dsEA)
		}
		return ok()
	default:
		return ExecResult{Fault: FaultUnsupportedOpcode}
	}

	if isUpdate {
		c.GPR[ins.RA&31] = uint64(ea)
	}
	return ok()
}

func isUpdateFormOp(op uint32) bool {
	switch op {
	case 35, 39, 41, 43, 45, 33, 37:
		return true
	}
	return false
}

func (c *CPU) storeByte(pa uint32, v byte) {
	aligned := pa &^ 3
	shift := (3 - pa&3) * 8
	old := c.Cache.ReadWord(aligned)
	mask := uint32(0xFF) << shift
	c.Cache.WriteWord(aligned, (old&^mask)|(uint32(v)<<shift))
}

func (c *CPU) loadHalf(pa uint32) uint16 {
	word := c.Cache.ReadWord(pa &^ 2)
	if pa&2 == 0 {
		return uint16(word >> 16)
	}
	return uint16(word)
}

func (c *CPU) storeHalf(pa uint32, v uint16) {
	aligned := pa &^ 2
	old := c.Cache.ReadWord(aligned)
	if pa&2 == 0 {
		c.Cache.WriteWord(aligned, (old&0x0000FFFF)|(uint32(v)<<16))
	} else {
		c.Cache.WriteWord(aligned, (old&0xFFFF0000)|uint32(v))
	}
}

// execMemX implements the X-form indexed loads/stores, byte-reversed
// forms, the lwarx/stwcx. reservation pair, and the cache-hint/sync
// no-ops, per spec.md §4.6.5.
func (c *CPU) execMemX(ins decoder.Instruction) ExecResult {
	ea := uint32(c.gprOrZero(ins.RA) + c.gprOrZero(ins.RB))
	isUpdate := memXIsUpdate(ins.XO)
	if isUpdate && ins.RA == 0 {
		return ExecResult{Fault: FaultInvalidUpdate}
	}

	switch ins.XO {
	case 87, 119: // lbzx, lbzux
		pa, res, okT := c.translateData(ea, false)
		if !okT {
			return res
		}
		c.setGPR32ZeroExt(ins.RT, uint32(c.Cache.ReadWord(pa&^3)>>((3-pa&3)*8))&0xFF)
	case 215, 247: // stbx, stbux
		pa, res, okT := c.translateData(ea, true)
		if !okT {
			return res
		}
		c.storeByte(pa, byte(c.GPR[ins.RS&31]))
	case 279, 311: // lhzx, lhzux
		pa, res, okT := c.translateData(ea, false)
		if !okT {
			return res
		}
		c.setGPR32ZeroExt(ins.RT, uint32(c.loadHalf(pa)))
	case 343, 375: // lhax, lhaux
		pa, res, okT := c.translateData(ea, false)
		if !okT {
			return res
		}
		c.setGPR32SignExt(ins.RT, uint32(int32(int16(c.loadHalf(pa)))))
	case 407, 439: // sthx, sthux
		pa, res, okT := c.translateData(ea, true)
		if !okT {
			return res
		}
		c.storeHalf(pa, uint16(c.GPR[ins.RS&31]))
	case 23, 55: // lwzx, lwzux
		pa, res, okT := c.translateData(ea, false)
		if !okT {
			return res
		}
		c.setGPR32ZeroExt(ins.RT, c.Cache.ReadWord(pa))
	case 151, 183: // stwx, stwux
		pa, res, okT := c.translateData(ea, true)
		if !okT {
			return res
		}
		c.Cache.WriteWord(pa, gpr32(c.GPR[ins.RS&31]))
	case 790: // lhbrx
		pa, res, okT := c.translateData(ea, false)
		if !okT {
			return res
		}
		h := c.loadHalf(pa)
		c.setGPR32ZeroExt(ins.RT, uint32(h>>8|h<<8))
	case 918: // sthbrx
		pa, res, okT := c.translateData(ea, true)
		if !okT {
			return res
		}
		v := uint16(c.GPR[ins.RS&31])
		c.storeHalf(pa, v>>8|v<<8)
	case 534: // lwbrx
		pa, res, okT := c.translateData(ea, false)
		if !okT {
			return res
		}
		w := c.Cache.ReadWord(pa)
		c.setGPR32ZeroExt(ins.RT, byteswap32(w))
	case 662: // stwbrx
		pa, res, okT := c.translateData(ea, true)
		if !okT {
			return res
		}
		c.Cache.WriteWord(pa, byteswap32(gpr32(c.GPR[ins.RS&31])))
	case 20: // lwarx
		pa, res, okT := c.translateData(ea, false)
		if !okT {
			return res
		}
		c.reservation.Set(pa)
		c.setGPR32ZeroExt(ins.RT, c.Cache.ReadWord(pa))
	case 150: // stwcx.
		pa, res, okT := c.translateData(ea, true)
		if !okT {
			return res
		}
		success := c.reservation.Check(pa)
		if success {
			c.Cache.WriteWord(pa, gpr32(c.GPR[ins.RS&31]))
		}
		field := uint32(crEQ)
		if !success {
			field = 0
		}
		if c.XER&xerSO != 0 {
			field |= crSO
		}
		c.setCRField(0, field)
		return ok()
	case 21: // ldx
		pa, res, okT := c.translateData(ea, false)
		if !okT {
			return res
		}
		lo, res2, okT2 := c.translateData(ea+4, false)
		if !okT2 {
			return res2
		}
		c.GPR[ins.RT&31] = uint64(c.Cache.ReadWord(pa))<<32 | uint64(c.Cache.ReadWord(lo))
	case 181: // stdx
		pa, res, okT := c.translateData(ea, true)
		if !okT {
			return res
		}
		lo, res2, okT2 := c.translateData(ea+4, true)
		if !okT2 {
			return res2
		}
		v := c.GPR[ins.RS&31]
		c.Cache.WriteWord(pa, uint32(v>>32))
		c.Cache.WriteWord(lo, uint32(v))
	case 84: // ldarx: 64-bit reservation load, doubleword sibling of lwarx
		if !c.checkAlign(ea, 8) {
			return ExecResult{Fault: FaultAlignment}
		}
		pa, res, okT := c.translateData(ea, false)
		if !okT {
			return res
		}
		lo, res2, okT2 := c.translateData(ea+4, false)
		if !okT2 {
			return res2
		}
		c.reservation.Set(pa)
		c.GPR[ins.RT&31] = uint64(c.Cache.ReadWord(pa))<<32 | uint64(c.Cache.ReadWord(lo))
	case 214: // stdcx.: 64-bit reservation store, doubleword sibling of stwcx.
		if !c.checkAlign(ea, 8) {
			return ExecResult{Fault: FaultAlignment}
		}
		pa, res, okT := c.translateData(ea, true)
		if !okT {
			return res
		}
		lo, res2, okT2 := c.translateData(ea+4, true)
		if !okT2 {
			return res2
		}
		success := c.reservation.Check(pa)
		if success {
			v := c.GPR[ins.RS&31]
			c.Cache.WriteWord(pa, uint32(v>>32))
			c.Cache.WriteWord(lo, uint32(v))
		}
		field := uint32(crEQ)
		if !success {
			field = 0
		}
		if c.XER&xerSO != 0 {
			field |= crSO
		}
		c.setCRField(0, field)
		return ok()
	case 533: // lswx: load string, length from XER[25:31] (low 7 bits), byte-fill starting at RT
		return c.loadString(ins.RT, ea, c.XER&0x7F)
	case 661: // stswx: store string, length from XER[25:31]
		return c.storeString(ins.RT, ea, c.XER&0x7F)
	case 597: // lswi: load string, fixed length NB decoded into the RB field position (RB is not an index register here)
		return c.loadString(ins.RT, uint32(c.gprOrZero(ins.RA)), ins.RB)
	case 725: // stswi: store string, fixed length NB
		return c.storeString(ins.RT, uint32(c.gprOrZero(ins.RA)), ins.RB)
	case 310: // eciwx: external control in word, treated as an ordinary indexed load in this single-core interpreter
		pa, res, okT := c.translateData(ea, false)
		if !okT {
			return res
		}
		c.setGPR32ZeroExt(ins.RT, c.Cache.ReadWord(pa))
	case 438: // ecowx: external control out word
		pa, res, okT := c.translateData(ea, true)
		if !okT {
			return res
		}
		c.Cache.WriteWord(pa, gpr32(c.GPR[ins.RS&31]))
	case 1014: // dcbz: zero 32 bytes at the cache line containing ea
		base := ea &^ 31
		for off := uint32(0); off < 32; off += 4 {
			pa, res, okT := c.translateData(base+off, true)
			if !okT {
				return res
			}
			c.Cache.WriteWord(pa, 0)
		}
		return ok()
	case 54, 86, 278, 246, 982, 598, 854: // dcbst/dcbf/dcbt/dcbtst/icbi/sync/eieio: no-op in this interpreter
		return ok()
	default:
		return ExecResult{Fault: FaultUnsupportedOpcode}
	}

	if isUpdate {
		c.GPR[ins.RA&31] = uint64(ea)
	}
	return ok()
}

func memXIsUpdate(xo uint32) bool {
	switch xo {
	case 119, 247, 311, 375, 439, 55, 183:
		return true
	}
	return false
}

func (c *CPU) loadByte(pa uint32) byte {
	return byte(c.Cache.ReadWord(pa&^3) >> ((3 - pa&3) * 8))
}

// loadString implements lswi/lswx: reads n bytes big-endian into
// consecutive GPRs starting at rt, four bytes per register, wrapping
// from r31 back to r0; n==0 means 32 bytes, per spec.md §4.6.5.
func (c *CPU) loadString(rt, ea, n uint32) ExecResult {
	if n == 0 {
		n = 32
	}
	r := rt & 31
	var word uint32
	count := 0
	for i := uint32(0); i < n; i++ {
		pa, res, okT := c.translateData(ea+i, false)
		if !okT {
			return res
		}
		word = word<<8 | uint32(c.loadByte(pa))
		count++
		if count == 4 {
			c.setGPR32ZeroExt(r, word)
			r = (r + 1) & 31
			word, count = 0, 0
		}
	}
	if count > 0 {
		word <<= uint(8 * (4 - count))
		c.setGPR32ZeroExt(r, word)
	}
	return ok()
}

// storeString implements stswi/stswx, the inverse of loadString.
func (c *CPU) storeString(rs, ea, n uint32) ExecResult {
	if n == 0 {
		n = 32
	}
	r := rs & 31
	shift := 24
	for i := uint32(0); i < n; i++ {
		pa, res, okT := c.translateData(ea+i, true)
		if !okT {
			return res
		}
		c.storeByte(pa, byte(c.GPR[r]>>uint(shift)))
		shift -= 8
		if shift < 0 {
			shift = 24
			r = (r + 1) & 31
		}
	}
	return ok()
}

func byteswap32(v uint32) uint32 {
	return (v&0xFF)<<24 | (v&0xFF00)<<8 | (v&0xFF0000)>>8 | (v&0xFF000000)>>24
}
